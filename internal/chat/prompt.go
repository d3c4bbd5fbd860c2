// Package chat builds coaching prompts, calls the completion API and serves
// the chat routes.
package chat

import (
	"fmt"

	"github.com/ayush/content-coach/internal/models"
)

const systemPromptTemplate = "You are a helpful content coach specializing in %s. " +
	"Your client is %s, who wants to %s. " +
	"Provide specific, actionable advice tailored to their niche and goals. " +
	"Focus on practical strategies that can help them achieve their content objectives.\n\n" +
	"Format your responses with:\n" +
	"- Clear paragraphs separated by blank lines\n" +
	"- Bullet points for lists and steps (use - symbols)\n" +
	"- Short, focused paragraphs for readability\n" +
	"- No markdown or special formatting symbols\n" +
	"- Natural, conversational tone"

// BuildSystemPrompt returns the coaching instructions for u. The output
// depends only on the user's profile.
func BuildSystemPrompt(u *models.User) string {
	return fmt.Sprintf(systemPromptTemplate, u.BusinessNiche, u.Name, u.ContentGoals)
}
