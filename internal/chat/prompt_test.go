package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayush/content-coach/internal/models"
)

func TestBuildSystemPrompt(t *testing.T) {
	u := &models.User{Profile: models.Profile{Name: "Jo", BusinessNiche: "fitness", ContentGoals: "grow audience"}}

	got := BuildSystemPrompt(u)
	assert.True(t, strings.HasPrefix(got, "You are a helpful content coach specializing in fitness. "))
	assert.Contains(t, got, "Your client is Jo, who wants to grow audience. ")
	assert.Contains(t, got, "- No markdown or special formatting symbols\n")
	assert.True(t, strings.HasSuffix(got, "- Natural, conversational tone"))

	assert.Equal(t, got, BuildSystemPrompt(u))
	assert.Equal(t, got, BuildSystemPrompt(&models.User{ID: "other", Email: "x@y.z", Profile: u.Profile}))
}

func TestBuildSystemPrompt_DiffersByProfile(t *testing.T) {
	a := BuildSystemPrompt(&models.User{Profile: models.Profile{Name: "Jo", BusinessNiche: "fitness", ContentGoals: "grow"}})
	b := BuildSystemPrompt(&models.User{Profile: models.Profile{Name: "Jo", BusinessNiche: "cooking", ContentGoals: "grow"}})
	assert.NotEqual(t, a, b)
}
