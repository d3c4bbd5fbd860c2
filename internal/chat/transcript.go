package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/ayush/content-coach/internal/models"
)

const transcriptTimeLayout = "2006-01-02 15:04 MST"

// RenderTranscript formats exchanges, oldest first, as plain text.
func RenderTranscript(u *models.User, exchanges []models.Exchange, exportedAt time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Content coaching transcript for %s (%s)\n", u.Name, u.BusinessNiche)
	fmt.Fprintf(&b, "Goals: %s\n", u.ContentGoals)
	fmt.Fprintf(&b, "Exported %s\n", exportedAt.UTC().Format(transcriptTimeLayout))

	if len(exchanges) == 0 {
		b.WriteString("\nNo messages yet.\n")
		return b.String()
	}
	for _, ex := range exchanges {
		fmt.Fprintf(&b, "\n[%s] You:\n%s\n\nCoach:\n%s\n",
			ex.CreatedAt.UTC().Format(transcriptTimeLayout), ex.Message, ex.Response)
	}
	return b.String()
}

// TranscriptKey is the object key a transcript export is archived under.
func TranscriptKey(userID string, exportedAt time.Time) string {
	return fmt.Sprintf("%s/transcript-%d.txt", userID, exportedAt.Unix())
}

// chronological reverses a newest-first slice in place.
func chronological(exchanges []models.Exchange) []models.Exchange {
	for i, j := 0, len(exchanges)-1; i < j; i, j = i+1, j-1 {
		exchanges[i], exchanges[j] = exchanges[j], exchanges[i]
	}
	return exchanges
}
