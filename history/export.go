package history

import (
	"context"
	"fmt"
	"strings"

	"gemma-chatbot/db"
)

// ExportMarkdown renders a conversation as a markdown transcript,
// including ratings and automatic scores on assistant turns.
func (s *Service) ExportMarkdown(ctx context.Context, id int64) (string, error) {
	detail, err := s.Detail(ctx, id)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	title := detail.Conversation.Title
	if title == "" {
		title = fmt.Sprintf("Conversation %d", detail.Conversation.ID)
	}
	sb.WriteString("# " + title + "\n\n")
	sb.WriteString(fmt.Sprintf("Created: %s\n\n", detail.Conversation.CreatedAt.Format("2006-01-02 15:04:05")))

	for _, msg := range detail.Messages {
		switch msg.Role {
		case db.RoleUser:
			sb.WriteString("## User\n\n")
		case db.RoleAssistant:
			sb.WriteString("## Assistant\n\n")
		default:
			sb.WriteString("## " + msg.Role + "\n\n")
		}
		sb.WriteString(msg.Content + "\n\n")

		if msg.Feedback != nil {
			sb.WriteString(fmt.Sprintf("> Rating: %s", msg.Feedback.Rating))
			if msg.Feedback.AutoScore != nil {
				sb.WriteString(fmt.Sprintf(" | Auto score: %.3f", *msg.Feedback.AutoScore))
			}
			if msg.Feedback.Comment != "" {
				sb.WriteString(" | " + msg.Feedback.Comment)
			}
			sb.WriteString("\n\n")
		}
	}

	return sb.String(), nil
}
