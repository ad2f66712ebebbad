// Package email renders and delivers transactional email.
package email

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// LeadWon is the content of the won notification.
type LeadWon struct {
	LeadID        uuid.UUID
	ClientID      uuid.UUID
	ClientName    string
	ProjectID     uuid.UUID
	ProjectReused bool
}

// Sender delivers notification emails.
type Sender interface {
	SendLeadWonEmail(ctx context.Context, toEmail string, data LeadWon) error
}

// NoopSender drops every message. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendLeadWonEmail(context.Context, string, LeadWon) error { return nil }

// RenderLeadWon returns the subject and HTML body of the won notification.
func RenderLeadWon(data LeadWon) (string, string, error) {
	content, err := renderEmailTemplate("lead_won.html", leadWonEmailData{
		baseEmailData: baseEmailData{
			Title:      "Lead won",
			Heading:    "Lead won",
			Subheading: data.ClientName,
		},
		LeadID:        data.LeadID.String(),
		ClientID:      data.ClientID.String(),
		ClientName:    data.ClientName,
		ProjectID:     data.ProjectID.String(),
		ProjectReused: data.ProjectReused,
	})
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf(subjectLeadWonFmt, data.ClientName), content, nil
}
