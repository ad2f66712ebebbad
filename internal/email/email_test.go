package email

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

type smtpConfig struct {
	host       string
	recipients []string
}

func (c smtpConfig) GetSMTPHost() string                    { return c.host }
func (c smtpConfig) GetSMTPPort() int                       { return 587 }
func (c smtpConfig) GetSMTPUsername() string                { return "" }
func (c smtpConfig) GetSMTPPassword() string                { return "" }
func (c smtpConfig) GetEmailFromName() string               { return "CRM" }
func (c smtpConfig) GetEmailFromAddress() string            { return "crm@example.test" }
func (c smtpConfig) GetWonNotificationRecipients() []string { return c.recipients }
func (c smtpConfig) IsSMTPEnabled() bool                    { return c.host != "" && len(c.recipients) > 0 }

func TestRenderLeadWon(t *testing.T) {
	data := LeadWon{
		LeadID:        uuid.New(),
		ClientID:      uuid.New(),
		ClientName:    "Acme <Bakery>",
		ProjectID:     uuid.New(),
		ProjectReused: true,
	}

	subject, body, err := RenderLeadWon(data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if subject != "Lead won: Acme <Bakery>" {
		t.Fatalf("unexpected subject %q", subject)
	}
	if !strings.Contains(body, data.ProjectID.String()) || !strings.Contains(body, "(existing)") {
		t.Fatal("body misses project details")
	}
	if strings.Contains(body, "<Bakery>") {
		t.Fatal("client name must be escaped")
	}
}

func TestNewSenderFromConfig(t *testing.T) {
	if _, ok := NewSenderFromConfig(smtpConfig{}).(NoopSender); !ok {
		t.Fatal("expected noop sender without SMTP host")
	}
	if _, ok := NewSenderFromConfig(smtpConfig{host: "smtp.example.test", recipients: []string{"a@b.test"}}).(*SMTPSender); !ok {
		t.Fatal("expected SMTP sender")
	}
}

func TestSMTPSenderBuildsMessage(t *testing.T) {
	s := NewSMTPSender("smtp.example.test", 587, "", "", "crm@example.test", "CRM")
	if _, err := s.newMessage("not-an-address", "subject", "<p>x</p>"); err == nil {
		t.Fatal("expected invalid recipient error")
	}
	if _, err := s.newMessage("sales@example.test", "subject", "<p>x</p>"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
