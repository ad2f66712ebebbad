package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/crm")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("CORS_ALLOW_ALL", "false")
	t.Setenv("CORS_ORIGINS", "http://localhost:4200")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LEAD_LOST_REASON_POLICY", "")
	t.Setenv("SMTP_HOST", "")

	cfg, err := Load()
	if err == nil {
		t.Fatalf("expected empty lost reason policy to be rejected, got %+v", cfg.LostReasonPolicy)
	}

	t.Setenv("LEAD_LOST_REASON_POLICY", "lenient")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.IsLostReasonRequired() {
		t.Fatalf("expected lenient lost reason policy")
	}
	if cfg.IsSMTPEnabled() {
		t.Fatalf("expected smtp disabled without host")
	}
}

func TestLoadStrictPolicyAndRecipients(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LEAD_LOST_REASON_POLICY", " Strict ")
	t.Setenv("LEAD_CACHE_TTL", "90s")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("EMAIL_FROM_ADDRESS", "sales@example.com")
	t.Setenv("WON_NOTIFICATION_RECIPIENTS", "a@example.com, ,b@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsLostReasonRequired() {
		t.Fatalf("expected strict lost reason policy")
	}
	if cfg.GetLeadCacheTTL() != 90*time.Second {
		t.Fatalf("expected 90s cache ttl, got %s", cfg.GetLeadCacheTTL())
	}
	if got := cfg.GetWonNotificationRecipients(); len(got) != 2 {
		t.Fatalf("expected two recipients, got %v", got)
	}
	if !cfg.IsSMTPEnabled() {
		t.Fatalf("expected smtp enabled")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LEAD_LOST_REASON_POLICY", "lenient")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}
}
