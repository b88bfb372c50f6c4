package mail

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInviteBody(t *testing.T) {
	body := inviteBody("Ana", "ana@example.com", "tmp-123", "https://app.example.com/login")
	for _, want := range []string{"Ana", "ana@example.com", "tmp-123", "https://app.example.com/login"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(inviteBody("Ana", "a@b.c", "x", ""), "Sign in at") {
		t.Fatalf("login line must be omitted without a URL")
	}
}

func TestSMTPMailer_DefaultsFromToUsername(t *testing.T) {
	m := NewSMTPMailer(Config{Host: "smtp.example.com", Port: 587, Username: "noreply@example.com"})
	if m.cfg.From != "noreply@example.com" {
		t.Fatalf("unexpected from %q", m.cfg.From)
	}
}

func TestSMTPMailer_CancelledContext(t *testing.T) {
	m := NewSMTPMailer(Config{Host: "smtp.invalid", Port: 25})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.SendInvite(ctx, "a@example.com", "A", "pw"); err == nil {
		t.Fatalf("expected an error for a cancelled context")
	}
}

func TestLogMailer(t *testing.T) {
	if err := NewLogMailer(zerolog.Nop()).SendInvite(context.Background(), "a@example.com", "A", "pw"); err != nil {
		t.Fatalf("SendInvite: %v", err)
	}
}
