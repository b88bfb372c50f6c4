package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestConfig_Enabled(t *testing.T) {
	if (Config{CloudName: "demo", APIKey: "k"}).Enabled() {
		t.Fatalf("missing secret must disable uploads")
	}
	if !(Config{CloudName: "demo", APIKey: "k", APISecret: "s"}).Enabled() {
		t.Fatalf("expected enabled config")
	}
}

func TestCloudinaryUploader_Folder(t *testing.T) {
	u, err := NewCloudinaryUploader(Config{CloudName: "demo", APIKey: "k", APISecret: "s", RootFolder: "clinic"})
	if err != nil {
		t.Fatalf("NewCloudinaryUploader: %v", err)
	}
	if got := u.folder("avatars"); got != "clinic/avatars" {
		t.Fatalf("unexpected folder %q", got)
	}
	u.root = ""
	if got := u.folder("chat"); got != "chat" {
		t.Fatalf("unexpected folder %q", got)
	}
}

func TestDisabled(t *testing.T) {
	if _, err := (Disabled{}).Upload(context.Background(), strings.NewReader("x"), "avatars"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
