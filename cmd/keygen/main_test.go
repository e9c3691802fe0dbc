package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/debemdeboas/folio/internal/auth"
	"github.com/debemdeboas/folio/internal/model"
)

func TestGenerateKeyPairSignsSessions(t *testing.T) {
	privPEM, pubPEM, err := generateKeyPair()
	if err != nil {
		t.Fatalf("Expected keys, got %v", err)
	}

	signer, err := auth.NewSessionProvider(string(privPEM), "", "session", "test", time.Hour)
	if err != nil {
		t.Fatalf("Expected the private key to load, got %v", err)
	}
	verifier, err := auth.NewSessionProvider("", string(pubPEM), "session", "test", time.Hour)
	if err != nil {
		t.Fatalf("Expected the public key to load, got %v", err)
	}

	token, err := signer.Issue(model.User{ID: "user-1", Email: "me@example.com"})
	if err != nil {
		t.Fatalf("Expected a token, got %v", err)
	}
	claims, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("Expected the public key to verify the token, got %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("Expected subject user-1, got %q", claims.Subject)
	}
}

func TestWriteKeys(t *testing.T) {
	dir := t.TempDir()

	privPath, pubPath, err := writeKeys(dir, false, []byte("priv"), []byte("pub"))
	if err != nil {
		t.Fatalf("Expected keys to be written, got %v", err)
	}
	info, err := os.Stat(privPath)
	if err != nil {
		t.Fatalf("Expected private key file, got %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("Expected private key mode 0600, got %v", info.Mode().Perm())
	}
	if pubPath != filepath.Join(dir, "pubkey.pem") {
		t.Errorf("Expected pubkey.pem, got %s", pubPath)
	}

	if _, _, err := writeKeys(dir, false, []byte("priv"), []byte("pub")); err == nil {
		t.Error("Expected existing keys to be kept without -force")
	}
	if _, _, err := writeKeys(dir, true, []byte("new"), []byte("new")); err != nil {
		t.Errorf("Expected -force to overwrite, got %v", err)
	}
	if data, _ := os.ReadFile(privPath); string(data) != "new" {
		t.Errorf("Expected overwritten key, got %q", data)
	}
}
