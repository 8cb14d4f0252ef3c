package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/weave/pkg/adapters/memory"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/persistence/middleware"
	"github.com/aretw0/weave/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunVariableStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := memory.NewStore()
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	secureStore := mw(underlyingStore)
	ctx := context.Background()

	original := []domain.Variable{
		{Name: "variables.api_token", Type: domain.TypeText, Value: "my-secret-sauce"},
		{Name: "variables.empty", Type: domain.TypeText},
	}
	if err := secureStore.Save(ctx, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	stored, err := underlyingStore.Load(ctx)
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if strings.Contains(stored[0].Value, "my-secret-sauce") || !strings.HasPrefix(stored[0].Value, "enc:v1:") {
		t.Fatalf("Expected value to be sealed, found: %v", stored[0].Value)
	}
	if stored[0].Name != "variables.api_token" {
		t.Errorf("Names must stay readable, got %q", stored[0].Name)
	}
	if stored[1].Value != "" {
		t.Errorf("Empty values are not encrypted, got %q", stored[1].Value)
	}
	if original[0].Value != "my-secret-sauce" {
		t.Error("Middleware modified the caller's slice")
	}

	loaded, err := secureStore.Load(ctx)
	if err != nil {
		t.Fatalf("Load via middleware failed: %v", err)
	}
	if loaded[0].Value != "my-secret-sauce" {
		t.Errorf("Expected 'my-secret-sauce', got %v", loaded[0].Value)
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	secureStoreOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlyingStore)
	if err := secureStoreOld.Save(ctx, []domain.Variable{{Name: "variables.x", Value: "encrypted-with-old-key"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	secureStoreNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlyingStore)

	loaded, err := secureStoreNew.Load(ctx)
	if err != nil {
		t.Fatalf("Load with rotated key failed: %v", err)
	}
	if loaded[0].Value != "encrypted-with-old-key" {
		t.Errorf("Decryption with fallback key failed")
	}

	loaded[0].Value = "encrypted-with-new-key"
	if err := secureStoreNew.Save(ctx, loaded); err != nil {
		t.Fatalf("Save with new key failed: %v", err)
	}

	if _, err := secureStoreOld.Load(ctx); err == nil {
		t.Error("Expected failure when loading new-key encryption with old-key middleware")
	}
}

func TestEncryptionMiddleware_PlainValueRejected(t *testing.T) {
	underlyingStore := memory.NewStore(domain.Variable{Name: "variables.legacy", Value: "plain"})
	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)

	_, err := secureStore.Load(context.Background())
	if !errors.Is(err, middleware.ErrNotEncrypted) {
		t.Fatalf("Expected ErrNotEncrypted, got %v", err)
	}
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic for invalid key size")
		}
	}()
	middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)

	for _, enc := range []string{hex.EncodeToString(key), base64.StdEncoding.EncodeToString(key), " " + hex.EncodeToString(key) + "\n"} {
		got, err := middleware.ParseKey(enc)
		if err != nil {
			t.Fatalf("ParseKey(%q) failed: %v", enc, err)
		}
		if string(got) != string(key) {
			t.Errorf("ParseKey(%q) returned a different key", enc)
		}
	}

	if _, err := middleware.ParseKey("abcd"); err == nil {
		t.Error("Expected error for short key")
	}
}
