package admin

import "testing"

func TestEncryptor_SealOpenRoundTrip(t *testing.T) {
	enc, err := NewEncryptor("super-secret-passphrase")
	if err != nil {
		t.Fatalf("new encryptor: %v", err)
	}

	creds := map[string]string{"api_key": "sk-abc123", "cx": "cx-1"}
	sealed, err := enc.Seal(creds)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	opened, err := enc.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if opened["api_key"] != "sk-abc123" || opened["cx"] != "cx-1" {
		t.Fatalf("round trip mismatch: %v", opened)
	}
}

func TestEncryptor_EmptySealedDecodesToNil(t *testing.T) {
	enc, err := NewEncryptor("key")
	if err != nil {
		t.Fatalf("new encryptor: %v", err)
	}
	opened, err := enc.Open(nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if opened != nil {
		t.Fatalf("expected nil, got %v", opened)
	}
}

func TestEncryptor_WrongKeyFailsToOpen(t *testing.T) {
	enc, err := NewEncryptor("key-one")
	if err != nil {
		t.Fatalf("new encryptor: %v", err)
	}
	sealed, err := enc.Seal(map[string]string{"api_key": "secret"})
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	other, err := NewEncryptor("key-two")
	if err != nil {
		t.Fatalf("new encryptor: %v", err)
	}
	if _, err := other.Open(sealed); err == nil {
		t.Fatal("expected decryption with wrong key to fail")
	}
}

func TestNewEncryptor_EmptyKeyRejected(t *testing.T) {
	if _, err := NewEncryptor(""); err == nil {
		t.Fatal("expected error for empty encryption key")
	}
}
