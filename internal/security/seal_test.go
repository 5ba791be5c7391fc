package security

import (
	"errors"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	s, err := NewSealer("server-secret")
	if err != nil {
		t.Fatalf("new sealer: %v", err)
	}

	sealed, err := s.Seal("backend-session-secret")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if sealed == "backend-session-secret" {
		t.Fatalf("sealed value must not equal plaintext")
	}

	got, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got != "backend-session-secret" {
		t.Fatalf("got %q", got)
	}
}

func TestOpenRejects(t *testing.T) {
	a, _ := NewSealer("secret-a")
	b, _ := NewSealer("secret-b")

	sealed, err := a.Seal("value")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	tests := []struct {
		name  string
		input string
	}{
		{name: "other key", input: sealed},
		{name: "not base64", input: "%%%"},
		{name: "too short", input: "AAAA"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			if _, err := b.Open(tt.input); !errors.Is(err, ErrUnseal) {
				t.Fatalf("got %v, want ErrUnseal", err)
			}
		})
	}
}

func TestNewSealerEmptySecret(t *testing.T) {
	if _, err := NewSealer(""); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
