package upgrade

import (
	"testing"

	"github.com/barnettlynn/rooster/internal/apperr"
	"github.com/barnettlynn/rooster/internal/secret"
)

const v1Plaintext = `{"passwords":[` +
	`{"created_at":1700000000,"name":"Old Website","password":"legacy-pw","updated_at":1700000000,"username":"me@example.com"}` +
	`]}`

func TestFromV1RoundTrip(t *testing.T) {
	master := secret.NewString("legacy-master")

	raw, err := ToV1([]byte(v1Plaintext), master)
	if err != nil {
		t.Fatalf("ToV1: %v", err)
	}

	s, err := FromV1(raw, master)
	if err != nil {
		t.Fatalf("FromV1: %v", err)
	}

	entries := s.List()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Name != "Old Website" || entries[0].Username != "me@example.com" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
	if entries[0].Password.Expose() != "legacy-pw" {
		t.Fatalf("password mismatch: got %q", entries[0].Password.Expose())
	}
}

func TestFromV1WrongPassword(t *testing.T) {
	raw, err := ToV1([]byte(v1Plaintext), secret.NewString("right-master"))
	if err != nil {
		t.Fatalf("ToV1: %v", err)
	}

	_, err = FromV1(raw, secret.NewString("wrong-master"))
	if !apperr.Is(err, apperr.KindWrongMasterPassword) {
		t.Fatalf("expected WrongMasterPassword, got %v", err)
	}
}
