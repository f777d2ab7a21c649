package store

import (
	"testing"

	"github.com/barnettlynn/rooster/internal/apperr"
	"github.com/barnettlynn/rooster/internal/cryptutil"
	"github.com/barnettlynn/rooster/internal/secret"
)

// testParams keeps scrypt cost tiny so the test suite doesn't pay real KDF
// cost on every run.
var testParams = cryptutil.ScryptParams{Log2N: 4, R: 1, P: 1}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(testParams)
	if err := s.Add("First Website", "first@example.com", secret.NewString("abcd")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add("Second Website", "second@example.com", secret.NewString("efgh")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	return s
}

func TestAddRejectsCaseInsensitiveDuplicate(t *testing.T) {
	s := New(testParams)
	if err := s.Add("GitHub", "me", secret.NewString("x")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	err := s.Add("github", "someone-else", secret.NewString("y"))
	if !apperr.Is(err, apperr.KindAppExists) {
		t.Fatalf("expected AppExists, got %v", err)
	}
}

func TestGetByNameNotFound(t *testing.T) {
	s := New(testParams)
	_, err := s.GetByName("missing")
	if !apperr.Is(err, apperr.KindAppNotFound) {
		t.Fatalf("expected AppNotFound, got %v", err)
	}
}

func TestRenameCaseOnlyKeepsSingleEntry(t *testing.T) {
	s := New(testParams)
	if err := s.Add("GitHub", "me", secret.NewString("x")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Rename("GitHub", "github"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if len(s.List()) != 1 {
		t.Fatalf("expected exactly one entry after case-only rename, got %d", len(s.List()))
	}
	got, err := s.GetByName("GITHUB")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if got.Name != "github" {
		t.Fatalf("expected stored casing to be updated to %q, got %q", "github", got.Name)
	}
}

func TestRenameToExistingNameFails(t *testing.T) {
	s := newTestStore(t)
	err := s.Rename("First Website", "Second Website")
	if !apperr.Is(err, apperr.KindAppExists) {
		t.Fatalf("expected AppExists, got %v", err)
	}
}

func TestDeleteAndList(t *testing.T) {
	s := newTestStore(t)
	if err := s.Delete("First Website"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	entries := s.List()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after delete, got %d", len(entries))
	}
	if entries[0].Name != "Second Website" {
		t.Fatalf("unexpected remaining entry: %q", entries[0].Name)
	}
}

func TestSetScryptParamsRequiresForceForWeak(t *testing.T) {
	s := New(testParams)
	weak := cryptutil.ScryptParams{Log2N: 2, R: 1, P: 1}
	if err := s.SetScryptParams(weak, false); !apperr.Is(err, apperr.KindWeakParams) {
		t.Fatalf("expected WeakParams without force, got %v", err)
	}
	if err := s.SetScryptParams(weak, true); err != nil {
		t.Fatalf("SetScryptParams with force: %v", err)
	}
	if s.Params() != weak {
		t.Fatalf("params not applied: got %+v", s.Params())
	}
}

func TestSearchFuzzyOrdersByScoreThenInsertion(t *testing.T) {
	s := newTestStore(t)
	results := s.SearchFuzzy("wbst")
	if len(results) != 2 {
		t.Fatalf("expected 2 fuzzy matches, got %d", len(results))
	}
	if results[0].Name != "First Website" || results[1].Name != "Second Website" {
		t.Fatalf("unexpected order: %q, %q", results[0].Name, results[1].Name)
	}
}

func TestSearchFuzzyExactMatchRanksHighest(t *testing.T) {
	s := New(testParams)
	s.Add("Work Email", "a", secret.NewString("x"))
	s.Add("Email", "b", secret.NewString("y"))
	s.Add("Personal Email Archive", "c", secret.NewString("z"))

	results := s.SearchFuzzy("Email")
	if len(results) == 0 || results[0].Name != "Email" {
		t.Fatalf("expected exact match first, got %v", namesOf(results))
	}
}

func TestSearchFuzzyRequiresInOrderSubsequence(t *testing.T) {
	s := New(testParams)
	s.Add("Banking", "a", secret.NewString("x"))
	results := s.SearchFuzzy("kgnab") // reversed subsequence, should not match
	if len(results) != 0 {
		t.Fatalf("expected no matches for out-of-order query, got %v", namesOf(results))
	}
}

func namesOf(cs []*Credential) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := newTestStore(t)
	master := secret.NewString("xxxx")

	raw, err := Encode(s, master)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(raw, master)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded.List()) != len(s.List()) {
		t.Fatalf("entry count mismatch: got %d, want %d", len(decoded.List()), len(s.List()))
	}
	for i, want := range s.List() {
		got := decoded.List()[i]
		if got.Name != want.Name || got.Username != want.Username || got.Password.Expose() != want.Password.Expose() {
			t.Fatalf("entry %d mismatch: got %+v, want %+v", i, got, want)
		}
	}
	if decoded.Params() != s.Params() {
		t.Fatalf("params mismatch: got %+v, want %+v", decoded.Params(), s.Params())
	}
}

func TestDecodeWrongMasterPasswordFails(t *testing.T) {
	s := newTestStore(t)
	raw, err := Encode(s, secret.NewString("correct-master"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	_, err = Decode(raw, secret.NewString("wrong-master"))
	if !apperr.Is(err, apperr.KindWrongMasterPassword) {
		t.Fatalf("expected WrongMasterPassword, got %v", err)
	}
}

func TestEncodeProducesFreshIVEachTime(t *testing.T) {
	s := newTestStore(t)
	master := secret.NewString("xxxx")

	a, err := Encode(s, master)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := Encode(s, master)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(a) == string(b) {
		t.Fatal("two encodes of the same store must not be byte-identical")
	}
}

func TestTamperedCiphertextFailsDecode(t *testing.T) {
	s := newTestStore(t)
	master := secret.NewString("xxxx")
	raw, err := Encode(s, master)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	raw[len(raw)-1] ^= 0xFF

	_, err = Decode(raw, master)
	if !apperr.Is(err, apperr.KindWrongMasterPassword) {
		t.Fatalf("expected WrongMasterPassword-shaped rejection for tampered ciphertext, got %v", err)
	}
}
