package tracker

import (
	"strings"
	"testing"
)

func TestNewEmailID(t *testing.T) {
	id := NewEmailID()
	if len(id) != EmailIDLength {
		t.Errorf("NewEmailID() length = %d, want %d", len(id), EmailIDLength)
	}
	for _, c := range id {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Errorf("NewEmailID() contains non-hex character %q in %s", c, id)
		}
	}
}

func TestNewLinkID(t *testing.T) {
	id := NewLinkID()
	if len(id) != LinkIDLength {
		t.Errorf("NewLinkID() length = %d, want %d", len(id), LinkIDLength)
	}
}

func TestTokensAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewEmailID()
		if seen[id] {
			t.Fatalf("duplicate token %s after %d generations", id, i)
		}
		seen[id] = true
	}
}
