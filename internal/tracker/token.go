package tracker

import (
	"strings"

	"github.com/google/uuid"
)

// Token lengths, in hex characters.
const (
	EmailIDLength = 12
	LinkIDLength  = 10
)

// NewEmailID returns a short random token for an email record.
// Uniqueness is probabilistic: the token is used as a primary key and
// a collision surfaces as a uniqueness violation on insert.
func NewEmailID() string {
	return newToken(EmailIDLength)
}

// NewLinkID returns a short random token for a link record.
func NewLinkID() string {
	return newToken(LinkIDLength)
}

func newToken(n int) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return hex[:n]
}
