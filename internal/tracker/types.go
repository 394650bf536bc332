package tracker

import (
	"errors"
	"time"
)

// Open method constants
const (
	MethodPixel = "pixel"
	MethodLink  = "link"
)

// ErrNotFound is returned when a referenced email or link does not exist.
var ErrNotFound = errors.New("not found")

// Email represents a tracked outgoing email.
type Email struct {
	ID        string    `json:"id" db:"id"`
	Recipient string    `json:"recipient" db:"recipient"`
	Subject   string    `json:"subject" db:"subject"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Link represents a tracked redirect link embedded in an email.
type Link struct {
	ID          string    `json:"id" db:"id"`
	EmailID     string    `json:"email_id" db:"email_id"`
	OriginalURL string    `json:"original_url" db:"original_url"`
	Label       string    `json:"label" db:"label"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Open is one observed open event. Rows are append-only.
type Open struct {
	ID        int64     `json:"id" db:"id"`
	EmailID   string    `json:"email_id" db:"email_id"`
	OpenedAt  time.Time `json:"opened_at" db:"opened_at"`
	IPAddress string    `json:"ip_address" db:"ip_address"`
	UserAgent string    `json:"user_agent" db:"user_agent"`
	Method    string    `json:"method" db:"method"`
}

// Click is one observed click event. Rows are append-only.
type Click struct {
	ID        int64     `json:"id" db:"id"`
	LinkID    string    `json:"link_id" db:"link_id"`
	EmailID   string    `json:"email_id" db:"email_id"`
	ClickedAt time.Time `json:"clicked_at" db:"clicked_at"`
	IPAddress string    `json:"ip_address" db:"ip_address"`
	UserAgent string    `json:"user_agent" db:"user_agent"`
}

// EmailSummary is an email with its aggregated activity counts.
type EmailSummary struct {
	Email
	OpenCount   int        `json:"open_count"`
	LastOpened  *time.Time `json:"last_opened"`
	ClickCount  int        `json:"click_count"`
	LastClicked *time.Time `json:"last_clicked"`
}

// ClickDetail is a click joined with its link's destination and label.
type ClickDetail struct {
	ClickedAt   time.Time `json:"clicked_at"`
	IPAddress   string    `json:"ip_address"`
	UserAgent   string    `json:"user_agent"`
	OriginalURL string    `json:"original_url"`
	Label       string    `json:"label"`
}

// EmailDetail is the full event history for one email.
type EmailDetail struct {
	Opens  []Open        `json:"opens"`
	Links  []Link        `json:"links"`
	Clicks []ClickDetail `json:"clicks"`
}

// Engaged reports whether the email has any recorded activity.
func (s EmailSummary) Engaged() bool {
	return s.OpenCount > 0 || s.ClickCount > 0
}
