package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Store provides database operations for tracked emails, links, opens
// and clicks. Every multi-statement operation runs inside a single
// transaction so concurrent requests never observe a partial write.
type Store struct {
	db *sql.DB
}

// NewStore creates a new tracker store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateEmail registers a new tracked email and returns it.
func (s *Store) CreateEmail(ctx context.Context, recipient, subject string) (*Email, error) {
	email := &Email{
		ID:        NewEmailID(),
		Recipient: recipient,
		Subject:   subject,
		CreatedAt: time.Now().UTC(),
	}

	query := `INSERT INTO emails (id, recipient, subject, created_at) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, email.ID, email.Recipient, email.Subject, email.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert email: %w", err)
	}
	return email, nil
}

// CreateLink registers a tracked link for an existing email. Returns
// ErrNotFound when the email does not exist; the link row is only ever
// created against a live email.
func (s *Store) CreateLink(ctx context.Context, emailID, originalURL, label string) (*Link, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists string
	err = tx.QueryRowContext(ctx, `SELECT id FROM emails WHERE id = ?`, emailID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	link := &Link{
		ID:          NewLinkID(),
		EmailID:     emailID,
		OriginalURL: originalURL,
		Label:       label,
		CreatedAt:   time.Now().UTC(),
	}

	query := `INSERT INTO links (id, email_id, original_url, label, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query, link.ID, link.EmailID, link.OriginalURL, link.Label, link.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert link: %w", err)
	}
	return link, tx.Commit()
}

// RecordOpen appends an open event for the email. A missing email is a
// silent no-op, not an error: the pixel endpoint must stay cheap and
// never leak whether an id is live.
func (s *Store) RecordOpen(ctx context.Context, emailID, ip, userAgent, method string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists string
	err = tx.QueryRowContext(ctx, `SELECT id FROM emails WHERE id = ?`, emailID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	query := `INSERT INTO opens (email_id, opened_at, ip_address, user_agent, method) VALUES (?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query, emailID, time.Now().UTC(), ip, userAgent, method); err != nil {
		return fmt.Errorf("insert open: %w", err)
	}
	return tx.Commit()
}

// RecordClick appends a click event for the link, plus the companion
// open (method "link") for the link's owning email, atomically. Returns
// ErrNotFound when the link does not exist. When the link exists but
// recording fails, the link is returned alongside the error so the
// caller can still redirect the visitor.
func (s *Store) RecordClick(ctx context.Context, linkID, ip, userAgent string) (*Link, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	link := &Link{}
	query := `SELECT id, email_id, original_url, label, created_at FROM links WHERE id = ?`
	err = tx.QueryRowContext(ctx, query, linkID).Scan(
		&link.ID, &link.EmailID, &link.OriginalURL, &link.Label, &link.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	clickQuery := `INSERT INTO clicks (link_id, email_id, clicked_at, ip_address, user_agent) VALUES (?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, clickQuery, link.ID, link.EmailID, now, ip, userAgent); err != nil {
		return link, fmt.Errorf("insert click: %w", err)
	}

	openQuery := `INSERT INTO opens (email_id, opened_at, ip_address, user_agent, method) VALUES (?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, openQuery, link.EmailID, now, ip, userAgent, MethodLink); err != nil {
		return link, fmt.Errorf("insert open: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return link, err
	}
	return link, nil
}

// ListEmails returns all emails with aggregated open/click counts and
// last-activity timestamps, newest-created first. Counts are raw event
// counts, not distinct viewers.
func (s *Store) ListEmails(ctx context.Context) ([]EmailSummary, error) {
	query := `SELECT e.id, e.recipient, e.subject, e.created_at,
			COUNT(DISTINCT o.id) AS open_count,
			MAX(o.opened_at) AS last_opened,
			COUNT(DISTINCT c.id) AS click_count,
			MAX(c.clicked_at) AS last_clicked
		FROM emails e
		LEFT JOIN opens o ON e.id = o.email_id
		LEFT JOIN clicks c ON e.id = c.email_id
		GROUP BY e.id
		ORDER BY e.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []EmailSummary{}
	for rows.Next() {
		var sum EmailSummary
		var lastOpened, lastClicked sql.NullTime
		err := rows.Scan(&sum.ID, &sum.Recipient, &sum.Subject, &sum.CreatedAt,
			&sum.OpenCount, &lastOpened, &sum.ClickCount, &lastClicked)
		if err != nil {
			return nil, err
		}
		if lastOpened.Valid {
			sum.LastOpened = &lastOpened.Time
		}
		if lastClicked.Valid {
			sum.LastClicked = &lastClicked.Time
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// GetEmailDetail returns the full event history for an email: opens
// newest-first, links in creation order, clicks newest-first annotated
// with their link's destination and label. An unknown id yields empty
// sequences, indistinguishable from an email with no activity.
func (s *Store) GetEmailDetail(ctx context.Context, emailID string) (*EmailDetail, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	detail := &EmailDetail{
		Opens:  []Open{},
		Links:  []Link{},
		Clicks: []ClickDetail{},
	}

	openRows, err := tx.QueryContext(ctx,
		`SELECT id, email_id, opened_at, ip_address, user_agent, method
		 FROM opens WHERE email_id = ? ORDER BY opened_at DESC`, emailID)
	if err != nil {
		return nil, err
	}
	defer openRows.Close()
	for openRows.Next() {
		var o Open
		if err := openRows.Scan(&o.ID, &o.EmailID, &o.OpenedAt, &o.IPAddress, &o.UserAgent, &o.Method); err != nil {
			return nil, err
		}
		detail.Opens = append(detail.Opens, o)
	}
	if err := openRows.Err(); err != nil {
		return nil, err
	}

	linkRows, err := tx.QueryContext(ctx,
		`SELECT id, email_id, original_url, label, created_at
		 FROM links WHERE email_id = ? ORDER BY created_at`, emailID)
	if err != nil {
		return nil, err
	}
	defer linkRows.Close()
	for linkRows.Next() {
		var l Link
		if err := linkRows.Scan(&l.ID, &l.EmailID, &l.OriginalURL, &l.Label, &l.CreatedAt); err != nil {
			return nil, err
		}
		detail.Links = append(detail.Links, l)
	}
	if err := linkRows.Err(); err != nil {
		return nil, err
	}

	clickRows, err := tx.QueryContext(ctx,
		`SELECT c.clicked_at, c.ip_address, c.user_agent, l.original_url, l.label
		 FROM clicks c JOIN links l ON c.link_id = l.id
		 WHERE c.email_id = ? ORDER BY c.clicked_at DESC`, emailID)
	if err != nil {
		return nil, err
	}
	defer clickRows.Close()
	for clickRows.Next() {
		var c ClickDetail
		if err := clickRows.Scan(&c.ClickedAt, &c.IPAddress, &c.UserAgent, &c.OriginalURL, &c.Label); err != nil {
			return nil, err
		}
		detail.Clicks = append(detail.Clicks, c)
	}
	if err := clickRows.Err(); err != nil {
		return nil, err
	}

	return detail, tx.Commit()
}

// DeleteEmail removes the email and all dependent links, opens and
// clicks in one transaction. Deleting an unknown id succeeds: the
// caller's cleanup flow is idempotent.
func (s *Store) DeleteEmail(ctx context.Context, emailID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, query := range []string{
		`DELETE FROM clicks WHERE email_id = ?`,
		`DELETE FROM opens WHERE email_id = ?`,
		`DELETE FROM links WHERE email_id = ?`,
		`DELETE FROM emails WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, query, emailID); err != nil {
			return fmt.Errorf("cascade delete: %w", err)
		}
	}
	return tx.Commit()
}
