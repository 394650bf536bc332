package tracking

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ignite/opentrack/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewHandler(tracker.NewStore(db)), mock
}

func TestHandlePixelKnownEmail(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM emails WHERE id").
		WithArgs("abc123def456").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("abc123def456"))
	mock.ExpectExec("INSERT INTO opens").
		WithArgs("abc123def456", sqlmock.AnyArg(), "203.0.113.9", "Thunderbird", tracker.MethodPixel).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	req := httptest.NewRequest(http.MethodGet, "/p/abc123def456.gif", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	req.Header.Set("User-Agent", "Thunderbird")
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/gif", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store, no-cache, must-revalidate, max-age=0", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	assert.Equal(t, "0", rec.Header().Get("Expires"))
	assert.Equal(t, pixelGIF, rec.Body.Bytes())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlePixelUnknownEmailStillServesPixel(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM emails WHERE id").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	req := httptest.NewRequest(http.MethodGet, "/p/ghost.gif", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/gif", rec.Header().Get("Content-Type"))
	assert.Equal(t, pixelGIF, rec.Body.Bytes())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleClickRedirects(t *testing.T) {
	h, mock := newTestHandler(t)

	created := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, email_id, original_url, label, created_at FROM links WHERE id").
		WithArgs("l1abcdef00").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email_id", "original_url", "label", "created_at"}).
			AddRow("l1abcdef00", "e1", "https://x.com", "", created))
	mock.ExpectExec("INSERT INTO clicks").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO opens").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	req := httptest.NewRequest(http.MethodGet, "/l/l1abcdef00", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://x.com", rec.Header().Get("Location"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleClickUnknownLink(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, email_id, original_url, label, created_at FROM links WHERE id").
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	req := httptest.NewRequest(http.MethodGet, "/l/nope", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleClickRecordFailureStillRedirects(t *testing.T) {
	h, mock := newTestHandler(t)

	created := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, email_id, original_url, label, created_at FROM links WHERE id").
		WithArgs("l1abcdef00").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email_id", "original_url", "label", "created_at"}).
			AddRow("l1abcdef00", "e1", "https://x.com", "", created))
	mock.ExpectExec("INSERT INTO clicks").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	req := httptest.NewRequest(http.MethodGet, "/l/l1abcdef00", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://x.com", rec.Header().Get("Location"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRealIP(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{
			name:  "forwarded-for single",
			setup: func(r *http.Request) { r.Header.Set("X-Forwarded-For", "203.0.113.9") },
			want:  "203.0.113.9",
		},
		{
			name:  "forwarded-for chain takes first hop",
			setup: func(r *http.Request) { r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1") },
			want:  "203.0.113.9",
		},
		{
			name:  "real-ip fallback",
			setup: func(r *http.Request) { r.Header.Set("X-Real-Ip", "198.51.100.4") },
			want:  "198.51.100.4",
		},
		{
			name:  "remote addr fallback",
			setup: func(r *http.Request) {},
			want:  "192.0.2.1:1234",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			assert.Equal(t, tt.want, realIP(req))
		})
	}
}

func TestPixelURL(t *testing.T) {
	assert.Equal(t, "https://t.example.com/p/abc123def456.gif", PixelURL("https://t.example.com", "abc123def456"))
	assert.Equal(t, "https://t.example.com/p/abc123def456.gif", PixelURL("https://t.example.com/", "abc123def456"))
}

func TestLinkURL(t *testing.T) {
	assert.Equal(t, "https://t.example.com/l/l1abcdef00", LinkURL("https://t.example.com", "l1abcdef00"))
}

func TestImgTag(t *testing.T) {
	tag := ImgTag("https://t.example.com/p/abc.gif")
	assert.Equal(t, `<img src="https://t.example.com/p/abc.gif" width="1" height="1" style="display:none" alt="" />`, tag)
}
