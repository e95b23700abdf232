package engine_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-quickevent/internal/config"
	"github.com/tartampluch/go-quickevent/internal/engine"
)

const sampleCard = "BEGIN:VCARD\nVERSION:3.0\nFN:Sara Connor\nEMAIL:sara@example.com\nEND:VCARD"

func TestHTTPFetcher_SendsCredentialsAndHeaders(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "sara", user)
		assert.Equal(t, "s3cret", pass)
		assert.Equal(t, config.UserAgent, r.Header.Get(config.HeaderUserAgent))
		assert.Equal(t, config.MimeVCard, r.Header.Get(config.HeaderAccept))
		_, _ = io.WriteString(w, sampleCard)
	}))
	defer ts.Close()

	rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL+"/contacts.vcf", "sara", "s3cret")
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, sampleCard, string(body))
}

func TestHTTPFetcher_AnonymousHasNoAuthorization(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, ok := r.BasicAuth()
		assert.False(t, ok)
		_, _ = io.WriteString(w, sampleCard)
	}))
	defer ts.Close()

	rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL, "", "")
	require.NoError(t, err)
	_ = rc.Close()
}

func TestHTTPFetcher_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		rawURL  string
		wantErr string
	}{
		{"Not found", http.StatusNotFound, "", "404"},
		{"Unauthorized", http.StatusUnauthorized, "", "401"},
		{"Server error", http.StatusInternalServerError, "", "500"},
		{"Control character", 0, string([]byte{0x7f}), config.ErrInvalidURL},
		{"FTP scheme", 0, "ftp://example.com/book.vcf", config.ErrProtocol},
		{"Relative path", 0, "contacts.vcf", config.ErrProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := tt.rawURL
			if tt.status != 0 {
				ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
				}))
				defer ts.Close()
				target = ts.URL
			}

			rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), target, "", "")
			require.Error(t, err)
			assert.Nil(t, rc)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.status != 0 {
				assert.ErrorIs(t, err, engine.ErrFetchStatus)
			}
		})
	}
}

func TestHTTPFetcher_HonoursContextDeadline(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := engine.NewHTTPFetcher().Fetch(ctx, ts.URL, "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), config.ErrFetchNetwork)
}

func TestHTTPFetcher_CapsBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("x", 4096))
	}))
	defer ts.Close()

	f := engine.NewHTTPFetcher()
	f.MaxBytes = 1000

	rc, err := f.Fetch(context.Background(), ts.URL, "", "")
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	n, err := io.Copy(io.Discard, rc)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), n)
}
