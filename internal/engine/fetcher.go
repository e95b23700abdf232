package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-quickevent/internal/config"
)

// ErrFetchStatus is returned when the address book server answers with
// anything but 200.
var ErrFetchStatus = errors.New(config.ErrFetchStatus)

// VCardFetcher retrieves a remote address book (a plain .vcf URL or a
// CardDAV collection export).
type VCardFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// HTTPFetcher is the net/http VCardFetcher.
type HTTPFetcher struct {
	Client *http.Client
	// MaxBytes caps the body handed to the vCard decoder.
	MaxBytes int64
}

// NewHTTPFetcher returns a fetcher with the configured timeout and size cap.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:   &http.Client{Timeout: config.HTTPTimeout},
		MaxBytes: config.MaxHTTPResponseSize,
	}
}

// Fetch opens the address book at rawURL. Credentials are sent as basic auth
// when either is set. The caller closes the returned body.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL, user, pass string) (io.ReadCloser, error) {
	u, err := checkSourceURL(rawURL)
	if err != nil {
		return nil, err
	}
	log := slog.With(
		config.LogKeyComponent, config.CompFetcher,
		config.LogKeyURL, redactURL(u),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchRequest, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.MimeVCard)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchNetwork, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.Warn(config.MsgDirRefused, config.LogKeyStatus, resp.StatusCode)
		return nil, fmt.Errorf("%w: %s", ErrFetchStatus, resp.Status)
	}

	log.Info(config.MsgDirDownloading, config.LogKeySizeBytes, resp.ContentLength)

	limit := f.MaxBytes
	if limit <= 0 {
		limit = config.MaxHTTPResponseSize
	}
	return capped{Reader: io.LimitReader(resp.Body, limit), Closer: resp.Body}, nil
}

// checkSourceURL accepts absolute http and https URLs only.
func checkSourceURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %q", config.ErrProtocol, u.Scheme)
	}
	return u, nil
}

// redactURL drops user info and query, both of which may carry secrets.
func redactURL(u *url.URL) string {
	clean := url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path}
	return clean.String()
}

// capped reads from a limited reader and closes the underlying body.
type capped struct {
	io.Reader
	io.Closer
}
