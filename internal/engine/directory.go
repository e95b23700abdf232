package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-quickevent/internal/config"
)

// DirectorySource contains all parameters required to load the address book.
type DirectorySource struct {
	Mode      string // config.SourceModeLocal, config.SourceModeWeb or config.SourceModeNone
	LocalPath string // Absolute path to the .vcf file
	URL       string // CardDAV or WebDAV URL
	User      string // HTTP Basic Auth Username
	Password  string // HTTP Basic Auth Password
}

// DirectoryLoader reads vCard address books.
type DirectoryLoader struct {
	Fetcher VCardFetcher // Interface for network abstraction.
}

// Directory maps people named in messages to e-mail addresses.
// It is immutable once loaded and safe for concurrent reads.
type Directory struct {
	byName  map[string]string
	byGiven map[string]string
}

// Email returns the address of the contact whose formatted name or, failing
// that, given name equals name (case-insensitive). Given names shared by
// several contacts with different addresses never match.
func (d *Directory) Email(name string) (string, bool) {
	if d == nil {
		return "", false
	}
	key := strings.ToLower(strings.TrimSpace(name))
	if email, ok := d.byName[key]; ok {
		return email, true
	}
	email, ok := d.byGiven[key]
	if ok && email == "" {
		return "", false
	}
	return email, ok
}

// Len returns the number of contacts carrying an e-mail address.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.byName)
}

// Load acquires and decodes the address book described by src.
// SourceModeNone yields an empty directory.
func (l *DirectoryLoader) Load(ctx context.Context, src DirectorySource) (*Directory, error) {
	dir := &Directory{byName: map[string]string{}, byGiven: map[string]string{}}
	if src.Mode == config.SourceModeNone {
		return dir, nil
	}

	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompDirectory,
		config.LogKeyMode, src.Mode,
	)

	reader, err := l.acquireStream(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	stream := &readErrRecorder{r: reader}
	decoder := vcard.NewDecoder(stream)
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if stream.err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrVCardRead, stream.err)
		}
		if err != nil {
			// A malformed card is skipped; the rest of the book still loads.
			log.Warn(config.MsgSkippedCard, config.LogKeyError, err)
			continue
		}
		dir.add(card)
	}

	log.Info(config.MsgDirLoaded,
		config.LogKeyCount, dir.Len(),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return dir, nil
}

// readErrRecorder remembers the first transport error of the underlying
// stream so that it is not mistaken for a malformed card.
type readErrRecorder struct {
	r   io.Reader
	err error
}

func (e *readErrRecorder) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && e.err == nil {
		e.err = err
	}
	return n, err
}

func (d *Directory) add(card vcard.Card) {
	email := card.PreferredValue(config.VCardEmail)
	if email == "" {
		return
	}

	if fn := strings.ToLower(strings.TrimSpace(card.PreferredValue(config.VCardFN))); fn != "" {
		d.byName[fn] = email
	}

	name := card.Name()
	if name == nil || name.GivenName == "" {
		return
	}
	given := strings.ToLower(strings.TrimSpace(name.GivenName))
	if prev, seen := d.byGiven[given]; seen && prev != email {
		d.byGiven[given] = ""
		return
	}
	d.byGiven[given] = email

	if name.FamilyName != "" {
		full := given + " " + strings.ToLower(strings.TrimSpace(name.FamilyName))
		if _, ok := d.byName[full]; !ok {
			d.byName[full] = email
		}
	}
}

// acquireStream opens the appropriate data source based on configuration.
func (l *DirectoryLoader) acquireStream(ctx context.Context, src DirectorySource) (io.ReadCloser, error) {
	switch src.Mode {
	case config.SourceModeLocal:
		if src.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(src.LocalPath)
	case config.SourceModeWeb:
		if src.URL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if l.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return l.Fetcher.Fetch(ctx, src.URL, src.User, src.Password)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, src.Mode)
	}
}
