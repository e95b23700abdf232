package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-quickevent/internal/config"
	"github.com/tartampluch/go-quickevent/internal/engine"
	"github.com/tartampluch/go-quickevent/internal/locale"
	"github.com/tartampluch/go-quickevent/internal/tree"
)

// Resolver turns messages, or already chunked trees, into events.
type Resolver interface {
	Resolve(ctx context.Context, message string) (*engine.Event, error)
	ResolveTree(root *tree.Node) (*engine.Event, error)
}

// Publisher pushes a resolved event to a remote calendar.
type Publisher interface {
	Publish(ctx context.Context, ev *engine.Event) (string, error)
}

// cacheItem stores the rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// CalendarServer resolves messages over HTTP and serves the resulting events
// as an iCalendar feed.
type CalendarServer struct {
	// cache uses atomic.Pointer for lock-free reads.
	// The feed is read far more often than events are added.
	cache atomic.Pointer[cacheItem]

	BindAddr string
	Port     string

	Resolver  Resolver
	Contacts  engine.Contacts // Optional; turns people into attendees.
	Publisher Publisher       // Optional; nil disables CalDAV publishing.
	Catalog   *locale.Catalog
	Clock     engine.Clock

	// mu guards events, the most recent resolved events, oldest first.
	mu     sync.Mutex
	events []*engine.Event

	metrics *metrics
}

// NewCalendarServer creates a new instance of the server.
func NewCalendarServer(port string, resolver Resolver) *CalendarServer {
	return &CalendarServer{
		BindAddr: config.LocalhostBindAddr,
		Port:     port,
		Resolver: resolver,
		Catalog:  locale.NewCatalog(config.DefaultLanguage),
		Clock:    engine.RealClock{},
		metrics:  newMetrics(),
	}
}

// Handler returns the routes of the server.
func (s *CalendarServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot, s.handleResolveRequest)
	mux.HandleFunc(config.RouteFeed, s.handleCalendarRequest)
	mux.Handle(config.RouteMetrics, s.metrics.handler())
	return mux
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *CalendarServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         s.BindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Record adds ev to the feed, dropping the oldest events beyond
// config.MaxFeedEvents, and re-renders the calendar.
func (s *CalendarServer) Record(ev *engine.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, ev)
	if over := len(s.events) - config.MaxFeedEvents; over > 0 {
		s.events = append([]*engine.Event(nil), s.events[over:]...)
	}

	data, err := engine.RenderCalendar(s.events, s.Contacts, s.Clock.Now())
	if err != nil {
		return err
	}
	s.Update(data)
	return nil
}

// Update atomically replaces the served content.
func (s *CalendarServer) Update(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	item := &cacheItem{
		data:         data,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	}

	// Concurrent readers see either the old or the new complete item.
	s.cache.Store(item)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// handleCalendarRequest serves the ICS content with HTTP caching support.
func (s *CalendarServer) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	tr := s.Catalog.For(r.Header.Get(config.HeaderAcceptLanguage))

	// 1. Method Validation
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethodsFeed)
		http.Error(w, tr.Msg(config.TKeyErrMethod, nil), http.StatusMethodNotAllowed)
		return
	}

	// 2. Load Data (Atomic / Lock-Free)
	item := s.cache.Load()

	// 3. Readiness Check
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, tr.Msg(config.TKeyFeedInitializing, nil), http.StatusServiceUnavailable)
		return
	}

	// 4. Set Response Headers
	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	// 5. Check Conditional Headers (Browser Caching)
	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	// 6. Serve Content
	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}
