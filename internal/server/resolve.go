package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tartampluch/go-quickevent/internal/config"
	"github.com/tartampluch/go-quickevent/internal/engine"
	"github.com/tartampluch/go-quickevent/internal/locale"
	"github.com/tartampluch/go-quickevent/internal/tree"
)

// errorBody is the JSON document returned for rejected requests.
type errorBody struct {
	Error string `json:"error"`
}

// handleResolveRequest reads the form field "message" (or "tree", an
// already chunked bracketed tree) and answers with the resolved event.
func (s *CalendarServer) handleResolveRequest(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	tr := s.Catalog.For(r.Header.Get(config.HeaderAcceptLanguage))
	log := slog.With(config.LogKeyComponent, config.CompServer, config.LogKeyLang, tr.Lang)

	if r.URL.Path != config.RouteRoot {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set(config.HeaderAllow, config.AllowedMethodsRoot)
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{tr.Msg(config.TKeyErrMethod, nil)})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBodySize)
	if err := r.ParseForm(); err != nil {
		s.metrics.observe(config.OutcomeRejected, started)
		writeJSON(w, http.StatusBadRequest, errorBody{tr.Msg(config.TKeyErrMessageRequired, nil)})
		return
	}

	message := strings.TrimSpace(r.PostFormValue(config.FormFieldMessage))
	treeText := strings.TrimSpace(r.PostFormValue(config.FormFieldTree))

	var ev *engine.Event
	var err error
	switch {
	case treeText != "":
		ev, err = s.resolveTree(treeText)
	case message != "":
		ev, err = s.Resolver.Resolve(r.Context(), message)
	default:
		s.metrics.observe(config.OutcomeRejected, started)
		writeJSON(w, http.StatusBadRequest, errorBody{tr.Msg(config.TKeyErrMessageRequired, nil)})
		return
	}

	if err != nil {
		status, outcome, body := s.describeError(tr, err)
		s.metrics.observe(outcome, started)
		log.Warn(config.MsgRejected, config.LogKeyStatus, status, config.LogKeyError, err)
		writeJSON(w, status, body)
		return
	}

	if err := s.Record(ev); err != nil {
		log.Error(config.ErrICalEncode, config.LogKeyError, err)
	}
	if s.Publisher != nil {
		if _, err := s.Publisher.Publish(r.Context(), ev); err != nil {
			log.Warn(config.MsgPublishFailed, config.LogKeyError, err)
		}
	}

	s.metrics.observe(config.OutcomeOK, started)
	writeJSON(w, http.StatusOK, ev)
}

func (s *CalendarServer) resolveTree(text string) (*engine.Event, error) {
	root, err := tree.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrInvalidInput, err)
	}
	ev, err := s.Resolver.ResolveTree(root)
	if err != nil {
		return nil, err
	}
	ev.Message = tree.Words(root)
	return ev, nil
}

// describeError maps a resolution failure to its HTTP status, metric outcome
// and localised body. Input errors carry their detail to the client; other
// failures do not.
func (s *CalendarServer) describeError(tr *locale.Translator, err error) (int, string, errorBody) {
	switch {
	case errors.Is(err, engine.ErrAmbiguousInput):
		return http.StatusUnprocessableEntity, config.OutcomeRejected,
			errorBody{tr.Msg(config.TKeyErrAmbiguous, map[string]any{"Detail": detail(err)})}
	case engine.IsInputError(err):
		return http.StatusUnprocessableEntity, config.OutcomeRejected,
			errorBody{tr.Msg(config.TKeyErrInvalid, map[string]any{"Detail": detail(err)})}
	default:
		return http.StatusInternalServerError, config.OutcomeFailed,
			errorBody{tr.Msg(config.TKeyErrInternal, nil)}
	}
}

// detail strips the sentinel prefix from an input error.
func detail(err error) string {
	msg := err.Error()
	for _, prefix := range []string{config.ErrAmbiguousInput + ": ", config.ErrInvalidInput + ": "} {
		msg = strings.TrimPrefix(msg, prefix)
	}
	return msg
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}
