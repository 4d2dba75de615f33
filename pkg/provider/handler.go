package provider

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/getmockd/provider/pkg/fixture"
	"github.com/getmockd/provider/pkg/httputil"
	"github.com/getmockd/provider/pkg/logging"
)

// Path is the route the handler is mounted on.
const Path = "/provider.json"

// DateParam is the required query parameter.
const DateParam = "valid_date"

// TestMarker is the fixed value of the "test" field in every success body.
const TestMarker = "NO"

// AnimalsResponse is the success body of the animals variant.
type AnimalsResponse struct {
	Test      string           `json:"test"`
	ValidDate string           `json:"valid_date"`
	Animals   []fixture.Animal `json:"animals"`
}

// CountResponse is the success body of the count variant.
type CountResponse struct {
	Test      string `json:"test"`
	ValidDate string `json:"valid_date"`
	Count     int    `json:"count"`
}

// Handler serves GET /provider.json from a fixture store.
type Handler struct {
	store *fixture.Store
	now   func() time.Time
	loc   *time.Location
	log   *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock overrides the clock used for the valid_date response field.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// WithLocation sets the location used for dates that carry no zone.
func WithLocation(loc *time.Location) Option {
	return func(h *Handler) {
		if loc != nil {
			h.loc = loc
		}
	}
}

// WithLogger sets the handler's logger.
func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHandler creates a handler reading from store.
func NewHandler(store *fixture.Store, opts ...Option) *Handler {
	h := &Handler{
		store: store,
		now:   time.Now,
		loc:   time.Local,
		log:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !acceptsJSON(r.Header.Values("Accept")) {
		http.NotFound(w, r)
		return
	}

	body, err := h.respond(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WritePrettyJSON(w, http.StatusOK, body)
}

// respond evaluates the request against the current fixture. The order of
// checks is part of the recorded contracts: missing parameter, then empty
// count, then date parsing.
func (h *Handler) respond(r *http.Request) (any, error) {
	query := r.URL.Query()
	if !query.Has(DateParam) {
		return nil, &MissingParameterError{Name: DateParam}
	}
	raw := query.Get(DateParam)

	state := h.store.Get()
	if state.Kind() == fixture.KindCount && state.IsEmpty() {
		return nil, &EmptyFixtureError{Kind: fixture.KindCount}
	}

	if _, err := ParseDate(raw, h.loc); err != nil {
		if state.Kind() == fixture.KindCount {
			return nil, &UnparseableDateError{Value: raw, Err: err}
		}
		return nil, err
	}

	now := h.now().Format(time.RFC3339)
	if state.Kind() == fixture.KindCount {
		return CountResponse{Test: TestMarker, ValidDate: now, Count: state.CountValue()}, nil
	}
	return AnimalsResponse{Test: TestMarker, ValidDate: now, Animals: state.AnimalList()}, nil
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		missing *MissingParameterError
		badDate *UnparseableDateError
		empty   *EmptyFixtureError
	)
	switch {
	case errors.As(err, &missing):
		httputil.WriteJSONString(w, missing.StatusCode(), missing.Error())
	case errors.As(err, &badDate):
		httputil.WriteJSONString(w, badDate.StatusCode(), badDate.Error())
	case errors.As(err, &empty):
		httputil.WriteEmpty(w, empty.StatusCode())
	default:
		h.log.Error("unhandled error serving provider.json", "error", err)
		httputil.WriteInternalError(w, "internal_error", err.Error())
	}
}

// acceptsJSON reports whether the Accept header values admit a JSON response.
// A request without an Accept header accepts anything.
func acceptsJSON(values []string) bool {
	seen := false
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			seen = true
			mediaType, _, err := mime.ParseMediaType(part)
			if err != nil {
				continue
			}
			switch mediaType {
			case "application/json", "application/*", "*/*", "*":
				return true
			}
		}
	}
	return !seen
}
