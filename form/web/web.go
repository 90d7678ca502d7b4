// Package web serves the BFHL form as an HTML page.
//
// # Routes
//
//   - GET / - a fresh form. Reloading the page starts over.
//   - POST /submit - submits the "input" field of the "session" form.
//   - POST /filters - toggles the "label" filter of the "session" form. The
//     "input" field, if posted, is kept as typed but not submitted.
//   - POST /api/process - JSON API, see [ProcessRequest].
package web

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/twipi/bfhl/backend"
	"github.com/twipi/bfhl/bfhl"
	"github.com/twipi/bfhl/form"
	"github.com/twipi/bfhl/internal/slogctx"
	"github.com/twipi/bfhl/internal/srvutil"
	"libdb.so/hrt"
)

//go:embed templates/*.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// DefaultSessionTTL is used when [Config.SessionTTL] is zero.
const DefaultSessionTTL = 30 * time.Minute

// Config configures [Handler].
type Config struct {
	// SessionTTL is how long an idle form keeps its state.
	SessionTTL time.Duration
}

// Handler serves the form and implements [http.Handler].
type Handler struct {
	router    *chi.Mux
	processor backend.Processor
	sessions  *sessionStore
	logger    *slog.Logger
}

var _ http.Handler = (*Handler)(nil)

// NewHandler creates a new [Handler] forwarding submissions to processor.
func NewHandler(processor backend.Processor, cfg Config, logger *slog.Logger) *Handler {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}

	h := &Handler{
		router:    chi.NewRouter(),
		processor: processor,
		sessions:  newSessionStore(processor, cfg.SessionTTL, logger),
		logger:    logger,
	}

	r := h.router
	r.Use(middleware.CleanPath)
	r.Use(middleware.RequestID)
	r.Use(srvutil.LogRequests(logger))

	r.Get("/", h.index)
	r.Group(func(r chi.Router) {
		r.Use(srvutil.ParseForm)
		r.Post("/submit", h.submit)
		r.Post("/filters", h.toggleFilter)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(hrt.Use(hrt.Opts{
			Encoder:     hrt.JSONEncoder,
			ErrorWriter: hrt.TextErrorWriter,
		}))
		r.Post("/process", hrt.Wrap(h.process))
	})

	return h
}

// ServeHTTP implements [http.Handler].
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// Start sweeps idle sessions until ctx is canceled.
func (h *Handler) Start(ctx context.Context) error {
	return h.sessions.run(ctx)
}

type filterItem struct {
	Label   bfhl.Label
	Checked bool
}

type pageData struct {
	Session string
	Input   string
	Error   string
	Filters []filterItem
	// View is the indented projection, or empty if there is no response yet.
	View string
}

func newPageData(token string, state form.State) pageData {
	data := pageData{
		Session: token,
		Input:   state.Input,
		Error:   state.Error,
	}

	if view := state.View(); view != nil {
		data.View = view.Indent()
		data.Filters = make([]filterItem, len(bfhl.Labels))
		for i, label := range bfhl.Labels {
			data.Filters[i] = filterItem{
				Label:   label,
				Checked: state.Selection.Has(label),
			}
		}
	}

	return data
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	token, sess, err := h.sessions.create()
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.render(w, r, token, sess.ctrl.State())
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	token, sess, err := h.sessions.lookup(r.PostForm.Get("session"))
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	// The controller records the failure in its state and logs it.
	sess.ctrl.Submit(r.Context(), r.PostForm.Get("input"))

	h.render(w, r, token, sess.ctrl.State())
}

func (h *Handler) toggleFilter(w http.ResponseWriter, r *http.Request) {
	token, sess, err := h.sessions.lookup(r.PostForm.Get("session"))
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	if r.PostForm.Has("input") {
		sess.ctrl.SetInput(r.PostForm.Get("input"))
	}
	if label, ok := bfhl.ParseLabel(r.PostForm.Get("label")); ok {
		sess.ctrl.ToggleFilter(label)
	}

	h.render(w, r, token, sess.ctrl.State())
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, token string, state form.State) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := indexTemplate.Execute(w, newPageData(token, state)); err != nil {
		slogctx.FromOr(r.Context(), h.logger).Error(
			"failed to render form page",
			"err", err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	slogctx.FromOr(r.Context(), h.logger).Error(
		"failed to start form session",
		"err", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// ProcessRequest is the body of POST /api/process.
type ProcessRequest struct {
	// Input is the raw text, as it would be typed into the form.
	Input string `json:"input"`
	// Filters are the ticked labels.
	Filters []bfhl.Label `json:"filters"`
}

// ProcessResponse is the answer of POST /api/process. View is null if the
// submission failed or the endpoint answered with nothing to show.
type ProcessResponse struct {
	View  *bfhl.View `json:"view"`
	Error string     `json:"error,omitempty"`
}

func (h *Handler) process(ctx context.Context, req ProcessRequest) (ProcessResponse, error) {
	for _, label := range req.Filters {
		if !label.Valid() {
			return ProcessResponse{}, hrt.NewHTTPError(http.StatusBadRequest, "unknown filter "+string(label))
		}
	}

	ctrl := form.NewController(h.processor, h.logger)
	ctrl.SetSelection(bfhl.NewSelection(req.Filters...))
	ctrl.Submit(ctx, req.Input)

	state := ctrl.State()
	return ProcessResponse{
		View:  state.View(),
		Error: state.Error,
	}, nil
}
