// Package dashboard serves the HTML dashboard: the topic sidebar, the input
// forms and the result panels. Every request renders one Page from scratch.
package dashboard

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/riskboard/internal/adapters/http/api"
	"github.com/okian/riskboard/internal/domain/model"
	"github.com/okian/riskboard/internal/domain/topics"
	"github.com/okian/riskboard/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// Error constants.
var (
	ErrTemplates = errors.New("dashboard templates failed to parse")
	ErrRender    = errors.New("dashboard render failed")
)

// Routes.
const (
	PathRoot      = "/"
	PathPredict   = "/actions/predict"
	PathPersonal  = "/actions/personal"
	PathVisualize = "/actions/visualize"
	PathFeedback  = "/actions/feedback"
)

// Service is the set of operations the dashboard triggers.
type Service interface {
	Topics() []topics.Topic
	TopicByCode(code string) (topics.Topic, error)
	SelectAnalysisTopic(label string) (topics.Topic, error)
	FetchPersonalData(ctx context.Context, id model.ClientID) (model.PersonalData, error)
	FetchPrediction(ctx context.Context, id model.ClientID) (model.PredictionResult, error)
	SubmitFeedback(ctx context.Context, fb model.FeedbackSubmission) error
	FetchVisualization(ctx context.Context, req model.VisualizationRequest) (string, error)
}

// Settings are the display defaults.
type Settings struct {
	DefaultClientID          string
	DefaultJobID             string
	ExplorationFrameHeight   int
	VisualizationFrameHeight int
}

// DefaultSettings mirrors the configuration defaults.
func DefaultSettings() Settings {
	return Settings{
		DefaultClientID:          "120194",
		DefaultJobID:             "dummy_job",
		ExplorationFrameHeight:   750,
		VisualizationFrameHeight: 700,
	}
}

// Option configures the Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// WithSettings overrides the display defaults. Zero fields keep their default.
func WithSettings(s Settings) Option {
	return func(h *Handler) {
		if s.DefaultClientID != "" {
			h.settings.DefaultClientID = s.DefaultClientID
		}
		if s.DefaultJobID != "" {
			h.settings.DefaultJobID = s.DefaultJobID
		}
		if s.ExplorationFrameHeight > 0 {
			h.settings.ExplorationFrameHeight = s.ExplorationFrameHeight
		}
		if s.VisualizationFrameHeight > 0 {
			h.settings.VisualizationFrameHeight = s.VisualizationFrameHeight
		}
	}
}

// Handler renders dashboard pages.
type Handler struct {
	svc       Service
	settings  Settings
	templates *template.Template
	log       logger.Logger
}

// NewHandler parses the embedded templates and builds a Handler.
func NewHandler(svc Service, opts ...Option) (*Handler, error) {
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplates, err)
	}
	h := &Handler{
		svc:       svc,
		settings:  DefaultSettings(),
		templates: tmpl,
		log:       logger.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Register attaches the dashboard routes to r.
func (h *Handler) Register(r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Get(PathRoot, api.MetricsMiddleware(h.HandleIndex, "dashboard"))
	r.Post(PathPredict, api.MetricsMiddleware(h.HandlePredict, "dashboard_predict"))
	r.Post(PathPersonal, api.MetricsMiddleware(h.HandlePersonal, "dashboard_personal"))
	r.Post(PathVisualize, api.MetricsMiddleware(h.HandleVisualize, "dashboard_visualize"))
	r.Post(PathFeedback, api.MetricsMiddleware(h.HandleFeedback, "dashboard_feedback"))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, p *Page) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, "page", p); err != nil {
		h.log.Error(r.Context(), "template render failed",
			logger.String("topic", p.Topic.Code),
			logger.Error(fmt.Errorf("%w: %v", ErrRender, err)))
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
