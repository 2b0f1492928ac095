// Package api declares the JSON HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/riskboard/internal/adapters/riskapi"
	"github.com/okian/riskboard/internal/domain/model"
	"github.com/okian/riskboard/internal/domain/topics"
	"github.com/okian/riskboard/pkg/logger"
)

// Route prefix for the JSON API.
const Prefix = "/api/v1"

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	TopicsDependencies
	PredictionDependencies
	PersonalDependencies
	FeedbackDependencies
}

// Server wires HTTP routes for the JSON API.
type Server struct {
	healthHandler     *HealthHandler
	topicsHandler     *TopicsHandler
	predictionHandler *PredictionHandler
	personalHandler   *PersonalHandler
	feedbackHandler   *FeedbackHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	return &Server{
		healthHandler:     NewHealthHandler(),
		topicsHandler:     NewTopicsHandler(deps),
		predictionHandler: NewPredictionHandler(deps, log),
		personalHandler:   NewPersonalHandler(deps, log),
		feedbackHandler:   NewFeedbackHandler(deps, log),
	}
}

// Register attaches all API routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/metrics", s.healthHandler.HandleMetrics)

	r.Route(Prefix, func(r chi.Router) {
		r.Get("/topics", MetricsMiddleware(s.topicsHandler.HandleListTopics, "topics"))
		r.Get("/predictions/{client_id}", MetricsMiddleware(s.predictionHandler.HandleGetPrediction, "predictions"))
		r.Get("/clients/{client_id}/personal", MetricsMiddleware(s.personalHandler.HandleGetPersonal, "personal"))
		r.Post("/feedback", MetricsMiddleware(s.feedbackHandler.HandlePostFeedback, "feedback"))
	})
}

type errorResponse struct {
	Code           string `json:"code"`
	Message        string `json:"message"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeUpstreamError maps a risk service failure to 502, keeping the upstream status.
func writeUpstreamError(w http.ResponseWriter, err error) {
	resp := errorResponse{Code: "upstream_error", Message: err.Error()}
	var tErr *riskapi.TransportError
	switch {
	case errors.As(err, &tErr):
		resp.Code = "upstream_unreachable"
	case errors.Is(err, riskapi.ErrDecode):
		resp.Code = "upstream_invalid_response"
	default:
		resp.UpstreamStatus = riskapi.StatusCode(err)
	}
	writeJSON(w, http.StatusBadGateway, resp)
}

func clientIDParam(r *http.Request) (model.ClientID, error) {
	return model.ParseClientID(chi.URLParam(r, "client_id"))
}

// topicsResponse lists the sidebar topics and exploration analyses.
type topicsResponse struct {
	Topics   []topics.Topic    `json:"topics"`
	Analyses []topics.Analysis `json:"analyses"`
}
