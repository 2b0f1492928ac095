package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/riskboard/internal/adapters/repository"
	"github.com/okian/riskboard/internal/domain/model"
	"github.com/okian/riskboard/internal/domain/topics"
	"github.com/okian/riskboard/pkg/logger"
)

const maxFeedbackBody = 64 << 10

// TopicsDependencies defines the interface for topic listing.
type TopicsDependencies interface {
	Topics() []topics.Topic
}

// TopicsHandler handles topic requests.
type TopicsHandler struct {
	deps TopicsDependencies
}

// NewTopicsHandler creates a new topics handler.
func NewTopicsHandler(deps TopicsDependencies) *TopicsHandler {
	return &TopicsHandler{deps: deps}
}

// HandleListTopics handles GET /api/v1/topics requests.
func (h *TopicsHandler) HandleListTopics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, topicsResponse{
		Topics:   h.deps.Topics(),
		Analyses: topics.Analyses(),
	})
}

// PredictionDependencies defines the interface for prediction operations.
type PredictionDependencies interface {
	FetchPrediction(ctx context.Context, id model.ClientID) (model.PredictionResult, error)
}

// PredictionHandler handles prediction requests.
type PredictionHandler struct {
	deps PredictionDependencies
	log  logger.Logger
}

// NewPredictionHandler creates a new prediction handler.
func NewPredictionHandler(deps PredictionDependencies, log logger.Logger) *PredictionHandler {
	return &PredictionHandler{deps: deps, log: log}
}

// HandleGetPrediction handles GET /api/v1/predictions/{client_id} requests.
func (h *PredictionHandler) HandleGetPrediction(w http.ResponseWriter, r *http.Request) {
	id, err := clientIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	res, err := h.deps.FetchPrediction(r.Context(), id)
	if err != nil {
		h.log.Warn(r.Context(), "prediction failed", logger.String("client_id", id.String()), logger.Error(err))
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PersonalDependencies defines the interface for personal data lookups.
type PersonalDependencies interface {
	FetchPersonalData(ctx context.Context, id model.ClientID) (model.PersonalData, error)
}

// PersonalHandler handles personal data requests.
type PersonalHandler struct {
	deps PersonalDependencies
	log  logger.Logger
}

// NewPersonalHandler creates a new personal data handler.
func NewPersonalHandler(deps PersonalDependencies, log logger.Logger) *PersonalHandler {
	return &PersonalHandler{deps: deps, log: log}
}

// HandleGetPersonal handles GET /api/v1/clients/{client_id}/personal requests.
// Unlike the dashboard, each lookup failure keeps its own status.
func (h *PersonalHandler) HandleGetPersonal(w http.ResponseWriter, r *http.Request) {
	id, err := clientIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	data, err := h.deps.FetchPersonalData(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, data)
	case errors.Is(err, model.ErrInvalidClientID):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", repository.ErrNotFound)
	case errors.Is(err, repository.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "store_not_configured", repository.ErrNotConfigured)
	default:
		h.log.Warn(r.Context(), "personal lookup failed", logger.String("client_id", id.String()), logger.Error(err))
		writeError(w, http.StatusServiceUnavailable, "store_unreachable", repository.ErrUnreachable)
	}
}

// FeedbackDependencies defines the interface for feedback forwarding.
type FeedbackDependencies interface {
	SubmitFeedback(ctx context.Context, fb model.FeedbackSubmission) error
}

// FeedbackHandler handles feedback requests.
type FeedbackHandler struct {
	deps FeedbackDependencies
	log  logger.Logger
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(deps FeedbackDependencies, log logger.Logger) *FeedbackHandler {
	return &FeedbackHandler{deps: deps, log: log}
}

type feedbackAck struct {
	Status string `json:"status"`
}

// HandlePostFeedback handles POST /api/v1/feedback requests. The body has the
// same shape as the risk service's /feedback payload.
func (h *FeedbackHandler) HandlePostFeedback(w http.ResponseWriter, r *http.Request) {
	var fb model.FeedbackSubmission
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFeedbackBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fb); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	id, err := model.ParseClientID(fb.CustomDimensions.ClientID.String())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	fb.CustomDimensions.ClientID = id

	if err := h.deps.SubmitFeedback(r.Context(), fb); err != nil {
		h.log.Warn(r.Context(), "feedback failed", logger.String("client_id", id.String()), logger.Error(err))
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feedbackAck{Status: "sent"})
}
