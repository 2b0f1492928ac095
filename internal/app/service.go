// Package service provides the dashboard operations shared by the HTML pages
// and the JSON API.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/okian/riskboard/internal/adapters/repository"
	"github.com/okian/riskboard/internal/adapters/riskapi"
	"github.com/okian/riskboard/internal/domain/model"
	"github.com/okian/riskboard/internal/domain/topics"
	"github.com/okian/riskboard/pkg/logger"
	"github.com/okian/riskboard/pkg/metrics"
)

// ErrUnknownTopic is returned when a topic label or code is not offered.
var ErrUnknownTopic = topics.ErrUnknownTopic

// Service implements the dashboard operations on top of the risk service
// and the personal data store. It holds no per-interaction state.
type Service struct {
	api   riskapi.Client
	store repository.Store

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service over the given collaborators.
func New(api riskapi.Client, store repository.Store, opts ...Option) *Service {
	s := &Service{
		api:    api,
		store:  store,
		logger: logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Topics returns the sidebar topics in order.
func (s *Service) Topics() []topics.Topic {
	return topics.All()
}

// SelectAnalysisTopic resolves a sidebar label. It never performs I/O.
func (s *Service) SelectAnalysisTopic(label string) (topics.Topic, error) {
	t, err := topics.ByLabel(label)
	if err != nil {
		return topics.Topic{}, ErrUnknownTopic
	}
	metrics.RecordTopicSelection(t.Code)
	return t, nil
}

// TopicByCode resolves a topic code; an empty code selects the default topic.
func (s *Service) TopicByCode(code string) (topics.Topic, error) {
	if code == "" {
		return topics.Default(), nil
	}
	t, err := topics.ByCode(code)
	if err != nil {
		return topics.Topic{}, ErrUnknownTopic
	}
	metrics.RecordTopicSelection(t.Code)
	return t, nil
}

// FetchPersonalData reads name and photo for a client. The id must be an integer.
func (s *Service) FetchPersonalData(ctx context.Context, id model.ClientID) (model.PersonalData, error) {
	n, err := id.Int64()
	if err != nil {
		s.logger.Info(ctx, "personal lookup rejected", logger.String("client_id", id.String()), logger.Error(err))
		return model.PersonalData{}, err
	}
	return s.store.Personal(ctx, n)
}

// FetchPrediction asks the risk service for a prediction and reshapes it for display.
func (s *Service) FetchPrediction(ctx context.Context, id model.ClientID) (model.PredictionResult, error) {
	start := time.Now()
	raw, err := s.api.Predict(ctx, id)
	if err != nil {
		return model.PredictionResult{}, err
	}
	result := raw.Reshape(id)
	metrics.RecordPrediction(result.RiskCategory.String())
	s.logger.Info(ctx, "prediction fetched",
		logger.String("client_id", id.String()),
		logger.Float64("risk_score", result.RiskScore),
		logger.String("risk_category", result.RiskCategory.String()),
		logger.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// SubmitFeedback forwards one feedback submission.
func (s *Service) SubmitFeedback(ctx context.Context, fb model.FeedbackSubmission) error {
	if fb.CustomDimensions.ClientID == "" {
		metrics.RecordFeedback(fb.Sentiment(), "rejected")
		return model.ErrEmptyClientID
	}
	if err := s.api.SendFeedback(ctx, fb); err != nil {
		metrics.RecordFeedback(fb.Sentiment(), "failed")
		return err
	}
	metrics.RecordFeedback(fb.Sentiment(), "sent")
	return nil
}

// FetchVisualization returns the embeddable markup for req, verbatim.
func (s *Service) FetchVisualization(ctx context.Context, req model.VisualizationRequest) (string, error) {
	if err := req.Validate(); err != nil {
		metrics.RecordVisualization(req.AnalysisType, "rejected")
		return "", err
	}
	markup, err := s.api.Dataviz(ctx, req)
	if err != nil {
		metrics.RecordVisualization(req.AnalysisType, "failed")
		return "", err
	}
	metrics.RecordVisualization(req.AnalysisType, "rendered")
	return markup, nil
}

// IsNoData reports whether err belongs to the personal lookup failures that the
// dashboard shows as a single "no data" notice.
func IsNoData(err error) bool {
	return errors.Is(err, repository.ErrNotFound) ||
		errors.Is(err, repository.ErrUnreachable) ||
		errors.Is(err, repository.ErrNotConfigured) ||
		errors.Is(err, model.ErrInvalidClientID)
}
