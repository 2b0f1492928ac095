package model

import (
	"github.com/okian/riskboard/internal/domain/scoring"
)

// NoRecommendation is shown when the risk service omits a decision.
const NoRecommendation = "Pas de recommandation disponible"

// Recommendation is the decision block returned with a prediction.
type Recommendation struct {
	Decision    string   `json:"decision"`
	Explanation string   `json:"explanation"`
	ActionPlan  []string `json:"action_plan"`
}

// PredictionResult is the reshaped prediction rendered for one request.
type PredictionResult struct {
	ClientID         ClientID         `json:"client_id"`
	ClientInfo       map[string]any   `json:"client_info"`
	RiskScore        float64          `json:"risk_score"`
	RiskCategory     scoring.Category `json:"risk_category"`
	PredictedDefault bool             `json:"predicted_default"`
	ImpactFactors    []any            `json:"impact_factors"`
	Recommendation   Recommendation   `json:"recommendation"`
	Metadata         map[string]any   `json:"metadata,omitempty"`
}

// RawPrediction mirrors the JSON body of GET /predict_default.
type RawPrediction struct {
	ClientInfo map[string]any `json:"client_info"`
	Prediction struct {
		RiskScore        float64 `json:"risk_score"`
		PredictedDefault bool    `json:"predicted_default"`
		ImpactFactors    []any   `json:"impact_factors"`
	} `json:"prediction"`
	Recommendation *Recommendation `json:"recommendation"`
	Metadata       map[string]any  `json:"metadata"`
}

// Reshape scales and categorizes the raw response. Missing collections become empty.
func (r RawPrediction) Reshape(id ClientID) PredictionResult {
	a := scoring.Assess(r.Prediction.RiskScore)

	out := PredictionResult{
		ClientID:         id,
		ClientInfo:       r.ClientInfo,
		RiskScore:        a.Score,
		RiskCategory:     a.Category,
		PredictedDefault: r.Prediction.PredictedDefault,
		ImpactFactors:    r.Prediction.ImpactFactors,
		Metadata:         r.Metadata,
	}
	if out.ClientInfo == nil {
		out.ClientInfo = map[string]any{}
	}
	if out.ImpactFactors == nil {
		out.ImpactFactors = []any{}
	}
	if r.Recommendation != nil {
		out.Recommendation = *r.Recommendation
	}
	if out.Recommendation.Decision == "" {
		out.Recommendation.Decision = NoRecommendation
	}
	if out.Recommendation.ActionPlan == nil {
		out.Recommendation.ActionPlan = []string{}
	}
	return out
}

// DefaultLabel renders PredictedDefault as shown in the dashboard.
func (p PredictionResult) DefaultLabel() string {
	if p.PredictedDefault {
		return "Oui"
	}
	return "Non"
}
