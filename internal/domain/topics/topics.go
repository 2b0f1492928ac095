// Package topics holds the fixed table of analysis topics offered in the sidebar.
package topics

import (
	"errors"
	"strconv"
)

// ErrUnknownTopic is returned when a label or code is not in the table.
var ErrUnknownTopic = errors.New("unknown analysis topic")

// View selects which panel the dashboard renders for a topic.
type View string

// Views.
const (
	// ViewPersonal shows the client personal-data lookup, plus the topic visualization.
	ViewPersonal View = "personal"
	// ViewPrediction shows the default-risk prediction form.
	ViewPrediction View = "prediction"
	// ViewExploration shows the visualization form with an analysis selector and filters.
	ViewExploration View = "exploration"
	// ViewVisualization shows the job-id-only visualization form.
	ViewVisualization View = "visualization"
)

// Topic is one sidebar entry.
type Topic struct {
	Code         string `json:"code"`
	Label        string `json:"label"`
	View         View   `json:"view"`
	AnalysisType string `json:"analysis_type,omitempty"`
}

// Analysis is one option of the exploration select box.
type Analysis struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

// Default topic shown when none is selected.
const DefaultCode = "1"

var table = []Topic{
	{Code: "1", Label: "🙂💀 Âge client et défaut", View: ViewPersonal, AnalysisType: "1"},
	{Code: "2", Label: "💰💳 Ratio crédit/revenu", View: ViewVisualization, AnalysisType: "2"},
	{Code: "3", Label: "💼🧾 Type de revenu", View: ViewVisualization, AnalysisType: "3"},
	{Code: "4", Label: "📘📊 Ancienneté d'emploi", View: ViewVisualization, AnalysisType: "4"},
	{Code: "5", Label: "📈📉 Prédiction d'un client", View: ViewPrediction},
	{Code: "6", Label: "📊📈 Exploration des données", View: ViewExploration},
	{Code: "7", Label: "📄📆 Demande de crédit", View: ViewVisualization, AnalysisType: "5"},
	{Code: "8", Label: "🏠📄 Type de contrat & propriété", View: ViewVisualization, AnalysisType: "6"},
	{Code: "9", Label: "👨‍👩‍👧🙂 Enfants & statut familial", View: ViewVisualization, AnalysisType: "7"},
	{Code: "10", Label: "📅📆 Jour de demande & saisonnalité", View: ViewVisualization, AnalysisType: "8"},
}

var analyses = []Analysis{
	{Type: "1", Label: "Taux de défaut par groupe d'âge"},
	{Type: "2", Label: "Ratio crédit/revenu"},
	{Type: "3", Label: "Type de revenu et taux de défaut"},
	{Type: "4", Label: "Ancienneté d'emploi"},
	{Type: "5", Label: "Demandes de crédit"},
	{Type: "6", Label: "Type de contrat & propriété"},
	{Type: "7", Label: "Enfants & statut familial"},
	{Type: "8", Label: "Jour de demande & saisonnalité"},
}

// All returns the topics in sidebar order. The slice is a copy.
func All() []Topic {
	out := make([]Topic, len(table))
	copy(out, table)
	return out
}

// ByLabel finds a topic by its sidebar label.
func ByLabel(label string) (Topic, error) {
	for _, t := range table {
		if t.Label == label {
			return t, nil
		}
	}
	return Topic{}, ErrUnknownTopic
}

// ByCode finds a topic by its code ("1".."10").
func ByCode(code string) (Topic, error) {
	n, err := strconv.Atoi(code)
	if err != nil || n < 1 || n > len(table) {
		return Topic{}, ErrUnknownTopic
	}
	return table[n-1], nil
}

// Default returns the first topic.
func Default() Topic {
	return table[0]
}

// Analyses returns the exploration options in display order. The slice is a copy.
func Analyses() []Analysis {
	out := make([]Analysis, len(analyses))
	copy(out, analyses)
	return out
}

// IsAnalysisType reports whether t is one of the exploration analysis types.
func IsAnalysisType(t string) bool {
	for _, a := range analyses {
		if a.Type == t {
			return true
		}
	}
	return false
}

// ShowsVisualization reports whether the topic offers a visualization form.
func (t Topic) ShowsVisualization() bool {
	return t.View != ViewPrediction
}
