package model

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// ErrNegativeBound is returned when a filter bound is below zero.
var ErrNegativeBound = errors.New("filter bounds must be non-negative")

// Filters are the optional numeric bounds of the exploration view.
// A zero bound means "no filter" and is sent as an empty value.
type Filters struct {
	MinCredit int64 `json:"min_credit"`
	MaxCredit int64 `json:"max_credit"`
	MinIncome int64 `json:"min_income"`
}

// VisualizationRequest selects a precomputed analysis batch.
type VisualizationRequest struct {
	JobID        string   `json:"job_id"`
	AnalysisType string   `json:"analysis_type"`
	Filters      *Filters `json:"filters,omitempty"`
}

// Validate checks the parts the dashboard can check locally.
func (v VisualizationRequest) Validate() error {
	if strings.TrimSpace(v.JobID) == "" {
		return ErrEmptyJobID
	}
	if f := v.Filters; f != nil && (f.MinCredit < 0 || f.MaxCredit < 0 || f.MinIncome < 0) {
		return ErrNegativeBound
	}
	return nil
}

// Query maps the request to GET /get_dataviz parameters. Filter keys are only
// present when Filters is set.
func (v VisualizationRequest) Query() url.Values {
	q := url.Values{}
	q.Set("job_id", v.JobID)
	q.Set("analysis_type", v.AnalysisType)
	if v.Filters != nil {
		q.Set("min_credit", boundValue(v.Filters.MinCredit))
		q.Set("max_credit", boundValue(v.Filters.MaxCredit))
		q.Set("min_income", boundValue(v.Filters.MinIncome))
	}
	return q
}

func boundValue(n int64) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatInt(n, 10)
}

// ParseBound reads an optional non-negative integer form value; blank is zero.
func ParseBound(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, ErrNegativeBound
	}
	return n, nil
}
