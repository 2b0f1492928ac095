package dashboard

import (
	"encoding/json"
	"html/template"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/okian/riskboard/internal/domain/model"
	"github.com/okian/riskboard/internal/domain/topics"
)

// Notice levels, matching the stylesheet classes.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Notice is one inline message shown above the results.
type Notice struct {
	Level string
	Text  string
}

// Page is the complete view state for one render.
type Page struct {
	Topics   []topics.Topic
	Topic    topics.Topic
	Analyses []topics.Analysis

	ClientID     string
	JobID        string
	AnalysisType string
	MinCredit    string
	MaxCredit    string
	MinIncome    string

	Notices       []Notice
	Personal      *model.PersonalData
	Prediction    *PredictionView
	Visualization *VisualizationView
}

// PredictionView is a prediction prepared for display.
type PredictionView struct {
	Result        model.PredictionResult
	ClientInfo    string
	ImpactFactors string
	Metadata      string
	Explanation   template.HTML
	ActionPlan    template.HTML
}

// VisualizationView is upstream markup isolated in a sandboxed frame.
type VisualizationView struct {
	// Markup is placed in the frame's srcdoc attribute and escaped there.
	Markup string
	Height int
}

// newPage builds a page for topic with the default inputs.
func (h *Handler) newPage(topic topics.Topic) *Page {
	p := &Page{
		Topics:   h.svc.Topics(),
		Topic:    topic,
		ClientID: h.settings.DefaultClientID,
		JobID:    h.settings.DefaultJobID,
	}
	if topic.View == topics.ViewExploration {
		p.Analyses = topics.Analyses()
		p.AnalysisType = p.Analyses[0].Type
	}
	return p
}

func (p *Page) notify(level, text string) {
	p.Notices = append(p.Notices, Notice{Level: level, Text: text})
}

// HasResult reports whether any result panel is set.
func (p *Page) HasResult() bool {
	return p.Personal != nil || p.Prediction != nil || p.Visualization != nil
}

func newPredictionView(res model.PredictionResult) *PredictionView {
	return &PredictionView{
		Result:        res,
		ClientInfo:    prettyJSON(res.ClientInfo),
		ImpactFactors: prettyJSON(res.ImpactFactors),
		Metadata:      prettyJSON(res.Metadata),
		Explanation:   renderMarkdown(res.Recommendation.Explanation),
		ActionPlan:    renderMarkdown(bulletList(res.Recommendation.ActionPlan)),
	}
}

func prettyJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func bulletList(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("- ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderMarkdown converts upstream text to HTML. Raw HTML in the source is
// dropped and only safe link schemes survive.
func renderMarkdown(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.SkipHTML | mdhtml.Safelink,
	})
	return template.HTML(markdown.ToHTML([]byte(src), p, r)) //nolint:gosec // raw HTML skipped by the renderer
}
