package dashboard

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/riskboard/internal/adapters/riskapi"
	service "github.com/okian/riskboard/internal/app"
	"github.com/okian/riskboard/internal/domain/model"
	"github.com/okian/riskboard/internal/domain/topics"
	"github.com/okian/riskboard/pkg/logger"
)

// Messages shown on the page.
const (
	MsgPredictionOK    = "✅ Prédiction reçue avec succès."
	MsgNoPersonalData  = "Aucune donnée personnelle trouvée."
	MsgFeedbackOK      = "Merci pour votre retour !"
	MsgFeedbackFailed  = "Erreur lors de l'envoi du feedback."
	MsgMissingClientID = "Veuillez saisir l'ID du client."
	MsgMissingJobID    = "Le Job ID est obligatoire."
	MsgInvalidFilters  = "Les filtres doivent être des entiers positifs."
	MsgUnknownTopic    = "Thématique inconnue, affichage de la thématique par défaut."
	MsgUnknownAnalysis = "Type d'analyse inconnu."
	MsgInvalidForm     = "Formulaire invalide."
)

const (
	predictionTopicCode = "5"
	personalTopicCode   = "1"
)

// HandleIndex handles GET / requests. The topic is selected by ?topic=<code>
// or by ?label=<sidebar label>. It only renders forms and never calls the
// risk service or the data store.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		topic topics.Topic
		ok    bool
	)
	if label := q.Get("label"); label != "" {
		topic, ok = h.topicByLabel(label)
	} else {
		topic, ok = h.topic(q.Get("topic"), "")
	}
	p := h.newPage(topic)
	if !ok {
		p.notify(LevelWarning, MsgUnknownTopic)
	}
	h.render(w, r, p)
}

// HandlePredict handles POST /actions/predict requests.
func (h *Handler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	p, ok := h.formPage(w, r, predictionTopicCode)
	if !ok {
		return
	}
	p.ClientID = r.PostForm.Get("client_id")

	id, err := model.ParseClientID(p.ClientID)
	if err != nil {
		p.notify(LevelError, MsgMissingClientID)
		h.render(w, r, p)
		return
	}

	res, err := h.svc.FetchPrediction(r.Context(), id)
	if err != nil {
		h.log.Warn(r.Context(), "prediction failed", logger.String("client_id", id.String()), logger.Error(err))
		p.notify(LevelError, err.Error())
		h.render(w, r, p)
		return
	}
	p.notify(LevelSuccess, MsgPredictionOK)
	p.Prediction = newPredictionView(res)
	h.render(w, r, p)
}

// HandlePersonal handles POST /actions/personal requests. Every lookup
// failure is shown as the same warning; the cause is logged.
func (h *Handler) HandlePersonal(w http.ResponseWriter, r *http.Request) {
	p, ok := h.formPage(w, r, personalTopicCode)
	if !ok {
		return
	}
	p.ClientID = r.PostForm.Get("client_id")

	id, err := model.ParseClientID(p.ClientID)
	if err != nil {
		p.notify(LevelError, MsgMissingClientID)
		h.render(w, r, p)
		return
	}

	data, err := h.svc.FetchPersonalData(r.Context(), id)
	if err != nil {
		log := h.log.Warn
		if service.IsNoData(err) {
			log = h.log.Info
		}
		log(r.Context(), "personal data unavailable", logger.String("client_id", id.String()), logger.Error(err))
		p.notify(LevelWarning, MsgNoPersonalData)
		h.render(w, r, p)
		return
	}
	p.Personal = &data
	h.render(w, r, p)
}

// HandleVisualize handles POST /actions/visualize requests.
func (h *Handler) HandleVisualize(w http.ResponseWriter, r *http.Request) {
	p, ok := h.formPage(w, r, "")
	if !ok {
		return
	}
	if !p.Topic.ShowsVisualization() {
		p.notify(LevelError, MsgUnknownAnalysis)
		h.render(w, r, p)
		return
	}
	p.JobID = r.PostForm.Get("job_id")

	req := model.VisualizationRequest{
		JobID:        strings.TrimSpace(p.JobID),
		AnalysisType: p.Topic.AnalysisType,
	}
	height := h.settings.VisualizationFrameHeight

	if p.Topic.View == topics.ViewExploration {
		height = h.settings.ExplorationFrameHeight
		p.AnalysisType = r.PostForm.Get("analysis_type")
		p.MinCredit = r.PostForm.Get("min_credit")
		p.MaxCredit = r.PostForm.Get("max_credit")
		p.MinIncome = r.PostForm.Get("min_income")

		if !topics.IsAnalysisType(p.AnalysisType) {
			p.notify(LevelError, MsgUnknownAnalysis)
			h.render(w, r, p)
			return
		}
		filters, err := parseFilters(p.MinCredit, p.MaxCredit, p.MinIncome)
		if err != nil {
			p.notify(LevelError, MsgInvalidFilters)
			h.render(w, r, p)
			return
		}
		req.AnalysisType = p.AnalysisType
		req.Filters = filters
	}

	markup, err := h.svc.FetchVisualization(r.Context(), req)
	if err != nil {
		p.notify(LevelError, visualizationError(err, p.Topic.View == topics.ViewExploration))
		h.render(w, r, p)
		return
	}
	p.Visualization = &VisualizationView{Markup: markup, Height: height}
	h.render(w, r, p)
}

// HandleFeedback handles POST /actions/feedback requests.
func (h *Handler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	p, ok := h.formPage(w, r, predictionTopicCode)
	if !ok {
		return
	}
	p.ClientID = r.PostForm.Get("client_id")

	id, err := model.ParseClientID(p.ClientID)
	if err != nil {
		p.notify(LevelError, MsgMissingClientID)
		h.render(w, r, p)
		return
	}

	positive := r.PostForm.Get("sentiment") != model.SentimentNegative
	fb := model.NewFeedback(id, r.PostForm.Get("message"), positive)
	if err := h.svc.SubmitFeedback(r.Context(), fb); err != nil {
		h.log.Warn(r.Context(), "feedback failed", logger.String("client_id", id.String()), logger.Error(err))
		p.notify(LevelError, MsgFeedbackFailed)
		h.render(w, r, p)
		return
	}
	p.notify(LevelSuccess, MsgFeedbackOK)
	h.render(w, r, p)
}

// formPage parses the form and builds the page for the posted topic, or for
// fallback when the form carries none.
func (h *Handler) formPage(w http.ResponseWriter, r *http.Request, fallback string) (*Page, bool) {
	if err := r.ParseForm(); err != nil {
		p := h.newPage(topics.Default())
		p.notify(LevelError, MsgInvalidForm)
		h.render(w, r, p)
		return nil, false
	}
	topic, ok := h.topic(r.PostForm.Get("topic"), fallback)
	p := h.newPage(topic)
	if !ok {
		p.notify(LevelWarning, MsgUnknownTopic)
	}
	return p, true
}

func (h *Handler) topic(code, fallback string) (topics.Topic, bool) {
	if code == "" {
		code = fallback
	}
	t, err := h.svc.TopicByCode(code)
	if err != nil {
		return topics.Default(), false
	}
	return t, true
}

func (h *Handler) topicByLabel(label string) (topics.Topic, bool) {
	t, err := h.svc.SelectAnalysisTopic(label)
	if err != nil {
		return topics.Default(), false
	}
	return t, true
}

func parseFilters(minCredit, maxCredit, minIncome string) (*model.Filters, error) {
	var f model.Filters
	var err error
	if f.MinCredit, err = model.ParseBound(minCredit); err != nil {
		return nil, err
	}
	if f.MaxCredit, err = model.ParseBound(maxCredit); err != nil {
		return nil, err
	}
	if f.MinIncome, err = model.ParseBound(minIncome); err != nil {
		return nil, err
	}
	return &f, nil
}

// visualizationError picks the notice for a failed visualization. Outside the
// exploration topic a connection failure reads "Erreur API : <cause>".
func visualizationError(err error, exploration bool) string {
	var (
		apiErr *riskapi.APIError
		tErr   *riskapi.TransportError
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Short()
	case !exploration && errors.As(err, &tErr):
		return "Erreur API : " + tErr.Err.Error()
	case errors.Is(err, model.ErrEmptyJobID):
		return MsgMissingJobID
	case errors.Is(err, model.ErrNegativeBound):
		return MsgInvalidFilters
	default:
		return err.Error()
	}
}
