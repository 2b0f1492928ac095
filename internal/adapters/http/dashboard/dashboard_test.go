package dashboard_test

import (
	"context"
	"errors"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/okian/riskboard/internal/adapters/http/dashboard"
	"github.com/okian/riskboard/internal/adapters/repository"
	"github.com/okian/riskboard/internal/adapters/riskapi"
	"github.com/okian/riskboard/internal/domain/model"
	"github.com/okian/riskboard/internal/domain/topics"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeService struct {
	calls      int
	prediction model.PredictionResult
	personal   model.PersonalData
	markup     string
	err        error
	feedback   []model.FeedbackSubmission
	vizReqs    []model.VisualizationRequest
}

func (f *fakeService) Topics() []topics.Topic { return topics.All() }

func (f *fakeService) TopicByCode(code string) (topics.Topic, error) {
	if code == "" {
		return topics.Default(), nil
	}
	return topics.ByCode(code)
}

func (f *fakeService) SelectAnalysisTopic(label string) (topics.Topic, error) {
	return topics.ByLabel(label)
}

func (f *fakeService) FetchPersonalData(context.Context, model.ClientID) (model.PersonalData, error) {
	f.calls++
	return f.personal, f.err
}

func (f *fakeService) FetchPrediction(context.Context, model.ClientID) (model.PredictionResult, error) {
	f.calls++
	return f.prediction, f.err
}

func (f *fakeService) SubmitFeedback(_ context.Context, fb model.FeedbackSubmission) error {
	f.calls++
	f.feedback = append(f.feedback, fb)
	return f.err
}

func (f *fakeService) FetchVisualization(_ context.Context, req model.VisualizationRequest) (string, error) {
	f.calls++
	f.vizReqs = append(f.vizReqs, req)
	return f.markup, f.err
}

func newRouter(svc dashboard.Service) http.Handler {
	h, err := dashboard.NewHandler(svc)
	So(err, ShouldBeNil)
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func get(h http.Handler, target string) (int, string) {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code, html.UnescapeString(w.Body.String())
}

func post(h http.Handler, target string, form url.Values) (int, string, string) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code, html.UnescapeString(w.Body.String()), w.Body.String()
}

func TestIndex(t *testing.T) {
	Convey("Given the dashboard", t, func() {
		svc := &fakeService{}
		r := newRouter(svc)

		Convey("When opening the root page", func() {
			code, body := get(r, "/")

			Convey("Then the sidebar and the default topic are shown", func() {
				So(code, ShouldEqual, http.StatusOK)
				So(body, ShouldContainSubstring, "Risk Banking")
				So(body, ShouldContainSubstring, "🎯 THÉMATIQUE D'ANALYSE")
				for _, tp := range topics.All() {
					So(body, ShouldContainSubstring, tp.Label)
				}
				So(body, ShouldContainSubstring, `value="120194"`)
				So(body, ShouldContainSubstring, "/actions/personal")
			})
		})

		Convey("When re-selecting topics", func() {
			for _, code := range []string{"5", "6", "2", "5", "10"} {
				status, _ := get(r, "/?topic="+code)
				So(status, ShouldEqual, http.StatusOK)
			}

			Convey("Then no collaborator is called", func() {
				So(svc.calls, ShouldEqual, 0)
			})
		})

		Convey("When selecting the exploration topic", func() {
			_, body := get(r, "/?topic=6")

			Convey("Then the analysis selector and filters are shown", func() {
				So(body, ShouldContainSubstring, "Analyse visuelle depuis Databricks")
				So(body, ShouldContainSubstring, "Jour de demande & saisonnalité")
				So(body, ShouldContainSubstring, `name="min_credit"`)
				So(body, ShouldContainSubstring, `value="dummy_job"`)
			})
		})

		Convey("When selecting a topic by its sidebar label", func() {
			_, body := get(r, "/?label="+url.QueryEscape("📈📉 Prédiction d'un client"))

			Convey("Then that topic's form is shown", func() {
				So(body, ShouldContainSubstring, "/actions/predict")
				So(svc.calls, ShouldEqual, 0)
			})
		})

		Convey("When selecting an unknown label", func() {
			_, body := get(r, "/?label=nope")
			So(body, ShouldContainSubstring, dashboard.MsgUnknownTopic)
		})

		Convey("When selecting an unknown topic", func() {
			code, body := get(r, "/?topic=42")

			Convey("Then the default topic is shown with a warning", func() {
				So(code, ShouldEqual, http.StatusOK)
				So(body, ShouldContainSubstring, dashboard.MsgUnknownTopic)
			})
		})
	})
}

func TestPredict(t *testing.T) {
	Convey("Given a prediction service", t, func() {
		svc := &fakeService{prediction: model.RawPrediction{
			ClientInfo:     map[string]any{"AMT_INCOME_TOTAL": 202500},
			Recommendation: &model.Recommendation{Decision: "Accepter", Explanation: "Profil **stable** <script>x()</script>", ActionPlan: []string{"Suivi annuel"}},
			Metadata:       map[string]any{"model_version": "v3"},
		}.Reshape("120194")}
		svc.prediction.RiskScore = 29.99
		r := newRouter(svc)

		Convey("When the prediction succeeds", func() {
			code, body, raw := post(r, dashboard.PathPredict, url.Values{"topic": {"5"}, "client_id": {"120194"}})

			Convey("Then the result and the feedback form are rendered", func() {
				So(code, ShouldEqual, http.StatusOK)
				So(body, ShouldContainSubstring, dashboard.MsgPredictionOK)
				So(body, ShouldContainSubstring, "29.99")
				So(body, ShouldContainSubstring, "AMT_INCOME_TOTAL")
				So(body, ShouldContainSubstring, "Accepter")
				So(body, ShouldContainSubstring, "<strong>stable</strong>")
				So(raw, ShouldNotContainSubstring, "<script>x()</script>")
				So(body, ShouldContainSubstring, "<li>Suivi annuel</li>")
				So(body, ShouldContainSubstring, "Métadonnées de l'analyse")
				So(body, ShouldContainSubstring, dashboard.PathFeedback)
				So(body, ShouldContainSubstring, `name="client_id" value="120194"`)
			})
		})

		Convey("When the service answers non-200", func() {
			svc.err = &riskapi.APIError{Operation: riskapi.OpPredict, StatusCode: 503, Body: "maintenance"}
			code, body, _ := post(r, dashboard.PathPredict, url.Values{"client_id": {"120194"}})

			Convey("Then the page shows the status and body", func() {
				So(code, ShouldEqual, http.StatusOK)
				So(body, ShouldContainSubstring, "Erreur API : 503 - maintenance")
			})
		})

		Convey("When the service is unreachable", func() {
			svc.err = &riskapi.TransportError{Operation: riskapi.OpPredict, Err: errors.New("connection refused")}
			_, body, _ := post(r, dashboard.PathPredict, url.Values{"client_id": {"120194"}})

			Convey("Then a connection error is shown", func() {
				So(body, ShouldContainSubstring, "Erreur de connexion à l'API : connection refused")
			})
		})

		Convey("When the client id is blank", func() {
			_, body, _ := post(r, dashboard.PathPredict, url.Values{"client_id": {"  "}})

			Convey("Then nothing is sent", func() {
				So(body, ShouldContainSubstring, dashboard.MsgMissingClientID)
				So(svc.calls, ShouldEqual, 0)
			})
		})
	})
}

func TestPersonal(t *testing.T) {
	Convey("Given a personal data lookup", t, func() {
		svc := &fakeService{personal: model.PersonalData{FirstName: "Marie", LastName: "Curie", PhotoURL: "https://img.example/mc.png"}}
		r := newRouter(svc)

		Convey("When the client exists", func() {
			_, body, _ := post(r, dashboard.PathPersonal, url.Values{"topic": {"1"}, "client_id": {"120194"}})

			Convey("Then name and photo are shown", func() {
				So(body, ShouldContainSubstring, "Marie Curie")
				So(body, ShouldContainSubstring, "https://img.example/mc.png")
			})
		})

		Convey("When the client is missing or the store is down", func() {
			svc.err = repository.ErrNotFound
			_, missing, _ := post(r, dashboard.PathPersonal, url.Values{"client_id": {"1"}})
			svc.err = errors.Join(repository.ErrUnreachable, errors.New("server selection timeout"))
			_, down, _ := post(r, dashboard.PathPersonal, url.Values{"client_id": {"1"}})

			Convey("Then the same warning is shown", func() {
				So(missing, ShouldContainSubstring, dashboard.MsgNoPersonalData)
				So(down, ShouldContainSubstring, dashboard.MsgNoPersonalData)
				So(down, ShouldNotContainSubstring, "server selection timeout")
			})
		})
	})
}

func TestVisualize(t *testing.T) {
	Convey("Given a dataviz backend", t, func() {
		svc := &fakeService{markup: `<div id="c"><script>plot("a")</script></div>`}
		r := newRouter(svc)

		Convey("When generating a topic visualization", func() {
			_, _, raw := post(r, dashboard.PathVisualize, url.Values{"topic": {"8"}, "job_id": {"job-42"}})

			Convey("Then the fixed analysis type is sent without filters", func() {
				So(len(svc.vizReqs), ShouldEqual, 1)
				So(svc.vizReqs[0].AnalysisType, ShouldEqual, "6")
				So(svc.vizReqs[0].JobID, ShouldEqual, "job-42")
				So(svc.vizReqs[0].Filters, ShouldBeNil)
			})

			Convey("And the markup is isolated in a sandboxed frame", func() {
				So(raw, ShouldContainSubstring, `sandbox="allow-scripts"`)
				So(raw, ShouldContainSubstring, `height="700"`)
				So(raw, ShouldContainSubstring, "srcdoc=")
				So(raw, ShouldNotContainSubstring, `<script>plot("a")</script>`)
			})
		})

		Convey("When generating an exploration visualization", func() {
			_, _, raw := post(r, dashboard.PathVisualize, url.Values{
				"topic": {"6"}, "job_id": {"dummy_job"}, "analysis_type": {"3"},
				"min_credit": {"1000"}, "max_credit": {""}, "min_income": {"0"},
			})

			Convey("Then the filters are sent and the taller frame is used", func() {
				So(len(svc.vizReqs), ShouldEqual, 1)
				So(svc.vizReqs[0].AnalysisType, ShouldEqual, "3")
				So(svc.vizReqs[0].Filters, ShouldResemble, &model.Filters{MinCredit: 1000})
				So(raw, ShouldContainSubstring, `height="750"`)
			})
		})

		Convey("When a filter is negative", func() {
			_, body, _ := post(r, dashboard.PathVisualize, url.Values{
				"topic": {"6"}, "job_id": {"dummy_job"}, "analysis_type": {"1"}, "min_credit": {"-5"},
			})

			Convey("Then nothing is sent", func() {
				So(body, ShouldContainSubstring, dashboard.MsgInvalidFilters)
				So(svc.calls, ShouldEqual, 0)
			})
		})

		Convey("When the backend answers non-200", func() {
			svc.err = &riskapi.APIError{Operation: riskapi.OpDataviz, StatusCode: 404, Body: "unknown job"}
			_, body, _ := post(r, dashboard.PathVisualize, url.Values{"topic": {"2"}, "job_id": {"x"}})

			Convey("Then only the status is shown", func() {
				So(body, ShouldContainSubstring, "Erreur API : 404")
				So(body, ShouldNotContainSubstring, "unknown job")
			})
		})

		Convey("When the backend is unreachable", func() {
			svc.err = &riskapi.TransportError{Operation: riskapi.OpDataviz, Err: errors.New("connection refused")}
			_, fixed, _ := post(r, dashboard.PathVisualize, url.Values{"topic": {"2"}, "job_id": {"x"}})
			_, explore, _ := post(r, dashboard.PathVisualize, url.Values{"topic": {"6"}, "job_id": {"x"}, "analysis_type": {"1"}})

			Convey("Then fixed topics show the API error and exploration the connection error", func() {
				So(fixed, ShouldContainSubstring, "Erreur API : connection refused")
				So(fixed, ShouldNotContainSubstring, "Erreur de connexion")
				So(explore, ShouldContainSubstring, "Erreur de connexion à l'API : connection refused")
			})
		})

		Convey("When posting for the prediction topic", func() {
			_, body, _ := post(r, dashboard.PathVisualize, url.Values{"topic": {"5"}, "job_id": {"x"}})

			Convey("Then it is rejected", func() {
				So(body, ShouldContainSubstring, dashboard.MsgUnknownAnalysis)
				So(svc.calls, ShouldEqual, 0)
			})
		})
	})
}

func TestFeedback(t *testing.T) {
	Convey("Given a feedback endpoint", t, func() {
		svc := &fakeService{}
		r := newRouter(svc)

		Convey("When sending empty negative feedback", func() {
			_, body, _ := post(r, dashboard.PathFeedback, url.Values{"client_id": {"120194"}, "message": {""}, "sentiment": {"negative"}})

			Convey("Then the client id is attached and a thank-you is shown", func() {
				So(len(svc.feedback), ShouldEqual, 1)
				So(svc.feedback[0].CustomDimensions.ClientID, ShouldEqual, model.ClientID("120194"))
				So(svc.feedback[0].IsPositive, ShouldBeFalse)
				So(body, ShouldContainSubstring, dashboard.MsgFeedbackOK)
			})
		})

		Convey("When the endpoint fails", func() {
			svc.err = &riskapi.APIError{Operation: riskapi.OpFeedback, StatusCode: 500}
			_, body, _ := post(r, dashboard.PathFeedback, url.Values{"client_id": {"1"}, "message": {"ok"}, "sentiment": {"positive"}})

			Convey("Then an error notice is shown", func() {
				So(body, ShouldContainSubstring, dashboard.MsgFeedbackFailed)
			})
		})
	})
}
