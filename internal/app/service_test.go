package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/riskboard/internal/adapters/repository"
	"github.com/okian/riskboard/internal/adapters/riskapi"
	service "github.com/okian/riskboard/internal/app"
	"github.com/okian/riskboard/internal/domain/model"
	"github.com/okian/riskboard/internal/domain/scoring"
	"github.com/okian/riskboard/internal/domain/topics"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeAPI struct {
	raw         model.RawPrediction
	err         error
	calls       int
	feedback    []model.FeedbackSubmission
	vizRequests []model.VisualizationRequest
	markup      string
}

func (f *fakeAPI) Predict(_ context.Context, _ model.ClientID) (model.RawPrediction, error) {
	f.calls++
	return f.raw, f.err
}

func (f *fakeAPI) SendFeedback(_ context.Context, fb model.FeedbackSubmission) error {
	f.calls++
	f.feedback = append(f.feedback, fb)
	return f.err
}

func (f *fakeAPI) Dataviz(_ context.Context, req model.VisualizationRequest) (string, error) {
	f.calls++
	f.vizRequests = append(f.vizRequests, req)
	return f.markup, f.err
}

type fakeStore struct {
	data  map[int64]model.PersonalData
	err   error
	calls int
}

func (f *fakeStore) Personal(_ context.Context, id int64) (model.PersonalData, error) {
	f.calls++
	if f.err != nil {
		return model.PersonalData{}, f.err
	}
	d, ok := f.data[id]
	if !ok {
		return model.PersonalData{}, repository.ErrNotFound
	}
	return d, nil
}

func TestService_Topics(t *testing.T) {
	Convey("Given a service", t, func() {
		api := &fakeAPI{}
		store := &fakeStore{}
		svc := service.New(api, store)

		Convey("When selecting a topic by label", func() {
			topic, err := svc.SelectAnalysisTopic("📈📉 Prédiction d'un client")

			Convey("Then the prediction view is returned without I/O", func() {
				So(err, ShouldBeNil)
				So(topic.View, ShouldEqual, topics.ViewPrediction)
				So(api.calls, ShouldEqual, 0)
				So(store.calls, ShouldEqual, 0)
			})
		})

		Convey("When selecting an unknown label", func() {
			_, err := svc.SelectAnalysisTopic("nope")

			Convey("Then ErrUnknownTopic is returned", func() {
				So(errors.Is(err, service.ErrUnknownTopic), ShouldBeTrue)
			})
		})

		Convey("When resolving an empty code", func() {
			topic, err := svc.TopicByCode("")

			Convey("Then the default topic is returned", func() {
				So(err, ShouldBeNil)
				So(topic.Code, ShouldEqual, topics.DefaultCode)
			})
		})

		Convey("When listing topics", func() {
			So(len(svc.Topics()), ShouldEqual, 10)
		})
	})
}

func TestService_FetchPrediction(t *testing.T) {
	Convey("Given a risk service answering 0.2999", t, func() {
		api := &fakeAPI{}
		api.raw.Prediction.RiskScore = 0.2999
		svc := service.New(api, &fakeStore{})

		Convey("When fetching a prediction", func() {
			res, err := svc.FetchPrediction(context.Background(), "120194")

			Convey("Then the score is scaled and categorized", func() {
				So(err, ShouldBeNil)
				So(res.RiskScore, ShouldEqual, 29.99)
				So(res.RiskCategory, ShouldEqual, scoring.CategoryLow)
				So(res.Recommendation.Decision, ShouldEqual, model.NoRecommendation)
				So(res.ClientID, ShouldEqual, model.ClientID("120194"))
			})
		})
	})

	Convey("Given a failing risk service", t, func() {
		api := &fakeAPI{err: &riskapi.APIError{Operation: riskapi.OpPredict, StatusCode: 500, Body: "boom"}}
		svc := service.New(api, &fakeStore{})

		Convey("When fetching a prediction", func() {
			_, err := svc.FetchPrediction(context.Background(), "1")

			Convey("Then the upstream error is returned unchanged", func() {
				So(riskapi.StatusCode(err), ShouldEqual, 500)
				So(err.Error(), ShouldContainSubstring, "500")
			})
		})
	})
}

func TestService_FetchPersonalData(t *testing.T) {
	Convey("Given a store with one client", t, func() {
		store := &fakeStore{data: map[int64]model.PersonalData{
			120194: {FirstName: "Ada", LastName: "Lovelace"},
		}}
		svc := service.New(&fakeAPI{}, store)

		Convey("When the client exists", func() {
			d, err := svc.FetchPersonalData(context.Background(), "120194")
			So(err, ShouldBeNil)
			So(d.FullName(), ShouldEqual, "Ada Lovelace")
		})

		Convey("When the client is missing", func() {
			_, err := svc.FetchPersonalData(context.Background(), "5")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			So(service.IsNoData(err), ShouldBeTrue)
		})

		Convey("When the id is not an integer", func() {
			_, err := svc.FetchPersonalData(context.Background(), "abc")

			Convey("Then the store is not queried", func() {
				So(errors.Is(err, model.ErrInvalidClientID), ShouldBeTrue)
				So(service.IsNoData(err), ShouldBeTrue)
				So(store.calls, ShouldEqual, 0)
			})
		})

		Convey("When the store is unreachable", func() {
			store.err = repository.ErrUnreachable
			_, err := svc.FetchPersonalData(context.Background(), "120194")
			So(service.IsNoData(err), ShouldBeTrue)
		})
	})
}

func TestService_SubmitFeedback(t *testing.T) {
	Convey("Given a feedback endpoint", t, func() {
		api := &fakeAPI{}
		svc := service.New(api, &fakeStore{})

		Convey("When submitting empty text", func() {
			err := svc.SubmitFeedback(context.Background(), model.NewFeedback("120194", "", false))

			Convey("Then the submission still carries the client id", func() {
				So(err, ShouldBeNil)
				So(len(api.feedback), ShouldEqual, 1)
				So(api.feedback[0].CustomDimensions.ClientID, ShouldEqual, model.ClientID("120194"))
			})
		})

		Convey("When no client id is attached", func() {
			err := svc.SubmitFeedback(context.Background(), model.NewFeedback("", "hello", true))

			Convey("Then nothing is sent", func() {
				So(errors.Is(err, model.ErrEmptyClientID), ShouldBeTrue)
				So(api.calls, ShouldEqual, 0)
			})
		})
	})
}

func TestService_FetchVisualization(t *testing.T) {
	Convey("Given a dataviz backend", t, func() {
		api := &fakeAPI{markup: "<div>chart</div>"}
		svc := service.New(api, &fakeStore{})

		Convey("When requesting a valid visualization", func() {
			markup, err := svc.FetchVisualization(context.Background(), model.VisualizationRequest{JobID: "dummy_job", AnalysisType: "2"})
			So(err, ShouldBeNil)
			So(markup, ShouldEqual, "<div>chart</div>")
		})

		Convey("When the job id is blank", func() {
			_, err := svc.FetchVisualization(context.Background(), model.VisualizationRequest{JobID: " ", AnalysisType: "2"})

			Convey("Then the backend is not called", func() {
				So(errors.Is(err, model.ErrEmptyJobID), ShouldBeTrue)
				So(api.calls, ShouldEqual, 0)
			})
		})
	})
}
