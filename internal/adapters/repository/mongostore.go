package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/okian/riskboard/internal/domain/model"
	"github.com/okian/riskboard/pkg/logger"
	"github.com/okian/riskboard/pkg/metrics"
)

// IDField is the document key holding the client id.
const IDField = "SK_CURR_ID"

const defaultTimeout = 5 * time.Second

var personalProjection = bson.M{"_id": 0, "FirstName": 1, "LastName": 1, "PhotoURL": 1}

// MongoStore opens a fresh connection for every lookup and always closes it.
type MongoStore struct {
	uri        string
	database   string
	collection string
	timeout    time.Duration
	dial       Dialer
	log        logger.Logger
}

// NewMongoStore creates a store for uri. An empty uri yields a store whose
// lookups fail with ErrNotConfigured.
func NewMongoStore(uri string, opts ...Option) *MongoStore {
	s := &MongoStore{
		uri:        strings.TrimSpace(uri),
		database:   DefaultDatabase,
		collection: DefaultCollection,
		timeout:    defaultTimeout,
		dial:       DialMongo,
		log:        logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Personal implements Store.
func (s *MongoStore) Personal(ctx context.Context, id int64) (model.PersonalData, error) {
	start := time.Now()
	data, err := s.lookup(ctx, id)
	outcome := lookupOutcome(err)
	metrics.RecordPersonalLookup(outcome, float64(time.Since(start).Milliseconds()))

	switch {
	case err == nil:
		s.log.Debug(ctx, "personal data found", logger.Int64("client_id", id))
	case errors.Is(err, ErrNotFound):
		s.log.Info(ctx, "personal data not found", logger.Int64("client_id", id))
	default:
		s.log.Warn(ctx, "personal data lookup failed",
			logger.Int64("client_id", id),
			logger.String("outcome", outcome),
			logger.Error(err))
	}
	return data, err
}

func (s *MongoStore) lookup(ctx context.Context, id int64) (data model.PersonalData, err error) {
	if s.uri == "" {
		return data, ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sess, err := s.dial(ctx, s.uri, s.database, s.collection)
	if err != nil {
		return data, errors.Join(ErrUnreachable, err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), s.timeout)
		defer closeCancel()
		if cerr := sess.Close(closeCtx); cerr != nil {
			s.log.Warn(ctx, "personal data session close failed", logger.Error(cerr))
		}
	}()

	return sess.FindPersonal(ctx, id)
}

func lookupOutcome(err error) string {
	switch {
	case err == nil:
		return "found"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	default:
		return "unreachable"
	}
}

type mongoSession struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// DialMongo connects with the driver. Server selection is bounded by the
// context deadline.
func DialMongo(ctx context.Context, uri, database, collection string) (Session, error) {
	opts := options.Client().ApplyURI(uri)
	if deadline, ok := ctx.Deadline(); ok {
		opts.SetServerSelectionTimeout(time.Until(deadline))
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, eris.Wrap(err, "mongo connect")
	}
	return &mongoSession{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

func (m *mongoSession) FindPersonal(ctx context.Context, id int64) (model.PersonalData, error) {
	var doc model.PersonalData
	err := m.coll.FindOne(ctx,
		bson.M{IDField: id},
		options.FindOne().SetProjection(personalProjection),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.PersonalData{}, ErrNotFound
	}
	if err != nil {
		return model.PersonalData{}, errors.Join(ErrUnreachable, eris.Wrap(err, "mongo find"))
	}
	return doc, nil
}

func (m *mongoSession) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
