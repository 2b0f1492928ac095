package repository

import (
	"time"

	"github.com/okian/riskboard/pkg/logger"
)

// Option applies a configuration option to the MongoStore.
type Option func(*MongoStore)

// WithDatabase sets the database name.
func WithDatabase(name string) Option {
	return func(s *MongoStore) {
		if name != "" {
			s.database = name
		}
	}
}

// WithCollection sets the collection name.
func WithCollection(name string) Option {
	return func(s *MongoStore) {
		if name != "" {
			s.collection = name
		}
	}
}

// WithTimeout bounds each lookup, connection included.
func WithTimeout(d time.Duration) Option {
	return func(s *MongoStore) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithDialer replaces the connection factory.
func WithDialer(d Dialer) Option {
	return func(s *MongoStore) {
		if d != nil {
			s.dial = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *MongoStore) {
		if l != nil {
			s.log = l
		}
	}
}
