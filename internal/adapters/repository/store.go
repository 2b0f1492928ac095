// Package repository reads customer identity data from the personal data store.
package repository

import (
	"context"

	"github.com/okian/riskboard/internal/domain/model"
)

// Default collection coordinates.
const (
	DefaultDatabase   = "default_risk"
	DefaultCollection = "users_data"
)

// Store provides read access to personal data.
type Store interface {
	// Personal returns the name and photo of a client.
	// Returns ErrNotFound when no document matches, ErrUnreachable when the
	// store cannot be reached and ErrNotConfigured when no URI was given.
	Personal(ctx context.Context, id int64) (model.PersonalData, error)
}

// Session is one scoped connection to the store.
type Session interface {
	FindPersonal(ctx context.Context, id int64) (model.PersonalData, error)
	Close(ctx context.Context) error
}

// Dialer opens a Session against uri for the given database and collection.
type Dialer func(ctx context.Context, uri, database, collection string) (Session, error)
