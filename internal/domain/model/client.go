// Package model contains the transient values exchanged between the dashboard,
// the risk service and the personal-data store. Nothing here is persisted.
package model

import (
	"errors"
	"strconv"
	"strings"
)

// Sentinel errors for input handling.
var (
	ErrEmptyClientID   = errors.New("client id is empty")
	ErrInvalidClientID = errors.New("client id is not an integer")
	ErrEmptyJobID      = errors.New("job id is empty")
)

// ClientID identifies a customer across the risk service and the data store.
type ClientID string

// ParseClientID trims s and rejects empty input. No other validation happens:
// malformed ids are forwarded and fail downstream.
func ParseClientID(s string) (ClientID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyClientID
	}
	return ClientID(s), nil
}

// String implements fmt.Stringer.
func (c ClientID) String() string { return string(c) }

// Int64 normalizes the id to the integer key used by the data store.
func (c ClientID) Int64() (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(string(c)), 10, 64)
	if err != nil {
		return 0, ErrInvalidClientID
	}
	return n, nil
}

// PersonalData is the projection read from the data store.
type PersonalData struct {
	FirstName string `json:"first_name" bson:"FirstName"`
	LastName  string `json:"last_name"  bson:"LastName"`
	PhotoURL  string `json:"photo_url"  bson:"PhotoURL"`
}

// FullName joins first and last name.
func (p PersonalData) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
