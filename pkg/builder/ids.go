package builder

import "github.com/google/uuid"

// IDGenerator produces opaque unique ids for new questions.
type IDGenerator interface {
	NewID() string
}

// IDFunc allows plain functions to satisfy IDGenerator.
type IDFunc func() string

func (fn IDFunc) NewID() string { return fn() }

// UUIDGenerator returns random (version 4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }
