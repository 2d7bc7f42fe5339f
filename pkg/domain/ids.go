// Package domain holds the typed identifiers shared across modules. Keeping
// them string-typed prevents accidental mixing of request and subject ids at
// call sites without dragging in package dependencies.
package domain

import (
	"strings"

	"github.com/google/uuid"
)

// RequestID identifies a single verification request.
type RequestID string

// NewRequestID mints a fresh verification request identifier.
func NewRequestID() RequestID {
	return RequestID("vr_" + uuid.NewString())
}

// ParseRequestID validates an externally supplied request id.
func ParseRequestID(s string) (RequestID, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return RequestID(s), true
}

func (id RequestID) String() string { return string(id) }

// IsZero reports whether the id is unset.
func (id RequestID) IsZero() bool { return id == "" }

// SubjectID identifies the person whose identity is being verified.
type SubjectID string

func (id SubjectID) String() string { return string(id) }

// IsZero reports whether the id is unset.
func (id SubjectID) IsZero() bool { return id == "" }

// EventID identifies a single pipeline event record.
type EventID string

// NewEventID mints a fresh event identifier.
func NewEventID() EventID {
	return EventID("ev_" + uuid.NewString())
}

func (id EventID) String() string { return string(id) }
