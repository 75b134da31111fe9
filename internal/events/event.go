// Package events announces galaxy lifecycle changes to subscribers.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

type EventType string

const (
	GalaxyGenerated EventType = "galaxy.generated"
	GalaxyDeleted   EventType = "galaxy.deleted"
)

type Event struct {
	Type           EventType `json:"type"`
	GalaxyID       string    `json:"galaxy_id"`
	Name           string    `json:"name,omitempty"`
	BodyCount      int       `json:"body_count,omitempty"`
	RequestedCount int       `json:"requested_count,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

func (e Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events to some audience.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Multi delivers every event to each of its publishers.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, Event) error { return nil }
