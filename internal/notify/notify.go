// Package notify delivers rental events to staff without blocking the caller.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// EventType names what happened.
type EventType string

const (
	EventBookingCreated       EventType = "booking.created"
	EventBookingPaid          EventType = "booking.confirmed_paid"
	EventBookingStatusChanged EventType = "booking.status_changed"
	EventBookingOverdue       EventType = "booking.overdue"
	EventRentalRequestCreated EventType = "rental_request.created"
)

// Event is one notification.
type Event struct {
	Type       EventType         `json:"type"`
	EntityID   string            `json:"entity_id"`
	Subject    string            `json:"subject"`
	Message    string            `json:"message"`
	Data       map[string]string `json:"data,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewEvent stamps an event with the current time.
func NewEvent(t EventType, entityID, subject, message string, data map[string]string) Event {
	return Event{
		Type:       t,
		EntityID:   entityID,
		Subject:    subject,
		Message:    message,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

// Notifier delivers an event to one channel.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }

// LogNotifier writes events to the log.
type LogNotifier struct {
	Logger *logrus.Logger
}

func (n *LogNotifier) Notify(_ context.Context, event Event) error {
	n.Logger.WithFields(logrus.Fields{
		"event":     event.Type,
		"entity_id": event.EntityID,
	}).Info(event.Subject)
	return nil
}

// Async hands events to a Notifier on a background goroutine.
// Notify always returns nil, delivery errors are only logged.
type Async struct {
	next    Notifier
	timeout time.Duration
	logger  *logrus.Logger
	wg      sync.WaitGroup
}

// NewAsync delivers events to next in the background, each bounded by timeout.
func NewAsync(next Notifier, timeout time.Duration, logger *logrus.Logger) *Async {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Async{next: next, timeout: timeout, logger: logger}
}

func (a *Async) Notify(_ context.Context, event Event) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				a.logger.WithField("event", event.Type).Errorf("notifier panic: %v", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.next.Notify(ctx, event); err != nil {
			a.logger.WithError(err).WithFields(logrus.Fields{
				"event":     event.Type,
				"entity_id": event.EntityID,
			}).Warn("notification delivery failed")
		}
	}()
	return nil
}

// Wait blocks until in-flight deliveries finish or ctx ends.
func (a *Async) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Multi fans an event out to several notifiers and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", n, err))
		}
	}
	return errors.Join(errs...)
}
