// Package alert defines the operations-alert mirror. Emergency activations
// are mirrored to an ops channel (Slack or Discord) in addition to the
// tenant-facing contact fan-out. Delivery is best effort and never blocks
// the emergency protocol.
package alert

import (
	"context"
	"errors"
)

// Severity levels for ops alerts.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Alert is one ops notification.
type Alert struct {
	Title    string
	Body     string
	Severity string
	Fields   map[string]string
}

// Adapter delivers alerts to one ops destination.
type Adapter interface {
	// Name identifies the destination in logs.
	Name() string

	// Send delivers the alert.
	Send(ctx context.Context, a Alert) error
}

// Multi fans an alert out to several adapters, attempting all of them even
// when some fail.
type Multi []Adapter

// Name implements Adapter.
func (m Multi) Name() string { return "multi" }

// Send implements Adapter. All destinations are attempted; errors are joined.
func (m Multi) Send(ctx context.Context, a Alert) error {
	var errs []error
	for _, ad := range m {
		if err := ad.Send(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
