package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/ghuser/inventory"

// Outcome values recorded on the registration and login counters.
const (
	OutcomeSuccess  = "success"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// Metrics holds the domain counters. A nil *Metrics records nothing.
type Metrics struct {
	itemMutations metric.Int64Counter
	registrations metric.Int64Counter
	logins        metric.Int64Counter
}

// NewMetrics creates the counters on the global MeterProvider. Call after Setup.
func NewMetrics() (*Metrics, error) {
	return NewMetricsFromMeter(otel.Meter(meterName))
}

// NewMetricsFromMeter creates the counters on m.
func NewMetricsFromMeter(m metric.Meter) (*Metrics, error) {
	itemMutations, err := m.Int64Counter("inventory.items.mutations",
		metric.WithDescription("Item create, update and delete operations that succeeded"))
	if err != nil {
		return nil, fmt.Errorf("item mutations counter: %w", err)
	}
	registrations, err := m.Int64Counter("inventory.registrations",
		metric.WithDescription("Registration attempts by outcome"))
	if err != nil {
		return nil, fmt.Errorf("registrations counter: %w", err)
	}
	logins, err := m.Int64Counter("inventory.logins",
		metric.WithDescription("Login attempts by outcome"))
	if err != nil {
		return nil, fmt.Errorf("logins counter: %w", err)
	}
	return &Metrics{itemMutations: itemMutations, registrations: registrations, logins: logins}, nil
}

// ItemMutation counts one successful item write. op is create, update or delete.
func (m *Metrics) ItemMutation(ctx context.Context, op string) {
	if m == nil {
		return
	}
	m.itemMutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

func (m *Metrics) Registration(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.registrations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) Login(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
