// Package signals computes the derived scalars gating pipeline transitions:
// overall and per-stage session rating averages and the feedback rating
// average. It is pure read-side computation; the one cached derivative is
// Contact.temperature, written back by RecomputeTemperature.
package signals

import (
	"context"

	"github.com/Yuvan-1166/crm-sub000/internal/crm/domain"

	"github.com/google/uuid"
)

// RatingSource is the consumer-driven read interface the aggregator needs.
// Both the pooled store and a transaction-bound query set satisfy it, so gate
// checks can be re-evaluated inside the transition's transaction.
type RatingSource interface {
	AvgSessionRating(ctx context.Context, contactID uuid.UUID) (float64, error)
	AvgStageSessionRating(ctx context.Context, contactID uuid.UUID, stage domain.Status) (float64, error)
	AvgFeedbackRating(ctx context.Context, contactID uuid.UUID) (float64, error)
}

// TemperatureWriter writes the cached temperature derivative.
type TemperatureWriter interface {
	UpdateContactTemperature(ctx context.Context, id uuid.UUID, temp domain.Temperature) error
}

// QualificationRating returns the average MQL-stage session rating, the gate
// input for MQL→SQL.
func QualificationRating(ctx context.Context, src RatingSource, contactID uuid.UUID) (float64, error) {
	return src.AvgStageSessionRating(ctx, contactID, domain.StatusMQL)
}

// EvangelistRating returns the average feedback rating, the gate input for
// CUSTOMER→EVANGELIST.
func EvangelistRating(ctx context.Context, src RatingSource, contactID uuid.UUID) (float64, error) {
	return src.AvgFeedbackRating(ctx, contactID)
}

// Temperature computes the contact's temperature band from all rated
// sessions.
func Temperature(ctx context.Context, src RatingSource, contactID uuid.UUID) (domain.Temperature, float64, error) {
	avg, err := src.AvgSessionRating(ctx, contactID)
	if err != nil {
		return domain.TemperatureCold, 0, err
	}
	return domain.TemperatureFor(avg), avg, nil
}

// Store combines the reads and the single cached write the aggregator owns.
type Store interface {
	RatingSource
	TemperatureWriter
}

// RecomputeTemperature recalculates the contact's temperature from session
// data and writes it back. This is not a pipeline transition: it never
// touches status and never appends status history.
func RecomputeTemperature(ctx context.Context, store Store, contactID uuid.UUID) (domain.Temperature, error) {
	temp, _, err := Temperature(ctx, store, contactID)
	if err != nil {
		return temp, err
	}
	if err := store.UpdateContactTemperature(ctx, contactID, temp); err != nil {
		return temp, err
	}
	return temp, nil
}
