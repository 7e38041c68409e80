package signals

import (
	"context"
	"testing"

	"github.com/Yuvan-1166/crm-sub000/internal/crm/domain"

	"github.com/google/uuid"
)

// ratingStub returns fixed averages and records the temperature written back.
type ratingStub struct {
	sessionAvg  float64
	stageAvg    map[domain.Status]float64
	feedbackAvg float64

	wroteTemp *domain.Temperature
}

func (r *ratingStub) AvgSessionRating(ctx context.Context, contactID uuid.UUID) (float64, error) {
	return r.sessionAvg, nil
}

func (r *ratingStub) AvgStageSessionRating(ctx context.Context, contactID uuid.UUID, stage domain.Status) (float64, error) {
	return r.stageAvg[stage], nil
}

func (r *ratingStub) AvgFeedbackRating(ctx context.Context, contactID uuid.UUID) (float64, error) {
	return r.feedbackAvg, nil
}

func (r *ratingStub) UpdateContactTemperature(ctx context.Context, id uuid.UUID, temp domain.Temperature) error {
	r.wroteTemp = &temp
	return nil
}

// TestQualificationRatingUsesMQLStage checks the qualification input is the
// MQL-stage average, not the overall session average.
func TestQualificationRatingUsesMQLStage(t *testing.T) {
	stub := &ratingStub{
		sessionAvg: 9.5,
		stageAvg: map[domain.Status]float64{
			domain.StatusMQL:  6.5,
			domain.StatusLead: 10,
		},
	}

	got, err := QualificationRating(context.Background(), stub, uuid.New())
	if err != nil {
		t.Fatalf("QualificationRating() error = %v", err)
	}
	if got != 6.5 {
		t.Errorf("QualificationRating() = %v, want 6.5", got)
	}
}

func TestEvangelistRatingUsesFeedback(t *testing.T) {
	stub := &ratingStub{sessionAvg: 2, feedbackAvg: 8.7}

	got, err := EvangelistRating(context.Background(), stub, uuid.New())
	if err != nil {
		t.Fatalf("EvangelistRating() error = %v", err)
	}
	if got != 8.7 {
		t.Errorf("EvangelistRating() = %v, want 8.7", got)
	}
}

func TestRecomputeTemperature(t *testing.T) {
	cases := []struct {
		avg  float64
		want domain.Temperature
	}{
		{0, domain.TemperatureCold},
		{6.0, domain.TemperatureWarm},
		{8.0, domain.TemperatureHot},
	}

	for _, tc := range cases {
		stub := &ratingStub{sessionAvg: tc.avg}
		got, err := RecomputeTemperature(context.Background(), stub, uuid.New())
		if err != nil {
			t.Fatalf("RecomputeTemperature(avg=%v) error = %v", tc.avg, err)
		}
		if got != tc.want {
			t.Errorf("RecomputeTemperature(avg=%v) = %s, want %s", tc.avg, got, tc.want)
		}
		if stub.wroteTemp == nil || *stub.wroteTemp != tc.want {
			t.Errorf("RecomputeTemperature(avg=%v) wrote %v, want %s cached", tc.avg, stub.wroteTemp, tc.want)
		}
	}
}
