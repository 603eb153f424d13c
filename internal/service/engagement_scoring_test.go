package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/mirelhq/campaign-insights/internal/domain"
	"github.com/mirelhq/campaign-insights/internal/result"
)

func newEngagementService(t *testing.T, engagements *fakeEngagementRepo) *EngagementService {
	t.Helper()

	settingsSvc, err := NewSettingsService(&fakeSettingRepo{}, &fakeQuickBooksAuthRepo{}, nil)
	if err != nil {
		t.Fatalf("NewSettingsService() error = %v", err)
	}
	svc, err := NewEngagementService(engagements, settingsSvc, nil)
	if err != nil {
		t.Fatalf("NewEngagementService() error = %v", err)
	}
	return svc
}

func TestEngagementServiceScoreNoEvents(t *testing.T) {
	t.Parallel()

	svc := newEngagementService(t, &fakeEngagementRepo{})

	res := svc.Score(context.Background(), "contact-1")
	if !res.OK() {
		t.Fatalf("Score() failed: %s", res.Error())
	}

	score := res.Data()
	if score.EventCount != 0 {
		t.Fatalf("event count = %d, want 0", score.EventCount)
	}
	if score.Total != 0 || score.Recency != 0 || score.Frequency != 0 {
		t.Fatalf("no-event contact should score zero: %+v", score)
	}
}

func TestEngagementServiceScoreComponents(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	event := func(daysAgo int, eventType domain.EngagementType, value float64) domain.EngagementEvent {
		return domain.EngagementEvent{
			ID:         "e",
			ContactID:  "contact-1",
			Type:       eventType,
			Value:      value,
			OccurredAt: now.AddDate(0, 0, -daysAgo),
		}
	}

	engagements := &fakeEngagementRepo{
		eventsByContactFn: func(ctx context.Context, contactID string, since time.Time) ([]domain.EngagementEvent, error) {
			return []domain.EngagementEvent{
				event(30, domain.EngagementReply, 0),
				event(14, domain.EngagementClick, 0),
				event(7, domain.EngagementVisit, 0),
				event(0, domain.EngagementPurchase, 200),
			}, nil
		},
	}

	svc := newEngagementService(t, engagements)

	res := svc.Score(context.Background(), "contact-1")
	if !res.OK() {
		t.Fatalf("Score() failed: %s", res.Error())
	}

	score := res.Data()
	if score.EventCount != 4 {
		t.Fatalf("event count = %d, want 4", score.EventCount)
	}
	// Latest event is today, so recency is at its maximum.
	if math.Abs(score.Recency-100) > 0.5 {
		t.Fatalf("recency = %v, want ~100", score.Recency)
	}
	// 4 of 20 events in the window.
	if math.Abs(score.Frequency-20) > 1e-9 {
		t.Fatalf("frequency = %v, want 20", score.Frequency)
	}
	// 4 of 5 known types seen.
	if math.Abs(score.Diversity-80) > 1e-9 {
		t.Fatalf("diversity = %v, want 80", score.Diversity)
	}
	if score.Monetary <= 0 || score.Monetary > 100 {
		t.Fatalf("monetary = %v, want in (0, 100]", score.Monetary)
	}
	if score.TimeDecay <= 0 || score.TimeDecay > 100 {
		t.Fatalf("time decay = %v, want in (0, 100]", score.TimeDecay)
	}

	wantTotal := recencyWeight*score.Recency +
		frequencyWeight*score.Frequency +
		monetaryWeight*score.Monetary +
		timeDecayWeight*score.TimeDecay +
		diversityWeight*score.Diversity
	if math.Abs(score.Total-wantTotal) > 1e-9 {
		t.Fatalf("total = %v, want weighted sum %v", score.Total, wantTotal)
	}
	if score.ConversionProbability <= 0 || score.ConversionProbability >= 1 {
		t.Fatalf("probability = %v, want in (0, 1)", score.ConversionProbability)
	}
}

func TestEngagementServiceScoreRecencyDecays(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	scoreAtAge := func(daysAgo int) float64 {
		engagements := &fakeEngagementRepo{
			eventsByContactFn: func(ctx context.Context, contactID string, since time.Time) ([]domain.EngagementEvent, error) {
				return []domain.EngagementEvent{{
					ID:         "e1",
					ContactID:  contactID,
					Type:       domain.EngagementReply,
					OccurredAt: now.AddDate(0, 0, -daysAgo),
				}}, nil
			},
		}
		svc := newEngagementService(t, engagements)
		res := svc.Score(context.Background(), "contact-1")
		if !res.OK() {
			t.Fatalf("Score() failed: %s", res.Error())
		}
		return res.Data().Recency
	}

	fresh := scoreAtAge(0)
	month := scoreAtAge(30)
	stale := scoreAtAge(80)

	if !(fresh > month && month > stale) {
		t.Fatalf("recency should decay: %v, %v, %v", fresh, month, stale)
	}
	// One 30-day half-life elapsed.
	if math.Abs(month-fresh/2) > 0.5 {
		t.Fatalf("30-day-old recency = %v, want ~half of %v", month, fresh)
	}
}

func TestEngagementServiceHigherActivityScoresHigherProbability(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	buildEvents := func(n int) []domain.EngagementEvent {
		events := make([]domain.EngagementEvent, 0, n)
		for i := 0; i < n; i++ {
			events = append(events, domain.EngagementEvent{
				ID:         "e",
				ContactID:  "contact-1",
				Type:       domain.KnownEngagementTypes[i%len(domain.KnownEngagementTypes)],
				Value:      50,
				OccurredAt: now.AddDate(0, 0, -(i % 10)),
			})
		}
		return events
	}

	probabilityFor := func(n int) float64 {
		engagements := &fakeEngagementRepo{
			eventsByContactFn: func(ctx context.Context, contactID string, since time.Time) ([]domain.EngagementEvent, error) {
				return buildEvents(n), nil
			},
		}
		svc := newEngagementService(t, engagements)
		res := svc.Score(context.Background(), "contact-1")
		if !res.OK() {
			t.Fatalf("Score() failed: %s", res.Error())
		}
		return res.Data().ConversionProbability
	}

	if low, high := probabilityFor(2), probabilityFor(18); low >= high {
		t.Fatalf("probability should grow with activity: %v >= %v", low, high)
	}
}

func TestEngagementServiceRecordEvent(t *testing.T) {
	t.Parallel()

	stored := false
	engagements := &fakeEngagementRepo{
		createEventFn: func(ctx context.Context, e *domain.EngagementEvent) error {
			if e.ID == "" {
				t.Fatal("event id should be generated")
			}
			if e.OccurredAt.IsZero() {
				t.Fatal("occurred at should default to now")
			}
			stored = true
			return nil
		},
	}

	svc := newEngagementService(t, engagements)

	res := svc.RecordEvent(context.Background(), domain.EngagementEvent{
		ContactID: "contact-1",
		Type:      domain.EngagementClick,
	})
	if !res.OK() {
		t.Fatalf("RecordEvent() failed: %s", res.Error())
	}
	if !stored {
		t.Fatal("expected event to be stored")
	}

	missing := svc.RecordEvent(context.Background(), domain.EngagementEvent{Type: domain.EngagementClick})
	if missing.OK() || missing.Code() != result.CodeMissingContactID {
		t.Fatalf("code = %s, want %s", missing.Code(), result.CodeMissingContactID)
	}

	invalid := svc.RecordEvent(context.Background(), domain.EngagementEvent{ContactID: "c1", Type: "SMOKE_SIGNAL"})
	if invalid.OK() || invalid.Code() != result.CodeValidation {
		t.Fatalf("code = %s, want %s", invalid.Code(), result.CodeValidation)
	}
}
