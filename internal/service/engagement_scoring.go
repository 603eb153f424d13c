package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mirelhq/campaign-insights/internal/domain"
	"github.com/mirelhq/campaign-insights/internal/repository"
	"github.com/mirelhq/campaign-insights/internal/result"
	"go.uber.org/zap"
)

// Component weights of the composite engagement score. They sum to 1 and the
// composite stays in [0, 100].
const (
	recencyWeight   = 0.30
	frequencyWeight = 0.25
	monetaryWeight  = 0.20
	timeDecayWeight = 0.15
	diversityWeight = 0.10

	defaultLookbackDays = 90

	// recencyHalfLifeDays halves the recency component every 30 days of
	// silence.
	recencyHalfLifeDays = 30.0

	// frequencySaturation is the event count at which the frequency
	// component maxes out over the lookback window.
	frequencySaturation = 20.0

	// monetarySaturation is the cumulative event value at which the
	// monetary component maxes out.
	monetarySaturation = 1000.0

	decayHalfLifeDays = 7.0
	decaySaturation   = 10.0
)

type EngagementService struct {
	engagements repository.EngagementRepository
	settings    *SettingsService
	logger      *zap.Logger
	now         func() time.Time
}

func NewEngagementService(
	engagements repository.EngagementRepository,
	settings *SettingsService,
	logger *zap.Logger,
) (*EngagementService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &EngagementService{
		engagements: engagements,
		settings:    settings,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// RecordEvent stores one engagement touch for a contact.
func (s *EngagementService) RecordEvent(ctx context.Context, input domain.EngagementEvent) result.Result[domain.EngagementEvent] {
	if ctx == nil {
		ctx = context.Background()
	}

	if strings.TrimSpace(input.ContactID) == "" {
		return result.Failure[domain.EngagementEvent](result.CodeMissingContactID, "contact id is required")
	}

	event := input
	event.ContactID = strings.TrimSpace(event.ContactID)
	if strings.TrimSpace(event.ID) == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}
	if err := event.Validate(); err != nil {
		return result.Failure[domain.EngagementEvent](result.CodeValidation, err.Error())
	}

	if err := s.engagements.CreateEvent(ctx, &event); err != nil {
		return result.Failuref[domain.EngagementEvent](result.CodeDatabase, "failed to store engagement event: %v", err)
	}

	return result.Success(event)
}

// Score computes the composite engagement score for a contact from events in
// the lookback window. A contact with no events scores zero across the board.
func (s *EngagementService) Score(ctx context.Context, contactID string) result.Result[domain.EngagementScore] {
	if ctx == nil {
		ctx = context.Background()
	}

	contactID = strings.TrimSpace(contactID)
	if contactID == "" {
		return result.Failure[domain.EngagementScore](result.CodeMissingContactID, "contact id is required")
	}

	now := s.now().UTC()
	lookbackDays := float64(defaultLookbackDays)
	if s.settings != nil {
		lookbackDays = s.settings.Float(ctx, SettingEngagementLookback, defaultLookbackDays)
		if lookbackDays <= 0 {
			lookbackDays = defaultLookbackDays
		}
	}
	since := now.Add(-time.Duration(lookbackDays*24) * time.Hour)

	events, err := s.engagements.EventsByContact(ctx, contactID, since)
	if err != nil {
		return result.Failuref[domain.EngagementScore](result.CodeDatabase, "failed to load engagement events: %v", err)
	}

	score := domain.EngagementScore{
		ContactID:  contactID,
		EventCount: len(events),
		ComputedAt: now,
	}
	if len(events) == 0 {
		return result.Success(score)
	}

	score.Recency = recencyScore(events, now)
	score.Frequency = frequencyScore(len(events))
	score.Monetary = monetaryScore(events)
	score.TimeDecay = timeDecayScore(events, now)
	score.Diversity = diversityScore(events)

	score.Total = recencyWeight*score.Recency +
		frequencyWeight*score.Frequency +
		monetaryWeight*score.Monetary +
		timeDecayWeight*score.TimeDecay +
		diversityWeight*score.Diversity
	score.ConversionProbability = conversionProbability(score.Total)

	return result.Success(score)
}

// recencyScore decays exponentially with days since the latest event.
func recencyScore(events []domain.EngagementEvent, now time.Time) float64 {
	latest := events[0].OccurredAt
	for _, e := range events[1:] {
		if e.OccurredAt.After(latest) {
			latest = e.OccurredAt
		}
	}

	days := now.Sub(latest).Hours() / 24
	if days < 0 {
		days = 0
	}
	return 100 * math.Exp(-math.Ln2*days/recencyHalfLifeDays)
}

// frequencyScore saturates once a contact has frequencySaturation events in
// the window.
func frequencyScore(count int) float64 {
	ratio := float64(count) / frequencySaturation
	if ratio > 1 {
		ratio = 1
	}
	return 100 * ratio
}

// monetaryScore grows with log of cumulative event value so one large
// purchase does not dwarf sustained engagement.
func monetaryScore(events []domain.EngagementEvent) float64 {
	var total float64
	for _, e := range events {
		if e.Value > 0 {
			total += e.Value
		}
	}
	if total <= 0 {
		return 0
	}

	ratio := math.Log1p(total) / math.Log1p(monetarySaturation)
	if ratio > 1 {
		ratio = 1
	}
	return 100 * ratio
}

// timeDecayScore sums per-event half-life decay so a burst of recent events
// outranks the same count spread thin months ago.
func timeDecayScore(events []domain.EngagementEvent, now time.Time) float64 {
	var sum float64
	for _, e := range events {
		days := now.Sub(e.OccurredAt).Hours() / 24
		if days < 0 {
			days = 0
		}
		sum += math.Exp(-math.Ln2 * days / decayHalfLifeDays)
	}

	ratio := sum / decaySaturation
	if ratio > 1 {
		ratio = 1
	}
	return 100 * ratio
}

// diversityScore rewards touching more distinct engagement channels.
func diversityScore(events []domain.EngagementEvent) float64 {
	seen := make(map[domain.EngagementType]struct{}, len(events))
	for _, e := range events {
		seen[e.Type] = struct{}{}
	}
	return 100 * float64(len(seen)) / float64(len(domain.KnownEngagementTypes))
}

// conversionProbability maps the composite score onto (0, 1) with a logistic
// curve centered at a score of 50.
func conversionProbability(total float64) float64 {
	return 1 / (1 + math.Exp(-(total-50)/12))
}
