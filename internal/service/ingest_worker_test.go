package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/mirelhq/campaign-insights/internal/domain"
	"github.com/mirelhq/campaign-insights/internal/queue"
	"github.com/mirelhq/campaign-insights/internal/sentiment"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newIngestWorker(
	t *testing.T,
	responses *fakeResponseRepo,
	memberships *fakeMembershipRepo,
	engagements *fakeEngagementRepo,
	consumer queue.Consumer,
) *IngestWorker {
	t.Helper()

	worker, err := NewIngestWorker(
		responses,
		memberships,
		engagements,
		consumer,
		sentiment.NewAnalyzer(),
		nil,
		1,
		nil,
	)
	if err != nil {
		t.Fatalf("NewIngestWorker() error = %v", err)
	}
	return worker
}

func TestIngestWorkerProcessMessageRecordsEverything(t *testing.T) {
	t.Parallel()

	sentAt := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	receivedAt := sentAt.Add(42 * time.Minute)

	memberships := &fakeMembershipRepo{
		getByContactAndCampaignFn: func(ctx context.Context, contactID, campaignID string) (*domain.CampaignMembership, error) {
			return &domain.CampaignMembership{
				ID:         "membership-1",
				ContactID:  contactID,
				CampaignID: campaignID,
				Status:     domain.MembershipActive,
				SentAt:     &sentAt,
			}, nil
		},
		markRepliedFn: func(ctx context.Context, id string, repliedAt time.Time, tone domain.Sentiment) error {
			if id != "membership-1" {
				t.Fatalf("membership id = %s, want membership-1", id)
			}
			if !repliedAt.Equal(receivedAt) {
				t.Fatalf("replied at = %v, want %v", repliedAt, receivedAt)
			}
			if tone != domain.SentimentPositive {
				t.Fatalf("tone = %s, want POSITIVE", tone)
			}
			return nil
		},
	}

	var storedResponse *domain.CampaignResponse
	responses := &fakeResponseRepo{
		createFn: func(ctx context.Context, r *domain.CampaignResponse) error {
			storedResponse = r
			return nil
		},
	}

	var storedEngagement *domain.EngagementEvent
	engagements := &fakeEngagementRepo{
		createEventFn: func(ctx context.Context, e *domain.EngagementEvent) error {
			storedEngagement = e
			return nil
		},
	}

	worker := newIngestWorker(t, responses, memberships, engagements, &fakeConsumer{})

	err := worker.processMessage(context.Background(), queue.ResponseMessage{
		EventID:    "evt-1",
		CampaignID: "campaign-1",
		ContactID:  "contact-1",
		Body:       "Yes, I'm interested, tell me more!",
		ReceivedAt: receivedAt,
	})
	if err != nil {
		t.Fatalf("processMessage() error = %v", err)
	}

	if storedResponse == nil {
		t.Fatal("expected response to be stored")
	}
	if storedResponse.Sentiment != domain.SentimentPositive {
		t.Fatalf("sentiment = %s, want POSITIVE", storedResponse.Sentiment)
	}
	if storedResponse.Intent != domain.IntentInterested {
		t.Fatalf("intent = %s, want INTERESTED", storedResponse.Intent)
	}
	if math.Abs(storedResponse.ResponseSeconds-2520) > 1e-9 {
		t.Fatalf("response seconds = %v, want 2520", storedResponse.ResponseSeconds)
	}

	if storedEngagement == nil {
		t.Fatal("expected engagement event to be stored")
	}
	if storedEngagement.Type != domain.EngagementReply {
		t.Fatalf("engagement type = %s, want REPLY", storedEngagement.Type)
	}
	if storedEngagement.CampaignID == nil || *storedEngagement.CampaignID != "campaign-1" {
		t.Fatal("engagement event should carry the campaign id")
	}
}

func TestIngestWorkerProcessMessageUnknownMembershipAcks(t *testing.T) {
	t.Parallel()

	memberships := &fakeMembershipRepo{
		getByContactAndCampaignFn: func(ctx context.Context, contactID, campaignID string) (*domain.CampaignMembership, error) {
			return nil, domain.ErrNotFound
		},
	}
	responses := &fakeResponseRepo{
		createFn: func(ctx context.Context, r *domain.CampaignResponse) error {
			t.Fatal("response should not be stored for unknown membership")
			return nil
		},
	}

	worker := newIngestWorker(t, responses, memberships, &fakeEngagementRepo{}, &fakeConsumer{})

	err := worker.processMessage(context.Background(), queue.ResponseMessage{
		EventID:    "evt-1",
		CampaignID: "campaign-1",
		ContactID:  "stranger",
		Body:       "who dis",
		ReceivedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("processMessage() should ack unknown membership, got %v", err)
	}
}

func TestIngestWorkerProcessMessageSecondReplyToleratesConflict(t *testing.T) {
	t.Parallel()

	sentAt := time.Now().UTC().Add(-time.Hour)
	memberships := &fakeMembershipRepo{
		getByContactAndCampaignFn: func(ctx context.Context, contactID, campaignID string) (*domain.CampaignMembership, error) {
			return &domain.CampaignMembership{
				ID:         "membership-1",
				ContactID:  contactID,
				CampaignID: campaignID,
				Status:     domain.MembershipReplied,
				SentAt:     &sentAt,
			}, nil
		},
		markRepliedFn: func(ctx context.Context, id string, repliedAt time.Time, tone domain.Sentiment) error {
			return domain.ErrConflict
		},
	}

	stored := false
	responses := &fakeResponseRepo{
		createFn: func(ctx context.Context, r *domain.CampaignResponse) error {
			stored = true
			return nil
		},
	}

	worker := newIngestWorker(t, responses, memberships, &fakeEngagementRepo{}, &fakeConsumer{})

	err := worker.processMessage(context.Background(), queue.ResponseMessage{
		EventID:    "evt-2",
		CampaignID: "campaign-1",
		ContactID:  "contact-1",
		Body:       "thanks again",
		ReceivedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("processMessage() error = %v", err)
	}
	if !stored {
		t.Fatal("later replies should still be recorded as responses")
	}
}

func TestIngestWorkerProcessMessageLogsCorrelationID(t *testing.T) {
	t.Parallel()

	sentAt := time.Now().UTC().Add(-time.Hour)
	memberships := &fakeMembershipRepo{
		getByContactAndCampaignFn: func(ctx context.Context, contactID, campaignID string) (*domain.CampaignMembership, error) {
			return &domain.CampaignMembership{
				ID:         "membership-1",
				ContactID:  contactID,
				CampaignID: campaignID,
				Status:     domain.MembershipActive,
				SentAt:     &sentAt,
			}, nil
		},
	}
	responses := &fakeResponseRepo{
		createFn: func(ctx context.Context, r *domain.CampaignResponse) error { return nil },
	}

	core, logs := observer.New(zapcore.InfoLevel)
	worker, err := NewIngestWorker(
		responses,
		memberships,
		&fakeEngagementRepo{},
		&fakeConsumer{},
		sentiment.NewAnalyzer(),
		nil,
		1,
		zap.New(core),
	)
	if err != nil {
		t.Fatalf("NewIngestWorker() error = %v", err)
	}

	err = worker.processMessage(context.Background(), queue.ResponseMessage{
		EventID:       "evt-3",
		CampaignID:    "campaign-1",
		ContactID:     "contact-1",
		Body:          "yes please",
		ReceivedAt:    time.Now().UTC(),
		CorrelationID: "req-42",
	})
	if err != nil {
		t.Fatalf("processMessage() error = %v", err)
	}

	entries := logs.FilterMessage("response ingested").All()
	if len(entries) != 1 {
		t.Fatalf("got %d 'response ingested' entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["correlationId"] != "req-42" {
		t.Fatalf("correlationId = %v, want req-42", fields["correlationId"])
	}
}

func TestIngestWorkerStartStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	consumer := &fakeConsumer{
		consumeFn: func(ctx context.Context, handler queue.MessageHandler) error {
			<-ctx.Done()
			return nil
		},
	}

	worker := newIngestWorker(t, &fakeResponseRepo{}, &fakeMembershipRepo{}, &fakeEngagementRepo{}, consumer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- worker.Start(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not stop after context cancellation")
	}
}
