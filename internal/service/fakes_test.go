package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mirelhq/campaign-insights/internal/cache"
	"github.com/mirelhq/campaign-insights/internal/domain"
	"github.com/mirelhq/campaign-insights/internal/queue"
	"github.com/mirelhq/campaign-insights/internal/repository"
	"github.com/mirelhq/campaign-insights/internal/webhook"
	"github.com/redis/go-redis/v9"
)

// newAnalyticsCache backs a *cache.Cache with an in-process redis for
// exercising the services' cache paths.
func newAnalyticsCache(t *testing.T) *cache.Cache {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c, err := cache.New(client, time.Minute)
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}
	return c
}

type fakeMembershipRepo struct {
	createFn                  func(ctx context.Context, m *domain.CampaignMembership) error
	getByIDFn                 func(ctx context.Context, id string) (*domain.CampaignMembership, error)
	getByContactAndCampaignFn func(ctx context.Context, contactID, campaignID string) (*domain.CampaignMembership, error)
	markRepliedFn             func(ctx context.Context, id string, repliedAt time.Time, tone domain.Sentiment) error
	markConvertedFn           func(ctx context.Context, id string) error
	countSentFn               func(ctx context.Context, campaignID string) (int64, error)
	countRepliedFn            func(ctx context.Context, campaignID string) (int64, error)
	variantCountsFn           func(ctx context.Context, campaignID string) ([]repository.VariantCounts, error)
	touchpointsFn             func(ctx context.Context, contactID string) ([]domain.CampaignMembership, error)
}

func (f *fakeMembershipRepo) Create(ctx context.Context, m *domain.CampaignMembership) error {
	if f.createFn != nil {
		return f.createFn(ctx, m)
	}
	return nil
}

func (f *fakeMembershipRepo) GetByID(ctx context.Context, id string) (*domain.CampaignMembership, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMembershipRepo) GetByContactAndCampaign(ctx context.Context, contactID, campaignID string) (*domain.CampaignMembership, error) {
	if f.getByContactAndCampaignFn != nil {
		return f.getByContactAndCampaignFn(ctx, contactID, campaignID)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMembershipRepo) MarkReplied(ctx context.Context, id string, repliedAt time.Time, tone domain.Sentiment) error {
	if f.markRepliedFn != nil {
		return f.markRepliedFn(ctx, id, repliedAt, tone)
	}
	return nil
}

func (f *fakeMembershipRepo) MarkConverted(ctx context.Context, id string) error {
	if f.markConvertedFn != nil {
		return f.markConvertedFn(ctx, id)
	}
	return nil
}

func (f *fakeMembershipRepo) CountSent(ctx context.Context, campaignID string) (int64, error) {
	if f.countSentFn != nil {
		return f.countSentFn(ctx, campaignID)
	}
	return 0, nil
}

func (f *fakeMembershipRepo) CountReplied(ctx context.Context, campaignID string) (int64, error) {
	if f.countRepliedFn != nil {
		return f.countRepliedFn(ctx, campaignID)
	}
	return 0, nil
}

func (f *fakeMembershipRepo) VariantCounts(ctx context.Context, campaignID string) ([]repository.VariantCounts, error) {
	if f.variantCountsFn != nil {
		return f.variantCountsFn(ctx, campaignID)
	}
	return nil, nil
}

func (f *fakeMembershipRepo) TouchpointsForContact(ctx context.Context, contactID string) ([]domain.CampaignMembership, error) {
	if f.touchpointsFn != nil {
		return f.touchpointsFn(ctx, contactID)
	}
	return nil, nil
}

type fakeResponseRepo struct {
	createFn             func(ctx context.Context, r *domain.CampaignResponse) error
	listByCampaignFn     func(ctx context.Context, campaignID string, page, pageSize int) ([]domain.CampaignResponse, int64, error)
	sentimentBreakdownFn func(ctx context.Context, campaignID string) ([]repository.LabelCount, error)
	intentBreakdownFn    func(ctx context.Context, campaignID string) ([]repository.LabelCount, error)
	responseTimesFn      func(ctx context.Context, campaignID string) ([]float64, error)
}

func (f *fakeResponseRepo) Create(ctx context.Context, r *domain.CampaignResponse) error {
	if f.createFn != nil {
		return f.createFn(ctx, r)
	}
	return nil
}

func (f *fakeResponseRepo) ListByCampaign(ctx context.Context, campaignID string, page, pageSize int) ([]domain.CampaignResponse, int64, error) {
	if f.listByCampaignFn != nil {
		return f.listByCampaignFn(ctx, campaignID, page, pageSize)
	}
	return nil, 0, nil
}

func (f *fakeResponseRepo) SentimentBreakdown(ctx context.Context, campaignID string) ([]repository.LabelCount, error) {
	if f.sentimentBreakdownFn != nil {
		return f.sentimentBreakdownFn(ctx, campaignID)
	}
	return nil, nil
}

func (f *fakeResponseRepo) IntentBreakdown(ctx context.Context, campaignID string) ([]repository.LabelCount, error) {
	if f.intentBreakdownFn != nil {
		return f.intentBreakdownFn(ctx, campaignID)
	}
	return nil, nil
}

func (f *fakeResponseRepo) ResponseTimes(ctx context.Context, campaignID string) ([]float64, error) {
	if f.responseTimesFn != nil {
		return f.responseTimesFn(ctx, campaignID)
	}
	return nil, nil
}

type fakeConversionRepo struct {
	createFn            func(ctx context.Context, e *domain.ConversionEvent) error
	getByIDFn           func(ctx context.Context, id string) (*domain.ConversionEvent, error)
	listByCampaignFn    func(ctx context.Context, campaignID string, page, pageSize int) ([]domain.ConversionEvent, int64, error)
	revenueByCampaignFn func(ctx context.Context, campaignID string) (float64, error)
	countByCampaignFn   func(ctx context.Context, campaignID string) (int64, error)
	countNewCustomersFn func(ctx context.Context, campaignID string) (int64, error)
}

func (f *fakeConversionRepo) Create(ctx context.Context, e *domain.ConversionEvent) error {
	if f.createFn != nil {
		return f.createFn(ctx, e)
	}
	return nil
}

func (f *fakeConversionRepo) GetByID(ctx context.Context, id string) (*domain.ConversionEvent, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeConversionRepo) ListByCampaign(ctx context.Context, campaignID string, page, pageSize int) ([]domain.ConversionEvent, int64, error) {
	if f.listByCampaignFn != nil {
		return f.listByCampaignFn(ctx, campaignID, page, pageSize)
	}
	return nil, 0, nil
}

func (f *fakeConversionRepo) RevenueByCampaign(ctx context.Context, campaignID string) (float64, error) {
	if f.revenueByCampaignFn != nil {
		return f.revenueByCampaignFn(ctx, campaignID)
	}
	return 0, nil
}

func (f *fakeConversionRepo) CountByCampaign(ctx context.Context, campaignID string) (int64, error) {
	if f.countByCampaignFn != nil {
		return f.countByCampaignFn(ctx, campaignID)
	}
	return 0, nil
}

func (f *fakeConversionRepo) CountNewCustomers(ctx context.Context, campaignID string) (int64, error) {
	if f.countNewCustomersFn != nil {
		return f.countNewCustomersFn(ctx, campaignID)
	}
	return 0, nil
}

type fakeCostRepo struct {
	createFn          func(ctx context.Context, c *domain.CampaignCost) error
	totalByCampaignFn func(ctx context.Context, campaignID string) (float64, error)
	listByCampaignFn  func(ctx context.Context, campaignID string) ([]domain.CampaignCost, error)
}

func (f *fakeCostRepo) Create(ctx context.Context, c *domain.CampaignCost) error {
	if f.createFn != nil {
		return f.createFn(ctx, c)
	}
	return nil
}

func (f *fakeCostRepo) TotalByCampaign(ctx context.Context, campaignID string) (float64, error) {
	if f.totalByCampaignFn != nil {
		return f.totalByCampaignFn(ctx, campaignID)
	}
	return 0, nil
}

func (f *fakeCostRepo) ListByCampaign(ctx context.Context, campaignID string) ([]domain.CampaignCost, error) {
	if f.listByCampaignFn != nil {
		return f.listByCampaignFn(ctx, campaignID)
	}
	return nil, nil
}

type fakeWebhookRepo struct {
	createFn        func(ctx context.Context, w *domain.FailedWebhook) error
	getByIDFn       func(ctx context.Context, id string) (*domain.FailedWebhook, error)
	getByEventIDFn  func(ctx context.Context, eventID string) (*domain.FailedWebhook, error)
	getDueFn        func(ctx context.Context, limit int) ([]domain.FailedWebhook, error)
	recordAttemptFn func(ctx context.Context, id string, status domain.WebhookStatus, retryCount int, nextRetryAt *time.Time, lastError *string) error
	markResolvedFn  func(ctx context.Context, id string, resolvedAt time.Time) error
	listFn          func(ctx context.Context, status *domain.WebhookStatus, page, pageSize int) ([]domain.FailedWebhook, int64, error)
}

func (f *fakeWebhookRepo) Create(ctx context.Context, w *domain.FailedWebhook) error {
	if f.createFn != nil {
		return f.createFn(ctx, w)
	}
	return nil
}

func (f *fakeWebhookRepo) GetByID(ctx context.Context, id string) (*domain.FailedWebhook, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeWebhookRepo) GetByEventID(ctx context.Context, eventID string) (*domain.FailedWebhook, error) {
	if f.getByEventIDFn != nil {
		return f.getByEventIDFn(ctx, eventID)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeWebhookRepo) GetDue(ctx context.Context, limit int) ([]domain.FailedWebhook, error) {
	if f.getDueFn != nil {
		return f.getDueFn(ctx, limit)
	}
	return nil, nil
}

func (f *fakeWebhookRepo) RecordAttempt(ctx context.Context, id string, status domain.WebhookStatus, retryCount int, nextRetryAt *time.Time, lastError *string) error {
	if f.recordAttemptFn != nil {
		return f.recordAttemptFn(ctx, id, status, retryCount, nextRetryAt, lastError)
	}
	return nil
}

func (f *fakeWebhookRepo) MarkResolved(ctx context.Context, id string, resolvedAt time.Time) error {
	if f.markResolvedFn != nil {
		return f.markResolvedFn(ctx, id, resolvedAt)
	}
	return nil
}

func (f *fakeWebhookRepo) List(ctx context.Context, status *domain.WebhookStatus, page, pageSize int) ([]domain.FailedWebhook, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, status, page, pageSize)
	}
	return nil, 0, nil
}

type fakeEngagementRepo struct {
	createEventFn     func(ctx context.Context, e *domain.EngagementEvent) error
	eventsByContactFn func(ctx context.Context, contactID string, since time.Time) ([]domain.EngagementEvent, error)
}

func (f *fakeEngagementRepo) CreateEvent(ctx context.Context, e *domain.EngagementEvent) error {
	if f.createEventFn != nil {
		return f.createEventFn(ctx, e)
	}
	return nil
}

func (f *fakeEngagementRepo) EventsByContact(ctx context.Context, contactID string, since time.Time) ([]domain.EngagementEvent, error) {
	if f.eventsByContactFn != nil {
		return f.eventsByContactFn(ctx, contactID, since)
	}
	return nil, nil
}

type fakeSettingRepo struct {
	getFn    func(ctx context.Context, key string) (*domain.Setting, error)
	upsertFn func(ctx context.Context, s *domain.Setting) error
}

func (f *fakeSettingRepo) Get(ctx context.Context, key string) (*domain.Setting, error) {
	if f.getFn != nil {
		return f.getFn(ctx, key)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSettingRepo) Upsert(ctx context.Context, s *domain.Setting) error {
	if f.upsertFn != nil {
		return f.upsertFn(ctx, s)
	}
	return nil
}

type fakeQuickBooksAuthRepo struct {
	getFn  func(ctx context.Context, realmID string) (*domain.QuickBooksAuth, error)
	saveFn func(ctx context.Context, a *domain.QuickBooksAuth) error
}

func (f *fakeQuickBooksAuthRepo) Get(ctx context.Context, realmID string) (*domain.QuickBooksAuth, error) {
	if f.getFn != nil {
		return f.getFn(ctx, realmID)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeQuickBooksAuthRepo) Save(ctx context.Context, a *domain.QuickBooksAuth) error {
	if f.saveFn != nil {
		return f.saveFn(ctx, a)
	}
	return nil
}

type fakePublisher struct {
	publishFn func(ctx context.Context, msg queue.ResponseMessage) error
	closeFn   func() error
}

func (f *fakePublisher) Publish(ctx context.Context, msg queue.ResponseMessage) error {
	if f.publishFn != nil {
		return f.publishFn(ctx, msg)
	}
	return nil
}

func (f *fakePublisher) Close() error {
	if f.closeFn != nil {
		return f.closeFn()
	}
	return nil
}

type fakeConsumer struct {
	consumeFn func(ctx context.Context, handler queue.MessageHandler) error
	closeFn   func() error
}

func (f *fakeConsumer) Consume(ctx context.Context, handler queue.MessageHandler) error {
	if f.consumeFn != nil {
		return f.consumeFn(ctx, handler)
	}
	<-ctx.Done()
	return nil
}

func (f *fakeConsumer) Close() error {
	if f.closeFn != nil {
		return f.closeFn()
	}
	return nil
}

type fakeDeliverer struct {
	deliverFn func(ctx context.Context, w domain.FailedWebhook) (*webhook.DeliveryResult, error)
}

func (f *fakeDeliverer) Deliver(ctx context.Context, w domain.FailedWebhook) (*webhook.DeliveryResult, error) {
	if f.deliverFn != nil {
		return f.deliverFn(ctx, w)
	}
	return &webhook.DeliveryResult{StatusCode: 200}, nil
}

type fakeRateLimiter struct {
	allowFn func(ctx context.Context, host string) (bool, error)
	waitFn  func(ctx context.Context, host string) error
}

func (f *fakeRateLimiter) Allow(ctx context.Context, host string) (bool, error) {
	if f.allowFn != nil {
		return f.allowFn(ctx, host)
	}
	return true, nil
}

func (f *fakeRateLimiter) Wait(ctx context.Context, host string) error {
	if f.waitFn != nil {
		return f.waitFn(ctx, host)
	}
	return nil
}
