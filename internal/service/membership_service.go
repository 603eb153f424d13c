package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mirelhq/campaign-insights/internal/domain"
	"github.com/mirelhq/campaign-insights/internal/repository"
	"github.com/mirelhq/campaign-insights/internal/result"
	"go.uber.org/zap"
)

// MembershipInput is the raw enrollment submission before validation.
type MembershipInput struct {
	ContactID  string
	CampaignID string
	Variant    string
	SentAt     *time.Time
}

type MembershipService struct {
	memberships repository.MembershipRepository
	logger      *zap.Logger
	now         func() time.Time
}

func NewMembershipService(memberships repository.MembershipRepository, logger *zap.Logger) (*MembershipService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &MembershipService{
		memberships: memberships,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// Enroll records a contact on a campaign. A contact can hold only one
// membership per campaign.
func (s *MembershipService) Enroll(ctx context.Context, input MembershipInput) result.Result[domain.CampaignMembership] {
	if ctx == nil {
		ctx = context.Background()
	}

	if strings.TrimSpace(input.ContactID) == "" {
		return result.Failure[domain.CampaignMembership](result.CodeMissingContactID, "contact id is required")
	}
	if strings.TrimSpace(input.CampaignID) == "" {
		return result.Failure[domain.CampaignMembership](result.CodeMissingCampaignID, "campaign id is required")
	}

	membership := domain.CampaignMembership{
		ID:         uuid.NewString(),
		CampaignID: strings.TrimSpace(input.CampaignID),
		ContactID:  strings.TrimSpace(input.ContactID),
		Status:     domain.MembershipActive,
		Variant:    strings.TrimSpace(input.Variant),
		SentAt:     input.SentAt,
	}
	if err := membership.Validate(); err != nil {
		return result.Failure[domain.CampaignMembership](result.CodeValidation, err.Error())
	}

	if err := s.memberships.Create(ctx, &membership); err != nil {
		if isDuplicateKeyError(err) {
			return result.Failuref[domain.CampaignMembership](result.CodeDuplicateEvent,
				"contact %s is already enrolled on campaign %s", membership.ContactID, membership.CampaignID)
		}
		return result.Failuref[domain.CampaignMembership](result.CodeDatabase, "failed to store membership: %v", err)
	}

	return result.Success(membership)
}

func (s *MembershipService) Get(ctx context.Context, id string) result.Result[domain.CampaignMembership] {
	if ctx == nil {
		ctx = context.Background()
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return result.Failure[domain.CampaignMembership](result.CodeValidation, "membership id is required")
	}

	membership, err := s.memberships.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return result.Failuref[domain.CampaignMembership](result.CodeNotFound, "membership %s not found", id)
	}
	if err != nil {
		return result.Failuref[domain.CampaignMembership](result.CodeDatabase, "failed to load membership: %v", err)
	}

	return result.Success(*membership)
}
