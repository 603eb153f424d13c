package domain

import (
	"fmt"
	"strings"
	"time"
)

// CostCategory groups campaign spend entries.
type CostCategory string

const (
	CostMessaging CostCategory = "MESSAGING"
	CostCreative  CostCategory = "CREATIVE"
	CostPlatform  CostCategory = "PLATFORM"
	CostOther     CostCategory = "OTHER"
)

func (c CostCategory) String() string { return string(c) }

func (c CostCategory) IsValid() bool {
	switch c {
	case CostMessaging, CostCreative, CostPlatform, CostOther:
		return true
	}
	return false
}

func ParseCostCategory(s string) (CostCategory, error) {
	cc := CostCategory(strings.ToUpper(strings.TrimSpace(s)))
	if !cc.IsValid() {
		return "", fmt.Errorf("%w: invalid cost category %q", ErrValidation, s)
	}
	return cc, nil
}

// CampaignCost is a single spend entry against a campaign.
type CampaignCost struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	CampaignID  string `gorm:"type:uuid;not null"`
	Category    CostCategory
	Amount      float64
	Description string
	IncurredAt  time.Time
	CreatedAt   time.Time
}

func (c *CampaignCost) Validate() error {
	if strings.TrimSpace(c.CampaignID) == "" {
		return fmt.Errorf("%w: campaign id is required", ErrValidation)
	}
	if !c.Category.IsValid() {
		return fmt.Errorf("%w: invalid cost category %q", ErrValidation, c.Category)
	}
	if c.Amount < 0 {
		return fmt.Errorf("%w: cost amount must not be negative", ErrValidation)
	}
	return nil
}

// ROIAnalysis is the computed marketing-finance view of a campaign.
//
// CostDefined is false when no spend was recorded; ratio fields are zero in
// that case and must not be read as a real ROI of 0%.
type ROIAnalysis struct {
	CampaignID   string
	Revenue      float64
	Cost         float64
	CostDefined  bool
	ROIPercent   float64
	ROAS         float64
	CAC          float64
	LTV          float64
	Conversions  int64
	NewCustomers int64
	ComputedAt   time.Time
}
