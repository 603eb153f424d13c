package domain

import (
	"errors"
	"testing"
	"time"
)

func validConversion() ConversionEvent {
	return ConversionEvent{
		ID:               "c1",
		CampaignID:       "camp-1",
		ContactID:        "contact-1",
		Type:             ConversionPurchase,
		Value:            149.90,
		AttributionModel: AttributionLastTouch,
		OccurredAt:       time.Now().UTC(),
	}
}

func TestConversionEventValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(e *ConversionEvent)
		wantErr bool
	}{
		{name: "valid", mutate: func(e *ConversionEvent) {}},
		{name: "zero value allowed", mutate: func(e *ConversionEvent) { e.Value = 0 }},
		{name: "missing contact id", mutate: func(e *ConversionEvent) { e.ContactID = "" }, wantErr: true},
		{name: "missing campaign id", mutate: func(e *ConversionEvent) { e.CampaignID = "  " }, wantErr: true},
		{name: "negative value", mutate: func(e *ConversionEvent) { e.Value = -1 }, wantErr: true},
		{name: "invalid type", mutate: func(e *ConversionEvent) { e.Type = "CHURN" }, wantErr: true},
		{name: "invalid attribution model", mutate: func(e *ConversionEvent) { e.AttributionModel = "U_SHAPED" }, wantErr: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e := validConversion()
			tc.mutate(&e)

			err := e.Validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseAttributionModel(t *testing.T) {
	t.Parallel()

	model, err := ParseAttributionModel(" time_decay ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model != AttributionTimeDecay {
		t.Fatalf("model = %s, want TIME_DECAY", model)
	}

	if _, err := ParseAttributionModel("position-based"); err == nil {
		t.Fatal("expected error for unsupported model")
	}
}

func TestParseConversionType(t *testing.T) {
	t.Parallel()

	ct, err := ParseConversionType("purchase")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ct != ConversionPurchase {
		t.Fatalf("type = %s, want PURCHASE", ct)
	}
}
