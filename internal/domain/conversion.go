package domain

import (
	"fmt"
	"strings"
	"time"
)

// ConversionType is the business outcome a conversion records.
type ConversionType string

const (
	ConversionPurchase ConversionType = "PURCHASE"
	ConversionSignup   ConversionType = "SIGNUP"
	ConversionBooking  ConversionType = "BOOKING"
	ConversionRenewal  ConversionType = "RENEWAL"
)

func (c ConversionType) String() string { return string(c) }

func (c ConversionType) IsValid() bool {
	switch c {
	case ConversionPurchase, ConversionSignup, ConversionBooking, ConversionRenewal:
		return true
	}
	return false
}

func ParseConversionType(s string) (ConversionType, error) {
	ct := ConversionType(strings.ToUpper(strings.TrimSpace(s)))
	if !ct.IsValid() {
		return "", fmt.Errorf("%w: invalid conversion type %q", ErrValidation, s)
	}
	return ct, nil
}

// AttributionModel is the rule used to split conversion credit across touchpoints.
type AttributionModel string

const (
	AttributionFirstTouch AttributionModel = "FIRST_TOUCH"
	AttributionLastTouch  AttributionModel = "LAST_TOUCH"
	AttributionLinear     AttributionModel = "LINEAR"
	AttributionTimeDecay  AttributionModel = "TIME_DECAY"
)

func (a AttributionModel) String() string { return string(a) }

func (a AttributionModel) IsValid() bool {
	switch a {
	case AttributionFirstTouch, AttributionLastTouch, AttributionLinear, AttributionTimeDecay:
		return true
	}
	return false
}

func ParseAttributionModel(s string) (AttributionModel, error) {
	am := AttributionModel(strings.ToUpper(strings.TrimSpace(s)))
	if !am.IsValid() {
		return "", fmt.Errorf("%w: invalid attribution model %q", ErrValidation, s)
	}
	return am, nil
}

// ConversionEvent records a single conversion credited to a campaign contact.
type ConversionEvent struct {
	ID               string `gorm:"type:uuid;primaryKey"`
	CampaignID       string `gorm:"type:uuid;not null"`
	ContactID        string `gorm:"type:uuid;not null"`
	Type             ConversionType
	Value            float64
	AttributionModel AttributionModel
	OccurredAt       time.Time
	CreatedAt        time.Time
}

func (e *ConversionEvent) Validate() error {
	if strings.TrimSpace(e.ContactID) == "" {
		return fmt.Errorf("%w: contact id is required", ErrValidation)
	}
	if strings.TrimSpace(e.CampaignID) == "" {
		return fmt.Errorf("%w: campaign id is required", ErrValidation)
	}
	if !e.Type.IsValid() {
		return fmt.Errorf("%w: invalid conversion type %q", ErrValidation, e.Type)
	}
	if e.Value < 0 {
		return fmt.Errorf("%w: conversion value must not be negative", ErrValidation)
	}
	if !e.AttributionModel.IsValid() {
		return fmt.Errorf("%w: invalid attribution model %q", ErrValidation, e.AttributionModel)
	}
	return nil
}
