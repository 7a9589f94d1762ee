package domain

import (
	"errors"
	"time"
)

// PaymentType classifies what a payment request is collected for.
type PaymentType string

const (
	PaymentTypeYearly    PaymentType = "yearly"
	PaymentTypeEmergency PaymentType = "emergency"
)

// PaymentMethod is how the money changes hands.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// PaymentStatus tracks a request through its approval lifecycle.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusRejected PaymentStatus = "rejected"
)

// Collector is a registered payment collector backing record. MemberNumber
// ties the collector to the membership record it was created for.
type Collector struct {
	ID           string
	Name         string
	MemberNumber string
	Active       bool
	CreatedAt    time.Time
}

// PaymentRequest is a collector-submitted request awaiting review.
type PaymentRequest struct {
	ID            string
	MemberID      string
	MemberNumber  string
	Amount        float64
	PaymentType   PaymentType
	PaymentMethod PaymentMethod
	CollectorID   string
	Status        PaymentStatus
	CreatedAt     time.Time
}

func (p *PaymentRequest) Validate() error {
	if p.MemberID == "" {
		return errors.New("member id is required")
	}
	if p.MemberNumber == "" {
		return errors.New("member number is required")
	}
	if p.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	switch p.PaymentType {
	case PaymentTypeYearly, PaymentTypeEmergency:
	default:
		return errors.New("invalid payment type")
	}
	switch p.PaymentMethod {
	case PaymentMethodCash, PaymentMethodBankTransfer:
	default:
		return errors.New("invalid payment method")
	}
	return nil
}
