package models

import (
	"time"

	"gorm.io/gorm"
)

// Lead represents a prospective-client record imported from an external CRM
// export. RecordID is the external identity key and the upsert conflict
// target; leads without one are plain inserts with no dedup guarantee.
type Lead struct {
	gorm.Model
	RecordID *string `gorm:"uniqueIndex" json:"record_id,omitempty"`

	FullName    string  `gorm:"not null;default:'Unknown'" json:"full_name"`
	Email       *string `gorm:"index" json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Instagram   *string `json:"instagram,omitempty"`
	CompanyName *string `json:"company_name,omitempty"`
	Priority    string  `gorm:"default:'COLD';index" json:"priority"` // HOT, WARM, COLD

	// Calendar days only, no time component
	DiscoveryCallDate *time.Time `gorm:"type:date" json:"discovery_call_date,omitempty"`
	StartDate         *time.Time `gorm:"type:date" json:"start_date,omitempty"`
	EndDate           *time.Time `gorm:"type:date" json:"end_date,omitempty"`
	DateOfPayment     *time.Time `gorm:"type:date" json:"date_of_payment,omitempty"`
	DateOfPayment2    *time.Time `gorm:"type:date;column:date_of_payment_2" json:"date_of_payment_2,omitempty"`
	DateOfPayment3    *time.Time `gorm:"type:date;column:date_of_payment_3" json:"date_of_payment_3,omitempty"`
	BalanceDOP        *time.Time `gorm:"type:date;column:balance_dop" json:"balance_dop,omitempty"`
	SupportDateBooked *time.Time `gorm:"type:date" json:"support_date_booked,omitempty"`

	// Currency amounts parsed from formatted text
	PaymentAmount *float64 `json:"payment_amount,omitempty"`
	Balance       *float64 `json:"balance,omitempty"`
	Balance2      *float64 `gorm:"column:balance_2" json:"balance_2,omitempty"`
	AmountPaid    *float64 `json:"amount_paid,omitempty"`
	AmountPaid2   *float64 `gorm:"column:amount_paid_2" json:"amount_paid_2,omitempty"`

	Seats         int `gorm:"default:1" json:"seats"`
	CouponPercent int `gorm:"default:0" json:"coupon_percent"`
	SessionsDone  int `gorm:"default:0" json:"sessions_done"`

	PaidDeposit bool `gorm:"default:false" json:"paid_deposit"`
	PaidFull    bool `gorm:"default:false" json:"paid_full"`

	CouponCode *string `json:"coupon_code,omitempty"`

	// Columns the mapper has no explicit rule for pass through here
	Extra map[string]string `gorm:"type:jsonb;serializer:json" json:"extra,omitempty"`
}
