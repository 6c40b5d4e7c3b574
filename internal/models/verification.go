package models

import "time"

// PhoneVerification keeps track of OTP codes sent to customers.
// At most one unverified record should be live per phone number; issuing a
// new code removes prior unverified rows for that phone.
type PhoneVerification struct {
	BaseModel
	Phone     string    `gorm:"index" json:"phone"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Verified  bool      `json:"verified"`
	Attempts  int       `json:"attempts"`
}
