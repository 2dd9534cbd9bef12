package models

import (
	"time"

	"github.com/google/uuid"
)

type Coupon struct {
	ID         uuid.UUID `json:"id"`
	Code       string    `json:"code"`
	PercentOff int       `json:"percentOff"`
	Active     bool      `json:"active"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

func (c *Coupon) Usable(now time.Time) bool {
	return c.Active && now.Before(c.ExpiresAt)
}
