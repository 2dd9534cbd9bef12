package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Image     string     `json:"image"`
	Price     int64      `json:"price"`
	Stock     int        `json:"stock"`
	Available bool       `json:"available"`
	SalonID   *uuid.UUID `json:"salonId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
