package models

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for models keyed by UUID.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// NamedModel provides common persistence fields for models keyed by record name.
type NamedModel struct {
	Name      string    `gorm:"type:varchar(140);primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
