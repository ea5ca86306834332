package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MesaDisponible = "disponible"
	MesaOcupada    = "ocupada"
	MesaReservada  = "reservada"
)

// Mesa represents a physical table in the venue. A table holds at most one
// active order at a time; the transition to "ocupada" only succeeds from
// "disponible".
type Mesa struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero    int       `gorm:"uniqueIndex;not null"`
	Capacidad int       `gorm:"not null;default:4"`
	Estado    string    `gorm:"type:varchar(20);not null;default:'disponible'"`
	Activo    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Mesa) TableName() string { return "mesas" }
