package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RolAdministrador = "administrador"
	RolCajero        = "cajero"
	RolMesero        = "mesero"
	RolBartender     = "bartender"
)

// Usuario stores system users with role-based access.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null"`
	// CajaAsignada restricts a cashier to one register number; nil for other roles
	CajaAsignada *int
	Activo       bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
