package service

import "github.com/google/uuid"

// Actor is the authenticated identity performing an operation. Services never
// resolve the caller from ambient state: handlers extract the JWT claims and
// pass the actor into every state-changing call.
type Actor struct {
	ID     uuid.UUID
	Nombre string
	Rol    string
	// CajaAsignada is the register number a cashier is bound to; nil for
	// other roles.
	CajaAsignada *int
}
