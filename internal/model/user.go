package model

import "time"

// Role names stored in users.role.  ADMIN is a universal override: any
// endpoint gated on NGO or COMPANY also accepts an ADMIN principal.
const (
	RoleAdmin   = "ADMIN"
	RoleNGO     = "NGO"
	RoleCompany = "COMPANY"
)

// ValidRole reports whether the given string is one of the known roles.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleNGO || r == RoleCompany
}

// User mirrors the `users` table.  Credits only ever move upward, via the
// atomic increment performed during checkout, and are meaningful only for
// COMPANY accounts.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email (unique, lowercased)
	PasswordHash string    // users.password_hash (bcrypt, or plaintext in local mock mode)
	Role         string    // users.role
	Credits      float64   // users.credits
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Principal is the authenticated actor attached to the request context by the
// JWT middleware.  Handlers read this instead of poking at raw claims.
type Principal struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
