// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values let handlers distinguish failure
// scenarios without inspecting driver errors: a not-found lookup becomes an
// HTTP 404, a duplicate unique key becomes a 409, and anything else is a
// storage failure reported as 500.
package repository

import "errors"

// ErrEmailExists is returned by UserRepo.Create when the email column's
// unique constraint is violated.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when a user lookup matches no row.
var ErrUserNotFound = errors.New("user not found")

// ErrProjectNotFound is returned when a project lookup or update matches no
// row.  Checkout treats it as a per-item skip; every other caller maps it to
// an HTTP 404.
var ErrProjectNotFound = errors.New("project not found")
