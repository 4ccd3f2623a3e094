package user

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

// User is an employee account. Carnet is the external identity key used by
// access overrides and delegations; ID is the internal numeric key everything
// else references.
type User struct {
	ID         int64
	Carnet     string
	FullName   string
	Email      string
	GlobalRole string
	Active     bool
	CreatedAt  time.Time
}
