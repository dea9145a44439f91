package domain

import "strings"

// UserRole is the role vocabulary used on the wire and inside tokens.
type UserRole string

const (
	Customer UserRole = "customer"
	Owner    UserRole = "owner"
)

// Storage vocabulary. "user" predates the customer role name and is still what the users table holds.
var roleToStorage = map[UserRole]string{
	Customer: "user",
	Owner:    "owner",
}

var roleFromStorage = map[string]UserRole{
	"user":  Customer,
	"owner": Owner,
}

// ParseRole reads a role sent by a client. Empty input means Customer and "user" is accepted as an alias.
func ParseRole(s string) (UserRole, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "customer", "user":
		return Customer, nil
	case "owner":
		return Owner, nil
	}
	return "", NewError(ErrValidation, "Role must be one of: customer, owner")
}

// StorageValue returns the value persisted for r.
func (r UserRole) StorageValue() string {
	return roleToStorage[r]
}

// RoleFromStorage maps a persisted role back to the wire vocabulary.
func RoleFromStorage(s string) (UserRole, bool) {
	r, ok := roleFromStorage[s]
	return r, ok
}
