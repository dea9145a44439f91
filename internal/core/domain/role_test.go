package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for in, want := range map[string]UserRole{
		"":         Customer,
		"customer": Customer,
		"user":     Customer,
		" Owner ":  Owner,
	} {
		got, err := ParseRole(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseRole("admin")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRoleStorageRoundTrip(t *testing.T) {
	assert.Equal(t, "user", Customer.StorageValue())
	assert.Equal(t, "owner", Owner.StorageValue())

	for _, role := range []UserRole{Customer, Owner} {
		back, ok := RoleFromStorage(role.StorageValue())
		require.True(t, ok)
		assert.Equal(t, role, back)
	}

	_, ok := RoleFromStorage("customer")
	assert.False(t, ok)
}
