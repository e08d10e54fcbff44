package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEntityID(t *testing.T) {
	id, ok := ParseEntityID("42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	id, ok = ParseEntityID(" 7 ")
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	for _, bad := range []string{"", "0", "-3", "abc", "4.5"} {
		_, ok := ParseEntityID(bad)
		assert.False(t, ok, "input %q", bad)
	}
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole(RoleCustomer))
	assert.True(t, IsValidRole(RoleAgency))
	assert.True(t, IsValidRole(RoleAdmin))
	assert.False(t, IsValidRole(Role("superuser")))
}

func TestCanonicalAgencyStatus(t *testing.T) {
	got, ok := CanonicalAgencyStatus("approved")
	assert.True(t, ok)
	assert.Equal(t, AgencyApproved, got)

	_, ok = CanonicalAgencyStatus("active")
	assert.False(t, ok)
}
