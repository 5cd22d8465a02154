package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_CanAssign(t *testing.T) {
	tests := []struct {
		caller Role
		grant  Role
		want   bool
	}{
		{RoleSuperAdmin, RoleSuperAdmin, true},
		{RoleSuperAdmin, RoleUser, true},
		{RoleAdmin, RoleSuperAdmin, false},
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleUser, true},
		{RoleUser, RoleAdmin, false},
		{RoleUser, RoleUser, true},
		{"", RoleUser, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.caller)+"->"+string(tt.grant), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.caller.CanAssign(tt.grant))
		})
	}
}
