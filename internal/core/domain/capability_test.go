package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleCan(t *testing.T) {
	tests := []struct {
		role Role
		cap  Capability
		want bool
	}{
		{RoleAdmin, CapMutateStateDoc, true},
		{RoleAdmin, CapEditTokens, true},
		{RoleAdmin, CapDevTools, true},

		{RoleOperator, CapMutateStateDoc, true},
		{RoleOperator, CapRotateStream, true},
		{RoleOperator, CapCreateInvite, true},
		{RoleOperator, CapDevTools, false},
		{RoleOperator, CapDeleteToken, false},
		{RoleOperator, CapEditTokens, false},

		{RoleMonitor, CapSetListeningView, true},
		{RoleMonitor, CapSetViewBlurred, true},
		{RoleMonitor, CapSetStreamCensored, true},
		{RoleMonitor, CapMutateStateDoc, false},
		{RoleMonitor, CapRotateStream, false},
		{RoleMonitor, CapBrowse, false},
		{RoleMonitor, CapCreateInvite, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.cap), func(t *testing.T) {
			assert.Equal(t, tt.want, RoleCan(tt.role, tt.cap))
		})
	}
}

// Unknown roles and capabilities are denied rather than defaulting open.
func TestRoleCanDeniesByDefault(t *testing.T) {
	assert.False(t, RoleCan(Role("superuser"), CapMutateStateDoc))
	assert.False(t, RoleCan(RoleAdmin, Capability("made-up")))
	assert.False(t, RoleCan(Role(""), Capability("")))
}

func TestEveryActionCapabilityIsKnown(t *testing.T) {
	actions := []Action{
		SetListeningView{},
		SetViewBackgroundListening{},
		SetViewBlurred{},
		ReloadView{},
		RotateStream{},
		Browse{},
		DevTools{},
		UpdateCustomStream{},
		DeleteCustomStream{},
		SetStreamCensored{},
		SetStreamRunning{},
		CreateInvite{},
		DeleteToken{},
	}
	for _, act := range actions {
		assert.True(t, RoleCan(RoleAdmin, act.Capability()),
			"admin should hold %q", act.Capability())
	}
}
