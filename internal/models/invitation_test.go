package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvitationStatusTransitions(t *testing.T) {
	all := []InvitationStatus{InvitationStatusPending, InvitationStatusAccepted, InvitationStatusDeclined}
	allowed := map[[2]InvitationStatus]bool{
		{InvitationStatusPending, InvitationStatusAccepted}: true,
		{InvitationStatusPending, InvitationStatusDeclined}: true,
	}

	for _, from := range all {
		for _, to := range all {
			got := from.CanTransition(to)
			assert.Equal(t, allowed[[2]InvitationStatus{from, to}], got, "%s -> %s", from, to)
		}
	}
}

func TestInvitationStatusTerminal(t *testing.T) {
	assert.False(t, InvitationStatusPending.IsTerminal())
	assert.True(t, InvitationStatusAccepted.IsTerminal())
	assert.True(t, InvitationStatusDeclined.IsTerminal())
}
