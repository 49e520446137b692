package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategory(t *testing.T) {
	tests := []struct {
		event AuditEvent
		want  EventCategory
	}{
		{EventSessionStarted, CategoryVoting},
		{EventPhaseChanged, CategoryVoting},
		{EventVoteSubmitted, CategoryVoting},
		{EventVoterRegistered, CategoryRegistration},
		{EventAdminLogin, CategoryAdmin},
		{EventVoterRemoved, CategoryAdmin},
		{AuditEvent("something_new"), CategoryAdmin},
	}
	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.Category())
			assert.Equal(t, tt.want, Event{Action: string(tt.event)}.Category())
		})
	}
}
