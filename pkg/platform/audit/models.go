package audit

import (
	"context"
	"time"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	// Subject is the hashed voter id for voting events, "admin" for admin actions.
	Subject   string `json:"subject,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	FromPhase string `json:"from_phase,omitempty"`
	ToPhase   string `json:"to_phase,omitempty"`
	Outcome   string `json:"outcome,omitempty"`
	Reason    string `json:"reason,omitempty"`
	TxHash    string `json:"tx_hash,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	// ClientIP is the anonymized caller network, never the full address.
	ClientIP string `json:"client_ip,omitempty"`
}

// Store persists or forwards audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

type AuditEvent string

const (
	EventSessionStarted        AuditEvent = "session_started"
	EventSessionEnded          AuditEvent = "session_ended"
	EventPhaseChanged          AuditEvent = "phase_changed"
	EventVerificationAttempted AuditEvent = "verification_attempted"
	EventVoteSubmitted         AuditEvent = "vote_submitted"
	EventVoterRegistered       AuditEvent = "voter_registered"
	EventAdminLogin            AuditEvent = "admin_login"
	EventAdminLoginLocked      AuditEvent = "admin_login_locked"
	EventElectionStarted       AuditEvent = "election_started"
	EventElectionEnded         AuditEvent = "election_ended"
	EventElectionNew           AuditEvent = "election_new"
	EventCandidateAdded        AuditEvent = "candidate_added"
	EventCandidateRemoved      AuditEvent = "candidate_removed"
	EventVoterRemoved          AuditEvent = "voter_removed"
)

// EventCategory groups events for routing to sinks.
type EventCategory string

const (
	CategoryVoting       EventCategory = "voting"
	CategoryRegistration EventCategory = "registration"
	CategoryAdmin        EventCategory = "admin"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventSessionStarted:        CategoryVoting,
	EventSessionEnded:          CategoryVoting,
	EventPhaseChanged:          CategoryVoting,
	EventVerificationAttempted: CategoryVoting,
	EventVoteSubmitted:         CategoryVoting,
	EventVoterRegistered:       CategoryRegistration,
	EventAdminLogin:            CategoryAdmin,
	EventAdminLoginLocked:      CategoryAdmin,
	EventElectionStarted:       CategoryAdmin,
	EventElectionEnded:         CategoryAdmin,
	EventElectionNew:           CategoryAdmin,
	EventCandidateAdded:        CategoryAdmin,
	EventCandidateRemoved:      CategoryAdmin,
	EventVoterRemoved:          CategoryAdmin,
}

// Category returns the event's category. Unknown events fall back to admin,
// the category with the strictest retention.
func (e AuditEvent) Category() EventCategory {
	if c, ok := eventCategories[e]; ok {
		return c
	}
	return CategoryAdmin
}

// Category of the event's action.
func (e Event) Category() EventCategory {
	return AuditEvent(e.Action).Category()
}
