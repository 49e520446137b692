package models

import (
	"strings"
	"time"

	"votegate/contracts/election"
)

type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// TokenResponse follows the OAuth token response shape.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type AddCandidateRequest struct {
	Name string `json:"name" validate:"required,max=128"`
}

func (r *AddCandidateRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

// Dashboard is the admin overview. Winners is only populated once the
// election has ended.
type Dashboard struct {
	State           election.State         `json:"state"`
	StateName       string                 `json:"state_name"`
	Status          string                 `json:"status"`
	TotalVoters     uint64                 `json:"total_voters"`
	TotalCandidates uint64                 `json:"total_candidates"`
	TotalVotesCast  uint64                 `json:"total_votes_cast"`
	VoteCounts      []election.Candidate   `json:"vote_counts"`
	Voters          []election.VoterStatus `json:"voters"`
	Winners         []election.Winner      `json:"winners,omitempty"`
	Timestamp       time.Time              `json:"timestamp"`
}

// ActionResult is returned once an admin transaction has been submitted.
type ActionResult struct {
	TxHash    string `json:"tx_hash"`
	Confirmed bool   `json:"confirmed"`
}

// RemoveVoterResult reports the ledger submission and whether the biometric
// service dropped the fingerprint template.
type RemoveVoterResult struct {
	ActionResult
	FingerprintDeleted bool `json:"fingerprint_deleted"`
}

// ElectionAction names the election state transitions.
type ElectionAction string

const (
	ActionStart ElectionAction = "start"
	ActionEnd   ElectionAction = "end"
	ActionNew   ElectionAction = "new"
)

// ParseElectionAction returns false for unknown actions.
func ParseElectionAction(s string) (ElectionAction, bool) {
	switch a := ElectionAction(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionStart, ActionEnd, ActionNew:
		return a, true
	default:
		return "", false
	}
}
