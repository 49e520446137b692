package models

import (
	"strings"
	"time"

	"votegate/contracts/election"
	"votegate/internal/voting/device"
	"votegate/internal/voting/session"
)

// Entry is a live voting session as held by the session store.
type Entry struct {
	ID        string
	Session   *session.Session
	Kiosk     device.Kiosk
	CreatedAt time.Time
	// LastSeenAt is owned by the store; read it through the store only.
	LastSeenAt time.Time
}

// VoterView is the voter as shown to the kiosk. Biometric encodings never leave the server.
type VoterView struct {
	ID             uint64 `json:"id"`
	Name           string `json:"name"`
	FaceDisabled   bool   `json:"face_disabled"`
	FingerDisabled bool   `json:"finger_disabled"`
}

type CandidateView struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// SessionView is the JSON projection of a voting session.
type SessionView struct {
	ID                  string          `json:"id"`
	Phase               session.Phase   `json:"phase"`
	VoterIDInput        string          `json:"voter_id_input,omitempty"`
	Voter               *VoterView      `json:"voter,omitempty"`
	FaceVerified        bool            `json:"face_verified"`
	FingerprintVerified bool            `json:"fingerprint_verified"`
	SelectedCandidate   *CandidateView  `json:"selected_candidate,omitempty"`
	StatusMessage       string          `json:"status_message,omitempty"`
	Busy                session.Busy    `json:"busy"`
	Candidates          []CandidateView `json:"candidates"`
	Kiosk               device.Kiosk    `json:"kiosk"`
	TxHash              string          `json:"tx_hash,omitempty"`
	// Confirmed is always false: success is declared when the vote
	// transaction is submitted, not when it is mined.
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSessionView projects an entry's current state.
func NewSessionView(e *Entry) *SessionView {
	st := e.Session.Snapshot()
	view := &SessionView{
		ID:                  e.ID,
		Phase:               st.Phase,
		VoterIDInput:        st.VoterIDInput,
		FaceVerified:        st.FaceVerified,
		FingerprintVerified: st.FingerprintVerified,
		StatusMessage:       st.StatusMessage,
		Busy:                st.Busy,
		Kiosk:               e.Kiosk,
		TxHash:              string(st.TxHash),
		CreatedAt:           e.CreatedAt,
	}
	if st.Voter != nil {
		view.Voter = &VoterView{
			ID:             st.Voter.ID,
			Name:           st.Voter.Name,
			FaceDisabled:   st.Voter.FaceDisabled,
			FingerDisabled: st.Voter.FingerDisabled,
		}
	}
	if st.Selected != nil {
		view.SelectedCandidate = &CandidateView{ID: st.Selected.ID, Name: st.Selected.Name}
	}
	view.Candidates = candidateViews(e.Session.Candidates())
	return view
}

func candidateViews(cs []election.Candidate) []CandidateView {
	out := make([]CandidateView, 0, len(cs))
	for _, c := range cs {
		out = append(out, CandidateView{ID: c.ID, Name: c.Name})
	}
	return out
}

type AuthenticateRequest struct {
	VoterID string `json:"voter_id"`
}

// Normalize trims the typed id. Emptiness is reported by the session itself.
func (r *AuthenticateRequest) Normalize() {
	r.VoterID = strings.TrimSpace(r.VoterID)
}

type SelectCandidateRequest struct {
	CandidateID *uint64 `json:"candidate_id" validate:"required"`
}
