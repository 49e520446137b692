// Package election holds the records exchanged with the election contract.
// They mirror the contract's tuple layouts so every ledger implementation and
// every consumer shares one shape.
package election

import "strconv"

// Voter mirrors the contract's voter tuple
// (id, name, faceEncoding, fingerEncoding, faceDisabled, fingerDisabled, hasVoted).
// FaceEncoding is the JSON array string produced at registration.
type Voter struct {
	ID             uint64 `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	FaceEncoding   string `json:"face_encoding" yaml:"face_encoding"`
	FingerEncoding string `json:"finger_encoding" yaml:"finger_encoding"`
	FaceDisabled   bool   `json:"face_disabled" yaml:"face_disabled"`
	FingerDisabled bool   `json:"finger_disabled" yaml:"finger_disabled"`
	HasVoted       bool   `json:"has_voted" yaml:"has_voted"`
}

// IDString renders the id the way a voter types it at the kiosk.
func (v Voter) IDString() string {
	return strconv.FormatUint(v.ID, 10)
}

// Candidate mirrors the contract's candidate tuple (id, name, voteCount).
type Candidate struct {
	ID        uint64 `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	VoteCount uint64 `json:"vote_count" yaml:"vote_count"`
}

// State is the contract's electionState enum.
type State uint8

const (
	StateNotStarted State = iota
	StateOngoing
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "Not Started"
	case StateOngoing:
		return "Ongoing"
	case StateEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// VoterStatus is one row of getVoterVotingStatus.
type VoterStatus struct {
	VoterID  uint64 `json:"voter_id"`
	Name     string `json:"name"`
	HasVoted bool   `json:"has_voted"`
}

// Winner is one row of getWinner; ties produce several rows.
type Winner struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	PartyName string `json:"party_name"`
}

// VoterRegistration carries the registerVoter arguments.
type VoterRegistration struct {
	Name           string `json:"name"`
	VoterID        uint64 `json:"voter_id"`
	FaceEncoding   string `json:"face_encoding"`
	FingerEncoding string `json:"finger_encoding"`
	FaceDisabled   bool   `json:"face_disabled"`
	FingerDisabled bool   `json:"finger_disabled"`
}

// TxHash identifies a submitted transaction. Submission is not confirmation:
// a hash only means the transport accepted the transaction.
type TxHash string
