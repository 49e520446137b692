package memory

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"votegate/contracts/election"
)

// Seed is the fixture file layout.
//
//	state: ongoing
//	candidates:
//	  - name: Bob
//	    party: Green
//	voters:
//	  - id: 7
//	    name: Alice
//	    face_encoding: "[0.1, 0.2]"
//	    finger_disabled: true
type Seed struct {
	State      string           `yaml:"state"`
	Candidates []SeedCandidate  `yaml:"candidates"`
	Voters     []election.Voter `yaml:"voters"`
}

// SeedCandidate is a candidate entry; ids are assigned in file order.
type SeedCandidate struct {
	Name      string `yaml:"name"`
	Party     string `yaml:"party"`
	VoteCount uint64 `yaml:"vote_count"`
}

func parseState(s string) (election.State, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "_")) {
	case "", "not_started":
		return election.StateNotStarted, nil
	case "ongoing":
		return election.StateOngoing, nil
	case "ended":
		return election.StateEnded, nil
	default:
		return 0, fmt.Errorf("unknown election state %q", s)
	}
}

// LoadFile builds a ledger from a YAML fixture.
func LoadFile(path string) (*Ledger, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Load(raw)
}

// Load builds a ledger from YAML fixture bytes.
func Load(raw []byte) (*Ledger, error) {
	var seed Seed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return FromSeed(seed)
}

// FromSeed builds a ledger from an in-memory fixture.
func FromSeed(seed Seed) (*Ledger, error) {
	state, err := parseState(seed.State)
	if err != nil {
		return nil, err
	}
	l := New()
	for _, c := range seed.Candidates {
		if c.Name == "" {
			return nil, fmt.Errorf("seed candidate without a name")
		}
		id := l.addCandidate(c.Name, c.Party)
		l.candidates[id].VoteCount = c.VoteCount
	}
	for _, v := range seed.Voters {
		if _, dup := l.voters[v.ID]; dup {
			return nil, fmt.Errorf("seed voter %d listed twice", v.ID)
		}
		voter := v
		l.voters[v.ID] = &voter
	}
	l.state = state
	return l, nil
}
