package models

import (
	"strconv"
	"strings"

	"votegate/contracts/election"
	dErrors "votegate/pkg/domain-errors"
)

// Request is a completed enrollment form.
type Request struct {
	Name           string `json:"name" validate:"required,max=128"`
	VoterID        string `json:"voter_id" validate:"required,numeric"`
	FaceEncoding   string `json:"face_encoding"`
	FingerEncoding string `json:"finger_encoding"`
	FaceDisabled   bool   `json:"face_disabled"`
	FingerDisabled bool   `json:"finger_disabled"`
}

func (r *Request) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.VoterID = strings.TrimSpace(r.VoterID)
	r.FaceEncoding = strings.TrimSpace(r.FaceEncoding)
	r.FingerEncoding = strings.TrimSpace(r.FingerEncoding)
}

// CanRegister reports whether the form is complete: name and voter id are
// set, and each biometric is either captured or marked exempt.
func (r *Request) CanRegister() bool {
	return r.Name != "" &&
		r.VoterID != "" &&
		(r.FaceEncoding != "" || r.FaceDisabled) &&
		(r.FingerEncoding != "" || r.FingerDisabled)
}

// Validate enforces CanRegister and that the voter id fits the contract's uint.
func (r *Request) Validate() error {
	if !r.CanRegister() {
		return dErrors.New(dErrors.CodeInvalidInput, "Please complete all required fields and biometric captures")
	}
	if _, err := strconv.ParseUint(r.VoterID, 10, 64); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "voter_id must be a positive integer")
	}
	return nil
}

// ToRegistration converts a validated request to ledger arguments. Exempt
// biometrics are submitted with an empty encoding.
func (r *Request) ToRegistration() (election.VoterRegistration, error) {
	id, err := strconv.ParseUint(r.VoterID, 10, 64)
	if err != nil {
		return election.VoterRegistration{}, dErrors.New(dErrors.CodeInvalidInput, "voter_id must be a positive integer")
	}
	reg := election.VoterRegistration{
		Name:           r.Name,
		VoterID:        id,
		FaceEncoding:   r.FaceEncoding,
		FingerEncoding: r.FingerEncoding,
		FaceDisabled:   r.FaceDisabled,
		FingerDisabled: r.FingerDisabled,
	}
	if reg.FaceDisabled {
		reg.FaceEncoding = ""
	}
	if reg.FingerDisabled {
		reg.FingerEncoding = ""
	}
	return reg, nil
}

type EnrollFingerprintRequest struct {
	VoterID uint64 `json:"voter_id" validate:"required"`
	Name    string `json:"name" validate:"required"`
}

func (r *EnrollFingerprintRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

type FaceCaptureResult struct {
	Encoding string `json:"encoding"`
}

type FingerprintResult struct {
	FingerprintEncoding string `json:"fingerprint_encoding"`
}

// Result is returned once the registerVoter transaction has been submitted.
type Result struct {
	TxHash    string `json:"tx_hash"`
	Confirmed bool   `json:"confirmed"`
}
