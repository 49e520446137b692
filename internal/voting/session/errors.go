package session

import (
	"errors"
	"strings"

	dErrors "votegate/pkg/domain-errors"
)

func isUnreachable(err error) bool {
	if dErrors.HasCode(err, dErrors.CodeCollaboratorUnreachable) {
		return true
	}
	var u unreachable
	return errors.As(err, &u) && u.Unreachable()
}

func collaboratorReason(err error) string {
	var r reasoned
	if errors.As(err, &r) {
		return strings.TrimSpace(r.Reason())
	}
	return ""
}

// classify turns a collaborator failure into the session's error kind. A
// transport failure is always CollaboratorUnreachable, whatever the operation.
func classify(err error, code dErrors.Code, msg string) error {
	if isUnreachable(err) {
		return dErrors.Classify(err, dErrors.CodeCollaboratorUnreachable, "Service unreachable, please try again")
	}
	if reason := collaboratorReason(err); reason != "" {
		msg = msg + ": " + reason
	}
	return dErrors.Classify(err, code, msg)
}

func phaseError(want, got Phase) error {
	return dErrors.New(dErrors.CodeInvalidPhase, "operation requires "+string(want)+" phase, session is in "+string(got))
}
