package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives.
//
// Every kiosk-facing failure passes through these types, so "errors.Is matches
// by code" and "Wrap keeps the inner code" must hold.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeNotFound, Message: "voter id not found"}
		s.Equal("voter id not found", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeAlreadyVoted}
		s.Equal("already_voted", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	s.Run("returns wrapped error", func() {
		inner := errors.New("dial tcp: connection refused")
		err := &Error{Code: CodeCollaboratorUnreachable, Message: "biometric service unreachable", Err: inner}
		s.Equal(inner, err.Unwrap())
		s.Equal(inner, errors.Unwrap(err))
	})

	s.Run("returns nil when no wrapped error", func() {
		err := &Error{Code: CodeNoMatch}
		s.Nil(err.Unwrap())
	})
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code only", func() {
		err1 := &Error{Code: CodeNoMatch, Message: "fingerprint did not match"}
		err2 := &Error{Code: CodeNoMatch, Message: "matched another voter"}
		s.True(err1.Is(err2))
	})

	s.Run("does not match different codes", func() {
		err1 := &Error{Code: CodeVerificationFailed}
		err2 := &Error{Code: CodeCollaboratorUnreachable}
		s.False(err1.Is(err2))
	})

	s.Run("does not match non-domain errors", func() {
		s.False((&Error{Code: CodeNotFound}).Is(errors.New("not found")))
	})

	s.Run("works with errors.Is through fmt wrapping", func() {
		wrapped := fmt.Errorf("cast vote: %w", New(CodeSubmissionFailed, "rejected"))
		s.True(errors.Is(wrapped, &Error{Code: CodeSubmissionFailed}))
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("preserves original domain code when wrapping domain error", func() {
		wrapped := Wrap(New(CodeAlreadyVoted, "voted"), CodeInternal, "authenticate")
		s.Equal(CodeAlreadyVoted, CodeOf(wrapped))
		s.Equal("authenticate", wrapped.Error())
	})

	s.Run("uses provided code when wrapping non-domain error", func() {
		original := errors.New("execution reverted")
		wrapped := Wrap(original, CodeSubmissionFailed, "vote rejected")
		s.Equal(CodeSubmissionFailed, CodeOf(wrapped))
		s.True(errors.Is(wrapped, original))
	})
}

func (s *DomainErrorsSuite) TestClassify() {
	s.Run("overrides inner code", func() {
		inner := New(CodeInternal, "bad payload")
		err := Classify(inner, CodeVerificationFailed, "face verification failed")
		s.Equal(CodeVerificationFailed, CodeOf(err))
		s.True(HasCode(err, CodeVerificationFailed))
	})
}

func (s *DomainErrorsSuite) TestHasCodeAndCodeOf() {
	s.Run("returns true for matching code", func() {
		s.True(HasCode(New(CodeBusy, "busy"), CodeBusy))
	})

	s.Run("returns false for non-domain error", func() {
		s.False(HasCode(errors.New("plain"), CodeNotFound))
	})

	s.Run("returns false for nil error", func() {
		s.False(HasCode(nil, CodeNotFound))
	})

	s.Run("CodeOf defaults to internal", func() {
		s.Equal(CodeInternal, CodeOf(errors.New("plain")))
	})
}
