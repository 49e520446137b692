package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "votegate/pkg/domain-errors"
)

func TestRunConcurrentBucketsByCode(t *testing.T) {
	res := RunConcurrent(6, func(idx int) error {
		switch idx % 3 {
		case 0:
			return nil
		case 1:
			return dErrors.New(dErrors.CodeBusy, "session is busy")
		default:
			return errors.New("boom")
		}
	})

	assert.Equal(t, 6, res.Total())
	assert.Equal(t, 2, res.Successes)
	assert.Equal(t, 2, res.Failed(dErrors.CodeBusy))
	assert.Equal(t, 2, res.Failed(dErrors.CodeInternal))
}
