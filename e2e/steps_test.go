package e2e

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Kinds godog can convert a regexp capture into.
var capturable = map[reflect.Kind]bool{
	reflect.Int: true, reflect.Int8: true, reflect.Int16: true, reflect.Int32: true, reflect.Int64: true,
	reflect.Float32: true, reflect.Float64: true, reflect.String: true,
}

func TestNumericStepArgumentsAreCapturable(t *testing.T) {
	tc := &TestContext{}
	ctxType := reflect.TypeOf((*context.Context)(nil)).Elem()
	for name, step := range map[string]any{
		"scannerReads":    tc.scannerReads,
		"selectCandidate": tc.selectCandidate,
	} {
		fn := reflect.TypeOf(step)
		for i := 0; i < fn.NumIn(); i++ {
			in := fn.In(i)
			if in == ctxType {
				continue
			}
			assert.True(t, capturable[in.Kind()], "%s arg %d has kind %s", name, i, in.Kind())
		}
	}
}

func TestStepIDsRejectNegatives(t *testing.T) {
	scanner := &fakeScanner{}
	tc := &TestContext{Scanner: scanner}

	require.Error(t, tc.scannerReads(context.Background(), -1))
	_, matched := scanner.reading()
	assert.False(t, matched)

	require.NoError(t, tc.scannerReads(context.Background(), 9))
	id, matched := scanner.reading()
	assert.True(t, matched)
	assert.Equal(t, uint64(9), id)

	// Refused before any request is built.
	assert.Error(t, tc.selectCandidate(context.Background(), -2))
	assert.Nil(t, tc.LastResponse)
}
