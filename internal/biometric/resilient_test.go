package biometric

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "votegate/contracts/biometric"
	"votegate/pkg/platform/circuit"
)

// scriptedClient returns err from every fingerprint init and counts calls.
type scriptedClient struct {
	Client
	err   error
	calls int
}

func (c *scriptedClient) InitFingerprintScanner(context.Context, string) error {
	c.calls++
	return c.err
}

func (c *scriptedClient) CompareFaces(context.Context, models.Descriptor, models.Descriptor, float64) (bool, error) {
	c.calls++
	return true, c.err
}

func TestResilientOpensOnTransportFailures(t *testing.T) {
	now := time.Unix(0, 0)
	next := &scriptedClient{err: newError(CategoryOutage, endpointFingerprintInit, "refused", nil)}
	r := NewResilient(next, WithBreaker(2, time.Minute, circuit.WithClock(func() time.Time { return now })))

	for i := 0; i < 2; i++ {
		err := r.InitFingerprintScanner(context.Background(), "COM11")
		assert.True(t, IsUnreachable(err))
	}
	assert.Equal(t, circuit.StateOpen, r.Breaker().State())

	err := r.InitFingerprintScanner(context.Background(), "COM11")
	require.Error(t, err)
	assert.Equal(t, CategoryOutage, CategoryOf(err))
	assert.Contains(t, err.Error(), "circuit open")
	assert.Equal(t, 2, next.calls, "open circuit must not reach the service")

	now = now.Add(time.Minute)
	next.err = nil
	require.NoError(t, r.InitFingerprintScanner(context.Background(), "COM11"))
	assert.Equal(t, circuit.StateClosed, r.Breaker().State())
}

func TestResilientRejectionsKeepCircuitClosed(t *testing.T) {
	next := &scriptedClient{err: newError(CategoryRejected, endpointFingerprintInit, "port busy", nil)}
	r := NewResilient(next, WithBreaker(1, time.Minute))

	for i := 0; i < 3; i++ {
		err := r.InitFingerprintScanner(context.Background(), "COM11")
		assert.Equal(t, CategoryRejected, CategoryOf(err))
	}
	assert.Equal(t, circuit.StateClosed, r.Breaker().State())
	assert.Equal(t, 3, next.calls)
}

func TestResilientPassesResultsThrough(t *testing.T) {
	next := &scriptedClient{}
	r := NewResilient(next)
	ok, err := r.CompareFaces(context.Background(), models.Descriptor{1}, models.Descriptor{1}, 0.6)
	require.NoError(t, err)
	assert.True(t, ok)
}
