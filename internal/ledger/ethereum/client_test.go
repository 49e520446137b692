package ethereum

import (
	"context"
	"errors"
	"math/big"
	"net"
	"strings"
	"sync"
	"syscall"
	"testing"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votegate/contracts/election"
	dErrors "votegate/pkg/domain-errors"
)

var contractAddr = common.HexToAddress("0x00000000000000000000000000000000000e1ec7")

// fakeBackend answers view calls from canned values and records sent
// transactions.
type fakeBackend struct {
	t           *testing.T
	abi         abi.ABI
	views       map[string][]any
	callErr     error
	estimateErr error

	mu   sync.Mutex
	sent []*types.Transaction
}

func newFakeBackend(t *testing.T) *fakeBackend {
	parsed, err := abi.JSON(strings.NewReader(contractABI))
	require.NoError(t, err)
	return &fakeBackend{t: t, abi: parsed, views: map[string][]any{}}
}

func (b *fakeBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (b *fakeBackend) CallContract(_ context.Context, call geth.CallMsg, _ *big.Int) ([]byte, error) {
	if b.callErr != nil {
		return nil, b.callErr
	}
	method, err := b.abi.MethodById(call.Data[:4])
	require.NoError(b.t, err)
	values, ok := b.views[method.Name]
	require.True(b.t, ok, "unexpected call to %s", method.Name)
	return method.Outputs.Pack(values...)
}

func (b *fakeBackend) EstimateGas(context.Context, geth.CallMsg) (uint64, error) {
	if b.estimateErr != nil {
		return 0, b.estimateErr
	}
	return 100_000, nil
}

func (b *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error)  { return big.NewInt(1), nil }
func (b *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) { return big.NewInt(1), nil }

func (b *fakeBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(1), BaseFee: big.NewInt(1)}, nil
}

func (b *fakeBackend) PendingCodeAt(context.Context, common.Address) ([]byte, error) {
	return []byte{0x60}, nil
}

func (b *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return uint64(len(b.sent)), nil
}

func (b *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, tx)
	return nil
}

func (b *fakeBackend) FilterLogs(context.Context, geth.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (b *fakeBackend) SubscribeFilterLogs(context.Context, geth.FilterQuery, chan<- types.Log) (geth.Subscription, error) {
	return nil, errors.New("not supported")
}

// decodeSent returns the method name and arguments of the i-th transaction.
func (b *fakeBackend) decodeSent(i int) (string, []any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data := b.sent[i].Data()
	method, err := b.abi.MethodById(data[:4])
	require.NoError(b.t, err)
	args, err := method.Inputs.Unpack(data[4:])
	require.NoError(b.t, err)
	return method.Name, args
}

func newTestClient(t *testing.T, backend *fakeBackend, withSigner bool) *Client {
	t.Helper()
	var signer *bind.TransactOpts
	if withSigner {
		key, err := crypto.GenerateKey()
		require.NoError(t, err)
		signer, err = NewSigner(key, 0)
		require.NoError(t, err)
	}
	c, err := New(contractAddr, backend, signer)
	require.NoError(t, err)
	return c
}

func TestReads(t *testing.T) {
	backend := newFakeBackend(t)
	backend.views["getAllVoters"] = []any{[]voterTuple{
		{Id: big.NewInt(7), Name: "Alice", FaceEncoding: "[0.1]", FingerDisabled: true},
		{Id: big.NewInt(8), Name: "Bob", HasVoted: true},
	}}
	backend.views["getAllCandidates"] = []any{[]candidateTuple{{Id: big.NewInt(1), Name: "Carol", VoteCount: big.NewInt(3)}}}
	backend.views["getVoterVotingStatus"] = []any{[]voterStatusTuple{{VoterID: big.NewInt(8), Name: "Bob", HasVoted: true}}}
	backend.views["getWinner"] = []any{[]winnerTuple{{Id: big.NewInt(1), Name: "Carol", PartyName: "Green"}}}
	backend.views["electionState"] = []any{uint8(1)}
	backend.views["getElectionStatus"] = []any{"Election is ongoing"}
	backend.views["getTotalVoterCount"] = []any{big.NewInt(2)}
	client := newTestClient(t, backend, false)
	ctx := context.Background()

	voters, err := client.GetAllVoters(ctx)
	require.NoError(t, err)
	assert.Equal(t, []election.Voter{
		{ID: 7, Name: "Alice", FaceEncoding: "[0.1]", FingerDisabled: true},
		{ID: 8, Name: "Bob", HasVoted: true},
	}, voters)

	candidates, err := client.GetAllCandidates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []election.Candidate{{ID: 1, Name: "Carol", VoteCount: 3}}, candidates)

	status, err := client.VoterVotingStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, []election.VoterStatus{{VoterID: 8, Name: "Bob", HasVoted: true}}, status)

	winners, err := client.Winners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []election.Winner{{ID: 1, Name: "Carol", PartyName: "Green"}}, winners)

	state, err := client.ElectionState(ctx)
	require.NoError(t, err)
	assert.Equal(t, election.StateOngoing, state)

	text, err := client.ElectionStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Election is ongoing", text)

	n, err := client.TotalVoterCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
}

func TestReadTransportFailureIsUnreachable(t *testing.T) {
	backend := newFakeBackend(t)
	backend.callErr = &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	client := newTestClient(t, backend, false)

	_, err := client.GetAllVoters(context.Background())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeCollaboratorUnreachable))
}

func TestCastVoteSubmitsWithoutWaiting(t *testing.T) {
	backend := newFakeBackend(t)
	client := newTestClient(t, backend, true)

	hash, err := client.CastVote(context.Background(), 7, 2)
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)
	assert.Equal(t, election.TxHash(backend.sent[0].Hash().Hex()), hash)

	name, args := backend.decodeSent(0)
	assert.Equal(t, "castVote", name)
	assert.Equal(t, []any{big.NewInt(7), big.NewInt(2)}, args)
}

func TestRegisterVoterArguments(t *testing.T) {
	backend := newFakeBackend(t)
	client := newTestClient(t, backend, true)

	_, err := client.RegisterVoter(context.Background(), election.VoterRegistration{
		Name: "Erin", VoterID: 12, FaceEncoding: "[1]", FingerEncoding: "tmpl", FingerDisabled: true,
	})
	require.NoError(t, err)
	name, args := backend.decodeSent(0)
	assert.Equal(t, "registerVoter", name)
	assert.Equal(t, []any{"Erin", big.NewInt(12), "[1]", "tmpl", false, true}, args)
}

func TestWriteFailures(t *testing.T) {
	t.Run("revert is a submission failure", func(t *testing.T) {
		backend := newFakeBackend(t)
		backend.estimateErr = errors.New("execution reverted: Voter has already voted")
		client := newTestClient(t, backend, true)

		_, err := client.CastVote(context.Background(), 7, 2)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeSubmissionFailed))
		assert.Contains(t, err.Error(), "already voted")
		assert.Empty(t, backend.sent)
	})

	t.Run("no signer", func(t *testing.T) {
		client := newTestClient(t, newFakeBackend(t), false)
		_, err := client.StartElection(context.Background())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeSubmissionFailed))
	})
}

func TestDialValidatesConfig(t *testing.T) {
	_, err := Dial(context.Background(), Config{ContractAddress: contractAddr.Hex()})
	assert.Error(t, err)
	_, err = Dial(context.Background(), Config{RPCURL: "http://localhost:8545", ContractAddress: "nope"})
	assert.Error(t, err)
}
