// Package ethereum binds the election contract over JSON-RPC with go-ethereum.
package ethereum

import (
	"context"
	"crypto/ecdsa"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"votegate/contracts/election"
	"votegate/internal/ledger"
	"votegate/internal/platform/tracer"
	dErrors "votegate/pkg/domain-errors"
)

//go:embed election.abi.json
var contractABI string

// DefaultChainID is Sepolia, where the election contract is deployed.
const DefaultChainID = 11155111

// Config locates the contract and the key that signs transactions.
type Config struct {
	RPCURL          string
	ContractAddress string
	ChainID         int64
	// PrivateKey is hex without 0x. Empty means read-only.
	PrivateKey string
}

// Client implements ledger.Ledger against the deployed contract.
type Client struct {
	contract *bind.BoundContract
	signer   *bind.TransactOpts
	closer   func()
	logger   *slog.Logger
	tracer   tracer.Tracer
}

var _ ledger.Ledger = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// Dial connects to the RPC endpoint and binds the contract.
func Dial(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", cfg.ContractAddress)
	}
	rpc, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}

	var signer *bind.TransactOpts
	if cfg.PrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			rpc.Close()
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		signer, err = NewSigner(key, cfg.ChainID)
		if err != nil {
			rpc.Close()
			return nil, err
		}
	}

	c, err := New(common.HexToAddress(cfg.ContractAddress), rpc, signer, opts...)
	if err != nil {
		rpc.Close()
		return nil, err
	}
	c.closer = rpc.Close
	return c, nil
}

// NewSigner builds transact options for key on chainID (DefaultChainID if zero).
func NewSigner(key *ecdsa.PrivateKey, chainID int64) (*bind.TransactOpts, error) {
	if chainID == 0 {
		chainID = DefaultChainID
	}
	opts, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(chainID))
	if err != nil {
		return nil, fmt.Errorf("create transactor: %w", err)
	}
	return opts, nil
}

// New binds the contract at address over backend. A nil signer makes every
// write fail.
func New(address common.Address, backend bind.ContractBackend, signer *bind.TransactOpts, opts ...Option) (*Client, error) {
	if backend == nil {
		return nil, fmt.Errorf("contract backend is required")
	}
	parsed, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}
	c := &Client{
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
		signer:   signer,
		logger:   slog.Default(),
		tracer:   tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases the RPC connection.
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// Tuple layouts. Field names follow the ABI component names so the decoded
// values convert directly.
type voterTuple struct {
	Id             *big.Int
	Name           string
	FaceEncoding   string
	FingerEncoding string
	FaceDisabled   bool
	FingerDisabled bool
	HasVoted       bool
}

type candidateTuple struct {
	Id        *big.Int
	Name      string
	VoteCount *big.Int
}

type voterStatusTuple struct {
	VoterID  *big.Int
	Name     string
	HasVoted bool
}

type winnerTuple struct {
	Id        *big.Int
	Name      string
	PartyName string
}

func (c *Client) call(ctx context.Context, method string, params ...any) (out []any, err error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanLedgerCall, tracer.String(tracer.AttrMethod, method))
	defer func() { span.End(err) }()

	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, params...); err != nil {
		return nil, classify(method, err, dErrors.CodeInternal)
	}
	if len(out) == 0 {
		return nil, dErrors.New(dErrors.CodeInternal, method+": empty result")
	}
	return out, nil
}

func (c *Client) transact(ctx context.Context, method string, params ...any) (tx election.TxHash, err error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanLedgerCall, tracer.String(tracer.AttrMethod, method))
	defer func() { span.End(err) }()

	if c.signer == nil {
		return "", dErrors.New(dErrors.CodeSubmissionFailed, "no signing key configured")
	}
	opts := *c.signer
	opts.Context = ctx

	sent, err := c.contract.Transact(&opts, method, params...)
	if err != nil {
		return "", classify(method, err, dErrors.CodeSubmissionFailed)
	}
	hash := election.TxHash(sent.Hash().Hex())
	span.SetAttributes(tracer.String(tracer.AttrTxHash, string(hash)))
	c.logger.InfoContext(ctx, "transaction submitted", "method", method, "tx_hash", hash)
	return hash, nil
}

// classify separates a transport failure from a contract answer such as a
// revert or a failed gas estimate.
func classify(method string, err error, code dErrors.Code) error {
	if isTransportError(err) {
		return dErrors.Classify(err, dErrors.CodeCollaboratorUnreachable, "ledger unreachable")
	}
	return dErrors.Classify(err, code, method+": "+err.Error())
}

func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (c *Client) GetAllVoters(ctx context.Context) ([]election.Voter, error) {
	out, err := c.call(ctx, "getAllVoters")
	if err != nil {
		return nil, err
	}
	rows := *abi.ConvertType(out[0], new([]voterTuple)).(*[]voterTuple)
	voters := make([]election.Voter, 0, len(rows))
	for _, r := range rows {
		voters = append(voters, election.Voter{
			ID:             toUint64(r.Id),
			Name:           r.Name,
			FaceEncoding:   r.FaceEncoding,
			FingerEncoding: r.FingerEncoding,
			FaceDisabled:   r.FaceDisabled,
			FingerDisabled: r.FingerDisabled,
			HasVoted:       r.HasVoted,
		})
	}
	return voters, nil
}

func (c *Client) GetAllCandidates(ctx context.Context) ([]election.Candidate, error) {
	return c.candidates(ctx, "getAllCandidates")
}

func (c *Client) VoteCounts(ctx context.Context) ([]election.Candidate, error) {
	return c.candidates(ctx, "getVoteCounts")
}

func (c *Client) candidates(ctx context.Context, method string) ([]election.Candidate, error) {
	out, err := c.call(ctx, method)
	if err != nil {
		return nil, err
	}
	rows := *abi.ConvertType(out[0], new([]candidateTuple)).(*[]candidateTuple)
	candidates := make([]election.Candidate, 0, len(rows))
	for _, r := range rows {
		candidates = append(candidates, election.Candidate{
			ID:        toUint64(r.Id),
			Name:      r.Name,
			VoteCount: toUint64(r.VoteCount),
		})
	}
	return candidates, nil
}

func (c *Client) VoterVotingStatus(ctx context.Context) ([]election.VoterStatus, error) {
	out, err := c.call(ctx, "getVoterVotingStatus")
	if err != nil {
		return nil, err
	}
	rows := *abi.ConvertType(out[0], new([]voterStatusTuple)).(*[]voterStatusTuple)
	status := make([]election.VoterStatus, 0, len(rows))
	for _, r := range rows {
		status = append(status, election.VoterStatus{VoterID: toUint64(r.VoterID), Name: r.Name, HasVoted: r.HasVoted})
	}
	return status, nil
}

func (c *Client) Winners(ctx context.Context) ([]election.Winner, error) {
	out, err := c.call(ctx, "getWinner")
	if err != nil {
		return nil, err
	}
	rows := *abi.ConvertType(out[0], new([]winnerTuple)).(*[]winnerTuple)
	winners := make([]election.Winner, 0, len(rows))
	for _, r := range rows {
		winners = append(winners, election.Winner{ID: toUint64(r.Id), Name: r.Name, PartyName: r.PartyName})
	}
	return winners, nil
}

func (c *Client) ElectionState(ctx context.Context) (election.State, error) {
	out, err := c.call(ctx, "electionState")
	if err != nil {
		return 0, err
	}
	state := *abi.ConvertType(out[0], new(uint8)).(*uint8)
	return election.State(state), nil
}

func (c *Client) ElectionStatus(ctx context.Context) (string, error) {
	out, err := c.call(ctx, "getElectionStatus")
	if err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

func (c *Client) TotalVoterCount(ctx context.Context) (uint64, error) {
	return c.count(ctx, "getTotalVoterCount")
}

func (c *Client) TotalCandidateCount(ctx context.Context) (uint64, error) {
	return c.count(ctx, "getTotalCandidateCount")
}

func (c *Client) count(ctx context.Context, method string) (uint64, error) {
	out, err := c.call(ctx, method)
	if err != nil {
		return 0, err
	}
	n := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	return toUint64(n), nil
}

func (c *Client) CastVote(ctx context.Context, voterID, candidateID uint64) (election.TxHash, error) {
	return c.transact(ctx, "castVote", new(big.Int).SetUint64(voterID), new(big.Int).SetUint64(candidateID))
}

func (c *Client) RegisterVoter(ctx context.Context, reg election.VoterRegistration) (election.TxHash, error) {
	return c.transact(ctx, "registerVoter",
		reg.Name,
		new(big.Int).SetUint64(reg.VoterID),
		reg.FaceEncoding,
		reg.FingerEncoding,
		reg.FaceDisabled,
		reg.FingerDisabled,
	)
}

func (c *Client) RegisterCandidate(ctx context.Context, name string) (election.TxHash, error) {
	return c.transact(ctx, "registerCandidate", name)
}

func (c *Client) RemoveCandidate(ctx context.Context, candidateID uint64) (election.TxHash, error) {
	return c.transact(ctx, "removeCandidate", new(big.Int).SetUint64(candidateID))
}

func (c *Client) RemoveVoter(ctx context.Context, voterID uint64) (election.TxHash, error) {
	return c.transact(ctx, "removeVoter", new(big.Int).SetUint64(voterID))
}

func (c *Client) StartElection(ctx context.Context) (election.TxHash, error) {
	return c.transact(ctx, "startElection")
}

func (c *Client) EndElection(ctx context.Context) (election.TxHash, error) {
	return c.transact(ctx, "endElection")
}

func (c *Client) NewElection(ctx context.Context) (election.TxHash, error) {
	return c.transact(ctx, "newElection")
}

func toUint64(n *big.Int) uint64 {
	if n == nil || !n.IsUint64() {
		return 0
	}
	return n.Uint64()
}
