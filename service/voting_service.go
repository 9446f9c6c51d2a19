// Package service runs the balloting engine behind a hash-chained ledger.
// Every accepted operation is validated, appended to the ledger and only
// then applied, one at a time, so the ledger replays to the same state.
package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"balloting-backend/encryption"
	"balloting-backend/engine"
	"balloting-backend/errors"
	"balloting-backend/ledger"
	"balloting-backend/metrics"
	"balloting-backend/models"
	"balloting-backend/storage"
)

type Config struct {
	Admin      common.Address
	Store      storage.BlockStore
	Difficulty uint8
	NonceTTL   time.Duration

	// Archive receives the results report once the session is closed. Optional.
	Archive *storage.ResultsArchive
}

type BallotingService struct {
	mu sync.Mutex

	engine   *engine.Engine
	ledger   *ledger.Ledger
	archive  *storage.ResultsArchive
	verifier *RequestVerifier
	session  *SessionTracker

	now func() time.Time
}

type Status struct {
	Admin        common.Address      `json:"admin"`
	State        models.SessionState `json:"state"`
	VotingActive bool                `json:"voting_active"`
	Closed       bool                `json:"closed"`
	Winner       common.Address      `json:"winner"`
	Members      int                 `json:"members"`
	Nominees     int                 `json:"nominees"`
	Voters       int                 `json:"voters"`
	LedgerHeight int                 `json:"ledger_height"`
	Session      SessionTimes        `json:"session"`
}

// BlockResponse is one ledger block with its payload decoded.
type BlockResponse struct {
	Index       uint64          `json:"index"`
	Timestamp   int64           `json:"timestamp"`
	DataHex     string          `json:"data_hex"`
	DataDecoded json.RawMessage `json:"data_decoded,omitempty"`
	PrevHash    string          `json:"prev_hash"`
	Hash        string          `json:"hash"`
	Nonce       uint64          `json:"nonce"`
	Difficulty  uint8           `json:"difficulty"`
}

type LedgerResponse struct {
	BlockCount int             `json:"block_count"`
	Blocks     []*models.Block `json:"blocks"`
	IsValid    bool            `json:"is_valid"`
	LastHash   string          `json:"last_hash"`
}

// NewBallotingService opens the ledger in cfg.Store. A fresh ledger gets a
// genesis block naming cfg.Admin; an existing one must name the same admin
// and is replayed into the engine.
func NewBallotingService(cfg Config) (*BallotingService, error) {
	l, err := ledger.Open(cfg.Store, cfg.Difficulty)
	if err != nil {
		return nil, err
	}

	if !l.Initialized() {
		if _, err := l.Init(cfg.Admin); err != nil {
			return nil, err
		}
	} else {
		deployment, err := l.Deployment()
		if err != nil {
			return nil, err
		}
		if deployment.Admin != cfg.Admin {
			return nil, errors.AdminMismatch.Clone().
				SetData("ledger", deployment.Admin.Hex()).
				SetData("configured", cfg.Admin.Hex())
		}
	}

	bs := &BallotingService{
		engine:   engine.New(cfg.Admin),
		ledger:   l,
		archive:  cfg.Archive,
		verifier: NewRequestVerifier(encryption.NewCryptoService(), cfg.NonceTTL),
		session:  NewSessionTracker(),
		now:      time.Now,
	}

	if err := bs.replay(); err != nil {
		return nil, err
	}

	bs.updateMetrics()
	log.Info(
		"balloting service ready",
		"admin", cfg.Admin.Hex(),
		"height", l.Height(),
		"state", bs.engine.State(),
	)

	return bs, nil
}

func (bs *BallotingService) replay() error {
	ops, err := bs.ledger.Operations()
	if err != nil {
		return err
	}

	for i, op := range ops {
		if err := bs.engine.Apply(op); err != nil {
			return errors.LedgerCorrupted.Clone().
				SetData("block", i+1).
				SetData("operation", op.String()).
				SetData("error", err.Error())
		}
		if op.Nonce != 0 {
			bs.verifier.Remember(op.Caller, op.Nonce)
		}
		bs.track(op)
	}

	log.Debug("ledger replayed", "operations", len(ops))
	return nil
}

// Execute commits an operation whose caller is already authenticated.
func (bs *BallotingService) Execute(ctx context.Context, op models.Operation) (*models.Receipt, error) {
	return bs.execute(ctx, op, false)
}

// ExecuteSigned authenticates signed and commits its operation.
func (bs *BallotingService) ExecuteSigned(ctx context.Context, signed models.SignedOperation) (*models.Receipt, error) {
	if err := bs.verifier.VerifySignature(signed); err != nil {
		metrics.Ballot.Observe(string(signed.Operation.Type), metrics.ResultRejected, 0)
		log.Debug("signed operation rejected", "op", signed.Operation.String(), "error", err)
		return nil, err
	}
	return bs.execute(ctx, signed.Operation, true)
}

func (bs *BallotingService) execute(ctx context.Context, op models.Operation, checkNonce bool) (*models.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !op.Type.IsValid() {
		return nil, errors.InvalidOperation.Clone().SetData("type", string(op.Type))
	}

	started := time.Now()

	bs.mu.Lock()
	defer bs.mu.Unlock()

	if op.Timestamp == 0 {
		op.Timestamp = bs.now().Unix()
	}

	receipt, err := bs.commit(op, checkNonce)

	result := metrics.ResultCommitted
	if err != nil {
		result = metrics.ResultRejected
	}
	metrics.Ballot.Observe(string(op.Type), result, time.Since(started).Seconds())

	return receipt, err
}

func (bs *BallotingService) commit(op models.Operation, checkNonce bool) (*models.Receipt, error) {
	if checkNonce {
		if err := bs.verifier.CheckNonce(op.Caller, op.Nonce); err != nil {
			return nil, err
		}
	}

	if err := bs.engine.Validate(op); err != nil {
		if errors.IsDomain(err) {
			log.Debug("operation rejected", "op", op.String(), "error", err)
		} else {
			log.Warn("invalid operation", "op", op.String(), "error", err)
		}
		return nil, err
	}

	stored, block, err := bs.ledger.Append(op)
	if err != nil {
		log.Error("failed to append operation", "op", op.String(), "error", err)
		return nil, err
	}

	if err := bs.engine.Apply(stored); err != nil {
		// the ledger and the engine are out of step from here on
		log.Crit("validated operation failed to apply", "op", stored.String(), "error", err)
		return nil, errors.LedgerCorrupted.Clone().SetData("error", err.Error())
	}

	if checkNonce {
		bs.verifier.Remember(op.Caller, op.Nonce)
	}
	bs.track(stored)
	bs.updateMetrics()

	receipt := &models.Receipt{
		OperationID: stored.ID,
		BlockIndex:  block.Index,
		BlockHash:   block.Hash,
		Type:        stored.Type,
		Caller:      stored.Caller,
	}

	if stored.Type == models.OpEndVoting {
		receipt.Winner = bs.engine.Winner()
		bs.archiveResults()
		log.Info("voting session closed", "winner", receipt.Winner.Hex(), "duration", bs.session.Duration())
	}

	log.Info("operation committed", "id", stored.ID, "op", stored.String(), "block", block.Index)
	return receipt, nil
}

func (bs *BallotingService) track(op models.Operation) {
	switch op.Type {
	case models.OpStartVoting:
		bs.session.Started(time.Unix(op.Timestamp, 0))
	case models.OpEndVoting:
		bs.session.Ended(time.Unix(op.Timestamp, 0))
	}
}

func (bs *BallotingService) archiveResults() {
	if bs.archive == nil {
		return
	}
	results := CountVotes(bs.engine.Snapshot(), bs.now())
	if _, err := bs.archive.Save(results); err != nil {
		log.Error("failed to archive results", "error", err)
	}
}

func (bs *BallotingService) updateMetrics() {
	snapshot := bs.engine.Snapshot()
	metrics.Ballot.SetState(
		len(snapshot.Members),
		len(snapshot.Nominees),
		len(snapshot.Voters),
		snapshot.State == models.Active,
	)
}

func (bs *BallotingService) RegisterMember(ctx context.Context, caller, identity common.Address) (*models.Receipt, error) {
	return bs.Execute(ctx, models.Operation{Type: models.OpRegisterMember, Caller: caller, Target: identity})
}

func (bs *BallotingService) NominateMember(ctx context.Context, caller, nominee common.Address) (*models.Receipt, error) {
	return bs.Execute(ctx, models.Operation{Type: models.OpNominateMember, Caller: caller, Target: nominee})
}

func (bs *BallotingService) Vote(ctx context.Context, caller, nominee common.Address) (*models.Receipt, error) {
	return bs.Execute(ctx, models.Operation{Type: models.OpVote, Caller: caller, Target: nominee})
}

func (bs *BallotingService) StartVoting(ctx context.Context, caller common.Address) (*models.Receipt, error) {
	return bs.Execute(ctx, models.Operation{Type: models.OpStartVoting, Caller: caller})
}

func (bs *BallotingService) EndVoting(ctx context.Context, caller common.Address) (*models.Receipt, error) {
	return bs.Execute(ctx, models.Operation{Type: models.OpEndVoting, Caller: caller})
}

func (bs *BallotingService) Admin() common.Address {
	return bs.engine.Admin()
}

func (bs *BallotingService) GetMembers() []common.Address {
	return bs.engine.GetMembers()
}

func (bs *BallotingService) IsMember(identity common.Address) bool {
	return bs.engine.IsMember(identity)
}

func (bs *BallotingService) Member(identity common.Address) models.MemberStatus {
	status := models.MemberStatus{
		Member:    bs.engine.Member(identity),
		HasVoted:  bs.engine.HasVoted(identity),
		Nominated: bs.engine.IsNominated(identity),
	}
	if nominator, found := bs.engine.NominatedBy(identity); found {
		status.NominatedBy = &nominator
	}
	return status
}

func (bs *BallotingService) GetNominees() []common.Address {
	return bs.engine.GetNominees()
}

func (bs *BallotingService) GetVotes(nominee common.Address) uint64 {
	return bs.engine.GetVotes(nominee)
}

func (bs *BallotingService) HasVoted(identity common.Address) bool {
	return bs.engine.HasVoted(identity)
}

func (bs *BallotingService) VotingActive() bool {
	return bs.engine.VotingActive()
}

func (bs *BallotingService) Winner() common.Address {
	return bs.engine.Winner()
}

func (bs *BallotingService) Results() *models.VotingResults {
	return CountVotes(bs.engine.Snapshot(), bs.now())
}

func (bs *BallotingService) VerifyCount() *models.VoteVerification {
	return VerifyVoteCount(bs.engine.Snapshot())
}

func (bs *BallotingService) Ledger() *LedgerResponse {
	blocks := bs.ledger.Blocks()

	response := &LedgerResponse{
		BlockCount: len(blocks),
		Blocks:     blocks,
		IsValid:    models.ValidateChain(blocks) == nil,
	}
	if len(blocks) > 0 {
		response.LastHash = common.BytesToHash(blocks[len(blocks)-1].Hash).Hex()
	}
	return response
}

func (bs *BallotingService) Block(index uint64) (*BlockResponse, error) {
	block, err := bs.ledger.Block(index)
	if err != nil {
		return nil, err
	}

	response := &BlockResponse{
		Index:      block.Index,
		Timestamp:  block.Timestamp,
		DataHex:    hexutil.Encode(block.Data),
		PrevHash:   hexutil.Encode(block.PrevHash),
		Hash:       hexutil.Encode(block.Hash),
		Nonce:      block.Nonce,
		Difficulty: block.Difficulty,
	}
	if json.Valid(block.Data) {
		response.DataDecoded = json.RawMessage(block.Data)
	}
	return response, nil
}

func (bs *BallotingService) ValidateLedger() error {
	return bs.ledger.Validate()
}

func (bs *BallotingService) Status() *Status {
	snapshot := bs.engine.Snapshot()
	return &Status{
		Admin:        snapshot.Admin,
		State:        snapshot.State,
		VotingActive: snapshot.State == models.Active,
		Closed:       snapshot.Closed,
		Winner:       snapshot.Winner,
		Members:      len(snapshot.Members),
		Nominees:     len(snapshot.Nominees),
		Voters:       len(snapshot.Voters),
		LedgerHeight: bs.ledger.Height(),
		Session:      bs.session.Times(),
	}
}

func (bs *BallotingService) Close() error {
	return bs.ledger.Close()
}
