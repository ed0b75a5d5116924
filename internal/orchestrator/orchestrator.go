package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tokengate/internal/abi"
	"tokengate/internal/custody"
	"tokengate/internal/metrics"
	"tokengate/internal/models"
	"tokengate/internal/storage"
)

// Resolver translates an off-chain routing key into a wallet address.
type Resolver interface {
	Resolve(ctx context.Context, key string) (string, error)
}

// Config carries the externally supplied addresses and asset
// identifiers the orchestrator stamps onto every call and record.
type Config struct {
	TokenContractAddress string
	TokenAssetID         string
	UnderlyingAssetID    string

	// SettleTimeout bounds the post-submit stages (persist, sign-and-
	// push), which run detached from the caller's context: once the
	// custody service has accepted a submission, cancelling locally
	// would only orphan it.
	SettleTimeout time.Duration
}

// Orchestrator drives each operation request through the saga:
// resolve (transfer only) -> encode -> submit -> persist ->
// sign-and-push. Stages are strictly ordered, run at most once, and
// are never retried here; a failed request is simply re-issued by the
// caller and produces a new, independent record.
type Orchestrator struct {
	gateway  custody.Gateway
	repo     storage.Repository
	resolver Resolver
	token    *abi.Contract
	cfg      Config
}

// New builds an Orchestrator from its collaborators. All dependencies
// are passed explicitly; there is no service registry.
func New(gateway custody.Gateway, repo storage.Repository, resolver Resolver, token *abi.Contract, cfg Config) *Orchestrator {
	if cfg.SettleTimeout <= 0 {
		cfg.SettleTimeout = 30 * time.Second
	}
	return &Orchestrator{
		gateway:  gateway,
		repo:     repo,
		resolver: resolver,
		token:    token,
		cfg:      cfg,
	}
}

// saga accumulates the outputs of completed stages for one request.
// Each request gets its own value; nothing is shared between requests.
type saga struct {
	op           models.Operation
	asset        models.AssetType
	description  string
	amount       string
	counterparty string

	sourceAssetID      string
	destinationAssetID string

	encoded     string
	custodyTxID string
	recordID    string
}

// Mint issues new tokens to a wallet: encodes mint(to, amount) against
// the token contract, tagged with the tokenized-asset identifier.
func (o *Orchestrator) Mint(ctx context.Context, req MintRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	s := &saga{
		op:            models.OperationMint,
		asset:         models.AssetToken,
		description:   req.Description,
		amount:        req.Amount,
		counterparty:  req.To,
		sourceAssetID: o.cfg.TokenAssetID,
	}

	return o.execute(ctx, s, func() (string, error) {
		return o.encode("mint", req.To, req.Amount)
	})
}

// Burn redeems tokens held by the institution: encodes burn(amount),
// tagged with the underlying-asset identifier.
func (o *Orchestrator) Burn(ctx context.Context, req BurnRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	s := &saga{
		op:            models.OperationBurn,
		asset:         models.AssetUnderlying,
		description:   req.Description,
		amount:        req.Amount,
		sourceAssetID: o.cfg.UnderlyingAssetID,
	}

	return o.execute(ctx, s, func() (string, error) {
		return o.encode("burn", req.Amount)
	})
}

// BurnFrom redeems tokens from an account that granted the institution
// an allowance: encodes burnFrom(account, amount).
func (o *Orchestrator) BurnFrom(ctx context.Context, req BurnFromRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	s := &saga{
		op:            models.OperationBurnFrom,
		asset:         models.AssetToken,
		description:   req.Description,
		amount:        req.Amount,
		counterparty:  req.Account,
		sourceAssetID: o.cfg.TokenAssetID,
	}

	return o.execute(ctx, s, func() (string, error) {
		return o.encode("burnFrom", req.Account, req.Amount)
	})
}

// InternalTransfer moves tokens to a counterparty known only by an
// off-chain routing key. The key is resolved to a wallet address
// through the directory contract before anything is submitted; a
// resolution failure aborts the whole operation.
func (o *Orchestrator) InternalTransfer(ctx context.Context, req TransferRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	s := &saga{
		op:                 models.OperationTransfer,
		asset:              models.AssetUnderlying,
		description:        req.Description,
		amount:             req.Amount,
		sourceAssetID:      o.cfg.TokenAssetID,
		destinationAssetID: o.cfg.UnderlyingAssetID,
	}

	address, err := o.resolver.Resolve(ctx, req.Key)
	if err != nil {
		metrics.StageFailures.WithLabelValues(string(StageResolve)).Inc()
		metrics.OperationsTotal.WithLabelValues(string(s.op), "failure").Inc()
		slog.Warn("Counterparty resolution failed",
			"operation", s.op,
			"amount", s.amount,
			"key", req.Key,
			"stage", StageResolve,
			"error", err,
		)
		return "", &OperationError{Operation: s.op, Stage: StageResolve, Amount: s.amount, Err: err}
	}
	s.counterparty = address

	return o.execute(ctx, s, func() (string, error) {
		return o.encode("transfer", address, req.Amount)
	})
}

// Approve grants a spender an allowance scoped to a specific custody
// asset; same saga as the other write operations, with no resolve step.
func (o *Orchestrator) Approve(ctx context.Context, req ApproveRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	s := &saga{
		op:            models.OperationApprove,
		asset:         models.AssetToken,
		description:   req.Description,
		amount:        req.Amount,
		counterparty:  req.Spender,
		sourceAssetID: req.AssetID,
	}

	return o.execute(ctx, s, func() (string, error) {
		return o.encode("approve", req.Spender, req.Amount)
	})
}

func (o *Orchestrator) encode(function string, args ...any) (string, error) {
	method, err := o.token.Method(function)
	if err != nil {
		return "", err
	}
	return method.Encode(args...)
}

// execute runs the shared encode -> submit -> persist -> sign-and-push
// tail of the saga and returns the custody status description.
func (o *Orchestrator) execute(ctx context.Context, s *saga, encode func() (string, error)) (string, error) {
	start := time.Now()
	status, stage, err := o.run(ctx, s, encode)
	metrics.SagaDuration.WithLabelValues(string(s.op)).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.StageFailures.WithLabelValues(string(stage)).Inc()
		metrics.OperationsTotal.WithLabelValues(string(s.op), "failure").Inc()
		o.logFailure(s, stage, err)
		return "", &OperationError{
			Operation:    s.op,
			Stage:        stage,
			Amount:       s.amount,
			Counterparty: s.counterparty,
			Err:          err,
		}
	}

	metrics.OperationsTotal.WithLabelValues(string(s.op), "success").Inc()
	slog.Info("Operation completed",
		"operation", s.op,
		"amount", s.amount,
		"counterparty", s.counterparty,
		"custody_tx_id", s.custodyTxID,
		"record_id", s.recordID,
		"status", status,
	)
	return status, nil
}

func (o *Orchestrator) run(ctx context.Context, s *saga, encode func() (string, error)) (string, Stage, error) {
	// Encode: fails before any external call on malformed arguments.
	encoded, err := encode()
	if err != nil {
		return "", StageEncode, err
	}
	s.encoded = encoded

	// Submit: hand the call to custody for signing. No ledger record
	// exists yet, so a failure here leaves nothing to reconcile.
	submitResp, err := o.gateway.SubmitWriteCall(ctx, custody.SubmitRequest{
		EncodedData:     s.encoded,
		ContractAddress: o.cfg.TokenContractAddress,
		SourceAssetID:   s.sourceAssetID,
		Description:     s.description,
	})
	if err != nil {
		return "", StageSubmit, err
	}
	if submitResp.TransactionID == "" {
		return "", StageSubmit, &custody.SubmissionError{Message: "custody service returned no transaction id"}
	}
	s.custodyTxID = submitResp.TransactionID

	// The custody service now holds a pending signing request.
	// Cancelling locally cannot undo it, so the remaining stages run
	// detached from the caller's context, bounded by SettleTimeout.
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.SettleTimeout)
	defer cancel()

	// Persist: create the durable record. This is the inconsistency
	// window the design accepts instead of a two-phase commit.
	record := &models.TransactionRecord{
		CustodyTxID:        s.custodyTxID,
		Operation:          s.op,
		Asset:              s.asset,
		Description:        s.description,
		SourceAssetID:      s.sourceAssetID,
		DestinationAssetID: s.destinationAssetID,
		Counterparty:       s.counterparty,
		Amount:             s.amount,
		ContractAddress:    o.cfg.TokenContractAddress,
		EncodedData:        s.encoded,
		Status:             models.StatusSubmitted,
	}
	recordID, err := o.repo.CreateTransaction(sctx, record)
	if err != nil {
		return "", StagePersist, &PersistenceError{CustodyTxID: s.custodyTxID, Err: err}
	}
	if recordID == "" {
		return "", StagePersist, &PersistenceError{CustodyTxID: s.custodyTxID, Err: fmt.Errorf("ledger store returned no record id")}
	}
	s.recordID = recordID
	metrics.TransactionsPersisted.Inc()

	if err := o.repo.UpdateTransactionStatus(sctx, recordID, models.StatusPersisted, ""); err != nil {
		return "", StagePersist, &PersistenceError{CustodyTxID: s.custodyTxID, Err: err}
	}

	// Sign-and-push: ask custody to sign and broadcast.
	confirm, err := o.gateway.ConfirmSignAndPush(sctx, s.custodyTxID, s.recordID)
	if err != nil {
		o.markFailed(sctx, s, StageSign)
		return "", StageSign, &SigningError{CustodyTxID: s.custodyTxID, RecordID: s.recordID, Reason: err.Error()}
	}
	if confirm.StatusDescription == "" {
		o.markFailed(sctx, s, StageSign)
		return "", StageSign, &SigningError{CustodyTxID: s.custodyTxID, RecordID: s.recordID, Reason: "custody returned no status description"}
	}

	if err := o.repo.UpdateTransactionStatus(sctx, s.recordID, models.StatusSignedAndPushed, ""); err != nil {
		// The broadcast already happened; the record is stuck at
		// PERSISTED and needs operator reconciliation, but the
		// operation itself succeeded.
		metrics.ReconciliationRisk.WithLabelValues(string(StageSign)).Inc()
		slog.Error("Failed to advance record after successful sign-and-push",
			"operation", s.op,
			"custody_tx_id", s.custodyTxID,
			"record_id", s.recordID,
			"error", err,
		)
	}

	return confirm.StatusDescription, "", nil
}

// markFailed moves the record to its terminal FAILED state, best
// effort: the stage error it accompanies is the one surfaced.
func (o *Orchestrator) markFailed(ctx context.Context, s *saga, stage Stage) {
	if err := o.repo.UpdateTransactionStatus(ctx, s.recordID, models.StatusFailed, string(stage)); err != nil {
		slog.Error("Failed to mark record as failed",
			"record_id", s.recordID,
			"custody_tx_id", s.custodyTxID,
			"stage", stage,
			"error", err,
		)
	}
}

// logFailure distinguishes reconciliation-risk failures (custody has
// accepted work the local ledger cannot account for) from clean aborts.
func (o *Orchestrator) logFailure(s *saga, stage Stage, err error) {
	fields := []any{
		"operation", s.op,
		"amount", s.amount,
		"counterparty", s.counterparty,
		"stage", stage,
		"error", err,
	}

	switch stage {
	case StagePersist, StageSign:
		metrics.ReconciliationRisk.WithLabelValues(string(stage)).Inc()
		fields = append(fields,
			"custody_tx_id", s.custodyTxID,
			"record_id", s.recordID,
			"encoded_data", s.encoded,
			"reconcile", true,
		)
		slog.Error("Operation failed after custody accepted work", fields...)
	default:
		slog.Warn("Operation failed", fields...)
	}
}
