package storage

import (
	"context"

	"tokengate/internal/models"
)

// Repository defines the ledger store: durable, append-only accounting
// of every operation the custody service has accepted. Records are
// created exactly once per successful submission and never deleted;
// only their lifecycle status moves forward.
type Repository interface {
	// CreateTransaction persists a new record and returns its id.
	CreateTransaction(ctx context.Context, record *models.TransactionRecord) (string, error)

	// UpdateTransactionStatus advances a record's lifecycle status.
	// Transitions that would move a record backwards are rejected.
	UpdateTransactionStatus(ctx context.Context, id string, status models.Status, failureStage string) error

	GetTransaction(ctx context.Context, id string) (*models.TransactionRecord, error)
	ListTransactions(ctx context.Context, limit, offset int) ([]*models.TransactionRecord, error)

	// Health & Maintenance
	Ping(ctx context.Context) error
	Close() error
}
