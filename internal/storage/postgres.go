package storage

import (
	"context"
	"fmt"
	"time"

	"tokengate/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{
		pool: pool,
	}, nil
}

// CreateTransaction persists a new transaction record. The id is
// generated here so a record is identifiable in logs even if the
// INSERT itself fails.
func (r *PostgresRepository) CreateTransaction(ctx context.Context, record *models.TransactionRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	query := `
		INSERT INTO transactions (
			id, custody_tx_id, operation, asset, description,
			source_asset_id, destination_asset_id, counterparty,
			amount, contract_address, encoded_data,
			status, failure_stage, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.CustodyTxID,
		record.Operation,
		record.Asset,
		record.Description,
		record.SourceAssetID,
		record.DestinationAssetID,
		record.Counterparty,
		record.Amount,
		record.ContractAddress,
		record.EncodedData,
		record.Status,
		record.FailureStage,
		record.CreatedAt,
		record.UpdatedAt,
	)

	if err != nil {
		return "", fmt.Errorf("failed to save transaction record: %w", err)
	}

	return record.ID, nil
}

// UpdateTransactionStatus advances a record's status inside a database
// transaction, rejecting any move the forward-only lifecycle forbids.
func (r *PostgresRepository) UpdateTransactionStatus(ctx context.Context, id string, status models.Status, failureStage string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current models.Status
	err = tx.QueryRow(ctx, `SELECT status FROM transactions WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err == pgx.ErrNoRows {
		return fmt.Errorf("transaction record not found: %s", id)
	}
	if err != nil {
		return fmt.Errorf("failed to read transaction status: %w", err)
	}

	if !models.CanTransition(current, status) {
		return fmt.Errorf("invalid status transition for record %s: %s -> %s", id, current, status)
	}

	_, err = tx.Exec(ctx, `
		UPDATE transactions
		SET status = $2, failure_stage = $3, updated_at = $4
		WHERE id = $1
	`, id, status, failureStage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit status update: %w", err)
	}

	return nil
}

// GetTransaction retrieves a transaction record by id
func (r *PostgresRepository) GetTransaction(ctx context.Context, id string) (*models.TransactionRecord, error) {
	query := `
		SELECT
			id, custody_tx_id, operation, asset, description,
			source_asset_id, destination_asset_id, counterparty,
			amount, contract_address, encoded_data,
			status, failure_stage, created_at, updated_at
		FROM transactions
		WHERE id = $1
	`

	var record models.TransactionRecord
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&record.ID,
		&record.CustodyTxID,
		&record.Operation,
		&record.Asset,
		&record.Description,
		&record.SourceAssetID,
		&record.DestinationAssetID,
		&record.Counterparty,
		&record.Amount,
		&record.ContractAddress,
		&record.EncodedData,
		&record.Status,
		&record.FailureStage,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("transaction record not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction record: %w", err)
	}

	return &record, nil
}

// ListTransactions lists transaction records with pagination, newest first
func (r *PostgresRepository) ListTransactions(ctx context.Context, limit, offset int) ([]*models.TransactionRecord, error) {
	query := `
		SELECT
			id, custody_tx_id, operation, asset, description,
			source_asset_id, destination_asset_id, counterparty,
			amount, contract_address, encoded_data,
			status, failure_stage, created_at, updated_at
		FROM transactions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction records: %w", err)
	}
	defer rows.Close()

	var records []*models.TransactionRecord

	for rows.Next() {
		var record models.TransactionRecord

		err := rows.Scan(
			&record.ID,
			&record.CustodyTxID,
			&record.Operation,
			&record.Asset,
			&record.Description,
			&record.SourceAssetID,
			&record.DestinationAssetID,
			&record.Counterparty,
			&record.Amount,
			&record.ContractAddress,
			&record.EncodedData,
			&record.Status,
			&record.FailureStage,
			&record.CreatedAt,
			&record.UpdatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction record: %w", err)
		}

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction records: %w", err)
	}

	return records, nil
}

// Ping checks if the database connection is alive
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
