package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// ErrDuplicateTransaction signals an insert that collided with the unique
// transaction_id constraint. The webhook path catches it and retries as a
// status transition, which makes duplicate delivery safe under concurrency.
var ErrDuplicateTransaction = errors.New("duplicate transaction id")

// TransactionFilter captures ledger query parameters.
type TransactionFilter struct {
	Status      *domain.TransactionStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	// Search matches case-insensitively against transaction id, customer
	// email and customer name.
	Search *string
	// OwnerUserID and OwnerEmail are OR-matched when both are set: a
	// transaction belongs to a caller if either key matches. This covers
	// guest checkouts later claimed by login.
	OwnerUserID *string
	OwnerEmail  *string
	Limit       int
	Skip        int
}

// StatusTally is one row of the per-status aggregate.
type StatusTally struct {
	Status domain.TransactionStatus
	Count  int64
	Amount float64
}

// TransactionRepository encapsulates ledger persistence. Status mutations go
// through AppendStatus/AppendShipping only; each is a single UPDATE so the
// current status and its history can never be observed out of sync.
type TransactionRepository interface {
	Insert(ctx context.Context, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.Transaction, error)
	AppendStatus(ctx context.Context, id string, entry domain.StatusEntry[domain.TransactionStatus]) (*domain.Transaction, error)
	AppendShipping(ctx context.Context, id string, status *domain.ShippingStatus, trackingNumber *string, entry domain.StatusEntry[domain.ShippingStatus]) (*domain.Transaction, error)
	UpdateNotes(ctx context.Context, id, notes string) (*domain.Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error)
	Count(ctx context.Context, filter TransactionFilter) (int64, error)
	TallyByStatus(ctx context.Context, from, to *time.Time) ([]StatusTally, error)
}

type transactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository instantiates repository.
func NewTransactionRepository(pool *pgxpool.Pool) TransactionRepository {
	return &transactionRepository{pool: pool}
}

const transactionColumns = `id, transaction_id, payment_id, user_id, customer_info, items, amount,
       status, status_history, shipping_status, tracking_number, shipping_history,
       payment_method, payment_type, notes, webhook_data, created_at, updated_at`

func (r *transactionRepository) Insert(ctx context.Context, txn *domain.Transaction) error {
	const query = `
        INSERT INTO transactions
            (transaction_id, payment_id, user_id, customer_info, items, amount,
             status, status_history, shipping_history, payment_method, payment_type, notes, webhook_data)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at, updated_at`

	history := txn.StatusHistory
	if history == nil {
		history = domain.StatusHistory[domain.TransactionStatus]{}
	}
	shipping := txn.ShippingHistory
	if shipping == nil {
		shipping = domain.StatusHistory[domain.ShippingStatus]{}
	}

	err := r.pool.QueryRow(ctx, query,
		txn.TransactionID,
		txn.PaymentID,
		txn.UserID,
		txn.CustomerInfo,
		txn.Items,
		txn.Amount,
		txn.Status,
		history,
		shipping,
		txn.PaymentMethod,
		txn.PaymentType,
		txn.Notes,
		txn.WebhookData,
	).Scan(&txn.ID, &txn.CreatedAt, &txn.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateTransaction
		}
		return err
	}
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	const query = `SELECT ` + transactionColumns + ` FROM transactions WHERE id=$1`
	return scanTransaction(r.pool.QueryRow(ctx, query, id))
}

func (r *transactionRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Transaction, error) {
	const query = `SELECT ` + transactionColumns + `
        FROM transactions WHERE transaction_id=$1 OR payment_id=$1`
	return scanTransaction(r.pool.QueryRow(ctx, query, externalID))
}

// AppendStatus sets the current status and appends the history entry in one
// atomic statement.
func (r *transactionRepository) AppendStatus(ctx context.Context, id string, entry domain.StatusEntry[domain.TransactionStatus]) (*domain.Transaction, error) {
	const query = `
        UPDATE transactions
        SET status=$2, status_history = status_history || $3::jsonb, updated_at=NOW()
        WHERE id=$1
        RETURNING ` + transactionColumns
	return scanTransaction(r.pool.QueryRow(ctx, query, id, entry.Status,
		domain.StatusHistory[domain.TransactionStatus]{entry}))
}

// AppendShipping updates whichever shipping fields are present and logs the
// change, again in a single statement.
func (r *transactionRepository) AppendShipping(ctx context.Context, id string, status *domain.ShippingStatus, trackingNumber *string, entry domain.StatusEntry[domain.ShippingStatus]) (*domain.Transaction, error) {
	const query = `
        UPDATE transactions
        SET shipping_status = COALESCE($2, shipping_status),
            tracking_number = COALESCE($3, tracking_number),
            shipping_history = shipping_history || $4::jsonb,
            updated_at=NOW()
        WHERE id=$1
        RETURNING ` + transactionColumns
	return scanTransaction(r.pool.QueryRow(ctx, query, id, status, trackingNumber,
		domain.StatusHistory[domain.ShippingStatus]{entry}))
}

func (r *transactionRepository) UpdateNotes(ctx context.Context, id, notes string) (*domain.Transaction, error) {
	const query = `
        UPDATE transactions SET notes=$2, updated_at=NOW()
        WHERE id=$1
        RETURNING ` + transactionColumns
	return scanTransaction(r.pool.QueryRow(ctx, query, id, notes))
}

func (r *transactionRepository) List(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error) {
	where, args := buildTransactionWhere(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	skip := filter.Skip
	if skip < 0 {
		skip = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		transactionColumns, where, limit, skip)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *txn)
	}
	return result, rows.Err()
}

func (r *transactionRepository) Count(ctx context.Context, filter TransactionFilter) (int64, error) {
	where, args := buildTransactionWhere(filter)
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE `+where, args...).Scan(&total)
	return total, err
}

func (r *transactionRepository) TallyByStatus(ctx context.Context, from, to *time.Time) ([]StatusTally, error) {
	filter := TransactionFilter{CreatedFrom: from, CreatedTo: to}
	where, args := buildTransactionWhere(filter)

	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*), COALESCE(SUM(amount),0) FROM transactions WHERE `+where+` GROUP BY status`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StatusTally
	for rows.Next() {
		var tally StatusTally
		if err := rows.Scan(&tally.Status, &tally.Count, &tally.Amount); err != nil {
			return nil, err
		}
		result = append(result, tally)
	}
	return result, rows.Err()
}

func buildTransactionWhere(filter TransactionFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		args = append(args, "%"+strings.TrimSpace(*filter.Search)+"%")
		placeholder := strconv.Itoa(len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(transaction_id ILIKE $%[1]s OR customer_info->>'email' ILIKE $%[1]s OR customer_info->>'name' ILIKE $%[1]s)",
			placeholder))
	}
	if filter.OwnerUserID != nil || filter.OwnerEmail != nil {
		ownership := []string{}
		if filter.OwnerUserID != nil {
			args = append(args, *filter.OwnerUserID)
			ownership = append(ownership, fmt.Sprintf("user_id=$%d", len(args)))
		}
		if filter.OwnerEmail != nil {
			args = append(args, *filter.OwnerEmail)
			ownership = append(ownership, fmt.Sprintf("customer_info->>'email'=$%d", len(args)))
		}
		clauses = append(clauses, "("+strings.Join(ownership, " OR ")+")")
	}

	return strings.Join(clauses, " AND "), args
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	if err := row.Scan(
		&txn.ID,
		&txn.TransactionID,
		&txn.PaymentID,
		&txn.UserID,
		&txn.CustomerInfo,
		&txn.Items,
		&txn.Amount,
		&txn.Status,
		&txn.StatusHistory,
		&txn.ShippingStatus,
		&txn.TrackingNumber,
		&txn.ShippingHistory,
		&txn.PaymentMethod,
		&txn.PaymentType,
		&txn.Notes,
		&txn.WebhookData,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &txn, nil
}
