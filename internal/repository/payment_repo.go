package repository

import (
	"context"
	"errors"

	"github.com/kunkakamikasa/dramini-api/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentOrderRepository struct {
	DB *pgxpool.Pool
}

func NewPaymentOrderRepository(db *pgxpool.Pool) *PaymentOrderRepository {
	return &PaymentOrderRepository{DB: db}
}

const orderColumns = `
	order_id, user_id, tier_key, provider, provider_order_id, provider_event_id,
	amount_cents, currency, coins, status, metadata, created_at, completed_at
`

func scanOrder(row pgx.Row) (*model.PaymentOrder, error) {
	var o model.PaymentOrder
	err := row.Scan(
		&o.OrderID,
		&o.UserID,
		&o.TierKey,
		&o.Provider,
		&o.ProviderOrderID,
		&o.ProviderEventID,
		&o.AmountCents,
		&o.Currency,
		&o.Coins,
		&o.Status,
		&o.Metadata,
		&o.CreatedAt,
		&o.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *PaymentOrderRepository) CreateOrder(ctx context.Context, o *model.PaymentOrder) error {
	q := `
		INSERT INTO payment_orders
			(order_id, user_id, tier_key, provider, amount_cents, currency, coins, status, metadata, created_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, 'pending', $8, NOW())
	`
	_, err := r.DB.Exec(ctx, q,
		o.OrderID, o.UserID, o.TierKey, o.Provider,
		o.AmountCents, o.Currency, o.Coins, o.Metadata,
	)
	return err
}

func (r *PaymentOrderRepository) GetOrder(ctx context.Context, orderID string) (*model.PaymentOrder, error) {
	q := `SELECT ` + orderColumns + ` FROM payment_orders WHERE order_id=$1`
	return scanOrder(r.DB.QueryRow(ctx, q, orderID))
}

// GetOrderByProviderEvent finds the order a previous delivery of the same
// provider event already completed. Used to resolve webhook retries.
func (r *PaymentOrderRepository) GetOrderByProviderEvent(ctx context.Context, provider, eventID string) (*model.PaymentOrder, error) {
	q := `SELECT ` + orderColumns + ` FROM payment_orders WHERE provider=$1 AND provider_event_id=$2`
	return scanOrder(r.DB.QueryRow(ctx, q, provider, eventID))
}

func (r *PaymentOrderRepository) GetOrderByProviderOrderID(ctx context.Context, provider, providerOrderID string) (*model.PaymentOrder, error) {
	q := `SELECT ` + orderColumns + ` FROM payment_orders WHERE provider=$1 AND provider_order_id=$2`
	return scanOrder(r.DB.QueryRow(ctx, q, provider, providerOrderID))
}

// AttachProviderOrderID records the provider-side checkout id. Overwrite is
// safe; the same value is expected on every call.
func (r *PaymentOrderRepository) AttachProviderOrderID(ctx context.Context, orderID, providerOrderID string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE payment_orders
		SET provider_order_id=$2
		WHERE order_id=$1
	`, orderID, providerOrderID)
	return err
}

// CompleteOrder flips the order to completed and credits the coins in one
// transaction. Returns credited=false when another delivery already won:
// either the status guard updates zero rows, or the unique indexes on
// (provider, provider_event_id) / (order_id, tx_type) fire on commit.
func (r *PaymentOrderRepository) CompleteOrder(ctx context.Context, orderID, eventID string) (bool, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var userID, coins int64
	err = tx.QueryRow(ctx, `
		UPDATE payment_orders
		SET status='completed',
		    provider_event_id=$2,
		    completed_at=NOW()
		WHERE order_id=$1 AND status='pending'
		RETURNING user_id, coins
	`, orderID, eventID).Scan(&userID, &coins)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// concurrent delivery got there first
			return false, nil
		}
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO user_coin_balance (user_id, balance, total_earned, total_spent, updated_at)
		VALUES ($1, $2, $2, 0, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET balance = user_coin_balance.balance + EXCLUDED.balance,
		    total_earned = user_coin_balance.total_earned + EXCLUDED.balance,
		    updated_at = NOW()
	`, userID, coins)
	if err != nil {
		return false, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO coin_transactions (user_id, order_id, delta, tx_type, description, created_at)
		VALUES ($1, $2, $3, 'purchase', 'coin purchase', NOW())
	`, userID, orderID, coins)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MarkOrderFailed is terminal for pending orders; completed orders are never
// reversed here.
func (r *PaymentOrderRepository) MarkOrderFailed(ctx context.Context, orderID string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE payment_orders
		SET status='failed'
		WHERE order_id=$1 AND status='pending'
	`, orderID)
	return err
}

func (r *PaymentOrderRepository) ListOrdersByUser(ctx context.Context, userID int64) ([]model.PaymentOrder, error) {
	q := `SELECT ` + orderColumns + ` FROM payment_orders WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.DB.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PaymentOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
