package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kunkakamikasa/dramini-api/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CoinRepository is read-only. Balance mutation happens exclusively inside
// PaymentOrderRepository.CompleteOrder.
type CoinRepository struct {
	DB *pgxpool.Pool
}

func NewCoinRepository(db *pgxpool.Pool) *CoinRepository {
	return &CoinRepository{DB: db}
}

// GetBalance returns a zero balance for users without a row yet; the row is
// created lazily on first credit.
func (r *CoinRepository) GetBalance(ctx context.Context, userID int64) (*model.UserCoinBalance, error) {
	var b model.UserCoinBalance
	q := `
		SELECT user_id, balance, total_earned, total_spent, updated_at
		FROM user_coin_balance
		WHERE user_id=$1
	`
	err := r.DB.QueryRow(ctx, q, userID).Scan(
		&b.UserID, &b.Balance, &b.TotalEarned, &b.TotalSpent, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &model.UserCoinBalance{UserID: userID, UpdatedAt: time.Now()}, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *CoinRepository) ListTransactions(ctx context.Context, userID int64, limit int) ([]model.CoinTransaction, error) {
	q := `
		SELECT tx_id, user_id, order_id, delta, tx_type, description, created_at
		FROM coin_transactions
		WHERE user_id=$1
		ORDER BY tx_id DESC
		LIMIT $2
	`
	rows, err := r.DB.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CoinTransaction{}
	for rows.Next() {
		var t model.CoinTransaction
		if err := rows.Scan(&t.TxID, &t.UserID, &t.OrderID, &t.Delta, &t.TxType, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
