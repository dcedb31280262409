package model

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusFailed    = "failed"
)

const (
	CoinTxPurchase = "purchase"
	CoinTxSpend    = "spend"
	CoinTxRefund   = "refund"
)

// CoinTier is a purchasable coin bundle. Prices are integer minor units
// (cents); the client never supplies amounts, only the tier key.
type CoinTier struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Coins      int64  `json:"coins"`
	BonusCoins int64  `json:"bonus_coins"`
	PriceCents int64  `json:"price_cents"`
	Currency   string `json:"currency"`
}

// TotalCoins is what a completed purchase credits.
func (t CoinTier) TotalCoins() int64 {
	return t.Coins + t.BonusCoins
}

// PaymentOrder is the audit trail of one checkout. Rows are never deleted;
// status only moves pending->completed or pending->failed.
type PaymentOrder struct {
	OrderID         string     `db:"order_id" json:"order_id"`
	UserID          int64      `db:"user_id" json:"user_id"`
	TierKey         string     `db:"tier_key" json:"tier_key"`
	Provider        string     `db:"provider" json:"provider"`
	ProviderOrderID *string    `db:"provider_order_id" json:"provider_order_id"`
	ProviderEventID *string    `db:"provider_event_id" json:"provider_event_id"`
	AmountCents     int64      `db:"amount_cents" json:"amount_cents"`
	Currency        string     `db:"currency" json:"currency"`
	Coins           int64      `db:"coins" json:"coins"`
	Status          string     `db:"status" json:"status"`
	Metadata        []byte     `db:"metadata" json:"metadata,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	CompletedAt     *time.Time `db:"completed_at" json:"completed_at"`
}

type UserCoinBalance struct {
	UserID      int64     `db:"user_id" json:"user_id"`
	Balance     int64     `db:"balance" json:"balance"`
	TotalEarned int64     `db:"total_earned" json:"total_earned"`
	TotalSpent  int64     `db:"total_spent" json:"total_spent"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CoinTransaction is an append-only ledger row. Exactly one purchase row
// exists per completed order.
type CoinTransaction struct {
	TxID        int64     `db:"tx_id" json:"tx_id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	OrderID     *string   `db:"order_id" json:"order_id,omitempty"`
	Delta       int64     `db:"delta" json:"delta"`
	TxType      string    `db:"tx_type" json:"tx_type"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
