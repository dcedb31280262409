package services

import (
	"context"

	"github.com/kunkakamikasa/dramini-api/internal/model"
	"github.com/kunkakamikasa/dramini-api/internal/repository"
)

// CoinService exposes read-only views of the coin ledger. All writes go
// through PaymentService.Complete.
type CoinService struct {
	Coins *repository.CoinRepository
}

func NewCoinService(coins *repository.CoinRepository) *CoinService {
	return &CoinService{Coins: coins}
}

func (s *CoinService) GetBalance(ctx context.Context, userID int64) (*model.UserCoinBalance, error) {
	return s.Coins.GetBalance(ctx, userID)
}

func (s *CoinService) ListTransactions(ctx context.Context, userID int64, limit int) ([]model.CoinTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.Coins.ListTransactions(ctx, userID, limit)
}
