package services

import (
	"testing"

	"github.com/kunkakamikasa/dramini-api/internal/model"
)

func TestTierCatalog_ResolveAndList(t *testing.T) {
	catalog, err := NewTierCatalog(DefaultTiers())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	tier, ok := catalog.Resolve("coins_300")
	if !ok {
		t.Fatal("Expected coins_300 to resolve")
	}
	if tier.TotalCoins() != 350 {
		t.Errorf("Expected 350 total coins, got %d", tier.TotalCoins())
	}
	if tier.PriceCents != 499 {
		t.Errorf("Expected 499 cents, got %d", tier.PriceCents)
	}

	if _, ok := catalog.Resolve("coins_9999"); ok {
		t.Error("Expected unknown tier to not resolve")
	}

	if len(catalog.List()) != len(DefaultTiers()) {
		t.Errorf("Expected %d tiers listed, got %d", len(DefaultTiers()), len(catalog.List()))
	}
}

func TestTierCatalog_RejectsInvalidTiers(t *testing.T) {
	cases := []struct {
		name string
		tier model.CoinTier
	}{
		{"empty key", model.CoinTier{Key: "", Coins: 100, PriceCents: 100, Currency: "USD"}},
		{"zero coins", model.CoinTier{Key: "t", Coins: 0, PriceCents: 100, Currency: "USD"}},
		{"negative bonus", model.CoinTier{Key: "t", Coins: 100, BonusCoins: -1, PriceCents: 100, Currency: "USD"}},
		{"negative price", model.CoinTier{Key: "t", Coins: 100, PriceCents: -1, Currency: "USD"}},
		{"bad currency", model.CoinTier{Key: "t", Coins: 100, PriceCents: 100, Currency: "usdollar"}},
	}

	for _, tc := range cases {
		if _, err := NewTierCatalog([]model.CoinTier{tc.tier}); err == nil {
			t.Errorf("%s: expected ingestion error", tc.name)
		}
	}
}

func TestTierCatalog_RejectsDuplicateKeys(t *testing.T) {
	tiers := []model.CoinTier{
		{Key: "t", Coins: 100, PriceCents: 100, Currency: "USD"},
		{Key: "t", Coins: 200, PriceCents: 200, Currency: "USD"},
	}
	if _, err := NewTierCatalog(tiers); err == nil {
		t.Error("Expected duplicate key error")
	}
}
