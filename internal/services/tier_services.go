package services

import (
	"fmt"

	"github.com/kunkakamikasa/dramini-api/internal/model"
)

// TierCatalog is the whitelist of purchasable coin bundles. Amounts are
// validated once at ingestion; everything downstream trusts the catalog and
// nothing trusts the client.
type TierCatalog struct {
	tiers map[string]model.CoinTier
	order []string
}

func NewTierCatalog(tiers []model.CoinTier) (*TierCatalog, error) {
	c := &TierCatalog{tiers: make(map[string]model.CoinTier, len(tiers))}
	for _, t := range tiers {
		if t.Key == "" {
			return nil, fmt.Errorf("tier with empty key")
		}
		if _, dup := c.tiers[t.Key]; dup {
			return nil, fmt.Errorf("duplicate tier key %q", t.Key)
		}
		if t.Coins <= 0 || t.BonusCoins < 0 {
			return nil, fmt.Errorf("tier %q: invalid coin amounts", t.Key)
		}
		// minor units, never fractional
		if t.PriceCents < 0 {
			return nil, fmt.Errorf("tier %q: negative price", t.Key)
		}
		if len(t.Currency) != 3 {
			return nil, fmt.Errorf("tier %q: currency must be a 3-letter code", t.Key)
		}
		c.tiers[t.Key] = t
		c.order = append(c.order, t.Key)
	}
	return c, nil
}

func (c *TierCatalog) Resolve(key string) (model.CoinTier, bool) {
	t, ok := c.tiers[key]
	return t, ok
}

func (c *TierCatalog) List() []model.CoinTier {
	out := make([]model.CoinTier, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.tiers[k])
	}
	return out
}

// DefaultTiers is the static tier table used when no remote catalog is
// configured.
func DefaultTiers() []model.CoinTier {
	return []model.CoinTier{
		{Key: "coins_100", Name: "100 Coins", Coins: 100, BonusCoins: 0, PriceCents: 199, Currency: "USD"},
		{Key: "coins_300", Name: "300 Coins + 50 Bonus", Coins: 300, BonusCoins: 50, PriceCents: 499, Currency: "USD"},
		{Key: "coins_500", Name: "500 Coins + 100 Bonus", Coins: 500, BonusCoins: 100, PriceCents: 799, Currency: "USD"},
		{Key: "coins_1000", Name: "1000 Coins + 300 Bonus", Coins: 1000, BonusCoins: 300, PriceCents: 1499, Currency: "USD"},
	}
}
