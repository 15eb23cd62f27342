// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pricing implements quantity-tiered unit pricing. The same Table
// drives the public pricing endpoint and the cart quote so the displayed
// price and the charged price can never diverge.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidTable is returned when a tier table cannot be used for pricing.
var ErrInvalidTable = errors.New("invalid price tier table")

// Tier maps every quantity at or above MinQuantity (up to the next tier)
// to a fixed unit price.
type Tier struct {
	MinQuantity int             `json:"min_quantity"`
	Price       decimal.Decimal `json:"price"`
}

// TierInfo describes the next discount threshold for a quantity.
type TierInfo struct {
	Threshold int             `json:"threshold"`
	Price     decimal.Decimal `json:"price"`
}

// Quote is the full pricing breakdown for a quantity.
type Quote struct {
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Next       *TierInfo       `json:"next_tier,omitempty"`
	AddForNext int             `json:"add_for_next,omitempty"`
}

// Table is an ordered, validated set of price tiers.
type Table struct {
	tiers []Tier
}

// NewTable validates the tiers and returns a Table. The first tier must
// start at quantity 0 and thresholds must be strictly increasing. Prices
// are not required to decrease.
func NewTable(tiers ...Tier) (*Table, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: no tiers", ErrInvalidTable)
	}
	if tiers[0].MinQuantity != 0 {
		return nil, fmt.Errorf("%w: first tier starts at %d, want 0", ErrInvalidTable, tiers[0].MinQuantity)
	}
	for i, t := range tiers {
		if t.Price.IsNegative() {
			return nil, fmt.Errorf("%w: tier %d has negative price %s", ErrInvalidTable, i, t.Price)
		}
		if i > 0 && t.MinQuantity <= tiers[i-1].MinQuantity {
			return nil, fmt.Errorf("%w: tier %d threshold %d not above %d",
				ErrInvalidTable, i, t.MinQuantity, tiers[i-1].MinQuantity)
		}
	}

	copied := make([]Tier, len(tiers))
	copy(copied, tiers)
	return &Table{tiers: copied}, nil
}

// FromConfig builds the classic three-tier table: base below tier1Min,
// tier1 in [tier1Min, tier2Min), tier2 from tier2Min upwards.
func FromConfig(base, tier1 decimal.Decimal, tier1Min int, tier2 decimal.Decimal, tier2Min int) (*Table, error) {
	return NewTable(
		Tier{MinQuantity: 0, Price: base},
		Tier{MinQuantity: tier1Min, Price: tier1},
		Tier{MinQuantity: tier2Min, Price: tier2},
	)
}

// UnitPrice returns the per-unit price for an order of q units.
// A quantity of zero is priced at the base tier.
func (t *Table) UnitPrice(q int) decimal.Decimal {
	price := t.tiers[0].Price
	for _, tier := range t.tiers[1:] {
		if q < tier.MinQuantity {
			break
		}
		price = tier.Price
	}
	return price
}

// NextTier returns the next threshold above q and its price, or nil when
// q already qualifies for the highest tier.
func (t *Table) NextTier(q int) *TierInfo {
	for _, tier := range t.tiers {
		if tier.MinQuantity > q {
			return &TierInfo{Threshold: tier.MinQuantity, Price: tier.Price}
		}
	}
	return nil
}

// Quote prices q units and reports how many more are needed for the next
// discount.
func (t *Table) Quote(q int) Quote {
	unit := t.UnitPrice(q)
	quote := Quote{
		Quantity:  q,
		UnitPrice: unit,
		Subtotal:  unit.Mul(decimal.NewFromInt(int64(q))),
		Next:      t.NextTier(q),
	}
	if quote.Next != nil {
		quote.AddForNext = quote.Next.Threshold - q
	}
	return quote
}

// Tiers returns a copy of the tier table.
func (t *Table) Tiers() []Tier {
	out := make([]Tier, len(t.tiers))
	copy(out, t.tiers)
	return out
}
