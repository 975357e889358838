// Package rarity holds the read-only catalog of coupon rarity tiers.
package rarity

import (
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/partnerz-backend/pkg/errors"
)

// ErrUnknownRarity is returned when a rarity name is not part of the catalog.
var ErrUnknownRarity = pkgerrors.Define(pkgerrors.CodeNotFound, "UNKNOWN_RARITY", "rarity does not exist")

// DefaultNames lists the tiers used when no catalog is configured, commonest first.
var DefaultNames = []string{"Common", "Rare", "Epic", "Legendary"}

// Rarity is a named tier. Rank starts at 1 for the commonest tier.
type Rarity struct {
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

// Catalog is an ordered, non-empty set of rarity tiers. It is immutable once built.
type Catalog struct {
	tiers  []Rarity
	byName map[string]Rarity
}

// NewCatalog builds a catalog from tier names ordered commonest to rarest.
func NewCatalog(names ...string) (*Catalog, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("rarity catalog requires at least one tier")
	}
	c := &Catalog{
		tiers:  make([]Rarity, 0, len(names)),
		byName: make(map[string]Rarity, len(names)),
	}
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			return nil, fmt.Errorf("rarity names must not be empty")
		}
		if _, dup := c.byName[name]; dup {
			return nil, fmt.Errorf("duplicate rarity %q", name)
		}
		tier := Rarity{Name: name, Rank: len(c.tiers) + 1}
		c.tiers = append(c.tiers, tier)
		c.byName[name] = tier
	}
	return c, nil
}

// Default returns the catalog built from DefaultNames.
func Default() *Catalog {
	c, err := NewCatalog(DefaultNames...)
	if err != nil {
		panic(err)
	}
	return c
}

// All returns the tiers in catalog order.
func (c *Catalog) All() []Rarity {
	out := make([]Rarity, len(c.tiers))
	copy(out, c.tiers)
	return out
}

// Lookup resolves a tier by exact name.
func (c *Catalog) Lookup(name string) (Rarity, error) {
	tier, ok := c.byName[name]
	if !ok {
		return Rarity{}, ErrUnknownRarity
	}
	return tier, nil
}

// Default returns the tier newly created coupons receive.
func (c *Catalog) Default() Rarity {
	return c.tiers[0]
}

// Len reports how many tiers the catalog holds.
func (c *Catalog) Len() int {
	return len(c.tiers)
}
