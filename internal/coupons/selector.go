package coupons

import (
	"math/rand/v2"
	"sync"

	"github.com/angelmondragon/partnerz-backend/internal/rarity"
)

// Selector chooses which coupon a draw hands out. Pick is only called with a
// non-empty slice and must return a valid index into it.
type Selector interface {
	Pick(offered []Coupon) int
}

// NewSource returns a PCG source. A zero seed picks a random one.
func NewSource(seed uint64) rand.Source {
	if seed == 0 {
		return rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newLockedRand(src rand.Source) *lockedRand {
	if src == nil {
		src = NewSource(0)
	}
	return &lockedRand{rng: rand.New(src)}
}

func (r *lockedRand) intN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}

func (r *lockedRand) float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// UniformSelector gives every offered coupon the same chance.
type UniformSelector struct {
	rng *lockedRand
}

func NewUniformSelector(src rand.Source) *UniformSelector {
	return &UniformSelector{rng: newLockedRand(src)}
}

func (s *UniformSelector) Pick(offered []Coupon) int {
	return s.rng.intN(len(offered))
}

// RarityWeightedSelector weights each coupon by 1/rank, so a tier of rank 2 is
// half as likely as a tier of rank 1. Coupons with unknown tiers weigh as the
// commonest tier.
type RarityWeightedSelector struct {
	catalog *rarity.Catalog
	rng     *lockedRand
}

func NewRarityWeightedSelector(catalog *rarity.Catalog, src rand.Source) *RarityWeightedSelector {
	return &RarityWeightedSelector{catalog: catalog, rng: newLockedRand(src)}
}

func (s *RarityWeightedSelector) weight(c Coupon) float64 {
	tier, err := s.catalog.Lookup(c.Rarity)
	if err != nil {
		return 1
	}
	return 1 / float64(tier.Rank)
}

func (s *RarityWeightedSelector) Pick(offered []Coupon) int {
	var total float64
	for _, c := range offered {
		total += s.weight(c)
	}
	target := s.rng.float64() * total
	for i, c := range offered {
		target -= s.weight(c)
		if target < 0 {
			return i
		}
	}
	return len(offered) - 1
}
