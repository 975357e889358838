// Package coupons holds coupon banks and the policies used to draw from them.
package coupons

import (
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/partnerz-backend/pkg/errors"
)

var (
	ErrInvalidContent = pkgerrors.Define(pkgerrors.CodeValidation, "INVALID_CONTENT", "coupon content can not be empty")
	ErrCouponNotFound = pkgerrors.Define(pkgerrors.CodeNotFound, "COUPON_NOT_FOUND", "there is no coupon corresponding to the given id")
	ErrEmptyBank      = pkgerrors.Define(pkgerrors.CodeStateConflict, "EMPTY_BANK", "partner has no coupons to draw")
)

var newID = uuid.NewString

// Coupon is a content-bearing reward token.
type Coupon struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Rarity  string `json:"rarity"`
}

// New builds a coupon with a fresh identifier.
func New(content, rarity string) (Coupon, error) {
	content, err := normalizeContent(content)
	if err != nil {
		return Coupon{}, err
	}
	return Coupon{ID: newID(), Content: content, Rarity: rarity}, nil
}

func normalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrInvalidContent
	}
	return content, nil
}

// Bank is the ordered set of coupons one member offers one partner.
// It is not safe for concurrent use.
type Bank struct {
	items []Coupon
}

func NewBank() *Bank {
	return &Bank{}
}

// Add appends a new coupon and returns it.
func (b *Bank) Add(content, rarity string) (Coupon, error) {
	c, err := New(content, rarity)
	if err != nil {
		return Coupon{}, err
	}
	b.items = append(b.items, c)
	return c, nil
}

// Put appends an existing coupon as is.
func (b *Bank) Put(c Coupon) {
	b.items = append(b.items, c)
}

func (b *Bank) indexOf(id string) int {
	for i := range b.items {
		if b.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns a copy of the coupon.
func (b *Bank) Find(id string) (Coupon, error) {
	i := b.indexOf(id)
	if i < 0 {
		return Coupon{}, ErrCouponNotFound
	}
	return b.items[i], nil
}

func (b *Bank) Remove(id string) error {
	i := b.indexOf(id)
	if i < 0 {
		return ErrCouponNotFound
	}
	b.take(i)
	return nil
}

// Edit replaces the coupon content. The identifier and rarity are kept.
func (b *Bank) Edit(id, content string) error {
	i := b.indexOf(id)
	if i < 0 {
		return ErrCouponNotFound
	}
	content, err := normalizeContent(content)
	if err != nil {
		return err
	}
	b.items[i].Content = content
	return nil
}

// SetRarity assigns a tier name. Callers resolve the name against the catalog first.
func (b *Bank) SetRarity(id, rarity string) error {
	i := b.indexOf(id)
	if i < 0 {
		return ErrCouponNotFound
	}
	b.items[i].Rarity = rarity
	return nil
}

// Draw removes and returns the coupon picked by sel.
func (b *Bank) Draw(sel Selector) (Coupon, error) {
	if len(b.items) == 0 {
		return Coupon{}, ErrEmptyBank
	}
	return b.take(sel.Pick(b.items)), nil
}

func (b *Bank) take(i int) Coupon {
	c := b.items[i]
	b.items = append(b.items[:i], b.items[i+1:]...)
	return c
}

// List returns the coupons in insertion order.
func (b *Bank) List() []Coupon {
	out := make([]Coupon, len(b.items))
	copy(out, b.items)
	return out
}

func (b *Bank) Len() int {
	return len(b.items)
}
