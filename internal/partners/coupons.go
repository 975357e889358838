package partners

import (
	"github.com/angelmondragon/partnerz-backend/internal/coupons"
	"github.com/angelmondragon/partnerz-backend/internal/rarity"
)

// DrawReceipt describes a successful draw.
type DrawReceipt struct {
	Coupon  coupons.Coupon `json:"coupon"`
	Price   int64          `json:"price"`
	Balance int64          `json:"balance"`
}

// CreateCoupon adds a coupon with the default rarity to the bank owner offers partner.
func (d *Directory) CreateCoupon(ownerID, partnerID, content string) (coupons.Coupon, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	offered, _, err := d.link(ownerID, partnerID)
	if err != nil {
		return coupons.Coupon{}, err
	}
	return offered.offered.Add(content, d.catalog.Default().Name)
}

func (d *Directory) RemoveCoupon(ownerID, partnerID, couponID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	offered, _, err := d.link(ownerID, partnerID)
	if err != nil {
		return err
	}
	return offered.offered.Remove(couponID)
}

func (d *Directory) EditCoupon(ownerID, partnerID, couponID, content string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	offered, _, err := d.link(ownerID, partnerID)
	if err != nil {
		return err
	}
	return offered.offered.Edit(couponID, content)
}

func (d *Directory) SetCouponRarity(ownerID, partnerID, couponID, rarityName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	offered, _, err := d.link(ownerID, partnerID)
	if err != nil {
		return err
	}
	tier, err := d.catalog.Lookup(rarityName)
	if err != nil {
		return err
	}
	return offered.offered.SetRarity(couponID, tier.Name)
}

// SetRandomCouponPrice sets what partner pays to draw from owner's bank.
// The price is stored on the partner's record.
func (d *Directory) SetRandomCouponPrice(ownerID, partnerID string, price int64) error {
	if price < 0 {
		return ErrInvalidPrice
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	_, drawing, err := d.link(ownerID, partnerID)
	if err != nil {
		return err
	}
	drawing.drawPrice = price
	return nil
}

// DrawCoupon moves one coupon from the offerer's bank into the drawer's earned
// list and charges the drawer the configured price.
func (d *Directory) DrawCoupon(drawerID, offererID string) (DrawReceipt, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	drawing, offering, err := d.link(drawerID, offererID)
	if err != nil {
		return DrawReceipt{}, err
	}
	if offering.offered.Len() == 0 {
		return DrawReceipt{}, coupons.ErrEmptyBank
	}
	if drawing.points < drawing.drawPrice {
		return DrawReceipt{}, ErrInsufficientPoints
	}

	c, err := offering.offered.Draw(d.selector)
	if err != nil {
		return DrawReceipt{}, err
	}
	drawing.points -= drawing.drawPrice
	drawing.earned = append(drawing.earned, c)
	return DrawReceipt{Coupon: c, Price: drawing.drawPrice, Balance: drawing.points}, nil
}

// SendCoupon gives receiver a coupon directly, without a bank entry or a charge.
func (d *Directory) SendCoupon(senderID, receiverID, content string) (coupons.Coupon, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, received, err := d.link(senderID, receiverID)
	if err != nil {
		return coupons.Coupon{}, err
	}
	c, err := coupons.New(content, d.catalog.Default().Name)
	if err != nil {
		return coupons.Coupon{}, err
	}
	received.earned = append(received.earned, c)
	return c, nil
}

// OfferedCoupons lists the bank owner offers partner.
func (d *Directory) OfferedCoupons(ownerID, partnerID string) ([]coupons.Coupon, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	offered, _, err := d.link(ownerID, partnerID)
	if err != nil {
		return nil, err
	}
	return offered.offered.List(), nil
}

// EarnedCoupons lists what memberID drew from or was sent by partnerID.
func (d *Directory) EarnedCoupons(memberID, partnerID string) ([]coupons.Coupon, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	mine, _, err := d.link(memberID, partnerID)
	if err != nil {
		return nil, err
	}
	out := make([]coupons.Coupon, len(mine.earned))
	copy(out, mine.earned)
	return out, nil
}

func (d *Directory) Rarities() []rarity.Rarity {
	return d.catalog.All()
}
