package lot

import (
	"errors"
	"strings"
	"time"

	"parking-lot-manager/internal/pkg/errs"
	"parking-lot-manager/internal/pkg/patch"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyLotName     = errs.Mark(errors.New("lot name cannot be empty"), errs.ErrInvalidArgument)
	ErrLotNameTooLong   = errs.Mark(errors.New("lot name is too long (max 128 characters)"), errs.ErrInvalidArgument)
	ErrNonPositivePrice = errs.Mark(errors.New("price must be greater than zero"), errs.ErrInvalidArgument)
	ErrInvalidCapacity  = errs.Mark(errors.New("capacity must be greater than zero"), errs.ErrInvalidArgument)
)

const (
	MaxLotNameLength = 128
	MaxCapacity      = 10000
)

type Lot struct {
	id        int64
	name      string
	price     decimal.Decimal
	address   string
	pin       string
	capacity  int
	createdAt time.Time
	updatedAt time.Time
}

func NewLot(name string, price decimal.Decimal, address, pin string, capacity int, now time.Time) (*Lot, error) {
	l := &Lot{
		name:      strings.TrimSpace(name),
		price:     price.Round(2),
		address:   strings.TrimSpace(address),
		pin:       strings.TrimSpace(pin),
		capacity:  capacity,
		createdAt: now,
		updatedAt: now,
	}
	if err := l.validate(); err != nil {
		return nil, err
	}
	return l, nil
}

func ReconstructLot(
	id int64,
	name string,
	price decimal.Decimal,
	address, pin string,
	capacity int,
	createdAt, updatedAt time.Time,
) *Lot {
	return &Lot{
		id:        id,
		name:      name,
		price:     price,
		address:   address,
		pin:       pin,
		capacity:  capacity,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Patch holds the optional fields of an update; nil means unchanged.
type Patch struct {
	Name     *string
	Price    *decimal.Decimal
	Address  *string
	Pin      *string
	Capacity *int
}

// CapacityChange describes how the spot inventory must follow a capacity edit.
type CapacityChange struct {
	From int
	To   int
}

func (c CapacityChange) Grows() bool   { return c.To > c.From }
func (c CapacityChange) Shrinks() bool { return c.To < c.From }

// Apply validates and applies p. The caller is responsible for reconciling
// spots according to the returned CapacityChange.
func (l *Lot) Apply(p Patch, now time.Time) (CapacityChange, error) {
	next := *l
	next.name = patch.Text(p.Name, l.name)
	next.price = patch.Coalesce(p.Price, l.price).Round(2)
	next.address = patch.Text(p.Address, l.address)
	next.pin = patch.Text(p.Pin, l.pin)
	next.capacity = patch.Coalesce(p.Capacity, l.capacity)
	if err := next.validate(); err != nil {
		return CapacityChange{}, err
	}
	change := CapacityChange{From: l.capacity, To: next.capacity}
	next.updatedAt = now
	*l = next
	return change, nil
}

func (l *Lot) validate() error {
	if l.name == "" {
		return ErrEmptyLotName
	}
	if len(l.name) > MaxLotNameLength {
		return ErrLotNameTooLong
	}
	if !l.price.IsPositive() {
		return ErrNonPositivePrice
	}
	if l.capacity <= 0 || l.capacity > MaxCapacity {
		return ErrInvalidCapacity
	}
	return nil
}

func (l *Lot) AssignID(id int64) { l.id = id }

func (l *Lot) ID() int64              { return l.id }
func (l *Lot) Name() string           { return l.name }
func (l *Lot) Price() decimal.Decimal { return l.price }
func (l *Lot) Address() string        { return l.address }
func (l *Lot) Pin() string            { return l.pin }
func (l *Lot) Capacity() int          { return l.capacity }
func (l *Lot) CreatedAt() time.Time   { return l.createdAt }
func (l *Lot) UpdatedAt() time.Time   { return l.updatedAt }
