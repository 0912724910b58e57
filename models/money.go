package models

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Money is a fixed-point currency amount. It is persisted as integer cents
// and serialised to JSON as a decimal string.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps d, rounded to cents.
func NewMoney(d decimal.Decimal) Money {
	return Money{d.Round(2)}
}

// MoneyFromCents builds a Money value from an integer number of cents.
func MoneyFromCents(cents int64) Money {
	return Money{decimal.New(cents, -2)}
}

// Cents returns the amount as integer cents.
func (m Money) Cents() int64 {
	return m.Shift(2).Round(0).IntPart()
}

// MarshalBSONValue stores the amount as an int64 number of cents.
func (m Money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(m.Cents())
}

// UnmarshalBSONValue reads an integer number of cents.
func (m *Money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var cents int64
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&cents); err != nil {
		return fmt.Errorf("decode money: %w", err)
	}
	*m = MoneyFromCents(cents)
	return nil
}
