package currency

import (
	"database/sql/driver"
	"errors"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyRUB Currency = "RUB"
)

var ErrInvalidCurrency = errors.New("invalid currency")

func (c Currency) String() string {
	return string(c)
}

func (c Currency) Value() (driver.Value, error) {
	return c.String(), nil
}

// Exponent returns the number of minor-unit digits for the currency.
func (c Currency) Exponent() int32 {
	return 2
}

// RoundingTolerance returns half of the currency's minor unit, the largest
// difference two amounts may have and still be considered equal.
func (c Currency) RoundingTolerance() decimal.Decimal {
	return decimal.New(5, -c.Exponent()-1)
}

func ParseCurrency(s string) (Currency, error) {
	switch s {
	case CurrencyUSD.String():
		return CurrencyUSD, nil
	case CurrencyEUR.String():
		return CurrencyEUR, nil
	case CurrencyGBP.String():
		return CurrencyGBP, nil
	case CurrencyRUB.String():
		return CurrencyRUB, nil
	default:
		return "", ErrInvalidCurrency
	}
}
