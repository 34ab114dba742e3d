// Package currency converts amounts for display. Nothing here is stored.
package currency

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrUnknownCurrency = errors.New("unknown currency")

// Rates are units of each currency per one unit of Base.
type Converter struct {
	Base  string
	Rates map[string]float64
}

func New(base string, rates map[string]float64) *Converter {
	norm := make(map[string]float64, len(rates)+1)
	for code, rate := range rates {
		norm[strings.ToUpper(code)] = rate
	}
	base = strings.ToUpper(base)
	if base == "" {
		base = "USD"
	}
	if _, ok := norm[base]; !ok {
		norm[base] = 1
	}
	return &Converter{Base: base, Rates: norm}
}

func (c *Converter) rate(code string) (float64, error) {
	r, ok := c.Rates[strings.ToUpper(code)]
	if !ok || r <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
	}
	return r, nil
}

// Convert returns amount expressed in to, rounded to cents. An empty from
// means the base currency.
func (c *Converter) Convert(amount float64, from, to string) (float64, error) {
	if from == "" {
		from = c.Base
	}
	fr, err := c.rate(from)
	if err != nil {
		return 0, err
	}
	tr, err := c.rate(to)
	if err != nil {
		return 0, err
	}
	return math.Round(amount/fr*tr*100) / 100, nil
}

func Format(amount float64, code string) string {
	return fmt.Sprintf("%.2f %s", amount, strings.ToUpper(code))
}
