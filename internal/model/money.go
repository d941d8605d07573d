package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Money is an amount in US cents.  Every price in the system is stored and
// computed as integer cents; the JSON form is a decimal dollar amount with two
// fraction digits so clients see 61.06 rather than 6106.
type Money int64

// Cents is a readability helper for literals (model.Cents(11200)).
func Cents(c int64) Money { return Money(c) }

// Dollars renders the amount as "61.06".
func (m Money) Dollars() string {
	sign := ""
	c := int64(m)
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

func (m Money) String() string { return "$" + m.Dollars() }

func (m Money) MarshalJSON() ([]byte, error) { return []byte(m.Dollars()), nil }

// UnmarshalJSON accepts a JSON number or string with at most two decimals.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	c, err := ParseDollars(s)
	if err != nil {
		return err
	}
	*m = c
	return nil
}

// ParseDollars converts "32", "32.5" or "32.50" to cents without going
// through float64.
func ParseDollars(s string) (Money, error) {
	s = strings.TrimSpace(s)
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" || len(frac) > 2 || strings.HasPrefix(whole, "-") {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return Money(w*100 + f), nil
}
