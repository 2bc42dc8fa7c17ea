package domain

import (
	"fmt"
	"math"
	"strconv"
)

// Money is an amount in cents. It renders with exactly two decimals.
type Money int64

// MoneyFromFloat rounds a decimal amount to the nearest cent.
func MoneyFromFloat(v float64) Money {
	return Money(math.Round(v * 100))
}

func (m Money) Cents() int64 {
	return int64(m)
}

func (m Money) Float() float64 {
	return float64(m) / 100
}

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	*m = MoneyFromFloat(f)
	return nil
}
