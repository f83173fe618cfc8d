package stellar

import (
	"fmt"

	"github.com/cockroachdb/apd"
)

// StroopsPerLumen is the number of stroops in one unit of an asset.
const StroopsPerLumen = 10000000

const amountScale = -7

var amountContext = apd.BaseContext.WithPrecision(34)

// FormatAmount renders stroops as a decimal with 7 places.
func FormatAmount(stroops int64) string {
	return apd.New(stroops, amountScale).Text('f')
}

// ParseAmount parses a decimal such as "100.0000000" into stroops. More
// than 7 significant decimal places is an error.
func ParseAmount(s string) (int64, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	var q apd.Decimal
	cond, err := amountContext.Quantize(&q, d, amountScale)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	if cond.Inexact() {
		return 0, fmt.Errorf("%w: %q has more than 7 decimal places", ErrInvalidAmount, s)
	}
	q.Exponent = 0
	n, err := q.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	return n, nil
}
