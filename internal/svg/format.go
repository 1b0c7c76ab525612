package svg

import (
	"fmt"
	"math"
	"strconv"
)

// Num formats a coordinate with at most three decimals.
func Num(v float64) string {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// Translate formats a transform="translate(x,y)" value.
func Translate(x, y float64) string {
	return fmt.Sprintf("translate(%s,%s)", Num(x), Num(y))
}
