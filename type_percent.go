package portfolio

import "fmt"

type Percent float64

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" {
		return "-"
	}
	return res
}

// IsZero reports whether p is (within floating tolerance) zero weight.
func (p Percent) IsZero() bool { return p.Equal(0) }

// Ratio returns p expressed as a fraction of the total, i.e. p/total. It
// returns 0 if total is zero, leaving the caller (the rebalance node, §4.4)
// to decide how to handle an all-zero weight set.
func (p Percent) Ratio(total Percent) float64 {
	if total == 0 {
		return 0
	}
	return float64(p) / float64(total)
}

// Scale multiplies p by a plain factor, used by the today/lastClose equity
// adjustment and by BearOrDefault.
func (p Percent) Scale(factor float64) Percent { return Percent(float64(p) * factor) }
