package depreciation

import "github.com/oikonomos-dev/oikonomos/internal/model"

// Amount returns the depreciation charged in period index (0-based) of a
// schedule spreading base over n periods. Amounts over all n periods sum to
// base exactly. Indices outside [0, n) yield 0.
func Amount(strategy model.Strategy, base int64, n, index int) int64 {
	if n <= 0 || index < 0 || index >= n || base <= 0 {
		return 0
	}
	switch strategy {
	case model.StrategyLinear:
		return linear(base, int64(n), int64(index))
	case model.StrategyAccelerated:
		return accelerated(base, int64(n), int64(index))
	default:
		return 0
	}
}

// linear charges base/n each period; the last period also takes the
// remainder of the division.
func linear(base, n, i int64) int64 {
	per := base / n
	if i == n-1 {
		return per + base%n
	}
	return per
}

// accelerated weights period i by n-i over n(n+1)/2 (sum of years' digits),
// truncating; the last period takes whatever is left of base.
func accelerated(base, n, i int64) int64 {
	denom := n * (n + 1) / 2
	if i < n-1 {
		return base * (n - i) / denom
	}
	var charged int64
	for j := int64(0); j < n-1; j++ {
		charged += base * (n - j) / denom
	}
	return base - charged
}
