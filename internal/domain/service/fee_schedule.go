package service

// PlatformFee returns the flat service fee charged on top of a quotation
// price. The schedule is a pure lookup table with no rounding.
func PlatformFee(price float64) float64 {
	switch {
	case price < 500:
		return 49
	case price < 1000:
		return 69
	case price < 5000:
		return 99
	case price < 10000:
		return 199
	case price < 20000:
		return 299
	case price <= 30000:
		return 399
	default:
		return 499
	}
}

// TotalDue is the amount the buyer must settle: price plus platform fee.
func TotalDue(price float64) float64 {
	return price + PlatformFee(price)
}
