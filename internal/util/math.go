package util

// CoerceInt returns the given value, limited to the range [min, max]
func CoerceInt(value int, min int, max int) int {
	if value > max {
		return max
	}
	if value < min {
		return min
	}
	return value
}
