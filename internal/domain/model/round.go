package model

import "math"

const milliScale = 1000

// Round3 rounds half to even at three decimals. Every published margin and
// mean goes through it.
func Round3(x float64) float64 {
	return math.RoundToEven(x*milliScale) / milliScale
}

// Milli converts a value with at most three decimals to integer thousandths.
func Milli(x float64) int64 {
	return int64(math.Round(x * milliScale))
}

// MeanMilli is the mean of n values whose thousandths sum to sum, rounded
// half to even at three decimals. The quotient of two exact integers is
// correctly rounded, so an exact half-step is never misread.
func MeanMilli(sum int64, n int) float64 {
	return math.RoundToEven(float64(sum)/float64(n)) / milliScale
}
