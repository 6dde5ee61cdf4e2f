package easing

import "math"

func geometricPowers(spec Spec) Func {
	// base returns d such that the waits (d-1)*d^k add up to the total.
	base := func(n int, inOut bool) float64 {
		total := totalTime(spec, n)
		if n == 1 {
			return total + 1
		}
		if !inOut {
			return math.Pow(total+1, 1/float64(n))
		}
		half := (n + 1) / 2
		// Odd n counts the smallest middle wait once instead of twice.
		// Solve the even case and correct the total by that missing term
		// in one analytic step.
		if n%2 == 1 {
			total += math.Pow(0.5*total+1, 1/float64(half)) - 1
		}
		return math.Pow(0.5*total+1, 1/float64(half))
	}

	switch spec.Easing {
	case In:
		return func(s, n int) float64 {
			d := base(n, false)
			return (d - 1) * math.Pow(d, float64(n-s))
		}
	case Out:
		return func(s, n int) float64 {
			d := base(n, false)
			return (d - 1) * math.Pow(d, float64(s-1))
		}
	default:
		return func(s, n int) float64 {
			d := base(n, true)
			return (d - 1) * math.Pow(d, float64(mirrorWeight(s, n)-1))
		}
	}
}
