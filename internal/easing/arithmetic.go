package easing

import "math"

// powerSum returns 1^p + 2^p + ... + n^p for p in 0..3.
func powerSum(p, n int) float64 {
	x := float64(n)
	switch p {
	case 0:
		return x
	case 1:
		return x * (x + 1) / 2
	case 2:
		return x * (x + 1) * (2*x + 1) / 6
	default:
		return x * x * (x + 1) * (x + 1) / 4
	}
}

func arithmeticPowers(spec Spec) Func {
	p := spec.Power
	pow := func(k int) float64 { return math.Pow(float64(k), float64(p)) }

	// delta is the wait of a unit weight so that all weights add up to the
	// configured total.
	delta := func(n int, inOut bool) float64 {
		if !inOut {
			return totalTime(spec, n) / powerSum(p, n)
		}
		// n=5: 3 2 1 2 3, n=6: 3 2 1 1 2 3. Odd n shares the middle
		// weight 1 between both halves.
		parts := 2 * powerSum(p, (n+1)/2)
		if n%2 == 1 {
			parts--
		}
		return totalTime(spec, n) / parts
	}

	switch spec.Easing {
	case In:
		return func(s, n int) float64 { return delta(n, false) * pow(n-s+1) }
	case Out:
		return func(s, n int) float64 { return delta(n, false) * pow(s) }
	default:
		return func(s, n int) float64 {
			return delta(n, true) * pow(mirrorWeight(s, n))
		}
	}
}

// mirrorWeight returns the in-out weight of step s: counting down to 1 over
// the first half and back up over the second.
func mirrorWeight(s, n int) int {
	half := (n + 1) / 2
	if s > half {
		s = n - s + 1
	}
	return half - s + 1
}
