package roots

import "math"

// SolveQuadratic returns the two roots of a·x² + b·x + c.
//
// Real roots use the cancellation-free pair of quadratic formulas, complex
// roots come back as a conjugate pair with the positive imaginary part first.
// When a == 0 the single root of the linear equation is returned as the first
// root and the second is zero.
func SolveQuadratic(a, b, c float64) (r1r, r1i, r2r, r2i float64, err error) {
	if a == 0 {
		if b == 0 {
			return 0, 0, 0, 0, ErrBadPolynomial
		}
		return -c / b, 0, 0, 0, nil
	}

	disc := b*b - 4*a*c
	if disc >= 0 {
		//  -b ± sqrt(disc)         2c
		//  --------------- = ---------------
		//        2a           -b ∓ sqrt(disc)
		var y float64
		if b < 0 {
			y = -b + math.Sqrt(disc)
		} else {
			y = -b - math.Sqrt(disc)
		}
		if y == 0 {
			// b == 0 and c == 0: double root at the origin
			return 0, 0, 0, 0, nil
		}
		if b < 0 {
			return y / (2 * a), 0, (2 * c) / y, 0, nil
		}
		return (2 * c) / y, 0, y / (2 * a), 0, nil
	}

	den := 2 * a
	r1r = -b / den
	r1i = math.Sqrt(-disc) / den
	return r1r, r1i, r1r, -r1i, nil
}
