package roots

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

var (
	// ErrNoConvergence means a quadratic factor could not be found within
	// MaxTries restarts of MaxIterations Newton steps each.
	ErrNoConvergence = errors.New("roots: quadratic factor did not converge")

	// ErrBadPolynomial reports a polynomial whose order does not match the
	// solver or whose leading coefficients vanish.
	ErrBadPolynomial = errors.New("roots: degenerate polynomial")
)

const (
	// MaxIterations bounds the Newton refinement of one starting guess.
	MaxIterations = 100
	// MaxTries bounds the number of starting guesses per quadratic factor.
	MaxTries = 100
	// MaxError is the remainder magnitude accepted as a converged factor.
	MaxError = 1e-6

	// MaxOrder is the highest polynomial order the solver accepts.
	MaxOrder = 30

	tinyRoot = 1e-10
)

// overflowLimit keeps products of synthetic-division terms finite
var overflowLimit = 0.5 * math.Sqrt(math.MaxFloat64)

// Bairstow is a Lin-Bairstow solver for polynomials of a fixed order.
// It is not safe for concurrent use.
type Bairstow struct {
	order int
	seed  uint64
	rng   *rand.Rand

	// rr/ri hold the seeds for the next call; after a successful call they
	// are the roots just found.
	rr []float64
	ri []float64

	a []float64
	b []float64
	c []float64
}

// NewBairstow creates a solver for polynomials of the given order. The seed
// drives the random restarts used when a warm start fails to converge.
func NewBairstow(order int, seed uint64) (*Bairstow, error) {
	if order < 1 || order > MaxOrder {
		return nil, fmt.Errorf("%w: order %d outside [1,%d]", ErrBadPolynomial, order, MaxOrder)
	}

	bs := &Bairstow{
		order: order,
		seed:  seed,
		rr:    make([]float64, order+1),
		ri:    make([]float64, order+1),
		a:     make([]float64, order+1),
		b:     make([]float64, order+1),
		c:     make([]float64, order+1),
	}
	bs.Reset()
	return bs, nil
}

// Reset restores the cold-start seeds and restarts the random source, so the
// sequence of results after Reset depends only on the inputs.
func (bs *Bairstow) Reset() {
	bs.rng = rand.New(rand.NewPCG(bs.seed, bs.seed^0x9e3779b97f4a7c15))
	bs.coldSeeds()
}

// coldSeeds spreads the initial guesses around a circle of radius two
func (bs *Bairstow) coldSeeds() {
	x := math.Pi / float64(bs.order+1)
	for i := 0; i <= bs.order; i++ {
		flo := float64(bs.order - i)
		bs.rr[i] = 2.0 * math.Cos((flo+0.5)*x)
		bs.ri[i] = 2.0 * math.Sin((flo+0.5)*x)
	}
}

// Roots returns the real and imaginary parts of the order roots of the
// polynomial Σ coeffs[i]·x^i. Complex roots appear as adjacent conjugate
// pairs. The returned slices are owned by the caller.
func (bs *Bairstow) Roots(coeffs []float64) (rr, ri []float64, err error) {
	if len(coeffs) != bs.order+1 {
		return nil, nil, fmt.Errorf("%w: got %d coefficients for order %d", ErrBadPolynomial, len(coeffs), bs.order)
	}

	copy(bs.a, coeffs)
	if err := bs.solve(); err != nil {
		bs.coldSeeds()
		return nil, nil, err
	}

	rr = make([]float64, bs.order)
	ri = make([]float64, bs.order)
	copy(rr, bs.rr[:bs.order])
	copy(ri, bs.ri[:bs.order])
	return rr, ri, nil
}

func (bs *Bairstow) solve() error {
	a, b := bs.a, bs.b
	rootr, rooti := bs.rr, bs.ri

	ord := bs.order
	for ; ord > 2; ord -= 2 {
		ordm1 := ord - 1
		ordm2 := ord - 2

		// near-zero leftovers from the previous frame underflow below
		if math.Abs(rootr[ordm1]) < tinyRoot {
			rootr[ordm1] = 0
		}
		if math.Abs(rooti[ordm1]) < tinyRoot {
			rooti[ordm1] = 0
		}

		p := -2.0 * rootr[ordm1]
		q := rootr[ordm1]*rootr[ordm1] + rooti[ordm1]*rooti[ordm1]

		found := false
		for try := 0; try < MaxTries && !found; try++ {
			found = bs.refine(ord, &p, &q)
			if !found {
				p = bs.rng.Float64() - 0.5
				q = bs.rng.Float64() - 0.5
			}
		}
		if !found {
			return fmt.Errorf("%w: order %d factor after %d tries", ErrNoConvergence, ord, MaxTries)
		}

		r1r, r1i, r2r, r2i, err := SolveQuadratic(1.0, p, q)
		if err != nil {
			return err
		}
		rootr[ordm1], rooti[ordm1] = r1r, r1i
		rootr[ordm2], rooti[ordm2] = r2r, r2i

		// deflate by the quadratic factor
		for i := 0; i <= ordm2; i++ {
			a[i] = b[i+2]
		}
	}

	if ord == 2 {
		r1r, r1i, r2r, r2i, err := SolveQuadratic(a[2], a[1], a[0])
		if err != nil {
			return err
		}
		rootr[1], rooti[1] = r1r, r1i
		rootr[0], rooti[0] = r2r, r2i
		return nil
	}

	if a[1] != 0 {
		rootr[0] = -a[0] / a[1]
	} else {
		// arbitrary recovery value, far outside the unit circle
		rootr[0] = 100.0
	}
	rooti[0] = 0
	return nil
}

// refine runs Newton steps on (p, q) for the polynomial a[0..ord]. It reports
// whether the remainder fell below MaxError. The quotient is left in b.
func (bs *Bairstow) refine(ord int, p, q *float64) bool {
	a, b, c := bs.a, bs.b, bs.c
	ordm1 := ord - 1

	for it := 0; it < MaxIterations; it++ {
		lim := overflowLimit / (1 + math.Abs(*p) + math.Abs(*q))

		b[ord] = a[ord]
		b[ordm1] = a[ordm1] - *p*b[ord]
		c[ord] = b[ord]
		c[ordm1] = b[ordm1] - *p*c[ord]

		for k := 2; k <= ordm1; k++ {
			mmk := ord - k
			b[mmk] = a[mmk] - *p*b[mmk+1] - *q*b[mmk+2]
			c[mmk] = b[mmk] - *p*c[mmk+1] - *q*c[mmk+2]
			if math.Abs(b[mmk]) > lim || math.Abs(c[mmk]) > lim {
				return false
			}
		}

		b[0] = a[0] - *p*b[1] - *q*b[2]
		if math.Abs(b[0]) > lim {
			return false
		}

		err := math.Abs(b[0]) + math.Abs(b[1])
		if math.IsNaN(err) {
			return false
		}
		if err <= MaxError {
			return true
		}

		den := c[2]*c[2] - c[3]*(c[1]-b[1])
		if den == 0 {
			return false
		}

		*p += (c[2]*b[1] - c[3]*b[0]) / den
		*q += (c[2]*b[0] - b[1]*(c[1]-b[1])) / den
	}

	return false
}
