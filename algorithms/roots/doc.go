// Package roots finds the real and complex roots of real polynomials with the
// Lin-Bairstow method.
//
// Bairstow peels one real quadratic factor x² + p·x + q off the polynomial at a
// time, refining (p, q) with a Newton step on the remainder of a double
// synthetic division, and then deflates. Each factor yields a real pair or a
// complex-conjugate pair, so a polynomial with real coefficients never needs
// complex arithmetic.
//
// Coefficients are given in ascending powers: coeffs[i] multiplies x^i. For
// an LPC predictor A(z) = 1 + a1·z^-1 + ... + aN·z^-N this means the roots are
// the reciprocals of the z-plane poles, which is harmless for formant work
// because both the angle magnitude and |ln r| are invariant under z -> 1/z.
//
// A Bairstow value remembers the roots of the previous call and uses them to
// seed the next search, which is how successive speech frames converge in a
// handful of iterations.
package roots
