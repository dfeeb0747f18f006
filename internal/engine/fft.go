package engine

/*------------------------------------------------------------------
 *
 * Purpose:	Thin wrapper around gonum's real FFT so the rest of
 *		the pitch estimator can be written against an
 *		unnormalised forward/inverse convention (every magic
 *		constant in pitch.go - the 1e-5 silence gate, the 1e-4
 *		spectral-support gate - is calibrated against that
 *		convention).
 *
 *		gonum.org/v1/gonum/dsp/fourier normalises the inverse
 *		transform so that Sequence(Coefficients(x)) == x; an
 *		FFTW-style library does not normalise either direction,
 *		so a forward+inverse round trip there scales by fftlen.
 *		rfftPlan.inverse below multiplies gonum's result by fftlen to
 *		match that, so the analysis window's construction and
 *		every threshold downstream can be ported unchanged.
 *
 *------------------------------------------------------------------*/

import "gonum.org/v1/gonum/dsp/fourier"

// rfftPlan holds one gonum FFT plan sized for a fixed transform
// length, reused across calls so process() never allocates a plan.
type rfftPlan struct {
	fft *fourier.FFT
	n   int
}

func newRFFTPlan(n int) *rfftPlan {
	return &rfftPlan{fft: fourier.NewFFT(n), n: n}
}

// forward computes the unnormalised real-to-complex transform.
func (p *rfftPlan) forward(dst []complex128, seq []float64) []complex128 {
	return p.fft.Coefficients(dst, seq)
}

// inverse computes the unnormalised complex-to-real transform,
// undoing gonum's built-in 1/n so the result matches the reference
// implementation's raw (FFTW) convention.
func (p *rfftPlan) inverse(dst []float64, coef []complex128) []float64 {
	out := p.fft.Sequence(dst, coef)
	n := float64(p.n)
	for i := range out {
		out[i] *= n
	}
	return out
}
