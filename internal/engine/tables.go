package engine

/*------------------------------------------------------------------
 *
 * Purpose:	Precompute the crossfade window, the analysis window,
 *		and the analysis window's autocorrelation, once at
 *		construction. None of process()'s hot path may
 *		allocate, so these live as plain slices sized from
 *		Config and are never touched again after New.
 *
 *------------------------------------------------------------------*/

import "math"

// tables bundles the three precomputed lookup tables the engine needs:
// the crossfade ramp, the analysis window, and that window's own
// autocorrelation (used to undo the window's bias when normalising
// the pitch estimator's autocorrelation output).
type tables struct {
	xffunc []float64 // half raised cosine, len Frsize
	twind  []float64 // raised cosine analysis window, len FFTLen
	wcorr  []float64 // autocorrelation of twind, normalised to 1 at lag 0
}

func newTables(c Config) tables {
	t := tables{
		xffunc: make([]float64, c.Frsize),
		twind:  make([]float64, c.FFTLen),
		wcorr:  make([]float64, c.FFTLen),
	}

	for i := range t.xffunc {
		t.xffunc[i] = 0.5 * (1 - math.Cos(math.Pi*float64(i)/float64(c.Frsize)))
	}

	// Raised cosine window, scaled so the forward transform's missing
	// 1/N normalisation is folded in here instead.
	scale := 2.0 / float64(c.FFTLen)
	for i := range t.twind {
		t.twind[i] = scale * (1 - math.Cos(2*math.Pi*float64(i)/float64(c.FFTLen)))
	}

	plan := newRFFTPlan(c.FFTLen)
	freq := plan.forward(nil, t.twind)

	h := c.FFTLen / 2
	power := make([]complex128, len(freq))
	for i := 0; i < h; i++ {
		re, im := real(freq[i]), imag(freq[i])
		power[i] = complex(re*re+im*im, 0)
	}
	power[h] = 0

	auto := plan.inverse(nil, power)
	lag0 := auto[0] + 1e-10
	for i := range t.wcorr {
		t.wcorr[i] = auto[i] / lag0
	}

	return t
}
