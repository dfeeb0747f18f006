package engine

/*------------------------------------------------------------------
 *
 * Purpose:	Estimate the fundamental period of the most recent
 *		analysis window: windowed copy → forward FFT → power
 *		spectrum with a high-frequency rolloff → inverse FFT
 *		(autocorrelation) → peak search with sub-sample
 *		refinement by linear regression on the derivative.
 *
 *		Runs once every four fragments. Returns a period in
 *		internal samples, or 0 for "unvoiced".
 *
 *------------------------------------------------------------------*/

import "math"

// pitchEstimator owns the FFT plan and scratch buffers for one
// engine instance. Every buffer is sized at construction; estimate
// never allocates.
type pitchEstimator struct {
	cfg  Config
	tab  tables
	plan *rfftPlan

	tdata []float64    // time-domain scratch, len FFTLen
	fdata []complex128 // frequency-domain scratch, len FFTLen/2+1
}

func newPitchEstimator(cfg Config, tab tables) *pitchEstimator {
	return &pitchEstimator{
		cfg:   cfg,
		tab:   tab,
		plan:  newRFFTPlan(cfg.FFTLen),
		tdata: make([]float64, cfg.FFTLen),
		fdata: make([]complex128, cfg.FFTLen/2+1),
	}
}

// estimate runs the pitch detector against the ring buffer's most
// recent fftlen internal samples, ending at the current write index.
// It returns the estimated period in internal samples, or 0 if the
// fragment is judged unvoiced.
func (p *pitchEstimator) estimate(r *ring) float64 {
	cfg := p.cfg
	stride := 1
	if cfg.Upsamp {
		stride = 2
	}

	// 1. Windowed copy, ending at the most recent sample.
	j := r.index
	k := r.size - 1
	for i := 0; i < cfg.FFTLen; i++ {
		p.tdata[i] = p.tab.twind[i] * r.buf[j&k]
		j += stride
	}

	// 2. Forward FFT.
	p.plan.forward(p.fdata, p.tdata)

	// 3. Power spectrum with high-frequency rolloff; Nyquist bin zeroed.
	h := cfg.FFTLen / 2
	f := float64(cfg.Fsamp) / (float64(cfg.FFTLen) * 8000.0)
	for i := 0; i < h; i++ {
		re, im := real(p.fdata[i]), imag(p.fdata[i])
		m := float64(i) * f
		p.fdata[i] = complex((re*re+im*im)/(1+m*m), 0)
	}
	p.fdata[h] = 0

	// 4. Inverse FFT gives the autocorrelation.
	p.plan.inverse(p.tdata, p.fdata)

	// 5. Normalise by total power and the window's own autocorrelation bias.
	m := p.tdata[0] + 1e-10
	for i := 0; i < h; i++ {
		p.tdata[i] /= m * p.tab.wcorr[i]
	}
	m /= 3.0

	// 6. Silence gate: below -50 dBFS-equivalent, call it unvoiced.
	if m < 1e-5 {
		return 0
	}

	// 7. Zero-crossing check: reject pure noise with no low-lag negative lobe.
	ifmax, ifmin := cfg.Ifmax, cfg.Ifmin
	i := 0
	for i < ifmax/2 && p.tdata[i] > 0 {
		i++
	}
	if i <= ifmin/2 {
		return 0
	}

	// 8. Peak scan with sub-sample refinement.
	var im, ym, am float64
	ym = 0.3
	y := p.tdata[i-1]
	z := p.tdata[i]
	for i < ifmax {
		x := y
		y = z
		z = p.tdata[i+1]
		if y > ym && y > x && y > z {
			di := findPeakOffset(p.tdata, i, ifmin/4)
			if math.Abs(di) > float64(ifmin)/4 {
				i++
				continue
			}
			i1 := float64(i) + di
			bin := int(float64(cfg.FFTLen)/i1 + 0.5)
			y1 := p.tdata[int(i1+0.5)]
			a1 := real(p.fdata[bin]) / m

			if a1 < 1e-4 {
				i++
				continue
			}
			if im != 0 && a1/am < 1e-2 {
				i++
				continue
			}
			im, ym, am = i1, y1, a1
		}
		i++
	}

	// 9. Final gate on autocorrelation strength.
	if ym < 0.6 {
		return 0
	}
	return im
}

// findPeakOffset refines a candidate peak at index k by linear
// regression on the first derivative over a window of n samples on
// either side, returning the sub-sample offset from k.
func findPeakOffset(y []float64, k, n int) float64 {
	var sy1, sx2, sxy float64
	for i := -n; i < n; i++ {
		x := float64(i) + 0.5
		d := y[k+i] - y[k+i+1]
		sy1 += d
		sx2 += x * x
		sxy += x * d
	}
	return -0.5 * (sy1 * sx2) / (float64(n) * sxy)
}
