package engine

/*------------------------------------------------------------------
 *
 * Purpose:	1:2 polyphase upsampler used when the host rate is
 *		below 64 kHz. Shaped after the SILK
 *		sinc resampler in thesyncim/gopus (silk/resample_sinc.go):
 *		a windowed-sinc kernel split into per-phase filters,
 *		run over a short history buffer so it can be called
 *		fragment-by-fragment without discontinuities at the
 *		boundaries.
 *
 *		No ecosystem package in this codebase's dependency
 *		surface exposes a rational polyphase resampler — gopus
 *		hand-writes its own rather than importing one, so this
 *		does too (see DESIGN.md).
 *
 *------------------------------------------------------------------*/

import "math"

const upsampleTaps = 24 // taps per phase, even, centred kernel

// upsampler2x doubles the sample rate with a windowed-sinc polyphase
// filter. It is primed at construction with taps/2 zero samples. Its
// output trails its input by about taps/2 input samples; the engine
// does not compensate for that delay.
type upsampler2x struct {
	taps    int
	kernel  [2][]float64 // kernel[phase][tap]
	history []float64    // last `taps` input samples, oldest first
}

func newUpsampler2x() *upsampler2x {
	u := &upsampler2x{
		taps:    upsampleTaps,
		history: make([]float64, upsampleTaps),
	}
	u.buildKernel()
	u.prime()
	return u
}

func (u *upsampler2x) buildKernel() {
	half := u.taps / 2
	const beta = 7.0 // Kaiser window parameter, medium quality
	for phase := 0; phase < 2; phase++ {
		k := make([]float64, u.taps)
		// Phase 0 interpolates half an input sample before phase 1,
		// so each output pair comes out in time order.
		offset := float64(1-phase) / 2.0
		var sum float64
		for tap := 0; tap < u.taps; tap++ {
			x := float64(tap-half) + offset
			var sinc float64
			if math.Abs(x) < 1e-9 {
				sinc = 1.0
			} else {
				sinc = math.Sin(math.Pi*x) / (math.Pi * x)
			}
			n := float64(tap)/float64(u.taps-1)*2.0 - 1.0
			k[tap] = sinc * kaiserWindow(n, beta)
			sum += k[tap]
		}
		if sum != 0 {
			for tap := range k {
				k[tap] /= sum
			}
		}
		u.kernel[phase] = k
	}
}

func kaiserWindow(n, beta float64) float64 {
	if n < -1 || n > 1 {
		return 0
	}
	return besselI0(beta*math.Sqrt(1-n*n)) / besselI0(beta)
}

// besselI0 is the zeroth-order modified Bessel function of the first
// kind, via its power series (converges quickly for the beta values
// used by an audio window).
func besselI0(x float64) float64 {
	sum := 1.0
	term := 1.0
	halfX := x / 2
	for k := 1; k < 25; k++ {
		term *= (halfX * halfX) / float64(k*k)
		sum += term
		if term < 1e-15*sum {
			break
		}
	}
	return sum
}

// prime feeds taps/2 zero samples through the filter. The history
// starts zero-filled, so this leaves the filter state unchanged; the
// group delay inherent in a causal centred-sinc kernel remains.
func (u *upsampler2x) prime() {
	zeros := make([]float64, u.taps/2)
	out := make([]float64, 2*len(zeros))
	u.process(zeros, out)
}

// process reads len(in) input samples and writes 2*len(in) output
// samples into out, which must be sized accordingly. It does not
// allocate.
func (u *upsampler2x) process(in, out []float64) {
	for i, x := range in {
		copy(u.history, u.history[1:])
		u.history[len(u.history)-1] = x

		for phase := 0; phase < 2; phase++ {
			var acc float64
			k := u.kernel[phase]
			for t := 0; t < u.taps; t++ {
				acc += k[t] * u.history[t]
			}
			out[2*i+phase] = acc
		}
	}
}
