package engine

/*------------------------------------------------------------------
 *
 * Purpose:	Derive the engine's internal rate and buffer sizes from
 *		the host sample rate.
 *
 *		Three regimes are supported: below 64 kHz the engine
 *		runs its analysis at double the host rate (and the
 *		resampler adapter does the upsampling); 64..128 kHz
 *		and above run at the host rate directly, with larger
 *		buffers at the highest rates so the FFT still covers
 *		a musically useful number of cycles.
 *
 *------------------------------------------------------------------*/

import "fmt"

// Config holds the engine's rate-derived sizing, fixed for the life
// of an Engine. It is computed once in NewConfig and never mutated.
type Config struct {
	Fsamp  int // host sample rate, Hz
	Upsamp bool
	Firate int // internal analysis rate, Hz
	Ipsize int // ring buffer capacity, internal samples
	FFTLen int // analysis window length, internal samples
	Frsize int // fragment size, internal samples
	Ifmin  int // shortest accepted period, internal samples (~1200 Hz)
	Ifmax  int // longest accepted period, internal samples (~75 Hz)
}

// NewConfig derives the sizing table for a given host sample rate. It
// returns an error for rates this engine cannot serve
// without falling outside the intended 75..1200 Hz pitch-detection
// window or without a sane internal-rate/ring-size relationship.
func NewConfig(fsamp int) (Config, error) {
	if fsamp <= 0 {
		return Config{}, fmt.Errorf("engine: sample rate must be positive, got %d", fsamp)
	}

	var c Config
	c.Fsamp = fsamp

	switch {
	case fsamp < 64000:
		c.Upsamp = true
		c.Ipsize = 4096
		c.FFTLen = 2048
		c.Frsize = 128
	case fsamp < 128000:
		c.Upsamp = false
		c.Ipsize = 4096
		c.FFTLen = 4096
		c.Frsize = 256
	default:
		c.Upsamp = false
		c.Ipsize = 8192
		c.FFTLen = 8192
		c.Frsize = 512
	}

	if c.Upsamp {
		c.Firate = 2 * fsamp
	} else {
		c.Firate = fsamp
	}

	c.Ifmin = c.Firate / 1200
	c.Ifmax = c.Firate / 75

	if c.FFTLen != 16*c.Frsize {
		return Config{}, fmt.Errorf("engine: internal invariant broken, fftlen=%d frsize=%d", c.FFTLen, c.Frsize)
	}
	if c.FFTLen > c.Ipsize {
		return Config{}, fmt.Errorf("engine: internal invariant broken, fftlen=%d > ipsize=%d", c.FFTLen, c.Ipsize)
	}
	if c.Ifmin < 4 {
		return Config{}, fmt.Errorf("engine: sample rate %d too low for pitch detection", fsamp)
	}

	return c, nil
}
