package engine

/*------------------------------------------------------------------
 *
 * Purpose:	Circular buffer of the most recent internal-rate
 *		samples, with three guard samples past the end that
 *		always mirror the first three. A cubic interpolator
 *		can then read at any fractional index in [0, Ipsize)
 *		and touch floor(f)..floor(f)+3 without ever checking
 *		for wraparound.
 *
 *------------------------------------------------------------------*/

// ring is the analysis-rate sample history. buf has len Ipsize+3; the
// last three cells mirror buf[0:3] after every write.
type ring struct {
	buf   []float64
	size  int
	index int // next write position, in [0, size)
}

func newRing(size int) *ring {
	return &ring{
		buf:  make([]float64, size+3),
		size: size,
	}
}

// write appends samples starting at index, wrapping as needed, and
// refreshes the guard cells. It never allocates.
func (r *ring) write(samples []float64) {
	for _, s := range samples {
		r.buf[r.index] = s
		r.index++
		if r.index == r.size {
			r.index = 0
		}
	}
	r.buf[r.size+0] = r.buf[0]
	r.buf[r.size+1] = r.buf[1]
	r.buf[r.size+2] = r.buf[2]
}

// at returns the four taps starting at the integer floor of f, for a
// cubic interpolator, plus the fractional remainder.
func (r *ring) at(f float64) (v0, v1, v2, v3, frac float64) {
	i := int(f)
	frac = f - float64(i)
	return r.buf[i], r.buf[i+1], r.buf[i+2], r.buf[i+3], frac
}
