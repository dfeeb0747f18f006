package engine

/*------------------------------------------------------------------
 *
 * Purpose:	Read the ring buffer at a variable rate with cubic
 *		interpolation, and jump forward or back by whole pitch
 *		periods - crossfaded over one fragment - to keep the
 *		read pointer trailing the write pointer by a constant
 *		latency without ever catching up to it.
 *
 *		Jumps are decided once per fragment, at the boundary
 *		between fragments; interpolation runs every sample.
 *		Both live here because the two are never meaningfully
 *		separable: the crossfade state (xfade, rindex2) is
 *		produced by the jump decision and consumed sample by
 *		sample until the fragment ends.
 *
 *------------------------------------------------------------------*/

import "math"

type reader struct {
	rindex1 float64 // primary read position, internal samples
	rindex2 float64 // secondary read position while crossfading
	xfade   bool
}

func newReader(latency int) *reader {
	return &reader{rindex1: float64(latency)}
}

// cubic is the four-point Hermite interpolator: Catmull-Rom weighted
// so a zero-offset read (a == 0) returns v1, the second tap, exactly.
func cubic(v0, v1, v2, v3, a float64) float64 {
	b := 1 - a
	c := a * b
	return (1+1.5*c)*(v1*b+v2*a) - 0.5*c*(v0*b+v1+v2+v3*a)
}

// step advances the reader by n output samples at rate dr (internal
// samples per output sample), writing into out[0:n]. xffunc indexes
// the crossfade ramp starting at fragment offset fi; it is only
// consulted while r.xfade is set.
func (r *reader) step(buf *ring, dr float64, xffunc []float64, fi, n int, out []float64) {
	if r.xfade {
		for i := 0; i < n; i++ {
			v0, v1, v2, v3, a := buf.at(r.rindex1)
			u1 := cubic(v0, v1, v2, v3, a)
			w0, w1, w2, w3, b := buf.at(r.rindex2)
			u2 := cubic(w0, w1, w2, w3, b)

			v := xffunc[fi+i]
			out[i] = (1-v)*u1 + v*u2

			r.rindex1 = wrapIndex(r.rindex1+dr, float64(buf.size))
			r.rindex2 = wrapIndex(r.rindex2+dr, float64(buf.size))
		}
		return
	}
	for i := 0; i < n; i++ {
		v0, v1, v2, v3, a := buf.at(r.rindex1)
		out[i] = cubic(v0, v1, v2, v3, a)
		r.rindex1 = wrapIndex(r.rindex1+dr, float64(buf.size))
	}
}

func wrapIndex(v, size float64) float64 {
	if v >= size {
		return v - size
	}
	return v
}

// planJump is the once-per-fragment decision: does the read pointer
// need to jump by a whole number of pitch periods to stay within
// reach of the write pointer, and if so crossfaded from where. If the
// previous fragment was
// crossfading, the faded-in position becomes current; then a new
// jump is armed if the read pointer has drifted too close to, or too
// far behind, the write pointer.
func (r *reader) planJump(cfg Config, cycle float64, writeIndex, latency int) {
	if r.xfade {
		r.rindex1 = r.rindex2
	}

	if cycle < 1 {
		cycle = float64(cfg.Frsize)
	}
	periods := math.Ceil(float64(cfg.Frsize) / cycle)
	dr := cycle * periods
	if cfg.Upsamp {
		dr *= 2
	}

	ns := float64(cfg.Frsize)*2.2 + 3

	size := float64(cfg.Ipsize)
	rt := float64(writeIndex - latency)
	if rt < 0 {
		rt += size
	}

	d1 := r.rindex1 - rt
	if d1 > size/2 {
		d1 -= size
	} else if d1 < -size/2 {
		d1 += size
	}

	r.xfade = false
	switch {
	case d1 > dr/2 || d1+ns >= float64(latency):
		r.xfade = true
		r.rindex2 = r.rindex1 - dr
		if r.rindex2 < 0 {
			r.rindex2 += size
		}
	case d1 < -dr/2:
		r.xfade = true
		r.rindex2 = r.rindex1 + dr
		if r.rindex2 >= size {
			r.rindex2 -= size
		}
	}
}
