package engine

/*------------------------------------------------------------------
 *
 * Purpose:	Turn a detected period into a pitch-correction target:
 *		find the nearest enabled semitone relative to the
 *		reference pitch, apply a small bias toward the
 *		currently-held note so a pitch hovering between two
 *		adjacent notes doesn't chatter between them, and smooth the
 *		resulting error with a one-pole IIR so corrections
 *		glide rather than snap.
 *
 *------------------------------------------------------------------*/

import "math"

// noteTracker holds the hysteresis state across calls: which note was
// last selected and the smoothed pitch error, in fractions of an
// octave.
type noteTracker struct {
	firate   float64
	lastNote int
	error    float64
}

func newNoteTracker(firate int) *noteTracker {
	return &noteTracker{
		firate:   float64(firate),
		lastNote: -1,
	}
}

// noteParams are the control-thread-owned tuning knobs update reads;
// they arrive as plain values taken from an atomic snapshot, never
// pointers into the control surface itself.
type noteParams struct {
	refPitch float64
	noteBias float64
	corrFilt float64
	mask     uint32 // effective note mask, bit i enables the semitone i-9 semitones from A
}

// update derives a new smoothed pitch error from a freshly detected
// period; callers only invoke this when the pitch estimator actually
// found one. An empty mask means no semitone is enabled at all: the
// error resets to zero and the note lock is released.
func (n *noteTracker) update(cycle float64, p noteParams) float64 {
	if p.mask == 0 {
		n.error = 0
		n.lastNote = -1
		return n.error
	}

	f := math.Log2(n.firate / (cycle * p.refPitch))

	im := -1
	am := 1.0
	var dm float64
	for i := 0; i < 12; i++ {
		if p.mask&(1<<uint(i)) == 0 {
			continue
		}
		d := f - float64(i-9)/12.0
		d -= math.Floor(d + 0.5)
		a := math.Abs(d)
		if i == n.lastNote {
			a -= p.noteBias
		}
		if a < am {
			am = a
			dm = d
			im = i
		}
	}
	if im < 0 {
		return n.error
	}

	if n.lastNote == im {
		n.error += p.corrFilt * (dm - n.error)
	} else {
		n.error = dm
		n.lastNote = im
	}
	return n.error
}

// errorSemitones reports the current smoothed error in semitones,
// matching the 12x scaling the control surface's error readout uses.
func (n *noteTracker) errorSemitones() float64 {
	return 12.0 * n.error
}

// currentNote returns the currently locked note, 0-11 with 9 == A,
// or -1 if no note is locked.
func (n *noteTracker) currentNote() int {
	return n.lastNote
}

// resetError is called after several consecutive unvoiced fragments:
// the note lock is kept, but the correction error is forced to zero
// so a dropout doesn't leave the pitch bent when voicing resumes.
func (n *noteTracker) resetError() {
	n.error = 0
}

// clearLock drops the current note lock, removing its hysteresis
// bias, without touching the error value.
func (n *noteTracker) clearLock() {
	n.lastNote = -1
}
