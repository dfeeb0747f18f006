package engine

/*------------------------------------------------------------------
 *
 * Purpose:	The boundary between the control thread (GUI, MIDI,
 *		preset loader, persistence) and the audio thread. Every
 *		field here is read with a single atomic load inside
 *		Process and written with a single atomic store from
 *		setters called off the audio thread - never a mutex,
 *		so the audio thread can never block behind the control
 *		thread.
 *
 *------------------------------------------------------------------*/

import (
	"math"
	"sync/atomic"
)

// params is the snapshot of tunable state Process reads once per
// call. It is built fresh from the atomic fields below so a reader
// never observes a half-updated combination of values.
type params struct {
	refPitch float64
	noteBias float64
	corrFilt float64
	corrGain float64
	corrOffs float64
	lowLat   bool
	effMask  uint32
}

// control holds the atomic control-surface state. Floats are stored
// as their bit pattern in a uint64 so the loads and stores stay
// lock-free; atomic.Value would box and allocate.
type control struct {
	refPitch atomic.Uint64
	noteBias atomic.Uint64
	corrFilt atomic.Uint64
	corrGain atomic.Uint64
	corrOffs atomic.Uint64
	lowLat   atomic.Bool

	keyboardMask atomic.Uint32
	midiMask     atomic.Uint32
	notebits     atomic.Uint32 // sticky "which notes sounded" accumulator

	curNote    atomic.Int32 // currently locked note, -1 when none is locked
	voiced     atomic.Bool
	errorSemis atomic.Uint64 // bits of the current error, in semitones
}

func newControl() *control {
	c := &control{}
	c.refPitch.Store(math.Float64bits(440))
	c.noteBias.Store(math.Float64bits(0.5 / 13.0))
	c.corrFilt.Store(math.Float64bits(0.1))
	c.corrGain.Store(math.Float64bits(1.0))
	c.corrOffs.Store(math.Float64bits(0))
	c.keyboardMask.Store(0xFFF)
	c.curNote.Store(-1)
	return c
}

func (c *control) snapshot() params {
	return params{
		refPitch: math.Float64frombits(c.refPitch.Load()),
		noteBias: math.Float64frombits(c.noteBias.Load()),
		corrFilt: math.Float64frombits(c.corrFilt.Load()),
		corrGain: math.Float64frombits(c.corrGain.Load()),
		corrOffs: math.Float64frombits(c.corrOffs.Load()),
		lowLat:   c.lowLat.Load(),
		effMask:  c.effectiveMask(),
	}
}

// effectiveMask composes the keyboard mask (authoritative "which
// notes are in my scale") with the MIDI mask (narrows that to notes
// currently held). An idle MIDI controller - midiMask == 0 - must not
// silently mute every note, so it is treated as "no MIDI narrowing".
func (c *control) effectiveMask() uint32 {
	kb := c.keyboardMask.Load()
	midi := c.midiMask.Load()
	if midi == 0 {
		return kb
	}
	return kb & midi
}

func (c *control) setRefPitch(hz float64) { c.refPitch.Store(math.Float64bits(hz)) }

// setNoteBias takes the user-facing 0..1 bias knob and stores the
// fraction-of-octave value the note tracker's hysteresis compares
// directly against its wrapped semitone distance.
func (c *control) setNoteBias(v float64) { c.noteBias.Store(math.Float64bits(v / 13.0)) }
func (c *control) setCorrGain(v float64) { c.corrGain.Store(math.Float64bits(v)) }
func (c *control) setCorrOffs(v float64)  { c.corrOffs.Store(math.Float64bits(v)) }
func (c *control) setLowLatency(v bool)   { c.lowLat.Store(v) }

// setCorrFilt converts a user-facing response-time parameter v into
// the one-pole filter coefficient: (4*frsize)/(v*fsamp), clamped to
// stay a valid coefficient. fsamp is the host sample rate, not the
// internal (possibly upsampled) rate - the IIR time constant is
// defined against wall-clock time, not internal fragment count.
func (c *control) setCorrFilt(v float64, frsize, fsamp int) {
	if v <= 0 {
		c.corrFilt.Store(math.Float64bits(1))
		return
	}
	k := (4 * float64(frsize)) / (v * float64(fsamp))
	if k > 1 {
		k = 1
	}
	c.corrFilt.Store(math.Float64bits(k))
}

func (c *control) setNoteMask(mask uint32) {
	c.keyboardMask.Store(mask & 0xFFF)
}

func (c *control) noteOn(note int) {
	if note < 0 || note >= 12 {
		return
	}
	for {
		old := c.midiMask.Load()
		next := old | (1 << uint(note))
		if c.midiMask.CompareAndSwap(old, next) {
			return
		}
	}
}

func (c *control) noteOff(note int) {
	if note < 0 || note >= 12 {
		return
	}
	for {
		old := c.midiMask.Load()
		next := old &^ (1 << uint(note))
		if c.midiMask.CompareAndSwap(old, next) {
			return
		}
	}
}

func (c *control) clearMIDIMask() {
	c.midiMask.Store(0)
}

// markSounded is called from the audio thread once per voiced pitch
// estimate (every fourth fragment) when a note is locked; getNoteSet reads-and-clears the accumulator from
// the control thread.
func (c *control) markSounded(note int) {
	if note < 0 || note >= 12 {
		return
	}
	for {
		old := c.notebits.Load()
		next := old | (1 << uint(note))
		if c.notebits.CompareAndSwap(old, next) {
			return
		}
	}
}

func (c *control) takeNoteSet() uint32 {
	return c.notebits.Swap(0)
}

// setVoicing is called from the audio thread each time it re-estimates
// pitch, recording the currently locked note (-1 when none) and
// the smoothed error in semitones, so the control thread can poll
// voicing state without touching the audio thread's own note tracker
// fields directly.
func (c *control) setVoicing(note int, voiced bool, errorSemitones float64) {
	c.curNote.Store(int32(note))
	c.voiced.Store(voiced)
	c.errorSemis.Store(math.Float64bits(errorSemitones))
}

func (c *control) currentNote() int        { return int(c.curNote.Load()) }
func (c *control) isVoiced() bool          { return c.voiced.Load() }
func (c *control) errorSemitones() float64 { return math.Float64frombits(c.errorSemis.Load()) }
