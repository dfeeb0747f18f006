package engine

/*------------------------------------------------------------------
 *
 * Purpose:	The engine façade: owns every stage (resampler, ring,
 *		pitch estimator, note tracker, variable-rate reader,
 *		control surface) and drives them from Process, the one
 *		method the audio callback calls. Process never
 *		allocates once its scratch buffers have grown to the
 *		host's block size, never blocks, and never takes a
 *		lock - every cross-thread value comes from control's
 *		atomics.
 *
 *------------------------------------------------------------------*/

import "math"

// Engine is a single mono retuning instance, one per audio channel.
// An Engine is not safe for concurrent calls to Process; it is safe
// for one goroutine to call Process while another calls the setters
// and getters below.
type Engine struct {
	cfg   Config
	tab   tables
	ring  *ring
	up    *upsampler2x
	pitch *pitchEstimator
	note  *noteTracker
	rdr   *reader
	ctrl  *control

	latency int
	frindex int
	frcount int
	count   int
	cycle   float64
	ratio   float64

	inScratch  []float64
	outScratch []float64
	upScratch  []float64
}

// New constructs an Engine for the given host sample rate.
func New(fsamp int) (*Engine, error) {
	cfg, err := NewConfig(fsamp)
	if err != nil {
		return nil, &ConfigError{Reason: err.Error()}
	}

	tab := newTables(cfg)
	e := &Engine{
		cfg:     cfg,
		tab:     tab,
		ring:    newRing(cfg.Ipsize),
		pitch:   newPitchEstimator(cfg, tab),
		note:    newNoteTracker(cfg.Firate),
		ctrl:    newControl(),
		latency: cfg.Ipsize / 2,
		cycle:   float64(cfg.Frsize),
		ratio:   1.0,
	}
	e.rdr = newReader(e.latency)
	e.SetCorrFilt(0.1)
	if cfg.Upsamp {
		e.up = newUpsampler2x()
	}
	return e, nil
}

// SetLowLatency toggles between the default and reduced internal
// latency; the reduced setting halves the target distance between the
// write and read positions (Ipsize/4 instead of Ipsize/2), leaving the
// reader less headroom at large ratios.
func (e *Engine) SetLowLatency(on bool) {
	e.ctrl.setLowLatency(on)
	if on {
		e.latency = e.cfg.Ipsize / 4
	} else {
		e.latency = e.cfg.Ipsize / 2
	}
}

func (e *Engine) SetRefPitch(hz float64)  { e.ctrl.setRefPitch(hz) }
func (e *Engine) SetNoteBias(v float64)   { e.ctrl.setNoteBias(v) }
func (e *Engine) SetCorrGain(v float64)   { e.ctrl.setCorrGain(v) }
func (e *Engine) SetCorrOffs(v float64)   { e.ctrl.setCorrOffs(v) }
func (e *Engine) SetNoteMask(mask uint32) { e.ctrl.setNoteMask(mask) }
func (e *Engine) NoteOn(note int)         { e.ctrl.noteOn(note) }
func (e *Engine) NoteOff(note int)        { e.ctrl.noteOff(note) }
func (e *Engine) ClearMIDIMask()          { e.ctrl.clearMIDIMask() }

// SetCorrFilt sets the correction response time; v is in seconds of
// settling time, converted to a one-pole coefficient relative to the
// fragment size and the host sample rate.
func (e *Engine) SetCorrFilt(v float64) {
	e.ctrl.setCorrFilt(v, e.cfg.Frsize, e.cfg.Fsamp)
}

// GetNoteSet returns and clears the sticky 12-bit "which notes have
// sounded since the last call" accumulator, for a tuner-style display.
func (e *Engine) GetNoteSet() uint32 { return e.ctrl.takeNoteSet() }

// GetError returns the current pitch-correction error in semitones,
// read from the atomic control surface rather than the audio thread's
// own note tracker, which is unsafe to read from another goroutine.
func (e *Engine) GetError() float64 { return e.ctrl.errorSemitones() }

// CurrentNote returns the currently locked note (0-11, 9 == A), or -1
// when no note is locked: the lock survives one unvoiced estimate and
// is released at the second. Safe to call from any thread.
func (e *Engine) CurrentNote() int { return e.ctrl.currentNote() }

// IsVoiced reports whether the most recent pitch estimate found a
// voiced period. Safe to call from any thread.
func (e *Engine) IsVoiced() bool { return e.ctrl.isVoiced() }

func (e *Engine) ensureScratch(n int) {
	if cap(e.inScratch) < n {
		e.inScratch = make([]float64, n)
		e.outScratch = make([]float64, n)
	}
	e.inScratch = e.inScratch[:n]
	e.outScratch = e.outScratch[:n]
	if e.cfg.Upsamp && cap(e.upScratch) < 2*n {
		e.upScratch = make([]float64, 2*n)
	}
}

// Process runs nframes of mono audio from in through the retuning
// pipeline into out. in and out may alias. Processing happens in
// fragment-sized pieces regardless of how Process is called; a
// fragment boundary falling mid-call is resumed correctly on the
// next call.
func (e *Engine) Process(in, out []float32) error {
	if len(in) != len(out) {
		return &ProcessError{Reason: "input and output lengths differ"}
	}
	n := len(in)
	if n == 0 {
		return nil
	}
	e.ensureScratch(n)
	for i, v := range in {
		e.inScratch[i] = float64(v)
	}

	params := e.ctrl.snapshot()
	off := 0
	remaining := n

	for remaining > 0 {
		k := e.cfg.Frsize - e.frindex
		if remaining < k {
			k = remaining
		}
		remaining -= k

		if e.cfg.Upsamp {
			e.up.process(e.inScratch[off:off+k], e.upScratch[:2*k])
			e.ring.write(e.upScratch[:2*k])
		} else {
			e.ring.write(e.inScratch[off : off+k])
		}

		dr := e.ratio
		if e.cfg.Upsamp {
			dr *= 2
		}
		e.rdr.step(e.ring, dr, e.tab.xffunc, e.frindex, k, e.outScratch[off:off+k])

		e.frindex += k
		off += k

		if e.frindex == e.cfg.Frsize {
			e.frindex = 0
			e.frcount++
			if e.frcount == 4 {
				e.frcount = 0
				e.estimateAndTrack(params)
			}
			e.rdr.planJump(e.cfg, e.cycle, e.ring.index, e.latency)
		}
	}

	for i, v := range e.outScratch[:n] {
		out[i] = float32(v)
	}
	return nil
}

// estimateAndTrack runs the once-per-four-fragments pitch estimate
// and feeds it through the note tracker: a single miss keeps the
// current ratio, a run of six drops to the frame size and clears the
// error, and a run of exactly two releases the note-lock bias early.
func (e *Engine) estimateAndTrack(p params) {
	mask := p.effMask
	np := noteParams{refPitch: p.refPitch, noteBias: p.noteBias, corrFilt: p.corrFilt, mask: mask}

	if v := e.pitch.estimate(e.ring); v != 0 {
		e.count = 0
		e.cycle = v
		e.note.update(v, np)
		note := e.note.currentNote()
		if note >= 0 {
			e.ctrl.markSounded(note)
		}
		e.ctrl.setVoicing(note, true, e.note.errorSemitones())
	} else {
		e.count++
		if e.count > 5 {
			e.count = 5
			e.cycle = float64(e.cfg.Frsize)
			e.note.resetError()
		} else if e.count == 2 {
			e.note.clearLock()
		}
		e.ctrl.setVoicing(e.note.currentNote(), false, e.note.errorSemitones())
	}

	e.ratio = math.Pow(2, p.corrOffs/12.0-e.note.error*p.corrGain)
}
