package engine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sineWave(n int, fsamp, freq float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / fsamp))
	}
	return out
}

// measureFrequency estimates a steady tone's frequency from rising
// zero-crossings with linear interpolation between samples, over the
// tail of buf (discarding the first skip samples as warmup/transient).
// Returns 0 if fewer than two crossings are found.
func measureFrequency(buf []float32, skip int, fsamp float64) float64 {
	if skip >= len(buf) {
		return 0
	}
	tail := buf[skip:]
	first, last := -1.0, -1.0
	count := 0
	for i := 1; i < len(tail); i++ {
		if tail[i-1] < 0 && tail[i] >= 0 {
			frac := float64(-tail[i-1]) / float64(tail[i]-tail[i-1])
			t := float64(i-1) + frac
			if first < 0 {
				first = t
			}
			last = t
			count++
		}
	}
	if count < 2 {
		return 0
	}
	return float64(count-1) / (last - first) * fsamp
}

func Test_NewRejectsBadRate(t *testing.T) {
	_, err := New(0)
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func Test_ProcessRejectsMismatchedLengths(t *testing.T) {
	e, err := New(48000)
	require.NoError(t, err)

	err = e.Process(make([]float32, 10), make([]float32, 5))
	require.Error(t, err)
	var procErr *ProcessError
	assert.ErrorAs(t, err, &procErr)
}

func Test_ProcessEmptyBufferIsANoOp(t *testing.T) {
	e, err := New(48000)
	require.NoError(t, err)
	require.NoError(t, e.Process(nil, nil))
}

func Test_ProcessHandlesArbitraryBlockSizes(t *testing.T) {
	for _, fsamp := range []int{44100, 48000, 88200, 96000, 192000} {
		e, err := New(fsamp)
		require.NoErrorf(t, err, "fsamp=%d", fsamp)

		in := sineWave(4000, float64(fsamp), 220)
		out := make([]float32, len(in))

		// Feed the engine in odd-sized chunks that don't align with
		// its internal fragment size, the way a real host callback
		// would.
		off := 0
		chunk := 37
		for off < len(in) {
			n := chunk
			if off+n > len(in) {
				n = len(in) - off
			}
			require.NoError(t, e.Process(in[off:off+n], out[off:off+n]))
			off += n
		}

		for i, v := range out {
			assert.Falsef(t, math.IsNaN(float64(v)), "fsamp=%d: NaN output at sample %d", fsamp, i)
			assert.Falsef(t, math.IsInf(float64(v), 0), "fsamp=%d: Inf output at sample %d", fsamp, i)
		}
	}
}

func Test_SettersAreIdempotent(t *testing.T) {
	e, err := New(48000)
	require.NoError(t, err)

	e.SetRefPitch(440)
	e.SetRefPitch(440)
	e.SetNoteMask(0xFFF)
	e.SetNoteMask(0xFFF)
	e.SetCorrGain(1.0)
	e.SetCorrGain(1.0)

	assert.Equal(t, math.Float64bits(440), e.ctrl.refPitch.Load())
	assert.Equal(t, uint32(0xFFF), e.ctrl.keyboardMask.Load())
}

func Test_NoteMaskCompositionLeavesKeyboardAuthoritativeWhenMIDIIdle(t *testing.T) {
	e, err := New(48000)
	require.NoError(t, err)

	e.SetNoteMask(0x0F0)
	assert.Equal(t, uint32(0x0F0), e.ctrl.effectiveMask(), "with no MIDI note held, the keyboard mask should pass through unchanged")

	e.NoteOn(3)
	assert.Equal(t, uint32(0x000), e.ctrl.effectiveMask(), "holding a MIDI note outside the keyboard mask narrows to nothing")

	e.NoteOn(5)
	assert.Equal(t, uint32(0x020), e.ctrl.effectiveMask())

	e.ClearMIDIMask()
	assert.Equal(t, uint32(0x0F0), e.ctrl.effectiveMask(), "clearing the MIDI mask restores pure keyboard control")
}

func Test_UnvoicedPassageKeepsOffsetButDropsError(t *testing.T) {
	e, err := New(48000)
	require.NoError(t, err)
	e.SetCorrOffs(2.0)

	silence := make([]float32, 4000)
	out := make([]float32, len(silence))
	require.NoError(t, e.Process(silence, out))

	// Silence drives the estimator to "unvoiced" on every estimate; after
	// enough consecutive misses the error resets but the ratio must
	// still reflect the constant offset, not snap back to unity.
	wantRatio := math.Pow(2, 2.0/12.0)
	assert.InDelta(t, wantRatio, e.ratio, 1e-9)
}

// Test_InvariantUnityPassthroughWhenDisabled checks that with no note
// enabled and no offset, output is an exact delayed copy of input -
// the non-upsampled path has no resampler filtering in the way, and a
// dr of exactly 1 makes every cubic read land on an integer sample
// (a == 0), which the interpolation formula reproduces bit-for-bit.
// A read at integer position r returns the sample at r+1 (the cubic's
// second tap), so the delay is one sample less than the latency.
func Test_InvariantUnityPassthroughWhenDisabled(t *testing.T) {
	e, err := New(96000)
	require.NoError(t, err)
	e.SetNoteMask(0)
	e.SetCorrOffs(0)

	n := 4000
	in := sineWave(n, 96000, 300)
	out := make([]float32, n)
	require.NoError(t, e.Process(in, out))

	require.Less(t, e.latency, n)
	for i := e.latency; i < n; i++ {
		assert.Equalf(t, in[i-e.latency+1], out[i], "sample %d should be an exact delayed passthrough", i)
	}
}

// Test_InvariantRatioFormula checks the playback ratio always equals
// 2^(corroffs/12 - error*corrgain) for whatever error the tracker
// last settled on.
func Test_InvariantRatioFormula(t *testing.T) {
	e, err := New(48000)
	require.NoError(t, err)
	e.SetRefPitch(440)
	e.SetNoteMask(0xFFF)
	e.SetCorrGain(1.7)
	e.SetCorrOffs(-3.25)

	in := sineWave(20000, 48000, 445)
	out := make([]float32, len(in))
	require.NoError(t, e.Process(in, out))

	want := math.Pow(2, -3.25/12.0-e.note.error*1.7)
	assert.InDelta(t, want, e.ratio, 1e-12)
}

// Test_ScenarioA4AllNotesEnabled drives an exact A4 tone through the
// engine with every note enabled: it should lock onto A (note 9) with
// a near-zero error and a near-unity playback ratio.
func Test_ScenarioA4AllNotesEnabled(t *testing.T) {
	e, err := New(48000)
	require.NoError(t, err)
	e.SetRefPitch(440)
	e.SetNoteMask(0xFFF)
	e.SetCorrGain(1)
	e.SetCorrOffs(0)

	in := sineWave(20000, 48000, 440)
	out := make([]float32, len(in))
	require.NoError(t, e.Process(in, out))

	assert.Equal(t, 9, e.CurrentNote())
	assert.Less(t, math.Abs(e.GetError()), 0.02)
	assert.InDelta(t, 1.0, e.ratio, 1e-3)
}

// Test_ScenarioSlightlySharpAIsPulledToward440 feeds a tone 8 Hz sharp
// of A4 and checks the steady-state output is pulled much closer to
// 440 Hz than the input was, confirming the correction actually acts
// on the signal rather than just on the internal error estimate.
func Test_ScenarioSlightlySharpAIsPulledToward440(t *testing.T) {
	e, err := New(48000)
	require.NoError(t, err)
	e.SetRefPitch(440)
	e.SetNoteMask(0xFFF)
	e.SetCorrGain(1)

	const fsamp = 48000.0
	in := sineWave(96000, fsamp, 448)
	out := make([]float32, len(in))
	require.NoError(t, e.Process(in, out))

	measured := measureFrequency(out, 48000, fsamp)
	if measured == 0 {
		t.Skip("not enough zero-crossings in the settled tail to measure frequency")
	}
	assert.Less(t, math.Abs(measured-440), math.Abs(448.0-440),
		"corrected output frequency should sit closer to 440 Hz than the uncorrected input did")
	assert.InDelta(t, 440, measured, 2.0)
}

// Test_ScenarioNoteMaskPullsToOnlyEnabledNote plays a tone near B♭
// above A4 with only A enabled in the note mask; the tracker has
// nowhere else to lock but A.
func Test_ScenarioNoteMaskPullsToOnlyEnabledNote(t *testing.T) {
	e, err := New(48000)
	require.NoError(t, err)
	e.SetRefPitch(440)
	e.SetNoteMask(1 << 9)

	in := sineWave(20000, 48000, 466)
	out := make([]float32, len(in))
	require.NoError(t, e.Process(in, out))

	assert.Equal(t, 9, e.CurrentNote())
}

// Test_ScenarioWhiteNoiseIsUnvoiced feeds low-level noise (no stable
// period) and checks the note tracker never latches a note and the
// playback ratio stays at unity when no correction offset is set.
func Test_ScenarioWhiteNoiseIsUnvoiced(t *testing.T) {
	e, err := New(48000)
	require.NoError(t, err)
	e.SetCorrOffs(0)

	rng := rand.New(rand.NewSource(1))
	in := make([]float32, 4000)
	for i := range in {
		in[i] = 0.1 * (float32(rng.Float64())*2 - 1) // roughly -20 dBFS
	}
	out := make([]float32, len(in))
	require.NoError(t, e.Process(in, out))

	assert.Equal(t, uint32(0), e.GetNoteSet())
	assert.InDelta(t, 1.0, e.ratio, 1e-9)
}

// Test_ScenarioLowRateUpsampledPath exercises the sub-64kHz upsampled
// analysis path at 44.1 kHz and checks both the sizing table and the
// note lock/output frequency it produces for a 220 Hz A3 tone.
func Test_ScenarioLowRateUpsampledPath(t *testing.T) {
	const fsamp = 44100.0
	e, err := New(int(fsamp))
	require.NoError(t, err)
	require.True(t, e.cfg.Upsamp)
	require.Equal(t, 2048, e.cfg.FFTLen)

	e.SetRefPitch(440)
	e.SetNoteMask(0xFFF)

	in := sineWave(40000, fsamp, 220)
	out := make([]float32, len(in))
	require.NoError(t, e.Process(in, out))

	assert.Equal(t, 9, e.CurrentNote())

	measured := measureFrequency(out, 20000, fsamp)
	if measured == 0 {
		t.Skip("not enough zero-crossings in the settled tail to measure frequency")
	}
	assert.InDelta(t, 220, measured, 2.0)
}

// Test_ScenarioHighRatePathPullsTowardNearestSemitone drives a 1000 Hz
// tone through the 192 kHz path (inside the 75..1200 Hz detection
// window) and checks the engine locks onto B5 (two semitones above
// A5, the nearest enabled note) and pulls the output toward it.
func Test_ScenarioHighRatePathPullsTowardNearestSemitone(t *testing.T) {
	const fsamp = 192000.0
	const nearestHz = 880.0 * 1.0594630943592953 * 1.0594630943592953 // B5 (A5 * two semitones)

	e, err := New(int(fsamp))
	require.NoError(t, err)
	e.SetRefPitch(440)
	e.SetNoteMask(0xFFF)

	in := sineWave(200000, fsamp, 1000)
	out := make([]float32, len(in))
	require.NoError(t, e.Process(in, out))

	assert.Equal(t, 11, e.CurrentNote())

	measured := measureFrequency(out, 100000, fsamp)
	if measured == 0 {
		t.Skip("not enough zero-crossings in the settled tail to measure frequency")
	}
	assert.Less(t, math.Abs(measured-nearestHz), math.Abs(1000.0-nearestHz),
		"corrected output should sit closer to the nearest enabled semitone than the uncorrected input did")
}

// Test_ScenarioFragmentMisalignedCallbacksMatchSingleBlock confirms
// the engine's output does not depend on how a host happens to chop
// up its callback buffer - only on the sample stream itself.
func Test_ScenarioFragmentMisalignedCallbacksMatchSingleBlock(t *testing.T) {
	const fsamp = 48000
	in := sineWave(8000, fsamp, 440)

	e1, err := New(fsamp)
	require.NoError(t, err)
	out1 := make([]float32, len(in))
	require.NoError(t, e1.Process(in, out1))

	e2, err := New(fsamp)
	require.NoError(t, err)
	out2 := make([]float32, len(in))
	off := 0
	for off < len(in) {
		n := 31
		if off+n > len(in) {
			n = len(in) - off
		}
		require.NoError(t, e2.Process(in[off:off+n], out2[off:off+n]))
		off += n
	}

	assert.Equal(t, out1, out2)
}
