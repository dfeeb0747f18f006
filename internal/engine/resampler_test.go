package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func Test_upsampler2xDoublesLength(t *testing.T) {
	u := newUpsampler2x()
	in := make([]float64, 17)
	out := make([]float64, 2*len(in))
	u.process(in, out)
	assert.Len(t, out, 2*len(in))
}

func Test_upsampler2xKernelIsFinite(t *testing.T) {
	u := newUpsampler2x()
	for phase := 0; phase < 2; phase++ {
		for _, v := range u.kernel[phase] {
			assert.False(t, math.IsNaN(v))
			assert.False(t, math.IsInf(v, 0))
		}
	}
}

func Test_upsampler2xPassesSilenceThrough(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 64).Draw(t, "n")
		u := newUpsampler2x()
		in := make([]float64, n)
		out := make([]float64, 2*n)
		u.process(in, out)
		for _, v := range out {
			assert.Equal(t, 0.0, v)
		}
	})
}
