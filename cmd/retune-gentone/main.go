package main

/*------------------------------------------------------------------
 *
 * Purpose:	Generate a deterministic PCM test tone (optionally
 *		swept) for exercising the engine outside of a live
 *		audio host - useful for benchmarking and for manually
 *		auditioning a build against a known input.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	var (
		sampleRate = pflag.IntP("rate", "r", 48000, "Sample rate in Hz.")
		freq       = pflag.Float64P("freq", "f", 220.0, "Tone frequency in Hz.")
		sweepTo    = pflag.Float64P("sweep-to", "t", 0, "If non-zero, linearly sweep from freq to this frequency.")
		seconds    = pflag.Float64P("seconds", "s", 2.0, "Duration in seconds.")
		amplitude  = pflag.Float64P("amplitude", "a", 0.5, "Peak amplitude, 0..1.")
		outPath    = pflag.StringP("out", "o", "-", "Output path, or - for stdout.")
		help       = pflag.Bool("help", false, "Display help text.")
	)
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - generate a raw 16-bit mono PCM test tone\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	w := os.Stdout
	if *outPath != "-" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create %s: %v\n", *outPath, err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	n := int(*seconds * float64(*sampleRate))
	endFreq := *sweepTo
	if endFreq == 0 {
		endFreq = *freq
	}

	buf := make([]byte, 2)
	phase := 0.0
	for i := 0; i < n; i++ {
		frac := float64(i) / float64(n)
		f := *freq + frac*(endFreq-*freq)
		phase += 2 * math.Pi * f / float64(*sampleRate)
		sample := *amplitude * math.Sin(phase)
		binary.LittleEndian.PutUint16(buf, uint16(int16(sample*32767)))
		if _, err := w.Write(buf); err != nil {
			fmt.Fprintf(os.Stderr, "write: %v\n", err)
			os.Exit(1)
		}
	}
}
