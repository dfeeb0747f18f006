package main

/*------------------------------------------------------------------
 *
 * Purpose:	Real-time audio host: opens a mono input/output stream
 *		with PortAudio, runs every callback through the
 *		retuning engine, and wires up the surrounding hardware
 *		a standalone pedal/rack build of this would carry -
 *		device hot-plug, a bypass footswitch, LAN control
 *		discovery, and a terminal tuner meter.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
	"github.com/pkg/term"
	"github.com/spf13/pflag"

	"github.com/go-retune/retuner/internal/diagnostics"
	"github.com/go-retune/retuner/internal/discovery"
	"github.com/go-retune/retuner/internal/engine"
	"github.com/go-retune/retuner/internal/footswitch"
	"github.com/go-retune/retuner/internal/hotplug"
	"github.com/go-retune/retuner/internal/persist"
)

func main() {
	var (
		sampleRate = pflag.IntP("rate", "r", 48000, "Audio sample rate in Hz.")
		blockSize  = pflag.IntP("block", "b", 256, "Frames per audio callback.")
		statePath  = pflag.StringP("state", "s", "retune.state", "Path to the persisted control-surface state file.")
		debug      = pflag.BoolP("debug", "d", false, "Enable debug logging.")
		lowLatency = pflag.Bool("low-latency", false, "Run the engine at reduced internal latency.")
		gpioChip   = pflag.String("footswitch-chip", "", "GPIO chip for the bypass footswitch, e.g. gpiochip0. Empty disables it.")
		gpioLine   = pflag.Int("footswitch-line", 0, "GPIO line offset for the bypass footswitch.")
		advertise  = pflag.Bool("advertise", false, "Advertise the control surface over mDNS.")
		help       = pflag.Bool("help", false, "Display help text.")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - real-time pitch-correction host\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	log := diagnostics.New(os.Stderr, *debug)

	if err := run(*sampleRate, *blockSize, *statePath, *lowLatency, *gpioChip, *gpioLine, *advertise, log); err != nil {
		log.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(sampleRate, blockSize int, statePath string, lowLatency bool, gpioChip string, gpioLine int, advertise bool, log *charmlog.Logger) error {
	state, err := persist.Load(statePath)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	eng, err := engine.New(sampleRate)
	if err != nil {
		return fmt.Errorf("new engine: %w", err)
	}
	eng.SetRefPitch(state.RefPitch)
	eng.SetNoteBias(state.NoteBias)
	eng.SetCorrFilt(state.CorrFilt)
	eng.SetCorrGain(state.CorrGain)
	eng.SetCorrOffs(state.CorrOffs)
	eng.SetNoteMask(state.NoteMask)
	eng.SetLowLatency(lowLatency)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("shutting down")
		cancel()
	}()

	dumper, err := diagnostics.NewDumper(filepath.Dir(statePath), diagnostics.DumpPattern)
	if err != nil {
		log.Error("dumper unavailable", "err", err)
	} else {
		dumpSig := make(chan os.Signal, 1)
		signal.Notify(dumpSig, syscall.SIGUSR1)
		go func() {
			for range dumpSig {
				snap := diagnostics.Snapshot{
					RefPitch: state.RefPitch,
					NoteBias: state.NoteBias,
					CorrFilt: state.CorrFilt,
					CorrGain: state.CorrGain,
					CorrOffs: state.CorrOffs,
					NoteMask: state.NoteMask,
					Error:    eng.GetError(),
				}
				path, err := dumper.Dump(time.Now(), snap)
				if err != nil {
					log.Error("dump failed", "err", err)
					continue
				}
				log.Info("wrote diagnostic dump", "path", path)
			}
		}()
	}

	if gpioChip != "" {
		bypassed := false
		savedMask := state.NoteMask
		sw, err := footswitch.Open(gpioChip, gpioLine, func() {
			bypassed = !bypassed
			if bypassed {
				eng.SetNoteMask(0)
			} else {
				eng.SetNoteMask(savedMask)
			}
			log.Info("footswitch pressed", "bypassed", bypassed)
		})
		if err != nil {
			log.Error("footswitch unavailable", "err", err)
		} else {
			defer sw.Close()
		}
	}

	watcher, err := hotplug.Watch(ctx)
	if err != nil {
		log.Error("hotplug watcher unavailable", "err", err)
	} else {
		go func() {
			for ev := range watcher.Events() {
				log.Info("audio device event", "action", ev.Action, "name", ev.Name)
			}
		}()
	}

	if advertise {
		adv, err := discovery.Advertise(ctx, "retune", 9999)
		if err != nil {
			log.Error("mDNS advertisement unavailable", "err", err)
		} else {
			defer adv.Close()
		}
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio init: %w", err)
	}
	defer portaudio.Terminate()

	callback := func(inBuf, outBuf []float32) {
		if err := eng.Process(inBuf, outBuf); err != nil {
			log.Error("process", "err", err)
		}
	}

	stream, err := portaudio.OpenDefaultStream(1, 1, float64(sampleRate), blockSize, callback)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("start stream: %w", err)
	}
	defer stream.Stop()

	meter, err := term.Open("/dev/tty")
	if err == nil {
		defer meter.Restore()
		term.RawMode(meter)
		go runMeter(ctx, eng, meter, log)
	}

	<-ctx.Done()
	return nil
}

// runMeter polls the engine's control-thread-safe voicing state at a
// fixed rate, drawing a terminal tuner display and logging note-lock
// and voicing transitions as they happen.
func runMeter(ctx context.Context, eng *engine.Engine, w interface{ Write([]byte) (int, error) }, log *charmlog.Logger) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	lastNote := eng.CurrentNote()
	lastVoiced := eng.IsVoiced()
	diagnostics.NoteLock(log, lastNote, eng.GetError())
	diagnostics.Unvoiced(log, !lastVoiced)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprintf(w, "\rerror: %+6.2f semitones  notes: %03X", eng.GetError(), eng.GetNoteSet())

			if note := eng.CurrentNote(); note != lastNote {
				diagnostics.NoteLock(log, note, eng.GetError())
				lastNote = note
			}
			if voiced := eng.IsVoiced(); voiced != lastVoiced {
				diagnostics.Unvoiced(log, !voiced)
				lastVoiced = voiced
			}
		}
	}
}
