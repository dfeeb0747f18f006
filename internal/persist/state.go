package persist

/*------------------------------------------------------------------
 *
 * Purpose:	Load and save the small set of control-surface values
 *		that should survive a restart: reference pitch, the
 *		correction knobs, the note mask, and the window
 *		position. One tab-separated "key\tvalue" pair per line.
 *
 *------------------------------------------------------------------*/

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// State is the persisted subset of the control surface.
type State struct {
	RefPitch float64
	NoteBias float64
	CorrFilt float64
	CorrGain float64
	CorrOffs float64
	NoteMask uint32
	WinX     int
	WinY     int
}

// Defaults matches the values a freshly constructed engine starts
// with, so a missing or partial state file degrades gracefully.
func Defaults() State {
	return State{
		RefPitch: 440,
		NoteBias: 0.5,
		CorrFilt: 0.1,
		CorrGain: 1.0,
		CorrOffs: 0.0,
		NoteMask: 0xFFF,
	}
}

// Load reads a state file, starting from Defaults and overwriting
// whichever keys are present. A missing file is not an error - it
// simply yields the defaults, the way a first run would find none.
func Load(path string) (State, error) {
	s := Defaults()

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("persist: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if err := s.set(key, value); err != nil {
			return s, fmt.Errorf("persist: %s: %w", path, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return s, fmt.Errorf("persist: read %s: %w", path, err)
	}
	return s, nil
}

func (s *State) set(key, value string) error {
	switch key {
	case "/autotune/tune":
		return s.setFloat(&s.RefPitch, value)
	case "/autotune/bias":
		return s.setFloat(&s.NoteBias, value)
	case "/autotune/filt":
		return s.setFloat(&s.CorrFilt, value)
	case "/autotune/corr":
		return s.setFloat(&s.CorrGain, value)
	case "/autotune/offs":
		return s.setFloat(&s.CorrOffs, value)
	case "/autotune/notes":
		mask, err := strconv.ParseUint(value, 16, 32)
		if err != nil {
			return fmt.Errorf("bad note mask %q: %w", value, err)
		}
		s.NoteMask = uint32(mask)
		return nil
	case "/window/x":
		return s.setInt(&s.WinX, value)
	case "/window/y":
		return s.setInt(&s.WinY, value)
	default:
		return nil // unknown keys are ignored, not fatal
	}
}

func (s *State) setFloat(dst *float64, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("bad float %q: %w", value, err)
	}
	*dst = v
	return nil
}

func (s *State) setInt(dst *int, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("bad int %q: %w", value, err)
	}
	*dst = v
	return nil
}

// Save writes the state file in the same key/value shape Load reads,
// overwriting any existing file.
func Save(path string, s State) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("persist: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "/autotune/tune\t%g\n", s.RefPitch)
	fmt.Fprintf(w, "/autotune/bias\t%g\n", s.NoteBias)
	fmt.Fprintf(w, "/autotune/filt\t%g\n", s.CorrFilt)
	fmt.Fprintf(w, "/autotune/corr\t%g\n", s.CorrGain)
	fmt.Fprintf(w, "/autotune/offs\t%g\n", s.CorrOffs)
	fmt.Fprintf(w, "/autotune/notes\t%03X\n", s.NoteMask)
	fmt.Fprintf(w, "/window/x\t%d\n", s.WinX)
	fmt.Fprintf(w, "/window/y\t%d\n", s.WinY)
	return w.Flush()
}
