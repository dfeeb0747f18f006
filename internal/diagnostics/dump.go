package diagnostics

/*------------------------------------------------------------------
 *
 * Purpose:	Write a timestamped snapshot of the engine's control
 *		state for offline troubleshooting - "what was the rig
 *		set to when this recording was made". Not on any
 *		real-time path; called from the control thread only,
 *		typically from a signal handler or a periodic ticker.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lestrrat-go/strftime"
)

// DumpPattern is the strftime pattern timestamped dump filenames are
// built from; callers may pass a different pattern to NewDumper. The
// directory comes from NewDumper's dir argument.
const DumpPattern = "retune-dump-%Y%m%d-%H%M%S.txt"

// Dumper renders timestamped diagnostic dumps into a directory.
type Dumper struct {
	dir  string
	fmtr *strftime.Strftime
}

// NewDumper compiles the dump filename pattern once; Dump then only
// has to format a time and write a file.
func NewDumper(dir, pattern string) (*Dumper, error) {
	if pattern == "" {
		pattern = DumpPattern
	}
	f, err := strftime.New(pattern)
	if err != nil {
		return nil, fmt.Errorf("diagnostics: compile dump pattern %q: %w", pattern, err)
	}
	return &Dumper{dir: dir, fmtr: f}, nil
}

// Snapshot is the subset of control-surface state worth recording.
type Snapshot struct {
	RefPitch float64
	NoteBias float64
	CorrFilt float64
	CorrGain float64
	CorrOffs float64
	NoteMask uint32
	Error    float64
}

// Dump writes snap to a new timestamped file under the dumper's
// directory and returns the path it used.
func (d *Dumper) Dump(at time.Time, snap Snapshot) (string, error) {
	name := d.fmtr.FormatString(at)
	path := filepath.Join(d.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("diagnostics: create %s: %w", path, err)
	}
	defer f.Close()

	fmt.Fprintf(f, "ref_pitch %g\n", snap.RefPitch)
	fmt.Fprintf(f, "note_bias %g\n", snap.NoteBias)
	fmt.Fprintf(f, "corr_filt %g\n", snap.CorrFilt)
	fmt.Fprintf(f, "corr_gain %g\n", snap.CorrGain)
	fmt.Fprintf(f, "corr_offs %g\n", snap.CorrOffs)
	fmt.Fprintf(f, "note_mask %03X\n", snap.NoteMask)
	fmt.Fprintf(f, "error %g\n", snap.Error)

	return path, nil
}
