package diagnostics

/*------------------------------------------------------------------
 *
 * Purpose:	One process-wide leveled logger, built once at startup
 *		and threaded down by parameter - never a package-level
 *		global read from the audio thread. Control-thread
 *		events (note-lock transitions, device changes, config
 *		errors) log through this; Process itself never touches
 *		it.
 *
 *------------------------------------------------------------------*/

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New builds the logger a cmd/ entrypoint hands to every other
// package at construction time. w defaults to stderr when nil.
func New(w io.Writer, debug bool) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
	})
	if debug {
		l.SetLevel(log.DebugLevel)
	} else {
		l.SetLevel(log.InfoLevel)
	}
	return l
}

// NoteLock logs a control-thread note-lock transition at debug level.
func NoteLock(l *log.Logger, note int, errorSemitones float64) {
	if note < 0 {
		l.Debug("note lock released")
		return
	}
	l.Debug("note locked", "note", note, "error_semitones", errorSemitones)
}

// Unvoiced logs a transition into or out of an unvoiced passage.
func Unvoiced(l *log.Logger, unvoiced bool) {
	l.Debug("voicing transition", "unvoiced", unvoiced)
}
