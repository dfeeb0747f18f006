package footswitch

/*------------------------------------------------------------------
 *
 * Purpose:	Read one GPIO line as a momentary bypass footswitch,
 *		the kind of control an outboard pedal or rack build of
 *		this processor would expose even though the original
 *		desktop plugin never needed one.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// Switch watches one GPIO line and calls onPress each time it
// transitions to the active level.
type Switch struct {
	line *gpiocdev.Line
}

// Open requests the named line on chip as a pulled-up input with edge
// detection, invoking onPress on each falling edge (button pulling the
// line low, the common wiring for a footswitch). Edges are not
// debounced.
func Open(chip string, offset int, onPress func()) (*Switch, error) {
	handler := func(evt gpiocdev.LineEvent) {
		if evt.Type == gpiocdev.LineEventFallingEdge {
			onPress()
		}
	}

	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(handler),
	)
	if err != nil {
		return nil, fmt.Errorf("footswitch: request %s:%d: %w", chip, offset, err)
	}
	return &Switch{line: line}, nil
}

// Close releases the GPIO line.
func (s *Switch) Close() error {
	return s.line.Close()
}
