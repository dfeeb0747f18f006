package hotplug

/*------------------------------------------------------------------
 *
 * Purpose:	Watch for audio interfaces being plugged or unplugged.
 *		A JACK-hosted build never needs this - JACK already
 *		renegotiates the graph on a device change - but a
 *		direct ALSA/CoreAudio host binding has to notice the
 *		interface it opened has disappeared and ask the host
 *		to restart its stream against whatever is current.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"fmt"

	"github.com/jochenvg/go-udev"
)

// Event describes one hot-plug transition.
type Event struct {
	Action string // "add" or "remove"
	Name   string // kernel device name, e.g. "card1"
}

// Watcher streams sound-subsystem uevents from the kernel until its
// context is cancelled.
type Watcher struct {
	events chan Event
}

// Watch starts monitoring and returns a channel of events; it is
// closed when ctx is cancelled. Errors setting up the udev monitor
// are returned immediately rather than surfacing on the channel.
func Watch(ctx context.Context) (*Watcher, error) {
	u := udev.Udev{}
	mon := u.NewMonitorFromNetlink("udev")
	if mon == nil {
		return nil, fmt.Errorf("hotplug: could not open udev netlink monitor")
	}
	if err := mon.FilterAddMatchSubsystem("sound"); err != nil {
		return nil, fmt.Errorf("hotplug: filter sound subsystem: %w", err)
	}

	deviceCh, errCh, err := mon.DeviceChan(ctx)
	if err != nil {
		return nil, fmt.Errorf("hotplug: start monitor: %w", err)
	}

	w := &Watcher{events: make(chan Event, 8)}
	go w.run(ctx, deviceCh, errCh)
	return w, nil
}

func (w *Watcher) run(ctx context.Context, deviceCh <-chan *udev.Device, errCh <-chan error) {
	defer close(w.events)
	for {
		select {
		case <-ctx.Done():
			return
		case dev, ok := <-deviceCh:
			if !ok {
				return
			}
			ev := Event{Action: dev.Action(), Name: dev.Sysname()}
			select {
			case w.events <- ev:
			case <-ctx.Done():
				return
			}
		case _, ok := <-errCh:
			if !ok {
				return
			}
		}
	}
}

// Events returns the channel hot-plug transitions arrive on.
func (w *Watcher) Events() <-chan Event {
	return w.events
}
