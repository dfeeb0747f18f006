package discovery

/*------------------------------------------------------------------
 *
 * Purpose:	Advertise the control surface on the LAN via mDNS, so a
 *		companion phone/tablet controller can find a running
 *		host without the user typing in an address.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"fmt"

	"github.com/brutella/dnssd"
)

// Advertiser owns the lifetime of one published service instance.
type Advertiser struct {
	responder dnssd.Responder
	cancel    context.CancelFunc
}

// Advertise publishes "name" as a _retune-control._tcp service on
// port, running the responder loop until Close is called.
func Advertise(ctx context.Context, name string, port int) (*Advertiser, error) {
	cfg := dnssd.Config{
		Name: name,
		Type: "_retune-control._tcp",
		Port: port,
	}
	service, err := dnssd.NewService(cfg)
	if err != nil {
		return nil, fmt.Errorf("discovery: configure service: %w", err)
	}

	responder, err := dnssd.NewResponder()
	if err != nil {
		return nil, fmt.Errorf("discovery: new responder: %w", err)
	}
	if _, err := responder.Add(service); err != nil {
		return nil, fmt.Errorf("discovery: add service: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	go responder.Respond(runCtx)

	return &Advertiser{responder: responder, cancel: cancel}, nil
}

// Close stops advertising the service.
func (a *Advertiser) Close() {
	a.cancel()
}
