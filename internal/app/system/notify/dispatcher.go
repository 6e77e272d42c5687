// internal/app/system/notify/dispatcher.go
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// deliveryTimeout bounds one async delivery, including bulk fan-out.
const deliveryTimeout = 60 * time.Second

// Dispatcher runs deliveries asynchronously. The caller returns
// immediately; failures go to the log, never back to the caller. This is
// the explicit failure channel for fire-and-forget side effects.
type Dispatcher struct {
	sender Sender
	log    *zap.Logger
	wg     sync.WaitGroup
}

// NewDispatcher wraps a Sender with async dispatch and failure logging.
func NewDispatcher(sender Sender, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, log: logger}
}

// Send queues one direct message. Never blocks on delivery.
func (d *Dispatcher) Send(recipient, subject, body string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()
		if err := d.sender.Send(ctx, recipient, subject, body); err != nil {
			d.log.Error("notification delivery failed",
				zap.String("recipient", recipient),
				zap.String("subject", subject),
				zap.Error(err))
		}
	}()
}

// SendBulk queues a templated fan-out to a recipient set. An empty set is
// a no-op. Never blocks on delivery.
func (d *Dispatcher) SendBulk(recipients []string, templateKey string, payload map[string]string) {
	if len(recipients) == 0 {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()
		if err := d.sender.SendBulk(ctx, recipients, templateKey, payload); err != nil {
			d.log.Error("bulk notification delivery failed",
				zap.String("template", templateKey),
				zap.Int("recipients", len(recipients)),
				zap.Error(err))
		}
	}()
}

// Wait blocks until all queued deliveries finish. Called during shutdown
// and by tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
