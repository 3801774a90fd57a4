// Package sms forwards domain events to the outbound SMS channel.
package sms

import (
	"context"
	"sync"

	"github.com/sjperalta/fintera-ops/pkg/logger"
)

// Event kinds
const (
	EventInvoiceReminder = "INVOICE_REMINDER"
	EventInvoiceOverdue  = "INVOICE_OVERDUE"
)

// Dispatcher sends an SMS for a domain event. Callers treat it as best effort.
type Dispatcher interface {
	TrySendEvent(ctx context.Context, tenantID uint, kind string, data map[string]interface{}) error
}

// LogDispatcher records events in the application log. It is used until a carrier is configured.
type LogDispatcher struct{}

// NewLogDispatcher creates a log-only dispatcher
func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

func (d *LogDispatcher) TrySendEvent(ctx context.Context, tenantID uint, kind string, data map[string]interface{}) error {
	logger.WithTenant(tenantID).Info("[SMS] Event queued", "kind", kind, "data", data)
	return nil
}

// Event is one dispatched SMS event
type Event struct {
	TenantID uint
	Kind     string
	Data     map[string]interface{}
}

// MemoryDispatcher keeps events in memory; financectl dry runs and tests read them back
type MemoryDispatcher struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

// NewMemoryDispatcher creates an empty in-memory dispatcher
func NewMemoryDispatcher() *MemoryDispatcher {
	return &MemoryDispatcher{}
}

func (d *MemoryDispatcher) TrySendEvent(ctx context.Context, tenantID uint, kind string, data map[string]interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.events = append(d.events, Event{TenantID: tenantID, Kind: kind, Data: data})
	return nil
}

// Events returns a copy of the dispatched events
func (d *MemoryDispatcher) Events() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Event(nil), d.events...)
}
