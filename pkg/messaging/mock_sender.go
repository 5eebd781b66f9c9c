package messaging

import "sync"

// MockEventSender is an in-memory implementation of EventSender for testing.
// It records every event so tests can assert on emissions.
type MockEventSender struct {
	mu            sync.Mutex
	ListingEvents []*ListingEvent
	OrderEvents   []*OrderEvent
}

// NewMockEventSender creates a new MockEventSender.
func NewMockEventSender() *MockEventSender {
	return &MockEventSender{}
}

// SendListingEvent records the event.
func (m *MockEventSender) SendListingEvent(ev *ListingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListingEvents = append(m.ListingEvents, ev)
	return nil
}

// SendOrderEvent records the event.
func (m *MockEventSender) SendOrderEvent(ev *OrderEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrderEvents = append(m.OrderEvents, ev)
	return nil
}

// LastOrderEvent returns the most recent order event, or nil.
func (m *MockEventSender) LastOrderEvent() *OrderEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.OrderEvents) == 0 {
		return nil
	}
	return m.OrderEvents[len(m.OrderEvents)-1]
}

// Close does nothing.
func (m *MockEventSender) Close() error {
	return nil
}

// Ensure MockEventSender implements EventSender
var _ EventSender = (*MockEventSender)(nil)
