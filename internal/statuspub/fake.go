package statuspub

// FakePublisher records published events for test assertions.
type FakePublisher struct {
	// TrustEvents contains all trust transitions that were published.
	TrustEvents []TrustEvent

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// PublishError, if set, is returned by PublishTrust.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishTrust records the trust transition.
func (f *FakePublisher) PublishTrust(event TrustEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.TrustEvents = append(f.TrustEvents, event)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.SystemEvents = append(f.SystemEvents, event)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}
