package events

// Collector accumulates domain events raised during a state transition.
// Aggregates are copied on every transition, so Clone must be used before
// recording into a copy to avoid sharing the backing array.
type Collector struct {
	events []DomainEvent
}

// Record appends a domain event to the collector.
func (c *Collector) Record(event DomainEvent) {
	c.events = append(c.events, event)
}

// Events returns the collected domain events without clearing them.
func (c Collector) Events() []DomainEvent {
	return c.events
}

// Len returns the number of collected events.
func (c Collector) Len() int {
	return len(c.events)
}

// Clone returns an independent copy of the collector.
func (c Collector) Clone() Collector {
	if len(c.events) == 0 {
		return Collector{}
	}
	dst := make([]DomainEvent, len(c.events))
	copy(dst, c.events)
	return Collector{events: dst}
}

// Drain returns the collected domain events and clears the internal slice.
func (c *Collector) Drain() []DomainEvent {
	collected := c.events
	c.events = nil
	return collected
}
