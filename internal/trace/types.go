// Package trace provides types for execution trace collection.
package trace

import "time"

// Tag represents a trace event category.
// Tags are stored without a # prefix.
type Tag string

// Standard tags for trace events.
const (
	Trap        Tag = "trap"
	JavaCall    Tag = "java-call"
	JavaLoad    Tag = "java-load"
	Instantiate Tag = "instantiate"
	Alloc       Tag = "alloc"
	Kernel      Tag = "kernel"
	Graphics    Tag = "graphics"
	Database    Tag = "database"
	Media       Tag = "media"
	Resource    Tag = "resource"
	Insn        Tag = "insn"
)

// Tags is a collection of tags with helper methods.
type Tags []Tag

// Has returns true if the tag collection contains the given tag.
func (t Tags) Has(tag Tag) bool {
	for _, x := range t {
		if x == tag {
			return true
		}
	}
	return false
}

// Event is a single traced instruction or trap dispatch.
type Event struct {
	PC       uint32
	Category string
	Name     string
	Detail   string
	Tags     Tags
	At       time.Time
}

// Collector accumulates trace events in order.
type Collector struct {
	events []*Event
}

// Add appends an event.
func (c *Collector) Add(e *Event) {
	c.events = append(c.events, e)
}

// Events returns the collected events.
func (c *Collector) Events() []*Event {
	return c.events
}

// Clear drops all collected events.
func (c *Collector) Clear() {
	c.events = nil
}
