package trace

import "testing"

func TestTagsHas(t *testing.T) {
	tags := Tags{Trap, JavaCall}

	if !tags.Has(Trap) {
		t.Error("expected Trap")
	}
	if tags.Has(Media) {
		t.Error("unexpected Media")
	}
}

func TestCollector(t *testing.T) {
	var c Collector

	c.Add(&Event{Name: "a"})
	c.Add(&Event{Name: "b"})

	events := c.Events()
	if len(events) != 2 || events[0].Name != "a" || events[1].Name != "b" {
		t.Errorf("unexpected events %v", events)
	}

	c.Clear()
	if len(c.Events()) != 0 {
		t.Error("clear did not drop events")
	}
}
