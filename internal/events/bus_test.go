package events

import "testing"

func TestBusPublishesInOrder(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.Subscribe(func(e Event) { got = append(got, "a:"+e.Kind()) })
	bus.Subscribe(func(e Event) { got = append(got, "b:"+e.Kind()) })
	bus.Subscribe(nil)

	bus.Publish(Toast{Text: "hi"})

	if len(got) != 2 || got[0] != "a:toast" || got[1] != "b:toast" {
		t.Errorf("Publish() delivered %v", got)
	}
}

func TestBusWithoutSubscribers(t *testing.T) {
	NewBus().Publish(LockdownEnded{})
	OrNop(nil).Publish(LockdownEnded{})
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Publish(Toast{Text: "one"})
	r.Publish(Violation{RuleID: "x"})
	r.Publish(Toast{Text: "two"})

	if r.Count("toast") != 2 {
		t.Errorf("Count(toast) = %d, want 2", r.Count("toast"))
	}
	last, ok := r.Last("toast").(Toast)
	if !ok || last.Text != "two" {
		t.Errorf("Last(toast) = %v", r.Last("toast"))
	}
	if r.Last("phase_entered") != nil {
		t.Error("Last(unknown) should be nil")
	}
	r.Reset()
	if len(r.Events) != 0 {
		t.Error("Reset() should drop events")
	}
}
