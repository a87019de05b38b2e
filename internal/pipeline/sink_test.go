package pipeline

import "testing"

func TestChannelSinkForwards(t *testing.T) {
	ch := make(chan Event, 2)
	sink := ChannelSink{Ch: ch}
	Emit(sink, Event{Target: "c", Stage: StagePlan, Status: StatusWorking})
	Emit(sink, Event{Target: "c", Stage: StagePlan, Status: StatusDone})
	close(ch)
	var got []Status
	for ev := range ch {
		got = append(got, ev.Status)
	}
	if len(got) != 2 || got[0] != StatusWorking || got[1] != StatusDone {
		t.Fatalf("got %v", got)
	}
}

func TestNilSinksDrop(t *testing.T) {
	Emit(nil, Event{Target: "c"})
	ChannelSink{}.OnEvent(Event{Target: "c"})
	var r Recorder
	Emit(&r, Event{Target: "rust", Status: StatusQueued})
	if len(r.Events) != 1 || r.Events[0].Target != "rust" {
		t.Fatalf("recorder = %+v", r.Events)
	}
}
