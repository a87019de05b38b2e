package pipeline

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// Recorder keeps every event in order. Tests use it to assert on a run.
type Recorder struct {
	Events []Event
}

func (r *Recorder) OnEvent(evt Event) {
	r.Events = append(r.Events, evt)
}
