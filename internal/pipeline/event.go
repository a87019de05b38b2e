// Package pipeline describes the progress events a plan run emits per
// target. The CLI forwards them to a terminal view; everything else ignores
// them.
package pipeline

import "time"

// Stage describes a high-level planning phase.
type Stage string

const (
	StageLoad   Stage = "load"
	StageCheck  Stage = "check"
	StageGraph  Stage = "graph"
	StagePlan   Stage = "plan"
	StageLayout Stage = "layout"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a target (or for the whole run when Target is
// empty).
type Event struct {
	Target  string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// Emit forwards ev to sink; a nil sink drops it.
func Emit(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}
