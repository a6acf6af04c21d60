package driver

import "time"

// Stage names the driver phase a progress event belongs to.
type Stage string

const (
	StageLoad     Stage = "load"
	StageLower    Stage = "lower"
	StageValidate Stage = "validate"
	StageCache    Stage = "cache"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a crate. The last event of every crate has no
// Stage and a Status of done or error.
type Event struct {
	Crate   string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent is called from the
// lowering goroutines and must be safe for concurrent use.
type ProgressSink interface {
	OnEvent(Event)
}

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

func (o Options) progress(evt Event) {
	if o.Progress != nil {
		o.Progress.OnEvent(evt)
	}
}
