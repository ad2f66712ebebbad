package audit

import (
	"context"

	"crm_backoffice/platform/logger"
)

// Recorder wraps a Sink and swallows its failures after logging them.
type Recorder struct {
	sink Sink
	log  *logger.Logger
}

func NewRecorder(sink Sink, log *logger.Logger) *Recorder {
	return &Recorder{sink: sink, log: log}
}

// Record forwards entry to the sink. It never returns an error.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if r == nil || r.sink == nil {
		return
	}
	if err := r.sink.Record(ctx, entry); err != nil && r.log != nil {
		r.log.HookFailed("audit."+entry.EntityType, entry.EntityID.String(), err)
	}
}
