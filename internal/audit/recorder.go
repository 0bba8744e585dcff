package audit

import (
	"context"

	"go.uber.org/zap"
)

// Recorder writes audit entries best-effort: a store failure is logged and
// swallowed so it never fails the request being recorded. Entries are also
// mirrored to the application log.
type Recorder struct {
	store Store
	log   *zap.Logger
}

func NewRecorder(store Store, log *zap.Logger) *Recorder {
	return &Recorder{store: store, log: log}
}

func (r *Recorder) Record(ctx context.Context, event, desc, accountID string) {
	fields := []zap.Field{
		zap.String("event", event),
		zap.String("desc", desc),
	}
	if accountID != "" {
		fields = append(fields, zap.String("account_id", accountID))
	}

	if _, err := r.store.Append(ctx, event, desc, accountID); err != nil {
		r.log.Warn("audit write failed", append(fields, zap.Error(err))...)
		return
	}
	r.log.Info("audit", fields...)
}
