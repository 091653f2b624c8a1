package obs

import (
	"context"
	"time"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// WithRequestID stores the request id used to correlate log lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// Time logs how long the named operation took. Use it as
//
//	defer obs.Time(ctx, "op")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		logger := Logger(ctx)
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			logger.Warn().Str("op", name).Dur("dur", dur).Err(*errp).Msg("operation failed")
			return
		}
		logger.Debug().Str("op", name).Dur("dur", dur).Msg("operation finished")
	}
}
