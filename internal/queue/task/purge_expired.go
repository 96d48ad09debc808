package task

import (
	"time"

	"github.com/hibiken/asynq"
)

const (
	PurgeExpiredTokensTaskName = "purgeExpiredTokens"
	MaintenanceQueueName       = "maintenance"

	purgeExpiredTokensTimeout = time.Minute
	purgeExpiredTokensRetries = 3
)

// NewPurgeExpiredTokensTask builds the task that deletes refresh tokens past
// their expiry. It carries no payload.
func NewPurgeExpiredTokensTask(opts ...asynq.Option) *asynq.Task {
	opts = append([]asynq.Option{
		asynq.MaxRetry(purgeExpiredTokensRetries),
		asynq.Queue(MaintenanceQueueName),
		asynq.Timeout(purgeExpiredTokensTimeout),
	}, opts...)

	return asynq.NewTask(PurgeExpiredTokensTaskName, nil, opts...)
}
