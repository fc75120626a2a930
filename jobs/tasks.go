package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskFeedRefresh re-pulls the finance feed and archives the yearly totals.
	TaskFeedRefresh = "finance:feed_refresh"
)

// FeedRefreshPayload describes why a refresh was requested.
type FeedRefreshPayload struct {
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewFeedRefreshTask constructs an Asynq task for TaskFeedRefresh.
func NewFeedRefreshTask(payload FeedRefreshPayload, opts ...asynq.Option) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	base := []asynq.Option{
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(3),
		asynq.Timeout(2 * time.Minute),
	}
	return asynq.NewTask(TaskFeedRefresh, data, append(base, opts...)...), nil
}
