package jobqueue

import (
	"encoding/json"
	"errors"
	"time"
)

// JobType selects the handler of a job.
type JobType string

const (
	JobTypeOrderNotification JobType = "order_notification"
	JobTypeArchiveReceipt    JobType = "archive_receipt"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job is the unit stored in Redis. Payload holds the JSON of one of the
// payload types below and is read back with Decode.
type Job struct {
	ID          string          `json:"id"`
	Type        JobType         `json:"type"`
	Status      JobStatus       `json:"status"`
	Payload     json.RawMessage `json:"payload"`
	UniqueKey   string          `json:"unique_key,omitempty"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	LastError   string          `json:"last_error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
}

// EnqueueOption adjusts a job before it is stored.
type EnqueueOption func(*Job)

// WithUniqueKey keeps at most one unfinished job per key. A second Enqueue
// with the same key returns ErrDuplicateJob until the first job finishes.
func WithUniqueKey(key string) EnqueueOption {
	return func(j *Job) { j.UniqueKey = key }
}

func WithMaxAttempts(n int) EnqueueOption {
	return func(j *Job) {
		if n > 0 {
			j.MaxAttempts = n
		}
	}
}

// Decode unmarshals the payload into v.
func (j *Job) Decode(v interface{}) error {
	if len(j.Payload) == 0 {
		return errors.New("empty payload")
	}
	return json.Unmarshal(j.Payload, v)
}

func (j *Job) start(now time.Time) {
	j.Status = JobStatusProcessing
	j.Attempts++
	j.UpdatedAt = now
	j.StartedAt = &now
}

// fail records err and reports whether another attempt is allowed.
func (j *Job) fail(err error, now time.Time) bool {
	j.LastError = err.Error()
	j.UpdatedAt = now
	j.StartedAt = nil
	if j.Attempts < j.MaxAttempts {
		j.Status = JobStatusRetrying
		return true
	}
	j.Status = JobStatusFailed
	return false
}

func (j *Job) complete(now time.Time) {
	j.Status = JobStatusCompleted
	j.LastError = ""
	j.UpdatedAt = now
}

// retryAt doubles the wait after every failed attempt.
func (j *Job) retryAt(base time.Duration, now time.Time) time.Time {
	wait := base
	for i := 1; i < j.Attempts; i++ {
		wait *= 2
	}
	return now.Add(wait)
}

// OrderNotification asks for the paid-order email of one order.
type OrderNotification struct {
	OrderID string `json:"order_id"`
	EventID string `json:"event_id,omitempty"`
}

func (p OrderNotification) Validate() error {
	if p.OrderID == "" {
		return errors.New("missing order_id")
	}
	return nil
}

// ArchiveReceipt asks for the receipt of an order to be stored in S3.
type ArchiveReceipt struct {
	OrderID   string `json:"order_id"`
	ObjectKey string `json:"object_key"`
}

func (p ArchiveReceipt) Validate() error {
	if p.OrderID == "" || p.ObjectKey == "" {
		return errors.New("missing order_id or object_key")
	}
	return nil
}
