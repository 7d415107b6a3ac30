package jobqueue

import (
	"context"
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeOrderNotification  JobType = "order_notification"
	JobTypeProductImageDelete JobType = "product_image_delete"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// Handler processes one job of a registered type.
type Handler func(ctx context.Context, job *Job) error

// Order notification recipients. Each recipient gets its own job so a
// failed send only retries that email.
const (
	RecipientBuyer  = "buyer"
	RecipientSeller = "seller"
)

// OrderNotificationJobPayload asks for one email about a freshly settled
// order. An empty Recipient sends both emails.
type OrderNotificationJobPayload struct {
	OrderID   string `json:"order_id"`
	Recipient string `json:"recipient,omitempty"`
}

// ToMap converts the payload to a map for storage
func (p OrderNotificationJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"order_id":  p.OrderID,
		"recipient": p.Recipient,
	}
}

func OrderNotificationJobPayloadFromMap(data map[string]interface{}) (*OrderNotificationJobPayload, error) {
	var payload OrderNotificationJobPayload
	err := decodePayload(data, &payload)
	return &payload, err
}

// ProductImageDeleteJobPayload removes a replaced product image from object
// storage.
type ProductImageDeleteJobPayload struct {
	ProductID string `json:"product_id"`
	ObjectKey string `json:"object_key"`
}

func (p ProductImageDeleteJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"product_id": p.ProductID,
		"object_key": p.ObjectKey,
	}
}

func ProductImageDeleteJobPayloadFromMap(data map[string]interface{}) (*ProductImageDeleteJobPayload, error) {
	var payload ProductImageDeleteJobPayload
	err := decodePayload(data, &payload)
	return &payload, err
}

func decodePayload(data map[string]interface{}, out interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonData, out)
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
