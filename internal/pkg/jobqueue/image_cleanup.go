package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
)

// ObjectDeleter removes stored objects by key.
type ObjectDeleter interface {
	Delete(ctx context.Context, key string) error
}

// NewProductImageDeleteHandler removes product images that were replaced by
// a new upload.
func NewProductImageDeleteHandler(store ObjectDeleter) Handler {
	return func(ctx context.Context, job *Job) error {
		payload, err := ProductImageDeleteJobPayloadFromMap(job.Payload)
		if err != nil {
			return fmt.Errorf("failed to parse image delete payload: %w", err)
		}
		if payload.ObjectKey == "" {
			return nil
		}
		if err := store.Delete(ctx, payload.ObjectKey); err != nil {
			return fmt.Errorf("failed to delete %s: %w", payload.ObjectKey, err)
		}
		log.Infof("[ImageCleanup] Deleted old image %s of product %s", payload.ObjectKey, payload.ProductID)
		return nil
	}
}

// ImageCleaner enqueues deletion of replaced product images.
type ImageCleaner struct {
	queue *Queue
}

func NewImageCleaner(q *Queue) *ImageCleaner {
	return &ImageCleaner{queue: q}
}

func (c *ImageCleaner) ImageReplaced(ctx context.Context, productID, oldKey string) error {
	if oldKey == "" {
		return nil
	}
	_, err := c.queue.EnqueueJob(ctx, JobTypeProductImageDelete, ProductImageDeleteJobPayload{
		ProductID: productID,
		ObjectKey: oldKey,
	}.ToMap())
	return err
}
