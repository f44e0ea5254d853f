package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/anooppatell7/education-pixel-backend/internal/config"
	"github.com/anooppatell7/education-pixel-backend/internal/model"
)

// CertificateQueue pushes issuance jobs onto the Redis list drained by
// CertificateWorker.
type CertificateQueue struct {
	rdb *redis.Client
}

func NewCertificateQueue(rdb *redis.Client) *CertificateQueue {
	return &CertificateQueue{rdb: rdb}
}

func (q *CertificateQueue) Enqueue(ctx context.Context, issue model.CertificateIssue) error {
	raw, err := json.Marshal(issue)
	if err != nil {
		return fmt.Errorf("marshal certificate issue: %w", err)
	}
	return q.rdb.RPush(ctx, config.WorkerKey.IssueCertificatesQueue, raw).Err()
}
