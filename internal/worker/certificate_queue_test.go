package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/anooppatell7/education-pixel-backend/internal/config"
	"github.com/anooppatell7/education-pixel-backend/internal/model"
)

func TestCertificateQueueEnqueue(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	q := NewCertificateQueue(rdb)
	regNo := "EP-REG-1001"
	issue := model.CertificateIssue{
		SerialNumber:       "EP-2026-000123456",
		ResultID:           uuid.New(),
		TestID:             uuid.New(),
		RegistrationNumber: &regNo,
	}

	if err := q.Enqueue(context.Background(), issue); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	raw, err := mr.Lpop(config.WorkerKey.IssueCertificatesQueue)
	if err != nil {
		t.Fatalf("queue empty: %v", err)
	}
	var got model.CertificateIssue
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if got.SerialNumber != issue.SerialNumber || got.ResultID != issue.ResultID {
		t.Errorf("payload = %+v, want %+v", got, issue)
	}
	if got.RegistrationNumber == nil || *got.RegistrationNumber != regNo {
		t.Errorf("registration number = %v, want %s", got.RegistrationNumber, regNo)
	}
}
