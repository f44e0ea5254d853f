package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/anooppatell7/education-pixel-backend/internal/config"
	"github.com/anooppatell7/education-pixel-backend/internal/model"
)

const (
	CertBatchSize    = 50
	CertBatchTimeout = 2 * time.Second
	CertPollTimeout  = 1 * time.Second
)

// CertificateWorker drains the issuance queue and writes certificate rows
// in batches. Result rows exist before their certificate row does, so the
// verify endpoint keeps a results-table fallback for the gap.
type CertificateWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewCertificateWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *CertificateWorker {
	return &CertificateWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "certificate_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *CertificateWorker) Start(ctx context.Context) {
	w.log.Info().Msg("CertificateWorker started")

	batch := make([]*model.CertificateIssue, 0, CertBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= CertBatchSize || time.Since(lastFlush) >= CertBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, CertPollTimeout, config.WorkerKey.IssueCertificatesQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var issue model.CertificateIssue
			if err := json.Unmarshal([]byte(item[1]), &issue); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &issue)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert wrapper
// ----------------------------------------------------------------

func (w *CertificateWorker) flushSafe(ctx context.Context, batch []*model.CertificateIssue) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkInsertCertificates(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk certificate insert failed, using fallback")

		for _, issue := range batch {
			if err := w.persistSingle(ctx, issue); err != nil {
				w.log.Error().Err(err).Str("serial", issue.SerialNumber).Msg("persistSingle failed — requeueing")
				raw, _ := json.Marshal(issue)
				w.rdb.RPush(ctx, config.WorkerKey.IssueCertificatesQueue, raw)
			}
		}
	}
}

// ----------------------------------------------------------------
// BULK PostgreSQL INSERT using UNNEST
// ----------------------------------------------------------------

func (w *CertificateWorker) bulkInsertCertificates(ctx context.Context, batch []*model.CertificateIssue) error {
	n := len(batch)

	serials := make([]string, 0, n)
	resultIDs := make([]string, 0, n)
	testIDs := make([]string, 0, n)
	regNumbers := make([]*string, 0, n)

	for _, issue := range batch {
		serials = append(serials, issue.SerialNumber)
		resultIDs = append(resultIDs, issue.ResultID.String())
		testIDs = append(testIDs, issue.TestID.String())
		regNumbers = append(regNumbers, issue.RegistrationNumber)
	}

	query := `
		INSERT INTO certificates (serial_number, result_id, test_id, registration_number)
		SELECT u.serial_number, u.result_id, u.test_id, u.registration_number
		FROM UNNEST(
			$1::text[],
			$2::uuid[],
			$3::uuid[],
			$4::text[]
		) AS u (serial_number, result_id, test_id, registration_number)
		ON CONFLICT (serial_number) DO NOTHING
	`

	_, err := w.pool.Exec(ctx, query, serials, resultIDs, testIDs, regNumbers)
	return err
}

// ----------------------------------------------------------------
// FALLBACK single insert
// ----------------------------------------------------------------

func (w *CertificateWorker) persistSingle(ctx context.Context, issue *model.CertificateIssue) error {
	_, err := w.pool.Exec(ctx,
		`INSERT INTO certificates (serial_number, result_id, test_id, registration_number)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (serial_number) DO NOTHING`,
		issue.SerialNumber, issue.ResultID, issue.TestID, issue.RegistrationNumber,
	)

	return err
}
