package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anooppatell7/education-pixel-backend/internal/model"
)

// TestRepository handles mock test and question data access.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

// GetByID retrieves a full test definition including its ordered questions.
func (r *TestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.MockTest, error) {
	t := &model.MockTest{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, course, duration_minutes, total_marks, is_published, created_at, updated_at
		 FROM mock_tests WHERE id = $1`, id,
	).Scan(&t.ID, &t.Title, &t.Course, &t.DurationMinutes, &t.TotalMarks, &t.IsPublished, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	questions, err := r.listQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Questions = questions
	return t, nil
}

func (r *TestRepository) listQuestions(ctx context.Context, testID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, question_text, options, correct_option, marks, explanation, order_num
		 FROM questions WHERE test_id = $1
		 ORDER BY order_num`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.TestID, &q.QuestionText, &q.Options, &q.CorrectOption, &q.Marks, &q.Explanation, &q.OrderNum); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ListPublished retrieves catalog summaries for all published tests.
func (r *TestRepository) ListPublished(ctx context.Context) ([]model.TestSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.title, t.course, t.duration_minutes, t.total_marks, COUNT(q.id)
		 FROM mock_tests t
		 LEFT JOIN questions q ON q.test_id = t.id
		 WHERE t.is_published = TRUE
		 GROUP BY t.id
		 ORDER BY t.title`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []model.TestSummary
	for rows.Next() {
		var s model.TestSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Course, &s.DurationMinutes, &s.TotalMarks, &s.QuestionCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// ListPublishedFull retrieves every published test with questions, for
// cache prewarming at startup.
func (r *TestRepository) ListPublishedFull(ctx context.Context) ([]model.MockTest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, course, duration_minutes, total_marks, is_published, created_at, updated_at
		 FROM mock_tests WHERE is_published = TRUE`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tests []model.MockTest
	for rows.Next() {
		var t model.MockTest
		if err := rows.Scan(&t.ID, &t.Title, &t.Course, &t.DurationMinutes, &t.TotalMarks, &t.IsPublished, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tests {
		questions, err := r.listQuestions(ctx, tests[i].ID)
		if err != nil {
			return nil, err
		}
		tests[i].Questions = questions
	}
	return tests, nil
}

// Create inserts a new test definition. Used by seeding tooling.
func (r *TestRepository) Create(ctx context.Context, t *model.MockTest) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO mock_tests (title, course, duration_minutes, total_marks, is_published)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		t.Title, t.Course, t.DurationMinutes, t.TotalMarks, t.IsPublished,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// AddQuestion inserts a question for a test. Used by seeding tooling.
func (r *TestRepository) AddQuestion(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (test_id, question_text, options, correct_option, marks, explanation, order_num)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		q.TestID, q.QuestionText, q.Options, q.CorrectOption, q.MarkValue(), q.Explanation, q.OrderNum,
	).Scan(&q.ID)
}
