// Package assessments owns every write to assessments, courses and
// skill_assessment_questions, plus the read side the HTTP API serves.
package assessments

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/KDigitalAi/Assessments/internal/database"
	"github.com/KDigitalAi/Assessments/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate record")

	errBadBlueprint = errors.New("unreadable blueprint")
)

// Store is the persistence surface the Persister and the HTTP handlers use.
// Find* methods return (nil, nil) when nothing matches.
type Store interface {
	ListAssessments(ctx context.Context) ([]models.Assessment, error)
	FindAssessmentBySource(ctx context.Context, sourceID string) (*models.Assessment, error)
	InsertAssessment(ctx context.Context, a *models.Assessment) error
	AssignCourse(ctx context.Context, assessmentID string, course models.Course) error
	FinalizeAssessment(ctx context.Context, assessmentID string, questionCount int, status models.AssessmentStatus) error
	FindCourseByName(ctx context.Context, name string) (*models.Course, error)
	InsertCourse(ctx context.Context, c *models.Course) error
	CountQuestions(ctx context.Context, assessmentID string) (int, error)
	InsertQuestions(ctx context.Context, questions []models.Question) error
	GetAssessment(ctx context.Context, id string) (*models.Assessment, error)
	ListQuestions(ctx context.Context, assessmentID string) ([]models.Question, error)
	Stats(ctx context.Context) (*models.AssessmentStats, error)
}

type SQLStore struct {
	db     *sql.DB
	driver string
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

const assessmentColumns = `id, title, description, skill_domain, course_id, question_count,
	difficulty, status, blueprint, created_at, updated_at`

const questionColumns = `id, assessment_id, source_id, source_kind, topic, question,
	options, correct_answer, explanation, difficulty, created_at`

// blueprintDoc is the SQL expression for the blueprint object. Older rows
// hold the object JSON-encoded as a string; those are unwrapped first.
func (s *SQLStore) blueprintDoc() string {
	if s.driver == database.DriverSQLite {
		return `(CASE
			WHEN NOT json_valid(blueprint) THEN NULL
			WHEN json_type(blueprint) <> 'text' THEN blueprint
			WHEN json_valid(json_extract(blueprint, '$')) THEN json_extract(blueprint, '$')
		END)`
	}
	return `(CASE WHEN jsonb_typeof(blueprint) = 'string' THEN (blueprint #>> '{}')::jsonb ELSE blueprint END)`
}

// backRef is the SQL expression for a blueprint's source id. Rows written
// before source_id existed only carry pdf_id.
func (s *SQLStore) backRef() string {
	doc := s.blueprintDoc()
	if s.driver == database.DriverSQLite {
		return `COALESCE(json_extract(` + doc + `, '$.source_id'), json_extract(` + doc + `, '$.pdf_id'))`
	}
	return `COALESCE(` + doc + `->>'source_id', ` + doc + `->>'pdf_id')`
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (*models.Assessment, error) {
	var a models.Assessment
	var blueprint []byte
	if err := row.Scan(&a.ID, &a.Title, &a.Description, &a.SkillDomain, &a.CourseID,
		&a.QuestionCount, &a.Difficulty, &a.Status, &blueprint, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if len(blueprint) > 0 {
		if err := json.Unmarshal(blueprint, &a.Blueprint); err != nil {
			return nil, fmt.Errorf("decode blueprint for %s: %w: %v", a.ID, errBadBlueprint, err)
		}
	}
	a.SourceID = a.Blueprint.BackRef()
	return &a, nil
}

func scanQuestion(row rowScanner) (*models.Question, error) {
	var q models.Question
	var options []byte
	if err := row.Scan(&q.ID, &q.AssessmentID, &q.SourceID, &q.SourceKind, &q.Topic, &q.QuestionText,
		&options, &q.CorrectAnswer, &q.Explanation, &q.Difficulty, &q.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(options, &q.Options); err != nil {
		return nil, fmt.Errorf("decode options for %s: %w", q.ID, err)
	}
	return &q, nil
}

// isUniqueViolation recognises unique-constraint failures from either driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) && liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ── Assessments ─────────────────────────────────────────

// ListAssessments returns every assessment, oldest first.
func (s *SQLStore) ListAssessments(ctx context.Context) ([]models.Assessment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+assessmentColumns+` FROM assessments ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	var out []models.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if errors.Is(err, errBadBlueprint) {
			log.Warn().Err(err).Msg("Skipping assessment with unreadable blueprint")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *SQLStore) FindAssessmentBySource(ctx context.Context, sourceID string) (*models.Assessment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+assessmentColumns+` FROM assessments
		 WHERE `+s.backRef()+` = $1
		 ORDER BY created_at ASC LIMIT 1`,
		sourceID,
	)
	a, err := scanAssessment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find assessment for %s: %w", sourceID, err)
	}
	return a, nil
}

// InsertAssessment fills in ID and timestamps when unset. A second
// assessment for the same source fails with ErrDuplicate.
func (s *SQLStore) InsertAssessment(ctx context.Context, a *models.Assessment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = a.CreatedAt

	blueprint, err := json.Marshal(a.Blueprint)
	if err != nil {
		return fmt.Errorf("encode blueprint: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assessments
		 (id, title, description, skill_domain, course_id, question_count, difficulty, status, blueprint, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.Title, a.Description, a.SkillDomain, a.CourseID, a.QuestionCount,
		a.Difficulty, a.Status, string(blueprint), a.CreatedAt, a.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("insert assessment for %s: %w", a.Blueprint.BackRef(), ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

func (s *SQLStore) AssignCourse(ctx context.Context, assessmentID string, course models.Course) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE assessments SET course_id = $1, skill_domain = $2, updated_at = $3 WHERE id = $4`,
		course.ID, course.Name, time.Now().UTC(), assessmentID,
	)
	if err != nil {
		return fmt.Errorf("assign course: %w", err)
	}
	return nil
}

func (s *SQLStore) FinalizeAssessment(ctx context.Context, assessmentID string, questionCount int, status models.AssessmentStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE assessments SET question_count = $1, status = $2, updated_at = $3 WHERE id = $4`,
		questionCount, status, time.Now().UTC(), assessmentID,
	)
	if err != nil {
		return fmt.Errorf("finalize assessment: %w", err)
	}
	return nil
}

func (s *SQLStore) GetAssessment(ctx context.Context, id string) (*models.Assessment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+assessmentColumns+` FROM assessments WHERE id = $1`, id)
	a, err := scanAssessment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	return a, nil
}

// ── Courses ─────────────────────────────────────────────

func (s *SQLStore) FindCourseByName(ctx context.Context, name string) (*models.Course, error) {
	var c models.Course
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM courses WHERE name = $1`, name,
	).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find course %q: %w", name, err)
	}
	return &c, nil
}

func (s *SQLStore) InsertCourse(ctx context.Context, c *models.Course) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO courses (id, name, description, created_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.Description, c.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("insert course %q: %w", c.Name, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

// ── Questions ───────────────────────────────────────────

func (s *SQLStore) CountQuestions(ctx context.Context, assessmentID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM skill_assessment_questions WHERE assessment_id = $1`, assessmentID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

// InsertQuestions writes all questions in one transaction; either every row
// lands or none does.
func (s *SQLStore) InsertQuestions(ctx context.Context, questions []models.Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i := range questions {
		q := &questions[i]
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if q.CreatedAt.IsZero() {
			q.CreatedAt = now
		}
		options, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("encode options: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO skill_assessment_questions (`+questionColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			q.ID, q.AssessmentID, q.SourceID, q.SourceKind, q.Topic, q.QuestionText,
			string(options), q.CorrectAnswer, q.Explanation, q.Difficulty, q.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert question %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (s *SQLStore) ListQuestions(ctx context.Context, assessmentID string) ([]models.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+questionColumns+` FROM skill_assessment_questions
		 WHERE assessment_id = $1 ORDER BY created_at ASC, id ASC`,
		assessmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var out []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

// ── Stats ───────────────────────────────────────────────

func (s *SQLStore) Stats(ctx context.Context) (*models.AssessmentStats, error) {
	stats := &models.AssessmentStats{QuestionsByDifficulty: make(map[models.Difficulty]int)}

	err := s.db.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM assessments),
			(SELECT COUNT(*) FROM assessments WHERE status = $1),
			(SELECT COUNT(*) FROM skill_assessment_questions),
			(SELECT COUNT(*) FROM courses)`,
		models.StatusPublished,
	).Scan(&stats.TotalAssessments, &stats.PublishedAssessments, &stats.TotalQuestions, &stats.TotalCourses)
	if err != nil {
		return nil, fmt.Errorf("assessment stats: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT difficulty, COUNT(*) FROM skill_assessment_questions GROUP BY difficulty`)
	if err != nil {
		return nil, fmt.Errorf("difficulty stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d models.Difficulty
		var n int
		if err := rows.Scan(&d, &n); err != nil {
			return nil, fmt.Errorf("scan difficulty stats: %w", err)
		}
		stats.QuestionsByDifficulty[d] = n
	}
	return stats, rows.Err()
}
