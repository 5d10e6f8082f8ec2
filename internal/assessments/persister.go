package assessments

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/KDigitalAi/Assessments/internal/models"
)

var (
	ErrAlreadyPopulated  = errors.New("assessment already has questions")
	ErrNoQuestionsStored = errors.New("no questions stored")
)

const DefaultBatchSize = 50

// Persister is the dedup layer in front of Store. It guarantees one
// assessment per source and writes each assessment's questions once.
type Persister struct {
	store     Store
	batchSize int
}

func NewPersister(store Store, batchSize int) *Persister {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Persister{store: store, batchSize: batchSize}
}

// LoadIndex scans every assessment once and indexes it by back-reference.
func (p *Persister) LoadIndex(ctx context.Context) (*Index, error) {
	existing, err := p.store.ListAssessments(ctx)
	if err != nil {
		return nil, err
	}
	return NewIndex(existing), nil
}

// Existing describes what is already stored for a source.
type Existing struct {
	Assessment    *models.Assessment
	QuestionCount int
}

// Complete means there is nothing left to do for the source.
func (e Existing) Complete() bool {
	return e.Assessment != nil && e.Assessment.HasCourse() && e.QuestionCount > 0
}

// Inspect answers from the index; only the question count hits the store.
func (p *Persister) Inspect(ctx context.Context, idx *Index, sourceID string) (Existing, error) {
	a, ok := idx.Lookup(sourceID)
	if !ok {
		return Existing{}, nil
	}
	n, err := p.store.CountQuestions(ctx, a.ID)
	if err != nil {
		return Existing{}, err
	}
	return Existing{Assessment: &a, QuestionCount: n}, nil
}

// AssessmentSpec is everything needed to create an assessment for a source.
type AssessmentSpec struct {
	Source     models.Source
	CourseName string
	Difficulty models.Difficulty
	Target     int
	Mix        models.DifficultyMix
}

func TitleFor(src models.Source) string {
	if src.Title != "" {
		return src.Title
	}
	return "Assessment for " + src.ID
}

func sourceHash(sourceID string) string {
	sum := md5.Sum([]byte(sourceID))
	return hex.EncodeToString(sum[:])
}

// EnsureAssessment returns the source's assessment, creating it (and its
// course) if needed. An existing assessment without a course gets one
// assigned. The result is always remembered in idx before returning.
func (p *Persister) EnsureAssessment(ctx context.Context, idx *Index, spec AssessmentSpec) (models.Assessment, error) {
	if a, ok := idx.Lookup(spec.Source.ID); ok {
		return p.backfillCourse(ctx, idx, a, spec.CourseName)
	}

	existing, err := p.store.FindAssessmentBySource(ctx, spec.Source.ID)
	if err != nil {
		return models.Assessment{}, err
	}
	if existing != nil {
		idx.Remember(*existing)
		return p.backfillCourse(ctx, idx, *existing, spec.CourseName)
	}

	course, err := p.ensureCourse(ctx, spec.CourseName)
	if err != nil {
		return models.Assessment{}, err
	}

	title := TitleFor(spec.Source)
	mix := spec.Mix
	a := models.Assessment{
		SourceID:      spec.Source.ID,
		Title:         title,
		Description:   "Auto-generated assessment based on: " + title,
		SkillDomain:   course.Name,
		CourseID:      &course.ID,
		QuestionCount: spec.Target,
		Difficulty:    spec.Difficulty,
		Status:        models.StatusDraft,
		Blueprint: models.Blueprint{
			SourceID:     spec.Source.ID,
			SourceKind:   spec.Source.Kind,
			UniqueHash:   sourceHash(spec.Source.ID),
			Distribution: &mix,
		},
	}

	err = p.store.InsertAssessment(ctx, &a)
	if errors.Is(err, ErrDuplicate) {
		// Another writer got there between our lookup and insert.
		winner, ferr := p.store.FindAssessmentBySource(ctx, spec.Source.ID)
		if ferr != nil || winner == nil {
			return models.Assessment{}, err
		}
		log.Warn().Str("source_id", spec.Source.ID).Str("assessment_id", winner.ID).
			Msg("Assessment created concurrently, adopting existing row")
		idx.Remember(*winner)
		return p.backfillCourse(ctx, idx, *winner, spec.CourseName)
	}
	if err != nil {
		return models.Assessment{}, err
	}

	idx.Remember(a)
	log.Info().Str("source_id", spec.Source.ID).Str("assessment_id", a.ID).
		Str("course", course.Name).Msg("Created assessment")
	return a, nil
}

func (p *Persister) backfillCourse(ctx context.Context, idx *Index, a models.Assessment, courseName string) (models.Assessment, error) {
	if a.HasCourse() {
		return a, nil
	}
	course, err := p.ensureCourse(ctx, courseName)
	if err != nil {
		return models.Assessment{}, err
	}
	if err := p.store.AssignCourse(ctx, a.ID, *course); err != nil {
		return models.Assessment{}, err
	}
	a.CourseID = &course.ID
	a.SkillDomain = course.Name
	idx.Remember(a)
	log.Info().Str("assessment_id", a.ID).Str("course", course.Name).Msg("Backfilled course")
	return a, nil
}

func (p *Persister) ensureCourse(ctx context.Context, name string) (*models.Course, error) {
	if c, err := p.store.FindCourseByName(ctx, name); err != nil || c != nil {
		return c, err
	}

	c := &models.Course{Name: name, Description: name + " course assessments"}
	err := p.store.InsertCourse(ctx, c)
	if errors.Is(err, ErrDuplicate) {
		existing, ferr := p.store.FindCourseByName(ctx, name)
		if ferr != nil || existing == nil {
			return nil, err
		}
		return existing, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// SaveQuestions inserts accepted questions in batches and publishes the
// assessment with the number actually stored. A failed batch is logged and
// skipped. Nothing is written if the assessment already has questions.
func (p *Persister) SaveQuestions(ctx context.Context, a models.Assessment, src models.Source, accepted []models.AcceptedQuestion) (int, error) {
	existing, err := p.store.CountQuestions(ctx, a.ID)
	if err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, fmt.Errorf("assessment %s has %d questions: %w", a.ID, existing, ErrAlreadyPopulated)
	}

	rows := make([]models.Question, len(accepted))
	for i, q := range accepted {
		rows[i] = models.Question{
			AssessmentID:  a.ID,
			SourceID:      src.ID,
			SourceKind:    src.Kind,
			Topic:         q.Topic,
			QuestionText:  q.Text,
			Options:       q.Options[:],
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			Difficulty:    q.Difficulty,
		}
	}

	inserted := 0
	for start := 0; start < len(rows); start += p.batchSize {
		end := min(start+p.batchSize, len(rows))
		if err := p.store.InsertQuestions(ctx, rows[start:end]); err != nil {
			log.Warn().Err(err).Str("assessment_id", a.ID).
				Int("batch_start", start).Int("batch_size", end-start).
				Msg("Question batch insert failed, skipping")
			continue
		}
		inserted += end - start
	}

	if inserted == 0 {
		return 0, fmt.Errorf("assessment %s: %w", a.ID, ErrNoQuestionsStored)
	}

	if err := p.store.FinalizeAssessment(ctx, a.ID, inserted, models.StatusPublished); err != nil {
		return inserted, err
	}
	return inserted, nil
}

// MarkFailed flags an assessment left without questions by a failed run.
// The next run finds it through its back-reference and retries.
func (p *Persister) MarkFailed(ctx context.Context, a models.Assessment) error {
	return p.store.FinalizeAssessment(ctx, a.ID, 0, models.StatusFailed)
}
