package models

import (
	"bytes"
	"encoding/json"
	"time"
)

type AssessmentStatus string

const (
	StatusDraft     AssessmentStatus = "draft"
	StatusPublished AssessmentStatus = "published"
	StatusFailed    AssessmentStatus = "failed"
)

type DifficultyMix struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

func (m DifficultyMix) Total() int { return m.Easy + m.Medium + m.Hard }

// Blueprint is stored as JSON on the assessment row. SourceID is the
// back-reference used to find an assessment again on later runs.
type Blueprint struct {
	SourceID     string         `json:"source_id,omitempty"`
	LegacyPDFID  string         `json:"pdf_id,omitempty"`
	SourceKind   SourceKind     `json:"source_kind,omitempty"`
	UniqueHash   string         `json:"unique_hash,omitempty"`
	Distribution *DifficultyMix `json:"question_distribution,omitempty"`
}

// BackRef returns the source id this blueprint points at, honouring
// blueprints written before the source_id key existed.
func (b Blueprint) BackRef() string {
	if b.SourceID != "" {
		return b.SourceID
	}
	return b.LegacyPDFID
}

// UnmarshalJSON also accepts a blueprint stored as a JSON-encoded string,
// the shape older rows were written in.
func (b *Blueprint) UnmarshalJSON(data []byte) error {
	type plain Blueprint
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '"' {
		var encoded string
		if err := json.Unmarshal(trimmed, &encoded); err != nil {
			return err
		}
		data = []byte(encoded)
	}
	var out plain
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*b = Blueprint(out)
	return nil
}

type Assessment struct {
	ID            string           `json:"id"`
	SourceID      string           `json:"source_id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	SkillDomain   string           `json:"skill_domain"`
	CourseID      *string          `json:"course_id,omitempty"`
	QuestionCount int              `json:"question_count"`
	Difficulty    Difficulty       `json:"difficulty"`
	Status        AssessmentStatus `json:"status"`
	Blueprint     Blueprint        `json:"blueprint"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func (a Assessment) HasCourse() bool {
	return a.CourseID != nil && *a.CourseID != ""
}

type Course struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type AssessmentStats struct {
	TotalAssessments      int                `json:"total_assessments"`
	PublishedAssessments  int                `json:"published_assessments"`
	TotalQuestions        int                `json:"total_questions"`
	QuestionsByDifficulty map[Difficulty]int `json:"questions_by_difficulty"`
	TotalCourses          int                `json:"total_courses"`
}
