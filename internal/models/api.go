package models

type TokenRequest struct {
	Password string `json:"password"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

type GenerateRequest struct {
	SourceIDs []string `json:"source_ids,omitempty"`
	DryRun    bool     `json:"dry_run,omitempty"`
}

type AssessmentListResponse struct {
	Assessments []Assessment `json:"assessments"`
	Total       int          `json:"total"`
}

type AssessmentDetailResponse struct {
	Assessment Assessment `json:"assessment"`
	Questions  []Question `json:"questions"`
}

// ScoreRequest maps question id to the selected answer, given either as a
// letter (A-D) or as the option text.
type ScoreRequest struct {
	Answers map[string]string `json:"answers"`
}

type ScoreResponse struct {
	AssessmentID string          `json:"assessment_id"`
	Total        int             `json:"total"`
	Correct      int             `json:"correct"`
	Percentage   float64         `json:"percentage"`
	Results      []AnswerOutcome `json:"results"`
}

type AnswerOutcome struct {
	QuestionID    string `json:"question_id"`
	Selected      string `json:"selected"`
	CorrectOption string `json:"correct_option"`
	Correct       bool   `json:"correct"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
