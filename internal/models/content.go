package models

type SourceKind string

const (
	SourceDocument SourceKind = "document"
	SourceVideo    SourceKind = "video"
)

// Source is one document or video whose text was chunked upstream.
// Title is the stored title and may be empty; DisplayName never is.
type Source struct {
	ID          string     `json:"source_id"`
	DisplayName string     `json:"display_name"`
	Title       string     `json:"title,omitempty"`
	Kind        SourceKind `json:"kind"`
}

type ContentChunk struct {
	SourceID string `json:"source_id"`
	Ordinal  int64  `json:"ordinal"`
	Text     string `json:"text"`
}

// KnowledgeSummary is the condensed view of a source used as a prompt hint.
// The zero value is a valid, empty summary.
type KnowledgeSummary struct {
	Topics           []string `json:"topics"`
	Definitions      []string `json:"definitions"`
	CodeExamples     []string `json:"code_examples"`
	ImportantPoints  []string `json:"important_points"`
	AdvancedConcepts []string `json:"advanced_concepts"`
	CommonErrors     []string `json:"common_errors,omitempty"`
}

func (k KnowledgeSummary) IsEmpty() bool {
	return len(k.Topics) == 0 && len(k.Definitions) == 0 && len(k.CodeExamples) == 0 &&
		len(k.ImportantPoints) == 0 && len(k.AdvancedConcepts) == 0 && len(k.CommonErrors) == 0
}
