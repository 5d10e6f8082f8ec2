package generator

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/KDigitalAi/Assessments/internal/models"
)

// ParseCandidates decodes a model response into candidate questions.
// It accepts a JSON array, an object with a "questions" array, or a single
// question object, optionally wrapped in markdown code fences or prose.
// Fields of the wrong JSON type are coerced or left empty so the validator,
// not the decoder, decides what is acceptable.
func ParseCandidates(raw string) ([]models.CandidateQuestion, error) {
	cleaned := stripCodeFences(raw)
	if cleaned == "" {
		return nil, &ParseError{Kind: ErrEmptyResponse}
	}

	elems, err := decodeQuestionList([]byte(cleaned))
	if err != nil {
		// the model sometimes wraps the array in commentary
		if start, end := strings.Index(cleaned, "["), strings.LastIndex(cleaned, "]"); start >= 0 && end > start {
			elems, err = decodeQuestionList([]byte(cleaned[start : end+1]))
		}
	}
	if err != nil {
		return nil, &ParseError{Kind: ErrMalformedJSON, Detail: err.Error()}
	}
	if len(elems) == 0 {
		return nil, &ParseError{Kind: ErrEmptyResponse, Detail: "no questions in response"}
	}

	candidates := make([]models.CandidateQuestion, 0, len(elems))
	for _, e := range elems {
		candidates = append(candidates, decodeCandidate(e))
	}
	return candidates, nil
}

func decodeQuestionList(data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, err
		}
		if qs, ok := wrapper["questions"]; ok {
			var elems []json.RawMessage
			if err := json.Unmarshal(qs, &elems); err != nil {
				return nil, err
			}
			return elems, nil
		}
		return []json.RawMessage{json.RawMessage(data)}, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, err
	}
	return elems, nil
}

func decodeCandidate(raw json.RawMessage) models.CandidateQuestion {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.CandidateQuestion{}
	}

	q := models.CandidateQuestion{
		QuestionText:  firstString(fields, "question", "question_text"),
		CorrectAnswer: firstString(fields, "correct_answer", "answer"),
		Explanation:   firstString(fields, "explanation"),
		Difficulty:    firstString(fields, "difficulty"),
		Topic:         firstString(fields, "topic"),
	}

	if opts, ok := fields["options"]; ok {
		var elems []json.RawMessage
		if json.Unmarshal(opts, &elems) == nil {
			q.Options = make([]string, len(elems))
			for i, e := range elems {
				q.Options[i] = asString(e)
			}
		}
	}
	return q
}

func firstString(fields map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		if v, ok := fields[k]; ok {
			if s := asString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// asString renders strings, numbers and booleans as text; anything else
// becomes "".
func asString(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		// drop the opening fence line, language tag included
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	} else if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
	}
	// only a fence after the last closing bracket ends the payload; fences
	// before it belong to code inside question text
	if i := strings.LastIndex(s, "```"); i >= 0 && i > strings.LastIndexAny(s, "]}") {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// parseObject decodes a JSON object response, tolerating fences and
// surrounding prose.
func parseObject(raw string, dst any) error {
	cleaned := stripCodeFences(raw)
	if cleaned == "" {
		return &ParseError{Kind: ErrEmptyResponse}
	}
	err := json.Unmarshal([]byte(cleaned), dst)
	if err != nil {
		if start, end := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); start >= 0 && end > start {
			err = json.Unmarshal([]byte(cleaned[start:end+1]), dst)
		}
	}
	if err != nil {
		return &ParseError{Kind: ErrMalformedJSON, Detail: err.Error()}
	}
	return nil
}
