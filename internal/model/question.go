package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type QuestionType string

const (
	QuestionMCQ       QuestionType = "mcq"
	QuestionMatching  QuestionType = "matching"
	QuestionFillBlank QuestionType = "fill_blank"
	QuestionEssay     QuestionType = "essay"
)

// Exam parts: part 1 is auto-marked against CorrectAnswer, part 2 is graded
// manually by a teacher.
const (
	PartAuto   = 1
	PartManual = 2
)

type ExamQuestion struct {
	ID        uint  `gorm:"primarykey" json:"id"`
	ExamID    uint  `json:"exam_id" gorm:"not null;index"`
	SectionID *uint `json:"section_id,omitempty" gorm:"index"`
	GroupID   *uint `json:"group_id,omitempty" gorm:"index"`

	Type          QuestionType `json:"type" gorm:"not null"`
	Question      string       `json:"question" gorm:"type:text;not null"`
	Options       string       `json:"options,omitempty" gorm:"type:jsonb"`
	CorrectAnswer string       `json:"correct_answer,omitempty" gorm:"type:text"`
	Points        float64      `json:"points" gorm:"not null"`
	Order         int          `json:"order" gorm:"column:question_order;not null"`
	ExamPart      int          `json:"exam_part" gorm:"not null;default:1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Question option payloads are heterogeneous per question type and stored as a
// JSON blob in one column. They are decoded into one of the shapes below only
// at the model boundary.

type MCQOptions struct {
	Choices []string `json:"choices"`
}

type MatchingOptions struct {
	Pairs [][2]string `json:"pairs"`
}

type FillBlankOptions struct {
	Blanks int `json:"blanks"`
}

// EncodeOptions serializes a typed option payload for storage, checking that
// the payload shape matches the question type.
func EncodeOptions(qType QuestionType, payload any) (string, error) {
	if payload == nil {
		return "", nil
	}
	switch qType {
	case QuestionMCQ:
		if _, ok := payload.(MCQOptions); !ok {
			return "", fmt.Errorf("question type %s requires MCQ options", qType)
		}
	case QuestionMatching:
		if _, ok := payload.(MatchingOptions); !ok {
			return "", fmt.Errorf("question type %s requires matching options", qType)
		}
	case QuestionFillBlank:
		if _, ok := payload.(FillBlankOptions); !ok {
			return "", fmt.Errorf("question type %s requires fill-blank options", qType)
		}
	case QuestionEssay:
		return "", nil // essays carry no options
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// NormalizeOptions validates a raw options blob against the question type and
// re-serializes it in canonical form. Malformed JSON, payloads shaped for a
// different question type, and options on essays are all rejected: nothing
// reaches the jsonb column without passing through here.
func NormalizeOptions(qType QuestionType, raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	switch qType {
	case QuestionMCQ:
		var opts MCQOptions
		if err := decodeOptionsStrict(raw, &opts); err != nil {
			return "", err
		}
		return EncodeOptions(qType, opts)
	case QuestionMatching:
		var opts MatchingOptions
		if err := decodeOptionsStrict(raw, &opts); err != nil {
			return "", err
		}
		return EncodeOptions(qType, opts)
	case QuestionFillBlank:
		var opts FillBlankOptions
		if err := decodeOptionsStrict(raw, &opts); err != nil {
			return "", err
		}
		return EncodeOptions(qType, opts)
	case QuestionEssay:
		return "", fmt.Errorf("essay questions carry no options")
	default:
		return "", fmt.Errorf("unknown question type %q", qType)
	}
}

func decodeOptionsStrict(raw string, out any) error {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data after options payload")
	}
	return nil
}

// DecodeOptions parses the stored options blob into the typed payload for the
// question's type. Returns nil when no options are stored.
func (q *ExamQuestion) DecodeOptions() (any, error) {
	if q.Options == "" {
		return nil, nil
	}
	switch q.Type {
	case QuestionMCQ:
		var opts MCQOptions
		if err := json.Unmarshal([]byte(q.Options), &opts); err != nil {
			return nil, err
		}
		return opts, nil
	case QuestionMatching:
		var opts MatchingOptions
		if err := json.Unmarshal([]byte(q.Options), &opts); err != nil {
			return nil, err
		}
		return opts, nil
	case QuestionFillBlank:
		var opts FillBlankOptions
		if err := json.Unmarshal([]byte(q.Options), &opts); err != nil {
			return nil, err
		}
		return opts, nil
	default:
		return nil, nil
	}
}
