package record

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// InputLayout is the timestamp layout of submitted dates.
const InputLayout = "2006-01-02T15:04"

// Payload is the user input for submitting or updating a record.
type Payload struct {
	System       string `json:"system" validate:"required"`
	SubModule    string `json:"subModule"`
	Handler      string `json:"handler" validate:"required"`
	Questioner   string `json:"questioner" validate:"required"`
	Difficulty   Level  `json:"difficulty" validate:"required"`
	Priority     Level  `json:"priority" validate:"required"`
	QuestionDate string `json:"questionDate" validate:"required,datetime=2006-01-02T15:04"`
	QuestionType string `json:"questionType" validate:"required"`
	IsDone       bool   `json:"isDone"`
	ClosedDate   string `json:"closedDate,omitempty" validate:"omitempty,datetime=2006-01-02T15:04"`
	Minutes      *int   `json:"minutes,omitempty" validate:"omitempty,min=0,max=1000000000"`
	Note         string `json:"note,omitempty" validate:"max=2000"`
}

var validate = validator.New()

// Validate checks the payload. Closing date and minutes are only accepted
// for completed work.
func (p *Payload) Validate() error {
	err := validate.Struct(p)
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", lowerFirst(fe.Field()), fe.Tag()))
			}

			return fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(fields, ", "))
		}

		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	if !p.IsDone && (p.ClosedDate != "" || p.Minutes != nil) {
		return fmt.Errorf("%w: closedDate and minutes require isDone", ErrInvalidPayload)
	}

	return nil
}

// Cells returns the payload keyed by sheet header. The store assigns id
// and creation time.
func (p *Payload) Cells() map[string]any {
	done := DoneNo
	if p.IsDone {
		done = DoneYes
	}

	cells := map[string]any{
		HeaderSystem:       p.System,
		HeaderSubModule:    p.SubModule,
		HeaderHandler:      p.Handler,
		HeaderQuestioner:   p.Questioner,
		HeaderQuestionType: p.QuestionType,
		HeaderQuestionDate: p.QuestionDate,
		HeaderClosedDate:   p.ClosedDate,
		HeaderDifficulty:   p.Difficulty.Label(),
		HeaderPriority:     p.Priority.Label(),
		HeaderIsDone:       done,
		HeaderMinutes:      "",
		HeaderNote:         p.Note,
	}

	if p.Minutes != nil {
		cells[HeaderMinutes] = *p.Minutes
	}

	return cells
}

// PayloadFrom returns the editable fields of r, the starting point for an
// update.
func PayloadFrom(r *Record) Payload {
	p := Payload{
		System:       r.System,
		SubModule:    r.SubModule,
		Handler:      r.HandlerName,
		Questioner:   r.Questioner,
		Difficulty:   r.Difficulty,
		Priority:     r.Priority,
		QuestionType: r.QuestionType.String(),
		IsDone:       r.IsDone,
		Note:         r.Note,
	}

	// Unset levels default to MID like the entry form does.
	if !p.Difficulty.Known() {
		p.Difficulty = LevelMid
	}

	if !p.Priority.Known() {
		p.Priority = LevelMid
	}

	if r.HasQuestionDate() {
		p.QuestionDate = r.QuestionDate.Format(InputLayout)
	}

	if r.IsDone {
		if !r.ClosedDate.IsZero() {
			p.ClosedDate = r.ClosedDate.Format(InputLayout)
		}

		if r.Minutes > 0 {
			minutes := r.Minutes
			p.Minutes = &minutes
		}
	}

	return p
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}

	return strings.ToLower(s[:1]) + s[1:]
}
