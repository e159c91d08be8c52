package services

import (
	"context"
	"errors"

	"github.com/Lllllllleong/suratflow/internal/models"
)

// ValidationOutcome is either valid or a set of field errors keyed by field
// name. A query failure leaves FieldErrors empty and sets Message.
type ValidationOutcome struct {
	Valid       bool              `json:"valid"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	Message     string            `json:"message,omitempty"`
	Code        string            `json:"code,omitempty"`

	err error
}

// Err returns the typed failure behind an invalid outcome.
func (o ValidationOutcome) Err() error {
	return o.err
}

func validOutcome() ValidationOutcome {
	return ValidationOutcome{Valid: true}
}

func invalidOutcome(err error) ValidationOutcome {
	o := ValidationOutcome{Message: MessageOf(err), Code: KindOf(err).String(), err: err}
	var se *SuratError
	if errors.As(err, &se) {
		switch {
		case se.Kind == ErrDuplicateNumber && se.Duplicate == DuplicateBoth:
			o.FieldErrors = map[string]string{
				models.FieldLetterNumber: msgDuplicateLetter,
				models.FieldAgendaNumber: msgDuplicateAgenda,
			}
		case se.Field != "":
			o.FieldErrors = map[string]string{se.Field: se.Message}
		}
	}
	return o
}

type requiredField struct {
	name  string
	value func(*models.Surat) string
	label func(models.Kind) string
}

func fixedLabel(label string) func(models.Kind) string {
	return func(models.Kind) string { return label }
}

var requiredFields = []requiredField{
	{models.FieldCounterpart, func(s *models.Surat) string { return s.Counterpart }, models.Kind.CounterpartLabel},
	{models.FieldLetterNumber, func(s *models.Surat) string { return s.LetterNumber }, fixedLabel("Nomor surat")},
	{models.FieldLetterDate, func(s *models.Surat) string { return s.LetterDate }, fixedLabel("Tanggal surat")},
	{models.FieldAgendaNumber, func(s *models.Surat) string { return s.AgendaNumber }, fixedLabel("Nomor agenda")},
	{models.FieldReceivedDate, func(s *models.Surat) string { return s.ReceivedDate }, fixedLabel("Tanggal diterima")},
	{models.FieldSubject, func(s *models.Surat) string { return s.Subject }, fixedLabel("Perihal")},
}

// RecordValidator checks a record before it is written.
type RecordValidator struct {
	checker *DuplicateChecker
	policy  DuplicatePolicy
}

// NewRecordValidator returns a validator enforcing policy.
func NewRecordValidator(checker *DuplicateChecker, policy DuplicatePolicy) *RecordValidator {
	if policy == "" {
		policy = PolicyAgendaGlobal
	}
	return &RecordValidator{checker: checker, policy: policy}
}

// Policy returns the duplicate policy in force.
func (v *RecordValidator) Policy() DuplicatePolicy {
	return v.policy
}

// CheckRequired reports the first missing field in form order, then checks
// the status. An empty status is replaced with the kind's default.
func (v *RecordValidator) CheckRequired(kind models.Kind, rec *models.Surat) ValidationOutcome {
	for _, f := range requiredFields {
		if f.value(rec) == "" {
			return invalidOutcome(newFieldMissing(f.name, f.label(kind)))
		}
	}
	if rec.Status == "" {
		rec.Status = kind.DefaultStatus()
	}
	if !kind.IsValidStatus(rec.Status) {
		return invalidOutcome(newInvalidField(models.FieldStatus, msgInvalidStatus))
	}
	return validOutcome()
}

// CheckDuplicates applies the duplicate policy to rec.
func (v *RecordValidator) CheckDuplicates(ctx context.Context, kind models.Kind, rec *models.Surat) ValidationOutcome {
	if v.policy == PolicyPerCollection {
		res := v.checker.CheckNumbers(ctx, kind, rec.LetterNumber, rec.AgendaNumber)
		switch {
		case res.LetterNumberDuplicate && res.AgendaNumberDuplicate:
			return invalidOutcome(newDuplicate(DuplicateBoth))
		case res.LetterNumberDuplicate:
			return invalidOutcome(newDuplicate(DuplicateLetter))
		case res.AgendaNumberDuplicate:
			return invalidOutcome(newDuplicate(DuplicateAgenda))
		case !res.Verified():
			return invalidOutcome(newQueryFailed(errors.New(res.Error)))
		}
		return validOutcome()
	}

	exists, err := v.checker.CheckAgendaAcrossAll(ctx, rec.AgendaNumber)
	if err != nil {
		return invalidOutcome(err)
	}
	if exists {
		return invalidOutcome(newDuplicate(DuplicateAgenda))
	}
	return validOutcome()
}

// Check returns the duplicate result the pre-check endpoint reports under the
// configured policy.
func (v *RecordValidator) Check(ctx context.Context, kind models.Kind, letterNumber, agendaNumber string) models.DuplicateCheckResult {
	if v.policy == PolicyPerCollection {
		return v.checker.CheckNumbers(ctx, kind, letterNumber, agendaNumber)
	}
	var res models.DuplicateCheckResult
	if agendaNumber == "" {
		return res
	}
	exists, err := v.checker.CheckAgendaAcrossAll(ctx, agendaNumber)
	res.AgendaNumberDuplicate = exists
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

// Validate runs CheckRequired and, when it passes, CheckDuplicates.
func (v *RecordValidator) Validate(ctx context.Context, kind models.Kind, rec *models.Surat) ValidationOutcome {
	if out := v.CheckRequired(kind, rec); !out.Valid {
		return out
	}
	return v.CheckDuplicates(ctx, kind, rec)
}
