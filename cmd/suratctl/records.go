package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/Lllllllleong/suratflow/internal/attachment"
	"github.com/Lllllllleong/suratflow/internal/debounce"
	"github.com/Lllllllleong/suratflow/internal/models"
	"github.com/Lllllllleong/suratflow/internal/services"
)

// duplicateChecker is what check needs from the validator.
type duplicateChecker interface {
	Check(ctx context.Context, kind models.Kind, letterNumber, agendaNumber string) models.DuplicateCheckResult
}

func runCheck(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := newFlagSet("check")
	kindName := fs.String("kind", string(models.KindIncoming), "record kind: masuk or keluar")
	delay := fs.Duration("debounce", 400*time.Millisecond, "quiet period before a number is checked")
	if err := fs.Parse(args); err != nil {
		return err
	}
	kind, err := models.ParseKind(*kindName)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	backend, err := services.NewBackendFromEnv(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	return checkLines(ctx, backend.Validator(), kind, *delay, stdin, stdout)
}

// checkLines treats each stdin line as the current content of the number
// fields, "agenda" or "letter|agenda", and reports the latest one once input
// pauses.
func checkLines(ctx context.Context, checker duplicateChecker, kind models.Kind, delay time.Duration, stdin io.Reader, stdout io.Writer) error {
	task := debounce.NewTask[models.DuplicateCheckResult](delay)
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			task.Cancel()
			continue
		}
		letter, agenda, found := strings.Cut(line, "|")
		if !found {
			letter, agenda = "", letter
		}
		letter, agenda = strings.TrimSpace(letter), strings.TrimSpace(agenda)

		task.Schedule(ctx,
			func(ctx context.Context) (models.DuplicateCheckResult, error) {
				return checker.Check(ctx, kind, letter, agenda), nil
			},
			func(res models.DuplicateCheckResult, _ error) {
				fmt.Fprintln(stdout, describeCheck(letter, agenda, res))
			},
		)
	}
	task.Wait()
	return scanner.Err()
}

func describeCheck(letter, agenda string, res models.DuplicateCheckResult) string {
	switch {
	case !res.Verified():
		return fmt.Sprintf("%s: tidak dapat memverifikasi (%s)", agenda, res.Error)
	case res.LetterNumberDuplicate && res.AgendaNumberDuplicate:
		return fmt.Sprintf("%s | %s: Nomor Surat dan Nomor Agenda sudah terdaftar", letter, agenda)
	case res.LetterNumberDuplicate:
		return fmt.Sprintf("%s: Nomor Surat sudah terdaftar", letter)
	case res.AgendaNumberDuplicate:
		return fmt.Sprintf("%s: Nomor Agenda sudah terdaftar", agenda)
	}
	return fmt.Sprintf("%s: tersedia", agenda)
}

func runSubmit(args []string, _ io.Reader, stdout io.Writer) error {
	fs := newFlagSet("submit")
	kindName := fs.String("kind", string(models.KindIncoming), "record kind: masuk or keluar")
	file := fs.String("file", "", "attachment path")
	source := fs.String("source", string(attachment.SourceGallery), "capture source: gallery or camera")
	var rec models.Surat
	fs.StringVar(&rec.Counterpart, models.FieldCounterpart, "", "sender (masuk) or recipient (keluar)")
	fs.StringVar(&rec.LetterNumber, models.FieldLetterNumber, "", "letter number")
	fs.StringVar(&rec.LetterDate, models.FieldLetterDate, "", "letter date, dd-MM-yyyy or yyyy-MM-dd")
	fs.StringVar(&rec.AgendaNumber, models.FieldAgendaNumber, "", "agenda number, seq/year")
	fs.StringVar(&rec.ReceivedDate, models.FieldReceivedDate, "", "received date, dd-MM-yyyy or yyyy-MM-dd")
	fs.StringVar(&rec.Subject, models.FieldSubject, "", "subject")
	fs.StringVar(&rec.Status, models.FieldStatus, "", "initial status")
	if err := fs.Parse(args); err != nil {
		return err
	}
	kind, err := models.ParseKind(*kindName)
	if err != nil {
		return err
	}

	var att *attachment.Candidate
	if *file != "" {
		if att, err = openCandidate(*file, attachment.ParseSource(*source)); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	backend, err := services.NewBackendFromEnv(ctx)
	if err != nil {
		att.Release()
		return err
	}
	defer backend.Close()

	result := backend.Pipeline(backend.Validator()).Submit(ctx, kind, rec, att)
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("submission failed: %s", result.ErrorMessage)
	}
	return nil
}
