package services

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Lllllllleong/suratflow/internal/dates"
	"github.com/Lllllllleong/suratflow/internal/models"
)

// DateRange limits a listing by received date.
type DateRange int

const (
	RangeAll DateRange = iota
	RangeToday
	RangeThisWeek
	RangeThisMonth
)

// ParseDateRange accepts the range names used by the API ("", "all",
// "today", "week", "month") and the numeric filter indexes 0-3.
func ParseDateRange(s string) DateRange {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "today", "hari-ini":
		return RangeToday
	case "2", "week", "minggu-ini":
		return RangeThisWeek
	case "3", "month", "bulan-ini":
		return RangeThisMonth
	}
	return RangeAll
}

// ListQuery combines the listing filters. Zero values match everything.
type ListQuery struct {
	Search string
	Range  DateRange
	Status string
}

// FilterRecords applies q to records, keeping their order. now anchors the
// date range.
func FilterRecords(records []models.Surat, q ListQuery, now time.Time) []models.Surat {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	status := strings.ToLower(strings.TrimSpace(q.Status))
	from, bounded := rangeStart(q.Range, now)

	out := make([]models.Surat, 0, len(records))
	for _, r := range records {
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		if status != "" && !strings.Contains(strings.ToLower(r.Status), status) {
			continue
		}
		if bounded {
			received, ok := dates.ParseDatabase(r.ReceivedDate, now.Location())
			if !ok || received.Before(from) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

func matchesSearch(r models.Surat, needle string) bool {
	for _, field := range []string{r.Counterpart, r.LetterNumber, r.AgendaNumber, r.Subject, r.Status} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func rangeStart(r DateRange, now time.Time) (time.Time, bool) {
	switch r {
	case RangeToday:
		return dates.StartOfDay(now), true
	case RangeThisWeek:
		return dates.StartOfWeek(now), true
	case RangeThisMonth:
		return dates.StartOfMonth(now), true
	}
	return time.Time{}, false
}

// SortRecords orders a listing the way each kind is browsed: incoming by
// agenda year then agenda sequence, outgoing by received date, newest first.
func SortRecords(kind models.Kind, records []models.Surat) {
	if kind == models.KindOutgoing {
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].ReceivedDate > records[j].ReceivedDate
		})
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		si, yi := agendaParts(records[i].AgendaNumber)
		sj, yj := agendaParts(records[j].AgendaNumber)
		if yi != yj {
			return yi > yj
		}
		return si > sj
	})
}

// agendaParts splits "seq/year". Unparseable parts count as 0.
func agendaParts(agenda string) (seq, year int) {
	head, tail, _ := strings.Cut(agenda, "/")
	seq, _ = strconv.Atoi(strings.TrimSpace(head))
	year, _ = strconv.Atoi(strings.TrimSpace(tail))
	return seq, year
}
