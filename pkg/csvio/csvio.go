// Package csvio reads rosters and day requests from CSV and writes schedules back out.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arnavshah/crew-scheduler-api/pkg/models"
	"github.com/arnavshah/crew-scheduler-api/pkg/scheduler"
)

const (
	listSep  = "|"
	cellJoin = " / "
	halfMark = "H"
	pairSep  = ":"
)

// ErrMissingColumn is returned when a required header is absent
var ErrMissingColumn = errors.New("missing column")

type table struct {
	cols map[string]int
	rows [][]string
}

func (t table) get(row []string, col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func readTable(r io.Reader, required ...string) (table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return table{}, fmt.Errorf("read header: %w", err)
	}
	t := table{cols: make(map[string]int, len(header))}
	for i, h := range header {
		t.cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range required {
		if _, ok := t.cols[col]; !ok {
			return table{}, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return table{}, fmt.Errorf("read row: %w", err)
		}
		if isBlank(record) {
			continue
		}
		t.rows = append(t.rows, record)
	}
	return t, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, listSep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseShift(v string) (models.Shift, error) {
	s := models.Shift(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown shift %q", v)
	}
	return s, nil
}

// ReadRoster parses id,name,available_shifts[,required_shift,preferred_shift].
// Lists use "|" as separator, e.g. "open|close".
func ReadRoster(r io.Reader) ([]models.StaffMember, error) {
	t, err := readTable(r, "id", "name", "available_shifts")
	if err != nil {
		return nil, err
	}

	staff := make([]models.StaffMember, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		m := models.StaffMember{
			ID:   t.get(row, "id"),
			Name: t.get(row, "name"),
		}
		if m.ID == "" {
			return nil, fmt.Errorf("line %d: id is empty", line)
		}

		for _, v := range splitList(t.get(row, "available_shifts")) {
			s, err := parseShift(v)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			m.AvailableShifts = append(m.AvailableShifts, s)
		}
		if v := t.get(row, "required_shift"); v != "" {
			if m.RequiredShift, err = parseShift(v); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		if v := t.get(row, "preferred_shift"); v != "" {
			if m.PreferredShift, err = parseShift(v); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		staff = append(staff, m)
	}
	return staff, nil
}

// ReadRequests parses date,off_staff_ids,half_staff where half_staff is
// "staffId:shift|staffId:shift". Rows sharing a date are merged.
func ReadRequests(r io.Reader) ([]models.DayRequest, error) {
	t, err := readTable(r, "date")
	if err != nil {
		return nil, err
	}

	var out []models.DayRequest
	index := make(map[string]int)
	for i, row := range t.rows {
		line := i + 2
		date := t.get(row, "date")
		if !scheduler.IsDate(date) {
			return nil, fmt.Errorf("line %d: invalid date %q", line, date)
		}

		idx, ok := index[date]
		if !ok {
			out = append(out, models.DayRequest{Date: date})
			idx = len(out) - 1
			index[date] = idx
		}
		req := &out[idx]

		req.OffStaffIDs = append(req.OffStaffIDs, splitList(t.get(row, "off_staff_ids"))...)
		for _, pair := range splitList(t.get(row, "half_staff")) {
			id, shift, found := strings.Cut(pair, pairSep)
			if !found || strings.TrimSpace(id) == "" {
				return nil, fmt.Errorf("line %d: half request %q must look like staffId:shift", line, pair)
			}
			s, err := parseShift(shift)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			req.HalfStaff = append(req.HalfStaff, models.HalfRequest{StaffID: strings.TrimSpace(id), Shift: s})
		}
	}
	return out, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteSchedule writes one row per date with staff names per block.
// Half shifts carry an "H" suffix; extra work is listed per date.
func WriteSchedule(w io.Writer, sch models.SavedSchedule, extra []models.ExtraWork) error {
	names := make(map[string]string, len(sch.Staff))
	for _, s := range sch.Staff {
		names[s.ID] = s.Name
	}
	nameOf := func(id string) string {
		if n, ok := names[id]; ok && n != "" {
			return n
		}
		return id
	}

	extraByDate := make(map[string][]models.ExtraWork)
	for _, e := range extra {
		extraByDate[e.Date] = append(extraByDate[e.Date], e)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "open", "middle", "close", "extra_hours", "notes"}); err != nil {
		return err
	}

	for _, a := range sch.Assignments {
		record := []string{a.Date}
		for _, shift := range models.AllShifts {
			var cell []string
			for _, slot := range a.ByShift[shift] {
				n := nameOf(slot.StaffID)
				if slot.Unit == scheduler.HalfUnit {
					n += halfMark
				}
				cell = append(cell, n)
			}
			record = append(record, strings.Join(cell, cellJoin))
		}

		var hours, notes []string
		for _, e := range extraByDate[a.Date] {
			hours = append(hours, fmt.Sprintf("%s: %sh", nameOf(e.StaffID), formatNumber(e.Hours)))
			notes = append(notes, fmt.Sprintf("%s: %s", nameOf(e.StaffID), e.Note))
		}
		record = append(record, strings.Join(hours, cellJoin), strings.Join(notes, cellJoin))

		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteStats writes the per-staff summary
func WriteStats(w io.Writer, stats []models.ScheduleStats) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"staff_id", "name", "work_units", "full_days", "half_days", "off_days"}); err != nil {
		return err
	}
	for _, s := range stats {
		err := cw.Write([]string{
			s.StaffID,
			s.Name,
			formatNumber(s.WorkUnits),
			strconv.Itoa(s.FullDays),
			strconv.Itoa(s.HalfDays),
			strconv.Itoa(s.OffDays),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
