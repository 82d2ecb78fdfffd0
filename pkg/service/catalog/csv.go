package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coursematch/pkg/domain/model"
	"github.com/secmon-lab/coursematch/pkg/domain/types"
)

// Catalog columns. Columns are matched by header name, case-insensitively, in any order.
const (
	ColTitle         = "title"
	ColProvider      = "provider"
	ColSkillTags     = "skill_tags"
	ColDescription   = "description"
	ColPrerequisites = "prerequisites"
	ColLevel         = "level"
	ColDurationWeeks = "duration_weeks"
	ColCost          = "cost"
	ColType          = "type"
	ColLink          = "link"
)

var requiredColumns = []string{
	ColTitle, ColProvider, ColSkillTags, ColDescription, ColLevel, ColDurationWeeks, ColLink,
}

// ErrMissingColumn is returned when the header lacks a required column
var ErrMissingColumn = goerr.New("catalog header is missing a required column")

// Parse reads a CSV catalog. Rows that cannot become a course are returned as issues and
// skipped; only an unreadable stream or header is an error.
func Parse(r io.Reader) ([]*model.CourseRecord, []model.RowIssue, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, goerr.New("catalog is empty")
		}
		return nil, nil, goerr.Wrap(err, "failed to read catalog header")
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			return nil, nil, goerr.Wrap(ErrMissingColumn, "invalid catalog header", goerr.V("column", col))
		}
	}

	var records []*model.CourseRecord
	var issues []model.RowIssue
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				issues = append(issues, model.RowIssue{Line: parseErr.Line, Reason: parseErr.Err.Error()})
				continue
			}
			return nil, nil, goerr.Wrap(err, "failed to read catalog row")
		}

		line, _ := reader.FieldPos(0)
		if isBlank(row) {
			continue
		}
		if len(row) != len(header) {
			issues = append(issues, model.RowIssue{
				Line:   line,
				Title:  field(row, columns, ColTitle),
				Reason: fmt.Sprintf("row has %d columns, header has %d", len(row), len(header)),
			})
			continue
		}

		rec, reason := parseRow(row, columns)
		if reason != "" {
			issues = append(issues, model.RowIssue{Line: line, Title: field(row, columns, ColTitle), Reason: reason})
			continue
		}
		rec.Line = line
		records = append(records, rec)
	}

	return records, issues, nil
}

func parseRow(row []string, columns map[string]int) (*model.CourseRecord, string) {
	get := func(col string) string { return field(row, columns, col) }

	for _, col := range requiredColumns {
		if get(col) == "" && col != ColSkillTags {
			return nil, col + " is empty"
		}
	}

	weeks, err := parseWeeks(get(ColDurationWeeks))
	if err != nil {
		return nil, "duration_weeks: " + err.Error()
	}
	if weeks <= 0 {
		return nil, "duration_weeks must be positive"
	}

	var cost *float64
	if raw := get(ColCost); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Sprintf("cost %q is not a number", raw)
		}
		if v < 0 {
			return nil, "cost must not be negative"
		}
		cost = &v
	}

	return &model.CourseRecord{
		Title:         get(ColTitle),
		Provider:      get(ColProvider),
		SkillTags:     get(ColSkillTags),
		Description:   get(ColDescription),
		Prerequisites: get(ColPrerequisites),
		Level:         types.Level(get(ColLevel)),
		DurationWeeks: weeks,
		Cost:          cost,
		Type:          get(ColType),
		Link:          get(ColLink),
	}, ""
}

// parseWeeks accepts integers and integral decimals such as "8.0"
func parseWeeks(raw string) (int, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%q is not a whole number", raw)
	}
	return int(f), nil
}

func field(row []string, columns map[string]int, col string) string {
	i, ok := columns[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
