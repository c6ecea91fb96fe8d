// Package roster answers participant-count questions from an XLSX workbook, ahead of
// similarity matching.
package roster

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/pkg/utils"
)

// ErrColumnNotFound is returned when the header row has no cell matching the configured column.
var ErrColumnNotFound = errors.New("roster column not found")

// Counter counts workbook rows by the value of one column.
type Counter struct {
	path   string
	sheet  string
	column string
}

// NewCounter returns a Counter for the workbook at path. An empty sheet selects the first sheet.
func NewCounter(path, sheet, column string) *Counter {
	return &Counter{path: path, sheet: sheet, column: column}
}

// Count opens the workbook and returns the number of data rows whose column cell equals
// value, ignoring case and surrounding whitespace. The first row is the header.
func (c *Counter) Count(ctx context.Context, value string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f, err := excelize.OpenFile(c.path)
	if err != nil {
		return 0, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := c.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("sheet %q: %w", sheet, ErrColumnNotFound)
	}

	col := -1
	for i, h := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(h), c.column) {
			col = i
			break
		}
	}
	if col < 0 {
		return 0, fmt.Errorf("sheet %q column %q: %w", sheet, c.column, ErrColumnNotFound)
	}

	want := strings.TrimSpace(value)
	count := 0
	for _, row := range rows[1:] {
		if col < len(row) && strings.EqualFold(strings.TrimSpace(row[col]), want) {
			count++
		}
	}
	return count, nil
}

// Responder claims inputs that ask for a participant count and answers from a Counter.
type Responder struct {
	counter     *Counter
	triggers    []string
	keyword     string
	answer      string
	unavailable string
	logger      *zap.Logger
}

// NewResponder builds a Responder from roster settings. Trigger phrases and the field
// keyword are matched lowercased.
func NewResponder(cfg config.RosterConfig, logger *zap.Logger) *Responder {
	triggers := make([]string, 0, len(cfg.TriggerPhrases))
	for _, t := range cfg.TriggerPhrases {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			triggers = append(triggers, t)
		}
	}
	return &Responder{
		counter:     NewCounter(cfg.Path, cfg.Sheet, cfg.Column),
		triggers:    triggers,
		keyword:     strings.ToLower(strings.TrimSpace(cfg.FieldKeyword)),
		answer:      cfg.Answer,
		unavailable: cfg.Unavailable,
		logger:      utils.OrNop(logger),
	}
}

// Field returns the field named in input and whether input is a roster question. The field
// is the text after the last occurrence of the keyword, without trailing punctuation.
func (r *Responder) Field(input string) (string, bool) {
	if r.keyword == "" {
		return "", false
	}
	lower := strings.ToLower(input)
	for _, t := range r.triggers {
		if !strings.Contains(lower, t) {
			return "", false
		}
	}
	idx := strings.LastIndex(lower, r.keyword)
	if idx < 0 {
		return "", false
	}
	field := strings.TrimSpace(lower[idx+len(r.keyword):])
	field = strings.TrimSpace(strings.TrimRight(field, "?!.,;: "))
	if field == "" {
		return "", false
	}
	return field, true
}

// Respond answers roster questions. Inputs that are not roster questions are left for the
// matcher.
func (r *Responder) Respond(ctx context.Context, input string) (string, bool) {
	field, ok := r.Field(input)
	if !ok {
		return "", false
	}
	count, err := r.counter.Count(ctx, field)
	if err != nil {
		r.logger.Error("roster lookup failed", zap.String("field", field), zap.Error(err))
		return r.unavailable, true
	}
	r.logger.Info("roster lookup", zap.String("field", field), zap.Int("count", count))
	return strings.NewReplacer("{field}", field, "{count}", strconv.Itoa(count)).Replace(r.answer), true
}
