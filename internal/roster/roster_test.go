package roster

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/kotae/internal/config"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func sampleRows() [][]any {
	return [][]any{
		{"nama", "Bidang"},
		{"Ani", "Teknologi Informasi"},
		{"Budi", "keuangan"},
		{"Citra", " teknologi informasi "},
		{"Dodi"},
	}
}

func testConfig(path string) config.RosterConfig {
	return config.RosterConfig{
		Enabled:        true,
		Path:           path,
		Column:         "bidang",
		TriggerPhrases: []string{"jumlah peserta"},
		FieldKeyword:   "bidang",
		Answer:         "{field}: {count}",
		Unavailable:    "unavailable",
	}
}

func TestCounter_Count(t *testing.T) {
	c := NewCounter(writeWorkbook(t, sampleRows()), "", "bidang")
	tests := []struct {
		value string
		want  int
	}{
		{"teknologi informasi", 2},
		{"KEUANGAN", 1},
		{"hukum", 0},
	}
	for _, tt := range tests {
		got, err := c.Count(context.Background(), tt.value)
		if err != nil {
			t.Fatalf("Count(%q): %v", tt.value, err)
		}
		if got != tt.want {
			t.Errorf("Count(%q) = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestCounter_ColumnNotFound(t *testing.T) {
	c := NewCounter(writeWorkbook(t, sampleRows()), "", "divisi")
	_, err := c.Count(context.Background(), "x")
	if !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("err = %v, want ErrColumnNotFound", err)
	}
}

func TestCounter_MissingFileAndSheet(t *testing.T) {
	if _, err := NewCounter(filepath.Join(t.TempDir(), "none.xlsx"), "", "bidang").Count(context.Background(), "x"); err == nil {
		t.Error("expected error for missing workbook")
	}
	path := writeWorkbook(t, sampleRows())
	if _, err := NewCounter(path, "NoSuchSheet", "bidang").Count(context.Background(), "x"); err == nil {
		t.Error("expected error for missing sheet")
	}
}

func TestResponder_Field(t *testing.T) {
	r := NewResponder(testConfig(""), nil)
	tests := []struct {
		input string
		field string
		ok    bool
	}{
		{"Berapa jumlah peserta bidang Keuangan?", "keuangan", true},
		{"jumlah peserta di bidang bidang hukum", "hukum", true},
		{"jumlah peserta bidang", "", false},
		{"berapa peserta bidang keuangan", "", false},
		{"jumlah peserta keuangan", "", false},
		{"hello", "", false},
	}
	for _, tt := range tests {
		field, ok := r.Field(tt.input)
		if field != tt.field || ok != tt.ok {
			t.Errorf("Field(%q) = (%q, %v), want (%q, %v)", tt.input, field, ok, tt.field, tt.ok)
		}
	}
}

func TestResponder_Respond(t *testing.T) {
	r := NewResponder(testConfig(writeWorkbook(t, sampleRows())), nil)

	got, ok := r.Respond(context.Background(), "Jumlah peserta bidang teknologi informasi?")
	if !ok {
		t.Fatal("expected roster question to be claimed")
	}
	if got != "teknologi informasi: 2" {
		t.Errorf("answer = %q", got)
	}

	if _, ok := r.Respond(context.Background(), "hello"); ok {
		t.Error("non-roster input should not be claimed")
	}
}

func TestResponder_Unavailable(t *testing.T) {
	r := NewResponder(testConfig(filepath.Join(t.TempDir(), "missing.xlsx")), nil)
	got, ok := r.Respond(context.Background(), "jumlah peserta bidang keuangan")
	if !ok || got != "unavailable" {
		t.Errorf("Respond = (%q, %v), want (unavailable, true)", got, ok)
	}
}
