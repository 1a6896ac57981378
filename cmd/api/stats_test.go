package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"covid-dashboard/internal/stats"

	"github.com/xuri/excelize/v2"
)

func TestHandleAPIStats(t *testing.T) {
	useDataset(t, fixturePath)

	rr := httptest.NewRecorder()
	handleAPIStats(rr, httptest.NewRequest("GET", "/api/stats", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}

	var report stats.Report
	if err := json.NewDecoder(rr.Body).Decode(&report); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if report.Summary.Patients != 8 {
		t.Errorf("Expected 8 patients, got %d", report.Summary.Patients)
	}
	if report.Summary.MortalityRate != 37.5 {
		t.Errorf("Expected mortality 37.5, got %v", report.Summary.MortalityRate)
	}
	if len(report.AgeHistogram) != stats.DefaultAgeBins {
		t.Errorf("Expected %d age bins, got %d", stats.DefaultAgeBins, len(report.AgeHistogram))
	}
}

func TestHandleAPIStats_MissingDataset(t *testing.T) {
	useDataset(t, filepath.Join(t.TempDir(), "missing.csv"))

	rr := httptest.NewRecorder()
	handleAPIStats(rr, httptest.NewRequest("GET", "/api/stats", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rr.Code)
	}
}

func TestHandleExport(t *testing.T) {
	useDataset(t, fixturePath)

	rr := httptest.NewRecorder()
	handleExport(rr, httptest.NewRequest("GET", "/export/stats.xlsx", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd == "" {
		t.Errorf("Expected attachment header")
	}

	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	if err != nil {
		t.Fatalf("Export is not a valid workbook: %v", err)
	}
	defer f.Close()

	patients, err := f.GetCellValue("Summary", "B2")
	if err != nil {
		t.Fatal(err)
	}
	if patients != "8" {
		t.Errorf("Expected 8 patients in Summary!B2, got %q", patients)
	}

	rows, err := f.GetRows("Comorbidities")
	if err != nil {
		t.Fatal(err)
	}
	// header plus Pneumonia, Diabetes, Hypertension, Obesity
	if len(rows) != 5 {
		t.Errorf("Expected 5 rows in Comorbidities sheet, got %d: %v", len(rows), rows)
	}
}
