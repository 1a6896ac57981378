package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"covid-dashboard/internal/dataset"
	"covid-dashboard/internal/middleware"
)

func TestHandleExplore(t *testing.T) {
	useDataset(t, fixturePath)

	req, err := http.NewRequest("GET", "/", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	handler := middleware.CSRF(handleExplore)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v want %v. Body: %s",
			status, http.StatusOK, rr.Body.String())
	}

	body := rr.Body.String()
	for _, want := range []string{
		"<h5>8</h5>",
		"50.0 years",
		"37.5%",
		`id="chart-sex"`,
		`id="chart-age"`,
		`id="chart-comorbidities"`,
		`id="chart-survival"`,
		"Clinical Data Analysis",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Body missing %q", want)
		}
	}

	// Pneumonia is the most frequent comorbidity among the three deaths
	pneumonia := strings.Index(body, `<td class="comorbidity-label">Pneumonia</td>`)
	obesity := strings.Index(body, `<td class="comorbidity-label">Obesity</td>`)
	if pneumonia < 0 || obesity < 0 || pneumonia > obesity {
		t.Errorf("Comorbidity table out of order: pneumonia at %d, obesity at %d", pneumonia, obesity)
	}
	if rows := strings.Count(body, `class="comorbidity-label"`); rows != 4 {
		t.Errorf("Expected 4 comorbidity rows, got %d", rows)
	}
	if strings.Contains(body, `<td class="comorbidity-label">Asthma</td>`) {
		t.Errorf("Asthma is not part of the deceased comorbidity chart")
	}

	// Lowest survival rate first
	imss := strings.Index(body, `<td class="unit-name">IMSS</td>`)
	issste := strings.Index(body, `<td class="unit-name">ISSSTE</td>`)
	if imss < 0 || issste < 0 || imss > issste {
		t.Errorf("Survival table out of order: IMSS at %d, ISSSTE at %d", imss, issste)
	}
}

func TestHandleExplore_LargeCountsUseSeparators(t *testing.T) {
	if got := thousands(1234567); got != "1,234,567" {
		t.Errorf("thousands(1234567) = %q, want %q", got, "1,234,567")
	}
}

func TestHandleExplore_NotFound(t *testing.T) {
	useDataset(t, fixturePath)

	req := httptest.NewRequest("GET", "/nope", nil)
	rr := httptest.NewRecorder()
	handleExplore(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", rr.Code)
	}
}

func TestMissingDataset_RendersOnlyWarning(t *testing.T) {
	useDataset(t, filepath.Join(t.TempDir(), "covid19_data_nettoye.csv"))

	for _, tc := range []struct {
		name    string
		method  string
		path    string
		handler http.HandlerFunc
	}{
		{"explore", "GET", "/", handleExplore},
		{"predict", "GET", "/predict", handlePredict},
		{"export", "GET", "/export/stats.xlsx", handleExport},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			rr := httptest.NewRecorder()
			middleware.CSRF(tc.handler).ServeHTTP(rr, req)

			if rr.Code != http.StatusServiceUnavailable {
				t.Fatalf("Expected 503, got %d", rr.Code)
			}
			body := rr.Body.String()
			if !strings.Contains(body, "Please place the file") || !strings.Contains(body, "covid19_data_nettoye.csv") {
				t.Errorf("Warning message missing. Body: %s", body)
			}
			if strings.Contains(body, "chart-") || strings.Contains(body, "predict-form") {
				t.Errorf("Dashboard content rendered alongside the warning")
			}
		})
	}
}

func TestMissingDataset_RecoversWhenFileAppears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "covid19_data_nettoye.csv")
	useDataset(t, path)

	rr := httptest.NewRecorder()
	handleExplore(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503 before the file exists, got %d", rr.Code)
	}

	data, err := os.ReadFile(fixturePath)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	rr = httptest.NewRecorder()
	handleExplore(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200 once the file exists, got %d", rr.Code)
	}
}

func TestMalformedDataset_ShowsDetail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("AGE,SEX\nold,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	useDataset(t, path)

	rr := httptest.NewRecorder()
	handleExplore(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "invalid integer") {
		t.Errorf("Expected parse error detail in body: %s", rr.Body.String())
	}
}

type unreachableSource struct{}

func (unreachableSource) Load(ctx context.Context) (*dataset.Dataset, error) {
	return nil, errors.New("list patients: dial tcp 127.0.0.1:5432: connect: connection refused")
}

func TestMissingDataset_PostgresWarning(t *testing.T) {
	useDataset(t, fixturePath)
	loader = dataset.NewLoader(unreachableSource{}, nil)
	dataSource, dataFile = sourcePostgres, "covid"

	rr := httptest.NewRecorder()
	handleExplore(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503, got %d", rr.Code)
	}
	body := rr.Body.String()
	if strings.Contains(body, "Please place the file") {
		t.Errorf("Postgres source should not ask for a file. Body: %s", body)
	}
	if !strings.Contains(body, "The patients table of database") || !strings.Contains(body, "connection refused") {
		t.Errorf("Expected database warning with detail. Body: %s", body)
	}

	live := livePredict(t, map[string]interface{}{"age": 75})
	if !strings.Contains(live.Body.String(), "The patients table of database") {
		t.Errorf("Expected database warning patch. Body: %s", live.Body.String())
	}
}
