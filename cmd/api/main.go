package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"covid-dashboard/internal/config"
	"covid-dashboard/internal/dataset"
	"covid-dashboard/internal/export"
	applog "covid-dashboard/internal/logger"
	"covid-dashboard/internal/middleware"
	"covid-dashboard/internal/models"
	"covid-dashboard/internal/risk"
	"covid-dashboard/internal/stats"
	"covid-dashboard/internal/store"

	"go.uber.org/zap"
)

const (
	viewExplore = "explore"
	viewPredict = "predict"

	sourceFile     = "file"
	sourcePostgres = "postgres"
)

var (
	// Dataset loader, memoized for the process lifetime
	loader *dataset.Loader

	// Risk Engine Instance
	engine = risk.NewEngine(risk.NewStaticRules())

	// Path of the dataset, shown in the missing-file warning
	dataFile = dataset.DefaultFile

	// "file" or "postgres"; selects the warning wording
	dataSource = sourceFile

	templateDir = "ui/templates"
	staticDir   = "ui/static"
	ageBins     = stats.DefaultAgeBins

	logger = zap.NewNop()
)

// Data Structs for UI
type ExploreData struct {
	Report *stats.Report
}

type PredictData struct {
	Form       PredictForm
	Assessment *models.Assessment
}

// PredictForm carries the prediction form state back into the template.
type PredictForm struct {
	Age     int
	Sex     string
	Checked map[models.Comorbidity]bool
	Options []ComorbidityOption
}

type ComorbidityOption struct {
	Name  models.Comorbidity
	Label string
}

type WarningData struct {
	Source string
	File   string
	Detail string
}

// Message is the line shown in place of the dashboard when the dataset
// cannot be loaded.
func (d WarningData) Message() string {
	if d.Source == sourcePostgres {
		return fmt.Sprintf("The patients table of database '%s' could not be read.", d.File)
	}
	return fmt.Sprintf("Please place the file '%s' in the working directory.", d.File)
}

func newWarningData(err error) WarningData {
	data := WarningData{Source: dataSource, File: dataFile}
	if !errors.Is(err, dataset.ErrDatasetNotFound) {
		data.Detail = err.Error()
	}
	return data
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err = applog.New(cfg.Log.Level, cfg.Log.Format, "covid-dashboard")
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	templateDir = cfg.UI.TemplateDir
	if cfg.UI.AgeBins > 0 {
		ageBins = cfg.UI.AgeBins
	}

	src, closeSrc, err := openSource(cfg)
	if err != nil {
		logger.Fatal("data source unavailable", zap.Error(err))
	}
	defer closeSrc()
	loader = dataset.NewLoader(src, logger)

	compress, err := middleware.Compress()
	if err != nil {
		logger.Fatal("compression setup failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           middleware.RequestLogger(logger)(compress(newMux())),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("dashboard server started",
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("data_source", cfg.Data.Source))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func openSource(cfg *config.Config) (dataset.Source, func(), error) {
	if cfg.Data.Source == sourcePostgres {
		conn, err := store.Open(context.Background(), cfg.Database.DSN())
		if err != nil {
			return nil, nil, err
		}
		dataSource, dataFile = sourcePostgres, cfg.Database.Database
		return store.NewPostgresStore(conn), func() { conn.Close() }, nil
	}
	dataSource, dataFile = sourceFile, cfg.Data.File
	return dataset.NewFileSource(cfg.Data.File), func() {}, nil
}

func newMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(resolvePath(staticDir)))))
	mux.HandleFunc("/", middleware.CSRF(handleExplore))
	mux.HandleFunc("/predict", middleware.CSRF(handlePredict))
	mux.HandleFunc("/api/predict", middleware.CSRF(handleAPIPredict))
	mux.HandleFunc("/api/predict/live", handleLivePredict)
	mux.HandleFunc("/api/stats", handleAPIStats)
	mux.HandleFunc("/export/stats.xlsx", handleExport)
	return mux
}

// loadDataset renders the missing-file warning and returns false when the
// dataset cannot be loaded. Nothing else is rendered in that case.
func loadDataset(w http.ResponseWriter, r *http.Request) (*dataset.Dataset, bool) {
	d, err := loader.Get(r.Context())
	if err == nil {
		return d, true
	}

	data := newWarningData(err)
	if data.Detail != "" {
		logger.Error("dataset unreadable", zap.String("source", dataSource), zap.Error(err))
	}
	render(w, r, "warning", http.StatusServiceUnavailable, data, "warning.html")
	return nil, false
}

func computeReport(w http.ResponseWriter, d *dataset.Dataset) (*stats.Report, bool) {
	report, err := stats.Compute(d, ageBins)
	if err != nil {
		logger.Error("statistics failed", zap.Error(err))
		http.Error(w, "Statistics Error: "+err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return report, true
}

func handleExplore(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	d, ok := loadDataset(w, r)
	if !ok {
		return
	}
	report, ok := computeReport(w, d)
	if !ok {
		return
	}

	render(w, r, viewExplore, http.StatusOK, ExploreData{Report: report}, "explore.html")
}

func newPredictForm() PredictForm {
	form := PredictForm{
		Age:     risk.DefaultAge,
		Sex:     "female",
		Checked: map[models.Comorbidity]bool{},
	}
	for _, c := range models.Comorbidities {
		form.Options = append(form.Options, ComorbidityOption{Name: c, Label: c.Label()})
	}
	return form
}

func handlePredict(w http.ResponseWriter, r *http.Request) {
	if _, ok := loadDataset(w, r); !ok {
		return
	}
	render(w, r, viewPredict, http.StatusOK, PredictData{Form: newPredictForm()}, "predict.html")
}

// parsePredictForm reads the age slider, sex select and comorbidity
// checkboxes of the prediction form.
func parsePredictForm(r *http.Request) (PredictForm, *models.PatientInput, error) {
	form := newPredictForm()

	if v := r.FormValue("age"); v != "" {
		age, err := strconv.Atoi(v)
		if err != nil {
			return form, nil, errors.New("age must be a whole number")
		}
		form.Age = age
	}
	if sex := r.FormValue("sex"); sex == "male" || sex == "female" {
		form.Sex = sex
	}

	in := &models.PatientInput{
		Age:           form.Age,
		Sex:           models.SexFemale,
		Comorbidities: map[models.Comorbidity]bool{},
	}
	if form.Sex == "male" {
		in.Sex = models.SexMale
	}
	for _, c := range models.Comorbidities {
		if checked(r.FormValue(string(c))) {
			form.Checked[c] = true
			in.Comorbidities[c] = true
		}
	}
	return form, in, nil
}

func checked(v string) bool {
	switch v {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func handleAPIPredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if _, ok := loadDataset(w, r); !ok {
		return
	}

	form, in, err := parsePredictForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	assessment, err := engine.Assess(in)
	if err != nil {
		if errors.Is(err, risk.ErrInvalidAge) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Assessment Failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	logger.Debug("risk assessed",
		zap.String("request_id", middleware.RequestID(r.Context())),
		zap.String("level", string(assessment.Level)))

	render(w, r, viewPredict, http.StatusOK, PredictData{Form: form, Assessment: assessment}, "predict.html")
}

func handleAPIStats(w http.ResponseWriter, r *http.Request) {
	d, err := loader.Get(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	report, ok := computeReport(w, d)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func handleExport(w http.ResponseWriter, r *http.Request) {
	d, ok := loadDataset(w, r)
	if !ok {
		return
	}
	report, ok := computeReport(w, d)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="covid19_statistics.xlsx"`)
	if err := export.WriteStatistics(w, report); err != nil {
		logger.Error("xlsx export failed", zap.Error(err))
	}
}
