package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"covid-dashboard/internal/config"
	"covid-dashboard/internal/dataset"
	"covid-dashboard/internal/export"
	applog "covid-dashboard/internal/logger"
	"covid-dashboard/internal/models"
	"covid-dashboard/internal/risk"
	"covid-dashboard/internal/stats"
	"covid-dashboard/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	// Global flags
	verbose  bool
	dataPath string
	source   string
	ageBins  int

	cfg *config.Config

	// Logger
	logger = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "covid-report",
	Short: "Offline reports over the COVID-19 clinical dataset",
	Long: `covid-report computes the dashboard statistics without starting the
web server. It reads the same cleaned CSV file (or PostgreSQL table) as the
dashboard and can export the statistics as an XLSX workbook or run the risk
rule for a single patient.`,
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the patient metrics and aggregate tables",
	RunE:  runSummary,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the statistics to an XLSX workbook",
	Long: `Writes one sheet per dashboard chart: Summary, Sex, Age and, when the
dataset records deaths, Comorbidities and Survival.

Example:
  covid-report export --out stats.xlsx`,
	RunE: runExport,
}

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Evaluate the risk rule for one patient",
	Long: `Evaluates the risk rule used by the Prediction Model view.
A patient is high risk when older than 60 or presenting pneumonia.

Example:
  covid-report assess --age 72 --sex male --diabetes`,
	RunE: runAssess,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&dataPath, "data", "d", "", "Path of the cleaned CSV dataset (default: DATA_FILE or "+dataset.DefaultFile+")")
	rootCmd.PersistentFlags().StringVar(&source, "source", "", `Record source: "file" or "postgres" (default: DATA_SOURCE or file)`)

	summaryCmd.Flags().IntVar(&ageBins, "bins", stats.DefaultAgeBins, "Number of age histogram bins")
	exportCmd.Flags().IntVar(&ageBins, "bins", stats.DefaultAgeBins, "Number of age histogram bins")
	exportCmd.Flags().StringP("out", "o", "covid19_statistics.xlsx", "Output workbook path")

	assessCmd.Flags().Int("age", risk.DefaultAge, "Patient age (0-100)")
	assessCmd.Flags().String("sex", "female", `Patient sex: "female" or "male"`)
	for _, c := range models.Comorbidities {
		assessCmd.Flags().Bool(string(c), false, "Patient presents "+c.Label())
	}

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(assessCmd)
}

// prepare loads the configuration, fills flags left unset from it and
// builds the logger.
func prepare(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded
	if dataPath == "" {
		dataPath = cfg.Data.File
	}
	if source == "" {
		source = cfg.Data.Source
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	l, err := applog.New(level, "console", "covid-report")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = l
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadDataset(ctx context.Context) (*dataset.Dataset, error) {
	if source == "postgres" {
		if cfg == nil {
			cfg = config.Default()
		}
		conn, err := store.Open(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, err
		}
		defer conn.Close()
		return store.NewPostgresStore(conn).Load(ctx)
	}
	return dataset.NewFileSource(dataPath).Load(ctx)
}

func computeReport(ctx context.Context) (*stats.Report, error) {
	d, err := loadDataset(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("dataset loaded", zap.Int("records", d.Len()), zap.Bool("has_outcome", d.HasOutcome()))
	return stats.Compute(d, ageBins)
}

func runSummary(cmd *cobra.Command, args []string) error {
	report, err := computeReport(cmd.Context())
	if err != nil {
		return err
	}
	return printSummary(cmd.OutOrStdout(), report)
}

func printSummary(out io.Writer, r *stats.Report) error {
	p := message.NewPrinter(language.English)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	p.Fprintf(w, "Total patients\t%d\n", r.Summary.Patients)
	p.Fprintf(w, "Mean age\t%.1f years\n", r.Summary.MeanAge)
	if r.Summary.HasOutcome {
		p.Fprintf(w, "Mortality rate\t%.1f%%\n", r.Summary.MortalityRate)
	}

	fmt.Fprintln(w, "\nSex\tPatients")
	for _, s := range r.Sexes {
		p.Fprintf(w, "%s\t%d\n", s.Label, s.Count)
	}

	if len(r.ComorbidityDeaths) > 0 {
		fmt.Fprintln(w, "\nComorbidity (deceased)\tCount")
		for _, c := range r.ComorbidityDeaths {
			p.Fprintf(w, "%s\t%d\n", c.Label, c.Count)
		}
	}
	if len(r.SurvivalByUnit) > 0 {
		fmt.Fprintln(w, "\nInstitution\tSurvival rate")
		for _, u := range r.SurvivalByUnit {
			p.Fprintf(w, "%s\t%.1f%%\n", u.Unit, u.SurvivalRate)
		}
	}
	return w.Flush()
}

func runExport(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")

	report, err := computeReport(cmd.Context())
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	if err := export.WriteStatistics(f, report); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", out, err)
	}

	logger.Info("statistics exported", zap.String("path", out))
	fmt.Fprintf(cmd.OutOrStdout(), "Statistics written to %s\n", out)
	return nil
}

func runAssess(cmd *cobra.Command, args []string) error {
	age, _ := cmd.Flags().GetInt("age")
	sex, _ := cmd.Flags().GetString("sex")

	in := &models.PatientInput{
		Age:           age,
		Sex:           models.SexFemale,
		Comorbidities: map[models.Comorbidity]bool{},
	}
	switch sex {
	case "female":
	case "male":
		in.Sex = models.SexMale
	default:
		return fmt.Errorf("invalid sex %q: want female or male", sex)
	}
	for _, c := range models.Comorbidities {
		if v, _ := cmd.Flags().GetBool(string(c)); v {
			in.Comorbidities[c] = true
		}
	}

	a, err := risk.NewEngine(risk.NewStaticRules()).Assess(in)
	if err != nil {
		return err
	}
	logger.Debug("risk assessed", zap.String("level", string(a.Level)), zap.Strings("reasons", a.Reasons))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Result: %s\n%s\n", a.Headline, a.Advice)
	for _, reason := range a.Reasons {
		fmt.Fprintf(out, "  - %s\n", reason)
	}
	return nil
}
