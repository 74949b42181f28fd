// Command stressctl runs the scoring engine over exported scan and habit CSV files.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stresslens/internal/health"
)

type globalArgs struct {
	ScansPath  string
	HabitsPath string
	Scale      string
	Timezone   string
}

type TrendCsvRow struct {
	Date      string `csv:"date"`
	AvgStress string `csv:"avg_stress"`
	ScanCount int    `csv:"scan_count"`
}

func newRootCmd(out io.Writer) *cobra.Command {
	var args globalArgs
	root := &cobra.Command{
		Use:           "stressctl",
		Short:         "Score stress scans and habit logs exported as CSV.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&args.ScansPath, "scans", "", "CSV file of scan rows (header row required)")
	root.PersistentFlags().StringVar(&args.HabitsPath, "habits", "", "CSV file of habit rows (header row required)")
	root.PersistentFlags().StringVar(&args.Scale, "scale", "100", "scale of overall_stress in the scan file: 10 or 100")
	root.PersistentFlags().StringVar(&args.Timezone, "tz", "UTC", "IANA zone used for calendar days")

	root.AddCommand(newPredictCmd(&args, out), newSnapshotCmd(&args, out), newTrendCmd(&args, out))
	return root
}

func newPredictCmd(args *globalArgs, out io.Writer) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Print the risk prediction for one user as JSON.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, scans, habits, err := load(*args)
			if err != nil {
				return err
			}
			pred, err := engine.Predict(userID, scans, habits)
			if err != nil {
				return err
			}
			return writeJSON(out, pred)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id to score")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newSnapshotCmd(args *globalArgs, out io.Writer) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print the latest scan and habit entry per user as JSON.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, rawScans, rawHabits, err := load(*args)
			if err != nil {
				return err
			}
			if userID != "" {
				snap, ok, err := engine.Snapshot(userID, rawScans, rawHabits)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no records for user %q", userID)
				}
				return writeJSON(out, snap)
			}
			scans, err := engine.Normalizer().NormalizeScans(rawScans)
			if err != nil {
				return err
			}
			habits, err := engine.Normalizer().NormalizeHabits(rawHabits)
			if err != nil {
				return err
			}
			return writeJSON(out, engine.ComputeSnapshot(scans, habits))
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "only this user (default: every user in the files)")
	return cmd
}

func newTrendCmd(args *globalArgs, out io.Writer) *cobra.Command {
	var (
		userID string
		days   int
	)
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Print daily average stress for one user as CSV.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, scans, _, err := load(*args)
			if err != nil {
				return err
			}
			points, err := engine.TrendRaw(userID, scans, days)
			if err != nil {
				return err
			}
			return writeTrendCSV(out, points)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().IntVar(&days, "days", health.DefaultWindowDays, "window length in days")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func load(args globalArgs) (*health.Engine, []health.RawRecord, []health.RawRecord, error) {
	scale, err := health.ParseStressScale(args.Scale)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("--scale: %w", err)
	}
	loc, err := time.LoadLocation(args.Timezone)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("--tz: %w", err)
	}
	if args.ScansPath == "" && args.HabitsPath == "" {
		return nil, nil, nil, fmt.Errorf("at least one of --scans or --habits is required")
	}
	scans, err := readCSV(args.ScansPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("scans: %w", err)
	}
	habits, err := readCSV(args.HabitsPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("habits: %w", err)
	}
	engine := health.NewEngine(health.WithStressScale(scale), health.WithLocation(loc))
	return engine, scans, habits, nil
}

// readCSV loads rows keyed by header. Empty cells read as missing fields.
func readCSV(path string) ([]health.RawRecord, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	rows, err := gocsv.CSVToMaps(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	out := make([]health.RawRecord, 0, len(rows))
	for _, row := range rows {
		rec := make(health.RawRecord, len(row))
		for k, v := range row {
			rec[k] = v
		}
		out = append(out, rec)
	}
	return out, nil
}

func writeTrendCSV(w io.Writer, points []health.TrendPoint) error {
	rows := make([]TrendCsvRow, 0, len(points))
	for _, p := range points {
		row := TrendCsvRow{Date: p.Date, ScanCount: p.ScanCount}
		if p.AvgStress != nil {
			row.AvgStress = strconv.FormatFloat(*p.AvgStress, 'f', 2, 64)
		}
		rows = append(rows, row)
	}
	return gocsv.Marshal(rows, w)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		logger.Error("stressctl failed", zap.Error(err))
		os.Exit(1)
	}
}
