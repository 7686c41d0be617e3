package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rosterd/rosterd/app"
	"github.com/rosterd/rosterd/config"
	"github.com/rosterd/rosterd/core/roster"
	"github.com/rosterd/rosterd/infra/logger"
)

var (
	startDate   string
	endDate     string
	createEmpty bool
	version     int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a schedule for a date range",
	RunE:  generate,
}

func init() {
	generateCmd.Flags().StringVar(&startDate, "start", "", "first date of the range (YYYY-MM-DD)")
	generateCmd.Flags().StringVar(&endDate, "end", "", "last date of the range (YYYY-MM-DD)")
	generateCmd.Flags().BoolVar(&createEmpty, "create-empty", false, "emit placeholder assignments for idle employees")
	generateCmd.Flags().IntVar(&version, "version", 0, "schedule version, 0 allocates the next one")
	rootCmd.AddCommand(generateCmd)
}

func parseDate(s, name string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("--%s is required", name)
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

func generate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start, err := parseDate(startDate, "start")
	if err != nil {
		return err
	}
	end, err := parseDate(endDate, "end")
	if err != nil {
		return err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	res, err := svc.Generate(ctx, roster.Request{
		Start:                start,
		End:                  end,
		CreateEmptySchedules: createEmpty,
		Version:              version,
	})
	if err != nil {
		return err
	}

	fmt.Printf("run %s: version %d, %d assignments (%d filled), fairness %.1f, %s\n",
		res.RunID, res.Version, len(res.Assignments), res.Filled(), res.FairnessScore, res.GenerationTime.Round(time.Millisecond))
	for _, w := range res.Warnings {
		fmt.Printf("warning: %s\n", w.Message)
	}
	for _, e := range res.Errors {
		fmt.Printf("%s: %s\n", e.Severity, e.Message)
	}
	return nil
}
