package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rosterd/rosterd/app"
	"github.com/rosterd/rosterd/config"
	"github.com/rosterd/rosterd/core/roster"
	"github.com/rosterd/rosterd/infra/logger"
)

var (
	validateStart   string
	validateEnd     string
	validateVersion int
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Re-check a stored schedule version against the rules",
	RunE:  validate,
}

func init() {
	validateCmd.Flags().StringVar(&validateStart, "start", "", "first date of the range (YYYY-MM-DD)")
	validateCmd.Flags().StringVar(&validateEnd, "end", "", "last date of the range (YYYY-MM-DD)")
	validateCmd.Flags().IntVar(&validateVersion, "version", 0, "schedule version to validate")
	rootCmd.AddCommand(validateCmd)
}

func validate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if validateVersion <= 0 {
		return fmt.Errorf("--version is required")
	}
	start, err := parseDate(validateStart, "start")
	if err != nil {
		return err
	}
	end, err := parseDate(validateEnd, "end")
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

	findings, err := svc.Validate(ctx, validateVersion, start, end)
	if err != nil {
		return err
	}
	hardErrors := 0
	for _, f := range findings {
		fmt.Printf("%s: %s\n", f.Severity, f.Message)
		if f.Severity == roster.SeverityError {
			hardErrors++
		}
	}
	if hardErrors > 0 {
		return fmt.Errorf("version %d has %d rule violations", validateVersion, hardErrors)
	}
	fmt.Printf("version %d: %d findings, no rule violations\n", validateVersion, len(findings))
	return nil
}
