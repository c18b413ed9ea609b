// Command match scores one CV file against one job description file and
// prints the result as JSON. It uses the same environment configuration and
// embedding wiring as the server but never persists anything.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/cv-job-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/cv-job-matcher/internal/app"
	"github.com/fairyhunter13/cv-job-matcher/internal/config"
	"github.com/fairyhunter13/cv-job-matcher/internal/domain"
	"github.com/fairyhunter13/cv-job-matcher/internal/usecase"
	"github.com/fairyhunter13/cv-job-matcher/pkg/textx"
)

type options struct {
	cvPath  string
	jobPath string
	lang    string
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "match --cv FILE --job FILE [--lang en|sv]",
		Short: "Score a CV file against a job description file",
		Long: `Reads two plain text files and prints the match result as JSON.

Configuration comes from the same environment variables as the server.
Nothing is persisted.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.cvPath, "cv", "", "Path to the CV text file")
	cmd.Flags().StringVar(&opts.jobPath, "job", "", "Path to the job description text file")
	cmd.Flags().StringVar(&opts.lang, "lang", "", "Recommendation language (en or sv)")
	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "match:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	if opts.cvPath == "" || opts.jobPath == "" {
		return fmt.Errorf("%w: --cv and --job are required", domain.ErrInvalidArgument)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// Logs go to stderr so stdout stays valid JSON.
	slog.SetDefault(observability.NewLogger(os.Stderr, cfg))

	cv, err := os.ReadFile(opts.cvPath) // #nosec G304 -- user supplied path
	if err != nil {
		return fmt.Errorf("read cv: %w", err)
	}
	job, err := os.ReadFile(opts.jobPath) // #nosec G304 -- user supplied path
	if err != nil {
		return fmt.Errorf("read job: %w", err)
	}

	rdb, err := app.NewRedis(ctx, cfg)
	if err != nil {
		slog.Warn("redis unavailable; continuing without shared cache", slog.Any("error", err))
		rdb = nil
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}
	matcher, err := app.BuildMatcher(cfg, rdb)
	if err != nil {
		return err
	}

	svc := usecase.NewMatchService(matcher.Engine, nil, nil, cfg.MaxDocumentChars)
	out, err := svc.Match(ctx, usecase.MatchInput{
		CV:       domain.CVDocument(textx.SanitizeText(string(cv))),
		Job:      domain.JobDocument(textx.SanitizeText(string(job))),
		Language: domain.Language(opts.lang),
	})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"result":             out.Result,
		"missing_keywords":   out.MissingKeywords,
		"language":           out.Language,
		"semantic_available": out.SemanticAvailable,
	})
}
