package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/renatoruis/oh-institutional/internal/export"
)

func exportCmd(flags *globalFlags) *cobra.Command {
	var (
		dir         string
		bucket      string
		concurrency int
		lang        string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Pre-render the static pages",
		Long: `Render every page without URL parameters into index.html files,
plus 404.html and the client scripts, to a directory or an S3 bucket.

Detail pages (a sermon, a post, an event) need the live server.

Examples:
  openheavens export --dir=dist
  openheavens export --bucket=oh-site --lang=en
  OH_EXPORT_BUCKET=oh-site OH_EXPORT_PREFIX=www openheavens export`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if dir != "" {
				cfg.Export.Dir = dir
				cfg.Export.Bucket = ""
			}
			if bucket != "" {
				cfg.Export.Bucket = bucket
			}
			if lang != "" {
				cfg.Lang = lang
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			site, err := buildSite(cfg, nil)
			if err != nil {
				return err
			}

			var dest export.Destination
			if cfg.Export.Bucket != "" {
				dest, err = export.NewBucket(export.NewS3Client(cfg.Export.Region), cfg.Export.Bucket, cfg.Export.Prefix)
			} else {
				dest, err = export.NewDir(cfg.Export.Dir)
			}
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			info(out, "Exporting to %s", cfg.ExportTarget())
			report, err := export.New(site, dest,
				export.WithLanguage(cfg.Lang),
				export.WithConcurrency(concurrency),
			).Run(ctx)
			for _, key := range report.Failed {
				errorMsg(cmd.ErrOrStderr(), "%s", key)
			}
			if err != nil {
				return err
			}
			success(out, "Exported %d files in %s", len(report.Files), report.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Output directory (overrides config and bucket)")
	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "S3 bucket (overrides config)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", export.DefaultConcurrency, "Pages rendered in parallel")
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Page language: pt or en (overrides config)")

	return cmd
}
