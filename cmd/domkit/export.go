package main

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/vango-go/domkit/internal/config"
	"github.com/vango-go/domkit/internal/errors"
	"github.com/vango-go/domkit/pkg/quote"
)

type exportOptions struct {
	api   string
	token string
}

func exportCmd() *cobra.Command {
	var (
		opts      exportOptions
		bucket    string
		prefix    string
		region    string
		endpoint  string
		pathStyle bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON snapshot of the quotes to S3",
		Long: `Fetch every quote from the API and upload them as one JSON object
named <prefix><timestamp>.json. Credentials come from AWS_ACCESS_KEY_ID,
AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN.

Examples:
  domkit export --bucket=quotes-backup
  domkit export --endpoint=http://localhost:9000 --path-style --bucket=dev`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("bucket") {
				cfg.Export.Bucket = bucket
			}
			if flags.Changed("prefix") {
				cfg.Export.Prefix = prefix
			}
			if flags.Changed("region") {
				cfg.Export.Region = region
			}
			if flags.Changed("endpoint") {
				cfg.Export.Endpoint = endpoint
			}
			if flags.Changed("path-style") {
				cfg.Export.PathStyle = pathStyle
			}
			if cfg.Export.Bucket == "" {
				return errors.New("E142").WithSuggestion("Pass --bucket or set export.bucket")
			}

			client := quote.NewS3Client(quote.S3Config{
				Region:    cfg.Export.Region,
				Endpoint:  cfg.Export.Endpoint,
				PathStyle: cfg.Export.PathStyle,
			})
			exporter := quote.NewS3Exporter(client, cfg.Export.Bucket, cfg.Export.Prefix)
			return runExport(cmd.Context(), cmd.OutOrStdout(), cfg, opts, exporter)
		},
	}

	cmd.Flags().StringVar(&opts.api, "api", "", "Quote API base URL (default from server config)")
	cmd.Flags().StringVar(&opts.token, "token", "", "X-Auth-Token value (default from server.authToken)")
	cmd.Flags().StringVar(&bucket, "bucket", "", "Destination bucket")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix")
	cmd.Flags().StringVar(&region, "region", "", "AWS region")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "S3-compatible endpoint URL")
	cmd.Flags().BoolVar(&pathStyle, "path-style", false, "Use path-style bucket addressing")
	return cmd
}

func runExport(ctx context.Context, out io.Writer, cfg *config.Config, opts exportOptions, exporter *quote.S3Exporter) error {
	client := apiClient(cfg, opts.api, opts.token)
	quotes, err := client.List(ctx)
	if err != nil {
		return apiError(err)
	}

	key, err := exporter.Export(ctx, quotes)
	if err != nil {
		return errors.New("E141").Wrap(err)
	}
	success(out, "Exported %d quotes to s3://%s/%s", len(quotes), cfg.Export.Bucket, key)
	return nil
}

// apiClient returns a REST client for the configured or overridden API.
func apiClient(cfg *config.Config, base, token string) *quote.Client {
	if base == "" {
		base = cfg.BaseURL()
	}
	if token == "" {
		token = cfg.Server.AuthToken
	}
	return quote.NewClient(base, quote.WithToken(token))
}

// apiError maps a client failure to a coded error.
func apiError(err error) error {
	var ae *quote.APIError
	if stderrors.As(err, &ae) && ae.Status == http.StatusForbidden {
		return errors.New("E081").Wrap(err)
	}
	return errors.New("E080").Wrap(err)
}
