package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/deepsearch/internal/cli"
	"github.com/hyperjump/deepsearch/internal/config"
	"github.com/hyperjump/deepsearch/internal/extract"
	"github.com/hyperjump/deepsearch/internal/ingest"
	"github.com/hyperjump/deepsearch/internal/metrics"
	"github.com/hyperjump/deepsearch/internal/models"
	"github.com/hyperjump/deepsearch/internal/server"
	"github.com/hyperjump/deepsearch/internal/watcher"
	"github.com/hyperjump/deepsearch/pkg/utils"
)

const shutdownTimeout = 10 * time.Second

func newServerCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server. When watch.directories is configured, new files
in those directories are ingested as they appear.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(opts.configPath, opts.debug)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

func runServer(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	m := metrics.New()
	comps, err := initializeComponents(cfg, m, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := comps.Close(); err != nil {
			logger.Warn("Close failed", zap.Error(err))
		}
	}()

	srv := server.NewServer(comps.Engine, comps.Coordinator, comps.Storage, comps.Index, cfg, m, logger)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	if len(cfg.Watch.Directories) > 0 {
		extensions := cfg.Watch.Extensions
		w := watcher.New(cfg.Watch.Directories, extensions, cfg.Watch.RecursiveOrDefault(),
			func(ctx context.Context, path string) error {
				_, err := comps.Coordinator.IngestFile(ctx, path, extensions, nil)
				return err
			},
			watcher.WithLogger(logger),
		)
		g.Go(func() error {
			return w.Run(ctx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})

	return g.Wait()
}

func newSearchCmd(opts *globalOptions) *cobra.Command {
	var (
		topK   int
		output string
	)
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search documents by meaning",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := buildSearchQuery(args)
			if query == "" {
				return errors.New("query is required")
			}
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var resp *models.SearchResponse
			if opts.serverURL != "" {
				resp, err = cli.NewClient(opts.serverURL).Search(ctx, query, topK)
			} else {
				err = withComponents(opts, func(c *Components) error {
					var searchErr error
					resp, searchErr = c.Engine.Search(ctx, &models.SearchQuery{Query: query, TopK: topK})
					return searchErr
				})
			}
			if err != nil {
				return err
			}
			return cli.WriteSearchResults(cmd.OutOrStdout(), resp, format)
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of results (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", string(cli.OutputText), "output format: text, compact or json")
	return cmd
}

func newIngestCmd(opts *globalOptions) *cobra.Command {
	var (
		file string
		meta []string
	)
	cmd := &cobra.Command{
		Use:   "ingest [text]",
		Short: "Store and index a document",
		Long: `Store and index a document given as text or, with --file, extracted from a
file. Supported file types are plain text, PDF, DOCX, XLSX, ODT and RTF.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file == "") == (len(args) == 0) {
				return errors.New("provide either text or --file")
			}
			metadata, err := parseMeta(meta)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var id int64
			if opts.serverURL != "" {
				content := ""
				if file != "" {
					content, metadata, err = extractForUpload(file, metadata)
					if err != nil {
						return err
					}
				} else {
					content = args[0]
				}
				var resp *models.IngestResponse
				resp, err = cli.NewClient(opts.serverURL).Ingest(ctx, content, metadata)
				if resp != nil {
					id = resp.ID
				}
			} else {
				err = withComponents(opts, func(c *Components) error {
					var ingestErr error
					if file != "" {
						id, ingestErr = c.Coordinator.IngestFile(ctx, file, nil, metadata)
					} else {
						input := models.DocumentInput{Content: args[0], Metadata: metadata}
						if ingestErr = input.Validate(); ingestErr != nil {
							return ingestErr
						}
						id, ingestErr = c.Coordinator.Ingest(ctx, input.Content, input.Metadata)
					}
					return ingestErr
				})
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Ingested document %d\n", id)
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "ingest the text extracted from this file")
	cmd.Flags().StringArrayVarP(&meta, "meta", "m", nil, "metadata key=value (repeatable)")
	return cmd
}

// extractForUpload extracts file text locally so it can be sent to a server
// that cannot read the client's filesystem.
func extractForUpload(path string, metadata map[string]interface{}) (string, map[string]interface{}, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", nil, err
	}
	text, err := extract.NewExtractor().Extract(absPath)
	if err != nil {
		return "", nil, fmt.Errorf("extract %s: %w", path, err)
	}
	text = ingest.Preprocess(text)
	if text == "" {
		return "", nil, fmt.Errorf("no text extracted from %s", path)
	}
	if metadata == nil {
		metadata = make(map[string]interface{}, 2)
	}
	metadata["source_path"] = absPath
	metadata["source_name"] = filepath.Base(absPath)
	return text, metadata, nil
}

func newGetCmd(opts *globalOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid document id %q", args[0])
			}
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var doc *models.SearchResult
			if opts.serverURL != "" {
				doc, err = cli.NewClient(opts.serverURL).GetDocument(ctx, id)
			} else {
				err = withComponents(opts, func(c *Components) error {
					var getErr error
					doc, getErr = c.Engine.GetDocument(ctx, id)
					return getErr
				})
			}
			if err != nil {
				return err
			}
			return cli.WriteDocument(cmd.OutOrStdout(), doc, format)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", string(cli.OutputText), "output format: text, compact or json")
	return cmd
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show document, index and orphan counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var status *models.StatusResponse
			if opts.serverURL != "" {
				status, err = cli.NewClient(opts.serverURL).Status(ctx)
			} else {
				err = withComponents(opts, func(c *Components) error {
					var statusErr error
					status, statusErr = c.Status(ctx)
					return statusErr
				})
			}
			if err != nil {
				return err
			}
			return cli.WriteStatus(cmd.OutOrStdout(), status, format)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", string(cli.OutputText), "output format: text, compact or json")
	return cmd
}

func newRepairCmd(opts *globalOptions) *cobra.Command {
	var (
		dryRun bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Re-embed and index documents that have no vector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var report *ingest.RepairReport
			if opts.serverURL != "" {
				client := cli.NewClient(opts.serverURL)
				if dryRun {
					var orphans []int64
					if orphans, err = client.Orphans(ctx); err == nil {
						report = &ingest.RepairReport{Orphans: orphans}
					}
				} else {
					report, err = client.Repair(ctx)
				}
			} else {
				err = withComponents(opts, func(c *Components) error {
					if dryRun {
						orphans, orphanErr := c.Coordinator.Orphans(ctx)
						if orphanErr != nil {
							return orphanErr
						}
						report = &ingest.RepairReport{Orphans: orphans}
						return nil
					}
					var repairErr error
					report, repairErr = c.Coordinator.Repair(ctx)
					return repairErr
				})
			}
			if report != nil {
				if writeErr := cli.WriteRepairReport(cmd.OutOrStdout(), report, dryRun, format); writeErr != nil {
					return errors.Join(err, writeErr)
				}
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list orphaned documents without repairing them")
	cmd.Flags().StringVarP(&output, "output", "o", string(cli.OutputText), "output format: text, compact or json")
	return cmd
}

// withComponents opens the stores for a direct-mode command, runs fn and
// closes them again.
func withComponents(opts *globalOptions, fn func(*Components) error) error {
	cfg, _, err := loadConfig(opts.configPath, opts.debug)
	if err != nil {
		return err
	}
	// Client commands stay quiet unless debugging.
	logger := zap.NewNop()
	if cfg.Debug {
		if logger, err = utils.NewLogger(true); err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
	}
	comps, err := initializeComponents(cfg, nil, logger)
	if err != nil {
		return err
	}
	return errors.Join(fn(comps), comps.Close())
}
