package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seven-pz/translationmdexe/internal/api/httpserver"
	"github.com/seven-pz/translationmdexe/internal/domain"
	"github.com/seven-pz/translationmdexe/internal/license"
	"github.com/seven-pz/translationmdexe/internal/usecase/jobs"
	"github.com/seven-pz/translationmdexe/internal/usecase/review"
	"github.com/seven-pz/translationmdexe/internal/usecase/translator"
)

type rootFlags struct {
	configPath string
	pair       string
	model      string
	bypass     bool
}

// NewRootCommand builds the CLI entrypoint.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "translationmdexe",
		Short:         "Offline document translator for Markdown, text and Word files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&flags.pair, "pair", "", "language pair, e.g. fr-en")
	root.PersistentFlags().StringVar(&flags.model, "model", "", "override the configured model")
	root.PersistentFlags().BoolVar(&flags.bypass, "no-cache", false, "skip the translation memory")

	root.AddCommand(
		newTranslateCommand(flags),
		newTextCommand(flags),
		newServeCommand(flags),
		newReviseCommand(flags),
		newHistoryCommand(flags),
		newStatsCommand(flags),
		newModelsCommand(flags),
		newJobsCommand(flags),
		newActivateCommand(flags),
		newLicenseCommand(flags),
	)
	return root
}

func withApp(flags *rootFlags, gated bool, fn func(ctx context.Context, app *App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		app, err := NewApp(flags.configPath)
		if err != nil {
			return err
		}
		defer app.Close()
		if gated {
			if err := app.Lock.Check(); err != nil {
				if errors.Is(err, license.ErrNotActivated) {
					return fmt.Errorf("not activated: run `translationmdexe activate <code>` first")
				}
				return err
			}
		}
		return fn(cmd.Context(), app)
	}
}

func resolveOptions(flags *rootFlags, app *App) (translator.Options, error) {
	pairStr := flags.pair
	if pairStr == "" {
		pairStr = app.Cfg.DefaultPair
	}
	pair, err := domain.ParsePair(pairStr)
	if err != nil {
		return translator.Options{}, err
	}
	model := flags.model
	if model == "" {
		model = app.Cfg.ModelFor(pairStr)
	}
	return translator.Options{Pair: pair, Model: model, BypassCache: flags.bypass}, nil
}

func newTranslateCommand(flags *rootFlags) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "translate <file>",
		Short: "Translate a document and write the result next to it",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file path")
	cmd.RunE = func(c *cobra.Command, args []string) error {
		return withApp(flags, true, func(ctx context.Context, app *App) error {
			opts, err := resolveOptions(flags, app)
			if err != nil {
				return err
			}
			doc, segs, err := app.Docs.IngestFile(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("document %d: %s (%d segments)\n", doc.ID, doc.Name, len(segs))

			jobID, err := app.Runner.StartTranslateDocument(ctx, jobs.TranslateDocumentParams{
				DocumentID:  doc.ID,
				Pair:        opts.Pair.String(),
				Model:       opts.Model,
				OutputPath:  outPath,
				BypassCache: opts.BypassCache,
			})
			if err != nil {
				return err
			}
			app.Runner.Wait(jobID)
			job, err := app.JobRepo.Get(ctx, jobID)
			if err != nil {
				return err
			}
			if job.Status != domain.JobStatusDone {
				logs, _ := app.JobRepo.ListLogs(ctx, jobID, 5)
				for _, l := range logs {
					fmt.Fprintf(os.Stderr, "%s %s\n", l.Level, l.Message)
				}
				return fmt.Errorf("job %d finished with status %s", jobID, job.Status)
			}
			fmt.Printf("translated %d/%d segments\n", job.Progress, job.Total)
			return nil
		})(c, args)
	}
	return cmd
}

func newTextCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "text <text>",
		Short: "Translate free text from the command line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return withApp(flags, true, func(ctx context.Context, app *App) error {
				opts, err := resolveOptions(flags, app)
				if err != nil {
					return err
				}
				out, err := app.Translator.TranslateText(ctx, strings.Join(args, " "), opts)
				if err != nil {
					return err
				}
				fmt.Println(out)
				return nil
			})(c, args)
		},
	}
}

func newServeCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP API",
		RunE: func(c *cobra.Command, args []string) error {
			return withApp(flags, true, func(ctx context.Context, app *App) error {
				srv := httpserver.New(httpserver.Deps{
					Log:          app.Log,
					Auth:         app.Vault,
					Docs:         app.Docs,
					Texter:       app.Translator,
					Jobs:         app.Runner,
					Review:       app.Review,
					JobRepo:      app.JobRepo,
					Translations: app.Translations,
					Reports:      app.Reports,
					Settings:     app.Settings,
					Templates:    app.Templates,
					DefaultPair:  app.Cfg.DefaultPair,
					UploadDir:    app.UploadDir(),
				})

				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				errCh := make(chan error, 1)
				go func() { errCh <- srv.Start(app.Cfg.HTTP.Listen) }()
				app.Log.Info("http api listening", zap.String("addr", app.Cfg.HTTP.Listen))

				select {
				case err := <-errCh:
					return err
				case <-ctx.Done():
				}
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})(c, args)
		},
	}
}

func newReviseCommand(flags *rootFlags) *cobra.Command {
	var (
		by      string
		comment string
		score   int
	)
	cmd := &cobra.Command{
		Use:   "revise <document-id> <file>",
		Short: "Store a human-revised translation as a new version",
		Args:  cobra.ExactArgs(2),
	}
	cmd.Flags().StringVar(&by, "by", "admin", "reviser name")
	cmd.Flags().StringVar(&comment, "comment", "", "revision comment")
	cmd.Flags().IntVar(&score, "score", 0, "quality score 1-5 (0 to omit)")
	cmd.RunE = func(c *cobra.Command, args []string) error {
		return withApp(flags, true, func(ctx context.Context, app *App) error {
			docID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid document id %q", args[0])
			}
			content, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			pairStr := flags.pair
			if pairStr == "" {
				pairStr = app.Cfg.DefaultPair
			}
			rev := review.Revision{
				DocumentID: docID,
				Pair:       pairStr,
				Content:    string(content),
				RevisedBy:  by,
				Comment:    comment,
			}
			if score > 0 {
				rev.QualityScore = &score
			}
			t, err := app.Review.Submit(ctx, rev)
			if err != nil {
				return err
			}
			fmt.Printf("stored revision as version %d\n", t.Version)
			return nil
		})(c, args)
	}
	return cmd
}

func newHistoryCommand(flags *rootFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent translations",
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "max entries")
	cmd.RunE = func(c *cobra.Command, args []string) error {
		return withApp(flags, false, func(ctx context.Context, app *App) error {
			entries, err := app.Reports.History(ctx, limit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				mark := " "
				if e.Status == domain.TranslationStatusRevised {
					mark = "*"
				}
				fmt.Printf("%s %-30s %-6s v%d  %s\n", mark, e.DocumentName, e.Pair, e.Version, e.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		})(c, args)
	}
	return cmd
}

func newStatsCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show translation memory statistics",
		RunE: func(c *cobra.Command, args []string) error {
			return withApp(flags, false, func(ctx context.Context, app *App) error {
				st, err := app.Reports.Stats(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("documents:     %d\n", st.TotalDocuments)
				fmt.Printf("translations:  %d\n", st.TotalTranslations)
				fmt.Printf("revision rate: %.1f%%\n", st.RevisionRate)
				fmt.Printf("cache entries: %d\n", st.CacheEntries)
				fmt.Printf("reuse rate:    %.1f%%\n", st.ReuseRate)
				return nil
			})(c, args)
		},
	}
}

func newModelsCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List models available from the configured provider",
		RunE: func(c *cobra.Command, args []string) error {
			return withApp(flags, false, func(ctx context.Context, app *App) error {
				models, err := app.Provider.ListModels(ctx)
				if err != nil {
					return err
				}
				for _, m := range models {
					if m.Description != "" {
						fmt.Printf("%-40s %s\n", m.Name, m.Description)
						continue
					}
					fmt.Println(m.Name)
				}
				return nil
			})(c, args)
		},
	}
}

func newJobsCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect background jobs",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent jobs",
		RunE: func(c *cobra.Command, args []string) error {
			return withApp(flags, false, func(ctx context.Context, app *App) error {
				jobsList, err := app.JobRepo.List(ctx, 20)
				if err != nil {
					return err
				}
				for _, j := range jobsList {
					fmt.Printf("%-5d %-20s %-9s %d/%d  %s\n", j.ID, j.Type, j.Status, j.Progress, j.Total, j.CreatedAt.Format("2006-01-02 15:04"))
				}
				return nil
			})(c, args)
		},
	}
	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one job with its log",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return withApp(flags, false, func(ctx context.Context, app *App) error {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid job id %q", args[0])
				}
				j, err := app.JobRepo.Get(ctx, id)
				if err != nil {
					return err
				}
				if j == nil {
					return fmt.Errorf("job %d not found", id)
				}
				fmt.Printf("job %d: %s %s %d/%d\n", j.ID, j.Type, j.Status, j.Progress, j.Total)
				logs, err := app.JobRepo.ListLogs(ctx, id, 100)
				if err != nil {
					return err
				}
				for _, l := range logs {
					fmt.Printf("  %s [%s] %s\n", l.Time.Format("15:04:05"), l.Level, l.Message)
				}
				return nil
			})(c, args)
		},
	}
	cmd.AddCommand(list, show)
	return cmd
}

func newActivateCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <code>",
		Short: "Activate this installation on the current machine",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return withApp(flags, false, func(ctx context.Context, app *App) error {
				if err := app.Lock.Activate(args[0]); err != nil {
					return err
				}
				fmt.Println("activated")
				return nil
			})(c, args)
		},
	}
}

func newLicenseCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "license",
		Short: "Manage the license",
	}
	var actor string
	extend := &cobra.Command{
		Use:   "extend <user> <days>",
		Short: "Extend a user's license",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return withApp(flags, false, func(ctx context.Context, app *App) error {
				days, err := strconv.Atoi(args[1])
				if err != nil || days <= 0 {
					return fmt.Errorf("invalid day count %q", args[1])
				}
				st, err := app.Vault.Extend(actor, args[0], days)
				if err != nil {
					return err
				}
				fmt.Printf("%s: %s until %s (%d days left)\n", st.User, st.LicenseType, st.ExpiresAt.Format("2006-01-02"), st.DaysLeft)
				return nil
			})(c, args)
		},
	}
	extend.Flags().StringVar(&actor, "as", "admin", "admin account performing the operation")

	var addType string
	var addDays int
	add := &cobra.Command{
		Use:   "add <user> <password>",
		Short: "Create a user with a license tier",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return withApp(flags, false, func(ctx context.Context, app *App) error {
				st, err := app.Vault.AddUser(actor, args[0], args[1], addType, addDays)
				if err != nil {
					return err
				}
				fmt.Printf("%s: %s until %s\n", st.User, st.LicenseType, st.ExpiresAt.Format("2006-01-02"))
				return nil
			})(c, args)
		},
	}
	add.Flags().StringVar(&actor, "as", "admin", "admin account performing the operation")
	add.Flags().StringVar(&addType, "type", license.LicenseStandard, "license tier (admin, premium, standard)")
	add.Flags().IntVar(&addDays, "days", 90, "license duration in days")

	cmd.AddCommand(extend, add)
	return cmd
}
