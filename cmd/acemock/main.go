package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zen-systems/acemock/pkg/config"
	"github.com/zen-systems/acemock/pkg/engine"
	"github.com/zen-systems/acemock/pkg/logging"
	"github.com/zen-systems/acemock/pkg/mcpserver"
	"github.com/zen-systems/acemock/pkg/report"
	"github.com/zen-systems/acemock/pkg/server"
	"github.com/zen-systems/acemock/pkg/store"
)

var (
	version    = "dev"
	configFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "acemock",
		Short: "Mock interview backend with AI answer evaluation",
		Long: `AceMock rates interview answers, answers site assistant messages and
	generates interview questions. A generative model is used when credentials
	are configured; evaluation and chat fall back to local rules otherwise.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (default ~/.acemock/config.yaml)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(evaluateCmd())
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(modelsCmd())
	rootCmd.AddCommand(mcpCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var addrFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if addrFlag != "" {
				cfg.Addr = addrFlag
			}

			logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logging.Sync(logger)

			db, err := store.Open(cfg.DBPath)
			if err != nil {
				logger.Error("failed to open database", zap.Error(err))
				return err
			}
			defer db.Close()

			eng, err := engine.FromConfig(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to create engine: %w", err)
			}
			logger.Info("engine ready",
				zap.Bool("model_configured", eng.Configured()),
				zap.String("provider", cfg.Provider),
				zap.String("model", eng.Model()),
			)

			srv := server.New(server.Config{Engine: eng, Store: db, Logger: logger})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Listen(cfg.Addr) }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (overrides config)")
	return cmd
}

func evaluateCmd() *cobra.Command {
	var questionFlag, referenceFlag, answerFlag string

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Rate an answer to an interview question",
		Long: `Rates an answer and prints {rating, feedback, source} as JSON.
	The answer is read from stdin when --answer is not given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if questionFlag == "" {
				return fmt.Errorf("--question is required")
			}
			answer := answerFlag
			if answer == "" {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				answer = strings.TrimSpace(string(data))
			}
			if answer == "" {
				return fmt.Errorf("answer is empty")
			}

			eng, logger, err := cliEngine()
			if err != nil {
				return err
			}
			defer logging.Sync(logger)

			result := eng.EvaluateAnswer(cmd.Context(), engine.EvaluationRequest{
				Question:        questionFlag,
				ReferenceAnswer: referenceFlag,
				CandidateAnswer: answer,
			})
			return printJSON(map[string]any{
				"rating":   result.Rating,
				"feedback": result.Feedback,
				"source":   result.Source,
			})
		},
	}

	cmd.Flags().StringVar(&questionFlag, "question", "", "interview question")
	cmd.Flags().StringVar(&referenceFlag, "reference", "", "expected answer")
	cmd.Flags().StringVar(&answerFlag, "answer", "", "candidate answer")
	return cmd
}

func chatCmd() *cobra.Command {
	var urlFlag string

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send a message to the site assistant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, logger, err := cliEngine()
			if err != nil {
				return err
			}
			defer logging.Sync(logger)

			reply := eng.Chat(cmd.Context(), engine.ChatRequest{Message: args[0], CurrentURL: urlFlag})
			return printJSON(reply)
		},
	}

	cmd.Flags().StringVar(&urlFlag, "url", "/", "current page")
	return cmd
}

func generateCmd() *cobra.Command {
	var positionFlag, descFlag, experienceFlag, createdByFlag string
	var countFlag int
	var saveFlag bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate interview questions for a role",
		Long: `Asks the configured model for interview questions and prints them as JSON.
	Use --save to store them as a new interview and print its mock id.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if positionFlag == "" || descFlag == "" || experienceFlag == "" {
				return fmt.Errorf("--position, --desc and --experience are required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logging.Sync(logger)

			eng, err := engine.FromConfig(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to create engine: %w", err)
			}

			questions, err := eng.GenerateQuestions(cmd.Context(), engine.InterviewSpec{
				JobPosition:   positionFlag,
				JobDesc:       descFlag,
				JobExperience: experienceFlag,
				Count:         countFlag,
			})
			if errors.Is(err, engine.ErrModelUnavailable) {
				return fmt.Errorf("no API key configured for provider %q", cfg.Provider)
			}
			if err != nil {
				return err
			}

			if !saveFlag {
				return printJSON(questions)
			}

			db, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			iv := &store.Interview{
				MockID:        uuid.NewString(),
				JobPosition:   positionFlag,
				JobDesc:       descFlag,
				JobExperience: experienceFlag,
				CreatedBy:     createdByFlag,
			}
			for _, q := range questions {
				iv.Questions = append(iv.Questions, store.Question{Question: q.Question, Answer: q.Answer})
			}
			if err := db.CreateInterview(cmd.Context(), iv); err != nil {
				return err
			}
			fmt.Println(iv.MockID)
			return nil
		},
	}

	cmd.Flags().StringVar(&positionFlag, "position", "", "job position")
	cmd.Flags().StringVar(&descFlag, "desc", "", "job description or tech stack")
	cmd.Flags().StringVar(&experienceFlag, "experience", "", "years of experience")
	cmd.Flags().StringVar(&createdByFlag, "created-by", "cli", "owner recorded with a saved interview")
	cmd.Flags().IntVar(&countFlag, "count", 0, "number of questions (default from config)")
	cmd.Flags().BoolVar(&saveFlag, "save", false, "store the generated interview")
	return cmd
}

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report [mock-id]",
		Short: "Show the feedback report of an interview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			db, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			answers, err := db.ListAnswers(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			r := report.Build(args[0], answers)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tRATING\tSOURCE\tQUESTION")
			for i, a := range r.Answers {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, a.Rating, a.Source, truncate(a.Question, 60))
			}
			fmt.Fprintln(w)
			fmt.Fprintf(w, "OVERALL\t%s\t\t%d rated\n", r.Summary(), r.Rated)
			return w.Flush()
		},
	}
}

func modelsCmd() *cobra.Command {
	var resolveFlag bool
	var validateFlag bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List providers, models, and aliases",
		Long: `Lists providers and their models.

	Use --resolve to show aliases and what they resolve to.
	Use --validate to check that the configured provider and model agree.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if resolveFlag {
				return showAliases(cfg.Aliases)
			}
			if validateFlag {
				return validateConfig(cfg)
			}

			// The active provider reports its own models when a key is set.
			var active []string
			if eng, err := engine.FromConfig(cfg, nil); err == nil {
				active = eng.Models()
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tMODELS\tSTATUS")
			for _, provider := range cfg.Aliases.ListProviders() {
				status := "no key"
				if cfg.HasAdapter(provider) {
					status = "ready"
				}
				models := cfg.Aliases.GetProviderModels(provider)
				if provider == cfg.Provider {
					status += " (active)"
					if len(active) > 0 {
						models = active
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", provider, strings.Join(models, ", "), status)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&resolveFlag, "resolve", false, "show aliases and what they resolve to")
	cmd.Flags().BoolVar(&validateFlag, "validate", false, "check the configured provider and model")
	return cmd
}

func showAliases(aliases *config.ModelAliases) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALIAS\tMODEL\tPROVIDER")

	aliasMap := aliases.ListAliases()
	names := make([]string, 0, len(aliasMap))
	for name := range aliasMap {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, alias := range names {
		model := aliasMap[alias]
		fmt.Fprintf(w, "%s\t%s\t%s\n", alias, model, aliases.GetProviderForModel(model))
	}
	return w.Flush()
}

func validateConfig(cfg *config.Config) error {
	errs := cfg.Aliases.ValidateConfig(cfg)
	if len(errs) == 0 {
		fmt.Printf("Provider %s with model %s is valid.\n", cfg.Provider, cfg.Model)
		return nil
	}

	fmt.Fprintf(os.Stderr, "Found %d validation errors:\n", len(errs))
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "  - %s\n", err)
	}
	return fmt.Errorf("validation failed")
}

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve evaluate_answer and assistant_chat as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			// stdout carries the protocol; log to the file only.
			logger, err := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logging.Sync(logger)

			eng, err := engine.FromConfig(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to create engine: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return mcpserver.Run(ctx, eng, version, logger)
		},
	}
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadFile(configFile)
	}
	return config.Load()
}

// cliEngine builds an engine for one-shot commands. Logs go to stderr at
// the configured level.
func cliEngine() (*engine.Engine, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	eng, err := engine.FromConfig(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return eng, logger, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
