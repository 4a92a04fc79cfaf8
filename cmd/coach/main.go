package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkarpov/interview-coach/internal/fetch"
	"github.com/mkarpov/interview-coach/internal/handler"
	appI18n "github.com/mkarpov/interview-coach/internal/i18n"
	"github.com/mkarpov/interview-coach/internal/keywords"
	"github.com/mkarpov/interview-coach/internal/llm"
	"github.com/mkarpov/interview-coach/internal/questions"
	"github.com/mkarpov/interview-coach/internal/session"
	"github.com/mkarpov/interview-coach/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "coach",
		Short: "Interview practice scorer and question generator",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd(), extractCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `coach --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP scoring server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", store.MemoryDSN, "Attempt log DSN (default keeps the session in memory only)")
	f.StringP("bank", "q", "questions.yaml", "Path to the question bank YAML file")
	f.Bool("use-llm", false, "Enable remote LLM feedback on evaluations")
	f.String("llm-url", "", "OpenAI-compatible API base URL")
	f.String("llm-key", "", "API key for LLM feedback (or set COACH_LLM_KEY)")
	f.String("llm-model", "gpt-4o-mini", "LLM model name")
	f.StringP("lang", "l", "en", "Coaching language (en, ru)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a recorded session as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "", "Attempt log DSN (file path; required)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")

	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract keywords (and optionally questions) from a job spec",
		RunE:  runExtract,
	}
	f := cmd.Flags()
	f.String("url", "", "Job spec URL to fetch")
	f.String("file", "", "Job spec text file (- for stdin)")
	f.IntP("keywords", "k", keywords.DefaultK, "Maximum keywords to extract")
	f.Bool("questions", false, "Expand keywords into a question pool (JSON)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("COACH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("coach")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/coach")
	v.AddConfigPath("/etc/coach")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open attempt log: %w", err)
	}
	defer db.Close()

	if err := appI18n.Init(v.GetString("lang")); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	bank := questions.LoadBank(v.GetString("bank"))
	if err := bank.Validate(); err != nil {
		slog.Warn("serving with default question only", "error", err)
	}

	var feedback session.Feedbacker
	if v.GetBool("use-llm") {
		if v.GetString("llm-key") == "" {
			return fmt.Errorf("LLM feedback enabled but no API key: set --llm-key or COACH_LLM_KEY")
		}
		feedback = llm.New(
			v.GetString("llm-url"),
			v.GetString("llm-key"),
			v.GetString("llm-model"),
		)
		slog.Info("LLM feedback enabled", "url", v.GetString("llm-url"), "model", v.GetString("llm-model"))
	}

	sess := session.New(db, feedback)
	h := handler.New(sess, bank)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"db", v.GetString("db"),
		"bank", v.GetString("bank"),
		"lang", v.GetString("lang"),
		"use_llm", v.GetBool("use-llm"),
	)
	return http.ListenAndServe(addr, r)
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open attempt log: %w", err)
	}
	defer db.Close()

	sess := session.New(db, nil)
	data, err := sess.ExportJSON()
	if err != nil {
		return fmt.Errorf("export session: %w", err)
	}

	return writeOutput(v.GetString("output"), data)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	raw, err := readJobSpec(v.GetString("url"), v.GetString("file"))
	if err != nil {
		return err
	}

	kws := keywords.Extract(raw, v.GetInt("keywords"))

	if v.GetBool("questions") {
		pool := questions.Generate(kws)
		data, err := json.MarshalIndent(map[string]any{"keywords": kws, "questions": pool}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		return writeOutput("-", data)
	}

	for _, kw := range kws {
		fmt.Println(kw)
	}
	return nil
}

func readJobSpec(url, file string) (string, error) {
	switch {
	case url != "":
		text, err := fetch.Text(context.Background(), url, nil)
		if err != nil {
			return "", fmt.Errorf("could not extract job spec: %w", err)
		}
		return text, nil
	case file == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("either --url or --file is required")
	}
}

func writeOutput(path string, data []byte) error {
	var w io.Writer
	if path == "" || path == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)
	return nil
}
