package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/czdate/internal/profile"
	"github.com/hrygo/czdate/plugin/calendar"
	"github.com/hrygo/czdate/plugin/dateparser"
	"github.com/hrygo/czdate/server"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "czdate",
		Short:         "Find Czech dates in text and tell range starts from range ends",
		SilenceUsage:  true,
		SilenceErrors: false,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Best-effort: load .env from the working directory.
			_ = godotenv.Load()
			return setupLogger(v, cmd.ErrOrStderr())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("mode", "dev", `mode of server, can be "prod" or "dev"`)
	flags.String("addr", "", "address of server")
	flags.Int("port", 8081, "port of server")
	flags.String("timezone", "Europe/Prague", "timezone deciding what today is")
	flags.String("oracle", profile.DriverDateparser, "date recognizer: dateparser, builtin, sidecar or llm")
	flags.Bool("oracle-fallback", false, "answer from the builtin recognizer when the selected one fails")
	flags.String("sidecar-url", "", "base URL of the dateparser sidecar")
	flags.String("llm-base-url", "", "OpenAI-compatible API base URL")
	flags.String("llm-api-key", "", "API key for the LLM recognizer")
	flags.String("llm-model", "", "model for the LLM recognizer")
	flags.String("prefer-dates-from", string(dateparser.PreferFuture), "resolve ambiguous dates to the future, past or current_period")
	flags.String("date-order", string(dateparser.OrderDMY), "order of numeric dates: DMY or MDY")
	flags.Int("cache-capacity", 0, "number of cached recognizer answers, 0 disables the cache")
	flags.Duration("cache-ttl", 10*time.Minute, "lifetime of cached answers")
	flags.Float64("rate-limit", 10, "requests per second per client")
	flags.Int("rate-burst", 20, "burst size per client")
	flags.Int("batch-concurrency", 4, "texts processed in parallel by batch search")
	flags.Int("max-batch-size", 100, "maximum texts per batch request")
	flags.Int("max-text-length", 10000, "maximum text length in characters")
	flags.String("log-format", "text", "log format: text or json")
	flags.String("log-level", "", "log level: debug, info, warn or error (default: debug in dev mode, info in prod)")

	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}
	v.SetEnvPrefix("czdate")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd.AddCommand(
		newServeCommand(v),
		newParseCommand(v),
		newSearchCommand(v),
	)
	return rootCmd
}

// loadProfile builds a validated profile from flags, CZDATE_* variables and .env.
func loadProfile(v *viper.Viper) (*profile.Profile, error) {
	p := &profile.Profile{
		Mode:             v.GetString("mode"),
		Addr:             v.GetString("addr"),
		Port:             v.GetInt("port"),
		Version:          version,
		Timezone:         v.GetString("timezone"),
		Driver:           v.GetString("oracle"),
		Fallback:         v.GetBool("oracle-fallback"),
		SidecarURL:       v.GetString("sidecar-url"),
		LLMBaseURL:       v.GetString("llm-base-url"),
		LLMAPIKey:        v.GetString("llm-api-key"),
		LLMModel:         v.GetString("llm-model"),
		PreferDatesFrom:  v.GetString("prefer-dates-from"),
		DateOrder:        v.GetString("date-order"),
		CacheCapacity:    v.GetInt("cache-capacity"),
		CacheTTL:         v.GetDuration("cache-ttl"),
		RateLimit:        v.GetFloat64("rate-limit"),
		RateBurst:        v.GetInt("rate-burst"),
		BatchConcurrency: v.GetInt("batch-concurrency"),
		MaxBatchSize:     v.GetInt("max-batch-size"),
		MaxTextLength:    v.GetInt("max-text-length"),
	}
	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return p, nil
}

func setupLogger(v *viper.Viper, w io.Writer) error {
	level := slog.LevelInfo
	if v.GetString("mode") != "prod" {
		level = slog.LevelDebug
	}
	if name := v.GetString("log-level"); name != "" {
		if err := level.UnmarshalText([]byte(name)); err != nil {
			return errors.Wrapf(err, "invalid log level %q", name)
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch v.GetString("log-format") {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text", "":
		handler = slog.NewTextHandler(w, opts)
	default:
		return errors.Errorf("invalid log format %q", v.GetString("log-format"))
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

func newServeCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP date API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadProfile(v)
			if err != nil {
				return err
			}

			s, err := server.NewServer(p, slog.Default())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- s.Start() }()

			select {
			case err := <-errCh:
				_ = s.Shutdown(context.Background())
				return err
			case <-ctx.Done():
				slog.Info("received shutdown signal")
			}

			if err := s.Shutdown(context.Background()); err != nil {
				slog.Error("shutdown error", "error", err)
				return err
			}
			return <-errCh
		},
	}
}

func newParseCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:     "parse <text>",
		Short:   "Resolve a text that is a single date",
		Example: `  czdate parse "31. 10. 1965"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, closeFn, err := cliParser(v)
			if err != nil {
				return err
			}
			defer closeFn()

			text := strings.Join(args, " ")
			date, ok, err := parser.Parse(cmd.Context(), text)
			if err != nil {
				return err
			}

			out := struct {
				Date       *dateparser.Date `json:"date"`
				Normalized string           `json:"normalized"`
			}{Normalized: dateparser.Normalize(text)}
			if ok {
				out.Date = &date
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newSearchCommand(v *viper.Viper) *cobra.Command {
	var (
		format  string
		summary string
	)

	cmd := &cobra.Command{
		Use:     "search <text>",
		Short:   "Find every date in a text and label range boundaries",
		Example: `  czdate search "chci dovcu od nedele do 23.12."` + "\n" + `  czdate search --format ics --summary Dovolená "od pátku do neděle"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, closeFn, err := cliParser(v)
			if err != nil {
				return err
			}
			defer closeFn()

			result, err := parser.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			switch format {
			case "json":
				return writeJSON(cmd.OutOrStdout(), result)
			case "ics":
				data, err := calendar.Encode(result.Dates, summary, time.Now())
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			default:
				return errors.Errorf("unknown format %q (valid: json, ics)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "output format: json or ics")
	cmd.Flags().StringVar(&summary, "summary", "", "event title for ics output")
	return cmd
}

func cliParser(v *viper.Viper) (*dateparser.ExtendedParser, func(), error) {
	p, err := loadProfile(v)
	if err != nil {
		return nil, nil, err
	}
	parser, store, err := server.NewParser(p, slog.Default())
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if store != nil {
			store.Close()
		}
	}
	return parser, closeFn, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
