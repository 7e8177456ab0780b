// Command mailtl translates the English text of HTML email templates in a
// directory tree to Thai, in place.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/mailtl"
	"github.com/ZaguanLabs/mailtl/internal/config"
	"github.com/ZaguanLabs/mailtl/internal/logger"
	"github.com/ZaguanLabs/mailtl/walker"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = mailtl.Version
	commit    = mailtl.GitCommit
	buildDate = mailtl.BuildDate
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// app carries the output streams and the flags that are not config keys.
type app struct {
	stdout     io.Writer
	stderr     io.Writer
	configFile string
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "mailtl [root]",
		Short: "Translate HTML email templates to Thai",
		Long: `mailtl walks a directory of HTML email templates and translates the English
text of each one to Thai in place. Placeholders such as #USER_NAME# and
links are kept exactly as written; only the prose around them is sent to
the translation provider.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       mailtl.FullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runTranslate,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "Config file (default: mailtl.yaml in ., ./configs or ~/.config/mailtl)")
	flags.String("lang", mailtl.DefaultTargetLang, "Target language code")
	flags.String("source", mailtl.DefaultSourceLang, "Source language code, or auto")
	flags.String("provider", "google", "Translation provider: google or openai")
	flags.Bool("dry-run", false, "Translate but do not write files; print the changes instead")
	flags.Int("concurrency", 1, "Text nodes of one file translated at the same time")
	flags.Bool("set-lang", false, "Set <html lang> on rewritten files")
	flags.String("context", "", "Context passed to the provider (e.g. 'Online shop order emails')")
	flags.StringSlice("exclude", nil, "Terms the provider must keep as written")
	flags.StringSlice("ignore-tags", nil, "Elements whose text is never translated (default: script,style,code,pre,textarea,noscript)")
	flags.String("cache", "memory", "Cache backend: memory, redis or none")
	flags.Int("cache-ttl", 0, "Cache TTL in seconds (0: no expiry)")
	flags.String("cache-file", "", "JSON file the cache is loaded from before and saved to after a run")
	flags.String("redis-url", "", "Redis URL for the redis cache (e.g. redis://localhost:6379/0)")
	flags.Int("rpm", 0, "Maximum provider requests per minute (0: unlimited)")
	flags.Int("max-retries", 3, "Retries of a failed provider request")
	flags.String("model", "gpt-4o-mini", "OpenAI model")
	flags.String("api-key", "", "OpenAI API key (default: OPENAI_API_KEY env)")
	flags.String("google-url", "", "Google Translate endpoint root")
	flags.Duration("google-timeout", 15*time.Second, "Google Translate request timeout")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "text", "Log format: text or json")

	translate := &cobra.Command{
		Use:   "translate [root]",
		Short: "Translate all templates under root (the default command)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runTranslate,
	}

	root.AddCommand(
		translate,
		a.newScanCommand(),
		a.newCacheCommand(),
		a.newVersionCommand(),
	)

	return root
}

func (a *app) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.stdout, "%s %s\n", mailtl.Name, version)
			if commit != "unknown" && commit != "" {
				fmt.Fprintf(a.stdout, "  commit:  %s\n", commit)
			}
			if buildDate != "unknown" && buildDate != "" {
				fmt.Fprintf(a.stdout, "  built:   %s\n", buildDate)
			}
			return nil
		},
	}
}

// setup loads the configuration and installs the logger. The returned
// closer must be closed when the command is done.
func (a *app) setup(cmd *cobra.Command, args []string) (*config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := config.Load(a.configFile, cmd.Flags())
	if err != nil {
		return nil, nil, nil, err
	}
	if len(args) > 0 {
		cfg.Root = args[0]
	}

	log, closer, err := logger.New(cfg.Logger, a.stderr)
	if err != nil {
		return nil, nil, nil, err
	}
	slog.SetDefault(log)

	return cfg, log, closer, nil
}

func (a *app) runTranslate(cmd *cobra.Command, args []string) error {
	cfg, log, closer, err := a.setup(cmd, args)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := cmd.Context()

	store, err := openCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	t := newTranslator(cfg, newProvider(cfg, log), store.cache, log)
	w := walker.New(t, walker.WithDryRun(cfg.DryRun), walker.WithLogger(log))

	log.Info("starting translation",
		"root", cfg.Root,
		"lang", cfg.TargetLang,
		"provider", cfg.Provider,
		"dry_run", cfg.DryRun,
	)

	start := time.Now()
	summary, err := w.Walk(ctx, cfg.Root)
	if summary != nil {
		printSummary(a.stdout, summary, cfg.DryRun, time.Since(start))
	}

	if saveErr := store.save(ctx, cfg); saveErr != nil {
		log.Error("saving cache", "error", saveErr)
	}

	return err
}
