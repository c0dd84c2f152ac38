package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/studiowebux/postboard/internal/analytics"
	"github.com/studiowebux/postboard/internal/api"
	"github.com/studiowebux/postboard/internal/cli"
	"github.com/studiowebux/postboard/internal/config"
	"github.com/studiowebux/postboard/internal/history"
	"github.com/studiowebux/postboard/internal/keybinds"
	"github.com/studiowebux/postboard/internal/logger"
	"github.com/studiowebux/postboard/internal/mock"
	"github.com/studiowebux/postboard/internal/tui"
	"github.com/studiowebux/postboard/internal/types"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "postboard",
	Short: "Postboard - browse and edit posts on a REST API",
	Long: `Postboard lists, creates, updates and deletes posts on a JSONPlaceholder-style API.

Run without arguments to start the interactive TUI, or use a subcommand for
scripting.

Examples:
  postboard                                   # Start interactive TUI
  postboard list -o yaml                      # Print all posts as YAML
  postboard list -q '[].title'                # Filter with JMESPath
  postboard create -t "Hello" -b "World"      # Create a post
  postboard update 3 -t "New title" -b "..."  # Replace title and body of post 3
  postboard delete 3                          # Delete post 3
  postboard serve --seed 20                   # Run a local fake API`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all posts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *api.Client, out cli.OutputOptions) error {
			return cli.RunList(ctx, client, out)
		})
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a post",
	Long: `Create a post from --title and --body.

Missing fields are prompted for when stdin is a terminal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *api.Client, out cli.OutputOptions) error {
			draft, err := readDraft(cmd, types.Draft{})
			if err != nil {
				return err
			}
			return cli.RunCreate(ctx, client, draft, out)
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Replace the title and body of a post",
	Long: `Replace the title and body of a post.

Without an id, an interactive selector lists the posts to choose from.
Fields not given as flags keep the post's current value when it was picked
from the selector, and are prompted for otherwise.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *api.Client, out cli.OutputOptions) error {
			var (
				id      int
				current types.Draft
			)
			if len(args) > 0 {
				n, err := parseID(args[0])
				if err != nil {
					return err
				}
				id = n
			} else {
				post, err := selectPost(ctx, client, "Select a post to update")
				if err != nil {
					return err
				}
				id = post.ID
				current = types.DraftOf(post)
			}

			draft, err := readDraft(cmd, current)
			if err != nil {
				return err
			}
			return cli.RunUpdate(ctx, client, id, draft, out)
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a post",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *api.Client, out cli.OutputOptions) error {
			if len(args) > 0 {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return cli.RunDelete(ctx, client, id, out)
			}

			post, err := selectPost(ctx, client, "Select a post to delete")
			if err != nil {
				return err
			}
			return cli.RunDelete(ctx, client, post.ID, out)
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the journal of API calls",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadConfig(); err != nil {
			return err
		}
		out, err := outputOptions()
		if err != nil {
			return err
		}

		mgr, err := history.NewManager(config.DatabasePath)
		if err != nil {
			return err
		}
		defer mgr.Close()

		return cli.RunHistory(mgr, cli.HistoryOptions{
			Limit:  flagHistoryLimit,
			PostID: flagHistoryPost,
			Clear:  flagHistoryClear,
		}, out)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-operation statistics from the journal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadConfig(); err != nil {
			return err
		}
		out, err := outputOptions()
		if err != nil {
			return err
		}

		mgr, err := analytics.NewManager(config.DatabasePath)
		if err != nil {
			return err
		}
		defer mgr.Close()

		return cli.RunStats(mgr, out)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local fake posts API",
	Long: `Run an in-memory fake of the posts API for offline use and demos.

Point the client at it with --base-url http://localhost:8080.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

// Global flags
var (
	flagBaseURL  string
	flagConfig   string
	flagEnvFile  string
	flagTimeout  string
	flagLogLevel string
	flagNoHist   bool
	flagOutput   string
	flagQuery    string
)

// Flags for create/update
var (
	flagTitle string
	flagBody  string
)

// Flags for history
var (
	flagHistoryLimit int
	flagHistoryPost  int
	flagHistoryClear bool
)

// Flags for serve
var (
	flagServeHost    string
	flagServePort    int
	flagServeSeed    int
	flagServeDelay   int
	flagServeConfig  string
	flagServeLogging bool
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagBaseURL, "base-url", "", "API base URL (default: https://jsonplaceholder.typicode.com)")
	pf.StringVarP(&flagConfig, "config", "c", "", "Config file (default: ~/.postboard/config.yaml)")
	pf.StringVar(&flagEnvFile, "env-file", "", "Load environment variables from file (default: .env)")
	pf.StringVar(&flagTimeout, "timeout", "", "Request timeout, e.g. 10s; 0 disables (default: 30s)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug/info/warn/error)")
	pf.BoolVar(&flagNoHist, "no-history", false, "Do not record API calls in the journal")
	pf.StringVarP(&flagOutput, "output", "o", cli.FormatText, "Output format (json/yaml/text)")
	pf.StringVarP(&flagQuery, "query", "q", "", "Filter output with JMESPath or $(shell command)")

	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		c.Flags().StringVarP(&flagTitle, "title", "t", "", "Post title")
		c.Flags().StringVarP(&flagBody, "body", "b", "", "Post body")
	}

	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", history.DefaultLimit, "Number of entries to show")
	historyCmd.Flags().IntVar(&flagHistoryPost, "post", 0, "Only show calls for this post id")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Delete all journal entries")

	serveCmd.Flags().StringVar(&flagServeHost, "host", "localhost", "Listen host")
	serveCmd.Flags().IntVarP(&flagServePort, "port", "p", 8080, "Listen port")
	serveCmd.Flags().IntVar(&flagServeSeed, "seed", 100, "Generate this many posts at startup")
	serveCmd.Flags().IntVar(&flagServeDelay, "delay", 0, "Response delay in milliseconds")
	serveCmd.Flags().StringVar(&flagServeConfig, "file", "", "Fake API config file (.yaml/.json) with initial posts")
	serveCmd.Flags().BoolVar(&flagServeLogging, "log-requests", true, "Log each request")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig prepares the config directory, then layers the .env file, the
// config file, environment variables and flags
func loadConfig() (*config.Config, error) {
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	if err := config.LoadDotEnv(flagEnvFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	err = cfg.ApplyOverrides(config.Overrides{
		BaseURL:   flagBaseURL,
		Timeout:   flagTimeout,
		LogLevel:  flagLogLevel,
		NoHistory: flagNoHist,
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// newClient builds the API client from the configuration.
// The returned closer releases the journal, if one was opened.
func newClient(cfg *config.Config, log zerolog.Logger) (*api.Client, io.Closer, error) {
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return nil, nil, err
	}

	opts := []api.Option{
		api.WithTimeout(timeout),
		api.WithLogger(log),
		api.WithUserAgent("postboard/" + version),
	}
	if cfg.TLS != nil {
		opts = append(opts, api.WithTLS(cfg.TLS))
	}

	var closer io.Closer = nopCloser{}
	if cfg.HistoryEnabled() {
		mgr, err := history.NewManager(config.DatabasePath)
		if err != nil {
			log.Warn().Err(err).Msg("history disabled")
		} else {
			opts = append(opts, api.WithRecorder(mgr))
			closer = mgr
		}
	}

	client, err := api.NewClient(cfg.BaseURL, opts...)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	return client, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// withClient runs fn for a CLI subcommand. Logs go to stderr so stdout stays
// parseable.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, client *api.Client, out cli.OutputOptions) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out, err := outputOptions()
	if err != nil {
		return err
	}

	log := logger.New(os.Stderr, cfg.LogLevel)
	client, closer, err := newClient(cfg, log)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return fn(ctx, client, out)
}

func outputOptions() (cli.OutputOptions, error) {
	if err := cli.ValidateFormat(flagOutput); err != nil {
		return cli.OutputOptions{}, err
	}
	return cli.OutputOptions{
		Out:    os.Stdout,
		Format: flagOutput,
		Query:  flagQuery,
		Color:  cli.IsTerminal(os.Stdout),
	}, nil
}

// runTUI starts the interactive TUI
func runTUI(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to a file
	log, logCloser, err := logger.NewFile(config.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	client, closer, err := newClient(cfg, log)
	if err != nil {
		return err
	}
	defer closer.Close()

	registry, err := keybinds.LoadOrDefault(config.KeybindsFile)
	if err != nil {
		return fmt.Errorf("failed to load keybinds: %w", err)
	}

	log.Info().Str("baseUrl", cfg.BaseURL).Msg("starting TUI")

	return tui.Run(cmd.Context(), client, tui.Options{
		Keybinds:       registry,
		Logger:         log,
		BaseURL:        cfg.BaseURL,
		MessageTimeout: 5 * time.Second,
	})
}

// runServe runs the fake API until interrupted
func runServe(cmd *cobra.Command) error {
	serverCfg := &mock.Config{}
	if flagServeConfig != "" {
		loaded, err := mock.LoadConfig(flagServeConfig)
		if err != nil {
			return err
		}
		serverCfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("host") || serverCfg.Host == "" {
		serverCfg.Host = flagServeHost
	}
	if flags.Changed("port") || serverCfg.Port == 0 {
		serverCfg.Port = flagServePort
	}
	if flags.Changed("seed") || (serverCfg.Seed == 0 && len(serverCfg.Posts) == 0) {
		serverCfg.Seed = flagServeSeed
	}
	if flags.Changed("delay") {
		serverCfg.Delay = flagServeDelay
	}
	if flags.Changed("log-requests") || flagServeConfig == "" {
		serverCfg.Logging = flagServeLogging
	}

	level := flagLogLevel
	if level == "" {
		level = "info"
	}
	log := logger.New(os.Stderr, level)

	srv := mock.NewServer(serverCfg, log)
	if err := srv.Start(); err != nil {
		return err
	}
	log.Info().
		Str("address", srv.GetAddress()).
		Int("posts", len(srv.Posts())).
		Msg("fake API listening")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down")
	return srv.Stop()
}

// readDraft fills the draft from flags, prompting for what is still missing
// when stdin is a terminal
func readDraft(cmd *cobra.Command, current types.Draft) (types.Draft, error) {
	draft := current
	if cmd.Flags().Changed("title") {
		draft.Title = flagTitle
	}
	if cmd.Flags().Changed("body") {
		draft.Body = flagBody
	}

	if !cli.IsTerminal(os.Stdin) {
		return draft, nil
	}

	var err error
	if draft.Title == "" {
		if draft.Title, err = cli.PromptField(os.Stdin, os.Stderr, "title"); err != nil {
			return draft, err
		}
	}
	if draft.Body == "" {
		if draft.Body, err = cli.PromptField(os.Stdin, os.Stderr, "body"); err != nil {
			return draft, err
		}
	}
	return draft, nil
}

// selectPost lists the posts and lets the user pick one
func selectPost(ctx context.Context, client *api.Client, prompt string) (types.Post, error) {
	if !cli.IsTerminal(os.Stdin) || !cli.IsTerminal(os.Stdout) {
		return types.Post{}, errors.New("post id is required when not running in a terminal")
	}

	posts, err := client.List(ctx)
	if err != nil {
		return types.Post{}, fmt.Errorf("failed to list posts: %w", err)
	}
	return cli.SelectPost(prompt, posts)
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid post id %q: must be a positive integer", arg)
	}
	return id, nil
}
