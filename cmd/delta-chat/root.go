package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/minhyannv/delta-chat-go/pkg/chat"
	configpkg "github.com/minhyannv/delta-chat-go/pkg/config"
	loggerpkg "github.com/minhyannv/delta-chat-go/pkg/logger"
	"github.com/minhyannv/delta-chat-go/pkg/render"
)

// cliOptions holds the parsed command-line flags.
type cliOptions struct {
	ConfigPath string
	Verbose    bool
}

// runDeps are the process-level collaborators, replaceable in tests.
type runDeps struct {
	Endpoint    string
	LoadDotEnv  bool
	Stdout      io.Writer
	Stderr      io.Writer
	NewRenderer func(w io.Writer) (render.Renderer, error)
}

func defaultDeps() runDeps {
	return runDeps{
		Endpoint:   chat.DefaultEndpoint,
		LoadDotEnv: true,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		NewRenderer: func(w io.Writer) (render.Renderer, error) {
			md, err := render.NewMarkdown(w)
			if err != nil {
				return nil, err
			}
			return md, nil
		},
	}
}

func newRootCmd(deps runDeps) *cobra.Command {
	opts := cliOptions{}
	cmd := &cobra.Command{
		Use:           "delta-chat <user_message>",
		Short:         "Ask the Delta documentation assistant a question",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, deps, args[0])
		},
	}
	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)
	cmd.Flags().StringVar(&opts.ConfigPath, "config", configpkg.DefaultPath, "Path to the INI settings file")
	cmd.Flags().BoolVar(&opts.Verbose, "verbose", false, "Write debug logs to stderr")
	return cmd
}

// run loads configuration, sends userMessage and renders the reply.
// A non-200 answer is rendered and treated as a normal exit.
func run(ctx context.Context, opts cliOptions, deps runDeps, userMessage string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	level := loggerpkg.LevelInfo
	if opts.Verbose {
		level = loggerpkg.LevelDebug
	}
	appLogger := loggerpkg.NewWriterLogger(deps.Stderr, level)

	if deps.LoadDotEnv {
		if err := godotenv.Load(); err == nil {
			appLogger.Debug("loaded .env", nil)
		}
	}

	file, err := configpkg.Load(opts.ConfigPath, configpkg.WithLogger(appLogger))
	if err != nil {
		return err
	}
	cfg, err := file.Resolve()
	if err != nil {
		return err
	}
	appLogger.Debug("config resolved", cfg.LogFields())

	renderer, err := deps.NewRenderer(deps.Stdout)
	if err != nil {
		return err
	}

	client := chat.NewClient(chat.WithEndpoint(deps.Endpoint), chat.WithLogger(appLogger))
	stream, err := client.Send(ctx, chat.RequestFromConfig(cfg, userMessage))
	if err != nil {
		if se, ok := chat.AsStatusError(err); ok {
			if rerr := render.RenderStatusError(renderer, se); rerr != nil {
				return fmt.Errorf("%w (while reporting %v)", rerr, se)
			}
			return nil
		}
		return err
	}
	defer stream.Close()

	_, err = render.Display(stream, renderer, render.WithLogger(appLogger))
	return err
}
