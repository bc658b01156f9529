package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/novella/internal/engine"
	"github.com/roach88/novella/internal/markup"
	"github.com/roach88/novella/internal/present"
	"github.com/roach88/novella/internal/save"
	"github.com/roach88/novella/internal/store"
	"github.com/roach88/novella/internal/story"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Database string
	Presets  string
	Start    string
	Speed    int
	Key      string

	// SessionGenerator allows overriding the session token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	SessionGenerator engine.SessionGenerator
}

const playHelp = `commands:
  enter   advance (or stop auto mode)
  a       toggle auto mode
  s       toggle skip mode
  1..n    pick an option
  save    save progress
  load    load progress
  log     show the backlog
  h       this help
  q       quit`

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play <story>",
		Short: "Play a story in the terminal",
		Long: `Play a story interactively in the terminal.

The story is read from a .json, .yaml/.yml or .cue file. Lines are typed
out character by character; progress is saved to a SQLite database
(created if it doesn't exist).

` + playHelp + `

Example:
  novella play ./stories/intro.yaml
  novella play --db ./saves.db --presets ./styles.yaml ./stories/intro.yaml
  novella play --start chapter2 --speed 10 ./stories/intro.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "novella.db", "path to SQLite save database")
	cmd.Flags().StringVar(&opts.Presets, "presets", "", "style preset file (YAML or JSON)")
	cmd.Flags().StringVar(&opts.Start, "start", "", "start scene (overrides the story's startScene)")
	cmd.Flags().IntVar(&opts.Speed, "speed", 0, "base text speed in ms per character (overrides textSpeed)")
	cmd.Flags().StringVar(&opts.Key, "key", save.DefaultKey, "save slot key")

	return cmd
}

func runPlay(opts *PlayOptions, path string, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr(), slog.LevelWarn)

	st, err := story.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load story", err)
	}
	if opts.Start != "" {
		st.StartScene = opts.Start
	}
	if opts.Speed > 0 {
		st.TextSpeed = opts.Speed
	}

	presets := story.DefaultPresets()
	if opts.Presets != "" {
		presets, err = story.LoadPresets(opts.Presets)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load presets", err)
		}
	}

	logger.Debug("opening database", "path", opts.Database)
	db, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	term := present.NewTerminal(cmd.OutOrStdout())
	engineOpts := []engine.EngineOption{
		engine.WithPresenter(term),
		engine.WithAudio(term),
		engine.WithPresets(presets),
		engine.WithSlot(save.NewSlot(db, save.WithKey(opts.Key), save.WithLogger(logger))),
		engine.WithLogger(logger),
	}
	if opts.SessionGenerator != nil {
		engineOpts = append(engineOpts, engine.WithSessionGenerator(opts.SessionGenerator))
	}
	eng := engine.New(st, engineOpts...)

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if st.Title != "" {
		term.Print(st.Title)
	}
	term.Notice("h for help")

	eng.Enqueue(engine.Input{Kind: engine.InputStart})
	go readCommands(cmd.InOrStdin(), eng, term)

	if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "engine error", err)
	}

	logger.Debug("playback stopped", "session", eng.Session())
	return nil
}

// readCommands turns input lines into engine inputs until q or end of
// input, then stops the engine.
func readCommands(r io.Reader, eng *engine.Engine, term *present.Terminal) {
	defer eng.Stop()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		in, quit := parseCommand(scanner.Text(), term)
		if quit {
			return
		}
		if !eng.Enqueue(in) {
			return
		}
	}
}

// parseCommand maps one input line to an engine input. Every input that
// prints runs on the engine goroutine, so output never interleaves with
// a line being typed.
func parseCommand(line string, term *present.Terminal) (in engine.Input, quit bool) {
	cmd := strings.ToLower(strings.TrimSpace(line))

	switch cmd {
	case "":
		return engine.Input{Kind: engine.InputInteract}, false
	case "a", "auto":
		return engine.Input{Kind: engine.InputToggleAuto}, false
	case "s", "skip":
		return engine.Input{Kind: engine.InputToggleSkip}, false
	case "q", "quit", "exit":
		return engine.Input{}, true

	case "save":
		return engine.Input{Kind: engine.InputSave, Done: func(err error) {
			if err != nil {
				term.Notice("save failed: " + err.Error())
				return
			}
			term.Notice("saved")
		}}, false

	case "load":
		return engine.Input{Kind: engine.InputLoad, Done: func(err error) {
			switch {
			case errors.Is(err, engine.ErrNoSaveData):
				term.Notice("no save data")
			case err != nil:
				term.Notice("load failed: " + err.Error())
			default:
				term.Notice("loaded")
			}
		}}, false

	case "log":
		return engine.Input{Kind: engine.InputFunc, Fn: func(e *engine.Engine) error {
			history := e.History()
			if len(history) == 0 {
				term.Notice("backlog is empty")
				return nil
			}
			for _, h := range history {
				term.Print(formatBacklog(h))
			}
			return nil
		}}, false

	case "h", "help", "?":
		return printInput(term, playHelp), false
	}

	if n, err := strconv.Atoi(cmd); err == nil {
		return engine.Input{Kind: engine.InputFunc, Fn: func(e *engine.Engine) error {
			return chooseListed(e, n)
		}, Done: func(err error) {
			if err != nil {
				term.Notice(fmt.Sprintf("option %d is not available", n))
			}
		}}, false
	}

	return printInput(term, fmt.Sprintf("unknown command %q (h for help)", line)), false
}

// chooseListed picks the n-th option as listed on screen (1-based). The
// terminal numbers only the offered options, so n is resolved to the
// option's authored index.
func chooseListed(e *engine.Engine, n int) error {
	offered := e.Offered()
	if n < 1 || n > len(offered) {
		return engine.NewInvalidChoiceError(n-1, len(offered))
	}
	return e.Choose(offered[n-1].Index)
}

func printInput(term *present.Terminal, text string) engine.Input {
	return engine.Input{Kind: engine.InputFunc, Fn: func(*engine.Engine) error {
		term.Print(text)
		return nil
	}}
}

func formatBacklog(h engine.HistoryEntry) string {
	text := markup.StripTags(h.Text)
	if h.Character == "" {
		return "  " + text
	}
	return fmt.Sprintf("  %s: %s", h.Character, text)
}
