package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/novella/internal/save"
	"github.com/roach88/novella/internal/store"
)

// SaveOptions holds flags for the save subcommands.
type SaveOptions struct {
	*RootOptions
	Database string
	Key      string
}

// SaveInfo describes a stored save record.
type SaveInfo struct {
	Key        string            `json:"key"`
	SceneID    string            `json:"sceneId"`
	EventIndex int               `json:"eventIndex"`
	Variables  map[string]string `json:"variables"`
	Writes     int64             `json:"writes"`
	Slots      []string          `json:"slots"`
}

// NewSaveCommand creates the save command and its subcommands.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Inspect or clear saved progress",
		Long: `Inspect or clear the save record in a save database.

Examples:
  novella save show --db ./novella.db
  novella save clear --db ./novella.db --key chapter1`,
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "novella.db", "path to SQLite save database")
	cmd.PersistentFlags().StringVar(&opts.Key, "key", save.DefaultKey, "save slot key")

	cmd.AddCommand(&cobra.Command{
		Use:           "show",
		Short:         "Print the save record",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSaveShow(opts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "clear",
		Short:         "Delete the save record",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSaveClear(opts, cmd)
		},
	})

	return cmd
}

// openSaveStore opens an existing save database. Unlike play, the
// subcommands never create one.
func openSaveStore(opts *SaveOptions, formatter *OutputFormatter) (*store.Store, error) {
	if _, err := os.Stat(opts.Database); err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeStoreFailed,
			fmt.Sprintf("database not found: %s", opts.Database), nil, nil)
	}

	db, err := store.Open(opts.Database)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeStoreFailed, "failed to open database", nil, err)
	}
	return db, nil
}

func runSaveShow(opts *SaveOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	db, err := openSaveStore(opts, formatter)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr(), slog.LevelWarn)
	slot := save.NewSlot(db, save.WithKey(opts.Key), save.WithLogger(logger))

	rec, ok, err := slot.Load(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, "failed to read save record", nil, err)
	}
	slots, err := db.Keys(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, "failed to list save slots", nil, err)
	}
	if !ok {
		msg := fmt.Sprintf("no save data under key %q", opts.Key)
		if len(slots) > 0 {
			msg += fmt.Sprintf(" (slots: %s)", strings.Join(slots, ", "))
		}
		return formatter.Fail(ExitFailure, ErrCodeNoSave, msg, map[string][]string{"slots": slots}, nil)
	}

	writes, err := db.Writes(ctx, opts.Key)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, "failed to read save record", nil, err)
	}

	info := SaveInfo{
		Key:        opts.Key,
		SceneID:    rec.SceneID,
		EventIndex: rec.EventIndex,
		Variables:  make(map[string]string, len(rec.Variables)),
		Writes:     writes,
		Slots:      slots,
	}
	for name, v := range rec.Variables {
		info.Variables[name] = v.String()
	}

	formatter.VerboseLog("read %s from %s", opts.Key, opts.Database)
	return formatter.Render(info, func(w io.Writer) {
		fmt.Fprintf(w, "key:    %s\n", info.Key)
		fmt.Fprintf(w, "scene:  %s\n", info.SceneID)
		fmt.Fprintf(w, "index:  %d\n", info.EventIndex)
		fmt.Fprintf(w, "writes: %d\n", info.Writes)
		fmt.Fprintf(w, "slots:  %s\n", strings.Join(info.Slots, ", "))
		if len(rec.Variables) == 0 {
			fmt.Fprintln(w, "variables: (none)")
			return
		}
		fmt.Fprintln(w, "variables:")
		for _, name := range rec.Variables.Names() {
			fmt.Fprintf(w, "  %s = %s\n", name, info.Variables[name])
		}
	})
}

func runSaveClear(opts *SaveOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	db, err := openSaveStore(opts, formatter)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	slot := save.NewSlot(db, save.WithKey(opts.Key))
	if err := slot.Clear(ctx); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, "failed to clear save record", nil, err)
	}

	return formatter.Render(map[string]string{"cleared": opts.Key}, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Cleared %s\n", opts.Key)
	})
}
