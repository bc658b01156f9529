package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/novella/internal/engine"
	"github.com/roach88/novella/internal/present"
	"github.com/roach88/novella/internal/save"
	"github.com/roach88/novella/internal/store"
	"github.com/roach88/novella/internal/story"
	"github.com/roach88/novella/internal/testutil"
	"github.com/roach88/novella/internal/vars"
)

func TestPlayCommand_SkipChooseSave(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "play.db")

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("s\n1\nsave\n"))
	cmd.SetArgs([]string{"play", "--db", dbPath, filepath.Join("testdata", "fork.yaml")})

	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "Fork")
	assert.Contains(t, out, "Guide: Hello")
	assert.Contains(t, out, "1) Left")
	assert.Contains(t, out, "-- saved --")

	db, err := store.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	rec, ok, err := save.NewSlot(db).Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "left", rec.SceneID)
	assert.Equal(t, 0, rec.EventIndex)
	assert.Equal(t, vars.Num(1), rec.Variables["steps"])
}

func TestPlayCommand_ChoiceNumbersFollowOfferedOptions(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "play.db")

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("1\nsave\n"))
	cmd.SetArgs([]string{"play", "--db", dbPath, filepath.Join("testdata", "gated.yaml")})

	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "  1) Open")
	assert.NotContains(t, out, "Secret")
	assert.NotContains(t, out, "not available")
	assert.Contains(t, out, "-- saved --")

	db, err := store.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	rec, ok, err := save.NewSlot(db).Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "open", rec.SceneID)
}

func TestChooseListed(t *testing.T) {
	st, err := story.Load(filepath.Join("testdata", "gated.yaml"))
	require.NoError(t, err)

	newEngine := func() *engine.Engine {
		e := engine.New(st,
			engine.WithScheduler(testutil.NewManualScheduler()),
			engine.WithSessionGenerator(testutil.NewFixedSessionGenerator("")),
		)
		e.Start()
		return e
	}

	e := newEngine()
	require.NoError(t, chooseListed(e, 1))
	scene, _ := e.Position()
	assert.Equal(t, "open", scene)

	for _, n := range []int{0, 2, -1} {
		e := newEngine()
		err := chooseListed(e, n)
		require.Error(t, err, "n=%d", n)
		assert.Equal(t, engine.ErrCodeInvalidChoice, engine.ErrorCode(err))
		scene, index := e.Position()
		assert.Equal(t, "start", scene)
		assert.Equal(t, 0, index)
	}
}

func TestPlayCommand_LoadWithoutSave(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("load\n"))
	cmd.SetArgs([]string{"play", "--db", filepath.Join(t.TempDir(), "play.db"), filepath.Join("testdata", "fork.yaml")})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "-- no save data --")
}

func TestPlayCommand_MissingStory(t *testing.T) {
	_, err := executeRoot(t, "play", "--db", filepath.Join(t.TempDir(), "play.db"), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestParseCommand(t *testing.T) {
	term := present.NewTerminal(&bytes.Buffer{})

	tests := []struct {
		line string
		kind engine.InputKind
	}{
		{"", engine.InputInteract},
		{"  ", engine.InputInteract},
		{"a", engine.InputToggleAuto},
		{"AUTO", engine.InputToggleAuto},
		{"s", engine.InputToggleSkip},
		{"save", engine.InputSave},
		{"load", engine.InputLoad},
		{"log", engine.InputFunc},
		{"h", engine.InputFunc},
		{"dance", engine.InputFunc},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			in, quit := parseCommand(tt.line, term)
			assert.False(t, quit)
			assert.Equal(t, tt.kind, in.Kind)
		})
	}

	in, quit := parseCommand("3", term)
	assert.False(t, quit)
	assert.Equal(t, engine.InputFunc, in.Kind)
	assert.NotNil(t, in.Fn)

	for _, line := range []string{"q", "quit", "exit"} {
		_, quit := parseCommand(line, term)
		assert.True(t, quit, line)
	}
}

func TestFormatBacklog(t *testing.T) {
	assert.Equal(t, "  Alice: Hi & bye",
		formatBacklog(engine.HistoryEntry{Character: "Alice", Text: "<speed:200>Hi</speed> &amp; bye"}))
	assert.Equal(t, "  The end.",
		formatBacklog(engine.HistoryEntry{Text: `<span style="color: red">The end.</span>`}))
}
