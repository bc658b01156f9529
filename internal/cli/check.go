package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/novella/internal/story"
)

// CheckResult summarises a story document.
type CheckResult struct {
	Title      string         `json:"title"`
	StartScene string         `json:"startScene"`
	TextSpeed  int            `json:"textSpeed"`
	Scenes     int            `json:"scenes"`
	Events     map[string]int `json:"events"`
	Dangling   []DanglingRef  `json:"dangling,omitempty"`
}

// DanglingRef is a scene reference with no matching scene.
// Index is -1 for the story's start scene.
type DanglingRef struct {
	Scene  string `json:"scene"`
	Index  int    `json:"index"`
	Target string `json:"target"`
}

func (d DanglingRef) String() string {
	if d.Index < 0 {
		return fmt.Sprintf("start scene %q not found", d.Target)
	}
	return fmt.Sprintf("scene %q event %d: nextSceneId %q not found", d.Scene, d.Index, d.Target)
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <story>",
		Short: "Load a story and report problems",
		Long: `Load a story document and summarise it.

Reports the number of scenes and events by kind, and every nextSceneId
(or startScene) that names a scene the story doesn't define. Playback
tolerates those references, but reaching one stops the story.

Exit codes:
  0 - Story loaded, no dangling references
  1 - Story loaded with dangling references
  2 - Story could not be read or decoded`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runCheck(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	formatter.VerboseLog("loading %s", path)
	st, err := story.Load(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLoadFailed, "failed to load story", nil, err)
	}

	result := Summarise(st)
	if len(result.Dangling) > 0 && opts.Format == "json" {
		return formatter.Fail(ExitFailure, ErrCodeDangling, danglingMessage(result), result, nil)
	}

	if err := formatter.Render(result, func(w io.Writer) { writeCheckText(w, path, result) }); err != nil {
		return err
	}
	if len(result.Dangling) > 0 {
		return NewExitError(ExitFailure, danglingMessage(result))
	}
	return nil
}

// Summarise counts scenes and events and collects dangling references.
func Summarise(st *story.Story) CheckResult {
	result := CheckResult{
		Title:      st.Title,
		StartScene: st.Entry(),
		TextSpeed:  st.BaseSpeed(),
		Scenes:     st.Scenes.Len(),
		Events: map[string]int{
			string(story.KindDialogue): 0,
			string(story.KindSystem):   0,
			string(story.KindChoice):   0,
			string(story.KindEnd):      0,
		},
	}

	exists := func(id string) bool {
		_, ok := st.Scenes.Get(id)
		return ok
	}

	if !exists(st.Entry()) {
		result.Dangling = append(result.Dangling, DanglingRef{Index: -1, Target: st.Entry()})
	}

	for _, id := range st.Scenes.IDs() {
		sc, _ := st.Scenes.Get(id)
		for i, ev := range sc.Events {
			result.Events[string(ev.Kind())]++

			var targets []string
			switch ev := ev.(type) {
			case *story.Dialogue:
				if ev.NextSceneID != "" {
					targets = append(targets, ev.NextSceneID)
				}
			case *story.Choice:
				for _, opt := range ev.Options {
					targets = append(targets, opt.NextSceneID)
				}
			}
			for _, target := range targets {
				if !exists(target) {
					result.Dangling = append(result.Dangling, DanglingRef{Scene: id, Index: i, Target: target})
				}
			}
		}
	}

	return result
}

func danglingMessage(r CheckResult) string {
	return fmt.Sprintf("%d dangling scene reference(s)", len(r.Dangling))
}

func writeCheckText(w io.Writer, path string, r CheckResult) {
	title := r.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(w, "%s: %s\n", path, title)
	fmt.Fprintf(w, "  start scene: %s\n", r.StartScene)
	fmt.Fprintf(w, "  text speed:  %dms\n", r.TextSpeed)
	fmt.Fprintf(w, "  scenes:      %d\n", r.Scenes)
	fmt.Fprintf(w, "  events:      dialogue=%d system=%d choice=%d end=%d\n",
		r.Events[string(story.KindDialogue)],
		r.Events[string(story.KindSystem)],
		r.Events[string(story.KindChoice)],
		r.Events[string(story.KindEnd)],
	)

	if len(r.Dangling) == 0 {
		fmt.Fprintln(w, "✓ No dangling scene references")
		return
	}
	for _, d := range r.Dangling {
		fmt.Fprintf(w, "✗ %s\n", d)
	}
}
