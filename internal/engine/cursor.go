package engine

import (
	"github.com/roach88/novella/internal/story"
)

// CurrentScene returns the scene under the cursor.
func (e *Engine) CurrentScene() (*story.Scene, error) {
	sc, ok := e.story.Scenes.Get(e.sceneID)
	if !ok {
		return nil, NewSceneNotFoundError(e.sceneID)
	}
	return sc, nil
}

// CurrentEvent returns the event under the cursor, or nil when the scene is
// exhausted or missing.
func (e *Engine) CurrentEvent() story.Event {
	sc, err := e.CurrentScene()
	if err != nil {
		return nil
	}
	if e.index < 0 || e.index >= len(sc.Events) {
		return nil
	}
	return sc.Events[e.index]
}

// Advance moves the cursor to the next event. It does not clamp; callers
// check CurrentEvent afterwards.
func (e *Engine) Advance() {
	e.index++
}

// GotoScene moves the cursor to the first event of scene id and announces
// the scene's background, if it has one.
//
// The cursor moves even when the scene is missing; the returned
// SceneNotFound error is also what the next dispatch reports.
func (e *Engine) GotoScene(id string) error {
	e.sceneID = id
	e.index = 0

	sc, ok := e.story.Scenes.Get(id)
	if !ok {
		err := NewSceneNotFoundError(id)
		e.logger.Warn("scene not found", "scene", id)
		return err
	}

	e.logger.Info("entered scene", "scene", id)
	if sc.Background != "" {
		e.presenter.SetBackground(sc.Background)
	}
	return nil
}

// Position returns the cursor as (scene id, event index).
func (e *Engine) Position() (string, int) {
	return e.sceneID, e.index
}
