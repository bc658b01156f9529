package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected during playback.
//
// Runtime errors include:
//   - Scene not found: the cursor points at a scene the story lacks
//   - Invalid choice: the selected option is not on offer
//   - No choice: Choose was called while no choice is pending
//   - Save scene missing / index out of range: a save record that does not
//     fit the loaded story
//
// None of them are fatal. The engine logs them and keeps playing.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// SceneID identifies the scene involved, if any.
	SceneID string

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeSceneNotFound indicates the current or target scene is absent.
	ErrCodeSceneNotFound RuntimeErrorCode = "SCENE_NOT_FOUND"

	// ErrCodeInvalidChoice indicates an option index that is not offered.
	ErrCodeInvalidChoice RuntimeErrorCode = "INVALID_CHOICE"

	// ErrCodeNoChoice indicates Choose was called outside the Choosing phase.
	ErrCodeNoChoice RuntimeErrorCode = "NO_CHOICE"

	// ErrCodeSaveSceneMissing indicates a save record names an unknown scene.
	ErrCodeSaveSceneMissing RuntimeErrorCode = "SAVE_SCENE_MISSING"

	// ErrCodeSaveIndexOutOfRange indicates a save record's event index does
	// not fit its scene.
	ErrCodeSaveIndexOutOfRange RuntimeErrorCode = "SAVE_INDEX_OUT_OF_RANGE"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.SceneID != "" {
		return fmt.Sprintf("%s: %s (scene=%s)", e.Code, e.Message, e.SceneID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsSceneNotFound returns true if the error is a missing-scene error.
// Uses errors.As to handle wrapped errors.
func IsSceneNotFound(err error) bool {
	return hasCode(err, ErrCodeSceneNotFound)
}

// IsChoiceError returns true for INVALID_CHOICE and NO_CHOICE errors.
func IsChoiceError(err error) bool {
	return hasCode(err, ErrCodeInvalidChoice) || hasCode(err, ErrCodeNoChoice)
}

// IsSaveMismatch returns true if a save record did not fit the story.
func IsSaveMismatch(err error) bool {
	return hasCode(err, ErrCodeSaveSceneMissing) || hasCode(err, ErrCodeSaveIndexOutOfRange)
}

// ErrorCode returns the RuntimeErrorCode of err, or "" if err is not a
// RuntimeError.
func ErrorCode(err error) RuntimeErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

func hasCode(err error, code RuntimeErrorCode) bool {
	return ErrorCode(err) == code
}

// NewSceneNotFoundError creates a RuntimeError for a missing scene.
func NewSceneNotFoundError(sceneID string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeSceneNotFound,
		Message: "scene not found",
		SceneID: sceneID,
	}
}

// NewInvalidChoiceError creates a RuntimeError for an option not on offer.
func NewInvalidChoiceError(index, offered int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInvalidChoice,
		Message: fmt.Sprintf("option %d is not selectable", index),
		Details: map[string]string{
			"index":   fmt.Sprintf("%d", index),
			"offered": fmt.Sprintf("%d", offered),
		},
	}
}
