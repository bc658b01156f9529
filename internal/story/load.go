package story

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Format identifies a story document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// LoadError describes a story document that could not be read or decoded.
type LoadError struct {
	Code    LoadErrorCode
	Path    string
	Message string
	Err     error
}

// LoadErrorCode categorizes load failures.
type LoadErrorCode string

const (
	ErrCodeRead              LoadErrorCode = "READ_FAILED"
	ErrCodeUnsupportedFormat LoadErrorCode = "UNSUPPORTED_FORMAT"
	ErrCodeDecode            LoadErrorCode = "DECODE_FAILED"
)

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsLoadError reports whether err is a LoadError with the given code.
func IsLoadError(err error, code LoadErrorCode) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Code == code
}

// FormatFor picks a format from a file extension.
func FormatFor(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".cue":
		return FormatCUE, true
	}
	return "", false
}

// Load reads a story document, choosing the decoder by file extension.
func Load(path string) (*Story, error) {
	format, ok := FormatFor(path)
	if !ok {
		return nil, &LoadError{
			Code:    ErrCodeUnsupportedFormat,
			Path:    path,
			Message: fmt.Sprintf("unsupported extension %q (want .json, .yaml, .yml or .cue)", filepath.Ext(path)),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, Path: path, Message: "read story", Err: err}
	}

	st, err := Parse(data, format)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
			return nil, le
		}
		return nil, err
	}
	return st, nil
}

// Parse decodes an in-memory story document.
func Parse(data []byte, format Format) (*Story, error) {
	var doc document

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, decodeError(format, err)
		}

	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&doc); err != nil {
			return nil, decodeError(format, err)
		}

	case FormatCUE:
		js, err := cueToJSON(data)
		if err != nil {
			return nil, decodeError(format, err)
		}
		if err := json.Unmarshal(js, &doc); err != nil {
			return nil, decodeError(format, err)
		}

	default:
		return nil, &LoadError{
			Code:    ErrCodeUnsupportedFormat,
			Message: fmt.Sprintf("unsupported format %q", format),
		}
	}

	st, err := doc.build()
	if err != nil {
		return nil, decodeError(format, err)
	}
	return st, nil
}

// cueToJSON evaluates a CUE document and exports it as JSON. Field order is
// preserved by the export, so scene order survives.
func cueToJSON(data []byte) ([]byte, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename("story.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return v.MarshalJSON()
}

func decodeError(format Format, err error) *LoadError {
	return &LoadError{
		Code:    ErrCodeDecode,
		Message: fmt.Sprintf("decode %s story", format),
		Err:     err,
	}
}
