package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/easy-apply-agent/internal/schemas"
	embedded "github.com/jonathan/easy-apply-agent/schemas"
)

var (
	// ErrNotFound is returned when the profile file does not exist
	ErrNotFound = errors.New("profile JSON not found")
	// ErrMalformed is returned when the profile cannot be decoded
	ErrMalformed = errors.New("profile is malformed")
)

// Error describes a profile that failed to load.
type Error struct {
	Path    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("profile %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("profile %s: %s", e.Path, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Load reads the profile at path. JSON files may contain comments and trailing
// commas (the profile.example.jsonc template style); .yaml/.yml files are also accepted.
func Load(path string) (*ApplyInfo, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, &Error{Path: path, Message: "not found", Cause: ErrNotFound}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Message: "failed to read file", Cause: err}
	}

	return parse(raw, path)
}

// parse decodes profile content; the extension of path selects the syntax.
func parse(raw []byte, path string) (*ApplyInfo, error) {
	doc, err := toJSON(raw, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, &Error{Path: path, Message: "failed to decode", Cause: errors.Join(ErrMalformed, err)}
	}

	if err := schemas.Validate(embedded.Profile, doc); err != nil {
		return nil, &Error{Path: path, Message: "does not match schema", Cause: err}
	}

	var info ApplyInfo
	if err := json.Unmarshal(doc, &info); err != nil {
		return nil, &Error{Path: path, Message: "failed to decode", Cause: errors.Join(ErrMalformed, err)}
	}
	return &info, nil
}

// toJSON normalizes supported syntaxes into standard JSON bytes.
func toJSON(raw []byte, ext string) ([]byte, error) {
	switch ext {
	case ".yaml", ".yml":
		var v any
		if err := yaml.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return json.Marshal(v)
	default:
		return hujson.Standardize(raw)
	}
}
