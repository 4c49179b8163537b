package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/easy-apply-agent/internal/schemas"
	embedded "github.com/jonathan/easy-apply-agent/schemas"
)

// ParseDecision validates raw model output against the decision schema and decodes it.
func ParseDecision(raw string) (*Decision, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty response")
	}
	if !json.Valid([]byte(raw)) {
		return nil, fmt.Errorf("response is not valid JSON")
	}
	if err := schemas.Validate(embedded.Decision, []byte(raw)); err != nil {
		return nil, err
	}

	var decision Decision
	if err := json.Unmarshal([]byte(raw), &decision); err != nil {
		return nil, fmt.Errorf("failed to decode decision: %w", err)
	}
	return &decision, nil
}

// describe renders an action for progress output, e.g. "click [12]".
func (a Action) describe() string {
	switch a.Action {
	case ActionNavigate:
		return fmt.Sprintf("navigate %s", a.URL)
	case ActionClick:
		return fmt.Sprintf("click [%d]", a.index())
	case ActionInputText:
		return fmt.Sprintf("input_text [%d]", a.index())
	case ActionSelectOption:
		return fmt.Sprintf("select_option [%d] %q", a.index(), a.Value)
	case ActionUploadFile:
		return fmt.Sprintf("upload_file [%d]", a.index())
	case ActionScroll:
		return fmt.Sprintf("scroll %s", a.direction())
	case ActionRecordApplication:
		return fmt.Sprintf("record_application %s - %s", a.Company, a.Title)
	default:
		return a.Action
	}
}

func (a Action) index() int {
	if a.Index == nil {
		return -1
	}
	return *a.Index
}

func (a Action) direction() string {
	if a.Direction == "" {
		return "down"
	}
	return a.Direction
}

// clearFirst defaults to true; the task asks for fields to be cleared before typing.
func (a Action) clearFirst() bool {
	return a.Clear == nil || *a.Clear
}

// changesPage reports whether the action may load a new page, after which
// the remaining indexes of the batch are stale.
func (a Action) changesPage() bool {
	switch a.Action {
	case ActionNavigate, ActionClick, ActionGoBack, ActionRefresh:
		return true
	}
	return false
}
