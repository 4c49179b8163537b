package agent

import (
	"github.com/google/uuid"

	"github.com/jonathan/easy-apply-agent/internal/history"
)

// Action names accepted from the model
const (
	ActionNavigate          = "navigate"
	ActionClick             = "click"
	ActionInputText         = "input_text"
	ActionSelectOption      = "select_option"
	ActionUploadFile        = "upload_file"
	ActionScroll            = "scroll"
	ActionGoBack            = "go_back"
	ActionRefresh           = "refresh"
	ActionWait              = "wait"
	ActionRecordApplication = "record_application"
	ActionDone              = "done"
)

// StopReason explains why a run ended
type StopReason string

// Stop reasons
const (
	StopDone            StopReason = "done"
	StopApplyLimit      StopReason = "apply_limit_reached"
	StopMaxSteps        StopReason = "max_steps"
	StopCanceled        StopReason = "context_canceled"
	StopTooManyFailures StopReason = "too_many_failures"
)

// Action is one browser or bookkeeping action chosen by the model
type Action struct {
	Action    string   `json:"action"`
	URL       string   `json:"url,omitempty"`
	Index     *int     `json:"index,omitempty"`
	Text      string   `json:"text,omitempty"`
	Clear     *bool    `json:"clear,omitempty"`
	Value     string   `json:"value,omitempty"`
	Path      string   `json:"path,omitempty"`
	Direction string   `json:"direction,omitempty"`
	Seconds   *float64 `json:"seconds,omitempty"`
	Company   string   `json:"company,omitempty"`
	Title     string   `json:"title,omitempty"`
	Status    string   `json:"status,omitempty"`
	Success   *bool    `json:"success,omitempty"`
	Summary   string   `json:"summary,omitempty"`
	Applied   *int     `json:"applied,omitempty"`
}

// Decision is the model's answer for one step
type Decision struct {
	Evaluation string   `json:"evaluation,omitempty"`
	Memory     string   `json:"memory,omitempty"`
	NextGoal   string   `json:"next_goal,omitempty"`
	Actions    []Action `json:"actions"`
}

// ActionResult is the outcome of one executed action, fed back to the model
type ActionResult struct {
	Action string `json:"action"`
	Index  *int   `json:"index,omitempty"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Result summarizes a finished run
type Result struct {
	RunID        uuid.UUID
	Steps        int
	Applied      int
	Applications []history.Application
	Success      bool
	Summary      string
	StopReason   StopReason
	// ArtifactDir holds the transcript and screenshots; empty when artifacts are disabled
	ArtifactDir string
}

// Outcome converts the result for the history store
func (r *Result) Outcome() history.Outcome {
	return history.Outcome{
		Success:    r.Success,
		StopReason: string(r.StopReason),
		Summary:    r.Summary,
		Steps:      r.Steps,
		Applied:    r.Applied,
	}
}
