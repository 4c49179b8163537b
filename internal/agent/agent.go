// Package agent runs the observe, decide and act loop that drives the browser
// through LinkedIn Easy Apply on behalf of the applicant.
package agent

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/easy-apply-agent/internal/browser"
	"github.com/jonathan/easy-apply-agent/internal/history"
	"github.com/jonathan/easy-apply-agent/internal/llm"
	"github.com/jonathan/easy-apply-agent/internal/prompts"
)

// Defaults applied by New for zero-valued Config fields
const (
	DefaultMaxSteps    = 100
	DefaultMaxFailures = 3
	DefaultStepTimeout = 60 * time.Second
	// priorApplications is how many earlier applications are loaded into memory
	priorApplications = 25
)

// Browser is the subset of the browser session the agent drives.
type Browser interface {
	State(ctx context.Context, withScreenshot bool) (*browser.PageState, error)
	URL(ctx context.Context) (string, error)
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, index int) error
	InputText(ctx context.Context, index int, text string, clear bool) error
	SelectOption(ctx context.Context, index int, value string) (string, error)
	UploadFile(ctx context.Context, index int, path string) error
	Scroll(ctx context.Context, direction string) error
	Back(ctx context.Context) error
	Reload(ctx context.Context) error
	Wait(ctx context.Context, d time.Duration) error
}

// LLM produces step decisions.
type LLM interface {
	GenerateJSON(ctx context.Context, req llm.Request) (string, error)
	Model() string
}

// Config controls a run
type Config struct {
	Task        string
	ApplyLimit  int
	MaxSteps    int
	MaxFailures int
	StepTimeout time.Duration
	// AvailableFiles are the only paths upload_file may use; the first is the default.
	AvailableFiles []string
	UseVision      bool
	// RunDir receives a per-run directory with the transcript and screenshots; empty disables artifacts.
	RunDir   string
	Provider string
	// Secrets are masked in the transcript and progress output.
	Secrets []string
	Out     io.Writer
	Verbose bool
}

// Agent drives one browser session with one model.
type Agent struct {
	cfg     Config
	browser Browser
	llm     LLM
	store   history.Store
	system  string

	// run state; an Agent is used for a single Run
	runID        uuid.UUID
	memory       string
	prior        []history.Application
	site         browser.Site
	results      []ActionResult
	applications []history.Application
	applied      int
	failures     int
	transcript   *transcript
}

// New creates an agent. store may be nil.
func New(cfg Config, b Browser, model LLM, store history.Store) (*Agent, error) {
	if b == nil || model == nil {
		return nil, fmt.Errorf("agent requires a browser and a model")
	}
	if strings.TrimSpace(cfg.Task) == "" {
		return nil, fmt.Errorf("agent requires a task")
	}
	if cfg.ApplyLimit < 1 {
		cfg.ApplyLimit = 1
	}
	if cfg.MaxSteps < 1 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	if cfg.MaxFailures < 1 {
		cfg.MaxFailures = DefaultMaxFailures
	}
	if cfg.StepTimeout <= 0 {
		cfg.StepTimeout = DefaultStepTimeout
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if store == nil {
		store = history.NopStore{}
	}

	files := "(none)"
	if len(cfg.AvailableFiles) > 0 {
		files = strings.Join(cfg.AvailableFiles, ", ")
	}
	system, err := prompts.Render(prompts.AgentFile, "agent-system", map[string]string{
		"AvailableFiles": files,
	})
	if err != nil {
		return nil, err
	}

	return &Agent{
		cfg:     cfg,
		browser: b,
		llm:     model,
		store:   store,
		system:  system + "\n\nTask:\n" + cfg.Task,
	}, nil
}

// Run executes the loop until the model reports done, the apply limit is reached,
// the step budget is spent, too many consecutive steps fail, or ctx is canceled.
// Only setup failures are returned as errors; everything else ends in a Result.
func (a *Agent) Run(ctx context.Context) (*Result, error) {
	result := &Result{RunID: uuid.New(), StopReason: StopMaxSteps}
	a.runID = result.RunID

	if a.cfg.RunDir != "" {
		t, err := openTranscript(a.cfg.RunDir, result.RunID, a.cfg.Secrets)
		if err != nil {
			return nil, err
		}
		defer t.Close()
		a.transcript = t
		result.ArtifactDir = t.dir
		if err := t.WriteTask(a.cfg.Task); err != nil {
			log.Printf("[AGENT] Warning: failed to write task: %v", err)
		}
	}

	if err := a.store.StartRun(ctx, history.Run{
		ID:         result.RunID,
		Provider:   a.cfg.Provider,
		Model:      a.llm.Model(),
		ApplyLimit: a.cfg.ApplyLimit,
		StartedAt:  time.Now(),
	}); err != nil {
		// applications reference the run row, so nothing else can be stored
		fmt.Fprintf(a.cfg.Out, "Warning: Failed to record run start: %v\n", err)
		fmt.Fprintf(a.cfg.Out, "Continuing without database persistence...\n")
		a.store = history.NopStore{}
	}
	a.prior = a.priorApplications(ctx)

	a.loop(ctx, result)

	result.Applied = a.applied
	result.Applications = a.applications
	if result.Summary == "" {
		result.Summary = fmt.Sprintf("Stopped (%s) after %d steps; %d of %d applications recorded.",
			result.StopReason, result.Steps, a.applied, a.cfg.ApplyLimit)
	}

	// The run context may already be canceled; history must still be closed out.
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := a.store.FinishRun(finishCtx, result.RunID, result.Outcome()); err != nil {
		fmt.Fprintf(a.cfg.Out, "Warning: Failed to record run result: %v\n", err)
	}
	return result, nil
}

func (a *Agent) loop(ctx context.Context, result *Result) {
	for step := 1; step <= a.cfg.MaxSteps; step++ {
		if ctx.Err() != nil {
			result.StopReason = StopCanceled
			return
		}
		result.Steps = step

		stop, ok := a.step(ctx, step, result)
		if stop {
			return
		}
		if ctx.Err() != nil {
			result.StopReason = StopCanceled
			return
		}

		if ok {
			a.failures = 0
			continue
		}
		a.failures++
		if a.failures >= a.cfg.MaxFailures {
			fmt.Fprintf(a.cfg.Out, "Stopping: %d consecutive failed steps\n", a.failures)
			result.StopReason = StopTooManyFailures
			return
		}
	}
	result.StopReason = StopMaxSteps
}

// step runs one observe, decide, act cycle. It reports whether the run must stop
// and whether the step succeeded.
func (a *Agent) step(ctx context.Context, step int, result *Result) (stop bool, ok bool) {
	record := stepRecord{Step: step, Time: time.Now()}
	defer func() {
		if a.transcript != nil {
			if err := a.transcript.WriteStep(record); err != nil {
				log.Printf("[AGENT] Warning: failed to write transcript: %v", err)
			}
		}
	}()

	state, err := a.observe(ctx)
	if err != nil {
		a.results = []ActionResult{{Action: "observe", Error: err.Error()}}
		record.Error = err.Error()
		fmt.Fprintf(a.cfg.Out, "Step %d/%d: failed to read the page: %v\n", step, a.cfg.MaxSteps, err)
		return false, false
	}
	record.URL, record.Title = state.URL, state.Title
	site := browser.DetectSite(state.URL)
	if site.External() && a.site == browser.SiteLinkedIn {
		fmt.Fprintf(a.cfg.Out, "Step %d/%d: redirected to %s\n", step, a.cfg.MaxSteps, site.Describe())
	}
	a.site = site
	if a.transcript != nil && len(state.Screenshot) > 0 {
		if err := a.transcript.WriteScreenshot(step, state.Screenshot); err != nil {
			log.Printf("[AGENT] Warning: failed to save screenshot: %v", err)
		}
	}

	decision, raw, err := a.decide(ctx, step, state)
	record.Raw = raw
	if err != nil {
		record.Error = err.Error()
		fmt.Fprintf(a.cfg.Out, "Step %d/%d: no usable decision: %v\n", step, a.cfg.MaxSteps, err)
		return false, false
	}
	record.Decision = decision
	if decision.Memory != "" {
		a.memory = decision.Memory
	}
	fmt.Fprintf(a.cfg.Out, "Step %d/%d: %s\n", step, a.cfg.MaxSteps, orDefault(decision.NextGoal, "(no goal stated)"))
	if a.cfg.Verbose && decision.Evaluation != "" {
		log.Printf("[VERBOSE] Evaluation: %s", decision.Evaluation)
	}

	stop, ok = a.act(ctx, decision.Actions, state.URL, result)
	record.Results = a.results
	return stop, ok
}

// observe reads the page; a screenshot is captured when it will be sent to the model or saved.
func (a *Agent) observe(ctx context.Context) (*browser.PageState, error) {
	stepCtx, cancel := context.WithTimeout(ctx, a.cfg.StepTimeout)
	defer cancel()
	return a.browser.State(stepCtx, a.cfg.UseVision || a.transcript != nil)
}

// decide asks the model for the next actions. Invalid output is reported back on the next step.
func (a *Agent) decide(ctx context.Context, step int, state *browser.PageState) (*Decision, string, error) {
	prompt, err := prompts.Render(prompts.AgentFile, "agent-step", map[string]string{
		"Step":       strconv.Itoa(step),
		"MaxSteps":   strconv.Itoa(a.cfg.MaxSteps),
		"Applied":    strconv.Itoa(a.applied),
		"ApplyLimit": strconv.Itoa(a.cfg.ApplyLimit),
		"Prior":      formatPrior(a.prior),
		"Memory":     orDefault(a.memory, "(empty)"),
		"Results":    formatResults(a.results),
		"URL":        state.URL,
		"Site":       a.site.Describe(),
		"Title":      state.Title,
		"Scroll":     state.ScrollInfo(),
		"Elements":   browser.FormatElements(state.Elements),
		"PageText":   state.Text,
	})
	if err != nil {
		return nil, "", err
	}

	req := llm.Request{System: a.system, Prompt: prompt}
	if a.cfg.UseVision {
		req.Image = state.Screenshot
	}

	stepCtx, cancel := context.WithTimeout(ctx, a.cfg.StepTimeout)
	defer cancel()

	if a.cfg.Verbose {
		log.Printf("[VERBOSE] Step %d: sending %d elements to %s", step, len(state.Elements), a.llm.Model())
	}
	raw, err := a.llm.GenerateJSON(stepCtx, req)
	if err != nil {
		a.results = []ActionResult{{Action: "decide", Error: "model call failed: " + err.Error()}}
		return nil, raw, err
	}

	decision, err := ParseDecision(raw)
	if err != nil {
		feedback, _ := prompts.Render(prompts.AgentFile, "invalid-response", map[string]string{
			"Error": err.Error(),
		})
		a.results = []ActionResult{{Action: "decide", Error: strings.TrimSpace(feedback)}}
		return nil, raw, err
	}
	return decision, raw, nil
}

// act executes the batch in order. The batch stops at the first failure or when
// the page URL changes, since the remaining indexes would refer to the old page.
func (a *Agent) act(ctx context.Context, actions []Action, startURL string, result *Result) (stop bool, ok bool) {
	a.results = nil
	ok = true

	for i, action := range actions {
		if ctx.Err() != nil {
			return false, ok
		}

		if action.Action == ActionDone {
			result.Success = action.Success != nil && *action.Success
			result.Summary = action.Summary
			result.StopReason = StopDone
			a.results = append(a.results, ActionResult{Action: ActionDone, OK: true, Detail: action.Summary})
			fmt.Fprintf(a.cfg.Out, "  ✓ done: %s\n", action.Summary)
			return true, true
		}

		res := a.execute(ctx, action)
		a.results = append(a.results, res)
		a.printResult(action, res)

		if !res.OK {
			ok = false
			a.skipRemaining(actions[i+1:], "previous action failed")
			return false, ok
		}

		if action.Action == ActionRecordApplication && a.applied >= a.cfg.ApplyLimit {
			result.StopReason = StopApplyLimit
			result.Success = true
			result.Summary = fmt.Sprintf("Applied to %d of %d jobs.", a.applied, a.cfg.ApplyLimit)
			fmt.Fprintf(a.cfg.Out, "Apply limit reached (%d)\n", a.cfg.ApplyLimit)
			return true, true
		}

		if action.changesPage() && i < len(actions)-1 {
			if url, err := a.currentURL(ctx); err == nil && url != startURL {
				a.skipRemaining(actions[i+1:], "page changed")
				return false, ok
			}
		}
	}
	return false, ok
}

func (a *Agent) currentURL(ctx context.Context) (string, error) {
	stepCtx, cancel := context.WithTimeout(ctx, a.cfg.StepTimeout)
	defer cancel()
	return a.browser.URL(stepCtx)
}

func (a *Agent) skipRemaining(rest []Action, why string) {
	for _, action := range rest {
		a.results = append(a.results, ActionResult{
			Action: action.Action,
			Index:  action.Index,
			Error:  "not executed: " + why,
		})
	}
}

func (a *Agent) printResult(action Action, res ActionResult) {
	if res.OK {
		fmt.Fprintf(a.cfg.Out, "  ✓ %s\n", a.redact(action.describe()))
		return
	}
	fmt.Fprintf(a.cfg.Out, "  ✗ %s: %s\n", a.redact(action.describe()), a.redact(res.Error))
}

// priorApplications loads applications from earlier runs so they are not repeated.
func (a *Agent) priorApplications(ctx context.Context) []history.Application {
	apps, err := a.store.RecentApplications(ctx, priorApplications)
	if err != nil {
		log.Printf("[AGENT] Warning: failed to load earlier applications: %v", err)
		return nil
	}
	return apps
}

func formatPrior(apps []history.Application) string {
	if len(apps) == 0 {
		return "(none)"
	}
	lines := make([]string, 0, len(apps))
	for _, app := range apps {
		lines = append(lines, fmt.Sprintf("- %s - %s", app.Company, app.Title))
	}
	return strings.Join(lines, "\n")
}

func (a *Agent) redact(s string) string {
	return redactSecrets(s, a.cfg.Secrets)
}

func formatResults(results []ActionResult) string {
	if len(results) == 0 {
		return "(none)"
	}
	lines := make([]string, 0, len(results))
	for _, r := range results {
		name := r.Action
		if r.Index != nil {
			name = fmt.Sprintf("%s [%d]", name, *r.Index)
		}
		switch {
		case r.OK && r.Detail != "":
			lines = append(lines, fmt.Sprintf("- %s: ok (%s)", name, r.Detail))
		case r.OK:
			lines = append(lines, fmt.Sprintf("- %s: ok", name))
		default:
			lines = append(lines, fmt.Sprintf("- %s: error: %s", name, r.Error))
		}
	}
	return strings.Join(lines, "\n")
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
