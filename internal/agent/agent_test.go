package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/easy-apply-agent/internal/history"
)

func TestRun_StopsAtApplyLimit(t *testing.T) {
	cfg, out := testConfig(t)
	b := newFakeBrowser()
	model := &scriptedLLM{responses: []string{
		`{"next_goal": "open jobs", "actions": [{"action": "navigate", "url": "https://www.linkedin.com/jobs/collections/recommended"}]}`,
		`{"next_goal": "fill form", "memory": "on job 1", "actions": [
			{"action": "input_text", "index": 1, "text": "555-0100"},
			{"action": "upload_file", "index": 0},
			{"action": "record_application", "company": "Acme", "title": "Backend Engineer", "url": "https://www.linkedin.com/jobs/view/1"}
		]}`,
		`{"next_goal": "second job", "actions": [{"action": "record_application", "company": "Globex", "title": "SRE", "status": "submitted"}]}`,
		`{"actions": [{"action": "wait"}]}`,
	}}
	store := &memoryStore{}

	a, err := New(cfg, b, model, store)
	require.NoError(t, err)

	result, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StopApplyLimit, result.StopReason)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Steps)
	assert.Equal(t, 2, result.Applied)
	require.Len(t, result.Applications, 2)
	assert.Equal(t, "Acme", result.Applications[0].Company)
	assert.Equal(t, history.ApplicationSubmitted, result.Applications[0].Status)

	assert.Equal(t, []string{
		"navigate https://www.linkedin.com/jobs/collections/recommended",
		"input_text 1 clear=true",
		"upload_file 0",
	}, b.calls)
	assert.Equal(t, []string{"/home/ada/private/resume.pdf"}, b.uploaded)

	require.Len(t, store.runs, 1)
	assert.Equal(t, result.RunID, store.runs[0].ID)
	assert.Equal(t, "scripted-model", store.runs[0].Model)
	assert.Len(t, store.apps, 2)
	require.NotNil(t, store.outcome)
	assert.Equal(t, "apply_limit_reached", store.outcome.StopReason)
	assert.Equal(t, 2, store.outcome.Applied)

	assert.Contains(t, model.requests[2].Prompt, "on job 1", "memory carries into the next step")
	assert.Contains(t, model.requests[2].Prompt, "Applications recorded so far: 1 of 2")
	assert.Contains(t, out.String(), "Step 1/10: open jobs")
	assert.Contains(t, out.String(), "Apply limit reached (2)")
}

func TestRun_DoneEndsRun(t *testing.T) {
	cfg, _ := testConfig(t)
	model := &scriptedLLM{responses: []string{
		`{"actions": [{"action": "scroll", "direction": "down"}, {"action": "done", "success": false, "summary": "No Easy Apply jobs left", "applied": 0}, {"action": "wait"}]}`,
	}}
	b := newFakeBrowser()

	a, err := New(cfg, b, model, nil)
	require.NoError(t, err)
	result, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StopDone, result.StopReason)
	assert.False(t, result.Success)
	assert.Equal(t, "No Easy Apply jobs left", result.Summary)
	assert.Equal(t, 1, result.Steps)
	assert.Equal(t, []string{"scroll down"}, b.calls, "actions after done are not executed")
}

func TestRun_MaxSteps(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.MaxSteps = 4
	model := &scriptedLLM{responses: []string{`{"actions": [{"action": "wait", "seconds": 0.5}]}`}}
	b := newFakeBrowser()

	a, err := New(cfg, b, model, nil)
	require.NoError(t, err)
	result, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StopMaxSteps, result.StopReason)
	assert.Equal(t, 4, result.Steps)
	assert.False(t, result.Success)
	assert.Contains(t, result.Summary, "max_steps")
	assert.Equal(t, "wait 500ms", b.calls[0])
}

func TestRun_TooManyInvalidResponses(t *testing.T) {
	cfg, out := testConfig(t)
	model := &scriptedLLM{responses: []string{
		`I think we should click the button`,
		`{"actions": [{"action": "teleport"}]}`,
		`{"actions": []}`,
	}}

	a, err := New(cfg, newFakeBrowser(), model, nil)
	require.NoError(t, err)
	result, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StopTooManyFailures, result.StopReason)
	assert.Equal(t, 3, result.Steps)
	assert.Contains(t, model.requests[1].Prompt, "Your previous response could not be used")
	assert.Contains(t, out.String(), "Stopping: 3 consecutive failed steps")
}

func TestRun_FailuresResetAfterSuccess(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.MaxSteps = 6
	model := &scriptedLLM{
		errs: []error{errors.New("503 unavailable"), errors.New("503 unavailable")},
		responses: []string{
			"", "",
			`{"actions": [{"action": "wait", "seconds": 0}]}`,
			`not json`,
			`not json`,
			`{"actions": [{"action": "done", "success": true, "summary": "applied to 0 jobs"}]}`,
		},
	}

	a, err := New(cfg, newFakeBrowser(), model, nil)
	require.NoError(t, err)
	result, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StopDone, result.StopReason)
	assert.True(t, result.Success)
	assert.Equal(t, 6, result.Steps)
	assert.Contains(t, model.requests[1].Prompt, "model call failed: 503 unavailable")
}

func TestRun_PageChangeStopsBatch(t *testing.T) {
	cfg, _ := testConfig(t)
	b := newFakeBrowser()
	b.clickTo[0] = "https://www.linkedin.com/jobs/view/2"
	model := &scriptedLLM{responses: []string{
		`{"actions": [{"action": "click", "index": 0}, {"action": "input_text", "index": 1, "text": "x"}]}`,
		`{"actions": [{"action": "done", "success": true, "summary": "ok"}]}`,
	}}

	a, err := New(cfg, b, model, nil)
	require.NoError(t, err)
	_, err = a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"click 0"}, b.calls)
	assert.Contains(t, model.requests[1].Prompt, "- click [0]: ok")
	assert.Contains(t, model.requests[1].Prompt, "- input_text [1]: error: not executed: page changed")
	assert.Contains(t, model.requests[1].Prompt, "URL: https://www.linkedin.com/jobs/view/2")
	assert.Contains(t, model.requests[1].Prompt, "Site: LinkedIn")
}

func TestRun_FailedActionSkipsRest(t *testing.T) {
	cfg, _ := testConfig(t)
	b := newFakeBrowser()
	b.failOn["click"] = errors.New("element not found")
	model := &scriptedLLM{responses: []string{
		`{"actions": [{"action": "click", "index": 7}, {"action": "scroll"}]}`,
		`{"actions": [{"action": "done", "success": true, "summary": "ok"}]}`,
	}}

	a, err := New(cfg, b, model, nil)
	require.NoError(t, err)
	_, err = a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"click 7"}, b.calls)
	assert.Contains(t, model.requests[1].Prompt, "- click [7]: error: element not found")
	assert.Contains(t, model.requests[1].Prompt, "- scroll: error: not executed: previous action failed")
}

func TestRun_ObserveFailureCounts(t *testing.T) {
	cfg, _ := testConfig(t)
	b := newFakeBrowser()
	b.stateErr = errors.New("target closed")
	model := &scriptedLLM{responses: []string{`{"actions": [{"action": "wait"}]}`}}

	a, err := New(cfg, b, model, nil)
	require.NoError(t, err)
	result, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StopTooManyFailures, result.StopReason)
	assert.Empty(t, model.requests)
}

func TestRun_CanceledContext(t *testing.T) {
	cfg, _ := testConfig(t)
	store := &memoryStore{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a, err := New(cfg, newFakeBrowser(), &scriptedLLM{}, store)
	require.NoError(t, err)
	result, err := a.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, StopCanceled, result.StopReason)
	assert.Equal(t, 0, result.Steps)
	require.NotNil(t, store.outcome, "run is closed out even after cancellation")
	assert.Equal(t, "context_canceled", store.outcome.StopReason)
}

func TestRun_RecordApplicationRules(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.ApplyLimit = 3
	model := &scriptedLLM{responses: []string{
		`{"actions": [
			{"action": "record_application", "company": "Acme", "title": "SWE", "url": "https://x.test/1"},
			{"action": "record_application", "company": "ACME", "title": "swe", "url": "https://x.test/1"},
			{"action": "record_application", "company": "Initech", "title": "Cleared SWE", "status": "Skipped"}
		]}`,
		`{"actions": [{"action": "done", "success": true, "summary": "applied to 1 job"}]}`,
	}}

	a, err := New(cfg, newFakeBrowser(), model, nil)
	require.NoError(t, err)
	result, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Applied)
	require.Len(t, result.Applications, 2)
	assert.Equal(t, history.ApplicationSkipped, result.Applications[1].Status)
	assert.Contains(t, model.requests[1].Prompt, "already recorded")
}

func TestRun_UploadRestrictedToAvailableFiles(t *testing.T) {
	cfg, _ := testConfig(t)
	b := newFakeBrowser()
	model := &scriptedLLM{responses: []string{
		`{"actions": [{"action": "upload_file", "index": 3, "path": "/etc/passwd"}]}`,
		`{"actions": [{"action": "upload_file", "index": 3, "path": "resume.pdf"}]}`,
		`{"actions": [{"action": "done", "success": true, "summary": "ok"}]}`,
	}}

	a, err := New(cfg, b, model, nil)
	require.NoError(t, err)
	_, err = a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"/home/ada/private/resume.pdf"}, b.uploaded)
	assert.Contains(t, model.requests[1].Prompt, `"/etc/passwd" is not an available file`)
}

func TestRun_RejectsNonHTTPNavigation(t *testing.T) {
	cfg, _ := testConfig(t)
	b := newFakeBrowser()
	model := &scriptedLLM{responses: []string{
		`{"actions": [{"action": "navigate", "url": "file:///etc/passwd"}]}`,
		`{"actions": [{"action": "done", "success": false, "summary": "stuck"}]}`,
	}}

	a, err := New(cfg, b, model, nil)
	require.NoError(t, err)
	_, err = a.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, b.calls)
	assert.Contains(t, model.requests[1].Prompt, "navigate needs an absolute http(s) URL")
}

func TestRun_VisionAndSystemPrompt(t *testing.T) {
	cfg, _ := testConfig(t)
	model := &scriptedLLM{responses: []string{`{"actions": [{"action": "done", "success": true, "summary": "ok"}]}`}}

	a, err := New(cfg, newFakeBrowser(), model, nil)
	require.NoError(t, err)
	_, err = a.Run(context.Background())
	require.NoError(t, err)

	req := model.requests[0]
	assert.Equal(t, []byte("png"), req.Image)
	assert.Contains(t, req.System, "Available files for upload: /home/ada/private/resume.pdf")
	assert.Contains(t, req.System, "Task:\nApply to up to 2 jobs.")
	assert.Contains(t, req.Prompt, "[0]<button>Easy Apply</button>")
	assert.Contains(t, req.Prompt, "Memory:\n(empty)")

	cfg.UseVision = false
	model = &scriptedLLM{responses: model.responses}
	a, err = New(cfg, newFakeBrowser(), model, nil)
	require.NoError(t, err)
	_, err = a.Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, model.requests[0].Image)
}

func TestRun_PriorApplicationsSeedMemory(t *testing.T) {
	cfg, _ := testConfig(t)
	store := &memoryStore{prior: []history.Application{{Company: "Hooli", Title: "Staff Engineer", Status: "submitted"}}}
	model := &scriptedLLM{responses: []string{`{"actions": [{"action": "done", "success": true, "summary": "ok"}]}`}}

	a, err := New(cfg, newFakeBrowser(), model, store)
	require.NoError(t, err)
	_, err = a.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, model.requests[0].Prompt, "Already applied in earlier runs (skip these jobs):\n- Hooli - Staff Engineer")
}

func TestRun_PriorApplicationsSurviveMemoryAndAreNotRecounted(t *testing.T) {
	cfg, _ := testConfig(t)
	store := &memoryStore{prior: []history.Application{
		{Company: "Acme", Title: "Go Engineer", URL: "https://www.linkedin.com/jobs/view/7", Status: "submitted"},
	}}
	model := &scriptedLLM{responses: []string{
		`{"memory": "on jobs list", "actions": [{"action": "scroll"}]}`,
		`{"actions": [{"action": "record_application", "company": "acme", "title": "go engineer"}]}`,
		`{"actions": [{"action": "done", "success": false, "summary": "nothing new"}]}`,
	}}

	a, err := New(cfg, newFakeBrowser(), model, store)
	require.NoError(t, err)
	result, err := a.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, model.requests, 3)
	for _, req := range model.requests {
		assert.Contains(t, req.Prompt, "- Acme - Go Engineer")
	}
	assert.Contains(t, model.requests[1].Prompt, "Memory:\non jobs list")
	assert.Contains(t, model.requests[2].Prompt, "already applied in an earlier run")

	assert.Equal(t, 0, result.Applied)
	assert.Empty(t, result.Applications)
	assert.Empty(t, store.apps)
}

func TestRun_StartRunFailureDisablesPersistence(t *testing.T) {
	cfg, out := testConfig(t)
	store := &memoryStore{startErr: errors.New("connection refused")}
	model := &scriptedLLM{responses: []string{
		`{"actions": [{"action": "record_application", "company": "Acme", "title": "SWE"}]}`,
		`{"actions": [{"action": "done", "success": true, "summary": "ok"}]}`,
	}}

	a, err := New(cfg, newFakeBrowser(), model, store)
	require.NoError(t, err)
	result, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Applied)
	assert.Empty(t, store.apps)
	assert.Nil(t, store.outcome)
	assert.Equal(t, 1, strings.Count(out.String(), "Warning:"))
	assert.Contains(t, out.String(), "Continuing without database persistence")
}

func TestRun_ReportsRedirectToExternalSite(t *testing.T) {
	cfg, out := testConfig(t)
	b := newFakeBrowser()
	b.url = "https://www.linkedin.com/jobs/view/1"
	b.clickTo[0] = "https://boards.greenhouse.io/acme/jobs/1"
	model := &scriptedLLM{responses: []string{
		`{"actions": [{"action": "click", "index": 0}]}`,
		`{"actions": [{"action": "go_back"}]}`,
		`{"actions": [{"action": "done", "success": false, "summary": "external form"}]}`,
	}}

	a, err := New(cfg, b, model, nil)
	require.NoError(t, err)
	_, err = a.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, model.requests[0].Prompt, "Site: LinkedIn")
	assert.Contains(t, model.requests[1].Prompt, "Site: external site (greenhouse application system)")
	assert.Contains(t, out.String(), "Step 2/10: redirected to external site (greenhouse application system)")
}

func TestRun_WritesRedactedArtifacts(t *testing.T) {
	cfg, out := testConfig(t)
	cfg.RunDir = t.TempDir()
	model := &scriptedLLM{responses: []string{
		`{"next_goal": "log in", "actions": [{"action": "input_text", "index": 1, "text": "hunter2"}]}`,
		`{"actions": [{"action": "done", "success": true, "summary": "logged in"}]}`,
	}}

	a, err := New(cfg, newFakeBrowser(), model, nil)
	require.NoError(t, err)
	result, err := a.Run(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, result.ArtifactDir)
	assert.Equal(t, filepath.Join(cfg.RunDir, result.RunID.String()), result.ArtifactDir)

	transcript, err := os.ReadFile(filepath.Join(result.ArtifactDir, "transcript.jsonl"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(transcript)), "\n")
	assert.Len(t, lines, 2)
	assert.NotContains(t, string(transcript), "hunter2")
	assert.Contains(t, string(transcript), "********")

	task, err := os.ReadFile(filepath.Join(result.ArtifactDir, "task.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(task), "LINKEDIN_PASSWORD: ********")

	assert.FileExists(t, filepath.Join(result.ArtifactDir, "step-001.png"))
	assert.NotContains(t, out.String(), "hunter2")
}

func TestRun_TranscriptMasksPasswordWithJSONSpecialCharacters(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.RunDir = t.TempDir()
	cfg.Secrets = []string{`pa"ss\w0rd`}
	model := &scriptedLLM{responses: []string{
		`{"next_goal": "log in", "actions": [{"action": "input_text", "index": 1, "text": "pa\"ss\\w0rd"}]}`,
		`{"actions": [{"action": "done", "success": true, "summary": "logged in"}]}`,
	}}

	b := newFakeBrowser()
	a, err := New(cfg, b, model, nil)
	require.NoError(t, err)
	result, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `pa"ss\w0rd`, b.inputs[1])

	transcript, err := os.ReadFile(filepath.Join(result.ArtifactDir, "transcript.jsonl"))
	require.NoError(t, err)
	assert.NotContains(t, string(transcript), "w0rd")
	assert.Contains(t, string(transcript), "********")
}

func TestNew_Validation(t *testing.T) {
	cfg, _ := testConfig(t)

	_, err := New(cfg, nil, &scriptedLLM{}, nil)
	assert.Error(t, err)

	cfg.Task = "  "
	_, err = New(cfg, newFakeBrowser(), &scriptedLLM{}, nil)
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	a, err := New(Config{Task: "apply"}, newFakeBrowser(), &scriptedLLM{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, a.cfg.ApplyLimit)
	assert.Equal(t, DefaultMaxSteps, a.cfg.MaxSteps)
	assert.Equal(t, DefaultMaxFailures, a.cfg.MaxFailures)
	assert.Equal(t, DefaultStepTimeout, a.cfg.StepTimeout)
	assert.IsType(t, history.NopStore{}, a.store)
	assert.Contains(t, a.system, "Available files for upload: (none)")
}
