package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/easy-apply-agent/internal/browser"
	"github.com/jonathan/easy-apply-agent/internal/history"
	"github.com/jonathan/easy-apply-agent/internal/llm"
)

// fakeBrowser records calls and serves a fixed page per URL.
type fakeBrowser struct {
	url      string
	calls    []string
	clickTo  map[int]string // index -> URL the click navigates to
	failOn   map[string]error
	stateErr error
	inputs   map[int]string
	uploaded []string
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{
		url:     "about:blank",
		clickTo: map[int]string{},
		failOn:  map[string]error{},
		inputs:  map[int]string{},
	}
}

func (b *fakeBrowser) record(call string) error {
	b.calls = append(b.calls, call)
	name, _, _ := strings.Cut(call, " ")
	return b.failOn[name]
}

func (b *fakeBrowser) State(_ context.Context, withScreenshot bool) (*browser.PageState, error) {
	if b.stateErr != nil {
		return nil, b.stateErr
	}
	state := &browser.PageState{
		URL:   b.url,
		Title: "Page " + b.url,
		Elements: []browser.Element{
			{Index: 0, Tag: "button", Label: "Easy Apply"},
			{Index: 1, Tag: "input", Type: "text", Label: "phone"},
		},
		Text: "Software Engineer at Acme",
	}
	if withScreenshot {
		state.Screenshot = []byte("png")
	}
	return state, nil
}

func (b *fakeBrowser) URL(context.Context) (string, error) { return b.url, nil }

func (b *fakeBrowser) Navigate(_ context.Context, url string) error {
	if err := b.record("navigate " + url); err != nil {
		return err
	}
	b.url = url
	return nil
}

func (b *fakeBrowser) Click(_ context.Context, index int) error {
	if err := b.record(fmt.Sprintf("click %d", index)); err != nil {
		return err
	}
	if to, ok := b.clickTo[index]; ok {
		b.url = to
	}
	return nil
}

func (b *fakeBrowser) InputText(_ context.Context, index int, text string, clear bool) error {
	if err := b.record(fmt.Sprintf("input_text %d clear=%t", index, clear)); err != nil {
		return err
	}
	b.inputs[index] = text
	return nil
}

func (b *fakeBrowser) SelectOption(_ context.Context, index int, value string) (string, error) {
	if err := b.record(fmt.Sprintf("select_option %d %s", index, value)); err != nil {
		return "", err
	}
	return value, nil
}

func (b *fakeBrowser) UploadFile(_ context.Context, index int, path string) error {
	if err := b.record(fmt.Sprintf("upload_file %d", index)); err != nil {
		return err
	}
	b.uploaded = append(b.uploaded, path)
	return nil
}

func (b *fakeBrowser) Scroll(_ context.Context, direction string) error {
	return b.record("scroll " + direction)
}

func (b *fakeBrowser) Back(context.Context) error   { return b.record("go_back") }
func (b *fakeBrowser) Reload(context.Context) error { return b.record("refresh") }

func (b *fakeBrowser) Wait(_ context.Context, d time.Duration) error {
	return b.record("wait " + d.String())
}

// scriptedLLM returns responses in order, repeating the last one.
type scriptedLLM struct {
	responses []string
	errs      []error
	requests  []llm.Request
}

func (m *scriptedLLM) GenerateJSON(_ context.Context, req llm.Request) (string, error) {
	i := len(m.requests)
	m.requests = append(m.requests, req)
	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if len(m.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	if i >= len(m.responses) {
		i = len(m.responses) - 1
	}
	return m.responses[i], nil
}

func (m *scriptedLLM) Model() string { return "scripted-model" }

// memoryStore keeps history in memory.
type memoryStore struct {
	runs     []history.Run
	apps     []history.Application
	outcome  *history.Outcome
	prior    []history.Application
	priorErr error
	startErr error
}

func (s *memoryStore) StartRun(_ context.Context, run history.Run) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.runs = append(s.runs, run)
	return nil
}

func (s *memoryStore) RecordApplication(_ context.Context, _ uuid.UUID, app history.Application) error {
	s.apps = append(s.apps, app)
	return nil
}

func (s *memoryStore) FinishRun(_ context.Context, _ uuid.UUID, outcome history.Outcome) error {
	s.outcome = &outcome
	return nil
}

func (s *memoryStore) RecentApplications(context.Context, int) ([]history.Application, error) {
	return s.prior, s.priorErr
}

func (s *memoryStore) Close() {}

func testConfig(t *testing.T) (Config, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	return Config{
		Task:           "Apply to up to 2 jobs.\n- LINKEDIN_PASSWORD: hunter2",
		ApplyLimit:     2,
		MaxSteps:       10,
		StepTimeout:    time.Second,
		AvailableFiles: []string{"/home/ada/private/resume.pdf"},
		UseVision:      true,
		Provider:       "google",
		Secrets:        []string{"hunter2"},
		Out:            out,
	}, out
}
