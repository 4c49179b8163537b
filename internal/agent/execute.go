package agent

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/easy-apply-agent/internal/history"
)

const defaultWait = 2 * time.Second

// execute runs a single non-terminal action and reports its outcome.
func (a *Agent) execute(ctx context.Context, action Action) ActionResult {
	res := ActionResult{Action: action.Action, Index: action.Index}

	stepCtx, cancel := context.WithTimeout(ctx, a.cfg.StepTimeout)
	defer cancel()

	detail, err := a.dispatch(stepCtx, action)
	if err != nil {
		res.Error = a.redact(err.Error())
		if a.cfg.Verbose {
			log.Printf("[VERBOSE] %s failed: %v", action.Action, res.Error)
		}
		return res
	}
	res.OK = true
	res.Detail = detail
	return res
}

func (a *Agent) dispatch(ctx context.Context, action Action) (string, error) {
	switch action.Action {
	case ActionNavigate:
		if err := checkURL(action.URL); err != nil {
			return "", err
		}
		return "", a.browser.Navigate(ctx, action.URL)

	case ActionClick:
		return "", a.browser.Click(ctx, action.index())

	case ActionInputText:
		return "", a.browser.InputText(ctx, action.index(), action.Text, action.clearFirst())

	case ActionSelectOption:
		chosen, err := a.browser.SelectOption(ctx, action.index(), action.Value)
		if err != nil {
			return "", err
		}
		return "selected " + chosen, nil

	case ActionUploadFile:
		path, err := a.uploadPath(action.Path)
		if err != nil {
			return "", err
		}
		if err := a.browser.UploadFile(ctx, action.index(), path); err != nil {
			return "", err
		}
		return "uploaded " + filepath.Base(path), nil

	case ActionScroll:
		return "", a.browser.Scroll(ctx, action.direction())

	case ActionGoBack:
		return "", a.browser.Back(ctx)

	case ActionRefresh:
		return "", a.browser.Reload(ctx)

	case ActionWait:
		d := defaultWait
		if action.Seconds != nil {
			d = time.Duration(*action.Seconds * float64(time.Second))
		}
		return "", a.browser.Wait(ctx, d)

	case ActionRecordApplication:
		return a.recordApplication(ctx, action)

	default:
		return "", fmt.Errorf("unknown action %q", action.Action)
	}
}

// uploadPath resolves the requested file against the available files.
// An empty path selects the first available file.
func (a *Agent) uploadPath(requested string) (string, error) {
	if len(a.cfg.AvailableFiles) == 0 {
		return "", fmt.Errorf("no files are available for upload")
	}
	if requested == "" {
		return a.cfg.AvailableFiles[0], nil
	}
	for _, available := range a.cfg.AvailableFiles {
		if filepath.Clean(requested) == filepath.Clean(available) || filepath.Base(requested) == filepath.Base(available) {
			return available, nil
		}
	}
	return "", fmt.Errorf("%q is not an available file; use one of: %s", requested, strings.Join(a.cfg.AvailableFiles, ", "))
}

// recordApplication counts a submitted application once per job and persists it.
func (a *Agent) recordApplication(ctx context.Context, action Action) (string, error) {
	app := history.Application{
		Company:    strings.TrimSpace(action.Company),
		Title:      strings.TrimSpace(action.Title),
		URL:        strings.TrimSpace(action.URL),
		Status:     strings.ToLower(strings.TrimSpace(action.Status)),
		RecordedAt: time.Now(),
	}
	if app.Company == "" || app.Title == "" {
		return "", fmt.Errorf("record_application needs company and title")
	}
	if app.Status == "" {
		app.Status = history.ApplicationSubmitted
	}

	for _, prev := range a.prior {
		if sameJob(prev, app) {
			return fmt.Sprintf("already applied in an earlier run; not counted; %d of %d applications", a.applied, a.cfg.ApplyLimit), nil
		}
	}
	for _, prev := range a.applications {
		if sameJob(prev, app) {
			return fmt.Sprintf("already recorded; %d of %d applications", a.applied, a.cfg.ApplyLimit), nil
		}
	}

	a.applications = append(a.applications, app)
	if app.Status == history.ApplicationSubmitted {
		a.applied++
	}

	if err := a.store.RecordApplication(ctx, a.runID, app); err != nil {
		fmt.Fprintf(a.cfg.Out, "Warning: Failed to store application: %v\n", err)
	}
	return fmt.Sprintf("%d of %d applications", a.applied, a.cfg.ApplyLimit), nil
}

func sameJob(x, y history.Application) bool {
	if x.URL != "" && y.URL != "" {
		return x.URL == y.URL
	}
	return strings.EqualFold(x.Company, y.Company) && strings.EqualFold(x.Title, y.Title)
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("navigate needs an absolute http(s) URL, got %q", raw)
	}
	return nil
}
