package browser

import (
	"context"
	"fmt"
	"log"

	"github.com/chromedp/chromedp"
)

// PageState is what the agent observes at the start of each step.
type PageState struct {
	URL        string
	Title      string
	Elements   []Element
	Text       string
	ScrollY    int
	Viewport   int
	PageHeight int
	Screenshot []byte // PNG of the viewport; nil unless requested
}

// ScrollInfo describes the viewport position, e.g. "0-960 of 3200px".
func (p *PageState) ScrollInfo() string {
	if p.PageHeight == 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d-%d of %dpx", p.ScrollY, p.ScrollY+p.Viewport, p.PageHeight)
}

// State stamps the interactive elements and returns a snapshot of the page.
func (s *Session) State(ctx context.Context, withScreenshot bool) (*PageState, error) {
	var (
		stamp stampResult
		html  string
		state PageState
	)

	actions := []chromedp.Action{
		chromedp.Evaluate(fmt.Sprintf(stampScript, MaxElements), &stamp),
		chromedp.Location(&state.URL),
		chromedp.Title(&state.Title),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if withScreenshot {
		actions = append(actions, chromedp.CaptureScreenshot(&state.Screenshot))
	}

	if err := s.run(ctx, actions...); err != nil {
		return nil, fmt.Errorf("failed to read page state: %w", err)
	}

	elements, text, err := ParseSnapshot(html, DefaultTextBudget)
	if err != nil {
		return nil, err
	}
	state.Elements = elements
	state.Text = text
	state.ScrollY = stamp.ScrollY
	state.Viewport = stamp.Viewport
	state.PageHeight = stamp.Height

	if s.verbose {
		log.Printf("[BROWSER] State %s: %d elements, %d bytes HTML", state.URL, len(elements), len(html))
	}
	return &state, nil
}

// URL returns the current page URL.
func (s *Session) URL(ctx context.Context) (string, error) {
	var url string
	if err := s.run(ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}
