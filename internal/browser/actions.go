package browser

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"
)

// settleDelay lets the page react after an interaction before the next observation.
const settleDelay = 500 * time.Millisecond

// Navigate opens url in the current tab and waits for the body.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if s.verbose {
		log.Printf("[BROWSER] Navigate %s", url)
	}
	err := s.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return &ActionError{Action: "navigate", Index: -1, Cause: err}
	}
	return nil
}

// Click clicks the element with the given index.
func (s *Session) Click(ctx context.Context, index int) error {
	sel, err := s.resolve(ctx, "click", index)
	if err != nil {
		return err
	}
	err = s.run(ctx,
		chromedp.ScrollIntoView(sel, chromedp.ByQuery),
		chromedp.Click(sel, chromedp.ByQuery),
		chromedp.Sleep(settleDelay),
	)
	if err != nil {
		return &ActionError{Action: "click", Index: index, Cause: err}
	}
	return nil
}

// InputText types text into the element, clearing it first when clear is set.
func (s *Session) InputText(ctx context.Context, index int, text string, clear bool) error {
	sel, err := s.resolve(ctx, "input_text", index)
	if err != nil {
		return err
	}
	actions := []chromedp.Action{
		chromedp.ScrollIntoView(sel, chromedp.ByQuery),
		chromedp.Focus(sel, chromedp.ByQuery),
	}
	if clear {
		actions = append(actions, chromedp.Clear(sel, chromedp.ByQuery))
	}
	actions = append(actions, chromedp.SendKeys(sel, text, chromedp.ByQuery))

	if err := s.run(ctx, actions...); err != nil {
		return &ActionError{Action: "input_text", Index: index, Cause: err}
	}
	return nil
}

// SelectOption chooses the option matching value by value or visible text.
// It returns the text of the selected option.
func (s *Session) SelectOption(ctx context.Context, index int, value string) (string, error) {
	sel, err := s.resolve(ctx, "select_option", index)
	if err != nil {
		return "", err
	}
	var chosen string
	if err := s.run(ctx, chromedp.Evaluate(selectOptionScript(sel, value), &chosen)); err != nil {
		return "", &ActionError{Action: "select_option", Index: index, Cause: err}
	}
	if chosen == "" {
		return "", &ActionError{Action: "select_option", Index: index, Cause: fmt.Errorf("%w: %q", ErrNoOption, value)}
	}
	return chosen, nil
}

// UploadFile sets path on the file input behind the element.
func (s *Session) UploadFile(ctx context.Context, index int, path string) error {
	sel, err := s.resolve(ctx, "upload_file", index)
	if err != nil {
		return err
	}
	var target string
	if err := s.run(ctx, chromedp.Evaluate(uploadTargetScript(sel), &target)); err != nil {
		return &ActionError{Action: "upload_file", Index: index, Cause: err}
	}
	if target == "" {
		return &ActionError{Action: "upload_file", Index: index, Cause: ErrNoFileInput}
	}
	if s.verbose {
		log.Printf("[BROWSER] Upload %s via %s", path, target)
	}
	err = s.run(ctx,
		chromedp.SetUploadFiles(target, []string{path}, chromedp.ByQuery),
		chromedp.Sleep(settleDelay),
	)
	if err != nil {
		return &ActionError{Action: "upload_file", Index: index, Cause: err}
	}
	return nil
}

// Scroll moves the viewport by most of a screen; direction is "up" or "down".
func (s *Session) Scroll(ctx context.Context, direction string) error {
	var y int
	if err := s.run(ctx, chromedp.Evaluate(scrollScript(direction), &y), chromedp.Sleep(settleDelay)); err != nil {
		return &ActionError{Action: "scroll", Index: -1, Cause: err}
	}
	return nil
}

// Back navigates one entry back in history.
func (s *Session) Back(ctx context.Context) error {
	if err := s.run(ctx, chromedp.NavigateBack(), chromedp.Sleep(settleDelay)); err != nil {
		return &ActionError{Action: "go_back", Index: -1, Cause: err}
	}
	return nil
}

// Reload reloads the current page.
func (s *Session) Reload(ctx context.Context) error {
	if err := s.run(ctx, chromedp.Reload(), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return &ActionError{Action: "refresh", Index: -1, Cause: err}
	}
	return nil
}

// Wait pauses for d or until ctx is done.
func (s *Session) Wait(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// resolve checks that the index exists on the page and returns its selector.
func (s *Session) resolve(ctx context.Context, action string, index int) (string, error) {
	sel := indexSelector(index)
	var exists bool
	if err := s.run(ctx, chromedp.Evaluate(existsScript(sel), &exists)); err != nil {
		return "", &ActionError{Action: action, Index: index, Cause: err}
	}
	if !exists {
		return "", &ActionError{Action: action, Index: index, Cause: ErrElementNotFound}
	}
	return sel, nil
}
