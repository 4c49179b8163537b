// Package browser drives a Chrome session over the DevTools protocol for the apply agent.
package browser

import (
	"context"
	"fmt"
	"log"

	"github.com/chromedp/chromedp"

	"github.com/jonathan/easy-apply-agent/internal/config"
)

// Session is a single browser tab controlled through chromedp.
type Session struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	attached    bool
	verbose     bool
}

// Launch starts a local Chrome (or attaches to CDPURL when set) and opens a tab.
// The caller must Close the session.
func Launch(ctx context.Context, opts config.ChromeOptions, verbose bool) (*Session, error) {
	if opts.CDPURL != "" {
		return Attach(ctx, opts.CDPURL, verbose)
	}

	if verbose {
		log.Printf("[BROWSER] Launching Chrome exec=%q user_data_dir=%q profile=%q headless=%t",
			opts.ExecPath, opts.UserDataDir, opts.ProfileDir, opts.Headless)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions(opts)...)
	return open(allocCtx, cancelAlloc, false, verbose)
}

// Attach connects to an already running browser at a DevTools URL.
// Closing an attached session closes its tab but leaves the browser running.
func Attach(ctx context.Context, cdpURL string, verbose bool) (*Session, error) {
	if verbose {
		log.Printf("[BROWSER] Attaching to %s", cdpURL)
	}
	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, cdpURL)
	return open(allocCtx, cancelAlloc, true, verbose)
}

func open(allocCtx context.Context, cancelAlloc context.CancelFunc, attached, verbose bool) (*Session, error) {
	var ctxOpts []chromedp.ContextOption
	if verbose {
		ctxOpts = append(ctxOpts, chromedp.WithErrorf(log.Printf))
	}
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, ctxOpts...)

	// An empty Run starts the browser (or connects) and creates the tab.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser session: %w", err)
	}

	return &Session{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		attached:    attached,
		verbose:     verbose,
	}, nil
}

// Close ends the session. A launched browser is terminated; an attached one is not.
func (s *Session) Close() error {
	if s == nil || s.cancelTab == nil {
		return nil
	}
	s.cancelTab()
	s.cancelAlloc()
	s.cancelTab = nil
	if s.verbose {
		log.Printf("[BROWSER] Session closed (attached=%t)", s.attached)
	}
	return nil
}

// run executes actions on the session tab, bounded by the caller's context.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	if s.cancelTab == nil {
		return ErrClosed
	}
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func allocatorOptions(opts config.ChromeOptions) []chromedp.ExecAllocatorOption {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1280, 960),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.UserDataDir))
		if opts.ProfileDir != "" {
			allocOpts = append(allocOpts, chromedp.Flag("profile-directory", opts.ProfileDir))
		}
	}
	return allocOpts
}
