package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/easy-apply-agent/internal/config"
	"github.com/jonathan/easy-apply-agent/internal/profile"
	"github.com/jonathan/easy-apply-agent/internal/resume"
	"github.com/jonathan/easy-apply-agent/internal/task"
)

// loadSettings reads the environment, applies flag overrides and validates the result.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	s := config.Load(os.Getenv)

	flags := cmd.Flags()
	if flags.Changed("apply-number") {
		s.ApplyNumber = max(1, flagApplyNumber)
	}
	if flags.Changed("headless") {
		s.Headless = flagHeadless
	}
	if flags.Changed("max-steps") && flagMaxSteps > 0 {
		s.MaxSteps = flagMaxSteps
	}
	if flagVerbose {
		s.Verbose = true
	}

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// inputs are the private files an apply run needs.
type inputs struct {
	Info   *profile.ApplyInfo
	Resume *resume.Resume
}

// loadInputs reads the profile and the resume concurrently.
func loadInputs(ctx context.Context, s config.Settings) (*inputs, error) {
	var in inputs
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		info, err := profile.Load(s.ProfilePath)
		if err != nil {
			return err
		}
		in.Info = info
		return nil
	})

	g.Go(func() error {
		res, err := resume.Load(s.ResumePath)
		if err != nil {
			return err
		}
		if res.ExtractErr != nil {
			log.Printf("Warning: could not extract resume text (the file is still uploaded): %v", res.ExtractErr)
		}
		in.Resume = res
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &in, nil
}

// buildTask renders the apply task. redact masks the LinkedIn password for display.
func buildTask(s config.Settings, in *inputs, withResumeText, redact bool) (string, error) {
	opts := task.Options{
		Info:       in.Info,
		ResumePath: in.Resume.Path,
		ApplyLimit: s.ApplyNumber,
		Redact:     redact,
	}
	if withResumeText {
		opts.ResumeText = in.Resume.Excerpt(task.DefaultResumeExcerpt)
	}
	text, err := task.Build(opts)
	if err != nil {
		return "", fmt.Errorf("failed to build task: %w", err)
	}
	return text, nil
}
