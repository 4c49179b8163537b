// Package task builds the natural-language task the apply agent works through.
package task

import (
	"strconv"

	"github.com/jonathan/easy-apply-agent/internal/profile"
	"github.com/jonathan/easy-apply-agent/internal/prompts"
)

// MissingResume is shown in place of an empty resume path.
const MissingResume = "[MISSING]"

// DefaultResumeExcerpt bounds how much resume text is appended to the task.
const DefaultResumeExcerpt = 6000

// Options configures task construction.
type Options struct {
	Info       *profile.ApplyInfo
	ResumePath string
	ResumeText string // optional; appended when non-empty
	ApplyLimit int
	// Redact masks the LinkedIn password, for printing the task rather than sending it.
	Redact bool
}

// Build renders the apply task.
func Build(opts Options) (string, error) {
	resumePath := opts.ResumePath
	if resumePath == "" {
		resumePath = MissingResume
	}

	info := ""
	if opts.Info != nil {
		info = opts.Info.InfoLines(opts.Redact)
	}

	text, err := prompts.Render(prompts.AgentFile, "apply-task", map[string]string{
		"ApplyLimit":    strconv.Itoa(max(1, opts.ApplyLimit)),
		"ResumePath":    resumePath,
		"ApplicantInfo": info,
	})
	if err != nil {
		return "", err
	}

	if opts.ResumeText != "" {
		extra, err := prompts.Render(prompts.AgentFile, "resume-text", map[string]string{
			"ResumeText": opts.ResumeText,
		})
		if err != nil {
			return "", err
		}
		text += extra
	}

	return text, nil
}
