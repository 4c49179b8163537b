package observability

import (
	"fmt"
	"strings"

	"github.com/jonathan/easy-apply-agent/internal/agent"
	"github.com/jonathan/easy-apply-agent/internal/config"
	"github.com/jonathan/easy-apply-agent/internal/profile"
	"github.com/jonathan/easy-apply-agent/internal/resume"
)

// PrintSettings outputs the resolved run configuration. Credentials are never shown.
func (p *Printer) PrintSettings(s config.Settings, chrome config.ChromeOptions, model string) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Provider:     %s\n", s.Provider))
	sb.WriteString(fmt.Sprintf("Model:        %s\n", orNone(model)))
	sb.WriteString(fmt.Sprintf("Apply limit:  %d\n", s.ApplyNumber))
	sb.WriteString(fmt.Sprintf("Profile:      %s\n", s.ProfilePath))
	sb.WriteString(fmt.Sprintf("Resume:       %s\n", s.ResumePath))
	sb.WriteString("\n")

	if chrome.CDPURL != "" {
		sb.WriteString(fmt.Sprintf("Browser:      attach %s\n", chrome.CDPURL))
	} else {
		exec := chrome.ExecPath
		if exec == "" {
			exec = "(auto-detect)"
		}
		sb.WriteString(fmt.Sprintf("Chrome:       %s\n", exec))
		sb.WriteString(fmt.Sprintf("User data:    %s\n", orNone(chrome.UserDataDir)))
		if chrome.ProfileDir != "" {
			sb.WriteString(fmt.Sprintf("Profile dir:  %s\n", chrome.ProfileDir))
		}
		sb.WriteString(fmt.Sprintf("Headless:     %t\n", chrome.Headless))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Max steps:    %d (timeout %s)\n", s.MaxSteps, s.StepTimeout))
	sb.WriteString(fmt.Sprintf("Vision:       %t\n", s.UseVision))
	sb.WriteString(fmt.Sprintf("Run dir:      %s\n", s.RunDir))
	history := "off"
	if s.DatabaseURL != "" {
		history = "postgres"
	}
	sb.WriteString(fmt.Sprintf("History:      %s", history))

	p.printBox("RUN CONFIGURATION", sb.String())
}

// PrintApplicant outputs a redacted summary of the loaded profile and resume.
func (p *Printer) PrintApplicant(info *profile.ApplyInfo, res *resume.Resume) {
	if info == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:      %s\n", orNone(info.FullName())))
	sb.WriteString(fmt.Sprintf("Email:     %s\n", orNone(info.Email)))
	sb.WriteString(fmt.Sprintf("Phone:     %s\n", orNone(info.Phone)))
	sb.WriteString(fmt.Sprintf("Location:  %s\n", orNone(info.Location)))

	var filled, structured []string
	for _, f := range info.Fields() {
		switch {
		case f.Structured != nil:
			structured = append(structured, f.Key)
		case f.Text != "":
			filled = append(filled, f.Key)
		}
	}
	sb.WriteString(fmt.Sprintf("Fields:    %d filled", len(filled)))
	if len(structured) > 0 {
		sb.WriteString(fmt.Sprintf(", plus %s", strings.Join(structured, ", ")))
	}
	sb.WriteString("\n")

	if res != nil {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Resume:    %s\n", res.Path))
		if res.ExtractErr != nil {
			sb.WriteString("Text:      unavailable (upload only)")
		} else {
			sb.WriteString(fmt.Sprintf("Text:      %d pages, %d chars", res.Pages, len([]rune(res.Text))))
		}
	}

	p.printBox("APPLICANT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResult outputs the outcome of an apply run.
func (p *Printer) PrintResult(result *agent.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:          %s\n", result.RunID))
	sb.WriteString(fmt.Sprintf("Stopped:      %s\n", result.StopReason))
	sb.WriteString(fmt.Sprintf("Steps:        %d\n", result.Steps))
	sb.WriteString(fmt.Sprintf("Applied:      %d\n", result.Applied))
	sb.WriteString(fmt.Sprintf("Success:      %t\n", result.Success))

	if len(result.Applications) > 0 {
		sb.WriteString("\nApplications:\n")
		count := min(len(result.Applications), maxItemsToShow)
		for i := 0; i < count; i++ {
			app := result.Applications[i]
			sb.WriteString(fmt.Sprintf("  • %s - %s (%s)\n", app.Company, app.Title, app.Status))
		}
		if len(result.Applications) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Applications)-maxItemsToShow))
		}
	}

	if result.Summary != "" {
		sb.WriteString("\nSummary:\n")
		for _, line := range wrap(result.Summary, boxWidth-6) {
			sb.WriteString("  " + line + "\n")
		}
	}
	if result.ArtifactDir != "" {
		sb.WriteString(fmt.Sprintf("\nArtifacts:    %s\n", result.ArtifactDir))
	}

	p.printBox("APPLY RUN RESULT", strings.TrimSuffix(sb.String(), "\n"))
}

// wrap splits text into lines of at most width runes on word boundaries.
func wrap(text string, width int) []string {
	var lines []string
	var current string
	for _, word := range strings.Fields(text) {
		switch {
		case current == "":
			current = word
		case len([]rune(current))+1+len([]rune(word)) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
