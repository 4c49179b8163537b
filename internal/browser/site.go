package browser

import (
	"net/url"
	"strings"
)

// Site identifies where the current page lives: LinkedIn itself or an external
// applicant tracking system the job redirected to.
type Site string

const (
	// SiteLinkedIn is linkedin.com, where Easy Apply forms are shown
	SiteLinkedIn Site = "linkedin"
	// SiteGreenhouse is the Greenhouse ATS
	SiteGreenhouse Site = "greenhouse"
	// SiteLever is the Lever ATS
	SiteLever Site = "lever"
	// SiteWorkday is the Workday ATS
	SiteWorkday Site = "workday"
	// SiteAshby is the Ashby ATS
	SiteAshby Site = "ashby"
	// SiteOther is any other site
	SiteOther Site = "other"
)

// DetectSite classifies a page URL by host.
func DetectSite(rawURL string) Site {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return SiteOther
	}
	host := strings.ToLower(parsed.Hostname())

	switch {
	case host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com"):
		return SiteLinkedIn
	case strings.Contains(host, "greenhouse.io"):
		return SiteGreenhouse
	case strings.Contains(host, "lever.co"):
		return SiteLever
	case strings.Contains(host, "workday.com") || strings.Contains(host, "myworkdayjobs.com"):
		return SiteWorkday
	case strings.Contains(host, "ashbyhq.com"):
		return SiteAshby
	default:
		return SiteOther
	}
}

// External reports whether the site is outside LinkedIn.
func (s Site) External() bool {
	return s != SiteLinkedIn
}

// Describe renders the site for the agent prompt.
func (s Site) Describe() string {
	switch {
	case !s.External():
		return "LinkedIn"
	case s == SiteOther:
		return "external site (unknown application system)"
	default:
		return "external site (" + string(s) + " application system)"
	}
}
