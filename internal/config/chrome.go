package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// ChromeOptions is the resolved browser launch configuration.
// Empty ExecPath lets the browser layer fall back to its own lookup.
type ChromeOptions struct {
	ExecPath    string
	UserDataDir string
	ProfileDir  string // only set when UserDataDir resolved
	CDPURL      string
	Headless    bool
}

// resolver holds the platform facts used to find Chrome, injectable for tests.
type resolver struct {
	goos   string
	getenv func(string) string
	home   string
	exists func(string) bool
}

func defaultResolver() resolver {
	home, _ := os.UserHomeDir()
	return resolver{
		goos:   runtime.GOOS,
		getenv: os.Getenv,
		home:   home,
		exists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
	}
}

// ResolveChrome picks the Chrome executable and profile directories for the current platform.
func ResolveChrome(s Settings) ChromeOptions {
	return defaultResolver().resolve(s)
}

func (r resolver) resolve(s Settings) ChromeOptions {
	opts := ChromeOptions{
		ExecPath:    r.executable(s.ChromeExecutablePath),
		UserDataDir: r.userDataDir(s.ChromeUserDataDir),
		CDPURL:      s.CDPURL,
		Headless:    s.Headless,
	}
	if opts.UserDataDir != "" {
		opts.ProfileDir = s.ChromeProfileDir
	}
	return opts
}

// executable returns the explicit path if it exists, otherwise the first existing platform candidate.
// An explicit path that does not exist disables the candidate search.
func (r resolver) executable(explicit string) string {
	if explicit != "" {
		path := ExpandHome(explicit)
		if r.exists(path) {
			return path
		}
		return ""
	}
	for _, candidate := range r.candidates() {
		if r.exists(candidate) {
			return candidate
		}
	}
	return ""
}

func (r resolver) userDataDir(explicit string) string {
	if explicit != "" {
		path := ExpandHome(explicit)
		if r.exists(path) {
			return path
		}
		return ""
	}
	if path := r.defaultUserDataDir(); path != "" && r.exists(path) {
		return path
	}
	return ""
}

func (r resolver) candidates() []string {
	switch r.goos {
	case "windows":
		return []string{
			filepath.Join(r.getenv("ProgramFiles"), "Google/Chrome/Application/chrome.exe"),
			filepath.Join(r.getenv("ProgramFiles(x86)"), "Google/Chrome/Application/chrome.exe"),
			filepath.Join(r.getenv("LOCALAPPDATA"), "Google/Chrome/Application/chrome.exe"),
		}
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Google Chrome Beta.app/Contents/MacOS/Google Chrome Beta",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	default:
		return []string{
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
		}
	}
}

func (r resolver) defaultUserDataDir() string {
	switch r.goos {
	case "windows":
		return filepath.Join(r.getenv("LOCALAPPDATA"), "Google/Chrome/User Data")
	case "darwin":
		if r.home == "" {
			return ""
		}
		return filepath.Join(r.home, "Library/Application Support/Google/Chrome")
	default:
		if r.home == "" {
			return ""
		}
		return filepath.Join(r.home, ".config/google-chrome")
	}
}
