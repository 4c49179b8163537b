package agent

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const redactedSecret = "********"

// stepRecord is one line of transcript.jsonl
type stepRecord struct {
	Step     int            `json:"step"`
	Time     time.Time      `json:"time"`
	URL      string         `json:"url,omitempty"`
	Title    string         `json:"title,omitempty"`
	Raw      string         `json:"raw,omitempty"`
	Decision *Decision      `json:"decision,omitempty"`
	Results  []ActionResult `json:"results,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// transcript writes per-run artifacts under <RunDir>/<run id>/.
type transcript struct {
	dir     string
	file    *os.File
	secrets []string
}

func openTranscript(runDir string, runID uuid.UUID, secrets []string) (*transcript, error) {
	dir := filepath.Join(runDir, runID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "transcript.jsonl"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	return &transcript{dir: dir, file: f, secrets: secrets}, nil
}

// WriteTask saves the task with secrets masked.
func (t *transcript) WriteTask(task string) error {
	return os.WriteFile(filepath.Join(t.dir, "task.txt"), []byte(redactSecrets(task, t.secrets)), 0o600)
}

// WriteStep appends one JSON line. Secrets are masked in the encoded form.
// Raw is model output that is itself JSON, so it is masked before encoding.
func (t *transcript) WriteStep(rec stepRecord) error {
	rec.Raw = redactSecrets(rec.Raw, append(jsonEscaped(t.secrets), t.secrets...))
	rec.Error = redactSecrets(rec.Error, t.secrets)
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode step %d: %w", rec.Step, err)
	}
	masked := redactSecrets(string(line), jsonEscaped(t.secrets))
	_, err = t.file.WriteString(masked + "\n")
	return err
}

// WriteScreenshot saves the step's viewport PNG.
func (t *transcript) WriteScreenshot(step int, png []byte) error {
	return os.WriteFile(filepath.Join(t.dir, fmt.Sprintf("step-%03d.png", step)), png, 0o600)
}

func (t *transcript) Close() error {
	return t.file.Close()
}

func redactSecrets(s string, secrets []string) string {
	for _, secret := range secrets {
		if secret != "" {
			s = strings.ReplaceAll(s, secret, redactedSecret)
		}
	}
	return s
}

// jsonEscaped returns each secret as it appears inside an encoded JSON string.
func jsonEscaped(secrets []string) []string {
	out := make([]string, 0, len(secrets))
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		b, err := json.Marshal(secret)
		if err != nil {
			continue
		}
		out = append(out, string(b[1:len(b)-1]))
	}
	return out
}
