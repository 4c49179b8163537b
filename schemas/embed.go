// Package schemas embeds the JSON Schema documents shipped with the binary.
package schemas

import "embed"

// Names of the embedded schema documents.
const (
	Profile  = "profile.schema.json"
	Decision = "decision.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Read returns the raw bytes of an embedded schema document.
func Read(name string) ([]byte, error) {
	return files.ReadFile(name)
}
