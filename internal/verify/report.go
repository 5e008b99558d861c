package verify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Save writes the report to filename as JSON or YAML. An empty format is
// derived from the extension and defaults to JSON.
func Save(rep Report, filename, format string) error {
	if format == "" {
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".yaml", ".yml":
			format = FormatYAML
		default:
			format = FormatJSON
		}
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(rep, "", "  ")
	case FormatYAML:
		data, err = yaml.Marshal(rep)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
