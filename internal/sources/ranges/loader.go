package ranges

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults are tried in order when no ranges file is configured.
var Defaults = []string{
	"tap_content!A:G",
	"A:G",
	"Sheet1!A:G",
	"Hoja1!A:G",
	"'Hoja 1'!A:G",
	"tap!A:G",
	"'tap - tap_content'!A:G",
}

// Loader reads the candidate range list from a YAML file.
type Loader struct {
	filePath string
}

// NewLoader creates a loader. An empty path means "use Defaults".
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load returns the candidate ranges in file order, trimmed and de-duplicated.
func (l *Loader) Load() ([]string, error) {
	if l.filePath == "" {
		return append([]string(nil), Defaults...), nil
	}

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read ranges file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse ranges yaml: %w", err)
	}

	out := clean(f.Ranges)
	if len(out) == 0 {
		return nil, fmt.Errorf("no ranges defined in %s", l.filePath)
	}
	return out, nil
}

func clean(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, r := range in {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
