package extraction

import (
	"encoding/json"
	"errors"
	"strings"
)

var errNoArray = errors.New("no JSON array found in completion")

// decodeEntries locates the outermost [ ... ] span in a raw completion
// (models wrap the array in prose, code fences, or both) and decodes it into
// loosely-typed entries for field-level repair.
func decodeEntries(raw string) ([]map[string]any, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || end < start {
		return nil, errNoArray
	}

	var entries []map[string]any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
