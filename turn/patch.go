package turn

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

type operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

const (
	opAdd     = "add"
	opReplace = "replace"
)

// ApplyReplacements merges evaluator-forced slot values into the
// turn's slot mapping as an RFC 6902 patch against the slot document.
// A replace on a slot that is not yet in the document is downgraded to
// an add, so evaluators may force values for slots the runtime never
// sent.
func ApplyReplacements(t *Turn, replacements map[string]string) error {
	if len(replacements) == 0 {
		return nil
	}
	if t.Slots == nil {
		t.Slots = make(map[string]*string)
	}

	currentJSON, err := sonic.Marshal(t.Slots)
	if err != nil {
		return fmt.Errorf("failed to marshal slot document: %w", err)
	}

	names := make([]string, 0, len(replacements))
	for name := range replacements {
		names = append(names, name)
	}
	sort.Strings(names)

	ops := make([]operation, 0, len(names))
	for _, name := range names {
		op := opReplace
		if _, exists := t.Slots[name]; !exists {
			op = opAdd
		}
		ops = append(ops, operation{
			Op:    op,
			Path:  "/" + escapePointerToken(name),
			Value: replacements[name],
		})
	}

	patchJSON, err := sonic.Marshal(ops)
	if err != nil {
		return fmt.Errorf("failed to marshal patch operations: %w", err)
	}
	patch, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return fmt.Errorf("failed to decode patch: %w", err)
	}
	modifiedJSON, err := patch.Apply(currentJSON)
	if err != nil {
		return fmt.Errorf("failed to apply patch: %w", err)
	}

	var merged map[string]*string
	if err := sonic.Unmarshal(modifiedJSON, &merged); err != nil {
		return fmt.Errorf("patched slot document is not a slot mapping: %w", err)
	}
	t.Slots = merged
	return nil
}

func escapePointerToken(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}
