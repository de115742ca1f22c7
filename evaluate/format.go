package evaluate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"

	"github.com/tbxark/slotflow/turn"
)

func formatSlotSection(t *turn.Turn) string {
	if len(t.Slots) == 0 {
		return ""
	}
	names := make([]string, 0, len(t.Slots))
	for name := range t.Slots {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf strings.Builder
	buf.WriteString("# Current slot values:\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Slot", "Value")
	for _, name := range names {
		_ = table.Append(name, turn.StringValue(t.Slots[name]))
	}
	_ = table.Render()
	return buf.String()
}

func formatCandidateSection(slot string, val *SlotValue) string {
	var buf strings.Builder
	buf.WriteString("# Candidate under review:\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Value")
	_ = table.Append("Slot", slot)
	_ = table.Append("Candidate", turn.StringValue(val.Current))
	if val.Detail.OriginalValue != "" {
		_ = table.Append("Original utterance", val.Detail.OriginalValue)
	}
	if len(val.Detail.Resolutions) > 0 {
		_ = table.Append("Alternative resolutions", strings.Join(val.Detail.Resolutions, ", "))
	}
	_ = table.Render()
	return buf.String()
}

// FormatJudgeRequest renders the turn and candidate as the user
// message for a model-backed evaluation.
func FormatJudgeRequest(t *turn.Turn, slot string, val *SlotValue, guidance string) string {
	sections := []string{
		fmt.Sprintf("# Current Date: \n %s", time.Now().Format(time.RFC3339)),
		fmt.Sprintf("# Intent:\n%s", t.IntentName),
	}
	if s := formatSlotSection(t); s != "" {
		sections = append(sections, s)
	}
	sections = append(sections, formatCandidateSection(slot, val))
	if guidance != "" {
		sections = append(sections, fmt.Sprintf("# Acceptance guidance:\n%s", guidance))
	}
	return strings.Join(sections, "\n\n")
}
