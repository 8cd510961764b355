// Package display renders CLI output as tables or JSON.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/nfrund/dungeonwave/internal/catalog"
	"github.com/nfrund/dungeonwave/internal/game/sim"
	"github.com/nfrund/dungeonwave/internal/topicmgr"
)

// TopicDisplay represents a topic for display purposes
type TopicDisplay struct {
	Name        string         `json:"name"`
	Scope       string         `json:"scope"`
	Module      string         `json:"module"`
	Description string         `json:"description"`
	Pattern     string         `json:"pattern"`
	Example     string         `json:"example"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func newTopicDisplay(topic topicmgr.Topic) TopicDisplay {
	return TopicDisplay{
		Name:        topic.Name(),
		Scope:       string(topic.Scope()),
		Module:      topic.Module(),
		Description: topic.Description(),
		Pattern:     topic.Pattern(),
		Example:     topic.Example(),
		Metadata:    topic.Metadata(),
	}
}

// TopicsTable writes topics as an aligned table.
func TopicsTable(out io.Writer, topics []topicmgr.Topic) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "NAME\tSCOPE\tMODULE\tDESCRIPTION")
	fmt.Fprintln(w, "----\t-----\t------\t-----------")
	for _, topic := range topics {
		module := topic.Module()
		if module == "" {
			module = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			topic.Name(),
			topic.Scope(),
			module,
			truncateString(topic.Description(), 60))
	}
}

// TopicsJSON writes topics with a count.
func TopicsJSON(out io.Writer, topics []topicmgr.Topic) error {
	displays := make([]TopicDisplay, len(topics))
	for i, topic := range topics {
		displays[i] = newTopicDisplay(topic)
	}
	return writeJSON(out, struct {
		Topics []TopicDisplay `json:"topics"`
		Count  int            `json:"count"`
	}{Topics: displays, Count: len(displays)})
}

// Validation writes the outcome of validating one topic.
func Validation(out io.Writer, topic topicmgr.Topic, nameErr, defErr error) {
	if nameErr != nil {
		fmt.Fprintf(out, "❌ Topic name validation failed: %v\n", nameErr)
		return
	}
	if defErr != nil {
		fmt.Fprintf(out, "❌ Topic validation failed: %v\n", defErr)
		return
	}
	fmt.Fprintf(out, "✅ Topic '%s' is valid\n", topic.Name())
	fmt.Fprintf(out, "   Scope: %s\n", topic.Scope())
	fmt.Fprintf(out, "   Module: %s\n", topic.Module())
}

// CatalogSummary writes what a catalog contains and every repaired problem.
func CatalogSummary(out io.Writer, cat *catalog.Catalog, warnings []catalog.Warning) {
	fmt.Fprintf(out, "Scenario:  %s\n", cat.Scenario.Name)
	fmt.Fprintf(out, "Halls:     %d\n", len(cat.Halls()))
	fmt.Fprintf(out, "Classes:   %d\n", len(cat.ClassIDs()))
	fmt.Fprintf(out, "Guild:     %d cards\n", len(cat.GuildCards()))
	fmt.Fprintf(out, "Shop:      %d cards\n", len(cat.ShopDeck()))
	if len(warnings) == 0 {
		fmt.Fprintln(out, "✅ No warnings")
		return
	}
	fmt.Fprintf(out, "⚠️  %d warning(s):\n", len(warnings))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "KIND\tSUBJECT\tDETAIL")
	for _, warn := range warnings {
		fmt.Fprintf(w, "%s\t%s\t%s\n", warn.Kind, warn.Subject, warn.Detail)
	}
}

// Report writes a simulation report.
func Report(out io.Writer, r sim.Report, verbose bool) {
	fmt.Fprintf(out, "Matches:    %d\n", r.Matches)
	fmt.Fprintf(out, "Victories:  %d\n", r.Victories)
	fmt.Fprintf(out, "Defeats:    %d\n", r.Defeats)
	fmt.Fprintf(out, "Unfinished: %d\n", r.Unfinished)
	if r.Failed > 0 {
		fmt.Fprintf(out, "Failed:     %d\n", r.Failed)
	}
	if !verbose || len(r.Outcomes) == 0 {
		return
	}
	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "MATCH\tSEED\tRESULT\tWAVES\tTURNS\tSOULS")
	for _, o := range r.Outcomes {
		result := string(o.Result)
		if result == "" {
			result = "-"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%d\t%d\n", o.MatchID, o.Seed, result, o.Waves, o.Turns, o.Souls)
	}
}

// JSON writes v indented.
func JSON(out io.Writer, v any) error {
	return writeJSON(out, v)
}

func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// truncateString truncates a string to maxLen characters, adding "..." if truncated
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}
