package summary

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nikhilza/focuspanel/internal/model/summary"
)

// numberedLine matches "1. Section Title" or "1) Section Title".
var numberedLine = regexp.MustCompile(`^\s*\d+[.)]\s*(.+)$`)

// bulletLine matches "- Section Title" or "* Section Title".
var bulletLine = regexp.MustCompile(`^\s*[-*]\s*(.+)$`)

// ParseSchema turns a user-supplied outline into a custom schema. Each
// numbered or bulleted line becomes one section, in declared order; a line
// may carry a description after a colon or dash. An outline with no
// recognizable section lines is an error.
func ParseSchema(raw string) (summary.Schema, error) {
	schema := summary.Schema{Custom: true, Raw: raw}
	seen := make(map[string]int)

	for _, line := range strings.Split(raw, "\n") {
		title := ""
		if m := numberedLine.FindStringSubmatch(line); m != nil {
			title = m[1]
		} else if m := bulletLine.FindStringSubmatch(line); m != nil {
			title = m[1]
		}
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}

		desc := ""
		for _, sep := range []string{":", " - ", " — "} {
			if idx := strings.Index(title, sep); idx > 0 {
				desc = strings.TrimSpace(title[idx+len(sep):])
				title = strings.TrimSpace(title[:idx])
				break
			}
		}

		key := sectionKey(title)
		seen[key]++
		if seen[key] > 1 {
			key = fmt.Sprintf("%s_%d", key, seen[key])
		}

		schema.Sections = append(schema.Sections, summary.SectionSpec{
			Key:         key,
			Title:       title,
			Description: desc,
			Shape:       InferShape(title + " " + desc),
		})
	}

	if len(schema.Sections) == 0 {
		return summary.Schema{}, fmt.Errorf("schema outline contains no numbered or bulleted sections")
	}
	return schema, nil
}

// shapeLexicon maps section-name tokens to content shapes. First match wins;
// anything unmatched falls back to a generic text paragraph.
var shapeLexicon = []struct {
	shape    summary.SectionShape
	keywords []string
}{
	{summary.ShapeQuoteList, []string{"quote", "verbatim", "statement", "said", "voice"}},
	{summary.ShapeObject, []string{"participant", "demographic", "profile", "sample", "who"}},
	{summary.ShapeList, []string{"insight", "finding", "takeaway", "key", "recommend", "opportunit", "suggestion", "action", "next", "future", "follow", "list", "point", "theme"}},
}

// InferShape decides a declared section's content shape from its wording.
func InferShape(text string) summary.SectionShape {
	lower := strings.ToLower(text)
	for _, entry := range shapeLexicon {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.shape
			}
		}
	}
	return summary.ShapeText
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func sectionKey(title string) string {
	key := nonAlnum.ReplaceAllString(strings.ToLower(title), "_")
	return strings.Trim(key, "_")
}
