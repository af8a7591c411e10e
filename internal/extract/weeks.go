// Package extract contains pure text utilities that locate week-indexed
// sections inside generated markdown documents. Model output is not
// reliably well-formed, so every operation carries ordered fallbacks
// instead of assuming a single shape.
package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const defaultTopic = "General Topic"

var (
	digitsRe     = regexp.MustCompile(`\d+`)
	weekNumberRe = regexp.MustCompile(`(?i)\bweek\s*(\d+)\b`)
	bareNumberRe = regexp.MustCompile(`\b(\d{1,2})\b`)
)

// NormalizeWeek reduces a week argument to its digits, so "Week 3",
// "3" and "week-3" all address the same row. Returns "" when the
// argument carries no digits.
func NormalizeWeek(week string) string {
	return digitsRe.FindString(week)
}

// WeekTopic returns the topic text for the given week of a scheme of
// work. Lookup order: the second cell of a table row whose first cell is
// the week number, then the trailing text of any line mentioning the
// week number, then a "TOPIC:" marker line, and finally the literal
// "General Topic". The fallback order tolerates inconsistent
// model-generated markdown and must stay as is.
func WeekTopic(schemeText, week string) string {
	w := NormalizeWeek(week)
	if w == "" {
		return defaultTopic
	}

	lines := strings.Split(schemeText, "\n")

	if topic := topicFromTableRow(lines, w); topic != "" {
		return topic
	}
	if topic := topicFromWeekLine(lines, w); topic != "" {
		return topic
	}
	if topic := topicFromMarker(lines); topic != "" {
		return topic
	}
	return defaultTopic
}

func topicFromTableRow(lines []string, week string) string {
	for _, line := range lines {
		if !strings.Contains(line, "|") {
			continue
		}
		cells := splitCells(line)
		if len(cells) >= 2 && cells[0] == week {
			return cells[1]
		}
	}
	return ""
}

func topicFromWeekLine(lines []string, week string) string {
	re := regexp.MustCompile(`(?i)\bweek\s*` + week + `\b|\b` + week + `\b`)
	for _, line := range lines {
		if isSeparatorRow(line) {
			continue
		}
		loc := re.FindStringIndex(line)
		if loc == nil {
			continue
		}
		rest := line[loc[1]:]
		rest = strings.NewReplacer("|", " ", "-", " ").Replace(rest)
		rest = strings.TrimLeft(rest, ":. \t")
		rest = strings.TrimSpace(rest)
		if rest != "" {
			return rest
		}
	}
	return ""
}

func topicFromMarker(lines []string) string {
	for _, line := range lines {
		upper := strings.ToUpper(line)
		idx := strings.Index(upper, "TOPIC:")
		if idx < 0 {
			continue
		}
		rest := strings.TrimSpace(line[idx+len("TOPIC:"):])
		if rest != "" {
			return rest
		}
	}
	return ""
}

// WeekContent returns the slice of doc starting at the "WEEK {week}"
// heading (inclusive) and ending just before the next "WEEK" heading.
// Returns "" when the week heading is absent; returns the rest of the
// document when the week is the last one.
func WeekContent(doc, week string) string {
	w := NormalizeWeek(week)
	if w == "" {
		return ""
	}

	headingRe := regexp.MustCompile(`(?i)\bweek\s+` + w + `\b`)
	start := headingRe.FindStringIndex(doc)
	if start == nil {
		return ""
	}

	nextRe := regexp.MustCompile(`(?i)\bweek\s+\d+\b`)
	next := nextRe.FindStringIndex(doc[start[1]:])
	if next == nil {
		return doc[start[0]:]
	}
	return doc[start[0] : start[1]+next[0]]
}

// SchemeWeeks returns the deduplicated, numerically sorted week numbers
// found in a scheme of work. Table rows with a numeric first cell are
// preferred; failing that, "week N" mentions and then bare small numbers
// are scanned. At least ["1"] is always returned so downstream stages
// can address a week.
func SchemeWeeks(schemeText string) []string {
	seen := make(map[int]bool)

	for _, line := range strings.Split(schemeText, "\n") {
		if !strings.Contains(line, "|") {
			continue
		}
		cells := splitCells(line)
		if len(cells) >= 2 {
			if n, err := strconv.Atoi(cells[0]); err == nil {
				seen[n] = true
			}
		}
	}

	if len(seen) == 0 {
		for _, m := range weekNumberRe.FindAllStringSubmatch(schemeText, -1) {
			if n, err := strconv.Atoi(m[1]); err == nil {
				seen[n] = true
			}
		}
	}
	if len(seen) == 0 {
		for _, m := range bareNumberRe.FindAllStringSubmatch(schemeText, -1) {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				seen[n] = true
			}
		}
	}
	if len(seen) == 0 {
		return []string{"1"}
	}

	nums := make([]int, 0, len(seen))
	for n := range seen {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	weeks := make([]string, len(nums))
	for i, n := range nums {
		weeks[i] = strconv.Itoa(n)
	}
	return weeks
}

// splitCells splits a markdown table row into trimmed, non-empty cells.
func splitCells(line string) []string {
	parts := strings.Split(line, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			cells = append(cells, p)
		}
	}
	return cells
}

// isSeparatorRow reports whether a line is a markdown table alignment
// row like "|---|:---:|".
func isSeparatorRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	for _, r := range trimmed {
		switch r {
		case '|', '-', ':', ' ', '\t':
		default:
			return false
		}
	}
	return true
}
