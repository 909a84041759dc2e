package retrieval

import (
	"regexp"
	"strings"
)

var (
	paragraphBoundary = regexp.MustCompile(`\n\s*\n`)
	typeSectionMarker = regexp.MustCompile(`Type\s+\d+:`)
)

// Headers that repeat on every page of an LTM report and carry no clinical
// content. Matched case-insensitively against the start of a paragraph.
var boilerplatePrefixes = []string{
	"page ",
	"patient name",
	"medical record",
	"date of birth",
	"long-term monitoring",
	"continued on next page",
	"confidential",
}

// Chunk splits document text into retrieval units: paragraphs on blank-line
// boundaries, "Type N:" event sections re-split so each keeps its own label,
// boilerplate and near-empty paragraphs dropped, overlong paragraphs windowed
// into fixed-size word spans, duplicates removed (first occurrence kept).
func Chunk(text string, wordLimit, overlap int) []string {
	if wordLimit <= 0 {
		wordLimit = 150
	}

	var units []string
	for _, para := range paragraphBoundary.Split(text, -1) {
		for _, unit := range splitTypeSections(para) {
			unit = strings.TrimSpace(unit)
			if unit == "" {
				continue
			}
			units = append(units, unit)
		}
	}

	var kept []string
	for _, unit := range units {
		words := strings.Fields(unit)
		if len(words) <= 3 || isBoilerplate(unit) {
			continue
		}

		if len(words) > wordLimit {
			kept = append(kept, windowWords(words, wordLimit, overlap)...)
		} else {
			kept = append(kept, unit)
		}
	}

	return dedupe(kept)
}

// splitTypeSections breaks a paragraph that concatenates several "Type N:"
// seizure-classification sections into one unit per section, each starting
// with its own label. Paragraphs with at most one marker pass through.
func splitTypeSections(para string) []string {
	markers := typeSectionMarker.FindAllStringIndex(para, -1)
	if len(markers) < 2 {
		return []string{para}
	}

	var sections []string
	if lead := strings.TrimSpace(para[:markers[0][0]]); lead != "" {
		sections = append(sections, lead)
	}

	for i, m := range markers {
		end := len(para)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		sections = append(sections, para[m[0]:end])
	}

	return sections
}

func isBoilerplate(para string) bool {
	lower := strings.ToLower(para)
	for _, prefix := range boilerplatePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

func windowWords(words []string, size, overlap int) []string {
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	step := size - overlap

	var windows []string
	for start := 0; start < len(words); start += step {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		windows = append(windows, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return windows
}

func dedupe(units []string) []string {
	seen := make(map[string]struct{}, len(units))
	out := units[:0]
	for _, u := range units {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
