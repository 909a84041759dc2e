package extraction

import (
	"regexp"
	"strings"
)

// Noise stripped from model-reported drug names, in application order:
// release types, dosage forms, unit tokens, numeric doses, punctuation.
var drugNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:standard|extended|delayed|immediate)\s*release\b`),
	regexp.MustCompile(`\b(?:xr|er|sr|dr|ir|cr)\b`),
	regexp.MustCompile(`\b(?:oral|tablet|capsule|solution|suspension|chewable|liquid|dose|form)\b`),
	regexp.MustCompile(`\b(?:tab|cap|pill|vial|ampoule|injection|syrup)\b`),
	regexp.MustCompile(`\b(?:mg|mcg|g|ml|units|iu)\b`),
	regexp.MustCompile(`\b\d+(\.\d+)?\s*(mg|mcg|g|ml|units|iu)?\b`),
	regexp.MustCompile(`[^\w\s]`),
	regexp.MustCompile(`\s{2,}`),
}

// CleanDrugName reduces a free-form drug mention to a canonical title-cased
// name: "Lamotrigine 100mg extended release tablet" -> "Lamotrigine".
// Idempotent.
func CleanDrugName(name string) string {
	name = strings.ToLower(name)

	for _, pattern := range drugNamePatterns {
		name = pattern.ReplaceAllString(name, "")
	}

	return titleWords(strings.TrimSpace(name))
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
