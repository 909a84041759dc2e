package report

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	htmlProbe       = regexp.MustCompile(`(?i)<\s*(html|body|div|p|table|br)\b`)
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	blankRuns       = regexp.MustCompile(`\n{3,}`)
)

// SanitizeUpload converts an uploaded report body to plain text. HTML exports
// of LTM reports get their markup stripped; plain-text uploads pass through
// with whitespace normalized. Line breaks are preserved because the
// segmenter and chunker both key on them.
func SanitizeUpload(body string) string {
	if htmlProbe.MatchString(body) {
		if text, ok := stripHTML(body); ok {
			body = text
		}
	}
	return normalizeWhitespace(body)
}

func stripHTML(html string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}

	doc.Find("script, style, nav, footer, header, aside").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	var lines []string
	doc.Find("body p, body div, body li, body td, body h1, body h2, body h3").Each(func(i int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" && s.Children().Length() == 0 {
			lines = append(lines, t)
		}
	})

	if len(lines) == 0 {
		// fallback for documents with no block structure
		text := strings.TrimSpace(doc.Find("body").Text())
		if text == "" {
			return "", false
		}
		return text, true
	}

	return strings.Join(lines, "\n"), true
}

func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
