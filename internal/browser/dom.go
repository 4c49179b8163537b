package browser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// IndexAttr is stamped on every interactive element the agent may address.
	IndexAttr = "data-agent-idx"
	valueAttr = "data-agent-value"
	checkAttr = "data-agent-checked"

	// MaxElements caps how many elements are stamped per page.
	MaxElements = 400
	// DefaultTextBudget bounds the page text returned with each state.
	DefaultTextBudget = 4000
	maxLabelLength    = 120
)

// Element is one interactive element of the current page.
type Element struct {
	Index       int
	Tag         string
	Role        string
	Type        string
	Label       string
	Value       string
	Href        string
	Checked     bool
	Disabled    bool
	Placeholder string
}

// String renders the element as "[index]<tag attrs>label</tag>".
func (e Element) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%d]<%s", e.Index, e.Tag)
	for _, attr := range [][2]string{
		{"role", e.Role},
		{"type", e.Type},
		{"placeholder", e.Placeholder},
		{"value", e.Value},
		{"href", e.Href},
	} {
		if attr[1] != "" {
			fmt.Fprintf(&sb, " %s=%q", attr[0], attr[1])
		}
	}
	if e.Checked {
		sb.WriteString(" checked")
	}
	if e.Disabled {
		sb.WriteString(" disabled")
	}
	fmt.Fprintf(&sb, ">%s</%s>", e.Label, e.Tag)
	return sb.String()
}

// FormatElements renders one element per line.
func FormatElements(elements []Element) string {
	if len(elements) == 0 {
		return "(no interactive elements)"
	}
	lines := make([]string, len(elements))
	for i, el := range elements {
		lines[i] = el.String()
	}
	return strings.Join(lines, "\n")
}

// ParseSnapshot extracts the stamped elements and the visible text from a page snapshot.
// Text longer than textBudget runes is truncated.
func ParseSnapshot(html string, textBudget int) ([]Element, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var elements []Element
	doc.Find("[" + IndexAttr + "]").Each(func(_ int, s *goquery.Selection) {
		idx, err := strconv.Atoi(s.AttrOr(IndexAttr, ""))
		if err != nil {
			return
		}
		elements = append(elements, toElement(idx, s))
	})

	doc.Find("script, style, noscript, svg, template").Remove()
	text := truncate(cleanWhitespace(doc.Find("body").Text()), textBudget)

	return elements, text, nil
}

func toElement(idx int, s *goquery.Selection) Element {
	tag := goquery.NodeName(s)
	el := Element{
		Index:       idx,
		Tag:         tag,
		Role:        s.AttrOr("role", ""),
		Type:        s.AttrOr("type", ""),
		Placeholder: s.AttrOr("placeholder", ""),
		Href:        s.AttrOr("href", ""),
		Checked:     s.AttrOr(checkAttr, "") == "true",
	}
	_, el.Disabled = s.Attr("disabled")
	if s.AttrOr("aria-disabled", "") == "true" {
		el.Disabled = true
	}

	if tag == "input" || tag == "textarea" || tag == "select" {
		el.Value = s.AttrOr(valueAttr, s.AttrOr("value", ""))
	}
	if el.Type == "password" && el.Value != "" {
		el.Value = "********"
	}
	if tag == "select" {
		el.Label = selectLabel(s)
	} else {
		el.Label = elementLabel(s)
	}
	return el
}

// elementLabel picks the most descriptive text for an element.
func elementLabel(s *goquery.Selection) string {
	candidates := []string{
		s.AttrOr("aria-label", ""),
		cleanWhitespace(s.Text()),
		s.AttrOr("title", ""),
		s.AttrOr("name", ""),
		s.AttrOr("id", ""),
	}
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return truncate(strings.ReplaceAll(c, "\n", " "), maxLabelLength)
		}
	}
	return ""
}

// selectLabel lists the options of a <select> so the model can choose by value.
func selectLabel(s *goquery.Selection) string {
	var options []string
	s.Find("option").Each(func(_ int, o *goquery.Selection) {
		if text := strings.TrimSpace(o.Text()); text != "" {
			options = append(options, text)
		}
	})
	label := s.AttrOr("aria-label", s.AttrOr("name", ""))
	if len(options) == 0 {
		return label
	}
	return truncate(strings.TrimSpace(label+" options: "+strings.Join(options, " | ")), 4*maxLabelLength)
}

// cleanWhitespace normalizes whitespace in text.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
