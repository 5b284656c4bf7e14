package usecases

import (
	"strings"
	"unicode"

	"dream_weaver/internal/models"
)

// ParseStorySparks splits a story-spark reply into its suggestions. Numbered items
// ("1.", "2)", "**3.**") start a suggestion and following lines continue it. Bullets
// are used when nothing is numbered. Text with no list at all is one suggestion.
func ParseStorySparks(response string) []string {
	lines := strings.Split(strings.ReplaceAll(response, "\r\n", "\n"), "\n")

	if sparks := collectItems(lines, numberedItem); len(sparks) > 0 {
		return sparks
	}
	if sparks := collectItems(lines, bulletItem); len(sparks) > 0 {
		return sparks
	}

	text := strings.TrimSpace(response)
	if text == "" {
		return []string{}
	}
	return []string{text}
}

// VisualizerKeywords describes an entry for image generation: its tags, or the title
// when it has none.
func VisualizerKeywords(entry models.JournalEntry) string {
	tags := make([]string, 0, len(entry.Tags))
	for _, tag := range entry.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return strings.TrimSpace(entry.Title)
	}
	return strings.Join(tags, ", ")
}

func collectItems(lines []string, start func(string) (string, bool)) []string {
	var items []string
	current := -1

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if body, ok := start(line); ok {
			items = append(items, body)
			current = len(items) - 1
			continue
		}

		// intro text before the first item is dropped
		if current >= 0 {
			items[current] = strings.TrimSpace(items[current] + " " + line)
		}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func numberedItem(line string) (string, bool) {
	s := strings.TrimLeft(line, "#* ")

	digits := 0
	for digits < len(s) && unicode.IsDigit(rune(s[digits])) {
		digits++
	}
	if digits == 0 || digits >= len(s) {
		return "", false
	}
	if s[digits] != '.' && s[digits] != ')' {
		return "", false
	}

	body := strings.TrimLeft(s[digits+1:], "* ")
	return strings.TrimSpace(body), true
}

func bulletItem(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker)), true
		}
	}
	return "", false
}
