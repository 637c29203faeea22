package transcription

import (
	"regexp"
	"strings"
)

var (
	// Timestamp markers like [00:00:00.000 --> 00:00:01.500] in executable
	// output. The hours part is optional; some ports print mm:ss only.
	timestampPattern = regexp.MustCompile(`\[(?:\d{2}:)?\d{2}:\d{2}\.\d{3}\s*-->\s*(?:\d{2}:)?\d{2}:\d{2}\.\d{3}\]`)

	// Non-speech markers the models emit for background sounds.
	bracketNoisePattern = regexp.MustCompile(`\[(?i)(?:MUSIC|APPLAUSE|LAUGHTER|INAUDIBLE|NOISE|CROSSTALK|SILENCE|BLANK_AUDIO)\]`)
	parenNoisePattern   = regexp.MustCompile(`\([^)]*(?i)(music|noise|applause|laughter)[^)]*\)`)

	spacePattern = regexp.MustCompile(`\s+`)
)

// isProgressLine identifies executable output lines that carry progress or
// diagnostic information rather than transcribed text.
func isProgressLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}

	return strings.HasPrefix(trimmed, "whisper_") ||
		strings.HasPrefix(trimmed, "system_info:") ||
		strings.HasPrefix(trimmed, "main:") ||
		strings.Contains(trimmed, "progress =")
}

// cleanOutputLine strips timestamps and noise markers from one line of
// executable output. An empty return means the line held no speech.
func cleanOutputLine(line string) string {
	line = timestampPattern.ReplaceAllString(line, "")
	line = bracketNoisePattern.ReplaceAllString(line, "")

	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
		return ""
	}

	return line
}

// normalizeText cleans up a finished transcription: noise markers removed,
// whitespace collapsed, stray punctuation spacing fixed, first letter
// capitalized.
func normalizeText(text string) string {
	if text == "" {
		return ""
	}

	text = parenNoisePattern.ReplaceAllString(text, "")
	text = bracketNoisePattern.ReplaceAllString(text, "")
	text = spacePattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	text = strings.ReplaceAll(text, " .", ".")
	text = strings.ReplaceAll(text, " ,", ",")
	text = strings.ReplaceAll(text, " ?", "?")
	text = strings.ReplaceAll(text, " !", "!")

	if len(text) > 0 {
		text = strings.ToUpper(text[:1]) + text[1:]
	}

	return strings.TrimSpace(text)
}
