package parser

import (
	"regexp"
	"strings"

	"confirm.durgadawaghar.com/internal/extractor"
)

// A separator line is three or more dashes or equals signs and nothing else
var separatorPattern = regexp.MustCompile(`^(?:-{3,}|={3,})$`)

// SplitMessages splits an export of several messages into individual
// messages. Messages are separated by separator lines; empty messages are
// dropped. Line endings inside a message are normalized to "\n".
func SplitMessages(text string) []string {
	var messages []string
	var current []string

	flush := func() {
		msg := strings.TrimSpace(strings.Join(current, "\n"))
		if msg != "" {
			messages = append(messages, msg)
		}
		current = nil
	}

	for _, line := range extractor.SplitLines(text) {
		if separatorPattern.MatchString(line) {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return messages
}

// ParseBatch inspects every message of a multi-message export
func ParseBatch(text string) []Report {
	messages := SplitMessages(text)
	reports := make([]Report, len(messages))
	for i, msg := range messages {
		reports[i] = Inspect(msg)
	}
	return reports
}
