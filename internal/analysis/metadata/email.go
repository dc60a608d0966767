package metadata

import (
	"strings"

	"github.com/archivelab/papertrail/internal/core/domain"
)

// emailHeaderWindow is how far into the text headers are looked for.
// Real email headers sit at the top; scanning further just picks up
// quoted replies.
const emailHeaderWindow = 2000

// ExtractEmail lifts From/To/Subject/Date headers from the start of
// email-like text. Returns nil when no header is present.
func ExtractEmail(text string) *domain.EmailMetadata {
	window := text
	if len(window) > emailHeaderWindow {
		window = window[:emailHeaderWindow]
	}

	meta := &domain.EmailMetadata{
		From:    headerValue(window, "From"),
		To:      headerValue(window, "To"),
		Subject: headerValue(window, "Subject"),
		Date:    headerValue(window, "Date"),
	}
	if meta.Date == "" {
		meta.Date = headerValue(window, "Sent")
	}

	if meta.From == "" && meta.To == "" && meta.Subject == "" && meta.Date == "" {
		return nil
	}
	return meta
}

// headerValue finds "Name: value" at the start of a line and returns
// the value up to the end of that line, trimmed. Multi-line header
// folding is not unwrapped; OCR output rarely preserves it anyway.
func headerValue(window, name string) string {
	prefix := name + ":"
	for _, line := range strings.Split(window, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) <= len(prefix) {
			continue
		}
		if !strings.EqualFold(trimmed[:len(prefix)], prefix) {
			continue
		}
		return strings.TrimSpace(trimmed[len(prefix):])
	}
	return ""
}
