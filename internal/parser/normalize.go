package parser

import "strings"

// Normalized is a message split into a header line and candidate leg lines.
type Normalized struct {
	Header string
	Body   []string
}

// decorGlyphs are emoji used purely as visual decoration by the feed.
// Direction markers (the buy/sell circles) and currency symbols are
// semantic and must survive normalization.
var decorGlyphs = []string{
	"🔶", "🔷", "📈", "📉", "📖", "🏷️", "🏷", "🐂", "🐮", "🐻", "🚨", "💰", "🎯", "⚡", "🔥", "👀",
}

// Normalize strips markdown emphasis and decorative glyphs, collapses
// whitespace and splits the message into header and body lines.
//
// The header is the first non-empty line that ends with a colon and is not
// itself a leg line. If no such line exists the header is empty and every
// line is treated as a leg candidate.
func Normalize(text string) Normalized {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	for _, g := range decorGlyphs {
		text = strings.ReplaceAll(text, g, " ")
	}

	var n Normalized
	for _, raw := range strings.Split(text, "\n") {
		line := strings.Join(strings.Fields(raw), " ")
		if line == "" {
			continue
		}
		if n.Header == "" && len(n.Body) == 0 && strings.HasSuffix(line, ":") && !isLegLine(line) {
			n.Header = strings.TrimSuffix(line, ":")
			continue
		}
		n.Body = append(n.Body, line)
	}
	return n
}

// isLegLine reports whether a line starts a leg (direction marker present).
func isLegLine(line string) bool {
	_, ok := directionOf(line)
	return ok
}
