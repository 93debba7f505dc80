// Package parser turns raw content files into validated proof and week
// records.
package parser

import (
	"bytes"
)

const fence = "---"

var bom = []byte("\ufeff")

// SplitFrontmatter separates the YAML block fenced by leading "---" lines
// from the body that follows it. Blank lines before the opening fence are
// skipped. The body starts right after the closing fence's line terminator
// and is returned verbatim. ok is false when either fence is missing.
func SplitFrontmatter(data []byte) (block, body []byte, ok bool) {
	start, end, bodyStart, ok := LocateFrontmatter(data)
	if !ok {
		return nil, nil, false
	}
	return data[start:end], data[bodyStart:], true
}

// LocateFrontmatter returns the byte offsets within data of the front matter
// block [start, end) and of the body.
func LocateFrontmatter(data []byte) (start, end, bodyStart int, ok bool) {
	pos := 0
	if bytes.HasPrefix(data, bom) {
		pos = len(bom)
	}
	for pos < len(data) && (data[pos] == '\r' || data[pos] == '\n') {
		pos++
	}

	first, rest, found := cutLine(data[pos:])
	if !found || !isFence(first) {
		return 0, 0, 0, false
	}
	start = pos + len(first) + 1

	end = start
	for remaining := rest; len(remaining) > 0; {
		line, next, _ := cutLine(remaining)
		if isFence(line) {
			return start, end, len(data) - len(next), true
		}
		end += len(remaining) - len(next)
		remaining = next
	}
	return 0, 0, 0, false
}

func cutLine(b []byte) (line, rest []byte, found bool) {
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		return b, nil, false
	}
	return b[:i], b[i+1:], true
}

func isFence(line []byte) bool {
	return string(bytes.TrimRight(line, " \t\r")) == fence
}
