package content

import "strings"

const fence = "```"

// ExtractFencedBlock returns the contents of the first fenced code block in
// the given model response, or the whole trimmed response when no complete
// fenced block is present. Blocks tagged ```json are preferred over
// untagged ones; a language tag on the opening fence line is dropped. An
// unterminated fence falls back to the full text.
//
// Models frequently wrap requested JSON in a fenced block despite being
// asked for bare JSON, so structured parsing runs on this function's output
// rather than the raw response.
func ExtractFencedBlock(s string) string {
	if block, ok := fencedBlockAfter(s, strings.Index(s, fence+"json")); ok {
		return block
	}
	if block, ok := fencedBlockAfter(s, strings.Index(s, fence)); ok {
		return block
	}
	return strings.TrimSpace(s)
}

// fencedBlockAfter extracts the block whose opening fence starts at the
// given index. Reports false when the index is negative or the fence is
// never closed.
func fencedBlockAfter(s string, start int) (string, bool) {
	if start < 0 {
		return "", false
	}

	rest := s[start+len(fence):]

	// Drop the info string (language tag) on the opening fence line.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		firstLine := strings.TrimSpace(rest[:nl])
		if !strings.ContainsAny(firstLine, "{[") {
			rest = rest[nl+1:]
		}
	}

	end := strings.Index(rest, fence)
	if end < 0 {
		return "", false
	}

	return strings.TrimSpace(rest[:end]), true
}
