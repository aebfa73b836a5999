// Package extractor turns free-form text into normalized links: it decodes the
// input blob, finds URL-shaped substrings and normalizes each into a Link.
package extractor

import (
	"iter"
	"strings"
	"unicode"
)

// Extract yields every URL-shaped substring of line in order of appearance.
// A candidate ends at whitespace or where the next scheme starts, so links
// glued together by markup ("https://a](https://b") come out separately. A
// scheme right after '=', '?', '&', '%' or '/' is a nested URL such as a share
// or redirect target and stays inside its link. Duplicates are preserved.
func Extract(line string) iter.Seq[Candidate] {
	return extractLine(line, -1)
}

// ExtractAll yields the candidates of every line, tagging each with its line index.
func ExtractAll(lines []string) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for n, line := range lines {
			for c := range extractLine(line, n) {
				if !yield(c) {
					return
				}
			}
		}
	}
}

func extractLine(line string, lineNum int) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		locs := schemePattern.FindAllStringIndex(line, -1)
		next := 0

		for i, loc := range locs {
			if loc[0] < next {
				continue
			}

			end := len(line)
			for _, l := range locs[i+1:] {
				if startsCandidate(line, l[0]) {
					end = l[0]
					break
				}
			}

			if ws := strings.IndexFunc(line[loc[0]:end], unicode.IsSpace); ws >= 0 {
				end = loc[0] + ws
			}

			next = end
			if end == loc[1] {
				continue
			}

			if !yield(Candidate{Text: line[loc[0]:end], Line: lineNum}) {
				return
			}
		}
	}
}

// startsCandidate reports whether the scheme at pos opens a new candidate
// rather than continuing the current one as a nested URL. Schemes following a
// query or path delimiter belong to the enclosing link.
func startsCandidate(line string, pos int) bool {
	if pos == 0 {
		return true
	}

	return !strings.ContainsRune(nestedDelims, rune(line[pos-1]))
}

// Links extracts and normalizes every link in lines, skipping candidates that
// do not normalize.
func Links(lines []string) iter.Seq2[Candidate, Link] {
	return func(yield func(Candidate, Link) bool) {
		for c := range ExtractAll(lines) {
			link, ok := Normalize(c.Text)
			if !ok {
				continue
			}

			if !yield(c, link) {
				return
			}
		}
	}
}
