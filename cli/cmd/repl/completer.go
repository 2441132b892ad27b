package repl

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// commands are the names accepted after the command prefix.
var commands = []string{"ast", "clear", "help", "quit", "trace"}

// keywords are offered as completions in expressions.
var keywords = []string{"func", "in", "let"}

// commandPrefix introduces a REPL command.
const commandPrefix = ":"

// isWordBoundary reports whether r delimits a word for completion purposes.
// Everything that cannot occur in an identifier is a delimiter.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t',
		'(', ')', '{', '}',
		'<', '>', '/', '=',
		',', '"', ':':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input.
// Returns an empty word when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

var (
	letName    = regexp.MustCompile(`\blet\s+(\p{L}[\p{L}_]*)`)
	funcParams = regexp.MustCompile(`\bfunc\s*\(([^)]*)\)`)
)

// boundNames returns the names introduced by let-bindings and function
// parameters written in input, in order of appearance without duplicates.
func boundNames(input string) []string {
	type found struct {
		at   int
		name string
	}

	var all []found

	for _, m := range letName.FindAllStringSubmatchIndex(input, -1) {
		all = append(all, found{m[2], input[m[2]:m[3]]})
	}

	for _, m := range funcParams.FindAllStringSubmatchIndex(input, -1) {
		for _, p := range strings.Split(input[m[2]:m[3]], ",") {
			if p = strings.TrimSpace(p); p != "" {
				all = append(all, found{m[2], p})
			}
		}
	}

	slices.SortStableFunc(all, func(a, b found) int { return a.at - b.at })

	names := make([]string, 0, len(all))
	for _, f := range all {
		if !slices.Contains(names, f.name) {
			names = append(names, f.name)
		}
	}

	return names
}

// candidates returns the completion candidates for input: command names when
// input is a command, otherwise keywords, global names, and names bound
// earlier in the input.
func (m model) candidates(input string) []string {
	if strings.HasPrefix(strings.TrimSpace(input), commandPrefix) {
		return commands
	}

	names := slices.Clone(keywords)

	for _, name := range append(m.globals.Names(), boundNames(input)...) {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}

	return names
}

// computeMatches calculates the fuzzy match results for the word at the cursor.
// It returns the matches (ranked best-first), the candidate list, and the word
// boundaries. An empty word has no matches, leaving the hint visible.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())
	if word == "" {
		return nil, nil, wordStart, wordEnd
	}

	// Names are collected without the word being typed, which would
	// otherwise always match itself.
	candidates = m.candidates(input[:wordStart] + input[wordEnd:])
	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle, highlight := suggestionStyle, matchStyle
	if selected {
		baseStyle, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	return b.String()
}
