// Package extract turns a free-form analysis reply into the four ranking fields.
//
// Replies are expected to carry a single markdown table row:
//
//	| Firm Name | Score | Score Explanation | Dutch Ecosystem Fit & Chain Partners | Sources Details |
//
// When no such row is present the score, explanation, ecosystem fit and sources
// are salvaged from the surrounding prose with fixed keyword and pattern rules.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Fields is the structured result of parsing one reply. All four values are
// always set; missing data degrades to "" or one of the sentinel constants.
type Fields struct {
	Score          string
	Explanation    string
	EcosystemFit   string
	SourcesDetails string
}

// Tier reports which strategy produced the score.
type Tier string

const (
	TierTable    Tier = "table"
	TierFallback Tier = "fallback"
)

type scoreRule struct {
	pattern *regexp.Regexp
	group   int
}

// space matches any Unicode whitespace, including NBSP and the C0/C1 separators.
const space = `\s\v\p{Z}\x{85}\x{1c}-\x{1f}`

// scoreRules are evaluated in order against each lowercased line. Digits may be
// any Unicode decimal digit.
var scoreRules = []scoreRule{
	{pattern: regexp.MustCompile(`score[:` + space + `]*(\p{Nd}{1,3})`), group: 1},
	{pattern: regexp.MustCompile(`rating[:` + space + `]*(\p{Nd}{1,3})`), group: 1},
	{pattern: regexp.MustCompile(`(\p{Nd}{1,3})/100`), group: 1},
	{pattern: regexp.MustCompile(`(\p{Nd}{1,3})[` + space + `]*out[` + space + `]*of[` + space + `]*100`), group: 1},
	{pattern: regexp.MustCompile(`assessment[:` + space + `]*(\p{Nd}{1,3})`), group: 1},
}

// Extract parses raw into Fields. It never fails.
func Extract(raw string) Fields {
	f, _ := Analyze(raw)
	return f
}

// Analyze is Extract plus the tier that produced the result.
func Analyze(raw string) (Fields, Tier) {
	lines := strings.Split(raw, "\n")
	f := Fields{Score: ScoreNotAvailable}

	if cells, ok := firstTableRow(lines); ok {
		f.Score = cells[1]
		f.Explanation = cells[2]
		f.EcosystemFit = cells[3]
		f.SourcesDetails = cells[4]
	}
	if f.Score != ScoreNotAvailable {
		return f, TierTable
	}

	if score, ok := recoverScore(lines); ok {
		f.Score = score
	}
	if explanation, ok := recoverExplanation(lines); ok {
		f.Explanation = explanation
	}
	f.EcosystemFit = recoverEcosystemFit(lines)
	if f.SourcesDetails == "" {
		f.SourcesDetails = recoverSources(lines)
	}
	return f, TierFallback
}

// ParseTableRow splits a markdown table row into trimmed cells.
func ParseTableRow(line string) []string {
	trimmed := strings.Trim(strings.TrimSpace(line), "|")
	parts := strings.Split(trimmed, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func firstTableRow(lines []string) ([]string, bool) {
	for _, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "|") {
			continue
		}
		if len(strings.Split(line, "|")) < minTableCells {
			continue
		}
		cells := ParseTableRow(line)
		if len(cells) >= minTableCells {
			return cells, true
		}
	}
	return nil, false
}

func recoverScore(lines []string) (string, bool) {
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, rule := range scoreRules {
			m := rule.pattern.FindStringSubmatch(lower)
			if m == nil {
				continue
			}
			v, err := strconv.Atoi(asciiDigits(m[rule.group]))
			if err != nil || v < 0 || v > 100 {
				continue
			}
			return strconv.Itoa(v), true
		}
	}
	return "", false
}

// asciiDigits maps every Unicode decimal digit in s to its ASCII form.
// Decimal digits are encoded in contiguous runs of ten starting at zero.
func asciiDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r <= '9' || !unicode.Is(unicode.Nd, r) {
			return r
		}
		n := 0
		for unicode.Is(unicode.Nd, r-rune(n+1)) {
			n++
		}
		return '0' + rune(n%10)
	}, s)
}

func recoverExplanation(lines []string) (string, bool) {
	var picked []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "|") || strings.HasPrefix(line, analysisHeaderMarker) {
			continue
		}
		if utf8.RuneCountInString(line) <= minExplanationRunes {
			continue
		}
		picked = append(picked, line)
		if len(picked) >= maxExplanationLines {
			break
		}
	}
	if len(picked) == 0 {
		return "", false
	}
	return truncateWords(strings.Join(picked, " "), maxFallbackWords), true
}

func recoverEcosystemFit(lines []string) string {
	mentions := matchingLines(lines, dutchKeywords, maxEcosystemLines)
	if len(mentions) == 0 {
		return NoDutchMention
	}
	return truncateWords(strings.Join(mentions, " "), maxFallbackWords)
}

func recoverSources(lines []string) string {
	mentions := matchingLines(lines, sourceKeywords, maxSourceLines)
	if len(mentions) == 0 {
		return NoSourcesMentioned
	}
	return truncateRunes(strings.Join(mentions, " "), maxSourcesRunes)
}

// matchingLines returns up to limit trimmed lines containing any keyword,
// compared case-insensitively, in input order.
func matchingLines(lines []string, keywords []string, limit int) []string {
	var out []string
	for _, line := range lines {
		if len(out) >= limit {
			break
		}
		lower := strings.ToLower(line)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				out = append(out, strings.TrimSpace(line))
				break
			}
		}
	}
	return out
}

// truncateWords keeps s untouched unless it has more than max words, in which
// case the first max words are re-joined with single spaces.
func truncateWords(s string, max int) string {
	words := strings.Fields(s)
	if len(words) <= max {
		return s
	}
	return strings.Join(words[:max], " ") + Ellipsis
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + Ellipsis
}
