package classify

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hupe1980/intentmesh/core"
	"github.com/hupe1980/intentmesh/internal/util"
)

const num = `(\d+(?:\.\d+)?)`

var numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ExtractNumbers returns every decimal number token in text, left to right.
func ExtractNumbers(text string) []float64 {
	var out []float64
	for _, tok := range numberRe.FindAllString(text, -1) {
		if v, err := strconv.ParseFloat(tok, 64); err == nil {
			out = append(out, v)
		}
	}
	return out
}

type opForm int

const (
	formBinary  opForm = iota // a OP b
	formPrefix                // VERB a CONJ b
	formChained               // VERB b
)

type opPattern struct {
	re   *regexp.Regexp
	form opForm
}

var opPatterns = []opPattern{
	{regexp.MustCompile(num + `\s*([-+*/×÷])\s*` + num), formBinary},
	{regexp.MustCompile(`(?i)` + num + `\s+(plus|minus|times|multiplied\s+by|divided\s+by|over)\s+` + num), formBinary},
	{regexp.MustCompile(`(?i)\b(add|sum(?:\s+of)?|subtract|multiply|divide|product\s+of|difference\s+(?:between|of)|quotient\s+of)\s+` +
		num + `\s+(and|to|by|from)\s+` + num), formPrefix},
	{regexp.MustCompile(`(?i)\b(add|plus|subtract|minus|times|divided\s+by|(?:multiply|divide)(?:\s+(?:it|that|the\s+result))?\s+by)\s+` + num), formChained},
}

// operatorFor maps an operator symbol or word to its Operator.
func operatorFor(word string) (core.Operator, bool) {
	w := strings.Join(strings.Fields(strings.ToLower(word)), " ")
	switch {
	case w == "+" || w == "plus" || strings.HasPrefix(w, "add") || strings.HasPrefix(w, "sum"):
		return core.OpAdd, true
	case w == "-" || w == "minus" || w == "subtract" || strings.HasPrefix(w, "difference"):
		return core.OpSubtract, true
	case w == "*" || w == "×" || w == "times" || strings.HasPrefix(w, "multipl") || strings.HasPrefix(w, "product"):
		return core.OpMultiply, true
	case w == "/" || w == "÷" || w == "over" || strings.HasPrefix(w, "divide") || strings.HasPrefix(w, "quotient"):
		return core.OpDivide, true
	}
	return "", false
}

type opMatch struct {
	start, end int
	op         core.Operation
}

// ExtractOperations finds arithmetic operations in text order. Overlapping
// candidates are resolved by earliest start, then longest match.
func ExtractOperations(text string) []core.Operation {
	var cands []opMatch
	for _, p := range opPatterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
			if op, ok := buildOperation(text, m, p.form); ok {
				cands = append(cands, opMatch{start: m[0], end: m[1], op: op})
			}
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].start != cands[j].start {
			return cands[i].start < cands[j].start
		}
		return cands[i].end-cands[i].start > cands[j].end-cands[j].start
	})

	var out []core.Operation
	lastEnd := 0
	for _, c := range cands {
		if c.start < lastEnd {
			continue
		}
		out = append(out, c.op)
		lastEnd = c.end
	}
	return out
}

func group(text string, m []int, i int) string {
	if m[2*i] < 0 {
		return ""
	}
	return text[m[2*i]:m[2*i+1]]
}

func buildOperation(text string, m []int, form opForm) (core.Operation, bool) {
	parse := func(i int) float64 {
		v, _ := strconv.ParseFloat(group(text, m, i), 64)
		return v
	}
	switch form {
	case formBinary:
		op, ok := operatorFor(group(text, m, 2))
		return core.Operation{Operator: op, Left: parse(1), Right: parse(3)}, ok
	case formPrefix:
		op, ok := operatorFor(group(text, m, 1))
		a, b := parse(2), parse(4)
		if op == core.OpSubtract && strings.EqualFold(group(text, m, 3), "from") {
			a, b = b, a
		}
		return core.Operation{Operator: op, Left: a, Right: b}, ok
	default:
		verb := strings.Fields(strings.ToLower(group(text, m, 1)))
		op, ok := operatorFor(verb[0])
		return core.Operation{Operator: op, Right: parse(2), Chained: true}, ok
	}
}

// ArithmeticExtractor fills numbers and operations.
func ArithmeticExtractor(text string) core.Params {
	return core.Params{
		Query:      text,
		Numbers:    ExtractNumbers(text),
		Operations: ExtractOperations(text),
	}
}

// Gazetteer is a list of known place names, matched case-insensitively.
type Gazetteer []string

// DefaultGazetteer lists the places the built-in weather table knows.
var DefaultGazetteer = Gazetteer{"india", "new york", "london", "tokyo", "paris", "berlin"}

// sorted returns lower-cased names, longest first, so "new york" wins over "new".
func (g Gazetteer) sorted() []string {
	out := make([]string, 0, len(g))
	for _, n := range g {
		if n = strings.ToLower(strings.Join(strings.Fields(n), " ")); n != "" {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

var (
	prepositionRe = regexp.MustCompile(`(?i)\b(in|for|of|at)\s+`)
	leadingWordRe = regexp.MustCompile(`^[\p{L}][\p{L}'\-]*`)
)

var locationStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "today": true, "tomorrow": true, "tonight": true,
	"now": true, "me": true, "my": true, "your": true, "our": true, "this": true, "that": true,
	"it": true, "there": true, "here": true, "general": true, "order": true, "case": true,
	"weather": true, "temperature": true, "forecast": true, "please": true, "and": true,
	"then": true, "us": true, "you": true, "advance": true, "fact": true, "all": true,
}

// LocationExtractor returns an extractor that finds place names. A place
// directly after "in", "for", "of" or "at" is taken first; gazetteer names
// win there and may span several words. Other prepositional words count when
// capitalized or after "in"/"at". Gazetteer names elsewhere are appended in
// text order.
func LocationExtractor(g Gazetteer) Extractor {
	names := g.sorted()
	scanners := make([]*regexp.Regexp, len(names))
	for i, n := range names {
		scanners[i] = regexp.MustCompile(`(?i)\b` + strings.ReplaceAll(regexp.QuoteMeta(n), " ", `\s+`) + `\b`)
	}
	return func(text string) core.Params {
		return core.Params{Query: text, Locations: extractLocations(text, names, scanners)}
	}
}

func extractLocations(text string, names []string, scanners []*regexp.Regexp) []string {
	var out []string
	seen := map[string]bool{}
	add := func(loc string) {
		key := strings.ToLower(loc)
		if !seen[key] {
			seen[key] = true
			out = append(out, loc)
		}
	}

	for _, m := range prepositionRe.FindAllStringSubmatchIndex(text, -1) {
		rest := text[m[1]:]
		if name := gazetteerPrefix(strings.ToLower(rest), names); name != "" {
			add(util.Title(name))
			continue
		}
		word := leadingWordRe.FindString(rest)
		if word == "" || locationStopWords[strings.ToLower(word)] {
			continue
		}
		prep := strings.ToLower(text[m[2]:m[3]])
		if isCapitalized(word) || prep == "in" || prep == "at" {
			add(word)
		}
	}

	type found struct {
		pos  int
		name string
	}
	var scan []found
	for i, n := range names {
		if loc := scanners[i].FindStringIndex(text); loc != nil {
			scan = append(scan, found{pos: loc[0], name: n})
		}
	}
	sort.SliceStable(scan, func(i, j int) bool { return scan[i].pos < scan[j].pos })
	for _, f := range scan {
		add(util.Title(f.name))
	}
	return out
}

// gazetteerPrefix returns the gazetteer name that s starts with, if any.
func gazetteerPrefix(s string, names []string) string {
	normalized := strings.Join(strings.Fields(s), " ")
	for _, n := range names {
		if !strings.HasPrefix(normalized, n) {
			continue
		}
		rest := normalized[len(n):]
		if rest == "" || !isWordRune([]rune(rest)[0]) {
			return n
		}
	}
	return ""
}

func isCapitalized(word string) bool {
	r := []rune(word)
	return len(r) > 0 && strings.ToUpper(string(r[0])) == string(r[0])
}

var dateFieldRe = regexp.MustCompile(`(?i)\b(day|weekday|month|date|time|year)\b`)

// ExtractDateFields lists the requested datetime facets in order of mention.
// "weekday" counts as "day"; no mention means "date".
func ExtractDateFields(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range dateFieldRe.FindAllString(text, -1) {
		f := strings.ToLower(m)
		if f == "weekday" {
			f = "day"
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		out = []string{"date"}
	}
	return out
}

// DateTimeExtractor fills the requested datetime fields.
func DateTimeExtractor(text string) core.Params {
	return core.Params{Query: text, Fields: ExtractDateFields(text)}
}
