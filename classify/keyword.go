package classify

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hupe1980/intentmesh/core"
	"github.com/hupe1980/intentmesh/logging"
)

// Extractor pulls domain parameters out of the request text. Extractors are
// best effort and never fail.
type Extractor func(text string) core.Params

// Rule decides whether a domain is implicated by a request.
type Rule struct {
	Domain core.Domain
	// Triggers are words or phrases matched case-insensitively on word
	// boundaries ("divided by" matches "Divided  by" but not "dividedby").
	Triggers []string
	// Patterns are regular expressions matched case-insensitively.
	Patterns []string
	// Extract fills the domain parameters. Nil means Params{Query: text}.
	Extract Extractor
}

type compiledRule struct {
	rule     Rule
	matchers []*regexp.Regexp
}

// earliest returns the smallest match offset of any matcher, or -1.
func (c compiledRule) earliest(text string) int {
	pos := -1
	for _, re := range c.matchers {
		loc := re.FindStringIndex(text)
		if loc != nil && (pos < 0 || loc[0] < pos) {
			pos = loc[0]
		}
	}
	return pos
}

// KeywordOptions configures a KeywordClassifier.
type KeywordOptions struct {
	// Known restricts the output to registered domains. Nil keeps every
	// matched domain.
	Known  Known
	Logger logging.Logger
}

// KeywordClassifier is the deterministic rule based classifier.
type KeywordClassifier struct {
	rules []compiledRule
	opts  KeywordOptions
}

// NewKeywordClassifier compiles rules in the given order. Rule order breaks
// ties between domains matched at the same offset.
func NewKeywordClassifier(rules []Rule, optFns ...func(o *KeywordOptions)) (*KeywordClassifier, error) {
	opts := KeywordOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrNoOp(opts.Logger)

	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if r.Domain == "" {
			return nil, fmt.Errorf("rule without domain")
		}
		cr := compiledRule{rule: r}
		for _, t := range r.Triggers {
			re, err := compileTrigger(t)
			if err != nil {
				return nil, fmt.Errorf("domain %s: trigger %q: %w", r.Domain, t, err)
			}
			if re != nil {
				cr.matchers = append(cr.matchers, re)
			}
		}
		for _, p := range r.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("domain %s: pattern %q: %w", r.Domain, p, err)
			}
			cr.matchers = append(cr.matchers, re)
		}
		compiled = append(compiled, cr)
	}
	return &KeywordClassifier{rules: compiled, opts: opts}, nil
}

// MustKeywordClassifier is like NewKeywordClassifier but panics on error.
func MustKeywordClassifier(rules []Rule, optFns ...func(o *KeywordOptions)) *KeywordClassifier {
	k, err := NewKeywordClassifier(rules, optFns...)
	if err != nil {
		panic(err)
	}
	return k
}

// compileTrigger builds a whole-word matcher. Word boundaries are only
// asserted on edges that are word characters, so symbol triggers work too.
func compileTrigger(trigger string) (*regexp.Regexp, error) {
	words := strings.Fields(trigger)
	if len(words) == 0 {
		return nil, nil
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	expr := strings.Join(quoted, `\s+`)

	first, _ := utf8.DecodeRuneInString(words[0])
	last, _ := utf8.DecodeLastRuneInString(words[len(words)-1])
	if isWordRune(first) {
		expr = `\b` + expr
	}
	if isWordRune(last) {
		expr += `\b`
	}
	return regexp.Compile("(?i)" + expr)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Classify implements Classifier.
func (k *KeywordClassifier) Classify(_ context.Context, req core.Request) core.IntentRecord {
	rec := core.NewIntentRecord()
	if req.Blank() {
		return rec
	}

	type hit struct {
		rule int
		pos  int
	}
	var hits []hit
	for i, cr := range k.rules {
		if pos := cr.earliest(req.Text); pos >= 0 {
			hits = append(hits, hit{rule: i, pos: pos})
		}
	}
	// Stable sort keeps rule order for equal offsets.
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].pos < hits[b].pos })

	for _, h := range hits {
		d := k.rules[h.rule].rule.Domain
		if rec.Has(d) {
			continue
		}
		if k.opts.Known != nil && !k.opts.Known.Has(d) {
			rec.Drop(d)
			k.opts.Logger.Warn("classify.domain_dropped", "domain", string(d), "request_id", req.ID)
			continue
		}
		rec.Add(d, k.Extract(d, req.Text))
	}
	return rec
}

// Extract runs the extractor of the first rule for d. Domains without an
// extractor get the full text as query.
func (k *KeywordClassifier) Extract(d core.Domain, text string) core.Params {
	for _, cr := range k.rules {
		if cr.rule.Domain != d || cr.rule.Extract == nil {
			continue
		}
		p := cr.rule.Extract(text)
		if p.Query == "" {
			p.Query = text
		}
		return p
	}
	return core.Params{Query: text}
}

// Domains lists the distinct rule domains in rule order.
func (k *KeywordClassifier) Domains() []core.Domain {
	seen := map[core.Domain]bool{}
	var out []core.Domain
	for _, cr := range k.rules {
		if !seen[cr.rule.Domain] {
			seen[cr.rule.Domain] = true
			out = append(out, cr.rule.Domain)
		}
	}
	return out
}

// Known returns the Known set the classifier filters against, if any.
func (k *KeywordClassifier) Known() Known { return k.opts.Known }

// Logger returns the classifier logger.
func (k *KeywordClassifier) Logger() logging.Logger { return k.opts.Logger }
