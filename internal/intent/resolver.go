package intent

import (
	_ "embed"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Kind string

const (
	KindNone         Kind = "none"
	KindGreeting     Kind = "greeting"
	KindBalance      Kind = "balance"
	KindTransactions Kind = "transactions"
	KindLoans        Kind = "loans"
	KindComplaint    Kind = "complaint"
	KindThanks       Kind = "thanks"
	KindATM          Kind = "atm"
	KindRates        Kind = "rates"
)

// DateLayout is how dates appear in replies, e.g. "20 Feb 2025".
const DateLayout = "02 Jan 2006"

// TicketPrefix precedes the five digit complaint number.
const TicketPrefix = "RBB-COMP-2025-"

//go:embed rules.yaml
var defaultRules []byte

type RuleSpec struct {
	Intent   string   `yaml:"intent"`
	Pattern  string   `yaml:"pattern"`
	Keywords []string `yaml:"keywords"`
	Reply    string   `yaml:"reply"`
}

type Spec struct {
	Rules []RuleSpec `yaml:"rules"`
}

// DefaultSpec returns the built-in rule set.
func DefaultSpec() (Spec, error) {
	return parseSpec(defaultRules)
}

// LoadSpec reads a rule set from a YAML file.
func LoadSpec(path string) (Spec, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, err
	}
	return parseSpec(b)
}

func parseSpec(b []byte) (Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return Spec{}, fmt.Errorf("parse rules: %w", err)
	}
	if len(spec.Rules) == 0 {
		return Spec{}, fmt.Errorf("parse rules: no rules defined")
	}
	return spec, nil
}

type rule struct {
	kind     Kind
	pattern  *regexp.Regexp
	keywords []string
	reply    *template.Template
}

func (r rule) matches(m string) bool {
	if r.pattern != nil && r.pattern.MatchString(m) {
		return true
	}
	return containsAny(m, r.keywords)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// Match is a successful local resolution.
type Match struct {
	Intent Kind
	Reply  string
}

// Resolver answers utterances from an ordered rule list. It is safe for
// concurrent use.
type Resolver struct {
	rules []rule
	now   func() time.Time
	log   zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Resolver)

// WithRand sets the source for complaint ticket numbers.
func WithRand(r *rand.Rand) Option { return func(res *Resolver) { res.rng = r } }

func WithClock(now func() time.Time) Option { return func(res *Resolver) { res.now = now } }

func WithLogger(l zerolog.Logger) Option { return func(res *Resolver) { res.log = l } }

func NewResolver(spec Spec, opts ...Option) (*Resolver, error) {
	res := &Resolver{now: time.Now, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(res)
	}
	if res.rng == nil {
		seed := uint64(time.Now().UnixNano())
		res.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}

	funcs := template.FuncMap{"bar": bar}
	for i, rs := range spec.Rules {
		if rs.Intent == "" {
			return nil, fmt.Errorf("rule %d: missing intent", i)
		}
		if rs.Pattern == "" && len(rs.Keywords) == 0 {
			return nil, fmt.Errorf("rule %q: needs a pattern or keywords", rs.Intent)
		}
		r := rule{kind: Kind(rs.Intent)}
		if rs.Pattern != "" {
			re, err := regexp.Compile(rs.Pattern)
			if err != nil {
				return nil, fmt.Errorf("rule %q: %w", rs.Intent, err)
			}
			r.pattern = re
		}
		for _, k := range rs.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				r.keywords = append(r.keywords, k)
			}
		}
		if r.pattern == nil && len(r.keywords) == 0 {
			return nil, fmt.Errorf("rule %q: keywords are all blank", rs.Intent)
		}
		tpl, err := template.New(rs.Intent).Funcs(funcs).Option("missingkey=error").Parse(rs.Reply)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", rs.Intent, err)
		}
		r.reply = tpl
		res.rules = append(res.rules, r)
	}
	return res, nil
}

// NewDefault builds a resolver over the built-in rule set.
func NewDefault(opts ...Option) (*Resolver, error) {
	spec, err := DefaultSpec()
	if err != nil {
		return nil, err
	}
	return NewResolver(spec, opts...)
}

// Match returns the reply of the first rule matching the normalised
// utterance.
func (r *Resolver) Match(utterance string) (Match, bool) {
	m := normalize(utterance)
	if m == "" {
		return Match{}, false
	}
	for _, rl := range r.rules {
		if !rl.matches(m) {
			continue
		}
		var b strings.Builder
		if err := rl.reply.Execute(&b, replyData{r: r, now: r.now()}); err != nil {
			r.log.Error().Err(err).Str("intent", string(rl.kind)).Msg("render reply")
			return Match{}, false
		}
		return Match{Intent: rl.kind, Reply: b.String()}, true
	}
	return Match{}, false
}

// Resolve implements chat.Resolver.
func (r *Resolver) Resolve(utterance string) (string, bool) {
	m, ok := r.Match(utterance)
	return m.Reply, ok
}

// Classify reports which rule would answer without rendering the reply.
func (r *Resolver) Classify(utterance string) Kind {
	m := normalize(utterance)
	if m == "" {
		return KindNone
	}
	for _, rl := range r.rules {
		if rl.matches(m) {
			return rl.kind
		}
	}
	return KindNone
}

func (r *Resolver) ticket() string {
	r.mu.Lock()
	n := 10000 + r.rng.IntN(90000)
	r.mu.Unlock()
	return fmt.Sprintf("%s%d", TicketPrefix, n)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// replyData is the template context. Ticket is a method so a number is
// only drawn for replies that show one.
type replyData struct {
	r   *Resolver
	now time.Time
}

func (d replyData) Today() string  { return d.now.Format(DateLayout) }
func (d replyData) Ticket() string { return d.r.ticket() }

const barCells = 10

// bar draws a ten cell progress bar for a percentage.
func bar(percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(math.Round(float64(percent) * barCells / 100))
	return strings.Repeat("█", filled) + strings.Repeat("░", barCells-filled)
}
