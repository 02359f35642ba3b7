package logic

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AaronLay10/SeedEngine/internal/config"
	"github.com/AaronLay10/SeedEngine/internal/item"
	"github.com/AaronLay10/SeedEngine/internal/progress"
)

// Compile turns an expression into a Predicate. Supported forms:
//   - "true", "false"
//   - capability names: "bombs", "can_attack", "fire_source", ...
//   - calls: "keys(eastern, 2)", "boss_key(gale)", "pendants(3)",
//     "maiamai(10)", "goal(sanctuary_doors)", "has(hookshot)", "count(sword, 2)"
//   - "a && b", "a || b" and parentheses; && binds tighter than ||
//
// Negation is rejected: every predicate must stay monotone in progress.
func Compile(expr string) (Predicate, error) {
	toks, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	c := &compiler{expr: expr, toks: toks}
	pred, err := c.or()
	if err != nil {
		return nil, err
	}
	if tok := c.peek(); tok.kind != tokEOF {
		return nil, c.errorf(tok, "unexpected %q", tok.text)
	}
	return pred, nil
}

// MustCompile is Compile for expressions known at build time.
func MustCompile(expr string) Predicate {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// SyntaxError reports an expression that does not compile.
type SyntaxError struct {
	Expr string
	Pos  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("logic: %s at offset %d in %q", e.Msg, e.Pos, e.Expr)
}

// Spec is the textual form of a Logic: one optional expression per tier. A
// YAML scalar sets only the normal tier.
type Spec struct {
	Normal         string `yaml:"normal,omitempty"`
	Hard           string `yaml:"hard,omitempty"`
	GlitchBasic    string `yaml:"glitch_basic,omitempty"`
	GlitchAdvanced string `yaml:"glitch_advanced,omitempty"`
	GlitchHell     string `yaml:"glitch_hell,omitempty"`
}

// UnmarshalYAML accepts either a scalar expression or a tier mapping.
func (s *Spec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&s.Normal)
	}
	type plain Spec
	return value.Decode((*plain)(s))
}

// Empty reports whether no tier has an expression.
func (s Spec) Empty() bool {
	return s == Spec{}
}

// Compile builds the Logic. An empty spec compiles to Free.
func (s Spec) Compile() (Logic, error) {
	if s.Empty() {
		return Free(), nil
	}
	var l Logic
	for mode, expr := range []string{s.Normal, s.Hard, s.GlitchBasic, s.GlitchAdvanced, s.GlitchHell} {
		if strings.TrimSpace(expr) == "" {
			continue
		}
		p, err := Compile(expr)
		if err != nil {
			return Logic{}, err
		}
		l = l.With(config.LogicMode(mode), p)
	}
	return l, nil
}

type capability func(p *progress.Progress) bool

var capabilities = map[string]capability{
	"sword":          (*progress.Progress).HasSword,
	"master_sword":   (*progress.Progress).HasMasterSword,
	"bow":            (*progress.Progress).HasBow,
	"bombs":          (*progress.Progress).HasBombs,
	"boomerang":      (*progress.Progress).HasBoomerang,
	"hookshot":       (*progress.Progress).HasHookshot,
	"hammer":         (*progress.Progress).HasHammer,
	"fire_rod":       (*progress.Progress).HasFireRod,
	"ice_rod":        (*progress.Progress).HasIceRod,
	"lamp":           (*progress.Progress).HasLamp,
	"net":            (*progress.Progress).HasNet,
	"flippers":       (*progress.Progress).HasFlippers,
	"boots":          (*progress.Progress).HasBoots,
	"glove":          (*progress.Progress).HasGlove,
	"bracelet":       (*progress.Progress).HasBracelet,
	"can_attack":     (*progress.Progress).CanAttack,
	"can_cut":        (*progress.Progress).CanCut,
	"can_hit_switch": (*progress.Progress).CanHitSwitch,
	"can_hit_far":    (*progress.Progress).CanHitFarSwitch,
	"can_merge":      (*progress.Progress).CanMerge,
	"fire_source":    (*progress.Progress).HasFireSource,
	"can_lift":       (*progress.Progress).CanLift,
	"can_swim":       (*progress.Progress).CanSwim,
	"can_dash":       (*progress.Progress).CanDash,
	"break_barrier":  (*progress.Progress).CanBreakBarrier,
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokNumber
	tokAnd
	tokOr
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokKind
	text string
	pos  int
}

func tokenize(expr string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(expr) {
		ch := expr[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n':
			i++
		case ch == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case ch == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case ch == ',':
			toks = append(toks, token{tokComma, ",", i})
			i++
		case strings.HasPrefix(expr[i:], "&&"):
			toks = append(toks, token{tokAnd, "&&", i})
			i += 2
		case strings.HasPrefix(expr[i:], "||"):
			toks = append(toks, token{tokOr, "||", i})
			i += 2
		case ch == '!':
			return nil, &SyntaxError{Expr: expr, Pos: i, Msg: "negation is not allowed"}
		case ch >= '0' && ch <= '9':
			start := i
			for i < len(expr) && expr[i] >= '0' && expr[i] <= '9' {
				i++
			}
			toks = append(toks, token{tokNumber, expr[start:i], start})
		case ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z'):
			start := i
			for i < len(expr) && isIdentChar(expr[i]) {
				i++
			}
			toks = append(toks, token{tokIdent, strings.ToLower(expr[start:i]), start})
		default:
			return nil, &SyntaxError{Expr: expr, Pos: i, Msg: fmt.Sprintf("unexpected character %q", ch)}
		}
	}
	toks = append(toks, token{tokEOF, "", len(expr)})
	return toks, nil
}

func isIdentChar(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

type compiler struct {
	expr string
	toks []token
	pos  int
}

func (c *compiler) peek() token { return c.toks[c.pos] }

func (c *compiler) next() token {
	tok := c.toks[c.pos]
	if tok.kind != tokEOF {
		c.pos++
	}
	return tok
}

func (c *compiler) errorf(tok token, format string, args ...interface{}) error {
	return &SyntaxError{Expr: c.expr, Pos: tok.pos, Msg: fmt.Sprintf(format, args...)}
}

func (c *compiler) expect(kind tokKind, what string) (token, error) {
	tok := c.next()
	if tok.kind != kind {
		if tok.kind == tokEOF {
			return tok, c.errorf(tok, "expected %s, got end of expression", what)
		}
		return tok, c.errorf(tok, "expected %s, got %q", what, tok.text)
	}
	return tok, nil
}

func (c *compiler) or() (Predicate, error) {
	left, err := c.and()
	if err != nil {
		return nil, err
	}
	terms := []Predicate{left}
	for c.peek().kind == tokOr {
		c.next()
		right, err := c.and()
		if err != nil {
			return nil, err
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return left, nil
	}
	return Any(terms...), nil
}

func (c *compiler) and() (Predicate, error) {
	left, err := c.primary()
	if err != nil {
		return nil, err
	}
	terms := []Predicate{left}
	for c.peek().kind == tokAnd {
		c.next()
		right, err := c.primary()
		if err != nil {
			return nil, err
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return left, nil
	}
	return All(terms...), nil
}

func (c *compiler) primary() (Predicate, error) {
	tok := c.next()
	switch tok.kind {
	case tokLParen:
		inner, err := c.or()
		if err != nil {
			return nil, err
		}
		if _, err := c.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case tokIdent:
		if c.peek().kind == tokLParen {
			c.next()
			return c.call(tok)
		}
		return c.ident(tok)
	case tokEOF:
		return nil, c.errorf(tok, "unexpected end of expression")
	}
	return nil, c.errorf(tok, "unexpected %q", tok.text)
}

func (c *compiler) ident(tok token) (Predicate, error) {
	switch tok.text {
	case "true":
		return always, nil
	case "false":
		return func(*progress.Progress) bool { return false }, nil
	}
	if f, ok := capabilities[tok.text]; ok {
		return Predicate(f), nil
	}
	return nil, c.errorf(tok, "unknown capability %q", tok.text)
}

// call compiles name(args...); the opening parenthesis is already consumed.
func (c *compiler) call(name token) (Predicate, error) {
	var args []token
	if c.peek().kind != tokRParen {
		for {
			tok := c.next()
			if tok.kind != tokIdent && tok.kind != tokNumber {
				return nil, c.errorf(tok, "expected argument to %s", name.text)
			}
			args = append(args, tok)
			if c.peek().kind != tokComma {
				break
			}
			c.next()
		}
	}
	if _, err := c.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}

	switch name.text {
	case "keys":
		if err := c.arity(name, args, 2); err != nil {
			return nil, err
		}
		d, err := c.dungeon(args[0])
		if err != nil {
			return nil, err
		}
		n, err := c.number(args[1])
		if err != nil {
			return nil, err
		}
		return func(p *progress.Progress) bool { return p.HasSmallKeys(d, n) }, nil
	case "boss_key":
		if err := c.arity(name, args, 1); err != nil {
			return nil, err
		}
		d, err := c.dungeon(args[0])
		if err != nil {
			return nil, err
		}
		return func(p *progress.Progress) bool { return p.HasBossKey(d) }, nil
	case "pendants", "maiamai":
		if err := c.arity(name, args, 1); err != nil {
			return nil, err
		}
		n, err := c.number(args[0])
		if err != nil {
			return nil, err
		}
		if name.text == "pendants" {
			return func(p *progress.Progress) bool { return p.HasPendants(n) }, nil
		}
		return func(p *progress.Progress) bool { return p.HasMaiamai(n) }, nil
	case "goal":
		if err := c.arity(name, args, 1); err != nil {
			return nil, err
		}
		g, err := item.ParseGoal(args[0].text)
		if err != nil {
			return nil, c.errorf(args[0], "%v", err)
		}
		return func(p *progress.Progress) bool { return p.HasGoal(g) }, nil
	case "has", "count":
		want := 1
		if name.text == "count" {
			want = 2
		}
		if err := c.arity(name, args, want); err != nil {
			return nil, err
		}
		k, err := item.ParseKind(args[0].text)
		if err != nil {
			return nil, c.errorf(args[0], "%v", err)
		}
		if d, ok := keyDungeon(k); ok {
			if k == d.BossKey() {
				return nil, c.errorf(args[0], "%s is a boss key, use boss_key(%s)", k.ID(), d)
			}
			return nil, c.errorf(args[0], "%s is a small key, use keys(%s, n)", k.ID(), d)
		}
		n := 1
		if name.text == "count" {
			if n, err = c.number(args[1]); err != nil {
				return nil, err
			}
		}
		return func(p *progress.Progress) bool { return p.Count(k) >= n }, nil
	}
	return nil, c.errorf(name, "unknown function %q", name.text)
}

// keyDungeon returns the dungeon whose small or boss key k is. Keys go
// through keys() and boss_key() so keysy applies to them.
func keyDungeon(k item.Kind) (item.Dungeon, bool) {
	for _, d := range item.Dungeons() {
		if k == d.SmallKey() || k == d.BossKey() {
			return d, true
		}
	}
	return 0, false
}

func (c *compiler) arity(name token, args []token, n int) error {
	if len(args) != n {
		return c.errorf(name, "%s takes %d argument(s), got %d", name.text, n, len(args))
	}
	return nil
}

func (c *compiler) number(tok token) (int, error) {
	if tok.kind != tokNumber {
		return 0, c.errorf(tok, "expected a number, got %q", tok.text)
	}
	n, err := strconv.Atoi(tok.text)
	if err != nil {
		return 0, c.errorf(tok, "%v", err)
	}
	return n, nil
}

func (c *compiler) dungeon(tok token) (item.Dungeon, error) {
	d, err := item.ParseDungeon(tok.text)
	if err != nil {
		return 0, c.errorf(tok, "%v", err)
	}
	return d, nil
}
