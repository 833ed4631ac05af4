package algebra

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ============================================================
// Vocabulary
// ============================================================

// functions maps each known function to its minimum and maximum arity.
var functions = map[string][2]int{
	"sqrt": {1, 1},
	"sin":  {1, 1},
	"cos":  {1, 1},
	"tan":  {1, 1},
	"log":  {1, 2},
	"ln":   {1, 1},
	"exp":  {1, 1},
	"abs":  {1, 1},
}

func isFunction(name string) bool {
	_, ok := functions[name]
	return ok
}

// constants are multi-letter names the lexer never splits.
var constants = []string{"pi"}

// ============================================================
// Tokens
// ============================================================

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
	tokEq
	tokRoot
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) describe() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokNum:
		return "number " + t.text
	case tokIdent:
		return "'" + t.text + "'"
	case tokRoot:
		return "'√'"
	}
	return "'" + t.text + "'"
}

// ============================================================
// Normalizer
// ============================================================

var (
	superscripts = strings.NewReplacer("²", "^2", "³", "^3")
	mathSymbols  = strings.NewReplacer("**", "^", "×", "*", "·", "*", "÷", "/", "−", "-")
)

// Normalize folds the input to the ASCII operator set. Superscripts are
// rewritten before NFKC so that ² does not collapse into a plain 2.
func Normalize(s string) string {
	s = superscripts.Replace(s)
	s = norm.NFKC.String(s)
	s = mathSymbols.Replace(s)
	return strings.TrimSpace(s)
}

// splitAnnotation separates "expr @ annotation" at the top-level '@'.
func splitAnnotation(s string) (string, string, error) {
	depth, at := 0, -1
	for i, r := range []rune(s) {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case '@':
			if depth > 0 {
				return "", "", syntaxErr(i, "'@' inside parentheses")
			}
			if at >= 0 {
				return "", "", syntaxErr(i, "more than one '@'")
			}
			at = i
		}
	}
	if at < 0 {
		return s, "", nil
	}
	rs := []rune(s)
	return strings.TrimSpace(string(rs[:at])), strings.TrimSpace(string(rs[at+1:])), nil
}

// ============================================================
// Lexer
// ============================================================

type lexer struct {
	src   []rune
	pos   int
	names []string
	toks  []token
	depth int
	eqs   int
}

// tokenize turns normalized text into tokens with implicit multiplication
// made explicit. declared names (the solve variable and substitution keys)
// are kept whole when a run of letters is split into symbols.
func tokenize(s string, declared []string) ([]token, error) {
	l := &lexer{src: []rune(s)}
	for name := range functions {
		l.names = append(l.names, name)
	}
	l.names = append(l.names, constants...)
	for _, d := range declared {
		if len([]rune(d)) > 1 && !strings.Contains(d, "_") {
			l.names = append(l.names, d)
		}
	}
	sort.Slice(l.names, func(i, j int) bool {
		if len(l.names[i]) != len(l.names[j]) {
			return len(l.names[i]) > len(l.names[j])
		}
		return l.names[i] < l.names[j]
	})
	if err := l.run(); err != nil {
		return nil, err
	}
	l.toks = append(l.toks, token{kind: tokEOF, pos: len(l.src)})
	return insertImplicit(l.toks), nil
}

func (l *lexer) emit(kind tokenKind, text string, pos int) {
	l.toks = append(l.toks, token{kind: kind, text: text, pos: pos})
}

func (l *lexer) run() error {
	for l.pos < len(l.src) {
		r := l.src[l.pos]
		switch {
		case unicode.IsSpace(r):
			l.pos++
		case unicode.IsDigit(r) || (r == '.' && l.pos+1 < len(l.src) && unicode.IsDigit(l.src[l.pos+1])):
			if err := l.number(); err != nil {
				return err
			}
		case isIdentStart(r):
			if err := l.ident(); err != nil {
				return err
			}
		case strings.ContainsRune("+-*/^", r):
			l.emit(tokOp, string(r), l.pos)
			l.pos++
		case r == '(':
			l.depth++
			l.emit(tokLParen, "(", l.pos)
			l.pos++
		case r == ')':
			l.depth--
			if l.depth < 0 {
				return syntaxErr(l.pos, "unbalanced ')'")
			}
			l.emit(tokRParen, ")", l.pos)
			l.pos++
		case r == ',':
			l.emit(tokComma, ",", l.pos)
			l.pos++
		case r == '=':
			if l.depth > 0 {
				return syntaxErr(l.pos, "'=' inside parentheses")
			}
			l.eqs++
			if l.eqs > 1 {
				return syntaxErr(l.pos, "more than one '='")
			}
			l.emit(tokEq, "=", l.pos)
			l.pos++
		case r == '√':
			l.emit(tokRoot, "√", l.pos)
			l.pos++
		default:
			return syntaxErr(l.pos, "unexpected character %q", r)
		}
	}
	return nil
}

func (l *lexer) number() error {
	start := l.pos
	for l.pos < len(l.src) && unicode.IsDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.src) && unicode.IsDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		return syntaxErr(l.pos, "malformed number")
	}
	l.emit(tokNum, string(l.src[start:l.pos]), start)
	return nil
}

func (l *lexer) ident() error {
	start := l.pos
	hasDigit, hasUnderscore := false, false
	for l.pos < len(l.src) && (isIdentStart(l.src[l.pos]) || unicode.IsDigit(l.src[l.pos])) {
		switch {
		case unicode.IsDigit(l.src[l.pos]):
			hasDigit = true
		case l.src[l.pos] == '_':
			hasUnderscore = true
		}
		l.pos++
	}
	run := string(l.src[start:l.pos])
	if hasUnderscore {
		l.emit(tokIdent, run, start)
		return nil
	}
	if hasDigit {
		return syntaxErr(start, "ambiguous %q: write the product or power explicitly (x*2 or x^2)", run)
	}
	segs := l.segment(run)
	if l.nextIsParen() && len([]rune(run)) >= 3 && allSingle(segs) {
		return syntaxErr(start, "unknown function %q", run)
	}
	off := start
	for _, s := range segs {
		l.emit(tokIdent, s, off)
		off += len([]rune(s))
	}
	return nil
}

// segment splits a run of letters into known names, longest first, and
// single-letter symbols.
func (l *lexer) segment(run string) []string {
	rs := []rune(run)
	var out []string
	for i := 0; i < len(rs); {
		matched := string(rs[i])
		for _, name := range l.names {
			nr := []rune(name)
			if len(nr) <= len(rs)-i && string(rs[i:i+len(nr)]) == name {
				matched = name
				break
			}
		}
		out = append(out, matched)
		i += len([]rune(matched))
	}
	return out
}

func allSingle(segs []string) bool {
	for _, s := range segs {
		if len([]rune(s)) > 1 {
			return false
		}
	}
	return true
}

func (l *lexer) nextIsParen() bool {
	for i := l.pos; i < len(l.src); i++ {
		if !unicode.IsSpace(l.src[i]) {
			return l.src[i] == '('
		}
	}
	return false
}

// insertImplicit makes juxtaposition explicit: 2x, 2(x), (a)(b), (a)2,
// xy, x(y) and 2√3 all become products.
func insertImplicit(toks []token) []token {
	out := make([]token, 0, len(toks)*2)
	for i, t := range toks {
		if i > 0 && impliesMul(toks[i-1], t) {
			out = append(out, token{kind: tokOp, text: "*", pos: t.pos})
		}
		out = append(out, t)
	}
	return out
}

func impliesMul(prev, next token) bool {
	switch prev.kind {
	case tokNum, tokRParen:
	case tokIdent:
		if isFunction(prev.text) {
			return false
		}
	default:
		return false
	}
	switch next.kind {
	case tokIdent, tokLParen, tokRoot:
		return true
	case tokNum:
		return prev.kind == tokRParen
	}
	return false
}
