package molecule

import (
	"fmt"
	"strings"

	"github.com/turtacn/fragvocab/pkg/errors"
)

// ParseOption customises ParseSMILES.
type ParseOption func(*parseOptions)

type parseOptions struct {
	sanitize bool
}

// WithoutSanitize skips the valence and kekulization checks. The graph is
// still built and implicit hydrogens are assigned where possible.
func WithoutSanitize() ParseOption {
	return func(o *parseOptions) { o.sanitize = false }
}

type ringOpening struct {
	atom  int
	order BondOrder
	set   bool
}

type smilesParser struct {
	src     string
	pos     int
	b       *Builder
	prev    int
	pending BondOrder
	hasBond bool
	stack   []int
	rings   map[int]ringOpening
}

// ParseSMILES reads a Daylight SMILES string. Stereo markers are accepted and
// discarded. By default the result is sanitized: every atom must respect its
// allowed valences and aromatic systems must admit a Kekulé structure.
func ParseSMILES(smiles string, opts ...ParseOption) (*Molecule, error) {
	o := parseOptions{sanitize: true}
	for _, opt := range opts {
		opt(&o)
	}

	p := &smilesParser{
		src:   strings.TrimSpace(smiles),
		b:     NewBuilder(),
		prev:  -1,
		rings: make(map[int]ringOpening),
	}
	if err := p.parse(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMoleculeInvalidSMILES, "invalid SMILES").WithDetail(smiles)
	}
	m := p.b.Build()
	if o.sanitize {
		if err := Sanitize(m); err != nil {
			return nil, errors.Wrap(err, errors.CodeUnknown, "sanitization failed").WithDetail(smiles)
		}
	}
	return m, nil
}

// MustParseSMILES is ParseSMILES that panics on error. Intended for tests and
// package-level fixtures.
func MustParseSMILES(smiles string, opts ...ParseOption) *Molecule {
	m, err := ParseSMILES(smiles, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

func (p *smilesParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("position %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *smilesParser) parse() error {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.errorf("branch without a preceding atom")
			}
			p.stack = append(p.stack, p.prev)
			p.pos++
		case c == ')':
			if len(p.stack) == 0 {
				return p.errorf("unbalanced ')'")
			}
			if p.hasBond {
				return p.errorf("bond symbol before ')'")
			}
			p.prev = p.stack[len(p.stack)-1]
			p.stack = p.stack[:len(p.stack)-1]
			p.pos++
		case c == '.':
			if p.hasBond {
				return p.errorf("bond symbol before '.'")
			}
			p.prev = -1
			p.pos++
		case strings.IndexByte("-=#$:/\\", c) >= 0:
			if p.hasBond {
				return p.errorf("consecutive bond symbols")
			}
			p.pending = bondFromSymbol(c)
			p.hasBond = true
			p.pos++
		case c >= '0' && c <= '9' || c == '%':
			if err := p.ringClosure(); err != nil {
				return err
			}
		case c == '[':
			a, err := p.bracketAtom()
			if err != nil {
				return err
			}
			if err := p.attach(a); err != nil {
				return err
			}
		default:
			a, err := p.organicAtom()
			if err != nil {
				return err
			}
			if err := p.attach(a); err != nil {
				return err
			}
		}
	}
	if len(p.stack) > 0 {
		return p.errorf("unclosed branch")
	}
	if p.hasBond {
		return p.errorf("dangling bond symbol")
	}
	if len(p.rings) > 0 {
		for d := range p.rings {
			return p.errorf("unclosed ring bond %d", d)
		}
	}
	return nil
}

func bondFromSymbol(c byte) BondOrder {
	switch c {
	case '=':
		return BondDouble
	case '#':
		return BondTriple
	case '$':
		return BondQuadruple
	case ':':
		return BondAromatic
	default:
		return BondSingle
	}
}

func (p *smilesParser) defaultOrder(a, b int) BondOrder {
	if p.b.Atom(a).Aromatic && p.b.Atom(b).Aromatic {
		return BondAromatic
	}
	return BondSingle
}

func (p *smilesParser) attach(a Atom) error {
	idx := p.b.AddAtom(a)
	if p.prev >= 0 {
		order := p.pending
		if !p.hasBond {
			order = p.defaultOrder(p.prev, idx)
		}
		if _, err := p.b.AddBond(p.prev, idx, order); err != nil {
			return err
		}
	} else if p.hasBond {
		return p.errorf("bond symbol without a preceding atom")
	}
	p.prev = idx
	p.hasBond = false
	p.pending = BondUnspecified
	return nil
}

func (p *smilesParser) ringClosure() error {
	if p.prev < 0 {
		return p.errorf("ring bond without a preceding atom")
	}
	var digit int
	if p.src[p.pos] == '%' {
		if p.pos+2 >= len(p.src) || !isDigit(p.src[p.pos+1]) || !isDigit(p.src[p.pos+2]) {
			return p.errorf("malformed %%nn ring bond")
		}
		digit = int(p.src[p.pos+1]-'0')*10 + int(p.src[p.pos+2]-'0')
		p.pos += 3
	} else {
		digit = int(p.src[p.pos] - '0')
		p.pos++
	}

	open, ok := p.rings[digit]
	if !ok {
		p.rings[digit] = ringOpening{atom: p.prev, order: p.pending, set: p.hasBond}
		p.hasBond = false
		p.pending = BondUnspecified
		return nil
	}
	delete(p.rings, digit)

	order := p.defaultOrder(open.atom, p.prev)
	switch {
	case open.set && p.hasBond && open.order != p.pending:
		return p.errorf("conflicting bond symbols on ring bond %d", digit)
	case open.set:
		order = open.order
	case p.hasBond:
		order = p.pending
	}
	if _, err := p.b.AddBond(open.atom, p.prev, order); err != nil {
		return p.errorf("ring bond %d: %v", digit, err)
	}
	p.hasBond = false
	p.pending = BondUnspecified
	return nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (p *smilesParser) organicAtom() (Atom, error) {
	c := p.src[p.pos]
	if c == '*' {
		p.pos++
		return Atom{AtomicNum: 0}, nil
	}
	if p.pos+1 < len(p.src) {
		two := p.src[p.pos : p.pos+2]
		if two == "Cl" || two == "Br" {
			p.pos += 2
			z, _ := AtomicNumber(two)
			return Atom{AtomicNum: z}, nil
		}
	}
	switch c {
	case 'B', 'C', 'N', 'O', 'P', 'S', 'F', 'I':
		p.pos++
		z, _ := AtomicNumber(string(c))
		return Atom{AtomicNum: z}, nil
	case 'b', 'c', 'n', 'o', 'p', 's':
		p.pos++
		z, _ := AtomicNumber(strings.ToUpper(string(c)))
		return Atom{AtomicNum: z, Aromatic: true}, nil
	}
	return Atom{}, p.errorf("unexpected character %q", c)
}

func (p *smilesParser) readInt() (int, bool) {
	start := p.pos
	n := 0
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		n = n*10 + int(p.src[p.pos]-'0')
		p.pos++
	}
	return n, p.pos > start
}

func (p *smilesParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *smilesParser) bracketAtom() (Atom, error) {
	p.pos++ // '['
	a := Atom{NoImplicit: true}

	if iso, ok := p.readInt(); ok {
		a.Isotope = iso
	}

	if err := p.bracketSymbol(&a); err != nil {
		return a, err
	}

	// Chirality is read and dropped.
	if p.peek() == '@' {
		for p.peek() == '@' {
			p.pos++
		}
		if p.pos+1 < len(p.src) {
			switch p.src[p.pos : p.pos+2] {
			case "TH", "AL", "SP", "TB", "OH":
				p.pos += 2
				p.readInt()
			}
		}
	}

	if p.peek() == 'H' {
		p.pos++
		if n, ok := p.readInt(); ok {
			a.HCount = n
		} else {
			a.HCount = 1
		}
	}

	if c := p.peek(); c == '+' || c == '-' {
		sign := 1
		if c == '-' {
			sign = -1
		}
		p.pos++
		if n, ok := p.readInt(); ok {
			a.Charge = sign * n
		} else {
			a.Charge = sign
			for p.peek() == c {
				a.Charge += sign
				p.pos++
			}
		}
	}

	if p.peek() == ':' {
		p.pos++
		n, ok := p.readInt()
		if !ok {
			return a, p.errorf("missing atom class")
		}
		a.MapNum = n
	}

	if p.peek() != ']' {
		return a, p.errorf("unterminated bracket atom")
	}
	p.pos++
	return a, nil
}

func (p *smilesParser) bracketSymbol(a *Atom) error {
	c := p.peek()
	switch {
	case c == '*':
		p.pos++
		a.AtomicNum = 0
		return nil
	case c >= 'a' && c <= 'z':
		for _, sym := range []string{"se", "as", "te", "c", "n", "o", "p", "s", "b"} {
			if strings.HasPrefix(p.src[p.pos:], sym) {
				z, _ := AtomicNumber(strings.ToUpper(sym[:1]) + sym[1:])
				a.AtomicNum = z
				a.Aromatic = true
				p.pos += len(sym)
				return nil
			}
		}
	case c >= 'A' && c <= 'Z':
		if p.pos+1 < len(p.src) {
			if z, ok := AtomicNumber(p.src[p.pos : p.pos+2]); ok {
				a.AtomicNum = z
				p.pos += 2
				return nil
			}
		}
		if z, ok := AtomicNumber(string(c)); ok {
			a.AtomicNum = z
			p.pos++
			return nil
		}
	}
	return p.errorf("unknown element in bracket atom")
}
