package chem

import (
	"fmt"
	"strings"
)

// ParseError reports a malformed or chemically impossible SMILES string.
type ParseError struct {
	SMILES string
	Pos    int
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("smiles %q: %s at position %d", e.SMILES, e.Msg, e.Pos)
	}
	return fmt.Sprintf("smiles %q: %s", e.SMILES, e.Msg)
}

type ringOpening struct {
	atom int
	bond BondType
	pos  int
}

type parser struct {
	src  string
	pos  int
	mol  *Molecule
	prev int

	pending    BondType
	pendingPos int
	branches   []int
	rings      map[int]ringOpening
	expectAtom bool // a '.' was read and an atom must follow
}

// Parse reads a SMILES string and returns the sanitized molecule. The graph
// is kekulized, has implicit hydrogens assigned, and carries perceived rings
// and aromaticity flags.
func Parse(smiles string) (*Molecule, error) {
	p := &parser{src: smiles, mol: &Molecule{}, prev: -1, rings: make(map[int]ringOpening)}
	if err := p.run(); err != nil {
		return nil, err
	}
	if err := sanitize(p.mol); err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.SMILES = smiles
			return nil, pe
		}
		return nil, &ParseError{SMILES: smiles, Pos: -1, Msg: err.Error()}
	}
	return p.mol, nil
}

// MustParse is Parse for literals known to be valid. It panics on error.
func MustParse(smiles string) *Molecule {
	m, err := Parse(smiles)
	if err != nil {
		panic(err)
	}
	return m
}

func (p *parser) fail(pos int, format string, args ...any) error {
	return &ParseError{SMILES: p.src, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) run() error {
	if strings.TrimSpace(p.src) == "" {
		return p.fail(-1, "empty input")
	}
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.fail(p.pos, "branch without a preceding atom")
			}
			if p.pending != 0 {
				return p.fail(p.pos, "bond symbol before branch")
			}
			p.branches = append(p.branches, p.prev)
			p.pos++
		case c == ')':
			if len(p.branches) == 0 {
				return p.fail(p.pos, "unbalanced parenthesis")
			}
			if p.pending != 0 {
				return p.fail(p.pos, "dangling bond")
			}
			p.prev = p.branches[len(p.branches)-1]
			p.branches = p.branches[:len(p.branches)-1]
			p.pos++
		case strings.IndexByte("-=#$:/\\", c) >= 0:
			if p.prev < 0 {
				return p.fail(p.pos, "bond without a preceding atom")
			}
			if p.pending != 0 {
				return p.fail(p.pos, "consecutive bond symbols")
			}
			p.pending = bondFromSymbol(c)
			p.pendingPos = p.pos
			p.pos++
		case c == '.':
			if p.prev < 0 || p.pending != 0 || p.expectAtom {
				return p.fail(p.pos, "misplaced component separator")
			}
			if len(p.branches) > 0 {
				return p.fail(p.pos, "component separator inside a branch")
			}
			p.prev = -1
			p.expectAtom = true
			p.pos++
		case c >= '0' && c <= '9' || c == '%':
			if err := p.ringClosure(); err != nil {
				return err
			}
		case c == '[':
			if err := p.bracketAtom(); err != nil {
				return err
			}
		default:
			if err := p.organicAtom(); err != nil {
				return err
			}
		}
	}

	switch {
	case len(p.branches) > 0:
		return p.fail(len(p.src), "unclosed branch")
	case p.pending != 0:
		return p.fail(p.pendingPos, "dangling bond")
	case p.expectAtom:
		return p.fail(len(p.src), "trailing component separator")
	case len(p.mol.Atoms) == 0:
		return p.fail(-1, "no atoms")
	}
	for _, open := range p.rings {
		return p.fail(open.pos, "unclosed ring")
	}
	return nil
}

func bondFromSymbol(c byte) BondType {
	switch c {
	case '=':
		return DoubleBond
	case '#':
		return TripleBond
	case '$':
		return QuadrupleBond
	case ':':
		return aromaticBond
	default:
		return SingleBond
	}
}

// attach adds atom a and bonds it to the previous atom, if any.
func (p *parser) attach(a Atom) {
	idx := p.mol.addAtom(a)
	if p.prev >= 0 {
		t, explicit := p.pending, p.pending != 0
		if !explicit {
			t = p.defaultBond(p.prev, idx)
		}
		p.mol.addBond(p.prev, idx, t, explicit)
	}
	p.pending = 0
	p.prev = idx
	p.expectAtom = false
}

func (p *parser) defaultBond(a, b int) BondType {
	if p.mol.Atoms[a].Aromatic && p.mol.Atoms[b].Aromatic {
		return aromaticBond
	}
	return SingleBond
}

func (p *parser) ringClosure() error {
	start := p.pos
	if p.prev < 0 {
		return p.fail(start, "ring closure without a preceding atom")
	}
	var num int
	if p.src[p.pos] == '%' {
		if p.pos+2 >= len(p.src) || !isDigit(p.src[p.pos+1]) || !isDigit(p.src[p.pos+2]) {
			return p.fail(start, "malformed %%nn ring closure")
		}
		num = int(p.src[p.pos+1]-'0')*10 + int(p.src[p.pos+2]-'0')
		p.pos += 3
	} else {
		num = int(p.src[p.pos] - '0')
		p.pos++
	}

	open, ok := p.rings[num]
	if !ok {
		p.rings[num] = ringOpening{atom: p.prev, bond: p.pending, pos: start}
		p.pending = 0
		return nil
	}
	delete(p.rings, num)

	if open.atom == p.prev {
		return p.fail(start, "ring closure to the same atom")
	}
	if p.mol.bondBetween(open.atom, p.prev) >= 0 {
		return p.fail(start, "duplicate bond from ring closure")
	}
	t := p.pending
	if open.bond != 0 {
		if t != 0 && t != open.bond {
			return p.fail(start, "conflicting ring closure bond symbols")
		}
		t = open.bond
	}
	explicit := t != 0
	if !explicit {
		t = p.defaultBond(open.atom, p.prev)
	}
	p.mol.addBond(open.atom, p.prev, t, explicit)
	p.pending = 0
	return nil
}

func (p *parser) organicAtom() error {
	c := p.src[p.pos]
	if c == '*' {
		p.pos++
		p.attach(Atom{Element: 0})
		return nil
	}
	if c >= 'a' && c <= 'z' {
		z, ok := aromaticSymbols[string(c)]
		if !ok || z > 16 {
			return p.fail(p.pos, "unexpected character %q", c)
		}
		p.pos++
		p.attach(Atom{Element: z, Aromatic: true})
		return nil
	}

	sym := string(c)
	if p.pos+1 < len(p.src) {
		two := p.src[p.pos : p.pos+2]
		if two == "Cl" || two == "Br" {
			sym = two
		}
	}
	z, ok := symbolToNumber[sym]
	if !ok || !organicSubset[z] {
		return p.fail(p.pos, "unexpected character %q", c)
	}
	p.pos += len(sym)
	p.attach(Atom{Element: z})
	return nil
}

func (p *parser) bracketAtom() error {
	start := p.pos
	end := strings.IndexByte(p.src[p.pos:], ']')
	if end < 0 {
		return p.fail(start, "unterminated bracket atom")
	}
	body := p.src[p.pos+1 : p.pos+end]
	p.pos += end + 1

	a := Atom{bracket: true}
	i := 0

	for i < len(body) && isDigit(body[i]) {
		a.Isotope = a.Isotope*10 + int(body[i]-'0')
		i++
	}

	switch {
	case i < len(body) && body[i] == '*':
		a.Element = 0
		i++
	case i < len(body) && body[i] >= 'a' && body[i] <= 'z':
		if i+1 < len(body) {
			if z, ok := aromaticSymbols[body[i:i+2]]; ok {
				a.Element, a.Aromatic = z, true
				i += 2
				break
			}
		}
		z, ok := aromaticSymbols[body[i:i+1]]
		if !ok {
			return p.fail(start, "unknown aromatic symbol in %q", body)
		}
		a.Element, a.Aromatic = z, true
		i++
	case i < len(body) && body[i] >= 'A' && body[i] <= 'Z':
		sym := body[i : i+1]
		if i+1 < len(body) && body[i+1] >= 'a' && body[i+1] <= 'z' {
			if _, ok := symbolToNumber[body[i:i+2]]; ok {
				sym = body[i : i+2]
			}
		}
		z, ok := symbolToNumber[sym]
		if !ok || z == 0 {
			return p.fail(start, "unknown element in %q", body)
		}
		a.Element = z
		i += len(sym)
	default:
		return p.fail(start, "missing element symbol in %q", body)
	}

	if i < len(body) && body[i] == '@' {
		j := i + 1
		if j < len(body) && body[j] == '@' {
			j++
		} else {
			for _, class := range []string{"TH", "AL", "SP", "TB", "OH"} {
				if strings.HasPrefix(body[j:], class) {
					j += len(class)
					for j < len(body) && isDigit(body[j]) {
						j++
					}
					break
				}
			}
		}
		a.Chirality = body[i:j]
		i = j
	}

	if i < len(body) && body[i] == 'H' {
		i++
		a.Hydrogens = 1
		if i < len(body) && isDigit(body[i]) {
			a.Hydrogens = 0
			for i < len(body) && isDigit(body[i]) {
				a.Hydrogens = a.Hydrogens*10 + int(body[i]-'0')
				i++
			}
		}
	}

	if i < len(body) && (body[i] == '+' || body[i] == '-') {
		sign := 1
		if body[i] == '-' {
			sign = -1
		}
		sym := body[i]
		i++
		switch {
		case i < len(body) && isDigit(body[i]):
			n := 0
			for i < len(body) && isDigit(body[i]) {
				n = n*10 + int(body[i]-'0')
				i++
			}
			a.Charge = sign * n
		default:
			n := 1
			for i < len(body) && body[i] == sym {
				n++
				i++
			}
			a.Charge = sign * n
		}
	}

	if i < len(body) && body[i] == ':' {
		i++
		if i == len(body) {
			return p.fail(start, "missing atom class in %q", body)
		}
		for i < len(body) && isDigit(body[i]) {
			a.Class = a.Class*10 + int(body[i]-'0')
			i++
		}
	}

	if i != len(body) {
		return p.fail(start, "unexpected %q in bracket atom", body[i:])
	}
	p.attach(a)
	return nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
