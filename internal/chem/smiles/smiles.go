// Package smiles reads a practical subset of the SMILES line notation into a
// molecular graph: organic-subset and bracket atoms, aromatic lowercase
// forms, branches, ring bond closures (including %nn) and explicit bond
// symbols. Stereo markers are accepted and ignored; disconnected structures
// are rejected.
package smiles

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwatobipen/entry-cli/internal/chem/mol"
	"github.com/iwatobipen/entry-cli/internal/chem/periodic"
)

// ParseError reports a syntax or valence problem with its byte offset.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("smiles: %s at offset %d", e.Msg, e.Pos)
}

func errAt(pos int, format string, args ...any) error {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// organic-subset elements allowed outside brackets.
var organic = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true, "S": true,
	"F": true, "Cl": true, "Br": true, "I": true,
}

// aromatic lowercase forms allowed outside brackets.
var aromaticOrganic = map[byte]string{
	'b': "B", 'c': "C", 'n': "N", 'o': "O", 'p': "P", 's': "S",
}

// pendingBond is an explicit bond symbol waiting for its second atom.
type pendingBond struct {
	order    int
	aromatic bool
	set      bool
}

type ringOpen struct {
	atom int
	bond pendingBond
	pos  int
}

type parser struct {
	in string
	i  int

	m       *mol.Molecule
	bracket []bool // per atom: written in brackets (no H auto-fill)

	prev    int
	pending pendingBond
	stack   []int
	rings   map[int]ringOpen
}

// Parse reads a SMILES string into a molecule with implicit hydrogens
// filled in.
func Parse(s string) (*mol.Molecule, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errAt(0, "empty input")
	}

	p := &parser{
		in:    s,
		m:     mol.New(),
		prev:  -1,
		rings: map[int]ringOpen{},
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	if err := p.fillHydrogens(); err != nil {
		return nil, err
	}
	if !p.m.Connected() {
		return nil, errAt(0, "disconnected structure")
	}
	return p.m, nil
}

func (p *parser) run() error {
	for p.i < len(p.in) {
		c := p.in[p.i]
		switch {
		case c == '(':
			if p.prev < 0 {
				return errAt(p.i, "branch before any atom")
			}
			if p.pending.set {
				return errAt(p.i, "bond symbol before branch open")
			}
			p.stack = append(p.stack, p.prev)
			p.i++

		case c == ')':
			if len(p.stack) == 0 {
				return errAt(p.i, "unmatched branch close")
			}
			if p.pending.set {
				return errAt(p.i, "dangling bond symbol")
			}
			p.prev = p.stack[len(p.stack)-1]
			p.stack = p.stack[:len(p.stack)-1]
			p.i++

		case c == '-' || c == '=' || c == '#' || c == ':' || c == '/' || c == '\\':
			if p.pending.set {
				return errAt(p.i, "repeated bond symbol")
			}
			p.pending = bondFor(c)
			p.i++

		case c == '.':
			return errAt(p.i, "disconnected structures are not supported")

		case c >= '0' && c <= '9':
			if err := p.ringBond(int(c-'0'), p.i); err != nil {
				return err
			}
			p.i++

		case c == '%':
			if p.i+2 >= len(p.in) || !isDigit(p.in[p.i+1]) || !isDigit(p.in[p.i+2]) {
				return errAt(p.i, "%% needs two digits")
			}
			n := int(p.in[p.i+1]-'0')*10 + int(p.in[p.i+2]-'0')
			if err := p.ringBond(n, p.i); err != nil {
				return err
			}
			p.i += 3

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

	if p.prev < 0 {
		return errAt(0, "no atoms")
	}
	if len(p.stack) > 0 {
		return errAt(len(p.in), "unclosed branch")
	}
	if p.pending.set {
		return errAt(len(p.in), "dangling bond symbol")
	}
	for n, open := range p.rings {
		return errAt(open.pos, "unclosed ring bond %d", n)
	}
	return nil
}

func bondFor(c byte) pendingBond {
	switch c {
	case '=':
		return pendingBond{order: 2, set: true}
	case '#':
		return pendingBond{order: 3, set: true}
	case ':':
		return pendingBond{order: 1, aromatic: true, set: true}
	default:
		// '-', '/' and '\' are all single; stereo is out of scope.
		return pendingBond{order: 1, set: true}
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// addAtom connects a freshly parsed atom to the chain and makes it current.
func (p *parser) addAtom(a mol.Atom, bracketed bool, pos int) error {
	idx := p.m.AddAtom(a)
	p.bracket = append(p.bracket, bracketed)

	if p.prev >= 0 {
		b := p.bondBetween(p.prev, idx, p.pending)
		if _, err := p.m.AddBond(b); err != nil {
			return errAt(pos, "%v", err)
		}
	}
	p.pending = pendingBond{}
	p.prev = idx
	return nil
}

// bondBetween applies the default-bond rule: an unwritten bond between two
// aromatic atoms is aromatic, otherwise single.
func (p *parser) bondBetween(a, b int, pending pendingBond) mol.Bond {
	if pending.set {
		return mol.Bond{A: a, B: b, Order: pending.order, Aromatic: pending.aromatic}
	}
	if p.m.Atom(a).Aromatic && p.m.Atom(b).Aromatic {
		return mol.Bond{A: a, B: b, Order: 1, Aromatic: true}
	}
	return mol.Bond{A: a, B: b, Order: 1}
}

func (p *parser) ringBond(n, pos int) error {
	if p.prev < 0 {
		return errAt(pos, "ring bond before any atom")
	}

	open, ok := p.rings[n]
	if !ok {
		p.rings[n] = ringOpen{atom: p.prev, bond: p.pending, pos: pos}
		p.pending = pendingBond{}
		return nil
	}
	delete(p.rings, n)

	if open.atom == p.prev {
		return errAt(pos, "ring bond %d closes on its own atom", n)
	}

	// A bond symbol may be written at either end; both must agree.
	eff := p.pending
	if open.bond.set && eff.set && open.bond != eff {
		return errAt(pos, "conflicting bond symbols on ring bond %d", n)
	}
	if open.bond.set {
		eff = open.bond
	}

	b := p.bondBetween(open.atom, p.prev, eff)
	if _, err := p.m.AddBond(b); err != nil {
		return errAt(pos, "%v", err)
	}
	p.pending = pendingBond{}
	return nil
}

// organicAtom parses an atom written without brackets.
func (p *parser) organicAtom() error {
	pos := p.i
	c := p.in[p.i]

	if sym, ok := aromaticOrganic[c]; ok {
		p.i++
		return p.addAtom(mol.Atom{Element: sym, Aromatic: true}, false, pos)
	}

	if c < 'A' || c > 'Z' {
		return errAt(pos, "unexpected character %q", string(c))
	}

	sym := string(c)
	// Two-letter organic-subset symbols: Cl, Br.
	if p.i+1 < len(p.in) {
		two := p.in[p.i : p.i+2]
		if two == "Cl" || two == "Br" {
			sym = two
		}
	}
	if !organic[sym] {
		return errAt(pos, "element %q needs brackets", sym)
	}

	p.i += len(sym)
	return p.addAtom(mol.Atom{Element: sym}, false, pos)
}

// bracketAtom parses [isotope?symbol chiral? Hcount? charge? :class?].
func (p *parser) bracketAtom() error {
	pos := p.i
	p.i++ // consume '['

	// Isotope is accepted and ignored.
	for p.i < len(p.in) && isDigit(p.in[p.i]) {
		p.i++
	}
	if p.i >= len(p.in) {
		return errAt(pos, "unclosed bracket atom")
	}

	a, err := p.bracketSymbol(pos)
	if err != nil {
		return err
	}

	// Chirality markers are accepted and ignored.
	for p.i < len(p.in) && p.in[p.i] == '@' {
		p.i++
	}

	if p.i < len(p.in) && p.in[p.i] == 'H' {
		p.i++
		a.ImplicitH = 1
		if p.i < len(p.in) && isDigit(p.in[p.i]) {
			a.ImplicitH = int(p.in[p.i] - '0')
			p.i++
		}
	}

	if p.i < len(p.in) && (p.in[p.i] == '+' || p.in[p.i] == '-') {
		sign := 1
		if p.in[p.i] == '-' {
			sign = -1
		}
		mark := p.in[p.i]
		n := 1
		p.i++
		switch {
		case p.i < len(p.in) && isDigit(p.in[p.i]):
			n = int(p.in[p.i] - '0')
			p.i++
		default:
			for p.i < len(p.in) && p.in[p.i] == mark {
				n++
				p.i++
			}
		}
		a.Charge = sign * n
	}

	// Atom class is accepted and ignored.
	if p.i < len(p.in) && p.in[p.i] == ':' {
		p.i++
		if p.i >= len(p.in) || !isDigit(p.in[p.i]) {
			return errAt(p.i, "atom class needs digits")
		}
		for p.i < len(p.in) && isDigit(p.in[p.i]) {
			p.i++
		}
	}

	if p.i >= len(p.in) || p.in[p.i] != ']' {
		return errAt(pos, "unclosed bracket atom")
	}
	p.i++

	return p.addAtom(a, true, pos)
}

func (p *parser) bracketSymbol(open int) (mol.Atom, error) {
	if p.i >= len(p.in) {
		return mol.Atom{}, errAt(open, "unclosed bracket atom")
	}

	c := p.in[p.i]
	if sym, ok := aromaticOrganic[c]; ok {
		p.i++
		return mol.Atom{Element: sym, Aromatic: true}, nil
	}
	if c < 'A' || c > 'Z' {
		return mol.Atom{}, errAt(p.i, "expected element symbol")
	}

	sym := string(c)
	if p.i+1 < len(p.in) && p.in[p.i+1] >= 'a' && p.in[p.i+1] <= 'z' {
		two := p.in[p.i : p.i+2]
		if _, ok := periodic.Lookup(two); ok {
			sym = two
		}
	}
	if _, ok := periodic.Lookup(sym); !ok {
		return mol.Atom{}, errAt(p.i, "unknown element %q", sym)
	}

	p.i += len(sym)
	return mol.Atom{Element: sym}, nil
}

// fillHydrogens assigns implicit hydrogen counts to organic-subset atoms
// from their default valences. Bracket atoms keep their written H count.
func (p *parser) fillHydrogens() error {
	for i := 0; i < p.m.NumAtoms(); i++ {
		if p.bracket[i] {
			continue
		}
		a := p.m.Atom(i)
		el, ok := periodic.Lookup(a.Element)
		if !ok {
			return errAt(0, "unknown element %q", a.Element)
		}

		used := int(math.Round(p.m.BondOrderSum(i)))

		h := 0
		for _, v := range el.Valences {
			if used <= v {
				h = v - used
				break
			}
		}
		p.m.SetImplicitH(i, h)
	}
	return nil
}
