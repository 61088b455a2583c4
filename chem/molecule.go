// Package chem is a small cheminformatics toolkit: it parses and sanitizes
// SMILES strings into molecule graphs, writes them back out, and computes the
// descriptors served by the drug service (exact mass, Crippen LogP, TPSA).
package chem

import (
	"fmt"
	"sort"
	"strings"
)

// BondType is the Kekulé order of a bond. Aromaticity is tracked separately
// on the bond so descriptors can tell "aromatic" from "double".
type BondType uint8

const (
	SingleBond BondType = iota + 1
	DoubleBond
	TripleBond
	QuadrupleBond
	// aromaticBond only exists between parsing and kekulization.
	aromaticBond
)

func (t BondType) order() int {
	switch t {
	case DoubleBond:
		return 2
	case TripleBond:
		return 3
	case QuadrupleBond:
		return 4
	default:
		return 1
	}
}

// Atom is a heavy atom (or an isotopic/charged hydrogen) of a molecule.
type Atom struct {
	Element   int // atomic number, 0 for the "*" wildcard
	Aromatic  bool
	Charge    int
	Isotope   int
	Hydrogens int // attached hydrogens not present as atoms
	Chirality string
	Class     int

	bracket bool
}

// Symbol returns the element symbol of the atom.
func (a Atom) Symbol() string {
	if a.Element < 0 || a.Element >= len(elements) {
		return "?"
	}
	return elements[a.Element].symbol
}

// Bond connects atoms A and B.
type Bond struct {
	A, B     int
	Type     BondType
	Aromatic bool

	explicit bool // bond symbol was written in the input
}

// Other returns the atom at the opposite end of the bond.
func (b Bond) Other(atom int) int {
	if b.A == atom {
		return b.B
	}
	return b.A
}

// Molecule is a sanitized molecule graph.
type Molecule struct {
	Atoms []Atom
	Bonds []Bond

	adj   [][]int // bond indices per atom
	rings [][]int // ordered atom cycles, smallest cycle per ring bond
}

func (m *Molecule) addAtom(a Atom) int {
	m.Atoms = append(m.Atoms, a)
	m.adj = append(m.adj, nil)
	return len(m.Atoms) - 1
}

func (m *Molecule) addBond(a, b int, t BondType, explicit bool) int {
	m.Bonds = append(m.Bonds, Bond{A: a, B: b, Type: t, explicit: explicit})
	idx := len(m.Bonds) - 1
	m.adj[a] = append(m.adj[a], idx)
	m.adj[b] = append(m.adj[b], idx)
	return idx
}

// bondBetween returns the index of the bond joining a and b, or -1.
func (m *Molecule) bondBetween(a, b int) int {
	for _, bi := range m.adj[a] {
		if m.Bonds[bi].Other(a) == b {
			return bi
		}
	}
	return -1
}

// reindex rebuilds the adjacency lists from the bond slice.
func (m *Molecule) reindex() {
	m.adj = make([][]int, len(m.Atoms))
	for i, b := range m.Bonds {
		m.adj[b.A] = append(m.adj[b.A], i)
		m.adj[b.B] = append(m.adj[b.B], i)
	}
}

// NumAtoms returns the number of atoms in the graph (hydrogens folded into
// their parent atom are not counted).
func (m *Molecule) NumAtoms() int {
	return len(m.Atoms)
}

// NumBonds returns the number of bonds in the graph.
func (m *Molecule) NumBonds() int {
	return len(m.Bonds)
}

// Neighbors returns the atom indices bonded to atom i.
func (m *Molecule) Neighbors(i int) []int {
	out := make([]int, 0, len(m.adj[i]))
	for _, bi := range m.adj[i] {
		out = append(out, m.Bonds[bi].Other(i))
	}
	return out
}

// TotalHydrogens counts implicit hydrogens plus explicit hydrogen neighbours.
func (m *Molecule) TotalHydrogens(i int) int {
	h := m.Atoms[i].Hydrogens
	for _, bi := range m.adj[i] {
		if m.Atoms[m.Bonds[bi].Other(i)].Element == 1 {
			h++
		}
	}
	return h
}

// heavyDegree counts non-hydrogen neighbours.
func (m *Molecule) heavyDegree(i int) int {
	n := 0
	for _, bi := range m.adj[i] {
		if m.Atoms[m.Bonds[bi].Other(i)].Element != 1 {
			n++
		}
	}
	return n
}

// connectivity is the SMARTS X primitive: all neighbours including hydrogens.
func (m *Molecule) connectivity(i int) int {
	return len(m.adj[i]) + m.Atoms[i].Hydrogens
}

// valence is the sum of bond orders plus attached hydrogens.
func (m *Molecule) valence(i int) int {
	v := m.Atoms[i].Hydrogens
	for _, bi := range m.adj[i] {
		v += m.Bonds[bi].Type.order()
	}
	return v
}

// inRingOfSize reports whether atom i belongs to a perceived ring of size n.
func (m *Molecule) inRingOfSize(i, n int) bool {
	for _, r := range m.rings {
		if len(r) != n {
			continue
		}
		for _, a := range r {
			if a == i {
				return true
			}
		}
	}
	return false
}

// RingCount returns the number of perceived rings.
func (m *Molecule) RingCount() int {
	return len(m.rings)
}

// AromaticAtomCount returns the number of atoms flagged aromatic.
func (m *Molecule) AromaticAtomCount() int {
	n := 0
	for _, a := range m.Atoms {
		if a.Aromatic {
			n++
		}
	}
	return n
}

// Formula returns the molecular formula in Hill order.
func (m *Molecule) Formula() string {
	counts := make(map[string]int)
	charge := 0
	for _, a := range m.Atoms {
		counts[a.Symbol()]++
		if a.Hydrogens > 0 {
			counts["H"] += a.Hydrogens
		}
		charge += a.Charge
	}

	var symbols []string
	for s := range counts {
		symbols = append(symbols, s)
	}
	_, hasCarbon := counts["C"]
	sort.Slice(symbols, func(i, j int) bool {
		rank := func(s string) int {
			if hasCarbon && s == "C" {
				return 0
			}
			if hasCarbon && s == "H" {
				return 1
			}
			return 2
		}
		ri, rj := rank(symbols[i]), rank(symbols[j])
		if ri != rj {
			return ri < rj
		}
		return symbols[i] < symbols[j]
	})

	var sb strings.Builder
	for _, s := range symbols {
		sb.WriteString(s)
		if counts[s] > 1 {
			fmt.Fprintf(&sb, "%d", counts[s])
		}
	}
	switch {
	case charge == 1:
		sb.WriteString("+")
	case charge == -1:
		sb.WriteString("-")
	case charge > 1:
		fmt.Fprintf(&sb, "+%d", charge)
	case charge < -1:
		fmt.Fprintf(&sb, "%d", charge)
	}
	return sb.String()
}
