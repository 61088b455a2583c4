package chem

import (
	"strconv"
	"strings"
)

// Write serializes the molecule as SMILES. Atoms are visited depth first from
// the lowest unvisited index, aromatic atoms are written in lowercase and
// brackets are only used when the organic subset cannot express the atom.
// Stereo marks are not written. The output is deterministic for a given
// input graph but is not a canonical form.
func Write(m *Molecule) string {
	n := len(m.Atoms)
	visited := make([]bool, n)
	closureBond := make([]bool, len(m.Bonds))
	children := make([][]int, n) // bond indices of tree edges to children
	closures := make([][]int, n) // ring closure bonds touching each atom

	var walk func(u, parentBond int)
	walk = func(u, parentBond int) {
		visited[u] = true
		for _, bi := range m.adj[u] {
			if bi == parentBond || closureBond[bi] {
				continue
			}
			v := m.Bonds[bi].Other(u)
			if visited[v] {
				closureBond[bi] = true
				closures[v] = append(closures[v], bi)
				closures[u] = append(closures[u], bi)
				continue
			}
			children[u] = append(children[u], bi)
			walk(v, bi)
		}
	}

	var roots []int
	for i := 0; i < n; i++ {
		if !visited[i] {
			roots = append(roots, i)
			walk(i, -1)
		}
	}

	w := &smilesWriter{m: m, children: children, closures: closures, digits: make(map[int]int)}
	for k, r := range roots {
		if k > 0 {
			w.sb.WriteByte('.')
		}
		w.emit(r)
	}
	return w.sb.String()
}

type smilesWriter struct {
	m        *Molecule
	sb       strings.Builder
	children [][]int
	closures [][]int
	digits   map[int]int // open closure bond -> ring digit
	inUse    [100]bool
}

func (w *smilesWriter) emit(u int) {
	w.writeAtom(u)
	for _, bi := range w.closures[u] {
		if d, open := w.digits[bi]; open {
			w.writeRingDigit(d)
			w.inUse[d] = false
			delete(w.digits, bi)
			continue
		}
		d := w.freeDigit()
		w.inUse[d] = true
		w.digits[bi] = d
		w.sb.WriteString(w.bondSymbol(bi))
		w.writeRingDigit(d)
	}
	for k, bi := range w.children[u] {
		v := w.m.Bonds[bi].Other(u)
		last := k == len(w.children[u])-1
		if !last {
			w.sb.WriteByte('(')
		}
		w.sb.WriteString(w.bondSymbol(bi))
		w.emit(v)
		if !last {
			w.sb.WriteByte(')')
		}
	}
}

func (w *smilesWriter) freeDigit() int {
	for d := 1; d < len(w.inUse); d++ {
		if !w.inUse[d] {
			return d
		}
	}
	return 0
}

func (w *smilesWriter) writeRingDigit(d int) {
	if d >= 10 {
		w.sb.WriteByte('%')
	}
	w.sb.WriteString(strconv.Itoa(d))
}

func (w *smilesWriter) bondSymbol(bi int) string {
	b := w.m.Bonds[bi]
	if b.Aromatic {
		return ""
	}
	switch b.Type {
	case DoubleBond:
		return "="
	case TripleBond:
		return "#"
	case QuadrupleBond:
		return "$"
	}
	if w.m.Atoms[b.A].Aromatic && w.m.Atoms[b.B].Aromatic {
		return "-"
	}
	return ""
}

func (w *smilesWriter) writeAtom(i int) {
	a := w.m.Atoms[i]
	sym := a.Symbol()
	if a.Aromatic {
		sym = strings.ToLower(sym)
	}
	if a.Element == 0 && a.Isotope == 0 && a.Charge == 0 && a.Hydrogens == 0 && a.Class == 0 {
		w.sb.WriteString("*")
		return
	}
	if w.organic(i) {
		w.sb.WriteString(sym)
		return
	}

	w.sb.WriteByte('[')
	if a.Isotope > 0 {
		w.sb.WriteString(strconv.Itoa(a.Isotope))
	}
	w.sb.WriteString(sym)
	if a.Hydrogens > 0 {
		w.sb.WriteByte('H')
		if a.Hydrogens > 1 {
			w.sb.WriteString(strconv.Itoa(a.Hydrogens))
		}
	}
	switch {
	case a.Charge == 1:
		w.sb.WriteByte('+')
	case a.Charge == -1:
		w.sb.WriteByte('-')
	case a.Charge > 1:
		w.sb.WriteString("+" + strconv.Itoa(a.Charge))
	case a.Charge < -1:
		w.sb.WriteString(strconv.Itoa(a.Charge))
	}
	if a.Class > 0 {
		w.sb.WriteString(":" + strconv.Itoa(a.Class))
	}
	w.sb.WriteByte(']')
}

// organic reports whether atom i round-trips without brackets, i.e. the
// parser would infer the same hydrogen count for it.
func (w *smilesWriter) organic(i int) bool {
	a := w.m.Atoms[i]
	if !organicSubset[a.Element] || a.Charge != 0 || a.Isotope != 0 || a.Class != 0 {
		return false
	}
	if a.Aromatic {
		// Aromatic carbon hydrogens are recovered by kekulization; n, p and
		// b need an explicit [nH].
		return a.Element == 6 || a.Hydrogens == 0
	}
	v := 0
	for _, bi := range w.m.adj[i] {
		v += w.m.Bonds[bi].Type.order()
	}
	for _, allowed := range elements[a.Element].valences {
		if allowed >= v {
			return allowed-v == a.Hydrogens
		}
	}
	return false
}
