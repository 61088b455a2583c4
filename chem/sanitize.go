package chem

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// maxKekuleSteps bounds the matching search on pathological inputs.
const maxKekuleSteps = 200000

var errKekulize = errors.New("cannot kekulize aromatic system")

// sanitize turns the raw parse graph into a chemically consistent molecule.
func sanitize(m *Molecule) error {
	if err := kekulize(m); err != nil {
		return err
	}
	if err := assignHydrogens(m); err != nil {
		return err
	}
	foldHydrogens(m)
	perceiveRings(m)
	perceiveAromaticity(m)
	return nil
}

// ringBondFlags marks every bond that lies on a cycle (i.e. is not a bridge).
func ringBondFlags(m *Molecule) []bool {
	n := len(m.Atoms)
	disc := make([]int, n)
	low := make([]int, n)
	inRing := make([]bool, len(m.Bonds))
	for i := range inRing {
		inRing[i] = true
	}
	timer := 0

	var visit func(u, parentBond int)
	visit = func(u, parentBond int) {
		timer++
		disc[u], low[u] = timer, timer
		for _, bi := range m.adj[u] {
			if bi == parentBond {
				continue
			}
			v := m.Bonds[bi].Other(u)
			if disc[v] == 0 {
				visit(v, bi)
				low[u] = min(low[u], low[v])
				if low[v] > disc[u] {
					inRing[bi] = false
				}
			} else {
				low[u] = min(low[u], disc[v])
			}
		}
	}
	for i := 0; i < n; i++ {
		if disc[i] == 0 {
			visit(i, -1)
		}
	}
	return inRing
}

func kekulize(m *Molecule) error {
	inRing := ringBondFlags(m)
	atomInRing := make([]bool, len(m.Atoms))
	for bi, b := range m.Bonds {
		if b.Type == aromaticBond && !inRing[bi] {
			m.Bonds[bi].Type = SingleBond
		}
		if inRing[bi] {
			atomInRing[b.A], atomInRing[b.B] = true, true
		}
	}

	need := make([]bool, len(m.Atoms))
	needsMatching := false
	for i, a := range m.Atoms {
		if !a.Aromatic {
			continue
		}
		if !atomInRing[i] {
			return &ParseError{Pos: -1, Msg: fmt.Sprintf("non-ring atom %d marked aromatic", i)}
		}
		base := a.Hydrogens
		aromaticBonds := 0
		for _, bi := range m.adj[i] {
			b := m.Bonds[bi]
			if b.Type == aromaticBond {
				aromaticBonds++
				base++
				continue
			}
			base += b.Type.order()
		}
		if aromaticBonds == 0 {
			continue
		}
		vals := allowedValences(a.Element, a.Charge)
		if vals == nil {
			continue
		}
		target := -1
		for _, v := range vals {
			if v >= base {
				target = v
				break
			}
		}
		if target < 0 {
			return &ParseError{Pos: -1, Msg: fmt.Sprintf("explicit valence %d of aromatic atom %d (%s) is too high", base, i, a.Symbol())}
		}
		if target > base {
			need[i] = true
			needsMatching = true
		}
	}

	if needsMatching {
		match := make([]int, len(m.Atoms))
		for i := range match {
			match[i] = -1
		}
		if !matchAromatic(m, need, match) {
			return &ParseError{Pos: -1, Msg: errKekulize.Error()}
		}
		for bi, b := range m.Bonds {
			if b.Type == aromaticBond && match[b.A] == b.B {
				m.Bonds[bi].Type = DoubleBond
			}
		}
	}
	for bi := range m.Bonds {
		if m.Bonds[bi].Type == aromaticBond {
			m.Bonds[bi].Type = SingleBond
		}
	}
	for i := range m.Atoms {
		m.Atoms[i].Aromatic = false
	}
	return nil
}

// matchAromatic finds a perfect matching over the atoms flagged in need using
// only aromatic bonds. The most constrained atom is always expanded first.
func matchAromatic(m *Molecule, need []bool, match []int) bool {
	steps := 0
	candidates := func(i int) []int {
		var out []int
		for _, bi := range m.adj[i] {
			b := m.Bonds[bi]
			if b.Type != aromaticBond {
				continue
			}
			j := b.Other(i)
			if need[j] && match[j] < 0 {
				out = append(out, j)
			}
		}
		return out
	}

	var solve func() bool
	solve = func() bool {
		steps++
		if steps > maxKekuleSteps {
			return false
		}
		best, bestOpts := -1, []int(nil)
		for i := range need {
			if !need[i] || match[i] >= 0 {
				continue
			}
			opts := candidates(i)
			if best < 0 || len(opts) < len(bestOpts) {
				best, bestOpts = i, opts
			}
			if len(opts) == 0 {
				return false
			}
		}
		if best < 0 {
			return true
		}
		for _, j := range bestOpts {
			match[best], match[j] = j, best
			if solve() {
				return true
			}
			match[best], match[j] = -1, -1
		}
		return false
	}
	return solve()
}

// assignHydrogens fills implicit hydrogen counts of organic-subset atoms and
// rejects atoms whose explicit valence exceeds every allowed valence.
func assignHydrogens(m *Molecule) error {
	for i := range m.Atoms {
		a := &m.Atoms[i]
		if a.Element == 0 {
			continue
		}
		v := 0
		for _, bi := range m.adj[i] {
			v += m.Bonds[bi].Type.order()
		}

		if a.bracket {
			vals := allowedValences(a.Element, a.Charge)
			if vals == nil {
				continue
			}
			if total := v + a.Hydrogens; total > slices.Max(vals) {
				return &ParseError{Pos: -1, Msg: fmt.Sprintf("explicit valence %d for atom %d (%s) exceeds the allowed maximum", total, i, a.Symbol())}
			}
			continue
		}

		target := -1
		for _, allowed := range elements[a.Element].valences {
			if allowed >= v {
				target = allowed
				break
			}
		}
		if target < 0 {
			return &ParseError{Pos: -1, Msg: fmt.Sprintf("explicit valence %d for atom %d (%s) exceeds the allowed maximum", v, i, a.Symbol())}
		}
		a.Hydrogens = target - v
	}
	return nil
}

// foldHydrogens removes plain explicit hydrogen atoms and adds them to the
// hydrogen count of their neighbour. Isotopic or charged hydrogens stay.
func foldHydrogens(m *Molecule) {
	remove := make([]bool, len(m.Atoms))
	removed := 0
	for i, a := range m.Atoms {
		if a.Element != 1 || a.Isotope != 0 || a.Charge != 0 || a.Hydrogens != 0 || len(m.adj[i]) != 1 {
			continue
		}
		b := m.Bonds[m.adj[i][0]]
		parent := b.Other(i)
		if b.Type != SingleBond || m.Atoms[parent].Element <= 1 {
			continue
		}
		remove[i] = true
		removed++
		m.Atoms[parent].Hydrogens++
	}
	if removed == 0 {
		return
	}

	newIndex := make([]int, len(m.Atoms))
	atoms := make([]Atom, 0, len(m.Atoms)-removed)
	for i, a := range m.Atoms {
		if remove[i] {
			newIndex[i] = -1
			continue
		}
		newIndex[i] = len(atoms)
		atoms = append(atoms, a)
	}
	bonds := make([]Bond, 0, len(m.Bonds))
	for _, b := range m.Bonds {
		if remove[b.A] || remove[b.B] {
			continue
		}
		b.A, b.B = newIndex[b.A], newIndex[b.B]
		bonds = append(bonds, b)
	}
	m.Atoms, m.Bonds = atoms, bonds
	m.reindex()
}

// perceiveRings records, for every ring bond, the smallest cycle through it.
func perceiveRings(m *Molecule) {
	inRing := ringBondFlags(m)
	seen := make(map[string]bool)
	m.rings = nil
	for bi, b := range m.Bonds {
		if !inRing[bi] {
			continue
		}
		path := shortestPath(m, b.A, b.B, bi, inRing)
		if path == nil {
			continue
		}
		key := ringKey(path)
		if seen[key] {
			continue
		}
		seen[key] = true
		m.rings = append(m.rings, path)
	}
	slices.SortStableFunc(m.rings, func(a, b []int) int { return len(a) - len(b) })
}

// shortestPath runs a BFS from src to dst over ring bonds, skipping the bond
// skip. The returned path starts at src and ends at dst.
func shortestPath(m *Molecule, src, dst, skip int, inRing []bool) []int {
	prev := make([]int, len(m.Atoms))
	for i := range prev {
		prev[i] = -2
	}
	prev[src] = -1
	queue := []int{src}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		if u == dst {
			break
		}
		for _, bi := range m.adj[u] {
			if bi == skip || !inRing[bi] {
				continue
			}
			v := m.Bonds[bi].Other(u)
			if prev[v] != -2 {
				continue
			}
			prev[v] = u
			queue = append(queue, v)
		}
	}
	if prev[dst] == -2 {
		return nil
	}
	var path []int
	for at := dst; at != -1; at = prev[at] {
		path = append(path, at)
	}
	slices.Reverse(path)
	return path
}

func ringKey(ring []int) string {
	sorted := slices.Clone(ring)
	slices.Sort(sorted)
	parts := make([]string, len(sorted))
	for i, a := range sorted {
		parts[i] = strconv.Itoa(a)
	}
	return strings.Join(parts, ",")
}

// perceiveAromaticity applies the Hückel 4n+2 rule to every perceived ring
// and to every pair of rings sharing a bond.
func perceiveAromaticity(m *Molecule) {
	for i := range m.Atoms {
		m.Atoms[i].Aromatic = false
	}
	for i := range m.Bonds {
		m.Bonds[i].Aromatic = false
	}

	aromatic := make([]bool, len(m.rings))
	for ri, r := range m.rings {
		aromatic[ri] = huckel(m, r)
	}
	for i := range m.rings {
		for j := i + 1; j < len(m.rings); j++ {
			if aromatic[i] && aromatic[j] {
				continue
			}
			if !sharesBond(m.rings[i], m.rings[j]) {
				continue
			}
			union := slices.Clone(m.rings[i])
			for _, a := range m.rings[j] {
				if !slices.Contains(union, a) {
					union = append(union, a)
				}
			}
			if huckel(m, union) {
				aromatic[i], aromatic[j] = true, true
			}
		}
	}

	for ri, ok := range aromatic {
		if !ok {
			continue
		}
		r := m.rings[ri]
		for k, a := range r {
			m.Atoms[a].Aromatic = true
			if bi := m.bondBetween(a, r[(k+1)%len(r)]); bi >= 0 {
				m.Bonds[bi].Aromatic = true
			}
		}
	}
}

func sharesBond(a, b []int) bool {
	shared := 0
	for _, x := range a {
		if slices.Contains(b, x) {
			shared++
		}
	}
	return shared >= 2
}

func huckel(m *Molecule, atoms []int) bool {
	set := make(map[int]bool, len(atoms))
	for _, a := range atoms {
		set[a] = true
	}
	total := 0
	for _, a := range atoms {
		e, ok := piElectrons(m, a, set)
		if !ok {
			return false
		}
		total += e
	}
	return total%4 == 2
}

// piElectrons returns how many electrons atom i donates to the ring system
// described by set, and whether it can take part at all.
func piElectrons(m *Molecule, i int, set map[int]bool) (int, bool) {
	a := m.Atoms[i]
	conn := m.connectivity(i)
	if conn > 3 {
		return 0, false
	}

	exo := -1
	for _, bi := range m.adj[i] {
		b := m.Bonds[bi]
		switch b.Type {
		case DoubleBond:
			j := b.Other(i)
			if set[j] {
				return 1, true
			}
			exo = j
		case TripleBond, QuadrupleBond:
			return 0, false
		}
	}
	if exo >= 0 {
		// A carbonyl-like exocyclic bond leaves an empty p orbital.
		if a.Element == 6 {
			switch m.Atoms[exo].Element {
			case 7, 8, 16:
				return 0, true
			}
		}
		return 0, false
	}

	switch a.Element {
	case 6:
		switch a.Charge {
		case -1:
			return 2, true
		case 1:
			return 0, true
		}
	case 7, 15, 33:
		if a.Charge == 0 && conn == 3 {
			return 2, true
		}
		if a.Charge == -1 && conn == 2 {
			return 2, true
		}
	case 8, 16, 34, 52:
		if a.Charge == 0 && conn == 2 {
			return 2, true
		}
	case 5:
		if a.Charge == 0 && conn == 3 {
			return 0, true
		}
	}
	return 0, false
}
