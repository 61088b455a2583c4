package chem

// Atom type contributions from Wildman and Crippen, J. Chem. Inf. Comput.
// Sci. 1999, 39, 868-873.
var crippenLogP = map[string]float64{
	"C1": 0.1441, "C2": 0.0, "C3": -0.2035, "C4": -0.2051, "C5": -0.2783,
	"C6": 0.1551, "C7": 0.0017, "C8": 0.08452, "C9": -0.1444, "C10": -0.0516,
	"C11": 0.1193, "C12": -0.0967, "C13": -0.5443, "C14": 0.0, "C15": 0.245,
	"C16": 0.198, "C17": 0.0, "C18": 0.1581, "C19": 0.2955, "C20": 0.2713,
	"C21": 0.136, "C22": 0.4619, "C23": 0.5437, "C24": 0.1893, "C25": -0.8186,
	"C26": 0.264, "C27": 0.2148, "CS": 0.08129,
	"H1": 0.123, "H2": -0.2677, "H3": 0.2142, "H4": 0.298, "HS": 0.1125,
	"N1": -1.019, "N2": -0.7096, "N3": -1.027, "N4": -0.5188, "N5": 0.08387,
	"N6": 0.1836, "N7": -0.3187, "N8": -0.4458, "N9": 0.01508, "N10": -1.95,
	"N11": -0.3239, "N12": -1.119, "N13": -0.3396, "N14": 0.2887, "NS": -0.4806,
	"O1": 0.1552, "O2": -0.2893, "O3": -0.0684, "O4": -0.4195, "O5": 0.0335,
	"O6": -0.3339, "O7": -1.189, "O8": 0.1788, "O9": -0.1526, "O10": 0.1129,
	"O11": 0.4833, "O12": -1.326, "OS": -0.1188,
	"F": 0.4202, "Cl": 0.6895, "Br": 0.8456, "I": 0.8857, "Hal": -2.996,
	"P": 0.8612, "S1": 0.6482, "S2": -0.0024, "S3": 0.6237,
	"Me1": -0.3808, "Me2": -0.0025,
}

// MolLogP returns the Wildman-Crippen octanol/water partition coefficient.
// Every heavy atom and every hydrogen (implicit or explicit) is assigned an
// atom type and the type contributions are summed.
func MolLogP(m *Molecule) float64 {
	total := 0.0
	for i, a := range m.Atoms {
		if a.Element == 1 {
			parent := -1
			if len(m.adj[i]) > 0 {
				parent = m.Bonds[m.adj[i][0]].Other(i)
			}
			total += crippenLogP[hydrogenType(m, parent, i)]
		} else {
			total += crippenLogP[atomType(m, i)]
		}
		if a.Hydrogens > 0 {
			total += float64(a.Hydrogens) * crippenLogP[hydrogenType(m, i, -1)]
		}
	}
	return total
}

// neighbor is one bonded partner of an atom.
type neighbor struct {
	idx  int
	atom Atom
	bond Bond
}

func (m *Molecule) neighbors(i int) []neighbor {
	out := make([]neighbor, 0, len(m.adj[i]))
	for _, bi := range m.adj[i] {
		b := m.Bonds[bi]
		j := b.Other(i)
		out = append(out, neighbor{idx: j, atom: m.Atoms[j], bond: b})
	}
	return out
}

func countWhere(nb []neighbor, pred func(neighbor) bool) int {
	n := 0
	for _, x := range nb {
		if pred(x) {
			n++
		}
	}
	return n
}

func anyWhere(nb []neighbor, pred func(neighbor) bool) bool {
	return countWhere(nb, pred) > 0
}

// SMARTS-style predicates. An unqualified SMARTS bond matches single or
// aromatic bonds; "=" and "-" never match aromatic bonds.
func plainBond(n neighbor) bool { return n.bond.Aromatic || n.bond.Type == SingleBond }
func singleBond(n neighbor) bool { return !n.bond.Aromatic && n.bond.Type == SingleBond }
func doubleBond(n neighbor) bool { return !n.bond.Aromatic && n.bond.Type == DoubleBond }
func tripleBond(n neighbor) bool { return n.bond.Type == TripleBond }
func aromaticLink(n neighbor) bool { return n.bond.Aromatic }

func heavy(n neighbor) bool { return n.atom.Element != 1 }
func aliphaticHeavy(n neighbor) bool { return heavy(n) && !n.atom.Aromatic }
func aromaticAtom(n neighbor) bool { return n.atom.Aromatic }
func aliphaticC(n neighbor) bool { return n.atom.Element == 6 && !n.atom.Aromatic }
func aromaticC(n neighbor) bool { return n.atom.Element == 6 && n.atom.Aromatic }

func aliphaticElement(n neighbor, elems ...int) bool {
	if n.atom.Aromatic {
		return false
	}
	for _, z := range elems {
		if n.atom.Element == z {
			return true
		}
	}
	return false
}

func elementIn(z int, elems ...int) bool {
	for _, e := range elems {
		if z == e {
			return true
		}
	}
	return false
}

func atomType(m *Molecule, i int) string {
	a := m.Atoms[i]
	switch a.Element {
	case 0:
		return ""
	case 6:
		if a.Aromatic {
			return aromaticCarbonType(m, i)
		}
		return carbonType(m, i)
	case 7:
		return nitrogenType(m, i)
	case 8:
		return oxygenType(m, i)
	case 9, 17, 35, 53:
		if a.Charge != 0 {
			return "Hal"
		}
		return a.Symbol()
	case 15:
		return "P"
	case 16:
		switch {
		case a.Aromatic:
			return "S3"
		case a.Charge == 0:
			return "S1"
		default:
			return "S2"
		}
	case 3, 11, 19, 37, 55:
		return "Me1"
	default:
		return "Me2"
	}
}

// polarForC3 matches [N,O,P,S,F,Cl,Br,I].
func polarForC3(n neighbor) bool {
	return plainBond(n) && aliphaticElement(n, 7, 8, 15, 16, 9, 17, 35, 53)
}

func carbonType(m *Molecule, i int) string {
	nb := m.neighbors(i)
	h := m.TotalHydrogens(i)
	x := m.connectivity(i)

	alC := countWhere(nb, func(n neighbor) bool { return plainBond(n) && aliphaticC(n) })
	polar := countWhere(nb, polarForC3)
	aliph := countWhere(nb, func(n neighbor) bool { return plainBond(n) && aliphaticHeavy(n) })
	arom := countWhere(nb, func(n neighbor) bool { return plainBond(n) && aromaticAtom(n) })
	doubleC := countWhere(nb, func(n neighbor) bool { return doubleBond(n) && aliphaticC(n) })
	otherAliph := countWhere(nb, func(n neighbor) bool { return !doubleBond(n) && aliphaticHeavy(n) })

	switch {
	case h == 4,
		h == 3 && alC >= 1,
		h == 2 && alC >= 2:
		return "C1"
	case h == 1 && alC >= 3,
		h == 0 && alC >= 4:
		return "C2"
	case h == 3 && polar >= 1,
		h == 2 && x == 4 && polar >= 1 && aliph >= 2:
		return "C3"
	case h == 1 && x == 4 && polar >= 1 && aliph >= 3,
		h == 0 && x == 4 && polar >= 1 && aliph >= 4:
		return "C4"
	case anyWhere(nb, func(n neighbor) bool { return doubleBond(n) && aliphaticHeavy(n) && n.atom.Element != 6 }):
		return "C5"
	case h == 2 && doubleC >= 1,
		h == 1 && doubleC >= 1 && otherAliph >= 1,
		h == 0 && doubleC >= 1 && otherAliph >= 2,
		doubleC >= 2:
		return "C6"
	case x == 2 && anyWhere(nb, func(n neighbor) bool { return tripleBond(n) && aliphaticHeavy(n) }):
		return "C7"
	case h == 3 && anyWhere(nb, func(n neighbor) bool { return plainBond(n) && aromaticC(n) }):
		return "C8"
	case h == 3 && arom >= 1:
		return "C9"
	case h == 2 && x == 4 && arom >= 1:
		return "C10"
	case h == 1 && x == 4 && arom >= 1:
		return "C11"
	case h == 0 && x == 4 && arom >= 1:
		return "C12"
	case doubleC >= 1 && arom >= 1 && otherAliph >= 1,
		doubleC >= 1 && arom >= 2 && anyWhere(nb, func(n neighbor) bool { return plainBond(n) && aromaticC(n) }),
		h == 1 && doubleC >= 1 && arom >= 1,
		anyWhere(nb, func(n neighbor) bool { return doubleBond(n) && aromaticC(n) }):
		return "C26"
	case x == 4 && anyWhere(nb, func(n neighbor) bool {
		return plainBond(n) && aliphaticHeavy(n) && !elementIn(n.atom.Element, 6, 7, 8, 15, 16, 9, 17, 35, 53)
	}):
		return "C27"
	}
	return "CS"
}

func aromaticCarbonType(m *Molecule, i int) string {
	nb := m.neighbors(i)
	h := m.TotalHydrogens(i)
	ring := countWhere(nb, func(n neighbor) bool { return aromaticLink(n) && aromaticAtom(n) })
	hasElement := func(z int) bool {
		return anyWhere(nb, func(n neighbor) bool { return plainBond(n) && n.atom.Element == z })
	}
	singleTo := func(pred func(neighbor) bool) bool {
		return anyWhere(nb, func(n neighbor) bool { return singleBond(n) && pred(n) })
	}

	switch {
	case h == 0 && singleTo(func(n neighbor) bool {
		return aliphaticHeavy(n) && !elementIn(n.atom.Element, 6, 7, 8, 16, 9, 17, 35, 53)
	}):
		return "C13"
	case hasElement(9):
		return "C14"
	case hasElement(17):
		return "C15"
	case hasElement(35):
		return "C16"
	case hasElement(53):
		return "C17"
	case h == 1:
		return "C18"
	case ring >= 3:
		return "C19"
	case ring >= 2 && singleTo(aromaticAtom):
		return "C20"
	case ring >= 2 && singleTo(aliphaticC):
		return "C21"
	case ring >= 2 && singleTo(func(n neighbor) bool { return aliphaticElement(n, 7) }):
		return "C22"
	case ring >= 2 && singleTo(func(n neighbor) bool { return aliphaticElement(n, 8) }):
		return "C23"
	case ring >= 2 && singleTo(func(n neighbor) bool { return aliphaticElement(n, 16) }):
		return "C24"
	case ring >= 2 && anyWhere(nb, func(n neighbor) bool { return doubleBond(n) && aliphaticElement(n, 6, 7, 8) }):
		return "C25"
	}
	return "CS"
}

func nitrogenType(m *Molecule, i int) string {
	a := m.Atoms[i]
	if a.Aromatic {
		switch {
		case a.Charge == 0:
			return "N11"
		case a.Charge > 0:
			return "N12"
		}
		return "NS"
	}

	nb := m.neighbors(i)
	h := m.TotalHydrogens(i)
	chg := a.Charge
	heavyN := countWhere(nb, heavy)
	aliph := countWhere(nb, func(n neighbor) bool { return plainBond(n) && aliphaticHeavy(n) })
	arom := countWhere(nb, func(n neighbor) bool { return plainBond(n) && aromaticAtom(n) })
	doubleHeavy := anyWhere(nb, func(n neighbor) bool { return doubleBond(n) && heavy(n) })
	tripleAliph := anyWhere(nb, func(n neighbor) bool { return tripleBond(n) && aliphaticHeavy(n) })

	switch {
	case h == 2 && chg == 0 && aliph >= 1:
		return "N1"
	case h == 1 && chg == 0 && aliph >= 2:
		return "N2"
	case h == 2 && chg == 0 && arom >= 1:
		return "N3"
	case h == 1 && chg == 0 && arom >= 1 && heavyN >= 2:
		return "N4"
	case h == 1 && chg == 0 && doubleHeavy:
		return "N5"
	case chg == 0 && doubleHeavy && heavyN >= 2:
		return "N6"
	case chg == 0 && aliph >= 3:
		return "N7"
	case chg == 0 && arom >= 1 && aliph >= 1 && heavyN >= 3,
		chg == 0 && arom >= 3:
		return "N8"
	case chg == 0 && tripleAliph:
		return "N9"
	case h >= 1 && h <= 3 && chg >= 1 && chg <= 3:
		return "N10"
	}

	if h == 0 && chg >= 1 && chg <= 3 {
		if aliph >= 4 {
			return "N13"
		}
		doubles := 0
		for _, d := range nb {
			if !doubleBond(d) {
				continue
			}
			doubles++
			if !aliphaticHeavy(d) {
				continue
			}
			others := 0
			aliphOthers := 0
			for _, o := range nb {
				if o.idx == d.idx || !heavy(o) {
					continue
				}
				others++
				if aliphaticHeavy(o) {
					aliphOthers++
				}
			}
			if aliphOthers >= 1 && others >= 2 {
				return "N13"
			}
		}
		if doubles == 2 &&
			anyWhere(nb, func(n neighbor) bool { return doubleBond(n) && n.atom.Element == 6 }) &&
			anyWhere(nb, func(n neighbor) bool { return doubleBond(n) && n.atom.Element == 7 }) {
			return "N13"
		}
	}
	switch {
	case chg > 0 && tripleAliph,
		chg < 0,
		chg > 0 && anyWhere(nb, func(n neighbor) bool { return doubleBond(n) && aliphaticElement(n, 7) && n.atom.Charge < 0 }):
		return "N14"
	}
	return "NS"
}

func oxygenType(m *Molecule, i int) string {
	a := m.Atoms[i]
	if a.Aromatic {
		return "O1"
	}
	nb := m.neighbors(i)
	h := m.TotalHydrogens(i)
	x := m.connectivity(i)
	chg := a.Charge
	heavyN := countWhere(nb, heavy)

	switch {
	case h == 1 || h == 2:
		return "O2"
	case countWhere(nb, func(n neighbor) bool { return plainBond(n) && aliphaticHeavy(n) }) >= 2:
		return "O3"
	case anyWhere(nb, func(n neighbor) bool { return plainBond(n) && aromaticAtom(n) }) && heavyN >= 2:
		return "O4"
	case anyWhere(nb, func(n neighbor) bool { return doubleBond(n) && elementIn(n.atom.Element, 7, 8) }),
		x == 1 && chg == -1 && anyWhere(nb, func(n neighbor) bool { return n.atom.Element == 7 }):
		return "O5"
	case x == 1 && chg == -1 && anyWhere(nb, func(n neighbor) bool { return n.atom.Element == 16 }):
		return "O6"
	case chg == -1 && anyWhere(nb, func(n neighbor) bool { return aliphaticC(n) && hasDoubleO(m, n.idx, i) }):
		return "O12"
	case x == 1 && chg == -1 && anyWhere(nb, func(n neighbor) bool {
		return heavy(n) && !aliphaticElement(n, 7, 16)
	}):
		return "O7"
	case anyWhere(nb, func(n neighbor) bool { return doubleBond(n) && aromaticC(n) }):
		return "O8"
	}

	for _, n := range nb {
		if !doubleBond(n) || !aliphaticC(n) {
			continue
		}
		if t := carbonylOxygenType(m, n.idx, i); t != "" {
			return t
		}
	}
	return "OS"
}

// hasDoubleO reports whether carbon c has a double bond to an aliphatic
// oxygen other than skip.
func hasDoubleO(m *Molecule, c, skip int) bool {
	return anyWhere(m.neighbors(c), func(n neighbor) bool {
		return n.idx != skip && doubleBond(n) && aliphaticElement(n, 8)
	})
}

// carbonylOxygenType types an oxygen double bonded to aliphatic carbon c.
func carbonylOxygenType(m *Molecule, c, oxygen int) string {
	var others []neighbor
	for _, n := range m.neighbors(c) {
		if n.idx != oxygen {
			others = append(others, n)
		}
	}
	ch := m.TotalHydrogens(c)

	has := func(pred func(neighbor) bool) bool { return anyWhere(others, pred) }
	// pair reports whether two distinct neighbours satisfy p and q.
	pair := func(p, q func(neighbor) bool) bool {
		for _, a := range others {
			for _, b := range others {
				if a.idx != b.idx && p(a) && q(b) {
					return true
				}
			}
		}
		return false
	}
	isC := func(n neighbor) bool { return plainBond(n) && aliphaticC(n) }
	isAliph := func(n neighbor) bool { return plainBond(n) && aliphaticHeavy(n) }
	isCarbon := func(n neighbor) bool { return plainBond(n) && n.atom.Element == 6 }
	isArom := func(n neighbor) bool { return plainBond(n) && aromaticAtom(n) }
	isAromC := func(n neighbor) bool { return plainBond(n) && aromaticC(n) }
	isHetero := func(n neighbor) bool { return plainBond(n) && heavy(n) && n.atom.Element != 6 }

	switch {
	case ch == 1 && has(isC),
		pair(isC, isC),
		pair(isC, isAliph),
		ch == 1 && has(func(n neighbor) bool { return plainBond(n) && aliphaticElement(n, 7, 8) }),
		ch == 2,
		m.connectivity(c) == 2 && has(func(n neighbor) bool { return doubleBond(n) && aliphaticElement(n, 8) }):
		return "O9"
	case ch == 1 && has(isAromC),
		pair(isCarbon, isArom),
		pair(isAromC, isAliph):
		return "O10"
	case pair(isHetero, isHetero):
		return "O11"
	}
	return ""
}

func hydrogenType(m *Molecule, parent, self int) string {
	if parent < 0 {
		return "HS"
	}
	p := m.Atoms[parent]
	switch p.Element {
	case 1, 6:
		return "H1"
	case 7:
		return "H3"
	case 8:
	default:
		return "H2"
	}

	var others []neighbor
	for _, n := range m.neighbors(parent) {
		if n.idx != self {
			others = append(others, n)
		}
	}
	otherH := p.Hydrogens
	if self < 0 {
		otherH--
	}

	switch {
	case anyWhere(others, func(n neighbor) bool { return aliphaticC(n) && m.connectivity(n.idx) == 4 }),
		anyWhere(others, aromaticC),
		otherH > 0,
		anyWhere(others, func(n neighbor) bool { return !elementIn(n.atom.Element, 6, 7, 8, 16) }):
		return "H2"
	case anyWhere(others, func(n neighbor) bool { return n.atom.Element == 7 }):
		return "H3"
	case anyWhere(others, func(n neighbor) bool {
		return aliphaticC(n) && anyWhere(m.neighbors(n.idx), func(d neighbor) bool {
			return d.idx != parent && doubleBond(d) &&
				(elementIn(d.atom.Element, 6, 7) || aliphaticElement(d, 8, 16))
		})
	}),
		anyWhere(others, func(n neighbor) bool { return aliphaticElement(n, 8, 16) }):
		return "H4"
	}
	return "HS"
}
