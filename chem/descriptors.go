package chem

// ExactMolWt returns the monoisotopic molecular weight, including implicit
// hydrogens and correcting for the electrons removed or added by formal
// charges.
func ExactMolWt(m *Molecule) float64 {
	total := 0.0
	charge := 0
	for _, a := range m.Atoms {
		total += atomMass(a.Element, a.Isotope)
		total += float64(a.Hydrogens) * hydrogenMass
		charge += a.Charge
	}
	return total - float64(charge)*electronMass
}

// bondCounts tallies the bonds of an atom to heavy neighbours by class.
type bondCounts struct {
	single, double, triple, aromatic int
}

func (m *Molecule) heavyBondCounts(i int) bondCounts {
	var c bondCounts
	for _, bi := range m.adj[i] {
		b := m.Bonds[bi]
		if m.Atoms[b.Other(i)].Element == 1 {
			continue
		}
		switch {
		case b.Aromatic:
			c.aromatic++
		case b.Type == SingleBond:
			c.single++
		case b.Type == DoubleBond:
			c.double++
		case b.Type == TripleBond:
			c.triple++
		}
	}
	return c
}

// TPSA returns the topological polar surface area (Ertl et al.) summed over
// nitrogen and oxygen atoms.
func TPSA(m *Molecule) float64 {
	total := 0.0
	for i := range m.Atoms {
		switch m.Atoms[i].Element {
		case 7:
			total += nitrogenPSA(m, i)
		case 8:
			total += oxygenPSA(m, i)
		}
	}
	return total
}

func nitrogenPSA(m *Molecule, i int) float64 {
	a := m.Atoms[i]
	nbrs := m.heavyDegree(i)
	h := m.TotalHydrogens(i)
	chg := a.Charge
	c := m.heavyBondCounts(i)
	in3 := m.inRingOfSize(i, 3)

	v := -1.0
	switch nbrs {
	case 1:
		switch {
		case h == 0 && chg == 0 && c.triple == 1:
			v = 23.79
		case h == 1 && chg == 0 && c.double == 1:
			v = 23.85
		case h == 2 && chg == 0 && c.single == 1:
			v = 26.02
		case h == 2 && chg == 1 && c.double == 1:
			v = 25.59
		case h == 3 && chg == 1 && c.single == 1:
			v = 27.64
		}
	case 2:
		switch {
		case h == 0 && chg == 0 && c.single == 1 && c.double == 1:
			v = 12.36
		case h == 0 && chg == 0 && c.triple == 1 && c.double == 1:
			v = 13.60
		case h == 1 && chg == 0 && c.single == 2 && in3:
			v = 21.94
		case h == 1 && chg == 0 && c.single == 2:
			v = 12.03
		case h == 0 && chg == 1 && c.triple == 1 && c.single == 1:
			v = 4.36
		case h == 1 && chg == 1 && c.double == 1 && c.single == 1:
			v = 13.97
		case h == 2 && chg == 1 && c.single == 2:
			v = 16.61
		case h == 0 && chg == 0 && c.aromatic == 2:
			v = 12.89
		case h == 1 && chg == 0 && c.aromatic == 2:
			v = 15.79
		case h == 1 && chg == 1 && c.aromatic == 2:
			v = 14.14
		}
	case 3:
		switch {
		case h == 0 && chg == 0 && c.single == 3 && in3:
			v = 3.01
		case h == 0 && chg == 0 && c.single == 3:
			v = 3.24
		case h == 0 && chg == 0 && c.single == 1 && c.double == 2:
			v = 11.68
		case h == 0 && chg == 1 && c.single == 2 && c.double == 1:
			v = 3.01
		case h == 1 && chg == 1 && c.single == 3:
			v = 4.44
		case h == 0 && chg == 0 && c.aromatic == 3:
			v = 4.41
		case h == 0 && chg == 0 && c.single == 1 && c.aromatic == 2:
			v = 4.93
		case h == 0 && chg == 0 && c.double == 1 && c.aromatic == 2:
			v = 8.39
		case h == 0 && chg == 1 && c.aromatic == 3:
			v = 4.10
		case h == 0 && chg == 1 && c.single == 1 && c.aromatic == 2:
			v = 3.88
		}
	case 4:
		if h == 0 && chg == 1 && c.single == 4 {
			v = 0
		}
	}
	if v < 0 {
		v = max(0, 30.5-8.2*float64(nbrs)+1.5*float64(h))
	}
	return v
}

func oxygenPSA(m *Molecule, i int) float64 {
	a := m.Atoms[i]
	nbrs := m.heavyDegree(i)
	h := m.TotalHydrogens(i)
	chg := a.Charge
	c := m.heavyBondCounts(i)

	v := -1.0
	switch nbrs {
	case 1:
		switch {
		case h == 0 && chg == 0 && c.double == 1:
			v = 17.07
		case h == 1 && chg == 0 && c.single == 1:
			v = 20.23
		case h == 0 && chg == -1 && c.single == 1:
			v = 23.06
		}
	case 2:
		switch {
		case h == 0 && chg == 0 && c.single == 2 && m.inRingOfSize(i, 3):
			v = 12.53
		case h == 0 && chg == 0 && c.single == 2:
			v = 9.23
		case h == 0 && chg == 0 && c.aromatic == 2:
			v = 13.14
		}
	}
	if v < 0 {
		v = max(0, 28.5-8.6*float64(nbrs)+1.5*float64(h))
	}
	return v
}
