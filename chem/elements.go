package chem

// element describes one entry of the periodic table as used by the parser and
// the descriptor calculators.
type element struct {
	symbol   string
	mass     float64 // monoisotopic mass of the most abundant isotope
	valences []int   // allowed valences, nil when unconstrained (metals)
}

const (
	hydrogenMass = 1.00782503223
	electronMass = 0.00054857990946
)

// elements is indexed by atomic number. Index 0 is the "*" wildcard.
var elements = []element{
	{"*", 0, nil},
	{"H", 1.00782503223, []int{1}},
	{"He", 4.00260325413, []int{0}},
	{"Li", 7.0160034366, []int{1}},
	{"Be", 9.012183065, []int{2}},
	{"B", 11.00930536, []int{3}},
	{"C", 12.0, []int{4}},
	{"N", 14.00307400443, []int{3}},
	{"O", 15.99491461957, []int{2}},
	{"F", 18.99840316273, []int{1}},
	{"Ne", 19.9924401762, []int{0}},
	{"Na", 22.989769282, []int{1}},
	{"Mg", 23.985041697, []int{2}},
	{"Al", 26.98153853, []int{3}},
	{"Si", 27.97692653465, []int{4}},
	{"P", 30.97376199842, []int{3, 5, 7}},
	{"S", 31.9720711744, []int{2, 4, 6}},
	{"Cl", 34.968852682, []int{1}},
	{"Ar", 39.9623831237, []int{0}},
	{"K", 38.9637064864, []int{1}},
	{"Ca", 39.962590863, []int{2}},
	{"Sc", 44.95590828, nil},
	{"Ti", 47.94794198, nil},
	{"V", 50.94395704, nil},
	{"Cr", 51.94050623, nil},
	{"Mn", 54.93804391, nil},
	{"Fe", 55.93493633, nil},
	{"Co", 58.93319429, nil},
	{"Ni", 57.93534241, nil},
	{"Cu", 62.92959772, nil},
	{"Zn", 63.92914201, nil},
	{"Ga", 68.9255735, nil},
	{"Ge", 73.921177761, []int{4}},
	{"As", 74.92159457, []int{3, 5, 7}},
	{"Se", 79.9165218, []int{2, 4, 6}},
	{"Br", 78.9183376, []int{1}},
	{"Kr", 83.9114977282, []int{0}},
	{"Rb", 84.9117897379, []int{1}},
	{"Sr", 87.9056125, []int{2}},
	{"Y", 88.9058403, nil},
	{"Zr", 89.9046977, nil},
	{"Nb", 92.906373, nil},
	{"Mo", 97.90540482, nil},
	{"Tc", 97.9072124, nil},
	{"Ru", 101.9043441, nil},
	{"Rh", 102.905498, nil},
	{"Pd", 105.9034804, nil},
	{"Ag", 106.9050916, nil},
	{"Cd", 113.90336509, nil},
	{"In", 114.903878776, nil},
	{"Sn", 119.90220163, []int{2, 4}},
	{"Sb", 120.903812, []int{3, 5, 7}},
	{"Te", 129.906222748, []int{2, 4, 6}},
	{"I", 126.9044719, []int{1, 3, 5}},
	{"Xe", 131.9041550856, []int{0, 2, 4, 6}},
	{"Cs", 132.905451961, []int{1}},
	{"Ba", 137.905247, []int{2}},
	{"La", 138.9063563, nil},
	{"Ce", 139.9054431, nil},
	{"Pr", 140.9076576, nil},
	{"Nd", 141.907729, nil},
	{"Pm", 144.9127559, nil},
	{"Sm", 151.9197397, nil},
	{"Eu", 152.921238, nil},
	{"Gd", 157.9241123, nil},
	{"Tb", 158.9253547, nil},
	{"Dy", 163.9291819, nil},
	{"Ho", 164.9303288, nil},
	{"Er", 165.9302995, nil},
	{"Tm", 168.9342179, nil},
	{"Yb", 173.9388664, nil},
	{"Lu", 174.9407752, nil},
	{"Hf", 179.946557, nil},
	{"Ta", 180.9479958, nil},
	{"W", 183.95093092, nil},
	{"Re", 186.9557501, nil},
	{"Os", 191.961477, nil},
	{"Ir", 192.9629216, nil},
	{"Pt", 194.9647917, nil},
	{"Au", 196.96656879, nil},
	{"Hg", 201.9706434, nil},
	{"Tl", 204.9744278, nil},
	{"Pb", 207.9766525, []int{2, 4}},
	{"Bi", 208.9803991, []int{3, 5}},
	{"Po", 208.9824308, nil},
	{"At", 209.9871479, []int{1}},
	{"Rn", 222.0175782, []int{0}},
	{"Fr", 223.019736, []int{1}},
	{"Ra", 226.0254103, []int{2}},
	{"Ac", 227.0277523, nil},
	{"Th", 232.0380558, nil},
	{"Pa", 231.0358842, nil},
	{"U", 238.0507884, nil},
}

var symbolToNumber = func() map[string]int {
	m := make(map[string]int, len(elements))
	for z, e := range elements {
		m[e.symbol] = z
	}
	return m
}()

// isotopeMasses holds exact masses for the labelled isotopes seen in practice.
var isotopeMasses = map[[2]int]float64{
	{1, 2}:    2.01410177812,
	{1, 3}:    3.0160492779,
	{6, 11}:   11.0114336,
	{6, 13}:   13.00335483507,
	{6, 14}:   14.0032419884,
	{7, 15}:   15.00010889888,
	{8, 17}:   16.9991317565,
	{8, 18}:   17.99915961286,
	{9, 18}:   18.000938,
	{15, 32}:  31.97390764,
	{16, 34}:  33.967867004,
	{16, 35}:  34.96903231,
	{17, 37}:  36.965902602,
	{35, 81}:  80.9162897,
	{53, 123}: 122.9055898,
	{53, 125}: 124.9046294,
	{53, 131}: 130.9061263,
}

// atomMass returns the exact mass of a single atom (without attached hydrogens).
func atomMass(z, isotope int) float64 {
	if isotope > 0 {
		if m, ok := isotopeMasses[[2]int{z, isotope}]; ok {
			return m
		}
		// Unlisted isotopes fall back to their mass number.
		return float64(isotope)
	}
	if z < 0 || z >= len(elements) {
		return 0
	}
	return elements[z].mass
}

// allowedValences returns the permitted valences of element z carrying the
// given formal charge. Charged main-group atoms take the valences of their
// isoelectronic neutral neighbour (N+ behaves like C, O- like F).
func allowedValences(z, charge int) []int {
	if z <= 0 || z >= len(elements) {
		return nil
	}
	base := elements[z].valences
	if charge == 0 || base == nil {
		return base
	}
	target := z - charge
	if target <= 0 || target >= len(elements) {
		return nil
	}
	return elements[target].valences
}

// organicSubset lists the elements that may be written without brackets.
var organicSubset = map[int]bool{5: true, 6: true, 7: true, 8: true, 9: true, 15: true, 16: true, 17: true, 35: true, 53: true}

// aromaticSymbols maps lowercase aromatic symbols to atomic numbers.
var aromaticSymbols = map[string]int{
	"b": 5, "c": 6, "n": 7, "o": 8, "p": 15, "s": 16,
	"se": 34, "as": 33, "te": 52,
}
