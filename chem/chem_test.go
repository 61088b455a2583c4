package chem

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleDrug = "CC(=O)OC1=CC=C(N(C)CCN(C)C)C=C1"

func TestParseValid(t *testing.T) {
	tests := []struct {
		smiles string
		atoms  int
	}{
		{"CCO", 3},
		{"c1ccccc1", 6},
		{"C1=CC=CC=C1", 6},
		{"CC(=O)Oc1ccccc1C(=O)O", 13},
		{"c1cc[nH]c1", 5},
		{"O=c1cccc[nH]1", 7},
		{"[NH4+]", 1},
		{"C[N+](C)(C)C", 5},
		{"CC(=O)[O-]", 4},
		{"[2H]C", 2},
		{"C%10CC%10", 3},
		{"CC.O", 3},
		{"[Na+].[Cl-]", 2},
		{"C[C@@H](N)C(=O)O", 6},
		{"F/C=C/F", 4},
		{"CS(=O)(=O)C", 5},
		{"c1ccc2ccccc2c1", 10},
		{exampleDrug, 17},
	}

	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			m, err := Parse(tt.smiles)
			require.NoError(t, err)
			assert.Equal(t, tt.atoms, m.NumAtoms())
		})
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name   string
		smiles string
	}{
		{"free text", "not_a_smiles"},
		{"empty", ""},
		{"whitespace", "   "},
		{"unclosed ring", "C1CC"},
		{"unclosed branch", "C(C"},
		{"unbalanced parenthesis", "CC)"},
		{"pentavalent carbon", "C(=C)(C)(C)C"},
		{"five membered aromatic carbon ring", "c1cccc1"},
		{"unknown element", "[Xx]"},
		{"dangling bond", "CC="},
		{"double separator", "C..C"},
		{"unterminated bracket", "[NH4+"},
		{"ring bond to itself", "C11"},
		{"non-ring aromatic atom", "cC"},
		{"tetravalent nitrogen", "CN(C)(C)C"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse(tt.smiles)
			require.Error(t, err)
			assert.Nil(t, m)

			var pe *ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

func TestImplicitHydrogens(t *testing.T) {
	m := MustParse("CCO")
	assert.Equal(t, 3, m.Atoms[0].Hydrogens)
	assert.Equal(t, 2, m.Atoms[1].Hydrogens)
	assert.Equal(t, 1, m.Atoms[2].Hydrogens)

	m = MustParse("c1cc[nH]c1")
	assert.Equal(t, 1, m.Atoms[3].Hydrogens)
	assert.Equal(t, 1, m.Atoms[0].Hydrogens)

	m = MustParse("[H]OC")
	assert.Equal(t, 2, m.NumAtoms(), "plain explicit hydrogens are folded into their neighbour")
	assert.Equal(t, 1, m.Atoms[0].Hydrogens)
	assert.Equal(t, 3, m.Atoms[1].Hydrogens)
}

func TestAromaticityPerception(t *testing.T) {
	tests := []struct {
		smiles   string
		aromatic int
	}{
		{"C1=CC=CC=C1", 6},
		{"c1ccccc1", 6},
		{"C1=CCCCC1", 0},
		{"c1cc[nH]c1", 5},
		{"c1ccoc1", 5},
		{"c1ccncc1", 6},
		{"c1ccc2ccccc2c1", 10},
		{"O=C1C=CC(=O)C=C1", 0},
		{"CCO", 0},
	}

	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			m := MustParse(tt.smiles)
			assert.Equal(t, tt.aromatic, m.AromaticAtomCount())
		})
	}
}

func TestFormula(t *testing.T) {
	assert.Equal(t, "C2H6O", MustParse("CCO").Formula())
	assert.Equal(t, "C9H8O4", MustParse("CC(=O)Oc1ccccc1C(=O)O").Formula())
	assert.Equal(t, "C13H20N2O2", MustParse(exampleDrug).Formula())
	assert.Equal(t, "H4N+", MustParse("[NH4+]").Formula())
}

func TestExactMolWt(t *testing.T) {
	tests := []struct {
		smiles string
		want   float64
	}{
		{"CCO", 46.04186481295},
		{"c1ccccc1", 78.04695019338},
		{"CC(=O)Oc1ccccc1C(=O)O", 180.04225873612},
		{"[NH4+]", 18.03382555344},
		{exampleDrug, 236.1524778926},
	}

	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			assert.InDelta(t, tt.want, ExactMolWt(MustParse(tt.smiles)), 1e-6)
		})
	}
}

func TestMolLogP(t *testing.T) {
	tests := []struct {
		smiles string
		want   float64
	}{
		{"CCO", -0.0014},
		{"c1ccccc1", 1.6866},
		{"C1=CC=CC=C1", 1.6866},
		{"CC(C)=O", 0.5953},
		{"Oc1ccccc1", 1.3922},
		{"CC(=O)Oc1ccccc1C(=O)O", 1.3101},
	}

	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			assert.InDelta(t, tt.want, MolLogP(MustParse(tt.smiles)), 1e-4)
		})
	}
}

func TestTPSA(t *testing.T) {
	tests := []struct {
		smiles string
		want   float64
	}{
		{"CCO", 20.23},
		{"c1ccccc1", 0},
		{"CC(C)=O", 17.07},
		{"CC(=O)Oc1ccccc1C(=O)O", 63.6},
		{"c1ccncc1", 12.89},
		{"CCN", 26.02},
		{"C1CO1", 12.53},
		{"O", 31.5},
	}

	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			assert.InDelta(t, tt.want, TPSA(MustParse(tt.smiles)), 1e-6)
		})
	}
}

func TestWrite(t *testing.T) {
	tests := []struct {
		smiles string
		want   string
	}{
		{"CCO", "CCO"},
		{"C1=CC=CC=C1", "c1ccccc1"},
		{"CC(=O)O", "CC(=O)O"},
		{"c1cc[nH]c1", "c1cc[nH]c1"},
		{"[NH4+]", "[NH4+]"},
		{"CC.O", "CC.O"},
		{"[H]OC", "OC"},
		{"C[C@@H](N)C(=O)O", "CC(N)C(=O)O"},
		{exampleDrug, "CC(=O)Oc1ccc(N(C)CCN(C)C)cc1"},
	}

	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			assert.Equal(t, tt.want, Write(MustParse(tt.smiles)))
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	inputs := []string{
		"CCO",
		"CC(=O)Oc1ccccc1C(=O)O",
		"c1ccc2ccccc2c1",
		"O=c1cccc[nH]1",
		"C[N+](C)(C)C",
		"c1ccc(-c2ccccc2)cc1",
		"[2H]C([2H])([2H])O",
		exampleDrug,
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			first := MustParse(in)
			out := Write(first)
			second, err := Parse(out)
			require.NoError(t, err, "written SMILES %q must parse", out)

			assert.Equal(t, first.Formula(), second.Formula())
			assert.InDelta(t, ExactMolWt(first), ExactMolWt(second), 1e-9)
			assert.InDelta(t, MolLogP(first), MolLogP(second), 1e-9)
			assert.InDelta(t, TPSA(first), TPSA(second), 1e-9)
			assert.Equal(t, out, Write(second), "writer output is stable")
		})
	}
}

func TestWriteAromatizesKekuleBenzene(t *testing.T) {
	assert.Equal(t, "c1ccccc1", Write(MustParse("C1=CC=CC=C1")))
}

func TestDepict(t *testing.T) {
	m := MustParse("CC(=O)Oc1ccccc1C(=O)O")

	img := Depict(m, DepictOptions{})
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())

	drawn := 0
	white := color.RGBA{255, 255, 255, 255}
	for y := 0; y < img.Bounds().Dy(); y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			if img.RGBAAt(x, y) != white {
				drawn++
			}
		}
	}
	assert.Greater(t, drawn, 100)

	small := Depict(MustParse("O"), DepictOptions{Width: 64, Height: 32})
	assert.Equal(t, 64, small.Bounds().Dx())
	assert.Equal(t, 32, small.Bounds().Dy())
}

func TestLayout2DBondLengths(t *testing.T) {
	m := MustParse("c1ccccc1")
	pos := Layout2D(m)
	require.Len(t, pos, 6)
	for _, b := range m.Bonds {
		dx, dy := pos[b.A].X-pos[b.B].X, pos[b.A].Y-pos[b.B].Y
		d := dx*dx + dy*dy
		assert.Greater(t, d, 0.25, "bonded atoms stay apart")
		assert.Less(t, d, 4.0, "bonded atoms stay close")
	}
}
