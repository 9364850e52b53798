package molecule

// symbols is indexed by atomic number. Index 0 is the wildcard atom.
var symbols = [...]string{
	"*",
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd",
	"In", "Sn", "Sb", "Te", "I", "Xe",
	"Cs", "Ba", "La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy",
	"Ho", "Er", "Tm", "Yb", "Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt",
	"Au", "Hg", "Tl", "Pb", "Bi", "Po", "At", "Rn",
	"Fr", "Ra", "Ac", "Th", "Pa", "U",
}

var symbolToNum = func() map[string]int {
	m := make(map[string]int, len(symbols))
	for z, s := range symbols {
		m[s] = z
	}
	return m
}()

// allowedValences lists the permitted total valences per element in ascending
// order. Elements absent from the map are unconstrained.
var allowedValences = map[int][]int{
	1:  {1},
	2:  {0},
	3:  {1},
	4:  {2},
	5:  {3},
	6:  {4},
	7:  {3},
	8:  {2},
	9:  {1},
	10: {0},
	11: {1},
	12: {2},
	13: {3},
	14: {4},
	15: {3, 5, 7},
	16: {2, 4, 6},
	17: {1},
	18: {0},
	19: {1},
	20: {2},
	32: {4},
	33: {3, 5, 7},
	34: {2, 4, 6},
	35: {1},
	36: {0},
	50: {2, 4},
	51: {3, 5},
	52: {2, 4, 6},
	53: {1, 3, 5},
	54: {0},
}

// isoelectronic marks the p-block elements whose charged forms take the
// valences of the neighbour element (N+ behaves as C, O- as F).
var isoelectronic = map[int]bool{
	5: true, 6: true, 7: true, 8: true, 9: true,
	14: true, 15: true, 16: true, 17: true,
	32: true, 33: true, 34: true, 35: true,
	51: true, 52: true, 53: true,
}

// organicSubset holds the elements that may be written without brackets.
var organicSubset = map[int]bool{5: true, 6: true, 7: true, 8: true, 9: true, 15: true, 16: true, 17: true, 35: true, 53: true}

// aromaticCapable holds the elements accepted as lowercase aromatic symbols.
var aromaticCapable = map[int]bool{5: true, 6: true, 7: true, 8: true, 15: true, 16: true, 33: true, 34: true, 52: true}

// Symbol returns the element symbol for an atomic number, or "" when unknown.
func Symbol(atomicNum int) string {
	if atomicNum < 0 || atomicNum >= len(symbols) {
		return ""
	}
	return symbols[atomicNum]
}

// AtomicNumber returns the atomic number for an element symbol.
func AtomicNumber(symbol string) (int, bool) {
	z, ok := symbolToNum[symbol]
	return z, ok
}

// valencesFor returns the valence list that applies to an element carrying
// the given formal charge. A nil result means no constraint.
func valencesFor(atomicNum, charge int) []int {
	if atomicNum == 0 {
		return nil
	}
	if charge != 0 {
		if !isoelectronic[atomicNum] {
			if _, ok := allowedValences[atomicNum]; ok {
				return []int{0}
			}
			return nil
		}
		eff := atomicNum - charge
		if v, ok := allowedValences[eff]; ok {
			return v
		}
		return nil
	}
	return allowedValences[atomicNum]
}
