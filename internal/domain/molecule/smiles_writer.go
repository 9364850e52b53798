package molecule

import (
	"sort"
	"strconv"
	"strings"
)

// ToSMILES returns the canonical SMILES of m. Hydrogens that are graph atoms
// are written as [H]; atoms are bracketed whenever the organic-subset
// reading would assign a different hydrogen count.
func ToSMILES(m *Molecule) string {
	if m.NumAtoms() == 0 {
		return ""
	}
	w := &smilesWriter{
		m:         m,
		rank:      CanonicalRanks(m),
		visited:   make([]bool, m.NumAtoms()),
		bondDone:  make([]bool, m.NumBonds()),
		children:  make([][]int, m.NumAtoms()),
		ringOpen:  make([][]int, m.NumAtoms()),
		ringClose: make([][]int, m.NumAtoms()),
		digitOf:   make(map[int]int),
	}

	byRank := make([]int, m.NumAtoms())
	for i := range byRank {
		byRank[i] = i
	}
	sort.Slice(byRank, func(x, y int) bool { return w.rank[byRank[x]] < w.rank[byRank[y]] })

	var sb strings.Builder
	for _, start := range byRank {
		if w.visited[start] {
			continue
		}
		w.plan(start, -1)
		if sb.Len() > 0 {
			sb.WriteByte('.')
		}
		w.write(&sb, start, -1)
	}
	return sb.String()
}

type smilesWriter struct {
	m         *Molecule
	rank      []int
	visited   []bool
	bondDone  []bool
	children  [][]int // bond indices of DFS tree edges leaving each atom
	ringOpen  [][]int
	ringClose [][]int
	digitOf   map[int]int
	inUse     [100]bool
}

func (w *smilesWriter) sortedBonds(u int) []int {
	bonds := append([]int(nil), w.m.adj[u]...)
	sort.Slice(bonds, func(x, y int) bool {
		return w.rank[w.m.bonds[bonds[x]].Other(u)] < w.rank[w.m.bonds[bonds[y]].Other(u)]
	})
	return bonds
}

// plan walks the component depth-first and records tree edges and ring
// closures.
func (w *smilesWriter) plan(u, parentBond int) {
	w.visited[u] = true
	for _, bi := range w.sortedBonds(u) {
		if bi == parentBond || w.bondDone[bi] {
			continue
		}
		w.bondDone[bi] = true
		v := w.m.bonds[bi].Other(u)
		if w.visited[v] {
			w.ringOpen[v] = append(w.ringOpen[v], bi)
			w.ringClose[u] = append(w.ringClose[u], bi)
			continue
		}
		w.children[u] = append(w.children[u], bi)
		w.plan(v, bi)
	}
}

func (w *smilesWriter) write(sb *strings.Builder, u, parentBond int) {
	if parentBond >= 0 {
		sb.WriteString(w.bondSymbol(parentBond))
	}
	sb.WriteString(atomToken(w.m, u))

	for _, bi := range w.ringClose[u] {
		sb.WriteString(digitString(w.digitOf[bi]))
	}
	for _, bi := range w.ringOpen[u] {
		d := w.freeDigit()
		w.inUse[d] = true
		w.digitOf[bi] = d
		sb.WriteString(w.bondSymbol(bi))
		sb.WriteString(digitString(d))
	}
	for _, bi := range w.ringClose[u] {
		w.inUse[w.digitOf[bi]] = false
	}

	kids := w.children[u]
	for i, bi := range kids {
		v := w.m.bonds[bi].Other(u)
		if i < len(kids)-1 {
			sb.WriteByte('(')
			w.write(sb, v, bi)
			sb.WriteByte(')')
		} else {
			w.write(sb, v, bi)
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

func digitString(d int) string {
	if d < 10 {
		return strconv.Itoa(d)
	}
	return "%" + strconv.Itoa(d)
}

func (w *smilesWriter) bondSymbol(bi int) string {
	bd := w.m.bonds[bi]
	bothAromatic := w.m.atoms[bd.Begin].Aromatic && w.m.atoms[bd.End].Aromatic
	switch bd.Order {
	case BondDouble:
		return "="
	case BondTriple:
		return "#"
	case BondQuadruple:
		return "$"
	case BondAromatic:
		if bothAromatic {
			return ""
		}
		return ":"
	default:
		if bothAromatic {
			return "-"
		}
		return ""
	}
}

// atomToken renders atom i, bracketing it when the organic-subset form would
// not read back with the same properties.
func atomToken(m *Molecule, i int) string {
	a := m.atoms[i]
	totalH := m.TotalHs(i)
	plain := a.Charge == 0 && a.Isotope == 0 && a.MapNum == 0

	if a.AtomicNum == 0 {
		if plain && totalH == 0 && !a.Aromatic {
			return "*"
		}
	} else if plain && organicSubset[a.AtomicNum] && (!a.Aromatic || writableAromatic[a.AtomicNum]) {
		implied := m.implicitHOf(i, Atom{AtomicNum: a.AtomicNum, Aromatic: a.Aromatic})
		if implied == totalH {
			return elementToken(a)
		}
	}

	var sb strings.Builder
	sb.WriteByte('[')
	if a.Isotope > 0 {
		sb.WriteString(strconv.Itoa(a.Isotope))
	}
	sb.WriteString(elementToken(a))
	if totalH > 0 {
		sb.WriteByte('H')
		if totalH > 1 {
			sb.WriteString(strconv.Itoa(totalH))
		}
	}
	switch {
	case a.Charge == 1:
		sb.WriteByte('+')
	case a.Charge == -1:
		sb.WriteByte('-')
	case a.Charge > 1:
		sb.WriteString("+" + strconv.Itoa(a.Charge))
	case a.Charge < -1:
		sb.WriteString(strconv.Itoa(a.Charge))
	}
	if a.MapNum > 0 {
		sb.WriteString(":" + strconv.Itoa(a.MapNum))
	}
	sb.WriteByte(']')
	return sb.String()
}

// writableAromatic holds the elements with an unbracketed aromatic symbol.
var writableAromatic = map[int]bool{5: true, 6: true, 7: true, 8: true, 15: true, 16: true}

func elementToken(a Atom) string {
	sym := Symbol(a.AtomicNum)
	if a.Aromatic && aromaticCapable[a.AtomicNum] {
		return strings.ToLower(sym)
	}
	return sym
}
