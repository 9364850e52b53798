package molecule

import (
	"sort"
	"strconv"
	"strings"
)

// Formula returns the molecular formula in Hill order. Hydrogens are counted
// whether they are graph atoms, bracket hydrogens or implicit. Wildcards are
// reported as "*".
func Formula(m *Molecule) string {
	counts := make(map[string]int)
	for i := 0; i < m.NumAtoms(); i++ {
		counts[Symbol(m.atoms[i].AtomicNum)]++
		if h := m.TotalHs(i); h > 0 {
			counts["H"] += h
		}
	}

	var sb strings.Builder
	emit := func(sym string) {
		n := counts[sym]
		if n == 0 {
			return
		}
		sb.WriteString(sym)
		if n > 1 {
			sb.WriteString(strconv.Itoa(n))
		}
		delete(counts, sym)
	}
	if counts["C"] > 0 {
		emit("C")
		emit("H")
	}
	rest := make([]string, 0, len(counts))
	for sym := range counts {
		rest = append(rest, sym)
	}
	sort.Strings(rest)
	for _, sym := range rest {
		emit(sym)
	}
	return sb.String()
}
