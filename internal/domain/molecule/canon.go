package molecule

import (
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// atomKey is the initial, order-independent invariant of an atom.
type atomKey struct {
	hydrogen  int
	degree    int
	atomicNum int
	isotope   int
	charge    int
	totalH    int
	aromatic  int
	ringCount int
	mapNum    int
}

func (k atomKey) less(o atomKey) bool {
	a := [...]int{k.hydrogen, k.degree, k.atomicNum, k.isotope, k.charge, k.totalH, k.aromatic, k.ringCount, k.mapNum}
	b := [...]int{o.hydrogen, o.degree, o.atomicNum, o.isotope, o.charge, o.totalH, o.aromatic, o.ringCount, o.mapNum}
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func initialKey(m *Molecule, rings *RingInfo, i int) atomKey {
	a := m.atoms[i]
	k := atomKey{
		degree:    m.Degree(i),
		atomicNum: a.AtomicNum,
		isotope:   a.Isotope,
		charge:    a.Charge,
		totalH:    m.TotalHs(i),
		ringCount: rings.NumAtomRings(i),
		mapNum:    a.MapNum,
	}
	if a.AtomicNum == 1 {
		k.hydrogen = 1
	}
	if a.Aromatic {
		k.aromatic = 1
	}
	return k
}

// CanonicalRanks returns a rank per atom that depends only on the graph, not
// on the input atom order. Ranks are distinct and start at 0.
func CanonicalRanks(m *Molecule) []int {
	n := m.NumAtoms()
	if n == 0 {
		return nil
	}
	rings := m.Rings()
	keys := make([]atomKey, n)
	for i := range keys {
		keys[i] = initialKey(m, rings, i)
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool { return keys[order[x]].less(keys[order[y]]) })
	rank := make([]int, n)
	class := 0
	for pos, i := range order {
		if pos > 0 && keys[order[pos-1]] != keys[i] {
			class++
		}
		rank[i] = class
	}

	for refine(m, rank) < n {
		breakTie(rank)
	}
	return rank
}

func countClasses(rank []int) int {
	seen := make(map[int]bool, len(rank))
	for _, r := range rank {
		seen[r] = true
	}
	return len(seen)
}

// refine splits rank classes by the multiset of neighbour ranks and bond
// orders until the partition is stable. It returns the number of classes.
func refine(m *Molecule, rank []int) int {
	n := len(rank)
	classes := countClasses(rank)
	if classes == n {
		return n
	}
	sig := make([]uint64, n)
	buf := make([]byte, 0, 64)
	nb := make([]uint64, 0, 8)
	for {
		for i := 0; i < n; i++ {
			nb = nb[:0]
			for _, bi := range m.adj[i] {
				bd := m.bonds[bi]
				nb = append(nb, uint64(rank[bd.Other(i)])<<4|uint64(bd.Order))
			}
			sort.Slice(nb, func(x, y int) bool { return nb[x] < nb[y] })
			buf = buf[:0]
			for _, v := range nb {
				buf = binary.LittleEndian.AppendUint64(buf, v)
			}
			sig[i] = xxhash.Sum64(buf)
		}

		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(x, y int) bool {
			a, b := order[x], order[y]
			if rank[a] != rank[b] {
				return rank[a] < rank[b]
			}
			return sig[a] < sig[b]
		})
		next := make([]int, n)
		count := 0
		for pos, i := range order {
			if pos > 0 {
				p := order[pos-1]
				if rank[p] != rank[i] || sig[p] != sig[i] {
					count++
				}
			}
			next[i] = count
		}
		count++
		copy(rank, next)
		if count == classes || count == n {
			return count
		}
		classes = count
	}
}

// breakTie separates the lowest-index atom of the smallest tied class from
// its peers.
func breakTie(rank []int) {
	n := len(rank)
	size := make(map[int]int, n)
	for _, r := range rank {
		size[r]++
	}
	tied, chosen := -1, -1
	for i, r := range rank {
		if size[r] < 2 {
			continue
		}
		if tied < 0 || r < tied {
			tied, chosen = r, i
		}
	}
	if chosen < 0 {
		return
	}
	for i, r := range rank {
		rank[i] = 2*r + 1
	}
	rank[chosen] = 2 * tied
	dense(rank)
}

func dense(rank []int) {
	vals := append([]int(nil), rank...)
	sort.Ints(vals)
	idx := make(map[int]int, len(vals))
	for _, v := range vals {
		if _, ok := idx[v]; !ok {
			idx[v] = len(idx)
		}
	}
	for i, r := range rank {
		rank[i] = idx[r]
	}
}
