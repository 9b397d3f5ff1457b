package mol

// RingBonds marks every bond that sits on a cycle. A bond is a ring bond
// exactly when it is not a bridge of the graph, so this runs one
// bridge-finding DFS.
func (m *Molecule) RingBonds() []bool {
	n := len(m.atoms)
	ring := make([]bool, len(m.bonds))
	if n == 0 {
		return ring
	}

	disc := make([]int, n)
	low := make([]int, n)
	for i := range disc {
		disc[i] = -1
	}

	type frame struct {
		atom   int
		inBond int // bond index used to enter atom, -1 at roots
		next   int // cursor into adj list
	}

	timer := 0
	for start := 0; start < n; start++ {
		if disc[start] != -1 {
			continue
		}

		stack := []frame{{atom: start, inBond: -1}}
		disc[start] = timer
		low[start] = timer
		timer++

		for len(stack) > 0 {
			f := &stack[len(stack)-1]

			if f.next < len(m.adj[f.atom]) {
				bi := m.adj[f.atom][f.next]
				f.next++

				if bi == f.inBond {
					continue
				}
				to := m.bonds[bi].Other(f.atom)

				if disc[to] == -1 {
					disc[to] = timer
					low[to] = timer
					timer++
					stack = append(stack, frame{atom: to, inBond: bi})
					continue
				}

				// Back edge: 'to' already visited, bond bi closes a cycle.
				if disc[to] < low[f.atom] {
					low[f.atom] = disc[to]
				}
				ring[bi] = true
				continue
			}

			// Done with f.atom: propagate low to parent and classify the
			// entering bond.
			stack = stack[:len(stack)-1]
			if f.inBond == -1 {
				continue
			}
			parent := m.bonds[f.inBond].Other(f.atom)
			if low[f.atom] < low[parent] {
				low[parent] = low[f.atom]
			}
			if low[f.atom] <= disc[parent] {
				ring[f.inBond] = true
			}
		}
	}

	return ring
}
