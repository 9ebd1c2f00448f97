package speech

import (
	"fmt"
)

const (
	// MaxCandidates caps the pole-to-formant assignments kept per frame
	MaxCandidates = 300

	// Absent marks a formant slot that no pole was assigned to
	Absent = -1
)

// CandidateSet is a flat arena of candidates: candidate j occupies
// Slots[j*Formants : (j+1)*Formants], each entry a pole index or Absent.
type CandidateSet struct {
	Formants int   `json:"formants"`
	Slots    []int `json:"slots"`
}

// Len returns the number of candidates
func (c CandidateSet) Len() int {
	if c.Formants == 0 {
		return 0
	}
	return len(c.Slots) / c.Formants
}

// At returns the slot assignment of candidate j. The slice aliases the set.
func (c CandidateSet) At(j int) []int {
	return c.Slots[j*c.Formants : (j+1)*c.Formants]
}

// Merged reports whether candidate j puts F1 and F2 on the same pole
func (c CandidateSet) Merged(j int) bool {
	if c.Formants < 2 {
		return false
	}
	s := c.At(j)
	return s[0] >= 0 && s[0] == s[1]
}

// CandidateGenerator enumerates every legal mapping of poles onto formant
// slots. Mappings keep pole order: a higher slot never takes a lower pole,
// except that F2 may share F1's pole when merging is enabled.
//
// A generator reuses its arena between frames and is not safe for
// concurrent use.
type CandidateGenerator struct {
	nominal       NominalTable
	formants      int
	merge         bool
	maxCandidates int

	// per-call state
	freq     []float64
	npoles   int
	rows     []int
	last     int
	overflow bool
}

// NewCandidateGenerator creates a generator for the given number of slots
func NewCandidateGenerator(nominal NominalTable, formants int, merge bool) *CandidateGenerator {
	if formants < 1 {
		formants = 1
	}
	if formants > MaxFormants {
		formants = MaxFormants
	}

	return &CandidateGenerator{
		nominal:       nominal,
		formants:      formants,
		merge:         merge,
		maxCandidates: MaxCandidates,
		rows:          make([]int, MaxCandidates*formants),
	}
}

// Generate enumerates the candidates for the in-band poles of p. The order is
// the fixed depth-first order of the search, so equal inputs give equal sets.
// A frame without in-band poles yields an empty set. More than MaxCandidates
// mappings yields ErrCandidateOverflow and an empty set.
func (g *CandidateGenerator) Generate(p PoleSet) (CandidateSet, error) {
	set := CandidateSet{Formants: g.formants}
	if p.NPoles == 0 {
		return set, nil
	}

	g.freq = p.Freq
	g.npoles = p.NPoles
	g.last = 0
	g.overflow = false
	g.clearRow(0)

	g.search(0, 0, 0)
	g.freq = nil

	if g.overflow {
		return CandidateSet{Formants: g.formants}, fmt.Errorf("%w: %d in-band poles for %d formants exceed %d mappings",
			ErrCandidateOverflow, p.NPoles, g.formants, g.maxCandidates)
	}

	count := g.last + 1
	set.Slots = make([]int, count*g.formants)
	copy(set.Slots, g.rows[:count*g.formants])
	return set, nil
}

func (g *CandidateGenerator) row(cand int) []int {
	return g.rows[cand*g.formants : (cand+1)*g.formants]
}

func (g *CandidateGenerator) clearRow(cand int) {
	r := g.row(cand)
	for i := range r {
		r[i] = Absent
	}
}

// fits reports whether pole may fill slot
func (g *CandidateGenerator) fits(pole, slot int) bool {
	return g.nominal.Admits(slot, g.freq[pole])
}

// newRow opens another candidate that shares the first n slots of cand
func (g *CandidateGenerator) newRow(cand, n int) (int, bool) {
	if g.last+1 >= g.maxCandidates {
		g.overflow = true
		return 0, false
	}
	g.last++
	g.clearRow(g.last)
	copy(g.row(g.last)[:n], g.row(cand)[:n])
	return g.last, true
}

// search assigns pole to slot in candidate cand and explores every
// continuation: keep going with the next pole and slot, let F2 reuse the pole
// (merge), or leave this slot for a later pole in a new candidate. When the
// poles run out with the slot still empty, the slot stays Absent and the
// search resumes at the next slot.
func (g *CandidateGenerator) search(cand, pole, slot int) {
	if g.overflow {
		return
	}

	if slot < g.formants {
		g.row(cand)[slot] = Absent
	}

	if pole < g.npoles && slot < g.formants {
		if g.fits(pole, slot) {
			g.row(cand)[slot] = pole

			if g.merge && slot == 0 && g.formants > 1 && g.fits(pole, 1) {
				if merged, ok := g.newRow(cand, 1); ok {
					g.search(merged, pole, 1)
				}
			}

			g.search(cand, pole+1, slot+1)

			if pole+1 < g.npoles && g.fits(pole+1, slot) {
				if alt, ok := g.newRow(cand, slot); ok {
					g.search(alt, pole+1, slot)
				}
			}
		} else {
			g.search(cand, pole+1, slot)
		}
	}

	if g.overflow {
		return
	}

	if pole >= g.npoles && slot < g.formants-1 && g.row(cand)[slot] == Absent {
		next := 0
		for j := slot - 1; j >= 0; j-- {
			if p := g.row(cand)[j]; p >= 0 {
				next = p + 1
				break
			}
		}
		g.search(cand, next, slot+1)
	}
}
