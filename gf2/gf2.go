// Package gf2 solves sparse linear systems over GF(2): each equation is a
// symmetric difference (XOR) of a small variable set equal to a constant
// value, the form minimal-perfect-hash constructions reduce their seed
// search to. A System's equations are built and combined with Add, then
// solved with GaussianElimination (always terminates, reports
// unsatisfiability) or LazyGaussianElimination (the structured variant:
// repeatedly resolve equations that are down to a single variable before
// falling back to full elimination on whatever's left; a variable that
// occurs in only one equation alongside other variables is not peeled and
// is left to the full elimination).
//
// Equation.C is a full uint64, not a single bit: spec.md §4.7 treats
// satisfiability as a mod-2 constraint on bit 0, while the remaining bits
// ride along as a payload value assigned to the satisfying combination,
// propagated by XOR exactly like the constraint bit. Because XOR is
// bitwise, every bit plane of C/x forms its own independent GF(2) system
// solved by the same elimination pass — no explicit per-bit loop is
// needed.
package gf2

import "github.com/bits-and-blooms/bitset"

// Equation is one row: the symmetric difference of the variables in Vars
// must equal C.
type Equation struct {
	Vars *bitset.BitSet
	C    uint64
}

// NewEquation returns the equation over the given variable indices.
func NewEquation(numVars uint, c uint64, vars ...uint) Equation {
	bs := bitset.New(numVars)
	for _, v := range vars {
		bs.Set(v)
	}
	return Equation{Vars: bs, C: c}
}

// Add returns the symmetric difference of two equations: XOR-ing a system's
// rows together is how Gaussian elimination cancels a pivot variable out of
// every other row that contains it.
func Add(a, b Equation) Equation {
	return Equation{Vars: a.Vars.SymmetricDifference(b.Vars), C: a.C ^ b.C}
}

// IsEmpty reports whether the equation has no variables left.
func (e Equation) IsEmpty() bool { return e.Vars.None() }

// Satisfiable reports whether an empty equation (no variables left) is
// consistent: 0 = 0 is fine, 0 = nonzero is a contradiction.
func (e Equation) Satisfiable() bool { return !e.IsEmpty() || e.C == 0 }

// firstVar returns the lowest-indexed set variable and whether one exists.
func (e Equation) firstVar() (uint, bool) {
	return e.Vars.NextSet(0)
}

// System is an ordered collection of equations over a fixed variable count.
type System struct {
	NumVars   uint
	Equations []Equation
}

// NewSystem returns an empty system over numVars variables.
func NewSystem(numVars uint) *System {
	return &System{NumVars: numVars}
}

// AddEquation appends e to the system.
func (s *System) AddEquation(e Equation) {
	s.Equations = append(s.Equations, e)
}

// Copy returns a deep copy of s, so an elimination attempt that turns out
// to be unsatisfiable doesn't corrupt the caller's original equations.
func (s *System) Copy() *System {
	cp := &System{NumVars: s.NumVars, Equations: make([]Equation, len(s.Equations))}
	for i, e := range s.Equations {
		cp.Equations[i] = Equation{Vars: e.Vars.Clone(), C: e.C}
	}
	return cp
}

// Check reports whether assignment x (indexed by variable number) satisfies
// every equation in s.
func (s *System) Check(x []uint64) bool {
	for _, e := range s.Equations {
		var acc uint64
		for i, ok := e.Vars.NextSet(0); ok; i, ok = e.Vars.NextSet(i + 1) {
			acc ^= x[i]
		}
		if acc != e.C {
			return false
		}
	}
	return true
}

// GaussianElimination solves s by full pivoting on the smallest-indexed
// variable in each remaining equation, writing the result into x (which
// must have length >= s.NumVars) and reporting whether the system is
// satisfiable.
func (s *System) GaussianElimination(x []uint64) bool {
	rows := make([]Equation, len(s.Equations))
	for i, e := range s.Equations {
		rows[i] = Equation{Vars: e.Vars.Clone(), C: e.C}
	}

	pivotRow := make(map[uint]int) // variable -> row index that pivots on it
	rowPivot := make([]int, len(rows))
	for i := range rowPivot {
		rowPivot[i] = -1
	}
	for i := range rows {
		for {
			v, ok := rows[i].firstVar()
			if !ok {
				break
			}
			if other, taken := pivotRow[v]; taken {
				rows[i] = Add(rows[i], rows[other])
				continue
			}
			pivotRow[v] = i
			rowPivot[i] = int(v)
			break
		}
		if rowPivot[i] == -1 && !rows[i].Satisfiable() {
			return false
		}
	}

	for i := range x {
		x[i] = 0
	}
	// Resolve pivots in decreasing variable order: each row pivots on its
	// smallest variable, so every other variable left in the row is larger
	// and has already been assigned (a pivot) or stays 0 (a free variable).
	for w := uint(len(x)); w > 0; w-- {
		v := w - 1
		row, ok := pivotRow[v]
		if !ok {
			continue
		}
		acc := rows[row].C
		for i, ok := rows[row].Vars.NextSet(0); ok; i, ok = rows[row].Vars.NextSet(i + 1) {
			if i == v {
				continue
			}
			acc ^= x[i]
		}
		x[v] = acc
	}
	return true
}

// LazyGaussianElimination solves s with the structured/peeling strategy:
// repeatedly resolve any equation that has been reduced to exactly one
// live variable (assign it directly, then substitute that assignment into
// every other equation containing it), and only fall back to full
// GaussianElimination on whatever residual system peeling can't resolve.
// Only single-variable equations are peeled: a system in which every
// equation has two or more variables goes to full elimination unchanged.
func (s *System) LazyGaussianElimination(x []uint64) bool {
	rows := make([]Equation, len(s.Equations))
	for i, e := range s.Equations {
		rows[i] = Equation{Vars: e.Vars.Clone(), C: e.C}
	}
	resolved := make([]bool, s.NumVars)
	for i := range x {
		x[i] = 0
	}

	active := make([]bool, len(rows))
	for i := range active {
		active[i] = true
	}

	progress := true
	for progress {
		progress = false
		for i := range rows {
			if !active[i] {
				continue
			}
			count := 0
			var only uint
			for v, ok := rows[i].Vars.NextSet(0); ok; v, ok = rows[i].Vars.NextSet(v + 1) {
				count++
				only = v
			}
			if count == 0 {
				if !rows[i].Satisfiable() {
					return false
				}
				active[i] = false
				progress = true
				continue
			}
			if count == 1 {
				x[only] = rows[i].C
				resolved[only] = true
				active[i] = false
				progress = true
				for j := range rows {
					if active[j] && rows[j].Vars.Test(only) {
						rows[j].Vars.Clear(only)
						rows[j].C ^= x[only]
					}
				}
			}
		}
	}

	residual := NewSystem(s.NumVars)
	for i := range rows {
		if active[i] {
			residual.AddEquation(rows[i])
		}
	}
	if len(residual.Equations) == 0 {
		return true
	}
	residualX := make([]uint64, s.NumVars)
	if !residual.GaussianElimination(residualX) {
		return false
	}
	for v := uint(0); v < s.NumVars; v++ {
		if !resolved[v] {
			x[v] = residualX[v]
		}
	}
	return true
}
