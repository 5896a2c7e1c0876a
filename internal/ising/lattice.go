package ising

import (
	"fmt"
	"strings"
)

// Site addresses a lattice cell by row and column.
type Site struct {
	I, J int
}

// Lattice stores an n×m grid of ±1 spins in row-major order with periodic
// boundaries on both axes.
type Lattice struct {
	n, m  int
	spins []int8
}

// NewLattice allocates an n×m lattice and sets every spin to -1 or +1 with
// equal probability.
func NewLattice(n, m int, src Source) (*Lattice, error) {
	if n < 1 || m < 1 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimension, n, m)
	}
	l := &Lattice{n: n, m: m, spins: make([]int8, n*m)}
	for k := range l.spins {
		if src.IntN(2) == 0 {
			l.spins[k] = -1
		} else {
			l.spins[k] = 1
		}
	}
	return l, nil
}

// LatticeFromSpins builds a lattice from explicit rows.
func LatticeFromSpins(rows [][]int8) (*Lattice, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty spin grid", ErrInvalidDimension)
	}
	n, m := len(rows), len(rows[0])
	l := &Lattice{n: n, m: m, spins: make([]int8, 0, n*m)}
	for i, row := range rows {
		if len(row) != m {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidDimension, i, len(row), m)
		}
		for j, s := range row {
			if s != 1 && s != -1 {
				return nil, fmt.Errorf("ising: spin (%d,%d) = %d, want ±1", i, j, s)
			}
			l.spins = append(l.spins, s)
		}
	}
	return l, nil
}

func (l *Lattice) Rows() int { return l.n }
func (l *Lattice) Cols() int { return l.m }
func (l *Lattice) Size() int { return l.n * l.m }

func (l *Lattice) index(i, j int) int { return i*l.m + j }

// Spin returns the spin at (i, j). Coordinates must be in range.
func (l *Lattice) Spin(i, j int) int8 { return l.spins[l.index(i, j)] }

// Flip negates the spin at (i, j) in place.
func (l *Lattice) Flip(i, j int) {
	k := l.index(i, j)
	l.spins[k] = -l.spins[k]
}

// Neighbors returns the four toroidally adjacent sites of (i, j): up, down,
// left, right.
func (l *Lattice) Neighbors(i, j int) [4]Site {
	return [4]Site{
		{(i - 1 + l.n) % l.n, j},
		{(i + 1) % l.n, j},
		{i, (j - 1 + l.m) % l.m},
		{i, (j + 1) % l.m},
	}
}

// Magnetization returns the sum of all spins.
func (l *Lattice) Magnetization() int {
	total := 0
	for _, s := range l.spins {
		total += int(s)
	}
	return total
}

func (l *Lattice) Clone() *Lattice {
	c := &Lattice{n: l.n, m: l.m, spins: make([]int8, len(l.spins))}
	copy(c.spins, l.spins)
	return c
}

// String renders the lattice as rows of '+' and '-'.
func (l *Lattice) String() string {
	var sb strings.Builder
	sb.Grow(l.n * (l.m + 1))
	for i := 0; i < l.n; i++ {
		for j := 0; j < l.m; j++ {
			if l.Spin(i, j) > 0 {
				sb.WriteByte('+')
			} else {
				sb.WriteByte('-')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
