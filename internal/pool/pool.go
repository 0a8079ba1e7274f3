// Package pool implements the script-local memory pool (spec §4.1,
// component C1): first-fit allocation of contiguous byte runs naming
// user and temporary variables. Grounded in the teacher's
// symtable.SymbolTable, generalised from its "locals grow down from
// FP" scheme to a flat first-fit byte array, since evscript pools
// have no stack-frame notion, only one contiguous script-local range.
package pool

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Cell is one byte-indexed slot in the pool.
type Cell struct {
	Size     int // 0 if free, else 1..4; only ever set on the head cell of a run
	Internal bool
	Name     string
}

// Pool is a fixed-size byte array of Cells.
type Pool struct {
	cells []Cell
}

// New returns an empty pool of the given byte size.
func New(size int) *Pool {
	return &Pool{cells: make([]Cell, size)}
}

// Len reports the pool's total byte size.
func (p *Pool) Len() int { return len(p.cells) }

// InternalName formats the name a temporary allocated at cell index
// i is given: spec §3's "__evstemp{i}".
func InternalName(index int) string { return fmt.Sprintf("__evstemp%d", index) }

// Alloc scans left to right for the first run of size free cells,
// claims it, and returns the name assigned (the caller-supplied name
// for user variables, or the generated internal name). name is
// ignored when internal is true.
func (p *Pool) Alloc(size int, internal bool, name string) (string, error) {
	i := 0
	for i+size <= len(p.cells) {
		if p.cells[i].Size > 0 {
			i += p.cells[i].Size
			continue
		}
		run := true
		for j := i; j < i+size; j++ {
			if p.cells[j].Size > 0 {
				run = false
				break
			}
		}
		if !run {
			i++
			continue
		}
		if internal {
			name = InternalName(i)
		}
		p.cells[i] = Cell{Size: size, Internal: internal, Name: name}
		return name, nil
	}
	return "", fmt.Errorf("out of pool: cannot allocate %d byte(s) for %q\n%s", size, name, p.diagnostic())
}

// diagnostic enumerates the currently live cells, per spec §4.1's
// requirement that an out-of-pool error lists them as a diagnostic
// aid.
func (p *Pool) diagnostic() string {
	live := lo.Filter(p.cells, func(c Cell, _ int) bool { return c.Size > 0 })
	if len(live) == 0 {
		return "  (pool is empty; requested size exceeds total pool capacity)"
	}
	lines := lo.Map(live, func(c Cell, _ int) string {
		kind := "user"
		if c.Internal {
			kind = "internal"
		}
		return fmt.Sprintf("  %s (size %d, %s)", c.Name, c.Size, kind)
	})
	return strings.Join(lines, "\n")
}

// Free releases the named cell. It is a fatal condition (per spec
// §7) to free a name that is not live.
func (p *Pool) Free(name string) error {
	i := p.indexOf(name)
	if i < 0 {
		return fmt.Errorf("cannot free unknown variable %q", name)
	}
	p.cells[i].Size = 0
	p.cells[i].Name = ""
	p.cells[i].Internal = false
	return nil
}

// AutoFree releases name if it names a live, internal cell, and is a
// silent no-op otherwise (the caller doesn't know, and doesn't need
// to know, whether a given operand was materialised as a temporary).
func (p *Pool) AutoFree(name string) {
	i := p.indexOf(name)
	if i < 0 || !p.cells[i].Internal {
		return
	}
	p.cells[i].Size = 0
	p.cells[i].Name = ""
	p.cells[i].Internal = false
}

// PurgeInternal frees every live internal cell unconditionally. This
// backs the PURGE statement (see SPEC_FULL.md §4), used between
// unrelated statement groups to guarantee no compiler temporary
// leaks across them.
func (p *Pool) PurgeInternal() {
	for i := range p.cells {
		if p.cells[i].Size > 0 && p.cells[i].Internal {
			p.cells[i] = Cell{}
		}
	}
}

// Lookup returns the index of the live cell named name, or -1.
func (p *Pool) Lookup(name string) int { return p.indexOf(name) }

// Get returns the live cell named name, or false if none matches.
func (p *Pool) Get(name string) (Cell, bool) {
	i := p.indexOf(name)
	if i < 0 {
		return Cell{}, false
	}
	return p.cells[i], true
}

// RequiredGet returns the live cell named name, or a fatal error if
// none matches: used wherever an undeclared operand is a correctness
// bug rather than something the caller can shrug off.
func (p *Pool) RequiredGet(name string) (Cell, error) {
	c, ok := p.Get(name)
	if !ok {
		return Cell{}, fmt.Errorf("undeclared variable %q", name)
	}
	return c, nil
}

func (p *Pool) indexOf(name string) int {
	for i, c := range p.cells {
		if c.Size > 0 && c.Name == name {
			return i
		}
	}
	return -1
}
