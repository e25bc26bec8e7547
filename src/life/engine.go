package life

import (
	"fmt"
	"math/rand"
	"time"
)

//Fixed battlefield dimensions. The field is not runtime-configurable:
//an engine owns a Width x Height grid for its whole life.
const (
	Width  = 40
	Height = 30
)

//Cell is a single grid position: alive (true) or dead (false).
type Cell bool

//Grid is a Width x Height field of cells, indexed [y][x].
type Grid [][]Cell

//Stats is the cumulative infection bookkeeping of one engine.
type Stats struct {
	Infected      int //distinct coordinates that have ever been alive
	Died          int //live-to-dead transitions, every event counted
	NeverInfected int //Width*Height - Infected, derived on demand
}

//Engine is the life automaton core. It owns the current generation, a
//scratch buffer for the next one, the monotonic ever-infected mask and the
//cumulative counters. Nothing outside the engine can mutate cell state:
//the field only changes through Advance.
type Engine struct {
	cur      Grid //current generation
	next     Grid //scratch buffer the next generation is written to
	ever     Grid //ever-infected mask, entries never reset to false
	infected int
	died     int
	step     func() //one-generation step, replaced by engine variants
}

//NewEngine creates an engine and seeds every coordinate independently with
//a fair coin from the supplied source. A nil source seeds from the clock;
//a fixed source makes construction and every later generation reproducible.
func NewEngine(src rand.Source) *Engine {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	r := rand.New(src)
	e := &Engine{cur: newGrid(), next: newGrid(), ever: newGrid()}
	e.step = e.stepSerial
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if r.Intn(2) == 1 {
				e.cur[y][x] = true
				e.ever[y][x] = true
				e.infected++
			}
		}
	}
	return e
}

//Advance computes one full generation: the whole next state is derived
//from the current buffer, the counters are updated per transition event
//and the buffers are swapped. A caller can never observe a half-advanced
//field.
func (e *Engine) Advance() {
	e.step()
}

//IsAlive reports whether the cell at (x, y) is alive in the current
//generation. Out-of-range coordinates are a caller bug and panic: the
//dimensions are fixed constants known to every caller.
func (e *Engine) IsAlive(x, y int) bool {
	mustBeInside(x, y)
	return bool(e.cur[y][x])
}

//WasInfected reports whether (x, y) has been alive at any point since the
//engine was seeded, independent of its current state.
func (e *Engine) WasInfected(x, y int) bool {
	mustBeInside(x, y)
	return bool(e.ever[y][x])
}

//Stats returns the counters as of the most recent completed generation
//(or the initial seed when none has run).
func (e *Engine) Stats() Stats {
	return Stats{
		Infected:      e.infected,
		Died:          e.died,
		NeverInfected: Width*Height - e.infected,
	}
}

//stepSerial is the default single-goroutine step.
func (e *Engine) stepSerial() {
	born, died := e.stepRows(0, Height-1)
	e.infected += born
	e.died += died
	e.cur, e.next = e.next, e.cur
}

//stepRows writes rows y1..y2 (inclusive) of the next generation into the
//scratch buffer, reading only the current buffer, and marks newborn
//coordinates in the ever-infected mask. It returns how many never-infected
//coordinates were born and how many live cells died. Rows outside y1..y2
//are untouched, so disjoint bands of the same buffers can be stepped by
//different goroutines.
func (e *Engine) stepRows(y1, y2 int) (born, died int) {
	for y := y1; y <= y2; y++ {
		for x := 0; x < Width; x++ {
			alive := bool(e.cur[y][x])
			next := survives(alive, e.liveNeighbors(x, y))
			if alive && !next {
				died++ //every death event counts, repeated deaths of one coordinate included
			} else if !alive && next && !bool(e.ever[y][x]) {
				e.ever[y][x] = true
				born++ //rebirth of an already infected coordinate is not counted again
			}
			e.next[y][x] = Cell(next)
		}
	}
	return
}

//survives is the classic rule: a cell is alive in the next generation
//when it has exactly three live neighbors, or when it is alive now and
//has exactly two.
func survives(alive bool, liveNeighbors int) bool {
	return (alive && liveNeighbors == 2) || liveNeighbors == 3
}

//liveNeighbors counts the alive cells among the up to eight neighbors of
//(x, y). Offsets falling outside the field are skipped, never wrapped:
//border cells simply have fewer neighbors.
func (e *Engine) liveNeighbors(x, y int) int {
	n := 0
	for j := -1; j < 2; j++ {
		for i := -1; i < 2; i++ {
			//skip my position
			if i == 0 && j == 0 {
				continue
			}
			nx := x + i
			ny := y + j
			//skip coordinates outside the field
			if nx < 0 || ny < 0 || nx >= Width || ny >= Height {
				continue
			}
			if e.cur[ny][nx] {
				n++
			}
		}
	}
	return n
}

func mustBeInside(x, y int) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		panic(fmt.Sprintf("life: coordinate (%d,%d) outside the %dx%d field", x, y, Width, Height))
	}
}

//newGrid allocates a Width x Height grid with all rows carved from a
//single backing slice.
func newGrid() Grid {
	g := make(Grid, Height)
	b := make([]Cell, Width*Height)
	for y := range g {
		start := y * Width
		g[y] = b[start : start+Width : start+Width]
	}
	return g
}

//clone returns an independent copy of g.
func (g Grid) clone() Grid {
	ng := newGrid()
	for y := range g {
		copy(ng[y], g[y])
	}
	return ng
}

//countAlive returns the number of live cells in g.
func (g Grid) countAlive() int {
	n := 0
	for y := range g {
		for x := range g[y] {
			if g[y][x] {
				n++
			}
		}
	}
	return n
}
