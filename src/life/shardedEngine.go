package life

import (
	"golang.org/x/sync/errgroup"
	"math/rand"
	"runtime"
)

//minShardRows keeps row bands tall enough to be worth a goroutine.
const minShardRows = 3

type rowShard struct {
	y1, y2 int //inclusive row band
}

//shardedEngine computes each generation in parallel over disjoint row
//bands. Workers read only the current buffer and each writes its own rows
//of the scratch buffer and the ever-infected mask, so a generation is
//derived from a consistent previous-generation snapshot and the result is
//identical to the serial engine for every seed.
type shardedEngine struct {
	*Engine
	shards []rowShard
}

//NewShardedEngine creates an engine whose Advance fans each generation out
//over at most workers goroutines. Zero or negative workers means one per
//CPU. Seeding is exactly NewEngine's, so a serial and a sharded engine
//built from the same source start identical.
func NewShardedEngine(src rand.Source, workers int) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	e := NewEngine(src)
	se := &shardedEngine{Engine: e, shards: splitRows(Height, workers)}
	e.step = se.stepSharded
	return e
}

//splitRows cuts rows 0..rows-1 into at most n bands of near-equal height.
//n is capped so the bands are worth minShardRows each, the division
//remainder can still leave the last band shorter.
func splitRows(rows, n int) []rowShard {
	if n > rows/minShardRows {
		n = rows / minShardRows
	}
	if n < 1 {
		n = 1
	}
	per := (rows + n - 1) / n
	var shards []rowShard
	for y := 0; y < rows; y += per {
		y2 := y + per - 1
		if y2 > rows-1 {
			y2 = rows - 1
		}
		shards = append(shards, rowShard{y1: y, y2: y2})
	}
	return shards
}

func (se *shardedEngine) stepSharded() {
	born := make([]int, len(se.shards))
	died := make([]int, len(se.shards))
	var g errgroup.Group
	for i, s := range se.shards {
		i, s := i, s //per-iteration copies, the pre-1.22 toolchain shares loop variables
		g.Go(func() error {
			born[i], died[i] = se.stepRows(s.y1, s.y2)
			return nil
		})
	}
	_ = g.Wait() //workers never return errors, Wait is only a join
	//counters are merged in band order after all workers finished
	for i := range se.shards {
		se.infected += born[i]
		se.died += died[i]
	}
	se.cur, se.next = se.next, se.cur
}
