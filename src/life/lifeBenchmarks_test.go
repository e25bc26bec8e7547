package life

import (
	"math/rand"
	"sort"
	"testing"
)

var (
	engines = map[string]EngineFactory{
		EngineSerial: func(src rand.Source, workers int) *Engine {
			return NewEngine(src)
		},
		EngineSharded: NewShardedEngine,
	}
)

func newStateCh() chan Status {
	return make(chan Status, 100)
}

func newBenchOptions(maxSteps int, engine string) *Options {
	o := DefaultOptions
	o.Interval = 0
	o.MaxSteps = maxSteps
	o.Seed = 1
	o.Engine = engine
	o.Workers = 4
	return &o
}

func engineNames() (engineNames []string) {
	engineNames = make([]string, 0, len(engines))
	for k := range engines {
		engineNames = append(engineNames, k)
	}
	sort.Strings(engineNames)
	return
}

func simulationStep(s *Simulation, b *testing.B) {
	stateCh := s.StateCh()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Step()
		for {
			st := <-stateCh
			if st.RunningMode == RunningStateManual {
				break
			}
		}
	}
	s.Close()
	close(stateCh)
}

func simulationRun(s *Simulation, b *testing.B) {
	stateCh := s.StateCh()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		s.Reset()
		for {
			st := <-stateCh
			if st.RunningMode == RunningStateManual && st.Generation == 0 {
				break
			}
		}
		b.StartTimer()
		s.Run()
		for {
			st := <-stateCh
			if st.RunningMode == RunningStateFinished {
				break
			}
		}
	}
	s.Close()
	close(stateCh)
}

func Benchmark_Advance(b *testing.B) {
	for _, e := range engineNames() {
		b.Run(e, func(b *testing.B) {
			eng := engines[e](rand.NewSource(1), 4)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				eng.Advance()
			}
		})
	}
}

func Benchmark_Step(b *testing.B) {
	for _, e := range engineNames() {
		b.Run(e, func(b *testing.B) {
			s := NewSimulation(newBenchOptions(0, e), engines[e], newStateCh())
			simulationStep(s, b)
		})
	}
}

func Benchmark_Simulation(b *testing.B) {
	for _, e := range engineNames() {
		b.Run(e, func(b *testing.B) {
			s := NewSimulation(newBenchOptions(100, e), engines[e], newStateCh())
			simulationRun(s, b)
		})
	}
}
