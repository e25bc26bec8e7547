package life

import (
	"math/rand"
	"testing"
	"time"
)

//recordingViewer signals every Refresh through a channel
type recordingViewer struct {
	s         *Simulation
	refreshCh chan bool
}

func (v *recordingViewer) Refresh() { v.refreshCh <- true }

func (v *recordingViewer) Register(s *Simulation) { v.s = s }

func (v *recordingViewer) Start() {}

func waitState(t *testing.T, stateCh chan Status, mode RunningState) Status {
	t.Helper()
	for {
		select {
		case st := <-stateCh:
			if st.RunningMode == mode {
				return st
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("no state %v arrived", mode)
		}
	}
}

func waitGeneration(t *testing.T, stateCh chan Status, n int) Status {
	t.Helper()
	for {
		select {
		case st := <-stateCh:
			if st.Generation >= n {
				return st
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("generation %v never arrived", n)
		}
	}
}

func requireSameGrids(t *testing.T, a Grid, b Grid) {
	t.Helper()
	for y := range a {
		for x := range a[y] {
			if a[y][x] != b[y][x] {
				t.Fatalf("grids differ at (%v,%v)", x, y)
			}
		}
	}
}

func Test_RunUntilFinished(t *testing.T) {
	for _, en := range engineNames() {
		t.Run(en, func(t *testing.T) {
			o := Options{Interval: 0, MaxSteps: 25, Seed: 42, Engine: en, Workers: 3}
			stateCh := newStateCh()
			s := NewSimulation(&o, engines[en], stateCh)
			s.Run()
			st := waitState(t, stateCh, RunningStateFinished)
			if st.Generation != o.MaxSteps {
				t.Fatalf("finished at generation %v, want %v", st.Generation, o.MaxSteps)
			}
			if st.Infected+st.NeverInfected != Width*Height {
				t.Fatalf("infected and never infected must cover the field: %+v", st)
			}

			//neither run nor step revives a finished simulation
			s.Run()
			s.Step()
			time.Sleep(20 * time.Millisecond)
			if got := s.Status(); got.RunningMode != RunningStateFinished || got.Generation != o.MaxSteps {
				t.Fatalf("the finished simulation moved: %+v", got)
			}
			s.Close()
		})
	}
}

func Test_StepOnce(t *testing.T) {
	o := Options{Interval: 0, MaxSteps: 0, Seed: 9, Engine: EngineSerial}
	stateCh := newStateCh()
	s := NewSimulation(&o, nil, stateCh)
	s.Step()
	st := waitState(t, stateCh, RunningStateManual)
	if st.Generation != 1 {
		t.Fatalf("generation after one step: %v", st.Generation)
	}

	//the step must land exactly where a bare engine lands from the same seed
	e := NewEngine(rand.NewSource(9))
	e.Advance()
	cells, ever := s.Snapshot()
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if bool(cells[y][x]) != e.IsAlive(x, y) || bool(ever[y][x]) != e.WasInfected(x, y) {
				t.Fatalf("cell (%v,%v) differs from the bare engine", x, y)
			}
		}
	}
	est := e.Stats()
	if st.Infected != est.Infected || st.Died != est.Died || st.NeverInfected != est.NeverInfected {
		t.Fatalf("counters differ from the bare engine: %+v vs %+v", st, est)
	}
	if st.LiveCells != cells.countAlive() {
		t.Fatalf("live cells %v do not match the snapshot", st.LiveCells)
	}
	s.Close()
}

func Test_ResetRestoresSeededField(t *testing.T) {
	o := Options{Interval: 0, MaxSteps: 0, Seed: 42, Engine: EngineSerial}
	stateCh := newStateCh()
	s := NewSimulation(&o, nil, stateCh)
	cells0, ever0 := s.Snapshot()
	st0 := s.Status()

	for i := 0; i < 3; i++ {
		s.Step()
		waitState(t, stateCh, RunningStateManual)
	}
	if s.Status().Generation != 3 {
		t.Fatalf("generation after three steps: %v", s.Status().Generation)
	}

	s.Reset()
	st := waitState(t, stateCh, RunningStateManual)
	if st.Generation != 0 {
		t.Fatalf("reset must rewind the generation, got %v", st.Generation)
	}
	cells1, ever1 := s.Snapshot()
	requireSameGrids(t, cells0, cells1)
	requireSameGrids(t, ever0, ever1)
	if got := s.Status(); got != st0 {
		t.Fatalf("reset status %+v differs from the initial %+v", got, st0)
	}
	s.Close()
}

func Test_CloseWhileRunning(t *testing.T) {
	o := Options{Interval: 20 * time.Millisecond, MaxSteps: 0, Seed: 13, Engine: EngineSerial}
	stateCh := newStateCh()
	s := NewSimulation(&o, nil, stateCh)
	s.Run()
	waitGeneration(t, stateCh, 1)

	//the close lands while the run goroutine sleeps between ticks, on wake
	//it must exit instead of posting a step to the stopped main loop
	s.Close()
	time.Sleep(50 * time.Millisecond)
	gen := s.Status().Generation
	time.Sleep(50 * time.Millisecond)
	if got := s.Status().Generation; got != gen {
		t.Fatalf("the simulation kept stepping after the close: %v then %v", gen, got)
	}

	//extra closes are ignored
	s.Close()
	s.Close()
}

func Test_RunContinuesThroughStepMode(t *testing.T) {
	o := Options{Interval: 5 * time.Millisecond, MaxSteps: 0, Seed: 17, Engine: EngineSerial}
	stateCh := newStateCh()
	s := NewSimulation(&o, nil, stateCh)
	s.Run()
	st := waitGeneration(t, stateCh, 2)

	//hold the state in the step mode for a few ticks, exactly what the run
	//goroutine observes while a step command is in flight, the cycle must
	//ride it out instead of breaking while the mode still says running
	s.state.Lock()
	s.state.RunningMode = RunningStateStep
	s.state.Unlock()
	time.Sleep(25 * time.Millisecond)
	s.state.Lock()
	s.state.RunningMode = RunningStateRun
	s.state.Unlock()

	waitGeneration(t, stateCh, st.Generation+2)
	s.Stop()
	waitState(t, stateCh, RunningStateManual)
	s.Close()
}

func Test_StopAndResume(t *testing.T) {
	o := Options{Interval: time.Millisecond, MaxSteps: 200, Seed: 11, Engine: EngineSerial}
	stateCh := newStateCh()
	s := NewSimulation(&o, nil, stateCh)
	s.Run()
	waitGeneration(t, stateCh, 3)
	s.Stop()
	waitState(t, stateCh, RunningStateManual)

	s.Run()
	st := waitState(t, stateCh, RunningStateFinished)
	if st.Generation != o.MaxSteps {
		t.Fatalf("resumed run finished at generation %v, want %v", st.Generation, o.MaxSteps)
	}
	s.Close()
}

func Test_ViewerIsDriven(t *testing.T) {
	o := Options{Interval: 0, MaxSteps: 0, Seed: 5, Engine: EngineSerial}
	//no status channel here, the viewer callback is the only signal
	s := NewSimulation(&o, nil, nil)
	rv := &recordingViewer{refreshCh: make(chan bool, 10)}
	s.RegisterViewer(rv)
	if rv.s != s {
		t.Fatal("the viewer must be registered with the simulation")
	}

	s.Step()
	select {
	case <-rv.refreshCh:
	case <-time.After(2 * time.Second):
		t.Fatal("the viewer was not refreshed after the step")
	}
	if s.Status().Generation != 1 {
		t.Fatalf("generation after the step: %v", s.Status().Generation)
	}

	s.Reset()
	select {
	case <-rv.refreshCh:
	case <-time.After(2 * time.Second):
		t.Fatal("the viewer was not refreshed after the reset")
	}
	if s.Status().Generation != 0 {
		t.Fatalf("generation after the reset: %v", s.Status().Generation)
	}
	s.Close()
}

func Test_DefaultOptionsApplied(t *testing.T) {
	s := NewSimulation(nil, nil, nil)
	o := s.Options()
	if o.Seed == 0 {
		t.Fatal("the effective seed must be materialized")
	}
	if o.Interval != DefStepInterval || o.MaxSteps != DefMaxSteps || o.Engine != EngineSerial {
		t.Fatalf("unexpected defaults: %+v", o)
	}
	st := s.Status()
	if st.Generation != 0 || st.RunningMode != RunningStateManual {
		t.Fatalf("unexpected initial status: %+v", st)
	}
	if st.LiveCells != st.Infected {
		t.Fatalf("before the first step the live cells are exactly the infected set: %+v", st)
	}
	if st.Infected+st.NeverInfected != Width*Height {
		t.Fatalf("infected and never infected must cover the field: %+v", st)
	}
	s.Close()
}
