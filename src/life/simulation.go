package life

import (
	"math/rand"
	"sync"
	"time"
)

//Options represents the simulation's configurable options
type Options struct {
	Interval time.Duration //pause between generations in run mode
	MaxSteps int           //generations to run before finishing, 0 means no limit
	Seed     int64         //seed for the random settle, 0 means seed from the clock
	Engine   string        //engine implementation name
	Workers  int           //row band workers for the sharded engine, 0 means one per CPU
}

//Status represents the status of the simulation at concrete moment
type Status struct {
	Generation    int
	RunningMode   RunningState
	LiveCells     int
	Infected      int
	Died          int
	NeverInfected int
	StepTime      time.Duration
}

//Viewer is the interface to any viewer - the object who can display simulation data or control the simulation
type Viewer interface {
	Refresh()
	Register(s *Simulation)
	Start()
}

//EngineFactory builds a seeded engine. Factories are free to ignore
//workers, the serial engine does.
type EngineFactory func(src rand.Source, workers int) *Engine

//The simulation running mode at the concrete moment
type RunningState int

//default options
const (
	DefStepInterval = time.Millisecond * 100
	DefMaxSteps     = 1000
)

const (
	RunningStateManual   RunningState = 0x0
	RunningStateStep     RunningState = 0x1
	RunningStateRun      RunningState = 0x2
	RunningStateFinished RunningState = 0x3
)

//engine implementation names
const (
	EngineSerial  = "serial"
	EngineSharded = "sharded"
)

var DefaultOptions = Options{
	Interval: DefStepInterval,
	MaxSteps: DefMaxSteps,
	Engine:   EngineSerial,
}

//Simulation drives an engine: it owns the pacing, the generation counter
//and the running mode, and republishes the engine state for viewers.
//All engine access happens on the mainLoop goroutine, commands from other
//goroutines go through the control channel.
type Simulation struct {
	options Options
	state   struct {
		Status
		sync.Mutex
	}
	frame struct {
		cells Grid
		ever  Grid
		sync.Mutex
	}
	stateCh   chan Status
	views     []Viewer
	controlCh chan func()
	closeCh   chan bool
	quitCh    chan bool //closed when the main loop exits, releases the run goroutine
	engine    *Engine
	build     EngineFactory
}

//NewSimulation creates the simulation around an engine built by the factory.
//A zero seed is replaced with the clock so the effective seed can be shown
//and reused by Reset. stateCh may be nil when nobody consumes status
//updates (interactive mode); a buffered channel receives a Status on every
//running state change.
func NewSimulation(o *Options, build EngineFactory, stateCh chan Status) *Simulation {
	if o == nil {
		def := DefaultOptions
		o = &def
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	if build == nil {
		build = func(src rand.Source, workers int) *Engine {
			return NewEngine(src)
		}
	}

	s := Simulation{
		options:   *o,
		build:     build,
		controlCh: make(chan func(), 1),
		closeCh:   make(chan bool, 1),
		quitCh:    make(chan bool),
		stateCh:   stateCh,
	}
	s.engine = build(rand.NewSource(o.Seed), o.Workers)
	s.publishFrame()
	s.syncStatus(0)
	go s.mainLoop()
	return &s
}

//RegisterViewer registers the viewer - the simulation will call the viewer when the state is changed
func (s *Simulation) RegisterViewer(v Viewer) {
	s.views = append(s.views, v)
	v.Register(s)
}

//StateCh returns the channel with the simulation's status updates
func (s *Simulation) StateCh() chan Status {
	return s.stateCh
}

//Status returns current simulation status represented by Status struct
func (s *Simulation) Status() Status {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.Status
}

//Options returns current simulation configuration, with the effective seed
func (s *Simulation) Options() Options {
	return s.options
}

//Snapshot returns the cell grid and the ever-infected mask of the most
//recent completed generation. The returned grids are copies that are never
//written again, callers can read them without locking.
func (s *Simulation) Snapshot() (cells Grid, ever Grid) {
	s.frame.Lock()
	defer s.frame.Unlock()
	return s.frame.cells, s.frame.ever
}

//Run starts the continuous simulation, returns immediately
func (s *Simulation) Run() {
	s.controlCh <- s.run
}

//Stop suspends the continuous simulation, returns immediately
//the Status struct will be written to the stateCh on finish
func (s *Simulation) Stop() {
	s.controlCh <- s.stop
}

//Step does one simulation step, returns immediately
//the Status struct will be written to the stateCh on start and on finish
func (s *Simulation) Step() {
	s.controlCh <- s.step
}

//Reset rebuilds the engine from the original seed, returns immediately
//the field returns to generation zero exactly as it was first settled
func (s *Simulation) Reset() {
	s.controlCh <- s.reset
}

//Close stops the main loop, returns immediately
//safe while the simulation runs and safe to call more than once,
//extra calls are ignored
func (s *Simulation) Close() {
	select {
	case s.closeCh <- true:
	default:
	}
}

//mainLoop - the main cycle, should start as a goroutine
//waits for command and executes
//every command runs here, so the engine is only ever touched from this goroutine
//on exit only quitCh is closed: controlCh stays open so a command posted
//during the shutdown strands in the buffer instead of panicking the sender
func (s *Simulation) mainLoop() {
	var c = false
	for !c {
		select {
		case cmd := <-s.controlCh:
			cmd()
		case c = <-s.closeCh:

		}
	}
	close(s.quitCh)
}

//run starts the continuous cycle
//the cycle stops on Stop() calling, on Close() or when MaxSteps generations
//are done
func (s *Simulation) run() {
	mode := s.runningMode()
	if mode == RunningStateRun || mode == RunningStateFinished {
		return
	}
	go func() {
		s.switchRunningState(RunningStateRun)
		done := make(chan bool)
		defer close(done)
		for {
			rm := s.runningMode()
			if rm != RunningStateRun && rm != RunningStateStep {
				break
			}
			//a step in flight owns this tick, do not post a second one
			if rm == RunningStateRun {
				select {
				case s.controlCh <- func() {
					s.step()
					done <- true
				}:
				case <-s.quitCh:
					return
				}
				select {
				case <-done:
				case <-s.quitCh:
					return
				}
			}
			if s.options.Interval > 0 {
				time.Sleep(s.options.Interval)
			}
		}
	}()
}

//stop suspends the continuous cycle
func (s *Simulation) stop() {
	if s.runningMode() == RunningStateRun {
		s.switchRunningState(RunningStateManual)
	}
}

//step advances the engine one generation and republishes its state
func (s *Simulation) step() {
	rm := s.runningMode()
	if rm == RunningStateFinished {
		return
	}
	finished := false
	defer func() {
		if finished {
			s.switchRunningState(RunningStateFinished)
		} else {
			s.switchRunningState(rm)
		}
		s.refreshView()
	}()

	s.switchRunningState(RunningStateStep)
	start := time.Now()
	s.engine.Advance()
	elapsed := time.Since(start)
	s.publishFrame()
	s.syncStatus(elapsed)

	s.state.Lock()
	s.state.Generation++
	gen := s.state.Generation
	s.state.Unlock()
	if s.options.MaxSteps != 0 && gen >= s.options.MaxSteps {
		finished = true
	}
}

//reset throws the engine away and builds a fresh one from the original seed
func (s *Simulation) reset() {
	mode := s.runningMode()
	if mode != RunningStateManual && mode != RunningStateFinished {
		return
	}
	s.engine = s.build(rand.NewSource(s.options.Seed), s.options.Workers)
	s.publishFrame()
	s.syncStatus(0)
	s.state.Lock()
	s.state.Generation = 0
	s.state.Unlock()
	s.switchRunningState(RunningStateManual)
	s.refreshView()
}

//switchRunningState switch the mode of the simulation to RunningState
//also writes the new state to the stateCh to signal upper control software
func (s *Simulation) switchRunningState(to RunningState) {
	s.state.Lock()
	s.state.RunningMode = to
	st := s.state.Status
	s.state.Unlock()
	if s.stateCh != nil {
		s.stateCh <- st
	}
}

//publishFrame copies the engine's generation and infection mask into the
//shared frame read by viewers
func (s *Simulation) publishFrame() {
	cells := s.engine.cur.clone()
	ever := s.engine.ever.clone()
	s.frame.Lock()
	s.frame.cells = cells
	s.frame.ever = ever
	s.frame.Unlock()
}

//syncStatus refreshes the counters in the status from the engine
func (s *Simulation) syncStatus(stepTime time.Duration) {
	st := s.engine.Stats()
	s.frame.Lock()
	live := s.frame.cells.countAlive()
	s.frame.Unlock()
	s.state.Lock()
	s.state.LiveCells = live
	s.state.Infected = st.Infected
	s.state.Died = st.Died
	s.state.NeverInfected = st.NeverInfected
	s.state.StepTime = stepTime
	s.state.Unlock()
}

func (s *Simulation) runningMode() RunningState {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.RunningMode
}

//refreshView calls Refresh event for all registered views
func (s *Simulation) refreshView() {
	for _, v := range s.views {
		v.Refresh()
	}
}
