package view

import (
	"fmt"
	"github.com/Sammccorkel/ConwaysGameOfLifeVisualSim/src/life"
)

//ConsoleOut is the headless viewer: prints the configuration on register
//and a progress line every ten generations, the final summary is printed
//by the caller draining the status channel
type ConsoleOut struct {
	s *life.Simulation
}

func NewConsoleOut() *ConsoleOut {
	return &ConsoleOut{}
}

func (c *ConsoleOut) Refresh() {
	st := c.s.Status()
	if st.RunningMode == life.RunningStateRun && st.Generation%10 == 0 {
		fmt.Printf("  Generations done: %v, infected: %v, died: %v\n", st.Generation, st.Infected, st.Died)
	}
}

func (c *ConsoleOut) Register(s *life.Simulation) {
	c.s = s
	o := s.Options()
	fmt.Println("Running configuration:")
	fmt.Printf("  Dimension: %v x %v\n", life.Width, life.Height)
	fmt.Printf("  Interval: %v\n", o.Interval)
	fmt.Printf("  Max generations: %v steps\n", o.MaxSteps)
	fmt.Printf("  Engine: %v\n", o.Engine)
	if o.Engine == life.EngineSharded {
		fmt.Printf("  Workers: %v\n", workersDescr(o.Workers))
	}
	fmt.Printf("  Seed: %v\n", o.Seed)
}

func (c *ConsoleOut) Start() {
	fmt.Println("\nSimulation started...")
}
