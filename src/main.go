package main

import (
	"fmt"
	"github.com/Sammccorkel/ConwaysGameOfLifeVisualSim/src/config"
	"github.com/Sammccorkel/ConwaysGameOfLifeVisualSim/src/life"
	"github.com/Sammccorkel/ConwaysGameOfLifeVisualSim/src/view"
	"github.com/integrii/flaggy"
	"github.com/pkg/errors"
	"math/rand"
	"os"
	"strings"
	"time"
)

var (
	engines = map[string]life.EngineFactory{
		life.EngineSerial: func(src rand.Source, workers int) *life.Engine {
			return life.NewEngine(src)
		},
		life.EngineSharded: life.NewShardedEngine,
	}
)

type EnvOptions struct {
	interactive bool
}

func main() {
	eo, so := initOptions()

	var stateCh chan life.Status

	if !eo.interactive {
		stateCh = make(chan life.Status, 10) //the buffered channel to getting the simulation status
	}

	s := life.NewSimulation(so, engines[so.Engine], stateCh)

	if eo.interactive {
		v := view.NewViewTerminal()
		s.RegisterViewer(v)
		v.Start()
		s.Close()
	} else {
		v := view.NewConsoleOut()
		s.RegisterViewer(v)
		v.Start()

		startTime := time.Now()
		s.Run()
		for {
			st := <-stateCh
			if st.RunningMode == life.RunningStateFinished {
				totalTime := time.Since(startTime).Round(time.Millisecond)
				fmt.Printf("\nFinished, generation: %v, total running time: %v\n", st.Generation, totalTime)
				fmt.Printf("Infected: %v, died: %v, never infected: %v, live cells: %v\n",
					st.Infected, st.Died, st.NeverInfected, st.LiveCells)
				break
			}
		}
		s.Close()
		close(stateCh)
	}

}

func initOptions() (eo *EnvOptions, so *life.Options) {

	engineNames := make([]string, 0, len(engines))
	for k := range engines {
		engineNames = append(engineNames, k)
	}

	cfg, err := config.Load(config.DefaultFile)
	if err != nil {
		//a missing config file is fine, the defaults are used then
		if !os.IsNotExist(errors.Cause(err)) {
			fmt.Printf("%v\nfalling back to the default configuration\n", err)
		}
		cfg = config.Default()
	}

	eo = &EnvOptions{}
	so = &life.Options{
		Interval: cfg.Interval,
		MaxSteps: cfg.MaxSteps,
		Seed:     cfg.Seed,
		Engine:   cfg.Engine,
		Workers:  cfg.Workers,
	}
	seed := int(so.Seed)

	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.Duration(&so.Interval, "i", "interval", "Simulation speed (interval between the steps) in format the number with 'ms' suffix, for example 150ms")
	flaggy.Int(&so.MaxSteps, "s", "maxSteps", "Limit the simulation to maxSteps generations")
	flaggy.Int(&seed, "", "seed", "Seed for the random settle, 0 means seed from the clock")
	flaggy.Int(&so.Workers, "w", "workers", "Worker goroutines of the sharded engine, 0 means one per CPU")
	flaggy.Bool(&eo.interactive, "n", "interactive", "Start interactive mode")
	flaggy.String(&so.Engine, "e", "engine", "Engine to use ["+strings.Join(engineNames, "|")+"]")

	flaggy.Parse()
	so.Seed = int64(seed)

	_, ok := engines[so.Engine]
	if !ok {
		flaggy.ShowHelpAndExit("unknown engine")
	}

	return
}
