package config

import (
	"encoding/json"
	"github.com/Sammccorkel/ConwaysGameOfLifeVisualSim/src/life"
	"github.com/pkg/errors"
	"os"
	"time"
)

//DefaultFile is the config file looked up next to the binary
const DefaultFile = "config.json"

//Config holds the simulation configuration read from the JSON file
//Interval is a time.Duration, in JSON it is the number of nanoseconds
type Config struct {
	Interval time.Duration `json:"interval"`
	MaxSteps int           `json:"max_steps"`
	Seed     int64         `json:"seed"`
	Engine   string        `json:"engine"`
	Workers  int           `json:"workers"`
}

//Default returns the configuration used when no file is present
func Default() Config {
	return Config{
		Interval: life.DefStepInterval,
		MaxSteps: life.DefMaxSteps,
		Seed:     0,
		Engine:   life.EngineSerial,
		Workers:  0,
	}
}

//Load reads the configuration from the JSON file
//missing keys keep their default values
func Load(filename string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrapf(err, "[Load] failed to read file: %+v", filename)
	}

	if err = json.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "[Load] failed to unmarshal data from file: %+v", filename)
	}

	return config, nil
}
