package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/soniakeys/meeus/julian"
	"github.com/spf13/viper"
	"github.com/stellab/orbital"
)

// This code only reads a scenario file, propagates the orbit and exports the
// resulting states as CSV.

const defaultScenario = "~~unset~~"

var (
	scenario string
	verbose  bool
)

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "scenario TOML file")
	flag.BoolVar(&verbose, "verbose", false, "really verbose (esp. for configuration)")
}

func main() {
	flag.Parse()
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}

	var env *orbital.Environment
	if os.Getenv("ORBITAL_CONFIG") != "" {
		env = orbital.LoadEnvironment()
	} else {
		env = orbital.DefaultEnvironment()
	}

	scenario = strings.Replace(scenario, ".toml", "", 1)
	viper.AddConfigPath(".")
	viper.SetConfigName(scenario)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("./%s.toml: Error %s", scenario, err)
	}

	// Propagation window
	startDT := confReadJDEorTime("propagation.start")
	endDT := confReadJDEorTime("propagation.end")
	step := viper.GetDuration("propagation.step")
	if verbose {
		log.Printf("[conf] %s -> %s step %s\n", startDT, endDT, step)
	}

	// Orbit
	frameName := viper.GetString("orbit.frame")
	if frameName == "" {
		frameName = "EME2000"
	}
	frame, err := env.Frames.Get(frameName)
	if err != nil {
		log.Fatalf("could not understand frame `%s`: %s", frameName, err)
	}
	elements := []float64{
		viper.GetFloat64("orbit.sma"),
		viper.GetFloat64("orbit.ecc"),
		orbital.Deg2rad(viper.GetFloat64("orbit.inc")),
		orbital.Deg2rad(viper.GetFloat64("orbit.RAAN")),
		orbital.Deg2rad(viper.GetFloat64("orbit.argPeri")),
		orbital.Deg2rad(viper.GetFloat64("orbit.tAnomaly")),
	}
	sv, err := orbital.NewStateVector(env, startDT, elements, orbital.Keplerian, frame)
	if err != nil {
		log.Fatalf("invalid orbit: %s", err)
	}

	// Burns
	for burnNo := 0; viper.IsSet(fmt.Sprintf("burns.%d", burnNo)); burnNo++ {
		burnDT := confReadJDEorTime(fmt.Sprintf("burns.%d.date", burnNo))
		Δv := viper.GetFloat64(fmt.Sprintf("burns.%d.dv", burnNo))
		local := viper.GetString(fmt.Sprintf("burns.%d.local", burnNo))
		m, err := orbital.NewManeuver(burnDT, []float64{Δv, 0, 0}, local)
		if err != nil {
			log.Fatalf("invalid burn %d: %s", burnNo, err)
		}
		sv.Maneuvers = append(sv.Maneuvers, m)
		if burnDT.After(endDT) || burnDT.Before(startDT) {
			log.Printf("[WARNING] burn scheduled out of propagation time")
		} else if verbose {
			log.Printf("added burn at %s", burnDT)
		}
	}

	// Propagator
	var prop orbital.Propagator
	switch kind := viper.GetString("propagation.kind"); kind {
	case "", "kepler":
		prop = orbital.NewKepler(env)
	case "j2":
		prop = orbital.NewJ2(env)
	case "numerical":
		method := viper.GetString("propagation.method")
		if prop, err = orbital.NewKeplerNum(env, step, method, frame); err != nil {
			log.Fatalf("invalid propagator: %s", err)
		}
	default:
		log.Fatalf("could not understand propagator `%s`", kind)
	}
	if err = prop.SetOrbit(sv); err != nil {
		log.Fatalf("could not bind orbit: %s", err)
	}

	stream, err := prop.Iter(orbital.PropagationOptions{Start: startDT, Stop: endDT, Step: step, Inclusive: true})
	if err != nil {
		log.Fatalf("propagation failed: %s", err)
	}
	conf := orbital.ExportConfig{
		Filename:  viper.GetString("export.filename"),
		Timestamp: viper.GetBool("export.timestamp"),
		Elements:  viper.GetBool("export.elements"),
	}
	if conf.Filename == "" {
		conf.Filename = scenario
	}
	if err = orbital.ExportStream(env, conf, stream); err != nil {
		log.Fatalf("export failed: %s", err)
	}
}

func confReadJDEorTime(key string) (dt time.Time) {
	jde := viper.GetFloat64(key)
	if jde == 0 {
		dt = viper.GetTime(key)
	} else {
		dt = julian.JDToTime(jde)
	}
	return
}
