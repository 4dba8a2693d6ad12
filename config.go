package orbital

import (
	"fmt"
	"os"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/soniakeys/meeus/planetposition"
	"github.com/spf13/viper"
)

// Environment bundles everything the package needs beyond pure math: the
// logger, the frame registry, the Earth orientation source and the planetary
// ephemeris cache. Tests and libraries embedding this package create their
// own instead of sharing globals.
type Environment struct {
	Logger      log.Logger
	Frames      *Frames
	VSOP87Dir   string
	OutputDir   string
	DefaultStep time.Duration

	eop     *eopService
	planets map[string]*planetposition.V87Planet
}

// DefaultEnvironment returns an environment with no Earth orientation data
// (the "pass" policy, uncorrected IAU models) and the builtin frames.
func DefaultEnvironment() *Environment {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stdout))
	logger = log.With(logger, "subsys", "orbital")
	env := &Environment{
		Logger:      logger,
		DefaultStep: time.Minute,
		planets:     make(map[string]*planetposition.V87Planet),
	}
	env.eop = &eopService{provider: NullEop{}, policy: PolicyPass, logger: logger}
	env.Frames = newBuiltinFrames(env)
	return env
}

// LoadEnvironment reads conf.toml from the directory in the ORBITAL_CONFIG
// environment variable, in the manner of:
//
//	[general]
//	output_path = "./data"
//	[VSOP87]
//	directory = "/usr/share/vsop87"
//	[eop]
//	missing_policy = "warn"
//	[propagation]
//	step = "10s"
func LoadEnvironment() *Environment {
	confPath := os.Getenv("ORBITAL_CONFIG")
	if confPath == "" {
		panic("environment variable `ORBITAL_CONFIG` is missing or empty")
	}
	viper.SetConfigName("conf")
	viper.AddConfigPath(confPath)
	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("%s/conf.toml not found", confPath))
	}

	env := DefaultEnvironment()
	env.OutputDir = viper.GetString("general.output_path")
	env.VSOP87Dir = viper.GetString("VSOP87.directory")
	if policy := viper.GetString("eop.missing_policy"); policy != "" {
		env.eop.policy = MissingPolicy(policy)
	}
	if step := viper.GetDuration("propagation.step"); step > 0 {
		env.DefaultStep = step
	}
	return env
}

// SetEopProvider installs an Earth orientation source and the policy applied
// when it has no data for a date.
func (env *Environment) SetEopProvider(provider EopProvider, policy MissingPolicy) {
	env.eop = &eopService{provider: provider, policy: policy, logger: env.Logger}
}

// Eop returns the Earth orientation data for a date, after the missing-data
// policy.
func (env *Environment) Eop(date time.Time) (Eop, error) {
	return env.eop.get(date)
}
