package cachecfg

import (
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	flags "github.com/jessevdk/go-flags"
	"github.com/lightningnetwork/lnd/cachecore/build"
	"github.com/lightningnetwork/lnd/cachecore/hashindex"
	"github.com/lightningnetwork/lnd/cachecore/lnutils"
	"github.com/lightningnetwork/lnd/cachecore/lru"
)

const (
	// DefaultConfigFilename is the name of the config file looked up when
	// none is given.
	DefaultConfigFilename = "cachecore.conf"

	// DefaultLogFilename is the name of the rotating log file.
	DefaultLogFilename = "cachecore.log"

	// DefaultPrometheusListen is the address the metrics exporter binds to
	// when enabled without an explicit address.
	DefaultPrometheusListen = "127.0.0.1:8989"

	// DefaultOps is the number of operations a workload runs.
	DefaultOps = 100_000

	// DefaultKeySpace is the number of distinct keys a workload draws
	// from.
	DefaultKeySpace = 1000

	// DefaultReadRatio is the share of operations that are reads.
	DefaultReadRatio = 0.8

	// DefaultWorkers is the number of goroutines issuing operations.
	DefaultWorkers = 4

	// DefaultSeed seeds the workload's key generator.
	DefaultSeed = 1
)

var (
	// ErrInvalidWorkload is returned when the workload section cannot
	// describe a runnable workload.
	ErrInvalidWorkload = errors.New("invalid workload")

	// ErrInvalidPrometheus is returned when the exporter is enabled with a
	// bad listen address.
	ErrInvalidPrometheus = errors.New("invalid prometheus config")
)

// Prometheus configures the metrics exporter.
//
//nolint:lll
type Prometheus struct {
	Enable bool   `long:"enable" description:"Expose cache metrics over HTTP for Prometheus to scrape."`
	Listen string `long:"listen" description:"The host:port the /metrics endpoint listens on."`
}

// Enabled returns whether or not the exporter should be started.
func (p *Prometheus) Enabled() bool {
	return p.Enable
}

// Validate checks the listen address of an enabled exporter.
func (p *Prometheus) Validate() error {
	if !p.Enable {
		return nil
	}

	if _, _, err := net.SplitHostPort(p.Listen); err != nil {
		return fmt.Errorf("%w: listen address %q: %v",
			ErrInvalidPrometheus, p.Listen, err)
	}

	return nil
}

// Workload describes the synthetic load the benchmark drives against a
// cache.
//
//nolint:lll
type Workload struct {
	Ops       int     `long:"ops" description:"Total number of cache operations to run."`
	KeySpace  uint64  `long:"keyspace" description:"Number of distinct keys operations are drawn from."`
	ReadRatio float64 `long:"readratio" description:"Share of operations that are reads, between 0 and 1."`
	Workers   int     `long:"workers" description:"Number of goroutines issuing operations."`
	Seed      uint64  `long:"seed" description:"Seed of the key generator."`
}

// Validate checks that the workload can be run.
func (w *Workload) Validate() error {
	switch {
	case w.Ops < 1:
		return fmt.Errorf("%w: ops must be >= 1, got %d",
			ErrInvalidWorkload, w.Ops)

	case w.KeySpace < 1:
		return fmt.Errorf("%w: keyspace must be >= 1, got %d",
			ErrInvalidWorkload, w.KeySpace)

	case math.IsNaN(w.ReadRatio) || w.ReadRatio < 0 || w.ReadRatio > 1:
		return fmt.Errorf("%w: readratio must be within [0, 1], "+
			"got %v", ErrInvalidWorkload, w.ReadRatio)

	case w.Workers < 1:
		return fmt.Errorf("%w: workers must be >= 1, got %d",
			ErrInvalidWorkload, w.Workers)
	}

	return nil
}

// Config is the full configuration of the cache tools, read from an optional
// INI file and the command line.
//
//nolint:lll
type Config struct {
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file"`

	Capacity       int     `long:"capacity" description:"Maximum number of entries the cache holds."`
	InitialBuckets int     `long:"initialbuckets" description:"Initial bucket count of the hash index. 0 selects the default."`
	LoadFactor     float64 `long:"loadfactor" description:"Entries per bucket at which the hash index doubles. 0 selects the default."`

	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
	LogDir     string `long:"logdir" description:"Directory to log output. Leave empty to log to stdout only."`

	LogConfig *build.LogConfig `group:"logging" namespace:"logging"`

	Prometheus *Prometheus `group:"prometheus" namespace:"prometheus"`

	Workload *Workload `group:"workload" namespace:"workload"`
}

// DefaultConfig returns all default values for the Config struct.
func DefaultConfig() Config {
	return Config{
		ConfigFile: DefaultConfigFilename,
		Capacity:   lru.DefaultCapacity,
		DebugLevel: build.LogLevel,
		LogConfig:  build.DefaultLogConfig(),
		Prometheus: &Prometheus{
			Listen: DefaultPrometheusListen,
		},
		Workload: &Workload{
			Ops:       DefaultOps,
			KeySpace:  DefaultKeySpace,
			ReadRatio: DefaultReadRatio,
			Workers:   DefaultWorkers,
			Seed:      DefaultSeed,
		},
	}
}

// Validate checks the given configuration for illegal values or
// combinations of values.
func (c *Config) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("%w: got %d", lru.ErrInvalidCapacity,
			c.Capacity)
	}

	idxCfg := c.IndexConfig()
	if err := idxCfg.Validate(); err != nil {
		return err
	}

	if err := c.LogConfig.Validate(); err != nil {
		return err
	}

	if err := c.Prometheus.Validate(); err != nil {
		return err
	}

	return c.Workload.Validate()
}

// IndexConfig returns the hash index config the tools build their caches
// with. Keys are strings, so the xxhash based hasher is used.
func (c *Config) IndexConfig() *hashindex.Config[string] {
	return &hashindex.Config[string]{
		InitialBuckets: c.InitialBuckets,
		LoadFactor:     c.LoadFactor,
		Hasher:         hashindex.StringHasher[string]{},
	}
}

// LoadConfig initializes and parses the config using a config file and the
// command line options given in args.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
func LoadConfig(args []string) (*Config, error) {
	// Pre-parse the command line options to pick up an alternative config
	// file.
	preCfg := DefaultConfig()
	if _, err := flags.NewParser(&preCfg, flags.Default).ParseArgs(
		args,
	); err != nil {

		return nil, err
	}

	// Load any additional configuration options from the file.
	var configFileError error
	cfg := preCfg
	configFilePath := CleanAndExpandPath(preCfg.ConfigFile)
	if err := flags.IniParse(configFilePath, &cfg); err != nil {
		// If it's a parsing related error, then we'll return
		// immediately, otherwise we can proceed as possibly the config
		// file doesn't exist which is OK.
		var iniErr *flags.IniError
		if errors.As(err, &iniErr) {
			return nil, err
		}

		configFileError = err
	}

	// Finally, parse the remaining command line options again to ensure
	// they take precedence.
	if _, err := flags.NewParser(&cfg, flags.Default).ParseArgs(
		args,
	); err != nil {

		return nil, err
	}

	cfg.LogDir = CleanAndExpandPath(cfg.LogDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Warn about a missing config file only after all other configuration
	// is done.
	if configFileError != nil {
		log.Debugf("Config file not loaded: %v", configFileError)
	}

	log.Tracef("Loaded config: %v", lnutils.SpewLogClosure(cfg))

	return &cfg, nil
}

// LogFilePath returns the path of the rotating log file, or an empty string
// if file logging is off.
func (c *Config) LogFilePath() string {
	if c.LogDir == "" {
		return ""
	}

	return filepath.Join(c.LogDir, DefaultLogFilename)
}

// CleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func CleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		var homeDir string
		u, err := user.Current()
		if err == nil {
			homeDir = u.HomeDir
		} else {
			homeDir = os.Getenv("HOME")
		}

		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but the variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}
