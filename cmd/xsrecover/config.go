package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	flags "github.com/jessevdk/go-flags"

	"github.com/xsrecover/xsrecover"
)

const (
	version = "0.1.0"

	defaultConfigFilename = "xsrecover.conf"
	defaultDebugLevel     = "info"
	defaultMaxLogRolls    = 8
	defaultTimeout        = 30 * time.Second
)

var defaultConfigPath = filepath.Join(".", defaultConfigFilename)

// config defines the configuration options for xsrecover.
type config struct {
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	Config      string `short:"C" long:"config" description:"Path to configuration file"`

	Window       int     `long:"window" description:"Number of consecutive known values handed to the solver"`
	BlockSize    int     `long:"blocksize" description:"Number of raw transitions the generator performs per batch"`
	SearchBound  int     `long:"searchbound" description:"Emitted values searched for the anchor (default twice the block size)"`
	ClampFloor   float64 `long:"clampfloor" description:"Observed value produced by clamping at the bottom of the range"`
	ClampCeiling float64 `long:"clampceiling" description:"Observed value produced by clamping at the top of the range"`

	DBPath  string        `long:"db" description:"Database caching recovered results between runs"`
	Timeout time.Duration `long:"timeout" description:"Give up on a probe window after this long (0 for never)"`
	Workers int           `short:"w" long:"workers" description:"Records recovered at once (default one per CPU)"`

	From    int  `long:"from" description:"First logical index to print for synced records"`
	To      int  `long:"to" description:"Logical index after the last one to print for synced records"`
	NoColor bool `long:"nocolor" description:"Disable colored output"`

	DebugLevel  string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical, off}"`
	LogFile     string `long:"logfile" description:"Also write logs to this file, rotating it"`
	MaxLogRolls int    `long:"maxlogrolls" description:"Number of rotated log files to keep"`
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// params returns the recovery parameters selected by the configuration.
func (cfg *config) params() xsrecover.Params {
	p := xsrecover.Params{
		Window:       cfg.Window,
		BlockSize:    cfg.BlockSize,
		SearchBound:  cfg.SearchBound,
		ClampFloor:   cfg.ClampFloor,
		ClampCeiling: cfg.ClampCeiling,
	}
	if p.SearchBound == 0 {
		p.SearchBound = 2 * p.BlockSize
	}

	return p
}

// configure parses command line options and a config file if present. Returns
// an instantiated *config, the input files, and a bool that is true if there
// is nothing further to do (i.e. version was printed and we can exit), or a
// parsing error, in that order.
func configure() (*config, []string, bool, error) {
	stop := true
	cfg := &config{
		Config:       defaultConfigPath,
		Window:       xsrecover.DefaultWindow,
		BlockSize:    xsrecover.DefaultBlockSize,
		ClampFloor:   xsrecover.DefaultClampFloor,
		ClampCeiling: xsrecover.DefaultClampCeiling,
		Timeout:      defaultTimeout,
		DebugLevel:   defaultDebugLevel,
		MaxLogRolls:  defaultMaxLogRolls,
	}

	preCfg := *cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag)
	_, err := preParser.Parse()
	if err != nil {
		var flagErr *flags.Error
		if errors.As(err, &flagErr) && flagErr.Type == flags.ErrHelp {
			fmt.Printf("%v\nPositional arguments are YAML or JSON files of records to recover.\n", err)
			return nil, nil, stop, nil
		}
		return nil, nil, false, err
	}

	// Show the version and exit if the version flag was specified.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	if preCfg.ShowVersion {
		fmt.Printf("%s version %s (Go version %s %s/%s)\n", appName,
			version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return nil, nil, stop, nil
	}

	parser := flags.NewParser(cfg, flags.Default)

	if fileExists(preCfg.Config) {
		// Load additional config from file.
		err = flags.NewIniParser(parser).ParseFile(preCfg.Config)
		if err != nil {
			return nil, nil, false, err
		}
	}

	// Parse command line options again to ensure they take precedence.
	inputs, err := parser.Parse()
	if err != nil {
		return nil, nil, false, err
	}

	if len(inputs) == 0 {
		return nil, nil, false, errors.New("no input files given")
	}

	if cfg.To < cfg.From {
		return nil, nil, false, fmt.Errorf("--to %d is before --from %d", cfg.To, cfg.From)
	}

	if err := cfg.params().Validate(); err != nil {
		return nil, nil, false, err
	}

	return cfg, inputs, false, nil
}
