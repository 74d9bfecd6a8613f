// Command intcode executes Intcode programs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nf/intcode/intcode"
	"github.com/nf/intcode/runner"
	"github.com/nf/intcode/search"
)

func main() {
	var (
		configFlag = flag.String("config", "", "read settings from TOML `file`")
		devFlag    = flag.Bool("dev", false, "enable developer mode (re-run the program when it changes)")
		debugFlag  = flag.Bool("debug", false, "enable debugger (implies -dev)")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)
	flag.Int("input", 0, "input `value` supplied to the program")
	flag.String("patch", "", "write `addr=value,...` into the program before running it")
	flag.String("peek", "", "print memory at `addr,...` after the program halts")
	flag.Int("search", 0, "search for the noun and verb that produce `target` at address 0")
	flag.Bool("trace", false, "log every instruction executed")
	flag.Bool("gui", false, "show a live memory map in a window")
	flag.String("memmap", "", "write a PNG memory map to `file` after the run")
	flag.String("dump", "", "write a YAML fault report to `file` if the program faults")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <program.txt>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s [flags] <-dev | -debug> <program.txt>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}

	cfg, err := loadConfig(*configFlag)
	if err == nil {
		err = cfg.applyFlags(flag.CommandLine)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "intcode: %v\n", err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.Trace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "intcode: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if *devFlag || *debugFlag {
		if err := devMode(cfg, *debugFlag, flag.Arg(0)); err != nil {
			logger.Fatal("dev", zap.Error(err))
		}
		return
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			logger.Fatal("creating CPU profile file", zap.Error(err))
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	err = run(cfg, flag.Arg(0), os.Stdout)

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		logger.Fatal("run", zap.Error(err))
	}
}

// newLogger returns a development logger at debug level when tracing,
// and an info level console logger otherwise.
func newLogger(trace bool) (*zap.Logger, error) {
	if trace {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// loadProgram reads and parses progFile and applies the configured patches.
func loadProgram(progFile string, cfg *Config) (intcode.Program, error) {
	b, err := os.ReadFile(progFile)
	if err != nil {
		return nil, err
	}
	p, err := intcode.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", progFile, err)
	}
	return cfg.apply(p)
}

// run executes progFile according to cfg and prints the results to out.
func run(cfg *Config, progFile string, out io.Writer) error {
	p, err := loadProgram(progFile, cfg)
	if err != nil {
		return err
	}

	if s := cfg.Search; s != nil {
		res, err := search.NounVerb(context.Background(), p, s.Target,
			search.Options{Max: s.Max, Workers: s.Workers})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "noun: %d\nverb: %d\n100 * noun + verb: %d\n", res.Noun, res.Verb, res.Answer())
		return nil
	}

	r := runner.NewRunner(cfg.GUI, false, nil,
		runner.WithLogger(zap.L()), runner.WithUpdateEvery(cfg.UpdateEvery))
	res, err := r.Run(p, cfg.Input)
	if cfg.MemMap != "" && res.Mem != nil {
		pc := -1
		var fe intcode.FaultError
		if errors.As(err, &fe) {
			pc = fe.PC
		}
		if merr := writeMemoryMap(cfg.MemMap, res.Mem, pc, cfg.MemMapScale); merr != nil {
			zap.L().Warn("memory map", zap.Error(merr))
		}
	}
	if err != nil {
		var fe intcode.FaultError
		if cfg.Dump != "" && errors.As(err, &fe) {
			if derr := writeDump(cfg.Dump, progFile, fe); derr != nil {
				zap.L().Warn("fault dump", zap.Error(derr))
			}
		}
		return err
	}

	for _, v := range res.Output {
		fmt.Fprintln(out, v)
	}
	for _, addr := range cfg.Peek {
		if addr < 0 || addr >= len(res.Mem) {
			return fmt.Errorf("peek %d: %w", addr, intcode.OutOfBounds)
		}
		fmt.Fprintf(out, "mem[%d] = %d\n", addr, res.Mem[addr])
	}
	zap.L().Debug("done", zap.Int("steps", res.Steps), zap.Int("outputs", len(res.Output)))
	return nil
}
