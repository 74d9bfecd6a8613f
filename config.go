package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nf/intcode/intcode"
)

// Config holds the settings for a run. It may be loaded from a TOML file;
// command line flags override the file.
type Config struct {
	Input int `toml:"input"`
	// Patch maps addresses to values written into the program before it runs.
	Patch       map[string]int `toml:"patch"`
	Peek        []int          `toml:"peek"`
	Search      *SearchConfig  `toml:"search"`
	Trace       bool           `toml:"trace"`
	GUI         bool           `toml:"gui"`
	UpdateEvery int            `toml:"update-every"`
	MemMap      string         `toml:"memmap"`
	MemMapScale int            `toml:"memmap-scale"`
	Dump        string         `toml:"dump"`
}

// SearchConfig configures a noun/verb search.
type SearchConfig struct {
	Target  int `toml:"target"`
	Max     int `toml:"max"`
	Workers int `toml:"workers"`
}

func defaultConfig() *Config {
	return &Config{MemMapScale: 4}
}

// loadConfig reads a TOML config file. An empty path yields the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undec[0].String())
	}
	if _, err := cfg.patches(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// patches returns the configured patches as address/value pairs in
// address order.
func (c *Config) patches() ([][2]int, error) {
	var ps [][2]int
	for k, v := range c.Patch {
		addr, err := strconv.Atoi(k)
		if err != nil || addr < 0 {
			return nil, fmt.Errorf("invalid patch address %q", k)
		}
		ps = append(ps, [2]int{addr, v})
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i][0] < ps[j][0] })
	return ps, nil
}

// apply returns p with the configured patches applied.
func (c *Config) apply(p intcode.Program) (intcode.Program, error) {
	ps, err := c.patches()
	if err != nil {
		return nil, err
	}
	for _, pv := range ps {
		if p, err = p.Patch(pv[0], pv[1]); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// parsePatches parses a list of the form "1=12,2=2".
func parsePatches(s string) (map[string]int, error) {
	m := make(map[string]int)
	if s == "" {
		return m, nil
	}
	for _, kv := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid patch %q: want addr=value", kv)
		}
		k = strings.TrimSpace(k)
		if addr, err := strconv.Atoi(k); err != nil || addr < 0 {
			return nil, fmt.Errorf("invalid patch address %q", k)
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid patch value %q", v)
		}
		m[k] = n
	}
	return m, nil
}

// parseInts parses a comma-separated list of integers.
func parseInts(s string) ([]int, error) {
	var ns []int
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		ns = append(ns, n)
	}
	return ns, nil
}

// applyFlags overrides c with the flags in fs that were set explicitly.
func (c *Config) applyFlags(fs *flag.FlagSet) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		v := f.Value.String()
		switch f.Name {
		case "input":
			c.Input, err = strconv.Atoi(v)
		case "patch":
			c.Patch, err = parsePatches(v)
		case "peek":
			c.Peek, err = parseInts(v)
		case "search":
			if c.Search == nil {
				c.Search = &SearchConfig{}
			}
			c.Search.Target, err = strconv.Atoi(v)
		case "trace":
			c.Trace, err = strconv.ParseBool(v)
		case "gui":
			c.GUI, err = strconv.ParseBool(v)
		case "memmap":
			c.MemMap = v
		case "dump":
			c.Dump = v
		}
		if err != nil {
			err = fmt.Errorf("-%s: %w", f.Name, err)
		}
	})
	return err
}
