package main

import (
	"fmt"
	"image/png"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nf/intcode/intcode"
	"github.com/nf/intcode/runner"
)

// faultDump is the YAML document written by writeDump.
type faultDump struct {
	Program string `yaml:"program"`
	Fault   string `yaml:"fault"`
	Error   string `yaml:"error"`
	PC      int    `yaml:"pc"`
	Word    int    `yaml:"word"`
	Op      string `yaml:"op"`
	Addr    *int   `yaml:"addr,omitempty"`
	Mem     []int  `yaml:"mem,flow"`
}

// writeDump writes a description of a fault, including a copy of memory,
// to path.
func writeDump(path, progFile string, fe intcode.FaultError) error {
	d := faultDump{
		Program: progFile,
		Fault:   fe.Fault.String(),
		Error:   fe.Error(),
		PC:      fe.PC,
		Word:    fe.Word,
		Op:      fe.Op.String(),
		Mem:     fe.Mem,
	}
	if fe.Fault == intcode.OutOfBounds {
		addr := fe.Addr
		d.Addr = &addr
	}
	b, err := yaml.Marshal(d)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("writing dump: %w", err)
	}
	return nil
}

// writeMemoryMap writes mem as a PNG image to path.
func writeMemoryMap(path string, mem []int, pc, scale int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	img := runner.ScaleImage(runner.MemoryImage(mem, pc), scale)
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("writing memory map: %w", err)
	}
	return nil
}
