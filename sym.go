package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// symbols is a list of labelled addresses, sorted by address.
type symbols []symbol

func (s symbols) forAddr(addr int) (ss []symbol) {
	i := sort.Search(len(s), func(i int) bool { return s[i].addr >= addr })
	for ; i < len(s); i++ {
		if s[i].addr != addr {
			break
		}
		ss = append(ss, s[i])
	}
	return ss
}

func (s symbols) withLabelPrefix(prefix string) (ss []symbol) {
	for _, sym := range s {
		if strings.HasPrefix(sym.label, prefix) {
			ss = append(ss, sym)
		}
	}
	return ss
}

// resolve returns the symbol named by arg, which may be a label or
// a decimal address.
func (s symbols) resolve(arg string) (symbol, bool) {
	for _, sym := range s {
		if sym.label == arg {
			return sym, true
		}
	}
	addr, err := strconv.Atoi(arg)
	if err != nil || addr < 0 {
		return symbol{}, false
	}
	if ss := s.forAddr(addr); len(ss) > 0 {
		return ss[0], true
	}
	return symbol{addr: addr, label: arg}, true
}

type symbol struct {
	addr  int
	label string
}

func (s symbol) String() string { return fmt.Sprintf("%s (%.4d)", s.label, s.addr) }

// parseSymbols reads a symbol file. Each line holds a decimal address and a
// label separated by white space. Blank lines and lines starting with '#'
// are ignored.
func parseSymbols(symFile string) (symbols, error) {
	f, err := os.Open(symFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		ss   symbols
		line int
		sc   = bufio.NewScanner(f)
	)
	for sc.Scan() {
		line++
		t := strings.TrimSpace(sc.Text())
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		fields := strings.Fields(t)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s:%d: want address and label, got %q", symFile, line, t)
		}
		addr, err := strconv.Atoi(fields[0])
		if err != nil || addr < 0 {
			return nil, fmt.Errorf("%s:%d: invalid address %q", symFile, line, fields[0])
		}
		ss = append(ss, symbol{addr: addr, label: fields[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(ss, func(i, j int) bool {
		return ss[i].addr < ss[j].addr
	})
	return ss, nil
}
