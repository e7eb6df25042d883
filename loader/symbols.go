package loader

import (
	"debug/elf"
	"debug/macho"
	"sort"
	"strings"
)

// exportedSymbols reads the defined function symbols from the dynamic
// symbol table of an ELF or Mach-O file. Other formats give nil.
func exportedSymbols(path string) []string {
	if names, err := elfSymbols(path); err == nil {
		return names
	}
	if names, err := machoSymbols(path); err == nil {
		return names
	}
	return nil
}

func elfSymbols(path string) ([]string, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	syms, err := f.DynamicSymbols()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(syms))
	for _, s := range syms {
		if s.Section == elf.SHN_UNDEF || elf.ST_TYPE(s.Info) != elf.STT_FUNC {
			continue
		}
		names = append(names, s.Name)
	}
	return dedupe(names), nil
}

func machoSymbols(path string) ([]string, error) {
	f, err := macho.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if f.Symtab == nil {
		return nil, nil
	}
	const nExt = 0x01
	names := make([]string, 0, len(f.Symtab.Syms))
	for _, s := range f.Symtab.Syms {
		if s.Sect == 0 || s.Type&nExt == 0 {
			continue
		}
		names = append(names, strings.TrimPrefix(s.Name, "_"))
	}
	return dedupe(names), nil
}

func dedupe(names []string) []string {
	sort.Strings(names)
	out := names[:0]
	for i, n := range names {
		if i > 0 && n == names[i-1] {
			continue
		}
		out = append(out, n)
	}
	return out
}
