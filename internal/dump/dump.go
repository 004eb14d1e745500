// Package dump exports decoded package schemas for debugging. A dump is a
// msgpack document; it is never read back by generation.
package dump

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/vk/movegen/internal/model"
)

// Current schema version. Increment when the dumped model changes shape.
const formatVersion uint16 = 1

type document struct {
	Format  uint16         `msgpack:"format"`
	Package *model.Package `msgpack:"package"`
}

// Write encodes pkg to w.
func Write(w io.Writer, pkg *model.Package) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(document{Format: formatVersion, Package: pkg}); err != nil {
		return fmt.Errorf("encode dump: %w", err)
	}
	return nil
}

// Read decodes a dump written by Write.
func Read(r io.Reader) (*model.Package, error) {
	var doc document
	if err := msgpack.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode dump: %w", err)
	}
	if doc.Format != formatVersion {
		return nil, fmt.Errorf("dump format %d is not supported (want %d)", doc.Format, formatVersion)
	}
	if doc.Package == nil {
		return nil, fmt.Errorf("dump holds no package")
	}
	return doc.Package, nil
}

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	moduleColor = color.New(color.FgGreen)
	entryColor  = color.New(color.FgYellow)
)

// Summary prints one line per module of pkg and one line per declaration.
func Summary(w io.Writer, pkg *model.Package) {
	headerColor.Fprintf(w, "package %s", pkg.Address.ShortString())
	fmt.Fprintf(w, " (version %d, %d modules)\n", pkg.Version, len(pkg.Modules))
	for _, m := range pkg.Modules {
		moduleColor.Fprintf(w, "  %s", m.Name)
		fmt.Fprintf(w, ": %d structs, %d enums, %d functions\n", len(m.Structs), len(m.Enums), len(m.Functions))
		for _, s := range m.Structs {
			origin, _ := pkg.TypeOrigins.Lookup(m.Name, s.Name)
			entryColor.Fprintf(w, "    struct %s", s.Name)
			fmt.Fprintf(w, " has %s [%d fields, defined at %s]\n", abilities(s.Abilities), len(s.Fields), origin.ShortString())
		}
		for _, e := range m.Enums {
			origin, _ := pkg.TypeOrigins.Lookup(m.Name, e.Name)
			entryColor.Fprintf(w, "    enum %s", e.Name)
			fmt.Fprintf(w, " has %s [%d variants, defined at %s]\n", abilities(e.Abilities), len(e.Variants), origin.ShortString())
		}
		for _, f := range m.Functions {
			entryColor.Fprintf(w, "    fun %s", f.Name)
			fmt.Fprintf(w, " [%s, %d params, %d returns]\n", visibility(f), len(f.Parameters), len(f.Return))
		}
	}
}

func abilities(s model.AbilitySet) string {
	if s == 0 {
		return "no abilities"
	}
	return s.String()
}

func visibility(f *model.Function) string {
	if f.IsEntry {
		return f.Visibility.String() + " entry"
	}
	return f.Visibility.String()
}
