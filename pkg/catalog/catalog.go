// Package catalog loads the machine park and material catalog consumed by
// the manufacturability checker.
//
// Catalogs are optional external data: a missing or unreadable file yields a
// CATALOG_UNAVAILABLE error that callers treat as a warning, degrading
// verdicts to "unknown" instead of blocking geometry generation for users
// who have not configured machine profiles yet. Loaded catalogs are
// read-only for the remainder of a run.
package catalog

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/mvollan/stirlingforge/pkg/errors"
)

// MachineKind categorizes a machine profile.
type MachineKind string

const (
	KindPrinter MachineKind = "printer"
	KindMill    MachineKind = "mill"
	KindLathe   MachineKind = "lathe"
	KindSaw     MachineKind = "saw"
)

// Valid reports whether k is a declared machine kind.
func (k MachineKind) Valid() bool {
	switch k {
	case KindPrinter, KindMill, KindLathe, KindSaw:
		return true
	}
	return false
}

// Envelope is a rectangular working volume or travel limit in millimeters.
type Envelope struct {
	X float64 `toml:"x" json:"x"`
	Y float64 `toml:"y" json:"y"`
	Z float64 `toml:"z" json:"z"`
}

// MachineProfile describes one machine's working limits. Which fields apply
// depends on Kind: printers and mills use Envelope, lathes use swing and
// between-centers, saws use blade diameter and max section.
type MachineProfile struct {
	ID   string      `toml:"id" json:"id"`
	Kind MachineKind `toml:"kind" json:"kind"`

	Envelope *Envelope `toml:"envelope,omitempty" json:"envelope,omitempty"`

	SwingDiameterMM  float64 `toml:"swing_diameter_mm,omitempty" json:"swing_diameter_mm,omitempty"`
	BetweenCentersMM float64 `toml:"between_centers_mm,omitempty" json:"between_centers_mm,omitempty"`

	BladeDiameterMM float64 `toml:"blade_diameter_mm,omitempty" json:"blade_diameter_mm,omitempty"`
	MaxSectionMM    float64 `toml:"max_section_mm,omitempty" json:"max_section_mm,omitempty"`
}

// MaterialKind categorizes stock form.
type MaterialKind string

const (
	StockSheet    MaterialKind = "sheet"
	StockBar      MaterialKind = "bar"
	StockFilament MaterialKind = "filament"
)

// MaterialRecord is one material catalog row. UnitPrice is a pointer so an
// absent price stays distinguishable from a free material.
type MaterialRecord struct {
	Code      string       `toml:"code" json:"code"`
	Name      string       `toml:"name" json:"name"`
	Kind      MaterialKind `toml:"kind" json:"kind"`
	UnitPrice *float64     `toml:"unit_price,omitempty" json:"unit_price,omitempty"`
	Available bool         `toml:"available" json:"available"`
}

// Catalog file basenames looked up under the catalog directory.
const (
	MachinesFile  = "machines.toml"
	MaterialsFile = "materials.toml"
)

// MachinesPath returns the machine catalog path under a catalog directory.
func MachinesPath(dir string) string { return filepath.Join(dir, MachinesFile) }

// MaterialsPath returns the material catalog path under a catalog directory.
func MaterialsPath(dir string) string { return filepath.Join(dir, MaterialsFile) }

type machinesFile struct {
	Machines []MachineProfile `toml:"machines"`
}

type materialsFile struct {
	Materials []MaterialRecord `toml:"materials"`
}

// LoadMachines reads the machine park from a TOML file.
// A missing, unreadable or malformed file is CATALOG_UNAVAILABLE.
func LoadMachines(path string) ([]MachineProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalogUnavailable, err, "machine catalog %s", path)
	}
	var f machinesFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalogUnavailable, err, "machine catalog %s", path)
	}
	for _, m := range f.Machines {
		if m.ID == "" || !m.Kind.Valid() {
			return nil, errors.New(errors.ErrCodeCatalogUnavailable,
				"machine catalog %s: entry %q has invalid kind %q", path, m.ID, m.Kind)
		}
	}
	return f.Machines, nil
}

// LoadMaterials reads the material catalog from a TOML file.
// A missing, unreadable or malformed file is CATALOG_UNAVAILABLE.
func LoadMaterials(path string) ([]MaterialRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalogUnavailable, err, "material catalog %s", path)
	}
	var f materialsFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalogUnavailable, err, "material catalog %s", path)
	}
	for _, m := range f.Materials {
		if m.Code == "" {
			return nil, errors.New(errors.ErrCodeCatalogUnavailable,
				"material catalog %s: entry without code", path)
		}
	}
	return f.Materials, nil
}

// FindMaterial returns the record with the given code.
func FindMaterial(materials []MaterialRecord, code string) (MaterialRecord, bool) {
	for _, m := range materials {
		if m.Code == code {
			return m, true
		}
	}
	return MaterialRecord{}, false
}

// price is a helper for the default tables.
func price(v float64) *float64 { return &v }

// DefaultMachines is the built-in machine park, matching the workshop the
// engine family was designed around. Used by `catalog init` to seed config
// files; the checker itself never falls back to it silently.
func DefaultMachines() []MachineProfile {
	return []MachineProfile{
		{ID: "cnc_mill", Kind: KindMill, Envelope: &Envelope{X: 320, Y: 220, Z: 110}},
		{ID: "lathe", Kind: KindLathe, SwingDiameterMM: 180, BetweenCentersMM: 300},
		{ID: "printer", Kind: KindPrinter, Envelope: &Envelope{X: 220, Y: 220, Z: 250}},
		{ID: "saw", Kind: KindSaw, BladeDiameterMM: 216, MaxSectionMM: 80},
	}
}

// DefaultMaterials is the built-in material catalog.
func DefaultMaterials() []MaterialRecord {
	return []MaterialRecord{
		{Code: "AL6061", Name: "Aluminium 6061", Kind: StockSheet, UnitPrice: price(12.50), Available: true},
		{Code: "GLASS_QUARTZ", Name: "Quartz glass", Kind: StockBar, UnitPrice: price(28.00), Available: true},
		{Code: "BRASS_360", Name: "Brass 360", Kind: StockBar, UnitPrice: price(9.80), Available: true},
		{Code: "PLA_175", Name: "PLA filament 1.75 mm", Kind: StockFilament, UnitPrice: price(0.04), Available: true},
		{Code: "STEEL_4140", Name: "Alloy steel 4140", Kind: StockBar, UnitPrice: price(6.20), Available: false},
	}
}

// WriteDefaults seeds a catalog directory with the built-in machine park
// and material catalog. Existing files are not overwritten.
func WriteDefaults(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeTOML(filepath.Join(dir, MachinesFile), machinesFile{Machines: DefaultMachines()}); err != nil {
		return err
	}
	return writeTOML(filepath.Join(dir, MaterialsFile), materialsFile{Materials: DefaultMaterials()})
}

func writeTOML(path string, v any) error {
	if _, err := os.Stat(path); err == nil {
		return nil // keep user edits
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(v)
}
