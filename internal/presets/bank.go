package presets

/*------------------------------------------------------------------
 *
 * Purpose:	Named note masks (chromatic, major, pentatonic, ...)
 *		loadable from a YAML bank file, layered on top of the
 *		engine's plain 12-bit notemask as a control-surface
 *		convenience. The GUI this was modelled on only ever
 *		exposed twelve individual toggle buttons - this gives
 *		a host a quick way to seed those toggles from a name.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset is one named scale: Mask's bit i enables the semitone i
// positions above the root, i == 9 corresponding to the reference
// pitch itself in the engine's convention.
type Preset struct {
	Name string `yaml:"name"`
	Mask uint32 `yaml:"mask"`
}

// Bank is an ordered set of presets, keyed by name for lookup.
type Bank struct {
	order []string
	byName map[string]Preset
}

func newBank(presets []Preset) *Bank {
	b := &Bank{byName: make(map[string]Preset, len(presets))}
	for _, p := range presets {
		if _, exists := b.byName[p.Name]; !exists {
			b.order = append(b.order, p.Name)
		}
		b.byName[p.Name] = p
	}
	return b
}

// Names returns the preset names in the order they were defined.
func (b *Bank) Names() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Lookup returns the named preset's mask and whether it exists.
func (b *Bank) Lookup(name string) (uint32, bool) {
	p, ok := b.byName[name]
	return p.Mask, ok
}

type bankFile struct {
	Presets []Preset `yaml:"presets"`
}

// LoadBank reads a YAML bank file of the form:
//
//	presets:
//	  - name: major
//	    mask: 0xAB5
func LoadBank(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("presets: read %s: %w", path, err)
	}
	var bf bankFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("presets: parse %s: %w", path, err)
	}
	return newBank(bf.Presets), nil
}

// DefaultBank is the built-in set of common scales, relative to the
// engine's reference pitch sitting at bit 9.
func DefaultBank() *Bank {
	return newBank([]Preset{
		{Name: "chromatic", Mask: 0xFFF},
		{Name: "major", Mask: noteMask(0, 2, 4, 5, 7, 9, 11)},
		{Name: "natural-minor", Mask: noteMask(0, 2, 3, 5, 7, 8, 10)},
		{Name: "major-pentatonic", Mask: noteMask(0, 2, 4, 7, 9)},
		{Name: "minor-pentatonic", Mask: noteMask(0, 3, 5, 7, 10)},
		{Name: "blues", Mask: noteMask(0, 3, 5, 6, 7, 10)},
	})
}

func noteMask(semitones ...int) uint32 {
	var m uint32
	for _, s := range semitones {
		m |= 1 << uint(s%12)
	}
	return m
}
