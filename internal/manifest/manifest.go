// Package manifest reads and writes YAML tile manifests.
//
// A manifest lists the tiles of a source stage:
//
//	tiles:
//	  - id: volume/000.tif
//	    x: 0
//	    y: 0
//	    z: 0
//	    status: complete
package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/tilepipe/internal/ports/primary"
)

// Manifest is the top-level document.
type Manifest struct {
	Tiles []Entry `yaml:"tiles"`
}

// Entry is one tile in a manifest.
type Entry struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name,omitempty"`
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Z      int    `yaml:"z"`
	Status string `yaml:"status,omitempty"`
}

// Parse decodes a manifest. Unknown fields, blank ids and repeated ids are
// rejected.
func Parse(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if err == io.EOF {
			return &m, nil
		}
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	seen := make(map[string]int, len(m.Tiles))
	for i, e := range m.Tiles {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			return nil, fmt.Errorf("tiles[%d]: missing id", i)
		}
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("tiles[%d]: id %q already used by tiles[%d]", i, id, prev)
		}
		seen[id] = i
		m.Tiles[i].ID = id
	}
	return &m, nil
}

// Load reads a manifest file. A path of "-" reads standard input.
func Load(path string) (*Manifest, error) {
	if path == "-" {
		return Parse(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Write encodes a manifest with two-space indentation.
func Write(w io.Writer, m *Manifest) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// ToInputs converts the manifest for TileService.ImportTiles.
func (m *Manifest) ToInputs() []*primary.TileInput {
	inputs := make([]*primary.TileInput, len(m.Tiles))
	for i, e := range m.Tiles {
		inputs[i] = &primary.TileInput{
			ID:     e.ID,
			Name:   e.Name,
			X:      e.X,
			Y:      e.Y,
			Z:      e.Z,
			Status: e.Status,
		}
	}
	return inputs
}

// FromTiles builds a manifest from stored tiles, carrying this stage's status.
func FromTiles(tiles []*primary.Tile) *Manifest {
	m := &Manifest{Tiles: make([]Entry, len(tiles))}
	for i, t := range tiles {
		m.Tiles[i] = Entry{
			ID:     t.ID,
			Name:   t.Name,
			X:      t.X,
			Y:      t.Y,
			Z:      t.Z,
			Status: t.ThisStageStatus,
		}
	}
	return m
}
