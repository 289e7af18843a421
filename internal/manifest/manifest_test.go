package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tilepipe/internal/ports/primary"
)

const sample = `
tiles:
  - id: vol/000.tif
    z: 0
    status: complete
  - id: " vol/001.tif "
    name: one
    x: 1
    y: 2
    z: 1
`

func TestParse(t *testing.T) {
	m, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, m.Tiles, 2)

	assert.Equal(t, Entry{ID: "vol/000.tif", Status: "complete"}, m.Tiles[0])
	assert.Equal(t, Entry{ID: "vol/001.tif", Name: "one", X: 1, Y: 2, Z: 1}, m.Tiles[1])
}

func TestParse_Empty(t *testing.T) {
	m, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, m.Tiles)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"unknown field", "tiles:\n  - id: a\n    w: 3\n", "field w not found"},
		{"missing id", "tiles:\n  - z: 3\n", "tiles[0]: missing id"},
		{"duplicate id", "tiles:\n  - id: a\n  - id: a\n", "already used by tiles[0]"},
		{"not yaml", "tiles: [", "failed to parse manifest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, m.Tiles, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWriteThenParse(t *testing.T) {
	tiles := []*primary.Tile{
		{ID: "a", Name: "a", Z: 4, ThisStageStatus: "processing", PrevStageStatus: "complete"},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FromTiles(tiles)))
	assert.Contains(t, buf.String(), "status: processing")

	m, err := Parse(&buf)
	require.NoError(t, err)
	inputs := m.ToInputs()
	require.Len(t, inputs, 1)
	assert.Equal(t, primary.TileInput{ID: "a", Name: "a", Z: 4, Status: "processing"}, *inputs[0])
}
