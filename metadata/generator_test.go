package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"balloting-backend/models"
)

func TestGenerate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata", "metadata.json")
	g := NewGenerator(path)

	empty, err := g.Load()
	require.NoError(t, err)
	require.Empty(t, empty)

	got, err := g.Generate("alice", Description("alice"), "QmImage1", DefaultTraitType, DefaultValue)
	require.NoError(t, err)
	require.Equal(t, path, got)

	_, err = g.Generate("bob", "custom", "QmImage2", "role", "member")
	require.NoError(t, err)

	// duplicate names are skipped
	_, err = g.Generate("alice", "changed", "QmOther", "x", "y")
	require.NoError(t, err)

	collection, err := g.Load()
	require.NoError(t, err)
	require.Equal(t, []models.TokenMetadata{
		{
			Name:        "alice",
			Description: "alice description",
			Image:       "ipfs://QmImage1",
			Attributes:  []models.TokenAttribute{{TraitType: "traitTypeExample", Value: "valueExample"}},
		},
		{
			Name:        "bob",
			Description: "custom",
			Image:       "ipfs://QmImage2",
			Attributes:  []models.TokenAttribute{{TraitType: "role", Value: "member"}},
		},
	}, collection)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"trait_type": "traitTypeExample"`)
}

func TestLoadBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	_, err := NewGenerator(path).Generate("a", "b", "c", "d", "e")
	require.Error(t, err)
}
