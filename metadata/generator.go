// Package metadata maintains the aggregate token metadata file for the
// member badges.
package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"balloting-backend/models"
)

const (
	DefaultTraitType = "traitTypeExample"
	DefaultValue     = "valueExample"
)

type Generator struct {
	path string
	mu   sync.Mutex
}

func NewGenerator(path string) *Generator {
	return &Generator{path: path}
}

func (g *Generator) Path() string {
	return g.path
}

// Description is the default description of a token named name.
func Description(name string) string {
	return fmt.Sprintf("%s description", name)
}

// Generate appends a metadata entry to the aggregate file and returns the
// file path. An entry whose name is already present is left as it is.
func (g *Generator) Generate(name, description, imageCID, traitType, value string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	collection, err := g.load()
	if err != nil {
		return "", err
	}

	for _, m := range collection {
		if m.Name == name {
			log.Info("metadata already exists, skipping", "name", name)
			return g.path, nil
		}
	}

	collection = append(collection, models.TokenMetadata{
		Name:        name,
		Description: description,
		Image:       "ipfs://" + imageCID,
		Attributes: []models.TokenAttribute{
			{TraitType: traitType, Value: value},
		},
	})

	if err := g.save(collection); err != nil {
		return "", err
	}

	log.Info("metadata saved", "name", name, "path", g.path)
	return g.path, nil
}

// Load returns every entry of the file. A missing file is an empty
// collection.
func (g *Generator) Load() ([]models.TokenMetadata, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.load()
}

func (g *Generator) load() ([]models.TokenMetadata, error) {
	data, err := os.ReadFile(g.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.TokenMetadata{}, nil
		}
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	var collection []models.TokenMetadata
	if err := json.Unmarshal(data, &collection); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return collection, nil
}

func (g *Generator) save(collection []models.TokenMetadata) error {
	if err := os.MkdirAll(filepath.Dir(g.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	tempPath := g.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}
	if err := os.Rename(tempPath, g.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save metadata file: %w", err)
	}
	return nil
}
