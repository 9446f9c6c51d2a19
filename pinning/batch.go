package pinning

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"balloting-backend/metadata"
)

type Pinner interface {
	PinFile(ctx context.Context, path string) (*PinResponse, error)
}

// Result is the outcome for one image of a batch.
type Result struct {
	Image       string `json:"image"`
	Name        string `json:"name"`
	ImageCID    string `json:"image_cid,omitempty"`
	MetadataCID string `json:"metadata_cid,omitempty"`
	TokenURI    string `json:"token_uri,omitempty"`
	Err         error  `json:"-"`
}

type BatchUploader struct {
	pinner    Pinner
	generator *metadata.Generator

	TraitType string
	Value     string
}

func NewBatchUploader(pinner Pinner, generator *metadata.Generator) *BatchUploader {
	return &BatchUploader{
		pinner:    pinner,
		generator: generator,
		TraitType: metadata.DefaultTraitType,
		Value:     metadata.DefaultValue,
	}
}

func imageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

// Run pins every image in imagesDir together with its metadata. A failing
// image is recorded in its Result and the batch moves on.
func (b *BatchUploader) Run(ctx context.Context, imagesDir string) ([]Result, error) {
	files, err := imageFiles(imagesDir)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := b.upload(ctx, file)
		if result.Err != nil {
			log.Error("failed to upload", "image", result.Image, "error", result.Err)
		} else {
			log.Info(
				"uploaded",
				"image", result.Image,
				"metadata-cid", result.MetadataCID,
				"image-cid", result.ImageCID,
				"token-uri", result.TokenURI,
			)
		}
		results = append(results, result)
	}

	return results, nil
}

func (b *BatchUploader) upload(ctx context.Context, file string) Result {
	base := filepath.Base(file)
	result := Result{
		Image: base,
		Name:  strings.TrimSuffix(base, filepath.Ext(base)),
	}

	image, err := b.pinner.PinFile(ctx, file)
	if err != nil {
		result.Err = err
		return result
	}
	result.ImageCID = image.IpfsHash

	path, err := b.generator.Generate(
		result.Name,
		metadata.Description(result.Name),
		image.IpfsHash,
		b.TraitType,
		b.Value,
	)
	if err != nil {
		result.Err = err
		return result
	}

	meta, err := b.pinner.PinFile(ctx, path)
	if err != nil {
		result.Err = err
		return result
	}
	result.MetadataCID = meta.IpfsHash
	result.TokenURI = "ipfs://" + meta.IpfsHash

	return result
}
