package pinning

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"balloting-backend/errors"
	"balloting-backend/metadata"
)

func noBackoff(retry int) time.Duration { return time.Millisecond }

type fakePinata struct {
	mu       sync.Mutex
	failures int
	uploads  []string
	headers  []http.Header
	failName string
}

func (f *fakePinata) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, PinFilePath, r.URL.Path)

		f.mu.Lock()
		defer f.mu.Unlock()

		if f.failures > 0 {
			f.failures--
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, err := io.ReadAll(file)
		require.NoError(t, err)

		if header.Filename == f.failName {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"bad file"}`)
			return
		}

		f.uploads = append(f.uploads, header.Filename)
		f.headers = append(f.headers, r.Header.Clone())

		json.NewEncoder(w).Encode(PinResponse{
			IpfsHash:  fmt.Sprintf("Qm%s%d", header.Filename, len(content)),
			PinSize:   int64(len(content)),
			Timestamp: "2026-01-01T00:00:00Z",
		})
	})
}

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCredentials(t *testing.T) {
	require.NoError(t, Credentials{JWT: "token"}.Validate())
	require.NoError(t, Credentials{APIKey: "k", APISecret: "s"}.Validate())
	require.ErrorIs(t, Credentials{APIKey: "k"}.Validate(), errors.InvalidConfig)

	_, err := NewClient("http://localhost", Credentials{}, 1, nil)
	require.ErrorIs(t, err, errors.InvalidConfig)
}

func TestPinFile(t *testing.T) {
	fake := &fakePinata{}
	ts := httptest.NewServer(fake.handler(t))
	defer ts.Close()

	path := writeFile(t, t.TempDir(), "alice.png", "png-bytes")

	c, err := NewClient(ts.URL+"/", Credentials{JWT: "token"}, 3, noBackoff)
	require.NoError(t, err)

	pinned, err := c.PinFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "Qmalice.png9", pinned.IpfsHash)
	require.Equal(t, int64(9), pinned.PinSize)
	require.Equal(t, "Bearer token", fake.headers[0].Get("Authorization"))

	c, err = NewClient(ts.URL, Credentials{APIKey: "key", APISecret: "secret"}, 3, noBackoff)
	require.NoError(t, err)
	_, err = c.PinFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "key", fake.headers[1].Get("pinata_api_key"))
	require.Equal(t, "secret", fake.headers[1].Get("pinata_secret_api_key"))
	require.Empty(t, fake.headers[1].Get("Authorization"))
}

func TestPinFileRetries(t *testing.T) {
	fake := &fakePinata{failures: 2}
	ts := httptest.NewServer(fake.handler(t))
	defer ts.Close()

	path := writeFile(t, t.TempDir(), "bob.png", "b")

	c, err := NewClient(ts.URL, Credentials{JWT: "token"}, 3, noBackoff)
	require.NoError(t, err)

	pinned, err := c.PinFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "Qmbob.png1", pinned.IpfsHash)
}

func TestPinFileRejected(t *testing.T) {
	fake := &fakePinata{failName: "bad.png"}
	ts := httptest.NewServer(fake.handler(t))
	defer ts.Close()

	path := writeFile(t, t.TempDir(), "bad.png", "x")

	c, err := NewClient(ts.URL, Credentials{JWT: "token"}, 1, noBackoff)
	require.NoError(t, err)

	_, err = c.PinFile(context.Background(), path)
	require.ErrorIs(t, err, errors.PinningFailed)

	_, err = c.PinFile(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
}

func TestBatchUploader(t *testing.T) {
	fake := &fakePinata{failName: "broken.png"}
	ts := httptest.NewServer(fake.handler(t))
	defer ts.Close()

	images := t.TempDir()
	writeFile(t, images, "alice.png", "aa")
	writeFile(t, images, "broken.png", "zz")
	writeFile(t, images, "carol.jpg", "ccc")
	writeFile(t, images, ".DS_Store", "")
	require.NoError(t, os.Mkdir(filepath.Join(images, "nested"), 0755))

	metadataPath := filepath.Join(t.TempDir(), "metadata.json")
	generator := metadata.NewGenerator(metadataPath)

	c, err := NewClient(ts.URL, Credentials{JWT: "token"}, 1, noBackoff)
	require.NoError(t, err)

	results, err := NewBatchUploader(c, generator).Run(context.Background(), images)
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.Equal(t, "alice", results[0].Name)
	require.NoError(t, results[0].Err)
	require.Equal(t, "Qmalice.png2", results[0].ImageCID)
	require.NotEmpty(t, results[0].MetadataCID)
	require.Equal(t, "ipfs://"+results[0].MetadataCID, results[0].TokenURI)

	require.ErrorIs(t, results[1].Err, errors.PinningFailed)
	require.Empty(t, results[1].MetadataCID)

	require.NoError(t, results[2].Err)
	require.Equal(t, "carol", results[2].Name)

	collection, err := generator.Load()
	require.NoError(t, err)
	require.Len(t, collection, 2)
	require.Equal(t, "alice description", collection[0].Description)
	require.Equal(t, "ipfs://Qmalice.png2", collection[0].Image)
	require.Equal(t, metadata.DefaultTraitType, collection[0].Attributes[0].TraitType)

	require.Equal(t, []string{"alice.png", "metadata.json", "carol.jpg", "metadata.json"}, fake.uploads)
}

func TestBatchUploaderMissingDir(t *testing.T) {
	c, err := NewClient("http://localhost", Credentials{JWT: "token"}, 1, noBackoff)
	require.NoError(t, err)

	_, err = NewBatchUploader(c, metadata.NewGenerator(filepath.Join(t.TempDir(), "m.json"))).
		Run(context.Background(), filepath.Join(t.TempDir(), "none"))
	require.Error(t, err)
}
