package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"balloting-backend/models"
)

const (
	resultsPattern   = "results_*.json"
	resultsTimestamp = "20060102150405.000000"
	DefaultKeep      = 5
)

// ResultsArchive writes snapshots of the voting results to timestamped files
// and keeps only the most recent ones.
type ResultsArchive struct {
	dataDir string
	keep    int
	mutex   sync.RWMutex

	now func() time.Time
}

type resultsFile struct {
	path      string
	timestamp int64
}

type resultsFiles []resultsFile

func (f resultsFiles) Len() int           { return len(f) }
func (f resultsFiles) Less(i, j int) bool { return f[i].timestamp < f[j].timestamp }
func (f resultsFiles) Swap(i, j int)      { f[i], f[j] = f[j], f[i] }

func NewResultsArchive(dataDir string, keep int) (*ResultsArchive, error) {
	absPath, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if keep < 1 {
		keep = DefaultKeep
	}

	return &ResultsArchive{
		dataDir: absPath,
		keep:    keep,
		now:     time.Now,
	}, nil
}

func (s *ResultsArchive) Dir() string {
	return s.dataDir
}

// listFiles returns the archived result files, oldest first.
func (s *ResultsArchive) listFiles() (resultsFiles, error) {
	files, err := filepath.Glob(filepath.Join(s.dataDir, resultsPattern))
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	var found resultsFiles
	for _, file := range files {
		base := filepath.Base(file)
		stamp := strings.TrimSuffix(strings.TrimPrefix(base, "results_"), ".json")
		timestamp, err := time.Parse(resultsTimestamp, stamp)
		if err != nil {
			log.Warn("invalid timestamp in filename", "file", base, "error", err)
			continue
		}
		found = append(found, resultsFile{
			path:      file,
			timestamp: timestamp.UnixNano(),
		})
	}

	sort.Sort(found)
	return found, nil
}

func (s *ResultsArchive) LoadLatest() (*models.VotingResults, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	files, err := s.listFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	latest := files[len(files)-1].path
	file, err := os.Open(latest)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", latest, err)
	}
	defer file.Close()

	var results models.VotingResults
	if err := json.NewDecoder(file).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode results from %s: %w", latest, err)
	}

	log.Debug("loaded results", "file", latest, "winner", results.Winner.Hex())
	return &results, nil
}

// Save writes results to a new file and returns its path.
func (s *ResultsArchive) Save(results *models.VotingResults) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if results == nil {
		return "", fmt.Errorf("cannot save empty results")
	}

	timestamp := s.now().UTC().Format(resultsTimestamp)
	filename := filepath.Join(s.dataDir, fmt.Sprintf("results_%s.json", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(results); err != nil {
		return "", fmt.Errorf("failed to encode results: %w", err)
	}

	if err := s.cleanupOldFiles(); err != nil {
		log.Warn("failed to cleanup old result files", "error", err)
	}

	log.Info("saved results", "file", filename, "total-votes", results.TotalVotes)
	return filename, nil
}

func (s *ResultsArchive) cleanupOldFiles() error {
	files, err := s.listFiles()
	if err != nil {
		return err
	}

	if len(files) <= s.keep {
		return nil
	}

	for i := 0; i < len(files)-s.keep; i++ {
		if err := os.Remove(files[i].path); err != nil {
			log.Warn("failed to remove old file", "file", files[i].path, "error", err)
		} else {
			log.Debug("removed old results file", "file", files[i].path)
		}
	}

	return nil
}
