package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	logging "github.com/inconshreveable/log15"
	"github.com/stretchr/testify/require"

	"balloting-backend/errors"
)

func TestDefault(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), c)
	require.NoError(t, c.Validate())

	lvl, err := c.Level()
	require.NoError(t, err)
	require.Equal(t, logging.LvlInfo, lvl)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ballot.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage: leveldb://data/ledger
port: 9090
difficulty: 2
nonce_ttl: 90s
roster: roster.json
pinata:
  jwt: token
`), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "leveldb://data/ledger", c.Storage)
	require.Equal(t, 9090, c.Port)
	require.Equal(t, uint8(2), c.Difficulty)
	require.Equal(t, 90*time.Second, c.NonceTTL)
	require.Equal(t, "roster.json", c.Roster)
	require.Equal(t, "token", c.Pinata.JWT)
	// untouched keys keep their defaults
	require.Equal(t, DefaultQueueSize, c.QueueSize)
	require.Equal(t, DefaultPinataEndpoint, c.Pinata.Endpoint)
	require.NoError(t, c.Validate())
}

func TestLoadUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ballot.yml")
	require.NoError(t, os.WriteFile(path, []byte("prot: 1\n"), 0644))

	_, err := Load(path)
	require.ErrorIs(t, err, errors.InvalidConfig)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("BALLOT_STORAGE", "memory://")
	t.Setenv("BALLOT_PORT", "7070")
	t.Setenv("BALLOT_DIFFICULTY", "0")
	t.Setenv("BALLOT_NONCE_TTL", "1m")
	t.Setenv("BALLOT_PINATA_API_KEY", "key")

	c := Default()
	require.NoError(t, c.ApplyEnv())
	require.Equal(t, "memory://", c.Storage)
	require.Equal(t, 7070, c.Port)
	require.Equal(t, uint8(0), c.Difficulty)
	require.Equal(t, time.Minute, c.NonceTTL)
	require.Equal(t, "key", c.Pinata.APIKey)

	t.Setenv("BALLOT_QUEUE_SIZE", "many")
	require.ErrorIs(t, Default().ApplyEnv(), errors.InvalidConfig)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"scheme":     func(c *Config) { c.Storage = "s3://bucket" },
		"difficulty": func(c *Config) { c.Difficulty = MaxDifficulty + 1 },
		"queue":      func(c *Config) { c.QueueSize = 0 },
		"port":       func(c *Config) { c.Port = 0 },
		"ttl":        func(c *Config) { c.NonceTTL = 0 },
		"log level":  func(c *Config) { c.LogLevel = "loud" },
	}

	for name, mutate := range cases {
		c := Default()
		mutate(c)
		require.ErrorIs(t, c.Validate(), errors.InvalidConfig, name)
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default().Write(&buf))

	path := filepath.Join(t.TempDir(), "ballot.yml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Default(), c)
}
