package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"balloting-backend/config"
	"balloting-backend/encryption"
	"balloting-backend/models"
	"balloting-backend/registry"
)

func execute(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		flagConfig = ""
		flagLogLevel = ""
		flagLogOutput = ""
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestBuildOperation(t *testing.T) {
	now := time.Unix(1700000000, 0)
	target := "0x00000000000000000000000000000000000000aa"

	op, err := buildOperation([]string{"vote", target}, 3, now)
	require.NoError(t, err)
	require.Equal(t, models.OpVote, op.Type)
	require.Equal(t, common.HexToAddress(target), op.Target)
	require.Equal(t, uint64(3), op.Nonce)
	require.Equal(t, now.Unix(), op.Timestamp)

	op, err = buildOperation([]string{"start_voting"}, 0, now)
	require.NoError(t, err)
	require.Equal(t, uint64(now.UnixNano()), op.Nonce)

	_, err = buildOperation([]string{"vote"}, 1, now)
	require.Error(t, err)

	_, err = buildOperation([]string{"end_voting", target}, 1, now)
	require.Error(t, err)

	_, err = buildOperation([]string{"vote", "not-an-address"}, 1, now)
	require.Error(t, err)

	_, err = buildOperation([]string{"reset"}, 1, now)
	require.Error(t, err)
}

func TestKeygenAndSign(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "caller.json")

	out, err := execute(t, "keygen", "--output", keyPath, "--format", "json")
	require.NoError(t, err)

	var creds encryption.Credentials
	require.NoError(t, json.Unmarshal([]byte(out), &creds))
	require.FileExists(t, keyPath)

	// keygen never overwrites a key
	_, err = execute(t, "keygen", "--output", keyPath, "--format", "json")
	require.Error(t, err)

	target := "0x00000000000000000000000000000000000000bb"
	out, err = execute(t, "sign", "--key", keyPath, "--nonce", "7", "nominate_member", target)
	require.NoError(t, err)

	var signed models.SignedOperation
	require.NoError(t, json.Unmarshal([]byte(out), &signed))
	require.Equal(t, creds.Address, signed.Operation.Caller)
	require.Equal(t, models.OpNominateMember, signed.Operation.Type)
	require.Equal(t, uint64(7), signed.Operation.Nonce)

	payload, err := signed.Operation.SigningBytes()
	require.NoError(t, err)
	signer, err := encryption.NewCryptoService().RecoverAddress(payload, signed.Signature)
	require.NoError(t, err)
	require.Equal(t, creds.Address, signer)
}

func TestLoadConfigFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9090\nlog_level: warn\n"), 0644))

	flagConfig = path
	flagLogLevel = "debug"
	defer func() {
		flagConfig = ""
		flagLogLevel = ""
	}()

	cfg, err := loadConfig()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, "debug", cfg.LogLevel)

	flagLogLevel = "loud"
	_, err = loadConfig()
	require.Error(t, err)
}

func TestMetadataGenerate(t *testing.T) {
	dir := t.TempDir()
	metadataPath := filepath.Join(dir, "metadata.json")
	configPath := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("metadata:\n  path: "+metadataPath+"\n"), 0644))

	out, err := execute(t, "--config", configPath, "metadata", "generate", "alice", "QmAlice")
	require.NoError(t, err)
	require.Equal(t, metadataPath+"\n", out)

	out, err = execute(t, "--config", configPath, "metadata", "list")
	require.NoError(t, err)

	var collection []models.TokenMetadata
	require.NoError(t, json.Unmarshal([]byte(out), &collection))
	require.Len(t, collection, 1)
	require.Equal(t, "alice", collection[0].Name)
	require.Equal(t, "ipfs://QmAlice", collection[0].Image)
}

func TestRosterAdd(t *testing.T) {
	dir := t.TempDir()
	rosterPath := filepath.Join(dir, "roster.json")
	configPath := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("roster: "+rosterPath+"\n"), 0644))

	alice := common.HexToAddress("0x2000000000000000000000000000000000000002")
	bob := common.HexToAddress("0x3000000000000000000000000000000000000003")

	out, err := execute(t, "--config", configPath, "roster", "add", alice.Hex(), "alice")
	require.NoError(t, err)
	require.Equal(t, alice.Hex()+"\n", out)

	_, err = execute(t, "--config", configPath, "roster", "add", bob.Hex())
	require.NoError(t, err)

	_, err = execute(t, "--config", configPath, "roster", "add", alice.Hex(), "again")
	require.ErrorContains(t, err, `already on the roster as "alice"`)

	_, err = execute(t, "--config", configPath, "roster", "add", "nobody")
	require.ErrorContains(t, err, "invalid address")

	out, err = execute(t, "--config", configPath, "roster", "list")
	require.NoError(t, err)

	var entries []registry.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Equal(t, []registry.Entry{{Address: alice, Name: "alice"}, {Address: bob}}, entries)
}

func TestResultsDir(t *testing.T) {
	require.Equal(t, filepath.Join("data", "results"), resultsDir("file://data"))
	require.Equal(t, filepath.Join("/var/ballot", "results"), resultsDir("leveldb:///var/ballot/ledger"))
	require.Equal(t, filepath.Join("data", "results"), resultsDir("memory://"))
}

func TestNewNode(t *testing.T) {
	dir := t.TempDir()

	member := common.HexToAddress("0x00000000000000000000000000000000000000cc")
	rosterPath := filepath.Join(dir, "roster.json")
	require.NoError(t, os.WriteFile(
		rosterPath,
		[]byte(`{"members":[{"address":"`+member.Hex()+`","name":"carol"}]}`),
		0644,
	))

	cfg := config.Default()
	cfg.Storage = "file://" + filepath.Join(dir, "ledger")
	cfg.AdminKey = filepath.Join(dir, "admin.json")
	cfg.Roster = rosterPath
	cfg.Difficulty = 0

	n, err := newNode(cfg)
	require.NoError(t, err)

	key, generated, err := encryption.LoadOrGenerateKey(cfg.AdminKey)
	require.NoError(t, err)
	require.False(t, generated)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), n.service.Admin())
	require.True(t, n.service.IsMember(member))

	ts := httptest.NewServer(n.server.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/members")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var members []common.Address
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&members))
	require.Equal(t, []common.Address{member}, members)

	n.queue.Stop()
	require.NoError(t, n.service.Close())

	// the ledger replays the roster registration; the roster is not applied twice
	n, err = newNode(cfg)
	require.NoError(t, err)
	require.Equal(t, []common.Address{member}, n.service.GetMembers())
	require.NoError(t, n.service.Close())
}
