package cmd

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/oklog/run"
	"github.com/spf13/cobra"

	"balloting-backend/api"
	"balloting-backend/common"
	"balloting-backend/config"
	"balloting-backend/encryption"
	"balloting-backend/metrics"
	"balloting-backend/registry"
	"balloting-backend/service"
	"balloting-backend/storage"
)

const shutdownTimeout = 10 * time.Second

var (
	flagPort    int
	flagStorage string
	flagRoster  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the balloting node",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if c.Flags().Changed("port") {
			cfg.Port = flagPort
		}
		if c.Flags().Changed("storage") {
			cfg.Storage = flagStorage
		}
		if c.Flags().Changed("roster") {
			cfg.Roster = flagRoster
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		return serve(cfg)
	},
}

func init() {
	serveCmd.Flags().IntVar(&flagPort, "port", config.DefaultPort, "HTTP port")
	serveCmd.Flags().StringVar(&flagStorage, "storage", config.DefaultStorage, "ledger storage, {file://<dir>, leveldb://<dir>, memory://}")
	serveCmd.Flags().StringVar(&flagRoster, "roster", "", "roster file registered at boot")

	rootCmd.AddCommand(serveCmd)
}

// resultsDir keeps the results archive inside a file ledger directory and
// beside a leveldb one.
func resultsDir(storageURI string) string {
	switch {
	case strings.HasPrefix(storageURI, "file://"):
		return filepath.Join(strings.TrimPrefix(storageURI, "file://"), "results")
	case strings.HasPrefix(storageURI, "leveldb://"):
		return filepath.Join(filepath.Dir(strings.TrimPrefix(storageURI, "leveldb://")), "results")
	}
	return filepath.Join("data", "results")
}

type node struct {
	service *service.BallotingService
	queue   *service.QueueProcessor
	server  *http.Server
}

func newNode(cfg *config.Config) (*node, error) {
	adminKey, generated, err := encryption.LoadOrGenerateKey(cfg.AdminKey)
	if err != nil {
		return nil, err
	}
	admin := crypto.PubkeyToAddress(adminKey.PublicKey)
	if generated {
		log.Info("generated admin key", "path", cfg.AdminKey, "admin", admin.Hex())
	}

	st, err := storage.Open(cfg.Storage)
	if err != nil {
		return nil, err
	}

	archive, err := storage.NewResultsArchive(resultsDir(cfg.Storage), storage.DefaultKeep)
	if err != nil {
		st.Close()
		return nil, err
	}

	svc, err := service.NewBallotingService(service.Config{
		Admin:      admin,
		Store:      st,
		Difficulty: cfg.Difficulty,
		NonceTTL:   cfg.NonceTTL,
		Archive:    archive,
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	if len(cfg.Roster) > 0 {
		roster, err := registry.LoadRoster(cfg.Roster)
		if err != nil {
			svc.Close()
			return nil, err
		}
		registered, err := roster.Bootstrap(context.Background(), svc, admin)
		if err != nil {
			svc.Close()
			return nil, err
		}
		log.Info("roster registered", "path", cfg.Roster, "registered", registered)
	}

	queue := service.NewQueueProcessor(svc, cfg.QueueSize, 0)

	return &node{
		service: svc,
		queue:   queue,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: api.NewServer(svc, queue).Handler(),
		},
	}, nil
}

func serve(cfg *config.Config) error {
	metrics.InitPrometheusMetrics()

	n, err := newNode(cfg)
	if err != nil {
		log.Crit("failed to start node", "error", err)
		return err
	}
	defer n.service.Close()

	var serveErr error
	var g run.Group
	{
		g.Add(func() error {
			n.queue.Start()
			log.Info("starting server", "addr", n.server.Addr, "storage", cfg.Storage)
			if err := n.server.ListenAndServe(); err != http.ErrServerClosed {
				log.Crit("server stopped", "error", err)
				serveErr = err
				return err
			}
			return nil
		}, func(error) {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := n.server.Shutdown(ctx); err != nil {
				log.Error("failed to shutdown server", "error", err)
			}
			n.queue.Stop()
		})
	}
	{
		cancel := make(chan struct{})
		g.Add(func() error {
			return common.Interrupt(cancel)
		}, func(error) {
			close(cancel)
		})
	}

	err = g.Run()
	log.Info("node stopped", "reason", err)
	return serveErr
}
