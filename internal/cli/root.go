package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/martijn/clientbook/internal/core/repository"
	"github.com/martijn/clientbook/internal/core/service"
	"github.com/martijn/clientbook/internal/infrastructure/jsonfile"
	"github.com/martijn/clientbook/internal/infrastructure/sqlite"
	"github.com/martijn/clientbook/pkg/config"
	"github.com/martijn/clientbook/pkg/logger"
	"github.com/martijn/clientbook/pkg/tracing"
	"github.com/spf13/cobra"
)

// Version is set at build time
var Version = "dev"

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "clientbook",
	Short: "Clientbook - client records with a REST API",
	Long: `Clientbook keeps client records (names and contact details) in a JSON
document or a SQLite database.

It provides:
- A REST API to list, search, create, edit and delete clients
- Autocomplete over client names
- Command line management of the same records`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for commands that don't need it
		if cmd.Name() == "help" {
			return nil
		}

		// Load configuration
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.DefaultConfigPath+")")
}

// initServices opens the configured store and builds the services on top of it
func initServices(ctx context.Context) (*Services, error) {
	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
		Format: cfg.LogFormat,
	})

	var (
		clientRepo repository.ClientRepository
		location   string
	)
	switch cfg.Storage {
	case config.StorageSQLite:
		db, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		clientRepo, location = sqlite.NewClientRepository(db), cfg.DBPath
	default:
		db, err := jsonfile.New(cfg.DBFile)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		clientRepo, location = jsonfile.NewClientRepository(db), db.Path()
	}
	log.Debug("store opened", slog.String("storage", cfg.Storage), slog.String("location", location))

	services := &Services{
		Logger:     log,
		ClientRepo: clientRepo,
		ClientService: service.NewClientService(clientRepo,
			service.WithLogger(logger.Component(log, "service")),
		),
	}

	if cfg.Tracing {
		shutdown, err := tracing.Init(ctx, tracing.Config{ServiceVersion: Version, Output: os.Stderr})
		if err != nil {
			services.Close()
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
		services.shutdownTracing = shutdown
	}

	return services, nil
}

// Services holds all initialized services
type Services struct {
	Logger        *slog.Logger
	ClientRepo    repository.ClientRepository
	ClientService *service.ClientService

	shutdownTracing func(context.Context) error
}

// Close closes all resources
func (s *Services) Close() {
	if s.shutdownTracing != nil {
		if err := s.shutdownTracing(context.Background()); err != nil {
			s.Logger.Warn("failed to flush traces", slog.Any("error", err))
		}
	}
	if s.ClientRepo != nil {
		if err := s.ClientRepo.Close(); err != nil {
			s.Logger.Warn("failed to close store", slog.Any("error", err))
		}
	}
}
