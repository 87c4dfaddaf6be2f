// Package container provides dependency injection and lifecycle management
// for the HR portal following Clean Architecture principles.
package container

import (
	"io/fs"
	"os"

	"github.com/garyjia/hr-portal/internal/config"
	"github.com/garyjia/hr-portal/internal/infrastructure/external/formsapi"
	"github.com/garyjia/hr-portal/internal/infrastructure/worker"
	httpadapter "github.com/garyjia/hr-portal/internal/interfaces/http"
	"github.com/garyjia/hr-portal/migrations"
	"github.com/garyjia/hr-portal/pkg/database"
	"github.com/garyjia/hr-portal/pkg/utils"
)

// LoggerConfig converts the logger section for utils.NewLogger
func LoggerConfig(cfg *config.Config) utils.LoggerConfig {
	return utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
		Fields:     map[string]string{"service": "hr-portal"},
	}
}

func databaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
}

// migrationSource prefers an on-disk directory over the embedded files
func migrationSource(cfg *config.Config) fs.FS {
	if cfg.Database.MigrationsDir != "" {
		return os.DirFS(cfg.Database.MigrationsDir)
	}
	return migrations.FS
}

func formsAPIConfig(cfg *config.Config) formsapi.Config {
	return formsapi.Config{
		BaseURL:       cfg.FormsAPI.BaseURL,
		Token:         cfg.FormsAPI.Token,
		Timeout:       cfg.FormsAPI.Timeout,
		ConfirmPath:   cfg.FormsAPI.ConfirmPath,
		RejectPath:    cfg.FormsAPI.RejectPath,
		FetchAttempts: cfg.FormsAPI.FetchAttempts,
	}
}

func serverConfig(cfg *config.Config, version string) httpadapter.ServerConfig {
	return httpadapter.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Version:         version,
	}
}

func syncWorkerConfig(cfg *config.Config) worker.SyncWorkerConfig {
	return worker.SyncWorkerConfig{
		Interval:     cfg.Sync.Interval,
		FormTypes:    cfg.Sync.FormTypes,
		FetchTimeout: cfg.Sync.FetchTimeout,
	}
}
