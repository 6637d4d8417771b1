/*
 * Copyright 2026 taprootlabs.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// BaseDatabaseFactory creates and manages a configured database manager and
// provides helpers for initialization, health checks, and statistics.
type BaseDatabaseFactory struct {
	manager AbstractDatabaseManager
	logger  Logger
}

// NewDatabaseFactory returns a new database factory using the global logger.
func NewDatabaseFactory() *BaseDatabaseFactory {
	return &BaseDatabaseFactory{
		logger: GetLogger(),
	}
}

// CreateFromConfig constructs a database manager from the given connection
// configuration, applying environment overrides and setting the factory
// logger.
func (f *BaseDatabaseFactory) CreateFromConfig(cfg *ConnectionConfig) (AbstractDatabaseManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}

	// Override sensitive config from environment variables
	f.overrideFromEnv(cfg)

	if cfg.URI == "" && cfg.Host == "" {
		return nil, fmt.Errorf("database configuration needs a uri or a host")
	}
	if cfg.URI != "" {
		if _, err := DatabaseNameFromURI(cfg.URI); err != nil && cfg.Database == "" {
			return nil, err
		}
	} else if cfg.Database == "" {
		return nil, fmt.Errorf("%w: no database configured", ErrMissingDatabase)
	}

	manager := NewDatabaseManager(cfg)
	manager.SetLogger(f.logger)

	f.manager = manager
	return manager, nil
}

// overrideFromEnv overrides configuration values from environment variables.
func (f *BaseDatabaseFactory) overrideFromEnv(cfg *ConnectionConfig) {
	// Connection info
	if uri := os.Getenv("DB_URI"); uri != "" {
		cfg.URI = uri
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if username := os.Getenv("DB_USERNAME"); username != "" {
		cfg.Username = username
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		cfg.Database = dbname
	}
	if authSource := os.Getenv("DB_AUTH_SOURCE"); authSource != "" {
		cfg.AuthSource = authSource
	}
	if replicaSet := os.Getenv("DB_REPLICA_SET"); replicaSet != "" {
		cfg.ReplicaSet = replicaSet
	}

	// Pool config
	if maxPool := os.Getenv("DB_MAX_POOL_SIZE"); maxPool != "" {
		if val, err := strconv.ParseUint(maxPool, 10, 64); err == nil {
			cfg.MaxPoolSize = val
		}
	}
	if minPool := os.Getenv("DB_MIN_POOL_SIZE"); minPool != "" {
		if val, err := strconv.ParseUint(minPool, 10, 64); err == nil {
			cfg.MinPoolSize = val
		}
	}
	if connectTimeout := os.Getenv("DB_CONNECT_TIMEOUT"); connectTimeout != "" {
		if val, err := strconv.Atoi(connectTimeout); err == nil {
			cfg.ConnectTimeout = time.Duration(val) * time.Second
		}
	}

	// Reconnect config
	if enableReconnect := os.Getenv("DB_ENABLE_RECONNECT"); enableReconnect != "" {
		cfg.EnableReconnect = enableReconnect == "true"
	}
	if reconnectInterval := os.Getenv("DB_RECONNECT_INTERVAL"); reconnectInterval != "" {
		if val, err := strconv.Atoi(reconnectInterval); err == nil {
			cfg.ReconnectInterval = time.Duration(val) * time.Second
		}
	}

	// Logging config
	if enableCommandLog := os.Getenv("DB_ENABLE_COMMAND_LOG"); enableCommandLog != "" {
		cfg.EnableCommandLog = enableCommandLog == "true"
	}
}

// InitializeDatabase connects to the database and optionally ensures the
// registered model indexes.
func (f *BaseDatabaseFactory) InitializeDatabase(ctx context.Context, ensureIndexes bool) error {
	if f.manager == nil {
		return fmt.Errorf("database manager not created")
	}

	// Connect to database
	if err := f.manager.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	// Ensure indexes
	if ensureIndexes {
		if err := f.manager.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("failed to ensure database indexes: %w", err)
		}
	}
	f.logger.Info("Database initialization completed!")
	return nil
}

// GetManager returns the underlying database manager.
func (f *BaseDatabaseFactory) GetManager() AbstractDatabaseManager {
	return f.manager
}

// GetClient returns the client instance, or nil if not initialized.
func (f *BaseDatabaseFactory) GetClient() *mongo.Client {
	if f.manager == nil {
		return nil
	}
	return f.manager.GetClient()
}

// GetDatabase returns the database handle, or nil if not initialized.
func (f *BaseDatabaseFactory) GetDatabase() *mongo.Database {
	if f.manager == nil {
		return nil
	}
	return f.manager.GetDatabase()
}

// SetLogger sets the logger on the factory and the underlying manager.
func (f *BaseDatabaseFactory) SetLogger(logger Logger) {
	f.logger = logger
	if f.manager != nil {
		f.manager.SetLogger(logger)
	}
}

// Close closes the database connection managed by the factory.
func (f *BaseDatabaseFactory) Close() error {
	if f.manager == nil {
		return nil
	}
	return f.manager.Disconnect()
}

// GetHealthStatus returns the current database health status from the
// manager.
func (f *BaseDatabaseFactory) GetHealthStatus(ctx context.Context) *HealthStatus {
	if f.manager == nil {
		return &HealthStatus{
			Healthy:       false,
			Connected:     false,
			LastError:     "Database manager not initialized",
			LastCheckTime: time.Now(),
		}
	}
	return f.manager.HealthCheck(ctx)
}

// GetStats returns connection pool statistics from the manager.
func (f *BaseDatabaseFactory) GetStats() *ClientStats {
	if f.manager == nil {
		return &ClientStats{}
	}
	return f.manager.GetStats()
}
