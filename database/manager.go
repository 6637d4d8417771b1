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
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type poolCounters struct {
	created        atomic.Int64
	closed         atomic.Int64
	checkedOut     atomic.Int64
	checkoutFailed atomic.Int64
}

func (pc *poolCounters) monitor() *event.PoolMonitor {
	return &event.PoolMonitor{
		Event: func(e *event.PoolEvent) {
			switch e.Type {
			case event.ConnectionCreated:
				pc.created.Add(1)
			case event.ConnectionClosed:
				pc.closed.Add(1)
			case event.GetSucceeded:
				pc.checkedOut.Add(1)
			case event.GetFailed:
				pc.checkoutFailed.Add(1)
			}
		},
	}
}

type defaultDatabaseManager struct {
	config          *ConnectionConfig
	client          *mongo.Client
	database        *mongo.Database
	logger          Logger
	mu              sync.RWMutex
	connected       bool
	lastError       error
	lastHealthCheck time.Time
	healthStatus    *HealthStatus
	reconnectTries  int
	stopHealthCheck chan struct{}
	healthCheckOnce sync.Once
	pool            poolCounters
}

// NewDatabaseManager returns an AbstractDatabaseManager backed by the
// official driver. If config is nil, a sensible default is used.
func NewDatabaseManager(config *ConnectionConfig) AbstractDatabaseManager {
	if config == nil {
		config = DefaultConnectionConfig()
	}
	return &defaultDatabaseManager{
		config:          config,
		healthStatus:    &HealthStatus{},
		stopHealthCheck: make(chan struct{}),
	}
}

func (dm *defaultDatabaseManager) Connect(ctx context.Context) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.connected && dm.client != nil {
		return nil
	}

	client, database, err := dm.createClient(ctx)
	if err != nil {
		dm.lastError = err
		return fmt.Errorf("failed to create database client: %w", err)
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, dm.config.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctxTimeout, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		dm.lastError = err
		return fmt.Errorf("database connection test failed: %w", err)
	}

	dm.client = client
	dm.database = database
	dm.connected = true
	dm.lastError = nil
	dm.reconnectTries = 0

	if dm.config.HealthCheckInterval > 0 {
		dm.startHealthCheck()
	}

	if dm.logger != nil {
		dm.logger.Info("Database connected successfully:", "database", database.Name())
	}
	return nil
}

func (dm *defaultDatabaseManager) createClient(ctx context.Context) (*mongo.Client, *mongo.Database, error) {
	if dm.config.ConnectTimeout <= 0 {
		dm.config.ConnectTimeout = 30 * time.Second
	}

	uri := dm.config.BuildURI()
	dbName := dm.config.Database
	if dbName == "" {
		name, err := DatabaseNameFromURI(uri)
		if err != nil {
			return nil, nil, err
		}
		dbName = name
	}

	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(dm.config.MaxPoolSize).
		SetMinPoolSize(dm.config.MinPoolSize).
		SetConnectTimeout(dm.config.ConnectTimeout).
		SetServerSelectionTimeout(dm.config.ServerSelectionTimeout).
		SetPoolMonitor(dm.pool.monitor())

	if dm.config.SocketTimeout > 0 {
		opts.SetSocketTimeout(dm.config.SocketTimeout)
	}
	if dm.config.HeartbeatInterval > 0 {
		opts.SetHeartbeatInterval(dm.config.HeartbeatInterval)
	}
	if dm.config.ReplicaSet != "" {
		opts.SetReplicaSet(dm.config.ReplicaSet)
	}
	if dm.config.EnableCommandLog || dm.config.SlowOpTime > 0 {
		opts.SetMonitor(NewCommandMonitor(dm.config, dm.logger))
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	return client, client.Database(dbName), nil
}

func (dm *defaultDatabaseManager) Disconnect() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	select {
	case dm.stopHealthCheck <- struct{}{}:
	default:
	}

	if dm.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		err := dm.client.Disconnect(ctx)
		dm.client = nil
		dm.database = nil
		dm.connected = false

		if dm.logger != nil {
			if err != nil {
				dm.logger.Error("Failed to close database connection", "error", err)
			} else {
				dm.logger.Info("Database connection closed")
			}
		}

		return err
	}

	return nil
}

func (dm *defaultDatabaseManager) Reconnect(ctx context.Context) error {
	if dm.logger != nil {
		dm.logger.Info("Attempting to reconnect to the database")
	}

	if err := dm.Disconnect(); err != nil {
		if dm.logger != nil {
			dm.logger.Warn("Error disconnecting existing connection", "error", err)
		}
	}

	return dm.Connect(ctx)
}

func (dm *defaultDatabaseManager) Ping(ctx context.Context) error {
	dm.mu.RLock()
	client := dm.client
	dm.mu.RUnlock()

	if client == nil {
		return fmt.Errorf("database not connected")
	}

	return client.Ping(ctx, readpref.Primary())
}

func (dm *defaultDatabaseManager) GetClient() *mongo.Client {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.client
}

func (dm *defaultDatabaseManager) GetDatabase() *mongo.Database {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.database
}

func (dm *defaultDatabaseManager) HealthCheck(ctx context.Context) *HealthStatus {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	start := time.Now()
	status := &HealthStatus{
		LastCheckTime: start,
		Connected:     dm.connected,
	}

	if dm.client == nil {
		status.Healthy = false
		status.LastError = "Database not initialized"
		return status
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	err := dm.client.Ping(ctxTimeout, readpref.Primary())
	status.ResponseTime = time.Since(start)

	if err != nil {
		status.Healthy = false
		status.Connected = false
		status.LastError = err.Error()
		dm.lastError = err
	} else {
		status.Healthy = true
		status.Connected = true
		dm.lastError = nil
	}

	status.SessionsInUse = dm.client.NumberSessionsInProgress()

	dm.healthStatus = status
	dm.lastHealthCheck = start

	return status
}

func (dm *defaultDatabaseManager) startHealthCheck() {
	dm.healthCheckOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(dm.config.HealthCheckInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
					status := dm.HealthCheck(ctx)
					cancel()
					if !status.Healthy && dm.config.EnableReconnect {
						dm.handleReconnect()
					}

				case <-dm.stopHealthCheck:
					return
				}
			}
		}()
	})
}

func (dm *defaultDatabaseManager) handleReconnect() {
	if dm.reconnectTries >= dm.config.MaxReconnectTries {
		if dm.logger != nil {
			dm.logger.Error("Max reconnect attempts reached, stopping", "tries", dm.reconnectTries)
		}
		return
	}

	dm.reconnectTries++
	if dm.logger != nil {
		dm.logger.Info("Starting database reconnect", "try", dm.reconnectTries)
	}

	time.Sleep(dm.config.ReconnectInterval)

	ctx, cancel := context.WithTimeout(context.Background(), dm.config.ConnectTimeout)
	defer cancel()

	if err := dm.Reconnect(ctx); err != nil {
		if dm.logger != nil {
			dm.logger.Error("Reconnect failed", "error", err, "try", dm.reconnectTries)
		}
	} else {
		dm.reconnectTries = 0
		if dm.logger != nil {
			dm.logger.Info("Reconnect succeeded")
		}
	}
}

func (dm *defaultDatabaseManager) GetStats() *ClientStats {
	dm.mu.RLock()
	client := dm.client
	dm.mu.RUnlock()

	stats := &ClientStats{
		ConnectionsCreated: dm.pool.created.Load(),
		ConnectionsClosed:  dm.pool.closed.Load(),
		CheckedOut:         dm.pool.checkedOut.Load(),
		CheckoutFailed:     dm.pool.checkoutFailed.Load(),
	}
	if client != nil {
		stats.SessionsInProgress = client.NumberSessionsInProgress()
	}
	return stats
}

func (dm *defaultDatabaseManager) EnsureIndexes(ctx context.Context) error {
	db := dm.GetDatabase()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	for _, model := range GetRegisteredModels() {
		indexes := model.Indexes()
		if len(indexes) == 0 {
			continue
		}
		names, err := db.Collection(model.CollectionName()).Indexes().CreateMany(ctx, indexes)
		if err != nil {
			return fmt.Errorf("ensure indexes on %q: %w", model.CollectionName(), err)
		}
		if dm.logger != nil {
			dm.logger.Debug("Ensured collection indexes", "collection", model.CollectionName(), "indexes", names)
		}
	}
	return nil
}

func (dm *defaultDatabaseManager) SetLogger(logger Logger) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.logger = logger
}
