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
	"net/url"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/yaml.v3"
)

// AbstractDatabaseManager defines the operations for managing a client
// connection, ensuring indexes, and reporting health.
type AbstractDatabaseManager interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Reconnect(ctx context.Context) error
	Ping(ctx context.Context) error
	HealthCheck(ctx context.Context) *HealthStatus
	GetClient() *mongo.Client
	GetDatabase() *mongo.Database
	EnsureIndexes(ctx context.Context) error
	GetStats() *ClientStats
	SetLogger(logger Logger)
}

// AbstractDatabaseConfigProvider exposes configuration loading.
type AbstractDatabaseConfigProvider interface {
	ConfigLoader() *Config
}

// HealthStatus holds the result of a health check against the store.
type HealthStatus struct {
	Healthy       bool          `json:"healthy" yaml:"healthy"`
	Connected     bool          `json:"connected" yaml:"connected"`
	ResponseTime  time.Duration `json:"response_time" yaml:"response_time"`
	SessionsInUse int           `json:"sessions_in_use" yaml:"sessions_in_use"`
	LastError     string        `json:"last_error,omitempty" yaml:"last_error,omitempty"`
	LastCheckTime time.Time     `json:"last_check_time" yaml:"last_check_time"`
}

// ClientStats reports connection pool activity observed via pool events.
type ClientStats struct {
	ConnectionsCreated int64 `json:"connections_created" yaml:"connections_created"`
	ConnectionsClosed  int64 `json:"connections_closed" yaml:"connections_closed"`
	CheckedOut         int64 `json:"checked_out" yaml:"checked_out"`
	CheckoutFailed     int64 `json:"checkout_failed" yaml:"checkout_failed"`
	SessionsInProgress int   `json:"sessions_in_progress" yaml:"sessions_in_progress"`
}

// ConnectionConfig describes how to reach the store and tune its pool.
// URI takes precedence when set; otherwise a canonical URI is built from
// the individual fields.
type ConnectionConfig struct {
	URI                    string        `json:"uri" yaml:"uri"`
	Host                   string        `json:"host" yaml:"host"`
	Port                   int           `json:"port" yaml:"port"`
	Username               string        `json:"username" yaml:"username"`
	Password               string        `json:"password" yaml:"password"`
	Database               string        `json:"database" yaml:"database"`
	AuthSource             string        `json:"auth_source" yaml:"auth_source"`
	ReplicaSet             string        `json:"replica_set" yaml:"replica_set"`
	MaxPoolSize            uint64        `json:"max_pool_size" yaml:"max_pool_size"`
	MinPoolSize            uint64        `json:"min_pool_size" yaml:"min_pool_size"`
	ConnectTimeout         time.Duration `json:"connect_timeout" yaml:"connect_timeout"`
	SocketTimeout          time.Duration `json:"socket_timeout" yaml:"socket_timeout"`
	ServerSelectionTimeout time.Duration `json:"server_selection_timeout" yaml:"server_selection_timeout"`
	HeartbeatInterval      time.Duration `json:"heartbeat_interval" yaml:"heartbeat_interval"`
	EnableReconnect        bool          `json:"enable_reconnect" yaml:"enable_reconnect"`
	ReconnectInterval      time.Duration `json:"reconnect_interval" yaml:"reconnect_interval"`
	MaxReconnectTries      int           `json:"max_reconnect_tries" yaml:"max_reconnect_tries"`
	HealthCheckInterval    time.Duration `json:"health_check_interval" yaml:"health_check_interval"`
	EnableCommandLog       bool          `json:"enable_command_log" yaml:"enable_command_log"`
	SlowOpTime             time.Duration `json:"slow_op_time" yaml:"slow_op_time"`
}

// IndexConfig controls index ensurance behavior on startup.
type IndexConfig struct {
	EnsureOnStartup bool `json:"ensure_on_startup" yaml:"ensure_on_startup"`
}

// Config aggregates connection and index settings.
type Config struct {
	ConnectionConfig ConnectionConfig `json:"connection_config" yaml:"connection"`
	IndexConfig      IndexConfig      `json:"index_config" yaml:"indexes"`
}

// DefaultConnectionConfig returns a connection config with sensible defaults.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		Host:                   "127.0.0.1",
		Port:                   27017,
		MaxPoolSize:            100,
		MinPoolSize:            0,
		ConnectTimeout:         time.Second * 10,
		SocketTimeout:          time.Second * 30,
		ServerSelectionTimeout: time.Second * 30,
		HeartbeatInterval:      time.Second * 10,
		EnableReconnect:        true,
		ReconnectInterval:      time.Second * 5,
		MaxReconnectTries:      3,
		HealthCheckInterval:    time.Minute * 5,
		EnableCommandLog:       false,
		SlowOpTime:             time.Second * 2,
	}
}

// BuildURI returns the configured URI, or assembles the canonical
// mongodb:// form from the individual connection fields.
func (c *ConnectionConfig) BuildURI() string {
	if c.URI != "" {
		return c.URI
	}
	var sb strings.Builder
	sb.WriteString("mongodb://")
	if c.Username != "" {
		sb.WriteString(url.UserPassword(c.Username, c.Password).String())
		sb.WriteString("@")
	}
	host := c.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := c.Port
	if port == 0 {
		port = 27017
	}
	fmt.Fprintf(&sb, "%s:%d/%s", host, port, c.Database)

	params := url.Values{}
	if c.AuthSource != "" {
		params.Set("authSource", c.AuthSource)
	}
	if c.ReplicaSet != "" {
		params.Set("replicaSet", c.ReplicaSet)
	}
	if encoded := params.Encode(); encoded != "" {
		sb.WriteString("?")
		sb.WriteString(encoded)
	}
	return sb.String()
}

// LoadConfigFile reads a YAML configuration file into a Config, applying
// connection defaults for unset fields.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg := &Config{ConnectionConfig: *DefaultConnectionConfig()}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}
