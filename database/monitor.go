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
	"sync"
	"time"

	"github.com/fatih/color"
	"go.mongodb.org/mongo-driver/event"
)

// cmdLogEnv toggles command logging at runtime: unset/0 follows the
// configuration, 1 enables it, 2 enables it with command bodies.
const cmdLogEnv = "TAPROOT_CMDLOG"

var commandSilentMode bool

// EnableCommandSilent suppresses all command monitor output, regardless of
// configuration or environment.
func EnableCommandSilent(b bool) {
	commandSilentMode = b
}

type commandMonitor struct {
	enabled  bool
	slowTime time.Duration
	logger   Logger

	mu      sync.Mutex
	started map[int64]string // request id -> command body
}

// NewCommandMonitor returns a driver command monitor that logs commands in
// color and warns about operations slower than the configured threshold.
func NewCommandMonitor(cfg *ConnectionConfig, logger Logger) *event.CommandMonitor {
	m := &commandMonitor{
		enabled:  cfg.EnableCommandLog,
		slowTime: cfg.SlowOpTime,
		logger:   logger,
		started:  make(map[int64]string),
	}
	return &event.CommandMonitor{
		Started:   m.handleStarted,
		Succeeded: m.handleSucceeded,
		Failed:    m.handleFailed,
	}
}

func (m *commandMonitor) settings() (enabled, verbose bool) {
	enabled = m.enabled
	if env, ok := os.LookupEnv(cmdLogEnv); ok {
		enabled = env != "" && env != "0"
		verbose = env == "2"
	}
	return enabled, verbose
}

func (m *commandMonitor) handleStarted(ctx context.Context, e *event.CommandStartedEvent) {
	if commandSilentMode {
		return
	}
	if _, verbose := m.settings(); !verbose {
		return
	}
	m.mu.Lock()
	m.started[e.RequestID] = e.Command.String()
	m.mu.Unlock()
}

func (m *commandMonitor) handleSucceeded(ctx context.Context, e *event.CommandSucceededEvent) {
	if commandSilentMode {
		return
	}
	body := m.takeBody(e.RequestID)
	enabled, verbose := m.settings()

	if m.slowTime > 0 && e.Duration > m.slowTime && m.logger != nil {
		m.logger.Warn("Database slow operation detected:",
			"command", e.CommandName,
			"duration", e.Duration,
			"slow_threshold", m.slowTime,
		)
	}

	if !enabled {
		return
	}

	line := fmt.Sprintf("%s %15s %17s   %s",
		time.Now().Format("2006-01-02 15:04:05.000"),
		color.CyanString("[MONGO]"),
		e.Duration.Round(time.Microsecond),
		formatCommandColor(e.CommandName),
	)
	if verbose && body != "" {
		line += "\t" + body
	}
	fmt.Fprintln(os.Stderr, line)
}

func (m *commandMonitor) handleFailed(ctx context.Context, e *event.CommandFailedEvent) {
	if commandSilentMode {
		return
	}
	m.takeBody(e.RequestID)
	if enabled, _ := m.settings(); !enabled {
		return
	}

	fmt.Fprintln(os.Stderr, fmt.Sprintf("%s %15s %17s   %s\t%s",
		time.Now().Format("2006-01-02 15:04:05.000"),
		color.CyanString("[MONGO]"),
		e.Duration.Round(time.Microsecond),
		formatCommandColor(e.CommandName),
		color.New(color.BgRed).Sprintf(" %v ", e.Failure),
	))
}

func (m *commandMonitor) takeBody(requestID int64) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	body := m.started[requestID]
	delete(m.started, requestID)
	return body
}

func formatCommandColor(name string) string {
	switch name {
	case "find", "aggregate", "count", "countDocuments":
		return color.GreenString(name)
	case "insert":
		return color.BlueString(name)
	case "update", "replace", "findAndModify":
		return color.YellowString(name)
	case "delete":
		return color.MagentaString(name)
	default:
		return color.RedString(name)
	}
}
