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

package repository

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/mongo"
)

// Operation names a repository operation for per-operation retry control.
type Operation string

const (
	OpGet    Operation = "get"
	OpGetAll Operation = "get_all"
	OpFirst  Operation = "first"
	OpWhere  Operation = "where"
	OpAny    Operation = "any"
	OpCount  Operation = "count"
	OpPage   Operation = "page"
)

// RetryPolicy wraps read operations with bounded retries on transient
// connection failures. Which operations are wrapped is configuration: the
// default covers Get only, matching the historical behavior where point
// reads were the path exposed to flaky connections.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, first try included.
	MaxAttempts int

	// NewBackOff builds the delay strategy for one execution. The default
	// retries immediately with no delay.
	NewBackOff func() backoff.BackOff

	// Classify reports whether an error is transient and worth retrying.
	// Defaults to IsTransient.
	Classify func(err error) bool

	// Ops is the set of operations the policy wraps.
	Ops map[Operation]bool
}

// DefaultRetryPolicy returns the stock policy: up to 3 attempts, no delay
// between attempts, transient network failures only, Get only.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		NewBackOff:  func() backoff.BackOff { return &backoff.ZeroBackOff{} },
		Classify:    IsTransient,
		Ops:         map[Operation]bool{OpGet: true},
	}
}

// NoRetryPolicy returns a policy that wraps nothing.
func NoRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

// Execute runs fn under the policy. Operations outside the policy's set run
// exactly once; non-transient errors propagate after a single attempt.
func (p RetryPolicy) Execute(ctx context.Context, op Operation, fn func() error) error {
	if !p.Ops[op] {
		return fn()
	}

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	newBackOff := p.NewBackOff
	if newBackOff == nil {
		newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	}
	classify := p.Classify
	if classify == nil {
		classify = IsTransient
	}

	run := func() error {
		err := fn()
		if err == nil || classify(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), uint64(attempts-1)), ctx)
	return backoff.Retry(run, b)
}

// IsTransient classifies connection-level failures that are expected to be
// retry-safe: socket and I/O transport errors, driver network errors, and
// server selection timeouts. Context cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "server selection error") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset") ||
		strings.Contains(s, "broken pipe") ||
		strings.Contains(s, "i/o timeout") ||
		strings.Contains(s, "socket was unexpectedly closed") {
		return true
	}
	return false
}
