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
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrInvalidURI is returned when a connection string is not in the
	// store's canonical URL form.
	ErrInvalidURI = errors.New("taproot: invalid connection string")

	// ErrMissingDatabase is returned when a connection string carries no
	// database name in its path.
	ErrMissingDatabase = errors.New("taproot: connection string has no database name")
)

type StoreError int

const (
	UnknownErr StoreError = iota
	DuplicateKeyErr
	AuthErr
	UnauthorizedErr
	TimeoutErr
	NetworkErr
	WriteConcernErr
	NamespaceNotFoundErr
)

// IsStoreError classifies driver errors into a coarse taxonomy, by server
// error code where available and by message otherwise.
func IsStoreError(err error) (is bool, storeErr StoreError) {
	if err == nil {
		return false, UnknownErr
	}

	if mongo.IsDuplicateKeyError(err) {
		return true, DuplicateKeyErr
	}
	if mongo.IsTimeout(err) {
		return true, TimeoutErr
	}
	if mongo.IsNetworkError(err) {
		return true, NetworkErr
	}

	var srvErr mongo.ServerError
	if errors.As(err, &srvErr) {
		switch {
		case srvErr.HasErrorCode(18):
			return true, AuthErr
		case srvErr.HasErrorCode(13):
			return true, UnauthorizedErr
		case srvErr.HasErrorCode(26):
			return true, NamespaceNotFoundErr
		case srvErr.HasErrorCode(50):
			return true, TimeoutErr
		case srvErr.HasErrorCode(64), srvErr.HasErrorCode(79):
			return true, WriteConcernErr
		default:
			return true, UnknownErr
		}
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "duplicate key") ||
		strings.Contains(s, "e11000") {
		return true, DuplicateKeyErr
	}
	if strings.Contains(s, "authentication failed") ||
		strings.Contains(s, "auth error") {
		return true, AuthErr
	}
	if strings.Contains(s, "not authorized") {
		return true, UnauthorizedErr
	}
	if strings.Contains(s, "server selection error") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset") {
		return true, NetworkErr
	}
	if strings.Contains(s, "i/o timeout") ||
		strings.Contains(s, "deadline exceeded") ||
		strings.Contains(s, "exceeded time limit") {
		return true, TimeoutErr
	}
	if strings.Contains(s, "write concern") {
		return true, WriteConcernErr
	}
	if strings.Contains(s, "ns not found") ||
		strings.Contains(s, "namespace not found") {
		return true, NamespaceNotFoundErr
	}
	return false, UnknownErr
}
