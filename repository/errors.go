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

import "errors"

var (
	// ErrNotFound is returned when no document matches the given identifier
	// or filter.
	ErrNotFound = errors.New("taproot: document not found")

	// ErrEmptyID is returned before any store call when a required
	// identifier argument is empty.
	ErrEmptyID = errors.New("taproot: document id must not be empty")

	// ErrNilEntity is returned before any store call when a required
	// document argument is nil.
	ErrNilEntity = errors.New("taproot: document must not be nil")

	// ErrNilFilter is returned before any store call when a required
	// filter argument is nil.
	ErrNilFilter = errors.New("taproot: filter must not be nil")

	// ErrTreeTooDeep is returned when a cascade delete descends past the
	// maximum tree level, which indicates a malformed tree or a cycle.
	ErrTreeTooDeep = errors.New("taproot: tree exceeds maximum depth")
)
