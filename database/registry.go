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
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

var defaultRegistry = newModelRegistry()

// DocumentModel represents a stored model registered for startup index
// ensurance. Instance should return a struct pointer with bson tags, and
// Priority controls ordering when ensuring indexes (lower values first).
type DocumentModel interface {
	Instance() interface{}
	CollectionName() string
	Indexes() []mongo.IndexModel
	Priority() int
}

// ModelRegistry stores document models and exposes them in a deterministic
// order.
type ModelRegistry interface {
	Register(model DocumentModel)
	Models() []DocumentModel
}

type modelRegistry struct {
	models []DocumentModel
	mutex  sync.RWMutex
}

func newModelRegistry() ModelRegistry {
	return &modelRegistry{
		models: make([]DocumentModel, 0),
	}
}

func (r *modelRegistry) Register(model DocumentModel) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.models = append(r.models, model)
}

func (r *modelRegistry) Models() []DocumentModel {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]DocumentModel, len(r.models))
	copy(result, r.models)
	sort.Slice(result, func(i, j int) bool {
		return result[i].Priority() < result[j].Priority()
	})
	return result
}

type ModelAdapter struct {
	instance   interface{}
	collection string
	indexes    []mongo.IndexModel
	priority   int
}

// NewModelAdapter wraps a struct instance, its collection name, and its
// index definitions into a DocumentModel.
func NewModelAdapter(instance interface{}, collection string, indexes []mongo.IndexModel, priority int) DocumentModel {
	return &ModelAdapter{
		instance:   instance,
		collection: collection,
		indexes:    indexes,
		priority:   priority,
	}
}

// Instance returns the underlying struct used for index ensurance.
func (a *ModelAdapter) Instance() interface{} {
	return a.instance
}

// CollectionName returns the collection the model is stored in.
func (a *ModelAdapter) CollectionName() string {
	return a.collection
}

// Indexes returns the index definitions ensured at startup.
func (a *ModelAdapter) Indexes() []mongo.IndexModel {
	return a.indexes
}

// Priority returns the model's ordering value; lower values run earlier.
func (a *ModelAdapter) Priority() int {
	return a.priority
}

// GetRegisteredModels returns all models registered in the default registry
// sorted by ascending priority.
func GetRegisteredModels() []DocumentModel {
	return defaultRegistry.Models()
}

// RegisteredModel adds a model to the default registry.
func RegisteredModel(model DocumentModel) {
	defaultRegistry.Register(model)
}
