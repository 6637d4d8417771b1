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

package taproot

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taprootlabs/taproot/database"
	"github.com/taprootlabs/taproot/entity"
	"github.com/taprootlabs/taproot/repository"
	"github.com/taprootlabs/taproot/types"
)

// Service exposes the generic repository operations for one document type,
// backed by the global database connection.
type Service[T any, PT entity.Doc[T]] interface {
	// Get returns a single document by its identifier.
	Get(ctx context.Context, id string) (PT, error)

	// All returns all documents.
	All(ctx context.Context) ([]PT, error)

	// Cursor returns a lazy cursor over documents matching the filter.
	Cursor(ctx context.Context, filter interface{}) (*mongo.Cursor, error)

	// First returns the first document matching the filter.
	First(ctx context.Context, filter interface{}) (PT, error)

	// Where returns documents that match the provided filter.
	Where(ctx context.Context, filter interface{}) ([]PT, error)

	// Any reports whether any document matches the filter.
	Any(ctx context.Context, filter interface{}) (bool, error)

	// Count returns the number of documents matching the filter.
	Count(ctx context.Context, filter interface{}) (int64, error)

	// Page returns a paginated list of documents.
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)

	// Insert stamps and persists a new document.
	Insert(ctx context.Context, doc PT) (PT, error)

	// InsertBatch stamps and persists documents in one bulk write.
	InsertBatch(ctx context.Context, docs []PT) ([]PT, error)

	// Update upserts a document keyed by its identifier.
	Update(ctx context.Context, doc PT) (PT, error)

	// Save is an alias for Update.
	Save(ctx context.Context, doc PT) (PT, error)

	// Delete removes a document by its identifier.
	Delete(ctx context.Context, id string) (bool, error)
}

// HierarchicalService adds tree operations for documents carrying a parent
// reference and a level.
type HierarchicalService[T any, PT entity.Hier[T]] interface {
	Service[T, PT]

	// CascadeDelete removes the document and all its descendants,
	// children before parents.
	CascadeDelete(ctx context.Context, id string) error

	// IsLevelExceeded reports whether the stored parent sits at or beyond
	// the maximum tree level.
	IsLevelExceeded(ctx context.Context, parentID string) (bool, error)

	// HasChildren reports whether any document references id as parent.
	HasChildren(ctx context.Context, id string) (bool, error)
}

type baseServiceImpl[T any, PT entity.Doc[T]] struct {
	repo repository.Repository[T, PT]
	opts []repository.Option
	once sync.Once
}

// NewService returns a default Service implementation using the generic
// repository backed by the global database connection.
func NewService[T any, PT entity.Doc[T]](opts ...repository.Option) Service[T, PT] {
	return &baseServiceImpl[T, PT]{opts: opts}
}

func (s *baseServiceImpl[T, PT]) baseRepo() repository.Repository[T, PT] {
	s.once.Do(func() {
		s.repo = repository.NewRepository[T, PT](database.CollectionOf[T](), s.opts...)
	})
	return s.repo
}

func (s *baseServiceImpl[T, PT]) Get(ctx context.Context, id string) (PT, error) {
	return s.baseRepo().Get(ctx, id)
}

func (s *baseServiceImpl[T, PT]) All(ctx context.Context) ([]PT, error) {
	return s.baseRepo().GetAll(ctx)
}

func (s *baseServiceImpl[T, PT]) Cursor(ctx context.Context, filter interface{}) (*mongo.Cursor, error) {
	return s.baseRepo().Cursor(ctx, filter)
}

func (s *baseServiceImpl[T, PT]) First(ctx context.Context, filter interface{}) (PT, error) {
	return s.baseRepo().First(ctx, filter)
}

func (s *baseServiceImpl[T, PT]) Where(ctx context.Context, filter interface{}) ([]PT, error) {
	return s.baseRepo().Where(ctx, filter)
}

func (s *baseServiceImpl[T, PT]) Any(ctx context.Context, filter interface{}) (bool, error) {
	return s.baseRepo().Any(ctx, filter)
}

func (s *baseServiceImpl[T, PT]) Count(ctx context.Context, filter interface{}) (int64, error) {
	return s.baseRepo().Count(ctx, filter)
}

func (s *baseServiceImpl[T, PT]) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error) {
	return s.baseRepo().Page(ctx, page)
}

func (s *baseServiceImpl[T, PT]) Insert(ctx context.Context, doc PT) (PT, error) {
	return s.baseRepo().Insert(ctx, doc)
}

func (s *baseServiceImpl[T, PT]) InsertBatch(ctx context.Context, docs []PT) ([]PT, error) {
	return s.baseRepo().InsertBatch(ctx, docs)
}

func (s *baseServiceImpl[T, PT]) Update(ctx context.Context, doc PT) (PT, error) {
	return s.baseRepo().Update(ctx, doc)
}

func (s *baseServiceImpl[T, PT]) Save(ctx context.Context, doc PT) (PT, error) {
	return s.baseRepo().Save(ctx, doc)
}

func (s *baseServiceImpl[T, PT]) Delete(ctx context.Context, id string) (bool, error) {
	return s.baseRepo().Delete(ctx, id)
}

type hierarchicalServiceImpl[T any, PT entity.Hier[T]] struct {
	repo repository.HierarchicalRepository[T, PT]
	opts []repository.Option
	once sync.Once
}

// NewHierarchicalService returns a Service with tree operations for
// hierarchical document types.
func NewHierarchicalService[T any, PT entity.Hier[T]](opts ...repository.Option) HierarchicalService[T, PT] {
	return &hierarchicalServiceImpl[T, PT]{opts: opts}
}

func (s *hierarchicalServiceImpl[T, PT]) baseRepo() repository.HierarchicalRepository[T, PT] {
	s.once.Do(func() {
		s.repo = repository.NewHierarchicalRepository[T, PT](database.CollectionOf[T](), s.opts...)
	})
	return s.repo
}

func (s *hierarchicalServiceImpl[T, PT]) Get(ctx context.Context, id string) (PT, error) {
	return s.baseRepo().Get(ctx, id)
}

func (s *hierarchicalServiceImpl[T, PT]) All(ctx context.Context) ([]PT, error) {
	return s.baseRepo().GetAll(ctx)
}

func (s *hierarchicalServiceImpl[T, PT]) Cursor(ctx context.Context, filter interface{}) (*mongo.Cursor, error) {
	return s.baseRepo().Cursor(ctx, filter)
}

func (s *hierarchicalServiceImpl[T, PT]) First(ctx context.Context, filter interface{}) (PT, error) {
	return s.baseRepo().First(ctx, filter)
}

func (s *hierarchicalServiceImpl[T, PT]) Where(ctx context.Context, filter interface{}) ([]PT, error) {
	return s.baseRepo().Where(ctx, filter)
}

func (s *hierarchicalServiceImpl[T, PT]) Any(ctx context.Context, filter interface{}) (bool, error) {
	return s.baseRepo().Any(ctx, filter)
}

func (s *hierarchicalServiceImpl[T, PT]) Count(ctx context.Context, filter interface{}) (int64, error) {
	return s.baseRepo().Count(ctx, filter)
}

func (s *hierarchicalServiceImpl[T, PT]) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error) {
	return s.baseRepo().Page(ctx, page)
}

func (s *hierarchicalServiceImpl[T, PT]) Insert(ctx context.Context, doc PT) (PT, error) {
	return s.baseRepo().Insert(ctx, doc)
}

func (s *hierarchicalServiceImpl[T, PT]) InsertBatch(ctx context.Context, docs []PT) ([]PT, error) {
	return s.baseRepo().InsertBatch(ctx, docs)
}

func (s *hierarchicalServiceImpl[T, PT]) Update(ctx context.Context, doc PT) (PT, error) {
	return s.baseRepo().Update(ctx, doc)
}

func (s *hierarchicalServiceImpl[T, PT]) Save(ctx context.Context, doc PT) (PT, error) {
	return s.baseRepo().Save(ctx, doc)
}

func (s *hierarchicalServiceImpl[T, PT]) Delete(ctx context.Context, id string) (bool, error) {
	return s.baseRepo().Delete(ctx, id)
}

func (s *hierarchicalServiceImpl[T, PT]) CascadeDelete(ctx context.Context, id string) error {
	return s.baseRepo().CascadeDelete(ctx, id)
}

func (s *hierarchicalServiceImpl[T, PT]) IsLevelExceeded(ctx context.Context, parentID string) (bool, error) {
	return s.baseRepo().IsLevelExceeded(ctx, parentID)
}

func (s *hierarchicalServiceImpl[T, PT]) HasChildren(ctx context.Context, id string) (bool, error) {
	return s.baseRepo().HasChildren(ctx, id)
}
