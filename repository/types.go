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

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taprootlabs/taproot/entity"
	"github.com/taprootlabs/taproot/types"
)

// Collection is the subset of *mongo.Collection the repository depends on.
// It exists so the retry policy and hierarchy traversal can be exercised
// against an in-memory fake.
type Collection interface {
	Name() string
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

var _ Collection = (*mongo.Collection)(nil)

// Reader defines the query operations for a generic document type.
type Reader[T any, PT entity.Doc[T]] interface {
	// Get returns the document whose identifier equals id, or ErrNotFound.
	Get(ctx context.Context, id string) (PT, error)

	// GetAll eagerly returns every document in the collection.
	GetAll(ctx context.Context) ([]PT, error)

	// Cursor returns a lazy cursor over documents matching filter; a nil
	// filter matches everything.
	Cursor(ctx context.Context, filter interface{}) (*mongo.Cursor, error)

	// First returns the first document matching filter, or ErrNotFound.
	First(ctx context.Context, filter interface{}) (PT, error)

	// Where eagerly returns all documents matching filter.
	Where(ctx context.Context, filter interface{}) ([]PT, error)

	// Any reports whether at least one document matches filter.
	Any(ctx context.Context, filter interface{}) (bool, error)

	// Count returns the number of documents matching filter.
	Count(ctx context.Context, filter interface{}) (int64, error)

	// Page returns a paginated slice of documents.
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)
}

// Writer defines the mutating operations for a generic document type.
// Every write stamps the document's timestamps before persisting and
// returns the stamped value; callers should adopt the return value.
type Writer[T any, PT entity.Doc[T]] interface {
	// Insert stamps creation and modification timestamps and persists the
	// document.
	Insert(ctx context.Context, doc PT) (PT, error)

	// InsertEach inserts the documents one round trip at a time.
	InsertEach(ctx context.Context, docs []PT) ([]PT, error)

	// InsertBatch stamps every document first, then persists them in a
	// single bulk write.
	InsertBatch(ctx context.Context, docs []PT) ([]PT, error)

	// Update replaces the document keyed by its identifier, inserting it
	// when no document with that identifier exists. The creation timestamp
	// is only set when previously unset.
	Update(ctx context.Context, doc PT) (PT, error)

	// UpdateEach upserts the documents one round trip at a time.
	UpdateEach(ctx context.Context, docs []PT) ([]PT, error)

	// Save is an alias for Update, kept for discoverability.
	Save(ctx context.Context, doc PT) (PT, error)

	// Delete removes the document with the given identifier. The boolean
	// reports store acknowledgement only: deleting a nonexistent id still
	// returns true as long as the store accepted the request.
	Delete(ctx context.Context, id string) (bool, error)

	// DeleteDocument removes the document by its own identifier.
	DeleteDocument(ctx context.Context, doc PT) (bool, error)
}

// Repository combines the read and write operations over one document type.
type Repository[T any, PT entity.Doc[T]] interface {
	Reader[T, PT]
	Writer[T, PT]
}

// HierarchicalRepository layers tree operations on top of the generic
// repository for documents that carry a parent reference and a level.
type HierarchicalRepository[T any, PT entity.Hier[T]] interface {
	Repository[T, PT]

	// CascadeDelete recursively deletes all descendants of id depth-first,
	// children before their parent, then deletes the node itself.
	CascadeDelete(ctx context.Context, id string) error

	// IsLevelExceeded reports whether the stored parent already sits at or
	// beyond the maximum tree level. A missing parent reports false. The
	// check is advisory; Insert does not enforce it.
	IsLevelExceeded(ctx context.Context, parentID string) (bool, error)

	// HasChildren reports whether any document references id as its parent.
	HasChildren(ctx context.Context, id string) (bool, error)
}
