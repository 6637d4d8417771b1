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
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taprootlabs/taproot/entity"
	"github.com/taprootlabs/taproot/types"
)

type baseRepositoryImpl[T any, PT entity.Doc[T]] struct {
	coll   Collection
	policy RetryPolicy
	now    func() time.Time
}

// Option configures a repository.
type Option func(*config)

type config struct {
	policy RetryPolicy
	now    func() time.Time
}

// WithRetryPolicy installs a retry policy; the default retries Get up to
// 3 times on transient connection failures.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *config) { c.policy = p }
}

// WithClock overrides the time source used for timestamp stamping.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// NewRepository returns a generic repository over the provided collection.
func NewRepository[T any, PT entity.Doc[T]](coll Collection, opts ...Option) Repository[T, PT] {
	return newBaseRepository[T, PT](coll, opts...)
}

func newBaseRepository[T any, PT entity.Doc[T]](coll Collection, opts ...Option) *baseRepositoryImpl[T, PT] {
	cfg := config{
		policy: DefaultRetryPolicy(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &baseRepositoryImpl[T, PT]{coll: coll, policy: cfg.policy, now: cfg.now}
}

func (r *baseRepositoryImpl[T, PT]) Get(ctx context.Context, id string) (PT, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	var doc T
	err := r.policy.Execute(ctx, OpGet, func() error {
		err := r.coll.FindOne(ctx, bson.M{entity.FieldID: id}).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document %q: %w", id, err)
	}
	return &doc, nil
}

func (r *baseRepositoryImpl[T, PT]) GetAll(ctx context.Context) ([]PT, error) {
	return r.findAll(ctx, OpGetAll, bson.D{})
}

func (r *baseRepositoryImpl[T, PT]) Cursor(ctx context.Context, filter interface{}) (*mongo.Cursor, error) {
	if filter == nil {
		filter = bson.D{}
	}
	return r.coll.Find(ctx, filter)
}

func (r *baseRepositoryImpl[T, PT]) First(ctx context.Context, filter interface{}) (PT, error) {
	if filter == nil {
		return nil, ErrNilFilter
	}
	var doc T
	err := r.policy.Execute(ctx, OpFirst, func() error {
		err := r.coll.FindOne(ctx, filter).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find first document: %w", err)
	}
	return &doc, nil
}

func (r *baseRepositoryImpl[T, PT]) Where(ctx context.Context, filter interface{}) ([]PT, error) {
	if filter == nil {
		return nil, ErrNilFilter
	}
	return r.findAll(ctx, OpWhere, filter)
}

func (r *baseRepositoryImpl[T, PT]) Any(ctx context.Context, filter interface{}) (bool, error) {
	if filter == nil {
		return false, ErrNilFilter
	}
	var count int64
	err := r.policy.Execute(ctx, OpAny, func() error {
		var err error
		count, err = r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
		return err
	})
	if err != nil {
		return false, fmt.Errorf("count documents: %w", err)
	}
	return count > 0, nil
}

func (r *baseRepositoryImpl[T, PT]) Count(ctx context.Context, filter interface{}) (int64, error) {
	if filter == nil {
		filter = bson.D{}
	}
	var count int64
	err := r.policy.Execute(ctx, OpCount, func() error {
		var err error
		count, err = r.coll.CountDocuments(ctx, filter)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

func (r *baseRepositoryImpl[T, PT]) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error) {
	if page == nil {
		return nil, ErrNilFilter
	}
	filter := page.GetFilter()
	if filter == nil {
		filter = bson.D{}
	}

	pagination := types.NewDefaultPagination[T](page.GetPage(), page.GetPageSize())
	var total int64
	err := r.policy.Execute(ctx, OpPage, func() error {
		var err error
		total, err = r.coll.CountDocuments(ctx, filter)
		if err != nil || total == 0 {
			return err
		}

		opts := options.Find().
			SetSkip(int64(page.GetOffset())).
			SetLimit(int64(page.GetPageSize()))
		if sort := sortFromOrders(page.GetOrders()); len(sort) > 0 {
			opts.SetSort(sort)
		}

		cursor, err := r.coll.Find(ctx, filter, opts)
		if err != nil {
			return err
		}
		pagination.Items = pagination.Items[:0]
		return cursor.All(ctx, &pagination.Items)
	})
	if err != nil {
		return nil, fmt.Errorf("page documents: %w", err)
	}
	pagination.Total = int(total)
	return pagination, nil
}

func (r *baseRepositoryImpl[T, PT]) Insert(ctx context.Context, doc PT) (PT, error) {
	if doc == nil {
		return nil, ErrNilEntity
	}
	entity.StampForInsert(doc, r.now())
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert document %q: %w", doc.DocumentID(), err)
	}
	return doc, nil
}

func (r *baseRepositoryImpl[T, PT]) InsertEach(ctx context.Context, docs []PT) ([]PT, error) {
	if docs == nil {
		return nil, ErrNilEntity
	}
	for _, doc := range docs {
		if _, err := r.Insert(ctx, doc); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func (r *baseRepositoryImpl[T, PT]) InsertBatch(ctx context.Context, docs []PT) ([]PT, error) {
	if docs == nil {
		return nil, ErrNilEntity
	}
	if len(docs) == 0 {
		return docs, nil
	}
	now := r.now()
	batch := make([]interface{}, len(docs))
	for i, doc := range docs {
		if doc == nil {
			return nil, ErrNilEntity
		}
		entity.StampForInsert(doc, now)
		batch[i] = doc
	}
	if _, err := r.coll.InsertMany(ctx, batch); err != nil {
		return nil, fmt.Errorf("insert batch of %d documents: %w", len(docs), err)
	}
	return docs, nil
}

func (r *baseRepositoryImpl[T, PT]) Update(ctx context.Context, doc PT) (PT, error) {
	if doc == nil {
		return nil, ErrNilEntity
	}
	entity.StampForUpdate(doc, r.now())
	_, err := r.coll.ReplaceOne(ctx,
		bson.M{entity.FieldID: doc.DocumentID()},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert document %q: %w", doc.DocumentID(), err)
	}
	return doc, nil
}

func (r *baseRepositoryImpl[T, PT]) UpdateEach(ctx context.Context, docs []PT) ([]PT, error) {
	if docs == nil {
		return nil, ErrNilEntity
	}
	for _, doc := range docs {
		if _, err := r.Update(ctx, doc); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func (r *baseRepositoryImpl[T, PT]) Save(ctx context.Context, doc PT) (PT, error) {
	return r.Update(ctx, doc)
}

func (r *baseRepositoryImpl[T, PT]) Delete(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, ErrEmptyID
	}
	// The return value reports acknowledgement, not a match: deleting a
	// nonexistent id is still true when the store accepted the request.
	if _, err := r.coll.DeleteOne(ctx, bson.M{entity.FieldID: id}); err != nil {
		return false, fmt.Errorf("delete document %q: %w", id, err)
	}
	return true, nil
}

func (r *baseRepositoryImpl[T, PT]) DeleteDocument(ctx context.Context, doc PT) (bool, error) {
	if doc == nil {
		return false, ErrNilEntity
	}
	return r.Delete(ctx, doc.DocumentID())
}

func (r *baseRepositoryImpl[T, PT]) findAll(ctx context.Context, op Operation, filter interface{}) ([]PT, error) {
	var docs []PT
	err := r.policy.Execute(ctx, op, func() error {
		cursor, err := r.coll.Find(ctx, filter)
		if err != nil {
			return err
		}
		docs = docs[:0]
		return cursor.All(ctx, &docs)
	})
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	return docs, nil
}

// sortFromOrders converts "field ASC"/"field DESC" order clauses into a
// Mongo sort document. Bare field names sort ascending.
func sortFromOrders(orders []string) bson.D {
	var sort bson.D
	for _, order := range orders {
		fields := strings.Fields(order)
		if len(fields) == 0 {
			continue
		}
		direction := 1
		if len(fields) > 1 && strings.EqualFold(fields[1], "DESC") {
			direction = -1
		}
		sort = append(sort, bson.E{Key: fields[0], Value: direction})
	}
	return sort
}
