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
	"fmt"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taprootlabs/taproot/entity"
)

type product struct {
	entity.Model `bson:",inline"`

	Name  string `bson:"name"`
	Price int    `bson:"price"`
}

type category struct {
	entity.TreeModel `bson:",inline"`

	Name string `bson:"name"`
}

// fakeCollection is an in-memory Collection. Documents are stored as bson
// maps produced by a marshal round trip, so they decode exactly like driver
// results. Every store call is appended to calls for order and count
// assertions; scripted errors are consumed one per call.
type fakeCollection struct {
	mu    sync.Mutex
	docs  map[string]bson.M
	order []string
	calls []string

	findOneErrs []error
	findErrs    []error
}

func newFakeCollection() *fakeCollection {
	return &fakeCollection{docs: make(map[string]bson.M)}
}

func toM(v interface{}) bson.M {
	raw, err := bson.Marshal(v)
	if err != nil {
		panic(err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		panic(err)
	}
	return m
}

func matches(doc, filter bson.M) bool {
	for k, v := range filter {
		if fmt.Sprint(doc[k]) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}

// seed stores a document without recording a call.
func (f *fakeCollection) seed(doc interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store(toM(doc))
}

func (f *fakeCollection) store(m bson.M) string {
	id := fmt.Sprint(m[entity.FieldID])
	if _, exists := f.docs[id]; !exists {
		f.order = append(f.order, id)
	}
	f.docs[id] = m
	return id
}

func (f *fakeCollection) callCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeCollection) callsWithPrefix(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, strings.TrimPrefix(c, prefix))
		}
	}
	return out
}

func (f *fakeCollection) Name() string { return "fake" }

func (f *fakeCollection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "findOne")
	if len(f.findOneErrs) > 0 {
		err := f.findOneErrs[0]
		f.findOneErrs = f.findOneErrs[1:]
		if err != nil {
			return mongo.NewSingleResultFromDocument(bson.D{}, err, nil)
		}
	}
	q := toM(filter)
	for _, id := range f.order {
		if doc, ok := f.docs[id]; ok && matches(doc, q) {
			return mongo.NewSingleResultFromDocument(doc, nil, nil)
		}
	}
	return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
}

func (f *fakeCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "find")
	if len(f.findErrs) > 0 {
		err := f.findErrs[0]
		f.findErrs = f.findErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	q := toM(filter)
	out := make([]interface{}, 0)
	for _, id := range f.order {
		if doc, ok := f.docs[id]; ok && matches(doc, q) {
			out = append(out, doc)
		}
	}
	opt := options.MergeFindOptions(opts...)
	if opt.Skip != nil {
		if int(*opt.Skip) < len(out) {
			out = out[*opt.Skip:]
		} else {
			out = out[:0]
		}
	}
	if opt.Limit != nil && int64(len(out)) > *opt.Limit {
		out = out[:*opt.Limit]
	}
	return mongo.NewCursorFromDocuments(out, nil, nil)
}

func (f *fakeCollection) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "count")
	q := toM(filter)
	var n int64
	for _, doc := range f.docs {
		if matches(doc, q) {
			n++
		}
	}
	opt := options.MergeCountOptions(opts...)
	if opt.Limit != nil && n > *opt.Limit {
		n = *opt.Limit
	}
	return n, nil
}

func (f *fakeCollection) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.store(toM(document))
	f.calls = append(f.calls, "insert:"+id)
	return &mongo.InsertOneResult{InsertedID: id}, nil
}

func (f *fakeCollection) InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("insertMany:%d", len(documents)))
	result := &mongo.InsertManyResult{}
	for _, doc := range documents {
		result.InsertedIDs = append(result.InsertedIDs, f.store(toM(doc)))
	}
	return result, nil
}

func (f *fakeCollection) ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprint(toM(filter)[entity.FieldID])
	f.calls = append(f.calls, "replace:"+id)
	_, existed := f.docs[id]
	f.store(toM(replacement))
	if existed {
		return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
	}
	return &mongo.UpdateResult{UpsertedCount: 1, UpsertedID: id}, nil
}

func (f *fakeCollection) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprint(toM(filter)[entity.FieldID])
	f.calls = append(f.calls, "delete:"+id)
	if _, ok := f.docs[id]; !ok {
		return &mongo.DeleteResult{DeletedCount: 0}, nil
	}
	delete(f.docs, id)
	return &mongo.DeleteResult{DeletedCount: 1}, nil
}
