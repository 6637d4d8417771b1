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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/taprootlabs/taproot/entity"
	"github.com/taprootlabs/taproot/types"
)

var testTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestRepository(f *fakeCollection) Repository[product, *product] {
	return NewRepository[product](f, WithClock(func() time.Time { return testTime }))
}

func TestInsertStampsDocument(t *testing.T) {
	f := newFakeCollection()
	repo := newTestRepository(f)

	doc, err := repo.Insert(context.Background(), &product{Name: "anvil", Price: 100})
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Len(t, doc.ID, 24, "identifier should be an object id hex")
	assert.NotEmpty(t, doc.UniqueToken)
	assert.True(t, doc.CreatedOn.Equal(testTime))
	assert.True(t, doc.ModifiedOn.Equal(testTime))
	assert.Equal(t, 1, f.callCount("insert:"))
}

func TestInsertKeepsExplicitID(t *testing.T) {
	f := newFakeCollection()
	repo := newTestRepository(f)

	doc, err := repo.Insert(context.Background(), &product{
		Model: entity.Model{ID: "fixed-id"},
		Name:  "anvil",
	})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", doc.ID)
}

func TestInsertNilDocument(t *testing.T) {
	f := newFakeCollection()
	repo := newTestRepository(f)

	_, err := repo.Insert(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilEntity)
	assert.Empty(t, f.calls)
}

func TestGetReturnsInsertedDocument(t *testing.T) {
	f := newFakeCollection()
	repo := newTestRepository(f)
	ctx := context.Background()

	inserted, err := repo.Insert(ctx, &product{Name: "anvil", Price: 100})
	require.NoError(t, err)

	got, err := repo.Get(ctx, inserted.ID)
	require.NoError(t, err)
	assert.Equal(t, "anvil", got.Name)
	assert.Equal(t, 100, got.Price)
	assert.Equal(t, inserted.UniqueToken, got.UniqueToken)
}

func TestGetNotFound(t *testing.T) {
	f := newFakeCollection()
	repo := newTestRepository(f)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetEmptyID(t *testing.T) {
	f := newFakeCollection()
	repo := newTestRepository(f)

	_, err := repo.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyID)
	assert.Empty(t, f.calls, "validation failures must not reach the store")
}

func TestUpdateUpsertsNewDocument(t *testing.T) {
	f := newFakeCollection()
	repo := newTestRepository(f)
	ctx := context.Background()

	doc, err := repo.Update(ctx, &product{Name: "anvil"})
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.True(t, doc.CreatedOn.Equal(testTime), "upsert of a new document stamps creation time")

	got, err := repo.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "anvil", got.Name)
}

func TestUpdatePreservesCreationTime(t *testing.T) {
	f := newFakeCollection()
	now := testTime
	repo := NewRepository[product](f, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	doc, err := repo.Insert(ctx, &product{Name: "anvil", Price: 100})
	require.NoError(t, err)

	now = testTime.Add(time.Hour)
	doc.Price = 150
	updated, err := repo.Update(ctx, doc)
	require.NoError(t, err)

	assert.True(t, updated.CreatedOn.Equal(testTime))
	assert.True(t, updated.ModifiedOn.Equal(testTime.Add(time.Hour)))

	got, err := repo.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 150, got.Price)
}

func TestSaveAliasesUpdate(t *testing.T) {
	f := newFakeCollection()
	repo := newTestRepository(f)

	doc, err := repo.Save(context.Background(), &product{Name: "anvil"})
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, 1, f.callCount("replace:"))
}

func TestInsertBatchSingleRoundTrip(t *testing.T) {
	f := newFakeCollection()
	repo := newTestRepository(f)

	docs, err := repo.InsertBatch(context.Background(), []*product{
		{Name: "anvil"}, {Name: "hammer"}, {Name: "tongs"},
	})
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, 1, f.callCount("insertMany:"))
	assert.Equal(t, 0, f.callCount("insert:"))
	for _, doc := range docs {
		assert.NotEmpty(t, doc.ID)
		assert.True(t, doc.CreatedOn.Equal(testTime), "batch members share one stamp time")
	}
}

func TestInsertEachRoundTripsPerDocument(t *testing.T) {
	f := newFakeCollection()
	repo := newTestRepository(f)

	_, err := repo.InsertEach(context.Background(), []*product{
		{Name: "anvil"}, {Name: "hammer"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, f.callCount("insert:"))
}

func TestDeleteThenGet(t *testing.T) {
	f := newFakeCollection()
	repo := newTestRepository(f)
	ctx := context.Background()

	doc, err := repo.Insert(ctx, &product{Name: "anvil"})
	require.NoError(t, err)

	ok, err := repo.Delete(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAcknowledgesMissingID(t *testing.T) {
	f := newFakeCollection()
	repo := newTestRepository(f)

	// Acknowledgement only: the store accepted the request even though
	// nothing matched.
	ok, err := repo.Delete(context.Background(), "missing")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteEmptyID(t *testing.T) {
	f := newFakeCollection()
	repo := newTestRepository(f)

	_, err := repo.Delete(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyID)
	assert.Empty(t, f.calls)
}

func TestDeleteDocument(t *testing.T) {
	f := newFakeCollection()
	repo := newTestRepository(f)
	ctx := context.Background()

	doc, err := repo.Insert(ctx, &product{Name: "anvil"})
	require.NoError(t, err)

	ok, err := repo.DeleteDocument(ctx, doc)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.DeleteDocument(ctx, nil)
	assert.ErrorIs(t, err, ErrNilEntity)
}

func TestWhere(t *testing.T) {
	f := newFakeCollection()
	repo := newTestRepository(f)
	ctx := context.Background()

	_, err := repo.InsertBatch(ctx, []*product{
		{Name: "anvil", Price: 100},
		{Name: "hammer", Price: 100},
		{Name: "tongs", Price: 40},
	})
	require.NoError(t, err)

	docs, err := repo.Where(ctx, bson.M{"price": 100})
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestWhereNilFilter(t *testing.T) {
	f := newFakeCollection()
	repo := newTestRepository(f)

	_, err := repo.Where(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilFilter)
	assert.Empty(t, f.calls)
}

func TestFirst(t *testing.T) {
	f := newFakeCollection()
	repo := newTestRepository(f)
	ctx := context.Background()

	_, err := repo.Insert(ctx, &product{Name: "anvil", Price: 100})
	require.NoError(t, err)

	doc, err := repo.First(ctx, bson.M{"name": "anvil"})
	require.NoError(t, err)
	assert.Equal(t, "anvil", doc.Name)

	_, err = repo.First(ctx, bson.M{"name": "nothing"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.First(ctx, nil)
	assert.ErrorIs(t, err, ErrNilFilter)
}

func TestAnyAndCount(t *testing.T) {
	f := newFakeCollection()
	repo := newTestRepository(f)
	ctx := context.Background()

	_, err := repo.InsertBatch(ctx, []*product{
		{Name: "anvil", Price: 100},
		{Name: "hammer", Price: 100},
	})
	require.NoError(t, err)

	any, err := repo.Any(ctx, bson.M{"price": 100})
	require.NoError(t, err)
	assert.True(t, any)

	any, err = repo.Any(ctx, bson.M{"price": 999})
	require.NoError(t, err)
	assert.False(t, any)

	count, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestGetAll(t *testing.T) {
	f := newFakeCollection()
	repo := newTestRepository(f)
	ctx := context.Background()

	_, err := repo.InsertBatch(ctx, []*product{{Name: "anvil"}, {Name: "hammer"}})
	require.NoError(t, err)

	docs, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestCursor(t *testing.T) {
	f := newFakeCollection()
	repo := newTestRepository(f)
	ctx := context.Background()

	_, err := repo.InsertBatch(ctx, []*product{{Name: "anvil"}, {Name: "hammer"}})
	require.NoError(t, err)

	cursor, err := repo.Cursor(ctx, nil)
	require.NoError(t, err)
	defer cursor.Close(ctx)

	n := 0
	for cursor.Next(ctx) {
		n++
	}
	require.NoError(t, cursor.Err())
	assert.Equal(t, 2, n)
}

func TestPage(t *testing.T) {
	f := newFakeCollection()
	repo := newTestRepository(f)
	ctx := context.Background()

	batch := make([]*product, 25)
	for i := range batch {
		batch[i] = &product{Name: "item", Price: i}
	}
	_, err := repo.InsertBatch(ctx, batch)
	require.NoError(t, err)

	page, err := repo.Page(ctx, types.NewDefaultPageRequest(2, 10))
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	assert.Len(t, page.Items, 10)

	page, err = repo.Page(ctx, types.NewDefaultPageRequest(3, 10))
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
}

func TestPageEmptyResult(t *testing.T) {
	f := newFakeCollection()
	repo := newTestRepository(f)

	page, err := repo.Page(context.Background(), types.NewPageRequestWithFilter(1, 10, bson.M{"name": "nothing"}))
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, f.callCount("find"), "empty pages skip the find round trip")
}

func TestSortFromOrders(t *testing.T) {
	assert.Nil(t, sortFromOrders(nil))
	assert.Equal(t,
		bson.D{{Key: "name", Value: 1}},
		sortFromOrders([]string{"name ASC"}),
	)
	assert.Equal(t,
		bson.D{{Key: "createdOn", Value: -1}, {Key: "name", Value: 1}},
		sortFromOrders([]string{"createdOn DESC", "name"}),
	)
	assert.Nil(t, sortFromOrders([]string{"  "}))
}
