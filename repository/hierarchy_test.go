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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taprootlabs/taproot/entity"
)

func newTreeNode(id, parentID string, level int) *category {
	return &category{
		TreeModel: entity.TreeModel{
			Model:    entity.Model{ID: id},
			ParentId: parentID,
			Level:    level,
		},
		Name: id,
	}
}

// seedTree builds:
//
//	root
//	├── c1
//	│   └── gc
//	└── c2
func seedTree(f *fakeCollection) {
	f.seed(newTreeNode("root", "", 0))
	f.seed(newTreeNode("c1", "root", 1))
	f.seed(newTreeNode("c2", "root", 1))
	f.seed(newTreeNode("gc", "c1", 2))
}

func indexOf(items []string, v string) int {
	for i, item := range items {
		if item == v {
			return i
		}
	}
	return -1
}

func TestCascadeDeleteRemovesChildrenFirst(t *testing.T) {
	f := newFakeCollection()
	seedTree(f)
	repo := NewHierarchicalRepository[category](f)

	err := repo.CascadeDelete(context.Background(), "root")
	require.NoError(t, err)
	assert.Empty(t, f.docs)

	deletes := f.callsWithPrefix("delete:")
	require.Len(t, deletes, 4)
	assert.Less(t, indexOf(deletes, "gc"), indexOf(deletes, "c1"), "grandchild goes before its parent")
	assert.Less(t, indexOf(deletes, "c1"), indexOf(deletes, "root"))
	assert.Less(t, indexOf(deletes, "c2"), indexOf(deletes, "root"))
}

func TestCascadeDeleteLeaf(t *testing.T) {
	f := newFakeCollection()
	f.seed(newTreeNode("solo", "", 0))
	repo := NewHierarchicalRepository[category](f)

	err := repo.CascadeDelete(context.Background(), "solo")
	require.NoError(t, err)
	assert.Equal(t, []string{"solo"}, f.callsWithPrefix("delete:"))
}

func TestCascadeDeleteEmptyID(t *testing.T) {
	f := newFakeCollection()
	repo := NewHierarchicalRepository[category](f)

	err := repo.CascadeDelete(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyID)
	assert.Empty(t, f.calls)
}

func TestCascadeDeleteReportsCycle(t *testing.T) {
	f := newFakeCollection()
	f.seed(newTreeNode("a", "b", 1))
	f.seed(newTreeNode("b", "a", 1))
	repo := NewHierarchicalRepository[category](f)

	err := repo.CascadeDelete(context.Background(), "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTreeTooDeep)
	assert.Empty(t, f.callsWithPrefix("delete:"), "nothing is deleted when the walk fails")
}

func TestIsLevelExceeded(t *testing.T) {
	f := newFakeCollection()
	f.seed(newTreeNode("shallow", "", entity.MaxTreeLevel-1))
	f.seed(newTreeNode("deep", "", entity.MaxTreeLevel))
	repo := NewHierarchicalRepository[category](f)
	ctx := context.Background()

	exceeded, err := repo.IsLevelExceeded(ctx, "shallow")
	require.NoError(t, err)
	assert.False(t, exceeded)

	exceeded, err = repo.IsLevelExceeded(ctx, "deep")
	require.NoError(t, err)
	assert.True(t, exceeded)
}

func TestIsLevelExceededMissingParent(t *testing.T) {
	f := newFakeCollection()
	repo := NewHierarchicalRepository[category](f)

	exceeded, err := repo.IsLevelExceeded(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, exceeded)

	_, err = repo.IsLevelExceeded(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyID)
}

func TestHasChildren(t *testing.T) {
	f := newFakeCollection()
	seedTree(f)
	repo := NewHierarchicalRepository[category](f)
	ctx := context.Background()

	has, err := repo.HasChildren(ctx, "root")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = repo.HasChildren(ctx, "gc")
	require.NoError(t, err)
	assert.False(t, has)

	_, err = repo.HasChildren(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyID)
}
