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

	"github.com/hashicorp/go-multierror"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/taprootlabs/taproot/entity"
)

type hierarchicalRepositoryImpl[T any, PT entity.Hier[T]] struct {
	*baseRepositoryImpl[T, PT]
}

// NewHierarchicalRepository returns a repository with tree operations for
// documents carrying a parent reference and a level.
func NewHierarchicalRepository[T any, PT entity.Hier[T]](coll Collection, opts ...Option) HierarchicalRepository[T, PT] {
	return &hierarchicalRepositoryImpl[T, PT]{
		baseRepositoryImpl: newBaseRepository[T, PT](coll, opts...),
	}
}

func (r *hierarchicalRepositoryImpl[T, PT]) CascadeDelete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	// The recursion bound converts a malformed tree or a parent cycle into
	// a reported error instead of unbounded recursion.
	return r.cascade(ctx, id, entity.MaxTreeLevel+1)
}

func (r *hierarchicalRepositoryImpl[T, PT]) cascade(ctx context.Context, id string, depth int) error {
	if depth < 0 {
		return fmt.Errorf("%w: node %q", ErrTreeTooDeep, id)
	}

	children, err := r.Where(ctx, bson.M{entity.FieldParentID: id})
	if err != nil {
		return fmt.Errorf("list children of %q: %w", id, err)
	}

	var errs *multierror.Error
	for _, child := range children {
		if err := r.cascade(ctx, child.DocumentID(), depth-1); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	// A node is only deleted once its whole subtree is gone, so a failed
	// branch leaves the node reachable for a later retry.
	if err := errs.ErrorOrNil(); err != nil {
		return err
	}

	if _, err := r.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete node %q: %w", id, err)
	}
	return nil
}

func (r *hierarchicalRepositoryImpl[T, PT]) IsLevelExceeded(ctx context.Context, parentID string) (bool, error) {
	if parentID == "" {
		return false, ErrEmptyID
	}
	parent, err := r.Get(ctx, parentID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return parent.TreeLevel() >= entity.MaxTreeLevel, nil
}

func (r *hierarchicalRepositoryImpl[T, PT]) HasChildren(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, ErrEmptyID
	}
	return r.Any(ctx, bson.M{entity.FieldParentID: id})
}
