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

package entity

import (
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxTreeLevel is the deepest level a hierarchical document may occupy.
// Roots sit at level 0; the check is advisory and only ever inspects the
// prospective parent, it does not block writes on its own.
const MaxTreeLevel = 6

// FieldID is the bson name of the document identifier.
const FieldID = "_id"

// FieldParentID is the bson name of the parent reference on tree documents.
const FieldParentID = "parentId"

// Document is the capability set every repository entity must expose:
// a string identifier and creation/modification timestamps.
type Document interface {
	DocumentID() string
	SetDocumentID(id string)
	CreatedAt() time.Time
	SetCreatedAt(t time.Time)
	ModifiedAt() time.Time
	SetModifiedAt(t time.Time)
}

// Hierarchical is the additional capability set for documents that
// participate in a parent/child tree.
type Hierarchical interface {
	Document
	ParentID() string
	TreeLevel() int
}

// Tokenized is implemented by documents carrying a client-generated
// unique token distinct from the identifier.
type Tokenized interface {
	Token() string
	SetToken(token string)
}

// CollectionNamer lets a model override the collection it is stored in.
// Without it the lowercased struct type name is used.
type CollectionNamer interface {
	CollectionName() string
}

// Doc constrains a pointer type *T to the Document capability set so the
// generic repository can stamp timestamps in place.
type Doc[T any] interface {
	*T
	Document
}

// Hier constrains a pointer type *T to the Hierarchical capability set.
type Hier[T any] interface {
	*T
	Hierarchical
}

// Model is the embeddable base shape for stored documents.
type Model struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	CreatedOn   time.Time `bson:"createdOn" json:"created_on"`
	ModifiedOn  time.Time `bson:"modifiedOn" json:"modified_on"`
	Deleted     bool      `bson:"deleted" json:"deleted"`
	UniqueToken string    `bson:"uniqueToken,omitempty" json:"unique_token"`
}

func (m *Model) DocumentID() string        { return m.ID }
func (m *Model) SetDocumentID(id string)   { m.ID = id }
func (m *Model) CreatedAt() time.Time      { return m.CreatedOn }
func (m *Model) SetCreatedAt(t time.Time)  { m.CreatedOn = t }
func (m *Model) ModifiedAt() time.Time     { return m.ModifiedOn }
func (m *Model) SetModifiedAt(t time.Time) { m.ModifiedOn = t }
func (m *Model) Token() string             { return m.UniqueToken }
func (m *Model) SetToken(token string)     { m.UniqueToken = token }

// TreeModel is the embeddable base shape for documents arranged in a tree.
// ParentId is empty for roots; Level is 0 for roots and parent.Level+1 for
// their children.
type TreeModel struct {
	Model    `bson:",inline"`
	ParentId string `bson:"parentId,omitempty" json:"parent_id"`
	Level    int    `bson:"level" json:"level"`
}

func (m *TreeModel) ParentID() string { return m.ParentId }
func (m *TreeModel) TreeLevel() int   { return m.Level }

// StampForInsert fills the identifier, unique token, and both timestamps
// ahead of first persistence. Creation and modification timestamps come
// out equal.
func StampForInsert(doc Document, now time.Time) {
	if doc.DocumentID() == "" {
		doc.SetDocumentID(primitive.NewObjectID().Hex())
	}
	ensureToken(doc)
	doc.SetCreatedAt(now)
	doc.SetModifiedAt(now)
}

// StampForUpdate advances the modification timestamp and backfills the
// identifier, token, and creation timestamp only when they are unset, so
// an upsert of a brand new document behaves exactly like an insert while
// an update of an existing one keeps its original creation time.
func StampForUpdate(doc Document, now time.Time) {
	if doc.DocumentID() == "" {
		doc.SetDocumentID(primitive.NewObjectID().Hex())
	}
	ensureToken(doc)
	if doc.CreatedAt().IsZero() {
		doc.SetCreatedAt(now)
	}
	doc.SetModifiedAt(now)
}

func ensureToken(doc Document) {
	if t, ok := doc.(Tokenized); ok && t.Token() == "" {
		t.SetToken(uuid.NewString())
	}
}

// CollectionNameOf resolves the collection name for a model type, honoring
// CollectionNamer when implemented and falling back to the lowercased
// struct type name.
func CollectionNameOf[T any]() string {
	var v T
	if n, ok := any(&v).(CollectionNamer); ok {
		return n.CollectionName()
	}
	t := reflect.TypeOf(&v).Elem()
	return strings.ToLower(t.Name())
}
