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

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequestDefaults(t *testing.T) {
	p := NewDefaultPageRequest(0, 0)
	assert.Equal(t, 1, p.GetPage())
	assert.Equal(t, 10, p.GetPageSize())
	assert.Equal(t, 0, p.GetOffset())
}

func TestPageRequestOffset(t *testing.T) {
	p := NewDefaultPageRequest(3, 20)
	assert.Equal(t, 40, p.GetOffset())
}

func TestPageRequestFilterAndOrders(t *testing.T) {
	filter := map[string]interface{}{"name": "anvil"}
	p := NewPageRequest(1, 10, filter, []string{"name DESC"})
	assert.Equal(t, filter, p.GetFilter())
	assert.Equal(t, []string{"name DESC"}, p.GetOrders())

	p = NewPageRequestWithOrders(1, 10, []string{"name"})
	assert.Nil(t, p.GetFilter())
}

func TestNewDefaultPagination(t *testing.T) {
	type row struct{ Name string }
	pg := NewDefaultPagination[row](2, 25)
	assert.Equal(t, 2, pg.Page)
	assert.Equal(t, 25, pg.PageSize)
	assert.Equal(t, 0, pg.Total)
	assert.NotNil(t, pg.Items)
	assert.Empty(t, pg.Items)
}
