// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "time"

// ID is a unique identifier for catalog records.
// IDs are issued from a database sequence and are strictly increasing
// within a single store instance.
type ID uint64

// Product is a single catalog record. The Id is immutable once assigned;
// Category and Name may change over the record's lifetime, and the category
// index always reflects the record's current category.
type Product struct {
	Id         ID
	Category   string
	Name       string
	InsertedAt time.Time // When the record was first persisted
	UpdatedAt  time.Time // When the record was last replaced
}

// SortKey identifies a field results can be ordered by. Category is the
// only member today; pages are ordered by category with id as the tie-break.
type SortKey int

const (
	// SortByCategory orders results ascending by category, then by id.
	SortByCategory SortKey = iota
)

func (k SortKey) String() string {
	switch k {
	case SortByCategory:
		return "category"
	default:
		return "unknown"
	}
}

// Page is a bounded slice of an ordered result sequence together with its
// paging metadata. Sort records the ordering that produced Items.
type Page struct {
	Items         []*Product
	PageNumber    int
	PageSize      int
	TotalElements uint64
	TotalPages    int
	Sort          SortKey
}
