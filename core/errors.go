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

import "errors"

// Domain validation errors
var (
	// ErrInvalidProduct indicates a Product failed validation.
	ErrInvalidProduct = errors.New("invalid product")

	// ErrEmptyCategory indicates the Category field is empty.
	ErrEmptyCategory = errors.New("category cannot be empty")

	// ErrEmptyName indicates the Name field is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrCategoryTooLong indicates the category exceeds the maximum length.
	ErrCategoryTooLong = errors.New("category exceeds maximum length of 100 characters")

	// ErrNameTooLong indicates the name exceeds the maximum length.
	ErrNameTooLong = errors.New("name exceeds maximum length of 255 characters")

	// ErrCategoryHasNUL indicates the category contains a NUL byte.
	ErrCategoryHasNUL = errors.New("category cannot contain NUL bytes")
)
