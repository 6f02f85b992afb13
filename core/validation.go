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

import (
	"fmt"
	"strings"
)

const (
	maxCategoryLen = 100
	maxNameLen     = 255
)

// ValidateFields validates a (category, name) pair according to domain rules.
//
// Validation rules:
//   - Category must not be empty after trimming whitespace
//   - Category must not exceed 100 characters
//   - Category must not contain NUL bytes (NUL is reserved as the
//     category index key separator)
//   - Name must not be empty after trimming whitespace
//   - Name must not exceed 255 characters
//
// NOT validated:
//   - ID (0 is valid before a sequence has issued one)
//   - Timestamps (populated by the record store)
func ValidateFields(category, name string) error {
	if strings.TrimSpace(category) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProduct, ErrEmptyCategory)
	}
	if len(category) > maxCategoryLen {
		return fmt.Errorf("%w: %w", ErrInvalidProduct, ErrCategoryTooLong)
	}
	if strings.ContainsRune(category, 0) {
		return fmt.Errorf("%w: %w", ErrInvalidProduct, ErrCategoryHasNUL)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProduct, ErrEmptyName)
	}
	if len(name) > maxNameLen {
		return fmt.Errorf("%w: %w", ErrInvalidProduct, ErrNameTooLong)
	}
	return nil
}

// ValidateProduct validates a Product according to domain rules.
func ValidateProduct(product *Product) error {
	if product == nil {
		return fmt.Errorf("%w: product is nil", ErrInvalidProduct)
	}
	return ValidateFields(product.Category, product.Name)
}
