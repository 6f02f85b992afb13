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


// Package storage provides the storage abstraction layer for catalogit.
//
// This package defines the repository interface that decouples the record
// store and category index implementation from the query engine. It allows
// different storage backends (BadgerDB, in-memory, etc.) to be used
// interchangeably.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - ProductRepository: record CRUD plus the category index read operations
//   - TransactionManager: transaction support
//
// Every mutating operation applies its record write and its category index
// write inside one transaction. Consumers never observe a state where one
// structure reflects a change and the other does not; if the two ever
// disagree, reads fail with ErrIndexCorrupted.
//
// # Usage
//
// Create a repository instance:
//
//	repo, err := badger.NewProductRepository(backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
