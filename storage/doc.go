// Copyright 2026 Halcyard Systems
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


// Package storage provides the storage abstraction layer for visimil.
//
// The RecordStore interface decouples the ranking engine from the storage
// implementation. Public constructors in implementation packages return the
// interface, not the concrete type:
//
//	store, err := badger.NewRecordStore(backend)  // returns storage.RecordStore
//
// Use the in-memory backend in tests:
//
//	backend, err := badger.OpenBackend("", true)
//	store, err := badger.NewRecordStore(backend)
//
// All implementations must be thread-safe. Every method accepts a
// context.Context for cancellation; pass context.Background() when no
// timeout is needed.
package storage
