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


// Package storage defines the repository interfaces for the marketplace
// record store and the binary serialization helpers shared by its
// implementations.
//
// The storage/badger sub-package provides the BadgerDB implementation used
// in production and an in-memory variant for tests. The vector index does
// not live here: repositories expose an EmbeddingSnapshot that the index
// package consumes on rebuild.
package storage
