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
	// ErrInvalidItem indicates an Item failed validation.
	ErrInvalidItem = errors.New("invalid item")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyDescription indicates the Description field is empty.
	ErrEmptyDescription = errors.New("description cannot be empty")

	// ErrNegativePrice indicates a price below zero.
	ErrNegativePrice = errors.New("price cannot be negative")

	// ErrInvalidCondition indicates an invalid Condition value.
	// Valid conditions are: NEW, USED, Nuevo, Usado.
	ErrInvalidCondition = errors.New("invalid condition")

	// ErrInvalidExpiry indicates an expiry timestamp not after creation.
	ErrInvalidExpiry = errors.New("expiry must be after creation")

	// ErrInvalidExpiryWindow indicates an unknown expiry window token.
	// Valid tokens are: 30+, 7+, 1, 0.
	ErrInvalidExpiryWindow = errors.New("invalid expiry window")

	// ErrEmptySellerName indicates the seller Name field is empty.
	ErrEmptySellerName = errors.New("seller name cannot be empty")

	// ErrEmptySellerContact indicates the seller Contact field is empty.
	ErrEmptySellerContact = errors.New("seller contact cannot be empty")
)
