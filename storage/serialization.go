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


package storage

import (
	"github.com/poiesic/feria/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalItem serializes an Item to bytes.
func MarshalItem(item *core.Item) []byte {
	buf := make([]byte, core.ItemMUS.Size(*item))
	core.ItemMUS.Marshal(*item, buf)
	return buf
}

// UnmarshalItem deserializes an Item from bytes.
func UnmarshalItem(data []byte) (*core.Item, error) {
	item, _, err := core.ItemMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// MarshalProvince serializes a Province to bytes.
func MarshalProvince(province *core.Province) []byte {
	buf := make([]byte, core.ProvinceMUS.Size(*province))
	core.ProvinceMUS.Marshal(*province, buf)
	return buf
}

// UnmarshalProvince deserializes a Province from bytes.
func UnmarshalProvince(data []byte) (*core.Province, error) {
	province, _, err := core.ProvinceMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &province, nil
}

// MarshalLocality serializes a Locality to bytes.
func MarshalLocality(locality *core.Locality) []byte {
	buf := make([]byte, core.LocalityMUS.Size(*locality))
	core.LocalityMUS.Marshal(*locality, buf)
	return buf
}

// UnmarshalLocality deserializes a Locality from bytes.
func UnmarshalLocality(data []byte) (*core.Locality, error) {
	locality, _, err := core.LocalityMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &locality, nil
}

// MarshalSeller serializes a Seller to bytes.
func MarshalSeller(seller *core.Seller) []byte {
	buf := make([]byte, core.SellerMUS.Size(*seller))
	core.SellerMUS.Marshal(*seller, buf)
	return buf
}

// UnmarshalSeller deserializes a Seller from bytes.
func UnmarshalSeller(data []byte) (*core.Seller, error) {
	seller, _, err := core.SellerMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &seller, nil
}
