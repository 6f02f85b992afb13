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
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-maintained MUS serializers for core types. Timestamps are encoded as
// microsecond Unix time. Field order is part of the stored format: append new
// fields at the end only.

// IDMUS serializes ID values.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

// ProductMUS serializes Product values.
var ProductMUS = productMUS{}

type productMUS struct{}

func (productMUS) Marshal(p Product, bs []byte) (n int) {
	n = IDMUS.Marshal(p.Id, bs)
	n += ord.String.Marshal(p.Category, bs[n:])
	n += ord.String.Marshal(p.Name, bs[n:])
	n += varint.Int64.Marshal(p.InsertedAt.UnixMicro(), bs[n:])
	n += varint.Int64.Marshal(p.UpdatedAt.UnixMicro(), bs[n:])
	return n
}

func (productMUS) Unmarshal(bs []byte) (p Product, n int, err error) {
	var n1 int
	p.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	p.Category, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var usec int64
	usec, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.InsertedAt = time.UnixMicro(usec).UTC()
	usec, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	p.UpdatedAt = time.UnixMicro(usec).UTC()
	return
}

func (productMUS) Size(p Product) (size int) {
	size = IDMUS.Size(p.Id)
	size += ord.String.Size(p.Category)
	size += ord.String.Size(p.Name)
	size += varint.Int64.Size(p.InsertedAt.UnixMicro())
	size += varint.Int64.Size(p.UpdatedAt.UnixMicro())
	return size
}

func (productMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	return
}
