package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the stored domain types. The type set is small and
// stable, so these are maintained by hand against the mus-go primitive
// serializers rather than generated.
var (
	IDMUS        = idMUS{}
	ConditionMUS = conditionMUS{}
	ItemMUS      = itemMUS{}
	ProvinceMUS  = provinceMUS{}
	LocalityMUS  = localityMUS{}
	SellerMUS    = sellerMUS{}
)

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

type conditionMUS struct{}

func (conditionMUS) Marshal(c Condition, bs []byte) int {
	return varint.Int.Marshal(int(c), bs)
}

func (conditionMUS) Unmarshal(bs []byte) (Condition, int, error) {
	v, n, err := varint.Int.Unmarshal(bs)
	return Condition(v), n, err
}

func (conditionMUS) Size(c Condition) int {
	return varint.Int.Size(int(c))
}

func marshalStrings(v []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func unmarshalStrings(bs []byte) (v []string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	v = make([]string, 0, length)
	for i := 0; i < length; i++ {
		var s string
		var sn int
		s, sn, err = ord.String.Unmarshal(bs[n:])
		n += sn
		if err != nil {
			return nil, n, err
		}
		v = append(v, s)
	}
	return v, n, nil
}

func sizeStrings(v []string) (size int) {
	size = varint.Int.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return size
}

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += varint.Float32.Marshal(f, bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]float32, 0, length)
	for i := 0; i < length; i++ {
		var f float32
		var fn int
		f, fn, err = varint.Float32.Unmarshal(bs[n:])
		n += fn
		if err != nil {
			return nil, n, err
		}
		v = append(v, f)
	}
	return v, n, nil
}

func sizeVector(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += varint.Float32.Size(f)
	}
	return size
}

type itemMUS struct{}

func (itemMUS) Marshal(item Item, bs []byte) (n int) {
	n = IDMUS.Marshal(item.Id, bs)
	n += ord.String.Marshal(item.Title, bs[n:])
	n += ord.String.Marshal(item.Description, bs[n:])
	n += varint.Float64.Marshal(item.Price, bs[n:])
	n += marshalStrings(item.Categories, bs[n:])
	n += ConditionMUS.Marshal(item.Condition, bs[n:])
	n += IDMUS.Marshal(item.LocalityId, bs[n:])
	n += IDMUS.Marshal(item.SellerId, bs[n:])
	n += ord.Bool.Marshal(item.Available, bs[n:])
	n += varint.Int64.Marshal(item.Views, bs[n:])
	n += varint.Int64.Marshal(item.Searches, bs[n:])
	n += ord.Bool.Marshal(item.Featured, bs[n:])
	n += raw.TimeUnixMicro.Marshal(item.CreatedAt, bs[n:])
	n += raw.TimeUnixMicro.Marshal(item.ExpiresAt, bs[n:])
	n += marshalVector(item.Vector, bs[n:])
	return n
}

func (itemMUS) Unmarshal(bs []byte) (item Item, n int, err error) {
	var fn int
	if item.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return item, n, err
	}
	if item.Title, fn, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return item, n + fn, err
	}
	n += fn
	if item.Description, fn, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return item, n + fn, err
	}
	n += fn
	if item.Price, fn, err = varint.Float64.Unmarshal(bs[n:]); err != nil {
		return item, n + fn, err
	}
	n += fn
	if item.Categories, fn, err = unmarshalStrings(bs[n:]); err != nil {
		return item, n + fn, err
	}
	n += fn
	if item.Condition, fn, err = ConditionMUS.Unmarshal(bs[n:]); err != nil {
		return item, n + fn, err
	}
	n += fn
	if item.LocalityId, fn, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return item, n + fn, err
	}
	n += fn
	if item.SellerId, fn, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return item, n + fn, err
	}
	n += fn
	if item.Available, fn, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return item, n + fn, err
	}
	n += fn
	if item.Views, fn, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return item, n + fn, err
	}
	n += fn
	if item.Searches, fn, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return item, n + fn, err
	}
	n += fn
	if item.Featured, fn, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return item, n + fn, err
	}
	n += fn
	if item.CreatedAt, fn, err = raw.TimeUnixMicro.Unmarshal(bs[n:]); err != nil {
		return item, n + fn, err
	}
	n += fn
	if item.ExpiresAt, fn, err = raw.TimeUnixMicro.Unmarshal(bs[n:]); err != nil {
		return item, n + fn, err
	}
	n += fn
	if item.Vector, fn, err = unmarshalVector(bs[n:]); err != nil {
		return item, n + fn, err
	}
	n += fn
	return item, n, nil
}

func (itemMUS) Size(item Item) (size int) {
	size = IDMUS.Size(item.Id)
	size += ord.String.Size(item.Title)
	size += ord.String.Size(item.Description)
	size += varint.Float64.Size(item.Price)
	size += sizeStrings(item.Categories)
	size += ConditionMUS.Size(item.Condition)
	size += IDMUS.Size(item.LocalityId)
	size += IDMUS.Size(item.SellerId)
	size += ord.Bool.Size(item.Available)
	size += varint.Int64.Size(item.Views)
	size += varint.Int64.Size(item.Searches)
	size += ord.Bool.Size(item.Featured)
	size += raw.TimeUnixMicro.Size(item.CreatedAt)
	size += raw.TimeUnixMicro.Size(item.ExpiresAt)
	size += sizeVector(item.Vector)
	return size
}

type provinceMUS struct{}

func (provinceMUS) Marshal(p Province, bs []byte) (n int) {
	n = IDMUS.Marshal(p.Id, bs)
	n += ord.String.Marshal(p.Name, bs[n:])
	return n
}

func (provinceMUS) Unmarshal(bs []byte) (p Province, n int, err error) {
	var fn int
	if p.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return p, n, err
	}
	if p.Name, fn, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return p, n + fn, err
	}
	n += fn
	return p, n, nil
}

func (provinceMUS) Size(p Province) int {
	return IDMUS.Size(p.Id) + ord.String.Size(p.Name)
}

type localityMUS struct{}

func (localityMUS) Marshal(l Locality, bs []byte) (n int) {
	n = IDMUS.Marshal(l.Id, bs)
	n += ord.String.Marshal(l.Name, bs[n:])
	n += IDMUS.Marshal(l.ProvinceId, bs[n:])
	return n
}

func (localityMUS) Unmarshal(bs []byte) (l Locality, n int, err error) {
	var fn int
	if l.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return l, n, err
	}
	if l.Name, fn, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return l, n + fn, err
	}
	n += fn
	if l.ProvinceId, fn, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return l, n + fn, err
	}
	n += fn
	return l, n, nil
}

func (localityMUS) Size(l Locality) int {
	return IDMUS.Size(l.Id) + ord.String.Size(l.Name) + IDMUS.Size(l.ProvinceId)
}

type sellerMUS struct{}

func (sellerMUS) Marshal(s Seller, bs []byte) (n int) {
	n = IDMUS.Marshal(s.Id, bs)
	n += ord.String.Marshal(s.Name, bs[n:])
	n += ord.String.Marshal(s.Contact, bs[n:])
	n += IDMUS.Marshal(s.LocalityId, bs[n:])
	n += raw.TimeUnixMicro.Marshal(s.CreatedAt, bs[n:])
	return n
}

func (sellerMUS) Unmarshal(bs []byte) (s Seller, n int, err error) {
	var fn int
	if s.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return s, n, err
	}
	if s.Name, fn, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return s, n + fn, err
	}
	n += fn
	if s.Contact, fn, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return s, n + fn, err
	}
	n += fn
	if s.LocalityId, fn, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return s, n + fn, err
	}
	n += fn
	if s.CreatedAt, fn, err = raw.TimeUnixMicro.Unmarshal(bs[n:]); err != nil {
		return s, n + fn, err
	}
	n += fn
	return s, n, nil
}

func (sellerMUS) Size(s Seller) int {
	return IDMUS.Size(s.Id) + ord.String.Size(s.Name) + ord.String.Size(s.Contact) +
		IDMUS.Size(s.LocalityId) + raw.TimeUnixMicro.Size(s.CreatedAt)
}
