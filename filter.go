package annie

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// Filter reports whether an entry id may appear in search results.
//
// A filter must be pure and safe for concurrent calls. Searches evaluate it
// at most once per candidate. A nil Filter accepts every entry.
type Filter func(id int64) bool

// AllowIDs accepts only the given ids.
func AllowIDs(ids ...int64) Filter {
	bm := roaring64.New()
	for _, id := range ids {
		bm.Add(uint64(id))
	}
	return AllowBitmap(bm)
}

// DenyIDs rejects the given ids and accepts everything else.
func DenyIDs(ids ...int64) Filter {
	return Not(AllowIDs(ids...))
}

// AllowBitmap accepts the ids contained in bm. Negative ids are stored as
// their two's complement. bm must not be modified while the filter is in use.
func AllowBitmap(bm *roaring64.Bitmap) Filter {
	return func(id int64) bool {
		return bm.Contains(uint64(id))
	}
}

// AllowRange accepts ids in [lo, hi) that fit in 32 bits. It suits dense
// non-negative id spaces.
func AllowRange(lo, hi uint32) Filter {
	bm := roaring.New()
	bm.AddRange(uint64(lo), uint64(hi))
	return func(id int64) bool {
		return id >= 0 && id <= int64(^uint32(0)) && bm.Contains(uint32(id))
	}
}

// And accepts an id when every non-nil filter accepts it.
func And(filters ...Filter) Filter {
	return func(id int64) bool {
		for _, f := range filters {
			if f != nil && !f(id) {
				return false
			}
		}
		return true
	}
}

// Or accepts an id when any filter accepts it. A nil filter accepts
// everything, so Or with a nil member accepts every id.
func Or(filters ...Filter) Filter {
	return func(id int64) bool {
		for _, f := range filters {
			if f == nil || f(id) {
				return true
			}
		}
		return false
	}
}

// Not inverts f. Not(nil) rejects everything.
func Not(f Filter) Filter {
	return func(id int64) bool {
		return f != nil && !f(id)
	}
}
