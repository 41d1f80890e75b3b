package hpack

import "testing"

// A pure static-table match never touches the ring.
func TestIndexStaticMethodOnly(t *testing.T) {
	tbl := New(4096, 0)

	got := tbl.Index(NewMethod("GET"))
	if got.Kind != Indexed || got.Idx != 2 {
		t.Errorf("Index(:method GET) = %+v, want Indexed(2)", got)
	}
	if tbl.Len() != 0 {
		t.Errorf("table length = %d, want 0", tbl.Len())
	}
}

// A static name without a value match indexes into the dynamic table using
// the static index as the name reference.
func TestIndexStaticNameDynamicValue(t *testing.T) {
	tbl := New(4096, 0)

	got := tbl.Index(NewStatus("200"))
	if got.Kind != Indexed || got.Idx != 8 {
		t.Errorf("Index(:status 200) = %+v, want Indexed(8)", got)
	}

	got = tbl.Index(NewStatus("201"))
	if got.Kind != InsertedValue || got.Idx != 8 {
		t.Errorf("Index(:status 201) #1 = %+v, want InsertedValue(8)", got)
	}

	got = tbl.Index(NewStatus("201"))
	if got.Kind != Indexed || got.Idx != 62 {
		t.Errorf("Index(:status 201) #2 = %+v, want Indexed(62)", got)
	}
}

// Repeated custom-name insertion, value reuse, and the newest-is-62 index
// numbering shifting older entries upward as new ones with the same name
// are appended.
func TestIndexCustomNameChain(t *testing.T) {
	tbl := New(4096, 0)

	got := tbl.Index(NewField("custom-foo", "bar"))
	if got.Kind != Inserted {
		t.Errorf("first custom-foo/bar = %+v, want Inserted", got)
	}

	got = tbl.Index(NewField("custom-foo", "bar"))
	if got.Kind != Indexed || got.Idx != 62 {
		t.Errorf("repeat custom-foo/bar = %+v, want Indexed(62)", got)
	}

	got = tbl.Index(NewField("custom-foo", "baz"))
	if got.Kind != InsertedValue || got.Idx != 63 {
		t.Errorf("custom-foo/baz = %+v, want InsertedValue(63)", got)
	}

	got = tbl.Index(NewField("custom-foo", "bar"))
	if got.Kind != Indexed || got.Idx != 63 {
		t.Errorf("custom-foo/bar after baz = %+v, want Indexed(63)", got)
	}
}

// A zero byte budget disables the dynamic table outright.
func TestIndexZeroMaxSize(t *testing.T) {
	tbl := New(0, 0)

	got := tbl.Index(NewField("a", "b"))
	if got.Kind != NotIndexed {
		t.Errorf("Index with max_size=0 = %+v, want NotIndexed", got)
	}
	if tbl.Len() != 0 {
		t.Errorf("table length = %d, want 0", tbl.Len())
	}
}

// A first entry that fits the budget is evicted to make room for a second,
// overlapping one once their combined size exceeds max_size.
func TestIndexEvictionOnInsert(t *testing.T) {
	tbl := New(64, 0)

	wantLen := 47 // "x" + 14 bytes of "y" + 32
	value := make([]byte, 14)
	for i := range value {
		value[i] = 'y'
	}
	first := NewField("x", string(value))
	if first.Len() != wantLen {
		t.Fatalf("first.Len() = %d, want %d", first.Len(), wantLen)
	}

	if got := tbl.Index(first); got.Kind != Inserted {
		t.Fatalf("first insert = %+v, want Inserted", got)
	}

	second := NewField("z", "w")
	if got := tbl.Index(second); got.Kind != Inserted {
		t.Fatalf("second insert = %+v, want Inserted", got)
	}

	if tbl.Len() != 1 {
		t.Errorf("table length = %d, want 1", tbl.Len())
	}
	if tbl.Size() != 34 {
		t.Errorf("table size = %d, want 34", tbl.Size())
	}
}

// A sensitive header never enters the table, but a later non-sensitive
// repeat of the same header still indexes by the matching static name.
func TestIndexSensitiveHeaderNeverIndexed(t *testing.T) {
	tbl := New(4096, 0)

	got := tbl.Index(NewSensitiveField("authorization", "secret"))
	if got.Kind != Name || got.Idx != 23 {
		t.Errorf("sensitive authorization = %+v, want Name(23)", got)
	}
	if tbl.Len() != 0 || tbl.Size() != 0 {
		t.Errorf("table len=%d size=%d after sensitive insert, want 0, 0", tbl.Len(), tbl.Size())
	}

	got = tbl.Index(NewField("authorization", "secret"))
	if got.Kind != InsertedValue || got.Idx != 23 {
		t.Errorf("non-sensitive authorization = %+v, want InsertedValue(23)", got)
	}
}

// A header whose cost exceeds 3/4 of the byte budget is never inserted.
func TestIndexOversizeHeaderRejected(t *testing.T) {
	tbl := New(64, 0)

	big := NewField("name", string(make([]byte, 64)))
	got := tbl.Index(big)
	if got.Kind != NotIndexed {
		t.Errorf("oversize header = %+v, want NotIndexed", got)
	}
	if tbl.Len() != 0 {
		t.Errorf("table length = %d, want 0", tbl.Len())
	}
}

// skip-value-index headers (e.g. set-cookie) never touch the dynamic table,
// even across repeated distinct values; since set-cookie has a static-table
// name entry, the result is a name reference to it, not NotIndexed.
func TestIndexSkipValueIndex(t *testing.T) {
	tbl := New(4096, 0)

	got := tbl.Index(NewField("set-cookie", "a=1"))
	if got.Kind != Name || got.Idx != 55 {
		t.Errorf("set-cookie #1 = %+v, want Name(55)", got)
	}

	got = tbl.Index(NewField("set-cookie", "b=2"))
	if got.Kind != Name || got.Idx != 55 {
		t.Errorf("set-cookie #2 = %+v, want Name(55)", got)
	}
	if tbl.Len() != 0 {
		t.Errorf("table length = %d, want 0", tbl.Len())
	}

	got = tbl.Index(NewPath("/other"))
	if got.Kind != Name || got.Idx != 4 {
		t.Errorf(":path skip-value = %+v, want Name(4)", got)
	}
}

// The accounted size never exceeds the byte budget.
func TestInvariantBudgetNeverExceeded(t *testing.T) {
	tbl := New(256, 0)

	for i := 0; i < 50; i++ {
		value := string(rune('a'+i%26)) + string(rune('0'+i%7))
		tbl.Index(NewField("k", value))
		if tbl.Size() > tbl.MaxSize() {
			t.Fatalf("iteration %d: size %d exceeds max_size %d", i, tbl.Size(), tbl.MaxSize())
		}
	}
}

// Between insertions of distinct names, an existing entry's dynamic index
// increases by exactly one for each newer entry inserted after it, provided
// no eviction occurs.
func TestInvariantIndexShiftsWithInsertion(t *testing.T) {
	tbl := New(65536, 0)

	tbl.Index(NewField("first", "v"))
	for i := 0; i < 5; i++ {
		name := string(rune('a' + i))
		tbl.Index(NewField(name, "v"))

		got := tbl.Index(NewField("first", "v"))
		want := 62 + i + 1
		if got.Kind != Indexed || got.Idx != want {
			t.Fatalf("after %d insertions, Index(first) = %+v, want Indexed(%d)", i+1, got, want)
		}
	}
}

// Idempotent re-indexing, no eviction in between.
func TestInvariantIdempotentHit(t *testing.T) {
	tbl := New(4096, 0)

	first := tbl.Index(NewField("custom", "value"))
	if first.Kind != Inserted {
		t.Fatalf("first insert = %+v, want Inserted", first)
	}

	second := tbl.Index(NewField("custom", "value"))
	if second.Kind != Indexed || second.Idx != 62 {
		t.Fatalf("second lookup = %+v, want Indexed(62)", second)
	}
}

// A sensitive header never changes ring length or accounted size.
func TestInvariantSensitiveIsolation(t *testing.T) {
	tbl := New(4096, 0)

	tbl.Index(NewField("warmup", "v"))
	lenBefore, sizeBefore := tbl.Len(), tbl.Size()

	tbl.Index(NewSensitiveField("cookie", "session=abc"))

	if tbl.Len() != lenBefore || tbl.Size() != sizeBefore {
		t.Errorf("sensitive insert changed table: len %d->%d, size %d->%d",
			lenBefore, tbl.Len(), sizeBefore, tbl.Size())
	}
}

// Resizing to zero clears the table outright, and the zero budget then
// rejects any further insertion outright (the same 3/4-of-budget rule that
// applies to a table created with max_size 0).
func TestResizeToZeroClears(t *testing.T) {
	tbl := New(4096, 0)

	for i := 0; i < 10; i++ {
		tbl.Index(NewField(string(rune('a'+i)), "value"))
	}
	if tbl.Len() == 0 {
		t.Fatal("expected entries before resize")
	}

	tbl.Resize(0)
	if tbl.Len() != 0 || tbl.Size() != 0 {
		t.Errorf("after Resize(0): len=%d size=%d, want 0, 0", tbl.Len(), tbl.Size())
	}

	got := tbl.Index(NewField("another", "value"))
	if got.Kind != NotIndexed {
		t.Errorf("insert after Resize(0) = %+v, want NotIndexed", got)
	}
}

// Resizing to a smaller nonzero budget evicts down to fit without
// reallocating the index map.
func TestResizeShrinksWithoutRealloc(t *testing.T) {
	tbl := New(4096, 0)

	for i := 0; i < 10; i++ {
		tbl.Index(NewField(string(rune('a'+i)), "value"))
	}
	lenBefore := tbl.Len()
	if lenBefore == 0 {
		t.Fatal("expected entries before resize")
	}
	capBefore := tbl.Capacity()

	tbl.Resize(100)
	if tbl.Size() > tbl.MaxSize() {
		t.Errorf("after Resize(100): size %d exceeds max_size %d", tbl.Size(), tbl.MaxSize())
	}
	if tbl.Len() >= lenBefore {
		t.Errorf("after Resize(100): length %d, want fewer than %d", tbl.Len(), lenBefore)
	}
	if tbl.Capacity() != capBefore {
		t.Errorf("Capacity() changed from %d to %d, want unchanged", capBefore, tbl.Capacity())
	}
}

// Growing the index map beyond its initial 8 buckets must not disturb
// lookups of entries inserted before the grow.
func TestGrowPreservesLookups(t *testing.T) {
	tbl := New(1 << 20, 0)

	names := make([]Header, 0, 20)
	for i := 0; i < 20; i++ {
		name := string(rune('a'+i)) + string(rune('A'+i))
		h := NewField(name, "v")
		names = append(names, h)
		if got := tbl.Index(h); got.Kind != Inserted {
			t.Fatalf("insert %d = %+v, want Inserted", i, got)
		}
	}

	for i, h := range names {
		got := tbl.Index(h)
		if got.Kind != Indexed {
			t.Errorf("lookup %d (%s) = %+v, want Indexed", i, h.Name(), got)
		}
	}
}

func TestNewLazyAllocation(t *testing.T) {
	tbl := New(4096, 0)
	if tbl.Capacity() != 0 {
		t.Errorf("Capacity() = %d, want 0 before first insertion", tbl.Capacity())
	}

	tbl.Index(NewField("a", "b"))
	if tbl.Capacity() == 0 {
		t.Error("Capacity() = 0 after first insertion, want > 0")
	}
}

func TestCapacityRoundsUpToPowerOfTwo(t *testing.T) {
	tbl := New(4096, 5)
	if tbl.Capacity() == 0 {
		t.Fatal("Capacity() = 0 for non-zero initial capacity")
	}
	if n := len(tbl.indices); n != 8 {
		t.Errorf("index map has %d buckets for initial capacity 5, want 8", n)
	}
}
