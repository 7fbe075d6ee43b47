package mempool

import (
	"testing"
)

func TestAllocAndCopy(t *testing.T) {
	t.Parallel()
	p := New()

	a := p.Alloc(16)
	if len(a) != 16 {
		t.Fatalf("Alloc(16) len = %d", len(a))
	}
	b := p.Alloc(16)
	copy(a, "aaaaaaaaaaaaaaaa")
	copy(b, "bbbbbbbbbbbbbbbb")
	if a[0] != 'a' || b[0] != 'b' {
		t.Fatal("allocations overlap")
	}

	src := []byte("hello")
	d := p.Copy(src)
	src[0] = 'x'
	if string(d) != "hello" {
		t.Fatalf("Copy aliases its source: %q", d)
	}

	if p.Copy(nil) != nil {
		t.Fatal("Copy(nil) should be nil")
	}
	if p.Alloc(0) != nil {
		t.Fatal("Alloc(0) should be nil")
	}
}

func TestOversizedAlloc(t *testing.T) {
	t.Parallel()
	p := NewSized(64)
	big := p.Alloc(1024)
	if len(big) != 1024 {
		t.Fatalf("oversized alloc len = %d", len(big))
	}
}

func TestAppendDoesNotClobberNeighbor(t *testing.T) {
	t.Parallel()
	p := New()
	a := p.Alloc(4)
	b := p.Alloc(4)
	a = append(a, 'x') // must reallocate, capacity is capped
	copy(b, "bbbb")
	if b[0] != 'b' {
		t.Fatal("append into neighbor slab region")
	}
	_ = a
}

func TestReset(t *testing.T) {
	t.Parallel()
	p := New()
	p.Alloc(100)
	if p.Used() != 100 {
		t.Fatalf("Used = %d", p.Used())
	}
	p.Reset()
	if p.Used() != 0 {
		t.Fatalf("Used after reset = %d", p.Used())
	}
	if len(p.Alloc(8)) != 8 {
		t.Fatal("pool unusable after reset")
	}
}
