package bigint

import "testing"

func TestAddSubRoundTrip(t *testing.T) {
	left := []uint64{0xffffffffffffffff, 0x1, 0, 0}
	right := []uint64{0x1, 0, 0, 0}
	sum := make([]uint64, 4)
	carry := Add(sum, left, right)
	if carry != 0 {
		t.Fatalf("unexpected carry: %d", carry)
	}
	if sum[0] != 0 || sum[1] != 2 {
		t.Fatalf("unexpected sum: %v", sum)
	}

	back := make([]uint64, 4)
	borrow := Sub(back, sum, right)
	if borrow != 0 {
		t.Fatalf("unexpected borrow: %d", borrow)
	}
	if Cmp(back, left) != 0 {
		t.Fatalf("round trip mismatch: got %v want %v", back, left)
	}
}

func TestCmp(t *testing.T) {
	a := []uint64{1, 0, 0, 0}
	b := []uint64{2, 0, 0, 0}
	if Cmp(a, b) != -1 {
		t.Fatalf("expected a < b")
	}
	if Cmp(b, a) != 1 {
		t.Fatalf("expected b > a")
	}
	if Cmp(a, a) != 0 {
		t.Fatalf("expected a == a")
	}
}

func TestShift(t *testing.T) {
	v := []uint64{0x8000000000000000, 0, 0, 0}
	carry := LShift1(v)
	if carry != 0 || v[0] != 0 || v[1] != 1 {
		t.Fatalf("unexpected lshift result: %v carry=%d", v, carry)
	}
	RShift1(v)
	if v[0] != 0x8000000000000000 || v[1] != 0 {
		t.Fatalf("unexpected rshift result: %v", v)
	}
}

func TestMulKnownValues(t *testing.T) {
	left := []uint64{2, 0, 0, 0}
	right := []uint64{3, 0, 0, 0}
	out := make([]uint64, 8)
	Mul(out, left, right)
	if out[0] != 6 {
		t.Fatalf("2*3 != 6: %v", out)
	}

	maxWord := []uint64{0xffffffffffffffff, 0, 0, 0}
	Mul(out, maxWord, maxWord)
	if out[0] != 1 || out[1] != 0xfffffffffffffffe {
		t.Fatalf("unexpected max*max product: %v", out)
	}
}

func TestNumBitsAndTestBit(t *testing.T) {
	v := []uint64{0, 0x8, 0, 0}
	if got := NumBits(v); got != 68 {
		t.Fatalf("NumBits = %d, want 68", got)
	}
	if !TestBit(v, 67) {
		t.Fatalf("expected bit 67 set")
	}
	if TestBit(v, 66) {
		t.Fatalf("expected bit 66 clear")
	}
}

func TestIsZero(t *testing.T) {
	if !IsZero(make([]uint64, 4)) {
		t.Fatalf("expected zero value to report zero")
	}
	nonzero := []uint64{0, 0, 0, 1}
	if IsZero(nonzero) {
		t.Fatalf("expected nonzero value to report nonzero")
	}
}
