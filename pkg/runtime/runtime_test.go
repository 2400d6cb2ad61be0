package runtime

import (
	"errors"
	"slices"
	"testing"
)

func TestStateCellsDefaultToZero(t *testing.T) {
	s := NewState([]int{1, 2, 3})
	if got := s.Cell(2, 5); got != 0 {
		t.Fatalf("expected undefined cell to read 0, got %d", got)
	}
	if err := s.Set(2, 2, 7); err != nil {
		t.Fatalf("Set: %v", err)
	}
	list, ok := s.List(2)
	if !ok || !slices.Equal(list, []int64{0, 0, 7}) {
		t.Fatalf("expected [0 0 7], got %v", list)
	}
	if err := s.Set(4, 0, 1); !errors.Is(err, ErrUnknownList) {
		t.Fatalf("expected ErrUnknownList, got %v", err)
	}
	if got := s.Addresses(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Fatalf("expected sorted addresses, got %v", got)
	}
}

func TestStateListEditing(t *testing.T) {
	s := NewState([]int{1})
	_ = s.Append(1, 1, 2, 3)
	_ = s.Insert(1, 1, 9)
	_ = s.Insert(1, 10, 4)
	list, _ := s.List(1)
	if !slices.Equal(list, []int64{1, 9, 2, 3, 4}) {
		t.Fatalf("unexpected list %v", list)
	}
	if v, ok := s.Remove(1, 1); !ok || v != 9 {
		t.Fatalf("expected to remove 9, got %d %v", v, ok)
	}
	if v, ok := s.Pop(1); !ok || v != 4 {
		t.Fatalf("expected to pop 4, got %d %v", v, ok)
	}
	if _, ok := s.Remove(1, 8); ok {
		t.Fatalf("expected out of range remove to fail")
	}
	s.Clear(1)
	if s.Len(1) != 0 {
		t.Fatalf("expected empty list after Clear")
	}
	if _, ok := s.Pop(1); ok {
		t.Fatalf("expected pop of empty list to fail")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewState([]int{1, 2})
	_ = s.Append(1, 5, 6)
	snap := s.Clone()
	_ = s.Set(1, 0, 100)
	_ = s.Append(2, 1)
	if snap.Cell(1, 0) != 5 || snap.Len(2) != 0 {
		t.Fatalf("snapshot changed with the live state: %v", snap)
	}
	s.Restore(snap)
	if !s.Equal(snap) {
		t.Fatalf("expected restored state %v to equal snapshot %v", s, snap)
	}
	_ = s.Set(1, 1, 0)
	if snap.Cell(1, 1) != 6 {
		t.Fatalf("restore shares lists with the snapshot")
	}
	if got := s.String(); got != "1:[5 0] 2:[]" {
		t.Fatalf("unexpected String %q", got)
	}
}

func TestApply(t *testing.T) {
	cases := []struct {
		op       string
		cur, src int64
		want     int64
	}{
		{OpAdd, 3, 4, 7},
		{OpSubtract, 3, 4, -1},
		{OpOverwrite, 3, 4, 4},
		{OpMultiply, -3, 4, -12},
		{OpDivide, 7, 2, 3},
		{OpDivide, -7, 2, -4},
		{OpMod, -7, 3, 2},
		{OpMod, 7, -3, -2},
		{OpExponent, 2, 10, 1024},
		{OpExponent, 2, -1, 0},
		{OpExponent, -1, -3, -1},
		{OpRoot, 27, 3, 3},
		{OpRoot, 26, 3, 2},
		{OpRoot, -27, 3, -3},
		{OpRoot, 1 << 62, 2, 1 << 31},
		{OpReverseSubtract, 3, 4, 1},
		{OpReverseDivide, 2, 9, 4},
		{OpReverseMod, 4, 9, 1},
		{OpReverseExponent, 3, 2, 8},
		{OpReverseRoot, 2, 81, 9},
	}
	for _, tc := range cases {
		got, err := Apply(tc.op, tc.cur, tc.src)
		if err != nil {
			t.Fatalf("%s(%d, %d): %v", tc.op, tc.cur, tc.src, err)
		}
		if got != tc.want {
			t.Fatalf("%s(%d, %d): expected %d, got %d", tc.op, tc.cur, tc.src, tc.want, got)
		}
	}
}

func TestApplyErrors(t *testing.T) {
	for _, tc := range []struct {
		op       string
		cur, src int64
	}{
		{OpDivide, 1, 0},
		{OpMod, 1, 0},
		{OpReverseDivide, 0, 5},
		{OpRoot, 4, 0},
		{OpRoot, -4, 2},
		{OpExponent, 0, -2},
	} {
		_, err := Apply(tc.op, tc.cur, tc.src)
		var arith *ArithmeticError
		if !errors.As(err, &arith) {
			t.Fatalf("%s(%d, %d): expected ArithmeticError, got %v", tc.op, tc.cur, tc.src, err)
		}
		if arith.Op != tc.op {
			t.Fatalf("expected op %s in error, got %s", tc.op, arith.Op)
		}
	}
	if _, err := Apply("shuffle", 1, 1); err == nil {
		t.Fatalf("expected unknown operation error")
	}
}
