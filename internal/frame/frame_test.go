// SPDX-License-Identifier: MIT
package frame

import (
	"fmt"
	"testing"
)

func TestCount(t *testing.T) {
	tests := []struct {
		length   int
		size     int
		expected int
	}{
		{0, 256, 0},
		{-5, 256, 0},
		{1, 256, 1},
		{255, 256, 1},
		{256, 256, 1},
		{257, 256, 2},
		{1024, 256, 4},
		{7, 1, 7},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d→%d", tt.length, tt.size, tt.expected), func(t *testing.T) {
			if got := Count(tt.length, tt.size); got != tt.expected {
				t.Errorf("Count(%d, %d) = %d, expected %d", tt.length, tt.size, got, tt.expected)
			}
		})
	}
}

func TestCountPanicsOnInvalidSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Count with size 0 should panic")
		}
	}()
	Count(10, 0)
}

func TestPadAlignedReturnsInput(t *testing.T) {
	in := []float32{1, 2, 3, 4}
	out := Pad(in, 2)

	if &out[0] != &in[0] {
		t.Error("Pad copied an already aligned buffer")
	}
}

func TestPadPartialFrame(t *testing.T) {
	in := []float32{1, 2, 3, 4, 5}
	out := Pad(in, 4)

	if len(out) != 8 {
		t.Fatalf("len(Pad) = %d, want 8", len(out))
	}
	for i, v := range in {
		if out[i] != v {
			t.Errorf("out[%d] = %v, want %v", i, out[i], v)
		}
	}
	for i := len(in); i < len(out); i++ {
		if out[i] != 0 {
			t.Errorf("padding out[%d] = %v, want 0", i, out[i])
		}
	}

	out[0] = 99
	if in[0] == 99 {
		t.Error("Pad of a partial buffer must not alias the input")
	}
}

func TestExtend(t *testing.T) {
	out := Extend([]int16{7, 8, 9}, 6)
	want := []int16{7, 8, 9, 0, 0, 0}

	if len(out) != len(want) {
		t.Fatalf("len(Extend) = %d, want %d", len(out), len(want))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %d, want %d", i, out[i], want[i])
		}
	}
}

func TestWindows(t *testing.T) {
	buf := []int{0, 1, 2, 3, 4, 5, 6}

	var got [][]int
	for i, w := range Windows(buf, 3) {
		if len(got) != i {
			t.Fatalf("window index %d out of order", i)
		}
		got = append(got, w)
	}

	if len(got) != 2 {
		t.Fatalf("Windows yielded %d windows, want 2 (partial tail dropped)", len(got))
	}
	if got[1][0] != 3 || got[1][2] != 5 {
		t.Errorf("second window = %v, want [3 4 5]", got[1])
	}
	if cap(got[0]) != 3 {
		t.Errorf("window capacity = %d, want 3", cap(got[0]))
	}
}

func TestWindowsStopsOnBreak(t *testing.T) {
	count := 0
	for range Windows(make([]float32, 64), 8) {
		count++
		if count == 3 {
			break
		}
	}
	if count != 3 {
		t.Errorf("iterated %d windows after break, want 3", count)
	}
}

func BenchmarkPad(b *testing.B) {
	in := make([]float32, 1000)
	b.ReportAllocs()
	for b.Loop() {
		_ = Pad(in, 256)
	}
}
