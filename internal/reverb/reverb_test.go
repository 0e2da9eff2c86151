// SPDX-License-Identifier: MIT
package reverb

import (
	"errors"
	"math"
	"testing"
)

func newTestReverb(t testing.TB, p Parameters) *Reverb {
	t.Helper()

	r, err := New(44100)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.SetParameters(p)
	return r
}

func impulse(frames int) []float32 {
	buf := make([]float32, 2*frames)
	buf[0], buf[1] = 1, 1
	return buf
}

func peak(s []float32) float64 {
	var p float64
	for _, v := range s {
		p = math.Max(p, math.Abs(float64(v)))
	}
	return p
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	if _, err := New(0); !errors.Is(err, ErrSampleRate) {
		t.Errorf("New(0) error = %v, want %v", err, ErrSampleRate)
	}
}

func TestParametersClamp(t *testing.T) {
	t.Parallel()

	got := Parameters{
		RoomSize: -1,
		Damping:  2,
		WetLevel: float32(math.NaN()),
		DryLevel: 0.5,
		Width:    1,
	}.Clamp()
	want := Parameters{RoomSize: 0, Damping: 1, WetLevel: 0, DryLevel: 0.5, Width: 1}
	if got != want {
		t.Errorf("Clamp() = %+v, want %+v", got, want)
	}
}

func TestParametersFinite(t *testing.T) {
	t.Parallel()

	if !DefaultParameters.Finite() {
		t.Error("DefaultParameters.Finite() = false")
	}
	if (Parameters{Width: float32(math.Inf(1))}).Finite() {
		t.Error("Finite() = true with infinite width")
	}
}

func TestDecayFramesGrowsWithRoomSize(t *testing.T) {
	t.Parallel()

	small := newTestReverb(t, Parameters{RoomSize: 0.1})
	large := newTestReverb(t, Parameters{RoomSize: 0.9})

	if small.DecayFrames() <= 0 {
		t.Fatalf("small room DecayFrames = %d, want > 0", small.DecayFrames())
	}
	if large.DecayFrames() <= small.DecayFrames() {
		t.Errorf("DecayFrames large %d <= small %d", large.DecayFrames(), small.DecayFrames())
	}
}

func TestDecayFramesScalesWithSampleRate(t *testing.T) {
	t.Parallel()

	lo, _ := New(22050)
	hi, _ := New(88200)
	ratio := float64(hi.DecayFrames()) / float64(lo.DecayFrames())
	if math.Abs(ratio-4) > 0.05 {
		t.Errorf("decay ratio 88.2k/22.05k = %v, want ~4", ratio)
	}
}

func TestProcessSilence(t *testing.T) {
	t.Parallel()

	r := newTestReverb(t, DefaultParameters)
	buf := make([]float32, 2048)
	if err := r.Process(buf, buf); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if p := peak(buf); p != 0 {
		t.Errorf("silence peak = %v, want 0", p)
	}
}

func TestProcessDryOnly(t *testing.T) {
	t.Parallel()

	// DryLevel 0.5 scales to unity gain.
	r := newTestReverb(t, Parameters{DryLevel: 0.5, Width: 1})
	in := []float32{0.25, -0.5, 0.75, -1}
	out := make([]float32, len(in))
	if err := r.Process(in, out); err != nil {
		t.Fatalf("Process: %v", err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestProcessTailDecays(t *testing.T) {
	t.Parallel()

	r := newTestReverb(t, Parameters{RoomSize: 0.5, Damping: 0.5, WetLevel: 1, Width: 1})
	decay := r.DecayFrames()
	buf := impulse(decay + 1024)
	if err := r.Process(buf, buf); err != nil {
		t.Fatalf("Process: %v", err)
	}

	early := peak(buf[:2*decay/4])
	late := peak(buf[2*decay:])
	if early == 0 {
		t.Fatal("impulse produced no reverberation")
	}
	if late > early*1e-3 {
		t.Errorf("late peak %v not below early peak %v by 60 dB", late, early)
	}
}

func TestProcessStreamingMatchesWhole(t *testing.T) {
	t.Parallel()

	const frame = 512
	whole := newTestReverb(t, DefaultParameters)
	chunked := newTestReverb(t, DefaultParameters)

	in := impulse(4 * frame)
	want := make([]float32, len(in))
	if err := whole.Process(in, want); err != nil {
		t.Fatalf("Process: %v", err)
	}

	got := make([]float32, len(in))
	for i := 0; i < len(in); i += 2 * frame {
		if err := chunked.Process(in[i:i+2*frame], got[i:i+2*frame]); err != nil {
			t.Fatalf("Process chunk %d: %v", i/(2*frame), err)
		}
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d: chunked %v, whole %v", i, got[i], want[i])
		}
	}
	if peak(got[4*frame:]) == 0 {
		t.Error("no reverberation carried into later frames")
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	r := newTestReverb(t, Parameters{RoomSize: 0.8, WetLevel: 1, Width: 1})
	buf := impulse(4096)
	_ = r.Process(buf, buf)

	r.Reset()
	silence := make([]float32, 4096)
	_ = r.Process(silence, silence)
	if p := peak(silence); p != 0 {
		t.Errorf("peak after Reset = %v, want 0", p)
	}
}

func TestProcessBufferSize(t *testing.T) {
	t.Parallel()

	r := newTestReverb(t, DefaultParameters)
	tests := []struct {
		name    string
		in, out int
	}{
		{"odd", 3, 3},
		{"mismatch", 4, 6},
	}

	for _, tt := range tests {
		if err := r.Process(make([]float32, tt.in), make([]float32, tt.out)); !errors.Is(err, ErrBufferSize) {
			t.Errorf("%s: error = %v, want %v", tt.name, err, ErrBufferSize)
		}
	}
}

func TestProcessZeroAllocs(t *testing.T) {
	r := newTestReverb(t, DefaultParameters)
	buf := make([]float32, 2048)

	allocs := testing.AllocsPerRun(100, func() {
		_ = r.Process(buf, buf)
	})
	if allocs != 0 {
		t.Errorf("Process allocated %v times, want 0", allocs)
	}
}

func BenchmarkProcess(b *testing.B) {
	r := newTestReverb(b, DefaultParameters)
	buf := impulse(1024)

	b.ReportAllocs()
	for b.Loop() {
		_ = r.Process(buf, buf)
	}
}
