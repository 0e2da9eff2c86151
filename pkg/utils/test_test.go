// SPDX-License-Identifier: MIT
package utils

import (
	"math"
	"os"
	"testing"
)

const (
	testSize       = 1024
	testSampleRate = 44100
	testFrequency  = 440.0 // A4 note
)

var (
	testComplexWave []float32
	testSineWave    []float32
)

func TestMain(m *testing.M) {
	testComplexWave = GenerateComplexWave(testSize, testSampleRate)
	testSineWave = GenerateSine(testFrequency, testSampleRate, testSize, 1)

	os.Exit(m.Run())
}

func TestMockSender(t *testing.T) {
	tests := []struct {
		name    string
		packets [][]byte
	}{
		{"None", nil},
		{"Single Packet", [][]byte{{1, 2, 3}}},
		{"Multiple Packets", [][]byte{{1}, {2, 3}, {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := &MockSender{}
			for _, p := range tt.packets {
				if err := ms.Send(p); err != nil {
					t.Fatalf("Send() error = %v", err)
				}
			}

			sent := ms.Sent()
			if len(sent) != len(tt.packets) {
				t.Fatalf("Sent() = %d packets, want %d", len(sent), len(tt.packets))
			}
			for i, p := range tt.packets {
				if len(p) == 0 {
					continue
				}
				p[0] = 0xFF // Modify original.
				if sent[i][0] == 0xFF {
					t.Errorf("packet %d stored by reference instead of copied", i)
				}
			}
		})
	}
}

func TestGenerateSine(t *testing.T) {
	if len(testSineWave) != testSize {
		t.Fatalf("len = %d, want %d", len(testSineWave), testSize)
	}
	if testSineWave[0] != 0 {
		t.Errorf("first sample = %v, want 0", testSineWave[0])
	}

	// Quarter period of 440 Hz at 44.1 kHz is ~25 samples.
	quarter := int(math.Round(testSampleRate / testFrequency / 4))
	if v := testSineWave[quarter]; v < 0.99 {
		t.Errorf("sample %d = %v, want near 1", quarter, v)
	}
	if rms := RMS(testSineWave); math.Abs(rms-1/math.Sqrt2) > 0.01 {
		t.Errorf("RMS = %v, want %v", rms, 1/math.Sqrt2)
	}
}

func TestGenerateComplexWaveBounded(t *testing.T) {
	if p := Peak(testComplexWave); p > 0.9 || p < 0.5 {
		t.Errorf("Peak = %v, want within (0.5, 0.9]", p)
	}
}

func TestGenerateImpulse(t *testing.T) {
	tests := []struct {
		size int
		amp  float32
	}{
		{0, 1},
		{1, 0.5},
		{64, -0.25},
	}

	for _, tt := range tests {
		s := GenerateImpulse(tt.size, tt.amp)
		if len(s) != tt.size {
			t.Fatalf("len = %d, want %d", len(s), tt.size)
		}
		if tt.size == 0 {
			continue
		}
		if s[0] != tt.amp || Peak(s) != float32(math.Abs(float64(tt.amp))) {
			t.Errorf("impulse(%d, %v) = first %v, peak %v", tt.size, tt.amp, s[0], Peak(s))
		}
	}
}

func TestPeakAndRMSEmpty(t *testing.T) {
	if Peak(nil) != 0 || RMS(nil) != 0 {
		t.Error("Peak/RMS of empty input not 0")
	}
}

func BenchmarkRMS(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		_ = RMS(testComplexWave)
	}
}
