// SPDX-License-Identifier: MIT
// Package utils holds signal generators, measurements and doubles shared by
// tests across the module.
package utils

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// MockSender records packets instead of transmitting them.
type MockSender struct {
	mu      sync.Mutex
	Packets [][]byte
}

// Send stores a copy of data for later inspection.
func (m *MockSender) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Packets = append(m.Packets, append([]byte(nil), data...))
	return nil
}

// Sent returns a snapshot of the recorded packets.
func (m *MockSender) Sent() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.Packets...)
}

// GenerateComplexWave returns a 440 Hz tone with two harmonics, peaking
// just below full scale.
func GenerateComplexWave(size int, sampleRate float64) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2 // 440Hz fundamental + harmonics
		buffer[i] = float32(signal * 0.9)
	}
	return buffer
}

// GenerateSine returns size samples of a sine at frequency Hz.
func GenerateSine(frequency, sampleRate float64, size int, amplitude float32) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = amplitude * float32(math.Sin(2*math.Pi*frequency*t))
	}
	return buffer
}

// GenerateImpulse returns size samples that are zero except the first.
func GenerateImpulse(size int, amplitude float32) []float32 {
	buffer := make([]float32, size)
	if size > 0 {
		buffer[0] = amplitude
	}
	return buffer
}

// Peak returns the largest absolute sample value.
func Peak(s []float32) float32 {
	if len(s) == 0 {
		return 0
	}
	v := toFloat64(s)
	return float32(math.Max(floats.Max(v), -floats.Min(v)))
}

// RMS returns the root mean square of s.
func RMS(s []float32) float64 {
	if len(s) == 0 {
		return 0
	}
	v := toFloat64(s)
	return math.Sqrt(floats.Dot(v, v) / float64(len(v)))
}

func toFloat64(s []float32) []float64 {
	v := make([]float64, len(s))
	for i, x := range s {
		v[i] = float64(x)
	}
	return v
}
