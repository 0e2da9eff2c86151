// SPDX-License-Identifier: MIT
package engine

import (
	"errors"

	"binaural/internal/hrtf"
	"binaural/internal/reverb"
)

var errFake = errors.New("fake backend failure")

// fakeBackend records acquisitions and releases and fails on demand.
type fakeBackend struct {
	failContext bool
	failHRTF    bool
	failEffect  bool
	failReverb  bool
	failClose   bool

	applyFailAt   int // 1-based Apply call that fails, 0 never
	processFailAt int // 1-based Process call that fails, 0 never
	decay         int

	contexts int
	events   []string
	applies  []hrtf.Params
	params   []reverb.Parameters
}

func (b *fakeBackend) NewContext(s Settings) (Context, error) {
	if b.failContext {
		return nil, errFake
	}
	b.contexts++
	b.events = append(b.events, "open context")
	return &fakeContext{b: b, settings: s}, nil
}

type fakeContext struct {
	b        *fakeBackend
	settings Settings
}

func (c *fakeContext) LoadHRTF() (HRTF, error) {
	if c.b.failHRTF {
		return nil, errFake
	}
	c.b.events = append(c.b.events, "open hrtf")
	return &fakeCloser{b: c.b, name: "hrtf"}, nil
}

func (c *fakeContext) NewBinauralEffect(HRTF) (BinauralEffect, error) {
	if c.b.failEffect {
		return nil, errFake
	}
	c.b.events = append(c.b.events, "open effect")
	return &fakeEffect{fakeCloser: fakeCloser{b: c.b, name: "effect"}}, nil
}

func (c *fakeContext) NewReverb() (Reverb, error) {
	if c.b.failReverb {
		return nil, errFake
	}
	c.b.events = append(c.b.events, "open reverb")
	return &fakeReverb{fakeCloser: fakeCloser{b: c.b, name: "reverb"}}, nil
}

func (c *fakeContext) Close() error {
	c.b.events = append(c.b.events, "close context")
	return nil
}

type fakeCloser struct {
	b    *fakeBackend
	name string
}

func (f *fakeCloser) Close() error {
	f.b.events = append(f.b.events, "close "+f.name)
	if f.b.failClose {
		return errFake
	}
	return nil
}

// fakeEffect copies the mono frame to both ears.
type fakeEffect struct {
	fakeCloser
	calls int
}

func (f *fakeEffect) Apply(in []float32, p hrtf.Params, out []float32) error {
	f.calls++
	f.b.applies = append(f.b.applies, p)
	if f.calls == f.b.applyFailAt {
		return errFake
	}
	for i, s := range in {
		out[2*i] = s
		out[2*i+1] = s
	}
	return nil
}

// fakeReverb passes audio through unchanged.
type fakeReverb struct {
	fakeCloser
	calls int
}

func (f *fakeReverb) Process(in, out []float32) error {
	f.calls++
	if f.calls == f.b.processFailAt {
		return errFake
	}
	copy(out, in)
	return nil
}

func (f *fakeReverb) DecayFrames() int { return f.b.decay }

func (f *fakeReverb) SetParameters(p reverb.Parameters) {
	f.b.params = append(f.b.params, p)
}
