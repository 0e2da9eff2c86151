// SPDX-License-Identifier: MIT
package reverb

// comb is a feedback comb filter with a one-pole lowpass in the loop.
type comb struct {
	buf         []float32
	idx         int
	feedback    float32
	filterStore float32
	damp1       float32
	damp2       float32
}

func newComb(size int) *comb {
	return &comb{buf: make([]float32, size)}
}

func (c *comb) setDamp(d float32) {
	c.damp1 = d
	c.damp2 = 1 - d
}

func (c *comb) process(in float32) float32 {
	out := c.buf[c.idx]
	c.filterStore = out*c.damp2 + c.filterStore*c.damp1
	c.buf[c.idx] = in + c.filterStore*c.feedback

	if c.idx++; c.idx >= len(c.buf) {
		c.idx = 0
	}
	return out
}

func (c *comb) reset() {
	clear(c.buf)
	c.filterStore = 0
	c.idx = 0
}

// allpass is a Schroeder allpass diffuser.
type allpass struct {
	buf      []float32
	idx      int
	feedback float32
}

func newAllpass(size int) *allpass {
	return &allpass{buf: make([]float32, size), feedback: allpassFeedback}
}

func (a *allpass) process(in float32) float32 {
	bufOut := a.buf[a.idx]
	a.buf[a.idx] = in + bufOut*a.feedback

	if a.idx++; a.idx >= len(a.buf) {
		a.idx = 0
	}
	return bufOut - in
}

func (a *allpass) reset() {
	clear(a.buf)
	a.idx = 0
}
