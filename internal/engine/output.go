// SPDX-License-Identifier: MIT
package engine

import "sync"

// Output is interleaved 16-bit stereo PCM returned by a processing call.
// The caller owns it until Release, after which Samples must not be used.
type Output struct {
	buf  *[]int16
	pool *sync.Pool
}

// Samples returns the interleaved L/R samples. It is nil for a nil or
// released Output.
func (o *Output) Samples() []int16 {
	if o == nil || o.buf == nil {
		return nil
	}
	return *o.buf
}

// Len returns the number of int16 samples (twice the number of stereo
// frames).
func (o *Output) Len() int {
	return len(o.Samples())
}

// Release returns the buffer for reuse by later calls. It is safe to call on
// a nil Output and more than once.
func (o *Output) Release() {
	if o == nil || o.buf == nil {
		return
	}
	buf := o.buf
	o.buf = nil
	if o.pool != nil {
		o.pool.Put(buf)
	}
}

// newOutput returns an Output of exactly n samples. Contents are
// unspecified; the pipelines overwrite every sample.
func (e *Engine) newOutput(n int) *Output {
	buf, _ := e.outputs.Get().(*[]int16)
	if buf == nil || cap(*buf) < n {
		s := make([]int16, n)
		buf = &s
	}
	*buf = (*buf)[:n]
	return &Output{buf: buf, pool: &e.outputs}
}
