// SPDX-License-Identifier: MIT
package transport

// Renderer turns mono audio and a direction into interleaved stereo PCM.
// Implementations must be safe for concurrent use; *render.Renderer is.
type Renderer interface {
	Render(mono []float32, x, y float32) ([]int16, error)
	RenderAt(mono []float32, cx, cy, screenWidth, screenHeight float64) ([]int16, error)
}

// RenderRequest is the JSON text message a client sends to the render server.
// When Screen is set the direction is derived from the object's on-screen
// position and X/Y are ignored.
type RenderRequest struct {
	X       float32   `json:"x"`
	Y       float32   `json:"y"`
	Screen  *Screen   `json:"screen,omitempty"`
	Samples []float32 `json:"samples"`
}

// Screen locates an object centre on a desktop of the given size, in pixels.
type Screen struct {
	CX     float64 `json:"cx"`
	CY     float64 `json:"cy"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ErrorReply is sent as a JSON text message when a request cannot be served.
type ErrorReply struct {
	Error string `json:"error"`
}
