// SPDX-License-Identifier: MIT
package hrtf

import (
	"math"
	"sync"

	"binaural/internal/direction"
	applog "binaural/internal/log"
	"binaural/pkg/bitint"

	"gonum.org/v1/gonum/floats"
)

// Spherical head model constants.
const (
	DefaultHeadRadius = 0.0875 // Average adult head radius (m).
	speedOfSound      = 343.0  // m/s at 20 °C.

	alphaMin = 0.1                // Head-shadow gain at the shadowed extreme.
	thetaMin = 150 * math.Pi / 180 // Angle from the ear axis of maximum shadow.

	gridStep      = 5.0 // Grid resolution in degrees.
	azimuthSteps  = int(360 / gridStep)
	elevationMax  = int(90 / gridStep)
	shadowSeconds = 0.002 // Head-shadow filter ring-out kept in each response.
)

// Ear axes in listener space (+X right).
var earAxes = [2][3]float64{
	{-1, 0, 0}, // left
	{1, 0, 0},  // right
}

// Option mutates dataset construction parameters.
type Option func(*Dataset) error

// WithVolume scales every response by gain.
func WithVolume(gain float64) Option {
	return func(d *Dataset) error {
		d.volume = gain
		return nil
	}
}

// WithHeadRadius sets the modelled head radius in metres.
func WithHeadRadius(radius float64) Option {
	return func(d *Dataset) error {
		if !(radius > 0) {
			return ErrHeadRadius
		}
		d.headRadius = radius
		return nil
	}
}

// WithWindow selects the window used to taper response tails.
func WithWindow(w WindowFunc) Option {
	return func(d *Dataset) error {
		d.window = w
		return nil
	}
}

type gridKey struct {
	azimuth   int // [0, azimuthSteps)
	elevation int // [-elevationMax, elevationMax]
}

// Dataset is a set of head-related impulse responses for one sample rate.
type Dataset struct {
	sampleRate int
	taps       int
	volume     float64
	headRadius float64
	window     WindowFunc
	taperCoefs []float64

	mu     sync.Mutex
	cache  map[gridKey]*[2][]float64
	closed bool
}

// LoadDataset builds a dataset for sampleRate. Responses are synthesized
// lazily and cached per grid point.
func LoadDataset(sampleRate int, opts ...Option) (*Dataset, error) {
	if sampleRate <= 0 {
		return nil, ErrSampleRate
	}

	d := &Dataset{
		sampleRate: sampleRate,
		volume:     1.0,
		headRadius: DefaultHeadRadius,
		window:     Hann,
		cache:      make(map[gridKey]*[2][]float64),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	// Longest possible interaural delay plus the head-shadow ring-out.
	maxDelay := d.headRadius / speedOfSound * (1 + math.Pi/2)
	d.taps = bitint.NextPowerOfTwo(int(math.Ceil(maxDelay*float64(sampleRate))) +
		int(math.Ceil(shadowSeconds*float64(sampleRate))))
	d.taperCoefs = taper(d.taps/4, d.window)

	applog.Debugf("HRTF: Dataset loaded (SampleRate: %d Hz, Taps: %d, HeadRadius: %.4f m)",
		sampleRate, d.taps, d.headRadius)

	return d, nil
}

// SampleRate returns the rate the responses were synthesized for.
func (d *Dataset) SampleRate() int { return d.sampleRate }

// Taps returns the length of every impulse response.
func (d *Dataset) Taps() int { return d.taps }

// Close drops cached responses. Effects bound to a closed dataset fail.
func (d *Dataset) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	d.cache = nil
	return nil
}

// Responses returns the left and right impulse responses for dir. For
// Nearest the returned slices are shared and must not be modified.
func (d *Dataset) Responses(dir direction.Vector, mode Interpolation) ([2][]float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return [2][]float64{}, ErrClosed
	}

	az, el := normalizeAngles(dir)

	if mode != Bilinear {
		key := gridKey{
			azimuth:   wrapAzimuth(int(math.Round(az / gridStep))),
			elevation: clampElevation(int(math.Round(el / gridStep))),
		}
		return *d.lookup(key), nil
	}

	a0 := math.Floor(az / gridStep)
	e0 := math.Floor(el / gridStep)
	fa := az/gridStep - a0
	fe := el/gridStep - e0

	blended := [2][]float64{make([]float64, d.taps), make([]float64, d.taps)}
	corners := [4]struct {
		da, de int
		w      float64
	}{
		{0, 0, (1 - fa) * (1 - fe)},
		{1, 0, fa * (1 - fe)},
		{0, 1, (1 - fa) * fe},
		{1, 1, fa * fe},
	}
	for _, c := range corners {
		if c.w == 0 {
			continue
		}
		key := gridKey{
			azimuth:   wrapAzimuth(int(a0) + c.da),
			elevation: clampElevation(int(e0) + c.de),
		}
		r := d.lookup(key)
		floats.AddScaled(blended[0], c.w, r[0])
		floats.AddScaled(blended[1], c.w, r[1])
	}
	return blended, nil
}

// lookup returns the cached responses for key, synthesizing them on first
// use. d.mu must be held.
func (d *Dataset) lookup(key gridKey) *[2][]float64 {
	if r, ok := d.cache[key]; ok {
		return r
	}

	az := float64(key.azimuth) * gridStep * math.Pi / 180
	el := float64(key.elevation) * gridStep * math.Pi / 180
	dir := [3]float64{
		math.Cos(el) * math.Sin(az),
		math.Sin(el),
		math.Cos(el) * math.Cos(az),
	}

	r := &[2][]float64{
		d.synthesize(dir, earAxes[0]),
		d.synthesize(dir, earAxes[1]),
	}
	d.cache[key] = r
	return r
}

// synthesize builds the response of one ear for a unit source direction.
func (d *Dataset) synthesize(dir, ear [3]float64) []float64 {
	fs := float64(d.sampleRate)
	a := d.headRadius
	c := speedOfSound

	cosTheta := dir[0]*ear[0] + dir[1]*ear[1] + dir[2]*ear[2]
	theta := math.Acos(math.Max(-1, math.Min(1, cosTheta)))

	// Woodworth delay relative to the head centre, shifted to be causal.
	var delay float64
	if theta < math.Pi/2 {
		delay = -a / c * math.Cos(theta)
	} else {
		delay = a / c * (theta - math.Pi/2)
	}
	delay += a / c
	offset := int(math.Round(delay * fs))

	// Head shadow: H(s) = (2w0 + alpha*s) / (2w0 + s), bilinear transformed.
	alpha := (1 + alphaMin/2) + (1-alphaMin/2)*math.Cos(theta/thetaMin*math.Pi)
	w0 := c / a
	k := 2 * fs
	den := 2*w0 + k
	b0 := (2*w0 + alpha*k) / den
	b1 := (2*w0 - alpha*k) / den
	a1 := (2*w0 - k) / den

	h := make([]float64, d.taps)
	var prev float64
	for n := 0; offset+n < d.taps; n++ {
		var y float64
		switch n {
		case 0:
			y = b0
		case 1:
			y = b1 - a1*prev
		default:
			y = -a1 * prev
		}
		h[offset+n] = y * d.volume
		prev = y
	}

	tail := d.taps - len(d.taperCoefs)
	for i, w := range d.taperCoefs {
		h[tail+i] *= w
	}
	return h
}

// normalizeAngles returns azimuth in [0, 360) and elevation in [-90, 90]
// degrees. Non-finite directions fall back to straight ahead.
func normalizeAngles(dir direction.Vector) (az, el float64) {
	az, el = dir.Azimuth(), dir.Elevation()
	if math.IsNaN(az) || math.IsNaN(el) || dir.Magnitude() == 0 {
		return 0, 0
	}
	if az < 0 {
		az += 360
	}
	return az, el
}

func wrapAzimuth(i int) int {
	i %= azimuthSteps
	if i < 0 {
		i += azimuthSteps
	}
	return i
}

func clampElevation(i int) int {
	return max(-elevationMax, min(elevationMax, i))
}
