// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"binaural/internal/frame"
	applog "binaural/internal/log"
)

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Starts at 1 per stream  |
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Sample Rate       | uint32         | 4            | Hz                      |
| Sample Count      | uint16         | 2            | Interleaved values (N)  |
| Samples           | []int16        | N * 2        | Left/right PCM pairs    |
+-----------------------------------------------------------------------------+
*/

// HeaderSize is the number of bytes preceding the samples.
const HeaderSize = 4 + 8 + 4 + 2

// maxSamples is the most values a packet's count field can describe.
const maxSamples = 1<<16 - 1

// ErrPacket is returned by ParsePacket for malformed datagrams.
var ErrPacket = errors.New("udp: malformed packet")

// Packet is one decoded datagram.
type Packet struct {
	Sequence   uint32
	Timestamp  int64
	SampleRate uint32
	Samples    []int16
}

// Streamer sends interleaved stereo PCM one engine frame per datagram,
// paced to the audio clock.
type Streamer struct {
	sender     Sender
	sampleRate int
	frameSize  int
	interval   time.Duration
	now        func() time.Time

	sequenceNum  uint32
	packetBuffer *bytes.Buffer
}

// NewStreamer creates a streamer for frames of frameSize samples per channel.
func NewStreamer(sender Sender, sampleRate, frameSize int) (*Streamer, error) {
	if sender == nil {
		return nil, fmt.Errorf("Streamer: UDP sender cannot be nil")
	}
	if sampleRate <= 0 || frameSize <= 0 {
		return nil, fmt.Errorf("Streamer: invalid stream format (Rate: %d, Frames: %d)", sampleRate, frameSize)
	}
	if 2*frameSize > maxSamples {
		return nil, fmt.Errorf("Streamer: frame size %d exceeds packet limit", frameSize)
	}

	interval := time.Duration(frameSize) * time.Second / time.Duration(sampleRate)
	applog.Infof("Streamer: Initializing (Interval: %s, Frames: %d)", interval, frameSize)

	return &Streamer{
		sender:       sender,
		sampleRate:   sampleRate,
		frameSize:    frameSize,
		interval:     interval,
		now:          time.Now,
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Interval is the audio duration carried by one packet.
func (s *Streamer) Interval() time.Duration {
	return s.interval
}

// Stream sends stereo frame by frame, one packet per interval, and returns
// the number of packets sent. The final frame is zero-padded. Send errors
// are logged and skipped; ctx cancellation stops the stream.
func (s *Streamer) Stream(ctx context.Context, stereo []int16) (int, error) {
	s.sequenceNum = 0
	width := 2 * s.frameSize

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	sent := 0
	for i, w := range frame.Windows(frame.Pad(stereo, width), width) {
		if i > 0 {
			select {
			case <-ctx.Done():
				return sent, ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return sent, err
		}

		if err := s.sendFrame(w); err != nil {
			applog.Warnf("Streamer: Dropped packet %d: %v", s.sequenceNum, err)
			continue
		}
		sent++
	}
	applog.Debugf("Streamer: Stream finished (Packets: %d)", sent)
	return sent, nil
}

func (s *Streamer) sendFrame(samples []int16) error {
	s.sequenceNum++
	s.packetBuffer.Reset()

	err := binary.Write(s.packetBuffer, binary.BigEndian, s.sequenceNum)
	if err == nil {
		err = binary.Write(s.packetBuffer, binary.BigEndian, s.now().UnixNano())
	}
	if err == nil {
		err = binary.Write(s.packetBuffer, binary.BigEndian, uint32(s.sampleRate))
	}
	if err == nil {
		err = binary.Write(s.packetBuffer, binary.BigEndian, uint16(len(samples)))
	}
	if err == nil {
		err = binary.Write(s.packetBuffer, binary.BigEndian, samples)
	}
	if err != nil {
		return fmt.Errorf("packing packet: %w", err)
	}

	return s.sender.Send(s.packetBuffer.Bytes())
}

// ParsePacket decodes a datagram produced by Streamer.
func ParsePacket(data []byte) (Packet, error) {
	if len(data) < HeaderSize {
		return Packet{}, fmt.Errorf("%w: %d bytes", ErrPacket, len(data))
	}
	p := Packet{
		Sequence:   binary.BigEndian.Uint32(data[0:]),
		Timestamp:  int64(binary.BigEndian.Uint64(data[4:])),
		SampleRate: binary.BigEndian.Uint32(data[12:]),
	}
	count := int(binary.BigEndian.Uint16(data[16:]))
	if len(data) != HeaderSize+2*count {
		return Packet{}, fmt.Errorf("%w: count %d, payload %d bytes", ErrPacket, count, len(data)-HeaderSize)
	}
	p.Samples = make([]int16, count)
	for i := range p.Samples {
		p.Samples[i] = int16(binary.BigEndian.Uint16(data[HeaderSize+2*i:]))
	}
	return p, nil
}
