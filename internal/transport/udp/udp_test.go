// SPDX-License-Identifier: MIT
package udp

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"testing"
	"time"

	applog "binaural/internal/log"
	"binaural/pkg/utils"
)

func TestMain(m *testing.M) {
	applog.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type failingSender struct {
	failAt int
	calls  int
}

func (f *failingSender) Send([]byte) error {
	f.calls++
	if f.calls == f.failAt {
		return errors.New("network down")
	}
	return nil
}

func TestNewStreamer_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		sender     Sender
		rate, size int
	}{
		{"nil sender", nil, 48000, 256},
		{"zero rate", &utils.MockSender{}, 0, 256},
		{"zero frames", &utils.MockSender{}, 48000, 0},
		{"frame too large", &utils.MockSender{}, 48000, 40000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if s, err := NewStreamer(tt.sender, tt.rate, tt.size); err == nil || s != nil {
				t.Errorf("NewStreamer() = %v, %v, want error", s, err)
			}
		})
	}
}

func TestStreamer_Interval(t *testing.T) {
	t.Parallel()

	s, err := NewStreamer(&utils.MockSender{}, 48000, 480)
	if err != nil {
		t.Fatalf("NewStreamer: %v", err)
	}
	if got := s.Interval(); got != 10*time.Millisecond {
		t.Errorf("Interval() = %v, want 10ms", got)
	}
}

func TestStreamer_Packets(t *testing.T) {
	t.Parallel()

	mock := &utils.MockSender{}
	s, err := NewStreamer(mock, 48000, 4)
	if err != nil {
		t.Fatalf("NewStreamer: %v", err)
	}
	fixed := time.Unix(1700000000, 42)
	s.now = func() time.Time { return fixed }

	// Two full frames of eight values and a partial third.
	stereo := make([]int16, 19)
	for i := range stereo {
		stereo[i] = int16(i*100 - 900)
	}

	n, err := s.Stream(context.Background(), stereo)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if n != 3 {
		t.Fatalf("Stream() sent %d packets, want 3", n)
	}

	packets := mock.Sent()
	if len(packets) != 3 {
		t.Fatalf("sender got %d packets, want 3", len(packets))
	}
	for i, raw := range packets {
		if len(raw) != HeaderSize+2*8 {
			t.Errorf("packet %d is %d bytes, want %d", i, len(raw), HeaderSize+16)
		}
		p, err := ParsePacket(raw)
		if err != nil {
			t.Fatalf("ParsePacket(%d): %v", i, err)
		}
		if p.Sequence != uint32(i+1) || p.SampleRate != 48000 || p.Timestamp != fixed.UnixNano() {
			t.Errorf("packet %d header = %+v", i, p)
		}
		for j, v := range p.Samples {
			idx := i*8 + j
			want := int16(0)
			if idx < len(stereo) {
				want = stereo[idx]
			}
			if v != want {
				t.Errorf("packet %d sample %d = %d, want %d", i, j, v, want)
			}
		}
	}
}

func TestStreamer_SequenceRestartsPerStream(t *testing.T) {
	t.Parallel()

	mock := &utils.MockSender{}
	s, _ := NewStreamer(mock, 48000, 2)
	for range 2 {
		if _, err := s.Stream(context.Background(), make([]int16, 4)); err != nil {
			t.Fatalf("Stream: %v", err)
		}
	}
	packets := mock.Sent()
	p, err := ParsePacket(packets[len(packets)-1])
	if err != nil || p.Sequence != 1 {
		t.Errorf("last packet = %+v, %v, want sequence 1", p, err)
	}
}

func TestStreamer_EmptyInput(t *testing.T) {
	t.Parallel()

	mock := &utils.MockSender{}
	s, _ := NewStreamer(mock, 48000, 2)
	n, err := s.Stream(context.Background(), nil)
	if n != 0 || err != nil || len(mock.Sent()) != 0 {
		t.Errorf("Stream(nil) = %d, %v, sent %d", n, err, len(mock.Sent()))
	}
}

func TestStreamer_SendErrorSkipsPacket(t *testing.T) {
	t.Parallel()

	sender := &failingSender{failAt: 2}
	s, _ := NewStreamer(sender, 48000, 2)
	n, err := s.Stream(context.Background(), make([]int16, 12))
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if n != 2 || sender.calls != 3 {
		t.Errorf("sent %d of %d attempts, want 2 of 3", n, sender.calls)
	}
}

func TestStreamer_Cancel(t *testing.T) {
	t.Parallel()

	mock := &utils.MockSender{}
	s, _ := NewStreamer(mock, 8000, 8000) // one packet per second
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	n, err := s.Stream(ctx, make([]int16, 5*2*8000))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Stream() error = %v, want %v", err, context.DeadlineExceeded)
	}
	if n != 1 {
		t.Errorf("sent %d packets before cancel, want 1", n)
	}
}

func TestParsePacket_Malformed(t *testing.T) {
	t.Parallel()

	good := make([]byte, HeaderSize+4)
	good[17] = 2

	tests := []struct {
		name string
		data []byte
	}{
		{"short header", make([]byte, HeaderSize-1)},
		{"count too large", good[:HeaderSize+2]},
		{"trailing bytes", append(append([]byte(nil), good...), 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ParsePacket(tt.data); !errors.Is(err, ErrPacket) {
				t.Errorf("ParsePacket() = %v, want %v", err, ErrPacket)
			}
		})
	}
	if p, err := ParsePacket(good); err != nil || len(p.Samples) != 2 {
		t.Errorf("ParsePacket(good) = %+v, %v", p, err)
	}
}

func TestUDPSender_Loopback(t *testing.T) {
	ln, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Skipf("loopback UDP unavailable: %v", err)
	}
	defer ln.Close()

	sender, err := NewUDPSender(ln.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewUDPSender: %v", err)
	}
	if sender.Target().Port != ln.LocalAddr().(*net.UDPAddr).Port {
		t.Errorf("Target() = %v", sender.Target())
	}

	s, _ := NewStreamer(sender, 48000, 2)
	if _, err := s.Stream(context.Background(), []int16{1, -1, 2, -2}); err != nil {
		t.Fatalf("Stream: %v", err)
	}

	buf := make([]byte, 1024)
	ln.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := ln.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("ReadFromUDP: %v", err)
	}
	p, err := ParsePacket(buf[:n])
	if err != nil {
		t.Fatalf("ParsePacket: %v", err)
	}
	if len(p.Samples) != 4 || p.Samples[3] != -2 {
		t.Errorf("received %+v", p)
	}

	if err := sender.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := sender.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := sender.Send([]byte{0}); !errors.Is(err, ErrSenderClosed) {
		t.Errorf("Send after Close = %v, want %v", err, ErrSenderClosed)
	}
}

func TestNewUDPSender_BadAddress(t *testing.T) {
	t.Parallel()
	if _, err := NewUDPSender("not an address"); err == nil {
		t.Error("expected resolve error")
	}
}
