//go:build linux && (arm64 || amd64)

package touch

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// Linux input event constants (linux/input-event-codes.h).
const (
	evSyn = 0x00
	evKey = 0x01
	evAbs = 0x03

	synReport   = 0x00
	absX        = 0x00
	absY        = 0x01
	absPressure = 0x18
	btnTouch    = 0x14a
)

// sizeofInputEvent is the 64-bit struct input_event layout:
// two 8-byte timestamps, type, code, value.
const sizeofInputEvent = 24

// Evdev reads a Linux input event device (resistive touch controllers such as
// the ADS7846/XPT2046 expose one). A goroutine folds the event stream into
// complete touch reports; Read hands each report out at most once.
type Evdev struct {
	f *os.File

	mu      sync.Mutex
	pending Point
	fresh   bool

	done chan struct{}
}

func OpenEvdev(device string) (*Evdev, error) {
	fd, err := unix.Open(device, unix.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("touch: open %s: %w", device, err)
	}
	f := os.NewFile(uintptr(fd), device)
	if f == nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("touch: os.NewFile failed")
	}
	e := &Evdev{f: f, done: make(chan struct{})}
	go e.readLoop()
	return e, nil
}

func (e *Evdev) readLoop() {
	defer close(e.done)

	var cur Point
	touching := false
	buf := make([]byte, sizeofInputEvent)

	for {
		if _, err := fullRead(e.f, buf); err != nil {
			return
		}
		typ := binary.LittleEndian.Uint16(buf[16:18])
		code := binary.LittleEndian.Uint16(buf[18:20])
		value := int32(binary.LittleEndian.Uint32(buf[20:24]))

		switch typ {
		case evAbs:
			switch code {
			case absX:
				cur.X = int(value)
			case absY:
				cur.Y = int(value)
			case absPressure:
				cur.Pressure = int(value)
			}
		case evKey:
			if code == btnTouch {
				touching = value != 0
			}
		case evSyn:
			if code != synReport {
				continue
			}
			if touching || cur.Pressure > 0 {
				e.mu.Lock()
				e.pending = cur
				e.fresh = true
				e.mu.Unlock()
			}
		}
	}
}

func fullRead(f *os.File, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := f.Read(buf[n:])
		if err != nil {
			return n, err
		}
		n += m
	}
	return n, nil
}

// Read returns the most recent complete touch report, at most once.
func (e *Evdev) Read() (Point, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.fresh {
		return Point{}, false
	}
	e.fresh = false
	return e.pending, true
}

func (e *Evdev) Close() error {
	err := e.f.Close()
	<-e.done
	return err
}
