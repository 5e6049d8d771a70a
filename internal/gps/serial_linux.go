//go:build linux

package gps

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// baudBits maps the receiver rates the clock supports to termios speed bits.
// u-blox class modules ship at 9600 and are sometimes reconfigured to 38400
// or 115200; 4800 covers older SiRF units.
var baudBits = map[int]uint32{
	4800:   unix.B4800,
	9600:   unix.B9600,
	38400:  unix.B38400,
	115200: unix.B115200,
}

// openSerial puts the receiver's port into raw 8N1 mode. VMIN=1/VTIME=0 hands
// bytes to the reader as soon as the first one lands, keeping TimeStampedAt
// (and so the fix age the time discipline gates on) close to the sentence's
// arrival on the wire.
func openSerial(path string, baud int) (*os.File, error) {
	spd, ok := baudBits[baud]
	if !ok {
		return nil, fmt.Errorf("unsupported baud %d", baud)
	}

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, err
	}

	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	// No line editing, signals, flow control or CR/LF translation: the NMEA
	// scanner wants the byte stream untouched.
	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN

	t.Cflag &^= unix.CSIZE | unix.PARENB | unix.CBAUD
	t.Cflag |= unix.CS8 | spd
	t.Ispeed = spd
	t.Ospeed = spd

	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, t); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	return os.NewFile(uintptr(fd), path), nil
}
