package gps

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Config controls the GPS reader.
//
// The clock's receivers are plain NMEA serial devices (u-blox class), usually
// /dev/ttyACM* or /dev/ttyUSB* at 9600 baud. RMC+GGA carry everything the
// clock consumes: UTC time/date, position, speed, course, altitude and
// satellite count.
//
// This is a best-effort bring-up service; failures must not bring down the
// clock, which keeps running with a degrading trust level instead.
//
// Device may be empty to auto-detect.
type Config struct {
	Enable bool
	Device string
	Baud   int
}

// Snapshot is the narrow decoder interface the rest of the clock consumes.
type Snapshot struct {
	Enabled bool `json:"enabled"`
	Valid   bool `json:"valid"`

	Device string `json:"device,omitempty"`
	Baud   int    `json:"baud,omitempty"`

	LatDeg   float64 `json:"lat_deg,omitempty"`
	LonDeg   float64 `json:"lon_deg,omitempty"`
	PosValid bool    `json:"pos_valid"`

	AltM       *float64 `json:"alt_m,omitempty"`
	SpeedKt    *float64 `json:"speed_kt,omitempty"`
	CourseDeg  *float64 `json:"course_deg,omitempty"`
	Satellites *int     `json:"satellites,omitempty"`
	HDOP       *float64 `json:"hdop,omitempty"`

	// SatSeq increments whenever the satellite count field updates; consumers
	// compare it against the last value they rendered.
	SatSeq uint64 `json:"-"`

	// UTC time/date of the most recent valid RMC, plus the wall-clock moment
	// it was decoded (fix age = now - TimeStampedAt).
	TimeValid            bool `json:"time_valid"`
	Hour, Minute, Second int  `json:"-"`
	Day, Month, Year     int  `json:"-"`
	TimeStampedAt        time.Time `json:"-"`

	LastFixUTC string `json:"last_fix_utc,omitempty"`
	LastError  string `json:"last_error,omitempty"`
}

// FixAge reports how long ago the time fields were decoded. A snapshot
// without valid time reports an arbitrarily large age.
func (s Snapshot) FixAge(now time.Time) time.Duration {
	if !s.TimeValid || s.TimeStampedAt.IsZero() {
		return time.Duration(1<<62 - 1)
	}
	return now.Sub(s.TimeStampedAt)
}

// Unit helpers: the canonical values are knots and metres; the display picks
// per the configured unit system.

func (s Snapshot) SpeedKmh() (float64, bool) {
	if s.SpeedKt == nil {
		return 0, false
	}
	return *s.SpeedKt * 1.852, true
}

func (s Snapshot) SpeedMph() (float64, bool) {
	if s.SpeedKt == nil {
		return 0, false
	}
	return *s.SpeedKt * 1.150779, true
}

func (s Snapshot) AltMeters() (float64, bool) {
	if s.AltM == nil {
		return 0, false
	}
	return *s.AltM, true
}

func (s Snapshot) AltFeet() (float64, bool) {
	if s.AltM == nil {
		return 0, false
	}
	return *s.AltM * 3.280839895013123, true
}

type Service struct {
	cfg Config

	cancel context.CancelFunc
	wg     sync.WaitGroup

	last atomic.Value // Snapshot

	mu     sync.Mutex
	closer io.Closer
}

func New(cfg Config) *Service {
	s := &Service{cfg: cfg}
	s.last.Store(Snapshot{Enabled: cfg.Enable, Device: cfg.Device, Baud: cfg.Baud})
	return s
}

func (s *Service) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("gps service is nil")
	}
	if !s.cfg.Enable {
		return nil
	}
	if ctx == nil {
		return fmt.Errorf("ctx is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	device := strings.TrimSpace(s.cfg.Device)
	if device == "" {
		device = autoDetectDevice()
		if device == "" {
			s.setErrorLocked("gps auto-detect failed: no /dev/ttyACM* or /dev/ttyUSB* found")
			return fmt.Errorf("gps auto-detect failed")
		}
	}

	baud := s.cfg.Baud
	if baud == 0 {
		baud = 9600
	}

	f, err := openSerial(device, baud)
	if err != nil {
		s.setErrorLocked(fmt.Sprintf("gps open failed device=%s baud=%d: %v", device, baud, err))
		return err
	}
	// Keep the file reference for Close().
	s.closer = f

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			_ = f.Close()
		}()

		log.Printf("gps enabled device=%s baud=%d", device, baud)

		reader := bufio.NewScanner(f)
		// NMEA sentences are typically < 82 chars, but allow some headroom.
		reader.Buffer(make([]byte, 0, 256), 4096)

		var st nmeaState
		st.device = device
		st.baud = baud

		for {
			select {
			case <-childCtx.Done():
				return
			default:
			}

			if !reader.Scan() {
				err := reader.Err()
				if err == nil {
					err = io.EOF
				}
				s.setError(fmt.Sprintf("gps read stopped: %v", err))
				return
			}

			line := strings.TrimSpace(reader.Text())
			if line == "" {
				continue
			}
			// Some receivers may include non-NMEA chatter; filter quickly.
			if !strings.HasPrefix(line, "$") {
				continue
			}

			sent, perr := parseNMEASentence(line)
			if perr != nil {
				// Avoid spamming on bad noise; just keep the last error.
				s.setError(perr.Error())
				continue
			}

			if updated := st.apply(time.Now().UTC(), sent); updated {
				s.last.Store(st.snapshot())
			}
		}
	}()

	// Publish initial snapshot.
	s.last.Store(Snapshot{Enabled: true, Device: device, Baud: baud})
	return nil
}

func (s *Service) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	cancel := s.cancel
	closer := s.closer
	s.cancel = nil
	s.closer = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if closer != nil {
		_ = closer.Close()
	}
	s.wg.Wait()
}

func (s *Service) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	v := s.last.Load()
	if v == nil {
		return Snapshot{}
	}
	return v.(Snapshot)
}

func (s *Service) setError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErrorLocked(msg)
}

func (s *Service) setErrorLocked(msg string) {
	cur := s.Snapshot()
	cur.LastError = msg
	// Do not force Valid=false here; transient parse issues shouldn't flip validity.
	s.last.Store(cur)
}

func autoDetectDevice() string {
	// Keep it intentionally tiny and predictable.
	candidates := []string{}
	for i := 0; i < 10; i++ {
		candidates = append(candidates, fmt.Sprintf("/dev/ttyACM%d", i))
	}
	for i := 0; i < 10; i++ {
		candidates = append(candidates, fmt.Sprintf("/dev/ttyUSB%d", i))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
