// Package backlight dims the panel at night and restores full brightness
// during the day, following the clock's local time.
package backlight

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

type Config struct {
	Enable bool

	// Backend selects "pwm" (dimmable, sysfs) or "gpio" (on/off).
	Backend string
	// Pin is BCM GPIO numbering.
	Pin int
	// PWMFrequencyHz is the dimming carrier; panels flicker below ~200 Hz.
	PWMFrequencyHz int

	// DayDuty/NightDuty are percent brightness (0-100).
	DayDuty   int
	NightDuty int
	// NightStartHour..DayStartHour (local) is the dim window.
	NightStartHour int
	DayStartHour   int

	// RampStepPct limits the brightness change per update so transitions are
	// not jarring.
	RampStepPct    int
	UpdateInterval time.Duration
}

type Snapshot struct {
	Enabled bool `json:"enabled"`

	Available bool    `json:"available"`
	Duty      int     `json:"duty"`
	Night     bool    `json:"night"`
	HourValid bool    `json:"hour_valid"`

	LastUpdateAt time.Time `json:"last_update_utc,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
}

// Service ramps the backlight between day and night duty. The local hour is
// supplied by the caller; ok=false (time not yet disciplined) holds day
// brightness.
type Service struct {
	cfg       Config
	localHour func() (hour int, ok bool)

	mu   sync.RWMutex
	snap Snapshot

	drvMu sync.Mutex
	drv   driver

	wg sync.WaitGroup

	stopOnce sync.Once
	stopCh   chan struct{}
}

func New(cfg Config, localHour func() (int, bool)) *Service {
	if cfg.Backend == "" {
		cfg.Backend = "pwm"
	}
	if cfg.Pin == 0 {
		cfg.Pin = 18
	}
	if cfg.PWMFrequencyHz <= 0 {
		cfg.PWMFrequencyHz = 1000
	}
	if cfg.DayDuty <= 0 || cfg.DayDuty > 100 {
		cfg.DayDuty = 100
	}
	if cfg.NightDuty <= 0 || cfg.NightDuty > 100 {
		cfg.NightDuty = 15
	}
	if cfg.NightStartHour <= 0 || cfg.NightStartHour > 23 {
		cfg.NightStartHour = 22
	}
	if cfg.DayStartHour <= 0 || cfg.DayStartHour > 23 {
		cfg.DayStartHour = 7
	}
	if cfg.RampStepPct <= 0 {
		cfg.RampStepPct = 5
	}
	if cfg.UpdateInterval <= 0 {
		cfg.UpdateInterval = time.Second
	}
	if localHour == nil {
		localHour = func() (int, bool) { return 0, false }
	}
	return &Service{cfg: cfg, localHour: localHour, stopCh: make(chan struct{})}
}

func (s *Service) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *Service) Close() {
	if s == nil {
		return
	}
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()

	// Detach under the lock: the ctx-done watchdog and the caller's teardown
	// can race here, and the driver must only be closed once.
	s.drvMu.Lock()
	drv := s.drv
	s.drv = nil
	s.drvMu.Unlock()
	if drv != nil {
		_ = drv.Close()
	}
}

// detachDriver releases a driver that failed bring-up without letting a
// concurrent Close reach it a second time.
func (s *Service) detachDriver(drv driver) {
	s.drvMu.Lock()
	if s.drv == drv {
		s.drv = nil
	}
	s.drvMu.Unlock()
	_ = drv.Close()
}

func (s *Service) setState(update func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update(&s.snap)
	s.snap.LastUpdateAt = time.Now().UTC()
}

func (s *Service) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("backlight: service is nil")
	}
	if !s.cfg.Enable {
		return nil
	}

	s.setState(func(sn *Snapshot) { sn.Enabled = true })

	drv, err := openDriver(s.cfg.Backend, s.cfg.Pin)
	if err != nil {
		s.setState(func(sn *Snapshot) { sn.LastError = err.Error() })
		return err
	}
	s.drvMu.Lock()
	s.drv = drv
	s.drvMu.Unlock()

	if err := drv.SetFrequencyHz(s.cfg.PWMFrequencyHz); err != nil {
		s.setState(func(sn *Snapshot) {
			sn.LastError = fmt.Sprintf("backlight: set pwm frequency failed: %v", err)
		})
		s.detachDriver(drv)
		return err
	}

	// Start at full brightness so a misconfigured schedule never boots dark.
	if err := drv.SetDutyPercent(float64(s.cfg.DayDuty)); err != nil {
		s.setState(func(sn *Snapshot) {
			sn.LastError = fmt.Sprintf("backlight: set pwm duty failed: %v", err)
		})
		s.detachDriver(drv)
		return err
	}
	s.setState(func(sn *Snapshot) {
		sn.Available = true
		sn.Duty = s.cfg.DayDuty
	})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runLoop(ctx, drv)
	}()

	go func() {
		<-ctx.Done()
		s.Close()
	}()
	return nil
}

func (s *Service) runLoop(ctx context.Context, drv driver) {
	t := time.NewTicker(s.cfg.UpdateInterval)
	defer t.Stop()

	duty := float64(s.cfg.DayDuty)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-t.C:
			hour, ok := s.localHour()
			night := ok && s.isNight(hour)
			target := float64(s.cfg.DayDuty)
			if night {
				target = float64(s.cfg.NightDuty)
			}

			next := stepToward(duty, target, float64(s.cfg.RampStepPct))
			if next == duty {
				s.setState(func(sn *Snapshot) {
					sn.Night = night
					sn.HourValid = ok
				})
				continue
			}
			if err := drv.SetDutyPercent(next); err != nil {
				s.setState(func(sn *Snapshot) {
					sn.LastError = fmt.Sprintf("backlight: set pwm duty failed: %v", err)
				})
				continue
			}
			duty = next
			s.setState(func(sn *Snapshot) {
				sn.Duty = int(math.Round(duty))
				sn.Night = night
				sn.HourValid = ok
				sn.LastError = ""
			})
		}
	}
}

// isNight handles windows that wrap midnight (22..7) as well as ones that
// don't (1..7 would mean NightStartHour=1).
func (s *Service) isNight(hour int) bool {
	start, end := s.cfg.NightStartHour, s.cfg.DayStartHour
	if start == end {
		return false
	}
	if start < end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}

func stepToward(cur, target, step float64) float64 {
	if cur == target {
		return cur
	}
	if cur < target {
		if cur+step > target {
			return target
		}
		return cur + step
	}
	if cur-step < target {
		return target
	}
	return cur - step
}
