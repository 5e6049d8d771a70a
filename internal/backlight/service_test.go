package backlight

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeDriver struct {
	setFreqCalls atomic.Int64
	closeCalls   atomic.Int64
	lastDuty     atomic.Int64
	dutyCh       chan float64
}

func (d *fakeDriver) SetFrequencyHz(hz int) error {
	d.setFreqCalls.Add(1)
	return nil
}

func (d *fakeDriver) SetDutyPercent(p float64) error {
	d.lastDuty.Store(int64(p))
	select {
	case d.dutyCh <- p:
	default:
	}
	return nil
}

func (d *fakeDriver) Close() error {
	d.closeCalls.Add(1)
	d.lastDuty.Store(100)
	return nil
}

func withFakeDriver(t *testing.T) *fakeDriver {
	t.Helper()
	fake := &fakeDriver{dutyCh: make(chan float64, 64)}
	oldPWM := openPWMFn
	openPWMFn = func(pin int) (driver, error) { return fake, nil }
	t.Cleanup(func() { openPWMFn = oldPWM })
	return fake
}

func TestServiceStart_SetsDayBrightnessImmediately(t *testing.T) {
	fake := withFakeDriver(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := New(Config{Enable: true, UpdateInterval: time.Hour}, nil)
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer svc.Close()

	select {
	case duty := <-fake.dutyCh:
		if duty != 100 {
			t.Fatalf("initial duty=%v want 100", duty)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("expected initial duty set quickly")
	}
	if fake.setFreqCalls.Load() != 1 {
		t.Fatalf("SetFrequencyHz calls=%d want 1", fake.setFreqCalls.Load())
	}
}

func TestService_RampsDownAtNight(t *testing.T) {
	fake := withFakeDriver(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := New(Config{
		Enable:         true,
		NightDuty:      20,
		RampStepPct:    40,
		UpdateInterval: time.Millisecond,
	}, func() (int, bool) { return 23, true })
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer svc.Close()

	// 100 -> 60 -> 20, never below the night duty.
	want := []float64{100, 60, 20}
	for _, w := range want {
		select {
		case duty := <-fake.dutyCh:
			if duty != w {
				t.Fatalf("duty=%v want %v", duty, w)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for duty %v", w)
		}
	}

	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		if s := svc.Snapshot(); s.Duty == 20 && s.Night {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("snapshot=%+v want duty=20 night=true", svc.Snapshot())
}

func TestService_HoldsDayBrightnessWhileTimeUnknown(t *testing.T) {
	fake := withFakeDriver(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := New(Config{Enable: true, UpdateInterval: time.Millisecond}, nil)
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer svc.Close()

	<-fake.dutyCh // initial day duty
	time.Sleep(50 * time.Millisecond)
	if got := fake.lastDuty.Load(); got != 100 {
		t.Fatalf("duty=%d want 100 while local time is unknown", got)
	}
}

func TestServiceClose_LeavesPanelVisible(t *testing.T) {
	fake := withFakeDriver(t)

	ctx, cancel := context.WithCancel(context.Background())
	svc := New(Config{
		Enable:         true,
		NightDuty:      10,
		RampStepPct:    100,
		UpdateInterval: time.Millisecond,
	}, func() (int, bool) { return 2, true })
	if err := svc.Start(ctx); err != nil {
		cancel()
		t.Fatalf("Start: %v", err)
	}

	<-fake.dutyCh
	cancel()
	svc.Close()
	if got := fake.lastDuty.Load(); got != 100 {
		t.Fatalf("duty after close=%d want 100", got)
	}
}

func TestClose_RacingTeardownClosesDriverOnce(t *testing.T) {
	fake := withFakeDriver(t)

	ctx, cancel := context.WithCancel(context.Background())
	svc := New(Config{Enable: true, UpdateInterval: time.Hour}, nil)
	if err := svc.Start(ctx); err != nil {
		cancel()
		t.Fatalf("Start: %v", err)
	}
	<-fake.dutyCh

	// Cancelling the context fires the watchdog teardown while the caller
	// runs its own Close; the driver must still be closed exactly once.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); cancel(); svc.Close() }()
	go func() { defer wg.Done(); svc.Close() }()
	wg.Wait()

	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) && fake.closeCalls.Load() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond) // let the watchdog finish too
	if got := fake.closeCalls.Load(); got != 1 {
		t.Fatalf("driver Close calls=%d want 1", got)
	}
}

func TestIsNight_WrapsMidnight(t *testing.T) {
	svc := New(Config{}, nil) // defaults: night 22..7
	cases := []struct {
		hour int
		want bool
	}{
		{21, false}, {22, true}, {23, true}, {0, true}, {3, true}, {6, true}, {7, false}, {12, false},
	}
	for _, tc := range cases {
		if got := svc.isNight(tc.hour); got != tc.want {
			t.Errorf("isNight(%d) = %v, want %v", tc.hour, got, tc.want)
		}
	}
}

func TestStepToward(t *testing.T) {
	cases := []struct {
		cur, target, step, want float64
	}{
		{100, 20, 5, 95},
		{22, 20, 5, 20},
		{20, 100, 5, 25},
		{98, 100, 5, 100},
		{50, 50, 5, 50},
	}
	for _, tc := range cases {
		if got := stepToward(tc.cur, tc.target, tc.step); got != tc.want {
			t.Errorf("stepToward(%v,%v,%v) = %v, want %v", tc.cur, tc.target, tc.step, got, tc.want)
		}
	}
}
