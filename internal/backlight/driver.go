package backlight

// driver is the minimal interface the backlight service needs from a
// PWM/GPIO backend. Duty is expressed in percent (0..100).
//
// Close should be best-effort and must leave the panel visible.
type driver interface {
	SetFrequencyHz(hz int) error
	SetDutyPercent(p float64) error
	Close() error
}

// Test seams.
var (
	openPWMFn  = openPWM
	openGPIOFn = openGPIO
)

func openDriver(backend string, pin int) (driver, error) {
	if backend == "gpio" {
		return openGPIOFn(pin)
	}
	return openPWMFn(pin)
}
