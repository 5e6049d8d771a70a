//go:build !linux || (!arm && !arm64)

package backlight

import "fmt"

// Stub backends for non-Linux and/or non-ARM platforms.

func openPWM(pin int) (driver, error) {
	return nil, fmt.Errorf("backlight: pwm unsupported on this platform")
}

func openGPIO(pin int) (driver, error) {
	return nil, fmt.Errorf("backlight: gpio unsupported on this platform")
}
