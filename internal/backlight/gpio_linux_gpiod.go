//go:build linux && (arm || arm64)

package backlight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/warthog618/go-gpiocdev"
)

// openGPIO drives the backlight enable pin as a digital output via the Linux
// GPIO character device. For panels without PWM dimming: any duty > 0 maps to
// ON, duty == 0 to OFF.
func openGPIO(pin int) (driver, error) {
	if pin <= 0 {
		return nil, fmt.Errorf("backlight: invalid gpio pin %d", pin)
	}

	// On Pi, header lines are commonly named "GPIO18" etc.
	lineName := fmt.Sprintf("GPIO%d", pin)

	chipCandidates := []string{"/dev/gpiochip0", "/dev/gpiochip4"}
	entries, _ := os.ReadDir("/dev")
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "gpiochip") {
			chipCandidates = append(chipCandidates, filepath.Join("/dev", e.Name()))
		}
	}

	for _, chipPath := range chipCandidates {
		chip, err := gpiocdev.NewChip(chipPath)
		if err != nil {
			continue
		}
		offset, err := chip.FindLine(lineName)
		if err != nil {
			_ = chip.Close()
			continue
		}
		line, err := chip.RequestLine(offset, gpiocdev.AsOutput(1), gpiocdev.WithConsumer("gpsclock-backlight"))
		if err != nil {
			_ = chip.Close()
			continue
		}
		return &gpiodOutput{chip: chip, line: line}, nil
	}
	return nil, fmt.Errorf("backlight: gpio line %q not found (or busy)", lineName)
}

type gpiodOutput struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

func (g *gpiodOutput) SetFrequencyHz(hz int) error {
	// Digital on/off backend ignores PWM frequency.
	return nil
}

func (g *gpiodOutput) SetDutyPercent(p float64) error {
	if g == nil || g.line == nil {
		return fmt.Errorf("backlight: gpio driver not initialized")
	}
	v := 0
	if p > 0 {
		v = 1
	}
	return g.line.SetValue(v)
}

func (g *gpiodOutput) Close() error {
	if g == nil || g.line == nil {
		return nil
	}
	// Leave the panel visible on shutdown.
	_ = g.line.SetValue(1)
	err := g.line.Close()
	g.line = nil
	if g.chip != nil {
		_ = g.chip.Close()
		g.chip = nil
	}
	return err
}
