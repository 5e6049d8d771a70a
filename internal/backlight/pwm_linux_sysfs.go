//go:build linux && (arm || arm64)

package backlight

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// sysfsPWM dims the panel backlight via a hardware PWM channel under
// /sys/class/pwm.
//
// On Raspberry Pi this needs `dtoverlay=pwm-2chan` (or equivalent) so the
// backlight pin is exposed as a PWM channel. The sysfs backend is chosen for
// Pi 3/4/5 compatibility; Pi 5 kernels break memory-mapped GPIO libraries.
type sysfsPWM struct {
	chipPath string // /sys/class/pwm/pwmchipN
	pwmPath  string // /sys/class/pwm/pwmchipN/pwmM
	channel  int

	periodNS uint64
	enabled  bool
}

var pwmSysfsBase = "/sys/class/pwm"

func openPWM(pin int) (driver, error) {
	// Channel 0 maps to GPIO18 with the pwm-2chan overlay; other pins are not
	// wired up yet.
	if pin != 18 {
		return nil, fmt.Errorf("backlight: sysfs pwm supports only pin=18 for now")
	}

	chipPath, channel, err := findPWMChip()
	if err != nil {
		return nil, err
	}

	d := &sysfsPWM{
		chipPath: chipPath,
		channel:  channel,
		pwmPath:  filepath.Join(chipPath, fmt.Sprintf("pwm%d", channel)),
	}
	if err := d.ensureExported(); err != nil {
		return nil, err
	}
	if err := d.writeBool("enable", false); err == nil {
		d.enabled = false
	}
	return d, nil
}

func findPWMChip() (chipPath string, channel int, err error) {
	base := pwmSysfsBase
	entries, err := os.ReadDir(base)
	if err != nil {
		return "", 0, fmt.Errorf("backlight: read %s: %w", base, err)
	}

	// Prefer pwmchip0 if present (common on Pi). sysfs pwmchipN entries are
	// commonly symlinks, not directories.
	preferred := []string{"pwmchip0", "pwmchip1", "pwmchip2"}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "pwmchip") {
			seen[e.Name()] = true
		}
	}
	candidates := make([]string, 0, len(seen))
	for _, name := range preferred {
		if seen[name] {
			candidates = append(candidates, name)
			delete(seen, name)
		}
	}
	for name := range seen {
		candidates = append(candidates, name)
	}

	for _, name := range candidates {
		chip := filepath.Join(base, name)
		n, rerr := readInt(filepath.Join(chip, "npwm"))
		if rerr != nil || n <= 0 {
			continue
		}
		return chip, 0, nil
	}
	return "", 0, fmt.Errorf("backlight: no sysfs pwmchip found (is the pwm overlay enabled?)")
}

func (d *sysfsPWM) ensureExported() error {
	if _, err := os.Stat(d.pwmPath); err == nil {
		return nil
	}
	exportPath := filepath.Join(d.chipPath, "export")
	if err := writeSysfs(exportPath, strconv.Itoa(d.channel)); err != nil {
		// Already exported by someone else is fine.
		if _, statErr := os.Stat(d.pwmPath); statErr == nil {
			return nil
		}
		return fmt.Errorf("backlight: export pwm: %w", err)
	}

	// Wait briefly for the sysfs node to appear.
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(d.pwmPath); err == nil {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, err := os.Stat(d.pwmPath); err != nil {
		return fmt.Errorf("backlight: pwm path not created after export: %w", err)
	}
	return nil
}

func (d *sysfsPWM) Close() error {
	// Leave the panel at full brightness rather than dark.
	_ = d.SetDutyPercent(100)
	return nil
}

func (d *sysfsPWM) SetFrequencyHz(hz int) error {
	if hz <= 0 {
		return fmt.Errorf("backlight: invalid frequency %d", hz)
	}
	periodNS := uint64(1_000_000_000 / hz)
	if periodNS == 0 {
		periodNS = 1
	}

	// Disable before changing the period (common sysfs requirement).
	_ = d.writeBool("enable", false)
	d.enabled = false

	if err := d.writeUint("period", periodNS); err != nil {
		return err
	}
	d.periodNS = periodNS

	if err := d.writeBool("enable", true); err != nil {
		return err
	}
	d.enabled = true
	return nil
}

func (d *sysfsPWM) SetDutyPercent(p float64) error {
	if p < 0 {
		p = 0
	} else if p > 100 {
		p = 100
	}
	if d.periodNS == 0 {
		// Conservative default if SetFrequencyHz wasn't called.
		d.periodNS = 1_000_000_000 / 1000
	}

	duty := uint64(math.Round(float64(d.periodNS) * (p / 100.0)))
	if duty > d.periodNS {
		duty = d.periodNS
	}
	if err := d.writeUint("duty_cycle", duty); err != nil {
		return err
	}
	if !d.enabled {
		_ = d.writeBool("enable", true)
		d.enabled = true
	}
	return nil
}

func (d *sysfsPWM) writeUint(name string, v uint64) error {
	return writeSysfs(filepath.Join(d.pwmPath, name), strconv.FormatUint(v, 10))
}

func (d *sysfsPWM) writeBool(name string, v bool) error {
	val := "0"
	if v {
		val = "1"
	}
	return writeSysfs(filepath.Join(d.pwmPath, name), val)
}

func writeSysfs(path string, value string) error {
	// Use O_WRONLY without O_TRUNC/O_CREATE: some sysfs attributes reject
	// truncation flags at open() time. Immediately after exporting a channel
	// udev may still be adjusting permissions, so retry transient failures.
	deadline := time.Now().Add(2 * time.Second)
	var lastErr error
	for {
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			lastErr = err
			if time.Now().Before(deadline) && isRetryableSysfsErr(err) {
				time.Sleep(25 * time.Millisecond)
				continue
			}
			return err
		}
		_, werr := f.WriteString(value)
		cerr := f.Close()
		if werr == nil && cerr == nil {
			return nil
		}
		if werr != nil {
			lastErr = werr
		} else {
			lastErr = cerr
		}
		if time.Now().Before(deadline) && isRetryableSysfsErr(lastErr) {
			time.Sleep(25 * time.Millisecond)
			continue
		}
		if werr != nil && cerr != nil {
			return errors.Join(werr, cerr)
		}
		if werr != nil {
			return werr
		}
		return cerr
	}
}

func isRetryableSysfsErr(err error) bool {
	return os.IsPermission(err) || os.IsNotExist(err) || errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.ENOENT)
}

func readInt(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	return strconv.Atoi(s)
}
