package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func requireErrEq(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %q, got nil", want)
	}
	if err.Error() != want {
		t.Fatalf("error=%q want %q", err.Error(), want)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeTempConfig(t, "gps:\n  enable: true\n  device: /dev/ttyAMA0\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.GPS.Baud != 9600 {
		t.Fatalf("baud=%d want 9600", cfg.GPS.Baud)
	}
	if cfg.Screen.GridLength != 6 {
		t.Fatalf("grid_length=%d want 6", cfg.Screen.GridLength)
	}
	if cfg.Screen.Units != "metric" {
		t.Fatalf("units=%q want metric", cfg.Screen.Units)
	}
	if cfg.Screen.Debounce != 300*time.Millisecond {
		t.Fatalf("debounce=%s want 300ms", cfg.Screen.Debounce)
	}
}

func TestLoad_GPSDeviceEmptyMeansAutoDetect(t *testing.T) {
	path := writeTempConfig(t, "gps:\n  enable: true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.GPS.Device != "" {
		t.Fatalf("device=%q want empty (auto-detect)", cfg.GPS.Device)
	}
	if cfg.GPS.Baud != 9600 {
		t.Fatalf("baud=%d want 9600", cfg.GPS.Baud)
	}
}

func TestLoad_PPSValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "RequiresGPS",
			body: "pps:\n  enable: true\n  line: 4\n",
			want: "pps.enable requires gps.enable",
		},
		{
			name: "RequiresLine",
			body: "gps:\n  enable: true\n  device: /dev/ttyAMA0\npps:\n  enable: true\n",
			want: "pps.line is required when pps.enable is true",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTempConfig(t, tc.body)
			_, err := Load(path)
			requireErrEq(t, err, tc.want)
		})
	}
}

func TestLoad_PPSChipDefault(t *testing.T) {
	path := writeTempConfig(t, "gps:\n  enable: true\n  device: /dev/ttyAMA0\npps:\n  enable: true\n  line: 4\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.PPS.Chip != "gpiochip0" {
		t.Fatalf("chip=%q want gpiochip0", cfg.PPS.Chip)
	}
}

func TestLoad_ScreenValidation(t *testing.T) {
	path := writeTempConfig(t, "screen:\n  grid_length: 11\n")
	_, err := Load(path)
	requireErrEq(t, err, "screen.grid_length must be 1..10 (or 0 for the default)")

	path = writeTempConfig(t, "screen:\n  units: imperial\n")
	_, err = Load(path)
	requireErrEq(t, err, "screen.units must be \"metric\" or \"us\"")
}

func TestLoad_MQTTRequiresBroker(t *testing.T) {
	path := writeTempConfig(t, "mqtt:\n  enable: true\n")
	_, err := Load(path)
	requireErrEq(t, err, "mqtt.broker is required when mqtt.enable is true")
}

func TestLoad_MQTTClientIDDefault(t *testing.T) {
	path := writeTempConfig(t, "mqtt:\n  enable: true\n  broker: tcp://127.0.0.1:1883\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.MQTT.ClientID != "gpsclock" {
		t.Fatalf("client_id=%q want gpsclock", cfg.MQTT.ClientID)
	}
}

func TestLoad_WebListenDefault(t *testing.T) {
	path := writeTempConfig(t, "web:\n  enable: true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Web.Listen != ":8080" {
		t.Fatalf("listen=%q want :8080", cfg.Web.Listen)
	}
}

func TestLoad_BacklightBackendValidation(t *testing.T) {
	path := writeTempConfig(t, "backlight:\n  enable: true\n  backend: spi\n")
	_, err := Load(path)
	requireErrEq(t, err, "backlight.backend must be \"pwm\" or \"gpio\"")
}

func TestLoad_LogDefaults(t *testing.T) {
	path := writeTempConfig(t, "log:\n  file: /var/log/gpsclock.log\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Log.MaxSizeMB != 10 || cfg.Log.MaxBackups != 3 || cfg.Log.MaxAgeDays != 28 {
		t.Fatalf("log defaults = %+v", cfg.Log)
	}
}
