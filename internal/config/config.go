package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	GPS       GPSConfig       `yaml:"gps"`
	PPS       PPSConfig       `yaml:"pps"`
	Clock     ClockConfig     `yaml:"clock"`
	Screen    ScreenConfig    `yaml:"screen"`
	Touch     TouchConfig     `yaml:"touch"`
	Display   DisplayConfig   `yaml:"display"`
	Backlight BacklightConfig `yaml:"backlight"`
	Web       WebConfig       `yaml:"web"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Log       LogConfig       `yaml:"log"`
}

type GPSConfig struct {
	Enable bool `yaml:"enable"`
	// Device is the receiver's serial path; empty scans /dev/ttyACM* and
	// /dev/ttyUSB* at startup.
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

type PPSConfig struct {
	Enable bool   `yaml:"enable"`
	Chip   string `yaml:"chip"`
	Line   int    `yaml:"line"`
}

type ClockConfig struct {
	// Zone is an IANA name like "Europe/Oslo"; empty means UTC.
	Zone string `yaml:"zone"`
}

type ScreenConfig struct {
	GridLength int           `yaml:"grid_length"`
	Units      string        `yaml:"units"` // "metric" or "us"
	Debounce   time.Duration `yaml:"debounce"`
}

type TouchConfig struct {
	Device      string `yaml:"device"`
	FlipX       bool   `yaml:"flip_x"`
	FlipY       bool   `yaml:"flip_y"`
	OffsetX     int    `yaml:"offset_x"`
	OffsetY     int    `yaml:"offset_y"`
	MinPressure int    `yaml:"min_pressure"`
}

type DisplayConfig struct {
	// Sim renders to a terminal window instead of the panel.
	Sim bool `yaml:"sim"`
}

type BacklightConfig struct {
	Enable         bool          `yaml:"enable"`
	Backend        string        `yaml:"backend"`
	Pin            int           `yaml:"pin"`
	PWMFrequencyHz int           `yaml:"pwm_frequency_hz"`
	DayDuty        int           `yaml:"day_duty"`
	NightDuty      int           `yaml:"night_duty"`
	NightStartHour int           `yaml:"night_start_hour"`
	DayStartHour   int           `yaml:"day_start_hour"`
	RampStepPct    int           `yaml:"ramp_step_pct"`
	UpdateInterval time.Duration `yaml:"update_interval"`
}

type WebConfig struct {
	Enable bool   `yaml:"enable"`
	Listen string `yaml:"listen"`
}

type MQTTConfig struct {
	Enable   bool   `yaml:"enable"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
}

type LogConfig struct {
	// File is the rotated log destination; empty logs to stderr only.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if cfg.GPS.Baud <= 0 {
		cfg.GPS.Baud = 9600
	}

	if cfg.PPS.Enable {
		if !cfg.GPS.Enable {
			return Config{}, fmt.Errorf("pps.enable requires gps.enable")
		}
		if cfg.PPS.Chip == "" {
			cfg.PPS.Chip = "gpiochip0"
		}
		if cfg.PPS.Line <= 0 {
			return Config{}, fmt.Errorf("pps.line is required when pps.enable is true")
		}
	}

	if cfg.Screen.GridLength == 0 {
		cfg.Screen.GridLength = 6
	}
	if cfg.Screen.GridLength < 0 || cfg.Screen.GridLength > 10 {
		return Config{}, fmt.Errorf("screen.grid_length must be 1..10 (or 0 for the default)")
	}
	switch cfg.Screen.Units {
	case "":
		cfg.Screen.Units = "metric"
	case "metric", "us":
	default:
		return Config{}, fmt.Errorf("screen.units must be \"metric\" or \"us\"")
	}
	if cfg.Screen.Debounce <= 0 {
		cfg.Screen.Debounce = 300 * time.Millisecond
	}

	if cfg.Touch.Device != "" && cfg.Touch.MinPressure <= 0 {
		cfg.Touch.MinPressure = 10
	}

	if cfg.Backlight.Enable {
		switch cfg.Backlight.Backend {
		case "":
			cfg.Backlight.Backend = "pwm"
		case "pwm", "gpio":
		default:
			return Config{}, fmt.Errorf("backlight.backend must be \"pwm\" or \"gpio\"")
		}
	}

	if cfg.Web.Enable && cfg.Web.Listen == "" {
		cfg.Web.Listen = ":8080"
	}

	if cfg.MQTT.Enable {
		if cfg.MQTT.Broker == "" {
			return Config{}, fmt.Errorf("mqtt.broker is required when mqtt.enable is true")
		}
		if cfg.MQTT.ClientID == "" {
			cfg.MQTT.ClientID = "gpsclock"
		}
	}

	if cfg.Log.File != "" {
		if cfg.Log.MaxSizeMB <= 0 {
			cfg.Log.MaxSizeMB = 10
		}
		if cfg.Log.MaxBackups <= 0 {
			cfg.Log.MaxBackups = 3
		}
		if cfg.Log.MaxAgeDays <= 0 {
			cfg.Log.MaxAgeDays = 28
		}
	}

	return cfg, nil
}
