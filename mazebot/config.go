package mazebot

import (
	"errors"
	"fmt"
	"io/ioutil"
	"math"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Which hardware layer to drive
const (
	BACKEND_RPIO      = "rpio"
	BACKEND_PERIPH    = "periph"
	BACKEND_SIMULATED = "sim"
)

// BCM pin numbers for every line the robot uses
type PinConfiguration struct {
	LeftPwm      int   `toml:"left_pwm" yaml:"left_pwm"`
	LeftForward  int   `toml:"left_forward" yaml:"left_forward"`
	LeftReverse  int   `toml:"left_reverse" yaml:"left_reverse"`
	RightPwm     int   `toml:"right_pwm" yaml:"right_pwm"`
	RightForward int   `toml:"right_forward" yaml:"right_forward"`
	RightReverse int   `toml:"right_reverse" yaml:"right_reverse"`
	LeftEncoder  int   `toml:"left_encoder" yaml:"left_encoder"`
	RightEncoder int   `toml:"right_encoder" yaml:"right_encoder"`
	FrontTrigger int   `toml:"front_trigger" yaml:"front_trigger"`
	FrontEcho    int   `toml:"front_echo" yaml:"front_echo"`
	LeftTrigger  int   `toml:"left_trigger" yaml:"left_trigger"`
	LeftEcho     int   `toml:"left_echo" yaml:"left_echo"`
	ButtonUp     int   `toml:"button_up" yaml:"button_up"`
	ButtonDown   int   `toml:"button_down" yaml:"button_down"`
	ButtonLeft   int   `toml:"button_left" yaml:"button_left"`
	ButtonRight  int   `toml:"button_right" yaml:"button_right"`
	Leds         []int `toml:"leds" yaml:"leds"`
}

type Configuration struct {
	Backend string           `toml:"backend" yaml:"backend"`
	Pins    PinConfiguration `toml:"pins" yaml:"pins"`

	// Ultrasonic acquisition
	DistanceThresholdCm       uint32  `toml:"distance_threshold_cm" yaml:"distance_threshold_cm"`
	TriggerPulseTicks         uint32  `toml:"trigger_pulse_ticks" yaml:"trigger_pulse_ticks"`
	EchoTimeoutTicks          uint32  `toml:"echo_timeout_ticks" yaml:"echo_timeout_ticks"`
	EchoStartTimeoutTicks     uint32  `toml:"echo_start_timeout_ticks" yaml:"echo_start_timeout_ticks"`
	CooldownTicks             uint32  `toml:"cooldown_ticks" yaml:"cooldown_ticks"`
	MicrosecondsPerTick       float64 `toml:"microseconds_per_tick" yaml:"microseconds_per_tick"`
	MicrosecondsPerCentimeter float64 `toml:"microseconds_per_centimeter" yaml:"microseconds_per_centimeter"`
	InitialEchoTicks          uint32  `toml:"initial_echo_ticks" yaml:"initial_echo_ticks"`

	// Drive and PID
	Kp                    float64 `toml:"kp" yaml:"kp"`
	Ki                    float64 `toml:"ki" yaml:"ki"`
	Kd                    float64 `toml:"kd" yaml:"kd"`
	IntegralLimit         int32   `toml:"integral_limit" yaml:"integral_limit"`
	DriveDutyCycle        uint8   `toml:"drive_duty_cycle" yaml:"drive_duty_cycle"`
	TurnDutyCycle         uint8   `toml:"turn_duty_cycle" yaml:"turn_duty_cycle"`
	MinimumDutyCycle      uint8   `toml:"minimum_duty_cycle" yaml:"minimum_duty_cycle"`
	CountsPerInch         uint32  `toml:"counts_per_inch" yaml:"counts_per_inch"`
	TrackWidthInches      float64 `toml:"track_width_inches" yaml:"track_width_inches"`
	HalfTurnCorrection    uint32  `toml:"half_turn_correction_degrees" yaml:"half_turn_correction_degrees"`
	TurnDegrees           uint32  `toml:"turn_degrees" yaml:"turn_degrees"`
	PreTurnCorrectionIn   uint32  `toml:"pre_turn_correction_inches" yaml:"pre_turn_correction_inches"`
	PostTurnCorrectionIn  uint32  `toml:"post_turn_correction_inches" yaml:"post_turn_correction_inches"`
	ManeuverTimeoutMs     uint32  `toml:"maneuver_timeout_ms" yaml:"maneuver_timeout_ms"`
	StartDelayMs          uint32  `toml:"start_delay_ms" yaml:"start_delay_ms"`
	PauseMs               uint32  `toml:"pause_ms" yaml:"pause_ms"`
	CelebrationBlinkMs    uint32  `toml:"celebration_blink_ms" yaml:"celebration_blink_ms"`
	TelemetryIntervalMs   uint32  `toml:"telemetry_interval_ms" yaml:"telemetry_interval_ms"`
	TelemetrySerialDevice string  `toml:"telemetry_serial_device" yaml:"telemetry_serial_device"`
	TelemetrySerialBaud   int     `toml:"telemetry_serial_baud" yaml:"telemetry_serial_baud"`
	TelemetryWebsocket    string  `toml:"telemetry_websocket" yaml:"telemetry_websocket"`
	LogLevel              string  `toml:"log_level" yaml:"log_level"`
}

// Values the robot was tuned with on the maze floor
func DefaultConfiguration() Configuration {
	const thresholdCm = 13
	const microsecondsPerCm = 58
	c := Configuration{
		Backend: BACKEND_RPIO,
		Pins: PinConfiguration{
			LeftPwm:      12,
			LeftForward:  5,
			LeftReverse:  6,
			RightPwm:     13,
			RightForward: 19,
			RightReverse: 26,
			LeftEncoder:  17,
			RightEncoder: 27,
			FrontTrigger: 23,
			FrontEcho:    24,
			LeftTrigger:  20,
			LeftEcho:     21,
			ButtonUp:     16,
			ButtonDown:   25,
			ButtonLeft:   7,
			ButtonRight:  8,
			Leds:         []int{4, 18, 22, 10, 9, 11},
		},

		DistanceThresholdCm:       thresholdCm,
		TriggerPulseTicks:         10,
		EchoStartTimeoutTicks:     30000,
		CooldownTicks:             60000,
		MicrosecondsPerTick:       1.0,
		MicrosecondsPerCentimeter: microsecondsPerCm,

		Kp:                   0.1,
		Ki:                   0.05,
		Kd:                   0,
		IntegralLimit:        0,
		DriveDutyCycle:       0xCF,
		TurnDutyCycle:        0xBF,
		MinimumDutyCycle:     0xA0,
		CountsPerInch:        45,
		TrackWidthInches:     6.625,
		HalfTurnCorrection:   12,
		TurnDegrees:          90,
		PreTurnCorrectionIn:  7,
		PostTurnCorrectionIn: 8,
		ManeuverTimeoutMs:    0,
		StartDelayMs:         3000,
		PauseMs:              500,
		CelebrationBlinkMs:   500,
		TelemetryIntervalMs:  250,
		TelemetrySerialBaud:  115200,
		LogLevel:             "INFO",
	}
	c.deriveEchoTicks()
	return c
}

// Ticks an echo lasts for something exactly cm away, rounded up so it
// converts back to at least cm
func (c Configuration) echoTicksFor(cm uint32) uint32 {
	ticks := uint32(math.Ceil(float64(cm) * c.MicrosecondsPerCentimeter / c.MicrosecondsPerTick))
	for c.ticksToCentimeters(ticks) < cm {
		ticks++
	}
	return ticks
}

func (c Configuration) ticksToCentimeters(ticks uint32) uint32 {
	us := float64(ticks) * c.MicrosecondsPerTick
	return uint32(us / c.MicrosecondsPerCentimeter)
}

// Unset echo timeout and median seed default to the distance threshold,
// so a timed out echo reads as open
func (c *Configuration) deriveEchoTicks() {
	if c.MicrosecondsPerCentimeter <= 0 || c.MicrosecondsPerTick <= 0 {
		return
	}
	if c.EchoTimeoutTicks == 0 {
		c.EchoTimeoutTicks = c.echoTicksFor(c.DistanceThresholdCm)
	}
	if c.InitialEchoTicks == 0 {
		c.InitialEchoTicks = c.echoTicksFor(c.DistanceThresholdCm)
	}
}

var configuration = DefaultConfiguration()

// Returns the configuration currently in use
func GetConfiguration() Configuration {
	return configuration
}

// Replaces the configuration in use. Call before building a Robot.
func SetConfiguration(c Configuration) error {
	c.deriveEchoTicks()
	if err := c.Validate(); err != nil {
		return err
	}
	configuration = c
	return nil
}

// Reads a TOML or YAML file on top of the defaults. The echo timeout and
// median seed follow the file's threshold unless the file sets them.
func LoadConfiguration(path string) (Configuration, error) {
	loaded := DefaultConfiguration()
	loaded.EchoTimeoutTicks = 0
	loaded.InitialEchoTicks = 0
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return loaded, fmt.Errorf("reading config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	default:
		var meta toml.MetaData
		meta, err = toml.Decode(string(data), &loaded)
		if err == nil {
			for _, key := range meta.Undecoded() {
				Logger.Warningf("Unknown config key %v", key)
			}
		}
	}
	if err != nil {
		return loaded, fmt.Errorf("parsing config %s: %w", path, err)
	}
	loaded.deriveEchoTicks()
	return loaded, loaded.Validate()
}

func (c Configuration) Validate() error {
	switch c.Backend {
	case BACKEND_RPIO, BACKEND_PERIPH, BACKEND_SIMULATED:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.CountsPerInch == 0 {
		return errors.New("counts_per_inch must be positive")
	}
	if c.MicrosecondsPerCentimeter <= 0 || c.MicrosecondsPerTick <= 0 {
		return errors.New("ultrasonic conversion constants must be positive")
	}
	if c.TrackWidthInches <= 0 {
		return errors.New("track_width_inches must be positive")
	}
	if c.MinimumDutyCycle > c.DriveDutyCycle {
		return fmt.Errorf("minimum_duty_cycle %#x above drive_duty_cycle %#x", c.MinimumDutyCycle, c.DriveDutyCycle)
	}
	if cm := c.ticksToCentimeters(c.EchoTimeoutTicks); cm < c.DistanceThresholdCm {
		return fmt.Errorf("echo_timeout_ticks %d is %d cm, under the %d cm threshold", c.EchoTimeoutTicks, cm, c.DistanceThresholdCm)
	}
	if cm := c.ticksToCentimeters(c.InitialEchoTicks); cm < c.DistanceThresholdCm {
		return fmt.Errorf("initial_echo_ticks %d is %d cm, under the %d cm threshold", c.InitialEchoTicks, cm, c.DistanceThresholdCm)
	}
	if c.IntegralLimit < 0 {
		return errors.New("integral_limit cannot be negative")
	}
	if len(c.Pins.Leds) > 16 {
		return fmt.Errorf("at most 16 LEDs, got %d", len(c.Pins.Leds))
	}
	return nil
}

func msToTicks(ms uint32) uint32 {
	return uint32(float64(ms) * 1000 / configuration.MicrosecondsPerTick)
}
