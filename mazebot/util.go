package mazebot

import (
	"fmt"
	"io/ioutil"
	"strings"
)

var isPiCache *bool

func IsPi() bool {
	if isPiCache != nil {
		return *isPiCache
	}
	data, err := ioutil.ReadFile("/proc/cpuinfo")
	result := err == nil && (strings.Contains(string(data), "ARM") || strings.Contains(string(data), "Raspberry"))
	isPiCache = &result
	return result
}

// Opens the board the configuration asks for, along with a matching
// stopwatch
func OpenBoard(c Configuration) (Board, Stopwatch, error) {
	switch c.Backend {
	case BACKEND_RPIO:
		board, err := NewRpioBoard(c.Pins)
		if err != nil {
			return nil, nil, err
		}
		return board, NewWallStopwatch(), nil
	case BACKEND_PERIPH:
		board, err := NewPeriphBoard(c.Pins)
		if err != nil {
			return nil, nil, err
		}
		return board, NewWallStopwatch(), nil
	case BACKEND_SIMULATED:
		world, err := ParseGridWorld(DefaultMaze, DEFAULT_CELL_INCHES)
		if err != nil {
			return nil, nil, err
		}
		clock := NewSimulatedClock()
		return NewSimulatedBoard(clock, world), clock, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", c.Backend)
}

func clampInt32(value, minimum, maximum int32) int32 {
	if value < minimum {
		return minimum
	}
	if value > maximum {
		return maximum
	}
	return value
}
