package mazebot

import (
	"fmt"
	"strconv"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
)

// Board for any host periph supports. Pins are looked up by the same
// numbers as the rpio board, which periph treats as names.
type PeriphBoard struct {
	pins        [lineCount]gpio.PinIO
	leds        []gpio.PinIO
	writeFailed bool
}

func NewPeriphBoard(pins PinConfiguration) (*PeriphBoard, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initializing periph host: %w", err)
	}
	board := &PeriphBoard{}
	for line, number := range pinNumbers(pins) {
		pin, err := openPeriphPin(number)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", Line(line), err)
		}
		if Line(line).isInput() {
			err = pin.In(gpio.PullDown, gpio.NoEdge)
		} else {
			err = pin.Out(gpio.Low)
		}
		if err != nil {
			return nil, fmt.Errorf("configuring %v: %w", Line(line), err)
		}
		board.pins[line] = pin
	}
	for _, number := range pins.Leds {
		pin, err := openPeriphPin(number)
		if err != nil {
			return nil, fmt.Errorf("LED: %w", err)
		}
		if err := pin.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("configuring LED %v: %w", number, err)
		}
		board.leds = append(board.leds, pin)
	}
	return board, nil
}

func openPeriphPin(number int) (gpio.PinIO, error) {
	pin := gpioreg.ByName(strconv.Itoa(number))
	if pin == nil {
		return nil, fmt.Errorf("no GPIO pin named %d", number)
	}
	return pin, nil
}

func (board *PeriphBoard) Read(line Line) bool {
	return board.pins[line].Read() == gpio.High
}

func (board *PeriphBoard) Write(line Line, high bool) {
	board.out(board.pins[line], gpio.Level(high))
}

func (board *PeriphBoard) SetLeds(pattern uint16) {
	for i, pin := range board.leds {
		board.out(pin, gpio.Level(pattern&(1<<uint(i)) != 0))
	}
}

// Only the first failed write is logged, the loop would repeat it every
// iteration
func (board *PeriphBoard) out(pin gpio.PinIO, level gpio.Level) {
	if err := pin.Out(level); err != nil && !board.writeFailed {
		board.writeFailed = true
		Logger.Errorf("Unable to set %v %v: %v", pin, level, err)
	}
}

func (board *PeriphBoard) Close() error {
	var firstErr error
	for line, pin := range board.pins {
		if pin == nil || Line(line).isInput() {
			continue
		}
		if err := pin.Out(gpio.Low); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	board.SetLeds(0)
	return firstErr
}
