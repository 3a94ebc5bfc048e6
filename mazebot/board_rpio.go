package mazebot

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// Board on the Raspberry Pi header, using BCM pin numbers
type RpioBoard struct {
	pins [lineCount]rpio.Pin
	leds []rpio.Pin
}

func pinNumbers(pins PinConfiguration) [lineCount]int {
	return [lineCount]int{
		LeftPwm:      pins.LeftPwm,
		LeftForward:  pins.LeftForward,
		LeftReverse:  pins.LeftReverse,
		RightPwm:     pins.RightPwm,
		RightForward: pins.RightForward,
		RightReverse: pins.RightReverse,
		LeftEncoder:  pins.LeftEncoder,
		RightEncoder: pins.RightEncoder,
		FrontTrigger: pins.FrontTrigger,
		FrontEcho:    pins.FrontEcho,
		LeftTrigger:  pins.LeftTrigger,
		LeftEcho:     pins.LeftEcho,
		ButtonUp:     pins.ButtonUp,
		ButtonDown:   pins.ButtonDown,
		ButtonLeft:   pins.ButtonLeft,
		ButtonRight:  pins.ButtonRight,
	}
}

func NewRpioBoard(pins PinConfiguration) (*RpioBoard, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("opening GPIO memory: %w", err)
	}
	board := &RpioBoard{}
	for line, number := range pinNumbers(pins) {
		pin := rpio.Pin(number)
		if Line(line).isInput() {
			pin.Input()
			pin.PullDown()
		} else {
			pin.Output()
			pin.Low()
		}
		board.pins[line] = pin
	}
	for _, number := range pins.Leds {
		pin := rpio.Pin(number)
		pin.Output()
		pin.Low()
		board.leds = append(board.leds, pin)
	}
	return board, nil
}

func (board *RpioBoard) Read(line Line) bool {
	return board.pins[line].Read() == rpio.High
}

func (board *RpioBoard) Write(line Line, high bool) {
	if high {
		board.pins[line].High()
	} else {
		board.pins[line].Low()
	}
}

// Only the low bits that have an LED wired up are shown
func (board *RpioBoard) SetLeds(pattern uint16) {
	for i, pin := range board.leds {
		if pattern&(1<<uint(i)) != 0 {
			pin.High()
		} else {
			pin.Low()
		}
	}
}

func (board *RpioBoard) Close() error {
	for line := range board.pins {
		if !Line(line).isInput() {
			board.pins[line].Low()
		}
	}
	board.SetLeds(0)
	return rpio.Close()
}
