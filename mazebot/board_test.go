package mazebot

import (
	"testing"
)

// Board whose lines are whatever the test last set
type scriptedBoard struct {
	lines [lineCount]bool
	leds  uint16
}

func (board *scriptedBoard) Read(line Line) bool {
	return board.lines[line]
}

func (board *scriptedBoard) Write(line Line, high bool) {
	board.lines[line] = high
}

func (board *scriptedBoard) SetLeds(pattern uint16) {
	board.leds = pattern
}

func (*scriptedBoard) Close() error {
	return nil
}

// Board with encoders that never turn. Time only moves on reads.
type stalledBoard struct {
	scriptedBoard
	clock *SimulatedClock
}

func (board *stalledBoard) Read(line Line) bool {
	board.clock.Advance(1)
	return false
}

func TestSetMotionType(t *testing.T) {
	board := &scriptedBoard{}
	expected := map[MotionType][4]bool{
		Straight:  {true, false, true, false},
		TurnLeft:  {false, true, true, false},
		TurnRight: {true, false, false, true},
		Brake:     {true, true, true, true},
		Idle:      {false, false, false, false},
	}
	for mode, levels := range expected {
		SetMotionType(board, mode)
		actual := [4]bool{
			board.lines[LeftForward],
			board.lines[LeftReverse],
			board.lines[RightForward],
			board.lines[RightReverse],
		}
		if actual != levels {
			t.Errorf("Bad lines for %v: %v", mode, actual)
		}
	}
}

func TestButtonEdges(t *testing.T) {
	board := &scriptedBoard{}
	edges := NewButtonEdges(board)

	board.lines[ButtonUp] = true
	pressed := edges.Sample()
	if !pressed.Up || pressed.Down {
		t.Errorf("Bad first press: %+v", pressed)
	}

	// Holding it down isn't another press
	pressed = edges.Sample()
	if pressed.Up {
		t.Errorf("Bad held press: %+v", pressed)
	}

	board.lines[ButtonUp] = false
	board.lines[ButtonDown] = true
	pressed = edges.Sample()
	if pressed.Up || !pressed.Down {
		t.Errorf("Bad second press: %+v", pressed)
	}
}

func TestSimulatedClockChannels(t *testing.T) {
	configuration = DefaultConfiguration()
	clock := NewSimulatedClock()
	clock.Advance(100)
	clock.Start(3)
	clock.Advance(50)
	if ticks := clock.Read(3); ticks != 50 {
		t.Errorf("Bad ticks: %v", ticks)
	}
	if ticks := clock.Read(0); ticks != 150 {
		t.Errorf("Bad ticks: %v", ticks)
	}
	if ticks := clock.Read(STOPWATCH_CHANNELS); ticks != 0 {
		t.Errorf("Bad ticks for missing channel: %v", ticks)
	}
}

func TestLineString(t *testing.T) {
	if FrontEcho.String() != "FrontEcho" {
		t.Errorf("Bad name: %v", FrontEcho)
	}
	if lineCount.String() != "Unknown" || Line(200).String() != "Unknown" {
		t.Errorf("Bad name: %v", Line(200))
	}
	if !FrontEcho.isInput() || FrontTrigger.isInput() {
		t.Error("Bad direction for the front sensor lines")
	}
}

func TestEnumNamesOutOfRange(t *testing.T) {
	if Brake.String() != "Brake" || MotionType(9).String() != "Unknown" {
		t.Errorf("Bad motion names: %v %v", Brake, MotionType(9))
	}
	if Right.String() != "Right" || TurnDirection(2).String() != "Unknown" {
		t.Errorf("Bad direction names: %v %v", Right, TurnDirection(2))
	}
	if cooldown.String() != "Cooldown" || UltrasonicState(0).String() != "Unknown" || UltrasonicState(50).String() != "Unknown" {
		t.Errorf("Bad ultrasonic names: %v %v", cooldown, UltrasonicState(50))
	}
}
