// Digital lines and stopwatches the control loop talks to
package mazebot

import (
	"time"
)

type Line uint8

const (
	LeftPwm Line = iota
	LeftForward
	LeftReverse
	RightPwm
	RightForward
	RightReverse
	LeftEncoder
	RightEncoder
	FrontTrigger
	FrontEcho
	LeftTrigger
	LeftEcho
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
	lineCount
)

func (line Line) String() string {
	names := []string{
		"LeftPwm", "LeftForward", "LeftReverse",
		"RightPwm", "RightForward", "RightReverse",
		"LeftEncoder", "RightEncoder",
		"FrontTrigger", "FrontEcho", "LeftTrigger", "LeftEcho",
		"ButtonUp", "ButtonDown", "ButtonLeft", "ButtonRight",
	}
	if int(line) >= len(names) {
		return "Unknown"
	}
	return names[line]
}

func (line Line) isInput() bool {
	switch line {
	case LeftEncoder, RightEncoder, FrontEcho, LeftEcho, ButtonUp, ButtonDown, ButtonLeft, ButtonRight:
		return true
	}
	return false
}

type Board interface {
	Read(line Line) bool
	Write(line Line, high bool)
	SetLeds(pattern uint16)
	Close() error
}

// Independent restartable elapsed-time counters. Read returns ticks since
// the last Start of that channel.
type Stopwatch interface {
	Start(channel uint8)
	Read(channel uint8) uint32
}

const STOPWATCH_CHANNELS = 8

// Stopwatch channel assignments
const (
	watchdogChannel    uint8 = 0
	telemetryChannel   uint8 = 1
	celebrationChannel uint8 = 2
	frontEchoChannel   uint8 = 3
	leftEchoChannel    uint8 = 4
	ultrasonicChannel  uint8 = 5
	startDelayChannel  uint8 = 6
	pauseChannel       uint8 = 7
)

// Stopwatch backed by the monotonic clock
type WallStopwatch struct {
	starts [STOPWATCH_CHANNELS]time.Time
}

func NewWallStopwatch() *WallStopwatch {
	watch := &WallStopwatch{}
	now := time.Now()
	for i := range watch.starts {
		watch.starts[i] = now
	}
	return watch
}

func (watch *WallStopwatch) Start(channel uint8) {
	if channel >= STOPWATCH_CHANNELS {
		return
	}
	watch.starts[channel] = time.Now()
}

func (watch *WallStopwatch) Read(channel uint8) uint32 {
	if channel >= STOPWATCH_CHANNELS {
		return 0
	}
	us := float64(time.Since(watch.starts[channel]).Microseconds())
	return uint32(us / configuration.MicrosecondsPerTick)
}

type MotionType uint8

const (
	Straight MotionType = iota
	TurnLeft
	TurnRight
	Brake
	Idle
)

func (mt MotionType) String() string {
	names := []string{"Straight", "TurnLeft", "TurnRight", "Brake", "Idle"}
	if int(mt) >= len(names) {
		return "Unknown"
	}
	return names[mt]
}

// Sets the H-bridge direction inputs. Brake shorts both motors, Idle lets
// them coast.
func SetMotionType(board Board, mode MotionType) {
	var leftForward, leftReverse, rightForward, rightReverse bool
	switch mode {
	case Straight:
		leftForward, rightForward = true, true
	case TurnLeft:
		leftReverse, rightForward = true, true
	case TurnRight:
		leftForward, rightReverse = true, true
	case Brake:
		leftForward, leftReverse, rightForward, rightReverse = true, true, true, true
	}
	board.Write(LeftForward, leftForward)
	board.Write(LeftReverse, leftReverse)
	board.Write(RightForward, rightForward)
	board.Write(RightReverse, rightReverse)
}

type Buttons struct {
	Up    bool
	Down  bool
	Left  bool
	Right bool
}

// Rising-edge detector for the four buttons
type ButtonEdges struct {
	board    Board
	previous Buttons
}

func NewButtonEdges(board Board) *ButtonEdges {
	return &ButtonEdges{board: board}
}

// Returns which buttons went from released to pressed since the last call
func (edges *ButtonEdges) Sample() Buttons {
	current := Buttons{
		Up:    edges.board.Read(ButtonUp),
		Down:  edges.board.Read(ButtonDown),
		Left:  edges.board.Read(ButtonLeft),
		Right: edges.board.Read(ButtonRight),
	}
	pressed := Buttons{
		Up:    current.Up && !edges.previous.Up,
		Down:  current.Down && !edges.previous.Down,
		Left:  current.Left && !edges.previous.Left,
		Right: current.Right && !edges.previous.Right,
	}
	edges.previous = current
	return pressed
}
