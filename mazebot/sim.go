// Host simulation of the robot, its sensors and a maze
package mazebot

import (
	"errors"
	"math"
	"strings"
)

// Stopwatch driven by simulated time instead of the wall clock
type SimulatedClock struct {
	now    uint64
	starts [STOPWATCH_CHANNELS]uint64
}

func NewSimulatedClock() *SimulatedClock {
	return &SimulatedClock{}
}

func (clock *SimulatedClock) Advance(us uint64) {
	clock.now += us
}

// Microseconds since the simulation started
func (clock *SimulatedClock) Now() uint64 {
	return clock.now
}

func (clock *SimulatedClock) Start(channel uint8) {
	if channel >= STOPWATCH_CHANNELS {
		return
	}
	clock.starts[channel] = clock.now
}

func (clock *SimulatedClock) Read(channel uint8) uint32 {
	if channel >= STOPWATCH_CHANNELS {
		return 0
	}
	return uint32(float64(clock.now-clock.starts[channel]) / configuration.MicrosecondsPerTick)
}

// Anything that can say how far the walls are, in centimeters
type RangeFinder interface {
	Ranges() (frontCm, leftCm float64)
}

// Worlds that move when the wheels turn
type Odometer interface {
	Roll(leftInches, rightInches float64)
}

// Walls that never move, for tests
type StaticRanges struct {
	FrontCm float64
	LeftCm  float64
}

func (ranges *StaticRanges) Ranges() (float64, float64) {
	return ranges.FrontCm, ranges.LeftCm
}

// Farthest an HC-SR04 reports
const MAX_RANGE_CM = 400

// Encoder counts per second with the PWM line held high
const FULL_SPEED_COUNTS_PER_SECOND = 600

type simWheel struct {
	pwm        Line
	forward    Line
	reverse    Line
	level      bool
	lastUpdate uint64
	progress   uint64
}

type simPing struct {
	trigger Line
	rise    uint64
	fall    uint64
}

// Board that simulates the motors, encoders, ultrasonic sensors and
// buttons. Every input read moves simulated time forward by Quantum
// microseconds, which is what keeps a polling loop making progress.
type SimulatedBoard struct {
	clock     *SimulatedClock
	world     RangeFinder
	Quantum   uint64
	EchoDelay uint64
	lines     [lineCount]bool
	leds      uint16
	wheels    [2]simWheel
	pings     [2]simPing
}

func NewSimulatedBoard(clock *SimulatedClock, world RangeFinder) *SimulatedBoard {
	return &SimulatedBoard{
		clock:     clock,
		world:     world,
		Quantum:   1,
		EchoDelay: 100,
		wheels: [2]simWheel{
			{pwm: LeftPwm, forward: LeftForward, reverse: LeftReverse},
			{pwm: RightPwm, forward: RightForward, reverse: RightReverse},
		},
		pings: [2]simPing{
			{trigger: FrontTrigger},
			{trigger: LeftTrigger},
		},
	}
}

func (board *SimulatedBoard) Read(line Line) bool {
	board.clock.Advance(board.Quantum)
	switch line {
	case LeftEncoder:
		return board.readEncoder(0)
	case RightEncoder:
		return board.readEncoder(1)
	case FrontEcho:
		return board.echoHigh(0)
	case LeftEcho:
		return board.echoHigh(1)
	}
	return board.lines[line]
}

func (board *SimulatedBoard) Write(line Line, high bool) {
	previous := board.lines[line]
	for i := range board.wheels {
		wheel := &board.wheels[i]
		if line == wheel.pwm || line == wheel.forward || line == wheel.reverse {
			board.settle(i)
		}
	}
	board.lines[line] = high
	for i := range board.pings {
		if board.pings[i].trigger == line && previous && !high {
			board.ping(i)
		}
	}
}

func (board *SimulatedBoard) SetLeds(pattern uint16) {
	board.leds = pattern
}

func (board *SimulatedBoard) Close() error {
	return nil
}

func (board *SimulatedBoard) Leds() uint16 {
	return board.leds
}

// Current level of any line, without moving time
func (board *SimulatedBoard) Level(line Line) bool {
	return board.lines[line]
}

func (board *SimulatedBoard) Press(button Line) {
	board.lines[button] = true
}

func (board *SimulatedBoard) Release(button Line) {
	board.lines[button] = false
}

// +1 forward, -1 reverse, 0 when braking or coasting
func (board *SimulatedBoard) direction(wheel *simWheel) int {
	forward := board.lines[wheel.forward]
	reverse := board.lines[wheel.reverse]
	switch {
	case forward && !reverse:
		return 1
	case reverse && !forward:
		return -1
	}
	return 0
}

func (board *SimulatedBoard) readEncoder(index int) bool {
	board.settle(index)
	return board.wheels[index].level
}

// Turns the wheel for the time since it was last settled, using the lines
// as they are now. Called before any of its lines change, so that's exact.
// Each half count toggles the encoder line.
func (board *SimulatedBoard) settle(index int) {
	const halfCountUs = 1000 * 1000 / (2 * FULL_SPEED_COUNTS_PER_SECOND)
	wheel := &board.wheels[index]
	now := board.clock.Now()
	elapsed := now - wheel.lastUpdate
	wheel.lastUpdate = now

	direction := board.direction(wheel)
	if !board.lines[wheel.pwm] || direction == 0 {
		return
	}
	wheel.progress += elapsed
	for wheel.progress >= halfCountUs {
		wheel.progress -= halfCountUs
		wheel.level = !wheel.level
		if wheel.level {
			board.roll(index, direction)
		}
	}
}

func (board *SimulatedBoard) roll(index int, direction int) {
	odometer, ok := board.world.(Odometer)
	if !ok {
		return
	}
	inches := float64(direction) / float64(configuration.CountsPerInch)
	if index == 0 {
		odometer.Roll(inches, 0)
	} else {
		odometer.Roll(0, inches)
	}
}

// The echo line goes high shortly after the trigger falls and stays high
// for the round trip time
func (board *SimulatedBoard) ping(index int) {
	front, left := board.world.Ranges()
	distance := front
	if index == 1 {
		distance = left
	}
	if distance > MAX_RANGE_CM || distance < 0 {
		distance = MAX_RANGE_CM
	}
	ping := &board.pings[index]
	ping.rise = board.clock.Now() + board.EchoDelay
	ping.fall = ping.rise + uint64(distance*configuration.MicrosecondsPerCentimeter)
}

func (board *SimulatedBoard) echoHigh(index int) bool {
	now := board.clock.Now()
	ping := &board.pings[index]
	return now >= ping.rise && now < ping.fall
}

const DEFAULT_CELL_INCHES = 8.0

// Start at S facing up. The corridor turns right at the top and ends in a
// dead end.
const DefaultMaze = `
######
#....#
#.####
#.####
#S####
######
`

// Maze made of square cells. '#' is a wall, anything else is open.
type GridWorld struct {
	rows        []string
	cellInches  float64
	trackInches float64
	// Inches from the top left corner, y increases downward
	X float64
	Y float64
	// Radians clockwise from up
	Heading float64
}

func ParseGridWorld(text string, cellInches float64) (*GridWorld, error) {
	rows := strings.Split(strings.Trim(text, "\n"), "\n")
	world := &GridWorld{
		rows:        rows,
		cellInches:  cellInches,
		trackInches: configuration.TrackWidthInches,
	}
	for row, line := range rows {
		if col := strings.IndexByte(line, 'S'); col >= 0 {
			world.X = (float64(col) + 0.5) * cellInches
			world.Y = (float64(row) + 0.5) * cellInches
			return world, nil
		}
	}
	return nil, errors.New("maze has no start cell 'S'")
}

func (world *GridWorld) wall(x, y float64) bool {
	row := int(math.Floor(y / world.cellInches))
	col := int(math.Floor(x / world.cellInches))
	if row < 0 || row >= len(world.rows) || col < 0 || col >= len(world.rows[row]) {
		return true
	}
	return world.rows[row][col] == '#'
}

// Distance in centimeters to the first wall along angle
func (world *GridWorld) cast(angle float64) float64 {
	const stepInches = 0.25
	const maxInches = MAX_RANGE_CM / 2.54
	dx := math.Sin(angle)
	dy := -math.Cos(angle)
	for distance := 0.0; distance < maxInches; distance += stepInches {
		if world.wall(world.X+distance*dx, world.Y+distance*dy) {
			return distance * 2.54
		}
	}
	return MAX_RANGE_CM
}

func (world *GridWorld) Ranges() (float64, float64) {
	return world.cast(world.Heading), world.cast(world.Heading - math.Pi/2)
}

// Differential drive kinematics. The robot stops at walls but the wheels
// keep slipping, like the real thing.
func (world *GridWorld) Roll(leftInches, rightInches float64) {
	world.Heading += (leftInches - rightInches) / world.trackInches
	center := (leftInches + rightInches) / 2
	x := world.X + center*math.Sin(world.Heading)
	y := world.Y - center*math.Cos(world.Heading)
	if !world.wall(x, y) {
		world.X = x
		world.Y = y
	}
}

// Position as a cell and a heading rounded to the nearest compass point
func (world *GridWorld) Cell() (row, col int, compass string) {
	row = int(math.Floor(world.Y / world.cellInches))
	col = int(math.Floor(world.X / world.cellInches))
	quarter := int(math.Round(world.Heading/(math.Pi/2))) % 4
	if quarter < 0 {
		quarter += 4
	}
	return row, col, []string{"N", "E", "S", "W"}[quarter]
}
