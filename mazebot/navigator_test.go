package mazebot

import (
	"testing"
)

func TestClassifyWalls(t *testing.T) {
	configuration = DefaultConfiguration()
	cases := []struct {
		readings DistanceReadings
		expected MazeState
	}{
		{DistanceReadings{FrontCm: 10, LeftCm: 10}, leftAndFront},
		{DistanceReadings{FrontCm: 20, LeftCm: 20}, noLeftOrFront},
		{DistanceReadings{FrontCm: 10, LeftCm: 20}, frontOnly},
		{DistanceReadings{FrontCm: 20, LeftCm: 10}, leftOnly},
		// The threshold itself is open
		{DistanceReadings{FrontCm: 13, LeftCm: 12}, leftOnly},
		{DistanceReadings{FrontCm: 12, LeftCm: 13}, frontOnly},
	}
	for _, c := range cases {
		if actual := ClassifyWalls(c.readings); actual != c.expected {
			t.Errorf("Bad walls for %+v: %v", c.readings, actual)
		}
	}
}

func TestMazeStateString(t *testing.T) {
	if leftAndFront.String() != "LeftAndFront" {
		t.Errorf("Bad name: %v", leftAndFront)
	}
	if MazeState(200).String() != "Unknown" {
		t.Errorf("Bad name: %v", MazeState(200))
	}
}

func newTestNavigator(ranges RangeFinder) (*Navigator, *SimulatedBoard, *SimulatedClock, *LoopContext) {
	clock := NewSimulatedClock()
	board := NewSimulatedBoard(clock, ranges)
	shared := &LoopContext{Classification: leftOnly}
	train := NewDrivetrain(board, &shared.Duty)
	return NewNavigator(board, clock, train, shared), board, clock, shared
}

func TestNavigatorWaitsForStart(t *testing.T) {
	configuration = DefaultConfiguration()
	navigator, _, clock, _ := newTestNavigator(&StaticRanges{FrontCm: 30, LeftCm: 5})

	navigator.Step(Buttons{})
	if navigator.State() != waitToStart {
		t.Errorf("Bad state: %v", navigator.State())
	}
	navigator.Step(Buttons{Up: true})
	if navigator.State() != startDelay {
		t.Errorf("Bad state: %v", navigator.State())
	}

	clock.Advance(uint64(msToTicks(configuration.StartDelayMs)) - 1)
	navigator.Step(Buttons{})
	if navigator.State() != startDelay {
		t.Errorf("Bad state before the delay: %v", navigator.State())
	}
	clock.Advance(1)
	navigator.Step(Buttons{})
	if navigator.State() != initializeDrive {
		t.Errorf("Bad state after the delay: %v", navigator.State())
	}
}

func TestNavigatorUnknownStateRestartsDrive(t *testing.T) {
	configuration = DefaultConfiguration()
	navigator, _, _, _ := newTestNavigator(&StaticRanges{})
	navigator.state = MazeState(99)
	navigator.Step(Buttons{})
	if navigator.State() != initializeDrive {
		t.Errorf("Bad state: %v", navigator.State())
	}
}

func TestNavigatorFollowsClassification(t *testing.T) {
	configuration = DefaultConfiguration()
	navigator, board, _, shared := newTestNavigator(&StaticRanges{FrontCm: 30, LeftCm: 5})
	navigator.state = initializeDrive
	navigator.Step(Buttons{})
	if navigator.State() != updateUltrasonic {
		t.Errorf("Bad state: %v", navigator.State())
	}
	if shared.Duty.Left != configuration.DriveDutyCycle || shared.Duty.Right != configuration.DriveDutyCycle {
		t.Errorf("Bad duty: %+v", shared.Duty)
	}
	if !board.Level(LeftForward) || !board.Level(RightForward) {
		t.Error("Not driving forward")
	}

	navigator.Step(Buttons{})
	if navigator.State() != leftOnly {
		t.Errorf("Bad state: %v", navigator.State())
	}

	// Only a new reading that changes the walls gets us out
	shared.Classification = frontOnly
	navigator.Step(Buttons{})
	if navigator.State() != leftOnly {
		t.Errorf("Bad state without a new reading: %v", navigator.State())
	}
	shared.NewReading = true
	navigator.Step(Buttons{})
	if navigator.State() != updateUltrasonic {
		t.Errorf("Bad state: %v", navigator.State())
	}
	navigator.Step(Buttons{})
	if navigator.State() != frontOnly {
		t.Errorf("Bad state: %v", navigator.State())
	}
	navigator.Step(Buttons{})
	if navigator.State() != turning || navigator.turnDirection != Right {
		t.Errorf("Bad state: %v %v", navigator.State(), navigator.turnDirection)
	}
	if shared.Duty.Left != 0 || shared.Duty.Right != 0 {
		t.Errorf("Bad duty after stopping: %+v", shared.Duty)
	}
}

func TestNavigatorOpenLeftTurnsLeft(t *testing.T) {
	configuration = DefaultConfiguration()
	navigator, _, _, _ := newTestNavigator(&StaticRanges{})
	navigator.state = noLeftOrFront
	navigator.Step(Buttons{})
	if navigator.State() != turning || navigator.turnDirection != Left {
		t.Errorf("Bad state: %v %v", navigator.State(), navigator.turnDirection)
	}
}

func TestNavigatorWinsWhenBoxedInTwice(t *testing.T) {
	configuration = DefaultConfiguration()
	navigator, _, _, _ := newTestNavigator(&StaticRanges{})

	navigator.state = leftAndFront
	navigator.lastState = leftOnly
	navigator.Step(Buttons{})
	if navigator.State() != turning {
		t.Errorf("Bad state after one dead end: %v", navigator.State())
	}

	navigator.state = leftAndFront
	navigator.Step(Buttons{})
	if navigator.State() != win {
		t.Errorf("Bad state after two dead ends: %v", navigator.State())
	}
}

func TestNavigatorCelebratesUntilReset(t *testing.T) {
	configuration = DefaultConfiguration()
	navigator, board, clock, _ := newTestNavigator(&StaticRanges{})
	navigator.state = win
	navigator.lastState = leftAndFront

	navigator.Step(Buttons{})
	if board.Leds() != 0xAAAA {
		t.Errorf("Bad LEDs: %04X", board.Leds())
	}
	if !board.Level(LeftForward) || !board.Level(LeftReverse) {
		t.Error("Not braking")
	}
	clock.Advance(uint64(msToTicks(configuration.CelebrationBlinkMs)))
	navigator.Step(Buttons{})
	if board.Leds() != 0x5555 {
		t.Errorf("Bad LEDs: %04X", board.Leds())
	}

	navigator.Step(Buttons{Down: true})
	if navigator.State() != waitToStart {
		t.Errorf("Bad state: %v", navigator.State())
	}
	if navigator.lastState != waitToStart {
		t.Errorf("Bad last state: %v", navigator.lastState)
	}
}

func TestNavigatorTurnsAndPauses(t *testing.T) {
	configuration = DefaultConfiguration()
	navigator, board, clock, _ := newTestNavigator(&StaticRanges{FrontCm: 5, LeftCm: 5})
	navigator.state = turning
	navigator.turnDirection = Right

	navigator.Step(Buttons{})
	if navigator.State() != pausing {
		t.Errorf("Bad state: %v", navigator.State())
	}
	// Ends on the post turn correction, driving straight
	minimum := configuration.PostTurnCorrectionIn * configuration.CountsPerInch
	if navigator.train.LeftEncoder.Count() < minimum || navigator.train.RightEncoder.Count() < minimum {
		t.Errorf("Bad counts: %v %v", navigator.train.LeftEncoder.Count(), navigator.train.RightEncoder.Count())
	}
	if board.Level(LeftPwm) || board.Level(RightPwm) {
		t.Error("PWM left on after the turn")
	}

	clock.Advance(uint64(msToTicks(configuration.PauseMs)))
	navigator.Step(Buttons{})
	if navigator.State() != initializeDrive {
		t.Errorf("Bad state: %v", navigator.State())
	}
}
