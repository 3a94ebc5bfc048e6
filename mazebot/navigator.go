package mazebot

type MazeState uint8

const (
	waitToStart MazeState = iota + 1
	startDelay
	updateUltrasonic
	initializeDrive
	leftOnly
	leftAndFront
	frontOnly
	noLeftOrFront
	turning
	pausing
	win
)

func (state MazeState) String() string {
	names := []string{
		"Unknown",
		"WaitToStart",
		"StartDelay",
		"UpdateUltrasonic",
		"InitializeDrive",
		"LeftOnly",
		"LeftAndFront",
		"FrontOnly",
		"NoLeftOrFront",
		"Turning",
		"Pausing",
		"Win",
	}
	if int(state) >= len(names) {
		return names[0]
	}
	return names[state]
}

// Which of the four wall layouts the fused readings describe
func ClassifyWalls(readings DistanceReadings) MazeState {
	threshold := configuration.DistanceThresholdCm
	front := readings.FrontCm < threshold
	left := readings.LeftCm < threshold
	switch {
	case left && !front:
		return leftOnly
	case left && front:
		return leftAndFront
	case front:
		return frontOnly
	}
	return noLeftOrFront
}

// Follows the left wall: straight while there's a wall on the left only,
// right when the front is blocked, left when both sides are open. Boxed in
// twice in a row means we've reached the end.
type Navigator struct {
	state          MazeState
	lastState      MazeState
	lastUltrasonic MazeState
	turnDirection  TurnDirection
	ledState       uint16

	board   Board
	watch   Stopwatch
	train   *Drivetrain
	drive   *DriveController
	turn    *TurnController
	context *LoopContext
}

func NewNavigator(board Board, watch Stopwatch, train *Drivetrain, context *LoopContext) *Navigator {
	return &Navigator{
		state:          waitToStart,
		lastState:      waitToStart,
		lastUltrasonic: leftOnly,
		turnDirection:  Right,
		ledState:       0xAAAA,
		board:          board,
		watch:          watch,
		train:          train,
		drive:          NewDriveController(train),
		turn:           NewTurnController(train),
		context:        context,
	}
}

func (navigator *Navigator) State() MazeState {
	return navigator.state
}

// One step of the state machine
func (navigator *Navigator) Step(buttons Buttons) {
	next := navigator.next(buttons)
	if next != navigator.state {
		Logger.Infof("%v -> %v", navigator.state, next)
	}
	navigator.state = next
}

func (navigator *Navigator) next(buttons Buttons) MazeState {
	switch navigator.state {
	case waitToStart:
		return navigator.runWaitToStart(buttons)
	case startDelay:
		return navigator.runStartDelay()
	case updateUltrasonic:
		return navigator.runUpdateUltrasonic()
	case initializeDrive:
		return navigator.runInitializeDrive()
	case leftOnly:
		return navigator.runLeftOnly()
	case leftAndFront:
		return navigator.runLeftAndFront()
	case frontOnly:
		return navigator.runStopAndTurn(frontOnly, Right)
	case noLeftOrFront:
		return navigator.runStopAndTurn(noLeftOrFront, Left)
	case turning:
		return navigator.runTurning()
	case pausing:
		return navigator.runPausing()
	case win:
		return navigator.runWin(buttons)
	}
	return initializeDrive
}

func (navigator *Navigator) runWaitToStart(buttons Buttons) MazeState {
	if buttons.Up {
		navigator.watch.Start(startDelayChannel)
		return startDelay
	}
	return waitToStart
}

func (navigator *Navigator) runStartDelay() MazeState {
	if navigator.watch.Read(startDelayChannel) >= msToTicks(configuration.StartDelayMs) {
		return initializeDrive
	}
	return startDelay
}

func (navigator *Navigator) runUpdateUltrasonic() MazeState {
	navigator.lastUltrasonic = navigator.context.Classification
	return navigator.context.Classification
}

func (navigator *Navigator) runInitializeDrive() MazeState {
	navigator.train.SetMotion(Straight)
	navigator.drive.Init()
	return updateUltrasonic
}

func (navigator *Navigator) runLeftOnly() MazeState {
	navigator.lastState = leftOnly
	navigator.drive.Step()
	if navigator.context.NewReading && navigator.context.Classification != navigator.lastUltrasonic {
		return updateUltrasonic
	}
	return leftOnly
}

func (navigator *Navigator) runLeftAndFront() MazeState {
	navigator.stop()
	navigator.turnDirection = Right
	if navigator.lastState == leftAndFront {
		return win
	}
	navigator.lastState = leftAndFront
	return turning
}

func (navigator *Navigator) runStopAndTurn(state MazeState, direction TurnDirection) MazeState {
	navigator.stop()
	navigator.turnDirection = direction
	navigator.lastState = state
	return turning
}

func (navigator *Navigator) stop() {
	navigator.drive.Stop()
	navigator.train.SetMotion(Brake)
}

// Nudge forward before a left turn so the robot clears the wall it was
// following, pivot, then drive into the new corridor. Nothing else in the
// loop runs until this is done.
func (navigator *Navigator) runTurning() MazeState {
	var preTurn uint32
	if navigator.turnDirection == Left {
		preTurn = configuration.PreTurnCorrectionIn
	}
	maneuvers := []func() Maneuver{
		func() Maneuver { return navigator.drive.FixedDistance(preTurn) },
		func() Maneuver { return navigator.turn.Turn(navigator.turnDirection, configuration.TurnDegrees) },
		func() Maneuver { return navigator.drive.FixedDistance(configuration.PostTurnCorrectionIn) },
	}
	for _, start := range maneuvers {
		if !Complete(start(), navigator.watch) {
			navigator.train.SetMotion(Brake)
			break
		}
	}
	navigator.watch.Start(pauseChannel)
	return pausing
}

func (navigator *Navigator) runPausing() MazeState {
	if navigator.watch.Read(pauseChannel) >= msToTicks(configuration.PauseMs) {
		return initializeDrive
	}
	return pausing
}

func (navigator *Navigator) runWin(buttons Buttons) MazeState {
	navigator.train.SetMotion(Brake)
	navigator.celebrate()
	if buttons.Down {
		navigator.lastState = waitToStart
		return waitToStart
	}
	return win
}

func (navigator *Navigator) celebrate() {
	if navigator.watch.Read(celebrationChannel) >= msToTicks(configuration.CelebrationBlinkMs) {
		navigator.ledState ^= 0xFFFF
		navigator.watch.Start(celebrationChannel)
	}
	navigator.board.SetLeds(navigator.ledState)
}
