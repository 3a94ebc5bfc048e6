package mazebot

import (
	"context"
)

// State shared between the ultrasonic pipeline, the drive controller and
// the navigator. Only the control loop touches it.
type LoopContext struct {
	Duty DutyCycles
	// Only meaningful on the iteration NewReading is set
	Readings       DistanceReadings
	NewReading     bool
	Classification MazeState
}

type Robot struct {
	board      Board
	watch      Stopwatch
	shared     *LoopContext
	buttons    *ButtonEdges
	ultrasonic *UltrasonicPair
	train      *Drivetrain
	navigator  *Navigator
	sinks      []TelemetrySink
}

func NewRobot(board Board, watch Stopwatch) *Robot {
	shared := &LoopContext{Classification: leftOnly}
	train := NewDrivetrain(board, &shared.Duty)
	train.SetMotion(Straight)
	return &Robot{
		board:      board,
		watch:      watch,
		shared:     shared,
		buttons:    NewButtonEdges(board),
		ultrasonic: NewUltrasonicPair(board, watch, shared),
		train:      train,
		navigator:  NewNavigator(board, watch, train, shared),
	}
}

func (robot *Robot) AddSink(sink TelemetrySink) {
	robot.sinks = append(robot.sinks, sink)
}

// One iteration of the control loop. The order matters: buttons, one
// ultrasonic step, reclassify if there's a fresh reading, one navigator
// step.
func (robot *Robot) Step() {
	buttons := robot.buttons.Sample()
	if robot.ultrasonic.Step() {
		robot.shared.Classification = ClassifyWalls(robot.shared.Readings)
	}
	robot.navigator.Step(buttons)
	robot.publishTelemetry()
}

// Runs the loop until the context is cancelled
func (robot *Robot) Run(ctx context.Context) error {
	Logger.Info("Waiting for start button")
	for {
		select {
		case <-ctx.Done():
			robot.Shutdown()
			return ctx.Err()
		default:
		}
		robot.Step()
	}
}

// Runs at most iterations steps, stopping early once the maze is solved
func (robot *Robot) RunFor(iterations int) bool {
	for i := 0; i < iterations; i++ {
		robot.Step()
		if robot.navigator.State() == win {
			return true
		}
	}
	return false
}

// Stop the motors and close the telemetry sinks
func (robot *Robot) Shutdown() {
	robot.train.Halt()
	robot.train.SetMotion(Idle)
	for _, sink := range robot.sinks {
		if err := sink.Close(); err != nil {
			Logger.Warningf("Unable to close telemetry sink: %v", err)
		}
	}
	robot.sinks = nil
}

func (robot *Robot) State() MazeState {
	return robot.navigator.State()
}

func (robot *Robot) Context() *LoopContext {
	return robot.shared
}

func (robot *Robot) Snapshot() Snapshot {
	return Snapshot{
		State:      robot.navigator.State().String(),
		Walls:      robot.shared.Classification.String(),
		Motion:     robot.train.Motion().String(),
		FrontCm:    robot.shared.Readings.FrontCm,
		LeftCm:     robot.shared.Readings.LeftCm,
		LeftDuty:   robot.shared.Duty.Left,
		RightDuty:  robot.shared.Duty.Right,
		LeftCount:  robot.train.LeftEncoder.Count(),
		RightCount: robot.train.RightEncoder.Count(),
	}
}

func (robot *Robot) publishTelemetry() {
	if len(robot.sinks) == 0 {
		return
	}
	if robot.watch.Read(telemetryChannel) < msToTicks(configuration.TelemetryIntervalMs) {
		return
	}
	// Sinks can block for milliseconds; keep them out of the echo timing
	if robot.ultrasonic.State() != cooldown {
		return
	}
	robot.watch.Start(telemetryChannel)
	snapshot := robot.Snapshot()
	for _, sink := range robot.sinks {
		if err := sink.Publish(snapshot); err != nil {
			Logger.Warningf("Unable to publish telemetry: %v", err)
		}
	}
}
