package mazebot

import (
	"math"
)

type TurnDirection uint8

const (
	Left TurnDirection = iota
	Right
)

func (td TurnDirection) String() string {
	names := []string{"Left", "Right"}
	if int(td) >= len(names) {
		return "Unknown"
	}
	return names[td]
}

func (td TurnDirection) motion() MotionType {
	if td == Left {
		return TurnLeft
	}
	return TurnRight
}

// Open-loop pivot. Both wheels run at the same fixed duty cycle with no PID
// correction, so slip during the turn isn't compensated.
type TurnController struct {
	train *Drivetrain
}

func NewTurnController(train *Drivetrain) *TurnController {
	return &TurnController{train: train}
}

// Encoder counts each wheel covers while pivoting the given number of
// degrees. 180 degree turns came up short on the floor, so they get extra.
func ArcTarget(degrees uint32) uint32 {
	if degrees == 180 {
		degrees += configuration.HalfTurnCorrection
	}
	fraction := float64(degrees) / 360
	arcInches := fraction * math.Pi * configuration.TrackWidthInches
	return uint32(arcInches * float64(configuration.CountsPerInch))
}

type pivot struct {
	train  *Drivetrain
	target uint32
}

func (turn *TurnController) Turn(direction TurnDirection, degrees uint32) Maneuver {
	turn.train.SetMotion(direction.motion())
	turn.train.ResetEncoders()
	turn.train.pwm.Reset()
	turn.train.SetDuty(configuration.TurnDutyCycle, configuration.TurnDutyCycle)
	return &pivot{
		train:  turn.train,
		target: ArcTarget(degrees),
	}
}

func (maneuver *pivot) Step() bool {
	leftReached := maneuver.train.LeftEncoder.Poll() >= maneuver.target
	rightReached := maneuver.train.RightEncoder.Poll() >= maneuver.target
	if leftReached && rightReached {
		maneuver.train.release()
		return true
	}
	maneuver.train.pulse(leftReached, rightReached)
	maneuver.train.showDuty()
	return false
}

func (maneuver *pivot) Abort() {
	maneuver.train.Halt()
}
