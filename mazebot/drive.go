package mazebot

// Straight-line driving with PID correction between the wheels
type DriveController struct {
	train *Drivetrain
	pid   *PidController
}

func NewDriveController(train *Drivetrain) *DriveController {
	return &DriveController{
		train: train,
		pid:   NewPidController(),
	}
}

// Start a new driving segment
func (drive *DriveController) Init() {
	drive.train.ResetEncoders()
	drive.pid.Reset()
	drive.train.pwm.Reset()
	drive.train.SetDuty(configuration.DriveDutyCycle, configuration.DriveDutyCycle)
}

// One non-blocking driving step: PWM for this phase, then a correction for
// the next one
func (drive *DriveController) Step() {
	drive.train.pulse(false, false)
	drive.pid.Step(drive.train.LeftEncoder.Poll(), drive.train.RightEncoder.Poll(), drive.train.duty)
}

func (drive *DriveController) Stop() {
	drive.train.Halt()
}

type fixedDistance struct {
	drive  *DriveController
	target uint32
}

// Drive straight until both wheels have covered inches. Run it with Complete.
func (drive *DriveController) FixedDistance(inches uint32) Maneuver {
	drive.train.SetMotion(Straight)
	drive.Init()
	return &fixedDistance{
		drive:  drive,
		target: inches * configuration.CountsPerInch,
	}
}

func (maneuver *fixedDistance) Step() bool {
	train := maneuver.drive.train
	leftReached := train.LeftEncoder.Poll() >= maneuver.target
	rightReached := train.RightEncoder.Poll() >= maneuver.target
	if leftReached && rightReached {
		train.release()
		return true
	}
	train.pulse(leftReached, rightReached)
	maneuver.drive.pid.Step(train.LeftEncoder.Poll(), train.RightEncoder.Poll(), train.duty)
	train.showDuty()
	return false
}

func (maneuver *fixedDistance) Abort() {
	maneuver.drive.Stop()
}
