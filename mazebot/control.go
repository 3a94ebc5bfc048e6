// Control for the drive motors
package mazebot

// The two motors, their encoders and the PWM phase they share. Duty cycles
// live in the loop context so the navigator and telemetry can see them.
type Drivetrain struct {
	board        Board
	LeftEncoder  *EncoderCounter
	RightEncoder *EncoderCounter
	pwm          PwmGenerator
	duty         *DutyCycles
	motion       MotionType
}

func NewDrivetrain(board Board, duty *DutyCycles) *Drivetrain {
	return &Drivetrain{
		board:        board,
		LeftEncoder:  NewEncoderCounter(board, LeftEncoder),
		RightEncoder: NewEncoderCounter(board, RightEncoder),
		duty:         duty,
		motion:       Idle,
	}
}

func (train *Drivetrain) SetMotion(mode MotionType) {
	SetMotionType(train.board, mode)
	train.motion = mode
}

func (train *Drivetrain) Motion() MotionType {
	return train.motion
}

func (train *Drivetrain) ResetEncoders() {
	train.LeftEncoder.Reset()
	train.RightEncoder.Reset()
}

func (train *Drivetrain) SetDuty(left, right uint8) {
	train.duty.Left = left
	train.duty.Right = right
}

func (train *Drivetrain) Duty() DutyCycles {
	return *train.duty
}

// Drives each PWM line for the current phase, then moves to the next phase
func (train *Drivetrain) pulse(leftReached, rightReached bool) {
	train.board.Write(LeftPwm, train.pwm.Tick(train.duty.Left, leftReached))
	train.board.Write(RightPwm, train.pwm.Tick(train.duty.Right, rightReached))
	train.pwm.Advance()
}

func (train *Drivetrain) release() {
	train.board.Write(LeftPwm, false)
	train.board.Write(RightPwm, false)
}

// Zero duty and both PWM lines low
func (train *Drivetrain) Halt() {
	train.SetDuty(0, 0)
	train.release()
}

// Mirror the duty cycles on the LED bank, left in the high byte
func (train *Drivetrain) showDuty() {
	train.board.SetLeds(uint16(train.duty.Left)<<8 | uint16(train.duty.Right))
}
