package mazebot

// Fraction of the PWM period each motor is driven, 0x00 to 0xFF
type DutyCycles struct {
	Left  uint8
	Right uint8
}

// Keeps the two wheels turning at the same rate by trading duty cycle
// between them. The integral isn't clamped unless IntegralLimit is set.
type PidController struct {
	kp, ki, kd    float64
	integralLimit int32
	floor         uint8
	errorSum      int32
	previousError int32
}

func NewPidController() *PidController {
	return &PidController{
		kp:            configuration.Kp,
		ki:            configuration.Ki,
		kd:            configuration.Kd,
		integralLimit: configuration.IntegralLimit,
		floor:         configuration.MinimumDutyCycle,
	}
}

func (pid *PidController) Reset() {
	pid.errorSum = 0
	pid.previousError = 0
}

// Adjusts duty in place from the latest encoder counts. The wheel that's
// ahead slows down no further than the floor, the one behind speeds up to
// at most 0xFF.
func (pid *PidController) Step(leftCount, rightCount uint32, duty *DutyCycles) {
	err := int32(leftCount) - int32(rightCount)
	pid.errorSum += err
	if pid.integralLimit > 0 {
		pid.errorSum = clampInt32(pid.errorSum, -pid.integralLimit, pid.integralLimit)
	}
	errorDiff := err - pid.previousError

	rawCorrection := pid.kp*float64(err) + pid.ki*float64(pid.errorSum) + pid.kd*float64(errorDiff)
	correction := scaleCorrection(int32(rawCorrection))

	if err > 0 {
		duty.Right = boost(duty.Right, correction)
		duty.Left = reduce(duty.Left, correction, pid.floor)
	} else if err < 0 {
		duty.Left = boost(duty.Left, correction)
		duty.Right = reduce(duty.Right, correction, pid.floor)
	}

	pid.previousError = err
}

func (pid *PidController) ErrorSum() int32 {
	return pid.errorSum
}

// Magnitude of the correction, saturated to a byte
func scaleCorrection(rawCorrection int32) uint8 {
	magnitude := rawCorrection
	if magnitude < 0 {
		magnitude = -magnitude
	}
	if magnitude >= 0xFF {
		return 0xFF
	}
	return uint8(magnitude)
}

func boost(value, correction uint8) uint8 {
	sum := int(value) + int(correction)
	if sum > 0xFF {
		return 0xFF
	}
	return uint8(sum)
}

func reduce(value, correction, floor uint8) uint8 {
	difference := int(value) - int(correction)
	if difference < int(floor) {
		return floor
	}
	return uint8(difference)
}
