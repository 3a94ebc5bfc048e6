package mazebot

const PWM_TOP = 255

// Software PWM. One phase counter is shared by both motors so their
// pulses stay aligned.
type PwmGenerator struct {
	phase uint8
}

// Whether a motor with this duty cycle should be driven at the current
// phase. A motor that has reached its target is never driven.
func (pwm *PwmGenerator) Tick(duty uint8, reached bool) bool {
	return !reached && pwm.phase <= duty
}

// Moves to the next phase, wrapping from PWM_TOP-1 back to 0
func (pwm *PwmGenerator) Advance() {
	pwm.phase++
	if pwm.phase == PWM_TOP {
		pwm.phase = 0
	}
}

func (pwm *PwmGenerator) Reset() {
	pwm.phase = 0
}

func (pwm *PwmGenerator) Phase() uint8 {
	return pwm.phase
}
