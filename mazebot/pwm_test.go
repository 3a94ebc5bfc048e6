package mazebot

import (
	"testing"
)

func TestPwmWraps(t *testing.T) {
	pwm := PwmGenerator{}
	for i := 0; i < PWM_TOP-1; i++ {
		pwm.Advance()
	}
	if pwm.Phase() != PWM_TOP-1 {
		t.Errorf("Bad phase: %v", pwm.Phase())
	}
	pwm.Advance()
	if pwm.Phase() != 0 {
		t.Errorf("Bad phase after wrap: %v", pwm.Phase())
	}
}

func countHigh(duty uint8, reached bool) int {
	pwm := PwmGenerator{}
	high := 0
	for i := 0; i < PWM_TOP; i++ {
		if pwm.Tick(duty, reached) {
			high++
		}
		pwm.Advance()
	}
	return high
}

func TestPwmDutyCycle(t *testing.T) {
	if high := countHigh(0xCF, false); high != 0xCF+1 {
		t.Errorf("Bad high count: %v", high)
	}
	if high := countHigh(0, false); high != 1 {
		t.Errorf("Bad high count: %v", high)
	}
	if high := countHigh(0xFF, false); high != PWM_TOP {
		t.Errorf("Bad high count: %v", high)
	}
	if high := countHigh(0xFF, true); high != 0 {
		t.Errorf("Bad high count after reaching target: %v", high)
	}
}

func TestPwmReset(t *testing.T) {
	pwm := PwmGenerator{}
	pwm.Advance()
	pwm.Advance()
	pwm.Reset()
	if pwm.Phase() != 0 {
		t.Errorf("Bad phase: %v", pwm.Phase())
	}
}
