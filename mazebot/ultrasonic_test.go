package mazebot

import (
	"testing"
)

func TestMedianFilter(t *testing.T) {
	filter := NewMedianFilter(10)
	front, left := filter.Push(1000, 10)
	if front != 10 || left != 10 {
		t.Errorf("Bad median after one outlier: %v %v", front, left)
	}
	front, _ = filter.Push(1000, 10)
	if front != 10 {
		t.Errorf("Bad median after two outliers: %v", front)
	}
	front, _ = filter.Push(1000, 10)
	if front != 1000 {
		t.Errorf("Bad median after three readings: %v", front)
	}
}

func TestMedianFilterOrdering(t *testing.T) {
	filter := NewMedianFilter(0)
	var front uint32
	for _, reading := range []uint32{50, 10, 40, 20, 30} {
		front, _ = filter.Push(reading, 0)
	}
	if front != 30 {
		t.Errorf("Bad median: %v", front)
	}
	// Taking the median doesn't reorder the window, so the oldest is still
	// the one replaced
	front, _ = filter.Push(5, 0)
	if front != 20 {
		t.Errorf("Bad median: %v", front)
	}
}

func TestTicksToCentimeters(t *testing.T) {
	configuration = DefaultConfiguration()
	if cm := ticksToCentimeters(754); cm != 13 {
		t.Errorf("Bad cm: %v", cm)
	}
	if cm := ticksToCentimeters(57); cm != 0 {
		t.Errorf("Bad cm: %v", cm)
	}
}

// Steps the pair until it publishes count readings, moving time forward one
// tick per step so the waits finish even without reads
func collectReadings(t *testing.T, pair *UltrasonicPair, clock *SimulatedClock, count int) DistanceReadings {
	readings := 0
	for i := 0; i < 10000000; i++ {
		clock.Advance(1)
		if pair.Step() {
			readings++
			if readings == count {
				return pair.context.Readings
			}
		}
	}
	t.Fatalf("Only got %v readings", readings)
	return DistanceReadings{}
}

func TestUltrasonicPairReadsDistances(t *testing.T) {
	configuration = DefaultConfiguration()
	clock := NewSimulatedClock()
	board := NewSimulatedBoard(clock, &StaticRanges{FrontCm: 10, LeftCm: 30})
	shared := &LoopContext{}
	pair := NewUltrasonicPair(board, clock, shared)

	// The window starts at the timeout, so one reading isn't enough
	readings := collectReadings(t, pair, clock, 1)
	if readings.FrontCm != 13 || readings.LeftCm != 13 {
		t.Errorf("Bad first readings: %+v", readings)
	}

	readings = collectReadings(t, pair, clock, 2)
	if readings.FrontCm < 9 || readings.FrontCm > 10 {
		t.Errorf("Bad front reading: %v", readings.FrontCm)
	}
	// Cut short at the threshold
	if readings.LeftCm != 13 {
		t.Errorf("Bad left reading: %v", readings.LeftCm)
	}
	if pair.Left.RawEchoTicks < configuration.EchoTimeoutTicks || pair.Left.RawEchoTicks > configuration.EchoTimeoutTicks+10 {
		t.Errorf("Bad raw left ticks: %v", pair.Left.RawEchoTicks)
	}
	if ClassifyWalls(readings) != frontOnly {
		t.Errorf("Bad walls: %v", ClassifyWalls(readings))
	}
}

func TestUltrasonicPairWithoutEcho(t *testing.T) {
	configuration = DefaultConfiguration()
	clock := NewSimulatedClock()
	board := NewSimulatedBoard(clock, &StaticRanges{FrontCm: 5, LeftCm: 5})
	board.EchoDelay = 1 << 40
	pair := NewUltrasonicPair(board, clock, &LoopContext{})

	collectReadings(t, pair, clock, 1)
	if pair.Front.RawEchoTicks != configuration.EchoTimeoutTicks {
		t.Errorf("Bad raw front ticks: %v", pair.Front.RawEchoTicks)
	}
	if pair.Left.RawEchoTicks != configuration.EchoTimeoutTicks {
		t.Errorf("Bad raw left ticks: %v", pair.Left.RawEchoTicks)
	}
}

func TestUltrasonicPairStates(t *testing.T) {
	configuration = DefaultConfiguration()
	clock := NewSimulatedClock()
	board := NewSimulatedBoard(clock, &StaticRanges{FrontCm: 5, LeftCm: 5})
	pair := NewUltrasonicPair(board, clock, &LoopContext{})

	if pair.State() != sendTrigger {
		t.Errorf("Bad state: %v", pair.State())
	}
	pair.Step()
	if pair.State() != clearTrigger || !board.Level(FrontTrigger) || !board.Level(LeftTrigger) {
		t.Errorf("Bad trigger: %v", pair.State())
	}
	// Not long enough yet
	clock.Advance(uint64(configuration.TriggerPulseTicks) - 1)
	pair.Step()
	if pair.State() != clearTrigger {
		t.Errorf("Bad state: %v", pair.State())
	}
	clock.Advance(1)
	pair.Step()
	if pair.State() != countEchoDuration || board.Level(FrontTrigger) || board.Level(LeftTrigger) {
		t.Errorf("Bad state: %v", pair.State())
	}
}

func TestTimedOutEchoReadsOpen(t *testing.T) {
	for _, tune := range []func(*Configuration){
		func(c *Configuration) { c.DistanceThresholdCm = 20 },
		func(c *Configuration) { c.MicrosecondsPerTick = 0.5 },
	} {
		c := DefaultConfiguration()
		c.EchoTimeoutTicks = 0
		c.InitialEchoTicks = 0
		tune(&c)
		if err := SetConfiguration(c); err != nil {
			t.Fatal(err)
		}
		clock := NewSimulatedClock()
		board := NewSimulatedBoard(clock, &StaticRanges{FrontCm: 300, LeftCm: 300})
		pair := NewUltrasonicPair(board, clock, &LoopContext{})

		for i := 1; i <= MEDIAN_WINDOW; i++ {
			readings := collectReadings(t, pair, clock, 1)
			if walls := ClassifyWalls(readings); walls != noLeftOrFront {
				t.Errorf("Bad walls on reading %d with %+v: %v", i, readings, walls)
			}
		}
	}
	configuration = DefaultConfiguration()
}
