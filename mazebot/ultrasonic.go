package mazebot

import (
	"sort"
)

type UltrasonicState uint8

const (
	sendTrigger UltrasonicState = iota + 1
	clearTrigger
	countEchoDuration
	medianFilter
	calculateDistance
	cooldown
)

func (state UltrasonicState) String() string {
	names := []string{"Unknown", "SendTrigger", "ClearTrigger", "CountEchoDuration", "MedianFilter", "CalculateDistance", "Cooldown"}
	if int(state) >= len(names) {
		return names[0]
	}
	return names[state]
}

type UltrasonicSensor struct {
	Trigger         Line
	Echo            Line
	TimerChannel    uint8
	RawEchoTicks    uint32
	MedianEchoTicks uint32

	lastEcho bool
	seenEcho bool
	echoRead bool
}

func (sensor *UltrasonicSensor) clearFlags() {
	sensor.lastEcho = false
	sensor.seenEcho = false
	sensor.echoRead = false
}

type DistanceReadings struct {
	FrontCm uint32
	LeftCm  uint32
}

// The number of readings the median is taken over
const MEDIAN_WINDOW = 5

// Sliding windows for both sensors. They share one write index so the
// front and left samples in a slot were taken on the same ping.
type MedianFilter struct {
	front [MEDIAN_WINDOW]uint32
	left  [MEDIAN_WINDOW]uint32
	index int
}

func NewMedianFilter(initial uint32) *MedianFilter {
	filter := &MedianFilter{}
	for i := 0; i < MEDIAN_WINDOW; i++ {
		filter.front[i] = initial
		filter.left[i] = initial
	}
	return filter
}

// Overwrites the oldest slot and returns the new medians. A single
// outlier never makes it through; it takes three agreeing readings to
// move the median.
func (filter *MedianFilter) Push(front, left uint32) (uint32, uint32) {
	filter.front[filter.index] = front
	filter.left[filter.index] = left
	filter.index++
	if filter.index == MEDIAN_WINDOW {
		filter.index = 0
	}
	return median(filter.front), median(filter.left)
}

// The window is passed by value, so sorting doesn't disturb slot order
func median(window [MEDIAN_WINDOW]uint32) uint32 {
	sorted := window[:]
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[MEDIAN_WINDOW/2]
}

// Pings the front and left sensors together and publishes filtered
// distances. Each call advances at most one state, so it never blocks the
// loop.
type UltrasonicPair struct {
	board   Board
	watch   Stopwatch
	state   UltrasonicState
	Front   *UltrasonicSensor
	Left    *UltrasonicSensor
	filter  *MedianFilter
	context *LoopContext
}

func NewUltrasonicPair(board Board, watch Stopwatch, context *LoopContext) *UltrasonicPair {
	return &UltrasonicPair{
		board: board,
		watch: watch,
		state: sendTrigger,
		Front: &UltrasonicSensor{
			Trigger:      FrontTrigger,
			Echo:         FrontEcho,
			TimerChannel: frontEchoChannel,
		},
		Left: &UltrasonicSensor{
			Trigger:      LeftTrigger,
			Echo:         LeftEcho,
			TimerChannel: leftEchoChannel,
		},
		filter:  NewMedianFilter(configuration.InitialEchoTicks),
		context: context,
	}
}

func (pair *UltrasonicPair) State() UltrasonicState {
	return pair.state
}

// Advance one state. Returns true on the one step a new reading is
// published, and mirrors that in the loop context.
func (pair *UltrasonicPair) Step() bool {
	pair.context.NewReading = false
	pair.state = pair.next()
	return pair.context.NewReading
}

func (pair *UltrasonicPair) next() UltrasonicState {
	switch pair.state {
	case sendTrigger:
		return pair.runSendTrigger()
	case clearTrigger:
		return pair.runClearTrigger()
	case countEchoDuration:
		return pair.runCountEchoDuration()
	case medianFilter:
		return pair.runMedianFilter()
	case calculateDistance:
		return pair.runCalculateDistance()
	case cooldown:
		return pair.runCooldown()
	}
	return sendTrigger
}

func (pair *UltrasonicPair) runSendTrigger() UltrasonicState {
	// Make sure the pulse starts from low
	pair.board.Write(pair.Front.Trigger, false)
	pair.board.Write(pair.Left.Trigger, false)
	pair.board.Write(pair.Front.Trigger, true)
	pair.board.Write(pair.Left.Trigger, true)
	pair.watch.Start(ultrasonicChannel)
	return clearTrigger
}

func (pair *UltrasonicPair) runClearTrigger() UltrasonicState {
	if pair.watch.Read(ultrasonicChannel) < configuration.TriggerPulseTicks {
		return clearTrigger
	}
	pair.board.Write(pair.Front.Trigger, false)
	pair.board.Write(pair.Left.Trigger, false)
	pair.Front.clearFlags()
	pair.Left.clearFlags()
	return countEchoDuration
}

func (pair *UltrasonicPair) runCountEchoDuration() UltrasonicState {
	sinceTrigger := pair.watch.Read(ultrasonicChannel)
	pair.trackEcho(pair.Front, sinceTrigger)
	pair.trackEcho(pair.Left, sinceTrigger)
	if pair.Front.echoRead && pair.Left.echoRead {
		return medianFilter
	}
	return countEchoDuration
}

// Starts the sensor's timer on the echo's rising edge and latches it on
// the falling edge. An echo that stays high past the distance threshold is
// cut short; we only need to know it's beyond the threshold.
func (pair *UltrasonicPair) trackEcho(sensor *UltrasonicSensor, sinceTrigger uint32) {
	current := pair.board.Read(sensor.Echo)
	defer func() { sensor.lastEcho = current }()
	if sensor.echoRead {
		return
	}

	var ticks uint32
	if sensor.seenEcho {
		ticks = pair.watch.Read(sensor.TimerChannel)
	}

	if current && !sensor.lastEcho {
		pair.watch.Start(sensor.TimerChannel)
		sensor.seenEcho = true
	}
	if !current && sensor.lastEcho && sensor.seenEcho {
		sensor.RawEchoTicks = ticks
		sensor.echoRead = true
		return
	}

	if sensor.seenEcho && ticks >= configuration.EchoTimeoutTicks {
		sensor.RawEchoTicks = ticks
		sensor.echoRead = true
		return
	}
	// No echo at all, e.g. a disconnected sensor
	if !sensor.seenEcho && configuration.EchoStartTimeoutTicks > 0 && sinceTrigger >= configuration.EchoStartTimeoutTicks {
		Logger.Debugf("No echo on %v", sensor.Echo)
		sensor.RawEchoTicks = configuration.EchoTimeoutTicks
		sensor.echoRead = true
	}
}

func (pair *UltrasonicPair) runMedianFilter() UltrasonicState {
	pair.Front.MedianEchoTicks, pair.Left.MedianEchoTicks = pair.filter.Push(pair.Front.RawEchoTicks, pair.Left.RawEchoTicks)
	return calculateDistance
}

func (pair *UltrasonicPair) runCalculateDistance() UltrasonicState {
	pair.context.Readings = DistanceReadings{
		FrontCm: ticksToCentimeters(pair.Front.MedianEchoTicks),
		LeftCm:  ticksToCentimeters(pair.Left.MedianEchoTicks),
	}
	pair.context.NewReading = true
	Logger.Debugf("front %v cm left %v cm", pair.context.Readings.FrontCm, pair.context.Readings.LeftCm)
	pair.watch.Start(ultrasonicChannel)
	return cooldown
}

func (pair *UltrasonicPair) runCooldown() UltrasonicState {
	if pair.watch.Read(ultrasonicChannel) >= configuration.CooldownTicks {
		return sendTrigger
	}
	return cooldown
}

func ticksToCentimeters(ticks uint32) uint32 {
	return configuration.ticksToCentimeters(ticks)
}
