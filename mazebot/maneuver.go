package mazebot

// A motion that takes many loop iterations to finish. Step returns true
// once the motion is complete.
type Maneuver interface {
	Step() bool
	Abort()
}

// Runs a maneuver to completion, starving everything else in the loop while
// it does. With no watchdog configured a stalled wheel hangs here forever.
// Returns false if the watchdog gave up on the maneuver.
func Complete(maneuver Maneuver, watch Stopwatch) bool {
	limit := msToTicks(configuration.ManeuverTimeoutMs)
	watch.Start(watchdogChannel)
	for !maneuver.Step() {
		if limit > 0 && watch.Read(watchdogChannel) >= limit {
			maneuver.Abort()
			Logger.Errorf("Maneuver didn't finish within %v ms, stopping motors", configuration.ManeuverTimeoutMs)
			return false
		}
	}
	return true
}
