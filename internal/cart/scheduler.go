package cart

import "time"

// Scheduler defers a function call by a fixed delay. The store is
// constructed with one instead of owning timers itself, so tests can drive
// the notification clock by hand.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// TimerScheduler schedules on the runtime clock via time.AfterFunc.
type TimerScheduler struct{}

// AfterFunc implements Scheduler.
func (TimerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}
