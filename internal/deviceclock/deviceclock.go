// Package deviceclock isolates the correction for the hydro controller's
// clock, which reports epoch seconds 14400s behind UTC. Every timestamp
// crossing the process boundary goes through this package, so removing the
// workaround once the controller firmware is fixed touches nothing else.
//
// TODO: delete this package when the controller reports true UTC.
package deviceclock

import "time"

// skewSeconds is how far the controller's clock lags the true epoch.
const skewSeconds int64 = 14400

// Correct converts a device-reported epoch-seconds value into the real
// UTC instant it stands for.
func Correct(epoch int64) time.Time {
	return time.Unix(epoch+skewSeconds, 0).UTC()
}

// DisplayMillis reverses Correct for chart display: a stored corrected
// timestamp becomes device-local milliseconds since epoch, the unit the
// charting library plots on its datetime axis.
func DisplayMillis(t time.Time) int64 {
	return (t.Unix() - skewSeconds) * 1000
}
