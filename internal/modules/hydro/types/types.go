package types

import "time"

// SensorReading is one stored scalar measurement. Time is the corrected UTC
// instant (device clock skew already applied by the collector).
type SensorReading struct {
	Time      time.Time `json:"time"`
	SensorID  int       `json:"sensorId"`
	Value     float64   `json:"value"`
	TypeIndex int       `json:"sensorTypeIndex"`
}

// PumpPulse is one stored dosing-pump activation.
type PumpPulse struct {
	Time        time.Time `json:"time"`
	PumpID      int       `json:"pumpId"`
	Length      float64   `json:"pulseLength"`
	Interrupted bool      `json:"interrupted"`
}

// Pump ids as the controller assigns them. Anything else is stored but not
// charted.
const (
	PumpPHDown = 1
	PumpPHUp   = 2
)

// Sensor identity for the pH probe, the only sensor wired up so far.
const (
	PHSensorID  = 1
	PHTypeIndex = 0
)
