package deviceclock

import (
	"testing"
	"time"
)

func TestCorrect(t *testing.T) {
	got := Correct(1000)
	want := time.Unix(15400, 0).UTC()
	if !got.Equal(want) {
		t.Errorf("Correct(1000) = %v; want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Errorf("Correct(1000) location = %v; want UTC", got.Location())
	}
}

func TestDisplayMillis(t *testing.T) {
	stored := time.Unix(15400, 0).UTC()
	got := DisplayMillis(stored)
	want := int64(1000 * 1000)
	if got != want {
		t.Errorf("DisplayMillis(%v) = %d; want %d", stored, got, want)
	}
}

func TestDisplayMillis_roundTrip(t *testing.T) {
	epochs := []int64{0, 500, 1000, 1700000000}
	for _, epoch := range epochs {
		got := DisplayMillis(Correct(epoch))
		if got != epoch*1000 {
			t.Errorf("DisplayMillis(Correct(%d)) = %d; want %d", epoch, got, epoch*1000)
		}
	}
}
