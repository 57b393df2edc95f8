package clock

import "testing"

func TestTimePeriodShiftByDuration(t *testing.T) {
	p := TimePeriod{Start: 100, Duration: 3600}
	shifted := p.ShiftByDuration(2)
	if shifted.Start != 7300 {
		t.Fatalf("expected start 7300, got %d", shifted.Start)
	}
	if shifted.Duration != p.Duration {
		t.Fatalf("expected duration unchanged, got %d", shifted.Duration)
	}
}

func TestTimePeriodContains(t *testing.T) {
	p := TimePeriod{Start: 0, Duration: 3600}
	if !p.Contains(0) {
		t.Fatal("expected period to contain its start")
	}
	if p.Contains(3600) {
		t.Fatal("expected period to be half-open at the end")
	}
	if !p.Contains(3599) {
		t.Fatal("expected period to contain the last tick before end")
	}
}

func TestFixedStepClockAdvance(t *testing.T) {
	c := NewFixedStepClock(0, 3600)
	if c.Now() != 0 {
		t.Fatalf("expected initial time 0, got %d", c.Now())
	}
	if c.OperationPeriod() != 3600 {
		t.Fatalf("expected operation period 3600, got %d", c.OperationPeriod())
	}
	next := c.Advance()
	if next != 3600 || c.Now() != 3600 {
		t.Fatalf("expected advance to 3600, got %d", next)
	}
}
