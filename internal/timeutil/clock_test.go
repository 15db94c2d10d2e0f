package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockClock_Advance(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMockClock(start)

	c.Advance(1500 * time.Millisecond)

	assert.Equal(t, start.Add(1500*time.Millisecond), c.Now())
	assert.Equal(t, 1500*time.Millisecond, c.Since(start))
}

func TestMockTicker_FiresOnInterval(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMockClock(start)
	tk := c.NewTicker(100 * time.Millisecond)
	assert.Equal(t, 1, c.Tickers())

	c.Advance(50 * time.Millisecond)
	select {
	case <-tk.C():
		t.Fatal("ticker fired early")
	default:
	}

	c.Advance(50 * time.Millisecond)
	select {
	case got := <-tk.C():
		assert.Equal(t, start.Add(100*time.Millisecond), got)
	default:
		t.Fatal("ticker did not fire")
	}
}

func TestMockTicker_StopAndDrop(t *testing.T) {
	c := NewMockClock(time.Unix(0, 0))
	tk := c.NewTicker(10 * time.Millisecond)

	// Two due ticks with no reader: the second is dropped.
	c.Advance(10 * time.Millisecond)
	c.Advance(10 * time.Millisecond)
	<-tk.C()
	select {
	case <-tk.C():
		t.Fatal("expected dropped tick")
	default:
	}

	tk.Stop()
	c.Advance(time.Second)
	select {
	case <-tk.C():
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestRealClock(t *testing.T) {
	var c Clock = RealClock{}
	before := c.Now()
	tk := c.NewTicker(time.Millisecond)
	defer tk.Stop()
	<-tk.C()
	assert.Positive(t, c.Since(before))
}
