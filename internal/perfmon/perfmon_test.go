package perfmon

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReportAggregates(t *testing.T) {
	m := NewMonitor(0)

	m.Record("sqlite", 10*time.Millisecond, 5)
	m.Record("sqlite", 30*time.Millisecond, 7)
	m.Record("sqlite", 20*time.Millisecond, 2)

	report := m.Report("sqlite")
	assert.Equal(t, 3, report.SampleCount)
	assert.Equal(t, 20*time.Millisecond, report.AverageTook)
	assert.Equal(t, 10*time.Millisecond, report.MinTook)
	assert.Equal(t, 30*time.Millisecond, report.MaxTook)
}

func TestReportEmptyBackend(t *testing.T) {
	m := NewMonitor(0)

	report := m.Report("memory")
	assert.Equal(t, 0, report.SampleCount)
	assert.Equal(t, time.Duration(0), report.AverageTook)
}

func TestWindowEviction(t *testing.T) {
	m := NewMonitor(3)

	for i := 1; i <= 5; i++ {
		m.Record("memory", time.Duration(i)*time.Millisecond, i)
	}

	samples := m.RecentSamples("memory", 0)
	assert.Len(t, samples, 3)
	assert.Equal(t, 3*time.Millisecond, samples[0].Took)
	assert.Equal(t, 5*time.Millisecond, samples[2].Took)
}

func TestRecentSamplesLimit(t *testing.T) {
	m := NewMonitor(0)
	for i := 0; i < 10; i++ {
		m.Record("sqlite", time.Millisecond, 1)
	}

	assert.Len(t, m.RecentSamples("sqlite", 4), 4)
	assert.Len(t, m.RecentSamples("sqlite", 100), 10)
	assert.Empty(t, m.RecentSamples("unknown", 4))
}

func TestCompare(t *testing.T) {
	m := NewMonitor(0)
	m.Record("memory", 40*time.Millisecond, 3)
	m.Record("sqlite", 10*time.Millisecond, 3)

	c := m.Compare("memory", "sqlite")
	assert.InDelta(t, 4.0, c.SpeedupRatio, 0.001)

	// Missing samples on either side yield no ratio.
	c = m.Compare("memory", "unknown")
	assert.Equal(t, 0.0, c.SpeedupRatio)
}

func TestReset(t *testing.T) {
	m := NewMonitor(0)
	m.Record("sqlite", time.Millisecond, 1)

	m.Reset()
	assert.Empty(t, m.Backends())
	assert.Equal(t, 0, m.Report("sqlite").SampleCount)
}

func TestConcurrentRecording(t *testing.T) {
	m := NewMonitor(100)

	done := make(chan struct{})
	for g := 0; g < 4; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 50; i++ {
				m.Record(fmt.Sprintf("backend-%d", g%2), time.Millisecond, 1)
			}
		}(g)
	}
	for g := 0; g < 4; g++ {
		<-done
	}

	total := m.Report("backend-0").SampleCount + m.Report("backend-1").SampleCount
	assert.Equal(t, 200, total)
}
