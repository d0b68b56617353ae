package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTiming(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(StageNaming, 10*time.Millisecond)
	c.RecordTiming(StageNaming, 30*time.Millisecond)
	c.RecordTiming(StageParse, 2*time.Millisecond)

	snap := c.Snapshot()
	require.Len(t, snap.Stages, 2)

	naming := snap.Stages[StageNaming]
	require.NotNil(t, naming)
	assert.Equal(t, int64(2), naming.Count)
	assert.Equal(t, int64(40), naming.TotalTimeMs)
	assert.Equal(t, 20.0, naming.AvgTimeMs)
	assert.Equal(t, int64(10), naming.MinTimeMs)
	assert.Equal(t, int64(30), naming.MaxTimeMs)
	assert.GreaterOrEqual(t, snap.ElapsedSeconds, 0.0)
}

func TestSnapshotEmpty(t *testing.T) {
	snap := NewCollector().Snapshot()
	assert.Empty(t, snap.Stages)
}

func TestTrack(t *testing.T) {
	c := NewCollector()
	done := c.Track(StageLattice)
	time.Sleep(2 * time.Millisecond)
	done()

	snap := c.Snapshot().Stages[StageLattice]
	require.NotNil(t, snap)
	assert.Equal(t, int64(1), snap.Count)
	assert.GreaterOrEqual(t, snap.TotalTimeMs, int64(1))
}

func TestConcurrentRecording(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordTiming(StageGenerate, time.Millisecond)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(50), c.Snapshot().Stages[StageGenerate].Count)
}
