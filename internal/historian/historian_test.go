package historian

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlin/onenight/internal/cache"
)

func newTestService(batchSize int) (*Service, *[][]cache.GameActionRecord) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		batchSize:  batchSize,
		flushDelay: time.Hour,
		inactivity: time.Hour,
		batch:      make([]cache.GameActionRecord, 0, batchSize),
		ctx:        ctx,
		cancelFn:   cancel,
	}
	var flushed [][]cache.GameActionRecord
	s.flushFn = func(b []cache.GameActionRecord) {
		flushed = append(flushed, b)
	}
	return s, &flushed
}

func record(gameID uuid.UUID, idx int) cache.GameActionRecord {
	return cache.GameActionRecord{
		GameID:      gameID,
		ActionIndex: idx,
		ActionType:  "vote",
		Timestamp:   time.Now().UnixMilli(),
	}
}

func TestAppendFlushesAtThreshold(t *testing.T) {
	s, flushed := newTestService(3)
	defer s.Stop()
	gameID := uuid.New()

	s.appendToBatch(record(gameID, 0))
	s.appendToBatch(record(gameID, 1))
	assert.Empty(t, *flushed, "batch below threshold must not flush")

	s.appendToBatch(record(gameID, 2))
	require.Len(t, *flushed, 1)
	assert.Len(t, (*flushed)[0], 3)
	assert.Equal(t, 2, (*flushed)[0][2].ActionIndex)
}

func TestTimedFlushDrainsPartialBatch(t *testing.T) {
	s, flushed := newTestService(100)
	defer s.Stop()

	s.appendToBatch(record(uuid.New(), 0))
	s.flushBatch()

	require.Len(t, *flushed, 1)
	assert.Len(t, (*flushed)[0], 1)
}

func TestFlushEmptyBatchIsNoop(t *testing.T) {
	s, flushed := newTestService(10)
	defer s.Stop()

	s.flushBatch()
	assert.Empty(t, *flushed)
}

func TestFlushSplitsAtThreshold(t *testing.T) {
	s, flushed := newTestService(2)
	defer s.Stop()
	gameID := uuid.New()

	s.appendToBatch(record(gameID, 0))
	s.appendToBatch(record(gameID, 1))
	s.appendToBatch(record(gameID, 2))
	s.flushBatch()

	require.Len(t, *flushed, 2)
	assert.Equal(t, 0, (*flushed)[0][0].ActionIndex)
	assert.Equal(t, 2, (*flushed)[1][0].ActionIndex, "records after a flush land in the next batch")
}
