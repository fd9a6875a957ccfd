package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldStatesPendingWhileAnyNone(t *testing.T) {
	assert.Equal(t, ChunkNone, foldStates([]ChunkState{ChunkSucceed, ChunkNone, ChunkFailed}))
}

func TestFoldStatesFailedIfAnyChunkFailed(t *testing.T) {
	assert.Equal(t, ChunkFailed, foldStates([]ChunkState{ChunkSucceed, ChunkFailed, ChunkSucceed}))
}

func TestFoldStatesSucceedWhenAllSucceed(t *testing.T) {
	assert.Equal(t, ChunkSucceed, foldStates([]ChunkState{ChunkSucceed, ChunkSucceed}))
}

func TestFoldStatesSingleChunkSucceed(t *testing.T) {
	assert.Equal(t, ChunkSucceed, foldStates([]ChunkState{ChunkSucceed}))
}

func TestFoldStatesEmptyIsSucceed(t *testing.T) {
	// An empty chunk list trivially has "no failed chunk", matching the
	// fold's vacuous truth; startDownload never actually builds a job
	// with zero ranges (it short-circuits before reaching the pool), so
	// this only documents foldStates' own boundary behavior.
	assert.Equal(t, ChunkSucceed, foldStates(nil))
}
