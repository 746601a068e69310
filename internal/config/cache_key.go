package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExamEndTimeKey returns the cache key for an exam's end time (unix seconds).
func (r *CacheKeyStruct) ExamEndTimeKey(examID string) string {
	return fmt.Sprintf("exam:%s:end_time", examID)
}

// LeaderboardKey returns the cache key for an exam's finalized leaderboard.
func (r *CacheKeyStruct) LeaderboardKey(examID string) string {
	return fmt.Sprintf("exam:%s:leaderboard", examID)
}

var CacheKey = NewCacheKeyStruct()
