package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AttemptSessionKey returns the storage key scoping all persisted attempt
// state. ref is the registration number for official exams or the candidate
// identity for informal practice tests.
func (r *CacheKeyStruct) AttemptSessionKey(testID, ref string) string {
	return fmt.Sprintf("attempt:%s:%s:state", testID, ref)
}

// TestPaperKey returns the cache key for a test's student-facing paper
// (questions without correct answers).
func (r *CacheKeyStruct) TestPaperKey(testID string) string {
	return fmt.Sprintf("test:%s:paper", testID)
}

// CatalogKey returns the cache key for the published test catalog listing.
func (r *CacheKeyStruct) CatalogKey() string {
	return "tests:catalog"
}

var CacheKey = NewCacheKeyStruct()
