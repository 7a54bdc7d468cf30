package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AssessmentPayloadKey returns the cache key for a stored assessment document
func (r *CacheKeyStruct) AssessmentPayloadKey(assessmentID string) string {
	return fmt.Sprintf("assessment:%s:payload", assessmentID)
}

// BuilderDraftKey returns the cache key for an assessment's open builder draft
func (r *CacheKeyStruct) BuilderDraftKey(assessmentID string) string {
	return fmt.Sprintf("assessment:%s:builder", assessmentID)
}

// ResponseDraftKey returns the cache key for a candidate's buffered draft answers
func (r *CacheKeyStruct) ResponseDraftKey(assessmentID, candidateID string) string {
	return fmt.Sprintf("response:%s:%s:draft", assessmentID, candidateID)
}

// ResponseSubmittedKey marks a (assessment, candidate) pair as terminal so
// buffered drafts are dropped instead of persisted
func (r *CacheKeyStruct) ResponseSubmittedKey(assessmentID, candidateID string) string {
	return fmt.Sprintf("response:%s:%s:submitted", assessmentID, candidateID)
}

// LoginAttemptsKey returns the rate-limit counter key for a client IP
func (r *CacheKeyStruct) LoginAttemptsKey(ip string) string {
	return fmt.Sprintf("ratelimit:login:%s", ip)
}

var CacheKey = NewCacheKeyStruct()
