package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pitchpilot/pitch-analyzer/internal/analysis"
)

// SharedResult is an analysis result stored under an opaque token so the
// results view URL only needs to carry the token.
type SharedResult struct {
	Token     string    `json:"token" gorm:"primaryKey;not null"`
	Title     string    `json:"title"`
	Payload   string    `json:"-" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt"`
	// ExpiresAt is nil for results that never expire.
	ExpiresAt *time.Time `json:"expiresAt,omitempty" gorm:"index"`
}

type SharedResultList []SharedResult

func NewSharedResult(token, title string, result *analysis.Result, ttl time.Duration) (SharedResult, error) {
	if result == nil {
		return SharedResult{}, fmt.Errorf("no result to share")
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return SharedResult{}, fmt.Errorf("encoding result: %w", err)
	}

	s := SharedResult{
		Token:     token,
		Title:     title,
		Payload:   string(payload),
		CreatedAt: time.Now().UTC(),
	}
	if ttl > 0 {
		expiresAt := s.CreatedAt.Add(ttl)
		s.ExpiresAt = &expiresAt
	}
	return s, nil
}

// Result decodes the stored payload.
func (s SharedResult) Result() (*analysis.Result, error) {
	var r analysis.Result
	if err := json.Unmarshal([]byte(s.Payload), &r); err != nil {
		return nil, fmt.Errorf("decoding shared result %s: %w", s.Token, err)
	}
	return &r, nil
}

func (s SharedResult) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

func (s SharedResult) String() string {
	val, _ := json.Marshal(s)
	return string(val)
}
