package presenter

import (
	"math"
	"strconv"
	"strings"
)

// Bucket is the color class of a score.
type Bucket string

const (
	BucketStrong   Bucket = "strong"
	BucketModerate Bucket = "moderate"
	BucketWeak     Bucket = "weak"
)

const (
	LabelExcellent        = "Excellent"
	LabelGood             = "Good"
	LabelFair             = "Fair"
	LabelNeedsImprovement = "Needs Improvement"

	// Placeholder replaces an excerpt of an absent feedback field.
	Placeholder = "No details available"

	maxScore = 10
)

// ScoreColorBucket maps a score to strong (>= 8), moderate (>= 6) or weak.
func ScoreColorBucket(score float64) Bucket {
	switch {
	case score >= 8:
		return BucketStrong
	case score >= 6:
		return BucketModerate
	default:
		return BucketWeak
	}
}

// ScoreLabel maps a score to its qualitative label. Lower bounds are inclusive.
func ScoreLabel(score float64) string {
	switch {
	case score >= 8:
		return LabelExcellent
	case score >= 6:
		return LabelGood
	case score >= 4:
		return LabelFair
	default:
		return LabelNeedsImprovement
	}
}

// BarWidth returns the percentage width of a score bar, clamped to [0,100].
func BarWidth(score float64) float64 {
	w := score / maxScore * 100
	switch {
	case w < 0 || math.IsNaN(w):
		return 0
	case w > 100:
		return 100
	}
	return w
}

// Excerpt returns the text of field before its first '.'. A blank field
// yields Placeholder.
func Excerpt(field string) string {
	if strings.TrimSpace(field) == "" {
		return Placeholder
	}
	head, _, _ := strings.Cut(field, ".")
	return strings.TrimSpace(head)
}

// FormatScore prints a score the shortest way, e.g. "7" or "7.5".
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
