package services

import "math"

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// ClampRating forces r into [MinRating, MaxRating].
func ClampRating(r int) int {
	return min(max(r, MinRating), MaxRating)
}

// RatingBucket is one star value of a distribution.
type RatingBucket struct {
	Stars      int `json:"stars"`
	Count      int `json:"count"`
	Percentage int `json:"percentage"`
}

// RatingSummary is everything derived from a product's ratings. Average is
// nil when there are no ratings.
type RatingSummary struct {
	Average      *float64        `json:"averageRating"`
	Count        int             `json:"commentCount"`
	Distribution [5]RatingBucket `json:"ratingDistribution"`
}

// AggregateRatings computes the mean and the five-bucket distribution,
// ordered from 5 stars down to 1. Percentages are rounded to the nearest
// integer and are all zero when there are no ratings.
func AggregateRatings(ratings []int) RatingSummary {
	var (
		counts [MaxRating + 1]int
		sum    int
	)
	for _, r := range ratings {
		r = ClampRating(r)
		counts[r]++
		sum += r
	}

	s := RatingSummary{Count: len(ratings)}
	if s.Count > 0 {
		avg := float64(sum) / float64(s.Count)
		s.Average = &avg
	}
	for i := range s.Distribution {
		stars := MaxRating - i
		b := RatingBucket{Stars: stars, Count: counts[stars]}
		if s.Count > 0 {
			b.Percentage = int(math.Round(float64(b.Count) * 100 / float64(s.Count)))
		}
		s.Distribution[i] = b
	}
	return s
}
