package scoring

import "math"

type Rating struct {
	Label       string `json:"label"`
	BucketIndex int    `json:"bucketIndex"`
}

type bucket struct {
	label string
	lower float64
	upper float64
}

// buckets are half-open [lower, upper). The top bound sits above 5 so a
// perfect score lands in the last bucket.
var buckets = []bucket{
	{"Poor", 0.0, 1.5},
	{"Fair", 1.5, 2.5},
	{"Good", 2.5, 3.5},
	{"Very Good", 3.5, 4.5},
	{"Excellent", 4.5, 5.1},
}

const fallbackBucket = 2

// Classify maps a final score to its rating bucket. Scores outside [0, 5.1)
// fall back to the middle bucket.
func Classify(score float64) Rating {
	if !math.IsNaN(score) {
		for i, b := range buckets {
			if score >= b.lower && score < b.upper {
				return Rating{Label: b.label, BucketIndex: i}
			}
		}
	}
	return Rating{Label: buckets[fallbackBucket].label, BucketIndex: fallbackBucket}
}

// Labels returns bucket labels in ascending order.
func Labels() []string {
	out := make([]string, len(buckets))
	for i, b := range buckets {
		out[i] = b.label
	}
	return out
}
