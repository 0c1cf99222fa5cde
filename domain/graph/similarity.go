package graph

import "math"

// GeoSimilarity decays exponentially with distance: 1 at zero and
// exp(-3) at the search radius.
func GeoSimilarity(distanceKm, maxDistanceKm float64) float64 {
	if maxDistanceKm <= 0 {
		return 0
	}
	if distanceKm < 0 {
		distanceKm = 0
	}
	return Clamp01(math.Exp(-distanceKm / (maxDistanceKm / 3)))
}

// AmenitySimilarity is the cosine similarity of two feature vectors, 0 when
// either has zero norm or the dimensions differ.
func AmenitySimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return Clamp01(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// QualityScore averages star_rating/5 and review_score/10 over whichever are
// present. ok is false when neither is.
func QualityScore(starRating, reviewScore *float64) (score float64, ok bool) {
	var sum float64
	var n int
	if starRating != nil {
		sum += Clamp01(*starRating / 5)
		n++
	}
	if reviewScore != nil {
		sum += Clamp01(*reviewScore / 10)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// ReviewSimilarity compares two quality scores; 0 if either side has none.
func ReviewSimilarity(subject float64, subjectOK bool, other float64, otherOK bool) float64 {
	if !subjectOK || !otherOK {
		return 0
	}
	return Clamp01(1 - math.Abs(subject-other))
}

// Clamp01 limits v to [0,1], mapping NaN to 0.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Round rounds v to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
