package hotel

// Features are the inputs a Vectorizer turns into a vector.
type Features struct {
	Amenities  []string
	StarRating *float64
}

// Vectorizer maps amenity and quality features onto a fixed-dimension,
// L2-normalized vector. Empty input yields the zero vector.
type Vectorizer interface {
	Vectorize(f Features) []float64
	Dimension() int
}
