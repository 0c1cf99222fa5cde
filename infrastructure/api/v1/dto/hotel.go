package dto

// HotelRequest is the body of POST /hotels.
type HotelRequest struct {
	ExternalID  string   `json:"external_id"`
	Source      string   `json:"source"`
	Name        string   `json:"name"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	StarRating  *float64 `json:"star_rating,omitempty"`
	ReviewScore *float64 `json:"review_score,omitempty"`
	ReviewCount int      `json:"review_count,omitempty"`
	Amenities   []string `json:"amenities,omitempty"`
}

// RateRequest is the body of POST /hotels/{id}/rates.
type RateRequest struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// JobRequest is the optional body of POST /jobs/{name}.
type JobRequest struct {
	Date string `json:"date,omitempty"`
}
