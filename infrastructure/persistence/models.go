package persistence

import (
	"encoding/json"
	"time"
)

// HotelModel represents a competitor hotel in the database.
type HotelModel struct {
	ID            int64        `gorm:"column:id;primaryKey;autoIncrement"`
	ExternalID    string       `gorm:"column:external_id;type:varchar(255);uniqueIndex:idx_competitor_hotels_natural_key;not null"`
	Source        string       `gorm:"column:source;type:varchar(255);uniqueIndex:idx_competitor_hotels_natural_key;not null"`
	Name          string       `gorm:"column:name;type:varchar(255);not null"`
	Latitude      float64      `gorm:"column:latitude;index:idx_competitor_hotels_location;not null"`
	Longitude     float64      `gorm:"column:longitude;index:idx_competitor_hotels_location;not null"`
	StarRating    *float64     `gorm:"column:star_rating"`
	ReviewScore   *float64     `gorm:"column:review_score"`
	ReviewCount   int          `gorm:"column:review_count;default:0"`
	Amenities     StringSlice  `gorm:"column:amenities;type:json"`
	AmenityVector Float64Slice `gorm:"column:amenity_vector;type:json"`
	LastSeenAt    time.Time    `gorm:"column:last_seen_at;not null"`
	CreatedAt     time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name.
func (HotelModel) TableName() string {
	return "competitor_hotels"
}

// HotelRateModel represents an observed nightly rate of a competitor hotel.
type HotelRateModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	HotelID   int64     `gorm:"column:hotel_id;uniqueIndex:idx_competitor_hotel_rates_day;not null"`
	RateDate  string    `gorm:"column:rate_date;type:varchar(10);uniqueIndex:idx_competitor_hotel_rates_day;not null"`
	Price     float64   `gorm:"column:price;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name.
func (HotelRateModel) TableName() string {
	return "competitor_hotel_rates"
}

// PropertyModel represents a subject property in the database.
type PropertyModel struct {
	ID          int64       `gorm:"column:id;primaryKey;autoIncrement"`
	OwnerID     string      `gorm:"column:owner_id;type:varchar(255);index;not null"`
	Name        string      `gorm:"column:name;type:varchar(255);not null"`
	Latitude    *float64    `gorm:"column:latitude"`
	Longitude   *float64    `gorm:"column:longitude"`
	StarRating  *float64    `gorm:"column:star_rating"`
	ReviewScore *float64    `gorm:"column:review_score"`
	Amenities   StringSlice `gorm:"column:amenities;type:json"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name.
func (PropertyModel) TableName() string {
	return "properties"
}

// GraphAttemptModel records the last graph build attempt per property.
// It lives apart from properties because that table is owned upstream.
type GraphAttemptModel struct {
	PropertyID  int64     `gorm:"column:property_id;primaryKey;autoIncrement:false"`
	AttemptedAt time.Time `gorm:"column:attempted_at;index;not null"`
}

// TableName returns the table name.
func (GraphAttemptModel) TableName() string {
	return "property_graph_attempts"
}

// PropertyPriceModel represents a property's published rate for a date.
type PropertyPriceModel struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	PropertyID int64     `gorm:"column:property_id;uniqueIndex:idx_property_prices_day;not null"`
	PriceDate  string    `gorm:"column:price_date;type:varchar(10);uniqueIndex:idx_property_prices_day;not null"`
	Price      float64   `gorm:"column:price;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name.
func (PropertyPriceModel) TableName() string {
	return "property_prices"
}

// RelationshipModel represents one competitor graph edge.
type RelationshipModel struct {
	ID                int64     `gorm:"column:id;primaryKey;autoIncrement"`
	PropertyID        int64     `gorm:"column:property_id;uniqueIndex:idx_competitor_relationships_pair;not null"`
	HotelID           int64     `gorm:"column:competitor_hotel_id;uniqueIndex:idx_competitor_relationships_pair;index;not null"`
	GeoSimilarity     float64   `gorm:"column:geo_similarity;not null"`
	AmenitySimilarity float64   `gorm:"column:amenity_similarity;not null"`
	ReviewSimilarity  float64   `gorm:"column:review_similarity;not null"`
	OverallSimilarity float64   `gorm:"column:overall_similarity;not null"`
	DistanceKm        float64   `gorm:"column:distance_km;not null"`
	SimilarityRank    int       `gorm:"column:similarity_rank;not null"`
	WeightGeo         float64   `gorm:"column:weight_geo;not null"`
	WeightAmenity     float64   `gorm:"column:weight_amenity;not null"`
	WeightReview      float64   `gorm:"column:weight_review;not null"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name.
func (RelationshipModel) TableName() string {
	return "competitor_relationships"
}

// SnapshotModel represents one dated neighborhood index snapshot.
type SnapshotModel struct {
	ID                        int64       `gorm:"column:id;primaryKey;autoIncrement"`
	PropertyID                int64       `gorm:"column:property_id;uniqueIndex:idx_neighborhood_index_day;not null"`
	SnapshotDate              string      `gorm:"column:snapshot_date;type:varchar(10);uniqueIndex:idx_neighborhood_index_day;not null"`
	OverallIndex              float64     `gorm:"column:overall_index;not null"`
	PriceCompetitivenessScore float64     `gorm:"column:price_competitiveness_score;not null"`
	ValueScore                float64     `gorm:"column:value_score;not null"`
	PositioningScore          float64     `gorm:"column:positioning_score;not null"`
	MarketPosition            string      `gorm:"column:market_position;type:varchar(32);not null"`
	PriceDataAvailable        bool        `gorm:"column:price_data_available;not null"`
	PropertyPrice             *float64    `gorm:"column:property_price"`
	MedianPrice               *float64    `gorm:"column:neighborhood_median_price"`
	AvgPrice                  *float64    `gorm:"column:neighborhood_avg_price"`
	PricePercentile           *float64    `gorm:"column:price_percentile"`
	PricedCompetitors         int         `gorm:"column:priced_competitors;default:0"`
	CompetitorsAnalyzed       int         `gorm:"column:competitors_analyzed;not null"`
	IndexChange1d             *float64    `gorm:"column:index_change_1d"`
	IndexChange7d             *float64    `gorm:"column:index_change_7d"`
	IndexChange30d            *float64    `gorm:"column:index_change_30d"`
	CompetitiveAdvantage      StringSlice `gorm:"column:competitive_advantage;type:json"`
	CompetitiveWeakness       StringSlice `gorm:"column:competitive_weakness;type:json"`
	CreatedAt                 time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                 time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name.
func (SnapshotModel) TableName() string {
	return "neighborhood_index_snapshots"
}

// TaskModel represents a task in the database.
type TaskModel struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	DedupKey  string          `gorm:"column:dedup_key;type:varchar(255);uniqueIndex;not null"`
	Type      string          `gorm:"column:type;type:varchar(255);index;not null"`
	Payload   json.RawMessage `gorm:"column:payload;type:jsonb"`
	Priority  int             `gorm:"column:priority;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name.
func (TaskModel) TableName() string {
	return "tasks"
}

// JobStatusModel represents the latest run of a batch job.
type JobStatusModel struct {
	Operation  string     `gorm:"column:operation;type:varchar(255);primaryKey"`
	State      string     `gorm:"column:state;type:varchar(32);not null"`
	Total      int        `gorm:"column:total;default:0"`
	Succeeded  int        `gorm:"column:succeeded;default:0"`
	Failed     int        `gorm:"column:failed;default:0"`
	Message    string     `gorm:"column:message;type:text;default:''"`
	StartedAt  time.Time  `gorm:"column:started_at;not null"`
	FinishedAt *time.Time `gorm:"column:finished_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name.
func (JobStatusModel) TableName() string {
	return "job_status"
}
