package dto

type SearchRequest struct {
	Query     string   `form:"q"`
	Category  string   `form:"categoryId" binding:"omitempty,uuid"`
	Condition string   `form:"condition"`
	MinPrice  *float64 `form:"minPrice" binding:"omitempty,gte=0"`
	MaxPrice  *float64 `form:"maxPrice" binding:"omitempty,gte=0"`
	Sort      string   `form:"sort"`
	Page      int      `form:"page" binding:"omitempty,min=1"`
	Limit     int      `form:"limit" binding:"omitempty,min=1"`
}

type ListingHit struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Slug      string  `json:"slug"`
	Price     float64 `json:"price"`
	Condition string  `json:"condition"`
	Location  string  `json:"location"`
	Image     string  `json:"image"`
	Category  string  `json:"category"`
	Views     int64   `json:"views"`
	CreatedAt int64   `json:"createdAt"`
}

type SearchResponse struct {
	Hits               []ListingHit `json:"hits"`
	EstimatedTotalHits int64        `json:"estimatedTotalHits"`
	ProcessingTimeMs   int64        `json:"processingTimeMs"`
	Page               int          `json:"page"`
	Limit              int          `json:"limit"`
}
