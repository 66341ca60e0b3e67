package service

import (
	"encoding/json"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"anoa.com/tradesphere/internal/entity"
	"anoa.com/tradesphere/internal/modules/search/dto"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

const listingsIndex = "listings"

type MeiliSearchService interface {
	IndexListing(listing *entity.Listing) error
	DeleteListing(id uuid.UUID) error
	SearchListings(req dto.SearchRequest) (*dto.SearchResponse, error)
	GenerateSearchToken(isAdmin bool) (string, error)
}

type meiliSearchService struct {
	client        meilisearch.ServiceManager
	signingKeyUID string
	signingKey    string
	sanitizer     *bluemonday.Policy
}

// NewMeiliSearchService configures the listings index. A nil client yields a
// nil service; callers skip indexing in that case.
func NewMeiliSearchService(client meilisearch.ServiceManager) MeiliSearchService {
	if client == nil {
		return nil
	}

	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndex()
	s.initSigningKey()
	return s
}

func (s *meiliSearchService) initIndex() {
	index := s.client.Index(listingsIndex)

	filterable := []any{"status", "category_id", "subcategory_id", "condition", "price", "featured"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("Failed to update listings filterable attributes: %v", err)
	}

	sortable := []string{"created_at", "price", "views"}
	if _, err := index.UpdateSortableAttributes(&sortable); err != nil {
		log.Printf("Failed to update listings sortable attributes: %v", err)
	}

	searchable := []string{"title", "category", "location", "description"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("Failed to update listings searchable attributes: %v", err)
	}
}

func (s *meiliSearchService) initSigningKey() {
	resp, err := s.client.GetKeys(&meilisearch.KeysQuery{Limit: 20})
	if err != nil {
		log.Printf("Failed to get meilisearch keys: %v", err)
		return
	}

	for _, key := range resp.Results {
		if key.Name == "ListingSearchSigner" {
			s.signingKeyUID = key.UID
			s.signingKey = key.Key
			return
		}
	}

	key, err := s.client.CreateKey(&meilisearch.Key{
		Name:        "ListingSearchSigner",
		Description: "Signs tenant tokens for listing search",
		Actions:     []string{"search"},
		Indexes:     []string{listingsIndex},
		ExpiresAt:   time.Now().AddDate(100, 0, 0),
	})
	if err != nil {
		log.Printf("Failed to create signing key: %v", err)
		return
	}

	s.signingKeyUID = key.UID
	s.signingKey = key.Key
	log.Println("Created new Meilisearch signing key")
}

type listingDoc struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	Condition     string   `json:"condition"`
	Status        string   `json:"status"`
	Featured      bool     `json:"featured"`
	Location      string   `json:"location"`
	Images        []string `json:"images"`
	CategoryID    string   `json:"category_id"`
	SubcategoryID string   `json:"subcategory_id,omitempty"`
	Category      string   `json:"category"`
	Views         int64    `json:"views"`
	CreatedAt     int64    `json:"created_at"`
}

func (s *meiliSearchService) cleanForIndex(content string) string {
	content = strings.NewReplacer("</p>", " ", "<br>", " ", "</div>", " ").Replace(content)
	clean := html.UnescapeString(s.sanitizer.Sanitize(content))
	return strings.Join(strings.Fields(clean), " ")
}

func (s *meiliSearchService) IndexListing(listing *entity.Listing) error {
	doc := listingDoc{
		ID:          listing.ID.String(),
		Title:       listing.Title,
		Slug:        listing.Slug,
		Description: s.cleanForIndex(listing.Description),
		Price:       listing.Price,
		Condition:   listing.Condition,
		Status:      listing.Status,
		Featured:    listing.Featured,
		Location:    listing.Location,
		Images:      listing.Images,
		CategoryID:  listing.CategoryID.String(),
		Category:    listing.Category.Name,
		Views:       listing.Views,
		CreatedAt:   listing.CreatedAt.Unix(),
	}
	if listing.SubcategoryID != nil {
		doc.SubcategoryID = listing.SubcategoryID.String()
	}

	task, err := s.client.Index(listingsIndex).AddDocuments([]listingDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed listing %s, task id: %d", listing.ID, task.TaskUID)
	return nil
}

func (s *meiliSearchService) DeleteListing(id uuid.UUID) error {
	_, err := s.client.Index(listingsIndex).DeleteDocument(id.String())
	return err
}

var searchSorts = map[string][]string{
	"newest":     {"created_at:desc"},
	"oldest":     {"created_at:asc"},
	"price-asc":  {"price:asc"},
	"price-desc": {"price:desc"},
	"popular":    {"views:desc"},
}

// BuildFilter only ever exposes active listings. Values are quoted so a
// user-supplied term cannot extend the expression.
func BuildFilter(req dto.SearchRequest) string {
	parts := []string{"status = 'active'"}
	if req.Category != "" {
		if id, err := uuid.Parse(req.Category); err == nil {
			parts = append(parts, fmt.Sprintf("(category_id = '%s' OR subcategory_id = '%s')", id, id))
		}
	}
	if req.Condition != "" && entity.IsListingCondition(req.Condition) {
		parts = append(parts, fmt.Sprintf("condition = '%s'", req.Condition))
	}
	if req.MinPrice != nil {
		parts = append(parts, fmt.Sprintf("price >= %g", *req.MinPrice))
	}
	if req.MaxPrice != nil {
		parts = append(parts, fmt.Sprintf("price <= %g", *req.MaxPrice))
	}
	return strings.Join(parts, " AND ")
}

func (s *meiliSearchService) SearchListings(req dto.SearchRequest) (*dto.SearchResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 8
	}
	if req.Limit > 50 {
		req.Limit = 50
	}

	searchReq := &meilisearch.SearchRequest{
		Limit:  int64(req.Limit),
		Offset: int64((req.Page - 1) * req.Limit),
		Filter: BuildFilter(req),
		AttributesToRetrieve: []string{
			"id", "title", "slug", "price", "condition", "location", "images", "category", "views", "created_at",
		},
	}
	if sort, ok := searchSorts[req.Sort]; ok {
		searchReq.Sort = sort
	}

	raw, err := s.client.Index(listingsIndex).SearchRaw(strings.TrimSpace(req.Query), searchReq)
	if err != nil {
		return nil, fmt.Errorf("meilisearch query failed: %w", err)
	}

	var body struct {
		Hits               []listingDoc `json:"hits"`
		EstimatedTotalHits int64        `json:"estimatedTotalHits"`
		ProcessingTimeMs   int64        `json:"processingTimeMs"`
	}
	if err := json.Unmarshal(*raw, &body); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]dto.ListingHit, 0, len(body.Hits))
	for _, d := range body.Hits {
		hit := dto.ListingHit{
			ID:        d.ID,
			Title:     d.Title,
			Slug:      d.Slug,
			Price:     d.Price,
			Condition: d.Condition,
			Location:  d.Location,
			Category:  d.Category,
			Views:     d.Views,
			CreatedAt: d.CreatedAt,
		}
		if len(d.Images) > 0 {
			hit.Image = d.Images[0]
		}
		hits = append(hits, hit)
	}

	return &dto.SearchResponse{
		Hits:               hits,
		EstimatedTotalHits: body.EstimatedTotalHits,
		ProcessingTimeMs:   body.ProcessingTimeMs,
		Page:               req.Page,
		Limit:              req.Limit,
	}, nil
}

// GenerateSearchToken lets a browser query Meilisearch directly. Non-admin
// tokens are pinned to active listings.
func (s *meiliSearchService) GenerateSearchToken(isAdmin bool) (string, error) {
	if s.signingKeyUID == "" || s.signingKey == "" {
		return "", fmt.Errorf("signing key not initialized")
	}

	rules := map[string]any{listingsIndex: map[string]any{"filter": "status = 'active'"}}
	if isAdmin {
		rules[listingsIndex] = map[string]any{"filter": nil}
	}

	return s.client.GenerateTenantToken(s.signingKeyUID, rules, &meilisearch.TenantTokenOptions{
		APIKey:    s.signingKey,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
}

func strPtr(s string) *string {
	return &s
}
