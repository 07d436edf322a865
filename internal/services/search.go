package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/promptvault/promptvault/internal/models"
	"github.com/promptvault/promptvault/pkg/response"
)

type SearchService struct {
	db *gorm.DB
}

func NewSearchService(db *gorm.DB) *SearchService {
	return &SearchService{db: db}
}

// SearchPromptsRequest is the GET query form; list-valued filters arrive
// comma-separated.
type SearchPromptsRequest struct {
	Query     string `form:"q"`
	Tags      string `form:"tags"`
	Status    string `form:"status"`
	AuthorID  string `form:"authorId" binding:"omitempty,uuid"`
	ProjectID string `form:"projectId" binding:"omitempty,uuid"`
	From      string `form:"from"`
	To        string `form:"to"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	SortBy    string `form:"sortBy" binding:"omitempty,oneof=title createdAt updatedAt version"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
}

// AdvancedSearchRequest is the POST body with array filters.
type AdvancedSearchRequest struct {
	Query       string     `json:"query"`
	Tags        []string   `json:"tags"`
	Statuses    []string   `json:"statuses" binding:"omitempty,dive,oneof=draft published archived"`
	AuthorIDs   []string   `json:"authorIds" binding:"omitempty,dive,uuid"`
	ProjectIDs  []string   `json:"projectIds" binding:"omitempty,dive,uuid"`
	CreatedFrom *time.Time `json:"createdFrom"`
	CreatedTo   *time.Time `json:"createdTo"`
	Page        int        `json:"page" binding:"omitempty,min=1"`
	Limit       int        `json:"limit" binding:"omitempty,min=1,max=100"`
	SortBy      string     `json:"sortBy" binding:"omitempty,oneof=title createdAt updatedAt version"`
	SortOrder   string     `json:"sortOrder" binding:"omitempty,oneof=asc desc"`
}

// promptFilter is the normalized filter both search surfaces compose into.
type promptFilter struct {
	Query       string
	Tags        []string
	Statuses    []string
	AuthorIDs   []string
	ProjectIDs  []string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        int
	Limit       int
	SortBy      string
	SortOrder   string
}

// SearchSuggestions holds typeahead candidates.
type SearchSuggestions struct {
	Tags    []string `json:"tags"`
	Prompts []string `json:"prompts"`
}

const suggestionLimit = 5

// SearchPrompts runs the GET search over prompts the user can read.
func (s *SearchService) SearchPrompts(userID string, req *SearchPromptsRequest) ([]models.Prompt, *response.Pagination, error) {
	filter := promptFilter{
		Query:     req.Query,
		Tags:      splitList(req.Tags),
		Statuses:  splitList(req.Status),
		Page:      req.Page,
		Limit:     req.Limit,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if req.AuthorID != "" {
		filter.AuthorIDs = []string{req.AuthorID}
	}
	if req.ProjectID != "" {
		filter.ProjectIDs = []string{req.ProjectID}
	}
	if req.From != "" {
		t, err := time.Parse(time.RFC3339, req.From)
		if err != nil {
			return nil, nil, response.NewBadRequest("invalid from date, expected RFC3339")
		}
		filter.CreatedFrom = &t
	}
	if req.To != "" {
		t, err := time.Parse(time.RFC3339, req.To)
		if err != nil {
			return nil, nil, response.NewBadRequest("invalid to date, expected RFC3339")
		}
		filter.CreatedTo = &t
	}

	return s.search(userID, &filter)
}

// AdvancedSearch runs the POST search with array filters.
func (s *SearchService) AdvancedSearch(userID string, req *AdvancedSearchRequest) ([]models.Prompt, *response.Pagination, error) {
	filter := promptFilter{
		Query:       req.Query,
		Tags:        req.Tags,
		Statuses:    req.Statuses,
		AuthorIDs:   req.AuthorIDs,
		ProjectIDs:  req.ProjectIDs,
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
		Page:        req.Page,
		Limit:       req.Limit,
		SortBy:      req.SortBy,
		SortOrder:   req.SortOrder,
	}
	return s.search(userID, &filter)
}

// Suggestions returns up to five tag names and five prompt titles matching
// the query prefix across readable projects.
func (s *SearchService) Suggestions(userID, query string) (*SearchSuggestions, error) {
	suggestions := &SearchSuggestions{Tags: []string{}, Prompts: []string{}}
	if query == "" {
		return suggestions, nil
	}
	pattern := "%" + query + "%"

	err := s.db.Model(&models.Tag{}).
		Scopes(TagAccessible(userID, AccessRead)).
		Where("LOWER(tags.name) LIKE LOWER(?)", pattern).
		Order("tags.name ASC").
		Limit(suggestionLimit).
		Distinct().
		Pluck("tags.name", &suggestions.Tags).Error
	if err != nil {
		return nil, err
	}

	err = s.db.Model(&models.Prompt{}).
		Scopes(PromptAccessible(userID, AccessRead)).
		Where("LOWER(prompts.title) LIKE LOWER(?)", pattern).
		Order("prompts.updated_at DESC").
		Limit(suggestionLimit).
		Pluck("prompts.title", &suggestions.Prompts).Error
	if err != nil {
		return nil, err
	}

	return suggestions, nil
}

// search applies the conjunctive filter and paginates.
func (s *SearchService) search(userID string, filter *promptFilter) ([]models.Prompt, *response.Pagination, error) {
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 10
	}

	query := s.db.Model(&models.Prompt{}).Scopes(PromptAccessible(userID, AccessRead))

	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		query = query.Where("LOWER(prompts.title) LIKE LOWER(?) OR LOWER(prompts.content) LIKE LOWER(?)", pattern, pattern)
	}
	if len(filter.Tags) > 0 {
		query = query.Where("prompts.id IN (?)", s.db.Model(&models.PromptTag{}).
			Select("prompt_tags.prompt_id").
			Joins("JOIN tags ON tags.id = prompt_tags.tag_id").
			Where("tags.name IN ?", filter.Tags))
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("prompts.status IN ?", filter.Statuses)
	}
	if len(filter.AuthorIDs) > 0 {
		query = query.Where("prompts.author_id IN ?", filter.AuthorIDs)
	}
	if len(filter.ProjectIDs) > 0 {
		query = query.Where("prompts.project_id IN ?", filter.ProjectIDs)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("prompts.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("prompts.created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	order := "prompts.updated_at DESC"
	if col, ok := promptSortColumns[filter.SortBy]; ok {
		dir := "DESC"
		if filter.SortOrder == "asc" {
			dir = "ASC"
		}
		order = "prompts." + col + " " + dir
	}

	var prompts []models.Prompt
	offset := (filter.Page - 1) * filter.Limit
	err := query.Preload("Author").Preload("Project").
		Order(order).Offset(offset).Limit(filter.Limit).
		Find(&prompts).Error
	if err != nil {
		return nil, nil, err
	}

	return prompts, response.NewPagination(filter.Page, filter.Limit, total), nil
}

// splitList parses a comma-separated query value, dropping empty entries.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
