package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/corvidian/backend/internal/cache"
	"github.com/corvidian/backend/internal/db"
)

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrTitleRequired   = errors.New("article title is required")
	ErrAuthorRequired  = errors.New("article author is required")
	ErrSlugTaken       = errors.New("article slug is already taken")
)

// ArticleService wraps article related database operations and owns the
// cache-invalidation discipline tied to article writes.
type ArticleService struct {
	db        *gorm.DB
	cache     cache.Store
	mediaRoot string
}

// ArticleFilter describes filters for listing articles.
type ArticleFilter struct {
	Search  string
	Author  string
	Page    int
	PerPage int
}

// ArticleListResult aggregates paginated list data.
type ArticleListResult struct {
	Articles   []db.Article
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// ArticleInput represents fields accepted when creating or updating an
// article.
type ArticleInput struct {
	Title       string
	Slug        string
	Author      string
	PublishedAt time.Time
	CoverImage  string
	Content     string
}

// NewArticleService creates an ArticleService instance.
func NewArticleService(gdb *gorm.DB, store cache.Store, mediaRoot string) *ArticleService {
	return &ArticleService{db: gdb, cache: store, mediaRoot: mediaRoot}
}

// List returns articles matching the filter, newest publish date first.
func (s *ArticleService) List(filter ArticleFilter) (ArticleListResult, error) {
	result := ArticleListResult{
		Page:    normalizePage(filter.Page),
		PerPage: normalizePerPage(filter.PerPage, 10),
	}

	query := s.db.Model(&db.Article{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR content LIKE ?", like, like)
	}
	if author := strings.TrimSpace(filter.Author); author != "" {
		query = query.Where("author = ?", author)
	}

	if err := query.Count(&result.Total).Error; err != nil {
		return result, err
	}

	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)
	offset := (result.Page - 1) * result.PerPage

	if err := query.Order("published_at desc").Order("id desc").
		Limit(result.PerPage).
		Offset(offset).
		Find(&result.Articles).Error; err != nil {
		return result, err
	}

	return result, nil
}

// Get fetches an article by id.
func (s *ArticleService) Get(id uint) (*db.Article, error) {
	var article db.Article
	if err := s.db.First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

// GetBySlug fetches an article by its unique slug.
func (s *ArticleService) GetBySlug(slug string) (*db.Article, error) {
	var article db.Article
	if err := s.db.Where("slug = ?", strings.TrimSpace(slug)).First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

// Create persists a new article. The slug defaults to the slugified
// title, the excerpt is derived from the content, and a new cover image
// is post-processed before the record is stored.
func (s *ArticleService) Create(input ArticleInput) (*db.Article, error) {
	slug, err := s.resolveSlug(input, 0)
	if err != nil {
		return nil, err
	}

	article := db.Article{
		Title:       strings.TrimSpace(input.Title),
		Slug:        slug,
		Author:      strings.TrimSpace(input.Author),
		PublishedAt: input.PublishedAt,
		CoverImage:  s.processCoverIfChanged("", input.CoverImage),
		Content:     input.Content,
		Excerpt:     MakeExcerpt(input.Content),
	}

	if err := s.db.Create(&article).Error; err != nil {
		return nil, err
	}

	s.invalidate(article.Slug, "")
	return &article, nil
}

// Update applies updates to an existing article. The excerpt is always
// regenerated, the cover is re-processed only when it changed, and a
// slug change invalidates both the old and the new detail cache keys.
func (s *ArticleService) Update(id uint, input ArticleInput) (*db.Article, error) {
	var existing db.Article
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	slug, err := s.resolveSlug(input, id)
	if err != nil {
		return nil, err
	}

	oldSlug := existing.Slug
	existing.Title = strings.TrimSpace(input.Title)
	existing.Slug = slug
	existing.Author = strings.TrimSpace(input.Author)
	existing.PublishedAt = input.PublishedAt
	existing.CoverImage = s.processCoverIfChanged(existing.CoverImage, input.CoverImage)
	existing.Content = input.Content
	existing.Excerpt = MakeExcerpt(input.Content)

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, err
	}

	s.invalidate(existing.Slug, oldSlug)
	return &existing, nil
}

// Delete removes an article and drops its cache entries.
func (s *ArticleService) Delete(id uint) error {
	var article db.Article
	if err := s.db.First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrArticleNotFound
		}
		return err
	}

	if err := s.db.Delete(&article).Error; err != nil {
		return err
	}

	s.invalidate(article.Slug, "")
	return nil
}

// resolveSlug validates the effective slug for an article write.
// excludeID is nonzero on updates so a record can keep its own slug.
func (s *ArticleService) resolveSlug(input ArticleInput, excludeID uint) (string, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return "", ErrTitleRequired
	}
	if strings.TrimSpace(input.Author) == "" {
		return "", ErrAuthorRequired
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(title)
	}

	query := s.db.Model(&db.Article{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		return "", ErrSlugTaken
	}

	return slug, nil
}

// processCoverIfChanged runs the image post-processor when the cover
// differs from the stored value. Processing failures keep the original
// path; a save never fails because of its image.
func (s *ArticleService) processCoverIfChanged(stored, next string) string {
	next = strings.TrimSpace(next)
	if next == "" || next == stored {
		return next
	}

	processed, err := ProcessImage(s.mediaRoot, next, CoverMaxWidth)
	if err != nil {
		log.Printf("article cover processing failed for %s: %v", next, err)
		return next
	}
	return processed
}

func (s *ArticleService) invalidate(slug, oldSlug string) {
	ctx := context.Background()
	s.deleteKey(ctx, cache.ArticleListKey)
	s.deleteKey(ctx, cache.ArticleDetailKey(slug))
	if oldSlug != "" && oldSlug != slug {
		s.deleteKey(ctx, cache.ArticleDetailKey(oldSlug))
	}
}

func (s *ArticleService) deleteKey(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		log.Printf("article cache invalidation failed for %s: %v", key, err)
	}
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func normalizePerPage(perPage, fallback int) int {
	if perPage <= 0 {
		return fallback
	}
	return perPage
}

func calculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 || total == 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
