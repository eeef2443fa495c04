package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/corvidian/backend/internal/cache"
	"github.com/corvidian/backend/internal/db"
	"github.com/corvidian/backend/internal/service"
)

const publishedAtLayout = "2006-01-02"

// serializeArticleSummary builds the lightweight list representation;
// full content is deliberately excluded.
func (a *API) serializeArticleSummary(c *gin.Context, article db.Article) gin.H {
	return gin.H{
		"id":           article.ID,
		"slug":         article.Slug,
		"title":        article.Title,
		"author":       article.Author,
		"published_at": article.PublishedAt.Format(publishedAtLayout),
		"cover_image":  a.mediaURL(c, article.CoverImage),
		"excerpt":      article.Excerpt,
		"created_at":   article.CreatedAt,
		"updated_at":   article.UpdatedAt,
	}
}

func (a *API) serializeArticleDetail(c *gin.Context, article db.Article) gin.H {
	detail := a.serializeArticleSummary(c, article)
	detail["content"] = article.Content
	return detail
}

// ListArticles 返回分页的文章摘要列表。
// The response is cached under the fixed list key only when the request
// carries no query parameters; any filter bypasses the cache.
func (a *API) ListArticles(c *gin.Context) {
	build := func(context.Context) (string, error) {
		result, err := a.articles.List(service.ArticleFilter{
			Search:  c.Query("search"),
			Author:  c.Query("author"),
			Page:    parsePositiveInt(c.Query("page"), 1),
			PerPage: parsePositiveInt(c.Query("per_page"), 10),
		})
		if err != nil {
			return "", err
		}

		items := make([]gin.H, 0, len(result.Articles))
		for _, article := range result.Articles {
			items = append(items, a.serializeArticleSummary(c, article))
		}

		payload, err := json.Marshal(gin.H{
			"items":       items,
			"total":       result.Total,
			"page":        result.Page,
			"per_page":    result.PerPage,
			"total_pages": result.TotalPages,
		})
		if err != nil {
			return "", err
		}
		return string(payload), nil
	}

	var payload string
	var err error
	if len(c.Request.URL.Query()) == 0 {
		payload, err = cache.GetOrSet(c.Request.Context(), a.store, cache.ArticleListKey, a.cacheTTL, build)
	} else {
		payload, err = build(c.Request.Context())
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list articles")
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(payload))
}

// GetArticleBySlug 返回指定 slug 的文章详情，并按 slug 缓存。
func (a *API) GetArticleBySlug(c *gin.Context) {
	slug := c.Param("slug")

	payload, err := cache.GetOrSet(c.Request.Context(), a.store, cache.ArticleDetailKey(slug), a.cacheTTL, func(context.Context) (string, error) {
		article, err := a.articles.GetBySlug(slug)
		if err != nil {
			return "", err
		}
		data, err := json.Marshal(a.serializeArticleDetail(c, *article))
		if err != nil {
			return "", err
		}
		return string(data), nil
	})
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			respondError(c, http.StatusNotFound, "article not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to load article")
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(payload))
}

type articlePayload struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Author      string `json:"author"`
	PublishedAt string `json:"published_at"`
	CoverImage  string `json:"cover_image"`
	Content     string `json:"content"`
}

func (p articlePayload) toInput() (service.ArticleInput, error) {
	input := service.ArticleInput{
		Title:      p.Title,
		Slug:       p.Slug,
		Author:     p.Author,
		CoverImage: p.CoverImage,
		Content:    p.Content,
	}
	if p.PublishedAt != "" {
		publishedAt, err := time.Parse(publishedAtLayout, p.PublishedAt)
		if err != nil {
			return input, err
		}
		input.PublishedAt = publishedAt
	}
	return input, nil
}

// ListArticlesAdmin 返回后台文章列表，带搜索与分页。
func (a *API) ListArticlesAdmin(c *gin.Context) {
	result, err := a.articles.List(service.ArticleFilter{
		Search:  c.Query("search"),
		Page:    parsePositiveInt(c.Query("page"), 1),
		PerPage: parsePositiveInt(c.Query("per_page"), 20),
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list articles")
		return
	}

	items := make([]gin.H, 0, len(result.Articles))
	for _, article := range result.Articles {
		items = append(items, a.serializeArticleDetail(c, article))
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"total":       result.Total,
		"page":        result.Page,
		"per_page":    result.PerPage,
		"total_pages": result.TotalPages,
	})
}

// GetArticle 返回指定 ID 的文章。
func (a *API) GetArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	article, err := a.articles.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			respondError(c, http.StatusNotFound, "article not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to load article")
		return
	}

	c.JSON(http.StatusOK, gin.H{"article": a.serializeArticleDetail(c, *article)})
}

// CreateArticle 创建文章。
func (a *API) CreateArticle(c *gin.Context) {
	var payload articlePayload
	if !bindJSON(c, &payload, "invalid article payload") {
		return
	}

	input, err := payload.toInput()
	if err != nil {
		respondError(c, http.StatusBadRequest, "published_at must be YYYY-MM-DD")
		return
	}

	article, err := a.articles.Create(input)
	if err != nil {
		a.respondArticleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"article": a.serializeArticleDetail(c, *article)})
}

// UpdateArticle 更新文章。
func (a *API) UpdateArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload articlePayload
	if !bindJSON(c, &payload, "invalid article payload") {
		return
	}

	input, err := payload.toInput()
	if err != nil {
		respondError(c, http.StatusBadRequest, "published_at must be YYYY-MM-DD")
		return
	}

	article, err := a.articles.Update(id, input)
	if err != nil {
		a.respondArticleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"article": a.serializeArticleDetail(c, *article)})
}

// DeleteArticle 删除文章。
func (a *API) DeleteArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.articles.Delete(id); err != nil {
		a.respondArticleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "article deleted"})
}

func (a *API) respondArticleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrArticleNotFound):
		respondError(c, http.StatusNotFound, "article not found")
	case errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrAuthorRequired),
		errors.Is(err, service.ErrSlugTaken):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "failed to save article")
	}
}
