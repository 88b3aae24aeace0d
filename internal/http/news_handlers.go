package http

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/itgelzam/portal/internal/messages"
	"github.com/itgelzam/portal/internal/models"
)

type ArticleInput struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	Image    string `json:"image"`
	Date     string `json:"date"`
}

func (in *ArticleInput) complete() bool {
	return in.Category != "" && in.Title != "" && in.Excerpt != "" && in.Image != "" && in.Date != ""
}

func (e *Env) ListNews(c *gin.Context) {
	var articles []models.Article
	if err := e.DB.Order("created_at desc").Find(&articles).Error; err != nil {
		log.Printf("Error fetching news: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}
	c.JSON(http.StatusOK, articles)
}

func (e *Env) GetNews(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var article models.Article
	if err := e.DB.First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": messages.ErrNotFound})
			return
		}
		log.Printf("Error fetching article: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}
	c.JSON(http.StatusOK, article)
}

// ListNewsComments answers the article's comments oldest-first.
func (e *Env) ListNewsComments(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var comments []models.ArticleComment
	if err := e.DB.Where("article_id = ?", id).Order("created_at asc").Find(&comments).Error; err != nil {
		log.Printf("Error fetching comments: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}
	c.JSON(http.StatusOK, comments)
}

type CommentInput struct {
	Content string `json:"content"`
}

func (e *Env) CreateNewsComment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.ErrCommentRequired})
		return
	}

	var article models.Article
	if err := e.DB.First(&article, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": messages.ErrNotFound})
		return
	}

	uid, username := currentUser(c)
	if username == "" {
		username = messages.DefaultUsername
	}
	comment := models.ArticleComment{
		ArticleID: id,
		UserID:    uid,
		Username:  username, // snapshot at post time, never updated
		Content:   content,
	}
	if err := e.DB.Create(&comment).Error; err != nil {
		log.Printf("Error creating comment: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// --- Admin console CRUD ---

func (e *Env) CreateNews(c *gin.Context) {
	var input ArticleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if !input.complete() {
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.ErrAllFieldsRequired})
		return
	}

	article := models.Article{
		Category: input.Category,
		Title:    input.Title,
		Excerpt:  input.Excerpt,
		Image:    input.Image,
		Date:     input.Date,
	}
	if err := e.DB.Create(&article).Error; err != nil {
		log.Printf("Error creating article: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}
	c.JSON(http.StatusCreated, article)
}

func (e *Env) UpdateNews(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input ArticleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if !input.complete() {
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.ErrAllFieldsRequired})
		return
	}

	var article models.Article
	if err := e.DB.First(&article, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": messages.ErrNotFound})
		return
	}
	updates := map[string]any{
		"category": input.Category,
		"title":    input.Title,
		"excerpt":  input.Excerpt,
		"image":    input.Image,
		"date":     input.Date,
	}
	if err := e.DB.Model(&article).Updates(updates).Error; err != nil {
		log.Printf("Error updating article: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}
	c.JSON(http.StatusOK, article)
}

// DeleteNews removes an article and its comments in one transaction.
func (e *Env) DeleteNews(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		var article models.Article
		if err := tx.First(&article, id).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&models.ArticleComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&article).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": messages.ErrNotFound})
		return
	}
	if err != nil {
		log.Printf("Error in article delete transaction: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Article deleted"})
}
