package http

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/itgelzam/portal/internal/db"
	"github.com/itgelzam/portal/internal/messages"
	"github.com/itgelzam/portal/internal/models"
)

type TestimonyInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl"`
	VideoURL string `json:"videoUrl"`
	LinkURL  string `json:"linkUrl"`
}

// ListTestimonies answers the feed newest-first with derived counts merged on.
// The two count queries per row keep counts honest against the like/comment
// tables at the cost of a fan-out; fine at community scale.
func (e *Env) ListTestimonies(c *gin.Context) {
	var testimonies []models.Testimony
	if err := e.DB.Order("created_at desc").Find(&testimonies).Error; err != nil {
		log.Printf("Error fetching testimonies: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}

	feed := make([]models.TestimonyWithCounts, 0, len(testimonies))
	for _, t := range testimonies {
		item := models.TestimonyWithCounts{Testimony: t}
		e.DB.Model(&models.TestimonyLike{}).Where("testimony_id = ?", t.ID).Count(&item.LikeCount)
		e.DB.Model(&models.TestimonyComment{}).Where("testimony_id = ?", t.ID).Count(&item.CommentCount)
		feed = append(feed, item)
	}
	c.JSON(http.StatusOK, feed)
}

// CreateTestimony inserts a feed post. Content is required after trimming; a
// blank title falls back to the placeholder.
func (e *Env) CreateTestimony(c *gin.Context) {
	var input TestimonyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.ErrContentRequired})
		return
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = messages.DefaultPostTitle
	}

	uid, username := currentUser(c)
	if username == "" {
		username = messages.DefaultUsername
	}

	testimony := models.Testimony{
		UserID:   uid,
		Username: username, // snapshot at post time
		Title:    title,
		Content:  content,
		ImageURL: input.ImageURL,
		VideoURL: input.VideoURL,
		LinkURL:  strings.TrimSpace(input.LinkURL),
	}
	if err := e.DB.Create(&testimony).Error; err != nil {
		log.Printf("Error creating testimony: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}

	item := models.TestimonyWithCounts{Testimony: testimony}
	e.broadcastMessage(WsMessage{Type: "new_post", Data: item})
	c.JSON(http.StatusCreated, item)
}

// DeleteTestimony removes an owner's post with its likes and comments.
func (e *Env) DeleteTestimony(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	uid, _ := currentUser(c)

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		var testimony models.Testimony
		if err := tx.First(&testimony, id).Error; err != nil {
			return err
		}
		if testimony.UserID != uid {
			return errNotOwner
		}
		if err := tx.Where("testimony_id = ?", id).Delete(&models.TestimonyLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("testimony_id = ?", id).Delete(&models.TestimonyComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&testimony).Error
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": messages.ErrNotFound})
		return
	case errors.Is(err, errNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": messages.ErrNotOwner})
		return
	case err != nil:
		log.Printf("Error in testimony delete transaction: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}

	e.broadcastMessage(WsMessage{Type: "delete", Data: gin.H{"id": id}})
	c.JSON(http.StatusOK, gin.H{"message": messages.PostDeleted})
}

var errNotOwner = errors.New("not the owner")

// LikeTestimony inserts the (testimony, user) like row. A second insert for
// the same pair hits the unique index and answers 409 without touching the
// count, which is the backstop against rapid double-clicks.
func (e *Env) LikeTestimony(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	uid, _ := currentUser(c)

	var testimony models.Testimony
	if err := e.DB.First(&testimony, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": messages.ErrNotFound})
		return
	}

	like := models.TestimonyLike{TestimonyID: id, UserID: uid}
	if err := e.DB.Create(&like).Error; err != nil {
		if db.IsDuplicate(err) {
			c.JSON(http.StatusConflict, gin.H{"error": messages.ErrAlreadyLiked})
			return
		}
		log.Printf("Error creating like: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}

	payload := gin.H{"id": id, "likeCount": e.likeCount(id)}
	e.broadcastMessage(WsMessage{Type: "like", Data: payload})
	c.JSON(http.StatusCreated, payload)
}

// UnlikeTestimony removes the pair; removing an absent like is a no-op.
func (e *Env) UnlikeTestimony(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	uid, _ := currentUser(c)

	if err := e.DB.Where("testimony_id = ? AND user_id = ?", id, uid).
		Delete(&models.TestimonyLike{}).Error; err != nil {
		log.Printf("Error deleting like: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}

	payload := gin.H{"id": id, "likeCount": e.likeCount(id)}
	e.broadcastMessage(WsMessage{Type: "like", Data: payload})
	c.JSON(http.StatusOK, payload)
}

func (e *Env) likeCount(testimonyID uint) int64 {
	var n int64
	e.DB.Model(&models.TestimonyLike{}).Where("testimony_id = ?", testimonyID).Count(&n)
	return n
}

// ListTestimonyLikes answers the raw like rows for one post.
func (e *Env) ListTestimonyLikes(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var likes []models.TestimonyLike
	if err := e.DB.Where("testimony_id = ?", id).Order("created_at asc").Find(&likes).Error; err != nil {
		log.Printf("Error fetching likes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}
	c.JSON(http.StatusOK, likes)
}

// ListMyLikes answers the testimony ids the caller has liked, the client's
// seed for its local like-set.
func (e *Env) ListMyLikes(c *gin.Context) {
	uid, _ := currentUser(c)
	var ids []uint
	if err := e.DB.Model(&models.TestimonyLike{}).Where("user_id = ?", uid).
		Pluck("testimony_id", &ids).Error; err != nil {
		log.Printf("Error fetching likes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}
	c.JSON(http.StatusOK, ids)
}

func (e *Env) ListTestimonyComments(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var comments []models.TestimonyComment
	if err := e.DB.Where("testimony_id = ?", id).Order("created_at asc").Find(&comments).Error; err != nil {
		log.Printf("Error fetching comments: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (e *Env) CreateTestimonyComment(c *gin.Context) {
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

	var testimony models.Testimony
	if err := e.DB.First(&testimony, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": messages.ErrNotFound})
		return
	}

	uid, username := currentUser(c)
	if username == "" {
		username = messages.DefaultUsername
	}
	comment := models.TestimonyComment{
		TestimonyID: id,
		UserID:      uid,
		Username:    username, // snapshot at post time
		Content:     content,
	}
	if err := e.DB.Create(&comment).Error; err != nil {
		log.Printf("Error creating comment: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}

	e.broadcastMessage(WsMessage{Type: "new_comment", Data: comment})
	c.JSON(http.StatusCreated, comment)
}

func (e *Env) DeleteTestimonyComment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	uid, _ := currentUser(c)

	var comment models.TestimonyComment
	if err := e.DB.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": messages.ErrNotFound})
			return
		}
		log.Printf("Error fetching comment: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}
	if comment.UserID != uid {
		c.JSON(http.StatusForbidden, gin.H{"error": messages.ErrNotOwner})
		return
	}
	if err := e.DB.Delete(&comment).Error; err != nil {
		log.Printf("Error deleting comment: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}
