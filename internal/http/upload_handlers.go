package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itgelzam/portal/internal/storage"
)

// Upload takes a multipart file plus a "kind" field (image or video),
// validates it against the allow-lists and hands back the public URL.
func (e *Env) Upload(c *gin.Context) {
	kind := c.PostForm("kind")
	if kind == "" {
		kind = storage.KindImage
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	defer file.Close()

	url, err := e.Store.Save(kind, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		if isValidationErr(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("Error saving upload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}

func isValidationErr(err error) bool {
	return errors.Is(err, storage.ErrImageType) || errors.Is(err, storage.ErrImageTooBig) ||
		errors.Is(err, storage.ErrVideoType) || errors.Is(err, storage.ErrVideoTooBig) ||
		errors.Is(err, storage.ErrUnknownKind)
}
