// Package client is the Go consumer of the portal API: a thin HTTP client,
// a session holder publishing auth-state events, and the feed view-model the
// community page is built around.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"

	"github.com/itgelzam/portal/internal/models"
)

// APIError carries the server's localized message alongside the status code.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Client talks to one portal server. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu            sync.Mutex
	token         string
	adminPassword string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// SetAdminPassword arms the news-console header for subsequent admin calls.
func (c *Client) SetAdminPassword(pw string) {
	c.mu.Lock()
	c.adminPassword = pw
	c.mu.Unlock()
}

func (c *Client) doJSON(method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	c.mu.Lock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.adminPassword != "" {
		req.Header.Set("X-Admin-Token", c.adminPassword)
	}
	c.mu.Unlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return &APIError{Status: resp.StatusCode, Message: payload.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// --- Auth ---

type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (c *Client) Register(email, password, username string) (*Session, error) {
	var s Session
	in := map[string]string{"email": email, "password": password, "username": username}
	if err := c.doJSON(http.MethodPost, "/api/auth/register", in, &s); err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return &s, nil
}

func (c *Client) Login(email, password string) (*Session, error) {
	var s Session
	in := map[string]string{"email": email, "password": password}
	if err := c.doJSON(http.MethodPost, "/api/auth/login", in, &s); err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return &s, nil
}

func (c *Client) Me() (*models.User, error) {
	var u models.User
	if err := c.doJSON(http.MethodGet, "/api/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) RequestPasswordReset(email string) error {
	return c.doJSON(http.MethodPost, "/api/auth/reset-password", map[string]string{"email": email}, nil)
}

func (c *Client) UpdatePassword(token, password string) (*Session, error) {
	var s Session
	in := map[string]string{"token": token, "password": password}
	if err := c.doJSON(http.MethodPost, "/api/auth/update-password", in, &s); err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return &s, nil
}

// --- News ---

type ArticleDraft struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	Image    string `json:"image"`
	Date     string `json:"date"`
}

func (c *Client) News() ([]models.Article, error) {
	var out []models.Article
	err := c.doJSON(http.MethodGet, "/api/news", nil, &out)
	return out, err
}

func (c *Client) Article(id uint) (*models.Article, error) {
	var out models.Article
	if err := c.doJSON(http.MethodGet, fmt.Sprintf("/api/news/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ArticleComments(id uint) ([]models.ArticleComment, error) {
	var out []models.ArticleComment
	err := c.doJSON(http.MethodGet, fmt.Sprintf("/api/news/%d/comments", id), nil, &out)
	return out, err
}

func (c *Client) AddArticleComment(id uint, content string) (*models.ArticleComment, error) {
	var out models.ArticleComment
	in := map[string]string{"content": content}
	if err := c.doJSON(http.MethodPost, fmt.Sprintf("/api/news/%d/comments", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateArticle(draft ArticleDraft) (*models.Article, error) {
	var out models.Article
	if err := c.doJSON(http.MethodPost, "/api/news", draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateArticle(id uint, draft ArticleDraft) (*models.Article, error) {
	var out models.Article
	if err := c.doJSON(http.MethodPut, fmt.Sprintf("/api/news/%d", id), draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteArticle(id uint) error {
	return c.doJSON(http.MethodDelete, fmt.Sprintf("/api/news/%d", id), nil, nil)
}

// --- Testimonies ---

type TestimonyDraft struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl"`
	VideoURL string `json:"videoUrl"`
	LinkURL  string `json:"linkUrl"`
}

// LikeResult is the server's post-toggle state for one testimony.
type LikeResult struct {
	ID        uint  `json:"id"`
	LikeCount int64 `json:"likeCount"`
}

func (c *Client) Testimonies() ([]models.TestimonyWithCounts, error) {
	var out []models.TestimonyWithCounts
	err := c.doJSON(http.MethodGet, "/api/testimonies", nil, &out)
	return out, err
}

func (c *Client) CreateTestimony(draft TestimonyDraft) (*models.TestimonyWithCounts, error) {
	var out models.TestimonyWithCounts
	if err := c.doJSON(http.MethodPost, "/api/testimonies", draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTestimony(id uint) error {
	return c.doJSON(http.MethodDelete, fmt.Sprintf("/api/testimonies/%d", id), nil, nil)
}

func (c *Client) Like(id uint) (*LikeResult, error) {
	var out LikeResult
	if err := c.doJSON(http.MethodPost, fmt.Sprintf("/api/testimonies/%d/like", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Unlike(id uint) (*LikeResult, error) {
	var out LikeResult
	if err := c.doJSON(http.MethodDelete, fmt.Sprintf("/api/testimonies/%d/like", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TestimonyLikes(id uint) ([]models.TestimonyLike, error) {
	var out []models.TestimonyLike
	err := c.doJSON(http.MethodGet, fmt.Sprintf("/api/testimonies/%d/likes", id), nil, &out)
	return out, err
}

func (c *Client) MyLikes() ([]uint, error) {
	var out []uint
	err := c.doJSON(http.MethodGet, "/api/me/likes", nil, &out)
	return out, err
}

func (c *Client) TestimonyComments(id uint) ([]models.TestimonyComment, error) {
	var out []models.TestimonyComment
	err := c.doJSON(http.MethodGet, fmt.Sprintf("/api/testimonies/%d/comments", id), nil, &out)
	return out, err
}

func (c *Client) AddTestimonyComment(id uint, content string) (*models.TestimonyComment, error) {
	var out models.TestimonyComment
	in := map[string]string{"content": content}
	if err := c.doJSON(http.MethodPost, fmt.Sprintf("/api/testimonies/%d/comments", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTestimonyComment(id uint) error {
	return c.doJSON(http.MethodDelete, fmt.Sprintf("/api/testimony-comments/%d", id), nil, nil)
}

// --- Media ---

// Upload streams one file as multipart form data and returns its public URL.
func (c *Client) Upload(kind, filename, contentType string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("kind", kind); err != nil {
		return "", err
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		URL string `json:"url"`
	}
	if err := c.send(req, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}
