package models

import "time"

// User is both the auth identity and the display profile. The portal keeps a
// single account table; Username is the profile half and gets snapshotted onto
// comments and posts at write time.
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Username     string    `gorm:"not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PasswordReset is a single-use recovery token mailed (well, logged) to the
// user. Consuming it establishes a fresh session.
type PasswordReset struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	Token     string    `gorm:"uniqueIndex;not null" json:"token"`
	UserID    uint      `gorm:"not null;index" json:"-"`
	ExpiresAt time.Time `json:"-"`
	Used      bool      `gorm:"not null;default:false" json:"-"`
}

// Article is one news entry. Date is the display string shown on cards;
// CreatedAt orders the feed.
type Article struct {
	ID        uint             `gorm:"primarykey" json:"id"`
	Category  string           `gorm:"not null" json:"category"`
	Title     string           `gorm:"not null" json:"title"`
	Excerpt   string           `gorm:"not null" json:"excerpt"`
	Image     string           `gorm:"not null" json:"image"`
	Date      string           `gorm:"not null" json:"date"`
	CreatedAt time.Time        `json:"createdAt"`
	Comments  []ArticleComment `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"-"`
}

// ArticleComment carries the author's username as written at post time. A
// later username change does not touch historical comments.
type ArticleComment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ArticleID uint      `gorm:"not null;index" json:"articleId"`
	UserID    uint      `gorm:"not null" json:"userId"`
	Username  string    `gorm:"not null" json:"username"`
	Content   string    `gorm:"not null" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Testimony is a community feed post. Media fields hold public URLs, either
// uploaded through the media store or pasted directly.
type Testimony struct {
	ID        uint               `gorm:"primarykey" json:"id"`
	UserID    uint               `gorm:"not null;index" json:"userId"`
	Username  string             `gorm:"not null" json:"username"`
	Title     string             `gorm:"not null" json:"title"`
	Content   string             `gorm:"not null" json:"content"`
	ImageURL  string             `gorm:"default:''" json:"imageUrl"`
	VideoURL  string             `gorm:"default:''" json:"videoUrl"`
	LinkURL   string             `gorm:"default:''" json:"linkUrl"`
	CreatedAt time.Time          `json:"createdAt"`
	Likes     []TestimonyLike    `gorm:"foreignKey:TestimonyID;constraint:OnDelete:CASCADE" json:"-"`
	Comments  []TestimonyComment `gorm:"foreignKey:TestimonyID;constraint:OnDelete:CASCADE" json:"-"`
}

// TestimonyLike existence means "liked". The unique index keeps one row per
// (testimony, user) no matter how fast the button is clicked.
type TestimonyLike struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	TestimonyID uint      `gorm:"not null;uniqueIndex:idx_like_once" json:"testimonyId"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_like_once" json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
}

type TestimonyComment struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	TestimonyID uint      `gorm:"not null;index" json:"testimonyId"`
	UserID      uint      `gorm:"not null" json:"userId"`
	Username    string    `gorm:"not null" json:"username"`
	Content     string    `gorm:"not null" json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TestimonyWithCounts is the feed read model: a testimony plus its derived
// like/comment counts. Counts are computed from the rows, never stored.
type TestimonyWithCounts struct {
	Testimony
	LikeCount    int64 `json:"likeCount"`
	CommentCount int64 `json:"commentCount"`
}

// All lists every table for migration.
func All() []any {
	return []any{
		&User{}, &PasswordReset{},
		&Article{}, &ArticleComment{},
		&Testimony{}, &TestimonyLike{}, &TestimonyComment{},
	}
}
