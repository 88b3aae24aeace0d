package client

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/itgelzam/portal/internal/messages"
	"github.com/itgelzam/portal/internal/models"
	"github.com/itgelzam/portal/internal/storage"
)

// messageTTL matches the portal's transient banner: shown, then gone.
const messageTTL = 4 * time.Second

// visibleCommentCount is how many trailing comments a collapsed post shows.
const visibleCommentCount = 2

var (
	ErrContentRequired = errors.New(messages.ErrContentRequired)
	ErrSignInRequired  = errors.New(messages.ErrLoginRequired)
	ErrNotOwner        = errors.New(messages.ErrNotOwner)
)

// Message is the transient user-facing banner.
type Message struct {
	Text string
	Type string // "success" or "error"
}

// Feed is the community page view-model. It mirrors the server's rows with a
// like-set and optimistically adjusted counts; a full Load is always the
// reconciliation path when local arithmetic and server truth drift.
//
// All state is per-instance. Two feeds on screen never share menus, drafts or
// expanded-comment sets.
type Feed struct {
	api     *Client
	session *SessionHolder

	mu         sync.Mutex
	items      []models.TestimonyWithCounts
	comments   map[uint][]models.TestimonyComment
	likes      map[uint]bool
	expanded   map[uint]bool
	activeMenu uint // 0 = no menu open
	draft      TestimonyDraft
	uploading  bool
	message    Message
	msgTimer   *time.Timer
	cancelSub  func()
}

func NewFeed(api *Client, session *SessionHolder) *Feed {
	f := &Feed{
		api:      api,
		session:  session,
		comments: make(map[uint][]models.TestimonyComment),
		likes:    make(map[uint]bool),
		expanded: make(map[uint]bool),
	}

	events, cancel := session.Subscribe()
	f.cancelSub = cancel
	go func() {
		for ev := range events {
			switch ev {
			case EventSignedIn:
				f.refreshLikes()
			case EventSignedOut:
				f.mu.Lock()
				f.likes = make(map[uint]bool)
				f.mu.Unlock()
			}
		}
	}()
	return f
}

// Close tears down the auth subscription and any pending banner timer.
func (f *Feed) Close() {
	if f.cancelSub != nil {
		f.cancelSub()
	}
	f.mu.Lock()
	if f.msgTimer != nil {
		f.msgTimer.Stop()
	}
	f.mu.Unlock()
}

// Load fetches the whole feed: the list with merged counts, then each post's
// comment thread, then the caller's like-set when signed in. One list call
// plus one comments call per post; the count fan-out happens server-side.
func (f *Feed) Load() error {
	items, err := f.api.Testimonies()
	if err != nil {
		f.showMessage(messages.ErrServer, "error")
		return err
	}

	comments := make(map[uint][]models.TestimonyComment, len(items))
	for _, t := range items {
		list, err := f.api.TestimonyComments(t.ID)
		if err != nil {
			list = nil // the post still renders, just without its thread
		}
		comments[t.ID] = list
	}

	f.mu.Lock()
	f.items = items
	f.comments = comments
	f.mu.Unlock()

	if f.session.User() != nil {
		f.refreshLikes()
	}
	return nil
}

func (f *Feed) refreshLikes() {
	ids, err := f.api.MyLikes()
	if err != nil {
		return
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	f.mu.Lock()
	f.likes = set
	f.mu.Unlock()
}

// --- Compose ---

func (f *Feed) Draft() TestimonyDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

func (f *Feed) SetDraft(d TestimonyDraft) {
	f.mu.Lock()
	f.draft = d
	f.mu.Unlock()
}

func (f *Feed) Uploading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploading
}

func (f *Feed) setUploading(v bool) {
	f.mu.Lock()
	f.uploading = v
	f.mu.Unlock()
}

// AttachImage validates locally, uploads and writes the URL into the draft.
// An oversized or mistyped file never leaves the machine.
func (f *Feed) AttachImage(filename, contentType string, size int64, r io.Reader) error {
	return f.attach(storage.KindImage, filename, contentType, size, r)
}

func (f *Feed) AttachVideo(filename, contentType string, size int64, r io.Reader) error {
	return f.attach(storage.KindVideo, filename, contentType, size, r)
}

func (f *Feed) attach(kind, filename, contentType string, size int64, r io.Reader) error {
	if err := storage.Validate(kind, contentType, size); err != nil {
		f.showMessage(err.Error(), "error")
		return err
	}

	f.setUploading(true)
	defer f.setUploading(false)

	url, err := f.api.Upload(kind, filename, contentType, r)
	if err != nil {
		f.showMessage(messages.ErrUploadFailed, "error")
		return err
	}

	f.mu.Lock()
	if kind == storage.KindVideo {
		f.draft.VideoURL = url
		f.mu.Unlock()
		f.showMessage(messages.VideoUploaded, "success")
		return nil
	}
	f.draft.ImageURL = url
	f.mu.Unlock()
	f.showMessage(messages.ImageUploaded, "success")
	return nil
}

// Submit posts the draft. Content is required after trimming and the user
// must be signed in; both checks run before any remote call. On success the
// draft resets and the whole feed reloads.
func (f *Feed) Submit() error {
	f.mu.Lock()
	draft := f.draft
	f.mu.Unlock()

	if strings.TrimSpace(draft.Content) == "" {
		f.showMessage(messages.ErrContentRequired, "error")
		return ErrContentRequired
	}
	if f.session.User() == nil {
		f.showMessage(messages.ErrLoginRequired, "error")
		return ErrSignInRequired
	}

	if _, err := f.api.CreateTestimony(draft); err != nil {
		f.showMessage(apiMessage(err), "error")
		return err
	}

	f.mu.Lock()
	f.draft = TestimonyDraft{}
	f.mu.Unlock()
	f.showMessage(messages.PostCreated, "success")
	return f.Load()
}

// --- Likes ---

// ToggleLike flips the caller's like on one post. The local like-set decides
// between insert and delete; counts adjust optimistically by one. The server's
// unique index is the backstop if two toggles race.
func (f *Feed) ToggleLike(id uint) error {
	if f.session.User() == nil {
		f.showMessage(messages.ErrLikeLoginRequired, "error")
		return ErrSignInRequired
	}

	f.mu.Lock()
	liked := f.likes[id]
	f.mu.Unlock()

	if liked {
		if _, err := f.api.Unlike(id); err != nil {
			f.showMessage(apiMessage(err), "error")
			return err
		}
		f.mu.Lock()
		delete(f.likes, id)
		f.adjustLikeLocked(id, -1)
		f.mu.Unlock()
		return nil
	}

	if _, err := f.api.Like(id); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
			// The row already existed server-side; mirror it without
			// touching the count.
			f.mu.Lock()
			f.likes[id] = true
			f.mu.Unlock()
			return nil
		}
		f.showMessage(apiMessage(err), "error")
		return err
	}
	f.mu.Lock()
	f.likes[id] = true
	f.adjustLikeLocked(id, 1)
	f.mu.Unlock()
	return nil
}

func (f *Feed) adjustLikeLocked(id uint, delta int64) {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].LikeCount += delta
			if f.items[i].LikeCount < 0 {
				f.items[i].LikeCount = 0
			}
			return
		}
	}
}

func (f *Feed) adjustCommentsLocked(id uint, delta int64) {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].CommentCount += delta
			if f.items[i].CommentCount < 0 {
				f.items[i].CommentCount = 0
			}
			return
		}
	}
}

func (f *Feed) Liked(id uint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.likes[id]
}

func (f *Feed) LikeCount(id uint) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.items {
		if t.ID == id {
			return t.LikeCount
		}
	}
	return 0
}

func (f *Feed) CommentCount(id uint) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.items {
		if t.ID == id {
			return t.CommentCount
		}
	}
	return 0
}

// --- Comments ---

// AddComment posts a comment and applies it locally: appended to the thread,
// count up by one. Whitespace-only input is dropped without a remote call.
func (f *Feed) AddComment(id uint, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	if f.session.User() == nil {
		f.showMessage(messages.ErrCommentLoginRequired, "error")
		return ErrSignInRequired
	}

	comment, err := f.api.AddTestimonyComment(id, content)
	if err != nil {
		f.showMessage(apiMessage(err), "error")
		return err
	}

	f.mu.Lock()
	f.comments[id] = append(f.comments[id], *comment)
	f.adjustCommentsLocked(id, 1)
	f.mu.Unlock()
	return nil
}

// DeleteComment removes the caller's own comment and adjusts local state.
func (f *Feed) DeleteComment(commentID, testimonyID uint) error {
	user := f.session.User()
	if user == nil {
		return ErrSignInRequired
	}

	f.mu.Lock()
	var owned bool
	for _, c := range f.comments[testimonyID] {
		if c.ID == commentID {
			owned = c.UserID == user.ID
			break
		}
	}
	f.mu.Unlock()
	if !owned {
		return ErrNotOwner
	}

	if err := f.api.DeleteTestimonyComment(commentID); err != nil {
		f.showMessage(apiMessage(err), "error")
		return err
	}

	f.mu.Lock()
	thread := f.comments[testimonyID]
	for i, c := range thread {
		if c.ID == commentID {
			f.comments[testimonyID] = append(thread[:i], thread[i+1:]...)
			break
		}
	}
	f.adjustCommentsLocked(testimonyID, -1)
	f.mu.Unlock()
	return nil
}

// DeletePost removes the caller's own post and reloads the feed.
func (f *Feed) DeletePost(id uint) error {
	user := f.session.User()
	if user == nil {
		return ErrSignInRequired
	}
	f.mu.Lock()
	var owned bool
	for _, t := range f.items {
		if t.ID == id {
			owned = t.UserID == user.ID
			break
		}
	}
	f.mu.Unlock()
	if !owned {
		return ErrNotOwner
	}

	if err := f.api.DeleteTestimony(id); err != nil {
		f.showMessage(apiMessage(err), "error")
		return err
	}
	f.showMessage(messages.PostDeleted, "success")
	return f.Load()
}

// --- Presentation state ---

// Items answers a copy of the feed rows with their current derived counts.
func (f *Feed) Items() []models.TestimonyWithCounts {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.TestimonyWithCounts, len(f.items))
	copy(out, f.items)
	return out
}

// Comments answers the full thread for one post, oldest-first.
func (f *Feed) Comments(id uint) []models.TestimonyComment {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.TestimonyComment, len(f.comments[id]))
	copy(out, f.comments[id])
	return out
}

// VisibleComments answers the thread as rendered: the last two comments
// unless the post is expanded.
func (f *Feed) VisibleComments(id uint) []models.TestimonyComment {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.comments[id]
	if f.expanded[id] || len(all) <= visibleCommentCount {
		out := make([]models.TestimonyComment, len(all))
		copy(out, all)
		return out
	}
	out := make([]models.TestimonyComment, visibleCommentCount)
	copy(out, all[len(all)-visibleCommentCount:])
	return out
}

// HasMoreComments reports whether the "show all" affordance renders.
func (f *Feed) HasMoreComments(id uint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.comments[id]) > visibleCommentCount && !f.expanded[id]
}

func (f *Feed) ExpandComments(id uint) {
	f.mu.Lock()
	f.expanded[id] = true
	f.mu.Unlock()
}

func (f *Feed) ToggleExpanded(id uint) {
	f.mu.Lock()
	if f.expanded[id] {
		delete(f.expanded, id)
	} else {
		f.expanded[id] = true
	}
	f.mu.Unlock()
}

// ToggleMenu opens the post's context menu, closing any other; toggling the
// open one closes it. At most one menu is ever open.
func (f *Feed) ToggleMenu(id uint) {
	f.mu.Lock()
	if f.activeMenu == id {
		f.activeMenu = 0
	} else {
		f.activeMenu = id
	}
	f.mu.Unlock()
}

// CloseMenus is the outside-click handler.
func (f *Feed) CloseMenus() {
	f.mu.Lock()
	f.activeMenu = 0
	f.mu.Unlock()
}

func (f *Feed) ActiveMenu() uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activeMenu
}

// --- Banner ---

func (f *Feed) Message() Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

func (f *Feed) showMessage(text, typ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message = Message{Text: text, Type: typ}
	if f.msgTimer != nil {
		f.msgTimer.Stop()
	}
	f.msgTimer = time.AfterFunc(messageTTL, func() {
		f.mu.Lock()
		f.message = Message{}
		f.mu.Unlock()
	})
}

// apiMessage extracts the server's localized message, falling back to the
// generic one for transport failures.
func apiMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return messages.ErrServer
}
