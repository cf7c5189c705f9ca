package polldetail

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"pollshare/internal/models"
	"pollshare/internal/pollclient"
)

// CommentVote is the viewer's local up/down mark on a comment.
type CommentVote int

const (
	VoteNone CommentVote = iota
	VoteUp
	VoteDown
)

func (c CommentVote) String() string {
	switch c {
	case VoteUp:
		return "up"
	case VoteDown:
		return "down"
	default:
		return "none"
	}
}

// Walk visits comments depth first. Top-level comments have depth 0 and each
// reply is one deeper than its parent.
func Walk(comments []models.Comment, fn func(c *models.Comment, depth int)) {
	walk(comments, 0, fn)
}

func walk(comments []models.Comment, depth int, fn func(c *models.Comment, depth int)) {
	for i := range comments {
		fn(&comments[i], depth)
		walk(comments[i].Replies, depth+1, fn)
	}
}

// Block is one rendered comment.
type Block struct {
	ID        uint
	Depth     int
	Handle    string
	UserDp    string
	Body      string
	VoteCount int
	CreatedAt time.Time
	Vote      CommentVote
	Replying  bool
	CanDelete bool
	Deleting  bool
}

// Blocks flattens the thread in render order.
func (v *View) Blocks() []Block {
	v.mu.Lock()
	defer v.mu.Unlock()

	var out []Block
	Walk(v.comments, func(c *models.Comment, depth int) {
		handle := c.Handle
		if handle == "" {
			handle = "Anonymous"
		}
		out = append(out, Block{
			ID:        c.ID,
			Depth:     depth,
			Handle:    handle,
			UserDp:    c.UserDp,
			Body:      c.Body,
			VoteCount: c.VoteCount,
			CreatedAt: c.CreatedAt,
			Vote:      v.commentVotes[c.ID],
			Replying:  v.replyingTo == c.ID,
			CanDelete: v.viewer != nil && v.viewer.ID == c.AuthorID,
			Deleting:  v.deletingID == c.ID,
		})
	})
	return out
}

// SetDraft sets the text of the new top-level comment box.
func (v *View) SetDraft(body string) {
	v.mu.Lock()
	v.draft = body
	v.mu.Unlock()
}

// Draft returns the new comment text.
func (v *View) Draft() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.draft
}

// SubmitComment posts the draft. The saved comment goes to the top of the
// thread with a zero vote count and the local time. A failure is logged and
// returned and leaves the thread and draft untouched.
func (v *View) SubmitComment(ctx context.Context) error {
	v.mu.Lock()
	body := v.draft
	switch {
	case strings.TrimSpace(body) == "":
		v.mu.Unlock()
		return ErrEmptyComment
	case v.viewer == nil || v.confirmed == nil:
		v.mu.Unlock()
		return ErrNotReady
	case v.commenting:
		v.mu.Unlock()
		return ErrCommentPending
	}
	v.commenting = true
	in := v.newComment(body)
	v.mu.Unlock()

	saved, err := v.api.PostComment(ctx, v.pollID, in)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.commenting = false
	if err != nil {
		v.logger.ErrorContext(ctx, "post comment failed", slog.Uint64("poll_id", uint64(v.pollID)), slog.String("error", err.Error()))
		return err
	}
	v.comments = append([]models.Comment{v.localCopy(saved)}, v.comments...)
	v.draft = ""
	return nil
}

// Commenting reports whether a top-level comment is being posted.
func (v *View) Commenting() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.commenting
}

// ToggleReply opens the reply box under commentID, or closes it when it is
// already open there. Only one reply box is open at a time and its text is
// kept when moving between comments.
func (v *View) ToggleReply(commentID uint) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.replyingTo == commentID {
		v.replyingTo = 0
		return
	}
	v.replyingTo = commentID
}

// ReplyingTo returns the comment with the open reply box, or 0.
func (v *View) ReplyingTo() uint {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.replyingTo
}

// SetReplyContent sets the text of the reply box.
func (v *View) SetReplyContent(body string) {
	v.mu.Lock()
	v.replyContent = body
	v.mu.Unlock()
}

// ReplyContent returns the reply box text.
func (v *View) ReplyContent() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.replyContent
}

// SubmitReply posts the reply box text under the open comment. Replies to a
// reply are attached to its top-level comment, since threads are one level
// deep. On success the reply box closes and is cleared.
func (v *View) SubmitReply(ctx context.Context) error {
	v.mu.Lock()
	body := v.replyContent
	switch {
	case v.replyingTo == 0:
		v.mu.Unlock()
		return ErrNoReplyTarget
	case strings.TrimSpace(body) == "":
		v.mu.Unlock()
		return ErrEmptyComment
	case v.viewer == nil || v.confirmed == nil:
		v.mu.Unlock()
		return ErrNotReady
	}
	parentID, ok := v.topLevelID(v.replyingTo)
	if !ok {
		v.mu.Unlock()
		return ErrCommentNotFound
	}
	in := v.newComment(body)
	in.ParentID = &parentID
	v.mu.Unlock()

	saved, err := v.api.PostComment(ctx, v.pollID, in)
	if err != nil {
		v.logger.ErrorContext(ctx, "post reply failed",
			slog.Uint64("poll_id", uint64(v.pollID)),
			slog.Uint64("parent_id", uint64(parentID)),
			slog.String("error", err.Error()),
		)
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.comments {
		if v.comments[i].ID == parentID {
			v.comments[i].Replies = append(v.comments[i].Replies, v.localCopy(saved))
			break
		}
	}
	v.replyingTo = 0
	v.replyContent = ""
	return nil
}

// ToggleCommentVote marks a comment up or down. Picking the active direction
// again clears it. Marks are never sent to the server.
func (v *View) ToggleCommentVote(commentID uint, dir CommentVote) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if dir == VoteNone || v.commentVotes[commentID] == dir {
		delete(v.commentVotes, commentID)
		return
	}
	v.commentVotes[commentID] = dir
}

// CommentVoteOf returns the local mark on a comment.
func (v *View) CommentVoteOf(commentID uint) CommentVote {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.commentVotes[commentID]
}

// DeleteComment removes one of the viewer's comments. While the request is
// in flight the comment is marked as deleting and a second delete of it
// returns ErrDeletePending.
func (v *View) DeleteComment(ctx context.Context, commentID uint) error {
	v.mu.Lock()
	if v.deletingID == commentID {
		v.mu.Unlock()
		return ErrDeletePending
	}
	c := v.find(commentID)
	switch {
	case c == nil:
		v.mu.Unlock()
		return ErrCommentNotFound
	case v.viewer == nil || v.viewer.ID != c.AuthorID:
		v.mu.Unlock()
		return ErrNotAuthor
	}
	userID := v.viewer.ID
	v.deletingID = commentID
	v.mu.Unlock()

	err := v.api.DeleteComment(ctx, v.pollID, commentID, userID)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.deletingID == commentID {
		v.deletingID = 0
	}
	if err != nil {
		v.logger.ErrorContext(ctx, "delete comment failed",
			slog.Uint64("poll_id", uint64(v.pollID)),
			slog.Uint64("comment_id", uint64(commentID)),
			slog.String("error", err.Error()),
		)
		return err
	}
	v.comments = removeComment(v.comments, commentID)
	if v.replyingTo == commentID {
		v.replyingTo = 0
	}
	delete(v.commentVotes, commentID)
	return nil
}

// DeletingID returns the comment whose delete is in flight, or 0.
func (v *View) DeletingID() uint {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.deletingID
}

// newComment builds the request body for the viewer. Callers hold mu.
func (v *View) newComment(body string) pollclient.NewComment {
	handle := v.viewer.Handle
	if handle == "" {
		handle = "Anonymous"
	}
	return pollclient.NewComment{
		Body:   body,
		Author: v.viewer.ID,
		Handle: handle,
		UserDp: v.viewer.ProfilePicture,
	}
}

// localCopy stamps a server comment for insertion. Callers hold mu.
func (v *View) localCopy(c *models.Comment) models.Comment {
	out := *c
	out.VoteCount = 0
	out.CreatedAt = v.now()
	return out
}

// find returns the comment with id anywhere in the thread. Callers hold mu.
func (v *View) find(id uint) *models.Comment {
	var found *models.Comment
	Walk(v.comments, func(c *models.Comment, _ int) {
		if found == nil && c.ID == id {
			found = c
		}
	})
	return found
}

// topLevelID returns the top-level comment holding id. Callers hold mu.
func (v *View) topLevelID(id uint) (uint, bool) {
	for _, top := range v.comments {
		if top.ID == id {
			return id, true
		}
		for _, r := range top.Replies {
			if r.ID == id {
				return top.ID, true
			}
		}
	}
	return 0, false
}

func removeComment(comments []models.Comment, id uint) []models.Comment {
	out := comments[:0:0]
	for _, c := range comments {
		if c.ID == id {
			continue
		}
		c.Replies = removeComment(c.Replies, id)
		out = append(out, c)
	}
	return out
}
