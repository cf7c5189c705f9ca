package service

import (
	"context"

	"pollshare/internal/events"
	"pollshare/internal/models"
	"pollshare/internal/observability"
	"pollshare/internal/repository"
	"pollshare/internal/validation"
)

// CommentService manages poll discussion threads.
type CommentService struct {
	commentRepo repository.CommentRepository
	pollRepo    repository.PollRepository
	userRepo    repository.UserRepository
	activity    *Activity
}

// CreateCommentInput is a new comment or, with ParentID set, a reply.
// Handle and UserDp default to the author's profile.
type CreateCommentInput struct {
	PollID   uint
	AuthorID uint
	Handle   string
	UserDp   string
	Body     string
	ParentID *uint
}

// DeleteCommentInput identifies the comment and the user asking to delete it.
type DeleteCommentInput struct {
	PollID    uint
	CommentID uint
	UserID    uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	pollRepo repository.PollRepository,
	userRepo repository.UserRepository,
	activity *Activity,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		pollRepo:    pollRepo,
		userRepo:    userRepo,
		activity:    activity,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := validation.ValidateCommentBody(in.Body); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.AuthorID == 0 {
		return nil, models.NewValidationError("author is required")
	}
	if _, err := s.pollRepo.GetByID(ctx, in.PollID); err != nil {
		return nil, err
	}
	author, err := s.userRepo.GetByID(ctx, in.AuthorID)
	if err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PollID != in.PollID {
			return nil, models.NewValidationError("Parent comment belongs to another poll")
		}
		if parent.IsReply() {
			return nil, models.NewValidationError("Replies cannot be nested")
		}
	}

	comment := &models.Comment{
		PollID:   in.PollID,
		AuthorID: in.AuthorID,
		Handle:   in.Handle,
		UserDp:   in.UserDp,
		Body:     in.Body,
		ParentID: in.ParentID,
	}
	if comment.Handle == "" {
		comment.Handle = author.Handle
	}
	if comment.UserDp == "" {
		comment.UserDp = author.ProfilePicture
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	observability.CommentOperations.WithLabelValues("create").Inc()

	s.activity.emit(ctx, events.New(events.CommentCreated, events.PollKey(in.PollID), in.AuthorID,
		map[string]uint{"commentId": created.ID}))
	s.activity.notifyPoll(ctx, in.PollID, events.CommentCreated, created)
	return created, nil
}

// ListComments returns the thread for a poll.
func (s *CommentService) ListComments(ctx context.Context, pollID uint) ([]models.Comment, error) {
	if _, err := s.pollRepo.GetByID(ctx, pollID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPoll(ctx, pollID)
}

// DeleteComment removes a comment and its replies. Only the author may delete.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.PollID != in.PollID {
		return nil, models.NewNotFoundError("Comment")
	}
	if comment.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("You can only delete your own comments")
	}

	if err := s.commentRepo.Delete(ctx, in.CommentID); err != nil {
		return nil, err
	}
	observability.CommentOperations.WithLabelValues("delete").Inc()

	s.activity.emit(ctx, events.New(events.CommentDeleted, events.PollKey(in.PollID), in.UserID,
		map[string]uint{"commentId": in.CommentID}))
	s.activity.notifyPoll(ctx, in.PollID, events.CommentDeleted, map[string]uint{"commentId": in.CommentID})
	return comment, nil
}
