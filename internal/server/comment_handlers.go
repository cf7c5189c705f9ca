package server

import (
	"pollshare/internal/models"
	"pollshare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/polls/:id/comments
// @Summary List poll comments
// @Description Top-level comments newest first, each with replies oldest first
// @Tags comments
// @Produce json
// @Param id path int true "Poll id"
// @Success 200 {array} models.Comment
// @Failure 404 {object} models.ErrorResponse
// @Router /polls/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	pollID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListComments(c.UserContext(), pollID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(nonNil(comments))
}

type createCommentRequest struct {
	Body     string  `json:"body"`
	Author   looseID `json:"author" swaggertype:"integer"`
	Handle   string  `json:"handle"`
	UserDp   string  `json:"userDp"`
	ParentID looseID `json:"parentId" swaggertype:"integer"`
}

// CreateComment handles POST /api/polls/:id/comments
// @Summary Comment on a poll
// @Description With parentId set the comment is a reply; replies cannot be replied to
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Poll id"
// @Param request body createCommentRequest true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /polls/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	pollID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if req.ParentID.present && !req.ParentID.Valid() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid parentId"))
	}
	if err := s.authorizeActor(c, req.Author.Value()); err != nil {
		return respondError(c, err)
	}

	in := service.CreateCommentInput{
		PollID:   pollID,
		AuthorID: req.Author.Value(),
		Handle:   req.Handle,
		UserDp:   req.UserDp,
		Body:     req.Body,
	}
	if req.ParentID.Valid() {
		parentID := req.ParentID.Value()
		in.ParentID = &parentID
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// DeleteComment handles DELETE /api/polls/:id/comments/:commentId?userId=
// @Summary Delete a comment
// @Description Only the author may delete; replies are removed with it
// @Tags comments
// @Produce json
// @Param id path int true "Poll id"
// @Param commentId path int true "Comment id"
// @Param userId query int true "Acting user id"
// @Success 200 {object} object{success=bool}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /polls/{id}/comments/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	pollID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}
	userID := c.QueryInt("userId", 0)
	if userID <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("userId is required"))
	}
	if err := s.authorizeActor(c, uint(userID)); err != nil {
		return respondError(c, err)
	}

	if _, err := s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		PollID:    pollID,
		CommentID: commentID,
		UserID:    uint(userID),
	}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
