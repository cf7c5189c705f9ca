// Package pollclient is the HTTP client for the poll endpoints used by the
// poll detail view.
package pollclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pollshare/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pollclient: %d %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// NewComment is the body of a comment or reply.
type NewComment struct {
	Body     string `json:"body"`
	Author   uint   `json:"author"`
	Handle   string `json:"handle,omitempty"`
	UserDp   string `json:"userDp,omitempty"`
	ParentID *uint  `json:"parentId,omitempty"`
}

// Client talks to the /api/polls routes.
type Client struct {
	baseURL string
	timeout time.Duration
	token   string
	newKey  func() string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each request when the context has no earlier deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithToken sends a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New returns a client for the API rooted at baseURL, e.g. "http://localhost:8375/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultTimeout,
		newKey:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetPoll fetches a poll with its options and voted-set.
func (c *Client) GetPoll(ctx context.Context, pollID uint) (*models.Poll, error) {
	var poll models.Poll
	if err := c.do(ctx, fiber.Get(c.pollURL(pollID, "")), &poll); err != nil {
		return nil, err
	}
	return &poll, nil
}

// GetComments fetches the comment tree of a poll.
func (c *Client) GetComments(ctx context.Context, pollID uint) ([]models.Comment, error) {
	var comments []models.Comment
	if err := c.do(ctx, fiber.Get(c.pollURL(pollID, "/comments")), &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// Vote casts a vote. Each call carries a fresh Idempotency-Key so a
// transport-level retry of the same request is not counted twice.
func (c *Client) Vote(ctx context.Context, pollID uint, optionIndex int, userID uint) (*models.Poll, error) {
	a := fiber.Post(c.pollURL(pollID, "/vote")).
		Set("Idempotency-Key", c.newKey()).
		JSON(fiber.Map{"optionIndex": optionIndex, "userId": userID})

	var poll models.Poll
	if err := c.do(ctx, a, &poll); err != nil {
		return nil, err
	}
	return &poll, nil
}

// PostComment creates a comment, or a reply when in.ParentID is set.
func (c *Client) PostComment(ctx context.Context, pollID uint, in NewComment) (*models.Comment, error) {
	var comment models.Comment
	if err := c.do(ctx, fiber.Post(c.pollURL(pollID, "/comments")).JSON(in), &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes a comment the user wrote.
func (c *Client) DeleteComment(ctx context.Context, pollID, commentID, userID uint) error {
	q := url.Values{"userId": {strconv.FormatUint(uint64(userID), 10)}}
	u := c.pollURL(pollID, "/comments/"+strconv.FormatUint(uint64(commentID), 10)) + "?" + q.Encode()
	return c.do(ctx, fiber.Delete(u), nil)
}

func (c *Client) pollURL(pollID uint, suffix string) string {
	return c.baseURL + "/polls/" + strconv.FormatUint(uint64(pollID), 10) + suffix
}

func (c *Client) do(ctx context.Context, a *fiber.Agent, out any) error {
	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(a)
		return err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}
	a.Timeout(timeout)
	if c.token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}

	status, body, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("pollclient: %w", errors.Join(errs...))
	}
	if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
		return decodeAPIError(status, body)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("pollclient: decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, body []byte) error {
	var resp models.ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Error == "" {
		resp.Error = strings.TrimSpace(string(body))
	}
	if resp.Error == "" {
		resp.Error = fiber.NewError(status).Message
	}
	return &APIError{Status: status, Message: resp.Error}
}
