package polldetail_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"pollshare/internal/config"
	"pollshare/internal/models"
	"pollshare/internal/pollclient"
	"pollshare/internal/polldetail"
	"pollshare/internal/server"
	"pollshare/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type liveServer struct {
	db     *gorm.DB
	client *pollclient.Client
}

func startServer(t *testing.T) *liveServer {
	t.Helper()
	cfg := &config.Config{Env: "test", Port: "0", AllowedOrigins: "*", FeatureFlags: "live_polls=on"}
	db := testutil.NewSQLiteDB(t)
	testutil.NewRedis(t)
	s, err := server.NewServerWithDeps(cfg, db, nil, nil)
	require.NoError(t, err)

	app := s.App()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return &liveServer{db: db, client: pollclient.New("http://"+ln.Addr().String()+"/api", pollclient.WithTimeout(5*time.Second))}
}

func (ls *liveServer) user(t *testing.T, handle string) models.User {
	t.Helper()
	u := models.User{UserID: "ext-" + handle, Handle: handle, Name: handle, ProfilePicture: handle + ".png"}
	require.NoError(t, ls.db.Create(&u).Error)
	return u
}

func (ls *liveServer) poll(t *testing.T, author models.User) models.Poll {
	t.Helper()
	p := models.Poll{
		Question:  "Best season?",
		AuthorID:  author.ID,
		ExpiresAt: time.Now().Add(2 * time.Hour),
		Options: []models.PollOption{
			{Position: 0, Text: "Spring"},
			{Position: 1, Text: "Summer"},
			{Position: 2, Text: "Autumn"},
		},
	}
	require.NoError(t, ls.db.Create(&p).Error)
	return p
}

func quiet() polldetail.Option {
	return polldetail.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func viewerOf(u models.User) polldetail.Viewer {
	return polldetail.Viewer{ID: u.ID, Handle: u.Handle, ProfilePicture: u.ProfilePicture}
}

func TestViewAgainstServer_VoteAndThread(t *testing.T) {
	ls := startServer(t)
	alice := ls.user(t, "alice")
	bob := ls.user(t, "bob")
	p := ls.poll(t, alice)
	ctx := context.Background()

	v := polldetail.NewView(ls.client, p.ID, polldetail.WithViewer(viewerOf(bob)), quiet())
	t.Cleanup(v.Close)
	require.NoError(t, v.Load(ctx))
	assert.False(t, v.ShowResults(time.Now()))

	require.NoError(t, v.Vote(ctx, 2))
	st := v.State()
	assert.True(t, st.HasVoted)
	assert.Equal(t, 1, st.TotalVotes)
	assert.Equal(t, 1, st.Options[2].Votes)
	assert.Contains(t, st.Poll.VotedUsers, bob.ID)
	assert.True(t, v.ShowResults(time.Now()))
	assert.Equal(t, 100, v.Percentage(st.Options[2].Votes))
	assert.Equal(t, "2h remaining", v.TimeRemaining(time.Now()))

	assert.ErrorIs(t, v.Vote(ctx, 0), polldetail.ErrVoteRejected)

	v.SetDraft("Autumn leaves")
	require.NoError(t, v.SubmitComment(ctx))
	blocks := v.Blocks()
	require.Len(t, blocks, 1)
	top := blocks[0]
	assert.Equal(t, "bob", top.Handle)
	assert.True(t, top.CanDelete)

	v.ToggleReply(top.ID)
	v.SetReplyContent("Agreed")
	require.NoError(t, v.SubmitReply(ctx))
	blocks = v.Blocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, 1, blocks[1].Depth)
	assert.Zero(t, v.ReplyingTo())

	stored, err := ls.client.GetComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Len(t, stored[0].Replies, 1)

	require.NoError(t, v.DeleteComment(ctx, top.ID))
	assert.Empty(t, v.Blocks())
	stored, err = ls.client.GetComments(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestViewAgainstServer_RollbackOnConflict(t *testing.T) {
	ls := startServer(t)
	alice := ls.user(t, "alice")
	p := ls.poll(t, alice)
	ctx := context.Background()

	stale, err := ls.client.GetPoll(ctx, p.ID)
	require.NoError(t, err)

	// The same user votes from elsewhere before this view submits.
	_, err = ls.client.Vote(ctx, p.ID, 1, alice.ID)
	require.NoError(t, err)

	v := polldetail.NewView(ls.client, p.ID,
		polldetail.WithViewer(viewerOf(alice)), polldetail.WithPoll(stale), quiet())
	t.Cleanup(v.Close)

	err = v.Vote(ctx, 0)
	assert.True(t, pollclient.IsStatus(err, http.StatusConflict))

	st := v.State()
	assert.False(t, st.HasVoted)
	assert.Equal(t, -1, st.Selected)
	assert.Zero(t, st.TotalVotes)
	assert.Zero(t, st.Options[0].Votes)
}
