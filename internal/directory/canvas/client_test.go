package canvas

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"peer-review-assigner/internal/directory"
	"peer-review-assigner/internal/domain"
	"peer-review-assigner/internal/logger"
	"peer-review-assigner/internal/sandbox"
)

const testToken = "secret"

const testFixture = `
courses:
  - id: 101
    name: Intro to Go
    students:
      - {id: 1, short_name: Alice}
      - {id: 2, short_name: Bob}
      - {id: 3, short_name: Carol}
      - {id: 4, short_name: Dave}
      - {id: 5, short_name: Erin}
    assignments:
      - id: 7
        name: Essay 1
        submissions:
          - {id: 9001, user_id: 1}
          - {id: 9002, user_id: 2}
          - {id: 9003, user_id: 3}
        reject_reviews_for: [9003]
`

func newSandboxClient(t *testing.T, perPage int) (*Client, *sandbox.Store) {
	t.Helper()

	fixture, err := sandbox.ParseFixture([]byte(testFixture))
	require.NoError(t, err)

	store := sandbox.NewStore(fixture)
	srv := httptest.NewServer(sandbox.NewRouter(store, zap.NewNop(), &logger.Config{Level: "info"}, testToken, 0))
	t.Cleanup(srv.Close)

	client, err := New(&Config{BaseURL: srv.URL, Timeout: 5 * time.Second, PerPage: perPage}, testToken, zap.NewNop())
	require.NoError(t, err)

	return client, store
}

func newRawClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(&Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, testToken, zap.NewNop())
	require.NoError(t, err)

	return client
}

func TestNew(t *testing.T) {
	t.Run("requires token", func(t *testing.T) {
		_, err := New(&Config{BaseURL: "https://canvas.example.org"}, "", zap.NewNop())
		require.Error(t, err)
	})

	t.Run("requires absolute base url", func(t *testing.T) {
		_, err := New(&Config{BaseURL: "canvas.example.org"}, testToken, zap.NewNop())
		require.Error(t, err)
	})

	t.Run("builds endpoints under api root", func(t *testing.T) {
		client, err := New(&Config{BaseURL: "https://canvas.example.org/"}, testToken, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, "https://canvas.example.org/api/v1/courses/5", client.endpoint(coursePath(5), nil))
	})
}

func TestClient_GetCourse(t *testing.T) {
	client, _ := newSandboxClient(t, 100)
	ctx := context.Background()

	t.Run("resolves existing course", func(t *testing.T) {
		course, err := client.GetCourse(ctx, 101)
		require.NoError(t, err)
		assert.Equal(t, domain.Course{ID: 101, Name: "Intro to Go"}, *course)
	})

	t.Run("reports platform message for unknown course", func(t *testing.T) {
		_, err := client.GetCourse(ctx, 404)
		require.ErrorIs(t, err, directory.ErrPlatform)
		require.NotErrorIs(t, err, directory.ErrDecodeFailure)

		var remoteErr *directory.RemoteError
		require.True(t, errors.As(err, &remoteErr))
		assert.Equal(t, http.StatusNotFound, remoteErr.StatusCode)
		assert.Equal(t, "The specified resource does not exist.", remoteErr.Message)
	})
}

func TestClient_GetAssignment(t *testing.T) {
	client, _ := newSandboxClient(t, 100)

	assignment, err := client.GetAssignment(context.Background(), 101, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.Assignment{ID: 7, CourseID: 101, Name: "Essay 1"}, *assignment)

	_, err = client.GetAssignment(context.Background(), 101, 8)
	require.ErrorIs(t, err, directory.ErrPlatform)
}

func TestClient_ListStudents(t *testing.T) {
	t.Run("follows pagination", func(t *testing.T) {
		client, _ := newSandboxClient(t, 2)

		users, err := client.ListStudents(context.Background(), 101)
		require.NoError(t, err)
		require.Len(t, users, 5)
		assert.Equal(t, "Alice", users[0].ShortName)
		assert.Equal(t, "Erin", users[4].ShortName)
	})

	t.Run("stops at max pages", func(t *testing.T) {
		client, _ := newSandboxClient(t, 1)
		client.maxPages = 2

		_, err := client.ListStudents(context.Background(), 101)
		require.ErrorIs(t, err, errTooManyPages)
	})

	t.Run("errors payload is a platform error", func(t *testing.T) {
		client := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[{"message":"not found"}]}`))
		})

		_, err := client.ListStudents(context.Background(), 101)
		require.ErrorIs(t, err, directory.ErrPlatform)
		assert.Equal(t, "not found", directory.Message(err))
	})

	t.Run("errors payload wins over success status", func(t *testing.T) {
		client := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"errors":[{"message":"user not authorized to perform that action"}]}`))
		})

		_, err := client.ListStudents(context.Background(), 101)
		require.ErrorIs(t, err, directory.ErrPlatform)
		assert.Equal(t, "user not authorized to perform that action", directory.Message(err))
	})
}

func TestClient_DecodeFailure(t *testing.T) {
	client := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := client.GetCourse(context.Background(), 101)
	require.ErrorIs(t, err, directory.ErrDecodeFailure)
	assert.False(t, directory.IsRecoverable(err))

	var remoteErr *directory.RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusBadGateway, remoteErr.StatusCode)
}

func TestClient_MissingField(t *testing.T) {
	client := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": 101}`))
	})

	_, err := client.GetCourse(context.Background(), 101)
	require.ErrorIs(t, err, directory.ErrMissingField)
	assert.True(t, directory.IsRecoverable(err))
}

func TestClient_RejectedToken(t *testing.T) {
	t.Run("errors payload on 401", func(t *testing.T) {
		_, store := newSandboxClient(t, 100)
		srv := httptest.NewServer(sandbox.NewRouter(store, zap.NewNop(), &logger.Config{Level: "info"}, testToken, 0))
		t.Cleanup(srv.Close)

		client, err := New(&Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, "wrong", zap.NewNop())
		require.NoError(t, err)

		_, err = client.GetCourse(context.Background(), 101)
		require.ErrorIs(t, err, directory.ErrUnauthorized)
		require.NotErrorIs(t, err, directory.ErrPlatform)
		assert.False(t, directory.IsRecoverable(err))
		assert.Equal(t, "Invalid access token.", directory.Message(err))
	})

	t.Run("plain text 401", func(t *testing.T) {
		client := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("unauthorized"))
		})

		_, err := client.GetCourse(context.Background(), 101)
		require.ErrorIs(t, err, directory.ErrUnauthorized)
		assert.False(t, directory.IsRecoverable(err))
	})
}

func TestClient_SendsBearerToken(t *testing.T) {
	var got string
	client := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"id": 101, "name": "Intro"}`))
	})

	_, err := client.GetCourse(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+testToken, got)
}

func TestClient_CreatePeerReview(t *testing.T) {
	client, store := newSandboxClient(t, 100)
	ctx := context.Background()

	review, err := client.CreatePeerReview(ctx, 101, 7, 9002, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), review.AssessorID)
	assert.Equal(t, int64(9002), review.AssetID)
	require.Len(t, store.PeerReviews(), 1)

	_, err = client.CreatePeerReview(ctx, 101, 7, 9003, 1)
	require.ErrorIs(t, err, directory.ErrPlatform)

	_, err = client.CreatePeerReview(ctx, 101, 7, 9001, 1)
	require.ErrorIs(t, err, directory.ErrPlatform)
	assert.Equal(t, "a user cannot review their own submission", directory.Message(err))
}

func TestNextLink(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "empty", header: "", want: ""},
		{
			name:   "next among others",
			header: `<https://x/api/v1/a?page=1>; rel="current", <https://x/api/v1/a?page=2>; rel="next", <https://x/api/v1/a?page=9>; rel="last"`,
			want:   "https://x/api/v1/a?page=2",
		},
		{name: "no next", header: `<https://x/api/v1/a?page=1>; rel="first"`, want: ""},
		{name: "unquoted rel", header: `<https://x/api/v1/a?page=3>; rel=next`, want: "https://x/api/v1/a?page=3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextLink(tt.header))
		})
	}
}

func TestClient_DescribePeerReview(t *testing.T) {
	client, err := New(&Config{BaseURL: "https://canvas.example.org"}, testToken, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t,
		"POST /api/v1/courses/101/assignments/7/submissions/9002/peer_reviews user_id=1",
		client.DescribePeerReview(101, 7, 9002, 1),
	)
}
