package issuance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"peer-review-assigner/internal/directory"
	"peer-review-assigner/internal/domain"
	"peer-review-assigner/internal/prompt/prompttest"
)

type call struct {
	reviewerID   int64
	submissionID int64
}

type fakeDirectory struct {
	mu       sync.Mutex
	calls    []call
	fail     map[int64]error
	onCreate func()
	delay    time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeDirectory) GetCourse(ctx context.Context, courseID int64) (*domain.Course, error) {
	return nil, errors.New("not used")
}

func (f *fakeDirectory) GetAssignment(ctx context.Context, courseID, assignmentID int64) (*domain.Assignment, error) {
	return nil, errors.New("not used")
}

func (f *fakeDirectory) ListStudents(ctx context.Context, courseID int64) ([]domain.User, error) {
	return nil, errors.New("not used")
}

func (f *fakeDirectory) ListSubmissions(ctx context.Context, courseID, assignmentID int64) ([]domain.Submission, error) {
	return nil, errors.New("not used")
}

func (f *fakeDirectory) CreatePeerReview(ctx context.Context, courseID, assignmentID, submissionID, reviewerID int64) (*domain.PeerReview, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.onCreate != nil {
		f.onCreate()
	}

	f.mu.Lock()
	f.calls = append(f.calls, call{reviewerID: reviewerID, submissionID: submissionID})
	f.mu.Unlock()

	if err, ok := f.fail[submissionID]; ok {
		return nil, err
	}
	return &domain.PeerReview{ID: submissionID * 10, AssessorID: reviewerID, AssetID: submissionID, WorkflowState: "assigned"}, nil
}

func (f *fakeDirectory) DescribePeerReview(courseID, assignmentID, submissionID, reviewerID int64) string {
	return fmt.Sprintf("POST /api/v1/courses/%d/assignments/%d/submissions/%d/peer_reviews user_id=%d", courseID, assignmentID, submissionID, reviewerID)
}

func newPlan(t *testing.T, assigned map[int64][]int64, reviewers ...int64) Plan {
	t.Helper()

	roster, err := domain.NewRoster([]domain.User{
		{ID: 1, ShortName: "Ana"},
		{ID: 2, ShortName: "Ben"},
		{ID: 3, ShortName: "Cho"},
	})
	require.NoError(t, err)

	return Plan{
		Course:     domain.Course{ID: 12345, Name: "Systems Programming"},
		Assignment: domain.Assignment{ID: 67890, CourseID: 12345, Name: "Lab 3"},
		Roster:     roster,
		Allocation: &domain.Allocation{Reviewers: reviewers, Assigned: assigned},
	}
}

func TestEngine_Run(t *testing.T) {
	t.Run("issues every pairing in order", func(t *testing.T) {
		dir := &fakeDirectory{}
		script := prompttest.NewScript(prompttest.Yes())
		rec := &prompttest.Recorder{}
		plan := newPlan(t, map[int64][]int64{1: {501, 503}, 2: {502}}, 1, 2)

		results, err := New(Config{Concurrency: 3}, dir, script, rec, zap.NewNop()).Run(context.Background(), plan)

		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, []domain.IssuanceResult{
			{Pairing: domain.Pairing{ReviewerID: 1, SubmissionID: 501}, ReviewID: 5010},
			{Pairing: domain.Pairing{ReviewerID: 1, SubmissionID: 503}, ReviewID: 5030},
			{Pairing: domain.Pairing{ReviewerID: 2, SubmissionID: 502}, ReviewID: 5020},
		}, results)
		assert.Len(t, dir.calls, 3)
		assert.Equal(t, []string{"confirm: Issue 3 peer reviews?"}, script.Asked())
		assert.Equal(t, []string{"Issued 3 peer reviews."}, rec.Messages("success"))

		tables := rec.Tables()
		require.Len(t, tables, 2)
		assert.Equal(t, []string{
			"Ana", "501",
			"POST /api/v1/courses/12345/assignments/67890/submissions/501/peer_reviews user_id=1",
		}, tables[0].Rows[0])
		assert.Equal(t, []string{"Ben", "502", "5020", "ok"}, tables[1].Rows[2])
	})

	t.Run("rejected batch sends nothing", func(t *testing.T) {
		dir := &fakeDirectory{}
		script := prompttest.NewScript(prompttest.No())
		rec := &prompttest.Recorder{}
		plan := newPlan(t, map[int64][]int64{1: {501}, 2: {502}}, 1, 2)

		results, err := New(Config{Concurrency: 2}, dir, script, rec, zap.NewNop()).Run(context.Background(), plan)

		require.ErrorIs(t, err, ErrCancelled)
		assert.Nil(t, results)
		assert.Empty(t, dir.calls)
		assert.True(t, rec.Contains("warn", "Cancelled"))
	})

	t.Run("empty allocation asks nothing and sends nothing", func(t *testing.T) {
		dir := &fakeDirectory{}
		script := prompttest.NewScript()
		plan := newPlan(t, map[int64][]int64{1: {}, 2: {}}, 1, 2)

		results, err := New(Config{Concurrency: 2}, dir, script, &prompttest.Recorder{}, zap.NewNop()).Run(context.Background(), plan)

		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
		assert.Empty(t, script.Asked())
		assert.Empty(t, dir.calls)
	})

	t.Run("failures are recorded and the rest continue", func(t *testing.T) {
		dir := &fakeDirectory{fail: map[int64]error{
			502: &directory.RemoteError{Kind: directory.ErrPlatform, StatusCode: 400, Message: "a user cannot review their own submission"},
		}}
		rec := &prompttest.Recorder{}
		plan := newPlan(t, map[int64][]int64{1: {501, 503}, 2: {502, 504}}, 1, 2)

		results, err := New(Config{Concurrency: 1}, dir, prompttest.NewScript(prompttest.Yes()), rec, zap.NewNop()).Run(context.Background(), plan)

		require.ErrorIs(t, err, ErrIssuanceFailed)
		require.Len(t, results, 4)
		assert.Len(t, dir.calls, 4)
		assert.True(t, results[0].Succeeded())
		assert.True(t, results[1].Succeeded())
		assert.False(t, results[2].Succeeded())
		assert.ErrorIs(t, results[2].Err, directory.ErrPlatform)
		assert.True(t, results[3].Succeeded())

		tables := rec.Tables()
		assert.Equal(t, []string{"Ben", "502", "-", "a user cannot review their own submission"}, tables[1].Rows[2])
		assert.Equal(t, []string{"1 of 4 peer reviews failed."}, rec.Messages("error"))
	})

	t.Run("cancellation marks the remaining pairings failed", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		dir := &fakeDirectory{onCreate: cancel}
		plan := newPlan(t, map[int64][]int64{1: {501, 502, 503}}, 1)

		results, err := New(Config{Concurrency: 1}, dir, prompttest.NewScript(prompttest.Yes()), &prompttest.Recorder{}, zap.NewNop()).Run(ctx, plan)

		require.ErrorIs(t, err, ErrIssuanceFailed)
		require.Len(t, results, 3)
		assert.True(t, results[0].Succeeded())
		assert.ErrorIs(t, results[1].Err, context.Canceled)
		assert.ErrorIs(t, results[2].Err, context.Canceled)
		assert.Len(t, dir.calls, 1)
	})

	t.Run("respects the concurrency limit", func(t *testing.T) {
		dir := &fakeDirectory{delay: 5 * time.Millisecond}
		plan := newPlan(t, map[int64][]int64{1: {501, 502, 503, 504}, 2: {505, 506, 507, 508}}, 1, 2)

		results, err := New(Config{Concurrency: 2}, dir, prompttest.NewScript(prompttest.Yes()), &prompttest.Recorder{}, zap.NewNop()).Run(context.Background(), plan)

		require.NoError(t, err)
		assert.Len(t, results, 8)
		assert.LessOrEqual(t, dir.maxInFlight.Load(), int32(2))
	})

	t.Run("confirmation error is returned", func(t *testing.T) {
		abort := errors.New("interrupted")
		dir := &fakeDirectory{}
		plan := newPlan(t, map[int64][]int64{1: {501}}, 1)

		_, err := New(Config{}, dir, prompttest.NewScript(prompttest.Fail(abort)), &prompttest.Recorder{}, zap.NewNop()).Run(context.Background(), plan)

		require.ErrorIs(t, err, abort)
		assert.Empty(t, dir.calls)
	})
}
