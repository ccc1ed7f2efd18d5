package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sakif/pawpoll/internal/apperror"
	"github.com/sakif/pawpoll/internal/model"
)

// In-memory fakes of the repository interfaces. They mirror the semantics
// of the SQL stores (triple uniqueness, owner-scoped writes, newest first)
// without a database, and can be told to fail to exercise error paths.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeVoteRepo struct {
	mu     sync.Mutex
	votes  map[string]model.Vote
	nextID int
	err    error // returned by every method when set
}

func newFakeVoteRepo() *fakeVoteRepo {
	return &fakeVoteRepo{votes: make(map[string]model.Vote)}
}

func (f *fakeVoteRepo) Create(_ context.Context, vote *model.Vote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, v := range f.votes {
		if v.PlaceID == vote.PlaceID && v.OwnerEmail == vote.OwnerEmail && v.QuestionType == vote.QuestionType {
			return apperror.Conflict("vote", "already voted on this question for this place")
		}
	}
	f.nextID++
	vote.ID = fmt.Sprintf("vote-%03d", f.nextID)
	vote.CreatedAt = time.Unix(int64(f.nextID), 0).UTC()
	f.votes[vote.ID] = *vote
	return nil
}

func (f *fakeVoteRepo) ListByOwner(_ context.Context, owner string) ([]model.Vote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Vote, 0)
	for _, v := range f.votes {
		if v.OwnerEmail == owner {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeVoteRepo) CountByPlace(_ context.Context, placeID string) (model.VoteCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var counts model.VoteCounts
	if f.err != nil {
		return counts, f.err
	}
	for _, v := range f.votes {
		if v.PlaceID == placeID {
			counts.Add(v.QuestionType, v.Value, 1)
		}
	}
	return counts, nil
}

func (f *fakeVoteRepo) UpdateValue(_ context.Context, id, owner string, value model.VoteValue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	v, ok := f.votes[id]
	if !ok || v.OwnerEmail != owner {
		return apperror.NotFound("vote", id)
	}
	v.Value = value
	f.votes[id] = v
	return nil
}

func (f *fakeVoteRepo) Delete(_ context.Context, id, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	v, ok := f.votes[id]
	if !ok || v.OwnerEmail != owner {
		return apperror.NotFound("vote", id)
	}
	delete(f.votes, id)
	return nil
}

type fakeCommentRepo struct {
	comments map[string]model.Comment
	names    map[string]string // email → display name, stands in for the profiles join
	nextID   int
	err      error
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{
		comments: make(map[string]model.Comment),
		names:    make(map[string]string),
	}
}

func (f *fakeCommentRepo) Create(_ context.Context, c *model.Comment) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	c.ID = fmt.Sprintf("comment-%03d", f.nextID)
	c.CreatedAt = time.Unix(int64(f.nextID), 0).UTC()
	f.comments[c.ID] = *c
	return nil
}

func (f *fakeCommentRepo) list(match func(model.Comment) bool) ([]model.Comment, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Comment, 0)
	for _, c := range f.comments {
		if !match(c) {
			continue
		}
		c.DisplayName = c.OwnerEmail
		if name, ok := f.names[c.OwnerEmail]; ok {
			c.DisplayName = name
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeCommentRepo) ListByPlace(_ context.Context, placeID string) ([]model.Comment, error) {
	return f.list(func(c model.Comment) bool { return c.PlaceID == placeID })
}

func (f *fakeCommentRepo) ListByOwner(_ context.Context, owner string) ([]model.Comment, error) {
	return f.list(func(c model.Comment) bool { return c.OwnerEmail == owner })
}

func (f *fakeCommentRepo) UpdateText(_ context.Context, id, owner, text string) error {
	if f.err != nil {
		return f.err
	}
	c, ok := f.comments[id]
	if !ok || c.OwnerEmail != owner {
		return apperror.NotFound("comment", id)
	}
	c.Text = text
	f.comments[id] = c
	return nil
}

func (f *fakeCommentRepo) Delete(_ context.Context, id, owner string) error {
	if f.err != nil {
		return f.err
	}
	c, ok := f.comments[id]
	if !ok || c.OwnerEmail != owner {
		return apperror.NotFound("comment", id)
	}
	delete(f.comments, id)
	return nil
}

type fakeProfileRepo struct {
	profiles map[string]model.Profile
	creates  int
	err      error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]model.Profile)}
}

func (f *fakeProfileRepo) GetOrCreate(_ context.Context, email, defaultName string) (*model.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[email]
	if !ok {
		now := time.Now().UTC()
		p = model.Profile{Email: email, DisplayName: defaultName, CreatedAt: now, UpdatedAt: now}
		f.profiles[email] = p
		f.creates++
	}
	return &p, nil
}

func (f *fakeProfileRepo) Upsert(_ context.Context, email, name string) (*model.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[email]
	now := time.Now().UTC()
	switch {
	case !ok:
		p = model.Profile{Email: email, DisplayName: name, CreatedAt: now, UpdatedAt: now}
	case p.DisplayName != name:
		p.DisplayName = name
		p.UpdatedAt = now
	}
	f.profiles[email] = p
	return &p, nil
}
