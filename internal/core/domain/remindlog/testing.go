package remindlog

import (
	"context"
	"sort"
	"sync"
)

type FakeRepository struct {
	CreateError error
	ReadError   error
	entries     []Entry
	lastID      ID
	lock        sync.Mutex
}

func NewFakeRepository(entries ...Entry) *FakeRepository {
	r := &FakeRepository{}
	for _, entry := range entries {
		if entry.ID > r.lastID {
			r.lastID = entry.ID
		}
		r.entries = append(r.entries, entry)
	}
	return r
}

func (r *FakeRepository) Create(ctx context.Context, input CreateInput) (Entry, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.CreateError != nil {
		return Entry{}, r.CreateError
	}
	r.lastID++
	entry := Entry{
		ID:        r.lastID,
		UserID:    input.UserID,
		UserName:  input.UserName,
		Text:      input.Text,
		Title:     input.Title,
		StartAt:   input.StartAt,
		CreatedAt: input.CreatedAt,
	}
	r.entries = append(r.entries, entry)
	return entry, nil
}

func (r *FakeRepository) ReadLatest(ctx context.Context, limit uint) ([]Entry, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.ReadError != nil {
		return nil, r.ReadError
	}
	result := make([]Entry, len(r.entries))
	copy(result, r.entries)
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if uint(len(result)) > limit {
		result = result[:limit]
	}
	return result, nil
}
