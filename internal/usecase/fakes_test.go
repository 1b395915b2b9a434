package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/eslsoft/vidlingo/internal/entity"
	"github.com/eslsoft/vidlingo/internal/repository"
)

type vocKey struct {
	userID, wordID, videoID int64
}

type videoKey struct {
	userID, videoID int64
}

// fakeStore backs every repository interface with in-memory maps. InTx
// snapshots the whole state up front and restores it when the callback fails,
// mirroring transactional rollback.
type fakeStore struct {
	mu          sync.Mutex
	seq         int64
	progress    map[int64]*entity.UserProgress
	vocab       map[vocKey]*entity.UserVocabulary
	completions []*entity.ExerciseCompletion
	videos      map[videoKey]*entity.VideoProgress

	segments  map[int64]*entity.VideoSegment
	exercises map[int64]*entity.VideoExercise
	words     map[int64]*entity.VideoWord

	// failInsertAfter aborts the Nth completion insert when positive.
	failInsertAfter int
	insertCount     int
}

var errInjected = errors.New("injected store failure")

func newFakeStore() *fakeStore {
	return &fakeStore{
		progress:  make(map[int64]*entity.UserProgress),
		vocab:     make(map[vocKey]*entity.UserVocabulary),
		videos:    make(map[videoKey]*entity.VideoProgress),
		segments:  make(map[int64]*entity.VideoSegment),
		exercises: make(map[int64]*entity.VideoExercise),
		words:     make(map[int64]*entity.VideoWord),
	}
}

func (s *fakeStore) nextID() int64 {
	s.seq++
	return s.seq
}

// --- TxRunner ---

func (s *fakeStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.restoreLocked(snapshot)
		s.mu.Unlock()
		return err
	}
	return nil
}

type storeSnapshot struct {
	seq         int64
	progress    map[int64]*entity.UserProgress
	vocab       map[vocKey]*entity.UserVocabulary
	completions []*entity.ExerciseCompletion
	videos      map[videoKey]*entity.VideoProgress
}

func (s *fakeStore) snapshotLocked() storeSnapshot {
	snap := storeSnapshot{
		seq:      s.seq,
		progress: make(map[int64]*entity.UserProgress, len(s.progress)),
		vocab:    make(map[vocKey]*entity.UserVocabulary, len(s.vocab)),
		videos:   make(map[videoKey]*entity.VideoProgress, len(s.videos)),
	}
	for k, v := range s.progress {
		clone := *v
		snap.progress[k] = &clone
	}
	for k, v := range s.vocab {
		snap.vocab[k] = cloneVocabulary(v)
	}
	for _, c := range s.completions {
		clone := *c
		snap.completions = append(snap.completions, &clone)
	}
	for k, v := range s.videos {
		clone := *v
		snap.videos[k] = &clone
	}
	return snap
}

func (s *fakeStore) restoreLocked(snap storeSnapshot) {
	s.seq = snap.seq
	s.progress = snap.progress
	s.vocab = snap.vocab
	s.completions = snap.completions
	s.videos = snap.videos
}

// --- UserProgressRepository ---

func (s *fakeStore) Get(ctx context.Context, userID int64) (*entity.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.progress[userID]
	if !ok {
		return nil, entity.ErrUserProgressNotFound
	}
	clone := *row
	return &clone, nil
}

func (s *fakeStore) AddXP(ctx context.Context, userID int64, delta int64) (*entity.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	row, ok := s.progress[userID]
	if !ok {
		row = &entity.UserProgress{UserID: userID, CreatedAt: now}
		s.progress[userID] = row
	}
	row.TotalXP += delta
	if row.TotalXP < 0 {
		row.TotalXP = 0
	}
	row.Level = entity.LevelForXP(row.TotalXP)
	row.LastActivity = now
	row.UpdatedAt = now
	clone := *row
	return &clone, nil
}

// --- VocabularyRepository ---

func (s *fakeStore) GetVocabulary(ctx context.Context, userID, wordID, videoID int64) (*entity.UserVocabulary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.vocab[vocKey{userID, wordID, videoID}]
	if !ok {
		return nil, entity.ErrVocabularyNotFound
	}
	return cloneVocabulary(row), nil
}

func (s *fakeStore) Upsert(ctx context.Context, voc *entity.UserVocabulary) (*entity.UserVocabulary, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := vocKey{voc.UserID, voc.WordID, voc.VideoID}
	existing, ok := s.vocab[key]
	if ok {
		existing.Mastery = voc.Mastery
		existing.NextReview = cloneTime(voc.NextReview)
		existing.LastReviewed = voc.LastReviewed
		existing.UpdatedAt = voc.LastReviewed
		return cloneVocabulary(existing), false, nil
	}
	created := cloneVocabulary(voc)
	created.ID = s.nextID()
	created.CreatedAt = voc.LastReviewed
	created.UpdatedAt = voc.LastReviewed
	s.vocab[key] = created
	return cloneVocabulary(created), true, nil
}

func (s *fakeStore) ListDue(ctx context.Context, userID int64, now time.Time) ([]*entity.UserVocabulary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []*entity.UserVocabulary
	for _, row := range s.vocab {
		if row.UserID != userID || !row.Due(now) {
			continue
		}
		due = append(due, cloneVocabulary(row))
	}
	sort.Slice(due, func(i, j int) bool {
		a, b := due[i].NextReview, due[j].NextReview
		switch {
		case a == nil && b == nil:
			return due[i].ID < due[j].ID
		case a == nil:
			return true
		case b == nil:
			return false
		default:
			return a.Before(*b)
		}
	})
	return due, nil
}

func (s *fakeStore) List(ctx context.Context, query *repository.ListVocabularyQuery) ([]*entity.UserVocabulary, int64, error) {
	rows, err := s.ListByVideo(ctx, query.UserID, 0)
	return rows, int64(len(rows)), err
}

func (s *fakeStore) ListByVideo(ctx context.Context, userID, videoID int64) ([]*entity.UserVocabulary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []*entity.UserVocabulary
	for _, row := range s.vocab {
		if row.UserID != userID {
			continue
		}
		if videoID != 0 && row.VideoID != videoID {
			continue
		}
		rows = append(rows, cloneVocabulary(row))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

func (s *fakeStore) CountMastered(ctx context.Context, userID, videoID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, row := range s.vocab {
		if row.UserID == userID && row.VideoID == videoID && row.Mastery.Mastered() {
			count++
		}
	}
	return count, nil
}

// --- CompletionRepository ---

func (s *fakeStore) Insert(ctx context.Context, completion *entity.ExerciseCompletion) (*entity.ExerciseCompletion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertCount++
	if s.failInsertAfter > 0 && s.insertCount >= s.failInsertAfter {
		return nil, errInjected
	}
	clone := *completion
	clone.ID = s.nextID()
	s.completions = append(s.completions, &clone)
	result := clone
	return &result, nil
}

func (s *fakeStore) CountByVideo(ctx context.Context, userID, videoID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, row := range s.completions {
		if row.UserID == userID && row.VideoID == videoID {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) StatsByVideo(ctx context.Context, userID, videoID int64) (*repository.CompletionStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &repository.CompletionStats{}
	for _, row := range s.completions {
		if row.UserID != userID || row.VideoID != videoID {
			continue
		}
		stats.Total++
		if row.IsCorrect {
			stats.Correct++
		}
		stats.ScoreSum += row.Score
		if stats.LastAttempt == nil || row.CompletedAt.After(*stats.LastAttempt) {
			at := row.CompletedAt
			stats.LastAttempt = &at
		}
	}
	return stats, nil
}

// --- VideoProgressRepository ---

func (s *fakeStore) GetVideoProgress(ctx context.Context, userID, videoID int64) (*entity.VideoProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.videos[videoKey{userID, videoID}]
	if !ok {
		return nil, entity.ErrVideoProgressNotFound
	}
	clone := *row
	return &clone, nil
}

func (s *fakeStore) UpsertWatch(ctx context.Context, userID, videoID int64, watchedSeconds int32, lastSegmentID *int64, now time.Time) (*entity.VideoProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := videoKey{userID, videoID}
	row, ok := s.videos[key]
	if !ok {
		row = &entity.VideoProgress{ID: s.nextID(), UserID: userID, VideoID: videoID, CreatedAt: now}
		s.videos[key] = row
	}
	row.WatchedSeconds = watchedSeconds
	row.LastSegmentWatched = cloneInt64(lastSegmentID)
	row.LastWatched = now
	row.UpdatedAt = now
	clone := *row
	return &clone, nil
}

func (s *fakeStore) MarkCompleted(ctx context.Context, userID, videoID int64, now time.Time) (*entity.VideoProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := videoKey{userID, videoID}
	row, ok := s.videos[key]
	if !ok {
		row = &entity.VideoProgress{ID: s.nextID(), UserID: userID, VideoID: videoID, CreatedAt: now}
		s.videos[key] = row
	}
	row.IsCompleted = true
	row.LastWatched = now
	row.UpdatedAt = now
	clone := *row
	return &clone, nil
}

func (s *fakeStore) SetRollup(ctx context.Context, userID, videoID int64, completedExercises, masteredWords int32, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.videos[videoKey{userID, videoID}]
	if !ok {
		return nil
	}
	row.CompletedExercises = completedExercises
	row.MasteredWords = masteredWords
	row.UpdatedAt = now
	return nil
}

// --- CatalogRepository ---

func (s *fakeStore) ExerciseVideo(ctx context.Context, exerciseID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exercise, ok := s.exercises[exerciseID]
	if !ok {
		return 0, entity.ErrExerciseNotFound
	}
	return exercise.VideoID, nil
}

func (s *fakeStore) GetSegment(ctx context.Context, segmentID int64) (*entity.VideoSegment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	segment, ok := s.segments[segmentID]
	if !ok {
		return nil, entity.ErrSegmentNotFound
	}
	clone := *segment
	return &clone, nil
}

func (s *fakeStore) SegmentExercises(ctx context.Context, segmentID int64) ([]*entity.VideoExercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []*entity.VideoExercise
	for _, exercise := range s.exercises {
		if exercise.SegmentID == segmentID {
			clone := *exercise
			rows = append(rows, &clone)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

func (s *fakeStore) SegmentWords(ctx context.Context, segmentID int64) ([]*entity.VideoWord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []*entity.VideoWord
	for _, word := range s.words {
		if word.SegmentID == segmentID {
			clone := *word
			rows = append(rows, &clone)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

func (s *fakeStore) CountSegments(ctx context.Context, videoID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, segment := range s.segments {
		if segment.VideoID == videoID {
			count++
		}
	}
	return count, nil
}

// Interface views: the repository contracts disagree on the Get signature, so
// the vocabulary and video views rename the store's methods.

type fakeVocabularyRepo struct{ *fakeStore }

func (r fakeVocabularyRepo) Get(ctx context.Context, userID, wordID, videoID int64) (*entity.UserVocabulary, error) {
	return r.GetVocabulary(ctx, userID, wordID, videoID)
}

type fakeVideoProgressRepo struct{ *fakeStore }

func (r fakeVideoProgressRepo) Get(ctx context.Context, userID, videoID int64) (*entity.VideoProgress, error) {
	return r.GetVideoProgress(ctx, userID, videoID)
}

func newTestEngine(store *fakeStore, now time.Time) *progressEngine {
	engine := NewProgressEngine(
		store,
		store,
		fakeVocabularyRepo{store},
		store,
		fakeVideoProgressRepo{store},
		store,
	).(*progressEngine)
	engine.clock = func() time.Time { return now }
	return engine
}

// --- seeding helpers ---

func (s *fakeStore) seedSegment(segmentID, videoID int64, exercises, words int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segments[segmentID] = &entity.VideoSegment{ID: segmentID, VideoID: videoID}
	for i := 0; i < exercises; i++ {
		id := s.nextID()
		s.exercises[id] = &entity.VideoExercise{ID: id, VideoID: videoID, SegmentID: segmentID}
	}
	for i := 0; i < words; i++ {
		id := s.nextID()
		s.words[id] = &entity.VideoWord{ID: id, VideoID: videoID, SegmentID: segmentID, WordID: id}
	}
}

func (s *fakeStore) seedExercise(exerciseID, videoID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exercises[exerciseID] = &entity.VideoExercise{ID: exerciseID, VideoID: videoID}
}

func cloneVocabulary(v *entity.UserVocabulary) *entity.UserVocabulary {
	clone := *v
	clone.NextReview = cloneTime(v.NextReview)
	return &clone
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	clone := *v
	return &clone
}
