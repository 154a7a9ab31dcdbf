package scd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sportsbot/internal/models"
)

func TestNewStoreNormalizesRetryPolicy(t *testing.T) {
	s := NewStore[models.GameState](nil, nil, "game_state", RetryPolicy{
		MaxRetries: -1,
		Backoff:    0,
		MaxBackoff: 0,
	})
	if s.retry.MaxRetries != 0 {
		t.Errorf("negative MaxRetries should clamp to 0, got %d", s.retry.MaxRetries)
	}
	if s.retry.Backoff != DefaultRetryPolicy().Backoff {
		t.Errorf("zero Backoff should pick up the default, got %v", s.retry.Backoff)
	}
	if s.retry.MaxBackoff < s.retry.Backoff {
		t.Errorf("MaxBackoff %v below Backoff %v", s.retry.MaxBackoff, s.retry.Backoff)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm duplicated key", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"pg 23505", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped pg 23505", fmt.Errorf("tx: %w", &pgconn.PgError{Code: "23505"}), true},
		{"pg other code", &pgconn.PgError{Code: "40001"}, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := IsUniqueViolation(tc.err); got != tc.want {
			t.Errorf("%s: IsUniqueViolation = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSleepHonorsCancel(t *testing.T) {
	s := NewStore[models.GameState](nil, nil, "game_state", RetryPolicy{
		MaxRetries: 3,
		Backoff:    time.Hour,
		MaxBackoff: time.Hour,
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.sleep(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// testDB opens the database named by SB_TEST_DSN, or skips. The versioned
// tables and their partial unique indexes are created fresh for each run.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("SB_TEST_DSN")
	if dsn == "" {
		t.Skip("SB_TEST_DSN not set")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.Migrator().DropTable(&models.GameState{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}
	if err := gdb.AutoMigrate(&models.GameState{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	err = gdb.Exec("CREATE UNIQUE INDEX IF NOT EXISTS uq_game_states_current ON game_states (business_key) WHERE is_current").Error
	if err != nil {
		t.Fatalf("create partial index: %v", err)
	}
	return gdb
}

func testGame(score int) *models.GameState {
	return &models.GameState{
		Sport:        "football",
		League:       "nfl",
		HomeTeam:     "Kansas City Chiefs",
		AwayTeam:     "Detroit Lions",
		StartTime:    time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC),
		HomeScore:    score,
		AwayScore:    10,
		Period:       2,
		ClockSeconds: 600,
		Status:       "in_progress",
		LastSeenAt:   time.Now().UTC(),
	}
}

func TestCreateAndDuplicate(t *testing.T) {
	gdb := testDB(t)
	store := NewStore[models.GameState](gdb, nil, "game_state", DefaultRetryPolicy())
	ctx := context.Background()

	id, err := store.Create(ctx, "game-1", testGame(7))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if id == 0 {
		t.Fatal("create returned zero surrogate id")
	}

	_, err = store.Create(ctx, "game-1", testGame(7))
	var dup *DuplicateBusinessKeyError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateBusinessKeyError, got %v", err)
	}
	if dup.BusinessKey != "game-1" {
		t.Errorf("error names key %q, want game-1", dup.BusinessKey)
	}
}

func TestUpsertVersioning(t *testing.T) {
	gdb := testDB(t)
	store := NewStore[models.GameState](gdb, nil, "game_state", DefaultRetryPolicy())
	ctx := context.Background()

	id1, created, err := store.Upsert(ctx, "game-1", testGame(7))
	if err != nil || !created {
		t.Fatalf("first upsert: id=%d created=%v err=%v", id1, created, err)
	}

	// Identical payload is a no-op returning the existing surrogate id.
	id2, created, err := store.Upsert(ctx, "game-1", testGame(7))
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if created || id2 != id1 {
		t.Fatalf("unchanged payload should no-op on id %d, got id=%d created=%v", id1, id2, created)
	}

	// Changed payload closes the current row and inserts a successor.
	id3, created, err := store.Upsert(ctx, "game-1", testGame(14))
	if err != nil || !created {
		t.Fatalf("third upsert: id=%d created=%v err=%v", id3, created, err)
	}
	if id3 == id1 {
		t.Fatal("new version must get a fresh surrogate id")
	}

	count, err := store.CountCurrent(ctx, "game-1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("exactly one current version expected, got %d", count)
	}

	cur, err := store.GetCurrent(ctx, "game-1")
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if cur.ID != id3 || cur.HomeScore != 14 {
		t.Errorf("current is id=%d score=%d, want id=%d score=14", cur.ID, cur.HomeScore, id3)
	}

	history, err := store.GetHistory(ctx, "game-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(history))
	}
	first, second := history[0], history[1]
	if first.IsCurrent || first.ValidTo == nil {
		t.Error("superseded version must be closed with a valid_to")
	}
	if !second.IsCurrent || second.ValidTo != nil {
		t.Error("latest version must be current with open valid_to")
	}
	if first.ValidTo != nil && !first.ValidTo.Equal(second.ValidFrom) {
		t.Errorf("windows must abut: valid_to %v vs valid_from %v", first.ValidTo, second.ValidFrom)
	}
}

func TestGetCurrentUnknownKey(t *testing.T) {
	gdb := testDB(t)
	store := NewStore[models.GameState](gdb, nil, "game_state", DefaultRetryPolicy())

	_, err := store.GetCurrent(context.Background(), "no-such-game")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.BusinessKey != "no-such-game" {
		t.Errorf("error names key %q, want no-such-game", nf.BusinessKey)
	}
}

func TestConcurrentUpsertKeepsOneCurrent(t *testing.T) {
	gdb := testDB(t)
	store := NewStore[models.GameState](gdb, nil, "game_state", DefaultRetryPolicy())
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _, errs[n] = store.Upsert(ctx, "game-1", testGame(n))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		var conflict *ConcurrencyConflictError
		if err != nil && !errors.As(err, &conflict) {
			t.Fatalf("writer %d: unexpected error %v", i, err)
		}
	}

	count, err := store.CountCurrent(ctx, "game-1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("exactly one current version expected after concurrent upserts, got %d", count)
	}
}

func TestHistoryIsRestartable(t *testing.T) {
	gdb := testDB(t)
	store := NewStore[models.GameState](gdb, nil, "game_state", DefaultRetryPolicy())
	ctx := context.Background()

	for score := 0; score < 5; score++ {
		if _, _, err := store.Upsert(ctx, "game-1", testGame(score)); err != nil {
			t.Fatalf("upsert %d: %v", score, err)
		}
	}

	seq := store.History(ctx, "game-1")
	for pass := 0; pass < 2; pass++ {
		var scores []int
		for rec, err := range seq {
			if err != nil {
				t.Fatalf("pass %d: %v", pass, err)
			}
			scores = append(scores, rec.HomeScore)
		}
		if len(scores) != 5 {
			t.Fatalf("pass %d: expected 5 versions, got %d", pass, len(scores))
		}
		for i := 1; i < len(scores); i++ {
			if scores[i] < scores[i-1] {
				t.Fatalf("pass %d: history out of order: %v", pass, scores)
			}
		}
	}

	// Early break must not poison a later full iteration.
	for range store.History(ctx, "game-1") {
		break
	}
	n := 0
	for _, err := range store.History(ctx, "game-1") {
		if err != nil {
			t.Fatal(err)
		}
		n++
	}
	if n != 5 {
		t.Fatalf("expected 5 versions after restart, got %d", n)
	}
}
