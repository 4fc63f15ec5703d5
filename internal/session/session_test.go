package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spigell/card-advisor/internal/catalog"
	"github.com/spigell/card-advisor/internal/profile"
)

type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	val, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	default:
		return redis.NewStatusResult("", errors.New("unexpected value type"))
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func stores() map[string]func() Store {
	return map[string]func() Store{
		"memory": func() Store { return NewMemory(nil) },
		"redis":  func() Store { return NewRedis(newFakeRedis(), time.Hour, nil) },
	}
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()

	for name, build := range stores() {
		t.Run(name, func(t *testing.T) {
			st := build()

			sess, err := st.Create(ctx, "+919800000000")
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if sess.ID == "" || sess.Status != StatusActive {
				t.Fatalf("unexpected session: %+v", sess)
			}

			turns := []profile.Turn{
				{Role: profile.RoleAssistant, Content: "What is your monthly income?"},
				{Role: profile.RoleUser, Content: "I earn 50k monthly"},
			}
			for _, turn := range turns {
				if err := st.AppendTurn(ctx, sess.ID, turn); err != nil {
					t.Fatalf("append turn: %v", err)
				}
			}

			got, err := st.Turns(ctx, sess.ID)
			if err != nil {
				t.Fatalf("turns: %v", err)
			}
			if len(got) != 2 || got[1].Content != "I earn 50k monthly" {
				t.Fatalf("unexpected turns: %+v", got)
			}

			p, err := st.Profile(ctx, sess.ID)
			if err != nil || p != nil {
				t.Fatalf("expected no profile yet, got %+v, %v", p, err)
			}

			saved := &profile.UserProfile{}
			saved.SetMonthlyIncome(50000)
			_ = saved.SpendingHabits.Set(catalog.Online, 6000)
			_ = saved.SpendingHabits.Set(catalog.Fuel, 3000)
			if err := st.SaveProfile(ctx, sess.ID, saved); err != nil {
				t.Fatalf("save profile: %v", err)
			}

			p, err = st.Profile(ctx, sess.ID)
			if err != nil {
				t.Fatalf("profile: %v", err)
			}
			if p.MonthlyIncome == nil || *p.MonthlyIncome != 50000 {
				t.Fatalf("unexpected income: %+v", p.MonthlyIncome)
			}
			if len(p.SpendingHabits) != 2 || p.SpendingHabits[0].Category != catalog.Online {
				t.Fatalf("spending order lost: %+v", p.SpendingHabits)
			}

			if err := st.Complete(ctx, sess.ID); err != nil {
				t.Fatalf("complete: %v", err)
			}
			if err := st.Complete(ctx, sess.ID); err != nil {
				t.Fatalf("second complete: %v", err)
			}

			err = st.AppendTurn(ctx, sess.ID, profile.Turn{Role: profile.RoleUser, Content: "more"})
			if !errors.Is(err, ErrCompleted) {
				t.Fatalf("expected ErrCompleted, got %v", err)
			}

			final, err := st.Get(ctx, sess.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if final.Status != StatusCompleted || len(final.Turns) != 2 {
				t.Fatalf("unexpected final session: %+v", final)
			}
		})
	}
}

func TestStoreErrors(t *testing.T) {
	ctx := context.Background()

	for name, build := range stores() {
		t.Run(name, func(t *testing.T) {
			st := build()

			if _, err := st.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := st.AppendTurn(ctx, "missing", profile.Turn{Role: profile.RoleUser}); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if _, err := st.Create(ctx, "  "); err == nil {
				t.Fatalf("expected error for empty user id")
			}

			sess, err := st.Create(ctx, "u1")
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if err := st.AppendTurn(ctx, sess.ID, profile.Turn{Role: "system"}); err == nil {
				t.Fatalf("expected error for unknown role")
			}
			if err := st.SaveProfile(ctx, sess.ID, nil); err == nil {
				t.Fatalf("expected error for nil profile")
			}
		})
	}
}

func TestMemoryIsolation(t *testing.T) {
	ctx := context.Background()
	st := NewMemory(nil)

	sess, err := st.Create(ctx, "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	p := &profile.UserProfile{}
	p.SetCreditScore(700)
	if err := st.SaveProfile(ctx, sess.ID, p); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	p.SetCreditScore(300)

	got, _ := st.Profile(ctx, sess.ID)
	if *got.CreditScore != 700 {
		t.Fatalf("stored profile changed through caller pointer: %d", *got.CreditScore)
	}

	got.SetCreditScore(100)
	again, _ := st.Profile(ctx, sess.ID)
	if *again.CreditScore != 700 {
		t.Fatalf("stored profile changed through returned pointer: %d", *again.CreditScore)
	}
}

func TestMemoryConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	st := NewMemory(nil)

	sess, err := st.Create(ctx, "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.AppendTurn(ctx, sess.ID, profile.Turn{Role: profile.RoleUser, Content: "hi"})
		}()
	}
	wg.Wait()

	turns, _ := st.Turns(ctx, sess.ID)
	if len(turns) != 20 {
		t.Fatalf("expected 20 turns, got %d", len(turns))
	}
}

func TestRedisLayout(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedis()
	st := NewRedis(client, 30*time.Minute, nil)

	sess, err := st.Create(ctx, "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	k := "card-advisor:session:" + sess.ID
	raw, ok := client.data[k]
	if !ok {
		t.Fatalf("expected key %s, got %v", k, client.data)
	}
	if client.ttls[k] != 30*time.Minute {
		t.Fatalf("unexpected ttl: %v", client.ttls[k])
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("stored value is not json: %v", err)
	}
	if doc["user_id"] != "u1" || doc["status"] != "active" {
		t.Fatalf("unexpected document: %v", doc)
	}
}

func TestRedisFailures(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedis()
	st := NewRedis(client, 0, nil)

	sess, err := st.Create(ctx, "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	client.err = errors.New("connection refused")
	err = st.AppendTurn(ctx, sess.ID, profile.Turn{Role: profile.RoleUser, Content: "hi"})
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected backend error, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("backend failure must not look like a missing session")
	}

	client.err = nil
	client.data["card-advisor:session:broken"] = "{not json"
	if _, err := st.Get(ctx, "broken"); err == nil || !strings.Contains(err.Error(), "decode session") {
		t.Fatalf("expected decode error, got %v", err)
	}
}
