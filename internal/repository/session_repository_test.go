package repository

import (
	"testing"
	"time"

	"research-assistant/internal/domain"
	"research-assistant/pkg/logger"

	"go.uber.org/zap"
)

func newTestRepo(ttl time.Duration) *SessionRepository {
	return NewSessionRepository(ttl, logger.NewFromZap(zap.NewNop()))
}

func TestSessionRepository_SaveGet(t *testing.T) {
	repo := newTestRepo(time.Hour)
	s := domain.NewSession("abc")

	repo.Save(s)
	got, ok := repo.Get("abc")
	if !ok {
		t.Fatal("expected session to be found")
	}
	if got != s {
		t.Fatal("expected the same session pointer back")
	}
	if repo.Count() != 1 {
		t.Fatalf("expected 1 session, got %d", repo.Count())
	}
}

func TestSessionRepository_Missing(t *testing.T) {
	repo := newTestRepo(time.Hour)
	if _, ok := repo.Get("nope"); ok {
		t.Fatal("expected no session")
	}
}

func TestSessionRepository_Expiry(t *testing.T) {
	repo := newTestRepo(20 * time.Millisecond)
	repo.Save(domain.NewSession("short"))

	time.Sleep(40 * time.Millisecond)
	if _, ok := repo.Get("short"); ok {
		t.Fatal("expected session to have expired")
	}
}
