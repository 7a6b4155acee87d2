package orchestrators

import (
	"context"
	"errors"
	"testing"

	"fitgympro/internal/domain/account"
	"fitgympro/internal/domain/cms"
	"fitgympro/internal/domain/magazine"
)

func seedCMSDeps(s *stores) SeedCMSDeps {
	return SeedCMSDeps{Catalog: s.catalog, Articles: s.articles, Activity: s.activity, Now: testNow}
}

// TestExecuteSeedCMS_FirstRun verifies an empty store gets every catalogue and the starter articles.
func TestExecuteSeedCMS_FirstRun(t *testing.T) {
	s := newStores(t)
	ctx := context.Background()

	res, err := ExecuteSeedCMS(ctx, seedCMSDeps(s))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.ExercisesSynced || !res.SupplementsSynced || !res.ArticlesSeeded {
		t.Errorf("result = %+v", res)
	}

	ex, _ := s.catalog.Exercises(ctx)
	if len(ex) != len(cms.DefaultExercises()) {
		t.Errorf("exercise groups = %d", len(ex))
	}
	articles, _ := s.articles.List(ctx)
	if len(articles) != len(magazine.SeedArticles(testTime)) {
		t.Errorf("articles = %d", len(articles))
	}

	msgs := s.activityMessages(t)
	want := []string{cms.ArticlesSeededMessage, cms.SupplementsSyncedMessage, cms.ExercisesSyncedMessage}
	if len(msgs) != len(want) {
		t.Fatalf("activity = %v", msgs)
	}
	for i := range want {
		if msgs[i] != want[i] {
			t.Errorf("activity[%d] = %q, want %q", i, msgs[i], want[i])
		}
	}
}

// TestExecuteSeedCMS_Idempotent verifies a second run changes nothing and logs nothing.
func TestExecuteSeedCMS_Idempotent(t *testing.T) {
	s := newStores(t)
	ctx := context.Background()
	if _, err := ExecuteSeedCMS(ctx, seedCMSDeps(s)); err != nil {
		t.Fatal(err)
	}
	before := len(s.activityMessages(t))

	res, err := ExecuteSeedCMS(ctx, seedCMSDeps(s))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExercisesSynced || res.SupplementsSynced || res.ArticlesSeeded {
		t.Errorf("second run changed something: %+v", res)
	}
	if after := len(s.activityMessages(t)); after != before {
		t.Errorf("activity grew from %d to %d", before, after)
	}
}

// TestExecuteSeedCMS_KeepsAdminAdditions verifies the sync never drops admin entries.
func TestExecuteSeedCMS_KeepsAdminAdditions(t *testing.T) {
	s := newStores(t)
	ctx := context.Background()
	if err := ExecuteAddExercise(ctx, "Mobility", "World's Greatest Stretch", s.catalog); err != nil {
		t.Fatal(err)
	}

	if _, err := ExecuteSeedCMS(ctx, seedCMSDeps(s)); err != nil {
		t.Fatal(err)
	}
	ex, _ := s.catalog.Exercises(ctx)
	if len(ex["Mobility"]) != 1 {
		t.Errorf("admin group lost: %v", ex["Mobility"])
	}
}

// TestExecuteSeedAdmin verifies the first admin is created once.
func TestExecuteSeedAdmin(t *testing.T) {
	s := newStores(t)
	ctx := context.Background()
	deps := SeedAdminDeps{AccountStore: s.accounts, Now: testNow}
	input := SeedAdminInput{Username: "admin", Email: "admin@example.com", Password: "changeme"}

	created, err := ExecuteSeedAdmin(ctx, input, deps)
	if err != nil || !created {
		t.Fatalf("first run = %v, %v", created, err)
	}
	u, err := s.accounts.GetByUsername(ctx, "admin")
	if err != nil || !u.IsAdmin() || u.CheckPassword("changeme") != nil {
		t.Errorf("admin = %+v, %v", u, err)
	}

	created, err = ExecuteSeedAdmin(ctx, SeedAdminInput{Username: "root", Email: "root@example.com", Password: "other1"}, deps)
	if err != nil || created {
		t.Errorf("second run = %v, %v", created, err)
	}
	if n, _ := s.accounts.Count(ctx); n != 1 {
		t.Errorf("accounts = %d, want 1", n)
	}
}

// TestExecuteSeedAdmin_Errors covers a missing password and a taken username.
func TestExecuteSeedAdmin_Errors(t *testing.T) {
	s := newStores(t)
	ctx := context.Background()
	deps := SeedAdminDeps{AccountStore: s.accounts, Now: testNow}

	if _, err := ExecuteSeedAdmin(ctx, SeedAdminInput{Username: "admin", Email: "admin@example.com"}, deps); !errors.Is(err, ErrSeedPasswordRequired) {
		t.Errorf("no password: err = %v", err)
	}

	s.addUser(t, account.User{Username: "admin", Role: account.RoleUser})
	if _, err := ExecuteSeedAdmin(ctx, SeedAdminInput{Username: "admin", Email: "boss@example.com", Password: "changeme"}, deps); !errors.Is(err, ErrAccountExists) {
		t.Errorf("taken username: err = %v", err)
	}
}
