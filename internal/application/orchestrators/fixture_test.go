package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	emailAdapter "fitgympro/internal/adapters/email"
	accountStore "fitgympro/internal/adapters/storage/account"
	"fitgympro/internal/adapters/storage/activitylog"
	cartStore "fitgympro/internal/adapters/storage/cart"
	cmsStore "fitgympro/internal/adapters/storage/cms"
	discountStore "fitgympro/internal/adapters/storage/discount"
	"fitgympro/internal/adapters/storage/kv"
	magazineStore "fitgympro/internal/adapters/storage/magazine"
	notificationStore "fitgympro/internal/adapters/storage/notification"
	"fitgympro/internal/adapters/storage/session"
	settingsStore "fitgympro/internal/adapters/storage/settings"
	planStore "fitgympro/internal/adapters/storage/storeplan"
	templateStore "fitgympro/internal/adapters/storage/template"
	userdataStore "fitgympro/internal/adapters/storage/userdata"
	"fitgympro/internal/domain/account"
	"fitgympro/internal/domain/userdata"
)

func init() {
	account.PasswordCost = bcrypt.MinCost
}

var testTime = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func testNow() time.Time { return testTime }

func testID() string { return "test-id-001" }

// stores wires every accessor to one in-memory backend.
type stores struct {
	kv            *kv.Store
	accounts      *accountStore.KVStore
	userData      *userdataStore.KVStore
	carts         *cartStore.KVStore
	discounts     *discountStore.KVStore
	plans         *planStore.KVStore
	notifications *notificationStore.KVStore
	catalog       *cmsStore.KVStore
	articles      *magazineStore.KVStore
	settings      *settingsStore.KVStore
	activity      *activitylog.KVStore
	templates     *templateStore.KVStore
	sessions      *session.KVStore
	mail          *emailAdapter.NoopSender
}

func newStores(t *testing.T) *stores {
	t.Helper()
	s := kv.NewMemoryStore()
	t.Cleanup(func() { s.Close() })
	return &stores{
		kv:            s,
		accounts:      accountStore.NewKVStore(s),
		userData:      userdataStore.NewKVStore(s),
		carts:         cartStore.NewKVStore(s),
		discounts:     discountStore.NewKVStore(s),
		plans:         planStore.NewKVStore(s),
		notifications: notificationStore.NewKVStore(s),
		catalog:       cmsStore.NewKVStore(s),
		articles:      magazineStore.NewKVStore(s),
		settings:      settingsStore.NewKVStore(s),
		activity:      activitylog.NewKVStore(s),
		templates:     templateStore.NewKVStore(s),
		sessions:      session.NewKVStore(s),
		mail:          emailAdapter.NewNoopSender(),
	}
}

// addUser stores an account with password "secret1".
func (s *stores) addUser(t *testing.T, u account.User) account.User {
	t.Helper()
	if u.Status == "" {
		u.Status = account.StatusActive
	}
	if u.Email == "" {
		u.Email = u.Username + "@example.com"
	}
	if err := u.SetPassword("secret1"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if err := s.accounts.Save(context.Background(), u); err != nil {
		t.Fatalf("save account: %v", err)
	}
	return u
}

// pickCoach sets the coach in a user's profile.
func (s *stores) pickCoach(t *testing.T, username, coach string) {
	t.Helper()
	err := s.userData.Update(context.Background(), username, func(d *userdata.Data) error {
		if d.Step1 == nil {
			d.Step1 = &userdata.Profile{ClientName: username}
		}
		d.Step1.CoachName = coach
		return nil
	})
	if err != nil {
		t.Fatalf("pick coach: %v", err)
	}
}

func (s *stores) activityMessages(t *testing.T) []string {
	t.Helper()
	entries, err := s.activity.List(context.Background())
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}

// failingSender fails every send.
type failingSender struct{ calls int }

func (f *failingSender) Send(context.Context, emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	f.calls++
	return emailAdapter.SendResult{}, errors.New("provider down")
}
