package userdata_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"fitgympro/internal/domain/storeplan"
	"fitgympro/internal/domain/userdata"
)

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

// TestForSignup verifies the initial profile is seeded from the account.
func TestForSignup(t *testing.T) {
	d := userdata.ForSignup("alice", "alice@example.com", now)
	if d.Step1 == nil || d.Step1.ClientName != "alice" || d.Step1.ClientEmail != "alice@example.com" {
		t.Errorf("Step1 = %+v", d.Step1)
	}
	if !d.JoinDate.Equal(now) {
		t.Errorf("JoinDate = %v", d.JoinDate)
	}
	if d.CoachName() != "" {
		t.Errorf("CoachName = %q, want empty", d.CoachName())
	}
}

// TestSubscribe_AndDeliver tests the purchase-to-program lifecycle.
func TestSubscribe_AndDeliver(t *testing.T) {
	var d userdata.Data
	if d.NeedsProgram() {
		t.Fatal("empty data needs program")
	}
	d.Subscribe([]storeplan.Plan{
		{ID: "gold", Name: "Gold", Price: 100, Access: []string{storeplan.AccessWorkout, storeplan.AccessChat}},
	}, now)

	if len(d.Subscriptions) != 1 || d.Subscriptions[0].Fulfilled {
		t.Fatalf("Subscriptions = %+v", d.Subscriptions)
	}
	if !d.NeedsProgram() {
		t.Error("NeedsProgram = false after purchase")
	}
	if !d.HasAccess(storeplan.AccessChat) || d.HasAccess(storeplan.AccessNutrition) {
		t.Error("HasAccess wrong")
	}

	if err := d.DeliverProgram(userdata.Program{Date: now, Name: "Week 1"}); err != nil {
		t.Fatalf("DeliverProgram: %v", err)
	}
	if d.NeedsProgram() {
		t.Error("NeedsProgram = true after delivery")
	}
	if len(d.ProgramHistory) != 1 || d.ProgramHistory[0].Name != "Week 1" {
		t.Errorf("ProgramHistory = %+v", d.ProgramHistory)
	}
	if err := d.DeliverProgram(userdata.Program{Name: "Week 2"}); !errors.Is(err, userdata.ErrNothingToFulfill) {
		t.Errorf("second DeliverProgram = %v, want ErrNothingToFulfill", err)
	}
}

// TestLatestSubscription verifies the newest purchase wins.
func TestLatestSubscription(t *testing.T) {
	d := userdata.Data{Subscriptions: []userdata.Subscription{
		{PlanID: "new", PurchaseDate: now.Add(time.Hour)},
		{PlanID: "old", PurchaseDate: now},
	}}
	latest, ok := d.LatestSubscription()
	if !ok || latest.PlanID != "new" {
		t.Errorf("LatestSubscription = %+v, %v", latest, ok)
	}
}

// TestAppendChat tests chat validation.
func TestAppendChat(t *testing.T) {
	var d userdata.Data
	if err := d.AppendChat(userdata.SenderUser, "  hi coach  ", now); err != nil {
		t.Fatalf("AppendChat: %v", err)
	}
	if d.ChatHistory[0].Message != "hi coach" {
		t.Errorf("message = %q, want trimmed", d.ChatHistory[0].Message)
	}
	if err := d.AppendChat(userdata.SenderCoach, "   ", now); !errors.Is(err, userdata.ErrEmptyMessage) {
		t.Errorf("blank message = %v", err)
	}
	if err := d.AppendChat("admin", "x", now); !errors.Is(err, userdata.ErrInvalidSender) {
		t.Errorf("bad sender = %v", err)
	}
	long := strings.Repeat("a", userdata.MaxMessageLength+1)
	if err := d.AppendChat(userdata.SenderUser, long, now); !errors.Is(err, userdata.ErrMessageTooLong) {
		t.Errorf("long message = %v", err)
	}
}

// TestMarkChatRead verifies only the other side's messages are marked.
func TestMarkChatRead(t *testing.T) {
	var d userdata.Data
	d.AppendChat(userdata.SenderUser, "q1", now)
	d.AppendChat(userdata.SenderCoach, "a1", now)
	d.AppendChat(userdata.SenderCoach, "a2", now)

	if n := d.MarkChatRead(userdata.SenderUser); n != 2 {
		t.Errorf("MarkChatRead = %d, want 2", n)
	}
	if d.ChatHistory[0].Read {
		t.Error("own message marked read")
	}
	if n := d.MarkChatRead(userdata.SenderUser); n != 0 {
		t.Errorf("second MarkChatRead = %d, want 0", n)
	}
}

// TestProfile_Validate tests intake profile bounds.
func TestProfile_Validate(t *testing.T) {
	ok := userdata.Profile{Age: 30, Height: 180, Weight: 80, TrainingDays: 4}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	bad := userdata.Profile{TrainingDays: 8}
	if err := bad.Validate(); !errors.Is(err, userdata.ErrInvalidMeasurement) {
		t.Errorf("Validate() = %v, want ErrInvalidMeasurement", err)
	}
}

// TestUpdateProfile stamps the update time.
func TestUpdateProfile(t *testing.T) {
	var d userdata.Data
	d.UpdateProfile(userdata.Profile{ClientName: "alice", CoachName: "coachy"}, now)
	if d.CoachName() != "coachy" {
		t.Errorf("CoachName = %q", d.CoachName())
	}
	if d.LastProfileUpdate == nil || !d.LastProfileUpdate.Equal(now) {
		t.Errorf("LastProfileUpdate = %v", d.LastProfileUpdate)
	}
}
