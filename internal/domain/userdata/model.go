package userdata

import (
	"errors"
	"strings"
	"time"

	"fitgympro/internal/domain/storeplan"
	"fitgympro/internal/domain/template"
)

// Chat senders
const (
	SenderUser  = "user"
	SenderCoach = "coach"
)

// MaxMessageLength caps a single chat message.
const MaxMessageLength = 2000

// Domain errors
var (
	ErrEmptyMessage       = errors.New("message cannot be empty")
	ErrMessageTooLong     = errors.New("message cannot exceed 2000 characters")
	ErrInvalidSender      = errors.New("sender must be user or coach")
	ErrNothingToFulfill   = errors.New("no unfulfilled subscription")
	ErrInvalidMeasurement = errors.New("measurements must be positive")
)

// Profile is the intake form a user fills in (the first wizard step).
type Profile struct {
	ClientName   string  `json:"clientName"`
	ClientEmail  string  `json:"clientEmail,omitempty"`
	CoachName    string  `json:"coachName,omitempty"`
	Age          int     `json:"age,omitempty"`
	Height       float64 `json:"height,omitempty"`
	Weight       float64 `json:"weight,omitempty"`
	Gender       string  `json:"gender,omitempty"`
	TrainingGoal string  `json:"trainingGoal,omitempty"`
	TrainingDays int     `json:"trainingDays,omitempty"`
	Mobile       string  `json:"mobile,omitempty"`
	Limitations  string  `json:"limitations,omitempty"`
}

// CoachProfile is the public card of a coach.
type CoachProfile struct {
	Avatar         string `json:"avatar,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	Bio            string `json:"bio,omitempty"`
}

// Subscription is a purchased plan.
type Subscription struct {
	PlanID       string    `json:"planId"`
	PlanName     string    `json:"planName"`
	Price        int64     `json:"price"`
	PurchaseDate time.Time `json:"purchaseDate"`
	Fulfilled    bool      `json:"fulfilled"`
	Access       []string  `json:"access"`
}

// ChatMessage is one line of the user/coach conversation.
type ChatMessage struct {
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read,omitempty"`
}

// Program is a workout program a coach delivered.
type Program struct {
	Date      time.Time           `json:"date"`
	Name      string              `json:"name"`
	Notes     string              `json:"notes,omitempty"`
	Exercises []template.Exercise `json:"exercises"`
}

// Data is everything stored about one user besides the account itself.
type Data struct {
	Step1             *Profile       `json:"step1,omitempty"`
	Profile           *CoachProfile  `json:"profile,omitempty"`
	JoinDate          time.Time      `json:"joinDate"`
	Subscriptions     []Subscription `json:"subscriptions,omitempty"`
	ProgramHistory    []Program      `json:"programHistory,omitempty"`
	ChatHistory       []ChatMessage  `json:"chatHistory,omitempty"`
	LastProfileUpdate *time.Time     `json:"lastProfileUpdate,omitempty"`
}

// ForSignup returns the initial data for a new account.
func ForSignup(username, email string, now time.Time) Data {
	return Data{
		Step1:    &Profile{ClientName: username, ClientEmail: email},
		JoinDate: now,
	}
}

// CoachName returns the coach this user picked, or "".
func (d *Data) CoachName() string {
	if d.Step1 == nil {
		return ""
	}
	return d.Step1.CoachName
}

// UpdateProfile replaces the intake profile and stamps the update time.
// PRE: p has been validated
// POST: Step1 == p; LastProfileUpdate == now
func (d *Data) UpdateProfile(p Profile, now time.Time) {
	d.Step1 = &p
	d.LastProfileUpdate = &now
}

// Validate checks the intake profile's numeric fields.
func (p *Profile) Validate() error {
	if p.Age < 0 || p.Height < 0 || p.Weight < 0 || p.TrainingDays < 0 || p.TrainingDays > 7 {
		return ErrInvalidMeasurement
	}
	return nil
}

// Subscribe turns purchased plans into unfulfilled subscriptions.
// POST: One Subscription appended per plan, Fulfilled=false
func (d *Data) Subscribe(plans []storeplan.Plan, now time.Time) {
	for _, p := range plans {
		d.Subscriptions = append(d.Subscriptions, Subscription{
			PlanID:       p.ID,
			PlanName:     p.Name,
			Price:        p.Price,
			PurchaseDate: now,
			Fulfilled:    false,
			Access:       append([]string(nil), p.Access...),
		})
	}
}

// LatestSubscription returns the most recent purchase, if any.
func (d *Data) LatestSubscription() (Subscription, bool) {
	if len(d.Subscriptions) == 0 {
		return Subscription{}, false
	}
	latest := d.Subscriptions[0]
	for _, s := range d.Subscriptions[1:] {
		if !s.PurchaseDate.Before(latest.PurchaseDate) {
			latest = s
		}
	}
	return latest, true
}

// NeedsProgram reports whether the latest purchase is still waiting on the coach.
func (d *Data) NeedsProgram() bool {
	latest, ok := d.LatestSubscription()
	return ok && !latest.Fulfilled
}

// HasAccess reports whether any subscription grants access.
func (d *Data) HasAccess(access string) bool {
	for _, s := range d.Subscriptions {
		for _, a := range s.Access {
			if a == access {
				return true
			}
		}
	}
	return false
}

// DeliverProgram records a program from the coach and fulfils the oldest open subscription.
// POST: ProgramHistory has p first; one subscription flipped to Fulfilled
func (d *Data) DeliverProgram(p Program) error {
	idx := -1
	for i := range d.Subscriptions {
		if !d.Subscriptions[i].Fulfilled {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNothingToFulfill
	}
	d.Subscriptions[idx].Fulfilled = true
	d.ProgramHistory = append([]Program{p}, d.ProgramHistory...)
	return nil
}

// AppendChat adds a message to the conversation.
// PRE: sender is SenderUser or SenderCoach
// POST: ChatHistory grows by one trimmed message
func (d *Data) AppendChat(sender, message string, now time.Time) error {
	if sender != SenderUser && sender != SenderCoach {
		return ErrInvalidSender
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrEmptyMessage
	}
	if len([]rune(message)) > MaxMessageLength {
		return ErrMessageTooLong
	}
	d.ChatHistory = append(d.ChatHistory, ChatMessage{Sender: sender, Message: message, Timestamp: now})
	return nil
}

// MarkChatRead marks every message from the other side as read.
// POST: Returns how many messages changed
func (d *Data) MarkChatRead(reader string) int {
	n := 0
	for i := range d.ChatHistory {
		if d.ChatHistory[i].Sender != reader && !d.ChatHistory[i].Read {
			d.ChatHistory[i].Read = true
			n++
		}
	}
	return n
}
