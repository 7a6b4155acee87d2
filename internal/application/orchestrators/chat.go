package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fitgympro/internal/domain/account"
	"fitgympro/internal/domain/notification"
	"fitgympro/internal/domain/storeplan"
	"fitgympro/internal/domain/userdata"
)

var (
	ErrNoCoach       = errors.New("choose a coach in your profile before starting a chat")
	ErrNoChatAccess  = errors.New("buy a plan that includes chat to message your coach")
	ErrNotYourPupil  = errors.New("this user is not one of your students")
	ErrChatForbidden = errors.New("only users and coaches can chat")
)

// UserDataStoreForChat defines the user data operations chat orchestrators need.
type UserDataStoreForChat interface {
	Update(ctx context.Context, username string, fn func(d *userdata.Data) error) error
}

// SendChatInput carries one chat message.
// For a user, Student is ignored and the message goes to their own coach.
// For a coach, Student names the conversation.
type SendChatInput struct {
	From    string
	Role    string
	Student string
	Message string
}

// ChatDeps holds dependencies for SendChat.
type ChatDeps struct {
	UserDataStore UserDataStoreForChat
	Notifier      Notifier
	Now           func() time.Time
}

// ExecuteSendChat appends a message to the student's conversation and badges the recipient.
// PRE: From is signed in with Role
// POST: the student's chat history grows by one; the recipient has a chat badge
// INVARIANT: Conversations live in the student's user data only
func ExecuteSendChat(ctx context.Context, input SendChatInput, deps ChatDeps) (userdata.ChatMessage, error) {
	var student, recipient, sender string
	switch input.Role {
	case account.RoleUser:
		student, sender = input.From, userdata.SenderUser
	case account.RoleCoach:
		student, sender, recipient = input.Student, userdata.SenderCoach, input.Student
	default:
		return userdata.ChatMessage{}, ErrChatForbidden
	}

	var msg userdata.ChatMessage
	err := deps.UserDataStore.Update(ctx, student, func(d *userdata.Data) error {
		coach := d.CoachName()
		switch sender {
		case userdata.SenderUser:
			if coach == "" {
				return ErrNoCoach
			}
			if !d.HasAccess(storeplan.AccessChat) {
				return ErrNoChatAccess
			}
			recipient = coach
		case userdata.SenderCoach:
			if coach != input.From {
				return ErrNotYourPupil
			}
		}
		if err := d.AppendChat(sender, input.Message, deps.Now()); err != nil {
			return err
		}
		msg = d.ChatHistory[len(d.ChatHistory)-1]
		return nil
	})
	if err != nil {
		return userdata.ChatMessage{}, err
	}

	if err := deps.Notifier.Set(ctx, recipient, notification.TabChat, notification.BadgeChat); err != nil {
		slog.Warn("notification_failed", "username", recipient, "tab", notification.TabChat, "error", err)
	}
	slog.Info("chat_event", "event", "message_sent", "from", input.From, "to", recipient)
	return msg, nil
}

// ExecuteReadChat marks the other side's messages as read and clears the reader's chat badge.
// POST: Returns the conversation after marking
func ExecuteReadChat(ctx context.Context, reader, role, student string, deps ChatDeps, notes NotificationClearer) ([]userdata.ChatMessage, error) {
	side := userdata.SenderUser
	if role == account.RoleCoach {
		side = userdata.SenderCoach
	} else {
		student = reader
	}

	var history []userdata.ChatMessage
	err := deps.UserDataStore.Update(ctx, student, func(d *userdata.Data) error {
		if side == userdata.SenderCoach && d.CoachName() != reader {
			return ErrNotYourPupil
		}
		d.MarkChatRead(side)
		history = append([]userdata.ChatMessage(nil), d.ChatHistory...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := notes.Clear(ctx, reader, notification.TabChat); err != nil {
		slog.Warn("notification_clear_failed", "username", reader, "error", err)
	}
	return history, nil
}
