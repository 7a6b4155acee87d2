package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fitgympro/internal/domain/notification"
	"fitgympro/internal/domain/template"
	"fitgympro/internal/domain/userdata"
)

// TemplateStore defines the template operations coach orchestrators need.
type TemplateStore interface {
	Get(ctx context.Context) (template.Table, error)
	Update(ctx context.Context, fn func(t template.Table) error) error
}

// SaveTemplateInput carries the coach's template form.
type SaveTemplateInput struct {
	Name      string
	Notes     string
	Exercises string // one "name | sets | reps | rest" per line
}

// ExecuteSaveTemplate stores a program template under its name, replacing any with the same name.
// POST: the stored template passes Validate
func ExecuteSaveTemplate(ctx context.Context, coach string, input SaveTemplateInput, store TemplateStore, now func() time.Time) (template.Template, error) {
	exs, err := template.ParseExercises(input.Exercises)
	if err != nil {
		return template.Template{}, err
	}
	t := template.Template{
		Name:      strings.TrimSpace(input.Name),
		Notes:     strings.TrimSpace(input.Notes),
		Exercises: exs,
		UpdatedAt: now(),
	}
	if err := store.Update(ctx, func(tb template.Table) error { return tb.Put(t) }); err != nil {
		return template.Template{}, err
	}
	slog.Info("coach_event", "event", "template_saved", "coach", coach, "template", t.Name)
	return t, nil
}

// ExecuteDeleteTemplate removes a template by name.
func ExecuteDeleteTemplate(ctx context.Context, coach, name string, store TemplateStore) error {
	if err := store.Update(ctx, func(tb template.Table) error { return tb.Remove(name) }); err != nil {
		return err
	}
	slog.Info("coach_event", "event", "template_deleted", "coach", coach, "template", name)
	return nil
}

// DeliverProgramInput carries a program for one student.
// When Exercises is empty the named Template is used instead.
type DeliverProgramInput struct {
	Coach     string
	Student   string
	Name      string
	Notes     string
	Exercises string
	Template  string
}

// DeliverProgramDeps holds dependencies for DeliverProgram.
type DeliverProgramDeps struct {
	UserDataStore UserDataStoreForChat
	Templates     TemplateStore
	Notifier      Notifier
	Activity      ActivityRecorder
	Now           func() time.Time
}

// ExecuteDeliverProgram sends a workout program to a student and fulfils their oldest open purchase.
// PRE: Coach is the student's chosen coach
// POST: the program heads the student's history; the student has a program badge
func ExecuteDeliverProgram(ctx context.Context, input DeliverProgramInput, deps DeliverProgramDeps) (userdata.Program, error) {
	prog := userdata.Program{
		Date:  deps.Now(),
		Name:  strings.TrimSpace(input.Name),
		Notes: strings.TrimSpace(input.Notes),
	}

	if strings.TrimSpace(input.Exercises) != "" {
		exs, err := template.ParseExercises(input.Exercises)
		if err != nil {
			return userdata.Program{}, err
		}
		prog.Exercises = exs
	} else {
		table, err := deps.Templates.Get(ctx)
		if err != nil {
			return userdata.Program{}, fmt.Errorf("load templates: %w", err)
		}
		t, ok := table[strings.TrimSpace(input.Template)]
		if !ok {
			return userdata.Program{}, template.ErrNotFound
		}
		prog.Exercises = t.Exercises
		if prog.Name == "" {
			prog.Name = t.Name
		}
		if prog.Notes == "" {
			prog.Notes = t.Notes
		}
	}
	if prog.Name == "" {
		prog.Name = "Workout program"
	}

	err := deps.UserDataStore.Update(ctx, input.Student, func(d *userdata.Data) error {
		if d.CoachName() != input.Coach {
			return ErrNotYourPupil
		}
		return d.DeliverProgram(prog)
	})
	if err != nil {
		return userdata.Program{}, err
	}

	if err := deps.Notifier.Set(ctx, input.Student, notification.TabProgram, notification.BadgeNew); err != nil {
		slog.Warn("notification_failed", "username", input.Student, "tab", notification.TabProgram, "error", err)
	}
	logActivity(ctx, deps.Activity, fmt.Sprintf("Coach %s sent a program to %s.", input.Coach, input.Student))
	slog.Info("coach_event", "event", "program_delivered", "coach", input.Coach, "student", input.Student, "exercises", len(prog.Exercises))
	return prog, nil
}
