package web

import (
	"net/http"

	"fitgympro/internal/application/orchestrators"
	"fitgympro/internal/domain/account"
)

const (
	coachTemplatesPath = "/dashboard/coach/templates"
	coachStudentsPath  = "/dashboard/coach/students"
)

// handleCoachSaveTemplate handles POST /coach/templates
func handleCoachSaveTemplate(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleCoach)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.SaveTemplateInput{
		Name:      r.FormValue("name"),
		Notes:     r.FormValue("notes"),
		Exercises: r.FormValue("exercises"),
	}
	t, err := orchestrators.ExecuteSaveTemplate(r.Context(), sess.Username, input, stores.TemplateStore, timeNow)
	if err != nil {
		redirectWith(w, r, coachTemplatesPath, "error", err.Error())
		return
	}
	redirectWith(w, r, coachTemplatesPath, "success", "Saved template "+t.Name+".")
}

// handleCoachDeleteTemplate handles POST /coach/templates/delete
func handleCoachDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleCoach)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	if err := orchestrators.ExecuteDeleteTemplate(r.Context(), sess.Username, r.FormValue("name"), stores.TemplateStore); err != nil {
		redirectWith(w, r, coachTemplatesPath, "error", err.Error())
		return
	}
	redirectWith(w, r, coachTemplatesPath, "success", "Template deleted.")
}

// handleCoachDeliverProgram handles POST /coach/students/program
// Typed exercises win over the chosen template.
func handleCoachDeliverProgram(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, account.RoleCoach)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.DeliverProgramInput{
		Coach:     sess.Username,
		Student:   r.FormValue("student"),
		Name:      r.FormValue("name"),
		Notes:     r.FormValue("notes"),
		Exercises: r.FormValue("exercises"),
		Template:  r.FormValue("template"),
	}
	deps := orchestrators.DeliverProgramDeps{
		UserDataStore: stores.UserDataStore,
		Templates:     stores.TemplateStore,
		Notifier:      stores.NotificationStore,
		Activity:      stores.ActivityStore,
		Now:           timeNow,
	}
	if _, err := orchestrators.ExecuteDeliverProgram(r.Context(), input, deps); err != nil {
		redirectWith(w, r, coachStudentsPath, "error", err.Error())
		return
	}
	redirectWith(w, r, coachStudentsPath, "success", "Program sent to "+input.Student+".")
}
