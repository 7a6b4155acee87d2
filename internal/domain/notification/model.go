package notification

// Badge targets, named after the dashboard section they light up.
const (
	TabStudents = "students-content"
	TabChat     = "chat-content"
	TabProgram  = "program-content"
)

// Badge glyphs.
const (
	BadgeAlert = "❗"
	BadgeChat  = "💬"
	BadgeNew   = "✨"
)

// Map holds the badges of one user, keyed by tab.
type Map map[string]string

// Set places badge on tab.
func (m Map) Set(tab, badge string) { m[tab] = badge }

// Clear removes the badge on tab.
func (m Map) Clear(tab string) { delete(m, tab) }

// Has reports whether tab carries a badge.
func (m Map) Has(tab string) bool {
	_, ok := m[tab]
	return ok
}
