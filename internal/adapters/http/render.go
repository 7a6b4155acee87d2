package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"fitgympro/internal/adapters/http/middleware"
	"fitgympro/internal/domain/notification"
	"fitgympro/internal/domain/settings"
)

//go:embed templates static
var assets embed.FS

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// pricePrinter groups digits in prices.
var pricePrinter = message.NewPrinter(language.English)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// formatPrice renders an amount in Toman with grouped digits.
func formatPrice(amount int64) string {
	return pricePrinter.Sprintf("%d Toman", amount)
}

// renderMarkdown converts article and legal-page Markdown to HTML.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// baseFuncs are replaced per request; they exist so templates parse.
var baseFuncs = template.FuncMap{
	"currentUser": func() string { return "" },
	"currentRole": func() string { return "" },
	"isLoggedIn":  func() bool { return false },
	"csrfField":   func() template.HTML { return "" },
	"flash":       func() *Flash { return nil },
	"site":        func() settings.SiteSettings { return settings.Defaults() },
	"badge":       func(tab string) string { return "" },
	"price":       formatPrice,
	"markdown":    renderMarkdown,
	"date":        func(t time.Time) string { return t.Format("2 Jan 2006") },
	"datetime":    func(t time.Time) string { return t.Format("2 Jan 2006 15:04") },
	"join":        strings.Join,
	"has": func(list []string, v string) bool {
		for _, s := range list {
			if s == v {
				return true
			}
		}
		return false
	},
	"add": func(a, b int) int { return a + b },
	"userAction": func(username, action, label string) map[string]string {
		return map[string]string{"Username": username, "Action": action, "Label": label}
	},
}

var (
	parseOnce sync.Once
	parsed    map[string]*template.Template
	parseErr  error
)

// pageTemplates parses layout.html with every page template once.
func pageTemplates() (map[string]*template.Template, error) {
	parseOnce.Do(func() {
		names, err := templateNames()
		if err != nil {
			parseErr = err
			return
		}
		parsed = make(map[string]*template.Template, len(names))
		for _, name := range names {
			if name == "layout.html" {
				continue
			}
			tpl, err := template.New("layout.html").Funcs(baseFuncs).ParseFS(assets, "templates/layout.html", "templates/"+name)
			if err != nil {
				parseErr = fmt.Errorf("parse %s: %w", name, err)
				return
			}
			parsed[name] = tpl
		}
	})
	return parsed, parseErr
}

// templateNames lists the embedded page templates.
func templateNames() ([]string, error) {
	entries, err := assets.ReadDir("templates")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".html") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// renderTemplate executes templateName inside the layout and writes the result.
// Nothing is written when rendering fails, so callers may still redirect.
func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) error {
	all, err := pageTemplates()
	if err != nil {
		return err
	}
	base, ok := all[templateName]
	if !ok {
		return fmt.Errorf("unknown template %q", templateName)
	}
	tpl, err := base.Clone()
	if err != nil {
		return err
	}

	ctx := r.Context()
	sess, loggedIn := middleware.GetSessionFromContext(ctx)
	site := loadSite(ctx)
	badges := loadBadges(ctx, sess.Username, loggedIn)
	fl := popFlash(w, r)

	tpl.Funcs(template.FuncMap{
		"currentUser": func() string { return sess.Username },
		"currentRole": func() string { return sess.Role },
		"isLoggedIn":  func() bool { return loggedIn },
		"csrfField":   func() template.HTML { return csrf.TemplateField(r) },
		"flash":       func() *Flash { return fl },
		"site":        func() settings.SiteSettings { return site },
		"badge":       func(tab string) string { return badges[tab] },
	})

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", templateName, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = buf.WriteTo(w)
	return err
}

func loadSite(ctx context.Context) settings.SiteSettings {
	site, err := stores.SettingsStore.Get(ctx)
	if err != nil {
		slog.Warn("settings_load_failed", "error", err)
		return settings.Defaults()
	}
	return site
}

func loadBadges(ctx context.Context, username string, loggedIn bool) notification.Map {
	if !loggedIn {
		return notification.Map{}
	}
	m, err := stores.NotificationStore.Get(ctx, username)
	if err != nil {
		slog.Warn("notifications_load_failed", "username", username, "error", err)
		return notification.Map{}
	}
	return m
}

// --- Flash messages ---

const flashCookieName = "fitgympro_flash"

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    string // "success" or "error"
	Message string
}

func setFlash(w http.ResponseWriter, kind, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(kind + "|" + msg),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   60,
	})
}

func popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(flashCookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookieName, Path: "/", MaxAge: -1})
	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return nil
	}
	kind, msg, ok := strings.Cut(raw, "|")
	if !ok {
		return nil
	}
	return &Flash{Kind: kind, Message: msg}
}

// redirectWith sets a flash message and answers with 303 See Other.
func redirectWith(w http.ResponseWriter, r *http.Request, target, kind, msg string) {
	if msg != "" {
		setFlash(w, kind, msg)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
