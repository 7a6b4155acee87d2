package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Payment gateways
const (
	GatewayZarinpal = "zarinpal"
	GatewayIDPay    = "idpay"
)

// Domain errors
var (
	ErrEmptySiteName   = errors.New("site name cannot be empty")
	ErrInvalidColor    = errors.New("accent color must be a hex color like #a3e635")
	ErrInvalidRate     = errors.New("commission rate must be between 0 and 100")
	ErrInvalidGateway  = errors.New("gateway must be zarinpal or idpay")
	ErrInvalidURL      = errors.New("URL must be an absolute http(s) URL")
	ErrInvalidEmail    = errors.New("contact email is invalid")
	ErrWebhookNotFound = errors.New("webhook not found")
	ErrNoEvents        = errors.New("webhook needs at least one event")
)

var (
	hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	email    = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

// Social holds the public social links.
type Social struct {
	Instagram string `json:"instagram"`
	Telegram  string `json:"telegram"`
	YouTube   string `json:"youtube"`
}

// Contact holds the public contact details.
type Contact struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Financial holds the commission and the active payment gateway.
type Financial struct {
	CommissionRate float64 `json:"commissionRate"`
	ActiveGateway  string  `json:"activeGateway"`
}

// Gateways holds merchant keys per payment gateway.
type Gateways struct {
	Zarinpal string `json:"zarinpal"`
	IDPay    string `json:"idpay"`
}

// Webhook is an outbound notification target.
type Webhook struct {
	ID     string   `json:"id"`
	URL    string   `json:"url"`
	Events []string `json:"events"`
}

// Integrations holds gateway keys and webhooks.
type Integrations struct {
	PaymentGateways Gateways  `json:"paymentGateways"`
	Webhooks        []Webhook `json:"webhooks"`
}

// Affiliate configures the affiliate programme.
type Affiliate struct {
	Enabled        bool    `json:"enabled"`
	CommissionRate float64 `json:"commissionRate"`
}

// Monetization groups revenue features.
type Monetization struct {
	AffiliateSystem Affiliate `json:"affiliateSystem"`
}

// Content holds the legal pages, in Markdown.
type Content struct {
	Terms         string `json:"terms"`
	PrivacyPolicy string `json:"privacyPolicy"`
}

// SiteSettings is the admin-editable site configuration.
type SiteSettings struct {
	SiteName               string       `json:"siteName"`
	LogoURL                string       `json:"logoUrl"`
	AccentColor            string       `json:"accentColor"`
	MaintenanceMode        bool         `json:"maintenanceMode"`
	AllowCoachRegistration bool         `json:"allowCoachRegistration"`
	SocialMedia            Social       `json:"socialMedia"`
	ContactInfo            Contact      `json:"contactInfo"`
	Financial              Financial    `json:"financial"`
	Integrations           Integrations `json:"integrations"`
	Monetization           Monetization `json:"monetization"`
	Content                Content      `json:"content"`
}

// Defaults returns the settings used before an admin saves anything.
func Defaults() SiteSettings {
	return SiteSettings{
		SiteName:               "FitGym Pro",
		AccentColor:            "#a3e635",
		AllowCoachRegistration: true,
		SocialMedia: Social{
			Instagram: "https://instagram.com/fitgympro",
			Telegram:  "https://t.me/fitgympro",
			YouTube:   "https://youtube.com/fitgympro",
		},
		ContactInfo: Contact{
			Email:   "support@fitgympro.com",
			Phone:   "021-12345678",
			Address: "101 Azadi Street, Tehran",
		},
		Financial: Financial{CommissionRate: 30, ActiveGateway: GatewayZarinpal},
		Integrations: Integrations{
			Webhooks: []Webhook{},
		},
		Monetization: Monetization{
			AffiliateSystem: Affiliate{CommissionRate: 10},
		},
		Content: Content{
			Terms:         "Please enter your terms and conditions here.",
			PrivacyPolicy: "Please enter your privacy policy here.",
		},
	}
}

// Decode reads a saved settings document over the defaults.
// Fields absent from raw keep their default, at every nesting level.
// POST: nil or empty raw yields Defaults()
func Decode(raw []byte) (SiteSettings, error) {
	s := Defaults()
	if len(raw) == 0 || string(raw) == "null" {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return Defaults(), fmt.Errorf("decode site settings: %w", err)
	}
	if s.Integrations.Webhooks == nil {
		s.Integrations.Webhooks = []Webhook{}
	}
	return s, nil
}

// Validate checks if the SiteSettings has valid data.
// PRE: SiteSettings struct is populated
// POST: Returns nil if valid, error otherwise
func (s *SiteSettings) Validate() error {
	if strings.TrimSpace(s.SiteName) == "" {
		return ErrEmptySiteName
	}
	if !hexColor.MatchString(s.AccentColor) {
		return ErrInvalidColor
	}
	if !validRate(s.Financial.CommissionRate) || !validRate(s.Monetization.AffiliateSystem.CommissionRate) {
		return ErrInvalidRate
	}
	if s.Financial.ActiveGateway != GatewayZarinpal && s.Financial.ActiveGateway != GatewayIDPay {
		return ErrInvalidGateway
	}
	if s.ContactInfo.Email != "" && !email.MatchString(s.ContactInfo.Email) {
		return ErrInvalidEmail
	}
	for _, u := range []string{s.LogoURL, s.SocialMedia.Instagram, s.SocialMedia.Telegram, s.SocialMedia.YouTube} {
		if u != "" && !validURL(u) {
			return fmt.Errorf("%q: %w", u, ErrInvalidURL)
		}
	}
	for _, w := range s.Integrations.Webhooks {
		if err := w.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks a webhook target.
func (w *Webhook) Validate() error {
	if !validURL(w.URL) {
		return fmt.Errorf("%q: %w", w.URL, ErrInvalidURL)
	}
	if len(w.Events) == 0 {
		return ErrNoEvents
	}
	return nil
}

// AddWebhook appends w.
// PRE: w.ID is set
func (s *SiteSettings) AddWebhook(w Webhook) error {
	if err := w.Validate(); err != nil {
		return err
	}
	s.Integrations.Webhooks = append(s.Integrations.Webhooks, w)
	return nil
}

// RemoveWebhook deletes the webhook with id.
func (s *SiteSettings) RemoveWebhook(id string) error {
	hooks := s.Integrations.Webhooks
	for i, w := range hooks {
		if w.ID == id {
			s.Integrations.Webhooks = append(hooks[:i:i], hooks[i+1:]...)
			return nil
		}
	}
	return ErrWebhookNotFound
}

func validRate(r float64) bool { return r >= 0 && r <= 100 }

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
