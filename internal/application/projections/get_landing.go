package projections

import (
	"context"
	"sort"

	"fitgympro/internal/domain/account"
	"fitgympro/internal/domain/magazine"
	"fitgympro/internal/domain/settings"
	"fitgympro/internal/domain/storeplan"
)

// LandingArticleLimit is how many articles the landing page shows.
const LandingArticleLimit = 6

// CoachCard is the public view of a verified coach.
type CoachCard struct {
	Username       string
	Name           string
	Specialization string
	Bio            string
	Avatar         string
	Students       int
}

// GetLandingResult carries the landing page data.
type GetLandingResult struct {
	Settings settings.SiteSettings
	Plans    []storeplan.Plan
	Articles []magazine.Article
	Coaches  []CoachCard
}

// GetLandingDeps holds dependencies for GetLanding.
type GetLandingDeps struct {
	Settings SettingsStore
	Plans    PlanStore
	Articles ArticleStore
	Accounts AccountStore
	UserData UserDataStore
}

// QueryGetLanding loads the public landing page.
// PRE: none; the page is public
// POST: Articles are newest first and capped at LandingArticleLimit; Coaches are verified only
func QueryGetLanding(ctx context.Context, deps GetLandingDeps) (GetLandingResult, error) {
	site, err := deps.Settings.Get(ctx)
	if err != nil {
		return GetLandingResult{}, err
	}
	plans, err := deps.Plans.List(ctx)
	if err != nil {
		return GetLandingResult{}, err
	}
	articles, err := deps.Articles.List(ctx)
	if err != nil {
		return GetLandingResult{}, err
	}
	articles = magazine.Newest(articles)
	if len(articles) > LandingArticleLimit {
		articles = articles[:LandingArticleLimit]
	}

	users, err := deps.Accounts.List(ctx)
	if err != nil {
		return GetLandingResult{}, err
	}
	coaches, err := coachCards(ctx, users, deps.UserData)
	if err != nil {
		return GetLandingResult{}, err
	}

	return GetLandingResult{Settings: site, Plans: plans, Articles: articles, Coaches: coaches}, nil
}

// coachCards builds the public cards of every verified coach, sorted by username.
func coachCards(ctx context.Context, users []account.User, data UserDataStore) ([]CoachCard, error) {
	students := make(map[string]int)
	var cards []CoachCard
	for _, u := range users {
		if u.IsVerifiedCoach() {
			cards = append(cards, CoachCard{Username: u.Username, Name: u.Username})
		}
	}
	if len(cards) == 0 || data == nil {
		return cards, nil
	}
	for _, u := range users {
		if u.Role != account.RoleUser {
			continue
		}
		d, err := data.Get(ctx, u.Username)
		if err != nil {
			return nil, err
		}
		if c := d.CoachName(); c != "" {
			students[c]++
		}
	}
	for i := range cards {
		d, err := data.Get(ctx, cards[i].Username)
		if err != nil {
			return nil, err
		}
		if d.Step1 != nil && d.Step1.ClientName != "" {
			cards[i].Name = d.Step1.ClientName
		}
		if d.Profile != nil {
			cards[i].Specialization = d.Profile.Specialization
			cards[i].Bio = d.Profile.Bio
			cards[i].Avatar = d.Profile.Avatar
		}
		cards[i].Students = students[cards[i].Username]
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].Username < cards[j].Username })
	return cards, nil
}
