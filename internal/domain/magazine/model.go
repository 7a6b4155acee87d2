package magazine

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

// MaxTitleLength caps an article title.
const MaxTitleLength = 200

// Domain errors
var (
	ErrEmptyTitle    = errors.New("article title cannot be empty")
	ErrTitleTooLong  = errors.New("article title cannot exceed 200 characters")
	ErrEmptyContent  = errors.New("article content cannot be empty")
	ErrEmptyCategory = errors.New("article category cannot be empty")
	ErrInvalidImage  = errors.New("image URL must be an absolute http(s) URL")
	ErrNotFound      = errors.New("article not found")
)

// Article is one magazine post. Content is Markdown.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"imageUrl"`
	Content     string    `json:"content"`
	PublishDate time.Time `json:"publishDate"`
	Author      string    `json:"author"`
}

// Validate checks if the Article has valid data.
// PRE: Article struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Article) Validate() error {
	title := strings.TrimSpace(a.Title)
	if title == "" {
		return ErrEmptyTitle
	}
	if len([]rune(title)) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if strings.TrimSpace(a.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(a.Content) == "" {
		return ErrEmptyContent
	}
	if a.ImageURL != "" {
		u, err := url.Parse(a.ImageURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidImage
		}
	}
	return nil
}

// Excerpt returns the first n runes of the content, cut at a word boundary.
func (a *Article) Excerpt(n int) string {
	r := []rune(strings.TrimSpace(a.Content))
	if len(r) <= n {
		return string(r)
	}
	cut := string(r[:n])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}

// Find returns the article with id.
func Find(articles []Article, id string) (Article, bool) {
	for _, a := range articles {
		if a.ID == id {
			return a, true
		}
	}
	return Article{}, false
}

// Upsert replaces the article with a.ID or prepends a when it is new.
// PRE: a has been validated and carries an ID
func Upsert(articles []Article, a Article) []Article {
	out := make([]Article, 0, len(articles)+1)
	replaced := false
	for _, existing := range articles {
		if existing.ID == a.ID {
			out = append(out, a)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append([]Article{a}, out...)
	}
	return out
}

// Remove drops the article with id.
func Remove(articles []Article, id string) ([]Article, error) {
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		if a.ID != id {
			out = append(out, a)
		}
	}
	if len(out) == len(articles) {
		return articles, ErrNotFound
	}
	return out, nil
}

// Newest returns a copy of articles sorted by publish date, newest first.
func Newest(articles []Article) []Article {
	out := append([]Article(nil), articles...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishDate.After(out[j].PublishDate)
	})
	return out
}

// SeedAuthor is the byline of the starter articles.
const SeedAuthor = "admin"

type seed struct {
	daysAgo  int
	title    string
	category string
	image    string
	content  string
}

var seeds = []seed{
	{2, "5 key tips for building muscle", "Nutrition & muscle gain",
		"https://images.unsplash.com/photo-1571019613454-1cb2f99b2d8b?q=80&w=2070&auto=format&fit=crop",
		"Effective muscle building rests on a few principles. First, eat enough protein: aim for **1.6 to 2.2 g per kg** of bodyweight every day. Second, run a controlled calorie surplus. Muscle needs energy, but a large surplus mostly adds fat, so target 300 to 500 kcal above maintenance."},
	{5, "Choosing the right cardio for fat loss", "Cardio & weight loss",
		"https://images.unsplash.com/photo-1549060279-7e168fcee0c2?q=80&w=2070&auto=format&fit=crop",
		"Cardio is a core part of any fat loss plan. **HIIT** burns more calories per minute and keeps metabolism elevated for hours. **LISS** work such as brisk walking or cycling is easier on the joints and recovery. The best approach combines both."},
	{7, "Beyond the movement: the mind-muscle connection", "Training science",
		"https://images.unsplash.com/photo-1581009137042-c552e485697a?q=80&w=2070&auto=format&fit=crop",
		"Focusing on the working muscle is not just a cue. Conscious focus sends stronger neural signals and recruits more fibres. To build the connection, use lighter loads, move slowly, and squeeze at the top of each rep."},
	{10, "Smart fuelling: 5 common pre and post workout mistakes", "Nutrition & diet",
		"https://images.unsplash.com/photo-1543353071-873f67a48e03?q=80&w=2070&auto=format&fit=crop",
		"1. Eating lots of fat right before training.\n2. Training hard on an empty stomach.\n3. Delaying protein after the session.\n4. Not drinking enough water.\n5. Skipping carbohydrates after training.\n\nA balanced meal with protein and carbohydrate is the best choice."},
	{14, "When motivation runs out: training on discipline", "Psychology & motivation",
		"https://images.unsplash.com/photo-1517836357463-d257692634ce?q=80&w=2070&auto=format&fit=crop",
		"Motivation is a spark; discipline is the engine. Set a fixed schedule and keep it, even if a session is only ten minutes. Celebrate small wins and focus on the process. Consistency at lower intensity always beats sporadic hard training."},
	{20, "Creatine: myth or fact?", "Supplements",
		"https://images.unsplash.com/photo-1599599810694-b5b37304c847?q=80&w=2070&auto=format&fit=crop",
		"Creatine is one of the most researched supplements. It helps regenerate ATP during short intense efforts and supports strength and muscle gain. At **3 to 5 g per day** it is safe for healthy adults. No loading phase is needed and timing does not matter."},
}

// SeedArticles returns the starter articles, dated relative to now.
// POST: len(result) == 6; every article validates
func SeedArticles(now time.Time) []Article {
	out := make([]Article, 0, len(seeds))
	for i, s := range seeds {
		out = append(out, Article{
			ID:          fmt.Sprintf("article_%d_%d", now.UnixMilli(), i+1),
			Title:       s.title,
			Category:    s.category,
			ImageURL:    s.image,
			Content:     s.content,
			PublishDate: now.AddDate(0, 0, -s.daysAgo),
			Author:      SeedAuthor,
		})
	}
	return out
}
