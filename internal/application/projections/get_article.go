package projections

import (
	"context"

	"fitgympro/internal/domain/magazine"
)

// RelatedArticleLimit caps the "more in this category" list.
const RelatedArticleLimit = 3

// GetArticleResult carries one article and its neighbours.
type GetArticleResult struct {
	Article magazine.Article
	Related []magazine.Article
}

// QueryGetArticle loads an article and up to RelatedArticleLimit newer-first articles of the same category.
// POST: magazine.ErrNotFound when id is unknown
func QueryGetArticle(ctx context.Context, id string, articles ArticleStore) (GetArticleResult, error) {
	all, err := articles.List(ctx)
	if err != nil {
		return GetArticleResult{}, err
	}
	a, ok := magazine.Find(all, id)
	if !ok {
		return GetArticleResult{}, magazine.ErrNotFound
	}
	res := GetArticleResult{Article: a}
	for _, other := range magazine.Newest(all) {
		if len(res.Related) == RelatedArticleLimit {
			break
		}
		if other.ID != a.ID && other.Category == a.Category {
			res.Related = append(res.Related, other)
		}
	}
	return res, nil
}
