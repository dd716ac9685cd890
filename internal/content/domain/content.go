// Package domain holds the listing collaborator's data: categories and articles as delivered by the
// content API, plus the filters the listing views apply before rendering.
// It is the contract those views are written against; the recovery client does not import it.
package domain

// Category is one article category.
type Category struct {
	CategoryID   int    `json:"category_id"`
	CategoryName string `json:"category_name"`
}

// Article is one published or unpublished article.
type Article struct {
	ArticleID   int    `json:"article_id"`
	CategoryID  int    `json:"category_id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	CreatedDate string `json:"createdDate"`
	IsActive    bool   `json:"isActive"`
}

// ActiveArticles returns the articles with IsActive set, preserving order.
func ActiveArticles(articles []Article) []Article {
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		if a.IsActive {
			out = append(out, a)
		}
	}
	return out
}

// ArticlesInCategory returns the articles belonging to categoryID, preserving order.
func ArticlesInCategory(articles []Article, categoryID int) []Article {
	out := make([]Article, 0)
	for _, a := range articles {
		if a.CategoryID == categoryID {
			out = append(out, a)
		}
	}
	return out
}

// CategoryName returns the name of categoryID, or "" when it is not in categories.
func CategoryName(categories []Category, categoryID int) string {
	for _, c := range categories {
		if c.CategoryID == categoryID {
			return c.CategoryName
		}
	}
	return ""
}
