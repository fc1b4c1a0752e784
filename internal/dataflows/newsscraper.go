package dataflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"FundCortex/internal/models"
)

// NewsScraper fetches article bodies for news items whose feed entry only
// carries a headline and a link.
type NewsScraper struct {
	client *resty.Client
	retry  *RetryConfig
}

func NewNewsScraper() *NewsScraper {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; FundCortex/1.0)")

	return &NewsScraper{
		client: client,
		retry:  DefaultRetryConfig(),
	}
}

// EnrichNews fills in Content for items that lack it, up to maxArticles
// fetches. Scrape failures leave the item headline-only rather than failing
// the batch.
func (ns *NewsScraper) EnrichNews(ctx context.Context, items []models.CompanyNews, maxArticles int) []models.CompanyNews {
	fetched := 0
	for i := range items {
		if fetched >= maxArticles {
			break
		}
		if items[i].Content != "" || items[i].URL == "" {
			continue
		}
		body, err := ns.ArticleBody(ctx, items[i].URL)
		if err != nil {
			continue
		}
		items[i].Content = body
		fetched++
	}
	return items
}

// ArticleBody extracts the main text of an article page.
func (ns *NewsScraper) ArticleBody(ctx context.Context, articleURL string) (string, error) {
	if strings.TrimSpace(articleURL) == "" {
		return "", fmt.Errorf("article URL cannot be empty")
	}

	var body string
	err := WithRetry(ns.retry, func() error {
		resp, err := ns.client.R().SetContext(ctx).Get(articleURL)
		if err != nil {
			return fmt.Errorf("fetch article: %w", err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("HTTP error %d when fetching article", resp.StatusCode())
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
		if err != nil {
			return fmt.Errorf("parse article HTML: %w", err)
		}

		body = extractBody(doc)
		return nil
	})
	if err != nil {
		return "", err
	}
	return body, nil
}

// extractBody tries the common article containers in order, falling back to
// joined paragraph text.
func extractBody(doc *goquery.Document) string {
	selectors := []string{
		".article-content", ".entry-content", ".post-content",
		".article-body", ".story-body", "#artibody", ".content",
	}
	for _, selector := range selectors {
		if text := strings.TrimSpace(doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}

	var paragraphs []string
	doc.Find("article p").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n")
}
