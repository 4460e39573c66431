package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/revuai/revuchat/internal/models"
)

const (
	maxReviewChars      = 500
	maxReviewsInContext = 20
)

// SystemPrompt builds the assistant's system prompt for a product: a product
// information block followed by the most positive reviews. At most
// maxReviewsInContext reviews are included, sorted by sentiment score
// descending, and each review text is truncated to maxReviewChars.
func SystemPrompt(product models.Product) string {
	description := product.Description
	if description == "" {
		description = "No description provided."
	}
	category := product.Category
	if category == "" {
		category = "Uncategorized"
	}

	productBlock := fmt.Sprintf(
		"Product: %s\nCategory: %s\nPrice: $%.2f\nRating: %g/10 (based on %d reviews)\nDescription: %s",
		product.Name, category, product.Price, product.Rating, product.ReviewCount, description,
	)

	reviews := make([]models.Review, len(product.Reviews))
	copy(reviews, product.Reviews)
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].SentimentScore > reviews[j].SentimentScore
	})
	if len(reviews) > maxReviewsInContext {
		reviews = reviews[:maxReviewsInContext]
	}

	reviewLines := make([]string, 0, len(reviews))
	for i, review := range reviews {
		text := strings.TrimSpace(review.Text)
		if runes := []rune(text); len(runes) > maxReviewChars {
			text = string(runes[:maxReviewChars]) + "..."
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "[Review %d | Source: %s | Sentiment: %.2f]\n%s",
			i+1, strings.ToUpper(review.Source), review.SentimentScore, text)
		if len(review.Pros) > 0 {
			fmt.Fprintf(&sb, "\nPros: %s", strings.Join(review.Pros, ", "))
		}
		if len(review.Cons) > 0 {
			fmt.Fprintf(&sb, "\nCons: %s", strings.Join(review.Cons, ", "))
		}
		reviewLines = append(reviewLines, sb.String())
	}

	reviewsBlock := "No reviews available."
	if len(reviewLines) > 0 {
		reviewsBlock = strings.Join(reviewLines, "\n\n")
	}

	return fmt.Sprintf(`You are a helpful product research assistant for Revu AI, an AI-powered product review aggregator.

You have been given detailed information about a specific product along with real customer reviews. Your job is to help the user understand this product — answer questions about its features, quality, value, common issues, and whether it's a good fit for their needs.

Be concise, honest, and grounded in the review data. If a question cannot be answered from the provided information, say so clearly.

=== PRODUCT INFORMATION ===
%s

=== CUSTOMER REVIEWS (%d of %d total) ===
%s`, productBlock, len(reviews), product.ReviewCount, reviewsBlock)
}
