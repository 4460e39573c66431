package models

// Product is a catalog entry the assistant can answer questions about.
type Product struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Category    string   `yaml:"category" json:"category"`
	Price       float64  `yaml:"price" json:"price"`
	Rating      float64  `yaml:"rating" json:"rating"`
	ReviewCount int      `yaml:"reviewCount" json:"review_count"`
	Description string   `yaml:"description" json:"description"`
	Reviews     []Review `yaml:"reviews" json:"reviews"`
}

// Review is a single customer review attached to a product. SentimentScore is
// in [0, 1], higher meaning more positive.
type Review struct {
	Source         string   `yaml:"source" json:"source"`
	SentimentScore float64  `yaml:"sentimentScore" json:"sentiment_score"`
	Text           string   `yaml:"text" json:"text"`
	Pros           []string `yaml:"pros" json:"pros"`
	Cons           []string `yaml:"cons" json:"cons"`
}
