package serving

// Classification is one zero-shot category assignment for a text.
type Classification struct {
	Text  string  `json:"text"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// SentimentScore is the model's sentiment verdict for a text.
type SentimentScore struct {
	Text  string  `json:"text"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// RankedKeyword is a keyword with its semantic similarity to a topic.
type RankedKeyword struct {
	Keyword    string  `json:"keyword"`
	Similarity float64 `json:"similarity"`
}

type classifyRequest struct {
	Texts  []string `json:"texts"`
	Labels []string `json:"labels"`
}

type classifyResponse struct {
	Results []Classification `json:"results"`
}

type sentimentRequest struct {
	Texts []string `json:"texts"`
}

type sentimentResponse struct {
	Results []SentimentScore `json:"results"`
}

type similarityRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

type similarityResponse struct {
	Similarity float64 `json:"similarity"`
}

type rankRequest struct {
	Topic    string   `json:"topic"`
	Keywords []string `json:"keywords"`
}

type rankResponse struct {
	Results []RankedKeyword `json:"results"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
