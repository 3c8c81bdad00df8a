package content

import "fmt"

// Error prefixes for placeholder bodies.
const (
	ErrorPrefixLearning = "Error"
	ErrorPrefixNews     = "Error fetching news"
	ErrorPrefixMeme     = "Error fetching meme"
)

const (
	newsPrompt = "Give me a 2-line summary of today’s latest global tech or AI news."
	memePrompt = "Share a short, funny programming meme or joke in 1-2 lines."
)

func LearningRequest(topic string) Request {
	return Request{
		Kind:        "learn",
		Prompt:      fmt.Sprintf("Explain a useful concept or coding technique in %s with an example in 5-7 lines.", topic),
		ErrorPrefix: ErrorPrefixLearning,
	}
}

func NewsRequest() Request {
	return Request{Kind: "news", Prompt: newsPrompt, ErrorPrefix: ErrorPrefixNews}
}

func MemeRequest() Request {
	return Request{Kind: "meme", Prompt: memePrompt, ErrorPrefix: ErrorPrefixMeme}
}
