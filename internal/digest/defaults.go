package digest

// DefaultTopics is the rotation of learning topics.
var DefaultTopics = []string{"AI", "Flutter", "React Native", "SQL", "DevOps"}

// DefaultSpecs returns the stock schedule: the first two topics at 11:30,
// the rest at 17:00, news at 13:00 and a meme at 20:00.
func DefaultSpecs() []Spec {
	topics := append([]string(nil), DefaultTopics...)
	return []Spec{
		{Name: "tech-digest", Kind: KindLearn, Trigger: "11:30", Topics: topics[:2:2]},
		{Name: "evening-tech-digest", Kind: KindLearn, Trigger: "17:00", Topics: topics[2:]},
		{Name: "news", Kind: KindNews, Trigger: "13:00"},
		{Name: "meme", Kind: KindMeme, Trigger: "20:00"},
	}
}
