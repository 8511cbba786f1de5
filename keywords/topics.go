package keywords

// Topic is a named group of trigger keywords. Keywords may be multi-word.
type Topic struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// DefaultTopics is the built-in topic dictionary, in match order.
func DefaultTopics() []Topic {
	return []Topic{
		{"nature", []string{
			"nature", "forest", "mountain", "mountains", "river", "lake", "tree", "trees",
			"flowers", "landscape", "sunset", "sunrise", "waterfall", "desert", "sky",
		}},
		{"animals", []string{
			"animal", "animals", "wildlife", "dog", "cat", "bird", "birds", "fox",
			"horse", "fish", "lion", "elephant", "whale",
		}},
		{"ocean", []string{
			"ocean", "sea", "beach", "waves", "coral", "reef", "coast", "underwater",
		}},
		{"city", []string{
			"city", "urban", "street", "traffic", "building", "buildings", "skyline",
			"downtown", "architecture", "night life",
		}},
		{"technology", []string{
			"technology", "computer", "software", "robot", "robots", "digital", "internet",
			"smartphone", "data", "coding", "artificial intelligence", "machine learning",
		}},
		{"business", []string{
			"business", "office", "meeting", "money", "finance", "market", "startup",
			"team", "entrepreneur", "economy",
		}},
		{"food", []string{
			"food", "cooking", "kitchen", "restaurant", "meal", "coffee", "fruit",
			"vegetables", "recipe", "chef",
		}},
		{"sports", []string{
			"sports", "football", "soccer", "basketball", "running", "fitness", "gym",
			"training", "athlete", "stadium",
		}},
		{"travel", []string{
			"travel", "airport", "airplane", "journey", "vacation", "tourism", "hotel",
			"adventure", "road trip",
		}},
		{"health", []string{
			"health", "doctor", "hospital", "medicine", "wellness", "exercise",
			"meditation", "mental health",
		}},
		{"science", []string{
			"science", "laboratory", "research", "experiment", "space", "planet",
			"stars", "galaxy", "astronaut",
		}},
		{"people", []string{
			"people", "family", "children", "friends", "crowd", "woman", "man",
			"couple", "community",
		}},
	}
}
