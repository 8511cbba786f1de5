package keywords

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Default caps applied by Default().
const (
	DefaultMaxWordTerms       = 10
	DefaultMaxMeaningfulWords = 6
	DefaultMaxKeyConcepts     = 3
	DefaultMaxTopicKeywords   = 3
	DefaultMaxSuggestions     = 5
	DefaultMaxCombined        = 4
	DefaultMinConceptLength   = 6

	// MaxPhraseLength bounds every phrase query, in characters.
	MaxPhraseLength = 100

	// minTermLength is the shortest a kept word may be.
	minTermLength = 3
)

// QueryBundle is everything one narration produces.
type QueryBundle struct {
	PhraseQuery string   `json:"phraseQuery"`
	WordTerms   []string `json:"wordTerms"`
	Suggestions []string `json:"suggestions"`
}

// WordQuery returns the word terms joined by single spaces.
func (b QueryBundle) WordQuery() string {
	return strings.Join(b.WordTerms, " ")
}

// Empty reports whether the bundle carries no query at all.
func (b QueryBundle) Empty() bool {
	return b.PhraseQuery == "" && len(b.WordTerms) == 0
}

// Origin records which extraction path produced a candidate term.
type Origin string

const (
	OriginFrequency Origin = "frequency"
	OriginTopic     Origin = "topic"
)

// CandidateTerm is one extracted term with its provenance.
type CandidateTerm struct {
	Term   string `json:"term"`
	Origin Origin `json:"origin"`
	Topic  string `json:"topic,omitempty"`
}

// TopicMatch is a topic whose keywords appeared in the narration.
type TopicMatch struct {
	Topic    string
	Keywords []string
}

// Config tunes a Synthesizer. Zero caps fall back to the defaults.
type Config struct {
	MaxWordTerms       int      `yaml:"max_word_terms"`
	MaxMeaningfulWords int      `yaml:"max_meaningful_words"`
	MaxKeyConcepts     int      `yaml:"max_key_concepts"`
	MaxTopicKeywords   int      `yaml:"max_topic_keywords"`
	MaxSuggestions     int      `yaml:"max_suggestions"`
	MaxCombined        int      `yaml:"max_combined"`
	MinConceptLength   int      `yaml:"min_concept_length"`
	ExtraStopwords     []string `yaml:"extra_stopwords"`

	// Topics replaces the built-in dictionary when non-nil.
	Topics []Topic `yaml:"topics"`
}

// Synthesizer extracts keywords and builds query bundles.
//
// A Synthesizer is immutable after construction and safe for concurrent use.
type Synthesizer struct {
	cfg       Config
	stopwords map[string]struct{}
	topics    []Topic
}

// New builds a Synthesizer from cfg.
func New(cfg Config) *Synthesizer {
	cfg.MaxWordTerms = orDefault(cfg.MaxWordTerms, DefaultMaxWordTerms)
	cfg.MaxMeaningfulWords = orDefault(cfg.MaxMeaningfulWords, DefaultMaxMeaningfulWords)
	cfg.MaxKeyConcepts = orDefault(cfg.MaxKeyConcepts, DefaultMaxKeyConcepts)
	cfg.MaxTopicKeywords = orDefault(cfg.MaxTopicKeywords, DefaultMaxTopicKeywords)
	cfg.MaxSuggestions = orDefault(cfg.MaxSuggestions, DefaultMaxSuggestions)
	cfg.MaxCombined = orDefault(cfg.MaxCombined, DefaultMaxCombined)
	cfg.MinConceptLength = orDefault(cfg.MinConceptLength, DefaultMinConceptLength)

	stop := make(map[string]struct{}, len(defaultStopwords)+len(cfg.ExtraStopwords))
	for _, w := range defaultStopwords {
		stop[w] = struct{}{}
	}
	for _, w := range cfg.ExtraStopwords {
		if w = normalize(w); w != "" {
			stop[w] = struct{}{}
		}
	}

	src := cfg.Topics
	if src == nil {
		src = DefaultTopics()
	}
	topics := make([]Topic, 0, len(src))
	for _, t := range src {
		kws := make([]string, 0, len(t.Keywords))
		for _, kw := range t.Keywords {
			if kw = normalize(kw); kw != "" {
				kws = append(kws, kw)
			}
		}
		if len(kws) > 0 {
			topics = append(topics, Topic{Name: t.Name, Keywords: kws})
		}
	}

	return &Synthesizer{cfg: cfg, stopwords: stop, topics: topics}
}

var defaultSynthesizer = New(Config{})

// Default returns the shared Synthesizer with built-in settings.
func Default() *Synthesizer { return defaultSynthesizer }

// WordTerms returns the filtered, de-duplicated words of text in first-seen
// order, capped at MaxWordTerms.
func (s *Synthesizer) WordTerms(text string) []string {
	return s.filtered(text, s.cfg.MaxWordTerms, nil)
}

// MeaningfulWords returns up to MaxMeaningfulWords filtered words.
func (s *Synthesizer) MeaningfulWords(text string) []string {
	return s.filtered(text, s.cfg.MaxMeaningfulWords, nil)
}

// KeyConcepts returns up to MaxKeyConcepts long, purely alphabetic words.
func (s *Synthesizer) KeyConcepts(text string) []string {
	return s.filtered(text, s.cfg.MaxKeyConcepts, func(w string) bool {
		return utf8.RuneCountInString(w) >= s.cfg.MinConceptLength && isAlpha(w)
	})
}

// TopicMatches returns each topic with at least one keyword present in text
// as a whole word or phrase. Matched keywords keep dictionary order and are
// capped at MaxTopicKeywords per topic.
func (s *Synthesizer) TopicMatches(text string) []TopicMatch {
	tokens := strings.Fields(normalize(text))
	if len(tokens) == 0 {
		return nil
	}
	padded := " " + strings.Join(tokens, " ") + " "

	var out []TopicMatch
	for _, t := range s.topics {
		var matched []string
		for _, kw := range t.Keywords {
			if strings.Contains(padded, " "+kw+" ") && !slices.Contains(matched, kw) {
				matched = append(matched, kw)
				if len(matched) == s.cfg.MaxTopicKeywords {
					break
				}
			}
		}
		if len(matched) > 0 {
			out = append(out, TopicMatch{Topic: t.Name, Keywords: matched})
		}
	}
	return out
}

// Candidates lists every extracted term tagged with where it came from.
func (s *Synthesizer) Candidates(text string) []CandidateTerm {
	var out []CandidateTerm
	for _, w := range s.MeaningfulWords(text) {
		out = append(out, CandidateTerm{Term: w, Origin: OriginFrequency})
	}
	for _, m := range s.TopicMatches(text) {
		for _, kw := range m.Keywords {
			out = append(out, CandidateTerm{Term: kw, Origin: OriginTopic, Topic: m.Topic})
		}
	}
	return out
}

// Suggestions builds the suggestion clauses for text: meaningful words, key
// concepts, then one clause per matched topic. Duplicates and empty clauses
// are dropped and the result is capped at MaxSuggestions.
func (s *Synthesizer) Suggestions(text string) []string {
	clauses := []string{
		strings.Join(s.MeaningfulWords(text), " "),
		strings.Join(s.KeyConcepts(text), " "),
	}
	for _, m := range s.TopicMatches(text) {
		clauses = append(clauses, strings.Join(m.Keywords, " "))
	}

	out := make([]string, 0, s.cfg.MaxSuggestions)
	for _, c := range clauses {
		if c == "" || slices.Contains(out, c) {
			continue
		}
		out = append(out, c)
		if len(out) == s.cfg.MaxSuggestions {
			break
		}
	}
	return out
}

// Combine folds suggestions into one natural-language phrase of at most
// MaxPhraseLength characters. It returns "" when nothing usable remains.
func (s *Synthesizer) Combine(suggestions []string) string {
	var relevant []string
	for _, sg := range suggestions {
		sg = clean(sg)
		if utf8.RuneCountInString(sg) < minTermLength || slices.Contains(relevant, sg) {
			continue
		}
		relevant = append(relevant, sg)
	}
	if len(relevant) == 0 {
		return ""
	}

	phrase := naturalJoin(relevant[:min(s.cfg.MaxCombined, len(relevant))])
	if utf8.RuneCountInString(phrase) > MaxPhraseLength {
		phrase = strings.Join(relevant[:min(3, len(relevant))], " ")
	}
	return truncateWords(phrase, MaxPhraseLength)
}

// Synthesize builds the full query bundle for narration. An empty or
// unusable narration yields an empty bundle.
func (s *Synthesizer) Synthesize(narration string) QueryBundle {
	suggestions := s.Suggestions(narration)
	return QueryBundle{
		PhraseQuery: s.Combine(suggestions),
		WordTerms:   s.WordTerms(narration),
		Suggestions: suggestions,
	}
}

// Synthesize calls Default().Synthesize.
func Synthesize(narration string) QueryBundle { return defaultSynthesizer.Synthesize(narration) }

// WordTerms calls Default().WordTerms.
func WordTerms(text string) []string { return defaultSynthesizer.WordTerms(text) }

// Combine calls Default().Combine.
func Combine(suggestions []string) string { return defaultSynthesizer.Combine(suggestions) }

// filtered walks the normalized words of text, keeping those that pass the
// word filter and keep (when non-nil), de-duplicated, up to limit.
func (s *Synthesizer) filtered(text string, limit int, keep func(string) bool) []string {
	var out []string
	for _, w := range strings.Fields(normalize(text)) {
		if len(out) == limit {
			break
		}
		if !s.isTerm(w) || (keep != nil && !keep(w)) || slices.Contains(out, w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func (s *Synthesizer) isTerm(w string) bool {
	if utf8.RuneCountInString(w) < minTermLength {
		return false
	}
	if _, stop := s.stopwords[w]; stop {
		return false
	}
	return !isNumeric(w)
}

// normalize lowercases text and drops every rune that is not a letter, digit
// or whitespace. Whitespace runs are kept as single spaces.
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// clean keeps letters, digits and spaces, collapsing space runs. Case is kept.
func clean(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func naturalJoin(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		last := len(items) - 1
		return strings.Join(items[:last], ", ") + ", and " + items[last]
	}
}

// truncateWords cuts s to at most limit runes, backing off to the last space
// so no word is split. A single word longer than limit is hard-cut.
func truncateWords(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if runes[limit] == ' ' {
		return strings.TrimSpace(string(runes[:limit]))
	}
	cut := runes[:limit]
	for i := len(cut) - 1; i > 0; i-- {
		if cut[i] == ' ' {
			return strings.TrimRight(string(cut[:i]), " ,")
		}
	}
	return string(cut)
}

func isNumeric(w string) bool {
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return w != ""
}

func isAlpha(w string) bool {
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return w != ""
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
