// Package engine provides the core game logic for the Card Flip memory game.
// This package is UI-agnostic and deterministic: time is always passed in by
// the caller, never read from the wall clock.
package engine

import (
	"fmt"
	"math/rand"
)

// Deck shape. A deck always holds ProblemPairs problem/answer pairs and
// ImagePairs image pairs.
const (
	ProblemPairs = 4
	ImagePairs   = 6
	TotalPairs   = ProblemPairs + ImagePairs
	DeckSize     = TotalPairs * 2
)

// CardType distinguishes how a card pairs with others.
type CardType uint8

const (
	CardProblem CardType = iota
	CardAnswer
	CardImage
)

// String returns the string representation of a card type.
func (t CardType) String() string {
	switch t {
	case CardProblem:
		return "problem"
	case CardAnswer:
		return "answer"
	case CardImage:
		return "image"
	default:
		return "unknown"
	}
}

// Card is a single card on the board.
// ID, Type and the pairing keys never change after the deck is built;
// only Flipped, Matched and Shaking are mutated by the engine.
type Card struct {
	ID        string
	Type      CardType
	ProblemID int    // Pairing key for problem/answer cards
	ImageID   int    // Pairing key for image cards
	Content   string // Problem or answer text
	Image     string // Image reference for image cards

	Flipped bool
	Matched bool
	Shaking bool
}

// FaceUp reports whether the card's face should be visible.
func (c Card) FaceUp() bool {
	return c.Flipped || c.Matched
}

// Deck is the fixed-size board. Selection state refers to cards by index.
type Deck [DeckSize]Card

// MatchedCount returns how many cards are matched.
func (d *Deck) MatchedCount() int {
	n := 0
	for i := range d {
		if d[i].Matched {
			n++
		}
	}
	return n
}

// Problem is a code-reading question with its expected output.
type Problem struct {
	ID      int    `yaml:"id"`
	Problem string `yaml:"problem"`
	Answer  string `yaml:"answer"`
}

// ImagePair names the picture shown on both cards of an image pair.
type ImagePair struct {
	ID    int    `yaml:"id"`
	Image string `yaml:"image"`
}

// Source is the content a deck is built from.
type Source struct {
	Problems []Problem   `yaml:"problems"`
	Images   []ImagePair `yaml:"images"`
}

// DefaultSource returns the built-in deck content.
func DefaultSource() Source {
	return Source{
		Problems: []Problem{
			{ID: 1, Problem: "int n = 5;\nif (n > 3) System.out.println(\"A\");\nelse System.out.println(\"B\");", Answer: "A"},
			{ID: 2, Problem: "int[] a = {10, 20, 30};\nSystem.out.println(a[a.length-1]);", Answer: "30"},
			{ID: 3, Problem: "int a = 10;\nint b = 20;\nSystem.out.println(a>b? 'A': 'B');", Answer: "B"},
			{ID: 4, Problem: "String str = \"Hello\";\nSystem.out.println(str.length());", Answer: "5"},
		},
		Images: []ImagePair{
			{ID: 1, Image: "3.svg"},
			{ID: 2, Image: "5.svg"},
			{ID: 3, Image: "7.svg"},
			{ID: 4, Image: "9.svg"},
			{ID: 5, Image: "X.svg"},
			{ID: 6, Image: "1.svg"},
		},
	}
}

// Validate checks that the source can build a full deck.
func (s Source) Validate() error {
	if len(s.Problems) != ProblemPairs {
		return fmt.Errorf("engine: need %d problems, got %d", ProblemPairs, len(s.Problems))
	}
	if len(s.Images) != ImagePairs {
		return fmt.Errorf("engine: need %d image pairs, got %d", ImagePairs, len(s.Images))
	}

	problemIDs := make(map[int]bool, len(s.Problems))
	for _, p := range s.Problems {
		if problemIDs[p.ID] {
			return fmt.Errorf("engine: duplicate problem id %d", p.ID)
		}
		problemIDs[p.ID] = true
	}

	imageIDs := make(map[int]bool, len(s.Images))
	for _, img := range s.Images {
		if imageIDs[img.ID] {
			return fmt.Errorf("engine: duplicate image id %d", img.ID)
		}
		imageIDs[img.ID] = true
	}
	return nil
}

// NewDeck builds a shuffled deck from src. The source slices are only read,
// so the same Source can be reused across replays.
func NewDeck(src Source, rng *rand.Rand) (Deck, error) {
	var d Deck
	if err := src.Validate(); err != nil {
		return d, err
	}

	i := 0
	for _, p := range src.Problems {
		d[i] = Card{
			ID:        fmt.Sprintf("problem-%d", p.ID),
			Type:      CardProblem,
			ProblemID: p.ID,
			Content:   p.Problem,
		}
		i++
	}
	for _, p := range src.Problems {
		d[i] = Card{
			ID:        fmt.Sprintf("answer-%d", p.ID),
			Type:      CardAnswer,
			ProblemID: p.ID,
			Content:   p.Answer,
		}
		i++
	}
	for _, img := range src.Images {
		for n := 1; n <= 2; n++ {
			d[i] = Card{
				ID:      fmt.Sprintf("image-%d-%d", img.ID, n),
				Type:    CardImage,
				ImageID: img.ID,
				Image:   img.Image,
			}
			i++
		}
	}

	rng.Shuffle(len(d), func(a, b int) {
		d[a], d[b] = d[b], d[a]
	})
	return d, nil
}

// IsPair reports whether two cards form a pair: a problem with its answer
// (in either order), or two distinct image cards showing the same image.
func IsPair(a, b Card) bool {
	switch {
	case a.Type == CardProblem && b.Type == CardAnswer:
		return a.ProblemID == b.ProblemID
	case a.Type == CardAnswer && b.Type == CardProblem:
		return a.ProblemID == b.ProblemID
	case a.Type == CardImage && b.Type == CardImage:
		return a.ImageID == b.ImageID && a.ID != b.ID
	}
	return false
}
