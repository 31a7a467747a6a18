package deck

import "github.com/rcliao/thai-anki/internal/model"

// sep joins two strings on a card side with one blank line between them.
const sep = "\n\n"

// ExpandNumber turns a number record into its three cards: digits to Thai,
// Thai to digits, and the spoken name to both.
func ExpandNumber(r model.NumberRecord) []model.Card {
	return []model.Card{
		{Front: r.Arabic, Back: r.Thai + sep + r.PN},
		{Front: r.Thai, Back: r.Arabic + sep + r.PN},
		{Front: r.PN, Back: r.Thai + sep + r.Arabic},
	}
}

// ExpandVowel turns a vowel record into a single grapheme to IPA card.
// The back keeps its leading blank line; existing decks were built that way.
// Freq is not rendered.
func ExpandVowel(r model.VowelRecord) []model.Card {
	return []model.Card{
		{Front: r.Thai, Back: sep + r.IPA},
	}
}

func expandAll[R any](records []R, rule func(R) []model.Card, perRecord int) []model.Card {
	cards := make([]model.Card, 0, len(records)*perRecord)
	for _, r := range records {
		cards = append(cards, rule(r)...)
	}
	return cards
}
