// Package model defines the vocabulary records and flashcard types.
package model

import "fmt"

// NumberRecord is one row of the numbers deck input.
type NumberRecord struct {
	// Indo-Arabic "123" digits
	Arabic string `yaml:"arabic" json:"arabic" validate:"required"`
	// Thai digits
	Thai string `yaml:"thai" json:"thai" validate:"required"`
	// Thai name of the number, optionally with a phonetic transcription
	PN string `yaml:"pn" json:"pn" validate:"required"`
}

// VowelRecord is one row of the vowels deck input.
type VowelRecord struct {
	Thai string    `yaml:"thai" json:"thai" validate:"required"`
	IPA  string    `yaml:"ipa" json:"ipa" validate:"required"`
	Freq Frequency `yaml:"freq" json:"freq" validate:"oneof=0 1 2"`
}

// Frequency says how common a vowel is in written Thai.
type Frequency int

const (
	FreqRare       Frequency = 0
	FreqInfrequent Frequency = 1
	FreqNormal     Frequency = 2
)

func (f Frequency) String() string {
	switch f {
	case FreqRare:
		return "rare"
	case FreqInfrequent:
		return "infrequent"
	case FreqNormal:
		return "normal"
	}
	return fmt.Sprintf("Frequency(%d)", int(f))
}
