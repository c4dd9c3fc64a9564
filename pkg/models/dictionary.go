package models

// DictionaryEntry is one result returned by the dictionary lookup service
type DictionaryEntry struct {
	Word     string    `json:"word"`
	Phonetic string    `json:"phonetic,omitempty"`
	Meanings []Meaning `json:"meanings"`
}

// Meaning groups definitions under a part of speech
type Meaning struct {
	PartOfSpeech string       `json:"partOfSpeech"`
	Definitions  []Definition `json:"definitions"`
}

// Definition is a single sense of a word
type Definition struct {
	Definition string `json:"definition"`
	Example    string `json:"example,omitempty"`
}
