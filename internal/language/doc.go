// Package language normalizes user-supplied language hints into the ISO
// 639-1 codes speech recognizers expect.
//
// Hints may be BCP 47 tags ("en-US"), ISO 639-2 codes in either the
// terminology or bibliographic form ("deu", "ger"), or English words
// ("german"). An empty hint or "auto" means the recognizer should detect
// the language itself.
package language
