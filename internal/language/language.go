// Package language holds the ISO 639-1 codes understood by TranslateGemma
// and helpers to normalise and validate them.
package language

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnsupportedLanguage is matched by errors.Is for any UnsupportedLanguageError.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// UnsupportedLanguageError names the code that failed validation.
type UnsupportedLanguageError struct {
	Code string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language: %q", e.Code)
}

func (e *UnsupportedLanguageError) Is(target error) bool {
	return target == ErrUnsupportedLanguage
}

// names maps each supported base code to its English name.
var names = map[string]string{
	"af": "Afrikaans",
	"ar": "Arabic",
	"bg": "Bulgarian",
	"bn": "Bengali",
	"ca": "Catalan",
	"cs": "Czech",
	"da": "Danish",
	"de": "German",
	"el": "Greek",
	"en": "English",
	"es": "Spanish",
	"et": "Estonian",
	"fa": "Persian",
	"fi": "Finnish",
	"fr": "French",
	"gl": "Galician",
	"gu": "Gujarati",
	"he": "Hebrew",
	"hi": "Hindi",
	"hr": "Croatian",
	"hu": "Hungarian",
	"id": "Indonesian",
	"it": "Italian",
	"ja": "Japanese",
	"ka": "Georgian",
	"kk": "Kazakh",
	"ko": "Korean",
	"lt": "Lithuanian",
	"lv": "Latvian",
	"mk": "Macedonian",
	"ml": "Malayalam",
	"mr": "Marathi",
	"ms": "Malay",
	"ne": "Nepali",
	"nl": "Dutch",
	"no": "Norwegian",
	"pl": "Polish",
	"pt": "Portuguese",
	"ro": "Romanian",
	"ru": "Russian",
	"sk": "Slovak",
	"sl": "Slovenian",
	"sq": "Albanian",
	"sr": "Serbian",
	"sv": "Swedish",
	"sw": "Swahili",
	"ta": "Tamil",
	"te": "Telugu",
	"th": "Thai",
	"tl": "Tagalog",
	"tr": "Turkish",
	"uk": "Ukrainian",
	"ur": "Urdu",
	"vi": "Vietnamese",
	"zh": "Chinese",
}

// Normalize lowercases a code and trims surrounding space, keeping any
// region suffix ("pt-BR" -> "pt-br").
func Normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// Base strips a region suffix ("en-us" -> "en").
func Base(code string) string {
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		return code[:i]
	}
	return code
}

// IsSupported reports whether the base of code is a supported language.
// The check is case-insensitive and accepts regional codes.
func IsSupported(code string) bool {
	_, ok := names[Base(Normalize(code))]
	return ok
}

// Name returns the English name for code, or "" when unsupported.
func Name(code string) string {
	return names[Base(Normalize(code))]
}

// ValidatePair returns an *UnsupportedLanguageError for the first code that
// is not supported.
func ValidatePair(source, target string) error {
	if !IsSupported(source) {
		return &UnsupportedLanguageError{Code: source}
	}
	if !IsSupported(target) {
		return &UnsupportedLanguageError{Code: target}
	}
	return nil
}

// Supported returns the supported base codes in alphabetical order.
func Supported() []string {
	codes := make([]string, 0, len(names))
	for code := range names {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
