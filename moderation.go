package main

import "strings"

var bannedWords = []string{
	"fuck", "ass", "pussy", "dick", "cock", "nude", "sex", "suck",
	"boobs", "tits", "breast", "cum", "horny", "bastard", "bollocks",
	"bugger", "crap", "damn", "prick", "whore", "slut", "douche",
}

// normalizeMessage lowercases and strips whitespace, punctuation, and
// underscores so split-up words still match.
func normalizeMessage(message string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(message) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func countDigits(message string) int {
	count := 0
	for _, r := range message {
		if r >= '0' && r <= '9' {
			count++
		}
	}
	return count
}

// containsBannedContent rejects messages carrying a banned word or enough
// digits to smuggle a phone number.
func containsBannedContent(message string) bool {
	if message == "" {
		return false
	}
	normalized := normalizeMessage(message)
	if countDigits(normalized) >= 8 {
		return true
	}
	for _, word := range bannedWords {
		if strings.Contains(normalized, word) {
			return true
		}
	}
	return false
}
