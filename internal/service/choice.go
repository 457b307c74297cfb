package service

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var (
	choiceSplitPattern  = regexp.MustCompile(`[\n\r,，、|；;/]+`)
	optionPrefixPattern = regexp.MustCompile(`^\s*[A-Za-z]\s*(?:[.)、:：-]|[)）])?\s*`)
)

const maxChoiceOptions = 26

// NormalizeChoiceAnswer canonicalizes a raw choice answer into a sorted,
// deduplicated label string such as "BC". Tokens are matched as label
// letters first, then against full option texts, then against option
// texts with their leading label prefix stripped. The second return is
// false when no token yields a valid label.
//
// The function is pure and deterministic for a given (answer, options)
// pair.
func NormalizeChoiceAnswer(answer string, options []string) (string, bool) {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return "", false
	}

	tokens := splitChoiceTokens(trimmed)
	validLabels := buildValidLabels(options)
	optionTexts := buildOptionTextMap(options)

	var letters []string
	for _, token := range tokens {
		if extracted := extractLettersFromToken(token, validLabels); len(extracted) > 0 {
			letters = append(letters, extracted...)
			continue
		}

		lowered := strings.ToLower(token)
		if label, ok := optionTexts[lowered]; ok {
			letters = append(letters, label)
			continue
		}

		stripped := stripOptionPrefix(token)
		if stripped != "" {
			if label, ok := optionTexts[strings.ToLower(stripped)]; ok {
				letters = append(letters, label)
			}
		}
	}

	if len(letters) == 0 {
		return "", false
	}

	seen := make(map[string]struct{}, len(letters))
	var unique []string
	for _, letter := range letters {
		if _, ok := validLabels[letter]; !ok {
			continue
		}
		if _, dup := seen[letter]; dup {
			continue
		}
		seen[letter] = struct{}{}
		unique = append(unique, letter)
	}

	if len(unique) == 0 {
		return "", false
	}

	sort.Strings(unique)
	return strings.Join(unique, ""), true
}

func splitChoiceTokens(value string) []string {
	parts := choiceSplitPattern.Split(value, -1)
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tokens = append(tokens, trimmed)
		}
	}
	if len(tokens) == 0 {
		return []string{strings.TrimSpace(value)}
	}
	return tokens
}

// buildValidLabels assigns labels positionally: option 0 is "A", option 1
// is "B", capped at 26 options. Without options every letter is valid.
func buildValidLabels(options []string) map[string]struct{} {
	count := len(options)
	if count == 0 || count > maxChoiceOptions {
		count = maxChoiceOptions
	}
	labels := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		labels[string(rune('A'+i))] = struct{}{}
	}
	return labels
}

func buildOptionTextMap(options []string) map[string]string {
	if len(options) == 0 {
		return nil
	}
	mapping := make(map[string]string, len(options)*2)
	for i, raw := range options {
		if i >= maxChoiceOptions {
			break
		}
		label := string(rune('A' + i))
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		mapping[strings.ToLower(text)] = label
		if stripped := stripOptionPrefix(text); stripped != "" {
			lowered := strings.ToLower(stripped)
			if _, exists := mapping[lowered]; !exists {
				mapping[lowered] = label
			}
		}
	}
	return mapping
}

func stripOptionPrefix(value string) string {
	return strings.TrimSpace(optionPrefixPattern.ReplaceAllString(value, ""))
}

// extractLettersFromToken treats the token's alphabetic characters as a
// label sequence. A lone letter passes on its own; longer sequences only
// count when every character is a valid label.
func extractLettersFromToken(token string, validLabels map[string]struct{}) []string {
	var letters []string
	for _, r := range token {
		if unicode.IsLetter(r) {
			letters = append(letters, strings.ToUpper(string(r)))
		}
	}
	if len(letters) == 0 {
		return nil
	}

	if len(letters) == 1 {
		if _, ok := validLabels[letters[0]]; ok {
			return letters
		}
		return nil
	}

	for _, letter := range letters {
		if _, ok := validLabels[letter]; !ok {
			return nil
		}
	}

	seen := make(map[string]struct{}, len(letters))
	var ordered []string
	for _, letter := range letters {
		if _, dup := seen[letter]; dup {
			continue
		}
		seen[letter] = struct{}{}
		ordered = append(ordered, letter)
	}
	return ordered
}
