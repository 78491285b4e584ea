// Package scope decides whether free text belongs to an academic or
// learning context. It is a cheap local pre-filter applied before any
// model call, not a content-safety system.
package scope

import "strings"

// denied lists substrings that mark text as off-topic for tutoring.
// Matching is case-insensitive substring containment.
var denied = []string{
	"game", "minecraft", "roblox", "valorant", "fortnite",
	"roleplay", "story", "fanfic", "meme", "joke",
	"dating", "pickup", "flirt",
	"hack", "cheat code", "aimbot",
}

// Academic reports whether text looks like academic or learning content.
// Empty text is considered academic so that blank optional fields never
// trip the guardrail.
func Academic(text string) bool {
	t := strings.ToLower(text)
	for _, word := range denied {
		if strings.Contains(t, word) {
			return false
		}
	}
	return true
}
