package captions

import (
	"strings"

	"golang.org/x/text/language"
)

// SelectTrack picks the best track for the preferred languages, in order.
// An exact tag match beats a base-language match ("en-US" for "en"), and an
// uploaded track beats an auto-generated one at the same level.
func SelectTrack(tracks []Track, preferred []string) (Track, bool) {
	for _, pref := range preferred {
		pref = strings.TrimSpace(pref)
		if pref == "" {
			continue
		}
		best, bestScore := Track{}, 0
		for _, track := range tracks {
			score := matchScore(track, pref)
			if score > bestScore {
				best, bestScore = track, score
			}
		}
		if bestScore > 0 {
			return best, true
		}
	}
	return Track{}, false
}

// MatchesLanguage reports whether code refers to the same base language as want.
func MatchesLanguage(code, want string) bool {
	if strings.EqualFold(strings.TrimSpace(code), strings.TrimSpace(want)) {
		return true
	}
	a, errA := language.Parse(code)
	b, errB := language.Parse(want)
	if errA != nil || errB != nil {
		return false
	}
	baseA, confA := a.Base()
	baseB, confB := b.Base()
	if confA == language.No || confB == language.No {
		return false
	}
	return baseA == baseB
}

func matchScore(track Track, pref string) int {
	score := 0
	switch {
	case strings.EqualFold(track.LanguageCode, pref):
		score = 4
	case MatchesLanguage(track.LanguageCode, pref):
		score = 2
	default:
		return 0
	}
	if !track.Generated() {
		score++
	}
	return score
}
