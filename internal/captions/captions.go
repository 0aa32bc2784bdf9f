// Package captions produces the social caption pack attached to a finished
// campaign: platform captions plus hashtags, with a deterministic local
// fallback for every way a provider's text generation can degrade.
package captions

import (
	"encoding/json"
	"strings"
)

// Pack bundles platform captions and hashtags for one campaign.
type Pack struct {
	Captions map[string]string `json:"captions"`
	Hashtags []string          `json:"hashtags"`
}

const (
	maxBioLen      = 160
	truncatedLen   = 157
	defaultPetName = "this pup"
)

// fallbackHashtags is the fixed hashtag list used whenever a provider
// response omits usable hashtags. Order matters for exact-match tests.
var fallbackHashtags = []string{
	"#AdoptDontShop",
	"#RescueDog",
	"#ForeverHome",
	"#ShelterDog",
	"#AdoptMe",
}

// Fallback builds the deterministic caption pack from the animal's name and
// bio alone. Bios longer than 160 runes are cut to 157 runes plus an
// ellipsis marker so captions stay platform-sized.
func Fallback(petName, petBio string) *Pack {
	safeBio := petBio
	if runes := []rune(petBio); len(runes) > maxBioLen {
		safeBio = string(runes[:truncatedLen]) + "..."
	}
	name := petName
	if name == "" {
		name = defaultPetName
	}
	return &Pack{
		Captions: map[string]string{
			"instagram": "Meet " + name + "! " + safeBio + " Tap to give this sweetheart a forever home.",
			"tiktok":    name + " checking in! " + safeBio + " Share to help me find my humans. #AdoptDontShop",
			"facebook":  name + " is ready for their forever couch! " + safeBio + " Message us if you want to meet this lovable buddy.",
		},
		Hashtags: append([]string(nil), fallbackHashtags...),
	}
}

// providerPayload is the JSON object both text providers are asked to return.
type providerPayload struct {
	Instagram string   `json:"instagram"`
	TikTok    string   `json:"tiktok"`
	Facebook  string   `json:"facebook"`
	Hashtags  []string `json:"hashtags"`
}

// Decode applies the graduated degrade policy to raw provider text:
// empty text, invalid JSON, or a payload with no captions at all yields the
// full fallback pack; real captions with missing or empty hashtags keep the
// captions and substitute only the fallback hashtags. Substitution is
// all-or-nothing per piece, never a ragged mix.
func Decode(raw, petName, petBio string) *Pack {
	text := extractJSONFragment(raw)
	if text == "" {
		return Fallback(petName, petBio)
	}

	var parsed providerPayload
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return Fallback(petName, petBio)
	}

	if parsed.Instagram == "" && parsed.TikTok == "" && parsed.Facebook == "" {
		return Fallback(petName, petBio)
	}

	pack := &Pack{
		Captions: map[string]string{},
		Hashtags: cleanHashtags(parsed.Hashtags),
	}
	if parsed.Instagram != "" {
		pack.Captions["instagram"] = parsed.Instagram
	}
	if parsed.TikTok != "" {
		pack.Captions["tiktok"] = parsed.TikTok
	}
	if parsed.Facebook != "" {
		pack.Captions["facebook"] = parsed.Facebook
	}
	if len(pack.Hashtags) == 0 {
		pack.Hashtags = Fallback(petName, petBio).Hashtags
	}
	return pack
}

func cleanHashtags(tags []string) []string {
	var cleaned []string
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	return cleaned
}

// extractJSONFragment tolerates model output wrapped in markdown code fences
// or surrounding prose and returns the inner JSON object text.
func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
