package domain

import "strings"

// BuildPrompt derives the video prompt from the animal's name and bio.
// Pure function: identical inputs always yield the identical prompt.
func BuildPrompt(petName, petBio string) string {
	return strings.Join([]string{
		"Create a cinematic, 20-second adoption video for a animal named " + petName + ".",
		"Use a heartfelt POV narration that inspires viewers to adopt.",
		"Include natural lighting, gentle camera movement, and uplifting instrumental music.",
		"Animal bio: " + petBio,
	}, " ")
}
