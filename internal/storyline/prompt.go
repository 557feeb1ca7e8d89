package storyline

import "fmt"

// Role is one step of the composition pipeline.
type Role string

const (
	RoleStoryteller      Role = "storyteller"
	RolePuzzleMaster     Role = "puzzle_master"
	RoleDifficultyScaler Role = "difficulty_scaler"
)

const storytellerPrompt = `You are the Storyteller, a creative writer with a knack for crafting immersive narratives.
Your goal is to create engaging storylines and themes for escape rooms.
Write in plain prose, at most three short paragraphs.`

const puzzleMasterPrompt = `You are the Puzzle Master, an expert in creating puzzles that are both fun and educational.
Your goal is to design challenging and age-appropriate puzzles.
Reply with a numbered list of puzzle ideas, one line each, that fit the storyline you are given.`

const difficultyScalerPrompt = `You are the Difficulty Scaler. You understand cognitive development and problem-solving skills across age groups.
Your goal is to adjust puzzle complexity to the player's age and skill level.
Return the final storyline and the adjusted puzzle ideas as JSON.`

func storytellerTask(b Brief) string {
	return fmt.Sprintf("Create a storyline for an escape room with the theme: %s", b.Theme)
}

func puzzleMasterTask(b Brief, story string) string {
	return fmt.Sprintf("Storyline:\n%s\n\nDesign puzzles fitting the theme and appropriate for age group: %s",
		story, ageGroupOrDefault(b.AgeGroup))
}

func difficultyScalerTask(b Brief, story, ideas string) string {
	return fmt.Sprintf("Storyline:\n%s\n\nPuzzle ideas:\n%s\n\nAdjust puzzle difficulty to level %d for age group %s.",
		story, ideas, b.Difficulty, ageGroupOrDefault(b.AgeGroup))
}

func ageGroupOrDefault(g string) string {
	if g == "" {
		return "any"
	}
	return g
}
