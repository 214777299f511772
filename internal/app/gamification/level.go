package gamification

import "github.com/tether-app/tether/internal/domain"

// XPPerLevel is the flat XP cost of every level.
const XPPerLevel = 100

// XP bonuses granted on top of catalog rewards.
const (
	XPAchievementUnlockBonus   = 100
	XPChallengeCompletionBonus = 50
)

// levelTitles maps a minimum level to a display title. Ascending order;
// the largest MinLevel at or below the user's level wins.
var levelTitles = []struct {
	MinLevel int
	Title    string
}{
	{1, "New Orbit"},
	{3, "Circle Keeper"},
	{5, "Connector"},
	{8, "Social Gardener"},
	{12, "Constellation Builder"},
	{18, "Gravity Well"},
	{25, "Tether Legend"},
}

// CalculateLevel derives the full Level tuple from accumulated XP.
// Pure function: level = totalXP/100 + 1, never below 1. Negative input is
// a caller error and is clamped to 0.
func CalculateLevel(totalXP int) domain.Level {
	if totalXP < 0 {
		totalXP = 0
	}
	level := totalXP/XPPerLevel + 1
	return domain.Level{
		Level:         level,
		Title:         TitleForLevel(level),
		CurrentXP:     totalXP % XPPerLevel,
		XPToNextLevel: XPPerLevel,
		TotalXP:       totalXP,
	}
}

// TitleForLevel returns the title whose MinLevel is the largest value at or
// below the given level. Levels below the table's first entry get the first
// title.
func TitleForLevel(level int) string {
	title := levelTitles[0].Title
	for _, t := range levelTitles {
		if level < t.MinLevel {
			break
		}
		title = t.Title
	}
	return title
}
