package character

const (
	// StartingExperienceToNext is the level 1 -> 2 threshold.
	StartingExperienceToNext = 100
	// LevelHealthGain is the MaxHealth increase per level.
	LevelHealthGain = 20
	// LevelBarteringBonus is the persistent bartering bonus per level.
	LevelBarteringBonus = 1
)

// LevelUp records one threshold crossing.
type LevelUp struct {
	Level     int
	MaxHealth int
}

// GrantExperience adds n experience and applies level-ups while
// Experience >= ExperienceToNext. Each crossing subtracts the threshold,
// raises Level by 1, raises MaxHealth by 20 and fully heals, grows the
// threshold to floor(threshold*1.5), and adds +1 to the bartering bonus.
//
// Postcondition: Experience < ExperienceToNext.
func (c *Character) GrantExperience(n int) []LevelUp {
	if n > 0 {
		c.Experience += n
	}
	if c.ExperienceToNext <= 0 {
		c.ExperienceToNext = StartingExperienceToNext
	}
	var ups []LevelUp
	for c.Experience >= c.ExperienceToNext {
		c.Experience -= c.ExperienceToNext
		c.Level++
		c.MaxHealth += LevelHealthGain
		c.FullHeal()
		c.ExperienceToNext = c.ExperienceToNext * 3 / 2
		c.AddBonus(Bartering, LevelBarteringBonus)
		ups = append(ups, LevelUp{Level: c.Level, MaxHealth: c.MaxHealth})
	}
	return ups
}
