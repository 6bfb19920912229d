package narration

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cory-johannsen/tavern/internal/game/character"
	"github.com/cory-johannsen/tavern/internal/game/quest"
)

var abilityLabels = []struct {
	ability character.Ability
	label   string
}{
	{character.Strength, "STR"},
	{character.Dexterity, "DEX"},
	{character.Constitution, "CON"},
	{character.Intelligence, "INT"},
	{character.Wisdom, "WIS"},
	{character.Charisma, "CHA"},
}

func signed(n int) string {
	if n >= 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}

// SystemPrompt returns the system prompt for addressee: an NPC persona when
// addressee names an NPC in view, the game master otherwise.
func SystemPrompt(addressee Addressee, view View) string {
	if addressee != Narrator {
		if n, ok := view.NPC(string(addressee)); ok {
			return npcPrompt(n, view)
		}
	}
	return gameMasterPrompt(view)
}

func npcPrompt(n NPCView, view View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a %s in a fantasy RPG tavern game.\n\n", n.Name, n.Role)
	b.WriteString("Character traits:\n")
	fmt.Fprintf(&b, "- Role: %s\n", n.Role)
	fmt.Fprintf(&b, "- Personality: %s\n", orDefault(n.Dialogue, "mysterious"))
	fmt.Fprintf(&b, "- Relationship with player: %s (%d)\n", RelationshipDescriptor(n.Relationship), n.Relationship)
	fmt.Fprintf(&b, "- Location: %s\n\n", n.Location)
	b.WriteString("Game context:\n")
	fmt.Fprintf(&b, "- Player level: %d\n", view.Character.Level)
	fmt.Fprintf(&b, "- Player gold: %d\n", view.Character.Gold)
	fmt.Fprintf(&b, "- Current location: %s\n\n", view.Location.Name)
	b.WriteString(`Guidelines:
- Respond in character, staying true to your personality
- Provide detailed, immersive responses (4-8 sentences)
- React to the player's actions and to your relationship with them
- If the player asks about quests, mention any available quests naturally
- If you sell goods, mention your wares when appropriate
- Never state dice results or change numbers; the game engine owns them`)
	return b.String()
}

func gameMasterPrompt(view View) string {
	c := view.Character
	var b strings.Builder
	b.WriteString("You are the Game Master for a fantasy RPG adventure using D&D-style dice mechanics. ")
	b.WriteString("The player can do anything: explore, talk, fight, trade or quest.\n\n")
	b.WriteString("CURRENT GAME STATE:\n")
	fmt.Fprintf(&b, "- Player: %s (%s), Level %d, %d/%d HP, %d gold\n",
		orDefault(c.Name, "Adventurer"), orDefault(c.ClassName, c.Class), c.Level, c.Health, c.MaxHealth, c.Gold)
	for _, a := range abilityLabels {
		score := c.Abilities.Score(a.ability)
		fmt.Fprintf(&b, "- %s: %d (%s)\n", a.label, score, signed(character.AbilityModifier(score)))
	}
	for _, s := range character.Skills {
		fmt.Fprintf(&b, "- %s: %s\n", s, signed(view.Skills[s]))
	}
	fmt.Fprintf(&b, "- Location: %s - %s\n", view.Location.Name, view.Location.Description)
	if view.Combat != nil {
		var foes []string
		for _, e := range view.Combat.Enemies {
			foes = append(foes, fmt.Sprintf("%s (%d/%d HP)", e.Name, e.CurrentHP, e.MaxHP))
		}
		turn := "Enemy Turn"
		if view.Combat.PlayerTurn {
			turn = "Player Turn"
		}
		fmt.Fprintf(&b, "- IN COMBAT: %s\n- Round %d, %s\n", strings.Join(foes, ", "), view.Combat.Round, turn)
	}
	fmt.Fprintf(&b, "- Active Quests: %s\n", questSummary(view.Quests))
	fmt.Fprintf(&b, "- Inventory: %s\n", inventorySummary(view.Inventory))
	fmt.Fprintf(&b, "- Party: %s\n", partySummary(view.Party))
	if len(view.Present) > 0 {
		names := make([]string, 0, len(view.Present))
		for _, n := range view.Present {
			names = append(names, fmt.Sprintf("%s (%s)", n.Name, n.Role))
		}
		fmt.Fprintf(&b, "- Present here: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "\nKNOWN NPCS: %s\n\n", npcRoster(view))
	b.WriteString(`DICE MECHANICS:
Skill checks are 1d20 plus the player's modifier against a difficulty of
8-10 (easy), 12-15 (medium), 16-18 (hard) or 19-20 (very hard). Attacks use
the enemy's armor class. The game engine rolls every die and applies every
result before you are asked to narrate.

YOUR ROLE:
- Narrate the player's actions in an immersive, detailed way (5-10 sentences)
- Describe the world, NPCs and consequences of what already happened
- Never invent dice results, damage, gold or experience
- End with what the player sees or experiences now`)
	return b.String()
}

// DifficultyPrompt asks for a single DC for skill.
func DifficultyPrompt(skill string, view View) string {
	return fmt.Sprintf(
		"The player (level %d) at %s attempts a %s check. "+
			"Reply with a single number between 8 and 20: the difficulty class for this check.",
		view.Character.Level, view.Location.Name, skill)
}

// VariationPrompt asks for a JSON retelling of base that keeps its type and reward.
func VariationPrompt(base quest.Quest) string {
	reward, _ := json.Marshal(base.Reward)
	return fmt.Sprintf(`You are a quest generator for a fantasy RPG game. Generate a creative variation of this quest:

Original Quest: %s
Description: %s
Type: %s

Create a unique variation with a new title on a similar theme, a new 2-3
sentence description, and the same type and rewards.

Respond in JSON format: {"title": "...", "description": "...", "type": "%s", "reward": %s}`,
		base.Title, base.Description, base.Type, base.Type, reward)
}

// RandomEventPrompt asks for a one or two sentence happening at the player's location.
func RandomEventPrompt(view View) string {
	return fmt.Sprintf(
		"Generate a random, unpredictable event for a fantasy RPG game. The player is at %s, level %d. "+
			"Maybe they find something, meet someone, or something unexpected occurs. "+
			"Keep it brief (1-2 sentences) and do not change the player's stats, gold or items.",
		view.Location.Name, view.Character.Level)
}

func questSummary(qs []QuestView) string {
	if len(qs) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(qs))
	for _, q := range qs {
		parts = append(parts, fmt.Sprintf("%s (%d/%d)", q.Title, q.Count, q.Goal))
	}
	return strings.Join(parts, ", ")
}

func inventorySummary(items []ItemView) string {
	if len(items) == 0 {
		return "empty"
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", it.Name, it.Count))
	}
	return strings.Join(parts, ", ")
}

func partySummary(party []Companion) string {
	if len(party) == 0 {
		return "alone"
	}
	parts := make([]string, 0, len(party))
	for _, c := range party {
		parts = append(parts, fmt.Sprintf("%s (level %d)", c.Name, c.Level))
	}
	return strings.Join(parts, ", ")
}

func npcRoster(view View) string {
	ids := make([]string, 0, len(view.NPCs))
	for id := range view.NPCs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		n := view.NPCs[id]
		parts = append(parts, fmt.Sprintf("%s (%s, %s)", n.Name, n.Role, RelationshipDescriptor(n.Relationship)))
	}
	return strings.Join(parts, ", ")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
