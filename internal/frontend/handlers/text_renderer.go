package handlers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cory-johannsen/tavern/internal/frontend/telnet"
	"github.com/cory-johannsen/tavern/internal/game/action"
	"github.com/cory-johannsen/tavern/internal/game/character"
	"github.com/cory-johannsen/tavern/internal/game/combat"
	"github.com/cory-johannsen/tavern/internal/game/command"
	"github.com/cory-johannsen/tavern/internal/game/dice"
	"github.com/cory-johannsen/tavern/internal/game/inventory"
	"github.com/cory-johannsen/tavern/internal/game/quest"
	"github.com/cory-johannsen/tavern/internal/game/ruleset"
	"github.com/cory-johannsen/tavern/internal/game/session"
	"github.com/cory-johannsen/tavern/internal/narration"
)

func heading(title string) string {
	return telnet.Colorize(telnet.Bold+telnet.ColorHeading, title)
}

func wrapped(text string) string {
	return strings.Join(telnet.Wrap(text, telnet.DefaultWidth), "\n")
}

// RenderLocation formats the current location: description, the NPCs
// present with their attitude, other adventurers and the available actions.
func RenderLocation(v session.View, others []string) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(heading(v.Location.Name))
	b.WriteString("\n")
	b.WriteString(telnet.Colorize(telnet.ColorNarration, wrapped(v.Location.Description)))
	b.WriteString("\n")

	if len(v.Present) > 0 {
		b.WriteString(telnet.Colorize(telnet.Cyan, "Here:"))
		b.WriteString("\n")
		for _, n := range v.Present {
			fmt.Fprintf(&b, "  %s, %s %s(%s)%s\n",
				telnet.Colorize(telnet.ColorNPC, n.Name), n.Role,
				telnet.Dim, narration.RelationshipDescriptor(n.Relationship), telnet.Reset)
		}
	}
	if len(others) > 0 {
		b.WriteString(telnet.Colorf(telnet.Green, "Also here: %s", strings.Join(others, ", ")))
		b.WriteString("\n")
	}
	if len(v.Location.Actions) > 0 {
		b.WriteString(telnet.Colorf(telnet.ColorSystem, "You can: %s", strings.Join(v.Location.Actions, ", ")))
		b.WriteString("\n")
	}
	if v.Combat != nil {
		b.WriteString(RenderCombat(v.Combat))
	}
	return b.String()
}

// RenderStatus formats the character sheet.
func RenderStatus(v session.View) string {
	c := v.Character
	var b strings.Builder
	b.WriteString(heading(fmt.Sprintf("%s, level %d %s", c.Name, c.Level, className(c))))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Health: %s   Gold: %s   AC: %d   Attack: %+d\n",
		healthText(c.Health, c.MaxHealth),
		telnet.Colorf(telnet.ColorGold, "%d", c.Gold),
		c.ArmorClass(), c.AttackModifier())
	fmt.Fprintf(&b, "  Experience: %d/%d\n", c.Experience, c.ExperienceToNext)

	b.WriteString("  ")
	for i, a := range character.Abilities {
		if i > 0 {
			b.WriteString("  ")
		}
		score := c.Abilities.Score(a)
		fmt.Fprintf(&b, "%s %2d (%+d)", abilityAbbrev(a), score, character.AbilityModifier(score))
	}
	b.WriteString("\n")

	b.WriteString(telnet.Colorize(telnet.Cyan, "  Skills:"))
	b.WriteString("\n")
	for _, s := range character.Skills {
		fmt.Fprintf(&b, "    %-14s %+d\n", titleWord(string(s)), v.Skills[s])
	}
	if len(v.Party) > 0 {
		fmt.Fprintf(&b, "  Party: %d companion(s). Type 'party' for details.\n", len(v.Party))
	}
	return b.String()
}

func className(c character.Character) string {
	if c.ClassName != "" {
		return c.ClassName
	}
	return titleWord(c.Class)
}

func healthText(hp, max int) string {
	color := telnet.ColorSuccess
	switch {
	case hp*4 <= max:
		color = telnet.ColorFailure
	case hp*2 <= max:
		color = telnet.Yellow
	}
	return telnet.Colorf(color, "%d/%d", hp, max)
}

func abilityAbbrev(a character.Ability) string {
	s := strings.ToUpper(string(a))
	if len(s) > 3 {
		s = s[:3]
	}
	return s
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}

// RenderInventory formats gold and carried items.
func RenderInventory(v session.View) string {
	var b strings.Builder
	b.WriteString(heading("Inventory"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Gold: %s\n", telnet.Colorf(telnet.ColorGold, "%d", v.Character.Gold))
	if len(v.Inventory) == 0 {
		b.WriteString("  You carry nothing else.\n")
		return b.String()
	}
	for _, it := range v.Inventory {
		kind := ""
		if it.Kind != "" {
			kind = telnet.Colorf(telnet.ColorSystem, " (%s)", it.Kind)
		}
		fmt.Fprintf(&b, "  %s x%d%s\n", it.Name, it.Count, kind)
	}
	return b.String()
}

// RenderQuests formats active quests with progress, then completed quests.
func RenderQuests(v session.View, completed []*quest.Quest) string {
	var b strings.Builder
	b.WriteString(heading("Quests"))
	b.WriteString("\n")
	if len(v.Quests) == 0 && len(completed) == 0 {
		b.WriteString("  You have no quests. Try 'gossip' to hear what the locals are saying.\n")
		return b.String()
	}
	for _, q := range v.Quests {
		fmt.Fprintf(&b, "  %s [%s] %d/%d\n", telnet.Colorize(telnet.BrightWhite, q.Title), q.Type, q.Count, q.Goal)
	}
	for _, q := range completed {
		fmt.Fprintf(&b, "  %s %s\n", telnet.Colorize(telnet.Dim, q.Title), telnet.Colorize(telnet.ColorSuccess, "(completed)"))
	}
	return b.String()
}

// RenderRumors formats the rumors heard but not yet accepted.
func RenderRumors(rumors []*quest.Quest) string {
	var b strings.Builder
	b.WriteString(heading("Rumors"))
	b.WriteString("\n")
	if len(rumors) == 0 {
		b.WriteString("  You have not heard any rumors.\n")
		return b.String()
	}
	for _, q := range rumors {
		fmt.Fprintf(&b, "  %s: %s\n", telnet.Colorize(telnet.BrightWhite, q.Title), q.Description)
		fmt.Fprintf(&b, "    Reward: %s, %d experience\n", telnet.Colorf(telnet.ColorGold, "%d gold", q.Reward.Gold), q.Reward.Experience)
	}
	b.WriteString(telnet.Colorize(telnet.ColorSystem, "  Type 'accept <title>' to take one on."))
	b.WriteString("\n")
	return b.String()
}

// RenderParty formats the companions.
func RenderParty(party []session.Companion) string {
	var b strings.Builder
	b.WriteString(heading("Party"))
	b.WriteString("\n")
	if len(party) == 0 {
		b.WriteString("  You travel alone.\n")
		return b.String()
	}
	for _, c := range party {
		fmt.Fprintf(&b, "  %s, level %d, health %s\n", c.Name, c.Level, healthText(c.Health, c.MaxHealth))
	}
	return b.String()
}

// RenderHistory formats the roll history, oldest first.
func RenderHistory(records []dice.Record) string {
	var b strings.Builder
	b.WriteString(heading("Recent rolls"))
	b.WriteString("\n")
	if len(records) == 0 {
		b.WriteString("  No dice have been rolled yet.\n")
		return b.String()
	}
	for _, r := range records {
		fmt.Fprintf(&b, "  %s %-24s %v %+d = %d", r.At.Format("15:04:05"), r.Label, r.Rolls, r.Modifier, r.Total)
		if r.Difficulty > 0 {
			verdict := telnet.Colorize(telnet.ColorFailure, "failure")
			if r.Success {
				verdict = telnet.Colorize(telnet.ColorSuccess, "success")
			}
			fmt.Fprintf(&b, " vs %d %s", r.Difficulty, verdict)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ShopEntry is one item for sale with its bartered price.
type ShopEntry struct {
	Seller string
	Item   *inventory.ItemDef
	Price  int
}

// RenderShop formats the wares on offer at the current location.
func RenderShop(entries []ShopEntry) string {
	var b strings.Builder
	b.WriteString(heading("For sale"))
	b.WriteString("\n")
	if len(entries) == 0 {
		b.WriteString("  Nobody here has anything to sell.\n")
		return b.String()
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "  %-12s %s  from %s\n", e.Item.Name, telnet.Colorf(telnet.ColorGold, "%4d gold", e.Price), e.Seller)
		if e.Item.Description != "" {
			fmt.Fprintf(&b, "    %s\n", telnet.Colorize(telnet.Dim, e.Item.Description))
		}
	}
	return b.String()
}

// RenderCombat formats the enemies of an active fight.
func RenderCombat(s *combat.Session) string {
	var b strings.Builder
	b.WriteString(telnet.Colorf(telnet.Bold+telnet.ColorFailure, "Combat, round %d", s.Round))
	b.WriteString("\n")
	for i, e := range s.Enemies {
		state := healthText(e.CurrentHP, e.MaxHP)
		if e.Defeated() {
			state = telnet.Colorize(telnet.Dim, "defeated")
		}
		fmt.Fprintf(&b, "  %d. %s (AC %d) %s\n", i+1, e.Name, e.AC, state)
	}
	return b.String()
}

// RenderResponse formats an action result: mechanical lines, then the
// narration, then any random event.
func RenderResponse(r action.Response) string {
	var parts []string
	for _, l := range r.Lines {
		parts = append(parts, telnet.Colorize(responseColor(r, l), l))
	}
	if r.Narration != "" {
		color := telnet.ColorNarration
		if r.NarrationErr != nil {
			color = telnet.ColorSystem
		}
		parts = append(parts, telnet.Colorize(color, wrapped(r.Narration)))
	}
	if r.Event != "" {
		parts = append(parts, telnet.Colorize(telnet.Italic+telnet.Yellow, wrapped(r.Event)))
	}
	return strings.Join(parts, "\n\n")
}

func responseColor(r action.Response, l string) string {
	switch {
	case r.Pending != nil:
		return telnet.BrightYellow
	case r.End != nil && strings.HasPrefix(l, "Victory"):
		return telnet.ColorSuccess
	case r.End != nil && !r.End.Victory:
		return telnet.ColorFailure
	case r.Check != nil && r.Check.Success:
		return telnet.ColorSuccess
	case r.Check != nil:
		return telnet.ColorFailure
	}
	return telnet.ColorSystem
}

// RenderLevelUps formats level gains granted by a reward.
func RenderLevelUps(ups []character.LevelUp) []string {
	out := make([]string, 0, len(ups))
	for _, up := range ups {
		out = append(out, telnet.Colorf(telnet.Bold+telnet.ColorSuccess,
			"Level up! You are now level %d with %d max health.", up.Level, up.MaxHealth))
	}
	return out
}

// RenderCompletion formats a finished quest and its reward.
func RenderCompletion(c session.Completion) []string {
	r := c.Quest.Reward
	reward := fmt.Sprintf("%d gold and %d experience", r.Gold, r.Experience)
	if r.Item != "" {
		reward += " and a " + r.Item
	}
	lines := []string{telnet.Colorf(telnet.ColorSuccess, "Quest complete: %s! You receive %s.", c.Quest.Title, reward)}
	return append(lines, RenderLevelUps(c.LevelUps)...)
}

// RenderHelp formats the command list grouped by category.
func RenderHelp(reg *command.Registry) string {
	byCat := reg.CommandsByCategory()
	var b strings.Builder
	b.WriteString(heading("Commands"))
	b.WriteString("\n")
	for _, cat := range command.Categories() {
		cmds := byCat[cat]
		if len(cmds) == 0 {
			continue
		}
		b.WriteString(telnet.Colorize(telnet.Cyan, titleWord(cat)+":"))
		b.WriteString("\n")
		for _, c := range cmds {
			usage := c.Name
			if c.Usage != "" {
				usage += " " + c.Usage
			}
			fmt.Fprintf(&b, "  %s %s\n", telnet.Colorf(telnet.Green, "%-22s", usage), c.Help)
		}
	}
	b.WriteString(telnet.Colorize(telnet.ColorSystem, "Anything else you type is treated as an action or speech."))
	b.WriteString("\n")
	return b.String()
}

// RenderWho formats the adventurers at a location.
func RenderWho(location string, accounts []string) string {
	names := append([]string(nil), accounts...)
	sort.Strings(names)
	return fmt.Sprintf("%s\n  %s\n", heading("Adventurers at "+location), strings.Join(names, ", "))
}

// FormatClassOption formats a class for the creation menu.
func FormatClassOption(i int, c *ruleset.Class) string {
	return fmt.Sprintf("  %s. %s  %s\n     %s",
		telnet.Colorf(telnet.Green, "%d", i),
		telnet.Colorize(telnet.BrightWhite, c.Name),
		telnet.Colorf(telnet.ColorSystem, "(hit die %d, %d gold)", c.HitDie, c.StartingGold),
		c.Description)
}

// FormatSaveSummary formats one save slot for the selection list.
func FormatSaveSummary(slot string, snap session.Snapshot) string {
	c := snap.Character
	return fmt.Sprintf("%s: %s, level %d %s at %s (saved %s)",
		telnet.Colorize(telnet.BrightWhite, slot), c.Name, c.Level, className(*c), snap.Location,
		snap.SavedAt.Format("2006-01-02 15:04"))
}
