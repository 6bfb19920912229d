package session

import (
	"github.com/cory-johannsen/tavern/internal/game/character"
	"github.com/cory-johannsen/tavern/internal/game/combat"
	"github.com/cory-johannsen/tavern/internal/game/quest"
	"github.com/cory-johannsen/tavern/internal/game/world"
)

// ItemView is an inventory stack resolved to its display name.
type ItemView struct {
	ID    string
	Name  string
	Kind  string
	Count int
}

// QuestView is an active quest with its progress.
type QuestView struct {
	ID    string
	Title string
	Type  quest.Type
	Count int
	Goal  int
}

// NPCView is an NPC with its live relationship.
type NPCView struct {
	ID           string
	Name         string
	Role         string
	Location     string
	Dialogue     string
	Relationship int
}

// View is a read-only copy of the state handed to narration and display.
// Mutating a View never affects the State it was taken from.
type View struct {
	Character character.Character
	Skills    map[character.Skill]int
	Inventory []ItemView
	Party     []Companion
	Location  world.Location
	// Present lists the NPCs at the current location.
	Present []NPCView
	Quests  []QuestView
	Rumors  []string
	Combat  *combat.Session
	NPCs    map[string]NPCView
}

// NPC returns the view of npcID.
func (v View) NPC(npcID string) (NPCView, bool) {
	n, ok := v.NPCs[npcID]
	return n, ok
}

// View builds a read-only view of s.
func (s *State) View() View {
	c := *s.Character
	c.Bonuses = nil
	v := View{
		Character: c,
		Skills:    s.Character.SkillSheet(),
		Party:     append([]Companion(nil), s.Party...),
		Location:  *s.CurrentLocation(),
		Combat:    s.Combat.Clone(),
		NPCs:      make(map[string]NPCView),
	}
	for _, st := range s.Inventory.Stacks {
		iv := ItemView{ID: st.ItemID, Name: st.ItemID, Count: st.Count}
		if d, ok := s.deps.Items.Item(st.ItemID); ok {
			iv.Name, iv.Kind = d.Name, d.Kind
		}
		v.Inventory = append(v.Inventory, iv)
	}
	for _, n := range s.deps.World.NPCs() {
		nv := NPCView{
			ID: n.ID, Name: n.Name, Role: n.Role, Location: n.Location,
			Dialogue: n.Dialogue, Relationship: s.Relationship(n.ID),
		}
		v.NPCs[n.ID] = nv
		if n.Location == v.Location.ID {
			v.Present = append(v.Present, nv)
		}
	}
	for _, p := range s.Quests.Active {
		q, ok := s.Quests.Lookup(s.deps.Quests, p.QuestID)
		if !ok {
			continue
		}
		v.Quests = append(v.Quests, QuestView{ID: q.ID, Title: q.Title, Type: q.Type, Count: p.Count, Goal: q.Goal()})
	}
	for _, q := range s.Rumors() {
		v.Rumors = append(v.Rumors, q.Title)
	}
	return v
}
