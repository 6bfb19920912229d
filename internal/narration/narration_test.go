package narration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tavern/content"
	"github.com/cory-johannsen/tavern/internal/config"
	"github.com/cory-johannsen/tavern/internal/game/character"
	"github.com/cory-johannsen/tavern/internal/game/dice"
	"github.com/cory-johannsen/tavern/internal/game/quest"
	"github.com/cory-johannsen/tavern/internal/game/world"
	"github.com/cory-johannsen/tavern/internal/scripting"
)

type fakeMessenger struct {
	mu      sync.Mutex
	replies []string
	err     error
	params  []anthropic.MessageNewParams
}

func (f *fakeMessenger) New(_ context.Context, body anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.params = append(f.params, body)
	if f.err != nil {
		return nil, f.err
	}
	reply := ""
	if len(f.replies) > 0 {
		reply = f.replies[0]
		f.replies = f.replies[1:]
	}
	return &anthropic.Message{Content: []anthropic.ContentBlockUnion{{Type: "text", Text: reply}}}, nil
}

func testCfg() config.NarratorConfig {
	return config.NarratorConfig{Model: "test-model", MaxTokens: 100, HistoryKeep: 20, HistorySend: 15}
}

func testView() View {
	greg := NPCView{ID: "greg", Name: "Old Greg", Role: "tavernkeeper", Location: "tavern", Dialogue: "Welcome!", Relationship: 55}
	return View{
		Character: character.Character{Name: "Aria", ClassName: "Fighter", Level: 2, Health: 30, MaxHealth: 32, Gold: 40},
		Skills:    map[character.Skill]int{character.Persuasion: 1},
		Location:  world.Location{ID: "tavern", Name: "The Tavern", Description: "A cozy tavern."},
		Present:   []NPCView{greg},
		NPCs:      map[string]NPCView{"greg": greg},
	}
}

func TestParseDifficulty(t *testing.T) {
	cases := map[string]int{
		"This requires a DC 14 check.":      14,
		"Set the difficulty at 8":           8,
		"20":                                20,
		"DC: 9, or maybe 15":                9,
		"Roll against 25, no wait, 18":      18,
		"difficulty is 7 or 12 for novices": 12,
	}
	for text, want := range cases {
		got, err := ParseDifficulty(text)
		require.NoError(t, err, text)
		assert.Equal(t, want, got, text)
	}
	for _, text := range []string{"", "easy", "DC 7", "it is 21", "100"} {
		_, err := ParseDifficulty(text)
		assert.True(t, errors.Is(err, ErrMalformed), text)
	}
}

func TestParseDifficulty_AlwaysInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 99).Draw(rt, "n")
		got, err := ParseDifficulty(fmt.Sprintf("The DC is %d.", n))
		if n >= 8 && n <= 20 {
			require.NoError(rt, err)
			assert.Equal(rt, n, got)
			return
		}
		assert.Error(rt, err)
	})
}

func TestParseVariation(t *testing.T) {
	v, err := ParseVariation("Sure! Here it is:\n```json\n" +
		`{"title": "Highway Wolves", "description": "Raiders prowl the road.", "type": "kill", "reward": {"gold": 100, "exp": 50}}` +
		"\n```")
	require.NoError(t, err)
	assert.Equal(t, quest.Variation{
		Title: "Highway Wolves", Description: "Raiders prowl the road.", Type: quest.TypeKill,
		Reward: quest.Reward{Gold: 100, Experience: 50},
	}, v)

	_, err = ParseVariation("no json here")
	assert.True(t, errors.Is(err, ErrMalformed))
	_, err = ParseVariation("{not: json}")
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestRelationshipDescriptor(t *testing.T) {
	cases := map[int]string{
		100: "very friendly", 51: "very friendly", 50: "friendly", 21: "friendly",
		20: "neutral", 0: "neutral", -19: "neutral", -20: "unfriendly",
		-49: "unfriendly", -50: "hostile", -100: "hostile",
	}
	for n, want := range cases {
		assert.Equal(t, want, RelationshipDescriptor(n), "relationship %d", n)
	}
}

func TestConversations_KeepAndSend(t *testing.T) {
	c := NewConversations(20, 15)
	for i := 0; i < 25; i++ {
		c.Append("greg", RoleUser, fmt.Sprintf("m%d", i))
	}
	assert.Equal(t, 20, c.Len("greg"))
	recent := c.Recent("greg")
	require.Len(t, recent, 15)
	assert.Equal(t, "m10", recent[0].Content)
	assert.Equal(t, "m24", recent[14].Content)
	assert.Empty(t, c.Recent(Narrator))

	c.Reset()
	assert.Equal(t, 0, c.Len("greg"))
}

func TestSystemPrompt(t *testing.T) {
	v := testView()
	npc := SystemPrompt("greg", v)
	assert.Contains(t, npc, "You are Old Greg, a tavernkeeper")
	assert.Contains(t, npc, "very friendly (55)")

	gm := SystemPrompt(Narrator, v)
	assert.Contains(t, gm, "Game Master")
	assert.Contains(t, gm, "Aria (Fighter), Level 2, 30/32 HP, 40 gold")
	assert.Contains(t, gm, "persuasion: +1")
	assert.Contains(t, gm, "Old Greg (tavernkeeper, very friendly)")

	assert.Equal(t, gm, SystemPrompt("stranger", v), "unknown addressee falls back to the narrator")
}

func TestClaude_NarrateKeepsHistoryPerAddressee(t *testing.T) {
	fake := &fakeMessenger{replies: []string{"Greg nods.", "Greg laughs.", "The fire crackles."}}
	c := newClaude(fake, testCfg(), zap.NewNop())
	ctx := context.Background()

	got, err := c.Narrate(ctx, "hello", "greg", testView())
	require.NoError(t, err)
	assert.Equal(t, "Greg nods.", got)
	_, err = c.Narrate(ctx, "tell a joke", "greg", testView())
	require.NoError(t, err)
	_, err = c.Narrate(ctx, "look around", Narrator, testView())
	require.NoError(t, err)

	require.Len(t, fake.params, 3)
	assert.Len(t, fake.params[0].Messages, 1)
	assert.Len(t, fake.params[1].Messages, 3, "two prior greg messages plus the request")
	assert.Len(t, fake.params[2].Messages, 1, "narrator thread is separate")
	assert.Equal(t, anthropic.MessageParamRoleAssistant, fake.params[1].Messages[1].Role)
	assert.Equal(t, "tell a joke", fake.params[1].Messages[2].Content[0].OfText.Text)
	assert.Contains(t, fake.params[0].System[0].Text, "You are Old Greg")
	assert.Equal(t, anthropic.Model("test-model"), fake.params[0].Model)
	assert.Equal(t, int64(100), fake.params[0].MaxTokens)
	assert.Equal(t, 4, c.Conversations().Len("greg"))
}

func TestClaude_FailureLeavesHistoryUntouched(t *testing.T) {
	fake := &fakeMessenger{err: errors.New("overloaded")}
	c := newClaude(fake, testCfg(), zap.NewNop())
	_, err := c.Narrate(context.Background(), "hello", "greg", testView())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overloaded")
	assert.Equal(t, 0, c.Conversations().Len("greg"))
}

func TestClaude_EmptyReplyIsMalformed(t *testing.T) {
	c := newClaude(&fakeMessenger{replies: []string{"   "}}, testCfg(), zap.NewNop())
	_, err := c.Narrate(context.Background(), "hello", Narrator, testView())
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestClaude_Proposals(t *testing.T) {
	fake := &fakeMessenger{replies: []string{
		"I'd say DC 15.",
		`{"title": "The Whispering Spire", "description": "Voices echo.", "type": "explore", "reward": {"gold": 75, "exp": 40, "item": "scroll"}}`,
		"A raven lands on the sill.",
	}}
	c := newClaude(fake, testCfg(), zap.NewNop())
	ctx := context.Background()

	dc, err := c.ProposeDifficulty(ctx, "stealth", testView())
	require.NoError(t, err)
	assert.Equal(t, 15, dc)

	base := quest.Quest{ID: "tower_quest", Title: "Ancient Tower", Type: quest.TypeExplore,
		Reward: quest.Reward{Gold: 75, Experience: 40, Item: "scroll"}}
	v, err := c.ProposeQuestVariation(ctx, base)
	require.NoError(t, err)
	assert.NoError(t, v.Validate(&base))
	assert.Contains(t, fake.params[1].System[0].Text, `"type": "explore"`)

	ev, err := c.RandomEvent(ctx, testView())
	require.NoError(t, err)
	assert.Equal(t, "A raven lands on the sill.", ev)
	assert.Equal(t, 0, c.Conversations().Len(Narrator), "proposals are not conversation turns")
}

func TestNewClaude_RequiresAPIKey(t *testing.T) {
	_, err := NewClaude(testCfg(), zap.NewNop())
	assert.True(t, errors.Is(err, ErrNoAPIKey))

	cfg := testCfg()
	cfg.APIKey = "sk-test"
	c, err := NewClaude(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func offlineRules(t *testing.T) *scripting.Rules {
	t.Helper()
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), zap.NewNop())
	mgr := scripting.NewManager(roller, zap.NewNop())
	t.Cleanup(mgr.Close)
	require.NoError(t, mgr.Load(scripting.RulesSet, content.Default(), "scripts", 0))
	return scripting.NewRules(mgr)
}

func TestOffline(t *testing.T) {
	o := NewOffline(offlineRules(t))
	ctx := context.Background()
	v := testView()

	dc, err := o.ProposeDifficulty(ctx, "stealth", v)
	require.NoError(t, err)
	assert.Equal(t, 12, dc)

	_, err = o.ProposeQuestVariation(ctx, quest.Quest{ID: "x"})
	assert.True(t, errors.Is(err, ErrNoVariation))

	line, err := o.Narrate(ctx, "Order an ale", Narrator, v)
	require.NoError(t, err)
	assert.Equal(t, "You order an ale. The Tavern: A cozy tavern. Old Greg is here.", line)

	line, err = o.Narrate(ctx, "hi", "greg", v)
	require.NoError(t, err)
	assert.Contains(t, line, "Old Greg smiles warmly.")

	ev, err := o.RandomEvent(ctx, v)
	require.NoError(t, err)
	assert.NotEmpty(t, ev)
}

func TestOffline_NoRules(t *testing.T) {
	o := NewOffline(nil)
	_, err := o.ProposeDifficulty(context.Background(), "stealth", testView())
	assert.True(t, errors.Is(err, ErrMalformed))
	ev, err := o.RandomEvent(context.Background(), testView())
	require.NoError(t, err)
	assert.Empty(t, ev)
}

func TestMock_RecordsAndInjects(t *testing.T) {
	m := &Mock{}
	ctx := context.Background()
	got, err := m.Narrate(ctx, "hi", "greg", testView())
	require.NoError(t, err)
	assert.Equal(t, "narrated: hi", got)
	dc, err := m.ProposeDifficulty(ctx, "stealth", testView())
	require.NoError(t, err)
	assert.Equal(t, 12, dc)

	m.Err = errors.New("down")
	_, err = m.RandomEvent(ctx, testView())
	assert.Error(t, err)

	require.Len(t, m.Calls(), 3)
	assert.Equal(t, Addressee("greg"), m.CallsTo("Narrate")[0].Addressee)
}

var _ Gateway = (*Claude)(nil)
var _ Gateway = (*Offline)(nil)
var _ Gateway = (*Mock)(nil)
