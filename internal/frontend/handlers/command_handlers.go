package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tavern/internal/frontend/telnet"
	"github.com/cory-johannsen/tavern/internal/game/action"
	"github.com/cory-johannsen/tavern/internal/game/character"
	"github.com/cory-johannsen/tavern/internal/game/combat"
	"github.com/cory-johannsen/tavern/internal/game/command"
	"github.com/cory-johannsen/tavern/internal/game/inventory"
	"github.com/cory-johannsen/tavern/internal/game/quest"
	"github.com/cory-johannsen/tavern/internal/game/ruleset"
	"github.com/cory-johannsen/tavern/internal/game/session"
	"github.com/cory-johannsen/tavern/internal/narration"
	"github.com/cory-johannsen/tavern/internal/storage"
)

// commandContext carries all inputs a command handler needs.
type commandContext struct {
	ctx    context.Context
	ps     *playSession
	cmd    *command.Command
	parsed command.ParseResult
}

// commandResult is returned by every command handler. quit ends the game loop.
type commandResult struct {
	quit bool
}

// commandHandlerFunc is the signature for all command dispatch functions.
type commandHandlerFunc func(cc *commandContext) (commandResult, error)

// CommandHandlers returns the map from Handler constant to handler function.
// Exported so TestAllCommandHandlersAreWired can verify completeness.
func CommandHandlers() map[string]commandHandlerFunc {
	return commandHandlerMap
}

// commandHandlerMap is the single source of truth for command dispatch.
// To add a new command: add a Handler constant to commands.go AND add an entry here.
var commandHandlerMap = map[string]commandHandlerFunc{
	command.HandlerSay:         handleSay,
	command.HandlerRoll:        handleRoll,
	command.HandlerAttack:      handleAttack,
	command.HandlerRest:        handleRest,
	command.HandlerHunt:        handleHunt,
	command.HandlerInvestigate: handleInvestigate,
	command.HandlerAccept:      handleAccept,
	command.HandlerUse:         handleUse,
	command.HandlerTravel:      handleTravel,
	command.HandlerStatus:      handleStatus,
	command.HandlerInventory:   handleInventory,
	command.HandlerQuests:      handleQuests,
	command.HandlerParty:       handleParty,
	command.HandlerHistory:     handleHistory,
	command.HandlerLook:        handleLook,
	command.HandlerRumors:      handleRumors,
	command.HandlerGossip:      handleGossip,
	command.HandlerShop:        handleShop,
	command.HandlerBuy:         handleBuy,
	command.HandlerRecruit:     handleRecruit,
	command.HandlerWho:         handleWho,
	command.HandlerSave:        handleSave,
	command.HandlerLoad:        handleLoad,
	command.HandlerNew:         handleNew,
	command.HandlerHelp:        handleHelp,
	command.HandlerQuit:        handleQuit,
}

// MaxSlotLen bounds save slot names.
const MaxSlotLen = 32

var errUsage = errors.New("usage")

// Refusals shown to the player; userMessage words each one.
var (
	errNothingToSay  = errors.New("nothing to say")
	errRestInCombat  = errors.New("cannot rest during combat")
	errLeaveInCombat = errors.New("cannot travel during combat")
	errFightFirst    = errors.New("quest action during combat")
	errBadSlot       = errors.New("invalid save slot name")
)

// noTargetError is an attack with no fight and no enemy named.
type noTargetError struct {
	enemies []string
}

func (e *noTargetError) Error() string {
	return "attack needs a target among " + strings.Join(e.enemies, ", ")
}

// absentNPCError names a known NPC standing somewhere else.
type absentNPCError struct{ name string }

func (e *absentNPCError) Error() string { return e.name + " is elsewhere" }

// noSellerError is a purchase where nobody present sells the item. vendor
// and at name a seller elsewhere when there is one.
type noSellerError struct {
	item, vendor, at string
}

func (e *noSellerError) Error() string {
	return fmt.Sprintf("no seller of %s here", e.item)
}

// usage reports the command's usage line as a player-facing error.
func usage(cc *commandContext) error {
	return fmt.Errorf("%w: %s %s", errUsage, cc.cmd.Name, cc.cmd.Usage)
}

func (cc *commandContext) write(text string) error {
	return cc.ps.conn.WriteLine(text)
}

func (cc *commandContext) lines(lines ...string) error {
	return cc.ps.conn.WriteLines(lines...)
}

func (cc *commandContext) state() *session.State {
	return cc.ps.state
}

// handleSay tells the other players here and resolves the text as an action.
func handleSay(cc *commandContext) (commandResult, error) {
	if cc.parsed.RawArgs == "" {
		return commandResult{}, errNothingToSay
	}
	s := cc.state()
	cc.ps.h.players.Broadcast(s.Location, cc.ps.account,
		telnet.Colorf(telnet.BrightWhite, "%s says: %s", s.Character.Name, cc.parsed.RawArgs))
	return commandResult{}, cc.ps.freeText(cc.ctx, cc.parsed.RawArgs)
}

func handleRoll(cc *commandContext) (commandResult, error) {
	resp, err := cc.ps.resolver.ExecutePendingRoll(cc.ctx, cc.state())
	if err != nil {
		return commandResult{}, err
	}
	return commandResult{}, cc.ps.show(resp)
}

// handleAttack starts a fight against a named enemy or readies an attack
// in the current one. Both go through the action resolver.
func handleAttack(cc *commandContext) (commandResult, error) {
	s := cc.state()
	if s.Combat == nil {
		if cc.parsed.RawArgs == "" {
			var names []string
			for _, t := range s.Deps().Combat.Templates().All() {
				names = append(names, t.Name)
			}
			return commandResult{}, &noTargetError{enemies: names}
		}
		if _, ok := s.Deps().Combat.MatchEnemy(cc.parsed.RawArgs); !ok {
			return commandResult{}, fmt.Errorf("attacking %q: %w", cc.parsed.RawArgs, combat.ErrUnknownEnemy)
		}
	}
	return commandResult{}, cc.ps.freeText(cc.ctx, strings.TrimSpace("attack "+cc.parsed.RawArgs))
}

func handleRest(cc *commandContext) (commandResult, error) {
	s := cc.state()
	if s.Combat != nil {
		return commandResult{}, errRestInCombat
	}
	healed := s.Rest()
	return commandResult{}, cc.write(telnet.Colorf(telnet.ColorSuccess,
		"You rest and recover %d health (%d/%d).", healed, s.Character.Health, s.Character.MaxHealth))
}

func handleHunt(cc *commandContext) (commandResult, error) {
	s := cc.state()
	if s.Combat != nil {
		return commandResult{}, errFightFirst
	}
	res, err := s.Hunt()
	if err != nil {
		return commandResult{}, err
	}
	loc := s.CurrentLocation()
	out := []string{fmt.Sprintf("You hunt %s in %s and defeat %d. Progress on %s: %d/%d.",
		res.Quest.Target, loc.Name, res.Killed, res.Quest.Title, res.Count, res.Goal)}
	if res.Completion != nil {
		out = append(out, RenderCompletion(*res.Completion)...)
	}
	return commandResult{}, cc.lines(out...)
}

func handleInvestigate(cc *commandContext) (commandResult, error) {
	s := cc.state()
	if s.Combat != nil {
		return commandResult{}, errFightFirst
	}
	c, err := s.Investigate()
	if err != nil {
		return commandResult{}, err
	}
	out := []string{fmt.Sprintf("You search %s thoroughly.", s.CurrentLocation().Name)}
	return commandResult{}, cc.lines(append(out, RenderCompletion(c)...)...)
}

// handleAccept accepts a quest named by title or ID.
func handleAccept(cc *commandContext) (commandResult, error) {
	if cc.parsed.RawArgs == "" {
		return commandResult{}, usage(cc)
	}
	s := cc.state()
	cat := s.Deps().Quests
	text := strings.ToLower(cc.parsed.RawArgs)
	q, ok := s.Quests.FindByTitle(cat, text)
	if !ok {
		q, ok = s.Quests.Lookup(cat, text)
	}
	if !ok {
		return commandResult{}, fmt.Errorf("accepting %q: %w", cc.parsed.RawArgs, quest.ErrUnknownQuest)
	}
	out, err := s.AcceptQuest(q.ID)
	if err != nil {
		return commandResult{}, err
	}
	switch out {
	case quest.AcceptAlreadyActive:
		return commandResult{}, cc.write(fmt.Sprintf("You are already on the quest %s.", q.Title))
	case quest.AcceptAlreadyCompleted:
		return commandResult{}, cc.write(fmt.Sprintf("You have already completed %s.", q.Title))
	}
	msg := telnet.Colorf(telnet.ColorSuccess, "Quest accepted: %s.", q.Title)
	if g, ok := s.Deps().World.NPC(q.Giver); ok {
		msg += fmt.Sprintf(" %s nods approvingly.", g.Name)
	}
	return commandResult{}, cc.write(msg)
}

// matchItem resolves text to an item by ID or display name.
func matchItem(reg *inventory.Registry, text string) (*inventory.ItemDef, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if d, ok := reg.Item(text); ok {
		return d, true
	}
	for _, d := range reg.AllItems() {
		name := strings.ToLower(d.Name)
		if name == text || strings.Contains(name, text) {
			return d, true
		}
	}
	return nil, false
}

func handleUse(cc *commandContext) (commandResult, error) {
	if cc.parsed.RawArgs == "" {
		return commandResult{}, usage(cc)
	}
	s := cc.state()
	item, ok := matchItem(s.Deps().Items, cc.parsed.RawArgs)
	if !ok {
		return commandResult{}, fmt.Errorf("using %q: %w", cc.parsed.RawArgs, session.ErrUnknownItem)
	}
	healed, err := s.UseItem(item.ID)
	if err != nil {
		return commandResult{}, err
	}
	return commandResult{}, cc.write(telnet.Colorf(telnet.ColorSuccess,
		"You use the %s and recover %d health (%d/%d).", item.Name, healed, s.Character.Health, s.Character.MaxHealth))
}

func handleTravel(cc *commandContext) (commandResult, error) {
	s := cc.state()
	w := s.Deps().World
	if cc.parsed.RawArgs == "" {
		var names []string
		for _, l := range w.Locations() {
			names = append(names, fmt.Sprintf("%s (%s)", l.Name, l.ID))
		}
		return commandResult{}, cc.write("You can travel to: " + strings.Join(names, ", ") + ".")
	}
	if s.Combat != nil {
		return commandResult{}, errLeaveInCombat
	}
	loc, ok := w.FindLocation(cc.parsed.RawArgs)
	if !ok {
		return commandResult{}, fmt.Errorf("traveling to %q: %w", cc.parsed.RawArgs, session.ErrUnknownLocation)
	}
	if loc.ID == s.Location {
		return commandResult{}, cc.write(fmt.Sprintf("You are already at %s.", loc.Name))
	}
	from := s.Location
	if _, err := s.Travel(loc.ID); err != nil {
		return commandResult{}, err
	}
	name := s.Character.Name
	ps := cc.ps
	ps.h.players.Broadcast(from, ps.account, telnet.Colorf(telnet.Green, "%s leaves for %s.", name, loc.Name))
	ps.h.players.Sync(ps.account)
	ps.h.players.Broadcast(loc.ID, ps.account, telnet.Colorf(telnet.Green, "%s arrives.", name))
	return commandResult{}, cc.write(telnet.Colorf(telnet.ColorSystem, "You travel to %s.", loc.Name) + "\n" +
		RenderLocation(s.View(), ps.others()))
}

func handleStatus(cc *commandContext) (commandResult, error) {
	return commandResult{}, cc.write(RenderStatus(cc.state().View()))
}

func handleInventory(cc *commandContext) (commandResult, error) {
	return commandResult{}, cc.write(RenderInventory(cc.state().View()))
}

func handleQuests(cc *commandContext) (commandResult, error) {
	s := cc.state()
	var done []*quest.Quest
	for _, id := range s.Quests.Completed {
		if q, ok := s.Quests.Lookup(s.Deps().Quests, id); ok {
			done = append(done, q)
		}
	}
	return commandResult{}, cc.write(RenderQuests(s.View(), done))
}

func handleParty(cc *commandContext) (commandResult, error) {
	return commandResult{}, cc.write(RenderParty(cc.state().Party))
}

func handleHistory(cc *commandContext) (commandResult, error) {
	return commandResult{}, cc.write(RenderHistory(cc.state().History.Records()))
}

func handleLook(cc *commandContext) (commandResult, error) {
	return commandResult{}, cc.write(RenderLocation(cc.state().View(), cc.ps.others()))
}

func handleRumors(cc *commandContext) (commandResult, error) {
	return commandResult{}, cc.write(RenderRumors(cc.state().Rumors()))
}

// handleGossip lists the rumors heard, asking around for a new one when
// none are pending. The narrator may retell the rumor as a variation.
func handleGossip(cc *commandContext) (commandResult, error) {
	s := cc.state()
	rumors, generated, err := s.Gossip(cc.ctx, cc.ps.gateway)
	if err != nil {
		return commandResult{}, err
	}
	var out []string
	switch {
	case generated != nil:
		if generated.VariationErr != nil {
			cc.ps.logger.Debug("quest variation discarded", zap.Error(generated.VariationErr))
		}
		out = append(out, telnet.Colorf(telnet.Yellow, "You lean in and overhear a rumor: %s.", generated.Quest.Title))
	case len(rumors) == 0:
		out = append(out, "The locals have nothing new to say. You have heard every tale in town.")
		return commandResult{}, cc.lines(out...)
	}
	out = append(out, RenderRumors(rumors))
	return commandResult{}, cc.lines(out...)
}

// wares lists what the NPCs at the player's location sell.
func wares(s *session.State) []ShopEntry {
	var out []ShopEntry
	for _, n := range s.Deps().World.NPCsAt(s.Location) {
		for _, id := range n.Shop {
			item, ok := s.Deps().Items.Item(id)
			if !ok {
				continue
			}
			out = append(out, ShopEntry{Seller: n.Name, Item: item, Price: s.Price(item)})
		}
	}
	return out
}

func handleShop(cc *commandContext) (commandResult, error) {
	return commandResult{}, cc.write(RenderShop(wares(cc.state())))
}

func handleBuy(cc *commandContext) (commandResult, error) {
	if cc.parsed.RawArgs == "" {
		return commandResult{}, usage(cc)
	}
	s := cc.state()
	item, ok := matchItem(s.Deps().Items, cc.parsed.RawArgs)
	if !ok {
		return commandResult{}, fmt.Errorf("buying %q: %w", cc.parsed.RawArgs, session.ErrUnknownItem)
	}
	var seller string
	for _, n := range s.Deps().World.NPCsAt(s.Location) {
		if n.Sells(item.ID) {
			seller = n.ID
			break
		}
	}
	if seller == "" {
		e := &noSellerError{item: item.Name}
		if v, ok := s.Deps().World.Vendor(item.ID, s.Location); ok {
			if loc, ok := s.Deps().World.Location(v.Location); ok {
				e.vendor, e.at = v.Name, loc.Name
			}
		}
		return commandResult{}, e
	}
	p, err := s.Buy(seller, item.ID)
	if err != nil {
		return commandResult{}, err
	}
	return commandResult{}, cc.write(telnet.Colorf(telnet.ColorSuccess,
		"You buy a %s for %d gold. You have %d gold left.", p.Item.Name, p.Price, s.Character.Gold))
}

func handleRecruit(cc *commandContext) (commandResult, error) {
	s := cc.state()
	w := s.Deps().World
	if cc.parsed.RawArgs == "" {
		var offers []string
		for _, n := range w.NPCsAt(s.Location) {
			if n.Recruitable() && !s.InParty(n.ID) {
				offers = append(offers, fmt.Sprintf("%s (%d gold)", n.Name, n.Recruit.Cost))
			}
		}
		if len(offers) == 0 {
			return commandResult{}, cc.write("Nobody here is looking for work.")
		}
		return commandResult{}, cc.write("Available for hire: " + strings.Join(offers, ", ") + ".")
	}
	n, ok := w.FindNPC(cc.parsed.RawArgs)
	if !ok {
		n, ok = w.NPC(strings.ToLower(cc.parsed.RawArgs))
	}
	if !ok {
		return commandResult{}, fmt.Errorf("recruiting %q: %w", cc.parsed.RawArgs, session.ErrUnknownNPC)
	}
	if n.Location != s.Location {
		return commandResult{}, &absentNPCError{name: n.Name}
	}
	c, err := s.Recruit(n.ID)
	if err != nil {
		return commandResult{}, err
	}
	return commandResult{}, cc.write(telnet.Colorf(telnet.ColorSuccess,
		"%s joins your party! (level %d, %d health)", c.Name, c.Level, c.MaxHealth))
}

func handleWho(cc *commandContext) (commandResult, error) {
	s := cc.state()
	return commandResult{}, cc.write(RenderWho(s.CurrentLocation().Name, cc.ps.h.players.At(s.Location)))
}

// slotArg returns the slot named in the arguments, or the session's current slot.
func slotArg(cc *commandContext) (string, error) {
	if len(cc.parsed.Args) == 0 {
		return cc.ps.slot, nil
	}
	slot := strings.ToLower(cc.parsed.Args[0])
	if len(slot) > MaxSlotLen || strings.ContainsAny(slot, ":") {
		return "", fmt.Errorf("slot %q: %w", slot, errBadSlot)
	}
	return slot, nil
}

func handleSave(cc *commandContext) (commandResult, error) {
	slot, err := slotArg(cc)
	if err != nil {
		return commandResult{}, err
	}
	if err := cc.ps.save(cc.ctx, slot); err != nil {
		return commandResult{}, err
	}
	return commandResult{}, cc.write(telnet.Colorf(telnet.ColorSuccess, "Game saved to slot %q.", slot))
}

func handleLoad(cc *commandContext) (commandResult, error) {
	slot, err := slotArg(cc)
	if err != nil {
		return commandResult{}, err
	}
	ps := cc.ps
	st, err := ps.h.loadGame(cc.ctx, ps.account, slot)
	if err != nil {
		return commandResult{}, err
	}
	if err := ps.replace(st, slot); err != nil {
		return commandResult{}, err
	}
	return commandResult{}, cc.write(telnet.Colorf(telnet.ColorSuccess, "Loaded %s from slot %q.", st.Character.Name, slot) +
		"\n" + RenderLocation(st.View(), ps.others()))
}

// handleNew abandons the current game after confirmation and runs
// character creation. The new game gets its own slot so saved games are
// never overwritten.
func handleNew(cc *commandContext) (commandResult, error) {
	ps := cc.ps
	_ = ps.conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, "Abandon this game and create a new character? Unsaved progress is lost. [y/N]: "))
	line, err := ps.conn.ReadLine()
	if err != nil {
		return commandResult{quit: true}, fmt.Errorf("reading confirmation: %w", err)
	}
	if !isYes(line) {
		return commandResult{}, cc.write("You decide to carry on.")
	}
	st, err := ps.h.createCharacter(cc.ctx, ps.conn)
	if err != nil {
		return commandResult{quit: true}, err
	}
	if st == nil {
		return commandResult{}, cc.write("You carry on with your current adventure.")
	}
	saves, err := ps.h.listSaves(cc.ctx, ps.account)
	if err != nil {
		return commandResult{}, err
	}
	slot := ps.h.freeSlot(saves)
	if err := ps.replace(st, slot); err != nil {
		return commandResult{}, err
	}
	return commandResult{}, cc.write(RenderLocation(st.View(), ps.others()))
}

func handleHelp(cc *commandContext) (commandResult, error) {
	return commandResult{}, cc.write(RenderHelp(cc.ps.h.commands))
}

func handleQuit(cc *commandContext) (commandResult, error) {
	return commandResult{quit: true}, nil
}

func isYes(line string) bool {
	l := strings.ToLower(strings.TrimSpace(line))
	return l == "y" || l == "yes"
}

// userMessage converts err into a line for the player. known is false for
// errors that are not part of the game's vocabulary.
func userMessage(err error) (msg string, known bool) {
	switch {
	case errors.Is(err, action.ErrBusy):
		return "You are still busy with your last action.", true
	case errors.Is(err, errNothingToSay):
		return "Say what?", true
	case errors.Is(err, errRestInCombat):
		return "You cannot rest in the middle of a fight!", true
	case errors.Is(err, errLeaveInCombat):
		return "You cannot leave in the middle of a fight!", true
	case errors.Is(err, errFightFirst):
		return "Finish the fight in front of you first.", true
	case errors.Is(err, errBadSlot):
		return fmt.Sprintf("Slot names must be at most %d characters and must not contain ':'.", MaxSlotLen), true
	case errors.Is(err, errUsage):
		return "Usage: " + strings.TrimSpace(strings.TrimPrefix(err.Error(), errUsage.Error()+":")), true
	case errors.Is(err, session.ErrInsufficientGold):
		return "You don't have enough gold.", true
	case errors.Is(err, session.ErrAlreadyInParty):
		return "They are already in your party.", true
	case errors.Is(err, session.ErrNotRecruitable):
		return "They are not interested in joining you.", true
	case errors.Is(err, session.ErrNoQuest):
		return "You have no quest that calls for that. Ask around with 'gossip'.", true
	case errors.Is(err, session.ErrUnknownItem):
		return "There is no such item.", true
	case errors.Is(err, session.ErrUnknownNPC):
		return "There is nobody by that name.", true
	case errors.Is(err, session.ErrUnknownLocation):
		return "There is no such place. Type 'travel' to see where you can go.", true
	case errors.Is(err, session.ErrNotForSale):
		return "That is not for sale here.", true
	case errors.Is(err, session.ErrNotUsable):
		return "You cannot use that.", true
	case errors.Is(err, session.ErrSaveNotFound):
		return "There is no game saved in that slot.", true
	case errors.Is(err, inventory.ErrNotCarried):
		return "You are not carrying that.", true
	case errors.Is(err, quest.ErrUnknownQuest):
		return "You have not heard of that quest.", true
	case errors.Is(err, quest.ErrNoRumors):
		return "The locals have nothing new to say.", true
	case errors.Is(err, combat.ErrUnknownEnemy):
		return "You see no such foe.", true
	case errors.Is(err, combat.ErrCombatActive):
		return "You are already in a fight!", true
	case errors.Is(err, combat.ErrNoTarget):
		return "There is nothing left to attack.", true
	case errors.Is(err, combat.ErrNotPlayerTurn):
		return "Wait for your turn.", true
	case errors.Is(err, ruleset.ErrUnknownClass):
		return "There is no such class.", true
	case errors.Is(err, narration.ErrNoAPIKey):
		return "The storyteller has not been configured.", true
	case errors.Is(err, storage.ErrInvalidUsername):
		return "Usernames must be 1-64 characters without spaces or ':'.", true
	case errors.Is(err, character.ErrInsufficientGold):
		return "You don't have enough gold.", true
	}
	var nt *noTargetError
	if errors.As(err, &nt) {
		return fmt.Sprintf("Attack what? You could pick a fight with: %s.", strings.Join(nt.enemies, ", ")), true
	}
	var an *absentNPCError
	if errors.As(err, &an) {
		return an.name + " is not here.", true
	}
	var ns *noSellerError
	if errors.As(err, &ns) {
		msg := fmt.Sprintf("Nobody here sells %s.", ns.item)
		if ns.vendor != "" {
			msg += fmt.Sprintf(" Try %s at %s.", ns.vendor, ns.at)
		}
		return msg, true
	}
	return "Something went wrong. Please try again.", false
}
