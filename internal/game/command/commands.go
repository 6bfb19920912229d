// Package command provides the command registry, parser, and built-in command definitions.
package command

// Categories for organizing commands.
const (
	CategoryAction        = "action"
	CategoryCharacter     = "character"
	CategoryWorld         = "world"
	CategoryCommunication = "communication"
	CategorySystem        = "system"
)

// Handler identifiers mapping commands to frontend handlers.
const (
	HandlerSay         = "say"
	HandlerRoll        = "roll"
	HandlerAttack      = "attack"
	HandlerRest        = "rest"
	HandlerHunt        = "hunt"
	HandlerInvestigate = "investigate"
	HandlerAccept      = "accept"
	HandlerUse         = "use"
	HandlerTravel      = "travel"
	HandlerStatus      = "status"
	HandlerInventory   = "inventory"
	HandlerQuests      = "quests"
	HandlerParty       = "party"
	HandlerHistory     = "history"
	HandlerLook        = "look"
	HandlerRumors      = "rumors"
	HandlerGossip      = "gossip"
	HandlerShop        = "shop"
	HandlerBuy         = "buy"
	HandlerRecruit     = "recruit"
	HandlerWho         = "who"
	HandlerSave        = "save"
	HandlerLoad        = "load"
	HandlerNew         = "new"
	HandlerHelp        = "help"
	HandlerQuit        = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text displayed to players.
	Help string
	// Usage shows the arguments, if any.
	Usage string
	// Category groups the command.
	Category string
	// Handler maps to the frontend handler.
	Handler string
}

// BuiltinCommands returns all built-in commands for the game.
func BuiltinCommands() []Command {
	return []Command{
		// Action commands
		{Name: "roll", Aliases: []string{"r"}, Help: "Roll for the check you are waiting on", Category: CategoryAction, Handler: HandlerRoll},
		{Name: "attack", Aliases: []string{"att", "kill"}, Usage: "[target]", Help: "Attack an enemy, starting a fight if named", Category: CategoryAction, Handler: HandlerAttack},
		{Name: "rest", Aliases: []string{"sleep"}, Help: "Rest to recover all health", Category: CategoryAction, Handler: HandlerRest},
		{Name: "hunt", Help: "Hunt the bandits of your kill quest", Category: CategoryAction, Handler: HandlerHunt},
		{Name: "investigate", Aliases: []string{"search"}, Help: "Investigate for your exploration quest", Category: CategoryAction, Handler: HandlerInvestigate},
		{Name: "accept", Usage: "<quest title>", Help: "Accept a quest you have heard of", Category: CategoryAction, Handler: HandlerAccept},
		{Name: "use", Usage: "<item>", Help: "Use a consumable item", Category: CategoryAction, Handler: HandlerUse},
		{Name: "travel", Aliases: []string{"go"}, Usage: "<location>", Help: "Travel to another location", Category: CategoryAction, Handler: HandlerTravel},

		// Character commands
		{Name: "status", Aliases: []string{"stats", "sheet"}, Help: "Show your character sheet", Category: CategoryCharacter, Handler: HandlerStatus},
		{Name: "inventory", Aliases: []string{"inv", "i"}, Help: "Show your items and gold", Category: CategoryCharacter, Handler: HandlerInventory},
		{Name: "quests", Aliases: []string{"q", "journal"}, Help: "Show active and completed quests", Category: CategoryCharacter, Handler: HandlerQuests},
		{Name: "party", Help: "Show your companions", Category: CategoryCharacter, Handler: HandlerParty},
		{Name: "history", Aliases: []string{"rolls"}, Help: "Show your recent dice rolls", Category: CategoryCharacter, Handler: HandlerHistory},

		// World commands
		{Name: "look", Aliases: []string{"l"}, Help: "Look around the current location", Category: CategoryWorld, Handler: HandlerLook},
		{Name: "rumors", Help: "List the rumors you have heard", Category: CategoryWorld, Handler: HandlerRumors},
		{Name: "gossip", Help: "Listen for a new rumor", Category: CategoryWorld, Handler: HandlerGossip},
		{Name: "shop", Aliases: []string{"wares"}, Help: "List what the merchants here sell", Category: CategoryWorld, Handler: HandlerShop},
		{Name: "buy", Usage: "<item>", Help: "Buy an item from a merchant here", Category: CategoryWorld, Handler: HandlerBuy},
		{Name: "recruit", Usage: "<companion>", Help: "Hire a companion for your party", Category: CategoryWorld, Handler: HandlerRecruit},

		// Communication commands
		{Name: "say", Aliases: []string{"'"}, Usage: "<text>", Help: "Say or do something; plain text works too", Category: CategoryCommunication, Handler: HandlerSay},
		{Name: "who", Help: "List adventurers at your location", Category: CategoryCommunication, Handler: HandlerWho},

		// System commands
		{Name: "save", Usage: "[slot]", Help: "Save your game", Category: CategorySystem, Handler: HandlerSave},
		{Name: "load", Usage: "[slot]", Help: "Load a saved game", Category: CategorySystem, Handler: HandlerLoad},
		{Name: "new", Help: "Abandon this game and create a new character", Category: CategorySystem, Handler: HandlerNew},
		{Name: "quit", Aliases: []string{"exit"}, Help: "Disconnect from the game", Category: CategorySystem, Handler: HandlerQuit},
		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
	}
}
