package main

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/CyberRei/cocoa-beans/commands"
	"github.com/CyberRei/cocoa-beans/commands/descriptor"
	"github.com/CyberRei/cocoa-beans/commands/errs"
	"github.com/CyberRei/cocoa-beans/commands/parsers"
	"github.com/CyberRei/cocoa-beans/commands/requirements"
	"github.com/google/uuid"
)

const stackLimit = 64

// console is the sender of lines typed into the shell unless --player is given
type console struct{}

func (console) Name() string {
	return "CONSOLE"
}

func (console) HasPermission(string) bool {
	return true
}

type player struct {
	name  string
	mode  string
	perms map[string]bool
	items map[string]int
}

func (p *player) Name() string {
	return p.name
}

func (p *player) HasPermission(permission string) bool {
	return p.perms[permission]
}

type inventoryFullError struct {
	player string
	item   string
	amount int
}

func (e *inventoryFullError) Error() string {
	return fmt.Sprintf("%s cannot carry %d more %s", e.player, e.amount, e.item)
}

type task struct {
	id   uuid.UUID
	at   time.Time
	text string
}

// world is the state the demo commands act upon
type world struct {
	players map[string]*player
	tasks   []task
	now     func() time.Time
}

func newWorld(names ...string) *world {
	w := &world{players: make(map[string]*player), now: time.Now}
	for _, n := range names {
		w.join(n)
	}

	return w
}

// join returns the player called name, creating it on first use
func (w *world) join(name string) *player {
	if p, found := w.players[name]; found {
		return p
	}
	p := &player{
		name:  name,
		mode:  "survival",
		perms: map[string]bool{"cocoa.gamemode": true},
		items: make(map[string]int),
	}
	w.players[name] = p

	return p
}

func (w *world) online(*commands.Context) map[string]any {
	out := make(map[string]any, len(w.players))
	for n, p := range w.players {
		out[n] = p
	}

	return out
}

type giveCommand struct {
	Players *commands.SourceParser
	Item    func(c *commands.Context, p *player, item string, amount *int) error `cocoa:"path:<player> <string> <?int>;params:player,item,amount;perm:cocoa.give;desc:Give an item to a player;oneof:{arg:2,values:[stone,dirt,diamond,torch]}"`
	Full    func(c *commands.Context, err *inventoryFullError) error             `cocoa:"kind:exception"`
}

// demoNodes declares the commands of the demo shell
func (s *shell) demoNodes(playerCache time.Duration) ([]*commands.Node, error) {
	w := s.world
	players := commands.NewSourceParser("player", reflect.TypeOf(&player{}), 0, playerCache, w.online)

	give, err := descriptor.FromStruct("give", &giveCommand{
		Players: players,
		Item: func(c *commands.Context, p *player, item string, amount *int) error {
			n := 1
			if amount != nil {
				n = *amount
			}
			if p.items[item]+n > stackLimit {
				return &inventoryFullError{player: p.name, item: item, amount: n}
			}
			p.items[item] += n
			s.printf("gave %d %s to %s", n, item, p.name)
			return nil
		},
		Full: func(c *commands.Context, err *inventoryFullError) error {
			s.printf("%s, a stack holds %d", err.Error(), stackLimit)
			return nil
		},
	}, descriptor.WithAliases("g"), descriptor.WithDescription("Hand out items"))
	if err != nil {
		return nil, err
	}

	gamemode := &commands.Node{
		Name:         "gamemode",
		Aliases:      []string{"gm"},
		Description:  "Change the game mode",
		Requirements: []commands.Requirement{requirements.Permission("cocoa.gamemode")},
		Parsers:      []commands.ArgumentParser{players},
		Handlers: []commands.Handler{
			{
				Path:         "<gamemode>",
				Description:  "of yourself",
				Requirements: []commands.Requirement{requirements.SenderIs[*player]()},
				Invoke: func(c *commands.Context, args commands.Args) error {
					p := c.Sender.(*player)
					p.mode = commands.ArgOr(args, 0, p.mode)
					s.printf("%s is now in %s mode", p.name, p.mode)
					return nil
				},
			},
			{
				Path:         "<gamemode> <player>",
				Description:  "of another player",
				Requirements: []commands.Requirement{requirements.Permission("cocoa.gamemode.other")},
				Invoke: func(c *commands.Context, args commands.Args) error {
					p, _ := commands.Arg[*player](args, 1)
					p.mode = commands.ArgOr(args, 0, p.mode)
					s.printf("%s is now in %s mode", p.name, p.mode)
					return nil
				},
			},
		},
		Fallback: func(c *commands.Context) error {
			s.printf("usage: gamemode <survival|creative|adventure|spectator> [player]")
			return nil
		},
	}

	kick := &commands.Node{
		Name:         "kick",
		Description:  "Disconnect a player",
		Requirements: []commands.Requirement{requirements.Not(requirements.SenderIs[*player]())},
		Parsers:      []commands.ArgumentParser{players},
		Handlers: []commands.Handler{{
			Path:        "<player> <?text>",
			Description: "with an optional reason",
			Invoke: func(c *commands.Context, args commands.Args) error {
				p, _ := commands.Arg[*player](args, 0)
				delete(w.players, p.name)
				s.printf("kicked %s: %s", p.name, commands.ArgOr(args, 1, "no reason given"))
				return nil
			},
		}},
	}

	say := &commands.Node{
		Name:        "say",
		Description: "Broadcast a message",
		Handlers: []commands.Handler{{
			Path: "<text>",
			Invoke: func(c *commands.Context, args commands.Args) error {
				s.printf("[%s] %s", c.Sender.Name(), commands.ArgOr(args, 0, ""))
				return nil
			},
		}},
	}

	schedule := &commands.Node{
		Name:        "schedule",
		Description: "Plan a broadcast",
		Handlers: []commands.Handler{
			{
				Path:        "in <duration> <text>",
				Description: "after a delay",
				Params: []commands.Parameter{
					{Name: "delay", Type: reflect.TypeOf(time.Duration(0)), Requirements: []commands.ArgumentRequirement{
						requirements.Range(float64(time.Second), float64(24*time.Hour)),
					}},
					{Name: "message", Type: reflect.TypeOf("")},
				},
				Invoke: func(c *commands.Context, args commands.Args) error {
					d, _ := commands.Arg[time.Duration](args, 0)
					return s.schedule(w.now().Add(d), commands.ArgOr(args, 1, ""))
				},
			},
			{
				Path:        "at <time> <text>",
				Description: "at a point in time",
				Invoke: func(c *commands.Context, args commands.Args) error {
					at, _ := commands.Arg[time.Time](args, 0)
					return s.schedule(at, commands.ArgOr(args, 1, ""))
				},
			},
			{
				Path:        "list",
				Description: "pending broadcasts",
				Invoke: func(c *commands.Context, args commands.Args) error {
					for _, t := range w.tasks {
						s.printf("%s  %s  %s", t.id, t.at.Format(time.RFC3339), t.text)
					}
					return nil
				},
			},
			{
				Path:        "cancel <uuid>",
				Description: "drop a pending broadcast",
				Invoke: func(c *commands.Context, args commands.Args) error {
					id, _ := commands.Arg[uuid.UUID](args, 0)
					for i, t := range w.tasks {
						if t.id == id {
							w.tasks = append(w.tasks[:i], w.tasks[i+1:]...)
							s.printf("cancelled %s", id)
							return nil
						}
					}
					return errs.ErrParseUnknown.WithArgs(id.String())
				},
			},
		},
	}

	who := &commands.Node{
		Name:        "list",
		Aliases:     []string{"who"},
		Description: "Show online players",
		Handlers: []commands.Handler{{
			Path: "",
			Invoke: func(c *commands.Context, args commands.Args) error {
				names := make([]string, 0, len(w.players))
				for n := range w.players {
					names = append(names, n)
				}
				sort.Strings(names)
				s.printf("%d online: %s", len(names), strings.Join(names, ", "))
				return nil
			},
		}},
	}

	whoami := &commands.Node{
		Name:        "whoami",
		Description: "Show the sender",
		Handlers: []commands.Handler{
			{
				Path:         "",
				Requirements: []commands.Requirement{requirements.SenderIs[*player]()},
				Invoke: func(c *commands.Context, args commands.Args) error {
					p := c.Sender.(*player)
					s.printf("%s (%s)", p.name, p.mode)
					return nil
				},
			},
			{
				Path:         "",
				Requirements: []commands.Requirement{requirements.SenderName("console")},
				Invoke: func(c *commands.Context, args commands.Args) error {
					s.printf("%s (operator)", c.Sender.Name())
					return nil
				},
			},
		},
	}

	history := &commands.Node{
		Name:        "history",
		Description: "Show previous lines",
		Handlers: []commands.Handler{
			{
				Path: "",
				Invoke: func(c *commands.Context, args commands.Args) error {
					s.printHistory()
					return nil
				},
			},
			{
				Path:        "clear",
				Description: "forget previous lines",
				Invoke: func(c *commands.Context, args commands.Args) error {
					s.history.clear()
					return nil
				},
			},
		},
	}

	help := &commands.Node{
		Name:        "help",
		Aliases:     []string{"?"},
		Description: "List commands",
		Handlers: []commands.Handler{{
			Path: "",
			Invoke: func(c *commands.Context, args commands.Args) error {
				s.printf("%s", s.bundle.TL(s.lang, errs.MsgCommandListKey))
				s.manager.PrintCommands(s.out)
				return nil
			},
		}},
	}

	return []*commands.Node{give, gamemode, kick, say, schedule, who, whoami, history, help}, nil
}

// demoParsers are shared by every demo command
func demoParsers() []commands.ArgumentParser {
	return []commands.ArgumentParser{
		parsers.Int(0),
		parsers.Float(0),
		parsers.String(-1),
		parsers.Text(-2),
		commands.Cached(parsers.Duration(0), time.Minute),
		parsers.Time(0),
		parsers.UUID(0),
		parsers.Enum("gamemode", 0, "survival", "creative", "adventure", "spectator"),
	}
}

func (s *shell) schedule(at time.Time, text string) error {
	t := task{id: uuid.New(), at: at, text: text}
	s.world.tasks = append(s.world.tasks, t)
	s.printf("scheduled %s for %s", t.id, at.Format(time.RFC3339))

	return nil
}
