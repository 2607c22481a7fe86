package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/gamenight-tracker/internal/config"
	"github.com/gamenight-tracker/internal/dataset"
	"github.com/gamenight-tracker/internal/domain"
	"github.com/gamenight-tracker/internal/stats"
)

const (
	inputFlag       = "input"
	outputFlag      = "output"
	formatFlag      = "format"
	configFlag      = "config"
	yearFlag        = "year"
	fromFlag        = "from"
	toFlag          = "to"
	tagsFlag        = "tags"
	playersFlag     = "players"
	currentYearFlag = "current-year"
	stdoutCLIName   = "-"
)

var build string
var semanticVersion = "v0.1.0-dev" + build

// session holds what every command needs once the flags are parsed
type session struct {
	snapshot    domain.Snapshot
	filter      stats.Filter
	calc        *stats.Calculator
	currentYear int
	format      dataset.Format
	out         io.Writer
}

func (s *session) scope() *stats.Scope {
	return stats.NewScope(s.snapshot, s.filter)
}

func (s *session) write(v interface{}) error {
	return dataset.Encode(s.out, v, s.format)
}

func newSession(cCtx *cli.Context, stdout io.Writer, logger *slog.Logger) (*session, func() error, error) {
	snap, err := dataset.Load(cCtx.String(inputFlag))
	if err != nil {
		return nil, nil, err
	}

	format, err := dataset.ParseFormat(cCtx.String(formatFlag))
	if err != nil {
		return nil, nil, err
	}

	opts := stats.DefaultOptions()
	if path := cCtx.String(configFlag); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, nil, err
		}
		opts = cfg.Stats.Options()
	}

	filter, err := filterFromFlags(cCtx)
	if err != nil {
		return nil, nil, err
	}

	currentYear := cCtx.Int(currentYearFlag)
	if currentYear == 0 {
		currentYear = time.Now().Year()
	}

	out := stdout
	closeOut := func() error { return nil }
	if location := cCtx.String(outputFlag); location != "" && location != stdoutCLIName {
		f, err := os.Create(location)
		if err != nil {
			return nil, nil, fmt.Errorf("creating output file: %w", err)
		}
		out = f
		closeOut = f.Close
	}

	return &session{
		snapshot:    snap,
		filter:      filter,
		calc:        stats.NewCalculator(opts, logger),
		currentYear: currentYear,
		format:      format,
		out:         out,
	}, closeOut, nil
}

func filterFromFlags(cCtx *cli.Context) (stats.Filter, error) {
	f := stats.Filter{
		Year:      cCtx.Int(yearFlag),
		GameTags:  cCtx.StringSlice(tagsFlag),
		PlayerIDs: cCtx.StringSlice(playersFlag),
	}
	if s := cCtx.String(fromFlag); s != "" {
		from, err := domain.ParseDate(s)
		if err != nil {
			return stats.Filter{}, fmt.Errorf("--from must be formatted YYYY-MM-DD")
		}
		f.StartDate = &from
	}
	if s := cCtx.String(toFlag); s != "" {
		to, err := domain.ParseDate(s)
		if err != nil {
			return stats.Filter{}, fmt.Errorf("--to must be formatted YYYY-MM-DD")
		}
		f.EndDate = &to
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return stats.Filter{}, fmt.Errorf("--to is before --from")
	}
	return f, nil
}

// withSession wraps a command action with dataset loading and output handling
func withSession(stdout io.Writer, logger *slog.Logger, action func(*cli.Context, *session) error) cli.ActionFunc {
	return func(cCtx *cli.Context) error {
		s, closeOut, err := newSession(cCtx, stdout, logger)
		if err != nil {
			return err
		}
		if err := action(cCtx, s); err != nil {
			closeOut()
			return err
		}
		return closeOut()
	}
}

func leaderboardAction(cCtx *cli.Context, s *session) error {
	scopeID := domain.ScopeOverall
	if s.filter.Year != 0 {
		scopeID = domain.YearScope(s.filter.Year)
	}
	return s.write(domain.Leaderboard{
		Scope:      scopeID,
		Rows:       s.calc.Leaderboard(s.scope()),
		ComputedAt: time.Now().UTC(),
	})
}

func playerAction(cCtx *cli.Context, s *session) error {
	id := cCtx.Args().First()
	if id == "" {
		return fmt.Errorf("player id argument is required")
	}
	scope := s.scope()
	player, ok := scope.Player(id)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrPlayerNotFound, id)
	}

	out := domain.PlayerStats{Player: player, Data: s.calc.PlayerData(player, scope)}
	for _, row := range s.calc.Leaderboard(scope) {
		if row.Player.ID == id {
			out.Position = row.Position
			break
		}
	}
	return s.write(out)
}

func gameAction(cCtx *cli.Context, s *session) error {
	id := cCtx.Args().First()
	if id == "" {
		return fmt.Errorf("game id argument is required")
	}
	scope := s.scope()
	game, ok := scope.Game(id)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrGameNotFound, id)
	}
	return s.write(domain.GameStats{
		Game:       game,
		Data:       s.calc.GameData(game, scope),
		TopPlayers: s.calc.TopPlayersForGame(game, scope),
		Players:    s.calc.PlayerGameStats(game, scope),
	})
}

func insightsAction(cCtx *cli.Context, s *session) error {
	scope := s.scope()
	return s.write(s.calc.Insights(scope, s.calc.AllPlayerData(scope), s.currentYear))
}

func dashboardAction(cCtx *cli.Context, s *session) error {
	return s.write(s.calc.Dashboard(s.scope(), s.currentYear))
}

func championshipsAction(cCtx *cli.Context, s *session) error {
	champs := s.calc.Championships(s.scope(), s.currentYear)
	return s.write(domain.ChampionshipReport{
		Championships: champs,
		Titles:        stats.Titles(champs),
	})
}

func newApp(stdout io.Writer, logger *slog.Logger) *cli.App {
	return &cli.App{
		Name:    "statsctl",
		Usage:   "Compute game night leaderboards and stats from a dataset file",
		Version: semanticVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     inputFlag,
				Aliases:  []string{"i"},
				Usage:    "Path to the YAML or JSON dataset",
				Required: true,
			},
			&cli.StringFlag{
				Name:    outputFlag,
				Aliases: []string{"o"},
				Usage:   "The location to write the result. Can be a file path or \"-\" (for stdout).",
				Value:   stdoutCLIName,
			},
			&cli.StringFlag{
				Name:  formatFlag,
				Usage: "Output format, yaml or json",
				Value: string(dataset.FormatYAML),
			},
			&cli.StringFlag{
				Name:  configFlag,
				Usage: "Server configuration file to read stats thresholds from",
			},
			&cli.IntFlag{
				Name:  yearFlag,
				Usage: "Only count events of this year",
			},
			&cli.StringFlag{
				Name:  fromFlag,
				Usage: "Only count events on or after this date (YYYY-MM-DD)",
			},
			&cli.StringFlag{
				Name:  toFlag,
				Usage: "Only count events on or before this date (YYYY-MM-DD)",
			},
			&cli.StringSliceFlag{
				Name:  tagsFlag,
				Usage: "Only count games carrying one of these tags",
			},
			&cli.StringSliceFlag{
				Name:  playersFlag,
				Usage: "Only rank these players",
			},
			&cli.IntFlag{
				Name:  currentYearFlag,
				Usage: "Year treated as in progress when deciding championships (defaults to now)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "leaderboard",
				Usage:  "Ranked leaderboard of the filtered data",
				Action: withSession(stdout, logger, leaderboardAction),
			},
			{
				Name:      "player",
				Usage:     "Aggregated stats of one player",
				ArgsUsage: "<player-id>",
				Action:    withSession(stdout, logger, playerAction),
			},
			{
				Name:      "game",
				Usage:     "Aggregated stats of one game",
				ArgsUsage: "<game-id>",
				Action:    withSession(stdout, logger, gameAction),
			},
			{
				Name:   "insights",
				Usage:  "Streaks, rivalries, attendance and recent events",
				Action: withSession(stdout, logger, insightsAction),
			},
			{
				Name:   "dashboard",
				Usage:  "Leaderboard, game stats and insights together",
				Action: withSession(stdout, logger, dashboardAction),
			},
			{
				Name:   "championships",
				Usage:  "Champion of every concluded year",
				Action: withSession(stdout, logger, championshipsAction),
			},
		},
	}
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	if err := newApp(os.Stdout, logger).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
