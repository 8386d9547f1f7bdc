// Command simulate plays one season headlessly and prints the match log,
// the managed club's news and the final table.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/club-sim/internal/commentary"
	"github.com/stitts-dev/club-sim/internal/engine"
	"github.com/stitts-dev/club-sim/internal/league"
	"github.com/stitts-dev/club-sim/internal/random"
	"github.com/stitts-dev/club-sim/internal/simulator"
	"github.com/stitts-dev/club-sim/pkg/config"
	"github.com/stitts-dev/club-sim/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	userClub := flag.String("club", cfg.UserClub, "club to manage")
	seed := flag.Int64("seed", cfg.SeasonSeed, "random seed, 0 for a random one")
	verbose := flag.Bool("v", false, "print every chance, not just goals")
	project := flag.Int("project", 0, "also run this many projected seasons")
	flag.Parse()

	log := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	if cfg.LogLevel == "" {
		log.SetLevel(logrus.WarnLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := random.SeedOrNew(*seed)
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}

	season, err := league.NewSeasonFromSpecs(cfg.LeagueName, league.DefaultClubs(), league.DefaultRivalries(), *userClub, cfg.MonthlyCadenceRounds, random.New(s), log)
	if err != nil {
		log.Fatalf("Failed to create season: %v", err)
	}

	fmt.Printf("%s, managing %s (seed %d)\n", season.League.Name, season.UserClub.Name, s)

	for !season.Finished() {
		summary, err := season.PlayRound(ctx)
		if err != nil {
			log.Fatalf("Round failed: %v", err)
		}

		fmt.Printf("\n=== Round %d ===\n", summary.Round)
		for _, r := range summary.Results {
			fmt.Printf("\n%s %d-%d %s\n", r.Home, r.HomeGoals, r.AwayGoals, r.Away)
			for _, e := range r.Match.Events {
				if e.Kind == engine.EventChance && !*verbose {
					continue
				}
				fmt.Println("  " + commentary.Match(e))
			}
		}

		if news := commentary.ClubLog(season.UserClub.DrainEvents()); len(news) > 0 {
			fmt.Printf("\n%s news:\n", season.UserClub.Name)
			for _, line := range news {
				fmt.Println("  - " + line)
			}
		}
		c := season.UserClub
		fmt.Printf("\n%s: %s, board trust %.0f, pressure %.0f, locker room %s, balance %s\n",
			c.Name, commentary.Ordinal(summary.UserPosition), c.BoardTrust, c.CoachPressure,
			strings.ToLower(c.LockerRoomStatus()), commentary.Money(c.Balance.IntPart()))
	}

	fmt.Println()
	printTable(season.League.Standings())

	if *project > 0 {
		runProjection(ctx, cfg, *userClub, *project, s, log)
	}
}

func printTable(standings []league.TableEntry) {
	fmt.Printf("%-3s %-12s %3s %3s %3s %3s %4s %4s %4s %4s\n", "#", "Club", "P", "W", "D", "L", "GF", "GA", "GD", "Pts")
	for i, e := range standings {
		fmt.Printf("%-3d %-12s %3d %3d %3d %3d %4d %4d %+4d %4d\n",
			i+1, e.Club, e.Played, e.Won, e.Drawn, e.Lost, e.GoalsFor, e.GoalsAgainst, e.GoalDifference, e.Points)
	}
}

func runProjection(ctx context.Context, cfg *config.Config, userClub string, runs int, seed int64, log *logrus.Logger) {
	sim, err := simulator.NewProjectionSimulator(simulator.Config{
		Division:  cfg.LeagueName,
		Clubs:     league.DefaultClubs(),
		Rivalries: league.DefaultRivalries(),
		UserClub:  userClub,
		Cadence:   cfg.MonthlyCadenceRounds,
		Runs:      runs,
		Workers:   cfg.ProjectionWorkers,
		BaseSeed:  seed,
	}, log)
	if err != nil {
		log.Fatalf("Failed to create projection: %v", err)
	}
	result, err := sim.Run(ctx, nil)
	if err != nil {
		log.Fatalf("Projection failed: %v", err)
	}

	fmt.Printf("\nProjection over %d seasons\n", result.Runs)
	fmt.Printf("%-12s %6s %6s %8s %6s\n", "Club", "Title", "Pts", "Pts p90", "Pos")
	for _, c := range result.Clubs {
		fmt.Printf("%-12s %5.1f%% %6.1f %8.0f %6.2f\n", c.Club, c.TitleOdds*100, c.MeanPoints, c.PointsP90, c.MeanPosition)
	}
	u := result.User
	fmt.Printf("%s: mean board trust %.1f, ultimatum in %.0f%% of seasons, dismissal talk in %.0f%%\n",
		u.Club, u.MeanTrust, u.UltimatumRate*100, u.DismissalRate*100)
}
