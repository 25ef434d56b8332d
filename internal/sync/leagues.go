package sync

import (
	"errors"
	"fmt"
)

// ErrUnsupportedLeague is returned when a league id has no season label rule
var ErrUnsupportedLeague = errors.New("sync: unsupported league id")

// League is one competition the orchestrator reconciles
type League struct {
	ID   string
	Name string
}

// League ids at TheSportsDB
const (
	LeagueEPL = "4328"
	LeagueMLS = "4346"
)

// DefaultLeagues is the fixed pair the sync run covers, in processing order
var DefaultLeagues = []League{
	{ID: LeagueEPL, Name: "English Premier League"},
	{ID: LeagueMLS, Name: "American Major League Soccer"},
}

// SeasonLabel formats the provider's season label for a league and start
// year. European leagues span two calendar years ("2025-2026"), MLS plays a
// single calendar year ("2025"). An unknown league id is a configuration
// error, not a data error.
func SeasonLabel(leagueID string, year int) (string, error) {
	switch leagueID {
	case LeagueEPL:
		return fmt.Sprintf("%d-%d", year, year+1), nil
	case LeagueMLS:
		return fmt.Sprintf("%d", year), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLeague, leagueID)
	}
}
