package back

import (
	"database/sql"
	"time"

	"scrim/internal/elo"
	"scrim/internal/matchmaking"
	"scrim/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type MatchStatus int

const ( // this is stored in DB, don't change values
	MatchStatusOngoing  MatchStatus = 0
	MatchStatusReported MatchStatus = 1
	MatchStatusApproved MatchStatus = 2
	MatchStatusRejected MatchStatus = 3
)

func (s MatchStatus) String() string {
	switch s {
	case MatchStatusOngoing:
		return "ongoing"
	case MatchStatusReported:
		return "reported"
	case MatchStatusApproved:
		return "approved"
	case MatchStatusRejected:
		return "rejected"
	default:
		return "invalid"
	}
}

// IsActive returns true while the match result is not final.
func (s MatchStatus) IsActive() bool {
	return s == MatchStatusOngoing || s == MatchStatusReported
}

// A Match is a formed roster and its result.
// Outcome is always from the point of view of team 1.
type Match struct {
	ID        util.UUIDAsBlob
	ModeID    util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp
	TeamSize  int
	Status    MatchStatus
	Outcome   elo.Outcome

	ReportedAt util.NullTimeAsTimestamp
	ReportedBy util.NullUUIDAsBlob
	DecidedAt  util.NullTimeAsTimestamp

	Entries []MatchEntry `db:"-"`
}

type MatchEntry struct {
	MatchID  util.UUIDAsBlob
	PlayerID util.UUIDAsBlob
	Team     int
}

// newMatchFromFormation converts the result of the matchmaking to its
// persisted form.
func newMatchFromFormation(formed *matchmaking.Match) Match {
	ret := Match{
		ID:        util.UUIDAsBlob(formed.ID),
		ModeID:    util.UUIDAsBlob(formed.ModeID),
		CreatedAt: util.NewTimeAsTimestamp(time.Now()),
		TeamSize:  formed.TeamSize,
		Status:    MatchStatusOngoing,
		Entries:   make([]MatchEntry, 0, formed.TeamSize*2),
	}

	for team, entries := range [2][]matchmaking.QueueEntry{formed.Team1, formed.Team2} {
		for _, v := range entries {
			ret.Entries = append(ret.Entries, MatchEntry{
				MatchID:  ret.ID,
				PlayerID: util.UUIDAsBlob(v.PlayerID),
				Team:     team + 1,
			})
		}
	}

	return ret
}

// TeamPlayerIDs returns the IDs of the players of a team (1 or 2).
func (m *Match) TeamPlayerIDs(team int) []util.UUIDAsBlob {
	ret := make([]util.UUIDAsBlob, 0, m.TeamSize)
	for _, v := range m.Entries {
		if v.Team == team {
			ret = append(ret, v.PlayerID)
		}
	}

	return ret
}

func (m *Match) PlayerIDs() []util.UUIDAsBlob {
	ret := make([]util.UUIDAsBlob, 0, len(m.Entries))
	for _, v := range m.Entries {
		ret = append(ret, v.PlayerID)
	}

	return ret
}

func (m *Match) getPlayerEntry(playerID util.UUIDAsBlob) (MatchEntry, error) {
	for _, v := range m.Entries {
		if v.PlayerID == playerID {
			return v, nil
		}
	}

	return MatchEntry{}, errors.New("player is not in this match")
}

func (m *Match) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Match").SetMap(squirrel.Eq{
		"ID":         m.ID,
		"ModeID":     m.ModeID,
		"CreatedAt":  m.CreatedAt,
		"TeamSize":   m.TeamSize,
		"Status":     m.Status,
		"Outcome":    m.Outcome,
		"ReportedAt": m.ReportedAt,
		"ReportedBy": m.ReportedBy,
		"DecidedAt":  m.DecidedAt,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	for _, v := range m.Entries {
		if err := v.insert(tx); err != nil {
			return errors.Wrap(err, "unable to insert MatchEntry")
		}
	}

	return nil
}

func (m *Match) update(tx *sqlx.Tx) error {
	query, args, err := squirrel.Update("Match").SetMap(squirrel.Eq{
		"Status":     m.Status,
		"Outcome":    m.Outcome,
		"ReportedAt": m.ReportedAt,
		"ReportedBy": m.ReportedBy,
		"DecidedAt":  m.DecidedAt,
	}).Where("Match.ID = ?", m.ID).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func (e *MatchEntry) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("MatchEntry").SetMap(squirrel.Eq{
		"MatchID":  e.MatchID,
		"PlayerID": e.PlayerID,
		"Team":     e.Team,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func (m *Match) loadEntries(tx *sqlx.Tx) error {
	m.Entries = nil
	query := `SELECT * FROM MatchEntry WHERE MatchID = ? ORDER BY Team ASC, rowid ASC`
	return tx.Select(&m.Entries, query, m.ID)
}

func getMatchByID(tx *sqlx.Tx, id util.UUIDAsBlob) (Match, error) {
	var ret Match
	query := `SELECT * FROM Match WHERE Match.ID = ? LIMIT 1`
	if err := tx.Get(&ret, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Match{}, util.ErrPublic("match not found")
		}
		return Match{}, err
	}

	if err := ret.loadEntries(tx); err != nil {
		return Match{}, err
	}

	return ret, nil
}

// getMatchByShortID resolves the 8 hex digits shown to users, it fails if
// the prefix is ambiguous among active matches.
func getMatchByShortID(tx *sqlx.Tx, short string) (Match, error) {
	if len(short) >= 32 {
		id, err := util.ParseUUIDAsBlob(short)
		if err != nil {
			return Match{}, err
		}
		return getMatchByID(tx, id)
	}

	var matches []Match
	query := `SELECT * FROM Match WHERE Match.Status IN (?, ?) ORDER BY CreatedAt DESC`
	if err := tx.Select(&matches, query, MatchStatusOngoing, MatchStatusReported); err != nil {
		return Match{}, err
	}

	var found []Match
	for _, v := range matches {
		if v.ID.Short() == short {
			found = append(found, v)
		}
	}

	switch len(found) {
	case 0:
		return Match{}, util.ErrPublic("no active match with this ID")
	case 1:
		ret := found[0]
		if err := ret.loadEntries(tx); err != nil {
			return Match{}, err
		}
		return ret, nil
	default:
		return Match{}, util.ErrPublic("this ID matches more than one match, use the full ID")
	}
}

// getActiveMatchForPlayer returns the ongoing or reported match of a player,
// there can be at most one as matched players leave all queues.
func getActiveMatchForPlayer(tx *sqlx.Tx, playerID util.UUIDAsBlob) (Match, error) {
	var ret Match
	query := `
    SELECT Match.* FROM Match
    INNER JOIN MatchEntry ON(Match.ID = MatchEntry.MatchID)
    WHERE MatchEntry.PlayerID = ? AND Match.Status IN (?, ?)
    ORDER BY Match.CreatedAt DESC
    LIMIT 1`
	if err := tx.Get(&ret, query, playerID, MatchStatusOngoing, MatchStatusReported); err != nil {
		return Match{}, err
	}

	if err := ret.loadEntries(tx); err != nil {
		return Match{}, err
	}

	return ret, nil
}

func getMatchesByStatus(tx *sqlx.Tx, status MatchStatus) ([]Match, error) {
	var ret []Match
	query := `SELECT * FROM Match WHERE Match.Status = ? ORDER BY CreatedAt ASC`
	if err := tx.Select(&ret, query, status); err != nil {
		return nil, err
	}

	for k := range ret {
		if err := ret[k].loadEntries(tx); err != nil {
			return nil, err
		}
	}

	return ret, nil
}
