package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

type RoundRepository interface {
	Save(ctx context.Context, record *entity.RoundRecord) error
	ListByMatch(ctx context.Context, matchID string) ([]entity.RoundRecord, error)
	Leaderboard(ctx context.Context, limit int) ([]entity.LeaderboardEntry, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type dbRound struct {
	pool *pgxpool.Pool
}

func NewRoundRepository(pool *pgxpool.Pool) RoundRepository {
	return &dbRound{
		pool: pool,
	}
}

func (that *dbRound) Save(ctx context.Context, record *entity.RoundRecord) error {
	query := `
		INSERT INTO rounds (id, match_id, round, x_name, o_name, winner_mark, winner_name, line, moves, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := that.pool.Exec(ctx, query,
		record.ID,
		record.MatchID,
		record.Round,
		record.XName,
		record.OName,
		record.WinnerMark,
		record.WinnerName,
		toInt32s(record.Line),
		record.Moves,
		record.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("can't save round: %w", err)
	}

	return nil
}

func (that *dbRound) ListByMatch(ctx context.Context, matchID string) ([]entity.RoundRecord, error) {
	query := `
		SELECT id, match_id, round, x_name, o_name, winner_mark, winner_name, line, moves, finished_at
		FROM rounds
		WHERE match_id = $1
		ORDER BY finished_at, round
	`

	rows, err := that.pool.Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("can't list rounds: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.RoundRecord, error) {
		var (
			record entity.RoundRecord
			line   []int32
		)

		err := row.Scan(
			&record.ID,
			&record.MatchID,
			&record.Round,
			&record.XName,
			&record.OName,
			&record.WinnerMark,
			&record.WinnerName,
			&line,
			&record.Moves,
			&record.FinishedAt,
		)
		record.Line = toInts(line)

		return record, err
	})
	if err != nil {
		return nil, fmt.Errorf("can't scan rounds: %w", err)
	}

	return records, nil
}

// Leaderboard ranks player names by wins, then draws, across all archived rounds.
func (that *dbRound) Leaderboard(ctx context.Context, limit int) ([]entity.LeaderboardEntry, error) {
	query := `
		WITH participants AS (
			SELECT x_name AS name, winner_mark = 'X' AS won, winner_mark = 'O' AS lost, winner_mark = '' AS drew FROM rounds
			UNION ALL
			SELECT o_name, winner_mark = 'O', winner_mark = 'X', winner_mark = '' FROM rounds
		)
		SELECT name,
			COUNT(*) FILTER (WHERE won),
			COUNT(*) FILTER (WHERE lost),
			COUNT(*) FILTER (WHERE drew),
			COUNT(*)
		FROM participants
		GROUP BY name
		ORDER BY 2 DESC, 4 DESC, name
		LIMIT $1
	`

	rows, err := that.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("can't query leaderboard: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.LeaderboardEntry, error) {
		var entry entity.LeaderboardEntry
		err := row.Scan(&entry.Name, &entry.Wins, &entry.Losses, &entry.Draws, &entry.Rounds)
		return entry, err
	})
	if err != nil {
		return nil, fmt.Errorf("can't scan leaderboard: %w", err)
	}

	return entries, nil
}

func (that *dbRound) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := that.pool.Exec(ctx, `DELETE FROM rounds WHERE finished_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("can't prune rounds: %w", err)
	}

	return tag.RowsAffected(), nil
}

func toInt32s(values []int) []int32 {
	if values == nil {
		return nil
	}

	out := make([]int32, len(values))
	for i, v := range values {
		out[i] = int32(v) //nolint: gosec // board indices fit
	}

	return out
}

func toInts(values []int32) []int {
	if values == nil {
		return nil
	}

	out := make([]int, len(values))
	for i, v := range values {
		out[i] = int(v)
	}

	return out
}
