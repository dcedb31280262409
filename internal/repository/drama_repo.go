package repository

import (
	"context"
	"errors"

	"github.com/kunkakamikasa/dramini-api/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DramaRepository struct {
	DB *pgxpool.Pool
}

func NewDramaRepository(db *pgxpool.Pool) *DramaRepository {
	return &DramaRepository{DB: db}
}

func (r *DramaRepository) ListDramas(ctx context.Context) ([]model.Drama, error) {
	q := `SELECT drama_id, title, synopsis, cover_url, episode_count, created_at FROM dramas ORDER BY drama_id DESC`
	rows, err := r.DB.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Drama{}
	for rows.Next() {
		var d model.Drama
		if err := rows.Scan(&d.DramaID, &d.Title, &d.Synopsis, &d.CoverURL, &d.EpisodeCount, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DramaRepository) GetDramaByID(ctx context.Context, dramaID int64) (*model.Drama, error) {
	var d model.Drama
	q := `SELECT drama_id, title, synopsis, cover_url, episode_count, created_at FROM dramas WHERE drama_id=$1`
	err := r.DB.QueryRow(ctx, q, dramaID).Scan(&d.DramaID, &d.Title, &d.Synopsis, &d.CoverURL, &d.EpisodeCount, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *DramaRepository) ListEpisodes(ctx context.Context, dramaID int64) ([]model.Episode, error) {
	q := `
		SELECT episode_id, drama_id, seq, title, video_url, free, created_at
		FROM episodes
		WHERE drama_id=$1
		ORDER BY seq ASC
	`
	rows, err := r.DB.Query(ctx, q, dramaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Episode{}
	for rows.Next() {
		var e model.Episode
		if err := rows.Scan(&e.EpisodeID, &e.DramaID, &e.Seq, &e.Title, &e.VideoURL, &e.Free, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
