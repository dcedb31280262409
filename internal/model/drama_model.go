package model

import "time"

type Drama struct {
	DramaID      int64     `json:"drama_id"`
	Title        string    `json:"title"`
	Synopsis     string    `json:"synopsis"`
	CoverURL     string    `json:"cover_url"`
	EpisodeCount int       `json:"episode_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type Episode struct {
	EpisodeID int64     `json:"episode_id"`
	DramaID   int64     `json:"drama_id"`
	Seq       int       `json:"seq"`
	Title     string    `json:"title"`
	VideoURL  string    `json:"video_url"`
	Free      bool      `json:"free"`
	CreatedAt time.Time `json:"created_at"`
}
