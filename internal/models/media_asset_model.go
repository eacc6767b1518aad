package models

import "time"

type MediaAsset struct {
	ID        int64     `db:"id" json:"id"`
	FileName  string    `db:"file_name" json:"file_name"`
	FileType  string    `db:"file_type" json:"file_type"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	FileURL   string    `db:"file_url" json:"file_url"`
	Origin    string    `db:"origin" json:"origin"` // upload, generated, render
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	AssetOriginUpload    = "upload"
	AssetOriginGenerated = "generated"
	AssetOriginRender    = "render"
)
