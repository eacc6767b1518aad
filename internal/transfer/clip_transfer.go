package transfer

type ClipRender struct {
	Source    string  `json:"source"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Effect    string  `json:"effect"`
	Framing   string  `json:"framing"`
	ContentID string  `json:"content_id"`
}

type ClipRendered struct {
	MediaURL    string  `json:"media_url"`
	AssetID     int64   `json:"asset_id"`
	FilterChain string  `json:"filter_chain"`
	Seconds     float64 `json:"render_seconds"`
}
