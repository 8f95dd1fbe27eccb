package ruleset

type Location struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

type Edit struct {
	Content     string   `json:"content"`
	Location    Location `json:"location"`
	EndLocation Location `json:"end_location"`
}

type Fix struct {
	Applicability string `json:"applicability,omitempty"`
	Message       string `json:"message,omitempty"`
	Edits         []Edit `json:"edits,omitempty"`
}

type Violation struct {
	Code        string   `json:"code"`
	Filename    string   `json:"filename"`
	Location    Location `json:"location"`
	EndLocation Location `json:"end_location"`
	Message     string   `json:"message"`
	NoqaRow     int      `json:"noqa_row,omitempty"`
	URL         string   `json:"url,omitempty"`
	Fix         *Fix     `json:"fix"`            // null when ruff has no fix for this occurrence
	Cell        *string  `json:"cell,omitempty"` // notebook cell, null outside notebooks
}
