package domain

// OcrLine is a single line of text recognized on a photographed package,
// with the pixel height reported by the OCR provider. Lines are scoped to
// one recognition request and never persisted.
type OcrLine struct {
	Text     string  `json:"text"`
	HeightPx float64 `json:"heightPx"`
}

// MatchResult is the outcome of matching a search string against the
// catalog name list. Accepted is true only when the score clears the
// confidence threshold strictly.
type MatchResult struct {
	MatchedName string `json:"matchedName"`
	Score       int    `json:"score"`
	Accepted    bool   `json:"accepted"`
}
