package types

// WordSpan is one matched dictionary word inside a segmented text. Start and
// End are rune offsets, BeginByte and EndByte point into the original bytes.
type WordSpan struct {
	Text      string `json:"text"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	BeginByte int    `json:"begin_byte"`
	EndByte   int    `json:"end_byte"`
}

// SegmentationResponse is the per-configuration result section. In spaced
// render mode Segmented is null when no partition exists and the empty string
// for the empty text, so consumers can tell "not found" from "trivially
// segmented". In list render mode WordsList carries the words instead and
// Found is the authoritative flag.
type SegmentationResponse struct {
	DocID      string     `json:"doc_id"`
	Dictionary string     `json:"dictionary"`
	Found      bool       `json:"found"`
	Words      []WordSpan `json:"words,omitempty"`
	WordsList  []string   `json:"words_list,omitempty"`
	Segmented  *string    `json:"segmented"`
}
