package pipeline

import (
	"segmenta.io/wbs/segmenter"
	"segmenta.io/wbs/types"
	"segmenta.io/wbs/utils"
)

// NewSegmentationResult converts a segmenter outcome into the response
// section for one configuration. In spaced mode a found segmentation always
// carries a non-nil Segmented string (empty for the empty text) and a
// not-found outcome leaves it null; list mode emits the words as an array.
func NewSegmentationResult() func(result segmenter.Result, cfg types.Configuration, sCfg SegmentConfig, request Request) types.SegmentationResponse {

	return func(result segmenter.Result, cfg types.Configuration, sCfg SegmentConfig, request Request) types.SegmentationResponse {
		response := types.SegmentationResponse{
			DocID:      request.Tid,
			Dictionary: sCfg.Dict.Name,
			Found:      result.Found,
		}
		if !result.Found {
			return response
		}

		switch cfg.RequestParams.Mode() {
		case types.RenderModeList:
			response.WordsList = result.Words
		default:
			rendered := result.Rendered()
			response.Segmented = &rendered
		}

		if !cfg.CheckFeature(types.SpanAttributes) {
			return response
		}

		_, byteOffsets := utils.MakeRuneByteSlices(request.Text)
		response.Words = make([]types.WordSpan, len(result.Words))
		pos := 0
		for i, word := range result.Words {
			wordRunes := []rune(word)
			end := pos + len(wordRunes)
			beginByte := len(request.Text)
			if pos < len(byteOffsets) {
				beginByte = byteOffsets[pos]
			}
			endByte := len(request.Text)
			if end < len(byteOffsets) {
				endByte = byteOffsets[end]
			}
			response.Words[i] = types.WordSpan{
				Text:      word,
				Start:     pos,
				End:       end,
				BeginByte: beginByte,
				EndByte:   endByte,
			}
			pos = end
		}
		return response
	}
}
