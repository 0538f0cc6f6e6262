package pipeline

import (
	"encoding/json"
	"sort"
	"strings"

	"segmenta.io/wbs/logger"
	"segmenta.io/wbs/segmenter"
	"segmenta.io/wbs/types"
)

type Result struct {
	ConfigName string
	Data       interface{}
}

type SegmentationParams struct {
	DictionaryFolder string                `json:"dictionary_folder"`
	Configurations   []types.Configuration `json:"configurations"`
}

func GetSegmentationParams(dictPath string, cfgs []types.Configuration) SegmentationParams {
	return SegmentationParams{
		DictionaryFolder: dictPath,
		Configurations:   cfgs,
	}
}

// Segmentation builds the word segmentation pipeline: dictionaries and their
// prefix indexes are loaded once up front, each request then runs one
// segmentation per configuration concurrently against the shared indexes.
// The returned string fingerprints all loaded dictionaries and changes
// whenever any dictionary's contents change.
func Segmentation(params SegmentationParams) (Pipeline, string, error) {
	wbsLogger := logger.NewLogger("Word segmentation pipeline")
	errLogger := wbsLogger.With().Caller().Logger()
	wbsLogger.Info().
		Interface("params", params).
		Msg("Starting word segmentation pipeline (see parameters in 'params' field)")

	segmentCfg, err := CreateSegmentConfigs(params.DictionaryFolder, params.Configurations)
	if err != nil {
		errLogger.Err(err).
			Interface("configurations", params.Configurations).
			Str("dictionary_folder", params.DictionaryFolder).
			Msg("Failed to create segment config")
		return nil, "", err
	}

	dictsID := dictionariesID(segmentCfg)
	buildResponse := NewSegmentationResult()

	return func(request Request) <-chan string {
		responseChan := make(chan string)
		pplnLog := wbsLogger.With().Str("tid", request.Tid).Logger()
		pplnLog.Info().Msg("Started word segmentation pipeline")
		reqErrLogger := pplnLog.With().Caller().Logger()

		go func() {
			resultChannel := make(chan Result)

			active := 0
			for _, cfg := range params.Configurations {
				sCfg, ok := segmentCfg[cfg.Name]
				if !ok {
					continue
				}
				active++
				go func(cfg types.Configuration, sCfg SegmentConfig) {
					segmented := segmenter.Segment(request.Text, sCfg.Dict.Index)
					resultChannel <- Result{
						ConfigName: cfg.Name,
						Data:       buildResponse(segmented, cfg, sCfg, request),
					}
				}(cfg, sCfg)
			}

			response := make(map[string]interface{})
			for i := 0; i < active; i++ {
				res := <-resultChannel
				pplnLog.Info().
					Str("config_name", res.ConfigName).
					Msg("Finished segmentation for configuration")
				response[res.ConfigName] = res.Data
			}

			buf, err := json.Marshal(response)
			if err != nil {
				reqErrLogger.Err(err).Str("tid", request.Tid).Msg("Failed to marshall response")
			}
			pplnLog.Info().Msg("Finished word segmentation pipeline")
			responseChan <- string(buf)
		}()

		return responseChan
	}, dictsID, nil
}

func dictionariesID(segmentCfg map[string]SegmentConfig) string {
	names := make([]string, 0, len(segmentCfg))
	for name := range segmentCfg {
		names = append(names, name)
	}
	sort.Strings(names)
	ids := make([]string, len(names))
	for i, name := range names {
		ids[i] = segmentCfg[name].Dict.ID()
	}
	return strings.Join(ids, ";")
}
