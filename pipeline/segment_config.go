package pipeline

import (
	"errors"
	"path"
	"strings"
	"sync"

	"segmenta.io/wbs/dictionary"
	"segmenta.io/wbs/logger"
	"segmenta.io/wbs/types"
)

type SegmentConfig struct {
	Name string
	Dict *dictionary.Dictionary
}

// CreateSegmentConfigs loads one dictionary per configuration, concurrently,
// and drops configurations whose dictionary failed to load. At least one
// loadable configuration is required.
func CreateSegmentConfigs(dictDir string, configs []types.Configuration) (map[string]SegmentConfig, error) {

	wbsLogger := logger.NewLogger("CreateSegmentConfigs")
	wbsLogger.Info().Msg("Loading configurations")

	var wg sync.WaitGroup
	var mu sync.Mutex

	dictMap := make(map[string]*dictionary.Dictionary)

	for _, cfg := range configs {
		configLogger := wbsLogger.With().Str("config_name", cfg.Name).Logger()

		if cfg.Pipeline != types.WordSegmentationPipeline {
			continue
		}
		wg.Add(1)
		errLogger := configLogger.With().Caller().Logger()
		go func(configName string, dictParams types.WBSConfig) {
			defer wg.Done()

			dictPath := dictParams.WordDictionary
			if len(dictPath) == 0 {
				errLogger.Error().Str("path", dictPath).Msg("Dictionary path is not correct")
				return
			}

			absDictPath := path.Join(
				dictDir,
				dictPath,
			)

			var dictScheme []string
			if len(dictParams.WordScheme) > 0 {
				dictScheme = strings.Split(dictParams.WordScheme, "|")
			}

			dict, e := dictionary.CreateDictionary(configName, absDictPath, dictScheme)
			if e != nil {
				errLogger.Err(e).Msg("Could not load dictionary")
				return
			}

			mu.Lock()
			dictMap[configName] = dict
			mu.Unlock()

		}(cfg.Name, cfg.Params.WBS)
	}

	wg.Wait()

	result := make(map[string]SegmentConfig)
	for _, cfg := range configs {
		dict, ok := dictMap[cfg.Name]
		if !ok {
			continue
		}
		result[cfg.Name] = SegmentConfig{
			Name: cfg.Name,
			Dict: dict,
		}
	}
	if len(result) == 0 {
		return nil, errors.New("failed to load at least one correct config")
	}
	return result, nil
}
