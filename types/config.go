package types

import (
	"errors"
	"io/ioutil"
	"os"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"segmenta.io/wbs/logger"
)

const (
	RenderModeSpaced = "spaced"
	RenderModeList   = "list"

	// pipeline type
	WordSegmentationPipeline = "word_segmentation"

	// features
	SpanAttributes = "spans"
)

type RequestParams struct {
	RenderMode string `yaml:"render_mode" json:"render_mode"`
}

func (rParams RequestParams) IsEmpty() bool {
	return len(rParams.RenderMode) == 0
}

// Mode normalizes the configured render mode, defaulting to spaced.
func (rParams RequestParams) Mode() string {
	if rParams.IsEmpty() {
		return RenderModeSpaced
	}
	return strings.ToLower(rParams.RenderMode)
}

type WBSConfig struct {
	WordDictionary string `yaml:"word_dictionary" json:"word_dictionary"`
	WordScheme     string `yaml:"word_scheme" json:"word_scheme"`
}

type ParamsConfig struct {
	WBS WBSConfig `yaml:"WBS" json:"wbs"`
}

type Configuration struct {
	Name          string        `json:"name"`
	FilePath      string        `json:"file_path"`
	RequestParams RequestParams `yaml:"request_params" json:"request_params"`
	Params        ParamsConfig  `yaml:"params" json:"params"`
	Pipeline      string        `yaml:"pipeline" json:"pipeline"`
	Features      []string      `yaml:"features" json:"features"`
}

func (cfg Configuration) CheckFeature(featureName string) bool {
	for _, feat := range cfg.Features {
		if feat == featureName {
			return true
		}
	}

	return false
}

func LoadConfigurations(dirPath string) ([]Configuration, error) {
	wbsLogger := logger.NewLogger("LoadConfigurations")

	files, err := ioutil.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	configChan := make(chan Configuration, len(files))
	for _, f := range files {
		// Skip dirs and non-yaml files
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".yaml") {
			continue
		}

		wg.Add(1)
		go func(file os.FileInfo) {
			defer wg.Done()
			cfg := Configuration{
				Name:     strings.Split(file.Name(), ".yaml")[0],
				FilePath: path.Join(dirPath, file.Name()),
			}
			buf, err := ioutil.ReadFile(cfg.FilePath)
			if err != nil {
				wbsLogger.Err(err)
				return
			}
			if err := yaml.Unmarshal(buf, &cfg); err != nil {
				wbsLogger.Err(err)
				return
			}

			// check pipeline type
			if cfg.Pipeline != WordSegmentationPipeline {
				wbsLogger.Err(errors.New("wrong pipeline type"))
				return
			}

			configChan <- cfg
		}(f)
	}

	go func() {
		wg.Wait()
		close(configChan)
	}()

	configs := make([]Configuration, 0, len(configChan))
	for cfg := range configChan {
		configs = append(configs, cfg)
	}
	return configs, nil
}
