package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"

	"segmenta.io/wbs/api"
	"segmenta.io/wbs/logger"
	"segmenta.io/wbs/pipeline"
	"segmenta.io/wbs/types"
	"segmenta.io/wbs/utils"
	"segmenta.io/wbs/worker"
)

type Config struct {
	ConfigPath     string `envconfig:"WBS_CONFIG_PATH" required:"true"`
	DictionaryPath string `envconfig:"WBS_DICTIONARY_PATH" required:"true"`
	RestAPIActive  bool   `envconfig:"WBS_REST_API_ACTIVE" default:"false"`
	RestAPIPort    string `envconfig:"WBS_REST_API_PORT" default:"10000"`
}

const pipelineStartMaxRetries = 5

type loadedPipeline struct {
	ppln    pipeline.Pipeline
	dictsID string
}

func main() {
	logger.SetupLogging()
	wbsLogger := logger.NewLogger("Main")
	fatalErrLogger := wbsLogger.Fatal().Caller()
	buildIndex := flag.Bool("build-index", false, "a bool")
	wrap := flag.String("wrap", "", "run executable with its stderr wrapped into structured logs")
	flag.Parse()

	if len(*wrap) > 0 {
		logger.WrapProcess(*wrap, flag.Args()...)
		return
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		fatalErrLogger.Err(err).Msg("Failed to read environment")
		os.Exit(1)
	}

	// build dictionary index cache
	if *buildIndex {
		cfgs, err := types.LoadConfigurations(config.ConfigPath)
		if err != nil {
			wbsLogger.Err(err).Msg("Failed to load configurations")
			return
		}
		_, err = pipeline.CreateSegmentConfigs(config.DictionaryPath, cfgs)
		if err != nil {
			fatalErrLogger.Err(err).Msg("Failed to build dictionary indexes cache")
			os.Exit(1)
		} else {
			wbsLogger.Info().Msg("Dictionary indexes cache was built. Exit...")
		}
		return
	}

	//Load Pipeline
	pipelineChannel := make(chan loadedPipeline)
	go func() {
		for retry := 0; retry < pipelineStartMaxRetries; retry++ {
			cfgs, err := types.LoadConfigurations(config.ConfigPath)
			if err != nil {
				wbsLogger.Err(err).Msg("Failed to load configurations. Retrying in 5 sec")
				time.Sleep(5 * time.Second)
				continue
			}
			wbsLogger.Info().Msgf("Loaded %d configurations", len(cfgs))
			wbsLogger.Info().Msg("Starting pipelines loading")

			pipelineParams := pipeline.GetSegmentationParams(config.DictionaryPath, cfgs)
			ppln, dictsID, err := pipeline.Segmentation(pipelineParams)
			if err != nil {
				wbsLogger.Err(err).Msg("Failed to start word segmentation pipeline. Retrying in 5 sec")
				time.Sleep(5 * time.Second)
				continue
			}
			utils.GlobalStringStore().Lock()
			wbsLogger.Info().Msg("Pipelines loaded")
			pipelineChannel <- loadedPipeline{ppln: ppln, dictsID: dictsID}
			return
		}
		fatalErrLogger.Msg("Could not start pipelines after 5 retries, exiting")
		os.Exit(1)
	}()

	// block until pipeline loads
	loaded := <-pipelineChannel

	if config.RestAPIActive {
		go func() {
			wbsLogger.Info().Msg("Starting API service")
			apiRequest := &api.Request{
				Pipeline: loaded.ppln,
			}
			http.HandleFunc("/", apiRequest.ProcessData)
			host := fmt.Sprintf(":%s", config.RestAPIPort)
			wbsLogger.Info().Msgf("REST API on %s", host)
			err := http.ListenAndServe(host, nil)
			fatalErrLogger.Err(err).Msg("REST API stopped with error")
		}()
	}

	wbsLogger.Info().Msg("Start WBS Worker")
	for {
		rmqWorker, err := worker.New(loaded.ppln, loaded.dictsID)
		if err != nil {
			wbsLogger.Fatal().Err(err).Msg("Could not initialize RMQ worker")
			os.Exit(1)
		}
		err = rmqWorker.StartWorker()
		if err != nil {
			wbsLogger.Err(err).Msg("Worker returned with error. Launching new in 5 seconds")
			time.Sleep(5 * time.Second)
		}
	}
}
