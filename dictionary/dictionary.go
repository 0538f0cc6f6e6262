package dictionary

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"segmenta.io/wbs/logger"
	"segmenta.io/wbs/segmenter"
	"segmenta.io/wbs/utils"
)

// Dictionary is one loaded word dictionary plus its prefix index. The index
// is built once here and shared read-only by every segmentation afterwards.
type Dictionary struct {
	Name  string
	Words []string
	Index *segmenter.PrefixIndex
}

// CreateDictionary loads the dictionary file at path and builds its prefix
// index. BSV files ("word|..." columns named by scheme) go through the shared
// BSV reader with hash dedup; any other extension is read as a plain list,
// one word per line. The cleaned word list is cached next to the resources
// under a content-hashed name so repeated startups skip re-parsing.
func CreateDictionary(configName string, path string, scheme []string) (*Dictionary, error) {
	wbsLogger := logger.NewLogger("Dictionary loader").With().
		Str("config_name", configName).
		Str("path", path).Logger()
	errLogger := wbsLogger.With().Caller().Logger()
	wbsLogger.Info().Msg("Started loading")

	cachePath, err := getDstFilepath(path, scheme, &errLogger)
	if err != nil {
		errLogger.Err(err).Msg("Could not create word list cache path")
		return nil, err
	}
	wbsLogger = wbsLogger.With().Str("word_cache_path", cachePath).Logger()

	cacheExists := func() bool {
		_, err := os.Stat(cachePath)
		return err == nil
	}()

	var words []string
	if !cacheExists {
		wbsLogger.Info().Msg("Building new word list")
		words, err = readWords(path, scheme)
		if err != nil {
			errLogger.Err(err).Msg("Could not read dictionary file")
			return nil, err
		}
		go writeCache(cachePath, words, &errLogger)
	} else {
		wbsLogger.Info().Msg("Loading word list from cache")
		buf, err := ioutil.ReadFile(cachePath)
		if err != nil {
			return nil, err
		}
		if err = json.Unmarshal(buf, &words); err != nil {
			return nil, err
		}
	}

	index, err := segmenter.Build(words)
	if err != nil {
		errLogger.Err(err).Msg("Could not build prefix index")
		return nil, err
	}

	wbsLogger.Info().Msgf("%d words were loaded", len(words))
	return &Dictionary{
		Name:  configName,
		Words: words,
		Index: index,
	}, nil
}

// ID identifies the dictionary contents for result-cache keys.
func (dict *Dictionary) ID() string {
	return fmt.Sprintf("%s-%d", dict.Name, utils.HashString(strings.Join(dict.Words, "|")))
}

func readWords(path string, scheme []string) ([]string, error) {
	if strings.ToLower(filepath.Ext(path)) != ".bsv" {
		return readWordList(path)
	}

	var schemaMap = make(map[string]byte)
	for i, columnName := range scheme {
		schemaMap[columnName] = byte(i)
	}
	wordIdx := schemaMap["word"]

	getHash := func(columns []string) uint64 {
		return utils.HashString(columns[wordIdx])
	}

	reader, err := utils.NewBSVReader(path, getHash)
	if err != nil {
		return nil, err
	}

	var words []string
	for columns := range reader {
		if int(wordIdx) >= len(columns) {
			continue
		}
		word := strings.TrimSpace(columns[wordIdx])
		if len(word) == 0 {
			return nil, fmt.Errorf("%w: %s holds an empty word entry", segmenter.ErrInvalidWord, path)
		}
		words = append(words, *utils.GlobalStringStore().GetPointer(word))
	}
	return words, nil
}

func readWordList(path string) ([]string, error) {
	lines, err := utils.ReadList(path)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint64]bool)
	var words []string
	for _, line := range lines {
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		word := strings.ToLower(strings.TrimSpace(line))
		if len(word) == 0 {
			continue
		}
		hash := utils.HashString(word)
		if seen[hash] {
			continue
		}
		seen[hash] = true
		words = append(words, *utils.GlobalStringStore().GetPointer(word))
	}
	return words, nil
}

func writeCache(cachePath string, words []string, errLogger *zerolog.Logger) {
	data, err := json.Marshal(words)
	if err != nil {
		errLogger.Err(err).Msg("Got error while marshalling word list")
		return
	}
	if err := os.MkdirAll(filepath.Dir(cachePath), 0700); err != nil {
		errLogger.Err(err).Msg("Could not create directory for word list cache")
		return
	}
	f, err := os.Create(cachePath)
	if err != nil {
		errLogger.Err(err).Msg("Could not create file for word list cache")
		return
	}
	defer func(f *os.File) {
		if err := f.Close(); err != nil {
			errLogger.Err(err).Msg("Caught error while closing cache file")
		}
	}(f)
	w := bufio.NewWriter(f)
	if _, err = w.Write(data); err != nil {
		errLogger.Err(err).Msg("Could not write word list cache")
		return
	}
	if err = w.Flush(); err != nil {
		errLogger.Err(err).Msg("Could not flush word list cache")
	}
}

func getDstFilepath(dictPath string, scheme []string, errLogger *zerolog.Logger) (string, error) {
	hash, err := func() (string, error) {
		f, err := os.Open(dictPath)
		if err != nil {
			return "", err
		}
		defer func(f *os.File) {
			_ = f.Close()
		}(f)
		hasher := sha256.New()
		if _, err := io.Copy(hasher, f); err != nil {
			return "", err
		}
		result := utils.HashString(strings.Join(scheme, "") + hex.EncodeToString(hasher.Sum(nil)))
		return strconv.FormatUint(result, 10), nil
	}()

	if err != nil {
		errLogger.Err(err).Msg("Could not read dictionary file")
		return "", err
	}
	resourcePath := filepath.Dir(filepath.Dir(dictPath))
	idxDictDir := filepath.Base(filepath.Dir(dictPath))

	idxName := strings.TrimSuffix(filepath.Base(dictPath), filepath.Ext(dictPath))
	filename := strings.Join([]string{idxName, hash, ".json"}, "")

	return filepath.Join(resourcePath, "tmp_words", idxDictDir, filename), nil
}
