package pipeline

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"segmenta.io/wbs/types"
)

func buildTestPipeline(t *testing.T) Pipeline {
	t.Helper()
	dir, err := ioutil.TempDir("", "wbs-pipeline")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	configDir := filepath.Join(dir, "config")
	wordsDir := filepath.Join(dir, "resources", "words")
	require.NoError(t, os.MkdirAll(configDir, 0700))
	require.NoError(t, os.MkdirAll(wordsDir, 0700))

	require.NoError(t, ioutil.WriteFile(
		filepath.Join(wordsDir, "english.bsv"),
		[]byte("foo|n\nbar|n\nfish|n\nh|n\nis|v\nini|n\nin|p\n"),
		0600,
	))
	require.NoError(t, ioutil.WriteFile(
		filepath.Join(configDir, "english.yaml"),
		[]byte("pipeline: word_segmentation\nfeatures:\n  - spans\nparams:\n  WBS:\n    word_dictionary: resources/words/english.bsv\n    word_scheme: word|tag\n"),
		0600,
	))

	cfgs, err := types.LoadConfigurations(configDir)
	require.NoError(t, err)
	require.Len(t, cfgs, 1)

	ppln, dictsID, err := Segmentation(GetSegmentationParams(dir, cfgs))
	require.NoError(t, err)
	require.NotEmpty(t, dictsID)
	return ppln
}

func runPipeline(t *testing.T, ppln Pipeline, tid, text string) map[string]types.SegmentationResponse {
	t.Helper()
	raw := <-ppln(Request{Tid: tid, Text: text})
	response := make(map[string]types.SegmentationResponse)
	require.NoError(t, json.Unmarshal([]byte(raw), &response))
	return response
}

func TestSegmentationPipeline(t *testing.T) {
	ppln := buildTestPipeline(t)

	t.Run("segmentable text", func(t *testing.T) {
		response := runPipeline(t, ppln, "tid-1", "ininisbarfish")
		section, ok := response["english"]
		require.True(t, ok, "response must carry the english config section")
		require.True(t, section.Found)
		require.NotNil(t, section.Segmented)
		require.Equal(t, "in in is bar fish", *section.Segmented)

		want := []types.WordSpan{
			{Text: "in", Start: 0, End: 2, BeginByte: 0, EndByte: 2},
			{Text: "in", Start: 2, End: 4, BeginByte: 2, EndByte: 4},
			{Text: "is", Start: 4, End: 6, BeginByte: 4, EndByte: 6},
			{Text: "bar", Start: 6, End: 9, BeginByte: 6, EndByte: 9},
			{Text: "fish", Start: 9, End: 13, BeginByte: 9, EndByte: 13},
		}
		if diff := cmp.Diff(want, section.Words); diff != "" {
			t.Errorf("unexpected spans (-want +got):\n%s", diff)
		}
	})

	t.Run("unsegmentable text", func(t *testing.T) {
		response := runPipeline(t, ppln, "tid-2", "xyz")
		section := response["english"]
		require.False(t, section.Found)
		require.Nil(t, section.Segmented)
		require.Empty(t, section.Words)
	})

	t.Run("empty text", func(t *testing.T) {
		response := runPipeline(t, ppln, "tid-3", "")
		section := response["english"]
		require.True(t, section.Found, "empty text is a valid trivial segmentation")
		require.NotNil(t, section.Segmented)
		require.Equal(t, "", *section.Segmented)
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		first := runPipeline(t, ppln, "tid-4", "ininisbarfish")
		for i := 0; i < 5; i++ {
			again := runPipeline(t, ppln, "tid-4", "ininisbarfish")
			if diff := cmp.Diff(first, again); diff != "" {
				t.Fatalf("run %d differed (-first +again):\n%s", i, diff)
			}
		}
	})
}

func TestSegmentationPipelineListRenderMode(t *testing.T) {
	dir, err := ioutil.TempDir("", "wbs-pipeline-list")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	configDir := filepath.Join(dir, "config")
	wordsDir := filepath.Join(dir, "resources", "words")
	require.NoError(t, os.MkdirAll(configDir, 0700))
	require.NoError(t, os.MkdirAll(wordsDir, 0700))
	require.NoError(t, ioutil.WriteFile(
		filepath.Join(wordsDir, "english.txt"), []byte("in\nis\nbar\nfish\n"), 0600))
	require.NoError(t, ioutil.WriteFile(
		filepath.Join(configDir, "english.yaml"),
		[]byte("pipeline: word_segmentation\nrequest_params:\n  render_mode: list\nparams:\n  WBS:\n    word_dictionary: resources/words/english.txt\n"),
		0600,
	))

	cfgs, err := types.LoadConfigurations(configDir)
	require.NoError(t, err)
	ppln, _, err := Segmentation(GetSegmentationParams(dir, cfgs))
	require.NoError(t, err)

	response := runPipeline(t, ppln, "tid-list", "ininisbarfish")
	section := response["english"]
	require.True(t, section.Found)
	require.Nil(t, section.Segmented, "list mode renders words as an array")
	require.Equal(t, []string{"in", "in", "is", "bar", "fish"}, section.WordsList)
}

func TestSegmentationPipelineMultiByte(t *testing.T) {
	dir, err := ioutil.TempDir("", "wbs-pipeline-mb")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	configDir := filepath.Join(dir, "config")
	wordsDir := filepath.Join(dir, "resources", "words")
	require.NoError(t, os.MkdirAll(configDir, 0700))
	require.NoError(t, os.MkdirAll(wordsDir, 0700))
	require.NoError(t, ioutil.WriteFile(
		filepath.Join(wordsDir, "ru.txt"), []byte("да\nнет\n"), 0600))
	require.NoError(t, ioutil.WriteFile(
		filepath.Join(configDir, "ru.yaml"),
		[]byte("pipeline: word_segmentation\nfeatures:\n  - spans\nparams:\n  WBS:\n    word_dictionary: resources/words/ru.txt\n"),
		0600,
	))

	cfgs, err := types.LoadConfigurations(configDir)
	require.NoError(t, err)
	ppln, _, err := Segmentation(GetSegmentationParams(dir, cfgs))
	require.NoError(t, err)

	response := runPipeline(t, ppln, "tid-mb", "данет")
	section := response["ru"]
	require.True(t, section.Found)
	require.Equal(t, "да нет", *section.Segmented)
	// spans are rune indexed, byte offsets point into UTF-8
	want := []types.WordSpan{
		{Text: "да", Start: 0, End: 2, BeginByte: 0, EndByte: 4},
		{Text: "нет", Start: 2, End: 5, BeginByte: 4, EndByte: 10},
	}
	if diff := cmp.Diff(want, section.Words); diff != "" {
		t.Errorf("unexpected spans (-want +got):\n%s", diff)
	}
}
