package dictionary

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"segmenta.io/wbs/segmenter"
)

func writeTempDict(t *testing.T, name, contents string) string {
	t.Helper()
	dir, err := ioutil.TempDir("", "wbs-dict")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	// loader keeps its cache two levels up from the dictionary file
	dictDir := filepath.Join(dir, "resources", "words")
	if err := os.MkdirAll(dictDir, 0700); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dictDir, name)
	if err := ioutil.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCreateDictionaryFromBSV(t *testing.T) {
	path := writeTempDict(t, "english.bsv", "# test dictionary\nFoo|x\nbar|y\nfoo|z\nfish|w\n")
	dict, err := CreateDictionary("english", path, []string{"word", "tag"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"foo", "bar", "fish"}
	if !reflect.DeepEqual(dict.Words, want) {
		t.Errorf("expected %v, got %v", want, dict.Words)
	}
	result := segmenter.Segment("foobarfish", dict.Index)
	if !result.Found {
		t.Error("expected index built from BSV to segment \"foobarfish\"")
	}
}

func TestCreateDictionaryFromWordList(t *testing.T) {
	path := writeTempDict(t, "english.txt", "// comment\nin\nini\nis\nin\n\n")
	dict, err := CreateDictionary("english", path, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"in", "ini", "is"}
	if !reflect.DeepEqual(dict.Words, want) {
		t.Errorf("expected %v, got %v", want, dict.Words)
	}
}

func TestCreateDictionaryEmptyWord(t *testing.T) {
	path := writeTempDict(t, "broken.bsv", "foo|x\n|y\n")
	_, err := CreateDictionary("broken", path, []string{"word", "tag"})
	if !errors.Is(err, segmenter.ErrInvalidWord) {
		t.Fatalf("expected ErrInvalidWord, got %v", err)
	}
}

func TestDictionaryIDStable(t *testing.T) {
	path := writeTempDict(t, "stable.txt", "foo\nbar\n")
	first, err := CreateDictionary("stable", path, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := CreateDictionary("stable", path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID() != second.ID() {
		t.Errorf("IDs differ for identical contents: %s vs %s", first.ID(), second.ID())
	}
}
