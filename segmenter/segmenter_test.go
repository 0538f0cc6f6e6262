package segmenter

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustBuild(t *testing.T, words ...string) *PrefixIndex {
	t.Helper()
	index, err := Build(words)
	if err != nil {
		t.Fatal(err)
	}
	return index
}

func TestSegmentConcreteScenario(t *testing.T) {
	index := mustBuild(t, "foo", "bar", "fish", "h", "is", "ini", "in")
	result := Segment("ininisbarfish", index)
	if !result.Found {
		t.Fatal("expected a segmentation for \"ininisbarfish\"")
	}
	if joined := strings.Join(result.Words, ""); joined != "ininisbarfish" {
		t.Errorf("words do not concatenate back to the input: %q", joined)
	}
	want := []string{"in", "in", "is", "bar", "fish"}
	if diff := cmp.Diff(want, result.Words); diff != "" {
		t.Errorf("unexpected segmentation (-want +got):\n%s", diff)
	}
	if rendered := result.Rendered(); rendered != "in in is bar fish" {
		t.Errorf("unexpected rendering %q", rendered)
	}
}

func TestSegmentRoundTrip(t *testing.T) {
	dictionaries := [][]string{
		{"a", "ab", "b"},
		{"foo", "bar", "fish", "h", "is", "ini", "in"},
		{"да", "нет", "можно"},
	}
	sequences := [][]int{
		{0}, {0, 0}, {1, 2, 0}, {2, 1, 1, 0}, {0, 1, 2, 2, 1, 0},
	}
	for _, dict := range dictionaries {
		index := mustBuild(t, dict...)
		for _, seq := range sequences {
			var b strings.Builder
			for _, i := range seq {
				b.WriteString(dict[i%len(dict)])
			}
			text := b.String()
			result := Segment(text, index)
			if !result.Found {
				t.Errorf("no segmentation found for %q over %v", text, dict)
				continue
			}
			if joined := strings.Join(result.Words, ""); joined != text {
				t.Errorf("segmentation of %q reassembles to %q", text, joined)
			}
		}
	}
}

func TestSegmentNotFound(t *testing.T) {
	index := mustBuild(t, "ab", "cd")
	cases := []string{
		"xyz", // no word matches anywhere
		"abx", // leftover symbol after a match
		"a",   // proper prefix of a word only
	}
	for _, text := range cases {
		result := Segment(text, index)
		if result.Found {
			t.Errorf("expected NotFound for %q, got %v", text, result.Words)
		}
		if result.Words != nil {
			t.Errorf("NotFound result for %q should carry no words, got %v", text, result.Words)
		}
	}
}

func TestSegmentEmptyText(t *testing.T) {
	index := mustBuild(t, "a", "b")
	result := Segment("", index)
	if !result.Found {
		t.Fatal("empty text must segment into zero words")
	}
	if len(result.Words) != 0 || result.Words == nil {
		t.Errorf("expected empty non-nil word sequence, got %#v", result.Words)
	}
	if result.Rendered() != "" {
		t.Errorf("empty segmentation must render as empty string, got %q", result.Rendered())
	}
}

func TestSegmentDeterminism(t *testing.T) {
	index := mustBuild(t, "foo", "bar", "fish", "h", "is", "ini", "in")
	first := Segment("ininisbarfish", index)
	for i := 0; i < 10; i++ {
		again := Segment("ininisbarfish", index)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differed (-first +again):\n%s", i, diff)
		}
	}
}

func TestSegmentSharedIndex(t *testing.T) {
	// The index is read-only after Build and may serve concurrent calls.
	index := mustBuild(t, "go", "pher", "gopher")
	texts := []string{"gopher", "gophergo", "gogopher", "pher"}
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			for _, text := range texts {
				result := Segment(text, index)
				if !result.Found {
					t.Errorf("goroutine %d: expected segmentation for %q", i, text)
					return
				}
				if joined := strings.Join(result.Words, ""); joined != text {
					t.Errorf("goroutine %d: %q reassembled to %q", i, text, joined)
					return
				}
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}

func TestSegmentMultiByteText(t *testing.T) {
	index := mustBuild(t, "да", "нет")
	result := Segment("данетда", index)
	if !result.Found {
		t.Fatal("expected segmentation of multi-byte text")
	}
	want := []string{"да", "нет", "да"}
	if diff := cmp.Diff(want, result.Words); diff != "" {
		t.Errorf("unexpected segmentation (-want +got):\n%s", diff)
	}
}

func TestSegmentContextCancelled(t *testing.T) {
	index := mustBuild(t, "a", "aa")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := SegmentContext(ctx, strings.Repeat("a", 64), index)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestSegmentContextCompletes(t *testing.T) {
	index := mustBuild(t, "a", "aa")
	result, err := SegmentContext(context.Background(), "aaaa", index)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Found {
		t.Fatal("expected segmentation")
	}
}
