package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDedupe_FirstOccurrenceWins(t *testing.T) {
	in := []Book{
		{ID: "OL1W", Title: "first"},
		{ID: "OL2W"},
		{ID: "OL1W", Title: "second"},
		{ID: "OL3W"},
		{ID: "OL2W"},
	}

	out := Dedupe(in)

	require.Len(t, out, 3)
	assert.Equal(t, "OL1W", out[0].ID)
	assert.Equal(t, "first", out[0].Title)
	assert.Equal(t, "OL2W", out[1].ID)
	assert.Equal(t, "OL3W", out[2].ID)
	assert.Len(t, in, 5, "input must not be modified")
}

func TestDedupe_Empty(t *testing.T) {
	assert.Empty(t, Dedupe(nil))
}

func genBooks() *rapid.Generator[[]Book] {
	id := rapid.SampledFrom([]string{"OL1W", "OL2W", "OL3W", "OL4W", "OL5W"})
	return rapid.SliceOf(rapid.Custom(func(t *rapid.T) Book {
		return Book{ID: id.Draw(t, "id"), Pages: rapid.IntRange(0, 1000).Draw(t, "pages")}
	}))
}

func TestDedupe_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := genBooks().Draw(t, "books")
		out := Dedupe(in)

		seen := map[string]bool{}
		for _, b := range out {
			if seen[b.ID] {
				t.Fatalf("duplicate id %q", b.ID)
			}
			seen[b.ID] = true
		}

		// Output is an order-preserving subsequence of the input.
		j := 0
		for i := 0; i < len(in) && j < len(out); i++ {
			if in[i] == out[j] {
				j++
			}
		}
		if j != len(out) {
			t.Fatalf("output is not a subsequence of input")
		}

		// Every input id survives.
		for _, b := range in {
			if !seen[b.ID] {
				t.Fatalf("id %q dropped", b.ID)
			}
		}

		again := Dedupe(out)
		if len(again) != len(out) {
			t.Fatalf("dedupe is not idempotent")
		}
	})
}
