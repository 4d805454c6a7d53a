// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package recommend

import (
	"context"
	"regexp"
	"slices"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/xrecommender/internal/embedding"
	"github.com/tomtom215/xrecommender/internal/models"
)

type explainFixture struct {
	user                *models.User
	liked1, liked2, meh *models.Book
	rec1, rec2, rec3    *models.Book
	expl                *Explanation
}

func setupExplanation(t *testing.T) *explainFixture {
	t.Helper()
	ctx := context.Background()
	db := newTestStore(t)
	u := newTestUpdater(t, db)
	x := NewExplainer(db, testConfig(), zerolog.Nop())

	f := &explainFixture{user: createUser(t, db, "reader")}
	f.liked1 = createBook(t, db, "dune", embedding.Vector{1, 0, 0}, "space", "desert", "politics")
	f.liked2 = createBook(t, db, "foundation", embedding.Vector{0, 1, 0}, "space", "empire")
	f.meh = createBook(t, db, "emma", embedding.Vector{0, 0, 1}, "romance", "politics")
	f.rec1 = createBook(t, db, "hyperion", embedding.Vector{1, 1, 0}, "space", "pilgrimage")
	f.rec2 = createBook(t, db, "wolf hall", embedding.Vector{0, 1, 1}, "politics", "romance")
	f.rec3 = createBook(t, db, "the dispossessed", embedding.Vector{1, 0, 1}, "space", "politics", "desert")

	mustRate(t, u, f.user.ID, f.liked1.ID, 1)
	mustRate(t, u, f.user.ID, f.liked2.ID, 0.75)
	mustRate(t, u, f.user.ID, f.meh.ID, 0.5)

	expl, err := x.XAIExplanation(ctx, f.user.ID, []int{f.rec1.ID, f.rec2.ID, f.rec3.ID})
	if err != nil {
		t.Fatalf("XAIExplanation() error = %v", err)
	}
	f.expl = expl
	return f
}

func TestXAIExplanation(t *testing.T) {
	f := setupExplanation(t)

	got := make(map[string]KeywordSupport)
	for _, ks := range f.expl.Keywords {
		got[ks.Keyword.Word] = ks
	}

	// romance is only on a book rated below the threshold
	if _, ok := got["romance"]; ok {
		t.Error("romance is explained but no liked book carries it")
	}
	// empire and pilgrimage are on one side only
	for _, word := range []string{"empire", "pilgrimage"} {
		if _, ok := got[word]; ok {
			t.Errorf("%s is explained but is not shared", word)
		}
	}

	tests := []struct {
		word  string
		liked []int
		recs  []int
	}{
		{"space", []int{f.liked1.ID, f.liked2.ID}, []int{f.rec1.ID, f.rec3.ID}},
		{"desert", []int{f.liked1.ID}, []int{f.rec3.ID}},
		{"politics", []int{f.liked1.ID}, []int{f.rec2.ID, f.rec3.ID}},
	}
	if len(got) != len(tests) {
		t.Fatalf("explained keywords = %v, want %d", f.expl.Keywords, len(tests))
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			ks, ok := got[tt.word]
			if !ok {
				t.Fatalf("%s missing from explanation", tt.word)
			}
			if !slices.Equal(ks.LikedBookIDs, tt.liked) {
				t.Errorf("LikedBookIDs = %v, want %v", ks.LikedBookIDs, tt.liked)
			}
			if !slices.Equal(ks.RecommendedBookIDs, tt.recs) {
				t.Errorf("RecommendedBookIDs = %v, want %v", ks.RecommendedBookIDs, tt.recs)
			}
		})
	}

	for i := 1; i < len(f.expl.Keywords); i++ {
		if f.expl.Keywords[i-1].Keyword.ID >= f.expl.Keywords[i].Keyword.ID {
			t.Errorf("keywords not ordered by ID: %v", f.expl.Keywords)
		}
	}
}

func TestXAIExplanation_Empty(t *testing.T) {
	ctx := context.Background()
	db := newTestStore(t)
	x := NewExplainer(db, testConfig(), zerolog.Nop())
	user := createUser(t, db, "new")
	b := createBook(t, db, "b", embedding.Vector{1, 0, 0}, "space")

	for _, recs := range [][]int{nil, {b.ID}} {
		expl, err := x.XAIExplanation(ctx, user.ID, recs)
		if err != nil {
			t.Fatalf("XAIExplanation() error = %v", err)
		}
		if expl.UserID != user.ID || expl.Keywords == nil || len(expl.Keywords) != 0 {
			t.Errorf("XAIExplanation(%v) = %+v, want no keywords", recs, expl)
		}
	}
}

func TestSortRecBooksByKeywordCount(t *testing.T) {
	f := setupExplanation(t)

	recs := []Recommendation{
		{Book: f.rec1, ScoredBook: ScoredBook{BookID: f.rec1.ID, Score: 3}},
		{Book: f.rec2, ScoredBook: ScoredBook{BookID: f.rec2.ID, Score: 2}},
		{Book: f.rec3, ScoredBook: ScoredBook{BookID: f.rec3.ID, Score: 1}},
	}

	counts := f.expl.BookKeywordCounts()
	// rec1: space(2) = 2; rec2: politics(1) = 1; rec3: space(2)+desert(1)+politics(1) = 4
	wantCounts := map[int]int{f.rec1.ID: 2, f.rec2.ID: 1, f.rec3.ID: 4}
	for id, want := range wantCounts {
		if counts[id] != want {
			t.Errorf("count[%d] = %d, want %d", id, counts[id], want)
		}
	}

	sorted := SortRecBooksByKeywordCount(f.expl, recs)
	wantOrder := []int{f.rec3.ID, f.rec1.ID, f.rec2.ID}
	for i, id := range wantOrder {
		if sorted[i].BookID != id {
			t.Errorf("sorted[%d] = %d, want %d", i, sorted[i].BookID, id)
		}
	}
	if recs[0].BookID != f.rec1.ID {
		t.Error("SortRecBooksByKeywordCount modified its input")
	}

	t.Run("equal counts keep ranking order", func(t *testing.T) {
		got := SortRecBooksByKeywordCount(&Explanation{}, recs)
		for i := range recs {
			if got[i].BookID != recs[i].BookID {
				t.Errorf("got[%d] = %d, want %d", i, got[i].BookID, recs[i].BookID)
			}
		}
	})
}

func TestBuildGraph(t *testing.T) {
	f := setupExplanation(t)
	books := []*models.Book{f.rec1, f.rec2, f.rec3}

	g := BuildGraph(f.expl, books)

	nodes := make(map[string]GraphNode)
	for _, n := range g.Nodes {
		nodes[n.ID] = n
	}
	if len(nodes) != 6 {
		t.Fatalf("graph has %d nodes, want 3 books + 3 keywords", len(nodes))
	}
	if len(g.Edges) != 5 {
		t.Errorf("graph has %d edges, want 5", len(g.Edges))
	}

	book := nodes[bookNodeID(f.rec1.ID)]
	if book.Kind != NodeBook || book.Image != f.rec1.Cover || book.Label != "hyperion" {
		t.Errorf("book node = %+v", book)
	}

	sizes := map[string]float64{
		"space":    6 * (2 + 2),
		"desert":   6 * (1 + 1),
		"politics": 6 * (1 + 2),
	}
	colorRE := regexp.MustCompile(`^#[0-9a-f]{6}$`)
	for _, ks := range f.expl.Keywords {
		n := nodes[keywordNodeID(ks.Keyword.ID)]
		if n.Kind != NodeKeyword {
			t.Errorf("%s node kind = %q", ks.Keyword.Word, n.Kind)
		}
		if n.Size != sizes[ks.Keyword.Word] {
			t.Errorf("%s size = %v, want %v", ks.Keyword.Word, n.Size, sizes[ks.Keyword.Word])
		}
		if !colorRE.MatchString(n.Color) {
			t.Errorf("%s color = %q", ks.Keyword.Word, n.Color)
		}
	}

	t.Run("keywords without a displayed book are dropped", func(t *testing.T) {
		g := BuildGraph(f.expl, []*models.Book{f.rec2})
		for _, n := range g.Nodes {
			if n.Label == "space" || n.Label == "desert" {
				t.Errorf("unexpected keyword node %+v", n)
			}
		}
		if len(g.Edges) != 1 {
			t.Errorf("edges = %v, want politics -> wolf hall", g.Edges)
		}
	})

	t.Run("nil explanation", func(t *testing.T) {
		g := BuildGraph(nil, books)
		if len(g.Nodes) != 3 || len(g.Edges) != 0 {
			t.Errorf("BuildGraph(nil) = %+v", g)
		}
	})
}

func TestKeywordColor(t *testing.T) {
	if KeywordColor("space") != KeywordColor("space") {
		t.Error("KeywordColor is not deterministic")
	}
	if got := paletteColor(0); got != "#db5757" {
		t.Errorf("paletteColor(0) = %q, want #db5757", got)
	}
}
