// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package recommend

import (
	"fmt"
	"hash/fnv"
	"math"
	"strconv"

	"github.com/tomtom215/xrecommender/internal/models"
)

// Graph node kinds.
const (
	NodeBook    = "book"
	NodeKeyword = "keyword"
)

// keywordRadius scales keyword node sizes.
const keywordRadius = 6

// paletteSize is the number of hues keyword colours are drawn from.
const paletteSize = 256

// GraphNode is a book or keyword node of the explanation graph.
type GraphNode struct {
	ID    string  `json:"id"`
	Kind  string  `json:"kind"`
	Label string  `json:"label"`
	Title string  `json:"title"`
	Image string  `json:"image,omitempty"`
	Size  float64 `json:"size,omitempty"`
	Color string  `json:"color,omitempty"`
}

// GraphEdge links a keyword node to a book node.
type GraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is the explanation rendered as nodes and edges for a front end.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// BuildGraph lays out books as image nodes and shared keywords as sized,
// coloured nodes. A keyword's size is 6 * (liked support + degree), where
// degree counts its edges to the given books. Keywords that reach none of
// books are left out.
func BuildGraph(expl *Explanation, books []*models.Book) *Graph {
	g := &Graph{Nodes: []GraphNode{}, Edges: []GraphEdge{}}

	present := make(map[int]bool, len(books))
	for _, b := range books {
		if b == nil || present[b.ID] {
			continue
		}
		present[b.ID] = true
		g.Nodes = append(g.Nodes, GraphNode{
			ID:    bookNodeID(b.ID),
			Kind:  NodeBook,
			Label: b.Title,
			Title: b.Title,
			Image: b.Cover,
		})
	}
	if expl == nil {
		return g
	}

	for _, kw := range expl.Keywords {
		kwID := keywordNodeID(kw.Keyword.ID)
		degree := 0
		for _, bookID := range kw.RecommendedBookIDs {
			if !present[bookID] {
				continue
			}
			g.Edges = append(g.Edges, GraphEdge{From: kwID, To: bookNodeID(bookID)})
			degree++
		}
		if degree == 0 {
			continue
		}
		g.Nodes = append(g.Nodes, GraphNode{
			ID:    kwID,
			Kind:  NodeKeyword,
			Label: kw.Keyword.Word,
			Title: kw.Keyword.Word,
			Size:  float64(keywordRadius * (kw.LikedCount() + degree)),
			Color: KeywordColor(kw.Keyword.Word),
		})
	}
	return g
}

// KeywordColor picks a colour for word from a fixed hue palette. The same
// word always gets the same colour.
func KeywordColor(word string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(word))
	return paletteColor(int(h.Sum32() % paletteSize))
}

// paletteColor returns entry i of an evenly spaced hue wheel at fixed
// saturation and lightness, as #rrggbb.
func paletteColor(i int) string {
	hue := float64(i) / paletteSize * 360
	r, g, b := hslToRGB(hue, 0.65, 0.6)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hslToRGB(h, s, l float64) (r, g, b uint8) {
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var rf, gf, bf float64
	switch {
	case h < 60:
		rf, gf, bf = c, x, 0
	case h < 120:
		rf, gf, bf = x, c, 0
	case h < 180:
		rf, gf, bf = 0, c, x
	case h < 240:
		rf, gf, bf = 0, x, c
	case h < 300:
		rf, gf, bf = x, 0, c
	default:
		rf, gf, bf = c, 0, x
	}
	to8 := func(v float64) uint8 { return uint8(math.Round((v + m) * 255)) }
	return to8(rf), to8(gf), to8(bf)
}

func bookNodeID(id int) string    { return "book:" + strconv.Itoa(id) }
func keywordNodeID(id int) string { return "keyword:" + strconv.Itoa(id) }
