package main

import (
	"fmt"
	"io"
	"strings"

	"artshop/internal/session"
	"artshop/internal/topics"
	"artshop/pkg/money"
)

// renderView prints the topic tree with the same expand rules the
// storefront uses: collapsed entries show no children.
func renderView(w io.Writer, view []topics.TopicView) {
	for _, tp := range view {
		fmt.Fprintf(w, "%s %s\n", marker(tp.Expanded, true), tp.Name)
		for _, n := range tp.Subtopics {
			renderNode(w, n, 1)
		}
	}
}

func renderNode(w io.Writer, n topics.NodeView, depth int) {
	indent := strings.Repeat("  ", depth)
	expandable := n.Kind == topics.KindGroup || n.Kind == topics.KindGallery
	label := n.Name
	if n.Kind == topics.KindSound {
		label += " (sound: " + n.Sound + ")"
	}
	fmt.Fprintf(w, "%s%s %s\n", indent, marker(n.Expanded, expandable), label)

	for _, c := range n.Children {
		renderNode(w, c, depth+1)
	}
	for _, it := range n.Items {
		fmt.Fprintf(w, "%s  #%d %s  %s\n", indent, it.Index, it.Name, it.PriceLabel)
	}
}

func marker(expanded, expandable bool) string {
	switch {
	case !expandable:
		return "-"
	case expanded:
		return "v"
	default:
		return ">"
	}
}

func renderCart(w io.Writer, snap session.Snapshot) {
	state := "closed"
	if snap.CartOpen {
		state = "open"
	}
	fmt.Fprintf(w, "cart (%s): %d item(s)\n", state, snap.CartCount)
	for i, it := range snap.Cart {
		name := it.Name
		if name == "" {
			name = "(empty item)"
		}
		fmt.Fprintf(w, "  [%d] %s  %s\n", i, name, money.Format(it.Price))
	}
	fmt.Fprintf(w, "total: %s\n", snap.TotalLabel)
}
