package mailtl

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// translateNodes runs every node through TranslateText. With a concurrency
// above one, up to that many nodes are translated at once; results keep the
// order of nodes either way.
func (t *Translator) translateNodes(ctx context.Context, nodes []TextNode) []NodeResult {
	results := make([]NodeResult, len(nodes))

	if t.concurrency < 2 || len(nodes) < 2 {
		for i, node := range nodes {
			results[i] = t.TranslateText(ctx, node.Text)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(t.concurrency)
	for i, node := range nodes {
		g.Go(func() error {
			// Each goroutine owns results[i]; failures are already folded into the result.
			results[i] = t.TranslateText(ctx, node.Text)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
