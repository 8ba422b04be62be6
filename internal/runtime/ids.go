package runtime

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/aretw0/skilltree/pkg/domain"
)

// IDGenerator picks fresh node and edge ids for a graph.
type IDGenerator interface {
	NodeID(g domain.Graph) string
	EdgeID(g domain.Graph) string
}

// SequentialIDs numbers ids past the highest numeric suffix in use
// ("node-7" after "node-6"), so deleted or reordered ids are never reused.
type SequentialIDs struct{}

func (SequentialIDs) NodeID(g domain.Graph) string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return next("node-", ids)
}

func (SequentialIDs) EdgeID(g domain.Graph) string {
	ids := make([]string, len(g.Edges))
	for i, e := range g.Edges {
		ids[i] = e.ID
	}
	return next("edge-", ids)
}

func next(prefix string, taken []string) string {
	highest := 0
	for _, id := range taken {
		n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
		if err != nil || !strings.HasPrefix(id, prefix) {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return prefix + strconv.Itoa(highest+1)
}

// UUIDs generates random ids, for trees edited from several places at once.
type UUIDs struct{}

func (UUIDs) NodeID(domain.Graph) string { return "node-" + uuid.NewString() }
func (UUIDs) EdgeID(domain.Graph) string { return "edge-" + uuid.NewString() }
