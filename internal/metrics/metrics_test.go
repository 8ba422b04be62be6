package metrics_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/aretw0/skilltree/internal/metrics"
	"github.com/aretw0/skilltree/pkg/domain"
)

func TestCollector_Hooks(t *testing.T) {
	c := metrics.NewCollector()
	var forwarded int
	hooks := c.Hooks(domain.LifecycleHooks{
		OnToggle: func(context.Context, *domain.ToggleEvent) { forwarded++ },
	})
	ctx := context.Background()

	hooks.OnToggle(ctx, &domain.ToggleEvent{NodeID: "a", Applied: true, Selected: true})
	hooks.OnToggle(ctx, &domain.ToggleEvent{NodeID: "a", Applied: true, Cascaded: []string{"b", "c"}})
	hooks.OnToggle(ctx, &domain.ToggleEvent{NodeID: "x"})
	hooks.OnGraphChange(ctx, &domain.GraphEvent{EventBase: domain.EventBase{Type: domain.EventSkillAdded}})
	hooks.OnSave(ctx, &domain.StoreEvent{Key: "skillTreeNodes"})
	hooks.OnSave(ctx, &domain.StoreEvent{Key: "skillTreeEdges", Error: errors.New("boom")})
	hooks.OnLoadFallback(ctx, &domain.StoreEvent{Key: "skillTreeNodes"})

	assert.Equal(t, 3, forwarded)

	out := scrape(t, c.Handler())
	for _, line := range []string{
		`skilltree_toggles_total{result="selected"} 1`,
		`skilltree_toggles_total{result="deselected"} 1`,
		`skilltree_toggles_total{result="ignored"} 1`,
		`skilltree_cascaded_deselections_total 2`,
		`skilltree_graph_changes_total{type="skill_added"} 1`,
		`skilltree_store_writes_total{key="skillTreeEdges",result="error"} 1`,
		`skilltree_store_writes_total{key="skillTreeNodes",result="ok"} 1`,
		`skilltree_load_fallbacks_total{key="skillTreeNodes"} 1`,
	} {
		assert.Contains(t, out, line)
	}
}

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestCollector_MiddlewareAndHandler(t *testing.T) {
	c := metrics.NewCollector()
	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/trees/{treeID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", c.Handler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/trees/a", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/trees/b", nil))

	out := scrape(t, r)
	assert.Contains(t, out, `skilltree_http_requests_total{method="GET",route="/trees/{treeID}",status="418"} 2`)
}
