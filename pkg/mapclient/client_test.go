//go:build integration

// Integration test for the client SDK.
// Requires a running server: task run
//
// Run: go test -tags=integration ./pkg/mapclient/
package mapclient_test

import (
	"context"
	"os"
	"testing"

	"github.com/munimap/munimap/pkg/mapclient"
)

func baseURL() string {
	if u := os.Getenv("MUNIMAP_BASE_URL"); u != "" {
		return u
	}
	return "http://localhost:8087"
}

func client() mapclient.MunimapAPIClient {
	return mapclient.New(baseURL())
}

func TestHealth(t *testing.T) {
	_, body, err := client().Health(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" {
		t.Fatalf("status=%q, want ok", body.Status)
	}
}

func TestGetInfo(t *testing.T) {
	_, body, err := client().GetInfo(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if body.Name != "munimap" {
		t.Fatalf("name=%q, want munimap", body.Name)
	}
}

func TestListSources(t *testing.T) {
	_, _, err := client().ListSources(context.Background())
	if err != nil {
		t.Fatal(err)
	}
}

func TestListLayers(t *testing.T) {
	_, layers, err := client().ListLayers(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(layers) == 0 {
		t.Fatal("expected the default layer catalog")
	}
}

func TestLayerUpdate(t *testing.T) {
	c := client()
	ctx := context.Background()

	_, layer, err := c.GetLayer(ctx, "districts")
	if err != nil {
		t.Fatal("get:", err)
	}

	layer.Opacity = 0.5
	_, updated, err := c.UpdateLayer(ctx, "districts", layer)
	if err != nil {
		t.Fatal("update:", err)
	}
	if updated.Opacity != 0.5 {
		t.Fatalf("opacity=%v, want 0.5", updated.Opacity)
	}
}

func TestThematicLifecycle(t *testing.T) {
	c := client()
	ctx := context.Background()

	if _, _, err := c.GetLayerFeatures(ctx, "sectors"); err != nil {
		t.Skip("sectors layer not available:", err)
	}

	_, attrs, err := c.ListAttributes(ctx)
	if err != nil {
		t.Fatal("attributes:", err)
	}
	if len(attrs) == 0 {
		t.Skip("no numeric attributes in sectors data")
	}

	_, state, err := c.ApplyThematic(ctx, attrs[0].Name)
	if err != nil {
		t.Fatal("apply:", err)
	}
	if state.Attribute != attrs[0].Name {
		t.Fatalf("attribute=%q, want %q", state.Attribute, attrs[0].Name)
	}
	if len(state.Legend) != len(state.Breaks) {
		t.Fatalf("legend=%d entries, breaks=%d", len(state.Legend), len(state.Breaks))
	}

	if _, _, err := c.ResetThematic(ctx); err != nil {
		t.Fatal("reset:", err)
	}
}

func TestQuery(t *testing.T) {
	_, body, err := client().Query(context.Background(), mapclient.QueryInputBody{
		Query: "SELECT 1 as ok",
	})
	if err != nil {
		t.Fatal(err)
	}
	if body.Count != 1 {
		t.Fatalf("count=%d, want 1", body.Count)
	}
}

func TestListTables(t *testing.T) {
	_, _, err := client().ListTables(context.Background())
	if err != nil {
		t.Fatal(err)
	}
}
