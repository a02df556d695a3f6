package variant

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yourusername/tablabaki/pkg/engine"
)

func TestEmbeddedCatalog(t *testing.T) {
	s := NewEmbeddedStore()
	names, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"hypergammon", "nackgammon", "plakoto", "standard"}
	if len(names) != len(want) {
		t.Fatalf("List() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestEmbeddedVariantsLoad(t *testing.T) {
	s := NewEmbeddedStore()
	ctx := context.Background()
	names, _ := s.List(ctx)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			rs, layout, err := s.Load(ctx, name)
			if err != nil {
				t.Fatalf("Load(%q) failed: %v", name, err)
			}
			if rs.Variant != name {
				t.Errorf("Variant = %q, want %q", rs.Variant, name)
			}
			g, err := engine.NewGame(rs)
			if err != nil {
				t.Fatal(err)
			}
			if err := g.Start(layout); err != nil {
				t.Fatalf("Start failed: %v", err)
			}
			for _, c := range engine.Colors {
				if got, want := g.Board().Checkers(c), layout.Total(c); got != want {
					t.Errorf("Checkers(%s) = %d, want %d", c, got, want)
				}
			}
		})
	}
}

func TestStandardParams(t *testing.T) {
	rs, layout, err := NewEmbeddedStore().Load(context.Background(), "standard")
	if err != nil {
		t.Fatal(err)
	}
	p := rs.Params
	if p.Points != 24 || p.DoublesUses != 4 {
		t.Errorf("Points/DoublesUses = %d/%d, want 24/4", p.Points, p.DoublesUses)
	}
	if p.Directions != engine.DefaultDirections {
		t.Errorf("Directions = %v", p.Directions)
	}
	if !p.CombinedNormal || p.CombinedEnter || p.CombinedBearOff {
		t.Errorf("combined flags = %v/%v/%v, want true/false/false", p.CombinedNormal, p.CombinedEnter, p.CombinedBearOff)
	}
	if p.Interaction != engine.Hit {
		t.Errorf("Interaction = %s, want hit", p.Interaction)
	}
	if len(rs.Rules) != 4 {
		t.Errorf("got %d rules, want 4", len(rs.Rules))
	}
	if layout[engine.White][24] != 2 || layout[engine.Black][19] != 5 {
		t.Errorf("layout = %v", layout)
	}
}

func TestPlakotoPins(t *testing.T) {
	rs, layout, err := NewEmbeddedStore().Load(context.Background(), "plakoto")
	if err != nil {
		t.Fatal(err)
	}
	if rs.Params.Interaction != engine.Pin || !rs.PinInstead() || rs.CanHit() {
		t.Errorf("Interaction = %s, want pin", rs.Params.Interaction)
	}
	if layout.Total(engine.White) != 15 || layout.Total(engine.Black) != 15 {
		t.Errorf("totals = %d/%d", layout.Total(engine.White), layout.Total(engine.Black))
	}
}

func TestGetUnknownVariant(t *testing.T) {
	s := NewEmbeddedStore()
	_, err := s.Get(context.Background(), "tavla")
	if !errors.Is(err, ErrVariantNotFound) {
		t.Errorf("Get error = %v, want ErrVariantNotFound", err)
	}
	if _, err := s.Raw(context.Background(), "tavla"); !errors.Is(err, ErrVariantNotFound) {
		t.Errorf("Raw error = %v, want ErrVariantNotFound", err)
	}
}

func TestParseDefaults(t *testing.T) {
	def, err := Parse([]byte(`{"board":{"initial_setup":{"white":{"6":1},"black":{"19":1}}}}`), "minimal")
	if err != nil {
		t.Fatal(err)
	}
	rs, err := def.RuleSet()
	if err != nil {
		t.Fatal(err)
	}
	if rs.Variant != "minimal" {
		t.Errorf("Variant = %q, want minimal", rs.Variant)
	}
	// movement, hitting and bearing off are always present.
	if len(rs.Rules) != 3 {
		t.Errorf("got %d rules, want 3", len(rs.Rules))
	}
	if rs.Params != engine.DefaultParams() {
		t.Errorf("Params = %+v, want defaults", rs.Params)
	}
}

func TestParseRejectsBadDefinitions(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad json", `{"board":`},
		{"bad direction", `{"movement":{"direction":{"white":2}}}`},
		{"same direction", `{"movement":{"direction":{"white":1,"black":1}}}`},
		{"bad color", `{"movement":{"direction":{"red":1}}}`},
		{"tiny board", `{"board":{"points":8}}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			def, err := Parse([]byte(tc.doc), "x")
			if err == nil {
				_, err = def.RuleSet()
			}
			if !errors.Is(err, ErrInvalidVariant) {
				t.Errorf("error = %v, want ErrInvalidVariant", err)
			}
		})
	}
}

func TestLayoutRejectsOffBoardPoint(t *testing.T) {
	def, err := Parse([]byte(`{"board":{"initial_setup":{"white":{"25":1}}}}`), "x")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := def.Layout(); !errors.Is(err, ErrInvalidVariant) {
		t.Errorf("Layout error = %v, want ErrInvalidVariant", err)
	}
}

func TestHittingSectionMapsInteraction(t *testing.T) {
	tests := []struct {
		doc  string
		want engine.Interaction
	}{
		{`{"hitting":{"can_hit":true}}`, engine.Hit},
		{`{"hitting":{"pin_instead":true,"can_hit":false}}`, engine.Pin},
		{`{"hitting":{"can_hit":false}}`, engine.NoContact},
		{`{"hitting":{"can_hit":true,"send_to_bar":false}}`, engine.NoContact},
	}
	for _, tc := range tests {
		def, _ := Parse([]byte(tc.doc), "x")
		p, err := def.Params()
		if err != nil {
			t.Fatal(err)
		}
		if p.Interaction != tc.want {
			t.Errorf("%s: Interaction = %s, want %s", tc.doc, p.Interaction, tc.want)
		}
	}
}

func TestDirStore(t *testing.T) {
	dir := t.TempDir()
	doc := `{"name":"ignored","board":{"points":24,"initial_setup":{"white":{"6":2},"black":{"19":2}}},"dice":{"doubles_uses":2}}`
	if err := os.WriteFile(filepath.Join(dir, "short.json"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewDirStore(dir)
	names, err := s.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "short" {
		t.Fatalf("List() = %v, want [short]", names)
	}
	rs, _, err := s.Load(context.Background(), "short")
	if err != nil {
		t.Fatal(err)
	}
	if rs.Variant != "short" || rs.Params.DoublesUses != 2 {
		t.Errorf("Variant/DoublesUses = %q/%d", rs.Variant, rs.Params.DoublesUses)
	}
	raw, err := s.Raw(context.Background(), "short")
	if err != nil || string(raw) != doc {
		t.Errorf("Raw() = %q, %v", raw, err)
	}
}

func TestDirStoreBadFile(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644)
	if _, err := NewDirStore(dir).List(context.Background()); !errors.Is(err, ErrInvalidVariant) {
		t.Errorf("List error = %v, want ErrInvalidVariant", err)
	}
}
