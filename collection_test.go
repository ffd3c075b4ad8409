package confines

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCollectionEmptyInvalid(t *testing.T) {
	c := NewCollection("empty", testEnv())
	if c.Valid(nil) {
		t.Error("Valid() = true for empty collection, want false")
	}
	if got := c.Summary(nil); len(got) != 0 {
		t.Errorf("Summary() = %v for empty collection, want empty", got)
	}
}

func TestCollectionValid(t *testing.T) {
	env := testEnv()

	tests := []struct {
		name     string
		criteria Criteria
		want     bool
	}{
		{"all pass", Criteria{"true": true, "exists": "/etc/passwd", "os": "linux"}, true},
		{"one fails", Criteria{"true": true, "exists": "/no/such/file"}, false},
		{"fact mismatch", Criteria{"os": "darwin"}, false},
		{"global feature", Criteria{"feature": "posix"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCollection("test", env)
			c.Confine(tt.criteria)
			if got := c.Valid(nil); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCollectionForBinary(t *testing.T) {
	env := testEnv()

	c := NewCollection("test", env)
	c.Confine(Criteria{"exists": "systemctl", ForBinary: true})

	// The reserved key itself must not become a confine.
	if got, want := c.Len(), 1; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	if !c.Valid(nil) {
		t.Error("Valid() = false for binary on the search path")
	}

	// Without the flag the same value is a literal path, which is absent.
	c = NewCollection("test", env)
	c.Confine(Criteria{"exists": "systemctl"})
	if c.Valid(nil) {
		t.Error("Valid() = true for literal path that does not exist")
	}
}

func TestCollectionForBinaryScopedToExists(t *testing.T) {
	env := testEnv()
	c := NewCollection("test", env)
	c.Confine(Criteria{"exists": "systemctl", "os": "linux", ForBinary: true})

	if got, want := c.Len(), 2; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	if !c.Valid(nil) {
		t.Error("Valid() = false, want true")
	}
}

func TestCollectionSkipsValuelessCriteria(t *testing.T) {
	c := NewCollection("test", testEnv())
	c.Confine(Criteria{"exists": []string{}, "os": nil})
	if got, want := c.Len(), 0; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
}

func TestCollectionLabelsConfines(t *testing.T) {
	c := NewCollection("service.enableable", testEnv())
	c.Confine(Criteria{"true": true})
	if got, want := c.Len(), 1; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	if got, want := c.confines[0].Label(), "service.enableable"; got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
}

func TestCollectionSummary(t *testing.T) {
	env := testEnv()

	t.Run("missing files", func(t *testing.T) {
		c := NewCollection("test", env)
		c.Confine(Criteria{"exists": []string{"/etc/passwd", "/no/a", "/no/b"}})

		got := c.Summary(nil)
		want := map[string]any{"exists": []string{"/no/a", "/no/b"}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Summary() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing methods union is deduplicated", func(t *testing.T) {
		c := NewCollection("test", env)
		c.Confine(Criteria{"methods": []string{"one", "two"}})
		c.Confine(Criteria{"methods": []string{"two", "three"}})

		got := c.Summary(struct{}{})
		want := map[string]any{"methods": []string{"one", "three", "two"}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Summary() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("boolean kinds count passing values", func(t *testing.T) {
		c := NewCollection("test", env)
		c.Confine(Criteria{"true": []any{true, false, "x"}})

		got := c.Summary(nil)
		want := map[string]any{"true": 2}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Summary() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("failing facts keyed by name", func(t *testing.T) {
		c := NewCollection("test", env)
		c.Confine(Criteria{"os": []string{"darwin", "windows"}})
		c.Confine(Criteria{"release": "12"}) // passes, omitted

		got := c.Summary(nil)
		want := map[string]any{"variable": map[string][]any{"os": {"darwin", "windows"}}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Summary() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("passing kinds are omitted", func(t *testing.T) {
		c := NewCollection("test", env)
		c.Confine(Criteria{"exists": "/etc/passwd", "feature": "posix", "methods": "Enable"})

		if got := c.Summary(fakeService{}); len(got) != 0 {
			t.Errorf("Summary() = %v, want empty", got)
		}
	})
}

func TestNewFeatureCollectionRequiredArgs(t *testing.T) {
	env := testEnv()
	tests := []struct {
		name, fname, label, docs string
	}{
		{"missing name", "", "t.f", "docs"},
		{"missing label", "f", "", "docs"},
		{"missing docs", "f", "t.f", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFeatureCollection(tt.fname, tt.label, tt.docs, env)
			if err == nil {
				t.Fatal("NewFeatureCollection() expected error")
			}
			var de *DefinitionError
			if !errors.As(err, &de) {
				t.Fatalf("error = %T, want *DefinitionError", err)
			}
		})
	}
}

func TestFeatureCollectionClone(t *testing.T) {
	env := testEnv()
	orig, err := NewFeatureCollection("enableable", "service.enableable", "Can enable.", env)
	if err != nil {
		t.Fatal(err)
	}
	orig.Confine(Criteria{"true": true})

	clone := orig.Clone()
	if got, want := clone.Name(), "enableable"; got != want {
		t.Errorf("clone Name() = %q, want %q", got, want)
	}
	if got, want := clone.Docs(), "Can enable."; got != want {
		t.Errorf("clone Docs() = %q, want %q", got, want)
	}
	if got, want := clone.Len(), orig.Len(); got != want {
		t.Fatalf("clone Len() = %d, want %d", got, want)
	}

	// Appending to the clone must not be observable from the original or
	// from a sibling clone.
	sibling := orig.Clone()
	clone.Confine(Criteria{"false": true})

	if got, want := orig.Len(), 1; got != want {
		t.Errorf("original Len() = %d after extending clone, want %d", got, want)
	}
	if got, want := sibling.Len(), 1; got != want {
		t.Errorf("sibling clone Len() = %d after extending clone, want %d", got, want)
	}
	if got, want := clone.Len(), 2; got != want {
		t.Errorf("clone Len() = %d, want %d", got, want)
	}

	if !orig.Valid(nil) {
		t.Error("original Valid() = false after extending clone")
	}
	if clone.Valid(nil) {
		t.Error("clone Valid() = true, want false after appending failing confine")
	}
}
