package confines

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDeclareFeature(t *testing.T) {
	typ := NewResourceType("service", testEnv())

	if err := typ.DeclareFeature("enableable", "Can enable.", nil); err != nil {
		t.Fatalf("DeclareFeature() error = %v", err)
	}
	if err := typ.DeclareFeature("refreshable", "Can refresh.", Criteria{"methods": "Refresh"}); err != nil {
		t.Fatalf("DeclareFeature() error = %v", err)
	}

	fc, ok := typ.Feature("refreshable")
	if !ok {
		t.Fatal("Feature(refreshable) not found")
	}
	if got, want := fc.Len(), 1; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
	if got, want := fc.Label(), "service.refreshable"; got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
}

func TestDeclareFeatureDuplicate(t *testing.T) {
	typ := NewResourceType("service", testEnv())
	if err := typ.DeclareFeature("enableable", "Can enable.", nil); err != nil {
		t.Fatalf("DeclareFeature() error = %v", err)
	}

	err := typ.DeclareFeature("Enableable", "Again.", nil)
	if err == nil {
		t.Fatal("DeclareFeature() expected error on duplicate name")
	}
	var de *DefinitionError
	if !errors.As(err, &de) {
		t.Fatalf("error = %T, want *DefinitionError", err)
	}
	if !strings.Contains(err.Error(), "enableable") {
		t.Errorf("error %q does not name the duplicate feature", err)
	}
}

func TestDeclareFeatureRequiresDocs(t *testing.T) {
	typ := NewResourceType("service", testEnv())
	if err := typ.DeclareFeature("enableable", "", nil); err == nil {
		t.Fatal("DeclareFeature() expected error for missing docs")
	}
}

func TestMustDeclareFeaturePanics(t *testing.T) {
	typ := NewResourceType("service", testEnv())
	typ.MustDeclareFeature("enableable", "Can enable.", nil)

	defer func() {
		if recover() == nil {
			t.Error("MustDeclareFeature() did not panic on duplicate")
		}
	}()
	typ.MustDeclareFeature("enableable", "Again.", nil)
}

func TestFeaturesSorted(t *testing.T) {
	typ := NewResourceType("service", testEnv())
	for _, name := range []string{"zeta", "alpha", "mid"} {
		typ.MustDeclareFeature(name, "Docs for "+name+".", nil)
	}

	got := typ.Features()
	want := []string{"alpha", "mid", "zeta"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Features() mismatch (-want +got):\n%s", diff)
	}
}

func TestProvideDuplicate(t *testing.T) {
	typ := NewResourceType("service", testEnv())
	if _, err := typ.Provide("systemd"); err != nil {
		t.Fatalf("Provide() error = %v", err)
	}
	if _, err := typ.Provide("systemd"); err == nil {
		t.Fatal("Provide() expected error on duplicate name")
	}
	if _, err := typ.Provide(""); err == nil {
		t.Fatal("Provide() expected error on empty name")
	}
}

func TestFeatureDocumentation(t *testing.T) {
	typ := NewResourceType("service", testEnv())
	typ.MustDeclareFeature("enableable", "The provider can\n\tenable   and disable\nthe service.", nil)
	typ.MustDeclareFeature("refreshable", "The provider can refresh.", nil)

	t.Run("docs collapse whitespace", func(t *testing.T) {
		docs := typ.FeatureDocumentation()
		if !strings.Contains(docs, "enableable: The provider can enable and disable the service.") {
			t.Errorf("documentation %q does not collapse whitespace runs", docs)
		}
		if strings.Contains(docs, "Provider support") {
			t.Error("documentation renders a matrix without registered providers")
		}
	})

	t.Run("matrix with providers", func(t *testing.T) {
		systemd := typ.MustProvide("systemd")
		systemd.DeclareCapabilities("enableable")
		typ.MustProvide("init")

		docs := typ.FeatureDocumentation()
		if !strings.Contains(docs, "Provider support") {
			t.Fatalf("documentation %q missing capability matrix", docs)
		}
		for _, want := range []string{"systemd", "init", "X"} {
			if !strings.Contains(docs, want) {
				t.Errorf("documentation missing %q:\n%s", want, docs)
			}
		}
	})
}

func TestFeatureDocumentationEmpty(t *testing.T) {
	typ := NewResourceType("service", testEnv())
	if got := typ.FeatureDocumentation(); got != "" {
		t.Errorf("FeatureDocumentation() = %q for featureless type, want empty", got)
	}
}
