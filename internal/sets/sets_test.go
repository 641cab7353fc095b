package sets

import (
	"errors"
	"testing"

	"github.com/schemacache/schemacache/internal/schema"
)

func mk(canonical, ns string) *schema.Schema {
	return &schema.Schema{
		Name:              schema.NameFor(canonical),
		CanonicalLocation: canonical,
		Location:          canonical,
		TargetNamespace:   ns,
	}
}

func TestBuildIndexes(t *testing.T) {
	a := mk("/lib/a.xsd", "urn:a")
	b := mk("/lib/b.xsd", "urn:b")
	a2 := mk("/ext/a2.xsd", "urn:a")

	set, err := Build([]*schema.Schema{a, b, a2})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if set.Len() != 3 {
		t.Fatalf("Len = %d, want 3", set.Len())
	}

	got := set.ByNamespace("urn:a")
	if len(got) != 2 || got[0] != a || got[1] != a2 {
		t.Errorf("ByNamespace(urn:a) = %v, want [a a2] in builder order", got)
	}

	first, ok := set.First("urn:a")
	if !ok || first != a {
		t.Errorf("First(urn:a) = %v, want a", first)
	}
	if _, ok := set.First("urn:none"); ok {
		t.Error("First(urn:none) should be absent")
	}

	ns := set.Namespaces()
	if len(ns) != 2 || ns[0] != "urn:a" || ns[1] != "urn:b" {
		t.Errorf("Namespaces = %v", ns)
	}
}

func TestByLocation(t *testing.T) {
	a := mk("/lib/a.xsd", "urn:a")
	b := mk("/lib/sub/b.xsd", "urn:b")
	set, err := Build([]*schema.Schema{a, b})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if got, ok := set.ByLocation("/lib/a.xsd"); !ok || got != a {
		t.Errorf("exact lookup = %v, %v", got, ok)
	}
	if got, ok := set.ByLocation("sub/b.xsd"); !ok || got != b {
		t.Errorf("suffix lookup = %v, %v", got, ok)
	}
	if _, ok := set.ByLocation("/other/x.xsd"); ok {
		t.Error("unknown location should be absent")
	}
	if _, ok := set.ByLocation(""); ok {
		t.Error("empty location should be absent")
	}
}

func TestByLocationAmbiguousSuffix(t *testing.T) {
	set, err := Build([]*schema.Schema{
		mk("/one/common.xsd", "urn:one"),
		mk("/two/common.xsd", "urn:two"),
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	// Two candidates end in common.xsd; the match is never resolved
	// arbitrarily.
	if _, ok := set.ByLocation("common.xsd"); ok {
		t.Error("ambiguous suffix must report not found")
	}
}

func TestByLocationAdvertised(t *testing.T) {
	a := mk("/lib/a.xsd", "urn:a")
	rewritten := a.WithLocation("http://host/schema/a.xsd")
	set, err := Build([]*schema.Schema{rewritten})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if got, ok := set.ByLocation("http://host/schema/a.xsd"); !ok || got != rewritten {
		t.Errorf("advertised lookup = %v, %v", got, ok)
	}
	// The canonical location still resolves after the rewrite.
	if got, ok := set.ByLocation("/lib/a.xsd"); !ok || got != rewritten {
		t.Errorf("canonical lookup = %v, %v", got, ok)
	}
}

func TestBuildConflict(t *testing.T) {
	a := mk("/one/a.xsd", "urn:one").WithLocation("http://host/schema/a.xsd")
	b := mk("/two/a.xsd", "urn:two").WithLocation("http://host/schema/a.xsd")

	_, err := Build([]*schema.Schema{a, b})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want *ConflictError", err)
	}
	if conflict.Location != "http://host/schema/a.xsd" {
		t.Errorf("conflict.Location = %q", conflict.Location)
	}
}
