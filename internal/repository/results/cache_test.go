package results

import (
	"fmt"
	"testing"

	"github.com/kailas-cloud/prospect/internal/domain"
)

func match(id string) domain.CompanyMatch {
	return domain.CompanyMatch{CompanyID: id, CompanyName: "Company " + id}
}

func TestCache_PutReplacesWholesale(t *testing.T) {
	c, err := New(8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c.Put("s", []domain.CompanyMatch{match("a"), match("b")})
	c.Put("s", []domain.CompanyMatch{match("c")})

	got, ok := c.Get("s")
	if !ok || len(got) != 1 || got[0].CompanyID != "c" {
		t.Errorf("expected replaced set [c], got %v (ok=%v)", got, ok)
	}
}

func TestCache_EmptySessionFallsBackToDefault(t *testing.T) {
	c, _ := New(8)

	c.Put("", []domain.CompanyMatch{match("a")})

	if got, ok := c.Get(DefaultSession); !ok || len(got) != 1 {
		t.Errorf("expected default-session set, got %v (ok=%v)", got, ok)
	}
	if m, ok := c.GetByPosition("", 0); !ok || m.CompanyID != "a" {
		t.Errorf("expected a at position 0, got (%q,%v)", m.CompanyID, ok)
	}
}

func TestCache_GetByPositionBounds(t *testing.T) {
	c, _ := New(8)
	c.Put("s", []domain.CompanyMatch{match("a"), match("b")})

	for i, want := range []string{"a", "b"} {
		m, ok := c.GetByPosition("s", i)
		if !ok || m.CompanyID != want {
			t.Errorf("position %d: got (%q,%v), want %q", i, m.CompanyID, ok, want)
		}
	}
	if _, ok := c.GetByPosition("s", 2); ok {
		t.Error("index past the end must report absence")
	}
	if _, ok := c.GetByPosition("s", -1); ok {
		t.Error("negative index must report absence")
	}
	if _, ok := c.GetByPosition("unknown", 0); ok {
		t.Error("unknown session must report absence")
	}
}

func TestCache_EmptySetIsStillCached(t *testing.T) {
	c, _ := New(8)
	c.Put("s", nil)

	got, ok := c.Get("s")
	if !ok {
		t.Fatal("an empty result set is a valid cached value")
	}
	if len(got) != 0 {
		t.Errorf("expected empty set, got %v", got)
	}
	if _, ok := c.GetByPosition("s", 0); ok {
		t.Error("position 0 of an empty set must report absence")
	}
}

func TestCache_EvictsLeastRecentSession(t *testing.T) {
	c, _ := New(2)

	c.Put("s1", []domain.CompanyMatch{match("a")})
	c.Put("s2", []domain.CompanyMatch{match("b")})
	c.Put("s3", []domain.CompanyMatch{match("c")})

	if _, ok := c.Get("s1"); ok {
		t.Error("oldest session should have been evicted")
	}
	for i, s := range []string{"s2", "s3"} {
		if _, ok := c.Get(s); !ok {
			t.Errorf("session %d (%s) unexpectedly evicted", i, s)
		}
	}
}

func TestCache_ManySessions(t *testing.T) {
	c, _ := New(64)
	for i := 0; i < 64; i++ {
		c.Put(fmt.Sprintf("s%d", i), []domain.CompanyMatch{match(fmt.Sprintf("c%d", i))})
	}
	for i := 0; i < 64; i++ {
		m, ok := c.GetByPosition(fmt.Sprintf("s%d", i), 0)
		if !ok || m.CompanyID != fmt.Sprintf("c%d", i) {
			t.Fatalf("session s%d: got (%q,%v)", i, m.CompanyID, ok)
		}
	}
}
