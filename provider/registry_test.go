package provider_test

import (
	"context"
	"errors"
	"testing"

	"github.com/arborworks/arbor/core/protocol"
	"github.com/arborworks/arbor/provider"
)

type fakeProvider struct {
	name string
}

func (p *fakeProvider) Generate(context.Context, []protocol.Message) (provider.Reply, error) {
	return provider.Reply{Text: p.name, Role: protocol.RoleAssistant}, nil
}

func (p *fakeProvider) HasPendingToolCalls() bool { return false }

func (p *fakeProvider) ClearPendingToolState() {}

func (p *fakeProvider) Fork() provider.Provider { return p }

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := provider.NewRegistry()

	created := 0
	err := r.Register("fake", func() (provider.Provider, error) {
		created++
		return &fakeProvider{name: "fake"}, nil
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if created != 0 {
		t.Error("registration should not instantiate")
	}

	p1, err := r.Get("fake")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	p2, err := r.Get("fake")
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}

	if created != 1 {
		t.Errorf("lazy instantiation should happen once, got %d", created)
	}
	if p1 != p2 {
		t.Error("Get should return the cached instance")
	}
}

func TestRegistry_Register_EmptyName(t *testing.T) {
	r := provider.NewRegistry()

	err := r.Register("", func() (provider.Provider, error) { return nil, nil })
	if !errors.Is(err, provider.ErrEmptyName) {
		t.Errorf("got %v, want ErrEmptyName", err)
	}
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	r := provider.NewRegistry()
	factory := func() (provider.Provider, error) { return &fakeProvider{}, nil }

	if err := r.Register("dup", factory); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register("dup", factory); !errors.Is(err, provider.ErrExists) {
		t.Errorf("got %v, want ErrExists", err)
	}
}

func TestRegistry_Get_Unknown(t *testing.T) {
	r := provider.NewRegistry()

	if _, err := r.Get("ghost"); !errors.Is(err, provider.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestRegistry_Get_FactoryFailure(t *testing.T) {
	r := provider.NewRegistry()
	boom := errors.New("construction failed")
	r.Register("broken", func() (provider.Provider, error) { return nil, boom })

	if _, err := r.Get("broken"); !errors.Is(err, boom) {
		t.Errorf("got %v, want wrapped factory error", err)
	}
}

func TestRegistry_Replace_InvalidatesCache(t *testing.T) {
	r := provider.NewRegistry()
	r.Register("p", func() (provider.Provider, error) { return &fakeProvider{name: "old"}, nil })

	old, _ := r.Get("p")

	if err := r.Replace("p", func() (provider.Provider, error) {
		return &fakeProvider{name: "new"}, nil
	}); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	fresh, err := r.Get("p")
	if err != nil {
		t.Fatalf("Get after Replace failed: %v", err)
	}
	if fresh == old {
		t.Error("Replace should invalidate the cached instance")
	}

	if err := r.Replace("ghost", nil); !errors.Is(err, provider.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound for unknown name", err)
	}
}

func TestRegistry_Unregister(t *testing.T) {
	r := provider.NewRegistry()
	r.Register("p", func() (provider.Provider, error) { return &fakeProvider{}, nil })

	if err := r.Unregister("p"); err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}
	if _, err := r.Get("p"); !errors.Is(err, provider.ErrNotFound) {
		t.Error("unregistered provider should be gone")
	}
	if err := r.Unregister("p"); !errors.Is(err, provider.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestRegistry_List_Sorted(t *testing.T) {
	r := provider.NewRegistry()
	factory := func() (provider.Provider, error) { return &fakeProvider{}, nil }
	for _, name := range []string{"zeta", "alpha", "mid"} {
		r.Register(name, factory)
	}

	got := r.List()
	want := []string{"alpha", "mid", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("got %d names, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("name %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
