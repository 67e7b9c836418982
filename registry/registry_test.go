package registry

import (
	"fmt"
	"testing"
)

type testItem struct {
	ID   string
	Name string
}

func TestBaseRegistry_Register(t *testing.T) {
	registry := NewBaseRegistry[testItem]()

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "register valid item", id: "item-1", wantErr: false},
		{name: "register with empty name", id: "", wantErr: true},
		{name: "register duplicate", id: "item-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.Register(tt.id, testItem{ID: tt.id})
			if (err != nil) != tt.wantErr {
				t.Errorf("Register() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBaseRegistry_Get(t *testing.T) {
	registry := NewBaseRegistry[testItem]()

	want := testItem{ID: "item-1", Name: "First"}
	if err := registry.Register("item-1", want); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, ok := registry.Get("item-1")
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}

	if _, ok := registry.Get("missing"); ok {
		t.Error("Get() ok = true for missing item, want false")
	}
}

func TestBaseRegistry_Names(t *testing.T) {
	registry := NewBaseRegistry[testItem]()

	for _, id := range []string{"charlie", "alpha", "bravo"} {
		if err := registry.Register(id, testItem{ID: id}); err != nil {
			t.Fatalf("Register(%s) error = %v", id, err)
		}
	}

	names := registry.Names()
	want := []string{"alpha", "bravo", "charlie"}
	if len(names) != len(want) {
		t.Fatalf("Names() length = %d, want %d", len(names), len(want))
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], name)
		}
	}
}

func TestBaseRegistry_Concurrency(t *testing.T) {
	registry := NewBaseRegistry[testItem]()

	done := make(chan bool, 2)

	go func() {
		defer func() { done <- true }()
		for i := 0; i < 100; i++ {
			id := fmt.Sprintf("concurrent-%d", i)
			_ = registry.Register(id, testItem{ID: id})
		}
	}()

	go func() {
		defer func() { done <- true }()
		for i := 0; i < 100; i++ {
			registry.Get(fmt.Sprintf("concurrent-%d", i))
			registry.Count()
			registry.List()
		}
	}()

	<-done
	<-done

	if count := registry.Count(); count != 100 {
		t.Errorf("Count() after concurrent access = %d, want 100", count)
	}
}
