package host_test

import (
	"context"
	"testing"

	"github.com/simkit/compgen/pkg/host"
	"github.com/simkit/compgen/pkg/host/memory"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := host.NewRegistry()
	if err := registry.Register(memory.New()); err != nil {
		t.Fatalf("register: %v", err)
	}

	driver, err := registry.Get(memory.DriverName)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := driver.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := host.NewRegistry()
	if err := registry.Register(memory.New()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(memory.New()); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestRegistryListAndHas(t *testing.T) {
	registry := host.NewRegistry()
	if registry.Has(memory.DriverName) {
		t.Fatal("expected empty registry")
	}
	registry.MustRegister(memory.New())

	names := registry.List()
	if len(names) != 1 || names[0] != memory.DriverName {
		t.Fatalf("unexpected driver list: %v", names)
	}
	if !registry.Has(memory.DriverName) {
		t.Fatal("expected memory driver to be registered")
	}
}

func TestRegistryGetUnknownDriver(t *testing.T) {
	registry := host.NewRegistry()
	if _, err := registry.Get("opcua"); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
