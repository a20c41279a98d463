// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"
	"testing"

	"github.com/gogpu/densityfield/render"
)

func TestSoftwareAlwaysRegistered(t *testing.T) {
	if !IsRegistered(BackendSoftware) {
		t.Fatal("software pool not registered")
	}
	p, err := Get(BackendSoftware)
	if err != nil {
		t.Fatalf("Get(software): %v", err)
	}
	if p == nil {
		t.Fatal("Get(software) returned nil pool")
	}
	if !p.SupportsBlendMinMax() {
		t.Error("software pool should support MIN/MAX blending")
	}
}

func TestGetUnknown(t *testing.T) {
	_, err := Get("no-such-pool")
	if !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("err = %v, want ErrBackendNotAvailable", err)
	}
}

func TestDefaultFallsBackToSoftware(t *testing.T) {
	p, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if _, ok := p.(*render.SoftPool); !ok {
		t.Errorf("default pool is %T, want *render.SoftPool", p)
	}
}

func TestRegisterAndUnregister(t *testing.T) {
	const name = "test-pool"
	Register(name, func() (render.Pool, error) {
		return render.NewSoftPool(render.WithNative3D()), nil
	})
	t.Cleanup(func() { Unregister(name) })

	if !IsRegistered(name) {
		t.Fatal("registered pool not found")
	}
	p, err := Get(name)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !p.Supports3D() {
		t.Error("factory not applied")
	}

	Unregister(name)
	if IsRegistered(name) {
		t.Error("pool still registered after Unregister")
	}
}

func TestAvailableListsSoftware(t *testing.T) {
	found := false
	for _, name := range Available() {
		if name == BackendSoftware {
			found = true
		}
	}
	if !found {
		t.Errorf("Available() = %v, missing %q", Available(), BackendSoftware)
	}
}
