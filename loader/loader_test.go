package loader_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/coralvm/coral/binfmt"
	"github.com/coralvm/coral/loader"
	"github.com/coralvm/coral/verifier"
)

func validModuleBytes() []byte {
	m := &binfmt.Module{
		Identifiers:   []string{"Test", "Item", "x"},
		ModuleHandles: []binfmt.ModuleHandle{{Address: binfmt.Address{1}, Name: 0}},
		StructHandles: []binfmt.StructHandle{{Module: 0, Name: 1}},
		StructDefs: []binfmt.StructDef{
			{StructHandle: 0, Fields: []binfmt.FieldDef{
				{Name: 2, Type: binfmt.SignatureToken{Tag: binfmt.TokenU64}},
			}},
		},
		SelfModule: 0,
	}
	return m.Encode()
}

func invalidModuleBytes() []byte {
	m := &binfmt.Module{
		Identifiers:   []string{"a", "b", "a"},
		ModuleHandles: []binfmt.ModuleHandle{{Name: 0}},
	}
	return m.Encode()
}

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mod.cbc")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	l := &loader.Loader{}
	m, err := l.Load(writeFile(t, validModuleBytes()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Name() != "Test" {
		t.Errorf("module name = %q, want %q", m.Name(), "Test")
	}
}

func TestLoad_Violation(t *testing.T) {
	l := &loader.Loader{}
	_, err := l.Load(writeFile(t, invalidModuleBytes()))
	var v *verifier.Violation
	if !errors.As(err, &v) {
		t.Fatalf("expected *Violation, got %v", err)
	}
	if v.Table != binfmt.KindIdentifier || v.Index != 2 {
		t.Errorf("unexpected violation: %+v", v)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	l := &loader.Loader{}
	if _, err := l.Load(filepath.Join(t.TempDir(), "nope.cbc")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_GarbageFile(t *testing.T) {
	l := &loader.Loader{}
	_, err := l.Load(writeFile(t, []byte{0xde, 0xad, 0xbe, 0xef}))
	if err == nil {
		t.Fatal("expected decode error")
	}
	var v *verifier.Violation
	if errors.As(err, &v) {
		t.Error("decode failure must not surface as a Violation")
	}
}

func TestLoad_CacheReproducesOutcome(t *testing.T) {
	cache, err := loader.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	l := &loader.Loader{Cache: cache}
	path := writeFile(t, invalidModuleBytes())

	first := func() *verifier.Violation {
		_, err := l.Load(path)
		var v *verifier.Violation
		if !errors.As(err, &v) {
			t.Fatalf("expected *Violation, got %v", err)
		}
		return v
	}

	v1 := first()
	v2 := first() // served from cache
	if *v1 != *v2 {
		t.Errorf("cached outcome differs: %+v vs %+v", v1, v2)
	}
}

func TestLoad_CacheHitValid(t *testing.T) {
	cache, err := loader.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	l := &loader.Loader{Cache: cache}
	path := writeFile(t, validModuleBytes())

	for i := 0; i < 2; i++ {
		if _, err := l.Load(path); err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
	}
}

func TestDiskCache_Roundtrip(t *testing.T) {
	cache, err := loader.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := loader.DigestOf([]byte("module bytes"))
	want := loader.Result{
		Verified: false,
		Table:    binfmt.KindStructHandle,
		Index:    3,
		Reason:   verifier.UnimplementedHandle,
	}
	if err := cache.Store(key, want); err != nil {
		t.Fatalf("Store: %v", err)
	}
	got, ok := cache.Lookup(key)
	if !ok {
		t.Fatal("Lookup miss after Store")
	}
	if got.Verified != want.Verified || got.Table != want.Table ||
		got.Index != want.Index || got.Reason != want.Reason {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestDiskCache_MissOnUnknownKey(t *testing.T) {
	cache, err := loader.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.Lookup(loader.DigestOf([]byte("never stored"))); ok {
		t.Error("unexpected hit for unknown key")
	}
}
