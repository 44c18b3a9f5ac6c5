package hdraft

import "testing"

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig(SideServer)
	if cfg.Side != SideServer {
		t.Fatalf("Side = %v, want server", cfg.Side)
	}
	if cfg.MaxBufferSize != DefaultMaxBufferSize {
		t.Fatalf("MaxBufferSize = %d, want %d", cfg.MaxBufferSize, DefaultMaxBufferSize)
	}
	if cfg.MaxEntrySize != DefaultMaxEntrySize {
		t.Fatalf("MaxEntrySize = %d, want %d", cfg.MaxEntrySize, DefaultMaxEntrySize)
	}
}

func TestBuilderHappyPath(t *testing.T) {
	cfg, err := NewBuilder(SideClient).
		WithMaxBufferSize(8192).
		WithMaxEntrySize(4096).
		WithTableCapacity(256).
		WithEmitSetCapacity(64).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxBufferSize != 8192 || cfg.MaxEntrySize != 4096 || cfg.TableCapacity != 256 || cfg.EmitSetCapacity != 64 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestBuilderAccumulatesFirstError(t *testing.T) {
	_, err := NewBuilder(SideClient).
		WithMaxBufferSize(-1).
		WithTableCapacity(10). // must be ignored: builder is already sticky
		Build()
	if err == nil {
		t.Fatal("expected error from negative buffer size")
	}
}

func TestBuilderRejectsEntrySizeOverBuffer(t *testing.T) {
	_, err := NewBuilder(SideClient).
		WithMaxBufferSize(1000).
		WithMaxEntrySize(2000).
		Build()
	if err == nil {
		t.Fatal("expected error when entry size exceeds buffer size")
	}
}
