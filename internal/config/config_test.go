package config

import "testing"

func TestLegacyDivergesFromDefault(t *testing.T) {
	d := Default()
	l := Legacy()
	if l.Classic == d.Classic {
		t.Fatalf("Legacy() should flip Classic relative to Default()")
	}
	if l.RedeclWarn || l.DupvarWarn {
		t.Fatalf("Legacy() should silence redeclaration/dupvar warnings")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	c := Default()
	c.ResourceDebug = 7
	c.TildeOk = false
	c.MaxScanCount = 42
	snap := c.Snapshot()

	other := Default()
	other.Restore(snap)
	if other.ResourceDebug != 7 || other.TildeOk != false || other.MaxScanCount != 42 {
		t.Fatalf("Restore did not recover the snapshotted fields, got %+v", other)
	}
}

func TestRestoreDoesNotAliasLiveConfig(t *testing.T) {
	c := Default()
	snap := c.Snapshot()

	c.ResourceDebug = 99
	other := Default()
	other.Restore(snap)
	if other.ResourceDebug == 99 {
		t.Fatalf("snapshot should be a copy, not a live view of the config it was taken from")
	}
}
