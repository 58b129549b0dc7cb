package gpt

import (
	"testing"

	"github.com/google/uuid"
)

func TestHeaderBuilderDefaultGeometry(t *testing.T) {
	primary, backup, err := NewHeaderBuilder().
		WithBackupLBA(71).
		WithDiskGUID(uuid.New()).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if primary.CurrentLBA != 1 {
		t.Errorf("primary.CurrentLBA = %d, want 1", primary.CurrentLBA)
	}
	if primary.BackupLBA != 71 {
		t.Errorf("primary.BackupLBA = %d, want 71", primary.BackupLBA)
	}
	if primary.FirstUsableLBA != 34 {
		t.Errorf("FirstUsableLBA = %d, want 34", primary.FirstUsableLBA)
	}
	if primary.LastUsableLBA != 38 {
		t.Errorf("LastUsableLBA = %d, want 38", primary.LastUsableLBA)
	}
	if primary.PartStart != 2 {
		t.Errorf("primary.PartStart = %d, want 2", primary.PartStart)
	}

	if backup.CurrentLBA != 71 {
		t.Errorf("backup.CurrentLBA = %d, want 71", backup.CurrentLBA)
	}
	if backup.BackupLBA != 1 {
		t.Errorf("backup.BackupLBA = %d, want 1", backup.BackupLBA)
	}
	if backup.PartStart != 39 {
		t.Errorf("backup.PartStart = %d, want 39", backup.PartStart)
	}
	if backup.DiskGUID != primary.DiskGUID {
		t.Error("primary and backup must share the same disk GUID")
	}
}

func TestHeaderBuilderRejectsBackupBeforePrimary(t *testing.T) {
	_, _, err := NewHeaderBuilder().WithBackupLBA(0).Build()
	if err == nil {
		t.Fatal("expected error for a backup LBA before the primary")
	}
	gerr, ok := err.(*Error)
	if !ok || gerr.Kind != KindMissingBackupLba {
		t.Errorf("err = %v, want KindMissingBackupLba", err)
	}
}

func TestHeaderBuilderRejectsBackupTooEarlyForArray(t *testing.T) {
	// Default array needs 32 LBAs (ceil(128*128/512)); a backup LBA of 3
	// leaves no room for the backup array before the end of the disk, so
	// first_usable (34) ends up above last_usable.
	_, _, err := NewHeaderBuilder().WithBackupLBA(3).Build()
	if err == nil {
		t.Fatal("expected error for a backup LBA too close to the primary")
	}
	gerr, ok := err.(*Error)
	if !ok || gerr.Kind != KindBackupLbaTooEarly {
		t.Errorf("err = %v, want KindBackupLbaTooEarly", err)
	}
}

func TestHeaderBuilderUsableRangeOverridesTakeTheLarger(t *testing.T) {
	// A request below the structural floor/ceiling is ignored in favor of
	// the structural value; a request above it wins, per the builder's
	// documented max()-of-both contract on both ends.
	widened, _, err := NewHeaderBuilder().
		WithBackupLBA(71).
		WithFirstUsableLBA(10). // below structural floor 34, ignored
		WithLastUsableLBA(100). // above structural ceiling 38, wins
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if widened.FirstUsableLBA != 34 {
		t.Errorf("FirstUsableLBA = %d, want 34 (structural floor enforced)", widened.FirstUsableLBA)
	}
	if widened.LastUsableLBA != 100 {
		t.Errorf("LastUsableLBA = %d, want 100 (caller override widens the range)", widened.LastUsableLBA)
	}

	narrowed, _, err := NewHeaderBuilder().
		WithBackupLBA(71).
		WithFirstUsableLBA(36).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if narrowed.FirstUsableLBA != 36 {
		t.Errorf("FirstUsableLBA = %d, want 36", narrowed.FirstUsableLBA)
	}
	if narrowed.LastUsableLBA != 38 {
		t.Errorf("LastUsableLBA = %d, want 38 (no override, structural default)", narrowed.LastUsableLBA)
	}
}

func TestHeaderBuilderCustomArraySize(t *testing.T) {
	primary, _, err := NewHeaderBuilder().
		WithBackupLBA(999).
		WithNumParts(4).
		WithPartSize(128).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// 4 entries are clamped up to the 128-entry minimum, so the array takes
	// ceil(128*128/512) = 32 LBAs and first usable is 2+32 = 34.
	if primary.FirstUsableLBA != 34 {
		t.Errorf("FirstUsableLBA = %d, want 34", primary.FirstUsableLBA)
	}
}
