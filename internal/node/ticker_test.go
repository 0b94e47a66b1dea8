package node

import "testing"

func TestEpochClockCheckpointAt(t *testing.T) {
	clock := EpochClock{GenesisTimestamp: 1_000_000, EpochLengthSecs: 45}

	tests := []struct {
		name string
		now  int64
		want uint32
	}{
		{"at genesis", 1_000_000, 0},
		{"before genesis", 999_000, 0},
		{"mid first epoch", 1_000_030, 0},
		{"exactly one epoch later", 1_000_045, 1},
		{"ten epochs later", 1_000_000 + 450, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clock.CheckpointAt(tt.now); got != tt.want {
				t.Errorf("CheckpointAt(%d) = %d, want %d", tt.now, got, tt.want)
			}
		})
	}
}
