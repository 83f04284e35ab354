package governor

import (
	"math"
	"testing"
)

func TestMaskEnergy(t *testing.T) {
	cases := []struct {
		name    string
		carrier []float64
		mask    []float64
		want    float64
		wantErr bool
	}{
		{
			name:    "identity mask absorbs nothing",
			carrier: []float64{1, 2, 3},
			mask:    []float64{1, 1, 1},
			want:    0.0,
		},
		{
			name:    "zero mask absorbs everything",
			carrier: []float64{1, 2, 3},
			mask:    []float64{0, 0, 0},
			want:    1.0,
		},
		{
			name:    "half mask",
			carrier: []float64{2, 0},
			mask:    []float64{0.5, 0.5},
			want:    0.5,
		},
		{
			name:    "dimension mismatch",
			carrier: []float64{1, 2, 3},
			mask:    []float64{1, 1},
			wantErr: true,
		},
		{
			name:    "non-finite mask",
			carrier: []float64{1, 2},
			mask:    []float64{math.NaN(), 1},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := MaskEnergy(tc.carrier, tc.mask)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("MaskEnergy() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("MaskEnergy() error = %v", err)
			}
			if math.Abs(got-tc.want) > 1e-6 {
				t.Errorf("MaskEnergy() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRiskEnergy_MaskWeighting(t *testing.T) {
	// Adequate evidence: mask contributes one tenth.
	rho, rhoText := RiskEnergy(0.60, 1.0)
	if rhoText != 0.40 {
		t.Errorf("rhoText = %v, want 0.40", rhoText)
	}
	want := 0.9*0.40 + 0.1*1.0
	if math.Abs(rho-want) > 1e-9 {
		t.Errorf("rho = %v, want %v", rho, want)
	}

	// Weak evidence: mask contributes one quarter.
	rho, _ = RiskEnergy(0.20, 1.0)
	want = 0.75*0.80 + 0.25*1.0
	if math.Abs(rho-want) > 1e-9 {
		t.Errorf("rho = %v, want %v", rho, want)
	}

	// Never exceeds 1.
	rho, _ = RiskEnergy(0.0, 1.0)
	if rho > 1.0 {
		t.Errorf("rho = %v, want <= 1.0", rho)
	}
}

func TestGovernor_ModePartition(t *testing.T) {
	g := New(DefaultDampenThreshold, DefaultProjectThreshold)

	cases := []struct {
		rho  float64
		want Mode
	}{
		{0.0, ModeFree},
		{0.29999, ModeFree},
		{0.30, ModeDampen},
		{0.50, ModeDampen},
		{0.69999, ModeDampen},
		{0.70, ModeProject},
		{1.0, ModeProject},
	}

	for _, tc := range cases {
		if got := g.Mode(tc.rho); got != tc.want {
			t.Errorf("Mode(%v) = %v, want %v", tc.rho, got, tc.want)
		}
	}
}

func TestGovernor_Decide(t *testing.T) {
	g := New(0, 0) // defaults

	cases := []struct {
		name      string
		userText  string
		rho       float64
		wantMode  Mode
		wantState ProjectState
		wantDamp  float64
	}{
		{"free", "Tell me the capital of France.", 0.1, ModeFree, "", 0.0},
		{"dampen carries rho", "Tell me the capital of France.", 0.5, ModeDampen, "", 0.5},
		{"project ambiguous", "it?", 0.9, ModeProject, StateClarify, 0.0},
		{"project empty text", "", 0.9, ModeProject, StateClarify, 0.0},
		{"project unambiguous", "Tell me the capital of France.", 0.9, ModeProject, StateUnsupported, 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := g.Decide(tc.userText, tc.rho)
			if d.Mode != tc.wantMode {
				t.Errorf("mode = %v, want %v", d.Mode, tc.wantMode)
			}
			if d.State != tc.wantState {
				t.Errorf("state = %q, want %q", d.State, tc.wantState)
			}
			if d.Damping != tc.wantDamp {
				t.Errorf("damping = %v, want %v", d.Damping, tc.wantDamp)
			}
			if d.Mode == ModeProject {
				if d.Message == "" {
					t.Error("PROJECT decision has empty message")
				}
				if len(d.Missing) == 0 {
					t.Error("PROJECT decision has empty missing list")
				}
			}
		})
	}
}

// Same (userText, rho) must always yield the same decision.
func TestGovernor_Deterministic(t *testing.T) {
	g := New(0, 0)
	first := g.Decide("it?", 0.95)
	for i := 0; i < 20; i++ {
		got := g.Decide("it?", 0.95)
		if got.Mode != first.Mode || got.State != first.State ||
			got.Damping != first.Damping || got.Message != first.Message {
			t.Fatalf("run %d: decision diverged: %+v vs %+v", i, got, first)
		}
	}
}

func TestIsAmbiguous(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"it?", true},
		{"", true},
		{"?!", true},
		{"fix this", true},
		{"please summarize that document now", true},
		{"Tell me the capital of France.", false},
		{"explain the difference between tcp and udp in one paragraph please", false}, // >= 8 words
		{"summarize", false},
	}

	for _, tc := range cases {
		if got := IsAmbiguous(tc.text); got != tc.want {
			t.Errorf("IsAmbiguous(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}
