package dice

import (
	"errors"
	"math/rand"
	"testing"
)

func TestRollWithRng_Basic(t *testing.T) {
	tests := []struct {
		name    string
		specs   []Spec
		wantErr error
	}{
		{name: "single d6", specs: []Spec{{Sides: 6, Count: 1}}},
		{name: "2d6 + 1d8", specs: []Spec{{Sides: 6, Count: 2}, {Sides: 8, Count: 1}}},
		{name: "no dice", specs: []Spec{}, wantErr: ErrMissingDice},
		{name: "invalid sides", specs: []Spec{{Sides: 0, Count: 1}}, wantErr: ErrInvalidDiceSpec},
		{name: "invalid count", specs: []Spec{{Sides: 6, Count: 0}}, wantErr: ErrInvalidDiceSpec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := RollWithRng(rand.New(rand.NewSource(42)), tt.specs)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr != nil {
				return
			}
			if len(result.Rolls) != len(tt.specs) {
				t.Fatalf("expected %d rolls, got %d", len(tt.specs), len(result.Rolls))
			}
			total := 0
			for i, roll := range result.Rolls {
				if len(roll.Results) != tt.specs[i].Count {
					t.Fatalf("roll %d: expected %d results, got %d", i, tt.specs[i].Count, len(roll.Results))
				}
				sum := 0
				for _, r := range roll.Results {
					if r < 1 || r > roll.Sides {
						t.Fatalf("roll %d: value %d out of range", i, r)
					}
					sum += r
				}
				if roll.Total != sum {
					t.Fatalf("roll %d: expected total %d, got %d", i, sum, roll.Total)
				}
				total += roll.Total
			}
			if result.Total != total {
				t.Fatalf("expected overall total %d, got %d", total, result.Total)
			}
		})
	}
}

func TestSeededRollerDeterminism(t *testing.T) {
	first := NewSeededRoller(12345)
	second := NewSeededRoller(12345)
	for i := 0; i < 10; i++ {
		a, err := first.Roll(TwoD6)
		if err != nil {
			t.Fatalf("roll: %v", err)
		}
		b, err := second.Roll(TwoD6)
		if err != nil {
			t.Fatalf("roll: %v", err)
		}
		if a.Total != b.Total {
			t.Fatalf("roll %d differs: %d vs %d", i, a.Total, b.Total)
		}
		if a.Total < 2 || a.Total > 12 {
			t.Fatalf("2d6 out of range: %d", a.Total)
		}
	}
}

func TestSequenceWrapsAround(t *testing.T) {
	seq := NewSequence(7, 12)
	want := []int{7, 12, 7}
	for i, w := range want {
		got, err := seq.Roll(TwoD6)
		if err != nil {
			t.Fatalf("roll: %v", err)
		}
		if got.Total != w {
			t.Fatalf("roll %d: expected %d, got %d", i, w, got.Total)
		}
	}
}

func TestSequenceRejectsEmpty(t *testing.T) {
	if _, err := NewSequence().Roll(TwoD6); !errors.Is(err, ErrMissingDice) {
		t.Fatalf("expected ErrMissingDice, got %v", err)
	}
	if _, err := NewSequence(3).Roll(); !errors.Is(err, ErrMissingDice) {
		t.Fatalf("expected ErrMissingDice, got %v", err)
	}
	if _, err := NewSequence(3).Roll(Spec{Sides: 0, Count: 1}); !errors.Is(err, ErrInvalidDiceSpec) {
		t.Fatalf("expected ErrInvalidDiceSpec, got %v", err)
	}
}
