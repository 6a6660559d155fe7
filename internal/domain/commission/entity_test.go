package commission

import "testing"

func TestComputeTotals(t *testing.T) {
	list := []Commission{
		{Amount: 2500, Status: StatusPending},
		{Amount: 1000, Status: StatusApproved},
		{Amount: 500, Status: StatusApproved},
		{Amount: 3500, Status: StatusPaid},
	}
	got := ComputeTotals(list)
	want := Totals{Total: 7500, Pending: 2500, Approved: 1500, Paid: 3500}
	if got != want {
		t.Fatalf("ComputeTotals() = %+v, want %+v", got, want)
	}
}

func TestComputeTotalsEmpty(t *testing.T) {
	if got := ComputeTotals(nil); got != (Totals{}) {
		t.Fatalf("expected zero totals, got %+v", got)
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		fee, percent, want float64
	}{
		{25000, 10, 2500},
		{15000, 15, 2250},
		{0, 50, 0},
		{1000, 0, 0},
		{1000, 100, 1000},
	}
	for _, tt := range tests {
		if got := Amount(tt.fee, tt.percent); got != tt.want {
			t.Errorf("Amount(%v, %v) = %v, want %v", tt.fee, tt.percent, got, tt.want)
		}
	}
}
