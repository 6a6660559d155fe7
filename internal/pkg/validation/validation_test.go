package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type sample struct {
	Status string `validate:"omitempty,leadstatus"`
	Type   string `validate:"omitempty,coursetype"`
}

func TestCustomTags(t *testing.T) {
	v := validator.New()
	if err := RegisterOn(v); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		in      sample
		wantErr bool
	}{
		{"empty", sample{}, false},
		{"valid status", sample{Status: "CLOSED"}, false},
		{"lowercase status", sample{Status: "closed"}, true},
		{"unknown status", sample{Status: "DONE"}, true},
		{"valid type", sample{Type: "vocational"}, false},
		{"unknown type", sample{Type: "bootcamp"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterIdempotent(t *testing.T) {
	if err := Register(); err != nil {
		t.Fatal(err)
	}
	if err := Register(); err != nil {
		t.Fatal(err)
	}
}
